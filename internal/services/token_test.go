package services

import (
	"testing"
	"time"

	"github.com/escola-viva/secretaria-service/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	account := &models.Account{
		Username: "11122233344",
		Roles:    []models.Role{{Name: models.RoleProfessor}},
	}

	signed, err := issuer.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "11122233344" {
		t.Errorf("username = %q", claims.Username)
	}
	if claims.Cargo != models.RoleProfessor {
		t.Errorf("cargo = %q, want Professor", claims.Cargo)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	signed, err := NewTokenIssuer("secret-a", time.Hour).Issue(&models.Account{Username: "11122233344"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokenIssuer("secret-b", time.Hour).Parse(signed); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)
	signed, err := issuer.Issue(&models.Account{Username: "11122233344"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Parse(signed); err == nil {
		t.Error("expired token accepted")
	}
}

func TestTokenGarbageRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	if _, err := issuer.Parse("nem.um.jwt"); err == nil {
		t.Error("garbage accepted")
	}
}
