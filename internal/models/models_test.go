package models

import (
	"testing"
	"time"
)

func TestReservationOverlaps(t *testing.T) {
	held := &Reservation{StartTime: "08:00", EndTime: "10:00"}

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{name: "identical", start: "08:00", end: "10:00", want: true},
		{name: "inside", start: "08:30", end: "09:30", want: true},
		{name: "covers", start: "07:00", end: "11:00", want: true},
		{name: "crosses start", start: "07:00", end: "08:01", want: true},
		{name: "crosses end", start: "09:59", end: "11:00", want: true},
		{name: "touches before", start: "07:00", end: "08:00", want: false},
		{name: "touches after", start: "10:00", end: "11:00", want: false},
		{name: "well before", start: "06:00", end: "07:00", want: false},
		{name: "well after", start: "11:00", end: "12:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := held.Overlaps(tt.start, tt.end); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestResetTokenExpired(t *testing.T) {
	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	token := &ResetToken{CreatedAt: created}

	if token.Expired(created.Add(30 * time.Minute)) {
		t.Error("token expired within its TTL")
	}
	if token.Expired(created.Add(ResetTokenTTL)) {
		t.Error("token expired exactly at its TTL")
	}
	if !token.Expired(created.Add(ResetTokenTTL + time.Second)) {
		t.Error("token still valid past its TTL")
	}
}

func TestAccountRoles(t *testing.T) {
	account := &Account{Roles: []Role{{Name: RoleProfessor}, {Name: RoleSecretaria}}}

	if !account.HasRole(RoleProfessor) || !account.HasRole(RoleSecretaria) {
		t.Error("membership lookup failed")
	}
	if account.HasRole(RoleAluno) {
		t.Error("phantom membership")
	}
	if got := account.PrimaryRole(); got != RoleProfessor {
		t.Errorf("PrimaryRole = %q, want first role", got)
	}
	if got := (&Account{}).PrimaryRole(); got != "" {
		t.Errorf("roleless PrimaryRole = %q, want empty", got)
	}
}
