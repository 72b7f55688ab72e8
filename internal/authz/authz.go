// Package authz holds pure role-based permission predicates. Predicates only
// answer "may this caller attempt the operation"; row-level visibility is
// handled by the service scope resolver.
package authz

import (
	"github.com/escola-viva/secretaria-service/internal/models"
)

// Caller is the authenticated principal attached to a request.
type Caller struct {
	AccountID uint
	Username  string
	Roles     []models.RoleName
}

// HasRole reports whether the caller carries the named role.
func (c *Caller) HasRole(name models.RoleName) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Permission is a predicate over the caller. A nil caller means the request
// is unauthenticated.
type Permission func(c *Caller) bool

// IsAuthenticated allows any logged-in caller.
func IsAuthenticated(c *Caller) bool {
	return c != nil && c.AccountID != 0
}

// Role builds a permission that requires one specific role.
func Role(name models.RoleName) Permission {
	return func(c *Caller) bool {
		return c.HasRole(name)
	}
}

// AnyOf allows the caller when at least one permission allows.
func AnyOf(perms ...Permission) Permission {
	return func(c *Caller) bool {
		for _, p := range perms {
			if p(c) {
				return true
			}
		}
		return false
	}
}

// AllOf allows the caller only when every permission allows.
func AllOf(perms ...Permission) Permission {
	return func(c *Caller) bool {
		for _, p := range perms {
			if !p(c) {
				return false
			}
		}
		return true
	}
}

// Named role predicates mirroring the school's staff hierarchy.
var (
	IsSecretaria  = Role(models.RoleSecretaria)
	IsProfessor   = Role(models.RoleProfessor)
	IsResponsavel = Role(models.RoleResponsavel)
	IsAluno       = Role(models.RoleAluno)
	IsAuxiliar    = Role(models.RoleAuxiliar)

	// IsStaff covers the office staff able to run day-to-day administration.
	IsStaff = AnyOf(IsSecretaria, IsAuxiliar)
)
