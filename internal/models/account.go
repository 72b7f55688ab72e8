package models

import (
	"time"
)

type RoleName string

// Role names are stored verbatim and compared case-sensitively; the front end
// and the token claims depend on these exact strings.
const (
	RoleSecretaria   RoleName = "Secretaria"
	RoleProfessor    RoleName = "Professor"
	RoleResponsavel  RoleName = "Responsavel"
	RoleAluno        RoleName = "Aluno"
	RoleAuxiliar     RoleName = "Auxiliar administrativo"
)

type Role struct {
	ID   uint     `json:"id" gorm:"primaryKey"`
	Name RoleName `json:"name" gorm:"uniqueIndex;not null;size:100"`
}

func (Role) TableName() string {
	return "roles"
}

// Account is the login identity, distinct from the domain profiles. The
// username is the holder's CPF reduced to its 11 digits; accounts fabricated
// without a CPF carry a slugged display name instead.
type Account struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Username     string  `json:"username" gorm:"uniqueIndex;not null;size:150"`
	Email        *string `json:"email" gorm:"size:255"`
	PasswordHash string  `json:"-" gorm:"size:255"`
	FullName     string  `json:"full_name" gorm:"size:200"`

	Roles []Role `json:"roles" gorm:"many2many:account_roles"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// RoleNames returns the account's role memberships as a plain name list,
// first role first. Permission checks test membership; the first entry is
// only used as the primary designation embedded in session tokens.
func (a *Account) RoleNames() []RoleName {
	names := make([]RoleName, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports membership of a single named role.
func (a *Account) HasRole(name RoleName) bool {
	for _, r := range a.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// PrimaryRole returns the first role name, or empty when the account holds no
// role memberships.
func (a *Account) PrimaryRole() RoleName {
	if len(a.Roles) == 0 {
		return ""
	}
	return a.Roles[0].Name
}

// ResetToken is a single-use password reset credential. There is no "used"
// flag: deleting the row is consumption. Expiry (1 hour after CreatedAt) is
// evaluated lazily at confirm time.
type ResetToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Token     string    `json:"token" gorm:"uniqueIndex;not null;size:64"`
	AccountID uint      `json:"account_id" gorm:"index;not null"`
	Account   *Account  `json:"-" gorm:"foreignKey:AccountID"`
	CreatedAt time.Time `json:"created_at"`
}

func (ResetToken) TableName() string {
	return "password_reset_tokens"
}

// ResetTokenTTL is how long a reset token stays valid after creation.
const ResetTokenTTL = time.Hour

// Expired reports whether the token is older than its TTL at the given time.
func (t *ResetToken) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) > ResetTokenTTL
}
