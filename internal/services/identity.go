package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
)

// digitsOnly strips everything but 0-9 from an identifier, so masked CPFs
// like "111.222.333-44" normalize to their 11 digits.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeLoginIdentifier maps a login identifier to its canonical username.
// Only CPF-shaped identifiers are accepted: after stripping punctuation the
// result must be exactly 11 digits. Emails and usernames are rejected here so
// login never falls back to secondary identifiers.
func normalizeLoginIdentifier(identifier string) (string, error) {
	digits := digitsOnly(identifier)
	if len(digits) != 11 {
		return "", NewValidationError("username", "must be a CPF with 11 digits", identifier)
	}
	return digits, nil
}

// slugify builds a username fallback from a person's name: lowercase words
// joined by dots, non-alphanumerics dropped.
func slugify(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		var b strings.Builder
		for _, r := range f {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	if len(parts) == 0 {
		return "usuario"
	}
	return strings.Join(parts, ".")
}

// profileIdentity is the slice of a profile the linker needs to find or
// provision its login account.
type profileIdentity struct {
	Name      string
	CPF       string
	Email     string
	AccountID *uint
}

// identityLinker keeps profiles and accounts consistent: the CPF is the
// canonical username, accounts are merged when two records turn out to be the
// same person, and every linked account carries the role its profile implies.
type identityLinker struct {
	logger *slog.Logger
}

func newIdentityLinker(logger *slog.Logger) *identityLinker {
	return &identityLinker{logger: logger}
}

// ensureAccount returns the login account for a profile, creating, re-keying
// or merging as needed. The returned account is persisted; the caller still
// has to point the profile's account_id at it.
func (l *identityLinker) ensureAccount(ctx context.Context, repo repositories.Repository, roleName models.RoleName, ident profileIdentity) (*models.Account, error) {
	var account *models.Account

	if ident.AccountID != nil {
		existing, err := repo.Account().GetByID(ctx, nil, *ident.AccountID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		account = existing
	}

	digits := digitsOnly(ident.CPF)
	if len(digits) == 11 && (account == nil || account.Username != digits) {
		holder, err := repo.Account().GetByUsername(ctx, nil, digits)
		switch {
		case err == nil:
			// Another account already holds the canonical username, so
			// this profile belongs to that account. Re-point rather than
			// duplicate.
			if account != nil && account.ID != holder.ID {
				l.logger.Info("merging profile onto canonical account",
					"from_username", account.Username,
					"to_username", holder.Username)
			}
			account = holder
		case errors.Is(err, gorm.ErrRecordNotFound):
			if account != nil {
				account.Username = digits
			}
		default:
			return nil, err
		}
	}

	if account == nil {
		username := digits
		if len(username) != 11 {
			unique, err := l.uniqueSlug(ctx, repo, ident.Name)
			if err != nil {
				return nil, err
			}
			username = unique
		}
		account = &models.Account{
			Username: username,
			FullName: ident.Name,
		}
		if ident.Email != "" {
			email := ident.Email
			account.Email = &email
		}
		if err := repo.Account().Create(ctx, nil, account); err != nil {
			return nil, err
		}
	} else {
		if (account.Email == nil || *account.Email == "") && ident.Email != "" {
			email := ident.Email
			account.Email = &email
		}
		if account.FullName == "" {
			account.FullName = ident.Name
		}
		if err := repo.Account().Update(ctx, nil, account); err != nil {
			return nil, err
		}
	}

	role, err := repo.Account().EnsureRole(ctx, nil, roleName)
	if err != nil {
		return nil, err
	}
	if err := repo.Account().AddRole(ctx, nil, account, role); err != nil {
		return nil, err
	}

	return account, nil
}

// uniqueSlug returns the name slug, suffixed with -1, -2, ... until free.
func (l *identityLinker) uniqueSlug(ctx context.Context, repo repositories.Repository, name string) (string, error) {
	base := slugify(name)
	candidate := base
	for i := 1; ; i++ {
		taken, err := repo.Account().UsernameExists(ctx, nil, candidate, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// resolveAccountForEmail finds or provisions the account behind an email by
// checking profiles in a fixed order: guardian, then student, then teacher,
// then a bare account. A nil result with nil error means the email matched
// nothing.
func (l *identityLinker) resolveAccountForEmail(ctx context.Context, repo repositories.Repository, email string) (*models.Account, error) {
	if guardian, err := repo.Guardian().GetByEmail(ctx, nil, email); err == nil {
		account, err := l.ensureAccount(ctx, repo, models.RoleResponsavel, profileIdentity{
			Name:      guardian.Name,
			CPF:       guardian.CPF,
			Email:     guardian.Email,
			AccountID: guardian.AccountID,
		})
		if err != nil {
			return nil, err
		}
		if guardian.AccountID == nil || *guardian.AccountID != account.ID {
			guardian.AccountID = &account.ID
			if err := repo.Guardian().Update(ctx, nil, guardian); err != nil {
				return nil, err
			}
		}
		return account, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if student, err := repo.Student().GetByEmail(ctx, nil, email); err == nil {
		account, err := l.ensureAccount(ctx, repo, models.RoleAluno, profileIdentity{
			Name:      student.Name,
			CPF:       student.CPF,
			Email:     student.Email,
			AccountID: student.AccountID,
		})
		if err != nil {
			return nil, err
		}
		if student.AccountID == nil || *student.AccountID != account.ID {
			student.AccountID = &account.ID
			if err := repo.Student().Update(ctx, nil, student); err != nil {
				return nil, err
			}
		}
		return account, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if teacher, err := repo.Teacher().GetByEmail(ctx, nil, email); err == nil {
		account, err := l.ensureAccount(ctx, repo, models.RoleProfessor, profileIdentity{
			Name:      teacher.Name,
			CPF:       teacher.CPF,
			Email:     teacher.Email,
			AccountID: teacher.AccountID,
		})
		if err != nil {
			return nil, err
		}
		if teacher.AccountID == nil || *teacher.AccountID != account.ID {
			teacher.AccountID = &account.ID
			if err := repo.Teacher().Update(ctx, nil, teacher); err != nil {
				return nil, err
			}
		}
		return account, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if account, err := repo.Account().GetByEmail(ctx, nil, email); err == nil {
		return account, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return nil, nil
}
