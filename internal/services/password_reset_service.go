package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/events"
	"github.com/escola-viva/secretaria-service/internal/mailer"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/validator"
)

type passwordResetService struct {
	repo        repositories.Repository
	linker      *identityLinker
	mailer      mailer.Mailer
	publisher   events.Publisher
	logger      *slog.Logger
	validator   *validator.Validator
	frontendURL string
}

func NewPasswordResetService(repo repositories.Repository, m mailer.Mailer, publisher events.Publisher, logger *slog.Logger, v *validator.Validator, frontendURL string) PasswordResetService {
	return &passwordResetService{
		repo:        repo,
		linker:      newIdentityLinker(logger),
		mailer:      m,
		publisher:   publisher,
		logger:      logger,
		validator:   v,
		frontendURL: frontendURL,
	}
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// RequestReset resolves the email, replaces any outstanding token for the
// account with a fresh one and mails the reset link. An unresolvable email is
// not an error: callers get the same generic answer either way so the
// endpoint does not reveal which emails are registered.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	req := PasswordResetRequest{Email: email}
	if err := s.validator.Struct(req); err != nil {
		return toValidationErrors(err)
	}

	var account *models.Account
	var token string

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		resolved, err := s.linker.resolveAccountForEmail(ctx, txRepo, email)
		if err != nil {
			return err
		}
		if resolved == nil {
			return nil
		}
		account = resolved

		if err := txRepo.ResetToken().DeleteByAccount(ctx, nil, account.ID); err != nil {
			return err
		}

		token, err = newResetToken()
		if err != nil {
			return err
		}
		return txRepo.ResetToken().Create(ctx, nil, &models.ResetToken{
			Token:     token,
			AccountID: account.ID,
		})
	})
	if err != nil {
		return err
	}

	if account == nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}

	// The token is already committed at this point. If the mail fails the
	// token stays behind, usable until the next request replaces it.
	link := fmt.Sprintf("%s/resetar-senha/%s", s.frontendURL, token)
	body := fmt.Sprintf(
		"Olá %s,\n\nRecebemos um pedido para redefinir sua senha. Acesse o link abaixo para escolher uma nova senha:\n\n%s\n\nO link expira em 1 hora. Se você não pediu a redefinição, ignore este email.",
		account.FullName, link)

	if err := s.mailer.Send(ctx, email, "Redefinição de senha", body); err != nil {
		s.logger.Error("failed to send reset email", "error", err)
		return fmt.Errorf("send reset email: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.TopicPasswordResetRequested, map[string]interface{}{
		"account_id": account.ID,
		"username":   account.Username,
	}); err != nil {
		s.logger.Warn("failed to publish reset event", "error", err)
	}

	s.logger.Info("password reset mailed", "username", account.Username)
	return nil
}

// ConfirmReset consumes a token: set the new password, then delete the token
// so it can never be replayed. Expired tokens are deleted on sight.
func (s *passwordResetService) ConfirmReset(ctx context.Context, req PasswordResetConfirm) error {
	if err := s.validator.Struct(req); err != nil {
		return toValidationErrors(err)
	}

	var username string
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		rt, err := txRepo.ResetToken().GetByToken(ctx, nil, req.Token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}

		if rt.Expired(time.Now()) {
			if err := txRepo.ResetToken().Delete(ctx, nil, rt.ID); err != nil {
				return err
			}
			return ErrExpiredResetToken
		}

		account, err := txRepo.Account().GetByID(ctx, nil, rt.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		account.PasswordHash = string(hash)
		if err := txRepo.Account().Update(ctx, nil, account); err != nil {
			return err
		}

		username = account.Username
		return txRepo.ResetToken().Delete(ctx, nil, rt.ID)
	})
	if err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, events.TopicPasswordResetCompleted, map[string]interface{}{
		"username": username,
	}); err != nil {
		s.logger.Warn("failed to publish reset completed event", "error", err)
	}

	s.logger.Info("password reset completed", "username", username)
	return nil
}
