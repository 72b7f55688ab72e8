package services

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/authz"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	issuer    *TokenIssuer
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, issuer *TokenIssuer, logger *slog.Logger, v *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		issuer:    issuer,
		logger:    logger,
		validator: v,
	}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	username, err := normalizeLoginIdentifier(req.Username)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.Account().GetByUsername(ctx, nil, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if account.PasswordHash == "" {
		// Accounts provisioned from profiles have no password until a
		// reset sets one.
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("failed login attempt", "username", username)
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(account)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken: token,
		Username:    account.Username,
		FullName:    account.FullName,
		Role:        account.PrimaryRole(),
	}, nil
}

func (s *authService) CreateAccount(ctx context.Context, caller *authz.Caller, req CreateAccountRequest) (*models.Account, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "account", "create", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	username, err := normalizeLoginIdentifier(req.Username)
	if err != nil {
		return nil, err
	}

	switch req.Role {
	case models.RoleSecretaria, models.RoleProfessor, models.RoleResponsavel, models.RoleAluno, models.RoleAuxiliar:
	default:
		return nil, NewValidationError("role", "unknown role", req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
	}
	if req.Email != "" {
		email := req.Email
		account.Email = &email
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		taken, err := txRepo.Account().UsernameExists(ctx, nil, username, 0)
		if err != nil {
			return err
		}
		if taken {
			return NewValidationError("username", "already in use", username)
		}
		if err := txRepo.Account().Create(ctx, nil, account); err != nil {
			return err
		}
		role, err := txRepo.Account().EnsureRole(ctx, nil, req.Role)
		if err != nil {
			return err
		}
		return txRepo.Account().AddRole(ctx, nil, account, role)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created", "username", account.Username, "role", req.Role)
	return account, nil
}

func (s *authService) ListAccounts(ctx context.Context, caller *authz.Caller, limit, offset int) ([]*models.Account, int64, error) {
	if !authz.IsSecretaria(caller) {
		return nil, 0, NewPermissionError(callerID(caller), "account", "list", "requires Secretaria role")
	}
	return s.repo.Account().List(ctx, nil, limit, offset)
}

func callerID(caller *authz.Caller) uint {
	if caller == nil {
		return 0
	}
	return caller.AccountID
}
