package services

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/authz"
	"github.com/escola-viva/secretaria-service/internal/events"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/validator"
)

type profileService struct {
	repo      repositories.Repository
	linker    *identityLinker
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewProfileService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, v *validator.Validator) ProfileService {
	return &profileService{
		repo:      repo,
		linker:    newIdentityLinker(logger),
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== GUARDIANS =====

func (s *profileService) CreateGuardian(ctx context.Context, caller *authz.Caller, req GuardianRequest) (*models.Guardian, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "guardian", "create", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	guardian := &models.Guardian{
		Name:        req.Name,
		CPF:         req.CPF,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Birthday:    req.Birthday,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Guardian().Create(ctx, nil, guardian); err != nil {
			return err
		}
		return s.linkGuardian(ctx, txRepo, guardian)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("guardian created", "guardian_id", guardian.ID)
	return guardian, nil
}

func (s *profileService) UpdateGuardian(ctx context.Context, caller *authz.Caller, id uint, req GuardianRequest) (*models.Guardian, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "guardian", "update", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	guardian, err := s.repo.Guardian().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuardianNotFound
		}
		return nil, err
	}

	guardian.Name = req.Name
	guardian.CPF = req.CPF
	guardian.Email = req.Email
	guardian.PhoneNumber = req.PhoneNumber
	guardian.Birthday = req.Birthday

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Guardian().Update(ctx, nil, guardian); err != nil {
			return err
		}
		return s.linkGuardian(ctx, txRepo, guardian)
	})
	if err != nil {
		return nil, err
	}

	return guardian, nil
}

// linkGuardian keeps the guardian's login account aligned with the profile.
// Linking only happens once the profile has an identifier to key on.
func (s *profileService) linkGuardian(ctx context.Context, repo repositories.Repository, guardian *models.Guardian) error {
	if guardian.CPF == "" && guardian.Email == "" {
		return nil
	}
	account, err := s.linker.ensureAccount(ctx, repo, models.RoleResponsavel, profileIdentity{
		Name:      guardian.Name,
		CPF:       guardian.CPF,
		Email:     guardian.Email,
		AccountID: guardian.AccountID,
	})
	if err != nil {
		return err
	}
	if guardian.AccountID == nil || *guardian.AccountID != account.ID {
		guardian.AccountID = &account.ID
		if err := repo.Guardian().Update(ctx, nil, guardian); err != nil {
			return err
		}
		if err := s.publisher.Publish(ctx, events.TopicAccountProvisioned, map[string]interface{}{
			"account_id": account.ID,
			"profile":    "guardian",
			"profile_id": guardian.ID,
		}); err != nil {
			s.logger.Warn("failed to publish account provisioned event", "error", err)
		}
	}
	return nil
}

func (s *profileService) DeleteGuardian(ctx context.Context, caller *authz.Caller, id uint) error {
	if !authz.IsSecretaria(caller) {
		return NewPermissionError(callerID(caller), "guardian", "delete", "requires Secretaria role")
	}
	if _, err := s.repo.Guardian().GetByID(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuardianNotFound
		}
		return err
	}
	return s.repo.Guardian().Delete(ctx, nil, id)
}

// GetGuardian allows Secretaria or the linked guardian themselves. A guardian
// probing someone else's profile reads as not found rather than revealing it
// exists.
func (s *profileService) GetGuardian(ctx context.Context, caller *authz.Caller, id uint) (*models.Guardian, error) {
	if !authz.AnyOf(authz.IsSecretaria, authz.IsResponsavel)(caller) {
		return nil, NewPermissionError(callerID(caller), "guardian", "read", "requires Secretaria or Responsavel role")
	}
	guardian, err := s.repo.Guardian().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuardianNotFound
		}
		return nil, err
	}
	if !authz.IsSecretaria(caller) {
		if guardian.AccountID == nil || *guardian.AccountID != caller.AccountID {
			return nil, ErrGuardianNotFound
		}
	}
	return guardian, nil
}

func (s *profileService) ListGuardians(ctx context.Context, caller *authz.Caller, limit, offset int) ([]*models.Guardian, int64, error) {
	if !authz.IsSecretaria(caller) {
		return nil, 0, NewPermissionError(callerID(caller), "guardian", "list", "requires Secretaria role")
	}
	return s.repo.Guardian().List(ctx, nil, limit, offset)
}

// ===== TEACHERS =====

func (s *profileService) CreateTeacher(ctx context.Context, caller *authz.Caller, req TeacherRequest) (*models.Teacher, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "teacher", "create", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	teacher := &models.Teacher{
		Name:        req.Name,
		CPF:         req.CPF,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Birthday:    req.Birthday,
		Subject:     req.Subject,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Teacher().Create(ctx, nil, teacher); err != nil {
			return err
		}
		return s.linkTeacher(ctx, txRepo, teacher)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("teacher created", "teacher_id", teacher.ID)
	return teacher, nil
}

func (s *profileService) UpdateTeacher(ctx context.Context, caller *authz.Caller, id uint, req TeacherRequest) (*models.Teacher, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "teacher", "update", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	teacher, err := s.repo.Teacher().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}

	teacher.Name = req.Name
	teacher.CPF = req.CPF
	teacher.Email = req.Email
	teacher.PhoneNumber = req.PhoneNumber
	teacher.Birthday = req.Birthday
	teacher.Subject = req.Subject

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Teacher().Update(ctx, nil, teacher); err != nil {
			return err
		}
		return s.linkTeacher(ctx, txRepo, teacher)
	})
	if err != nil {
		return nil, err
	}

	return teacher, nil
}

func (s *profileService) linkTeacher(ctx context.Context, repo repositories.Repository, teacher *models.Teacher) error {
	if teacher.CPF == "" && teacher.Email == "" {
		return nil
	}
	account, err := s.linker.ensureAccount(ctx, repo, models.RoleProfessor, profileIdentity{
		Name:      teacher.Name,
		CPF:       teacher.CPF,
		Email:     teacher.Email,
		AccountID: teacher.AccountID,
	})
	if err != nil {
		return err
	}
	if teacher.AccountID == nil || *teacher.AccountID != account.ID {
		teacher.AccountID = &account.ID
		if err := repo.Teacher().Update(ctx, nil, teacher); err != nil {
			return err
		}
		if err := s.publisher.Publish(ctx, events.TopicAccountProvisioned, map[string]interface{}{
			"account_id": account.ID,
			"profile":    "teacher",
			"profile_id": teacher.ID,
		}); err != nil {
			s.logger.Warn("failed to publish account provisioned event", "error", err)
		}
	}
	return nil
}

func (s *profileService) DeleteTeacher(ctx context.Context, caller *authz.Caller, id uint) error {
	if !authz.IsSecretaria(caller) {
		return NewPermissionError(callerID(caller), "teacher", "delete", "requires Secretaria role")
	}
	if _, err := s.repo.Teacher().GetByID(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherNotFound
		}
		return err
	}
	return s.repo.Teacher().Delete(ctx, nil, id)
}

// GetTeacher allows Secretaria or the linked teacher themselves; other
// teachers' profiles carry CPF and phone numbers and read as not found.
func (s *profileService) GetTeacher(ctx context.Context, caller *authz.Caller, id uint) (*models.Teacher, error) {
	if !authz.AnyOf(authz.IsSecretaria, authz.IsProfessor)(caller) {
		return nil, NewPermissionError(callerID(caller), "teacher", "read", "requires Secretaria or Professor role")
	}
	teacher, err := s.repo.Teacher().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	if !authz.IsSecretaria(caller) {
		if teacher.AccountID == nil || *teacher.AccountID != caller.AccountID {
			return nil, ErrTeacherNotFound
		}
	}
	return teacher, nil
}

func (s *profileService) ListTeachers(ctx context.Context, caller *authz.Caller, limit, offset int) ([]*models.Teacher, int64, error) {
	if !authz.IsSecretaria(caller) {
		return nil, 0, NewPermissionError(callerID(caller), "teacher", "list", "requires Secretaria role")
	}
	return s.repo.Teacher().List(ctx, nil, limit, offset)
}
