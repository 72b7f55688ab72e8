package services

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/authz"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/validator"
)

type lessonPlanService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLessonPlanService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) LessonPlanService {
	return &lessonPlanService{repo: repo, logger: logger, validator: v}
}

// callerTeacher resolves the teacher profile behind a professor caller.
func (s *lessonPlanService) callerTeacher(ctx context.Context, caller *authz.Caller) (*models.Teacher, error) {
	teacher, err := s.repo.Teacher().GetByAccount(ctx, nil, caller.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewPermissionError(callerID(caller), "lesson_plan", "write", "no teacher profile linked to account")
		}
		return nil, err
	}
	return teacher, nil
}

func (s *lessonPlanService) Create(ctx context.Context, caller *authz.Caller, req LessonPlanRequest) (*models.LessonPlan, error) {
	if !authz.AnyOf(authz.IsSecretaria, authz.IsProfessor)(caller) {
		return nil, NewPermissionError(callerID(caller), "lesson_plan", "create", "requires Professor or Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	teacherID := req.TeacherID
	if caller.HasRole(models.RoleProfessor) && !authz.IsSecretaria(caller) {
		// Professors always author their own plans; a teacher_id in the
		// payload is ignored rather than trusted.
		teacher, err := s.callerTeacher(ctx, caller)
		if err != nil {
			return nil, err
		}
		teacherID = teacher.ID
	} else if teacherID == 0 {
		return nil, NewValidationError("teacher_id", "is required", teacherID)
	}

	plan := &models.LessonPlan{
		TeacherID:  teacherID,
		ClassGroup: req.ClassGroup,
		Shift:      req.Shift,
		Subject:    req.Subject,
		WeekStart:  req.WeekStart,
		Content:    req.Content,
	}
	if err := s.repo.LessonPlan().Create(ctx, nil, plan); err != nil {
		return nil, err
	}

	s.logger.Info("lesson plan created", "plan_id", plan.ID, "class_group", plan.ClassGroup)
	return plan, nil
}

func (s *lessonPlanService) Update(ctx context.Context, caller *authz.Caller, id uint, req LessonPlanRequest) (*models.LessonPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	plan, err := s.repo.LessonPlan().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.canEdit(ctx, caller, plan); err != nil {
		return nil, err
	}

	plan.ClassGroup = req.ClassGroup
	plan.Shift = req.Shift
	plan.Subject = req.Subject
	plan.WeekStart = req.WeekStart
	plan.Content = req.Content
	if err := s.repo.LessonPlan().Update(ctx, nil, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *lessonPlanService) canEdit(ctx context.Context, caller *authz.Caller, plan *models.LessonPlan) error {
	if authz.IsSecretaria(caller) {
		return nil
	}
	if !caller.HasRole(models.RoleProfessor) {
		return NewPermissionError(callerID(caller), "lesson_plan", "write", "requires Professor or Secretaria role")
	}
	teacher, err := s.callerTeacher(ctx, caller)
	if err != nil {
		return err
	}
	if plan.TeacherID != teacher.ID {
		return NewPermissionError(callerID(caller), "lesson_plan", "write", "plan belongs to another teacher")
	}
	return nil
}

func (s *lessonPlanService) Delete(ctx context.Context, caller *authz.Caller, id uint) error {
	plan, err := s.repo.LessonPlan().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.canEdit(ctx, caller, plan); err != nil {
		return err
	}
	return s.repo.LessonPlan().Delete(ctx, nil, id)
}

// Get is open to any authenticated caller. Professors are narrowed to their
// own plans: someone else's plan reads as not found, and a professor with no
// linked teacher profile sees nothing.
func (s *lessonPlanService) Get(ctx context.Context, caller *authz.Caller, id uint) (*models.LessonPlan, error) {
	if !authz.IsAuthenticated(caller) {
		return nil, ErrUnauthorized
	}
	plan, err := s.repo.LessonPlan().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if caller.HasRole(models.RoleProfessor) && !authz.IsStaff(caller) {
		teacher, err := s.repo.Teacher().GetByAccount(ctx, nil, caller.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if plan.TeacherID != teacher.ID {
			return nil, ErrNotFound
		}
	}

	return plan, nil
}

func (s *lessonPlanService) List(ctx context.Context, caller *authz.Caller, filters repositories.LessonPlanFilters) ([]*models.LessonPlan, int64, error) {
	if !authz.IsAuthenticated(caller) {
		return nil, 0, ErrUnauthorized
	}

	// Professors only list their own plans; no linked profile means an empty
	// list, not an error.
	if caller.HasRole(models.RoleProfessor) && !authz.IsStaff(caller) {
		teacher, err := s.repo.Teacher().GetByAccount(ctx, nil, caller.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []*models.LessonPlan{}, 0, nil
			}
			return nil, 0, err
		}
		filters.TeacherID = &teacher.ID
	}

	return s.repo.LessonPlan().List(ctx, nil, filters)
}

func (s *lessonPlanService) Options(ctx context.Context, caller *authz.Caller) (*LessonPlanOptions, error) {
	if !authz.IsAuthenticated(caller) {
		return nil, ErrUnauthorized
	}

	classGroups, shifts, err := s.repo.LessonPlan().Options(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &LessonPlanOptions{ClassGroups: classGroups, Shifts: shifts}, nil
}
