package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/authz"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/validator"
)

type academicService struct {
	repo      repositories.Repository
	scope     *scopeResolver
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAcademicService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) AcademicService {
	return &academicService{
		repo:      repo,
		scope:     newScopeResolver(repo),
		logger:    logger,
		validator: v,
	}
}

// ===== TERMS =====

func (s *academicService) CreateTerm(ctx context.Context, caller *authz.Caller, req TermRequest) (*models.Term, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "term", "create", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	term := &models.Term{Name: req.Name, SchoolYear: req.SchoolYear, Order: req.Order}
	if err := s.repo.Term().Create(ctx, nil, term); err != nil {
		return nil, err
	}
	return term, nil
}

func (s *academicService) UpdateTerm(ctx context.Context, caller *authz.Caller, id uint, req TermRequest) (*models.Term, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "term", "update", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	term, err := s.repo.Term().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	term.Name = req.Name
	term.SchoolYear = req.SchoolYear
	term.Order = req.Order
	if err := s.repo.Term().Update(ctx, nil, term); err != nil {
		return nil, err
	}
	return term, nil
}

func (s *academicService) DeleteTerm(ctx context.Context, caller *authz.Caller, id uint) error {
	if !authz.IsSecretaria(caller) {
		return NewPermissionError(callerID(caller), "term", "delete", "requires Secretaria role")
	}
	return s.repo.Term().Delete(ctx, nil, id)
}

func (s *academicService) ListTerms(ctx context.Context, caller *authz.Caller, schoolYear string) ([]*models.Term, error) {
	if !authz.IsAuthenticated(caller) {
		return nil, ErrUnauthorized
	}
	return s.repo.Term().List(ctx, nil, schoolYear)
}

// ===== GRADES =====

// gradeAuthor resolves the teacher profile behind a professor caller and
// checks the subject constraint: teachers only author grades in their own
// subject.
func (s *academicService) gradeAuthor(ctx context.Context, caller *authz.Caller, studentID uint, subject string) error {
	if authz.IsSecretaria(caller) {
		return nil
	}
	if !caller.HasRole(models.RoleProfessor) {
		return NewPermissionError(callerID(caller), "grade", "write", "requires Professor or Secretaria role")
	}

	teacher, err := s.repo.Teacher().GetByAccount(ctx, nil, caller.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewPermissionError(callerID(caller), "grade", "write", "no teacher profile linked to account")
		}
		return err
	}
	if teacher.Subject != "" && teacher.Subject != subject {
		return NewPermissionError(callerID(caller), "grade", "write", "subject outside your assignment")
	}

	student, err := s.repo.Student().GetByID(ctx, nil, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	visible, err := s.scope.canSeeStudent(ctx, caller, student)
	if err != nil {
		return err
	}
	if !visible {
		return NewPermissionError(callerID(caller), "grade", "write", "student outside your class groups")
	}
	return nil
}

func (s *academicService) CreateGrade(ctx context.Context, caller *authz.Caller, req GradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}
	if err := s.gradeAuthor(ctx, caller, req.StudentID, req.Subject); err != nil {
		return nil, err
	}

	if _, err := s.repo.Term().GetByID(ctx, nil, req.TermID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("term_id", "term does not exist", req.TermID)
		}
		return nil, err
	}

	grade := &models.Grade{
		StudentID: req.StudentID,
		TermID:    req.TermID,
		Subject:   req.Subject,
		Value:     req.Value,
	}
	if err := s.repo.Grade().Create(ctx, nil, grade); err != nil {
		return nil, err
	}
	return grade, nil
}

func (s *academicService) UpdateGrade(ctx context.Context, caller *authz.Caller, id uint, req GradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	grade, err := s.repo.Grade().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.gradeAuthor(ctx, caller, grade.StudentID, grade.Subject); err != nil {
		return nil, err
	}

	grade.TermID = req.TermID
	grade.Subject = req.Subject
	grade.Value = req.Value
	if err := s.repo.Grade().Update(ctx, nil, grade); err != nil {
		return nil, err
	}
	return grade, nil
}

func (s *academicService) DeleteGrade(ctx context.Context, caller *authz.Caller, id uint) error {
	grade, err := s.repo.Grade().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.deleteScoped(ctx, caller, grade.StudentID, grade.Subject, func() error {
		return s.repo.Grade().Delete(ctx, nil, id)
	})
}

func (s *academicService) deleteScoped(ctx context.Context, caller *authz.Caller, studentID uint, subject string, del func() error) error {
	if err := s.gradeAuthor(ctx, caller, studentID, subject); err != nil {
		return err
	}
	return del()
}

func (s *academicService) ListGrades(ctx context.Context, caller *authz.Caller, filters repositories.GradeFilters) ([]*models.Grade, int64, error) {
	ids, unrestricted, err := s.scope.visibleStudentIDs(ctx, caller)
	if err != nil {
		return nil, 0, err
	}
	if !unrestricted {
		filters.StudentIDs = restrictStudentIDs(filters.StudentIDs, ids)
		if len(filters.StudentIDs) == 0 {
			return []*models.Grade{}, 0, nil
		}
	}

	// Teachers only see grades of their own subject, on top of the class-group
	// narrowing above.
	if caller.HasRole(models.RoleProfessor) && !authz.IsStaff(caller) {
		teacher, err := s.repo.Teacher().GetByAccount(ctx, nil, caller.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []*models.Grade{}, 0, nil
			}
			return nil, 0, err
		}
		if teacher.Subject != "" {
			if filters.Subject != nil && *filters.Subject != teacher.Subject {
				return []*models.Grade{}, 0, nil
			}
			filters.Subject = &teacher.Subject
		}
	}

	return s.repo.Grade().List(ctx, nil, filters)
}

// ===== PENDING TASKS =====

func (s *academicService) taskAuthor(ctx context.Context, caller *authz.Caller, studentID uint) error {
	if authz.IsSecretaria(caller) {
		return nil
	}
	if !caller.HasRole(models.RoleProfessor) {
		return NewPermissionError(callerID(caller), "pending_task", "write", "requires Professor or Secretaria role")
	}

	student, err := s.repo.Student().GetByID(ctx, nil, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	visible, err := s.scope.canSeeStudent(ctx, caller, student)
	if err != nil {
		return err
	}
	if !visible {
		return NewPermissionError(callerID(caller), "pending_task", "write", "student outside your class groups")
	}
	return nil
}

func (s *academicService) CreatePendingTask(ctx context.Context, caller *authz.Caller, req PendingTaskRequest) (*models.PendingTask, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}
	if err := s.taskAuthor(ctx, caller, req.StudentID); err != nil {
		return nil, err
	}

	task := &models.PendingTask{
		StudentID:   req.StudentID,
		Subject:     req.Subject,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Done != nil {
		task.Done = *req.Done
	}
	if err := s.repo.PendingTask().Create(ctx, nil, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *academicService) UpdatePendingTask(ctx context.Context, caller *authz.Caller, id uint, req PendingTaskRequest) (*models.PendingTask, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	task, err := s.repo.PendingTask().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.taskAuthor(ctx, caller, task.StudentID); err != nil {
		return nil, err
	}

	task.Subject = req.Subject
	task.Description = req.Description
	task.DueDate = req.DueDate
	if req.Done != nil {
		task.Done = *req.Done
	}
	if err := s.repo.PendingTask().Update(ctx, nil, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *academicService) DeletePendingTask(ctx context.Context, caller *authz.Caller, id uint) error {
	task, err := s.repo.PendingTask().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.taskAuthor(ctx, caller, task.StudentID); err != nil {
		return err
	}
	return s.repo.PendingTask().Delete(ctx, nil, id)
}

func (s *academicService) ListPendingTasks(ctx context.Context, caller *authz.Caller, filters repositories.StudentScopedFilters) ([]*models.PendingTask, int64, error) {
	ids, unrestricted, err := s.scope.visibleStudentIDs(ctx, caller)
	if err != nil {
		return nil, 0, err
	}
	if !unrestricted {
		filters.StudentIDs = restrictStudentIDs(filters.StudentIDs, ids)
		if len(filters.StudentIDs) == 0 {
			return []*models.PendingTask{}, 0, nil
		}
	}
	return s.repo.PendingTask().List(ctx, nil, filters)
}

// ===== WARNINGS =====

func (s *academicService) CreateWarning(ctx context.Context, caller *authz.Caller, req WarningRequest) (*models.Warning, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "warning", "create", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	issuedAt := req.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	warning := &models.Warning{
		StudentID: req.StudentID,
		Reason:    req.Reason,
		IssuedAt:  issuedAt,
	}
	if err := s.repo.Warning().Create(ctx, nil, warning); err != nil {
		return nil, err
	}
	return warning, nil
}

func (s *academicService) DeleteWarning(ctx context.Context, caller *authz.Caller, id uint) error {
	if !authz.IsSecretaria(caller) {
		return NewPermissionError(callerID(caller), "warning", "delete", "requires Secretaria role")
	}
	return s.repo.Warning().Delete(ctx, nil, id)
}

func (s *academicService) ListWarnings(ctx context.Context, caller *authz.Caller, filters repositories.StudentScopedFilters) ([]*models.Warning, int64, error) {
	ids, unrestricted, err := s.scope.visibleStudentIDs(ctx, caller)
	if err != nil {
		return nil, 0, err
	}
	if !unrestricted {
		filters.StudentIDs = restrictStudentIDs(filters.StudentIDs, ids)
		if len(filters.StudentIDs) == 0 {
			return []*models.Warning{}, 0, nil
		}
	}
	return s.repo.Warning().List(ctx, nil, filters)
}

// ===== SUSPENSIONS =====

func (s *academicService) CreateSuspension(ctx context.Context, caller *authz.Caller, req SuspensionRequest) (*models.Suspension, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "suspension", "create", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, NewValidationError("end_date", "must not be before start_date", req.EndDate)
	}

	suspension := &models.Suspension{
		StudentID: req.StudentID,
		Reason:    req.Reason,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.repo.Suspension().Create(ctx, nil, suspension); err != nil {
		return nil, err
	}
	return suspension, nil
}

func (s *academicService) DeleteSuspension(ctx context.Context, caller *authz.Caller, id uint) error {
	if !authz.IsSecretaria(caller) {
		return NewPermissionError(callerID(caller), "suspension", "delete", "requires Secretaria role")
	}
	return s.repo.Suspension().Delete(ctx, nil, id)
}

func (s *academicService) ListSuspensions(ctx context.Context, caller *authz.Caller, filters repositories.StudentScopedFilters) ([]*models.Suspension, int64, error) {
	ids, unrestricted, err := s.scope.visibleStudentIDs(ctx, caller)
	if err != nil {
		return nil, 0, err
	}
	if !unrestricted {
		filters.StudentIDs = restrictStudentIDs(filters.StudentIDs, ids)
		if len(filters.StudentIDs) == 0 {
			return []*models.Suspension{}, 0, nil
		}
	}
	return s.repo.Suspension().List(ctx, nil, filters)
}
