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

type studentService struct {
	repo      repositories.Repository
	scope     *scopeResolver
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewStudentService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, v *validator.Validator) StudentService {
	return &studentService{
		repo:      repo,
		scope:     newScopeResolver(repo),
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *studentService) Create(ctx context.Context, caller *authz.Caller, req CreateStudentRequest) (*models.Student, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "student", "create", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	if _, err := s.repo.Guardian().GetByID(ctx, nil, req.GuardianID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("guardian_id", "guardian does not exist", req.GuardianID)
		}
		return nil, err
	}

	student := &models.Student{
		Name:            req.Name,
		CPF:             req.CPF,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Birthday:        req.Birthday,
		GuardianID:      req.GuardianID,
		ClassGroup:      req.ClassGroup,
		EnrollmentMonth: req.EnrollmentMonth,
		SchoolYear:      req.SchoolYear,
		Active:          true,
	}
	if req.Active != nil {
		student.Active = *req.Active
	}

	if err := s.repo.Student().Create(ctx, nil, student); err != nil {
		return nil, err
	}

	s.logger.Info("student created", "student_id", student.ID, "class_group", student.ClassGroup)
	return student, nil
}

// fieldsAllowedFor returns the columns each restricted role may touch, keyed
// by the incoming JSON field name.
func fieldsAllowedFor(caller *authz.Caller) map[string]bool {
	switch {
	case authz.IsSecretaria(caller):
		return nil // unrestricted
	case caller.HasRole(models.RoleAuxiliar):
		return map[string]bool{"absences": true, "attendances": true}
	case caller.HasRole(models.RoleProfessor):
		return map[string]bool{"descriptive_comment": true}
	}
	return map[string]bool{}
}

// presentFields maps the JSON field names present in the update to their new
// column values.
func presentFields(req UpdateStudentRequest) map[string]interface{} {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.CPF != nil {
		fields["cpf"] = *req.CPF
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.PhoneNumber != nil {
		fields["phone_number"] = *req.PhoneNumber
	}
	if req.Birthday != nil {
		fields["birthday"] = *req.Birthday
	}
	if req.GuardianID != nil {
		fields["guardian_id"] = *req.GuardianID
	}
	if req.ClassGroup != nil {
		fields["class_group"] = *req.ClassGroup
	}
	if req.EnrollmentMonth != nil {
		fields["enrollment_month"] = *req.EnrollmentMonth
	}
	if req.SchoolYear != nil {
		fields["school_year"] = *req.SchoolYear
	}
	if req.Absences != nil {
		fields["absences"] = *req.Absences
	}
	if req.Attendances != nil {
		fields["attendances"] = *req.Attendances
	}
	if req.DescriptiveComment != nil {
		fields["descriptive_comment"] = *req.DescriptiveComment
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	return fields
}

// jsonFieldName maps column names back to the wire names used in rejections.
var jsonFieldName = map[string]string{
	"name":                "name",
	"cpf":                 "cpf",
	"email":               "email",
	"phone_number":        "phone_number",
	"birthday":            "birthday",
	"guardian_id":         "guardian_id",
	"class_group":         "class_choice",
	"enrollment_month":    "month_choice",
	"school_year":         "school_year",
	"absences":            "absences",
	"attendances":         "attendances",
	"descriptive_comment": "descriptive_comment",
	"active":              "active",
}

func (s *studentService) Update(ctx context.Context, caller *authz.Caller, id uint, req UpdateStudentRequest) (*models.Student, error) {
	if !authz.AnyOf(authz.IsSecretaria, authz.IsAuxiliar, authz.IsProfessor)(caller) {
		return nil, NewPermissionError(callerID(caller), "student", "update", "role may not edit students")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	student, err := s.repo.Student().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	// Teachers may only annotate students inside their own class groups.
	if caller.HasRole(models.RoleProfessor) && !authz.IsSecretaria(caller) {
		visible, err := s.scope.canSeeStudent(ctx, caller, student)
		if err != nil {
			return nil, err
		}
		if !visible {
			return nil, NewPermissionError(callerID(caller), "student", "update", "student outside your class groups")
		}
	}

	fields := presentFields(req)
	if len(fields) == 0 {
		return student, nil
	}

	if allowed := fieldsAllowedFor(caller); allowed != nil {
		for column := range fields {
			name := jsonFieldName[column]
			if !allowed[name] {
				return nil, NewPermissionError(callerID(caller), "student", "update",
					"field not editable by your role: "+name)
			}
		}
	}

	if guardianID, ok := fields["guardian_id"]; ok {
		if _, err := s.repo.Guardian().GetByID(ctx, nil, guardianID.(uint)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewValidationError("guardian_id", "guardian does not exist", guardianID)
			}
			return nil, err
		}
	}

	if err := s.repo.Student().UpdateFields(ctx, nil, id, fields); err != nil {
		return nil, err
	}

	updated, err := s.repo.Student().GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.TopicStudentUpdated, map[string]interface{}{
		"student_id": id,
		"updated_by": callerID(caller),
	}); err != nil {
		s.logger.Warn("failed to publish student update event", "error", err)
	}

	return updated, nil
}

func (s *studentService) Delete(ctx context.Context, caller *authz.Caller, id uint) error {
	if !authz.IsSecretaria(caller) {
		return NewPermissionError(callerID(caller), "student", "delete", "requires Secretaria role")
	}

	if _, err := s.repo.Student().GetByID(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	return s.repo.Student().Delete(ctx, nil, id)
}

func (s *studentService) Get(ctx context.Context, caller *authz.Caller, id uint) (*models.Student, error) {
	student, err := s.repo.Student().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	visible, err := s.scope.canSeeStudent(ctx, caller, student)
	if err != nil {
		return nil, err
	}
	if !visible {
		// Hidden rows read as missing so IDs cannot be enumerated.
		return nil, ErrStudentNotFound
	}

	return student, nil
}

func (s *studentService) List(ctx context.Context, caller *authz.Caller, filters repositories.StudentFilters) (*StudentListResponse, error) {
	scoped, ok, err := s.scope.studentFilters(ctx, caller, filters)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &StudentListResponse{Students: []*models.Student{}, Total: 0}, nil
	}

	students, total, err := s.repo.Student().List(ctx, nil, scoped)
	if err != nil {
		return nil, err
	}

	return &StudentListResponse{Students: students, Total: total}, nil
}
