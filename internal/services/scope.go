package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/authz"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
)

// scopeResolver narrows queries to the rows a caller may see. Staff see
// everything, teachers see the class groups they have lesson plans for,
// guardians see their own children and students see themselves.
type scopeResolver struct {
	repo repositories.Repository
}

func newScopeResolver(repo repositories.Repository) *scopeResolver {
	return &scopeResolver{repo: repo}
}

// studentFilters merges the caller's visibility into the requested filters.
// ok is false when the caller legitimately sees no students at all, which is
// an empty result rather than an error.
func (s *scopeResolver) studentFilters(ctx context.Context, caller *authz.Caller, filters repositories.StudentFilters) (repositories.StudentFilters, bool, error) {
	if authz.IsStaff(caller) {
		return filters, true, nil
	}

	switch {
	case caller.HasRole(models.RoleProfessor):
		teacher, err := s.repo.Teacher().GetByAccount(ctx, nil, caller.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return filters, false, nil
			}
			return filters, false, err
		}
		groups, err := s.repo.LessonPlan().ClassGroupsForTeacher(ctx, nil, teacher.ID)
		if err != nil {
			return filters, false, err
		}
		if len(groups) == 0 {
			return filters, false, nil
		}
		filters.ClassGroups = intersectGroups(filters.ClassGroups, groups)
		if len(filters.ClassGroups) == 0 {
			return filters, false, nil
		}
		return filters, true, nil

	case caller.HasRole(models.RoleResponsavel):
		guardian, err := s.repo.Guardian().GetByAccount(ctx, nil, caller.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return filters, false, nil
			}
			return filters, false, err
		}
		filters.GuardianID = &guardian.ID
		return filters, true, nil

	case caller.HasRole(models.RoleAluno):
		student, err := s.repo.Student().GetByAccount(ctx, nil, caller.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return filters, false, nil
			}
			return filters, false, err
		}
		filters.StudentIDs = []uint{student.ID}
		return filters, true, nil
	}

	return filters, false, nil
}

// visibleStudentIDs resolves the concrete set of student IDs inside the
// caller's scope. unrestricted is true for staff, who need no ID list.
func (s *scopeResolver) visibleStudentIDs(ctx context.Context, caller *authz.Caller) (ids []uint, unrestricted bool, err error) {
	if authz.IsStaff(caller) {
		return nil, true, nil
	}

	filters, ok, err := s.studentFilters(ctx, caller, repositories.StudentFilters{})
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	students, _, err := s.repo.Student().List(ctx, nil, filters)
	if err != nil {
		return nil, false, err
	}

	ids = make([]uint, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	return ids, false, nil
}

// canSeeStudent reports whether one specific student falls inside the
// caller's scope.
func (s *scopeResolver) canSeeStudent(ctx context.Context, caller *authz.Caller, student *models.Student) (bool, error) {
	if authz.IsStaff(caller) {
		return true, nil
	}

	switch {
	case caller.HasRole(models.RoleProfessor):
		teacher, err := s.repo.Teacher().GetByAccount(ctx, nil, caller.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		groups, err := s.repo.LessonPlan().ClassGroupsForTeacher(ctx, nil, teacher.ID)
		if err != nil {
			return false, err
		}
		for _, g := range groups {
			if g == student.ClassGroup {
				return true, nil
			}
		}
		return false, nil

	case caller.HasRole(models.RoleResponsavel):
		guardian, err := s.repo.Guardian().GetByAccount(ctx, nil, caller.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		return student.GuardianID == guardian.ID, nil

	case caller.HasRole(models.RoleAluno):
		return student.AccountID != nil && *student.AccountID == caller.AccountID, nil
	}

	return false, nil
}

// restrictStudentIDs narrows a requested ID set to the visible set. An empty
// request means "everything visible".
func restrictStudentIDs(requested, visible []uint) []uint {
	if len(requested) == 0 {
		return visible
	}
	allowed := make(map[uint]bool, len(visible))
	for _, id := range visible {
		allowed[id] = true
	}
	out := make([]uint, 0, len(requested))
	for _, id := range requested {
		if allowed[id] {
			out = append(out, id)
		}
	}
	return out
}

func intersectGroups(requested, allowed []string) []string {
	if len(requested) == 0 {
		return allowed
	}
	set := make(map[string]bool, len(allowed))
	for _, g := range allowed {
		set[g] = true
	}
	out := make([]string, 0, len(requested))
	for _, g := range requested {
		if set[g] {
			out = append(out, g)
		}
	}
	return out
}
