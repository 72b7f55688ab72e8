package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/validator"
)

func newLessonPlanTestService(repo *fakeRepo) LessonPlanService {
	return NewLessonPlanService(repo, testLogger(), validator.New())
}

func TestLessonPlanReadOpenToAllRoles(t *testing.T) {
	fx := seedStudents(t)
	svc := newLessonPlanTestService(fx.repo)
	ctx := context.Background()

	// Students and guardians follow the plans of every class group.
	for _, role := range []models.RoleName{models.RoleAluno, models.RoleResponsavel, models.RoleAuxiliar} {
		plans, total, err := svc.List(ctx, newCaller(9, role), repositories.LessonPlanFilters{})
		if err != nil {
			t.Fatalf("%s list: %v", role, err)
		}
		if total != 1 || len(plans) != 1 {
			t.Errorf("%s: total = %d, want the seeded plan", role, total)
		}
	}

	plans, _, err := svc.List(ctx, newCaller(1, models.RoleSecretaria), repositories.LessonPlanFilters{})
	if err != nil || len(plans) == 0 {
		t.Fatalf("secretaria list: %v", err)
	}
	if _, err := svc.Get(ctx, newCaller(9, models.RoleAluno), plans[0].ID); err != nil {
		t.Errorf("aluno get: %v", err)
	}
}

func TestLessonPlanProfessorNarrowedToOwn(t *testing.T) {
	fx := seedStudents(t)
	ctx := context.Background()

	otherAccount := uint(60)
	other := &models.Teacher{Name: "Bruno Lima", AccountID: &otherAccount}
	if err := fx.repo.Teacher().Create(ctx, nil, other); err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	foreign := &models.LessonPlan{
		TeacherID:  other.ID,
		ClassGroup: "7B",
		WeekStart:  time.Now(),
		Content:    "Revolução Industrial",
	}
	if err := fx.repo.LessonPlan().Create(ctx, nil, foreign); err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	svc := newLessonPlanTestService(fx.repo)
	professor := newCaller(50, models.RoleProfessor)

	plans, total, err := svc.List(ctx, professor, repositories.LessonPlanFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(plans) != 1 || plans[0].TeacherID != fx.professor.ID {
		t.Fatalf("professor must list only own plans, got %d", total)
	}

	if _, err := svc.Get(ctx, professor, foreign.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign plan get: got %v, want ErrNotFound", err)
	}
}

func TestLessonPlanUnlinkedProfessorSeesNothing(t *testing.T) {
	fx := seedStudents(t)
	svc := newLessonPlanTestService(fx.repo)
	ctx := context.Background()

	// Professor role without a teacher profile: empty list, never an error.
	plans, total, err := svc.List(ctx, newCaller(99, models.RoleProfessor), repositories.LessonPlanFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 || len(plans) != 0 {
		t.Errorf("unlinked professor sees %d plans, want none", total)
	}
}

func TestLessonPlanOptionsAnyAuthenticated(t *testing.T) {
	fx := seedStudents(t)
	svc := newLessonPlanTestService(fx.repo)

	opts, err := svc.Options(context.Background(), newCaller(9, models.RoleAluno))
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	found := false
	for _, g := range opts.ClassGroups {
		if g == "6A" {
			found = true
		}
	}
	if !found {
		t.Errorf("class groups missing 6A: %v", opts.ClassGroups)
	}
}
