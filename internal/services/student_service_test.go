package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/escola-viva/secretaria-service/internal/events"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/validator"
)

func newStudentService(repo *fakeRepo) StudentService {
	return NewStudentService(repo, events.NewMockPublisher(), testLogger(), validator.New())
}

type studentFixture struct {
	repo       *fakeRepo
	guardian   *models.Guardian
	inGroup    *models.Student
	outOfGroup *models.Student
	professor  *models.Teacher
}

// seedStudents builds a guardian with two children in different class groups
// and a teacher whose lesson plans cover only group "6A".
func seedStudents(t *testing.T) studentFixture {
	t.Helper()
	repo := newFakeRepo()
	ctx := context.Background()

	guardian := &models.Guardian{Name: "Maria Silva", Email: "maria@example.com"}
	if err := repo.Guardian().Create(ctx, nil, guardian); err != nil {
		t.Fatalf("seed guardian: %v", err)
	}

	inGroup := &models.Student{Name: "João Silva", GuardianID: guardian.ID, ClassGroup: "6A", Active: true}
	if err := repo.Student().Create(ctx, nil, inGroup); err != nil {
		t.Fatalf("seed student: %v", err)
	}
	outOfGroup := &models.Student{Name: "Pedro Silva", GuardianID: guardian.ID, ClassGroup: "7B", Active: true}
	if err := repo.Student().Create(ctx, nil, outOfGroup); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	teacherAccount := uint(50)
	professor := &models.Teacher{Name: "Ana Souza", AccountID: &teacherAccount}
	if err := repo.Teacher().Create(ctx, nil, professor); err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	if err := repo.LessonPlan().Create(ctx, nil, &models.LessonPlan{
		TeacherID:  professor.ID,
		ClassGroup: "6A",
		WeekStart:  time.Now(),
		Content:    "Frações",
	}); err != nil {
		t.Fatalf("seed lesson plan: %v", err)
	}

	return studentFixture{repo: repo, guardian: guardian, inGroup: inGroup, outOfGroup: outOfGroup, professor: professor}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestStudentCreate(t *testing.T) {
	fx := seedStudents(t)
	svc := newStudentService(fx.repo)
	ctx := context.Background()

	t.Run("secretaria creates", func(t *testing.T) {
		st, err := svc.Create(ctx, newCaller(1, models.RoleSecretaria), CreateStudentRequest{
			Name:       "Clara Souza",
			GuardianID: fx.guardian.ID,
			ClassGroup: "6A",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if !st.Active {
			t.Error("students default to active")
		}
	})

	t.Run("unknown guardian rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, newCaller(1, models.RoleSecretaria), CreateStudentRequest{
			Name:       "Sem Responsável",
			GuardianID: 9999,
		})
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("got %v, want validation failure", err)
		}
	})

	t.Run("auxiliar forbidden", func(t *testing.T) {
		_, err := svc.Create(ctx, newCaller(2, models.RoleAuxiliar), CreateStudentRequest{
			Name:       "Sem Permissão",
			GuardianID: fx.guardian.ID,
		})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})
}

func TestStudentUpdateFieldRestrictions(t *testing.T) {
	tests := []struct {
		name      string
		caller    []models.RoleName
		req       UpdateStudentRequest
		wantErr   error
		wantField string
	}{
		{
			name:   "secretaria edits anything",
			caller: []models.RoleName{models.RoleSecretaria},
			req:    UpdateStudentRequest{Name: strPtr("João Pedro Silva"), ClassGroup: strPtr("6B")},
		},
		{
			name:   "auxiliar edits attendance counters",
			caller: []models.RoleName{models.RoleAuxiliar},
			req:    UpdateStudentRequest{Absences: intPtr(3), Attendances: intPtr(42)},
		},
		{
			name:    "auxiliar blocked from name",
			caller:  []models.RoleName{models.RoleAuxiliar},
			req:     UpdateStudentRequest{Name: strPtr("Outro Nome")},
			wantErr: ErrForbidden,
		},
		{
			name:    "auxiliar blocked from class group",
			caller:  []models.RoleName{models.RoleAuxiliar},
			req:     UpdateStudentRequest{ClassGroup: strPtr("9C")},
			wantErr: ErrForbidden,
		},
		{
			name:   "professor edits descriptive comment",
			caller: []models.RoleName{models.RoleProfessor},
			req:    UpdateStudentRequest{DescriptiveComment: strPtr("Ótimo progresso em leitura.")},
		},
		{
			name:    "professor blocked from absences",
			caller:  []models.RoleName{models.RoleProfessor},
			req:     UpdateStudentRequest{Absences: intPtr(1)},
			wantErr: ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := seedStudents(t)
			svc := newStudentService(fx.repo)
			caller := newCaller(50, tt.caller...)

			_, err := svc.Update(context.Background(), caller, fx.inGroup.ID, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("update: %v", err)
			}
		})
	}
}

func TestStudentUpdateProfessorScope(t *testing.T) {
	fx := seedStudents(t)
	svc := newStudentService(fx.repo)
	professor := newCaller(50, models.RoleProfessor)
	comment := UpdateStudentRequest{DescriptiveComment: strPtr("Participa bem das aulas.")}

	if _, err := svc.Update(context.Background(), professor, fx.inGroup.ID, comment); err != nil {
		t.Fatalf("own class group: %v", err)
	}
	_, err := svc.Update(context.Background(), professor, fx.outOfGroup.ID, comment)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign class group: got %v, want ErrForbidden", err)
	}
}

func TestStudentUpdateRoleGate(t *testing.T) {
	fx := seedStudents(t)
	svc := newStudentService(fx.repo)

	_, err := svc.Update(context.Background(), newCaller(7, models.RoleResponsavel), fx.inGroup.ID, UpdateStudentRequest{
		Name: strPtr("Tentativa"),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
}

func TestStudentGetScoping(t *testing.T) {
	fx := seedStudents(t)
	ctx := context.Background()

	// Link a login to the first student so the Aluno role can resolve.
	studentAccount := uint(60)
	fx.inGroup.AccountID = &studentAccount
	if err := fx.repo.Student().Update(ctx, nil, fx.inGroup); err != nil {
		t.Fatalf("link account: %v", err)
	}
	svc := newStudentService(fx.repo)

	t.Run("student sees self", func(t *testing.T) {
		if _, err := svc.Get(ctx, newCaller(60, models.RoleAluno), fx.inGroup.ID); err != nil {
			t.Errorf("self: %v", err)
		}
	})

	t.Run("student cannot read siblings", func(t *testing.T) {
		_, err := svc.Get(ctx, newCaller(60, models.RoleAluno), fx.outOfGroup.ID)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("professor limited to own groups", func(t *testing.T) {
		professor := newCaller(50, models.RoleProfessor)
		if _, err := svc.Get(ctx, professor, fx.inGroup.ID); err != nil {
			t.Errorf("in group: %v", err)
		}
		if _, err := svc.Get(ctx, professor, fx.outOfGroup.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("out of group: got %v, want ErrNotFound", err)
		}
	})
}

func TestStudentListScoping(t *testing.T) {
	fx := seedStudents(t)
	ctx := context.Background()

	guardianAccount := uint(70)
	fx.guardian.AccountID = &guardianAccount
	if err := fx.repo.Guardian().Update(ctx, nil, fx.guardian); err != nil {
		t.Fatalf("link guardian account: %v", err)
	}
	svc := newStudentService(fx.repo)

	t.Run("staff sees everyone", func(t *testing.T) {
		resp, err := svc.List(ctx, newCaller(1, models.RoleAuxiliar), repositories.StudentFilters{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if resp.Total != 2 {
			t.Errorf("total = %d, want 2", resp.Total)
		}
	})

	t.Run("professor sees own groups only", func(t *testing.T) {
		resp, err := svc.List(ctx, newCaller(50, models.RoleProfessor), repositories.StudentFilters{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if resp.Total != 1 || resp.Students[0].ID != fx.inGroup.ID {
			t.Errorf("professor scope leaked: total=%d", resp.Total)
		}
	})

	t.Run("guardian sees own children", func(t *testing.T) {
		resp, err := svc.List(ctx, newCaller(70, models.RoleResponsavel), repositories.StudentFilters{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if resp.Total != 2 {
			t.Errorf("total = %d, want both children", resp.Total)
		}
	})

	t.Run("unplaced role sees nothing", func(t *testing.T) {
		resp, err := svc.List(ctx, newCaller(99, models.RoleAluno), repositories.StudentFilters{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if resp.Total != 0 {
			t.Errorf("total = %d, want 0", resp.Total)
		}
	})
}
