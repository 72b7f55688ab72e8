package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/escola-viva/secretaria-service/internal/events"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/validator"
)

func newReservationFixture(t *testing.T) (*fakeRepo, *reservationService, *models.Room) {
	t.Helper()
	repo := newFakeRepo()
	svc := NewReservationService(repo, events.NewMockPublisher(), testLogger(), validator.New()).(*reservationService)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	room := &models.Room{Name: "Laboratório", Capacity: 30}
	if err := repo.Room().Create(context.Background(), nil, room); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return repo, svc, room
}

func reservationOn(room uint, day, start, end string) ReservationRequest {
	date, _ := time.Parse("2006-01-02", day)
	return ReservationRequest{
		RoomID:    room,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Purpose:   "aula prática",
	}
}

func TestRoomManagement(t *testing.T) {
	_, svc, _ := newReservationFixture(t)
	ctx := context.Background()

	t.Run("create requires secretaria", func(t *testing.T) {
		_, err := svc.CreateRoom(ctx, newCaller(2, models.RoleProfessor), RoomRequest{Name: "Quadra"})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("create with resources", func(t *testing.T) {
		room, err := svc.CreateRoom(ctx, newCaller(1, models.RoleSecretaria), RoomRequest{
			Name:      "Sala de Vídeo",
			Capacity:  25,
			Resources: []string{"projetor", "caixas de som"},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if !strings.Contains(string(room.Resources), "projetor") {
			t.Error("resources not serialized")
		}
	})

	t.Run("any authenticated caller lists", func(t *testing.T) {
		rooms, err := svc.ListRooms(ctx, newCaller(3, models.RoleAluno))
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(rooms) == 0 {
			t.Error("expected seeded rooms")
		}
	})

	t.Run("update unknown room", func(t *testing.T) {
		_, err := svc.UpdateRoom(ctx, newCaller(1, models.RoleSecretaria), 9999, RoomRequest{Name: "Fantasma"})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}

func TestReservationCreateConflicts(t *testing.T) {
	_, svc, room := newReservationFixture(t)
	ctx := context.Background()
	secretaria := newCaller(1, models.RoleSecretaria)

	if _, err := svc.Create(ctx, secretaria, reservationOn(room.ID, "2026-03-10", "08:00", "10:00")); err != nil {
		t.Fatalf("first reservation: %v", err)
	}

	tests := []struct {
		name       string
		start, end string
		wantErr    bool
	}{
		{name: "inside held window", start: "08:30", end: "09:30", wantErr: true},
		{name: "overlaps start", start: "07:00", end: "08:30", wantErr: true},
		{name: "overlaps end", start: "09:30", end: "11:00", wantErr: true},
		{name: "covers held window", start: "07:00", end: "11:00", wantErr: true},
		{name: "touching before is free", start: "07:00", end: "08:00"},
		{name: "touching after is free", start: "10:00", end: "11:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, secretaria, reservationOn(room.ID, "2026-03-10", tt.start, tt.end))
			if tt.wantErr {
				if !errors.Is(err, ErrValidationFailed) {
					t.Fatalf("got %v, want conflict validation error", err)
				}
				if !strings.Contains(err.Error(), "já reservada") {
					t.Errorf("conflict message missing occupied window: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected free slot: %v", err)
			}
		})
	}

	t.Run("same window on another day is free", func(t *testing.T) {
		if _, err := svc.Create(ctx, secretaria, reservationOn(room.ID, "2026-03-11", "08:00", "10:00")); err != nil {
			t.Fatalf("different day: %v", err)
		}
	})
}

func TestReservationWindowValidation(t *testing.T) {
	_, svc, room := newReservationFixture(t)
	ctx := context.Background()
	secretaria := newCaller(1, models.RoleSecretaria)

	tests := []struct {
		name       string
		start, end string
	}{
		{name: "end before start", start: "10:00", end: "09:00"},
		{name: "zero-length window", start: "10:00", end: "10:00"},
		{name: "malformed start", start: "8h00", end: "10:00"},
		{name: "out-of-range hour", start: "25:00", end: "26:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, secretaria, reservationOn(room.ID, "2026-03-10", tt.start, tt.end))
			if !errors.Is(err, ErrValidationFailed) {
				t.Errorf("got %v, want validation failure", err)
			}
		})
	}
}

func TestReservationRoleGate(t *testing.T) {
	_, svc, room := newReservationFixture(t)
	ctx := context.Background()

	// Only teachers and the office book rooms; the administrative assistant
	// handles the library, not reservations.
	for _, role := range []models.RoleName{models.RoleAluno, models.RoleResponsavel, models.RoleAuxiliar} {
		_, err := svc.Create(ctx, newCaller(9, role), reservationOn(room.ID, "2026-03-10", "08:00", "09:00"))
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("%s: got %v, want ErrForbidden", role, err)
		}
	}
}

func TestReservationUnknownRoom(t *testing.T) {
	_, svc, _ := newReservationFixture(t)
	_, err := svc.Create(context.Background(), newCaller(1, models.RoleSecretaria), reservationOn(9999, "2026-03-10", "08:00", "09:00"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestProfessorReservationQuota(t *testing.T) {
	_, svc, room := newReservationFixture(t)
	ctx := context.Background()
	professor := newCaller(5, models.RoleProfessor)

	if _, err := svc.Create(ctx, professor, reservationOn(room.ID, "2026-03-10", "08:00", "09:00")); err != nil {
		t.Fatalf("first reservation: %v", err)
	}

	_, err := svc.Create(ctx, professor, reservationOn(room.ID, "2026-03-11", "08:00", "09:00"))
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("second future reservation: got %v, want quota rejection", err)
	}
	if !strings.Contains(err.Error(), "reserva futura") {
		t.Errorf("quota message: %v", err)
	}

	// The office books freely even when the account also teaches.
	dual := newCaller(6, models.RoleProfessor, models.RoleSecretaria)
	for _, day := range []string{"2026-03-12", "2026-03-13"} {
		if _, err := svc.Create(ctx, dual, reservationOn(room.ID, day, "08:00", "09:00")); err != nil {
			t.Fatalf("secretaria exempt from quota: %v", err)
		}
	}
}

func TestProfessorQuotaIgnoresPastReservations(t *testing.T) {
	repo, svc, room := newReservationFixture(t)
	ctx := context.Background()
	professor := newCaller(5, models.RoleProfessor)

	past := &models.Reservation{
		RoomID:    room.ID,
		AccountID: professor.AccountID,
		Date:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "08:00",
		EndTime:   "09:00",
	}
	if err := repo.Reservation().Create(ctx, nil, past); err != nil {
		t.Fatalf("seed past reservation: %v", err)
	}

	if _, err := svc.Create(ctx, professor, reservationOn(room.ID, "2026-03-10", "08:00", "09:00")); err != nil {
		t.Fatalf("past reservations should not count: %v", err)
	}
}

func TestReservationListScoping(t *testing.T) {
	repo, svc, room := newReservationFixture(t)
	ctx := context.Background()
	secretaria := newCaller(1, models.RoleSecretaria)
	professor := newCaller(5, models.RoleProfessor)

	if _, err := svc.Create(ctx, secretaria, reservationOn(room.ID, "2026-03-10", "08:00", "09:00")); err != nil {
		t.Fatalf("secretaria reservation: %v", err)
	}
	if _, err := svc.Create(ctx, professor, reservationOn(room.ID, "2026-03-10", "10:00", "11:00")); err != nil {
		t.Fatalf("professor reservation: %v", err)
	}
	past := &models.Reservation{
		RoomID:    room.ID,
		AccountID: professor.AccountID,
		Date:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "08:00",
		EndTime:   "09:00",
	}
	if err := repo.Reservation().Create(ctx, nil, past); err != nil {
		t.Fatalf("seed past reservation: %v", err)
	}

	t.Run("secretaria sees all dates and owners", func(t *testing.T) {
		_, total, err := svc.List(ctx, secretaria, repositories.ReservationFilters{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
	})

	t.Run("professor sees only own upcoming reservations", func(t *testing.T) {
		out, total, err := svc.List(ctx, professor, repositories.ReservationFilters{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 1 || len(out) != 1 {
			t.Fatalf("total = %d, want only the professor's future reservation", total)
		}
		if out[0].AccountID != professor.AccountID {
			t.Errorf("leaked reservation of account %d", out[0].AccountID)
		}
		if out[0].Date.Before(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("past reservation leaked: %s", out[0].Date.Format("2006-01-02"))
		}
	})

	t.Run("other roles see nothing", func(t *testing.T) {
		for _, role := range []models.RoleName{models.RoleAluno, models.RoleResponsavel, models.RoleAuxiliar} {
			out, total, err := svc.List(ctx, newCaller(9, role), repositories.ReservationFilters{})
			if err != nil {
				t.Fatalf("%s: %v", role, err)
			}
			if total != 0 || len(out) != 0 {
				t.Errorf("%s sees %d reservations, want none", role, total)
			}
		}
	})
}

func TestReservationDateFollowsClientTimezone(t *testing.T) {
	_, svc, room := newReservationFixture(t)
	ctx := context.Background()

	// A late-evening booking from a UTC-3 client stays on the client's
	// calendar day instead of rolling over to the next UTC day.
	brt := time.FixedZone("BRT", -3*60*60)
	created, err := svc.Create(ctx, newCaller(1, models.RoleSecretaria), ReservationRequest{
		RoomID:    room.ID,
		Date:      time.Date(2026, 3, 10, 23, 30, 0, 0, brt),
		StartTime: "08:00",
		EndTime:   "09:00",
		Purpose:   "reunião de pais",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := created.Date.Format("2006-01-02"); got != "2026-03-10" {
		t.Errorf("date = %s, want 2026-03-10", got)
	}
}

func TestReservationUpdateExcludesSelf(t *testing.T) {
	_, svc, room := newReservationFixture(t)
	ctx := context.Background()
	secretaria := newCaller(1, models.RoleSecretaria)

	created, err := svc.Create(ctx, secretaria, reservationOn(room.ID, "2026-03-10", "08:00", "10:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Shrinking the window overlaps the reservation's own row; that must not
	// count as a conflict.
	updated, err := svc.Update(ctx, secretaria, created.ID, reservationOn(room.ID, "2026-03-10", "08:30", "09:30"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.StartTime != "08:30" || updated.EndTime != "09:30" {
		t.Errorf("window not updated: %s-%s", updated.StartTime, updated.EndTime)
	}
}

func TestReservationOwnership(t *testing.T) {
	_, svc, room := newReservationFixture(t)
	ctx := context.Background()
	owner := newCaller(5, models.RoleProfessor)

	created, err := svc.Create(ctx, owner, reservationOn(room.ID, "2026-03-10", "08:00", "09:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Editing is an office action: not even the owning professor may update.
	if _, err := svc.Update(ctx, owner, created.ID, reservationOn(room.ID, "2026-03-11", "08:00", "09:00")); !errors.Is(err, ErrForbidden) {
		t.Errorf("owner update: got %v, want ErrForbidden", err)
	}

	other := newCaller(6, models.RoleProfessor)
	if _, err := svc.Update(ctx, other, created.ID, reservationOn(room.ID, "2026-03-10", "09:00", "10:00")); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign update: got %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, other, created.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign delete: got %v, want ErrForbidden", err)
	}

	// Secretaria manages anyone's reservation; the owner may delete their own.
	if _, err := svc.Update(ctx, newCaller(1, models.RoleSecretaria), created.ID, reservationOn(room.ID, "2026-03-10", "10:00", "11:00")); err != nil {
		t.Errorf("secretaria update: %v", err)
	}
	if err := svc.Delete(ctx, owner, created.ID); err != nil {
		t.Errorf("owner delete: %v", err)
	}
}
