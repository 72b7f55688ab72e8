package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/authz"
	"github.com/escola-viva/secretaria-service/internal/events"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/validator"
)

type reservationService struct {
	repo      repositories.Repository
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewReservationService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, v *validator.Validator) ReservationService {
	return &reservationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
		now:       time.Now,
	}
}

// ===== ROOMS =====

func (s *reservationService) CreateRoom(ctx context.Context, caller *authz.Caller, req RoomRequest) (*models.Room, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "room", "create", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	resources, err := json.Marshal(req.Resources)
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		Name:      req.Name,
		Capacity:  req.Capacity,
		Resources: resources,
	}
	if err := s.repo.Room().Create(ctx, nil, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *reservationService) UpdateRoom(ctx context.Context, caller *authz.Caller, id uint, req RoomRequest) (*models.Room, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "room", "update", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	room, err := s.repo.Room().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	resources, err := json.Marshal(req.Resources)
	if err != nil {
		return nil, err
	}

	room.Name = req.Name
	room.Capacity = req.Capacity
	room.Resources = resources
	if err := s.repo.Room().Update(ctx, nil, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *reservationService) DeleteRoom(ctx context.Context, caller *authz.Caller, id uint) error {
	if !authz.IsSecretaria(caller) {
		return NewPermissionError(callerID(caller), "room", "delete", "requires Secretaria role")
	}
	return s.repo.Room().Delete(ctx, nil, id)
}

func (s *reservationService) ListRooms(ctx context.Context, caller *authz.Caller) ([]*models.Room, error) {
	if !authz.IsAuthenticated(caller) {
		return nil, ErrUnauthorized
	}
	return s.repo.Room().List(ctx, nil)
}

// ===== RESERVATIONS =====

// validateWindow checks the time window itself, before any database work.
func validateWindow(req ReservationRequest) error {
	if req.EndTime <= req.StartTime {
		return NewValidationError("end_time", "must be after start_time", req.EndTime)
	}
	return nil
}

// dateOnly normalizes a timestamp to its calendar day in the timestamp's own
// location. Truncating on absolute 24h boundaries would shift late-evening
// bookings from non-UTC clients onto the previous day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// conflictError names the room and each occupied window so the caller can
// pick another slot without a second request.
func conflictError(roomName string, conflicts []*models.Reservation) error {
	first := conflicts[0]
	return NewValidationError("start_time",
		fmt.Sprintf("sala %s já reservada das %s às %s", roomName, first.StartTime, first.EndTime),
		first.Date.Format("2006-01-02"))
}

func (s *reservationService) Create(ctx context.Context, caller *authz.Caller, req ReservationRequest) (*models.Reservation, error) {
	if !authz.AnyOf(authz.IsSecretaria, authz.IsProfessor)(caller) {
		return nil, NewPermissionError(callerID(caller), "reservation", "create", "requires Professor or Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}
	if err := validateWindow(req); err != nil {
		return nil, err
	}

	date := dateOnly(req.Date)
	reservation := &models.Reservation{
		RoomID:    req.RoomID,
		AccountID: caller.AccountID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		room, err := txRepo.Room().GetByID(ctx, nil, req.RoomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		// Teachers hold at most one reservation from today onward.
		// Secretaria is exempt so the office can book on anyone's behalf.
		if caller.HasRole(models.RoleProfessor) && !authz.IsSecretaria(caller) {
			today := dateOnly(s.now())
			open, err := txRepo.Reservation().CountFutureByAccount(ctx, nil, caller.AccountID, today)
			if err != nil {
				return err
			}
			if open >= 1 {
				return NewValidationError("date", "você já possui uma reserva futura", nil)
			}
		}

		conflicts, err := txRepo.Reservation().FindConflicts(ctx, nil, req.RoomID, date, req.StartTime, req.EndTime, 0)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return conflictError(room.Name, conflicts)
		}

		return txRepo.Reservation().Create(ctx, nil, reservation)
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.TopicReservationCreated, map[string]interface{}{
		"reservation_id": reservation.ID,
		"room_id":        reservation.RoomID,
		"account_id":     reservation.AccountID,
	}); err != nil {
		s.logger.Warn("failed to publish reservation event", "error", err)
	}

	return reservation, nil
}

// Update is restricted to Secretaria: teachers create and cancel their own
// reservations but never edit them in place.
func (s *reservationService) Update(ctx context.Context, caller *authz.Caller, id uint, req ReservationRequest) (*models.Reservation, error) {
	if !authz.IsSecretaria(caller) {
		return nil, NewPermissionError(callerID(caller), "reservation", "update", "requires Secretaria role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}
	if err := validateWindow(req); err != nil {
		return nil, err
	}

	reservation, err := s.repo.Reservation().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	date := dateOnly(req.Date)
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		room, err := txRepo.Room().GetByID(ctx, nil, req.RoomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		conflicts, err := txRepo.Reservation().FindConflicts(ctx, nil, req.RoomID, date, req.StartTime, req.EndTime, id)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return conflictError(room.Name, conflicts)
		}

		reservation.RoomID = req.RoomID
		reservation.Date = date
		reservation.StartTime = req.StartTime
		reservation.EndTime = req.EndTime
		reservation.Purpose = req.Purpose
		return txRepo.Reservation().Update(ctx, nil, reservation)
	})
	if err != nil {
		return nil, err
	}

	return reservation, nil
}

func (s *reservationService) Delete(ctx context.Context, caller *authz.Caller, id uint) error {
	reservation, err := s.repo.Reservation().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReservationNotFound
		}
		return err
	}

	if !authz.IsSecretaria(caller) && reservation.AccountID != callerID(caller) {
		return NewPermissionError(callerID(caller), "reservation", "delete", "reservation belongs to another account")
	}

	return s.repo.Reservation().Delete(ctx, nil, id)
}

// List narrows the collection to the caller's scope: Secretaria sees every
// reservation, a Professor sees only their own from today onward, and other
// roles see nothing.
func (s *reservationService) List(ctx context.Context, caller *authz.Caller, filters repositories.ReservationFilters) ([]*models.Reservation, int64, error) {
	if !authz.IsAuthenticated(caller) {
		return nil, 0, ErrUnauthorized
	}

	switch {
	case authz.IsSecretaria(caller):
		// unrestricted
	case caller.HasRole(models.RoleProfessor):
		filters.AccountID = &caller.AccountID
		today := dateOnly(s.now())
		if filters.DateFrom == nil || filters.DateFrom.Before(today) {
			filters.DateFrom = &today
		}
	default:
		return []*models.Reservation{}, 0, nil
	}

	return s.repo.Reservation().List(ctx, nil, filters)
}
