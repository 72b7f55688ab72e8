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

type calendarService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCalendarService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) CalendarService {
	return &calendarService{repo: repo, logger: logger, validator: v}
}

func (s *calendarService) Create(ctx context.Context, caller *authz.Caller, req CalendarEventRequest) (*models.CalendarEvent, error) {
	if !authz.IsStaff(caller) {
		return nil, NewPermissionError(callerID(caller), "calendar_event", "create", "requires staff role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	event := &models.CalendarEvent{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
	}
	if err := s.repo.CalendarEvent().Create(ctx, nil, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *calendarService) Update(ctx context.Context, caller *authz.Caller, id uint, req CalendarEventRequest) (*models.CalendarEvent, error) {
	if !authz.IsStaff(caller) {
		return nil, NewPermissionError(callerID(caller), "calendar_event", "update", "requires staff role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	event, err := s.repo.CalendarEvent().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Date = req.Date
	if err := s.repo.CalendarEvent().Update(ctx, nil, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *calendarService) Delete(ctx context.Context, caller *authz.Caller, id uint) error {
	if !authz.IsStaff(caller) {
		return NewPermissionError(callerID(caller), "calendar_event", "delete", "requires staff role")
	}
	return s.repo.CalendarEvent().Delete(ctx, nil, id)
}

// List is open to every authenticated user; the calendar is school-wide.
func (s *calendarService) List(ctx context.Context, caller *authz.Caller, filters repositories.CalendarEventFilters) ([]*models.CalendarEvent, int64, error) {
	if !authz.IsAuthenticated(caller) {
		return nil, 0, ErrUnauthorized
	}
	return s.repo.CalendarEvent().List(ctx, nil, filters)
}
