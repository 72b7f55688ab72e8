package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/authz"
	"github.com/escola-viva/secretaria-service/internal/events"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/validator"
)

type libraryService struct {
	repo      repositories.Repository
	scope     *scopeResolver
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLibraryService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, v *validator.Validator) LibraryService {
	return &libraryService{
		repo:      repo,
		scope:     newScopeResolver(repo),
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== BOOKS =====

func (s *libraryService) CreateBook(ctx context.Context, caller *authz.Caller, req BookRequest) (*models.Book, error) {
	if !authz.IsStaff(caller) {
		return nil, NewPermissionError(callerID(caller), "book", "create", "requires staff role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	book := &models.Book{
		Title:    req.Title,
		Author:   req.Author,
		Code:     req.Code,
		Quantity: req.Quantity,
	}
	if book.Quantity == 0 {
		book.Quantity = 1
	}
	if err := s.repo.Book().Create(ctx, nil, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *libraryService) UpdateBook(ctx context.Context, caller *authz.Caller, id uint, req BookRequest) (*models.Book, error) {
	if !authz.IsStaff(caller) {
		return nil, NewPermissionError(callerID(caller), "book", "update", "requires staff role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	book, err := s.repo.Book().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	book.Title = req.Title
	book.Author = req.Author
	book.Code = req.Code
	book.Quantity = req.Quantity
	if err := s.repo.Book().Update(ctx, nil, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *libraryService) DeleteBook(ctx context.Context, caller *authz.Caller, id uint) error {
	if !authz.IsStaff(caller) {
		return NewPermissionError(callerID(caller), "book", "delete", "requires staff role")
	}
	return s.repo.Book().Delete(ctx, nil, id)
}

func (s *libraryService) ListBooks(ctx context.Context, caller *authz.Caller, search string, limit, offset int) ([]*models.Book, int64, error) {
	if !authz.IsAuthenticated(caller) {
		return nil, 0, ErrUnauthorized
	}
	return s.repo.Book().List(ctx, nil, search, limit, offset)
}

// ===== LOANS =====

func (s *libraryService) CreateLoan(ctx context.Context, caller *authz.Caller, req LoanRequest) (*models.Loan, error) {
	if !authz.IsStaff(caller) {
		return nil, NewPermissionError(callerID(caller), "loan", "create", "requires staff role")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, toValidationErrors(err)
	}

	kind := req.Kind
	if kind == "" {
		kind = models.LoanKindBook
	}

	loan := &models.Loan{
		Kind:            kind,
		BookID:          req.BookID,
		ItemDescription: req.ItemDescription,
		BorrowerName:    req.BorrowerName,
		StudentID:       req.StudentID,
		LoanDate:        req.LoanDate,
		DueDate:         req.DueDate,
	}
	if loan.LoanDate.IsZero() {
		loan.LoanDate = time.Now()
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		switch kind {
		case models.LoanKindBook:
			if req.BookID == nil {
				return NewValidationError("book_id", "is required for book loans", nil)
			}
			book, err := txRepo.Book().GetByID(ctx, nil, *req.BookID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return NewValidationError("book_id", "book does not exist", *req.BookID)
				}
				return err
			}
			active, err := txRepo.Loan().CountActiveByBook(ctx, nil, book.ID)
			if err != nil {
				return err
			}
			if active >= int64(book.Quantity) {
				return NewValidationError("book_id", "no copies available", book.ID)
			}
		case models.LoanKindEquipment:
			if req.ItemDescription == "" {
				return NewValidationError("item_description", "is required for equipment loans", nil)
			}
		}
		return txRepo.Loan().Create(ctx, nil, loan)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan created", "loan_id", loan.ID, "kind", loan.Kind)
	return loan, nil
}

func (s *libraryService) ReturnLoan(ctx context.Context, caller *authz.Caller, id uint) (*models.Loan, error) {
	if !authz.IsStaff(caller) {
		return nil, NewPermissionError(callerID(caller), "loan", "return", "requires staff role")
	}

	loan, err := s.repo.Loan().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if loan.Returned {
		return nil, NewValidationError("id", "loan already returned", id)
	}

	now := time.Now()
	loan.Returned = true
	loan.ReturnedAt = &now
	if err := s.repo.Loan().Update(ctx, nil, loan); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.TopicLoanReturned, map[string]interface{}{
		"loan_id": loan.ID,
	}); err != nil {
		s.logger.Warn("failed to publish loan returned event", "error", err)
	}

	return loan, nil
}

func (s *libraryService) DeleteLoan(ctx context.Context, caller *authz.Caller, id uint) error {
	if !authz.IsStaff(caller) {
		return NewPermissionError(callerID(caller), "loan", "delete", "requires staff role")
	}
	return s.repo.Loan().Delete(ctx, nil, id)
}

// ListLoans is open to any authenticated caller, scoped to the students they
// may see: staff list everything, guardians their own children's loans and
// students their own.
func (s *libraryService) ListLoans(ctx context.Context, caller *authz.Caller, filters repositories.LoanFilters) ([]*models.Loan, int64, error) {
	if !authz.IsAuthenticated(caller) {
		return nil, 0, ErrUnauthorized
	}

	ids, unrestricted, err := s.scope.visibleStudentIDs(ctx, caller)
	if err != nil {
		return nil, 0, err
	}
	if !unrestricted {
		if len(ids) == 0 {
			return []*models.Loan{}, 0, nil
		}
		filters.StudentIDs = ids
	}

	return s.repo.Loan().List(ctx, nil, filters)
}

func (s *libraryService) ListPendingLoans(ctx context.Context, caller *authz.Caller, limit, offset int) ([]*models.Loan, int64, error) {
	returned := false
	return s.ListLoans(ctx, caller, repositories.LoanFilters{
		Returned: &returned,
		Limit:    limit,
		Offset:   offset,
	})
}
