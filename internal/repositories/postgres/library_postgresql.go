package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
)

// ===== BOOKS =====

type bookRepository struct {
	db *gorm.DB
}

func NewBookPostgreSQL(db *gorm.DB) repositories.BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, tx *gorm.DB, book *models.Book) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(book).Error; err != nil {
		return handleDBError(err, "create book")
	}
	return nil
}

func (r *bookRepository) Update(ctx context.Context, tx *gorm.DB, book *models.Book) error {
	if err := getDB(r.db, tx).WithContext(ctx).Save(book).Error; err != nil {
		return handleDBError(err, "update book")
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(r.db, tx).WithContext(ctx).Delete(&models.Book{}, id).Error; err != nil {
		return handleDBError(err, "delete book")
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Book, error) {
	var book models.Book
	if err := getDB(r.db, tx).WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, handleDBError(err, "get book by id")
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, tx *gorm.DB, search string, limit, offset int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	query := getDB(r.db, tx).WithContext(ctx).Model(&models.Book{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR author ILIKE ? OR code ILIKE ?", pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count books")
	}

	query = applyPagination(query.Order("title ASC"), limit, offset)

	if err := query.Find(&books).Error; err != nil {
		return nil, 0, handleDBError(err, "list books")
	}

	return books, total, nil
}

// ===== LOANS =====

type loanRepository struct {
	db *gorm.DB
}

func NewLoanPostgreSQL(db *gorm.DB) repositories.LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, tx *gorm.DB, loan *models.Loan) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(loan).Error; err != nil {
		return handleDBError(err, "create loan")
	}
	return nil
}

func (r *loanRepository) Update(ctx context.Context, tx *gorm.DB, loan *models.Loan) error {
	if err := getDB(r.db, tx).WithContext(ctx).Save(loan).Error; err != nil {
		return handleDBError(err, "update loan")
	}
	return nil
}

func (r *loanRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(r.db, tx).WithContext(ctx).Delete(&models.Loan{}, id).Error; err != nil {
		return handleDBError(err, "delete loan")
	}
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Loan, error) {
	var loan models.Loan
	if err := getDB(r.db, tx).WithContext(ctx).
		Preload("Book").
		Preload("Student").
		First(&loan, id).Error; err != nil {
		return nil, handleDBError(err, "get loan by id")
	}
	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.LoanFilters) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	query := getDB(r.db, tx).WithContext(ctx).Model(&models.Loan{})
	if filters.Returned != nil {
		query = query.Where("returned = ?", *filters.Returned)
	}
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if len(filters.StudentIDs) > 0 {
		query = query.Where("student_id IN ?", filters.StudentIDs)
	}
	if filters.Search != nil {
		query = query.Where("borrower_name ILIKE ?", "%"+*filters.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count loans")
	}

	query = query.Preload("Book").Preload("Student").Order("loan_date DESC")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&loans).Error; err != nil {
		return nil, 0, handleDBError(err, "list loans")
	}

	return loans, total, nil
}

func (r *loanRepository) CountActiveByBook(ctx context.Context, tx *gorm.DB, bookID uint) (int64, error) {
	var count int64
	if err := getDB(r.db, tx).WithContext(ctx).
		Model(&models.Loan{}).
		Where("book_id = ? AND returned = ?", bookID, false).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count active loans for book")
	}
	return count, nil
}
