package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/models"
)

// ===== FILTER STRUCTS =====

// StudentFilters narrows student listings. Scope resolution fills ClassGroups
// or StudentIDs before the query reaches the database.
type StudentFilters struct {
	ClassGroups []string
	StudentIDs  []uint
	GuardianID  *uint
	SchoolYear  *string
	Active      *bool
	Search      *string

	Limit  int
	Offset int
}

// GradeFilters narrows grade listings.
type GradeFilters struct {
	StudentIDs []uint
	TermID     *uint
	Subject    *string

	Limit  int
	Offset int
}

// StudentScopedFilters is shared by the per-student record listings
// (pending tasks, warnings, suspensions).
type StudentScopedFilters struct {
	StudentIDs []uint

	Limit  int
	Offset int
}

// LessonPlanFilters narrows lesson plan listings.
type LessonPlanFilters struct {
	TeacherID  *uint
	ClassGroup *string
	Shift      *string

	Limit  int
	Offset int
}

// LoanFilters narrows loan listings. StudentIDs carries the caller's
// visibility scope and is combined with the other filters.
type LoanFilters struct {
	Returned   *bool
	Kind       *models.LoanKind
	StudentID  *uint
	StudentIDs []uint
	Search     *string

	Limit  int
	Offset int
}

// ReservationFilters narrows reservation listings.
type ReservationFilters struct {
	RoomID    *uint
	AccountID *uint
	DateFrom  *time.Time
	DateTo    *time.Time

	Limit  int
	Offset int
}

// CalendarEventFilters narrows calendar listings.
type CalendarEventFilters struct {
	DateFrom *time.Time
	DateTo   *time.Time

	Limit  int
	Offset int
}

// ===== ACCOUNT DOMAIN =====

type AccountRepository interface {
	Create(ctx context.Context, tx *gorm.DB, account *models.Account) error
	Update(ctx context.Context, tx *gorm.DB, account *models.Account) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Account, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.Account, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Account, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Account, int64, error)

	// UsernameExists reports whether any account other than excludeID holds
	// the username. excludeID zero means no exclusion.
	UsernameExists(ctx context.Context, tx *gorm.DB, username string, excludeID uint) (bool, error)

	GetRoleByName(ctx context.Context, tx *gorm.DB, name models.RoleName) (*models.Role, error)
	EnsureRole(ctx context.Context, tx *gorm.DB, name models.RoleName) (*models.Role, error)
	AddRole(ctx context.Context, tx *gorm.DB, account *models.Account, role *models.Role) error
}

type ResetTokenRepository interface {
	Create(ctx context.Context, tx *gorm.DB, token *models.ResetToken) error
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.ResetToken, error)
	DeleteByAccount(ctx context.Context, tx *gorm.DB, accountID uint) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

// ===== PROFILE DOMAIN =====

type GuardianRepository interface {
	Create(ctx context.Context, tx *gorm.DB, guardian *models.Guardian) error
	Update(ctx context.Context, tx *gorm.DB, guardian *models.Guardian) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Guardian, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Guardian, error)
	GetByAccount(ctx context.Context, tx *gorm.DB, accountID uint) (*models.Guardian, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Guardian, int64, error)
}

type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	Update(ctx context.Context, tx *gorm.DB, student *models.Student) error
	// UpdateFields persists only the named columns, for role-restricted edits.
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Student, error)
	GetByAccount(ctx context.Context, tx *gorm.DB, accountID uint) (*models.Student, error)
	List(ctx context.Context, tx *gorm.DB, filters StudentFilters) ([]*models.Student, int64, error)
}

type TeacherRepository interface {
	Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error
	Update(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Teacher, error)
	GetByAccount(ctx context.Context, tx *gorm.DB, accountID uint) (*models.Teacher, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Teacher, int64, error)
}

// ===== ACADEMIC DOMAIN =====

type TermRepository interface {
	Create(ctx context.Context, tx *gorm.DB, term *models.Term) error
	Update(ctx context.Context, tx *gorm.DB, term *models.Term) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Term, error)
	List(ctx context.Context, tx *gorm.DB, schoolYear string) ([]*models.Term, error)
}

type GradeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, grade *models.Grade) error
	Update(ctx context.Context, tx *gorm.DB, grade *models.Grade) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Grade, error)
	List(ctx context.Context, tx *gorm.DB, filters GradeFilters) ([]*models.Grade, int64, error)
}

type PendingTaskRepository interface {
	Create(ctx context.Context, tx *gorm.DB, task *models.PendingTask) error
	Update(ctx context.Context, tx *gorm.DB, task *models.PendingTask) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PendingTask, error)
	List(ctx context.Context, tx *gorm.DB, filters StudentScopedFilters) ([]*models.PendingTask, int64, error)
}

type LessonPlanRepository interface {
	Create(ctx context.Context, tx *gorm.DB, plan *models.LessonPlan) error
	Update(ctx context.Context, tx *gorm.DB, plan *models.LessonPlan) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.LessonPlan, error)
	List(ctx context.Context, tx *gorm.DB, filters LessonPlanFilters) ([]*models.LessonPlan, int64, error)

	// ClassGroupsForTeacher returns the distinct class groups a teacher has
	// plans for. This set defines the teacher's student visibility.
	ClassGroupsForTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) ([]string, error)
	// Options returns the distinct class groups and shifts across all plans.
	Options(ctx context.Context, tx *gorm.DB) (classGroups []string, shifts []string, err error)
}

type WarningRepository interface {
	Create(ctx context.Context, tx *gorm.DB, warning *models.Warning) error
	Update(ctx context.Context, tx *gorm.DB, warning *models.Warning) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Warning, error)
	List(ctx context.Context, tx *gorm.DB, filters StudentScopedFilters) ([]*models.Warning, int64, error)
}

type SuspensionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, suspension *models.Suspension) error
	Update(ctx context.Context, tx *gorm.DB, suspension *models.Suspension) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Suspension, error)
	List(ctx context.Context, tx *gorm.DB, filters StudentScopedFilters) ([]*models.Suspension, int64, error)
}

type CalendarEventRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error
	Update(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CalendarEvent, error)
	List(ctx context.Context, tx *gorm.DB, filters CalendarEventFilters) ([]*models.CalendarEvent, int64, error)
}

// ===== LIBRARY DOMAIN =====

type BookRepository interface {
	Create(ctx context.Context, tx *gorm.DB, book *models.Book) error
	Update(ctx context.Context, tx *gorm.DB, book *models.Book) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Book, error)
	List(ctx context.Context, tx *gorm.DB, search string, limit, offset int) ([]*models.Book, int64, error)
}

type LoanRepository interface {
	Create(ctx context.Context, tx *gorm.DB, loan *models.Loan) error
	Update(ctx context.Context, tx *gorm.DB, loan *models.Loan) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Loan, error)
	List(ctx context.Context, tx *gorm.DB, filters LoanFilters) ([]*models.Loan, int64, error)
	CountActiveByBook(ctx context.Context, tx *gorm.DB, bookID uint) (int64, error)
}

// ===== RESERVATION DOMAIN =====

type RoomRepository interface {
	Create(ctx context.Context, tx *gorm.DB, room *models.Room) error
	Update(ctx context.Context, tx *gorm.DB, room *models.Room) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Room, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	Update(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error)
	List(ctx context.Context, tx *gorm.DB, filters ReservationFilters) ([]*models.Reservation, int64, error)

	// FindConflicts returns reservations for the room on the date whose
	// window overlaps [start, end), excluding excludeID. Inside a
	// transaction the rows come back locked FOR UPDATE.
	FindConflicts(ctx context.Context, tx *gorm.DB, roomID uint, date time.Time, start, end string, excludeID uint) ([]*models.Reservation, error)

	// CountFutureByAccount counts reservations by the account on or after
	// the given date, for the one-open-reservation quota.
	CountFutureByAccount(ctx context.Context, tx *gorm.DB, accountID uint, from time.Time) (int64, error)
}
