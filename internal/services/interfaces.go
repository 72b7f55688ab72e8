package services

import (
	"context"
	"time"

	"github.com/escola-viva/secretaria-service/internal/authz"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
)

// ===== AUTH DTOs =====

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	Username    string          `json:"username"`
	FullName    string          `json:"full_name"`
	Role        models.RoleName `json:"cargo"`
}

type CreateAccountRequest struct {
	Username string          `json:"username" validate:"required"`
	Password string          `json:"password" validate:"required,min=8"`
	Email    string          `json:"email" validate:"omitempty,email"`
	FullName string          `json:"full_name" validate:"required"`
	Role     models.RoleName `json:"role" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirm struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ===== PROFILE DTOs =====

type GuardianRequest struct {
	Name        string     `json:"name" validate:"required"`
	CPF         string     `json:"cpf" validate:"omitempty,cpf_digits"`
	Email       string     `json:"email" validate:"omitempty,email"`
	PhoneNumber string     `json:"phone_number"`
	Birthday    *time.Time `json:"birthday"`
}

type TeacherRequest struct {
	Name        string     `json:"name" validate:"required"`
	CPF         string     `json:"cpf" validate:"omitempty,cpf_digits"`
	Email       string     `json:"email" validate:"omitempty,email"`
	PhoneNumber string     `json:"phone_number"`
	Birthday    *time.Time `json:"birthday"`
	Subject     string     `json:"subject"`
}

type CreateStudentRequest struct {
	Name            string     `json:"name" validate:"required"`
	CPF             string     `json:"cpf" validate:"omitempty,cpf_digits"`
	Email           string     `json:"email" validate:"omitempty,email"`
	PhoneNumber     string     `json:"phone_number"`
	Birthday        *time.Time `json:"birthday"`
	GuardianID      uint       `json:"guardian_id" validate:"required"`
	ClassGroup      string     `json:"class_choice"`
	EnrollmentMonth string     `json:"month_choice"`
	SchoolYear      string     `json:"school_year"`
	Active          *bool      `json:"active"`
}

// UpdateStudentRequest uses pointer fields so handlers can tell absent fields
// from zero values. Restricted roles may only send their allowed subset; any
// other present field is rejected by name.
type UpdateStudentRequest struct {
	Name               *string    `json:"name"`
	CPF                *string    `json:"cpf" validate:"omitempty,cpf_digits"`
	Email              *string    `json:"email" validate:"omitempty,email"`
	PhoneNumber        *string    `json:"phone_number"`
	Birthday           *time.Time `json:"birthday"`
	GuardianID         *uint      `json:"guardian_id"`
	ClassGroup         *string    `json:"class_choice"`
	EnrollmentMonth    *string    `json:"month_choice"`
	SchoolYear         *string    `json:"school_year"`
	Absences           *int       `json:"absences"`
	Attendances        *int       `json:"attendances"`
	DescriptiveComment *string    `json:"descriptive_comment"`
	Active             *bool      `json:"active"`
}

type StudentListResponse struct {
	Students []*models.Student `json:"students"`
	Total    int64             `json:"total"`
}

// ===== ACADEMIC DTOs =====

type TermRequest struct {
	Name       string `json:"name" validate:"required"`
	SchoolYear string `json:"school_year" validate:"required"`
	Order      int    `json:"order" validate:"required,min=1"`
}

type GradeRequest struct {
	StudentID uint    `json:"student_id" validate:"required"`
	TermID    uint    `json:"term_id" validate:"required"`
	Subject   string  `json:"subject" validate:"required"`
	Value     float64 `json:"value" validate:"min=0,max=10"`
}

type PendingTaskRequest struct {
	StudentID   uint       `json:"student_id" validate:"required"`
	Subject     string     `json:"subject"`
	Description string     `json:"description" validate:"required"`
	DueDate     *time.Time `json:"due_date"`
	Done        *bool      `json:"done"`
}

type LessonPlanRequest struct {
	TeacherID  uint      `json:"teacher_id"`
	ClassGroup string    `json:"class_choice" validate:"required"`
	Shift      string    `json:"shift"`
	Subject    string    `json:"subject"`
	WeekStart  time.Time `json:"week_start" validate:"required"`
	Content    string    `json:"content" validate:"required"`
}

// LessonPlanOptions lists the distinct class groups and shifts in use, for
// populating form selects.
type LessonPlanOptions struct {
	ClassGroups []string `json:"class_choices"`
	Shifts      []string `json:"shifts"`
}

type WarningRequest struct {
	StudentID uint      `json:"student_id" validate:"required"`
	Reason    string    `json:"reason" validate:"required"`
	IssuedAt  time.Time `json:"issued_at"`
}

type SuspensionRequest struct {
	StudentID uint      `json:"student_id" validate:"required"`
	Reason    string    `json:"reason" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

type CalendarEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" validate:"required"`
}

// ===== LIBRARY DTOs =====

type BookRequest struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author"`
	Code     string `json:"code"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

type LoanRequest struct {
	Kind            models.LoanKind `json:"kind" validate:"omitempty,oneof=book equipment"`
	BookID          *uint           `json:"book_id"`
	ItemDescription string          `json:"item_description"`
	BorrowerName    string          `json:"borrower_name" validate:"required"`
	StudentID       *uint           `json:"student_id"`
	LoanDate        time.Time       `json:"loan_date"`
	DueDate         *time.Time      `json:"due_date"`
}

// ===== RESERVATION DTOs =====

type RoomRequest struct {
	Name      string   `json:"name" validate:"required"`
	Capacity  int      `json:"capacity" validate:"min=0"`
	Resources []string `json:"resources"`
}

type ReservationRequest struct {
	RoomID    uint      `json:"room_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	StartTime string    `json:"start_time" validate:"required,hhmm"`
	EndTime   string    `json:"end_time" validate:"required,hhmm"`
	Purpose   string    `json:"purpose"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	// Login authenticates by username. CPF-shaped identifiers are
	// normalized to their 11 digits before lookup; anything else is
	// rejected before touching the database.
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// CreateAccount provisions a login directly, staff only.
	CreateAccount(ctx context.Context, caller *authz.Caller, req CreateAccountRequest) (*models.Account, error)
	ListAccounts(ctx context.Context, caller *authz.Caller, limit, offset int) ([]*models.Account, int64, error)
}

type PasswordResetService interface {
	// RequestReset resolves the email to an account, provisioning one from
	// a matching profile when needed, and mails a reset link. The caller
	// always gets the same answer whether or not the email resolved.
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, req PasswordResetConfirm) error
}

type ProfileService interface {
	CreateGuardian(ctx context.Context, caller *authz.Caller, req GuardianRequest) (*models.Guardian, error)
	UpdateGuardian(ctx context.Context, caller *authz.Caller, id uint, req GuardianRequest) (*models.Guardian, error)
	DeleteGuardian(ctx context.Context, caller *authz.Caller, id uint) error
	GetGuardian(ctx context.Context, caller *authz.Caller, id uint) (*models.Guardian, error)
	ListGuardians(ctx context.Context, caller *authz.Caller, limit, offset int) ([]*models.Guardian, int64, error)

	CreateTeacher(ctx context.Context, caller *authz.Caller, req TeacherRequest) (*models.Teacher, error)
	UpdateTeacher(ctx context.Context, caller *authz.Caller, id uint, req TeacherRequest) (*models.Teacher, error)
	DeleteTeacher(ctx context.Context, caller *authz.Caller, id uint) error
	GetTeacher(ctx context.Context, caller *authz.Caller, id uint) (*models.Teacher, error)
	ListTeachers(ctx context.Context, caller *authz.Caller, limit, offset int) ([]*models.Teacher, int64, error)
}

type StudentService interface {
	Create(ctx context.Context, caller *authz.Caller, req CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, caller *authz.Caller, id uint, req UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, caller *authz.Caller, id uint) error
	Get(ctx context.Context, caller *authz.Caller, id uint) (*models.Student, error)
	List(ctx context.Context, caller *authz.Caller, filters repositories.StudentFilters) (*StudentListResponse, error)
}

type AcademicService interface {
	CreateTerm(ctx context.Context, caller *authz.Caller, req TermRequest) (*models.Term, error)
	UpdateTerm(ctx context.Context, caller *authz.Caller, id uint, req TermRequest) (*models.Term, error)
	DeleteTerm(ctx context.Context, caller *authz.Caller, id uint) error
	ListTerms(ctx context.Context, caller *authz.Caller, schoolYear string) ([]*models.Term, error)

	CreateGrade(ctx context.Context, caller *authz.Caller, req GradeRequest) (*models.Grade, error)
	UpdateGrade(ctx context.Context, caller *authz.Caller, id uint, req GradeRequest) (*models.Grade, error)
	DeleteGrade(ctx context.Context, caller *authz.Caller, id uint) error
	ListGrades(ctx context.Context, caller *authz.Caller, filters repositories.GradeFilters) ([]*models.Grade, int64, error)

	CreatePendingTask(ctx context.Context, caller *authz.Caller, req PendingTaskRequest) (*models.PendingTask, error)
	UpdatePendingTask(ctx context.Context, caller *authz.Caller, id uint, req PendingTaskRequest) (*models.PendingTask, error)
	DeletePendingTask(ctx context.Context, caller *authz.Caller, id uint) error
	ListPendingTasks(ctx context.Context, caller *authz.Caller, filters repositories.StudentScopedFilters) ([]*models.PendingTask, int64, error)

	CreateWarning(ctx context.Context, caller *authz.Caller, req WarningRequest) (*models.Warning, error)
	DeleteWarning(ctx context.Context, caller *authz.Caller, id uint) error
	ListWarnings(ctx context.Context, caller *authz.Caller, filters repositories.StudentScopedFilters) ([]*models.Warning, int64, error)

	CreateSuspension(ctx context.Context, caller *authz.Caller, req SuspensionRequest) (*models.Suspension, error)
	DeleteSuspension(ctx context.Context, caller *authz.Caller, id uint) error
	ListSuspensions(ctx context.Context, caller *authz.Caller, filters repositories.StudentScopedFilters) ([]*models.Suspension, int64, error)
}

type LessonPlanService interface {
	Create(ctx context.Context, caller *authz.Caller, req LessonPlanRequest) (*models.LessonPlan, error)
	Update(ctx context.Context, caller *authz.Caller, id uint, req LessonPlanRequest) (*models.LessonPlan, error)
	Delete(ctx context.Context, caller *authz.Caller, id uint) error
	Get(ctx context.Context, caller *authz.Caller, id uint) (*models.LessonPlan, error)
	List(ctx context.Context, caller *authz.Caller, filters repositories.LessonPlanFilters) ([]*models.LessonPlan, int64, error)
	Options(ctx context.Context, caller *authz.Caller) (*LessonPlanOptions, error)
}

type CalendarService interface {
	Create(ctx context.Context, caller *authz.Caller, req CalendarEventRequest) (*models.CalendarEvent, error)
	Update(ctx context.Context, caller *authz.Caller, id uint, req CalendarEventRequest) (*models.CalendarEvent, error)
	Delete(ctx context.Context, caller *authz.Caller, id uint) error
	List(ctx context.Context, caller *authz.Caller, filters repositories.CalendarEventFilters) ([]*models.CalendarEvent, int64, error)
}

type LibraryService interface {
	CreateBook(ctx context.Context, caller *authz.Caller, req BookRequest) (*models.Book, error)
	UpdateBook(ctx context.Context, caller *authz.Caller, id uint, req BookRequest) (*models.Book, error)
	DeleteBook(ctx context.Context, caller *authz.Caller, id uint) error
	ListBooks(ctx context.Context, caller *authz.Caller, search string, limit, offset int) ([]*models.Book, int64, error)

	CreateLoan(ctx context.Context, caller *authz.Caller, req LoanRequest) (*models.Loan, error)
	ReturnLoan(ctx context.Context, caller *authz.Caller, id uint) (*models.Loan, error)
	DeleteLoan(ctx context.Context, caller *authz.Caller, id uint) error
	ListLoans(ctx context.Context, caller *authz.Caller, filters repositories.LoanFilters) ([]*models.Loan, int64, error)
	ListPendingLoans(ctx context.Context, caller *authz.Caller, limit, offset int) ([]*models.Loan, int64, error)
}

type ReservationService interface {
	CreateRoom(ctx context.Context, caller *authz.Caller, req RoomRequest) (*models.Room, error)
	UpdateRoom(ctx context.Context, caller *authz.Caller, id uint, req RoomRequest) (*models.Room, error)
	DeleteRoom(ctx context.Context, caller *authz.Caller, id uint) error
	ListRooms(ctx context.Context, caller *authz.Caller) ([]*models.Room, error)

	Create(ctx context.Context, caller *authz.Caller, req ReservationRequest) (*models.Reservation, error)
	Update(ctx context.Context, caller *authz.Caller, id uint, req ReservationRequest) (*models.Reservation, error)
	Delete(ctx context.Context, caller *authz.Caller, id uint) error
	List(ctx context.Context, caller *authz.Caller, filters repositories.ReservationFilters) ([]*models.Reservation, int64, error)
}

type ReportService interface {
	// StudentsReport renders the student roster visible to the caller as a
	// spreadsheet and returns the serialized bytes.
	StudentsReport(ctx context.Context, caller *authz.Caller, filters repositories.StudentFilters) ([]byte, error)
	GradesReport(ctx context.Context, caller *authz.Caller, filters repositories.GradeFilters) ([]byte, error)
}

// ServiceManager provides access to all services.
type ServiceManager interface {
	Auth() AuthService
	PasswordReset() PasswordResetService
	Profile() ProfileService
	Student() StudentService
	Academic() AcademicService
	LessonPlan() LessonPlanService
	Calendar() CalendarService
	Library() LibraryService
	Reservation() ReservationService
	Report() ReportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
