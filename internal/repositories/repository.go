package repositories

import "context"

// Repository aggregates all entity repositories behind one handle so services
// depend on a single interface and transactions can swap the backing DB.
type Repository interface {
	// Account domain
	Account() AccountRepository
	ResetToken() ResetTokenRepository

	// Profile domain
	Guardian() GuardianRepository
	Student() StudentRepository
	Teacher() TeacherRepository

	// Academic domain
	Term() TermRepository
	Grade() GradeRepository
	PendingTask() PendingTaskRepository
	LessonPlan() LessonPlanRepository
	Warning() WarningRepository
	Suspension() SuspensionRepository
	CalendarEvent() CalendarEventRepository

	// Library domain
	Book() BookRepository
	Loan() LoanRepository

	// Reservation domain
	Room() RoomRepository
	Reservation() ReservationRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
