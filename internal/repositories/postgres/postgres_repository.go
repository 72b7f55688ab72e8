package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/repositories"
)

// PostgreSQLRepository implements the aggregate Repository interface.
type PostgreSQLRepository struct {
	db          *gorm.DB
	redisClient *redis.Client

	account    repositories.AccountRepository
	resetToken repositories.ResetTokenRepository

	guardian repositories.GuardianRepository
	student  repositories.StudentRepository
	teacher  repositories.TeacherRepository

	term          repositories.TermRepository
	grade         repositories.GradeRepository
	pendingTask   repositories.PendingTaskRepository
	lessonPlan    repositories.LessonPlanRepository
	warning       repositories.WarningRepository
	suspension    repositories.SuspensionRepository
	calendarEvent repositories.CalendarEventRepository

	book repositories.BookRepository
	loan repositories.LoanRepository

	room        repositories.RoomRepository
	reservation repositories.ReservationRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates the repository aggregate with all
// sub-repositories bound to the given connection.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:          config.DB,
		redisClient: config.RedisClient,
	}
	repo.bind(config.DB)
	return repo
}

// bind wires all sub-repositories to the given DB handle. Called once at
// construction and again per transaction.
func (r *PostgreSQLRepository) bind(db *gorm.DB) {
	r.account = NewAccountPostgreSQL(db)
	r.resetToken = NewResetTokenPostgreSQL(db)

	r.guardian = NewGuardianPostgreSQL(db)
	r.student = NewStudentPostgreSQL(db)
	r.teacher = NewTeacherPostgreSQL(db)

	r.term = NewTermPostgreSQL(db)
	r.grade = NewGradePostgreSQL(db)
	r.pendingTask = NewPendingTaskPostgreSQL(db)
	r.lessonPlan = NewLessonPlanPostgreSQL(db)
	r.warning = NewWarningPostgreSQL(db)
	r.suspension = NewSuspensionPostgreSQL(db)
	r.calendarEvent = NewCalendarEventPostgreSQL(db)

	r.book = NewBookPostgreSQL(db)
	r.loan = NewLoanPostgreSQL(db)

	r.room = NewRoomPostgreSQL(db)
	r.reservation = NewReservationPostgreSQL(db)
}

func (r *PostgreSQLRepository) Account() repositories.AccountRepository       { return r.account }
func (r *PostgreSQLRepository) ResetToken() repositories.ResetTokenRepository { return r.resetToken }

func (r *PostgreSQLRepository) Guardian() repositories.GuardianRepository { return r.guardian }
func (r *PostgreSQLRepository) Student() repositories.StudentRepository   { return r.student }
func (r *PostgreSQLRepository) Teacher() repositories.TeacherRepository   { return r.teacher }

func (r *PostgreSQLRepository) Term() repositories.TermRepository               { return r.term }
func (r *PostgreSQLRepository) Grade() repositories.GradeRepository             { return r.grade }
func (r *PostgreSQLRepository) PendingTask() repositories.PendingTaskRepository { return r.pendingTask }
func (r *PostgreSQLRepository) LessonPlan() repositories.LessonPlanRepository   { return r.lessonPlan }
func (r *PostgreSQLRepository) Warning() repositories.WarningRepository         { return r.warning }
func (r *PostgreSQLRepository) Suspension() repositories.SuspensionRepository   { return r.suspension }
func (r *PostgreSQLRepository) CalendarEvent() repositories.CalendarEventRepository {
	return r.calendarEvent
}

func (r *PostgreSQLRepository) Book() repositories.BookRepository { return r.book }
func (r *PostgreSQLRepository) Loan() repositories.LoanRepository { return r.loan }

func (r *PostgreSQLRepository) Room() repositories.RoomRepository               { return r.room }
func (r *PostgreSQLRepository) Reservation() repositories.ReservationRepository { return r.reservation }

// WithTransaction executes fn within a database transaction. The callback
// receives a repository aggregate whose queries all run on the transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:          tx,
			redisClient: r.redisClient,
		}
		txRepo.bind(tx)
		return fn(txRepo)
	})
}

// Ping checks the health of the database and cache connections.
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if _, err := r.redisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections.
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// Manager implements repositories.RepositoryManager.
type Manager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &Manager{config: config}
}

// Initialize validates the connections and builds the repository aggregate.
func (m *Manager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := m.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if m.config.RedisClient != nil {
		if _, err := m.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *Manager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *Manager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *Manager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}
