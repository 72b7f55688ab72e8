package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/escola-viva/secretaria-service/internal/events"
	"github.com/escola-viva/secretaria-service/internal/mailer"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/validator"
)

// ServiceManagerConfig carries the settings individual services need beyond
// their shared dependencies.
type ServiceManagerConfig struct {
	JWTSecret   string
	TokenTTL    time.Duration
	FrontendURL string
}

func (c *ServiceManagerConfig) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.FrontendURL == "" {
		return fmt.Errorf("frontend url must not be empty")
	}
	return nil
}

// serviceManager implements ServiceManager.
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	mailer    mailer.Mailer
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	authService          AuthService
	passwordResetService PasswordResetService
	profileService       ProfileService
	studentService       StudentService
	academicService      AcademicService
	lessonPlanService    LessonPlanService
	calendarService      CalendarService
	libraryService       LibraryService
	reservationService   ReservationService
	reportService        ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies. Services
// are wired on Initialize, not here.
func NewServiceManager(repo repositories.Repository, m mailer.Mailer, publisher events.Publisher, logger *slog.Logger, v *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		mailer:    m,
		publisher: publisher,
		logger:    logger,
		validator: v,
		config:    config,
	}
}

// Initialize wires up all services and verifies the backing stores respond.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := sm.config.Validate(); err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}

	sm.logger.Info("Initializing service manager")

	issuer := NewTokenIssuer(sm.config.JWTSecret, sm.config.TokenTTL)

	sm.authService = NewAuthService(sm.repo, issuer, sm.logger, sm.validator)
	sm.passwordResetService = NewPasswordResetService(sm.repo, sm.mailer, sm.publisher, sm.logger, sm.validator, sm.config.FrontendURL)
	sm.profileService = NewProfileService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.studentService = NewStudentService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.academicService = NewAcademicService(sm.repo, sm.logger, sm.validator)
	sm.lessonPlanService = NewLessonPlanService(sm.repo, sm.logger, sm.validator)
	sm.calendarService = NewCalendarService(sm.repo, sm.logger, sm.validator)
	sm.libraryService = NewLibraryService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.reservationService = NewReservationService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.reportService = NewReportService(sm.repo, sm.logger)

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) ensureInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.authService
}

func (sm *serviceManager) PasswordReset() PasswordResetService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.passwordResetService
}

func (sm *serviceManager) Profile() ProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.profileService
}

func (sm *serviceManager) Student() StudentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.studentService
}

func (sm *serviceManager) Academic() AcademicService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.academicService
}

func (sm *serviceManager) LessonPlan() LessonPlanService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.lessonPlanService
}

func (sm *serviceManager) Calendar() CalendarService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.calendarService
}

func (sm *serviceManager) Library() LibraryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.libraryService
}

func (sm *serviceManager) Reservation() ReservationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.reservationService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.reportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	if repoManager, ok := sm.repo.(repositories.RepositoryManager); ok {
		if err := repoManager.Shutdown(ctx); err != nil {
			sm.logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
