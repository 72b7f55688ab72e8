package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/escola-viva/secretaria-service/internal/cache"
	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
	"github.com/escola-viva/secretaria-service/internal/services"
	"github.com/escola-viva/secretaria-service/internal/utils"
)

type HandlerManager struct {
	authHandler          *AuthHandler
	passwordResetHandler *PasswordResetHandler
	profileHandler       *ProfileHandler
	studentHandler       *StudentHandler
	academicHandler      *AcademicHandler
	lessonPlanHandler    *LessonPlanHandler
	calendarHandler      *CalendarHandler
	libraryHandler       *LibraryHandler
	reservationHandler   *ReservationHandler
	reportHandler        *ReportHandler
	authMiddleware       *JWTAuthMiddleware
	serviceManager       services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	issuer *services.TokenIssuer,
	accountRepo repositories.AccountRepository,
	cacheMgr *cache.CacheManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:          NewAuthHandler(serviceManager.Auth(), logger),
		passwordResetHandler: NewPasswordResetHandler(serviceManager.PasswordReset(), logger),
		profileHandler:       NewProfileHandler(serviceManager.Profile(), logger),
		studentHandler:       NewStudentHandler(serviceManager.Student(), logger),
		academicHandler:      NewAcademicHandler(serviceManager.Academic(), logger),
		lessonPlanHandler:    NewLessonPlanHandler(serviceManager.LessonPlan(), cacheMgr, logger),
		calendarHandler:      NewCalendarHandler(serviceManager.Calendar(), cacheMgr, logger),
		libraryHandler:       NewLibraryHandler(serviceManager.Library(), logger),
		reservationHandler:   NewReservationHandler(serviceManager.Reservation(), logger),
		reportHandler:        NewReportHandler(serviceManager.Report(), logger),
		authMiddleware:       NewJWTAuthMiddleware(issuer, accountRepo, cacheMgr),
		serviceManager:       serviceManager,
	}
}

// SetupRoutes sets up all API routes. Fine-grained authorization lives in the
// services; route-level role checks only fence off whole groups.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/auth/login", hm.authHandler.Login)
	v1.POST("/password-reset/request", hm.passwordResetHandler.Request)
	v1.POST("/password-reset/confirm", hm.passwordResetHandler.Confirm)

	// Authenticated routes
	auth := v1.Group("")
	auth.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Account administration - Secretaria only
		admin := auth.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleSecretaria))
		{
			admin.POST("/accounts", hm.authHandler.CreateAccount)
			admin.GET("/accounts", hm.authHandler.ListAccounts)
		}

		// Students
		students := auth.Group("/students")
		{
			students.POST("", hm.studentHandler.CreateStudent)
			students.GET("", hm.studentHandler.ListStudents)
			students.GET("/:id", hm.studentHandler.GetStudent)
			students.PUT("/:id", hm.studentHandler.UpdateStudent)
			students.DELETE("/:id", hm.studentHandler.DeleteStudent)
		}

		// Guardians - writes are Secretaria-only and reads self-scoped in the
		// service, so the group carries no role fence.
		guardians := auth.Group("/guardians")
		{
			guardians.POST("", hm.profileHandler.CreateGuardian)
			guardians.GET("", hm.profileHandler.ListGuardians)
			guardians.GET("/:id", hm.profileHandler.GetGuardian)
			guardians.PUT("/:id", hm.profileHandler.UpdateGuardian)
			guardians.DELETE("/:id", hm.profileHandler.DeleteGuardian)
		}

		// Teachers
		teachers := auth.Group("/teachers")
		{
			teachers.POST("", hm.profileHandler.CreateTeacher)
			teachers.GET("", hm.profileHandler.ListTeachers)
			teachers.GET("/:id", hm.profileHandler.GetTeacher)
			teachers.PUT("/:id", hm.profileHandler.UpdateTeacher)
			teachers.DELETE("/:id", hm.profileHandler.DeleteTeacher)
		}

		// Terms
		terms := auth.Group("/terms")
		{
			terms.POST("", hm.academicHandler.CreateTerm)
			terms.GET("", hm.academicHandler.ListTerms)
			terms.PUT("/:id", hm.academicHandler.UpdateTerm)
			terms.DELETE("/:id", hm.academicHandler.DeleteTerm)
		}

		// Grades
		grades := auth.Group("/grades")
		{
			grades.POST("", hm.academicHandler.CreateGrade)
			grades.GET("", hm.academicHandler.ListGrades)
			grades.PUT("/:id", hm.academicHandler.UpdateGrade)
			grades.DELETE("/:id", hm.academicHandler.DeleteGrade)
		}

		// Pending tasks
		tasks := auth.Group("/pending-tasks")
		{
			tasks.POST("", hm.academicHandler.CreatePendingTask)
			tasks.GET("", hm.academicHandler.ListPendingTasks)
			tasks.PUT("/:id", hm.academicHandler.UpdatePendingTask)
			tasks.DELETE("/:id", hm.academicHandler.DeletePendingTask)
		}

		// Warnings
		warnings := auth.Group("/warnings")
		{
			warnings.POST("", hm.academicHandler.CreateWarning)
			warnings.GET("", hm.academicHandler.ListWarnings)
			warnings.DELETE("/:id", hm.academicHandler.DeleteWarning)
		}

		// Suspensions
		suspensions := auth.Group("/suspensions")
		{
			suspensions.POST("", hm.academicHandler.CreateSuspension)
			suspensions.GET("", hm.academicHandler.ListSuspensions)
			suspensions.DELETE("/:id", hm.academicHandler.DeleteSuspension)
		}

		// Lesson plans
		plans := auth.Group("/lesson-plans")
		{
			plans.GET("/options", hm.lessonPlanHandler.GetOptions)
			plans.POST("", hm.lessonPlanHandler.CreateLessonPlan)
			plans.GET("", hm.lessonPlanHandler.ListLessonPlans)
			plans.GET("/:id", hm.lessonPlanHandler.GetLessonPlan)
			plans.PUT("/:id", hm.lessonPlanHandler.UpdateLessonPlan)
			plans.DELETE("/:id", hm.lessonPlanHandler.DeleteLessonPlan)
		}

		// Calendar
		calendar := auth.Group("/calendar")
		{
			calendar.POST("", hm.calendarHandler.CreateEvent)
			calendar.GET("", hm.calendarHandler.ListEvents)
			calendar.PUT("/:id", hm.calendarHandler.UpdateEvent)
			calendar.DELETE("/:id", hm.calendarHandler.DeleteEvent)
		}

		// Library
		books := auth.Group("/books")
		{
			books.POST("", hm.libraryHandler.CreateBook)
			books.GET("", hm.libraryHandler.ListBooks)
			books.PUT("/:id", hm.libraryHandler.UpdateBook)
			books.DELETE("/:id", hm.libraryHandler.DeleteBook)
		}
		loans := auth.Group("/loans")
		{
			loans.POST("", hm.libraryHandler.CreateLoan)
			loans.GET("", hm.libraryHandler.ListLoans)
			loans.GET("/pending", hm.libraryHandler.ListPendingLoans)
			loans.POST("/:id/return", hm.libraryHandler.ReturnLoan)
			loans.DELETE("/:id", hm.libraryHandler.DeleteLoan)
		}

		// Rooms and reservations
		rooms := auth.Group("/rooms")
		{
			rooms.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleSecretaria), hm.reservationHandler.CreateRoom)
			rooms.GET("", hm.reservationHandler.ListRooms)
			rooms.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleSecretaria), hm.reservationHandler.UpdateRoom)
			rooms.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleSecretaria), hm.reservationHandler.DeleteRoom)
		}
		reservations := auth.Group("/reservations")
		{
			reservations.POST("", hm.reservationHandler.CreateReservation)
			reservations.GET("", hm.reservationHandler.ListReservations)
			reservations.PUT("/:id", hm.reservationHandler.UpdateReservation)
			reservations.DELETE("/:id", hm.reservationHandler.DeleteReservation)
		}

		// Reports
		reports := auth.Group("/reports")
		{
			reports.GET("/students.xlsx", hm.reportHandler.StudentsReport)
			reports.GET("/grades.xlsx", hm.reportHandler.GradesReport)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "secretaria-service",
		})
	})
}
