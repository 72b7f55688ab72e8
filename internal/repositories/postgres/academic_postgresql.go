package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
)

// ===== TERMS =====

type termRepository struct {
	db *gorm.DB
}

func NewTermPostgreSQL(db *gorm.DB) repositories.TermRepository {
	return &termRepository{db: db}
}

func (r *termRepository) Create(ctx context.Context, tx *gorm.DB, term *models.Term) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(term).Error; err != nil {
		return handleDBError(err, "create term")
	}
	return nil
}

func (r *termRepository) Update(ctx context.Context, tx *gorm.DB, term *models.Term) error {
	if err := getDB(r.db, tx).WithContext(ctx).Save(term).Error; err != nil {
		return handleDBError(err, "update term")
	}
	return nil
}

func (r *termRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(r.db, tx).WithContext(ctx).Delete(&models.Term{}, id).Error; err != nil {
		return handleDBError(err, "delete term")
	}
	return nil
}

func (r *termRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Term, error) {
	var term models.Term
	if err := getDB(r.db, tx).WithContext(ctx).First(&term, id).Error; err != nil {
		return nil, handleDBError(err, "get term by id")
	}
	return &term, nil
}

func (r *termRepository) List(ctx context.Context, tx *gorm.DB, schoolYear string) ([]*models.Term, error) {
	var terms []*models.Term
	query := getDB(r.db, tx).WithContext(ctx).Model(&models.Term{})
	if schoolYear != "" {
		query = query.Where("school_year = ?", schoolYear)
	}
	if err := query.Order(`school_year DESC, "order" ASC`).Find(&terms).Error; err != nil {
		return nil, handleDBError(err, "list terms")
	}
	return terms, nil
}

// ===== GRADES =====

type gradeRepository struct {
	db *gorm.DB
}

func NewGradePostgreSQL(db *gorm.DB) repositories.GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) Create(ctx context.Context, tx *gorm.DB, grade *models.Grade) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(grade).Error; err != nil {
		return handleDBError(err, "create grade")
	}
	return nil
}

func (r *gradeRepository) Update(ctx context.Context, tx *gorm.DB, grade *models.Grade) error {
	if err := getDB(r.db, tx).WithContext(ctx).Save(grade).Error; err != nil {
		return handleDBError(err, "update grade")
	}
	return nil
}

func (r *gradeRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(r.db, tx).WithContext(ctx).Delete(&models.Grade{}, id).Error; err != nil {
		return handleDBError(err, "delete grade")
	}
	return nil
}

func (r *gradeRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Grade, error) {
	var grade models.Grade
	if err := getDB(r.db, tx).WithContext(ctx).
		Preload("Student").
		Preload("Term").
		First(&grade, id).Error; err != nil {
		return nil, handleDBError(err, "get grade by id")
	}
	return &grade, nil
}

func (r *gradeRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.GradeFilters) ([]*models.Grade, int64, error) {
	var grades []*models.Grade
	var total int64

	query := getDB(r.db, tx).WithContext(ctx).Model(&models.Grade{})
	if len(filters.StudentIDs) > 0 {
		query = query.Where("student_id IN ?", filters.StudentIDs)
	}
	if filters.TermID != nil {
		query = query.Where("term_id = ?", *filters.TermID)
	}
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count grades")
	}

	query = query.Preload("Student").Preload("Term").Order("created_at DESC")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&grades).Error; err != nil {
		return nil, 0, handleDBError(err, "list grades")
	}

	return grades, total, nil
}

// ===== PENDING TASKS =====

type pendingTaskRepository struct {
	db *gorm.DB
}

func NewPendingTaskPostgreSQL(db *gorm.DB) repositories.PendingTaskRepository {
	return &pendingTaskRepository{db: db}
}

func (r *pendingTaskRepository) Create(ctx context.Context, tx *gorm.DB, task *models.PendingTask) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(task).Error; err != nil {
		return handleDBError(err, "create pending task")
	}
	return nil
}

func (r *pendingTaskRepository) Update(ctx context.Context, tx *gorm.DB, task *models.PendingTask) error {
	if err := getDB(r.db, tx).WithContext(ctx).Save(task).Error; err != nil {
		return handleDBError(err, "update pending task")
	}
	return nil
}

func (r *pendingTaskRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(r.db, tx).WithContext(ctx).Delete(&models.PendingTask{}, id).Error; err != nil {
		return handleDBError(err, "delete pending task")
	}
	return nil
}

func (r *pendingTaskRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PendingTask, error) {
	var task models.PendingTask
	if err := getDB(r.db, tx).WithContext(ctx).
		Preload("Student").
		First(&task, id).Error; err != nil {
		return nil, handleDBError(err, "get pending task by id")
	}
	return &task, nil
}

func (r *pendingTaskRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentScopedFilters) ([]*models.PendingTask, int64, error) {
	var tasks []*models.PendingTask
	var total int64

	query := getDB(r.db, tx).WithContext(ctx).Model(&models.PendingTask{})
	if len(filters.StudentIDs) > 0 {
		query = query.Where("student_id IN ?", filters.StudentIDs)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count pending tasks")
	}

	query = query.Preload("Student").Order("due_date ASC NULLS LAST")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&tasks).Error; err != nil {
		return nil, 0, handleDBError(err, "list pending tasks")
	}

	return tasks, total, nil
}

// ===== LESSON PLANS =====

type lessonPlanRepository struct {
	db *gorm.DB
}

func NewLessonPlanPostgreSQL(db *gorm.DB) repositories.LessonPlanRepository {
	return &lessonPlanRepository{db: db}
}

func (r *lessonPlanRepository) Create(ctx context.Context, tx *gorm.DB, plan *models.LessonPlan) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(plan).Error; err != nil {
		return handleDBError(err, "create lesson plan")
	}
	return nil
}

func (r *lessonPlanRepository) Update(ctx context.Context, tx *gorm.DB, plan *models.LessonPlan) error {
	if err := getDB(r.db, tx).WithContext(ctx).Save(plan).Error; err != nil {
		return handleDBError(err, "update lesson plan")
	}
	return nil
}

func (r *lessonPlanRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(r.db, tx).WithContext(ctx).Delete(&models.LessonPlan{}, id).Error; err != nil {
		return handleDBError(err, "delete lesson plan")
	}
	return nil
}

func (r *lessonPlanRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.LessonPlan, error) {
	var plan models.LessonPlan
	if err := getDB(r.db, tx).WithContext(ctx).
		Preload("Teacher").
		First(&plan, id).Error; err != nil {
		return nil, handleDBError(err, "get lesson plan by id")
	}
	return &plan, nil
}

func (r *lessonPlanRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.LessonPlanFilters) ([]*models.LessonPlan, int64, error) {
	var plans []*models.LessonPlan
	var total int64

	query := getDB(r.db, tx).WithContext(ctx).Model(&models.LessonPlan{})
	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.ClassGroup != nil {
		query = query.Where("class_group = ?", *filters.ClassGroup)
	}
	if filters.Shift != nil {
		query = query.Where("shift = ?", *filters.Shift)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count lesson plans")
	}

	query = query.Preload("Teacher").Order("week_start DESC")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&plans).Error; err != nil {
		return nil, 0, handleDBError(err, "list lesson plans")
	}

	return plans, total, nil
}

func (r *lessonPlanRepository) ClassGroupsForTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) ([]string, error) {
	var groups []string
	if err := getDB(r.db, tx).WithContext(ctx).
		Model(&models.LessonPlan{}).
		Where("teacher_id = ?", teacherID).
		Distinct().
		Pluck("class_group", &groups).Error; err != nil {
		return nil, handleDBError(err, "class groups for teacher")
	}
	return groups, nil
}

func (r *lessonPlanRepository) Options(ctx context.Context, tx *gorm.DB) ([]string, []string, error) {
	db := getDB(r.db, tx).WithContext(ctx)

	var classGroups []string
	if err := db.Model(&models.LessonPlan{}).
		Distinct().
		Order("class_group ASC").
		Pluck("class_group", &classGroups).Error; err != nil {
		return nil, nil, handleDBError(err, "lesson plan class group options")
	}

	var shifts []string
	if err := db.Model(&models.LessonPlan{}).
		Distinct().
		Order("shift ASC").
		Pluck("shift", &shifts).Error; err != nil {
		return nil, nil, handleDBError(err, "lesson plan shift options")
	}

	return classGroups, shifts, nil
}

// ===== WARNINGS =====

type warningRepository struct {
	db *gorm.DB
}

func NewWarningPostgreSQL(db *gorm.DB) repositories.WarningRepository {
	return &warningRepository{db: db}
}

func (r *warningRepository) Create(ctx context.Context, tx *gorm.DB, warning *models.Warning) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(warning).Error; err != nil {
		return handleDBError(err, "create warning")
	}
	return nil
}

func (r *warningRepository) Update(ctx context.Context, tx *gorm.DB, warning *models.Warning) error {
	if err := getDB(r.db, tx).WithContext(ctx).Save(warning).Error; err != nil {
		return handleDBError(err, "update warning")
	}
	return nil
}

func (r *warningRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(r.db, tx).WithContext(ctx).Delete(&models.Warning{}, id).Error; err != nil {
		return handleDBError(err, "delete warning")
	}
	return nil
}

func (r *warningRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Warning, error) {
	var warning models.Warning
	if err := getDB(r.db, tx).WithContext(ctx).
		Preload("Student").
		First(&warning, id).Error; err != nil {
		return nil, handleDBError(err, "get warning by id")
	}
	return &warning, nil
}

func (r *warningRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentScopedFilters) ([]*models.Warning, int64, error) {
	var warnings []*models.Warning
	var total int64

	query := getDB(r.db, tx).WithContext(ctx).Model(&models.Warning{})
	if len(filters.StudentIDs) > 0 {
		query = query.Where("student_id IN ?", filters.StudentIDs)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count warnings")
	}

	query = query.Preload("Student").Order("issued_at DESC")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&warnings).Error; err != nil {
		return nil, 0, handleDBError(err, "list warnings")
	}

	return warnings, total, nil
}

// ===== SUSPENSIONS =====

type suspensionRepository struct {
	db *gorm.DB
}

func NewSuspensionPostgreSQL(db *gorm.DB) repositories.SuspensionRepository {
	return &suspensionRepository{db: db}
}

func (r *suspensionRepository) Create(ctx context.Context, tx *gorm.DB, suspension *models.Suspension) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(suspension).Error; err != nil {
		return handleDBError(err, "create suspension")
	}
	return nil
}

func (r *suspensionRepository) Update(ctx context.Context, tx *gorm.DB, suspension *models.Suspension) error {
	if err := getDB(r.db, tx).WithContext(ctx).Save(suspension).Error; err != nil {
		return handleDBError(err, "update suspension")
	}
	return nil
}

func (r *suspensionRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(r.db, tx).WithContext(ctx).Delete(&models.Suspension{}, id).Error; err != nil {
		return handleDBError(err, "delete suspension")
	}
	return nil
}

func (r *suspensionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Suspension, error) {
	var suspension models.Suspension
	if err := getDB(r.db, tx).WithContext(ctx).
		Preload("Student").
		First(&suspension, id).Error; err != nil {
		return nil, handleDBError(err, "get suspension by id")
	}
	return &suspension, nil
}

func (r *suspensionRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentScopedFilters) ([]*models.Suspension, int64, error) {
	var suspensions []*models.Suspension
	var total int64

	query := getDB(r.db, tx).WithContext(ctx).Model(&models.Suspension{})
	if len(filters.StudentIDs) > 0 {
		query = query.Where("student_id IN ?", filters.StudentIDs)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count suspensions")
	}

	query = query.Preload("Student").Order("start_date DESC")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&suspensions).Error; err != nil {
		return nil, 0, handleDBError(err, "list suspensions")
	}

	return suspensions, total, nil
}

// ===== CALENDAR EVENTS =====

type calendarEventRepository struct {
	db *gorm.DB
}

func NewCalendarEventPostgreSQL(db *gorm.DB) repositories.CalendarEventRepository {
	return &calendarEventRepository{db: db}
}

func (r *calendarEventRepository) Create(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(event).Error; err != nil {
		return handleDBError(err, "create calendar event")
	}
	return nil
}

func (r *calendarEventRepository) Update(ctx context.Context, tx *gorm.DB, event *models.CalendarEvent) error {
	if err := getDB(r.db, tx).WithContext(ctx).Save(event).Error; err != nil {
		return handleDBError(err, "update calendar event")
	}
	return nil
}

func (r *calendarEventRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(r.db, tx).WithContext(ctx).Delete(&models.CalendarEvent{}, id).Error; err != nil {
		return handleDBError(err, "delete calendar event")
	}
	return nil
}

func (r *calendarEventRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := getDB(r.db, tx).WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, handleDBError(err, "get calendar event by id")
	}
	return &event, nil
}

func (r *calendarEventRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.CalendarEventFilters) ([]*models.CalendarEvent, int64, error) {
	var events []*models.CalendarEvent
	var total int64

	query := getDB(r.db, tx).WithContext(ctx).Model(&models.CalendarEvent{})
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count calendar events")
	}

	query = query.Order("date ASC")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&events).Error; err != nil {
		return nil, 0, handleDBError(err, "list calendar events")
	}

	return events, total, nil
}
