package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
)

// ===== GUARDIANS =====

type guardianRepository struct {
	db *gorm.DB
}

func NewGuardianPostgreSQL(db *gorm.DB) repositories.GuardianRepository {
	return &guardianRepository{db: db}
}

func (r *guardianRepository) Create(ctx context.Context, tx *gorm.DB, guardian *models.Guardian) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(guardian).Error; err != nil {
		return handleDBError(err, "create guardian")
	}
	return nil
}

func (r *guardianRepository) Update(ctx context.Context, tx *gorm.DB, guardian *models.Guardian) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(guardian).Error; err != nil {
		return handleDBError(err, "update guardian")
	}
	return nil
}

func (r *guardianRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Guardian{}, id).Error; err != nil {
		return handleDBError(err, "delete guardian")
	}
	return nil
}

func (r *guardianRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Guardian, error) {
	db := r.getDB(tx)
	var guardian models.Guardian

	if err := db.WithContext(ctx).First(&guardian, id).Error; err != nil {
		return nil, handleDBError(err, "get guardian by id")
	}

	return &guardian, nil
}

func (r *guardianRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Guardian, error) {
	db := r.getDB(tx)
	var guardian models.Guardian

	if err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&guardian).Error; err != nil {
		return nil, handleDBError(err, "get guardian by email")
	}

	return &guardian, nil
}

func (r *guardianRepository) GetByAccount(ctx context.Context, tx *gorm.DB, accountID uint) (*models.Guardian, error) {
	db := r.getDB(tx)
	var guardian models.Guardian

	if err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&guardian).Error; err != nil {
		return nil, handleDBError(err, "get guardian by account")
	}

	return &guardian, nil
}

func (r *guardianRepository) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Guardian, int64, error) {
	db := r.getDB(tx)
	var guardians []*models.Guardian
	var total int64

	query := db.WithContext(ctx).Model(&models.Guardian{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count guardians")
	}

	query = applyPagination(query.Order("name ASC"), limit, offset)

	if err := query.Find(&guardians).Error; err != nil {
		return nil, 0, handleDBError(err, "list guardians")
	}

	return guardians, total, nil
}

func (r *guardianRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== STUDENTS =====

type studentRepository struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(student).Error; err != nil {
		return handleDBError(err, "create student")
	}
	return nil
}

func (r *studentRepository) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(student).Error; err != nil {
		return handleDBError(err, "update student")
	}
	return nil
}

func (r *studentRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return handleDBError(err, "update student fields")
	}
	return nil
}

func (r *studentRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Student{}, id).Error; err != nil {
		return handleDBError(err, "delete student")
	}
	return nil
}

func (r *studentRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	db := r.getDB(tx)
	var student models.Student

	if err := db.WithContext(ctx).
		Preload("Guardian").
		First(&student, id).Error; err != nil {
		return nil, handleDBError(err, "get student by id")
	}

	return &student, nil
}

func (r *studentRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Student, error) {
	db := r.getDB(tx)
	var student models.Student

	if err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&student).Error; err != nil {
		return nil, handleDBError(err, "get student by email")
	}

	return &student, nil
}

func (r *studentRepository) GetByAccount(ctx context.Context, tx *gorm.DB, accountID uint) (*models.Student, error) {
	db := r.getDB(tx)
	var student models.Student

	if err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&student).Error; err != nil {
		return nil, handleDBError(err, "get student by account")
	}

	return &student, nil
}

func (r *studentRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	db := r.getDB(tx)
	var students []*models.Student
	var total int64

	query := db.WithContext(ctx).Model(&models.Student{})
	query = r.applyStudentFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count students")
	}

	query = query.Preload("Guardian").Order("name ASC")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&students).Error; err != nil {
		return nil, 0, handleDBError(err, "list students")
	}

	return students, total, nil
}

func (r *studentRepository) applyStudentFilters(query *gorm.DB, filters repositories.StudentFilters) *gorm.DB {
	if len(filters.ClassGroups) > 0 {
		query = query.Where("class_group IN ?", filters.ClassGroups)
	}
	if len(filters.StudentIDs) > 0 {
		query = query.Where("id IN ?", filters.StudentIDs)
	}
	if filters.GuardianID != nil {
		query = query.Where("guardian_id = ?", *filters.GuardianID)
	}
	if filters.SchoolYear != nil {
		query = query.Where("school_year = ?", *filters.SchoolYear)
	}
	if filters.Active != nil {
		query = query.Where("active = ?", *filters.Active)
	}
	if filters.Search != nil {
		query = query.Where("name ILIKE ?", "%"+*filters.Search+"%")
	}
	return query
}

func (r *studentRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== TEACHERS =====

type teacherRepository struct {
	db *gorm.DB
}

func NewTeacherPostgreSQL(db *gorm.DB) repositories.TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(teacher).Error; err != nil {
		return handleDBError(err, "create teacher")
	}
	return nil
}

func (r *teacherRepository) Update(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(teacher).Error; err != nil {
		return handleDBError(err, "update teacher")
	}
	return nil
}

func (r *teacherRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Teacher{}, id).Error; err != nil {
		return handleDBError(err, "delete teacher")
	}
	return nil
}

func (r *teacherRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error) {
	db := r.getDB(tx)
	var teacher models.Teacher

	if err := db.WithContext(ctx).First(&teacher, id).Error; err != nil {
		return nil, handleDBError(err, "get teacher by id")
	}

	return &teacher, nil
}

func (r *teacherRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Teacher, error) {
	db := r.getDB(tx)
	var teacher models.Teacher

	if err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&teacher).Error; err != nil {
		return nil, handleDBError(err, "get teacher by email")
	}

	return &teacher, nil
}

func (r *teacherRepository) GetByAccount(ctx context.Context, tx *gorm.DB, accountID uint) (*models.Teacher, error) {
	db := r.getDB(tx)
	var teacher models.Teacher

	if err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&teacher).Error; err != nil {
		return nil, handleDBError(err, "get teacher by account")
	}

	return &teacher, nil
}

func (r *teacherRepository) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Teacher, int64, error) {
	db := r.getDB(tx)
	var teachers []*models.Teacher
	var total int64

	query := db.WithContext(ctx).Model(&models.Teacher{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count teachers")
	}

	query = applyPagination(query.Order("name ASC"), limit, offset)

	if err := query.Find(&teachers).Error; err != nil {
		return nil, 0, handleDBError(err, "list teachers")
	}

	return teachers, total, nil
}

func (r *teacherRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
