package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountPostgreSQL(db *gorm.DB) repositories.AccountRepository {
	return &accountRepository{db: db}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *accountRepository) Create(ctx context.Context, tx *gorm.DB, account *models.Account) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(account).Error; err != nil {
		return handleDBError(err, "create account")
	}
	return nil
}

func (r *accountRepository) Update(ctx context.Context, tx *gorm.DB, account *models.Account) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(account).Error; err != nil {
		return handleDBError(err, "update account")
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Account{}, id).Error; err != nil {
		return handleDBError(err, "delete account")
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *accountRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Account, error) {
	db := r.getDB(tx)
	var account models.Account

	if err := db.WithContext(ctx).
		Preload("Roles").
		First(&account, id).Error; err != nil {
		return nil, handleDBError(err, "get account by id")
	}

	return &account, nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.Account, error) {
	db := r.getDB(tx)
	var account models.Account

	if err := db.WithContext(ctx).
		Preload("Roles").
		Where("username = ?", username).
		First(&account).Error; err != nil {
		return nil, handleDBError(err, "get account by username")
	}

	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Account, error) {
	db := r.getDB(tx)
	var account models.Account

	if err := db.WithContext(ctx).
		Preload("Roles").
		Where("email = ?", email).
		First(&account).Error; err != nil {
		return nil, handleDBError(err, "get account by email")
	}

	return &account, nil
}

func (r *accountRepository) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Account, int64, error) {
	db := r.getDB(tx)
	var accounts []*models.Account
	var total int64

	query := db.WithContext(ctx).Model(&models.Account{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count accounts")
	}

	query = query.Preload("Roles").Order("username ASC")
	query = applyPagination(query, limit, offset)

	if err := query.Find(&accounts).Error; err != nil {
		return nil, 0, handleDBError(err, "list accounts")
	}

	return accounts, total, nil
}

func (r *accountRepository) UsernameExists(ctx context.Context, tx *gorm.DB, username string, excludeID uint) (bool, error) {
	db := r.getDB(tx)
	var count int64

	query := db.WithContext(ctx).
		Model(&models.Account{}).
		Where("username = ?", username)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, handleDBError(err, "check username")
	}

	return count > 0, nil
}

// ===== ROLE OPERATIONS =====

func (r *accountRepository) GetRoleByName(ctx context.Context, tx *gorm.DB, name models.RoleName) (*models.Role, error) {
	db := r.getDB(tx)
	var role models.Role

	if err := db.WithContext(ctx).
		Where("name = ?", name).
		First(&role).Error; err != nil {
		return nil, handleDBError(err, "get role by name")
	}

	return &role, nil
}

func (r *accountRepository) EnsureRole(ctx context.Context, tx *gorm.DB, name models.RoleName) (*models.Role, error) {
	db := r.getDB(tx)
	var role models.Role

	err := db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = models.Role{Name: name}
		if err := db.WithContext(ctx).Create(&role).Error; err != nil {
			return nil, handleDBError(err, "create role")
		}
		return &role, nil
	}
	if err != nil {
		return nil, handleDBError(err, "ensure role")
	}

	return &role, nil
}

func (r *accountRepository) AddRole(ctx context.Context, tx *gorm.DB, account *models.Account, role *models.Role) error {
	db := r.getDB(tx)
	if account.HasRole(role.Name) {
		return nil
	}
	if err := db.WithContext(ctx).Model(account).Association("Roles").Append(role); err != nil {
		return handleDBError(err, "add role to account")
	}
	return nil
}

func (r *accountRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== RESET TOKENS =====

type resetTokenRepository struct {
	db *gorm.DB
}

func NewResetTokenPostgreSQL(db *gorm.DB) repositories.ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Create(ctx context.Context, tx *gorm.DB, token *models.ResetToken) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(token).Error; err != nil {
		return handleDBError(err, "create reset token")
	}
	return nil
}

func (r *resetTokenRepository) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.ResetToken, error) {
	db := r.getDB(tx)
	var rt models.ResetToken

	if err := db.WithContext(ctx).
		Preload("Account").
		Where("token = ?", token).
		First(&rt).Error; err != nil {
		return nil, handleDBError(err, "get reset token")
	}

	return &rt, nil
}

func (r *resetTokenRepository) DeleteByAccount(ctx context.Context, tx *gorm.DB, accountID uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&models.ResetToken{}).Error; err != nil {
		return handleDBError(err, "delete reset tokens for account")
	}
	return nil
}

func (r *resetTokenRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.ResetToken{}, id).Error; err != nil {
		return handleDBError(err, "delete reset token")
	}
	return nil
}

func (r *resetTokenRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
