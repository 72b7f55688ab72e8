package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/escola-viva/secretaria-service/internal/models"
	"github.com/escola-viva/secretaria-service/internal/repositories"
)

// ===== ROOMS =====

type roomRepository struct {
	db *gorm.DB
}

func NewRoomPostgreSQL(db *gorm.DB) repositories.RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, tx *gorm.DB, room *models.Room) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(room).Error; err != nil {
		return handleDBError(err, "create room")
	}
	return nil
}

func (r *roomRepository) Update(ctx context.Context, tx *gorm.DB, room *models.Room) error {
	if err := getDB(r.db, tx).WithContext(ctx).Save(room).Error; err != nil {
		return handleDBError(err, "update room")
	}
	return nil
}

func (r *roomRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(r.db, tx).WithContext(ctx).Delete(&models.Room{}, id).Error; err != nil {
		return handleDBError(err, "delete room")
	}
	return nil
}

func (r *roomRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error) {
	var room models.Room
	if err := getDB(r.db, tx).WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, handleDBError(err, "get room by id")
	}
	return &room, nil
}

func (r *roomRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.Room, error) {
	var rooms []*models.Room
	if err := getDB(r.db, tx).WithContext(ctx).
		Order("name ASC").
		Find(&rooms).Error; err != nil {
		return nil, handleDBError(err, "list rooms")
	}
	return rooms, nil
}

// ===== RESERVATIONS =====

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationPostgreSQL(db *gorm.DB) repositories.ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	if err := getDB(r.db, tx).WithContext(ctx).Create(reservation).Error; err != nil {
		return handleDBError(err, "create reservation")
	}
	return nil
}

func (r *reservationRepository) Update(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	if err := getDB(r.db, tx).WithContext(ctx).Save(reservation).Error; err != nil {
		return handleDBError(err, "update reservation")
	}
	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(r.db, tx).WithContext(ctx).Delete(&models.Reservation{}, id).Error; err != nil {
		return handleDBError(err, "delete reservation")
	}
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := getDB(r.db, tx).WithContext(ctx).
		Preload("Room").
		Preload("Account").
		First(&reservation, id).Error; err != nil {
		return nil, handleDBError(err, "get reservation by id")
	}
	return &reservation, nil
}

func (r *reservationRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ReservationFilters) ([]*models.Reservation, int64, error) {
	var reservations []*models.Reservation
	var total int64

	query := getDB(r.db, tx).WithContext(ctx).Model(&models.Reservation{})
	if filters.RoomID != nil {
		query = query.Where("room_id = ?", *filters.RoomID)
	}
	if filters.AccountID != nil {
		query = query.Where("account_id = ?", *filters.AccountID)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count reservations")
	}

	query = query.Preload("Room").Preload("Account").
		Order("date ASC, start_time ASC")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&reservations).Error; err != nil {
		return nil, 0, handleDBError(err, "list reservations")
	}

	return reservations, total, nil
}

// FindConflicts uses the half-open overlap test start < existing_end AND
// end > existing_start, so back-to-back windows never collide. When running
// inside a transaction the matching rows are locked to keep the
// check-then-insert atomic against concurrent bookings.
func (r *reservationRepository) FindConflicts(ctx context.Context, tx *gorm.DB, roomID uint, date time.Time, start, end string, excludeID uint) ([]*models.Reservation, error) {
	var conflicts []*models.Reservation

	db := getDB(r.db, tx)
	query := db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("room_id = ? AND date = ?", roomID, date).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if inTransaction(db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	if err := query.Find(&conflicts).Error; err != nil {
		return nil, handleDBError(err, "find reservation conflicts")
	}

	return conflicts, nil
}

func (r *reservationRepository) CountFutureByAccount(ctx context.Context, tx *gorm.DB, accountID uint, from time.Time) (int64, error) {
	var count int64
	if err := getDB(r.db, tx).WithContext(ctx).
		Model(&models.Reservation{}).
		Where("account_id = ? AND date >= ?", accountID, from).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count future reservations")
	}
	return count, nil
}
