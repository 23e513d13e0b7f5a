package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/entity"
	"gorm.io/gorm"
)

// PointsRepository persists the two append-only record sets the ledger is
// built from. WithTx returns a copy bound to a transaction so a charge can
// share an all-or-nothing boundary with the action it pays for.
type PointsRepository interface {
	WithTx(tx *gorm.DB) PointsRepository
	CreateEarned(ctx context.Context, record *entity.PointsEarned) error
	CreateDeduction(ctx context.Context, record *entity.PointsDeduction) error
	SumEarned(ctx context.Context, userID uuid.UUID) (int64, error)
	SumDeductions(ctx context.Context, userID uuid.UUID) (int64, error)
	ListEarned(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointsEarned, error)
	ListDeductions(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointsDeduction, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) WithTx(tx *gorm.DB) PointsRepository {
	if tx == nil {
		return r
	}
	return &pointsRepository{db: tx}
}

func (r *pointsRepository) CreateEarned(ctx context.Context, record *entity.PointsEarned) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *pointsRepository) CreateDeduction(ctx context.Context, record *entity.PointsDeduction) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *pointsRepository) SumEarned(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.PointsEarned{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}

func (r *pointsRepository) SumDeductions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.PointsDeduction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points_used), 0)").
		Scan(&total).Error
	return total, err
}

func (r *pointsRepository) ListEarned(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointsEarned, error) {
	var records []entity.PointsEarned
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *pointsRepository) ListDeductions(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointsDeduction, error) {
	var records []entity.PointsDeduction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}
