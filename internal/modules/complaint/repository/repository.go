package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/entity"
	"github.com/rightsvoice/backend/pkg/apperror"
	"gorm.io/gorm"
)

type ComplaintRepository interface {
	Create(ctx context.Context, complaint *entity.Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Complaint, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Complaint, int64, error)
	FindAll(ctx context.Context, status, category string, limit, offset int) ([]*entity.Complaint, int64, error)
	FindResolvedWithLocation(ctx context.Context) ([]*entity.Complaint, error)
	Update(ctx context.Context, complaint *entity.Complaint) error
}

type complaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *entity.Complaint) error {
	if err := r.db.WithContext(ctx).Create(complaint).Error; err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

func (r *complaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Complaint, error) {
	var complaint entity.Complaint
	err := r.db.WithContext(ctx).Preload("User").First(&complaint, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: complaint not found", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find complaint: %w", err)
	}
	return &complaint, nil
}

func (r *complaintRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Complaint, int64, error) {
	var complaints []*entity.Complaint
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Complaint{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count complaints: %w", err)
	}

	err := query.Preload("User").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&complaints).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, total, nil
}

func (r *complaintRepository) FindAll(ctx context.Context, status, category string, limit, offset int) ([]*entity.Complaint, int64, error) {
	var complaints []*entity.Complaint
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Complaint{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count complaints: %w", err)
	}

	err := query.Preload("User").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&complaints).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, total, nil
}

func (r *complaintRepository) FindResolvedWithLocation(ctx context.Context) ([]*entity.Complaint, error) {
	var complaints []*entity.Complaint
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.ComplaintStatusResolved).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("created_at DESC").
		Find(&complaints).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list resolved complaints: %w", err)
	}
	return complaints, nil
}

func (r *complaintRepository) Update(ctx context.Context, complaint *entity.Complaint) error {
	if err := r.db.WithContext(ctx).Save(complaint).Error; err != nil {
		return fmt.Errorf("failed to update complaint: %w", err)
	}
	return nil
}
