package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/entity"
	"github.com/rightsvoice/backend/pkg/apperror"
	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Post, int64, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Post, int64, error)
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var post entity.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*entity.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Post{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*entity.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) Update(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Post{}, "id = ?", id).Error
}
