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

type ArticleRepository interface {
	Create(ctx context.Context, article *entity.Article) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Article, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Article, error)
	FindAll(ctx context.Context, topic string, limit, offset int) ([]*entity.Article, int64, error)
	Update(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *entity.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

func (r *articleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Article, error) {
	var article entity.Article
	err := r.db.WithContext(ctx).First(&article, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: article not found", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	return &article, nil
}

func (r *articleRepository) FindBySlug(ctx context.Context, slug string) (*entity.Article, error) {
	var article entity.Article
	err := r.db.WithContext(ctx).First(&article, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: article not found", apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	return &article, nil
}

func (r *articleRepository) FindAll(ctx context.Context, topic string, limit, offset int) ([]*entity.Article, int64, error) {
	var articles []*entity.Article
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Article{})
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&articles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, total, nil
}

func (r *articleRepository) Update(ctx context.Context, article *entity.Article) error {
	if err := r.db.WithContext(ctx).Save(article).Error; err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&entity.Article{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}
