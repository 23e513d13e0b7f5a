package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/pkg/dto"
)

type CreateArticleRequest struct {
	Title   string `json:"title" binding:"required,min=5,max=255"`
	Summary string `json:"summary" binding:"max=500"`
	Content string `json:"content" binding:"required,min=50"`
	Topic   string `json:"topic" binding:"required,min=2,max=100"`
}

type UpdateArticleRequest struct {
	Title   string `json:"title" binding:"omitempty,min=5,max=255"`
	Summary string `json:"summary" binding:"omitempty,max=500"`
	Content string `json:"content" binding:"omitempty,min=50"`
	Topic   string `json:"topic" binding:"omitempty,min=2,max=100"`
}

type ArticleFilter struct {
	Topic string `form:"topic"`
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}

type ArticleResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content,omitempty"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PaginatedArticleResponse struct {
	Data []ArticleResponse  `json:"data"`
	Meta dto.PaginationMeta `json:"meta"`
}
