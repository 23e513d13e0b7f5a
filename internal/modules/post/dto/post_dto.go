package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/pkg/dto"
)

type CreatePostRequest struct {
	Content string `json:"content" form:"content" binding:"required,min=1,max=10000"`
}

type UpdatePostRequest struct {
	Content string `json:"content" binding:"required,min=1,max=10000"`
}

type PostFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type PostResponse struct {
	ID           uuid.UUID             `json:"id"`
	Content      string                `json:"content"`
	ImageURL     *string               `json:"image_url,omitempty"`
	Author       dto.AuthorResponse    `json:"author"`
	Reactions    dto.ReactionsResponse `json:"reactions"`
	CommentCount int64                 `json:"comment_count"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type PaginatedPostResponse struct {
	Data []PostResponse     `json:"data"`
	Meta dto.PaginationMeta `json:"meta"`
}
