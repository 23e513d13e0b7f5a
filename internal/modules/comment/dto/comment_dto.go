package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/pkg/dto"
)

type CreateCommentRequest struct {
	PostID   string `json:"post_id"`
	ParentID string `json:"parent_id"`
	Content  string `json:"content" binding:"required,min=1,max=5000"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

type CommentResponse struct {
	ID        uuid.UUID             `json:"id"`
	PostID    uuid.UUID             `json:"post_id"`
	ParentID  *uuid.UUID            `json:"parent_id,omitempty"`
	Content   string                `json:"content"`
	Author    dto.AuthorResponse    `json:"author"`
	Reactions dto.ReactionsResponse `json:"reactions"`
	Depth     int                   `json:"depth"`
	Replies   []*CommentResponse    `json:"replies"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}
