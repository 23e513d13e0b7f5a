package dto

import "github.com/google/uuid"

type ReactionToggleRequest struct {
	ReferenceID   uuid.UUID `json:"reference_id" binding:"required"`
	ReferenceType string    `json:"reference_type" binding:"required,oneof=post comment"`
	Type          string    `json:"type" binding:"required,oneof=true false notice"`
}
