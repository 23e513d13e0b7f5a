package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/pkg/dto"
)

type CreateComplaintRequest struct {
	Title        string   `json:"title" form:"title" binding:"required,min=5,max=255"`
	Description  string   `json:"description" form:"description" binding:"required,min=20"`
	Category     string   `json:"category" form:"category" binding:"required,oneof=discrimination violence censorship detention other"`
	Latitude     *float64 `json:"latitude" form:"latitude" binding:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude" form:"longitude" binding:"omitempty,longitude"`
	LocationName string   `json:"location_name" form:"location_name" binding:"max=255"`
}

type UpdateStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=under_review resolved rejected"`
	Resolution string `json:"resolution" binding:"max=5000"`
}

type ComplaintFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending under_review resolved rejected"`
	Category string `form:"category" binding:"omitempty,oneof=discrimination violence censorship detention other"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type ComplaintResponse struct {
	ID           uuid.UUID          `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Category     string             `json:"category"`
	Status       string             `json:"status"`
	Latitude     *float64           `json:"latitude,omitempty"`
	Longitude    *float64           `json:"longitude,omitempty"`
	LocationName string             `json:"location_name,omitempty"`
	EvidenceURL  *string            `json:"evidence_url,omitempty"`
	Resolution   string             `json:"resolution,omitempty"`
	Filer        dto.AuthorResponse `json:"filer"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type PaginatedComplaintResponse struct {
	Data []ComplaintResponse `json:"data"`
	Meta dto.PaginationMeta  `json:"meta"`
}
