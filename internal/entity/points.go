package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCommentCreation = "comment_creation"
	ActionReplyCreation   = "reply_creation"

	// Every chargeable action costs the same fixed amount
	ActionCost = 2

	SourceWelcomeBonus      = "welcome_bonus"
	SourceComplaintResolved = "complaint_resolved"

	PointsWelcomeBonus      = 10
	PointsComplaintResolved = 20
)

// PointsEarned is an append-only record of a reward event. Rows are only
// ever inserted; a user's balance is derived by summing them.
type PointsEarned struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Points      int       `gorm:"not null" json:"points"`
	Source      string    `gorm:"size:50;not null" json:"source"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (PointsEarned) TableName() string {
	return "user_points"
}

// PointsDeduction is an append-only record of a spend event, written at most
// once per chargeable action. Never updated or deleted.
type PointsDeduction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PointsUsed  int       `gorm:"not null" json:"points_used"`
	ActionType  string    `gorm:"size:50;not null" json:"action_type"` // 'comment_creation', 'reply_creation'
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (PointsDeduction) TableName() string {
	return "user_points_deductions"
}
