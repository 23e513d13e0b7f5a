package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/entity"
	"gorm.io/gorm"
)

type ReactionRepository interface {
	// Toggle returns oldType (if any) and newType (if any). Running the
	// read-then-branch inside one transaction, together with the unique index
	// on (user, reference), keeps concurrent toggles from leaving duplicates.
	Toggle(ctx context.Context, reaction *entity.Reaction) (string, string, error)
	GetUserReaction(ctx context.Context, userID uuid.UUID, refID uuid.UUID, refType string) (*string, error)
	GetCounts(ctx context.Context, refID uuid.UUID, refType string) (map[string]int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Toggle(ctx context.Context, reaction *entity.Reaction) (string, string, error) {
	var oldType, newType string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Find with slice avoids "record not found" log noise from First()
		var existing []entity.Reaction
		err := tx.Where("user_id = ? AND reference_id = ? AND reference_type = ?",
			reaction.UserID, reaction.ReferenceID, reaction.ReferenceType).
			Limit(1).
			Find(&existing).Error
		if err != nil {
			return err
		}

		if len(existing) == 0 {
			// No prior reaction -> insert
			if err := tx.Create(reaction).Error; err != nil {
				return err
			}
			newType = reaction.Type
			return nil
		}

		record := existing[0]
		oldType = record.Type

		if record.Type == reaction.Type {
			// Same type -> toggle off
			return tx.Delete(&record).Error
		}

		// Different type -> replace in place
		record.Type = reaction.Type
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		newType = reaction.Type
		return nil
	})
	if err != nil {
		return "", "", err
	}

	return oldType, newType, nil
}

func (r *reactionRepository) GetUserReaction(ctx context.Context, userID uuid.UUID, refID uuid.UUID, refType string) (*string, error) {
	var types []string
	err := r.db.WithContext(ctx).
		Model(&entity.Reaction{}).
		Where("user_id = ? AND reference_id = ? AND reference_type = ?", userID, refID, refType).
		Pluck("type", &types).Error
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, nil
	}
	return &types[0], nil
}

func (r *reactionRepository) GetCounts(ctx context.Context, refID uuid.UUID, refType string) (map[string]int64, error) {
	type result struct {
		Type  string
		Count int64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Model(&entity.Reaction{}).
		Select("type, count(*) as count").
		Where("reference_id = ? AND reference_type = ?", refID, refType).
		Group("type").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, res := range results {
		counts[res.Type] = res.Count
	}
	return counts, nil
}
