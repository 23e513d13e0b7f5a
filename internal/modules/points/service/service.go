package points

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/entity"
	pointsRepo "github.com/rightsvoice/backend/internal/modules/points/repository"
	"github.com/rightsvoice/backend/pkg/apperror"
	"gorm.io/gorm"
)

// actionLabels translate deduction action types into the human-readable
// descriptions stored on each record.
var actionLabels = map[string]string{
	entity.ActionCommentCreation: "creating a comment",
	entity.ActionReplyCreation:   "creating a reply",
}

type PointsService interface {
	// WithTx binds the service to a transaction so ChargeForAction shares an
	// all-or-nothing boundary with the dependent entity's insert.
	WithTx(tx *gorm.DB) PointsService

	// GetBalance derives the spendable balance from the two record sets on
	// every call. Any fetch error degrades to 0 (fail-open-to-zero): the
	// caller sees an empty balance rather than an error, which at worst
	// under-reports after a transient failure.
	GetBalance(ctx context.Context, userID uuid.UUID) int

	// ChargeForAction writes one deduction record at the fixed action cost.
	// Callers must treat an error as the gating step failing and must not
	// create the dependent entity.
	ChargeForAction(ctx context.Context, userID uuid.UUID, actionType string) error

	// Award records an earned-points event (reward triggers).
	Award(ctx context.Context, userID uuid.UUID, points int, source, description string) error

	History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointsEarned, []entity.PointsDeduction, error)
}

type pointsService struct {
	repo pointsRepo.PointsRepository
}

func NewPointsService(repo pointsRepo.PointsRepository) PointsService {
	return &pointsService{repo: repo}
}

func (s *pointsService) WithTx(tx *gorm.DB) PointsService {
	return &pointsService{repo: s.repo.WithTx(tx)}
}

func (s *pointsService) GetBalance(ctx context.Context, userID uuid.UUID) int {
	earned, err := s.repo.SumEarned(ctx, userID)
	if err != nil {
		log.Printf("points: failed to sum earned records for user %s: %v", userID, err)
		return 0
	}

	spent, err := s.repo.SumDeductions(ctx, userID)
	if err != nil {
		log.Printf("points: failed to sum deduction records for user %s: %v", userID, err)
		return 0
	}

	return int(earned - spent)
}

func (s *pointsService) ChargeForAction(ctx context.Context, userID uuid.UUID, actionType string) error {
	label, ok := actionLabels[actionType]
	if !ok {
		return fmt.Errorf("%w: unknown action type %q", apperror.ErrInvalidInput, actionType)
	}

	record := &entity.PointsDeduction{
		UserID:      userID,
		PointsUsed:  entity.ActionCost,
		ActionType:  actionType,
		Description: fmt.Sprintf("Spent %d points for %s", entity.ActionCost, label),
	}

	if err := s.repo.CreateDeduction(ctx, record); err != nil {
		return fmt.Errorf("failed to charge %s for %s: %w", userID, actionType, err)
	}

	return nil
}

func (s *pointsService) Award(ctx context.Context, userID uuid.UUID, points int, source, description string) error {
	if points <= 0 {
		return fmt.Errorf("%w: award must be positive", apperror.ErrInvalidInput)
	}

	record := &entity.PointsEarned{
		UserID:      userID,
		Points:      points,
		Source:      source,
		Description: description,
	}

	return s.repo.CreateEarned(ctx, record)
}

func (s *pointsService) History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointsEarned, []entity.PointsDeduction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	earned, err := s.repo.ListEarned(ctx, userID, limit)
	if err != nil {
		return nil, nil, err
	}

	deductions, err := s.repo.ListDeductions(ctx, userID, limit)
	if err != nil {
		return nil, nil, err
	}

	return earned, deductions, nil
}
