package points

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/entity"
	pointsRepo "github.com/rightsvoice/backend/internal/modules/points/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPointsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Shared cache keeps every pooled connection on the same in-memory DB,
	// the test name keeps tests isolated from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entity.PointsEarned{}, &entity.PointsDeduction{}))
	return db
}

func newTestService(t *testing.T) (PointsService, *gorm.DB) {
	db := setupPointsTestDB(t)
	return NewPointsService(pointsRepo.NewPointsRepository(db)), db
}

func TestGetBalanceEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	balance := svc.GetBalance(context.Background(), uuid.New())
	assert.Equal(t, 0, balance)
}

func TestGetBalanceSumsBothRecordSets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.Award(ctx, userID, entity.PointsWelcomeBonus, entity.SourceWelcomeBonus, "Welcome"))
	require.NoError(t, svc.Award(ctx, userID, entity.PointsComplaintResolved, entity.SourceComplaintResolved, "Report resolved"))
	require.NoError(t, svc.ChargeForAction(ctx, userID, entity.ActionCommentCreation))

	assert.Equal(t, 10+20-2, svc.GetBalance(ctx, userID))
}

func TestGetBalanceIsolatedPerUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, svc.Award(ctx, alice, 10, entity.SourceWelcomeBonus, "Welcome"))

	assert.Equal(t, 10, svc.GetBalance(ctx, alice))
	assert.Equal(t, 0, svc.GetBalance(ctx, bob))
}

func TestChargeForActionFixedCost(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.ChargeForAction(ctx, userID, entity.ActionReplyCreation))

	var record entity.PointsDeduction
	require.NoError(t, db.First(&record, "user_id = ?", userID).Error)
	assert.Equal(t, entity.ActionCost, record.PointsUsed)
	assert.Equal(t, entity.ActionReplyCreation, record.ActionType)
	assert.Contains(t, record.Description, "Spent 2 points")
}

func TestChargeForActionUnknownType(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	err := svc.ChargeForAction(ctx, userID, "post_creation")
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&entity.PointsDeduction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAwardRejectsNonPositive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.Error(t, svc.Award(ctx, uuid.New(), 0, entity.SourceWelcomeBonus, ""))
	assert.Error(t, svc.Award(ctx, uuid.New(), -5, entity.SourceWelcomeBonus, ""))
}

// Welcome bonus then two comments: 10 - 2 - 2 leaves 6.
func TestBalanceAfterWelcomeAndTwoComments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.Award(ctx, userID, entity.PointsWelcomeBonus, entity.SourceWelcomeBonus, "Welcome"))
	require.NoError(t, svc.ChargeForAction(ctx, userID, entity.ActionCommentCreation))
	require.NoError(t, svc.ChargeForAction(ctx, userID, entity.ActionReplyCreation))

	assert.Equal(t, 6, svc.GetBalance(ctx, userID))
}

func TestHistoryReturnsBothSides(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.Award(ctx, userID, 10, entity.SourceWelcomeBonus, "Welcome"))
	require.NoError(t, svc.ChargeForAction(ctx, userID, entity.ActionCommentCreation))

	earned, deductions, err := svc.History(ctx, userID, 50)
	require.NoError(t, err)
	assert.Len(t, earned, 1)
	assert.Len(t, deductions, 1)
}

type failingPointsRepo struct{}

func (failingPointsRepo) WithTx(tx *gorm.DB) pointsRepo.PointsRepository { return failingPointsRepo{} }
func (failingPointsRepo) CreateEarned(ctx context.Context, record *entity.PointsEarned) error {
	return errors.New("db down")
}
func (failingPointsRepo) CreateDeduction(ctx context.Context, record *entity.PointsDeduction) error {
	return errors.New("db down")
}
func (failingPointsRepo) SumEarned(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, errors.New("db down")
}
func (failingPointsRepo) SumDeductions(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, errors.New("db down")
}
func (failingPointsRepo) ListEarned(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointsEarned, error) {
	return nil, errors.New("db down")
}
func (failingPointsRepo) ListDeductions(ctx context.Context, userID uuid.UUID, limit int) ([]entity.PointsDeduction, error) {
	return nil, errors.New("db down")
}

// A fetch failure reads as zero instead of an error.
func TestGetBalanceFailsOpenToZero(t *testing.T) {
	svc := NewPointsService(failingPointsRepo{})

	balance := svc.GetBalance(context.Background(), uuid.New())
	assert.Equal(t, 0, balance)
}
