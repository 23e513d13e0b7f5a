package complaint

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/entity"
	complaintDto "github.com/rightsvoice/backend/internal/modules/complaint/dto"
	complaintRepo "github.com/rightsvoice/backend/internal/modules/complaint/repository"
	notifRepo "github.com/rightsvoice/backend/internal/modules/notification/repository"
	notification "github.com/rightsvoice/backend/internal/modules/notification/service"
	pointsRepo "github.com/rightsvoice/backend/internal/modules/points/repository"
	points "github.com/rightsvoice/backend/internal/modules/points/service"
	userRepo "github.com/rightsvoice/backend/internal/modules/user/repository"
	"github.com/rightsvoice/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type complaintFixture struct {
	db        *gorm.DB
	svc       ComplaintService
	pointsSvc points.PointsService
	filer     entity.User
	reviewer  entity.User
}

func setupComplaintFixture(t *testing.T) *complaintFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Role{}, &entity.User{}, &entity.Complaint{},
		&entity.PointsEarned{}, &entity.PointsDeduction{}, &entity.Notification{},
	))

	adminRole := entity.Role{Name: "admin"}
	require.NoError(t, db.Create(&adminRole).Error)

	filer := entity.User{Username: "amina", Email: "amina@example.org", PasswordHash: "x"}
	require.NoError(t, db.Create(&filer).Error)
	reviewer := entity.User{Username: "mod", Email: "mod@example.org", PasswordHash: "x", RoleID: &adminRole.ID}
	require.NoError(t, db.Create(&reviewer).Error)

	pointsSvc := points.NewPointsService(pointsRepo.NewPointsRepository(db))
	notifSvc := notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	svc := NewComplaintService(
		complaintRepo.NewComplaintRepository(db),
		userRepo.NewUserRepository(db),
		pointsSvc,
		notifSvc,
		nil,
	)

	return &complaintFixture{db: db, svc: svc, pointsSvc: pointsSvc, filer: filer, reviewer: reviewer}
}

func (f *complaintFixture) file(t *testing.T) *complaintDto.ComplaintResponse {
	t.Helper()

	lat, lng := -6.2, 106.8
	resp, err := f.svc.Create(context.Background(), f.filer.ID, complaintDto.CreateComplaintRequest{
		Title:        "Arbitrary detention at checkpoint",
		Description:  "Detained for six hours without charge or explanation.",
		Category:     entity.ComplaintCategoryDetention,
		Latitude:     &lat,
		Longitude:    &lng,
		LocationName: "Jakarta",
	}, nil, "")
	require.NoError(t, err)
	return resp
}

func TestCreateComplaintStartsPending(t *testing.T) {
	f := setupComplaintFixture(t)

	resp := f.file(t)
	assert.Equal(t, entity.ComplaintStatusPending, resp.Status)
	assert.Equal(t, "amina", resp.Filer.Username)
}

func TestCreateComplaintCoordinatesComeTogether(t *testing.T) {
	f := setupComplaintFixture(t)
	lat := -6.2

	_, err := f.svc.Create(context.Background(), f.filer.ID, complaintDto.CreateComplaintRequest{
		Title:       "Missing longitude",
		Description: "A description long enough to pass validation here.",
		Category:    entity.ComplaintCategoryOther,
		Latitude:    &lat,
	}, nil, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}

func TestStatusCannotSkipReview(t *testing.T) {
	f := setupComplaintFixture(t)
	created := f.file(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.reviewer.ID, created.ID, complaintDto.UpdateStatusRequest{
		Status: entity.ComplaintStatusResolved,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestStatusWorkflowResolvesAndAwards(t *testing.T) {
	f := setupComplaintFixture(t)
	ctx := context.Background()
	created := f.file(t)

	underReview, err := f.svc.UpdateStatus(ctx, f.reviewer.ID, created.ID, complaintDto.UpdateStatusRequest{
		Status: entity.ComplaintStatusUnderReview,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ComplaintStatusUnderReview, underReview.Status)

	resolved, err := f.svc.UpdateStatus(ctx, f.reviewer.ID, created.ID, complaintDto.UpdateStatusRequest{
		Status:     entity.ComplaintStatusResolved,
		Resolution: "Verified against two independent witness statements.",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ComplaintStatusResolved, resolved.Status)
	assert.NotEmpty(t, resolved.Resolution)

	// Resolution pays out the reward
	assert.Equal(t, entity.PointsComplaintResolved, f.pointsSvc.GetBalance(ctx, f.filer.ID))

	var earned entity.PointsEarned
	require.NoError(t, f.db.First(&earned, "user_id = ?", f.filer.ID).Error)
	assert.Equal(t, entity.SourceComplaintResolved, earned.Source)
}

func TestStatusRejectionAwardsNothing(t *testing.T) {
	f := setupComplaintFixture(t)
	ctx := context.Background()
	created := f.file(t)

	_, err := f.svc.UpdateStatus(ctx, f.reviewer.ID, created.ID, complaintDto.UpdateStatusRequest{
		Status: entity.ComplaintStatusUnderReview,
	})
	require.NoError(t, err)

	rejected, err := f.svc.UpdateStatus(ctx, f.reviewer.ID, created.ID, complaintDto.UpdateStatusRequest{
		Status: entity.ComplaintStatusRejected,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ComplaintStatusRejected, rejected.Status)
	assert.Zero(t, f.pointsSvc.GetBalance(ctx, f.filer.ID))
}

func TestResolvedComplaintIsFinal(t *testing.T) {
	f := setupComplaintFixture(t)
	ctx := context.Background()
	created := f.file(t)

	_, err := f.svc.UpdateStatus(ctx, f.reviewer.ID, created.ID, complaintDto.UpdateStatusRequest{
		Status: entity.ComplaintStatusUnderReview,
	})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, f.reviewer.ID, created.ID, complaintDto.UpdateStatusRequest{
		Status: entity.ComplaintStatusResolved,
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.reviewer.ID, created.ID, complaintDto.UpdateStatusRequest{
		Status: entity.ComplaintStatusUnderReview,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestGetByIDFilerAndAdminOnly(t *testing.T) {
	f := setupComplaintFixture(t)
	ctx := context.Background()
	created := f.file(t)

	_, err := f.svc.GetByID(ctx, f.filer.ID, created.ID)
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, f.reviewer.ID, created.ID)
	require.NoError(t, err)

	stranger := entity.User{Username: "other", Email: "other@example.org", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&stranger).Error)

	_, err = f.svc.GetByID(ctx, stranger.ID, created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestUnknownComplaint(t *testing.T) {
	f := setupComplaintFixture(t)

	_, err := f.svc.GetByID(context.Background(), f.filer.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

// A deployment without the notification service wired must still move
// complaints through the workflow.
func TestStatusChangeWithoutNotifier(t *testing.T) {
	f := setupComplaintFixture(t)
	ctx := context.Background()
	created := f.file(t)

	svc := NewComplaintService(
		complaintRepo.NewComplaintRepository(f.db),
		userRepo.NewUserRepository(f.db),
		f.pointsSvc,
		nil,
		nil,
	)

	resp, err := svc.UpdateStatus(ctx, f.reviewer.ID, created.ID, complaintDto.UpdateStatusRequest{
		Status: entity.ComplaintStatusUnderReview,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ComplaintStatusUnderReview, resp.Status)

	var stored entity.Complaint
	require.NoError(t, f.db.First(&stored, "id = ?", created.ID).Error)
	svc.(*complaintService).notifyFiler(&stored, f.reviewer.ID)
}
