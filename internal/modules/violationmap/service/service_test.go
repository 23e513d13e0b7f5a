package violationmap

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/entity"
	complaintRepo "github.com/rightsvoice/backend/internal/modules/complaint/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMapFixture(t *testing.T) (ViolationMapService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Role{}, &entity.User{}, &entity.Complaint{}))

	return NewViolationMapService(complaintRepo.NewComplaintRepository(db), nil), db
}

func seedComplaint(t *testing.T, db *gorm.DB, status, category string, withLocation bool) {
	t.Helper()

	c := entity.Complaint{
		UserID:      uuid.New(),
		Title:       "Report",
		Description: "Details",
		Category:    category,
		Status:      status,
	}
	if withLocation {
		lat, lng := -6.2, 106.8
		c.Latitude = &lat
		c.Longitude = &lng
	}
	require.NoError(t, db.Create(&c).Error)
}

// Only resolved reports with coordinates make it onto the map.
func TestMapShowsOnlyResolvedGeotagged(t *testing.T) {
	svc, db := setupMapFixture(t)

	seedComplaint(t, db, entity.ComplaintStatusResolved, entity.ComplaintCategoryViolence, true)
	seedComplaint(t, db, entity.ComplaintStatusPending, entity.ComplaintCategoryViolence, true)
	seedComplaint(t, db, entity.ComplaintStatusRejected, entity.ComplaintCategoryViolence, true)
	seedComplaint(t, db, entity.ComplaintStatusResolved, entity.ComplaintCategoryViolence, false)

	resp, err := svc.GetMap(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, resp.Points, 1)
	assert.EqualValues(t, 1, resp.Total)
}

func TestMapCountsByCategory(t *testing.T) {
	svc, db := setupMapFixture(t)

	seedComplaint(t, db, entity.ComplaintStatusResolved, entity.ComplaintCategoryDetention, true)
	seedComplaint(t, db, entity.ComplaintStatusResolved, entity.ComplaintCategoryDetention, true)
	seedComplaint(t, db, entity.ComplaintStatusResolved, entity.ComplaintCategoryCensorship, true)

	resp, err := svc.GetMap(context.Background(), "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)
	assert.EqualValues(t, 2, resp.ByCategory[entity.ComplaintCategoryDetention])
	assert.EqualValues(t, 1, resp.ByCategory[entity.ComplaintCategoryCensorship])
}

func TestMapCategoryFilter(t *testing.T) {
	svc, db := setupMapFixture(t)

	seedComplaint(t, db, entity.ComplaintStatusResolved, entity.ComplaintCategoryDetention, true)
	seedComplaint(t, db, entity.ComplaintStatusResolved, entity.ComplaintCategoryCensorship, true)

	resp, err := svc.GetMap(context.Background(), entity.ComplaintCategoryCensorship)
	require.NoError(t, err)
	assert.Len(t, resp.Points, 1)
	assert.Equal(t, entity.ComplaintCategoryCensorship, resp.Points[0].Category)
}

func TestMapEmpty(t *testing.T) {
	svc, _ := setupMapFixture(t)

	resp, err := svc.GetMap(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, resp.Points)
	assert.Empty(t, resp.Points)
	assert.Zero(t, resp.Total)
}
