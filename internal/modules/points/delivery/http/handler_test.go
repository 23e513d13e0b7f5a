package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/entity"
	pointsRepo "github.com/rightsvoice/backend/internal/modules/points/repository"
	points "github.com/rightsvoice/backend/internal/modules/points/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPointsRouter(t *testing.T, userID *uuid.UUID) (*gin.Engine, points.PointsService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.PointsEarned{}, &entity.PointsDeduction{}))

	svc := points.NewPointsService(pointsRepo.NewPointsRepository(db))
	h := NewPointsHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set("user_id", userID.String())
		}
		c.Next()
	})
	router.GET("/api/points/balance", h.GetBalance)
	router.GET("/api/points/history", h.GetHistory)

	return router, svc
}

func TestGetBalanceHandler(t *testing.T) {
	userID := uuid.New()
	router, svc := setupPointsRouter(t, &userID)

	require.NoError(t, svc.Award(context.Background(), userID, 10, entity.SourceWelcomeBonus, "Welcome"))
	require.NoError(t, svc.ChargeForAction(context.Background(), userID, entity.ActionCommentCreation))

	req := httptest.NewRequest(http.MethodGet, "/api/points/balance", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Balance int `json:"balance"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 8, body.Balance)
}

func TestGetBalanceHandlerUnauthenticated(t *testing.T) {
	router, _ := setupPointsRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/points/balance", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetHistoryHandler(t *testing.T) {
	userID := uuid.New()
	router, svc := setupPointsRouter(t, &userID)

	require.NoError(t, svc.Award(context.Background(), userID, 10, entity.SourceWelcomeBonus, "Welcome"))
	require.NoError(t, svc.ChargeForAction(context.Background(), userID, entity.ActionReplyCreation))

	req := httptest.NewRequest(http.MethodGet, "/api/points/history", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Earned     []entity.PointsEarned    `json:"earned"`
		Deductions []entity.PointsDeduction `json:"deductions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Earned, 1)
	assert.Len(t, body.Deductions, 1)
	assert.Equal(t, entity.ActionCost, body.Deductions[0].PointsUsed)
}
