package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	points "github.com/rightsvoice/backend/internal/modules/points/service"
	"github.com/rightsvoice/backend/pkg/response"
)

type PointsHandler struct {
	service points.PointsService
}

func NewPointsHandler(service points.PointsService) *PointsHandler {
	return &PointsHandler{service: service}
}

func (h *PointsHandler) GetBalance(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	balance := h.service.GetBalance(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (h *PointsHandler) GetHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	earned, deductions, err := h.service.History(c.Request.Context(), userID, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"earned":     earned,
		"deductions": deductions,
	})
}
