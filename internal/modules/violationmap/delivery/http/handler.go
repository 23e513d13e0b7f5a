package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rightsvoice/backend/internal/entity"
	violationmap "github.com/rightsvoice/backend/internal/modules/violationmap/service"
	"github.com/rightsvoice/backend/pkg/response"
)

type ViolationMapHandler struct {
	service violationmap.ViolationMapService
}

func NewViolationMapHandler(service violationmap.ViolationMapService) *ViolationMapHandler {
	return &ViolationMapHandler{service: service}
}

func (h *ViolationMapHandler) GetMap(c *gin.Context) {
	category := c.Query("category")
	if category != "" && !isValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}

	resp, err := h.service.GetMap(c.Request.Context(), category)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func isValidCategory(category string) bool {
	switch category {
	case entity.ComplaintCategoryDiscrimination,
		entity.ComplaintCategoryViolence,
		entity.ComplaintCategoryCensorship,
		entity.ComplaintCategoryDetention,
		entity.ComplaintCategoryOther:
		return true
	}
	return false
}
