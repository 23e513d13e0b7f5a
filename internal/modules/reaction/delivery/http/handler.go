package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/entity"
	reactionDto "github.com/rightsvoice/backend/internal/modules/reaction/dto"
	reaction "github.com/rightsvoice/backend/internal/modules/reaction/service"
	"github.com/rightsvoice/backend/pkg/response"
	"github.com/rightsvoice/backend/pkg/validator"
)

type ReactionHandler struct {
	service reaction.ReactionService
}

func NewReactionHandler(service reaction.ReactionService) *ReactionHandler {
	return &ReactionHandler{service: service}
}

func (h *ReactionHandler) Toggle(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req reactionDto.ReactionToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Toggle(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReactionHandler) GetReactions(c *gin.Context) {
	refType := c.Param("refType")
	if refType != entity.ReferencePost && refType != entity.ReferenceComment {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reference type"})
		return
	}

	refID, err := uuid.Parse(c.Param("refID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reference id"})
		return
	}

	userID := response.OptionalUserID(c)

	resp, err := h.service.GetReactions(c.Request.Context(), userID, refID, refType)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
