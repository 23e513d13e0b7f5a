package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	assistantDto "github.com/rightsvoice/backend/internal/modules/assistant/dto"
	assistant "github.com/rightsvoice/backend/internal/modules/assistant/service"
	"github.com/rightsvoice/backend/pkg/ratelimiter"
	"github.com/rightsvoice/backend/pkg/response"
	appValidator "github.com/rightsvoice/backend/pkg/validator"
)

type AssistantHandler struct {
	service assistant.AssistantService
}

func NewAssistantHandler(service assistant.AssistantService) *AssistantHandler {
	return &AssistantHandler{service: service}
}

func (h *AssistantHandler) Ask(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req assistantDto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": appValidator.FormatValidationError(validationErrs)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Ask(c.Request.Context(), userID, req)
	if err != nil {
		var rateLimitErr *ratelimiter.RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": rateLimitErr.Message})
			return
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
