package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	complaintDto "github.com/rightsvoice/backend/internal/modules/complaint/dto"
	complaint "github.com/rightsvoice/backend/internal/modules/complaint/service"
	"github.com/rightsvoice/backend/pkg/response"
	appValidator "github.com/rightsvoice/backend/pkg/validator"
)

type ComplaintHandler struct {
	service complaint.ComplaintService
}

func NewComplaintHandler(service complaint.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: service}
}

func (h *ComplaintHandler) CreateComplaint(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req complaintDto.CreateComplaintRequest
	if err := c.ShouldBind(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": appValidator.FormatValidationError(validationErrs)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var evidence io.Reader
	var evidenceName string
	if fileHeader, err := c.FormFile("evidence"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded evidence"})
			return
		}
		defer file.Close()
		evidence = file
		evidenceName = fileHeader.Filename
	}

	resp, err := h.service.Create(c.Request.Context(), userID, req, evidence, evidenceName)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ComplaintHandler) GetComplaintByID(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	complaintID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid complaint id"})
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), userID, complaintID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ComplaintHandler) GetMyComplaints(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var filter complaintDto.ComplaintFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.GetOwn(c.Request.Context(), userID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAllComplaints is the moderation queue, admin only.
func (h *ComplaintHandler) GetAllComplaints(c *gin.Context) {
	var filter complaintDto.ComplaintFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ComplaintHandler) UpdateComplaintStatus(c *gin.Context) {
	reviewerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	complaintID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid complaint id"})
		return
	}

	var req complaintDto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": appValidator.FormatValidationError(validationErrs)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.UpdateStatus(c.Request.Context(), reviewerID, complaintID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
