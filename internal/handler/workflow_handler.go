package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shegerlabs/accreditation-service/internal/domain"
	"github.com/shegerlabs/accreditation-service/internal/dto"
	"github.com/shegerlabs/accreditation-service/internal/service"
	"github.com/shegerlabs/accreditation-service/pkg/middleware"
	"github.com/shegerlabs/accreditation-service/pkg/response"
)

// WorkflowHandler handles workflow configuration HTTP requests
type WorkflowHandler struct {
	workflowService service.WorkflowService
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(workflowService service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

// Create handles workflow creation
// POST /api/v1/workflows
func (h *WorkflowHandler) Create(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	var req dto.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	req.TenantID = tenantID

	result, err := h.workflowService.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkflowAmbiguous):
			c.JSON(http.StatusConflict, response.Conflict("A workflow already exists for this participant type"))
		case errors.Is(err, domain.ErrWorkflowEmpty),
			errors.Is(err, domain.ErrWorkflowCyclic),
			errors.Is(err, domain.ErrWorkflowBrokenChain),
			errors.Is(err, domain.ErrWorkflowNoTerminal):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeValidationFailed, err.Error()))
		default:
			c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		}
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}

// GetByID handles retrieving a workflow by ID
// GET /api/v1/workflows/:id
func (h *WorkflowHandler) GetByID(c *gin.Context) {
	result, err := h.workflowService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrWorkflowNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Workflow not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// ListByEvent handles retrieving the workflows of an event
// GET /api/v1/events/:id/workflows
func (h *WorkflowHandler) ListByEvent(c *gin.Context) {
	result, err := h.workflowService.ListByEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Delete handles workflow deletion
// DELETE /api/v1/workflows/:id
func (h *WorkflowHandler) Delete(c *gin.Context) {
	if err := h.workflowService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrWorkflowNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Workflow not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{"deleted": true}))
}
