package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shegerlabs/accreditation-service/internal/dto"
	"github.com/shegerlabs/accreditation-service/internal/service"
	"github.com/shegerlabs/accreditation-service/pkg/middleware"
	"github.com/shegerlabs/accreditation-service/pkg/response"
)

// ParticipantTypeHandler handles participant type HTTP requests
type ParticipantTypeHandler struct {
	typeService service.ParticipantTypeService
}

// NewParticipantTypeHandler creates a new ParticipantTypeHandler
func NewParticipantTypeHandler(typeService service.ParticipantTypeService) *ParticipantTypeHandler {
	return &ParticipantTypeHandler{typeService: typeService}
}

// Create handles participant type creation
// POST /api/v1/participant-types
func (h *ParticipantTypeHandler) Create(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	var req dto.CreateParticipantTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	req.TenantID = tenantID

	result, err := h.typeService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrParticipantTypeExists) {
			c.JSON(http.StatusConflict, response.Conflict("Participant type with this slug already exists"))
			return
		}
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}

// GetByID handles retrieving a participant type by ID
// GET /api/v1/participant-types/:id
func (h *ParticipantTypeHandler) GetByID(c *gin.Context) {
	result, err := h.typeService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrParticipantTypeNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Participant type not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// List handles retrieving the tenant's participant types
// GET /api/v1/participant-types
func (h *ParticipantTypeHandler) List(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	result, err := h.typeService.List(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Update handles participant type update
// PUT /api/v1/participant-types/:id
func (h *ParticipantTypeHandler) Update(c *gin.Context) {
	var req dto.UpdateParticipantTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.typeService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrParticipantTypeNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Participant type not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Delete handles participant type deletion
// DELETE /api/v1/participant-types/:id
func (h *ParticipantTypeHandler) Delete(c *gin.Context) {
	if err := h.typeService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrParticipantTypeNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Participant type not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{"deleted": true}))
}
