package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shegerlabs/accreditation-service/internal/dto"
	"github.com/shegerlabs/accreditation-service/internal/repository"
	"github.com/shegerlabs/accreditation-service/internal/service"
	"github.com/shegerlabs/accreditation-service/pkg/middleware"
	"github.com/shegerlabs/accreditation-service/pkg/response"
)

// maxDocumentSize caps uploaded document size at 10 MB
const maxDocumentSize = 10 << 20

// ParticipantHandler handles participant HTTP requests: registration,
// lookups, the work queue, wishlist edits, document uploads and workflow
// transitions.
type ParticipantHandler struct {
	participantService service.ParticipantService
	engine             service.EngineService
}

// NewParticipantHandler creates a new ParticipantHandler
func NewParticipantHandler(participantService service.ParticipantService, engine service.EngineService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		engine:             engine,
	}
}

// Register handles direct back-office registration
// POST /api/v1/participants
func (h *ParticipantHandler) Register(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}
	actorID, _ := middleware.GetUserID(c)

	var req dto.RegisterParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	req.TenantID = tenantID

	result, err := h.participantService.Register(c.Request.Context(), actorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			c.JSON(http.StatusNotFound, response.NotFound("Event not found"))
		case errors.Is(err, service.ErrEventNotOpen):
			c.JSON(http.StatusConflict, response.Error(response.ErrCodeEventNotOpen, "Event is not open for registration"))
		case errors.Is(err, service.ErrParticipantTypeNotFound):
			c.JSON(http.StatusNotFound, response.NotFound("Participant type not found"))
		case errors.Is(err, service.ErrWorkflowNotConfigured), errors.Is(err, service.ErrWorkflowAmbiguous):
			c.JSON(http.StatusInternalServerError, response.Error(response.ErrCodeWorkflowMisconfigured, err.Error()))
		default:
			c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		}
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}

// GetByID handles retrieving a participant by ID
// GET /api/v1/participants/:id
func (h *ParticipantHandler) GetByID(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	result, err := h.participantService.GetByID(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Participant not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Queue handles retrieving the actor's work queue: participants whose current
// step is bound to one of the actor's roles
// GET /api/v1/participants/queue
func (h *ParticipantHandler) Queue(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}
	roles, ok := middleware.GetRoles(c)
	if !ok || len(roles) == 0 {
		c.JSON(http.StatusForbidden, response.Forbidden(""))
		return
	}

	var filter dto.QueueFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, total, err := h.participantService.Queue(c.Request.Context(), tenantID, roles, &filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(result, filter.Page, filter.Limit, int64(total)))
}

// Transition handles workflow action submission against a participant
// POST /api/v1/participants/:id/transition
func (h *ParticipantHandler) Transition(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}
	roles, _ := middleware.GetRoles(c)

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.engine.Transition(c.Request.Context(), c.Param("id"), actorID, roles, &req)
	if err != nil {
		switch {
		// A role mismatch reads exactly like a missing participant, so the
		// work queue and the transition endpoint disclose the same thing.
		case errors.Is(err, service.ErrParticipantNotFound), errors.Is(err, service.ErrRoleMismatch):
			c.JSON(http.StatusNotFound, response.NotFound("Participant not found"))
		case errors.Is(err, repository.ErrStaleTransition):
			c.JSON(http.StatusConflict, response.StaleTransition(""))
		case errors.Is(err, service.ErrInvalidAction):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeInvalidAction, "Action not valid at current step"))
		case errors.Is(err, service.ErrRemarksRequired):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeRemarksRequired, "Remarks are required when rejecting"))
		case errors.Is(err, service.ErrWorkflowMisconfigured):
			c.JSON(http.StatusInternalServerError, response.Error(response.ErrCodeWorkflowMisconfigured, "Workflow configuration error"))
		default:
			c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// UpdateWishList handles replacing a participant's requested meetings
// PUT /api/v1/participants/:id/wishlist
func (h *ParticipantHandler) UpdateWishList(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	var req dto.UpdateWishListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.participantService.UpdateWishList(c.Request.Context(), tenantID, c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Participant not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// UploadDocument handles a multipart document upload for a participant
// POST /api/v1/participants/:id/documents
func (h *ParticipantHandler) UploadDocument(c *gin.Context) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized(""))
		return
	}

	kind := c.PostForm("kind")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("A file upload is required"))
		return
	}
	if fileHeader.Size > maxDocumentSize {
		c.JSON(http.StatusBadRequest, response.BadRequest("File exceeds the maximum document size"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}
	defer file.Close()

	result, err := h.participantService.UploadDocument(
		c.Request.Context(), tenantID, c.Param("id"),
		kind, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, file,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrParticipantNotFound):
			c.JSON(http.StatusNotFound, response.NotFound("Participant not found"))
		case errors.Is(err, service.ErrInvalidDocumentKind):
			c.JSON(http.StatusBadRequest, response.BadRequest("Unknown document kind"))
		default:
			c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		}
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}

// PublicStatus handles the public status lookup by registration code
// GET /api/v1/public/registrations/:code
func (h *ParticipantHandler) PublicStatus(c *gin.Context) {
	result, err := h.participantService.GetStatusByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Registration not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}
