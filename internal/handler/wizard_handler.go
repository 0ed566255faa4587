package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shegerlabs/accreditation-service/internal/dto"
	"github.com/shegerlabs/accreditation-service/internal/service"
	"github.com/shegerlabs/accreditation-service/pkg/response"
)

// SessionHeader carries the wizard session ID between requests
const SessionHeader = "X-Registration-Session"

// WizardHandler handles the public multi-request registration flow. The
// session ID travels in a response/request header; no authentication is
// required, the draft itself is the capability.
type WizardHandler struct {
	wizardService service.WizardService
}

// NewWizardHandler creates a new WizardHandler
func NewWizardHandler(wizardService service.WizardService) *WizardHandler {
	return &WizardHandler{wizardService: wizardService}
}

func (h *WizardHandler) sessionID(c *gin.Context) (string, bool) {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Registration session header is required"))
		return "", false
	}
	return id, true
}

func (h *WizardHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Registration session not found or expired"))
	case errors.Is(err, service.ErrEventNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Event not found"))
	case errors.Is(err, service.ErrEventNotOpen):
		c.JSON(http.StatusConflict, response.Error(response.ErrCodeEventNotOpen, "Event is not open for registration"))
	case errors.Is(err, service.ErrParticipantTypeNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Participant type not found"))
	case errors.Is(err, service.ErrSelfRegisterNotAllowed):
		c.JSON(http.StatusForbidden, response.Forbidden("This participant type does not allow self registration"))
	case errors.Is(err, service.ErrWizardIncomplete):
		c.JSON(http.StatusUnprocessableEntity, response.Error(response.ErrCodeUnprocessableEntity, "General details are required before completion"))
	case errors.Is(err, service.ErrDocumentsIncomplete):
		c.JSON(http.StatusUnprocessableEntity, response.DocumentsIncomplete(""))
	case errors.Is(err, service.ErrInvalidDocumentKind):
		c.JSON(http.StatusBadRequest, response.BadRequest("Unknown document kind"))
	case errors.Is(err, service.ErrWorkflowNotConfigured), errors.Is(err, service.ErrWorkflowAmbiguous):
		c.JSON(http.StatusInternalServerError, response.Error(response.ErrCodeWorkflowMisconfigured, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
	}
}

// Start handles opening a registration draft
// POST /api/v1/tenants/:tenantId/register/start
func (h *WizardHandler) Start(c *gin.Context) {
	var req dto.StartWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.wizardService.Start(c.Request.Context(), c.Param("tenantId"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header(SessionHeader, result.SessionID)
	c.JSON(http.StatusCreated, response.Success(result))
}

// SaveGeneral handles the identity step
// PUT /api/v1/tenants/:tenantId/register/general
func (h *WizardHandler) SaveGeneral(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.WizardGeneralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.wizardService.SaveGeneral(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// SaveProfessional handles the affiliation step
// PUT /api/v1/tenants/:tenantId/register/professional
func (h *WizardHandler) SaveProfessional(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.WizardProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.wizardService.SaveProfessional(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// UploadDocument handles a multipart document upload into the draft
// POST /api/v1/tenants/:tenantId/register/documents
func (h *WizardHandler) UploadDocument(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
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

	result, err := h.wizardService.UploadDocument(
		c.Request.Context(), sessionID,
		kind, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, file,
	)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// SaveWishlist handles the meeting-selection step
// PUT /api/v1/tenants/:tenantId/register/wishlist
func (h *WizardHandler) SaveWishlist(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.WizardWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.wizardService.SaveWishlist(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// State handles resuming a draft
// GET /api/v1/tenants/:tenantId/register/state
func (h *WizardHandler) State(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	result, err := h.wizardService.State(c.Request.Context(), sessionID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Destroy handles abandoning a draft; destroying twice is fine
// DELETE /api/v1/tenants/:tenantId/register
func (h *WizardHandler) Destroy(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	if err := h.wizardService.Destroy(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{"destroyed": true}))
}

// Complete handles committing the draft into a participant record
// POST /api/v1/tenants/:tenantId/register/complete
func (h *WizardHandler) Complete(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	result, err := h.wizardService.Complete(c.Request.Context(), sessionID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}
