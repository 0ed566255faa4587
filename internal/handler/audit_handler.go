package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shegerlabs/accreditation-service/internal/domain"
	"github.com/shegerlabs/accreditation-service/internal/dto"
	"github.com/shegerlabs/accreditation-service/internal/service"
	"github.com/shegerlabs/accreditation-service/pkg/response"
)

// AuditHandler handles audit log HTTP requests
type AuditHandler struct {
	auditService service.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List handles retrieving audit entries with filters
// GET /api/v1/audit
func (h *AuditHandler) List(c *gin.Context) {
	var filter dto.AuditListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, total, err := h.auditService.List(c.Request.Context(), &filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(result, filter.Page, filter.Limit, int64(total)))
}

// ListByParticipant handles retrieving one participant's audit history
// GET /api/v1/participants/:id/audit
func (h *AuditHandler) ListByParticipant(c *gin.Context) {
	var filter dto.AuditListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	filter.SetDefaults()

	result, total, err := h.auditService.ListByEntity(c.Request.Context(), domain.EntityTypeParticipant, c.Param("id"), filter.Page, filter.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(result, filter.Page, filter.Limit, int64(total)))
}
