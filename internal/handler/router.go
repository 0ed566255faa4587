package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shegerlabs/accreditation-service/pkg/middleware"
)

// AdminRole is the role required for configuration endpoints. Workflow step
// roles are free-form and checked by the engine, but tenant, event and
// workflow administration is gated on this fixed role.
const AdminRole = "admin"

// Router wires all HTTP handlers onto a gin engine
type Router struct {
	health          *HealthHandler
	tenant          *TenantHandler
	event           *EventHandler
	participantType *ParticipantTypeHandler
	workflow        *WorkflowHandler
	participant     *ParticipantHandler
	wizard          *WizardHandler
	audit           *AuditHandler
	jwtSecret       string
}

// NewRouter creates a new Router
func NewRouter(
	health *HealthHandler,
	tenant *TenantHandler,
	event *EventHandler,
	participantType *ParticipantTypeHandler,
	workflow *WorkflowHandler,
	participant *ParticipantHandler,
	wizard *WizardHandler,
	audit *AuditHandler,
	jwtSecret string,
) *Router {
	return &Router{
		health:          health,
		tenant:          tenant,
		event:           event,
		participantType: participantType,
		workflow:        workflow,
		participant:     participant,
		wizard:          wizard,
		audit:           audit,
		jwtSecret:       jwtSecret,
	}
}

// SetupRoutes configures all routes. The wizard and the registration-code
// status lookup are public; everything else requires a JWT, and
// configuration endpoints additionally require the admin role.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.health.Health)
	engine.GET("/ready", r.health.Ready)

	api := engine.Group("/api/v1")

	// Public surface: self-registration wizard and status lookup
	public := api.Group("")
	{
		wizard := public.Group("/tenants/:tenantId/register")
		wizard.POST("/start", r.wizard.Start)
		wizard.PUT("/general", r.wizard.SaveGeneral)
		wizard.PUT("/professional", r.wizard.SaveProfessional)
		wizard.POST("/documents", r.wizard.UploadDocument)
		wizard.PUT("/wishlist", r.wizard.SaveWishlist)
		wizard.GET("/state", r.wizard.State)
		wizard.DELETE("", r.wizard.Destroy)
		wizard.POST("/complete", r.wizard.Complete)

		public.GET("/public/registrations/:code", r.participant.PublicStatus)
	}

	// Authenticated surface
	authed := api.Group("")
	authed.Use(middleware.JWTMiddleware(&middleware.JWTConfig{Secret: r.jwtSecret}))
	{
		// Work queue and transitions: any role-bearing actor; the engine
		// enforces the step's role binding per participant.
		authed.GET("/participants/queue", r.participant.Queue)
		authed.GET("/participants/:id", r.participant.GetByID)
		authed.POST("/participants/:id/transition", r.participant.Transition)
		authed.GET("/participants/:id/audit", r.audit.ListByParticipant)

		admin := authed.Group("")
		admin.Use(middleware.RequireRole(AdminRole))
		{
			admin.POST("/tenants", r.tenant.Create)
			admin.GET("/tenants", r.tenant.List)
			admin.GET("/tenants/:tenantId", r.tenant.GetByID)
			admin.PUT("/tenants/:tenantId", r.tenant.Update)
			admin.DELETE("/tenants/:tenantId", r.tenant.Delete)

			admin.POST("/events", r.event.Create)
			admin.GET("/events", r.event.List)
			admin.GET("/events/:id", r.event.GetByID)
			admin.PUT("/events/:id", r.event.Update)
			admin.PATCH("/events/:id/status", r.event.UpdateStatus)
			admin.DELETE("/events/:id", r.event.Delete)
			admin.GET("/events/:id/workflows", r.workflow.ListByEvent)

			admin.POST("/participant-types", r.participantType.Create)
			admin.GET("/participant-types", r.participantType.List)
			admin.GET("/participant-types/:id", r.participantType.GetByID)
			admin.PUT("/participant-types/:id", r.participantType.Update)
			admin.DELETE("/participant-types/:id", r.participantType.Delete)

			admin.POST("/workflows", r.workflow.Create)
			admin.GET("/workflows/:id", r.workflow.GetByID)
			admin.DELETE("/workflows/:id", r.workflow.Delete)

			admin.POST("/participants", r.participant.Register)
			admin.PUT("/participants/:id/wishlist", r.participant.UpdateWishList)
			admin.POST("/participants/:id/documents", r.participant.UploadDocument)

			admin.GET("/audit", r.audit.List)
		}
	}
}
