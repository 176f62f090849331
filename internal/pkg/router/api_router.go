package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/lribeiro/eventgate/app/controllers"
	"github.com/lribeiro/eventgate/internal/pkg/constants"
	"github.com/lribeiro/eventgate/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "eventgate api",
		})
	})

	v1 := api.Group(constants.APIV1Route)

	// Public routes. The webhook authenticates via its HMAC signature, not
	// an API key.
	v1.Post("/auth/signup", controllers.HandleSignup)
	v1.Post("/auth/login", controllers.HandleLogin)
	v1.Get("/plans", controllers.HandleListPlans)
	v1.Post(constants.PaymentWebhookPath, controllers.HandlePaymentWebhook)

	// API-key protected routes.
	protected := v1.Group("", middleware.APIKeyAuthMiddleware(), middleware.RequireAuth)
	protected.Post("/auth/revoke", controllers.HandleRevokeAPIKey)

	protected.Get("/company", controllers.HandleGetCompany)
	protected.Get("/company/usage", controllers.HandleGetUsage)

	protected.Post("/events", controllers.HandleCreateEvent)
	protected.Get("/events", controllers.HandleListEvents)
	protected.Get("/events/:id", controllers.HandleGetEvent)
	protected.Patch("/events/:id/status", controllers.HandleUpdateEventStatus)

	protected.Post("/events/:id/registrations/validate", controllers.HandleValidateRegistration)
	protected.Post("/events/:id/registrations", controllers.HandleCreateRegistration)
	protected.Get("/events/:id/registrations", controllers.HandleListRegistrations)
	protected.Delete("/registrations/:registrationID", controllers.HandleCancelRegistration)
	protected.Post("/check-in/:ticket", controllers.HandleCheckIn)

	protected.Post("/payments", controllers.HandleCreatePayment)
	protected.Get("/payments/:id", controllers.HandleGetPayment)

	// Admin routes.
	admin := v1.Group("/admin", middleware.APIKeyAuthMiddleware(), middleware.RequireAdmin)
	admin.Get("/queue", controllers.HandleQueueStats)
	admin.Post("/queue/sweeps/plan-expiry", controllers.HandleRunPlanExpirySweep)
	admin.Post("/queue/sweeps/event-inactivation", controllers.HandleRunEventInactivationSweep)
	admin.Post("/payments/sync", controllers.HandleSyncPaymentByExternalID)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
