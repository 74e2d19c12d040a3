package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/maestro-api/internal/config"
	"github.com/noah-isme/maestro-api/internal/handler"
	"github.com/noah-isme/maestro-api/internal/middleware"
	"github.com/noah-isme/maestro-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	MasterRoleHandler   *handler.MasterRoleHandler
	StaffRequestHandler *handler.StaffRequestHandler
	ResignationHandler  *handler.ResignationHandler
	EnrollmentHandler   *handler.EnrollmentHandler
	ReviewHandler       *handler.ReviewHandler
	ActivityHandler     *handler.ActivityHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	mentorOnly := middleware.RequireAuth(middleware.AuthOptions{Role: middleware.AuthRoleMentor})
	masterOnly := middleware.RequireAuth(middleware.AuthOptions{Role: middleware.AuthRoleMentor, RequireMaster: true})

	// Submission endpoints get a per-user limiter; reads and decisions do not.
	submitLimit := func(name string) fiber.Handler {
		limit := middleware.RateLimit(name, 10, time.Minute)
		return func(c *fiber.Ctx) error {
			if c.Method() != fiber.MethodPost {
				return c.Next()
			}
			return limit(c)
		}
	}

	// Master-role applications: mentors submit, admins list and decide.
	if deps.MasterRoleHandler != nil {
		group := api.Group("/master-role-requests", jwtMiddleware, submitLimit("master_role"))
		deps.MasterRoleHandler.Register(group)
	}

	// Staff-join requests, mentor-facing end to end.
	if deps.StaffRequestHandler != nil {
		group := api.Group("/staff-requests", jwtMiddleware, mentorOnly, submitLimit("staff_request"))
		deps.StaffRequestHandler.Register(group)
	}

	// Staff resignations.
	if deps.ResignationHandler != nil {
		group := api.Group("/resignations", jwtMiddleware, mentorOnly, submitLimit("resignation"))
		deps.ResignationHandler.Register(group)
	}

	// Classroom-scoped enrollment and review surfaces.
	classrooms := api.Group("/classrooms", jwtMiddleware, submitLimit("enrollment"))
	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.RegisterClassroomRoutes(classrooms)

		memberships := api.Group("/memberships", jwtMiddleware, masterOnly)
		deps.EnrollmentHandler.RegisterMembershipRoutes(memberships)
	}
	if deps.ReviewHandler != nil {
		deps.ReviewHandler.RegisterClassroomRoutes(classrooms)

		mentor := api.Group("/mentors/me", jwtMiddleware, mentorOnly)
		deps.ReviewHandler.RegisterMentorRoutes(mentor)

		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole("admin"))
		deps.ReviewHandler.RegisterAdminRoutes(admin)
	}

	// Audit trail, admin only.
	if deps.ActivityHandler != nil {
		activity := api.Group("/admin/activity", jwtMiddleware, middleware.RequireRole("admin"))
		deps.ActivityHandler.Register(activity)
	}
}
