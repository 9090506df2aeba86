package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-portal/internal/api/http/handlers"
	"github.com/spec-kit/complaint-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Users           *handlers.UsersHandler
	Complaints      *handlers.ComplaintsHandler
	AdminComplaints *handlers.AdminComplaintsHandler
	Notifications   *handlers.NotificationsHandler
	Tokens          *auth.TokenManager
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	authenticated := app.Group("", auth.Middleware(cfg.Tokens))
	authenticated.Post("/auth/password/change", cfg.Users.ChangePassword)
	authenticated.Delete("/account", cfg.Users.DeleteAccount)

	authenticated.Get("/categories", cfg.Complaints.Categories)

	notifications := authenticated.Group("/notifications")
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	complaints := authenticated.Group("/complaints", auth.RequireUser())
	complaints.Post("/", cfg.Complaints.Create)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Put("/:id", cfg.Complaints.Update)
	complaints.Post("/:id/resubmit", cfg.Complaints.Resubmit)
	complaints.Post("/:id/confirm-resolution", cfg.Complaints.ConfirmResolution)
	complaints.Post("/:id/rating", cfg.Complaints.Rate)
	complaints.Post("/:id/comments", cfg.Complaints.AddComment)
	complaints.Post("/:id/reopen", cfg.Complaints.RequestReopen)

	admin := authenticated.Group("/admin", auth.RequireAdmin())
	admin.Get("/complaints", cfg.AdminComplaints.List)
	admin.Get("/complaints/:id", cfg.AdminComplaints.Get)
	admin.Get("/complaints/:id/transitions", cfg.AdminComplaints.AllowedTransitions)
	admin.Post("/complaints/:id/status", cfg.AdminComplaints.ChangeStatus)
	admin.Post("/complaints/:id/comments", cfg.AdminComplaints.AddComment)
	admin.Get("/complaints/:id/reassignments", cfg.AdminComplaints.Reassignments)
	admin.Get("/complaints/:id/reopen-requests", cfg.AdminComplaints.ReopenRequests)

	super := admin.Group("", auth.RequireSuperAdmin())
	super.Post("/complaints/:id/approve", cfg.AdminComplaints.Approve)
	super.Post("/complaints/:id/reject", cfg.AdminComplaints.Reject)
	super.Post("/complaints/:id/request-changes", cfg.AdminComplaints.RequestChanges)
	super.Post("/complaints/:id/assign", cfg.AdminComplaints.Assign)
	super.Post("/complaints/:id/lock", cfg.AdminComplaints.Lock)
	super.Post("/complaints/:id/unlock", cfg.AdminComplaints.Unlock)
	super.Post("/reopen-requests/:id/approve", cfg.AdminComplaints.ApproveReopen)
	super.Post("/reopen-requests/:id/reject", cfg.AdminComplaints.RejectReopen)
	super.Get("/workloads", cfg.AdminComplaints.Workloads)
	super.Get("/approval-stats", cfg.AdminComplaints.ApprovalStats)
	super.Post("/users", cfg.Users.CreateAdmin)
}
