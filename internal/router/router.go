package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/teamboard/api/handler"
)

type Handlers struct {
	Auth        *apiHandler.AuthHandler
	User        *apiHandler.UserHandler
	Task        *apiHandler.TaskHandler
	Team        *apiHandler.TeamHandler
	Activity    *apiHandler.ActivityHandler
	Maintenance *apiHandler.MaintenanceHandler
	Health      *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", authMiddleware(handlers.Auth.Refresh))
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	v1 := r.Group("/api/v1")

	v1.GET("/users", authMiddleware(handlers.User.List))
	v1.POST("/users", authMiddleware(handlers.User.Create))
	v1.GET("/users/{id}", authMiddleware(handlers.User.Get))
	v1.PUT("/users/{id}", authMiddleware(handlers.User.Update))
	v1.DELETE("/users/{id}", authMiddleware(handlers.User.Delete))

	v1.GET("/tasks", authMiddleware(handlers.Task.List))
	v1.POST("/tasks", authMiddleware(handlers.Task.Create))
	v1.GET("/tasks/summary", authMiddleware(handlers.Task.Summary))
	v1.POST("/tasks/bulk", authMiddleware(handlers.Task.Bulk))
	v1.GET("/tasks/{id}", authMiddleware(handlers.Task.Get))
	v1.PUT("/tasks/{id}", authMiddleware(handlers.Task.Update))
	v1.DELETE("/tasks/{id}", authMiddleware(handlers.Task.Delete))
	v1.POST("/tasks/{id}/comments", authMiddleware(handlers.Task.AddComment))
	v1.PUT("/tasks/{id}/comments/{commentID}", authMiddleware(handlers.Task.UpdateComment))
	v1.DELETE("/tasks/{id}/comments/{commentID}", authMiddleware(handlers.Task.DeleteComment))

	v1.GET("/teams", authMiddleware(handlers.Team.List))
	v1.POST("/teams", authMiddleware(handlers.Team.Create))
	v1.GET("/teams/{id}", authMiddleware(handlers.Team.Get))
	v1.PUT("/teams/{id}", authMiddleware(handlers.Team.Update))
	v1.DELETE("/teams/{id}", authMiddleware(handlers.Team.Delete))

	v1.GET("/activity", authMiddleware(handlers.Activity.List))
	v1.GET("/activity/mine", authMiddleware(handlers.Activity.Mine))
	v1.DELETE("/activity", authMiddleware(handlers.Activity.Clear))

	v1.POST("/maintenance/repair", authMiddleware(handlers.Maintenance.Repair))
	v1.GET("/maintenance/export", authMiddleware(handlers.Maintenance.Export))
	v1.POST("/maintenance/import", authMiddleware(handlers.Maintenance.Import))

	return r
}
