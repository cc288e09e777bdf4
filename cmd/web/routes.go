package main

import (
	"taskpanel/internal/guard"
	"taskpanel/internal/session"
	"taskpanel/internal/webapp"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires view paths to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h webapp.Handlers, sessions session.Binder) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// public auth views
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.Register)

	// everything else needs a live session
	protected := r.Group("/", guard.RequireUser(sessions))
	{
		protected.GET("/", h.Dashboard)
		protected.POST("/logout", h.Logout)

		protected.GET("/tasks", h.TasksPage)
		protected.POST("/tasks", h.CreateTask)
		protected.POST("/tasks/:id", h.UpdateTask)
		protected.POST("/tasks/:id/status", h.UpdateTaskStatus)
		protected.POST("/tasks/:id/delete", h.DeleteTask)

		// admin-only listing of every owner's tasks
		admin := protected.Group("/admin", guard.RequireAdmin())
		{
			admin.GET("/tasks", h.AdminTasksPage)
		}
	}

	// unknown paths go home; the guard on / sorts out auth from there
	r.NoRoute(guard.RedirectUnmatched())
}
