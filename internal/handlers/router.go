package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"tickbug-backend/internal/auth"
	"tickbug-backend/internal/middleware"
	"tickbug-backend/internal/services"
)

type RouterConfig struct {
	Services       *services.Services
	Tokens         *auth.Issuer
	DB             Pinger
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// NewRouter wires every route under /api/v1. Reads are GET; every
// mutation is POST, so other methods never reach a handler.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))

	svc := cfg.Services
	usersHandler := NewUsersHandler(svc.Users)
	projectsHandler := NewProjectsHandler(svc.Projects)
	deliverablesHandler := NewDeliverablesHandler(svc.Deliverables)
	ticketsHandler := NewTicketsHandler(svc.Tickets)
	commentsHandler := NewCommentsHandler(svc.Comments)
	filesHandler := NewFilesHandler(svc.Files, cfg.MaxUploadBytes)
	reportsHandler := NewReportsHandler(svc.Reports)

	v1 := router.Group("/api/v1")

	// Public
	v1.GET("/health", HealthHandler(cfg.DB))
	v1.POST("/auth/register", usersHandler.Register)
	v1.POST("/auth/login", usersHandler.Login)
	v1.POST("/auth/password/forgot", usersHandler.ForgotPassword)
	v1.POST("/auth/password/reset", usersHandler.ResetPassword)

	api := v1.Group("")
	api.Use(middleware.AuthMiddleware(cfg.Tokens))

	// Profile
	api.GET("/me", usersHandler.Me)
	api.POST("/me", usersHandler.UpdateMe)
	api.POST("/me/password", usersHandler.ChangePassword)

	// Projects and membership
	api.GET("/projects", projectsHandler.ListProjects)
	api.POST("/projects", projectsHandler.CreateProject)
	api.POST("/projects/reorder", projectsHandler.ReorderProjects)
	api.GET("/projects/:id", projectsHandler.GetProject)
	api.POST("/projects/:id", projectsHandler.UpdateProject)
	api.POST("/projects/:id/archive", projectsHandler.ArchiveProject)
	api.POST("/projects/:id/unarchive", projectsHandler.UnarchiveProject)
	api.POST("/projects/:id/delete", projectsHandler.DeleteProject)
	api.GET("/projects/:id/activity", projectsHandler.Activity)
	api.GET("/projects/:id/members", projectsHandler.ListMembers)
	api.POST("/projects/:id/members", projectsHandler.AddMember)
	api.POST("/projects/:id/members/:user_id/role", projectsHandler.ChangeMemberRole)
	api.POST("/projects/:id/members/:user_id/remove", projectsHandler.RemoveMember)
	api.POST("/projects/:id/preferences", projectsHandler.UpdatePreferences)

	// Reports
	api.GET("/projects/:id/reports/summary", reportsHandler.Summary)
	api.GET("/projects/:id/reports/activity", reportsHandler.Activity)
	api.GET("/projects/:id/reports/productivity", reportsHandler.Productivity)

	// Deliverables
	api.GET("/projects/:id/deliverables", deliverablesHandler.ListDeliverables)
	api.POST("/projects/:id/deliverables", deliverablesHandler.CreateDeliverable)
	api.POST("/projects/:id/deliverables/reorder", deliverablesHandler.ReorderDeliverables)
	api.POST("/deliverables/:id", deliverablesHandler.UpdateDeliverable)
	api.POST("/deliverables/:id/delete", deliverablesHandler.DeleteDeliverable)

	// Tickets
	api.GET("/deliverables/:id/tickets", ticketsHandler.ListTickets)
	api.POST("/deliverables/:id/tickets", ticketsHandler.CreateTicket)
	api.POST("/deliverables/:id/tickets/reorder", ticketsHandler.ReorderTickets)
	api.GET("/tickets/:id", ticketsHandler.GetTicket)
	api.POST("/tickets/:id", ticketsHandler.UpdateTicket)
	api.POST("/tickets/:id/assign", ticketsHandler.AssignTicket)
	api.POST("/tickets/:id/status", ticketsHandler.ChangeStatus)
	api.POST("/tickets/:id/move", ticketsHandler.MoveTicket)
	api.POST("/tickets/:id/delete", ticketsHandler.DeleteTicket)

	// Comments and files
	api.GET("/tickets/:id/comments", commentsHandler.ListComments)
	api.POST("/tickets/:id/comments", commentsHandler.AddComment)
	api.GET("/tickets/:id/files", filesHandler.ListFiles)
	api.POST("/tickets/:id/files", filesHandler.UploadToTicket)
	api.POST("/comments/:id", commentsHandler.EditComment)
	api.POST("/comments/:id/delete", commentsHandler.DeleteComment)
	api.POST("/comments/:id/files", filesHandler.UploadToComment)
	api.GET("/files/:id", filesHandler.Download)
	api.POST("/files/:id/delete", filesHandler.DeleteFile)

	return router
}
