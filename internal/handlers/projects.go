package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/services"
)

type ProjectsHandler struct {
	projects *services.ProjectService
}

func NewProjectsHandler(projects *services.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	includeArchived := c.Query("archived") == "true" || c.Query("archived") == "1"
	projects, err := h.projects.List(c.Request.Context(), actor(c), includeArchived)
	if err != nil {
		fail(c, err)
		return
	}
	if projects == nil {
		projects = []models.ProjectListing{}
	}
	ok(c, models.Envelope{"projects": projects})
}

func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	var req models.ProjectRequest
	if !bind(c, &req) {
		return
	}
	project, err := h.projects.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"project": project})
}

func (h *ProjectsHandler) ReorderProjects(c *gin.Context) {
	var req models.ReorderRequest
	if !bind(c, &req) {
		return
	}
	if err := h.projects.Reorder(c.Request.Context(), actor(c), req.IDs); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *ProjectsHandler) GetProject(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	detail, err := h.projects.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"project": detail.Project, "role": detail.Role, "deliverables": detail.Deliverables})
}

func (h *ProjectsHandler) UpdateProject(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.ProjectRequest
	if !bind(c, &req) {
		return
	}
	project, err := h.projects.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"project": project})
}

func (h *ProjectsHandler) ArchiveProject(c *gin.Context) {
	h.simple(c, h.projects.Archive)
}

func (h *ProjectsHandler) UnarchiveProject(c *gin.Context) {
	h.simple(c, h.projects.Unarchive)
}

func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	h.simple(c, h.projects.Delete)
}

func (h *ProjectsHandler) simple(c *gin.Context, op func(ctx context.Context, actorID, projectID int64) error) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := op(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *ProjectsHandler) Activity(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	entries, err := h.projects.Activity(c.Request.Context(), actor(c), id, queryInt(c, "limit"), queryInt(c, "offset"))
	if err != nil {
		fail(c, err)
		return
	}
	if entries == nil {
		entries = []models.ActivityEntry{}
	}
	ok(c, models.Envelope{"activity": entries})
}

func (h *ProjectsHandler) ListMembers(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	members, err := h.projects.Members(c.Request.Context(), actor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"members": members})
}

func (h *ProjectsHandler) AddMember(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.AddMemberRequest
	if !bind(c, &req) {
		return
	}
	member, err := h.projects.AddMember(c.Request.Context(), actor(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"member": member})
}

func (h *ProjectsHandler) ChangeMemberRole(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	userID, valid := pathID(c, "user_id")
	if !valid {
		return
	}
	var req models.ChangeRoleRequest
	if !bind(c, &req) {
		return
	}
	if err := h.projects.ChangeMemberRole(c.Request.Context(), actor(c), id, userID, req.Role); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *ProjectsHandler) RemoveMember(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	userID, valid := pathID(c, "user_id")
	if !valid {
		return
	}
	if err := h.projects.RemoveMember(c.Request.Context(), actor(c), id, userID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// UpdatePreferences starts from the defaults, so omitted keys stay on.
func (h *ProjectsHandler) UpdatePreferences(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	prefs := models.DefaultNotificationPreferences()
	if !bind(c, &prefs) {
		return
	}
	saved, err := h.projects.UpdatePreferences(c.Request.Context(), actor(c), id, prefs)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"notification_preferences": saved})
}
