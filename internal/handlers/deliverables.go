package handlers

import (
	"github.com/gin-gonic/gin"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/services"
)

type DeliverablesHandler struct {
	deliverables *services.DeliverableService
}

func NewDeliverablesHandler(deliverables *services.DeliverableService) *DeliverablesHandler {
	return &DeliverablesHandler{deliverables: deliverables}
}

func (h *DeliverablesHandler) ListDeliverables(c *gin.Context) {
	projectID, valid := pathID(c, "id")
	if !valid {
		return
	}
	list, err := h.deliverables.List(c.Request.Context(), actor(c), projectID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"deliverables": list})
}

func (h *DeliverablesHandler) CreateDeliverable(c *gin.Context) {
	projectID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.DeliverableRequest
	if !bind(c, &req) {
		return
	}
	d, err := h.deliverables.Create(c.Request.Context(), actor(c), projectID, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"deliverable": d})
}

func (h *DeliverablesHandler) ReorderDeliverables(c *gin.Context) {
	projectID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.ReorderRequest
	if !bind(c, &req) {
		return
	}
	if err := h.deliverables.Reorder(c.Request.Context(), actor(c), projectID, req.IDs); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *DeliverablesHandler) UpdateDeliverable(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.DeliverableRequest
	if !bind(c, &req) {
		return
	}
	d, err := h.deliverables.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"deliverable": d})
}

func (h *DeliverablesHandler) DeleteDeliverable(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.deliverables.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
