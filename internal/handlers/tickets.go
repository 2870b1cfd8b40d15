package handlers

import (
	"github.com/gin-gonic/gin"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/services"
)

type TicketsHandler struct {
	tickets *services.TicketService
}

func NewTicketsHandler(tickets *services.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

func (h *TicketsHandler) ListTickets(c *gin.Context) {
	deliverableID, valid := pathID(c, "id")
	if !valid {
		return
	}
	tickets, err := h.tickets.List(c.Request.Context(), actor(c), deliverableID)
	if err != nil {
		fail(c, err)
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	ok(c, models.Envelope{"tickets": tickets})
}

func (h *TicketsHandler) CreateTicket(c *gin.Context) {
	deliverableID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.TicketRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.tickets.Create(c.Request.Context(), actor(c), deliverableID, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"ticket": t})
}

func (h *TicketsHandler) ReorderTickets(c *gin.Context) {
	deliverableID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.ReorderRequest
	if !bind(c, &req) {
		return
	}
	if err := h.tickets.Reorder(c.Request.Context(), actor(c), deliverableID, req.IDs); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *TicketsHandler) GetTicket(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	detail, err := h.tickets.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"ticket": detail.Ticket, "comments": detail.Comments, "files": detail.Files})
}

func (h *TicketsHandler) UpdateTicket(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.TicketRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.tickets.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"ticket": t})
}

func (h *TicketsHandler) AssignTicket(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.AssignRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.tickets.Assign(c.Request.Context(), actor(c), id, req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"ticket": t})
}

func (h *TicketsHandler) ChangeStatus(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.StatusRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.tickets.ChangeStatus(c.Request.Context(), actor(c), id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"ticket": t})
}

func (h *TicketsHandler) MoveTicket(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.MoveTicketRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.tickets.Move(c.Request.Context(), actor(c), id, req.DeliverableID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"ticket": t})
}

func (h *TicketsHandler) DeleteTicket(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.tickets.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
