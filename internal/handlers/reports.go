package handlers

import (
	"github.com/gin-gonic/gin"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/services"
)

type ReportsHandler struct {
	reports *services.ReportService
}

func NewReportsHandler(reports *services.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

func (h *ReportsHandler) Summary(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	report, err := h.reports.Summary(c.Request.Context(), actor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"report": report})
}

// Activity and Productivity accept optional ?from= and ?to= dates.
func (h *ReportsHandler) Activity(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	report, err := h.reports.Activity(c.Request.Context(), actor(c), id, c.Query("from"), c.Query("to"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"report": report})
}

func (h *ReportsHandler) Productivity(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	report, err := h.reports.Productivity(c.Request.Context(), actor(c), id, c.Query("from"), c.Query("to"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"report": report})
}
