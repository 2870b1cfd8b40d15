package handlers

import (
	"github.com/gin-gonic/gin"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/services"
)

type CommentsHandler struct {
	comments *services.CommentService
}

func NewCommentsHandler(comments *services.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

func (h *CommentsHandler) ListComments(c *gin.Context) {
	ticketID, valid := pathID(c, "id")
	if !valid {
		return
	}
	comments, err := h.comments.List(c.Request.Context(), actor(c), ticketID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"comments": comments})
}

func (h *CommentsHandler) AddComment(c *gin.Context) {
	ticketID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.CommentRequest
	if !bind(c, &req) {
		return
	}
	comment, err := h.comments.Add(c.Request.Context(), actor(c), ticketID, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"comment": comment})
}

func (h *CommentsHandler) EditComment(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.CommentRequest
	if !bind(c, &req) {
		return
	}
	comment, err := h.comments.Edit(c.Request.Context(), actor(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"comment": comment})
}

func (h *CommentsHandler) DeleteComment(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
