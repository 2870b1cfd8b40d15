package handlers

import (
	"github.com/gin-gonic/gin"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/services"
)

type UsersHandler struct {
	users *services.UserService
}

func NewUsersHandler(users *services.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"user": user})
}

func (h *UsersHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"token": res.Token, "expires_at": res.ExpiresAt, "user": res.User})
}

// ForgotPassword always reports success so that addresses cannot be probed.
func (h *UsersHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.users.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"message": "if that address has an account, a reset link is on its way"})
}

func (h *UsersHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"message": "password updated"})
}

func (h *UsersHandler) Me(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"user": user})
}

func (h *UsersHandler) UpdateMe(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), actor(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"user": user})
}

func (h *UsersHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), actor(c), req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"message": "password updated"})
}
