package models

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ThemeColor  string `json:"theme_color"`
}

// ReorderRequest carries child ids in their new display order.
type ReorderRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type DeliverableRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// TicketRequest is used for both create and update. Nil fields are left
// unchanged on update.
type TicketRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	URL         *string   `json:"url"`
	Status      *Status   `json:"status"`
	Priority    *Priority `json:"priority"`
	AssignedTo  *int64    `json:"assigned_to"`
}

// AssignRequest with a nil or zero user id unassigns the ticket.
type AssignRequest struct {
	UserID *int64 `json:"user_id"`
}

type StatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

type MoveTicketRequest struct {
	DeliverableID int64 `json:"deliverable_id" binding:"required"`
}

type CommentRequest struct {
	Description string `json:"description"`
	URL         string `json:"url"`
}
