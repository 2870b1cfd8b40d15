package models

import "time"

type Comment struct {
	ID          int64     `json:"id"`
	TicketID    int64     `json:"ticket_id"`
	ProjectID   int64     `json:"project_id"`
	UserID      int64     `json:"user_id"`
	Description string    `json:"description"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
