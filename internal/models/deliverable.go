package models

import "time"

type Deliverable struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"project_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	DisplayOrder int       `json:"display_order"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DeliverableWithTickets is a deliverable and its tickets in display order.
type DeliverableWithTickets struct {
	Deliverable
	Tickets []Ticket `json:"tickets"`
}
