package models

// Envelope is the shape of every JSON response. Payload keys are merged
// next to success and message.
type Envelope map[string]any

func Success(payload Envelope) Envelope {
	out := Envelope{"success": true}
	for k, v := range payload {
		out[k] = v
	}
	return out
}

func Failure(message string) Envelope {
	return Envelope{"success": false, "message": message}
}

type HealthResponse struct {
	Status string `json:"status"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      User   `json:"user"`
}

type ProjectDetail struct {
	Project      Project                  `json:"project"`
	Role         string                   `json:"role"`
	Deliverables []DeliverableWithTickets `json:"deliverables"`
}

type CommentDetail struct {
	Comment
	Files []File `json:"files"`
}

type TicketDetail struct {
	Ticket   Ticket          `json:"ticket"`
	Comments []CommentDetail `json:"comments"`
	Files    []File          `json:"files"`
}
