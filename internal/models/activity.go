package models

import (
	"encoding/json"
	"time"
)

type TargetType string

const (
	TargetProject     TargetType = "project"
	TargetDeliverable TargetType = "deliverable"
	TargetTicket      TargetType = "ticket"
	TargetComment     TargetType = "comment"
	TargetFile        TargetType = "file"
	TargetUser        TargetType = "user"
)

type ActivityAction string

const (
	ActionCreated       ActivityAction = "created"
	ActionUpdated       ActivityAction = "updated"
	ActionDeleted       ActivityAction = "deleted"
	ActionArchived      ActivityAction = "archived"
	ActionUnarchived    ActivityAction = "unarchived"
	ActionAssigned      ActivityAction = "assigned"
	ActionStatusChanged ActivityAction = "status_changed"
	ActionReordered     ActivityAction = "reordered"
	ActionRoleChanged   ActivityAction = "role_changed"
	ActionAdded         ActivityAction = "added"
	ActionRemoved       ActivityAction = "removed"
)

// ActivityEntry is append-only.
type ActivityEntry struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	ProjectID  int64           `json:"project_id"`
	TargetType TargetType      `json:"target_type"`
	TargetID   int64           `json:"target_id"`
	Action     ActivityAction  `json:"action"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// FieldChange is one entry of an update diff.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}
