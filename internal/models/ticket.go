package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status ids match the rows seeded into the statuses table.
type Status int

const (
	StatusNew Status = iota + 1
	StatusNeedsClarification
	StatusAssigned
	StatusInProgress
	StatusInReview
	StatusComplete
	StatusRejected
	StatusIgnored
)

var statusNames = map[Status]string{
	StatusNew:                "New",
	StatusNeedsClarification: "Needs clarification",
	StatusAssigned:           "Assigned",
	StatusInProgress:         "In progress",
	StatusInReview:           "In review",
	StatusComplete:           "Complete",
	StatusRejected:           "Rejected",
	StatusIgnored:            "Ignored",
}

// Statuses lists every status in workflow order.
var Statuses = []Status{
	StatusNew, StatusNeedsClarification, StatusAssigned, StatusInProgress,
	StatusInReview, StatusComplete, StatusRejected, StatusIgnored,
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseStatus accepts a status name (case-insensitive) or its numeric id.
func ParseStatus(v string) (Status, bool) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		s := Status(n)
		return s, s.Valid()
	}
	for s, name := range statusNames {
		if strings.EqualFold(name, v) {
			return s, true
		}
	}
	return 0, false
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	v, err := unquoteEnum(b)
	if err != nil {
		return err
	}
	parsed, ok := ParseStatus(v)
	if !ok {
		return fmt.Errorf("unknown status %q", v)
	}
	*s = parsed
	return nil
}

// Priority ids match the priorities table; a lower id is more urgent.
type Priority int

const (
	PriorityCritical Priority = iota + 1
	PriorityImportant
	PriorityNiceToHave
	PriorityFeatureRequest
	PriorityCosmetic
)

var priorityNames = map[Priority]string{
	PriorityCritical:       "Critical",
	PriorityImportant:      "Important",
	PriorityNiceToHave:     "Nice-to-have",
	PriorityFeatureRequest: "Feature Request",
	PriorityCosmetic:       "Cosmetic",
}

// Priorities lists every priority, most urgent first.
var Priorities = []Priority{
	PriorityCritical, PriorityImportant, PriorityNiceToHave, PriorityFeatureRequest, PriorityCosmetic,
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

func (p Priority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

// MoreUrgentThan orders priorities: Critical > Important > ... > Cosmetic.
func (p Priority) MoreUrgentThan(other Priority) bool {
	return p < other
}

func ParsePriority(v string) (Priority, bool) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		p := Priority(n)
		return p, p.Valid()
	}
	for p, name := range priorityNames {
		if strings.EqualFold(name, v) {
			return p, true
		}
	}
	return 0, false
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	v, err := unquoteEnum(b)
	if err != nil {
		return err
	}
	parsed, ok := ParsePriority(v)
	if !ok {
		return fmt.Errorf("unknown priority %q", v)
	}
	*p = parsed
	return nil
}

func unquoteEnum(b []byte) (string, error) {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s, nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return "", fmt.Errorf("expected name or id, got %s", string(b))
	}
	return strconv.Itoa(n), nil
}

type Ticket struct {
	ID            int64         `json:"id"`
	DeliverableID int64         `json:"deliverable_id"`
	ProjectID     int64         `json:"project_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	URL           string        `json:"url,omitempty"`
	Status        Status        `json:"status"`
	Priority      Priority      `json:"priority"`
	AssignedTo    sql.NullInt64 `json:"-"`
	CreatedBy     int64         `json:"created_by"`
	DisplayOrder  int           `json:"display_order"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Assignee returns the assigned user id, or zero.
func (t Ticket) Assignee() int64 {
	if t.AssignedTo.Valid {
		return t.AssignedTo.Int64
	}
	return 0
}

func (t Ticket) MarshalJSON() ([]byte, error) {
	type plain Ticket
	var assigned *int64
	if t.AssignedTo.Valid {
		v := t.AssignedTo.Int64
		assigned = &v
	}
	return json.Marshal(struct {
		plain
		AssignedTo *int64 `json:"assigned_to"`
	}{plain(t), assigned})
}
