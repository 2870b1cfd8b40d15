// Package activity writes the project audit trail.
package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"tickbug-backend/internal/database"
	"tickbug-backend/internal/models"
)

// Event describes one mutation. Details is marshalled to JSON; nil means no
// details.
type Event struct {
	UserID     int64
	ProjectID  int64
	TargetType models.TargetType
	TargetID   int64
	Action     models.ActivityAction
	Details    any
}

// Recorder appends events inside the caller's transaction, so a failed
// write aborts the mutation it describes.
type Recorder struct {
	enabled bool
}

func NewRecorder(enabled bool) *Recorder {
	return &Recorder{enabled: enabled}
}

func (r *Recorder) Enabled() bool {
	return r != nil && r.enabled
}

func (r *Recorder) Record(ctx context.Context, q *database.Queries, e Event) error {
	if !r.Enabled() {
		return nil
	}

	var details json.RawMessage
	if e.Details != nil {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("failed to encode activity details: %w", err)
		}
		details = b
	}

	return q.InsertActivity(ctx, models.ActivityEntry{
		UserID:     e.UserID,
		ProjectID:  e.ProjectID,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Action:     e.Action,
		Details:    details,
	})
}

// Diff collects changed fields for an update entry. Unchanged fields are
// never added.
type Diff map[string]models.FieldChange

func (d Diff) Add(field string, from, to any) {
	if from == to {
		return
	}
	d[field] = models.FieldChange{From: from, To: to}
}

func (d Diff) Empty() bool {
	return len(d) == 0
}
