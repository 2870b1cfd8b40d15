// Package reports builds read-only rollups of a project. Every call
// aggregates the current rows; nothing is cached.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"tickbug-backend/internal/database"
	"tickbug-backend/internal/models"
)

// DefaultWindow is the span used when a report is requested without dates.
const DefaultWindow = 30 * 24 * time.Hour

var ErrInvalidWindow = errors.New("report window start must be before its end")

// CompletionRate is completed/total as a percentage rounded to one decimal.
// A zero total yields 0.
func CompletionRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(completed)*1000/float64(total)) / 10
}

type Count struct {
	ID             int64   `json:"id,omitempty"`
	Label          string  `json:"label"`
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

func toCounts(groups []database.GroupCount, label func(database.GroupCount) string) []Count {
	out := make([]Count, 0, len(groups))
	for _, g := range groups {
		out = append(out, Count{
			ID:             g.Key,
			Label:          label(g),
			Total:          g.Total,
			Completed:      g.Completed,
			CompletionRate: CompletionRate(g.Completed, g.Total),
		})
	}
	return out
}

type Summary struct {
	ProjectID        int64     `json:"project_id"`
	GeneratedAt      time.Time `json:"generated_at"`
	TotalTickets     int       `json:"total_tickets"`
	CompletedTickets int       `json:"completed_tickets"`
	CompletionRate   float64   `json:"completion_rate"`
	ByStatus         []Count   `json:"by_status"`
	ByPriority       []Count   `json:"by_priority"`
	ByAssignee       []Count   `json:"by_assignee"`
	ByDeliverable    []Count   `json:"by_deliverable"`
}

func BuildSummary(ctx context.Context, q *database.Queries, projectID int64) (Summary, error) {
	s := Summary{ProjectID: projectID, GeneratedAt: time.Now().UTC()}

	byStatus, err := q.TicketsByStatus(ctx, projectID)
	if err != nil {
		return Summary{}, err
	}
	byPriority, err := q.TicketsByPriority(ctx, projectID)
	if err != nil {
		return Summary{}, err
	}
	byAssignee, err := q.TicketsByAssignee(ctx, projectID)
	if err != nil {
		return Summary{}, err
	}
	byDeliverable, err := q.TicketsByDeliverable(ctx, projectID)
	if err != nil {
		return Summary{}, err
	}

	var assigneeIDs []int64
	for _, g := range byAssignee {
		if g.Key != 0 {
			assigneeIDs = append(assigneeIDs, g.Key)
		}
	}
	users, err := q.GetUsers(ctx, assigneeIDs)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load assignees: %w", err)
	}

	name := func(g database.GroupCount) string { return g.Label }
	s.ByStatus = toCounts(byStatus, name)
	s.ByPriority = toCounts(byPriority, name)
	s.ByDeliverable = toCounts(byDeliverable, name)
	s.ByAssignee = toCounts(byAssignee, func(g database.GroupCount) string {
		if g.Key == 0 {
			return "Unassigned"
		}
		if u, ok := users[g.Key]; ok {
			return u.FullName()
		}
		return g.Label
	})

	for _, c := range s.ByStatus {
		s.TotalTickets += c.Total
		s.CompletedTickets += c.Completed
	}
	s.CompletionRate = CompletionRate(s.CompletedTickets, s.TotalTickets)
	return s, nil
}

type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ParseWindow reads optional from/to values given as dates (2006-01-02) or
// RFC 3339 timestamps. A date-only "to" covers that whole day. Missing
// values default to the last 30 days ending now.
func ParseWindow(from, to string, now time.Time) (Window, error) {
	w := Window{To: now.UTC()}
	if to != "" {
		t, dateOnly, err := parseTime(to)
		if err != nil {
			return Window{}, fmt.Errorf("invalid 'to': %w", err)
		}
		if dateOnly {
			t = t.Add(24 * time.Hour)
		}
		w.To = t
	}
	w.From = w.To.Add(-DefaultWindow)
	if from != "" {
		t, _, err := parseTime(from)
		if err != nil {
			return Window{}, fmt.Errorf("invalid 'from': %w", err)
		}
		w.From = t
	}
	if !w.From.Before(w.To) {
		return Window{}, ErrInvalidWindow
	}
	return w, nil
}

func parseTime(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type UserCount struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

type Activity struct {
	Window
	Total    int            `json:"total"`
	ByDay    []DayCount     `json:"by_day"`
	ByUser   []UserCount    `json:"by_user"`
	ByAction map[string]int `json:"by_action"`
}

func BuildActivity(ctx context.Context, q *database.Queries, projectID int64, w Window) (Activity, error) {
	entries, err := q.ActivityBetween(ctx, projectID, w.From, w.To)
	if err != nil {
		return Activity{}, err
	}

	a := Activity{Window: w, Total: len(entries), ByAction: map[string]int{}}
	days := map[string]int{}
	perUser := map[int64]int{}
	for _, e := range entries {
		days[e.CreatedAt.UTC().Format(time.DateOnly)]++
		perUser[e.UserID]++
		a.ByAction[string(e.Action)]++
	}

	for day, n := range days {
		a.ByDay = append(a.ByDay, DayCount{Day: day, Count: n})
	}
	sort.Slice(a.ByDay, func(i, j int) bool { return a.ByDay[i].Day < a.ByDay[j].Day })

	ids := make([]int64, 0, len(perUser))
	for id := range perUser {
		ids = append(ids, id)
	}
	users, err := q.GetUsers(ctx, ids)
	if err != nil {
		return Activity{}, fmt.Errorf("failed to load users: %w", err)
	}
	for id, n := range perUser {
		a.ByUser = append(a.ByUser, UserCount{UserID: id, Name: users[id].FullName(), Count: n})
	}
	sort.Slice(a.ByUser, func(i, j int) bool {
		if a.ByUser[i].Count != a.ByUser[j].Count {
			return a.ByUser[i].Count > a.ByUser[j].Count
		}
		return a.ByUser[i].UserID < a.ByUser[j].UserID
	})
	return a, nil
}

type MemberProductivity struct {
	UserID            int64   `json:"user_id"`
	Name              string  `json:"name"`
	Role              string  `json:"role"`
	TicketsCreated    int     `json:"tickets_created"`
	TicketsCompleted  int     `json:"tickets_completed"`
	CommentsAdded     int     `json:"comments_added"`
	Assigned          int     `json:"assigned"`
	AssignedCompleted int     `json:"assigned_completed"`
	CompletionRate    float64 `json:"completion_rate"`
}

type Productivity struct {
	Window
	Members []MemberProductivity `json:"members"`
}

// BuildProductivity counts, per member, what they did inside the window.
// Completions are taken from the activity log: a status change to Complete
// made by that member.
func BuildProductivity(ctx context.Context, q *database.Queries, projectID int64, w Window) (Productivity, error) {
	members, err := q.ListMembers(ctx, projectID)
	if err != nil {
		return Productivity{}, err
	}
	created, err := q.TicketsCreatedBetween(ctx, projectID, w.From, w.To)
	if err != nil {
		return Productivity{}, err
	}
	comments, err := q.CommentsBetween(ctx, projectID, w.From, w.To)
	if err != nil {
		return Productivity{}, err
	}
	byAssignee, err := q.TicketsByAssignee(ctx, projectID)
	if err != nil {
		return Productivity{}, err
	}
	entries, err := q.ActivityBetween(ctx, projectID, w.From, w.To)
	if err != nil {
		return Productivity{}, err
	}

	completed := map[int64]int{}
	for _, e := range entries {
		if e.TargetType == models.TargetTicket && completedBy(e) {
			completed[e.UserID]++
		}
	}
	assigned := map[int64]database.GroupCount{}
	for _, g := range byAssignee {
		assigned[g.Key] = g
	}

	p := Productivity{Window: w}
	for _, m := range members {
		a := assigned[m.UserID]
		p.Members = append(p.Members, MemberProductivity{
			UserID:            m.UserID,
			Name:              models.User{Email: m.Email, FirstName: m.FirstName, LastName: m.LastName}.FullName(),
			Role:              m.Role.String(),
			TicketsCreated:    created[m.UserID],
			TicketsCompleted:  completed[m.UserID],
			CommentsAdded:     comments[m.UserID],
			Assigned:          a.Total,
			AssignedCompleted: a.Completed,
			CompletionRate:    CompletionRate(a.Completed, a.Total),
		})
	}
	return p, nil
}

func completedBy(e models.ActivityEntry) bool {
	if e.Action != models.ActionStatusChanged && e.Action != models.ActionUpdated {
		return false
	}
	var diff map[string]models.FieldChange
	if err := json.Unmarshal(e.Details, &diff); err != nil {
		return false
	}
	change, ok := diff["status"]
	return ok && change.To == models.StatusComplete.String()
}
