package services

import (
	"context"

	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/database"
	"tickbug-backend/internal/reports"
)

type ReportService struct {
	*core
}

func (s *ReportService) allowed(ctx context.Context, q *database.Queries, actorID, projectID int64) error {
	if _, err := s.project(ctx, q, projectID); err != nil {
		return err
	}
	_, err := s.authorize(ctx, q, projectID, actorID, authz.ViewReports, 0)
	return err
}

func (s *ReportService) window(from, to string) (reports.Window, error) {
	w, err := reports.ParseWindow(from, to, s.now())
	if err != nil {
		return reports.Window{}, &Error{Kind: KindValidation, Message: err.Error(), Err: err}
	}
	return w, nil
}

func (s *ReportService) Summary(ctx context.Context, actorID, projectID int64) (reports.Summary, error) {
	var out reports.Summary
	err := s.read(ctx, func(q *database.Queries) error {
		if err := s.allowed(ctx, q, actorID, projectID); err != nil {
			return err
		}
		var err error
		out, err = reports.BuildSummary(ctx, q, projectID)
		return err
	})
	return out, err
}

// Activity counts log entries in the window. from and to are optional.
func (s *ReportService) Activity(ctx context.Context, actorID, projectID int64, from, to string) (reports.Activity, error) {
	w, err := s.window(from, to)
	if err != nil {
		return reports.Activity{}, err
	}
	var out reports.Activity
	err = s.read(ctx, func(q *database.Queries) error {
		if err := s.allowed(ctx, q, actorID, projectID); err != nil {
			return err
		}
		var err error
		out, err = reports.BuildActivity(ctx, q, projectID, w)
		return err
	})
	return out, err
}

func (s *ReportService) Productivity(ctx context.Context, actorID, projectID int64, from, to string) (reports.Productivity, error) {
	w, err := s.window(from, to)
	if err != nil {
		return reports.Productivity{}, err
	}
	var out reports.Productivity
	err = s.read(ctx, func(q *database.Queries) error {
		if err := s.allowed(ctx, q, actorID, projectID); err != nil {
			return err
		}
		var err error
		out, err = reports.BuildProductivity(ctx, q, projectID, w)
		return err
	})
	return out, err
}
