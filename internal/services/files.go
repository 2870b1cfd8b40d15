package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"tickbug-backend/internal/activity"
	"tickbug-backend/internal/authz"
	"tickbug-backend/internal/database"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/notify"
	"tickbug-backend/internal/storage"
)

type FileService struct {
	*core
}

// attachTarget is the ticket or comment an upload hangs off.
type attachTarget struct {
	ticket    models.Ticket
	commentID int64
}

func (s *FileService) UploadToTicket(ctx context.Context, actorID, ticketID int64, filename string, r io.Reader) (models.File, error) {
	return s.upload(ctx, actorID, filename, r, func(q *database.Queries) (attachTarget, error) {
		t, err := s.ticket(ctx, q, ticketID)
		return attachTarget{ticket: t}, err
	})
}

func (s *FileService) UploadToComment(ctx context.Context, actorID, commentID int64, filename string, r io.Reader) (models.File, error) {
	return s.upload(ctx, actorID, filename, r, func(q *database.Queries) (attachTarget, error) {
		c, err := s.comment(ctx, q, commentID)
		if err != nil {
			return attachTarget{}, err
		}
		t, err := s.ticket(ctx, q, c.TicketID)
		return attachTarget{ticket: t, commentID: c.ID}, err
	})
}

// readUpload buffers at most limit+1 bytes so oversized uploads are
// rejected without reading the rest of the body.
func readUpload(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	return io.ReadAll(io.LimitReader(r, limit+1))
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, storage.ErrEmptyFile),
		errors.Is(err, storage.ErrFileTooLarge),
		errors.Is(err, storage.ErrTypeNotAllowed),
		errors.Is(err, storage.ErrExtensionNotAllowed):
		return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
	}
	return err
}

// upload stores the bytes and then records the file row. If the bytes
// cannot be stored no row is written; if the row cannot be written the
// stored bytes are removed again.
func (s *FileService) upload(ctx context.Context, actorID int64, filename string, r io.Reader,
	resolve func(q *database.Queries) (attachTarget, error)) (models.File, error) {
	data, err := readUpload(r, s.cfg.MaxUploadBytes)
	if err != nil {
		return models.File{}, validationError("failed to read upload")
	}
	checked, err := storage.Inspect(filename, data, s.cfg.MaxUploadBytes)
	if err != nil {
		return models.File{}, uploadError(err)
	}

	var (
		created models.File
		stored  bool
	)
	err = s.run(ctx, func(u *unit) error {
		target, err := resolve(u.q)
		if err != nil {
			return err
		}
		t := target.ticket
		if _, err := s.authorize(ctx, u.q, t.ProjectID, actorID, authz.UploadFile, 0); err != nil {
			return err
		}

		if err := s.files.Save(ctx, checked.StoredName, checked.MimeType, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to store upload: %w", err)
		}
		stored = true

		created, err = u.q.CreateFile(ctx, models.File{
			Filename:   checked.Original,
			Filepath:   checked.StoredName,
			Filesize:   checked.Size,
			MimeType:   checked.MimeType,
			UploadedBy: actorID,
		})
		if err != nil {
			return err
		}
		details := map[string]any{"filename": created.Filename, "ticket_id": t.ID}
		if target.commentID != 0 {
			err = u.q.LinkCommentFile(ctx, target.commentID, created.ID)
			details["comment_id"] = target.commentID
		} else {
			err = u.q.LinkTicketFile(ctx, t.ID, created.ID)
		}
		if err != nil {
			return err
		}
		if err := s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: t.ProjectID, TargetType: models.TargetFile,
			TargetID: created.ID, Action: models.ActionCreated, Details: details,
		}); err != nil {
			return err
		}

		s.notify(u, notify.Event{
			Kind:      models.NotifyFileUploaded,
			ActorID:   actorID,
			ProjectID: t.ProjectID,
			TicketID:  t.ID,
			Audience:  notify.Users,
			UserIDs:   []int64{t.CreatedBy, t.Assignee()},
			Subject:   "New file on " + t.Title,
			Headline:  created.Filename + " was attached.",
			Body:      t.Title,
			Path:      ticketPath(t.ID),
		})
		return nil
	})
	if err != nil && stored {
		if rmErr := s.files.Remove(context.WithoutCancel(ctx), checked.StoredName); rmErr != nil {
			s.logger.Warn("failed to remove stored upload",
				slog.String("key", checked.StoredName), slog.String("error", rmErr.Error()))
		}
	}
	return created, err
}

// List returns the files attached directly to a ticket.
func (s *FileService) List(ctx context.Context, actorID, ticketID int64) ([]models.File, error) {
	var out []models.File
	err := s.read(ctx, func(q *database.Queries) error {
		t, err := s.ticket(ctx, q, ticketID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(ctx, q, t.ProjectID, actorID, authz.ViewProject, 0); err != nil {
			return err
		}
		out, err = q.ListTicketFiles(ctx, ticketID)
		if out == nil {
			out = []models.File{}
		}
		return err
	})
	return out, err
}

// access loads a file and checks that the actor may see it. Orphaned files
// are visible to their uploader only.
func (s *FileService) access(ctx context.Context, q *database.Queries, actorID, fileID int64) (models.File, models.FileAttachment, error) {
	f, err := q.GetFile(ctx, fileID)
	if errors.Is(err, database.ErrNotFound) {
		return models.File{}, models.FileAttachment{}, notFound("file")
	}
	if err != nil {
		return models.File{}, models.FileAttachment{}, err
	}
	a, err := q.GetFileAttachment(ctx, fileID)
	if err != nil {
		return models.File{}, models.FileAttachment{}, err
	}
	if a.Orphaned() {
		if f.UploadedBy != actorID {
			return models.File{}, models.FileAttachment{}, permissionDenied()
		}
		return f, a, nil
	}
	if _, err := s.authorize(ctx, q, a.ProjectID, actorID, authz.ViewProject, 0); err != nil {
		return models.File{}, models.FileAttachment{}, err
	}
	return f, a, nil
}

// Download returns the file metadata and a stream of its bytes. The caller
// closes the stream.
func (s *FileService) Download(ctx context.Context, actorID, fileID int64) (models.File, io.ReadCloser, error) {
	var f models.File
	err := s.read(ctx, func(q *database.Queries) error {
		var err error
		f, _, err = s.access(ctx, q, actorID, fileID)
		return err
	})
	if err != nil {
		return models.File{}, nil, err
	}
	rc, err := s.files.Open(ctx, f.Filepath)
	if err != nil {
		s.logger.Warn("failed to open stored file",
			slog.Int64("file_id", f.ID), slog.String("key", f.Filepath), slog.String("error", err.Error()))
		return models.File{}, nil, notFound("file")
	}
	return f, rc, nil
}

func (s *FileService) Delete(ctx context.Context, actorID, fileID int64) error {
	return s.run(ctx, func(u *unit) error {
		f, a, err := s.access(ctx, u.q, actorID, fileID)
		if err != nil {
			return err
		}
		if !a.Orphaned() {
			if _, err := s.authorize(ctx, u.q, a.ProjectID, actorID, authz.DeleteFile, f.UploadedBy); err != nil {
				return err
			}
		}
		removed, err := u.q.DeleteFile(ctx, fileID)
		if err != nil {
			return err
		}
		s.unlink(u, removed.Paths)
		if a.Orphaned() {
			return nil
		}
		return s.record(ctx, u, activity.Event{
			UserID: actorID, ProjectID: a.ProjectID, TargetType: models.TargetFile,
			TargetID: fileID, Action: models.ActionDeleted,
			Details: map[string]any{"filename": f.Filename},
		})
	})
}
