package models

import "time"

type File struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	Filepath   string    `json:"-"`
	Filesize   int64     `json:"filesize"`
	MimeType   string    `json:"mime_type"`
	UploadedBy int64     `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// FileAttachment says what a file hangs off. At most one of TicketID and
// CommentID is set; both zero means the file is orphaned.
type FileAttachment struct {
	TicketID  int64
	CommentID int64
	ProjectID int64
}

func (a FileAttachment) Orphaned() bool {
	return a.TicketID == 0 && a.CommentID == 0
}
