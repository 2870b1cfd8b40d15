package handlers

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"tickbug-backend/internal/models"
	"tickbug-backend/internal/services"
)

// multipartOverhead is allowed on top of the file size for form framing.
const multipartOverhead = 1 << 20

type FilesHandler struct {
	files    *services.FileService
	maxBytes int64
}

func NewFilesHandler(files *services.FileService, maxBytes int64) *FilesHandler {
	return &FilesHandler{files: files, maxBytes: maxBytes}
}

type uploadFunc func(ctx context.Context, actorID, parentID int64, filename string, r io.Reader) (models.File, error)

func (h *FilesHandler) UploadToTicket(c *gin.Context) {
	h.upload(c, h.files.UploadToTicket)
}

func (h *FilesHandler) UploadToComment(c *gin.Context) {
	h.upload(c, h.files.UploadToComment)
}

func (h *FilesHandler) upload(c *gin.Context, save uploadFunc) {
	parentID, valid := pathID(c, "id")
	if !valid {
		return
	}
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		failMessage(c, "failed to parse multipart form: "+err.Error())
		return
	}
	form := c.Request.MultipartForm
	defer form.RemoveAll()

	var header *multipart.FileHeader
	for _, name := range []string{"file", "files", "attachment"} {
		if f := form.File[name]; len(f) > 0 {
			header = f[0]
			break
		}
	}
	if header == nil {
		failMessage(c, "no file uploaded")
		return
	}

	src, err := header.Open()
	if err != nil {
		failMessage(c, "failed to read upload: "+err.Error())
		return
	}
	defer src.Close()

	f, err := save(c.Request.Context(), actor(c), parentID, header.Filename, src)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"file": f})
}

func (h *FilesHandler) ListFiles(c *gin.Context) {
	ticketID, valid := pathID(c, "id")
	if !valid {
		return
	}
	files, err := h.files.List(c.Request.Context(), actor(c), ticketID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, models.Envelope{"files": files})
}

// Download streams the stored bytes with the recorded MIME type and the
// original filename.
func (h *FilesHandler) Download(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	f, rc, err := h.files.Download(c.Request.Context(), actor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	defer rc.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": f.Filename})
	c.DataFromReader(http.StatusOK, f.Filesize, f.MimeType, rc, map[string]string{
		"Content-Disposition":    disposition,
		"X-Content-Type-Options": "nosniff",
	})
}

func (h *FilesHandler) DeleteFile(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.files.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
