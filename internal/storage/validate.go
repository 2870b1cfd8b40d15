package storage

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrEmptyFile           = errors.New("file is empty")
	ErrFileTooLarge        = errors.New("file exceeds the upload size limit")
	ErrTypeNotAllowed      = errors.New("file type is not allowed")
	ErrExtensionNotAllowed = errors.New("file extension is not allowed")
)

// allowedTypes is checked against the sniffed content, never against the
// client-supplied Content-Type.
var allowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"text/plain",
	"text/csv",
	"application/json",
	"application/zip",
	"application/msword",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".pdf": true, ".txt": true, ".csv": true, ".md": true, ".log": true, ".json": true,
	".zip": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Checked is an upload that passed validation.
type Checked struct {
	Original   string
	StoredName string
	MimeType   string
	Size       int64
}

// Inspect validates an upload. Both the sniffed MIME type and the file
// extension must be allowed; passing one does not excuse the other.
func Inspect(filename string, data []byte, maxBytes int64) (Checked, error) {
	if len(data) == 0 {
		return Checked{}, ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Checked{}, ErrFileTooLarge
	}

	detected := mimetype.Detect(data)
	if !isAny(detected, allowedTypes) {
		return Checked{}, fmt.Errorf("%w: %s", ErrTypeNotAllowed, detected.String())
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return Checked{}, fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
	}

	mediaType, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		mediaType = detected.String()
	}

	return Checked{
		Original:   filepath.Base(filename),
		StoredName: UniqueName(filename, time.Now()),
		MimeType:   mediaType,
		Size:       int64(len(data)),
	}, nil
}

func isAny(m *mimetype.MIME, types []string) bool {
	for _, t := range types {
		if m.Is(t) {
			return true
		}
	}
	return false
}

// SanitizeFilename keeps letters, digits, '-' and '_' of the base name and
// lowercases the extension. Directory components are dropped.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))

	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "_")
	if len(base) > 80 {
		base = base[:80]
	}
	if base == "" {
		base = "file"
	}
	if unsafeChars.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	return base + ext
}

// UniqueName is the sanitized name with a timestamp and random suffix.
func UniqueName(name string, now time.Time) string {
	clean := SanitizeFilename(name)
	ext := filepath.Ext(clean)
	base := strings.TrimSuffix(clean, ext)
	return fmt.Sprintf("%s_%d_%s%s", base, now.Unix(), uuid.NewString()[:8], ext)
}
