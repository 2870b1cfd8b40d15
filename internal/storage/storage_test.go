package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x01}, 64)...)

func TestInspectRejectsShellScripts(t *testing.T) {
	script := []byte("#!/bin/sh\nrm -rf /tmp/x\n")
	for _, name := range []string{"install.sh", "notes.txt", "photo.jpg"} {
		_, err := Inspect(name, script, 1<<20)
		assert.ErrorIs(t, err, ErrTypeNotAllowed, name)
	}
}

func TestInspectAcceptsJPEG(t *testing.T) {
	got, err := Inspect("My Photo (1).JPG", jpegBytes, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", got.MimeType)
	assert.Equal(t, "My Photo (1).JPG", got.Original)
	assert.EqualValues(t, len(jpegBytes), got.Size)
	assert.Regexp(t, `^My_Photo_1_\d+_[0-9a-f-]{8}\.jpg$`, got.StoredName)
}

func TestInspectNeedsBothChecks(t *testing.T) {
	_, err := Inspect("photo.exe", jpegBytes, 1<<20)
	assert.ErrorIs(t, err, ErrExtensionNotAllowed)

	_, err = Inspect("photo.jpg", nil, 1<<20)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Inspect("photo.jpg", jpegBytes, 10)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "evil.txt", SanitizeFilename(`C:\temp\evil.TXT`))
	assert.Equal(t, "file.pdf", SanitizeFilename("???.pdf"))
	assert.Equal(t, "a_b-c", SanitizeFilename("a b-c"))
}

func TestUniqueNameDiffers(t *testing.T) {
	now := time.Unix(1700000000, 0)
	a := UniqueName("report.pdf", now)
	b := UniqueName("report.pdf", now)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "report_1700000000_"))
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "a_1_abcd.txt", "text/plain", strings.NewReader("hello")))

	rc, err := store.Open(ctx, "a_1_abcd.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Remove(ctx, "a_1_abcd.txt"))
	require.NoError(t, store.Remove(ctx, "a_1_abcd.txt"))

	_, err = store.Open(ctx, "../outside")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
