package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore keeps attachments in a private Supabase Storage bucket.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
	logger *slog.Logger
}

func NewSupabaseStore(supabaseURL, serviceKey, bucket string, logger *slog.Logger) *SupabaseStore {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &SupabaseStore{
		client: storage_go.NewClient(baseURL+"/storage/v1", serviceKey, nil),
		bucket: bucket,
		logger: logger,
	}
}

func objectPath(key string) string {
	return "attachments/" + key
}

func (s *SupabaseStore) Save(_ context.Context, key, contentType string, r io.Reader) error {
	if err := checkKey(key); err != nil {
		return err
	}
	upsert := false
	_, err := s.client.UploadFile(s.bucket, objectPath(key), r, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

func (s *SupabaseStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	data, err := s.client.DownloadFile(s.bucket, objectPath(key))
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *SupabaseStore) Remove(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{objectPath(key)}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	s.logger.Debug("removed object", slog.String("bucket", s.bucket), slog.String("key", key))
	return nil
}
