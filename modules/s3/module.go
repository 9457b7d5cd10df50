// Package s3 uploads a finished results file to a pre-signed object storage
// URL with a single PUT.
package s3

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/vk/gridbench/internal/ctxlog"
)

// Uploader PUTs files to pre-signed URLs.
type Uploader struct {
	client *http.Client
}

// NewUploader returns an Uploader using client, or a fresh client if nil.
func NewUploader(client *http.Client) *Uploader {
	if client == nil {
		client = &http.Client{}
	}
	return &Uploader{client: client}
}

// Upload sends the file at sourcePath to uploadURL.
func (u *Uploader) Upload(ctx context.Context, sourcePath, uploadURL string) error {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	file, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file '%s': %w", sourcePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file stats for '%s': %w", sourcePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(sourcePath))
	if contentType == "" && filepath.Ext(sourcePath) == ".csv" {
		contentType = "text/csv; charset=utf-8"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading results.", "source", sourcePath, "size", stat.Size(), "contentType", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded results.", "status", resp.Status)
	return nil
}
