// Package gdrive wraps the Google Drive API for resume file management:
// duplicating the master resume, exporting tailored copies to PDF, and
// uploading artifacts to a shared folder.
package gdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	// MimeGoogleDoc is the Drive MIME type for native Google Docs.
	MimeGoogleDoc = "application/vnd.google-apps.document"
	// MimePDF is the export target for finished resumes.
	MimePDF = "application/pdf"

	// maxExportSize caps exported PDF reads (20MB).
	maxExportSize = 20 * 1024 * 1024
)

// ErrUnsupported indicates a file is not a native Google Doc and cannot be
// tailored in place.
var ErrUnsupported = errors.New("file is not a Google Docs document")

// ErrNotFound indicates the file does not exist or is not visible to the
// service account.
var ErrNotFound = errors.New("file not found")

// FileService performs the Drive operations the pipeline needs.
type FileService interface {
	// CopyDocument duplicates a Google Doc into folderID and returns the
	// new file's ID. Non-Doc sources return ErrUnsupported.
	CopyDocument(ctx context.Context, fileID, name, folderID string) (string, error)
	// ExportPDF renders a Google Doc to PDF bytes.
	ExportPDF(ctx context.Context, fileID string) ([]byte, error)
	// UploadPDF stores PDF bytes as a new file in folderID and returns its ID.
	UploadPDF(ctx context.Context, name, folderID string, data []byte) (string, error)
}

// Service implements FileService against the Drive v3 API. Calls are
// throttled with a token bucket kept below Drive's per-user quota.
type Service struct {
	svc     *drive.Service
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewService creates a Drive client from a token source.
func NewService(ctx context.Context, ts oauth2.TokenSource, logger *slog.Logger) (*Service, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(8), 10),
		logger:  logger.With("component", "gdrive"),
	}, nil
}

func (s *Service) CopyDocument(ctx context.Context, fileID, name, folderID string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	meta, err := s.svc.Files.Get(fileID).
		Fields("id", "mimeType").
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return "", wrapDriveErr("get file metadata", err)
	}
	if meta.MimeType != MimeGoogleDoc {
		return "", fmt.Errorf("%w: %s has type %s", ErrUnsupported, fileID, meta.MimeType)
	}

	dup := &drive.File{Name: name}
	if folderID != "" {
		dup.Parents = []string{folderID}
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	created, err := s.svc.Files.Copy(fileID, dup).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return "", wrapDriveErr("copy file", err)
	}
	s.logger.Info("duplicated document", "source", fileID, "copy", created.Id)
	return created.Id, nil
}

func (s *Service) ExportPDF(ctx context.Context, fileID string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.svc.Files.Export(fileID, MimePDF).Context(ctx).Download()
	if err != nil {
		return nil, wrapDriveErr("export pdf", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	if err := validatePDF(data); err != nil {
		return nil, fmt.Errorf("exported pdf invalid: %w", err)
	}
	return data, nil
}

func (s *Service) UploadPDF(ctx context.Context, name, folderID string, data []byte) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	file := &drive.File{Name: name, MimeType: MimePDF}
	if folderID != "" {
		file.Parents = []string{folderID}
	}
	created, err := s.svc.Files.Create(file).
		Media(bytes.NewReader(data), googleapi.ContentType(MimePDF)).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return "", wrapDriveErr("upload pdf", err)
	}
	s.logger.Info("uploaded artifact", "file", created.Id, "bytes", len(data))
	return created.Id, nil
}

// validatePDF checks the exported bytes parse as a PDF with at least one page.
func validatePDF(data []byte) error {
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return err
	}
	if pages == 0 {
		return errors.New("no pages")
	}
	return nil
}

func wrapDriveErr(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 404 || apiErr.Code == 403) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ FileService = (*Service)(nil)
