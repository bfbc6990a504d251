package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aurelia-gems/storefront/internal/catalog/domain"
	"github.com/aurelia-gems/storefront/pkg/logger"
)

// MaxFileSize is the upload limit enforced client-side before any
// storage call, in addition to whatever the store enforces itself.
const MaxFileSize = 5 << 20 // 5 MB

// allowedContentTypes maps accepted image types to their file extension.
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Storage persists an object and returns its public URL.
type Storage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// Service validates and stores product images.
type Service struct {
	storage Storage
	now     func() time.Time
}

// NewService creates an upload service over the given storage backend.
func NewService(storage Storage) *Service {
	return &Service{storage: storage, now: time.Now}
}

// Validate fast-fails an upload before any bytes move: size limit and
// allowed content-type set.
func Validate(size int64, contentType string) error {
	if size <= 0 {
		return &domain.ValidationError{Field: "image", Message: "file is empty"}
	}
	if size > MaxFileSize {
		return &domain.ValidationError{Field: "image", Message: "file exceeds the 5 MB limit"}
	}
	if _, ok := allowedContentTypes[normalizeContentType(contentType)]; !ok {
		return &domain.ValidationError{Field: "image", Message: "only JPEG, PNG and WebP images are allowed"}
	}
	return nil
}

// Upload validates and stores one image, returning its public URL. The
// content type is sniffed from the payload rather than trusted from the
// request header.
func (s *Service) Upload(ctx context.Context, filename string, size int64, r io.Reader) (string, error) {
	if size <= 0 {
		return "", &domain.ValidationError{Field: "image", Message: "file is empty"}
	}
	if size > MaxFileSize {
		return "", &domain.ValidationError{Field: "image", Message: "file exceeds the 5 MB limit"}
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := normalizeContentType(http.DetectContentType(head))
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return "", &domain.ValidationError{Field: "image", Message: "only JPEG, PNG and WebP images are allowed"}
	}

	name := s.objectName(filename, ext)
	body := io.MultiReader(strings.NewReader(string(head)), r)

	url, err := s.storage.Save(ctx, name, contentType, body)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	logger.Info(ctx).
		Str("object", name).
		Str("content_type", contentType).
		Int64("size", size).
		Msg("Image uploaded")

	return url, nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// objectName builds a unique object name: upload timestamp plus the
// sanitized original filename, with the extension matching the sniffed
// type.
func (s *Service) objectName(filename, ext string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = unsafeNameChars.ReplaceAllString(base, "-")
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("%d_%s%s", s.now().UnixMilli(), base, ext)
}

func normalizeContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
