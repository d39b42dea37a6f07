package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"thecrew/internal/config"
	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
	"thecrew/internal/domain/services"
)

// uploadPrefix is the only key space clients may upload into
const uploadPrefix = "uploads/"

// allowedMediaPrefixes and allowedMediaTypes form the upload allow-list
var (
	allowedMediaPrefixes = []string{"image/", "video/", "audio/", "text/"}
	allowedMediaTypes    = map[string]bool{
		"application/pdf":               true,
		"application/msword":            true,
		"application/vnd.ms-excel":      true,
		"application/vnd.ms-powerpoint": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
		"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	}
)

type uploadService struct {
	storage  services.ObjectStorage
	maxBytes int64
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewUploadService creates the presigned upload service
func NewUploadService(storage services.ObjectStorage, maxBytes int64, ttl time.Duration, logger *slog.Logger) services.UploadService {
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxUploadBytes
	}
	return &uploadService{storage: storage, maxBytes: maxBytes, ttl: ttl, now: time.Now, logger: logger}
}

// RequestUploadURL grants one direct PUT to a fresh key under uploads/<user>/
func (s *uploadService) RequestUploadURL(ctx context.Context, userID string, req *services.UploadURLRequest) (*models.UploadTicket, error) {
	req.Name = strings.TrimSpace(req.Name)

	var contentType string
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxFileNameLength)),
		validation.Field(&req.Size, validation.Required, validation.Min(int64(1)), validation.Max(s.maxBytes)),
		validation.Field(&req.ContentType, validation.Required, validation.By(func(value interface{}) error {
			ct, err := normalizeContentType(req.ContentType)
			contentType = ct
			return err
		})),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	key := ObjectKey(userID, uuid.NewString(), req.Name)
	url, headers, err := s.storage.PresignPut(ctx, key, contentType, req.Size, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	s.logger.Info("upload url issued", "user_id", userID, "object_path", key, "size", req.Size)
	return &models.UploadTicket{
		UploadURL:  url,
		ObjectPath: key,
		ExpiresAt:  s.now().Add(s.ttl).UTC(),
		Headers:    headers,
	}, nil
}

// ObjectKey builds uploads/<user>/<id>/<slug>.<ext> from a client-supplied file name
func ObjectKey(userID, id, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := slug.Make(strings.TrimSuffix(name, filepath.Ext(name)))
	if base == "" {
		base = "file"
	}
	ext = sanitizeExt(ext)
	return fmt.Sprintf("%s%s/%s/%s%s", uploadPrefix, userID, id, base, ext)
}

// sanitizeExt keeps short alphanumeric extensions only
func sanitizeExt(ext string) string {
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func normalizeContentType(raw string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return "", errors.New("must be a valid media type")
	}
	if allowedMediaTypes[mediaType] {
		return mediaType, nil
	}
	for _, p := range allowedMediaPrefixes {
		if strings.HasPrefix(mediaType, p) {
			return mediaType, nil
		}
	}
	return "", fmt.Errorf("media type %s is not allowed", mediaType)
}
