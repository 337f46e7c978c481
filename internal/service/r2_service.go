package service

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"vouchy/internal/storage"

	"github.com/rs/zerolog"
)

// R2UploadRequest asks for a presigned PUT for an authenticated user.
type R2UploadRequest struct {
	FileName    string `json:"fileName" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
	Folder      string `json:"folder" validate:"required"`
}

// R2Upload is a presigned PUT and the key it writes to.
type R2Upload struct {
	UploadURL string
	Key       string
	PublicURL string
	ExpiresIn time.Duration
}

type R2Service interface {
	CreatePresignedUpload(ctx context.Context, userID string, req R2UploadRequest) (*R2Upload, error)
}

type r2Service struct {
	presigner storage.Presigner
	bucket    string
	publicURL string
	folders   []string
	ttl       time.Duration
	now       func() time.Time
	randomID  func() string
	logger    zerolog.Logger
}

// NewR2Service creates an R2Service. presigner may be nil when R2 is not configured.
func NewR2Service(presigner storage.Presigner, bucket, publicURL string, folders []string, ttl time.Duration, logger zerolog.Logger) R2Service {
	return &r2Service{
		presigner: presigner,
		bucket:    bucket,
		publicURL: publicURL,
		folders:   folders,
		ttl:       ttl,
		now:       time.Now,
		randomID:  storage.RandomID,
		logger:    logger.With().Str("service", "R2Service").Logger(),
	}
}

func (s *r2Service) CreatePresignedUpload(ctx context.Context, userID string, req R2UploadRequest) (*R2Upload, error) {
	if !slices.Contains(s.folders, req.Folder) {
		return nil, fmt.Errorf("%w: %q, must be one of %s", ErrInvalidFolder, req.Folder, strings.Join(s.folders, ", "))
	}
	if s.presigner == nil || s.bucket == "" {
		return nil, fmt.Errorf("R2 storage is %w", ErrNotConfigured)
	}

	key := storage.ObjectPath(userID, req.Folder, fileExt(req.FileName), s.now(), s.randomID())
	uploadURL, err := s.presigner.PresignPut(ctx, s.bucket, key, req.ContentType, s.ttl)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to presign R2 upload")
		return nil, fmt.Errorf("presign r2 upload: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("key", key).Msg("R2 upload URL issued")
	return &R2Upload{
		UploadURL: uploadURL,
		Key:       key,
		PublicURL: storage.PublicURL(s.publicURL, key),
		ExpiresIn: s.ttl,
	}, nil
}

// fileExt returns the lower-cased extension of name, or "bin" when it has
// none or it is not path safe.
func fileExt(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !storage.ValidSegment(ext) {
		return "bin"
	}
	return ext
}
