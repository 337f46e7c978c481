package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"vouchy/internal/metrics"
	"vouchy/internal/ratelimit"
	"vouchy/internal/repository"
	"vouchy/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// SignedUploadRequest is a public request to upload a testimonial asset.
type SignedUploadRequest struct {
	Bucket      string `json:"bucket" validate:"required"`
	SpaceID     string `json:"spaceId" validate:"required"`
	Kind        string `json:"kind" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
	FileExt     string `json:"fileExt" validate:"required"`
}

// SignedUpload is a minted upload slot.
type SignedUpload struct {
	SignedURL string
	Path      string
	PublicURL string
	ExpiresIn time.Duration
}

// UploadService mints signed upload URLs for public submissions to a space.
type UploadService interface {
	CreateSignedUpload(ctx context.Context, clientIP string, req SignedUploadRequest) (*SignedUpload, error)
}

type uploadService struct {
	spaces      repository.SpaceRepository
	limiter     ratelimit.Limiter
	presigner   storage.Presigner
	validate    *validator.Validate
	supabaseURL string
	buckets     []string
	ttl         time.Duration
	now         func() time.Time
	randomID    func() string
	logger      zerolog.Logger
}

// NewUploadService creates an UploadService. presigner may be nil when
// storage is not configured; requests then fail with ErrNotConfigured.
func NewUploadService(
	spaces repository.SpaceRepository,
	limiter ratelimit.Limiter,
	presigner storage.Presigner,
	validate *validator.Validate,
	supabaseURL string,
	buckets []string,
	ttl time.Duration,
	logger zerolog.Logger,
) UploadService {
	return &uploadService{
		spaces:      spaces,
		limiter:     limiter,
		presigner:   presigner,
		validate:    validate,
		supabaseURL: supabaseURL,
		buckets:     buckets,
		ttl:         ttl,
		now:         time.Now,
		randomID:    storage.RandomID,
		logger:      logger.With().Str("service", "UploadService").Logger(),
	}
}

func (s *uploadService) CreateSignedUpload(ctx context.Context, clientIP string, req SignedUploadRequest) (*SignedUpload, error) {
	allowed, err := s.limiter.Allow(ctx, clientIP)
	if err != nil {
		// Fail open: throttling is best effort.
		s.logger.Error().Err(err).Str("ip", clientIP).Msg("Rate limiter unavailable")
		allowed = true
	}
	if !allowed {
		metrics.RateLimitedTotal.Inc()
		s.logger.Warn().Str("ip", clientIP).Msg("Signed upload rate limit exceeded")
		return nil, ErrRateLimited
	}

	req.FileExt = strings.TrimPrefix(strings.TrimSpace(req.FileExt), ".")
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: missing required fields: bucket, spaceId, kind, contentType, fileExt", ErrInvalidInput)
	}
	if !slices.Contains(s.buckets, req.Bucket) {
		return nil, fmt.Errorf("%w: bucket %q is not allowed", ErrInvalidInput, req.Bucket)
	}
	if !storage.ValidSegment(req.Kind) || !storage.ValidSegment(req.FileExt) || !storage.ValidSegment(req.SpaceID) {
		return nil, fmt.Errorf("%w: spaceId, kind and fileExt may only contain letters, digits, '-' and '_'", ErrInvalidInput)
	}

	space, err := s.spaces.GetSpaceByID(ctx, req.SpaceID)
	if err != nil {
		s.logger.Error().Err(err).Str("space_id", req.SpaceID).Msg("Failed to look up space")
		return nil, fmt.Errorf("look up space: %w", err)
	}
	if space == nil {
		return nil, ErrSpaceNotFound
	}
	if !space.IsActive {
		return nil, ErrSpaceInactive
	}

	if s.presigner == nil || s.supabaseURL == "" {
		return nil, fmt.Errorf("storage is %w", ErrNotConfigured)
	}

	path := storage.ObjectPath(req.SpaceID, req.Kind, req.FileExt, s.now(), s.randomID())
	signedURL, err := s.presigner.PresignPut(ctx, req.Bucket, path, req.ContentType, s.ttl)
	if err != nil {
		s.logger.Error().Err(err).Str("bucket", req.Bucket).Str("path", path).Msg("Failed to create signed upload URL")
		return nil, fmt.Errorf("create signed upload url: %w", err)
	}

	s.logger.Info().Str("space_id", req.SpaceID).Str("path", path).Msg("Signed upload URL issued")
	return &SignedUpload{
		SignedURL: signedURL,
		Path:      path,
		PublicURL: storage.SupabasePublicURL(s.supabaseURL, req.Bucket, path),
		ExpiresIn: s.ttl,
	}, nil
}
