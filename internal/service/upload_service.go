package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sorties-app/sorties-api/internal/dto"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the file is not an accepted image.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// FileStorage abstracts the image storage destination.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadService validates and stores activity images and avatars.
type UploadService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (dto.UploadResponse, error)
}

type uploadService struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &uploadService{
		storage: storage,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/sorties-app/sorties-api/internal/service/upload"),
	}
}

func (s *uploadService) Upload(ctx context.Context, file *multipart.FileHeader) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	if file == nil {
		return dto.UploadResponse{}, ErrUploadTypeNotAllowed
	}

	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	source, err := file.Open()
	if err != nil {
		return dto.UploadResponse{}, err
	}
	defer source.Close()

	data, err := io.ReadAll(io.LimitReader(source, s.maxSize+1))
	if err != nil {
		return dto.UploadResponse{}, err
	}
	if int64(len(data)) > s.maxSize {
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(data)
	if _, ok := allowedImageTypes[detected.String()]; !ok {
		span.SetAttributes(attribute.String("upload.rejected_type", detected.String()))
		return dto.UploadResponse{}, ErrUploadTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, file.Filename, bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		return dto.UploadResponse{}, err
	}

	s.logger.Info().Str("url", url).Str("content_type", detected.String()).Msg("image stored")
	return dto.UploadResponse{
		URL:         url,
		ContentType: detected.String(),
		Size:        int64(len(data)),
	}, nil
}
