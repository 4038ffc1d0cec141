package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sorties-app/sorties-api/internal/dto"
	"github.com/sorties-app/sorties-api/internal/models"
	"github.com/sorties-app/sorties-api/internal/repository"
)

// Actor is the authenticated administrator performing a privileged action,
// together with the request metadata captured in the audit trail.
type Actor struct {
	ID        uint
	Name      string
	Role      string
	IPAddress string
	UserAgent string
}

// AuditEntry captures the details required to persist one audit record.
type AuditEntry struct {
	AdminID   uint
	AdminName string
	Action    string
	TargetID  uint
	Details   string
	IPAddress string
	UserAgent string
}

// AuditRecorder defines behaviour for appending audit entries. The
// moderation workflow is its only producer.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) (dto.AuditLogResponse, error)
}

// AuditService exposes methods to append to and search the audit trail.
type AuditService interface {
	AuditRecorder
	Search(ctx context.Context, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error)
}

type auditService struct {
	repo   repository.AuditLogRepository
	logger zerolog.Logger
}

// NewAuditService constructs the audit trail service.
func NewAuditService(repo repository.AuditLogRepository, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) (dto.AuditLogResponse, error) {
	if strings.TrimSpace(entry.Action) == "" {
		return dto.AuditLogResponse{}, fmt.Errorf("action is required")
	}
	if entry.AdminID == 0 {
		return dto.AuditLogResponse{}, fmt.Errorf("admin id is required")
	}

	model := models.AuditLog{
		AdminID:   entry.AdminID,
		AdminName: strings.TrimSpace(entry.AdminName),
		Action:    strings.TrimSpace(entry.Action),
		TargetID:  entry.TargetID,
		Details:   strings.TrimSpace(entry.Details),
		IPAddress: strings.TrimSpace(entry.IPAddress),
		UserAgent: strings.TrimSpace(entry.UserAgent),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", model.Action).Msg("failed to persist audit entry")
		return dto.AuditLogResponse{}, err
	}

	return dto.NewAuditLogResponse(model), nil
}

func (s *auditService) Search(ctx context.Context, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error) {
	entries, total, err := s.repo.Search(ctx, repository.AuditLogFilter{
		Query:    strings.TrimSpace(req.Query),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return dto.AuditLogListResponse{}, err
	}

	responses := make([]dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewAuditLogResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.AuditLogListResponse{Items: responses, Pagination: pagination}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
