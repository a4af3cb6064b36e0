package repository

import (
	"context"

	"pnrdesk-service/internal/domain/entity"
)

// ParseAuditRepository defines the interface for parse audit operations
type ParseAuditRepository interface {
	Save(ctx context.Context, audit *entity.ParseAudit) error
	FindRecent(ctx context.Context, limit int) ([]*entity.ParseAudit, error)
}
