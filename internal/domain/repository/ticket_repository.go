package repository

import (
	"context"

	"pnrdesk-service/internal/domain/entity"
)

// TicketRepository defines the interface for ticket record operations
type TicketRepository interface {
	Upsert(ctx context.Context, record *entity.TicketRecord) error
	FindByRecordKey(ctx context.Context, recordKey string) (*entity.TicketRecord, error)
	FindByPNR(ctx context.Context, pnr string) ([]*entity.TicketRecord, error)
}
