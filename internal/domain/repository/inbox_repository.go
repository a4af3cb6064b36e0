package repository

import (
	"context"
	"time"

	"pnrdesk-service/internal/domain/entity"
)

// InboxRepository defines the interface for inbox message storage operations
type InboxRepository interface {
	Save(ctx context.Context, msg *entity.InboxMessage) error
	FindByMessageID(ctx context.Context, messageID string) (*entity.InboxMessage, error)
	FindByStatus(ctx context.Context, status string, limit int) ([]*entity.InboxMessage, error)
	UpdateStatus(ctx context.Context, messageID string, status string, startedAt time.Time) error
	MarkAsProcessed(ctx context.Context, messageID, status, handlerType, errorDetail string, extractedData map[string]interface{}) error
	GetLastMessage(ctx context.Context) (*entity.InboxMessage, error)
	ResetProcessingMessages(ctx context.Context) error
}
