package usecase

import (
	"context"

	"pnrdesk-service/internal/domain/entity"
)

// TemplateHandler defines the interface for inbox message handlers
type TemplateHandler interface {
	// CanHandle determines if this handler can process the given message subject
	CanHandle(subject string) bool

	// Process processes the message
	Process(ctx context.Context, msg *entity.InboxMessage) error
}

// SubjectRouter routes messages to the appropriate handler based on subject
type SubjectRouter interface {
	// Register registers a handler for specific subject patterns
	Register(handler TemplateHandler)

	// GetHandler returns the appropriate handler for a given subject
	GetHandler(subject string) TemplateHandler
}
