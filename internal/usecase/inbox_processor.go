package usecase

import (
	"context"
	"fmt"
	"time"

	"pnrdesk-service/internal/domain/entity"
	"pnrdesk-service/internal/domain/repository"
	"pnrdesk-service/pkg/logger"
	"pnrdesk-service/pkg/metrics"
)

// InboxProcessor manages inbox message processing with multiple handlers
type InboxProcessor struct {
	inboxRepo repository.InboxRepository
	router    SubjectRouter
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewInboxProcessor creates a new inbox processor
func NewInboxProcessor(
	inboxRepo repository.InboxRepository,
	router SubjectRouter,
	m *metrics.Metrics,
	logger logger.Logger,
) *InboxProcessor {
	return &InboxProcessor{
		inboxRepo: inboxRepo,
		router:    router,
		metrics:   m,
		logger:    logger,
	}
}

// ProcessMessage processes a single inbox message
func (p *InboxProcessor) ProcessMessage(ctx context.Context, msg *entity.InboxMessage) error {
	// Find appropriate handler based on subject
	handler := p.router.GetHandler(msg.Subject)
	if handler == nil {
		p.logger.Debug("No handler found for message",
			"subject", msg.Subject,
			"messageID", msg.MessageID)

		// Mark as skipped, this is not an error, just no matching handler
		return p.inboxRepo.MarkAsProcessed(
			ctx,
			msg.MessageID,
			entity.StatusSkipped,
			"none",
			"No matching handler found",
			map[string]interface{}{
				"subject": msg.Subject,
				"reason":  "no_matching_handler",
			},
		)
	}

	// Get handler type name for tracking
	handlerType := fmt.Sprintf("%T", handler)
	p.logger.Info("Processing message with handler",
		"messageID", msg.MessageID,
		"handler", handlerType,
		"subject", msg.Subject)

	// Mark as processing
	if err := p.inboxRepo.UpdateStatus(ctx, msg.MessageID, entity.StatusProcessing, time.Now()); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	// Process with the handler
	if err := handler.Process(ctx, msg); err != nil {
		p.logger.Error("Handler failed to process message",
			"messageID", msg.MessageID,
			"handler", handlerType,
			"error", err)

		// Mark as failed but don't return error - let other messages continue
		p.inboxRepo.MarkAsProcessed(
			ctx,
			msg.MessageID,
			entity.StatusFailed,
			handlerType,
			err.Error(),
			nil,
		)
		return nil
	}

	// Close the lifecycle so the pending sweep never picks this message up again
	if err := p.inboxRepo.MarkAsProcessed(
		ctx,
		msg.MessageID,
		entity.StatusCompleted,
		handlerType,
		"",
		map[string]interface{}{
			"subject": msg.Subject,
		},
	); err != nil {
		p.logger.Error("Failed to mark message as completed",
			"messageID", msg.MessageID,
			"error", err)
		return err
	}

	if p.metrics != nil {
		p.metrics.InboxProcessed.Inc()
	}

	p.logger.Info("Message processed successfully",
		"messageID", msg.MessageID,
		"handler", handlerType)

	return nil
}

// ProcessPendingMessages processes any messages that were missed or failed
func (p *InboxProcessor) ProcessPendingMessages(ctx context.Context) error {
	// Reset stale processing messages
	if err := p.inboxRepo.ResetProcessingMessages(ctx); err != nil {
		p.logger.Error("Failed to reset stale messages", "error", err)
	}

	// Get pending messages
	messages, err := p.inboxRepo.FindByStatus(ctx, entity.StatusPending, 100)
	if err != nil {
		return fmt.Errorf("failed to find pending messages: %w", err)
	}

	if len(messages) == 0 {
		return nil
	}

	p.logger.Info("Processing pending messages", "count", len(messages))

	for _, msg := range messages {
		if err := p.ProcessMessage(ctx, msg); err != nil {
			p.logger.Error("Failed to process pending message",
				"messageID", msg.MessageID,
				"error", err)
		}
	}

	return nil
}
