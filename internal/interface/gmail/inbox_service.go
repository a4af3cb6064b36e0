package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"pnrdesk-service/internal/domain/entity"
	"pnrdesk-service/internal/domain/repository"
	"pnrdesk-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// InboxService pulls booking emails from the PNR inbox and stores them for
// the processor to pick up.
type InboxService struct {
	gmailService *gmail.Service
	inboxRepo    repository.InboxRepository
	logger       logger.Logger
	pollInterval time.Duration
}

// NewInboxService creates a new Gmail inbox service
func NewInboxService(ctx context.Context, tokenSource oauth2.TokenSource, inboxRepo repository.InboxRepository, logger logger.Logger, pollInterval time.Duration) (*InboxService, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &InboxService{
		gmailService: service,
		inboxRepo:    inboxRepo,
		logger:       logger,
		pollInterval: pollInterval,
	}, nil
}

// FetchMessages fetches new messages from Gmail
func (s *InboxService) FetchMessages(ctx context.Context) error {
	lastMsg, _ := s.inboxRepo.GetLastMessage(ctx)
	var fetchFrom time.Time
	var hasLastMessage bool

	if lastMsg != nil && !lastMsg.ReceivedAt.IsZero() {
		fetchFrom = lastMsg.ReceivedAt
		hasLastMessage = true
		s.logger.Info("Using last received message time",
			"lastReceivedTime", fetchFrom.Format("2006-01-02 15:04:05 UTC"))
	} else {
		// Default starting point
		fetchFrom = time.Now().AddDate(0, 0, -7)
		hasLastMessage = false
		s.logger.Info("No previous messages, using default start date",
			"startDate", fetchFrom.Format("2006-01-02 15:04:05 UTC"))
	}

	queryDate := fetchFrom
	if hasLastMessage {
		// Go back 3 days to catch any messages we might have missed
		queryDate = fetchFrom.AddDate(0, 0, -3)
	}

	query := fmt.Sprintf("after:%s", queryDate.Format("2006/01/02"))
	s.logger.Info("Querying Gmail",
		"query", query,
		"actualCutoffTime", fetchFrom.Format("2006-01-02 15:04:05 UTC"))

	req := s.gmailService.Users.Messages.List("me").Q(query)
	resp, err := req.Do()
	if err != nil {
		s.logger.Error("Failed to list messages", "error", err)
		return err
	}

	if len(resp.Messages) == 0 {
		s.logger.Info("No new messages found")
		return nil
	}

	newCount := 0
	skippedOldCount := 0
	skippedExistingCount := 0

	for _, msg := range resp.Messages {
		// Skip if already in database
		existing, err := s.inboxRepo.FindByMessageID(ctx, msg.Id)
		if err == nil && existing != nil {
			s.logger.Debug("Message already exists in database", "messageID", msg.Id)
			skippedExistingCount++
			continue
		}

		fullMsg, err := s.gmailService.Users.Messages.Get("me", msg.Id).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "messageID", msg.Id, "error", err)
			continue
		}

		messageTime := time.Unix(0, fullMsg.InternalDate*int64(time.Millisecond))

		if hasLastMessage && !messageTime.After(fetchFrom) {
			skippedOldCount++
			continue
		}

		// Convert to domain entity
		inboxMsg, err := s.convertToInboxMessage(fullMsg)
		if err != nil {
			s.logger.Error("Failed to convert message", "messageID", msg.Id, "error", err)
			continue
		}

		// Apply subject filter
		if !s.FilterPattern(inboxMsg.Subject) {
			s.logger.Debug("Message doesn't match subject filter", "subject", inboxMsg.Subject)
			continue
		}

		s.logger.Info("Storing new message",
			"subject", inboxMsg.Subject,
			"messageID", inboxMsg.MessageID,
			"receivedAt", inboxMsg.ReceivedAt.Format("2006-01-02 15:04:05 UTC"))

		// Save to repository
		err = s.inboxRepo.Save(ctx, inboxMsg)
		if err != nil {
			s.logger.Error("Failed to save message", "messageID", msg.Id, "error", err)
			continue
		}

		newCount++
	}

	s.logger.Info("Message fetch completed",
		"totalFromGmail", len(resp.Messages),
		"alreadyInDB", skippedExistingCount,
		"skippedOld", skippedOldCount,
		"newMessages", newCount)

	return nil
}

// StartPolling starts polling Gmail for new messages
func (s *InboxService) StartPolling(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Gmail polling stopped")
			return
		case <-ticker.C:
			s.logger.Info("Polling Gmail for new messages")
			if err := s.FetchMessages(ctx); err != nil {
				s.logger.Error("Error polling Gmail", "error", err)
			}
		}
	}
}

// FilterPattern keeps only booking emails
func (s *InboxService) FilterPattern(subject string) bool {
	upper := strings.ToUpper(subject)
	return strings.Contains(upper, "PNR") || strings.Contains(upper, "BOOKING")
}

// convertToInboxMessage converts a Gmail message to our domain entity
func (s *InboxService) convertToInboxMessage(msg *gmail.Message) (*entity.InboxMessage, error) {
	inboxMsg := &entity.InboxMessage{
		MessageID: msg.Id,
		Labels:    msg.LabelIds,
	}

	// Extract header information
	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			inboxMsg.From = header.Value
		case "To":
			inboxMsg.To = header.Value
		case "Subject":
			inboxMsg.Subject = header.Value
		}
	}

	// Extract message body
	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(msg.Payload.Body.Data)
		if err != nil {
			return nil, err
		}
		inboxMsg.Body = string(data)
	}

	// Handle multipart messages, the PNR display is always the plain part
	if len(msg.Payload.Parts) > 0 {
		for _, part := range msg.Payload.Parts {
			if part.MimeType == "text/plain" && part.Body != nil {
				data, err := base64.URLEncoding.DecodeString(part.Body.Data)
				if err != nil {
					continue
				}
				inboxMsg.Body = string(data)
			}
		}
	}

	inboxMsg.ReceivedAt = time.Unix(0, msg.InternalDate*int64(time.Millisecond))

	return inboxMsg, nil
}
