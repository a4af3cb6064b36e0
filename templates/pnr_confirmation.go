package templates

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"pnrdesk-service/internal/domain/entity"
	"pnrdesk-service/internal/usecase"
	"pnrdesk-service/pkg/logger"
)

var gdsHintRe = regexp.MustCompile(`(?i)\b(AMADEUS|SABRE|GALILEO)\b`)

// PNRConfirmationHandler handles booking confirmation emails carrying a raw
// PNR display in the body.
type PNRConfirmationHandler struct {
	parseService *usecase.ParseService
	logger       logger.Logger
}

// NewPNRConfirmationHandler creates a new PNR confirmation handler
func NewPNRConfirmationHandler(parseService *usecase.ParseService, logger logger.Logger) *PNRConfirmationHandler {
	return &PNRConfirmationHandler{
		parseService: parseService,
		logger:       logger,
	}
}

// CanHandle determines if this handler can process the given message subject
func (h *PNRConfirmationHandler) CanHandle(subject string) bool {
	upper := strings.ToUpper(subject)
	return strings.Contains(upper, "PNR") || strings.Contains(upper, "BOOKING CONFIRMATION")
}

// Process parses the PNR display out of the message body and stores the record
func (h *PNRConfirmationHandler) Process(ctx context.Context, msg *entity.InboxMessage) error {
	source := h.detectSource(msg.Subject, msg.Body)
	if source == "" {
		return fmt.Errorf("no reservation system hint in message %s", msg.MessageID)
	}

	h.logger.Info("Processing PNR confirmation",
		"messageID", msg.MessageID,
		"source", source)

	outcome, err := h.parseService.Parse(ctx, usecase.ParseRequest{
		PNRText:        msg.Body,
		GDSSource:      source,
		SaveToDatabase: true,
		RequestID:      msg.MessageID,
	})
	if err != nil {
		return fmt.Errorf("failed to parse PNR from message %s: %w", msg.MessageID, err)
	}

	if outcome.SaveError != "" {
		h.logger.Warn("Parsed but could not save",
			"messageID", msg.MessageID,
			"pnr", outcome.Parsed.Header.PNR,
			"saveError", outcome.SaveError)
	}

	return nil
}

// detectSource resolves the reservation system from the subject or, failing
// that, from a hint line inside the body.
func (h *PNRConfirmationHandler) detectSource(subject, body string) string {
	if m := gdsHintRe.FindString(subject); m != "" {
		return strings.ToLower(m)
	}
	if m := gdsHintRe.FindString(body); m != "" {
		return strings.ToLower(m)
	}
	return ""
}
