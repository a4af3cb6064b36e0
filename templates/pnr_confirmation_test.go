package templates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnrdesk-service/internal/domain/entity"
	"pnrdesk-service/internal/usecase"
	"pnrdesk-service/pkg/logger"
	"pnrdesk-service/pkg/pnr"
)

const amadeusBody = `Your AMADEUS booking is confirmed.

RP/LON1A2345/LON1A2345            WS/SU   1NOV24/1426Z   VWXYZ1
1.SMITH/JOHN MR
2  EK 234 Y 15NOV 3 LONORD HK1   0800 1445+1
5 FP CASH
8 TKOK15NOV/LON1A2345
`

func newTestHandler() *PNRConfirmationHandler {
	log := logger.NewNopLogger()
	service := usecase.NewParseService(pnr.NewParser(log), nil, nil, nil, nil, log)
	return NewPNRConfirmationHandler(service, log)
}

func TestPNRConfirmationCanHandle(t *testing.T) {
	handler := newTestHandler()

	assert.True(t, handler.CanHandle("PNR confirmation VWXYZ1"))
	assert.True(t, handler.CanHandle("Your booking confirmation"))
	assert.False(t, handler.CanHandle("Weekly newsletter"))
}

func TestPNRConfirmationProcess(t *testing.T) {
	handler := newTestHandler()

	msg := &entity.InboxMessage{
		MessageID: "msg-1",
		Subject:   "PNR confirmation",
		Body:      amadeusBody,
	}

	// The ticket store is not wired here, so the save is reported as failed
	// but the message itself still processes cleanly.
	err := handler.Process(context.Background(), msg)
	require.NoError(t, err)
}

func TestPNRConfirmationProcessWithoutSourceHint(t *testing.T) {
	handler := newTestHandler()

	msg := &entity.InboxMessage{
		MessageID: "msg-2",
		Subject:   "PNR confirmation",
		Body:      "nothing useful here",
	}

	err := handler.Process(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no reservation system hint")
}

func TestDetectSource(t *testing.T) {
	handler := newTestHandler()

	assert.Equal(t, "amadeus", handler.detectSource("AMADEUS PNR", ""))
	assert.Equal(t, "sabre", handler.detectSource("PNR update", "issued via Sabre today"))
	assert.Equal(t, "galileo", handler.detectSource("", "GALILEO display attached"))
	assert.Equal(t, "", handler.detectSource("PNR update", "no hint"))
}
