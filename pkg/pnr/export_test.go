package pnr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnrdesk-service/pkg/logger"
)

func TestExportJSONKeys(t *testing.T) {
	parser := NewParser(logger.NewNopLogger())

	parsed, _, err := parser.Parse(amadeusBooking, GDSAmadeus)
	require.NoError(t, err)

	payload, err := parsed.ExportJSON()
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &doc))

	for _, key := range []string{
		"header",
		"flight_segments",
		"passenger_info",
		"payment_info",
		"remarks",
		"ticketing_info",
		"source_gds",
		"raw_text",
	} {
		assert.Contains(t, doc, key)
	}

	var header map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["header"], &header))
	assert.Contains(t, header, "pnr")
	assert.Contains(t, header, "office_id")
}

func TestSummaryRendersRecord(t *testing.T) {
	parser := NewParser(logger.NewNopLogger())

	parsed, _, err := parser.Parse(amadeusBooking, GDSAmadeus)
	require.NoError(t, err)

	summary := parsed.Summary()

	assert.Contains(t, summary, "PNR: VWXYZ1 (AMADEUS)")
	assert.Contains(t, summary, "OFFICE: LON1A2345")
	assert.Contains(t, summary, "SMITH/JOHN MR")
	assert.Contains(t, summary, "ITINERARY:")
	assert.Contains(t, summary, "LON-ORD")
	assert.Contains(t, summary, "PAYMENT: CASH")
	assert.Contains(t, summary, "[COST_CENTER] COST CENTER 12345")
	assert.Contains(t, summary, "TICKETING: OK 15NOV LON1A2345")
}
