package pnr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeClassifiesAmadeusLines(t *testing.T) {
	rs, err := RulesetFor(GDSAmadeus)
	require.NoError(t, err)

	lines := Tokenize(amadeusBooking, rs)
	require.Len(t, lines, 9)

	expected := []LineType{
		LineHeader,
		LineName,
		LineSegment,
		LineSegment,
		LineFare,
		LinePayment,
		LineRemark,
		LineRemark,
		LineTicketing,
	}
	for i, lt := range expected {
		assert.Equal(t, lt, lines[i].Type, "line %d: %q", lines[i].Number, lines[i].Raw)
	}
}

func TestTokenizeKeepsOriginalLineNumbers(t *testing.T) {
	rs, err := RulesetFor(GDSAmadeus)
	require.NoError(t, err)

	text := "RP/LON1A2345/LON1A2345            WS/SU   1NOV24/1426Z   VWXYZ1\n\n\n1.SMITH/JOHN MR\n"
	lines := Tokenize(text, rs)

	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].Number)
	assert.Equal(t, 4, lines[1].Number)
}

func TestTokenizeNormalizesLineEndings(t *testing.T) {
	rs, err := RulesetFor(GDSAmadeus)
	require.NoError(t, err)

	text := "RP/LON1A2345/LON1A2345            WS/SU   1NOV24/1426Z   VWXYZ1\r\n1.SMITH/JOHN MR\r\n"
	lines := Tokenize(text, rs)

	require.Len(t, lines, 2)
	assert.Equal(t, LineHeader, lines[0].Type)
	assert.Equal(t, LineName, lines[1].Type)
	assert.NotContains(t, lines[0].Raw, "\r")
}

func TestTokenizeUnknownLinesPassThrough(t *testing.T) {
	rs, err := RulesetFor(GDSSabre)
	require.NoError(t, err)

	lines := Tokenize("GENERAL REMARKS\n", rs)
	require.Len(t, lines, 1)
	assert.Equal(t, LineUnknown, lines[0].Type)
}

func TestClassifyDoesNotMistakeAirlineCodesForMarkers(t *testing.T) {
	rs, err := RulesetFor(GDSAmadeus)
	require.NoError(t, err)

	// TK and FM are also airline designators
	assert.Equal(t, LineSegment, rs.Classify("2  TK 1979 Y 15NOV 3 ISTLHR HK1   0800 1045"))
	assert.Equal(t, LineSegment, rs.Classify("3  FM 832 Y 15NOV 3 PVGLHR HK1   0900 1400"))

	assert.Equal(t, LineTicketing, rs.Classify("8 TKOK15NOV/LON1A2345"))
	assert.Equal(t, LineFare, rs.Classify("4 FM*M*1A"))
	assert.Equal(t, LineFare, rs.Classify("4 FM GBP 842.50"))
}
