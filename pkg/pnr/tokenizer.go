package pnr

import "strings"

// LineType is the record type a display line was classified as.
type LineType string

const (
	LineHeader       LineType = "HEADER"
	LineName         LineType = "NAME"
	LineSegment      LineType = "SEGMENT"
	LineContact      LineType = "CONTACT"
	LinePayment      LineType = "PAYMENT"
	LineFare         LineType = "FARE"
	LineRemark       LineType = "REMARK"
	LineTicketing    LineType = "TICKETING"
	LineTicketNumber LineType = "TICKET_NUMBER"
	LineUnknown      LineType = "UNKNOWN"
)

// Line is one logical line of the raw display with its classification.
type Line struct {
	Number int
	Raw    string
	Type   LineType
}

// Tokenize splits raw PNR text into logical lines and classifies each one
// with the dialect markers. Blank lines are dropped; line numbers refer to
// the original text. Lines matching no marker come back as LineUnknown so a
// noisy display never fails the whole parse.
func Tokenize(text string, rs *Ruleset) []Line {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var lines []Line
	for i, raw := range strings.Split(normalized, "\n") {
		trimmed := strings.TrimRight(raw, " \t")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		lines = append(lines, Line{
			Number: i + 1,
			Raw:    trimmed,
			Type:   rs.Classify(trimmed),
		})
	}
	return lines
}
