package pnr

import (
	"fmt"
	"strings"

	"pnrdesk-service/pkg/logger"
)

// Parser converts raw GDS display text into a ParsedPNR. It holds no state
// between invocations: the same text and source always produce the same
// record, so a single Parser is safe for concurrent use.
type Parser struct {
	logger logger.Logger
}

// NewParser creates a parser with the given logger.
func NewParser(log logger.Logger) *Parser {
	return &Parser{logger: log}
}

// Parse runs the full pipeline: tokenize, classify, extract per record type,
// aggregate and validate. Fatal conditions (empty input, unsupported source,
// no record locator) return an error and no partial record; everything else
// is best effort and comes back as warnings next to a valid record.
func (p *Parser) Parse(text string, source GDS) (*ParsedPNR, []Warning, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, &EmptyInputError{}
	}

	rs, err := RulesetFor(source)
	if err != nil {
		return nil, nil, err
	}

	lines := Tokenize(text, rs)
	groups := groupByType(lines)

	header, ok := extractHeader(groups[LineHeader], rs)
	if !ok {
		return nil, nil, &HeaderNotFoundError{Source: source}
	}

	warnings := []Warning{}

	segments, segWarnings := extractSegments(groups[LineSegment], rs)
	warnings = append(warnings, segWarnings...)

	passengers := extractPassengers(groups[LineName], rs)
	email, phone, agency := extractContacts(groups[LineContact], rs)

	payment := extractPayment(groups[LinePayment], groups[LineFare], rs)

	remarks, remarkWarnings := extractRemarks(groups[LineRemark], rs)
	warnings = append(warnings, remarkWarnings...)

	ticketing := extractTicketing(groups[LineTicketing], groups[LineTicketNumber], rs)
	if header.TicketNumber == "" && len(ticketing.TicketNumbers) > 0 {
		header.TicketNumber = ticketing.TicketNumbers[0]
	}

	// Airlines issue partial tickets, so a count mismatch is reported but
	// never fails the parse.
	if n := len(ticketing.TicketNumbers); n > 0 && len(passengers) > 0 && n != len(passengers) {
		warnings = append(warnings, Warning{
			Code:    WarnTicketCountMismatch,
			Message: fmt.Sprintf("%d ticket numbers for %d passengers", n, len(passengers)),
		})
	}

	if passengers == nil {
		passengers = []Passenger{}
	}

	parsed := &ParsedPNR{
		Header:         header,
		FlightSegments: segments,
		PassengerInfo: PassengerInfo{
			Passengers: passengers,
			Email:      email,
			Phone:      phone,
			AgencyName: agency,
		},
		PaymentInfo:   payment,
		Remarks:       remarks,
		TicketingInfo: ticketing,
		SourceGDS:     source,
		RawText:       text,
	}

	p.logger.Info("Parsed PNR",
		"pnr", header.PNR,
		"source", source,
		"segments", len(segments),
		"passengers", len(passengers),
		"remarks", len(remarks),
		"warnings", len(warnings))

	return parsed, warnings, nil
}

func groupByType(lines []Line) map[LineType][]Line {
	groups := make(map[LineType][]Line)
	for _, line := range lines {
		groups[line.Type] = append(groups[line.Type], line)
	}
	return groups
}
