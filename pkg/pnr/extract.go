package pnr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// matchGroups runs re against s and returns the named captures, or nil when
// the expression does not match. Empty captures are omitted.
func matchGroups(re *regexp.Regexp, s string) map[string]string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return namedCaptures(re, m)
}

func namedCaptures(re *regexp.Regexp, m []string) map[string]string {
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(m) && m[i] != "" {
			groups[name] = m[i]
		}
	}
	return groups
}

// extractHeader resolves the record locator plus whatever identifying fields
// the header line carries. Missing optional fields are not an error; a
// missing locator is, and the caller treats it as fatal.
func extractHeader(lines []Line, rs *Ruleset) (Header, bool) {
	for _, line := range lines {
		g := matchGroups(rs.header, line.Raw)
		if g == nil {
			g = matchGroups(rs.headerFallback, line.Raw)
		}
		if g == nil || g["pnr"] == "" {
			continue
		}
		h := Header{
			PNR:          g["pnr"],
			OfficeID:     g["office"],
			AgentID:      g["agent"],
			CreationTime: g["time"],
		}
		if d := g["date"]; d != "" {
			if t, ok := rs.parseDate(d); ok {
				h.CreationDate = &t
			}
		}
		return h, true
	}
	return Header{}, false
}

// extractPassengers parses the name elements. A single line may carry
// several names (group bookings), so every occurrence on the line counts.
func extractPassengers(lines []Line, rs *Ruleset) []Passenger {
	var out []Passenger
	for _, line := range lines {
		for _, m := range rs.name.FindAllStringSubmatch(line.Raw, -1) {
			g := namedCaptures(rs.name, m)
			last := strings.TrimSpace(g["last"])
			first := strings.TrimSpace(g["first"])
			if last == "" || first == "" {
				continue
			}
			out = append(out, Passenger{
				LastName:  last,
				FirstName: first,
				FullName:  last + "/" + first,
				Title:     g["title"],
			})
		}
	}
	return out
}

// extractSegments parses the itinerary lines. A line that looked like a
// segment but does not fit the dialect grammar is skipped with a warning;
// the parse never aborts on a single bad segment. Sequence numbers must
// strictly increase in text order and a segment can never depart from its
// own destination, so violations are skipped the same way.
func extractSegments(lines []Line, rs *Ruleset) ([]FlightSegment, []Warning) {
	segments := []FlightSegment{}
	var warnings []Warning
	lastSeq := 0

	for _, line := range lines {
		g := matchGroups(rs.segment, line.Raw)
		if g == nil {
			warnings = append(warnings, Warning{
				Code:    WarnSegmentExtraction,
				Message: fmt.Sprintf("line %d does not match the %s segment format", line.Number, rs.Source),
				Line:    line.Number,
			})
			continue
		}

		seq, err := strconv.Atoi(g["seq"])
		if err != nil {
			warnings = append(warnings, Warning{
				Code:    WarnSegmentExtraction,
				Message: fmt.Sprintf("line %d carries an unreadable segment number", line.Number),
				Line:    line.Number,
			})
			continue
		}

		seg := FlightSegment{
			SequenceNumber: seq,
			Airline:        g["airline"],
			FlightNumber:   g["flight"] + g["suffix"],
			Class:          rs.normalizeClass(g["class"]),
			Origin:         g["origin"],
			Destination:    g["dest"],
			DepartureDate:  g["date"],
			DepartureTime:  rs.normalizeTime(g["dep"]),
			ArrivalTime:    rs.normalizeTime(g["arr"]),
			Status:         rs.normalizeStatus(g["status"]),
		}
		if off := g["offset"]; off != "" {
			seg.ArrivalTime += "+" + off
		}

		if seg.Origin == seg.Destination {
			warnings = append(warnings, Warning{
				Code:    WarnSegmentExtraction,
				Message: fmt.Sprintf("segment %d departs and arrives at %s", seq, seg.Origin),
				Line:    line.Number,
			})
			continue
		}
		if seq <= lastSeq {
			warnings = append(warnings, Warning{
				Code:    WarnSegmentExtraction,
				Message: fmt.Sprintf("segment number %d on line %d is out of order", seq, line.Number),
				Line:    line.Number,
			})
			continue
		}
		lastSeq = seq
		segments = append(segments, seg)
	}
	return segments, warnings
}

// extractPayment merges the form-of-payment element with the fare element.
// The currency is only ever taken from an explicit token; a bare amount is
// accepted but never assigned a guessed currency.
func extractPayment(fopLines, fareLines []Line, rs *Ruleset) PaymentInfo {
	var info PaymentInfo

	for _, line := range fopLines {
		g := matchGroups(rs.payment, line.Raw)
		if g == nil {
			continue
		}
		body := strings.ToUpper(strings.TrimSpace(g["fop"]))
		switch {
		case strings.HasPrefix(body, "CASH"):
			info.FormOfPayment = PaymentCash
		case strings.HasPrefix(body, "CHEQUE"), strings.HasPrefix(body, "CHECK"),
			strings.HasPrefix(body, "CHQ"), body == "CK", strings.HasPrefix(body, "CK "):
			info.FormOfPayment = PaymentCheck
		case strings.HasPrefix(body, "INV"):
			info.FormOfPayment = PaymentInvoice
		default:
			if cg := matchGroups(rs.card, body); cg != nil {
				info.FormOfPayment = PaymentCreditCard
				info.CardType = cg["cardtype"]
				info.CardNumberMasked = maskCardNumber(cg["cardnum"])
			} else {
				if i := strings.IndexAny(body, " /"); i > 0 {
					body = body[:i]
				}
				info.FormOfPayment = body
			}
		}
		if info.FormOfPayment != "" {
			break
		}
	}

	for _, line := range fareLines {
		if g := matchGroups(rs.fare, line.Raw); g != nil {
			if amt, err := decimal.NewFromString(g["amt"]); err == nil {
				info.Currency = g["cur"]
				info.TotalFare = &amt
				break
			}
		}
		if g := matchGroups(rs.fareAmount, line.Raw); g != nil {
			if amt, err := decimal.NewFromString(g["amt"]); err == nil {
				info.TotalFare = &amt
				break
			}
		}
	}
	return info
}

// maskCardNumber hides everything except the last four digits.
func maskCardNumber(num string) string {
	if len(num) <= 4 {
		return num
	}
	return strings.Repeat("X", len(num)-4) + num[len(num)-4:]
}

// extractRemarks classifies every remark line against the known sub-patterns
// in order; the first match wins and anything unrecognized stays a GENERAL
// remark with the verbatim content.
func extractRemarks(lines []Line, rs *Ruleset) ([]Remark, []Warning) {
	remarks := []Remark{}
	var warnings []Warning

	for _, line := range lines {
		g := matchGroups(rs.remark, line.Raw)
		if g == nil {
			warnings = append(warnings, Warning{
				Code:    WarnRemarkPatternUnmatched,
				Message: fmt.Sprintf("line %d looked like a remark but could not be read", line.Number),
				Line:    line.Number,
			})
			remarks = append(remarks, Remark{Type: RemarkOther, Content: strings.TrimSpace(line.Raw)})
			continue
		}
		content := strings.TrimSpace(g["content"])
		if content == "" {
			warnings = append(warnings, Warning{
				Code:    WarnRemarkPatternUnmatched,
				Message: fmt.Sprintf("empty remark on line %d", line.Number),
				Line:    line.Number,
			})
			continue
		}

		remark := Remark{Type: RemarkGeneral, Content: content}
		for _, rule := range rs.remarkRules {
			m := rule.re.FindStringSubmatch(content)
			if m == nil {
				continue
			}
			remark.Type = rule.kind
			switch rule.kind {
			case RemarkCostCenter:
				remark.CostCenter = m[1]
			case RemarkFID, RemarkFrequentFlyer:
				remark.FrequentFlyerNumber = m[1]
			}
			break
		}
		remarks = append(remarks, remark)
	}
	return remarks, warnings
}

// extractTicketing merges the ticketing arrangement line with any
// continuation lines carrying issued ticket numbers.
func extractTicketing(tkLines, numberLines []Line, rs *Ruleset) TicketingInfo {
	info := TicketingInfo{TicketNumbers: []string{}}

	for _, line := range tkLines {
		g := matchGroups(rs.ticketing, line.Raw)
		if g == nil {
			continue
		}
		if info.TicketStatus == "" {
			info.TicketStatus = g["status"]
		}
		if info.TicketedDate == "" {
			info.TicketedDate = g["date"]
		}
		if info.TicketingOffice == "" {
			info.TicketingOffice = g["office"]
		}
	}

	scan := make([]Line, 0, len(tkLines)+len(numberLines))
	scan = append(scan, tkLines...)
	scan = append(scan, numberLines...)
	for _, line := range scan {
		for _, m := range rs.ticketNumber.FindAllString(line.Raw, -1) {
			info.TicketNumbers = append(info.TicketNumbers, strings.ReplaceAll(m, " ", "-"))
		}
	}
	return info
}

// extractContacts pulls the first email, phone number and agency name found
// on the contact elements.
func extractContacts(lines []Line, rs *Ruleset) (email, phone, agency string) {
	for _, line := range lines {
		if email == "" {
			email = rs.email.FindString(line.Raw)
		}
		if phone == "" && !strings.Contains(line.Raw, "@") {
			phone = strings.TrimSpace(rs.phone.FindString(line.Raw))
		}
		if agency == "" && rs.agency != nil {
			if g := matchGroups(rs.agency, line.Raw); g != nil {
				agency = strings.TrimSpace(g["agency"])
			}
		}
	}
	return email, phone, agency
}
