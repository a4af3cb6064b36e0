package pnr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExportJSON renders the record as an indented UTF-8 JSON document using the
// field names the back-office consumers expect.
func (p *ParsedPNR) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Summary renders the record as a plain-text document for the download-as-
// text consumer.
func (p *ParsedPNR) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "PNR: %s (%s)\n", p.Header.PNR, strings.ToUpper(string(p.SourceGDS)))
	if p.Header.OfficeID != "" {
		fmt.Fprintf(&b, "OFFICE: %s\n", p.Header.OfficeID)
	}
	if p.Header.CreationDate != nil {
		fmt.Fprintf(&b, "CREATED: %s %s\n",
			strings.ToUpper(p.Header.CreationDate.Format("02Jan06")), p.Header.CreationTime)
	}

	if len(p.PassengerInfo.Passengers) > 0 {
		b.WriteString("\nPASSENGERS:\n")
		for _, pax := range p.PassengerInfo.Passengers {
			line := fmt.Sprintf("  %s", pax.FullName)
			if pax.Title != "" {
				line += " " + pax.Title
			}
			b.WriteString(line + "\n")
		}
	}

	if len(p.FlightSegments) > 0 {
		b.WriteString("\nITINERARY:\n")
		for _, seg := range p.FlightSegments {
			fmt.Fprintf(&b, "  %d  %s %-5s %s  %s-%s  %s  %s %s  %s\n",
				seg.SequenceNumber, seg.Airline, seg.FlightNumber, seg.Class,
				seg.Origin, seg.Destination, seg.DepartureDate,
				seg.DepartureTime, seg.ArrivalTime, seg.Status)
		}
	}

	if p.PaymentInfo.FormOfPayment != "" {
		fmt.Fprintf(&b, "\nPAYMENT: %s", p.PaymentInfo.FormOfPayment)
		if p.PaymentInfo.CardNumberMasked != "" {
			fmt.Fprintf(&b, " %s %s", p.PaymentInfo.CardType, p.PaymentInfo.CardNumberMasked)
		}
		if p.PaymentInfo.TotalFare != nil {
			fmt.Fprintf(&b, "  %s %s", p.PaymentInfo.Currency, p.PaymentInfo.TotalFare.StringFixed(2))
		}
		b.WriteString("\n")
	}

	if len(p.Remarks) > 0 {
		b.WriteString("\nREMARKS:\n")
		for _, rm := range p.Remarks {
			fmt.Fprintf(&b, "  [%s] %s\n", rm.Type, rm.Content)
		}
	}

	if p.TicketingInfo.TicketedDate != "" || len(p.TicketingInfo.TicketNumbers) > 0 {
		b.WriteString("\nTICKETING:")
		if p.TicketingInfo.TicketStatus != "" {
			b.WriteString(" " + p.TicketingInfo.TicketStatus)
		}
		if p.TicketingInfo.TicketedDate != "" {
			b.WriteString(" " + p.TicketingInfo.TicketedDate)
		}
		if p.TicketingInfo.TicketingOffice != "" {
			b.WriteString(" " + p.TicketingInfo.TicketingOffice)
		}
		b.WriteString("\n")
		for _, num := range p.TicketingInfo.TicketNumbers {
			fmt.Fprintf(&b, "  %s\n", num)
		}
	}

	return b.String()
}
