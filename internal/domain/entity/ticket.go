package entity

import (
	"time"
)

// TicketRecord is the relational projection of a parsed booking. One row per
// record locator per reservation system.
type TicketRecord struct {
	ID             uint
	RecordKey      string // {pnr}:{gds} - unique index
	PNR            string
	GDSSource      string
	OfficeID       string
	PassengerCount int
	SegmentCount   int
	FirstDeparture string
	LastArrival    string
	TotalFare      string
	Currency       string
	TicketStatus   string
	ParsedJSON     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
