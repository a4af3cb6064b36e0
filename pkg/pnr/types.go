package pnr

import (
	"time"

	"github.com/shopspring/decimal"
)

// GDS identifies the reservation system a PNR display was captured from.
type GDS string

const (
	GDSAmadeus GDS = "amadeus"
	GDSSabre   GDS = "sabre"
	GDSGalileo GDS = "galileo"
)

// Segment status codes as they appear in GDS displays
const (
	StatusConfirmed  = "HK"
	StatusWaitlisted = "HL"
	StatusSchedule   = "TK"
	StatusUnable     = "UN"
	StatusCancelled  = "XX"
)

// Form of payment values after normalization
const (
	PaymentCash       = "CASH"
	PaymentCreditCard = "CREDIT_CARD"
	PaymentCheck      = "CHECK"
	PaymentInvoice    = "INVOICE"
)

// Remark classification after sub-pattern matching
const (
	RemarkCostCenter    = "COST_CENTER"
	RemarkFrequentFlyer = "FREQUENT_FLYER"
	RemarkFID           = "FID"
	RemarkGeneral       = "GENERAL"
	RemarkOther         = "OTHER"
)

// Header carries the identifying fields of a PNR. Only the record locator
// itself is mandatory; every other field is best effort.
type Header struct {
	PNR          string     `json:"pnr" bson:"pnr"`
	OfficeID     string     `json:"office_id,omitempty" bson:"officeId,omitempty"`
	AgentID      string     `json:"agent_id,omitempty" bson:"agentId,omitempty"`
	TicketNumber string     `json:"ticket_number,omitempty" bson:"ticketNumber,omitempty"`
	CreationDate *time.Time `json:"creation_date,omitempty" bson:"creationDate,omitempty"`
	CreationTime string     `json:"creation_time,omitempty" bson:"creationTime,omitempty"`
}

// FlightSegment is one itinerary leg. Departure dates stay in the canonical
// DDMMM form the display uses; segment lines carry no year, so resolving them
// to calendar dates is left to the caller.
type FlightSegment struct {
	SequenceNumber int    `json:"sequence_number" bson:"sequenceNumber"`
	Airline        string `json:"airline" bson:"airline"`
	FlightNumber   string `json:"flight_number" bson:"flightNumber"`
	Class          string `json:"class" bson:"class"`
	Origin         string `json:"origin" bson:"origin"`
	Destination    string `json:"destination" bson:"destination"`
	DepartureDate  string `json:"departure_date" bson:"departureDate"`
	DepartureTime  string `json:"departure_time,omitempty" bson:"departureTime,omitempty"`
	ArrivalTime    string `json:"arrival_time,omitempty" bson:"arrivalTime,omitempty"`
	Status         string `json:"status,omitempty" bson:"status,omitempty"`
}

// Passenger is one traveller on the record. FullName is always
// LastName + "/" + FirstName.
type Passenger struct {
	LastName  string `json:"last_name" bson:"lastName"`
	FirstName string `json:"first_name" bson:"firstName"`
	FullName  string `json:"full_name" bson:"fullName"`
	Title     string `json:"title,omitempty" bson:"title,omitempty"`
}

// PassengerInfo groups the travellers with the contact data found on the record.
type PassengerInfo struct {
	Passengers []Passenger `json:"passengers" bson:"passengers"`
	Email      string      `json:"email,omitempty" bson:"email,omitempty"`
	Phone      string      `json:"phone,omitempty" bson:"phone,omitempty"`
	AgencyName string      `json:"agency_name,omitempty" bson:"agencyName,omitempty"`
}

// PaymentInfo is the merged view of the form-of-payment and fare elements.
// Currency is only set when an explicit ISO 4217 token was present.
type PaymentInfo struct {
	FormOfPayment    string           `json:"form_of_payment,omitempty" bson:"formOfPayment,omitempty"`
	CardType         string           `json:"card_type,omitempty" bson:"cardType,omitempty"`
	CardNumberMasked string           `json:"card_number_masked,omitempty" bson:"cardNumberMasked,omitempty"`
	TotalFare        *decimal.Decimal `json:"total_fare,omitempty" bson:"totalFare,omitempty"`
	Currency         string           `json:"currency,omitempty" bson:"currency,omitempty"`
}

// Remark is one free-text element, classified against the known sub-patterns.
// Content always holds the verbatim remark text.
type Remark struct {
	Type                string `json:"type" bson:"type"`
	Content             string `json:"content" bson:"content"`
	CostCenter          string `json:"cost_center,omitempty" bson:"costCenter,omitempty"`
	FrequentFlyerNumber string `json:"frequent_flyer_number,omitempty" bson:"frequentFlyerNumber,omitempty"`
}

// TicketingInfo is the merged view of the ticketing elements, including any
// continuation lines carrying issued ticket numbers.
type TicketingInfo struct {
	TicketedDate    string   `json:"ticketed_date,omitempty" bson:"ticketedDate,omitempty"`
	TicketingOffice string   `json:"ticketing_office,omitempty" bson:"ticketingOffice,omitempty"`
	TicketStatus    string   `json:"ticket_status,omitempty" bson:"ticketStatus,omitempty"`
	TicketNumbers   []string `json:"ticket_numbers" bson:"ticketNumbers"`
}

// ParsedPNR is the normalized record produced by one parse invocation.
// It is never mutated after Parse returns.
type ParsedPNR struct {
	Header         Header          `json:"header" bson:"header"`
	FlightSegments []FlightSegment `json:"flight_segments" bson:"flightSegments"`
	PassengerInfo  PassengerInfo   `json:"passenger_info" bson:"passengerInfo"`
	PaymentInfo    PaymentInfo     `json:"payment_info" bson:"paymentInfo"`
	Remarks        []Remark        `json:"remarks" bson:"remarks"`
	TicketingInfo  TicketingInfo   `json:"ticketing_info" bson:"ticketingInfo"`
	SourceGDS      GDS             `json:"source_gds" bson:"sourceGds"`
	RawText        string          `json:"raw_text" bson:"rawText"`
}

// WarningCode identifies a non-fatal extraction problem.
type WarningCode string

const (
	WarnSegmentExtraction      WarningCode = "SEGMENT_EXTRACTION"
	WarnRemarkPatternUnmatched WarningCode = "REMARK_PATTERN_UNMATCHED"
	WarnTicketCountMismatch    WarningCode = "TICKET_COUNT_MISMATCH"
)

// Warning is a non-fatal problem collected during a parse. Warnings never
// abort the pipeline; the caller decides whether to surface them.
type Warning struct {
	Code    WarningCode `json:"code" bson:"code"`
	Message string      `json:"message" bson:"message"`
	Line    int         `json:"line,omitempty" bson:"line,omitempty"`
}
