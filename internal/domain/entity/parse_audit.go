package entity

import (
	"time"
)

// Parse audit outcomes
const (
	AuditOutcomeParsed = "PARSED"
	AuditOutcomeCached = "CACHED"
	AuditOutcomeFailed = "FAILED"
)

// ParseAudit records one parse attempt, successful or not. The raw text is
// kept verbatim so a failed parse can be replayed after a ruleset fix.
type ParseAudit struct {
	ID         string    `bson:"_id,omitempty"`
	PNR        string    `bson:"pnr,omitempty"`
	GDSSource  string    `bson:"gdsSource"`
	Outcome    string    `bson:"outcome"`
	ErrorType  string    `bson:"errorType,omitempty"`
	Warnings   []string  `bson:"warnings,omitempty"`
	RawText    string    `bson:"rawText"`
	DurationMs int64     `bson:"durationMs"`
	RequestID  string    `bson:"requestId,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
}
