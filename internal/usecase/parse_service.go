package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"pnrdesk-service/internal/domain/entity"
	"pnrdesk-service/internal/domain/repository"
	"pnrdesk-service/internal/infrastructure/cache"
	"pnrdesk-service/pkg/logger"
	"pnrdesk-service/pkg/metrics"
	"pnrdesk-service/pkg/pnr"
)

// ParseCache abstracts the parse-result cache
type ParseCache interface {
	GetParseResult(ctx context.Context, text string, source pnr.GDS) (*cache.ParseResult, error)
	SetParseResult(ctx context.Context, text string, source pnr.GDS, result *cache.ParseResult) error
}

// ParseRequest is one parse invocation
type ParseRequest struct {
	PNRText        string `json:"pnr_text"`
	GDSSource      string `json:"gds_source"`
	SaveToDatabase bool   `json:"save_to_database"`
	RequestID      string `json:"-"`
}

// ParseOutcome is the result of a successful parse. Saved and SaveError
// describe the persistence side only; a failed save never invalidates the
// parsed record.
type ParseOutcome struct {
	Parsed    *pnr.ParsedPNR
	Warnings  []pnr.Warning
	Saved     bool
	SaveError string
	CacheHit  bool
}

// ParseService orchestrates parsing, caching, auditing and persistence
type ParseService struct {
	parser  *pnr.Parser
	cache   ParseCache
	tickets repository.TicketRepository
	audits  repository.ParseAuditRepository
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewParseService creates a new parse service. The cache, ticket and audit
// repositories may be nil; the service degrades to parse-only.
func NewParseService(
	parser *pnr.Parser,
	parseCache ParseCache,
	tickets repository.TicketRepository,
	audits repository.ParseAuditRepository,
	m *metrics.Metrics,
	logger logger.Logger,
) *ParseService {
	return &ParseService{
		parser:  parser,
		cache:   parseCache,
		tickets: tickets,
		audits:  audits,
		metrics: m,
		logger:  logger,
	}
}

// Parse runs the full pipeline for one request. Fatal parse errors come back
// as the error return; everything else produces an outcome.
func (s *ParseService) Parse(ctx context.Context, req ParseRequest) (*ParseOutcome, error) {
	source := pnr.GDS(strings.ToLower(strings.TrimSpace(req.GDSSource)))

	outcome := &ParseOutcome{}

	// Cache lookup is best effort, a cache failure never fails the request
	if s.cache != nil {
		lookupStart := time.Now()
		cached, err := s.cache.GetParseResult(ctx, req.PNRText, source)
		if err != nil {
			s.logger.Warn("Parse cache lookup failed", "error", err)
			if s.metrics != nil {
				s.metrics.ErrorsCount.WithLabelValues("cache_get").Inc()
			}
		} else if cached != nil {
			s.logger.Debug("Parse cache hit", "source", source)
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			outcome.Parsed = cached.Parsed
			outcome.Warnings = cached.Warnings
			outcome.CacheHit = true

			// Every parse attempt is audited, cached ones included
			s.saveAudit(ctx, &entity.ParseAudit{
				PNR:        cached.Parsed.Header.PNR,
				GDSSource:  string(source),
				Outcome:    entity.AuditOutcomeCached,
				Warnings:   warningMessages(cached.Warnings),
				RawText:    req.PNRText,
				DurationMs: time.Since(lookupStart).Milliseconds(),
				RequestID:  req.RequestID,
			})
		}
	}

	if !outcome.CacheHit {
		start := time.Now()
		parsed, warnings, err := s.parser.Parse(req.PNRText, source)
		elapsed := time.Since(start)

		if s.metrics != nil {
			s.metrics.ParsesTotal.WithLabelValues(string(source)).Inc()
			s.metrics.ParseDuration.Observe(elapsed.Seconds())
		}

		if err != nil {
			reason := failureReason(err)
			if s.metrics != nil {
				s.metrics.ParseFailures.WithLabelValues(reason).Inc()
			}
			s.saveAudit(ctx, &entity.ParseAudit{
				GDSSource:  string(source),
				Outcome:    entity.AuditOutcomeFailed,
				ErrorType:  reason,
				RawText:    req.PNRText,
				DurationMs: elapsed.Milliseconds(),
				RequestID:  req.RequestID,
			})
			return nil, err
		}

		if s.metrics != nil && len(warnings) > 0 {
			s.metrics.ParseWarnings.Add(float64(len(warnings)))
		}

		s.saveAudit(ctx, &entity.ParseAudit{
			PNR:        parsed.Header.PNR,
			GDSSource:  string(source),
			Outcome:    entity.AuditOutcomeParsed,
			Warnings:   warningMessages(warnings),
			RawText:    req.PNRText,
			DurationMs: elapsed.Milliseconds(),
			RequestID:  req.RequestID,
		})

		outcome.Parsed = parsed
		outcome.Warnings = warnings

		if s.cache != nil {
			if err := s.cache.SetParseResult(ctx, req.PNRText, source, &cache.ParseResult{
				Parsed:   parsed,
				Warnings: warnings,
			}); err != nil {
				s.logger.Warn("Parse cache store failed", "error", err)
				if s.metrics != nil {
					s.metrics.ErrorsCount.WithLabelValues("cache_set").Inc()
				}
			}
		}
	}

	if req.SaveToDatabase {
		if err := s.saveTicketRecord(ctx, outcome.Parsed); err != nil {
			// Persistence failure is reported next to the record, never instead of it
			s.logger.Error("Failed to save ticket record",
				"pnr", outcome.Parsed.Header.PNR,
				"error", err)
			if s.metrics != nil {
				s.metrics.ErrorsCount.WithLabelValues("ticket_save").Inc()
			}
			outcome.SaveError = err.Error()
		} else {
			outcome.Saved = true
			if s.metrics != nil {
				s.metrics.RecordsSaved.Inc()
			}
		}
	}

	return outcome, nil
}

func (s *ParseService) saveTicketRecord(ctx context.Context, parsed *pnr.ParsedPNR) error {
	if s.tickets == nil {
		return errors.New("ticket store not configured")
	}

	record, err := toTicketRecord(parsed)
	if err != nil {
		return err
	}
	return s.tickets.Upsert(ctx, record)
}

func (s *ParseService) saveAudit(ctx context.Context, audit *entity.ParseAudit) {
	if s.audits == nil {
		return
	}
	if err := s.audits.Save(ctx, audit); err != nil {
		s.logger.Warn("Failed to save parse audit", "error", err)
		if s.metrics != nil {
			s.metrics.ErrorsCount.WithLabelValues("audit_save").Inc()
		}
	}
}

// toTicketRecord flattens a parsed record into its relational projection
func toTicketRecord(parsed *pnr.ParsedPNR) (*entity.TicketRecord, error) {
	payload, err := parsed.ExportJSON()
	if err != nil {
		return nil, err
	}

	record := &entity.TicketRecord{
		RecordKey:      parsed.Header.PNR + ":" + string(parsed.SourceGDS),
		PNR:            parsed.Header.PNR,
		GDSSource:      string(parsed.SourceGDS),
		OfficeID:       parsed.Header.OfficeID,
		PassengerCount: len(parsed.PassengerInfo.Passengers),
		SegmentCount:   len(parsed.FlightSegments),
		TicketStatus:   parsed.TicketingInfo.TicketStatus,
		ParsedJSON:     string(payload),
	}

	if len(parsed.FlightSegments) > 0 {
		first := parsed.FlightSegments[0]
		last := parsed.FlightSegments[len(parsed.FlightSegments)-1]
		record.FirstDeparture = first.Origin + " " + first.DepartureDate + " " + first.DepartureTime
		record.LastArrival = last.Destination + " " + last.ArrivalTime
	}

	if parsed.PaymentInfo.TotalFare != nil {
		record.TotalFare = parsed.PaymentInfo.TotalFare.StringFixed(2)
		record.Currency = parsed.PaymentInfo.Currency
	}

	return record, nil
}

func failureReason(err error) string {
	var emptyErr *pnr.EmptyInputError
	var gdsErr *pnr.UnsupportedGDSError
	var headerErr *pnr.HeaderNotFoundError

	switch {
	case errors.As(err, &emptyErr):
		return "empty_input"
	case errors.As(err, &gdsErr):
		return "unsupported_gds"
	case errors.As(err, &headerErr):
		return "header_not_found"
	default:
		return "unknown"
	}
}

func warningMessages(warnings []pnr.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, string(w.Code)+": "+w.Message)
	}
	return out
}
