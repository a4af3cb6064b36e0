package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pnrdesk-service/internal/domain/entity"
	"pnrdesk-service/internal/domain/repository"
	"pnrdesk-service/internal/infrastructure/cache"
	"pnrdesk-service/pkg/logger"
	"pnrdesk-service/pkg/pnr"
)

const amadeusBooking = `RP/LON1A2345/LON1A2345            WS/SU   1NOV24/1426Z   VWXYZ1
1.SMITH/JOHN MR
2  EK 234 Y 15NOV 3 LONORD HK1   0800 1445+1
5 FP CASH
8 TKOK15NOV/LON1A2345
`

// MockTicketRepository is a mock implementation of repository.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Upsert(ctx context.Context, record *entity.TicketRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockTicketRepository) FindByRecordKey(ctx context.Context, recordKey string) (*entity.TicketRecord, error) {
	args := m.Called(ctx, recordKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TicketRecord), args.Error(1)
}

func (m *MockTicketRepository) FindByPNR(ctx context.Context, pnr string) ([]*entity.TicketRecord, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.TicketRecord), args.Error(1)
}

// MockParseAuditRepository is a mock implementation of repository.ParseAuditRepository
type MockParseAuditRepository struct {
	mock.Mock
}

func (m *MockParseAuditRepository) Save(ctx context.Context, audit *entity.ParseAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockParseAuditRepository) FindRecent(ctx context.Context, limit int) ([]*entity.ParseAudit, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ParseAudit), args.Error(1)
}

// MockParseCache is a mock implementation of ParseCache
type MockParseCache struct {
	mock.Mock
}

func (m *MockParseCache) GetParseResult(ctx context.Context, text string, source pnr.GDS) (*cache.ParseResult, error) {
	args := m.Called(ctx, text, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.ParseResult), args.Error(1)
}

func (m *MockParseCache) SetParseResult(ctx context.Context, text string, source pnr.GDS, result *cache.ParseResult) error {
	args := m.Called(ctx, text, source, result)
	return args.Error(0)
}

func newTestParseService(tickets *MockTicketRepository, audits *MockParseAuditRepository, parseCache ParseCache) *ParseService {
	log := logger.NewNopLogger()

	var ticketRepo repository.TicketRepository
	if tickets != nil {
		ticketRepo = tickets
	}
	var auditRepo repository.ParseAuditRepository
	if audits != nil {
		auditRepo = audits
	}
	return NewParseService(pnr.NewParser(log), parseCache, ticketRepo, auditRepo, nil, log)
}

func TestParseServiceSavesRecord(t *testing.T) {
	tickets := &MockTicketRepository{}
	audits := &MockParseAuditRepository{}
	service := newTestParseService(tickets, audits, nil)

	audits.On("Save", mock.Anything, mock.Anything).Return(nil)

	var saved *entity.TicketRecord
	tickets.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*entity.TicketRecord)
	}).Return(nil)

	outcome, err := service.Parse(context.Background(), ParseRequest{
		PNRText:        amadeusBooking,
		GDSSource:      "amadeus",
		SaveToDatabase: true,
	})
	require.NoError(t, err)

	assert.True(t, outcome.Saved)
	assert.Empty(t, outcome.SaveError)
	assert.Equal(t, "VWXYZ1", outcome.Parsed.Header.PNR)

	require.NotNil(t, saved)
	assert.Equal(t, "VWXYZ1:amadeus", saved.RecordKey)
	assert.Equal(t, 1, saved.PassengerCount)
	assert.Equal(t, 1, saved.SegmentCount)
	assert.NotEmpty(t, saved.ParsedJSON)

	tickets.AssertExpectations(t)
	audits.AssertExpectations(t)
}

func TestParseServiceSaveFailureKeepsParseResult(t *testing.T) {
	tickets := &MockTicketRepository{}
	audits := &MockParseAuditRepository{}
	service := newTestParseService(tickets, audits, nil)

	audits.On("Save", mock.Anything, mock.Anything).Return(nil)
	tickets.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	outcome, err := service.Parse(context.Background(), ParseRequest{
		PNRText:        amadeusBooking,
		GDSSource:      "amadeus",
		SaveToDatabase: true,
	})
	require.NoError(t, err)

	// The record is still returned, only the persistence status reports the failure
	assert.NotNil(t, outcome.Parsed)
	assert.False(t, outcome.Saved)
	assert.Contains(t, outcome.SaveError, "connection refused")
}

func TestParseServiceCacheHit(t *testing.T) {
	parseCache := &MockParseCache{}
	service := newTestParseService(nil, nil, parseCache)

	cached := &cache.ParseResult{
		Parsed: &pnr.ParsedPNR{
			Header:    pnr.Header{PNR: "CACHED"},
			SourceGDS: pnr.GDSAmadeus,
		},
	}
	parseCache.On("GetParseResult", mock.Anything, amadeusBooking, pnr.GDSAmadeus).Return(cached, nil)

	outcome, err := service.Parse(context.Background(), ParseRequest{
		PNRText:   amadeusBooking,
		GDSSource: "AMADEUS",
	})
	require.NoError(t, err)

	assert.True(t, outcome.CacheHit)
	assert.Equal(t, "CACHED", outcome.Parsed.Header.PNR)

	parseCache.AssertExpectations(t)
	parseCache.AssertNotCalled(t, "SetParseResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestParseServiceCacheHitIsAudited(t *testing.T) {
	parseCache := &MockParseCache{}
	audits := &MockParseAuditRepository{}
	service := newTestParseService(nil, audits, parseCache)

	cached := &cache.ParseResult{
		Parsed: &pnr.ParsedPNR{
			Header:    pnr.Header{PNR: "VWXYZ1"},
			SourceGDS: pnr.GDSAmadeus,
		},
		Warnings: []pnr.Warning{
			{Code: pnr.WarnSegmentExtraction, Message: "malformed segment", Line: 3},
		},
	}
	parseCache.On("GetParseResult", mock.Anything, amadeusBooking, pnr.GDSAmadeus).Return(cached, nil)

	var audit *entity.ParseAudit
	audits.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		audit = args.Get(1).(*entity.ParseAudit)
	}).Return(nil)

	outcome, err := service.Parse(context.Background(), ParseRequest{
		PNRText:   amadeusBooking,
		GDSSource: "amadeus",
		RequestID: "req-77",
	})
	require.NoError(t, err)
	require.True(t, outcome.CacheHit)

	// A cached answer is still a parse attempt, so the audit trail records it
	require.NotNil(t, audit)
	assert.Equal(t, entity.AuditOutcomeCached, audit.Outcome)
	assert.Equal(t, "VWXYZ1", audit.PNR)
	assert.Equal(t, "amadeus", audit.GDSSource)
	assert.Equal(t, "req-77", audit.RequestID)
	require.Len(t, audit.Warnings, 1)
	assert.Contains(t, audit.Warnings[0], "malformed segment")
}

func TestParseServiceCacheMissStoresResult(t *testing.T) {
	parseCache := &MockParseCache{}
	service := newTestParseService(nil, nil, parseCache)

	parseCache.On("GetParseResult", mock.Anything, amadeusBooking, pnr.GDSAmadeus).Return(nil, nil)
	parseCache.On("SetParseResult", mock.Anything, amadeusBooking, pnr.GDSAmadeus, mock.Anything).Return(nil)

	outcome, err := service.Parse(context.Background(), ParseRequest{
		PNRText:   amadeusBooking,
		GDSSource: "amadeus",
	})
	require.NoError(t, err)

	assert.False(t, outcome.CacheHit)
	assert.Equal(t, "VWXYZ1", outcome.Parsed.Header.PNR)

	parseCache.AssertExpectations(t)
}

func TestParseServiceFatalErrorIsAudited(t *testing.T) {
	audits := &MockParseAuditRepository{}
	service := newTestParseService(nil, audits, nil)

	var audit *entity.ParseAudit
	audits.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		audit = args.Get(1).(*entity.ParseAudit)
	}).Return(nil)

	outcome, err := service.Parse(context.Background(), ParseRequest{
		PNRText:   "   ",
		GDSSource: "amadeus",
	})
	assert.Nil(t, outcome)

	var emptyErr *pnr.EmptyInputError
	require.ErrorAs(t, err, &emptyErr)

	require.NotNil(t, audit)
	assert.Equal(t, entity.AuditOutcomeFailed, audit.Outcome)
	assert.Equal(t, "empty_input", audit.ErrorType)
}

func TestParseServiceUnsupportedSource(t *testing.T) {
	service := newTestParseService(nil, nil, nil)

	outcome, err := service.Parse(context.Background(), ParseRequest{
		PNRText:   amadeusBooking,
		GDSSource: "worldspan",
	})
	assert.Nil(t, outcome)

	var gdsErr *pnr.UnsupportedGDSError
	require.ErrorAs(t, err, &gdsErr)
}
