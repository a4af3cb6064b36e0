package repository

import (
	"context"
	"time"

	"pnrdesk-service/internal/domain/entity"
	"pnrdesk-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTicketRepository implements the TicketRepository interface
type GormTicketRepository struct {
	db *gorm.DB
}

// NewGormTicketRepository creates a new GORM ticket repository
func NewGormTicketRepository(db *gorm.DB) repository.TicketRepository {
	return &GormTicketRepository{
		db: db,
	}
}

// TicketRecords GORM model for database mapping
type TicketRecords struct {
	ID             uint   `gorm:"primaryKey"`
	RecordKey      string `gorm:"column:record_key;unique"`
	PNR            string `gorm:"column:pnr;index"`
	GDSSource      string `gorm:"column:gds_source"`
	OfficeID       string `gorm:"column:office_id"`
	PassengerCount int    `gorm:"column:passenger_count"`
	SegmentCount   int    `gorm:"column:segment_count"`
	FirstDeparture string `gorm:"column:first_departure"`
	LastArrival    string `gorm:"column:last_arrival"`
	TotalFare      string `gorm:"column:total_fare"`
	Currency       string `gorm:"column:currency"`
	TicketStatus   string `gorm:"column:ticket_status"`
	ParsedJSON     string `gorm:"column:parsed_json;type:jsonb"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides the default table name
func (TicketRecords) TableName() string {
	return "t_ticket_records"
}

// Upsert creates or updates a ticket record keyed by record_key
func (r *GormTicketRepository) Upsert(ctx context.Context, record *entity.TicketRecord) error {
	row := toModel(record)
	row.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pnr", "gds_source", "office_id", "passenger_count", "segment_count",
			"first_departure", "last_arrival", "total_fare", "currency",
			"ticket_status", "parsed_json", "updated_at",
		}),
	}).Create(&row)

	if result.Error != nil {
		return result.Error
	}

	record.ID = row.ID
	return nil
}

// FindByRecordKey finds a ticket record by its record key
func (r *GormTicketRepository) FindByRecordKey(ctx context.Context, recordKey string) (*entity.TicketRecord, error) {
	var row TicketRecords
	result := r.db.WithContext(ctx).Where("record_key = ?", recordKey).First(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEntity(&row), nil
}

// FindByPNR finds all records for a record locator across reservation systems
func (r *GormTicketRepository) FindByPNR(ctx context.Context, pnr string) ([]*entity.TicketRecord, error) {
	var rows []TicketRecords
	result := r.db.WithContext(ctx).Where("pnr = ?", pnr).Order("updated_at DESC").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	records := make([]*entity.TicketRecord, 0, len(rows))
	for i := range rows {
		records = append(records, toEntity(&rows[i]))
	}
	return records, nil
}

func toModel(record *entity.TicketRecord) TicketRecords {
	return TicketRecords{
		ID:             record.ID,
		RecordKey:      record.RecordKey,
		PNR:            record.PNR,
		GDSSource:      record.GDSSource,
		OfficeID:       record.OfficeID,
		PassengerCount: record.PassengerCount,
		SegmentCount:   record.SegmentCount,
		FirstDeparture: record.FirstDeparture,
		LastArrival:    record.LastArrival,
		TotalFare:      record.TotalFare,
		Currency:       record.Currency,
		TicketStatus:   record.TicketStatus,
		ParsedJSON:     record.ParsedJSON,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func toEntity(row *TicketRecords) *entity.TicketRecord {
	return &entity.TicketRecord{
		ID:             row.ID,
		RecordKey:      row.RecordKey,
		PNR:            row.PNR,
		GDSSource:      row.GDSSource,
		OfficeID:       row.OfficeID,
		PassengerCount: row.PassengerCount,
		SegmentCount:   row.SegmentCount,
		FirstDeparture: row.FirstDeparture,
		LastArrival:    row.LastArrival,
		TotalFare:      row.TotalFare,
		Currency:       row.Currency,
		TicketStatus:   row.TicketStatus,
		ParsedJSON:     row.ParsedJSON,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
