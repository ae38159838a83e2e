// Package gormstore implements the tracker store on MySQL for self-hosted
// deployments. Rows keep the same (id, month) addressing as the DynamoDB
// table; the record itself is stored as a JSON document.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"rtotrack.dev/rtotrack/core/models"
)

type TrackerRow struct {
	RecordID  string    `gorm:"column:record_id;primaryKey;size:64"`
	Month     string    `gorm:"column:month;primaryKey;size:16"`
	Document  []byte    `gorm:"column:document;type:json;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP"`
}

func (TrackerRow) TableName() string {
	return "tracker_records"
}

type Store struct {
	db *gorm.DB
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to MySQL and migrates the tracker table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&TrackerRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tracker table: %w", err)
	}
	return New(db), nil
}

func (s *Store) GetBase(ctx context.Context, id string) (*models.BaseRecord, error) {
	doc, err := s.getDocument(ctx, id, models.BaseMonth)
	if err != nil || doc == nil {
		return nil, err
	}

	var record models.BaseRecord
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, fmt.Errorf("failed to decode base record %s: %w", id, err)
	}
	return &record, nil
}

func (s *Store) PutBase(ctx context.Context, record *models.BaseRecord) error {
	return s.putDocument(ctx, record.ID, record.Month, record)
}

func (s *Store) GetMonth(ctx context.Context, id, month string) (*models.MonthRecord, error) {
	doc, err := s.getDocument(ctx, id, month)
	if err != nil || doc == nil {
		return nil, err
	}

	var record models.MonthRecord
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, fmt.Errorf("failed to decode month record %s/%s: %w", id, month, err)
	}
	return &record, nil
}

func (s *Store) PutMonth(ctx context.Context, record *models.MonthRecord) error {
	return s.putDocument(ctx, record.ID, record.Month, record)
}

func (s *Store) getDocument(ctx context.Context, id, month string) ([]byte, error) {
	var row TrackerRow
	err := s.db.WithContext(ctx).
		Where("record_id = ? AND month = ?", id, month).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read row %s/%s: %w", id, month, err)
	}
	return row.Document, nil
}

func (s *Store) putDocument(ctx context.Context, id, month string, record any) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	// Unconditional overwrite: last writer wins, matching the store contract.
	row := TrackerRow{RecordID: id, Month: month, Document: doc, UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_id"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write row %s/%s: %w", id, month, err)
	}
	return nil
}
