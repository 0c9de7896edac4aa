package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

// draftRecord is one row per draft code. State and Roster hold the same JSON
// the other repositories store.
type draftRecord struct {
	Code      string `gorm:"primaryKey;size:16"`
	State     string `gorm:"type:text"`
	Roster    string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (draftRecord) TableName() string { return "drafts" }

type PostgresConfig struct {
	// DSN is used when DB is nil
	DSN string
	DB  *gorm.DB
}

type Postgres struct {
	db *gorm.DB
}

// NewPostgres opens the database and migrates the drafts table.
func NewPostgres(ctx context.Context, cfg *PostgresConfig) (*Postgres, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	db := cfg.DB
	if db == nil {
		if cfg.DSN == "" {
			return nil, errors.New("database url cannot be empty")
		}
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.WithContext(ctx).AutoMigrate(&draftRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate drafts table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) SaveDraft(ctx context.Context, input *SaveDraftInput) error {
	if input == nil || input.Code == "" {
		return ErrInvalidInput
	}
	b, err := json.Marshal(input.State)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	return p.upsert(ctx, draftRecord{Code: input.Code, State: string(b)}, "state")
}

func (p *Postgres) GetDraft(ctx context.Context, input *GetDraftInput) (*engine.State, error) {
	if input == nil || input.Code == "" {
		return nil, ErrInvalidInput
	}
	rec, err := p.find(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if rec.State == "" {
		return nil, ErrNotFound
	}
	return decodeDraft([]byte(rec.State))
}

func (p *Postgres) SaveRoster(ctx context.Context, input *SaveRosterInput) error {
	if input == nil || input.Code == "" {
		return ErrInvalidInput
	}
	b, err := json.Marshal(input.Roster)
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}
	return p.upsert(ctx, draftRecord{Code: input.Code, Roster: string(b)}, "roster")
}

func (p *Postgres) GetRoster(ctx context.Context, input *GetRosterInput) ([]engine.Participant, error) {
	if input == nil || input.Code == "" {
		return nil, ErrInvalidInput
	}
	rec, err := p.find(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if rec.Roster == "" {
		return nil, ErrNotFound
	}
	return decodeRoster([]byte(rec.Roster))
}

func (p *Postgres) ListDrafts(ctx context.Context) ([]string, error) {
	var codes []string
	err := p.db.WithContext(ctx).
		Model(&draftRecord{}).
		Where("state <> ''").
		Order("code").
		Pluck("code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return codes, nil
}

func (p *Postgres) DeleteDraft(ctx context.Context, input *DeleteDraftInput) error {
	if input == nil || input.Code == "" {
		return ErrInvalidInput
	}
	res := p.db.WithContext(ctx).Delete(&draftRecord{}, "code = ?", input.Code)
	if res.Error != nil {
		return fmt.Errorf("failed to delete draft: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *Postgres) upsert(ctx context.Context, rec draftRecord, column string) error {
	rec.UpdatedAt = time.Now()
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{column, "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", column, err)
	}
	return nil
}

func (p *Postgres) find(ctx context.Context, code string) (*draftRecord, error) {
	var rec draftRecord
	err := p.db.WithContext(ctx).First(&rec, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return &rec, nil
}
