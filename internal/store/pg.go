package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates the registry tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.Token{},
		&schema.Partner{},
		&schema.ProvenanceEvent{},
		&schema.BridgeReceipt{},
		&schema.Counter{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to reasonable defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// Transaction runs fn against a transactional store
func (s *pgStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx})
	})
}

// SaveToken inserts or updates a token row
func (s *pgStore) SaveToken(ctx context.Context, token *schema.Token) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(token).Error
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// DeleteToken removes a token row (burn)
func (s *pgStore) DeleteToken(ctx context.Context, tokenID uint64) error {
	err := s.db.WithContext(ctx).Where("id = ?", tokenID).Delete(&schema.Token{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// GetToken retrieves a token by id
func (s *pgStore) GetToken(ctx context.Context, tokenID uint64) (*schema.Token, error) {
	var token schema.Token
	err := s.db.WithContext(ctx).Where("id = ?", tokenID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

// ListLiveTokens retrieves every live token ordered by owner and index slot,
// so the ledger can rebuild dense owner indexes on start
func (s *pgStore) ListLiveTokens(ctx context.Context) ([]schema.Token, error) {
	var tokens []schema.Token
	err := s.db.WithContext(ctx).
		Order("owner ASC").
		Order("owner_index_slot ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

// AddPartner records an authorized partner shop
func (s *pgStore) AddPartner(ctx context.Context, address string) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&schema.Partner{Address: address}).Error
	if err != nil {
		return fmt.Errorf("failed to add partner: %w", err)
	}
	return nil
}

// ListPartners retrieves all authorized partner shops
func (s *pgStore) ListPartners(ctx context.Context) ([]string, error) {
	var addresses []string
	err := s.db.WithContext(ctx).
		Model(&schema.Partner{}).
		Order("created_at ASC").
		Pluck("address", &addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	return addresses, nil
}

// AppendProvenanceEvent appends to the ownership audit log
func (s *pgStore) AppendProvenanceEvent(ctx context.Context, event *schema.ProvenanceEvent) error {
	err := s.db.WithContext(ctx).Create(event).Error
	if err != nil {
		return fmt.Errorf("failed to append provenance event: %w", err)
	}
	return nil
}

// ListProvenanceEvents retrieves the audit log for a token, oldest first
func (s *pgStore) ListProvenanceEvents(ctx context.Context, tokenID uint64) ([]schema.ProvenanceEvent, error) {
	var events []schema.ProvenanceEvent
	err := s.db.WithContext(ctx).
		Where("token_id = ?", tokenID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list provenance events: %w", err)
	}
	return events, nil
}

// GetCounter retrieves a named counter value
func (s *pgStore) GetCounter(ctx context.Context, name string) (uint64, error) {
	var counter schema.Counter
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get counter: %w", err)
	}
	return counter.Value, nil
}

// SetCounter stores a named counter value
func (s *pgStore) SetCounter(ctx context.Context, name string, value uint64) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&schema.Counter{Name: name, Value: value, UpdatedAt: time.Now()}).Error
	if err != nil {
		return fmt.Errorf("failed to set counter: %w", err)
	}
	return nil
}

// HasBridgeReceipt checks whether a relay message id was already recorded
func (s *pgStore) HasBridgeReceipt(ctx context.Context, messageID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.BridgeReceipt{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check bridge receipt: %w", err)
	}
	return count > 0, nil
}

// SaveBridgeReceipt records a dispatched or admitted relay message
func (s *pgStore) SaveBridgeReceipt(ctx context.Context, receipt *schema.BridgeReceipt) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(receipt).Error
	if err != nil {
		return fmt.Errorf("failed to save bridge receipt: %w", err)
	}
	return nil
}

// DeleteBridgeReceipt removes a recorded relay message
func (s *pgStore) DeleteBridgeReceipt(ctx context.Context, messageID string) error {
	err := s.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Delete(&schema.BridgeReceipt{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete bridge receipt: %w", err)
	}
	return nil
}
