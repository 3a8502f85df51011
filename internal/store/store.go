package store

import (
	"context"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/store/schema"
)

// CounterTokenID is the name of the ledger's token id counter
const CounterTokenID = "token_id"

// Store defines the interface for database operations
type Store interface {
	// Transaction runs fn against a transactional store; all writes commit or
	// roll back together
	Transaction(ctx context.Context, fn func(Store) error) error

	// SaveToken inserts or updates a token row
	SaveToken(ctx context.Context, token *schema.Token) error
	// DeleteToken removes a token row (burn)
	DeleteToken(ctx context.Context, tokenID uint64) error
	// GetToken retrieves a token by id; returns nil when absent
	GetToken(ctx context.Context, tokenID uint64) (*schema.Token, error)
	// ListLiveTokens retrieves every live token, for ledger rehydration
	ListLiveTokens(ctx context.Context) ([]schema.Token, error)

	// AddPartner records an authorized partner shop
	AddPartner(ctx context.Context, address string) error
	// ListPartners retrieves all authorized partner shops
	ListPartners(ctx context.Context) ([]string, error)

	// AppendProvenanceEvent appends to the ownership audit log
	AppendProvenanceEvent(ctx context.Context, event *schema.ProvenanceEvent) error
	// ListProvenanceEvents retrieves the audit log for a token, oldest first
	ListProvenanceEvents(ctx context.Context, tokenID uint64) ([]schema.ProvenanceEvent, error)

	// GetCounter retrieves a named counter value; returns 0 when absent
	GetCounter(ctx context.Context, name string) (uint64, error)
	// SetCounter stores a named counter value
	SetCounter(ctx context.Context, name string, value uint64) error

	// HasBridgeReceipt checks whether a relay message id was already recorded
	HasBridgeReceipt(ctx context.Context, messageID string) (bool, error)
	// SaveBridgeReceipt records a dispatched or admitted relay message
	SaveBridgeReceipt(ctx context.Context, receipt *schema.BridgeReceipt) error
	// DeleteBridgeReceipt removes a recorded relay message, releasing its id
	// for redelivery after a failed admission
	DeleteBridgeReceipt(ctx context.Context, messageID string) error
}
