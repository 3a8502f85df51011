package schema

import (
	"time"
)

// ProvenanceEventType identifies what happened to a token
type ProvenanceEventType string

const (
	ProvenanceEventMint     ProvenanceEventType = "mint"
	ProvenanceEventTransfer ProvenanceEventType = "transfer"
	ProvenanceEventBridge   ProvenanceEventType = "bridge"
	ProvenanceEventReMint   ProvenanceEventType = "remint"
)

// ProvenanceEvent represents the provenance_events table - an append-only
// audit log of ownership changes. Rows outlive the token they describe.
type ProvenanceEvent struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TokenID is the ledger token id the event refers to
	TokenID uint64 `gorm:"column:token_id;not null;index:idx_provenance_events_token_id"`
	// EventType is mint, transfer, bridge, or remint
	EventType ProvenanceEventType `gorm:"column:event_type;not null;type:text"`
	// FromAddress is the previous owner (empty for mint/remint)
	FromAddress string `gorm:"column:from_address;type:text"`
	// ToAddress is the new owner (empty for bridge)
	ToAddress string `gorm:"column:to_address;type:text"`
	// Partner is the shop partner mediating the event, if any
	Partner string `gorm:"column:partner;type:text"`
	// CreatedAt is the event timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the ProvenanceEvent model
func (ProvenanceEvent) TableName() string {
	return "provenance_events"
}
