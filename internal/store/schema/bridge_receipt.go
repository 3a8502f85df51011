package schema

import (
	"time"

	"gorm.io/datatypes"
)

// BridgeDirection distinguishes dispatched from delivered messages
type BridgeDirection string

const (
	BridgeDirectionOutbound BridgeDirection = "outbound"
	BridgeDirectionInbound  BridgeDirection = "inbound"
)

// BridgeReceipt represents the bridge_receipts table - every relay message
// this controller dispatched or admitted. Inbound rows double as the
// seen-message-id set guarding against relay redelivery.
type BridgeReceipt struct {
	// MessageID is the relay-assigned message identifier
	MessageID string `gorm:"column:message_id;primaryKey;type:text"`
	// Direction is outbound (dispatched) or inbound (admitted)
	Direction BridgeDirection `gorm:"column:direction;not null;type:text"`
	// Network is the destination (outbound) or source (inbound) network
	Network string `gorm:"column:network;not null;type:text"`
	// Counterparty is the receiver (outbound) or sender (inbound) controller address
	Counterparty string `gorm:"column:counterparty;not null;type:text"`
	// Payload is the bridge message wire bytes
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb"`
	// Fee is the relay fee charged, in fee-token units (outbound only)
	Fee uint64 `gorm:"column:fee;not null;default:0"`
	// CreatedAt is the dispatch or admission timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the BridgeReceipt model
func (BridgeReceipt) TableName() string {
	return "bridge_receipts"
}
