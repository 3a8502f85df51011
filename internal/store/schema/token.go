package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Token represents the tokens table - one row per live token held by this
// registry deployment. Burned (bridged-out) tokens are deleted; their history
// survives in provenance_events and bridge_receipts.
type Token struct {
	// ID is the ledger-assigned sequential token id (never reused). The
	// ledger owns the sequence, starting at 0; the database must never
	// assign its own.
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement:false"`
	// Name is the cat's display name
	Name string `gorm:"column:name;not null;type:text"`
	// Breed is the cat's breed
	Breed string `gorm:"column:breed;not null;type:text"`
	// Image is the cat's image reference
	Image string `gorm:"column:image;type:text"`
	// DOB is the cat's date of birth
	DOB time.Time `gorm:"column:dob;not null"`
	// Owner is the current owner's address
	Owner string `gorm:"column:owner;not null;type:text;index:idx_tokens_owner"`
	// ShopPartner is the partner shop that minted the token; set once
	ShopPartner string `gorm:"column:shop_partner;not null;type:text"`
	// OwnerIndexSlot is the token's position in the owner's index list
	OwnerIndexSlot int `gorm:"column:owner_index_slot;not null"`
	// PreviousOwners is the append-only provenance trail, stored as a JSON array
	PreviousOwners datatypes.JSON `gorm:"column:previous_owners;type:jsonb"`
	// CreatedAt is the timestamp when this record was minted or re-minted here
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	// UpdatedAt is the timestamp of the most recent mutation
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Token model
func (Token) TableName() string {
	return "tokens"
}
