package schema

import (
	"time"
)

// Partner represents the partners table - registry-authorized shops allowed
// to mint and mediate transfers
type Partner struct {
	// Address is the partner shop's address
	Address string `gorm:"column:address;primaryKey;type:text"`
	// CreatedAt is the timestamp when the partner was authorized
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the Partner model
func (Partner) TableName() string {
	return "partners"
}
