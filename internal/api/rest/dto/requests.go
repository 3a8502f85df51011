package dto

import "time"

// MintRequest is the payload for minting a new token
type MintRequest struct {
	Owner string    `json:"owner" binding:"required"`
	Name  string    `json:"name" binding:"required"`
	Breed string    `json:"breed" binding:"required"`
	Image string    `json:"image"`
	DOB   time.Time `json:"dob" binding:"required"`
}

// ApproveRequest is the payload for granting a single-use transfer approval
type ApproveRequest struct {
	To string `json:"to" binding:"required"`
}

// TransferRequest is the payload for a partner-mediated transfer
type TransferRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// BridgeRequest is the payload for bridging a token to another network
type BridgeRequest struct {
	DestNetwork string `json:"dest_network" binding:"required"`
	DestAddress string `json:"dest_address" binding:"required"`
}

// AllowlistEntryRequest is the payload for an allowlist mutation.
// Network is set for destination/source entries, Address for sender entries.
type AllowlistEntryRequest struct {
	Network string `json:"network"`
	Address string `json:"address"`
	Allowed bool   `json:"allowed"`
}

// GasLimitRequest is the payload for adjusting the destination gas budget
type GasLimitRequest struct {
	GasLimit uint64 `json:"gas_limit" binding:"required"`
}

// PartnerRequest is the payload for authorizing a partner shop
type PartnerRequest struct {
	Address string `json:"address" binding:"required"`
}
