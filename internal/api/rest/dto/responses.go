package dto

import (
	"time"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/ledger"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/registry"
)

// TokenResponse is the read-surface metadata document of a token
type TokenResponse struct {
	TokenID        uint64    `json:"token_id"`
	Name           string    `json:"name"`
	Breed          string    `json:"breed"`
	Image          string    `json:"image,omitempty"`
	DOB            time.Time `json:"dob"`
	AgeSeconds     int64     `json:"age_seconds"`
	Owner          string    `json:"owner"`
	ShopPartner    string    `json:"shop_partner"`
	PreviousOwners []string  `json:"previous_owners"`
}

// NewTokenResponse maps a ledger metadata document to its API shape
func NewTokenResponse(doc *ledger.MetadataDocument) TokenResponse {
	previous := make([]string, 0, len(doc.PreviousOwners))
	for _, addr := range doc.PreviousOwners {
		previous = append(previous, addr.String())
	}

	return TokenResponse{
		TokenID:        uint64(doc.TokenID),
		Name:           doc.Name,
		Breed:          doc.Breed,
		Image:          doc.Image,
		DOB:            doc.DOB,
		AgeSeconds:     int64(doc.Age.Seconds()),
		Owner:          doc.Owner.String(),
		ShopPartner:    doc.ShopPartner.String(),
		PreviousOwners: previous,
	}
}

// MintResponse reports the id assigned to a freshly minted token
type MintResponse struct {
	TokenID uint64 `json:"token_id"`
}

// BridgeResponse reports the relay message id of a dispatched bridge request
type BridgeResponse struct {
	MessageID string `json:"message_id"`
}

// OwnerTokensResponse enumerates the tokens an owner holds
type OwnerTokensResponse struct {
	Owner    string   `json:"owner"`
	TokenIDs []uint64 `json:"token_ids"`
}

// PartnersResponse enumerates the authorized partner shops
type PartnersResponse struct {
	Partners []string `json:"partners"`
}

// LedgerResponse reports the deployment's ledger and bridge configuration
type LedgerResponse struct {
	Network     string `json:"network"`
	NextTokenID uint64 `json:"next_token_id"`
	Controller  string `json:"controller"`
	GasLimit    uint64 `json:"gas_limit"`
}

// AllowlistResponse reports the configured allowlist entries
type AllowlistResponse struct {
	Destinations []string `json:"destinations"`
	Sources      []string `json:"sources"`
	Senders      []string `json:"senders"`
}

// NewAllowlistResponse maps an allowlist snapshot to its API shape
func NewAllowlistResponse(data registry.AllowlistData) AllowlistResponse {
	resp := AllowlistResponse{
		Destinations: make([]string, 0, len(data.Destinations)),
		Sources:      make([]string, 0, len(data.Sources)),
		Senders:      make([]string, 0, len(data.Senders)),
	}
	for _, network := range data.Destinations {
		resp.Destinations = append(resp.Destinations, network.String())
	}
	for _, network := range data.Sources {
		resp.Sources = append(resp.Sources, network.String())
	}
	for _, sender := range data.Senders {
		resp.Senders = append(resp.Senders, sender.String())
	}
	return resp
}
