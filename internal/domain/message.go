package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"
)

// BridgeMessage is the wire payload relayed between two registry deployments.
// No token id travels with it: the destination ledger assigns a fresh one.
type BridgeMessage struct {
	Owner       Address   `json:"owner"`
	Name        string    `json:"name"`
	Breed       string    `json:"breed"`
	Image       string    `json:"image"`
	DOB         time.Time `json:"dob"`
	ShopPartner Address   `json:"shop_partner"`
}

// Valid checks the fields a destination ledger requires to re-mint
func (m BridgeMessage) Valid() bool {
	return m.Owner.Valid() && m.ShopPartner.Valid() && m.Name != "" && m.Breed != "" && !m.DOB.IsZero()
}

// Profile returns the identity fields carried by the message
func (m BridgeMessage) Profile() CatProfile {
	return CatProfile{Name: m.Name, Breed: m.Breed, Image: m.Image, DOB: m.DOB}
}

// Encode serializes the message into canonical JSON (RFC 8785) so that the
// same record always produces identical wire bytes on every deployment.
func (m BridgeMessage) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bridge message: %w", err)
	}

	canonical, err := jcs.Transform(data)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize bridge message: %w", err)
	}

	return canonical, nil
}

// DecodeBridgeMessage deserializes and validates a wire payload
func DecodeBridgeMessage(payload []byte) (*BridgeMessage, error) {
	var m BridgeMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, NewInvalidArgumentError("malformed bridge payload: %v", err)
	}

	if !m.Valid() {
		return nil, NewInvalidArgumentError("bridge payload missing required fields")
	}

	m.Owner = m.Owner.Normalized()
	m.ShopPartner = m.ShopPartner.Normalized()
	return &m, nil
}
