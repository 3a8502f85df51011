package domain

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Network represents a registry deployment's network identifier using CAIP-2 format
type Network string

const (
	NetworkEthereumMainnet Network = "eip155:1"
	NetworkEthereumSepolia Network = "eip155:11155111"
	NetworkBaseMainnet     Network = "eip155:8453"
	NetworkArbitrumOne     Network = "eip155:42161"
)

// Valid checks that a network identifier is syntactically well formed
// (namespace:reference). Whether the network is trusted is decided by the
// allowlist registry, not here.
func (n Network) Valid() bool {
	parts := strings.SplitN(string(n), ":", 2)
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}

// String returns the string representation of the Network
func (n Network) String() string {
	return string(n)
}

// Address represents an account address
type Address string

// Valid checks if the address is a syntactically valid, non-zero hex address
func (a Address) Valid() bool {
	return common.IsHexAddress(string(a)) && !a.Zero()
}

// Zero reports whether the address is empty or the zero address
func (a Address) Zero() bool {
	return a == "" || common.HexToAddress(string(a)) == (common.Address{})
}

// Normalized returns the address in EIP-55 checksum format
func (a Address) Normalized() Address {
	if !common.IsHexAddress(string(a)) {
		return a
	}
	return Address(common.HexToAddress(string(a)).String())
}

// String returns the string representation of the Address
func (a Address) String() string {
	return string(a)
}

// TokenID is a ledger-assigned sequential token identifier.
// An id is never reused once assigned by a given ledger instance.
type TokenID uint64

// CatProfile holds the identity fields of a collectible cat token.
// Immutable once set, except through a full burn and re-mint on another network.
type CatProfile struct {
	Name  string    `json:"name"`
	Breed string    `json:"breed"`
	Image string    `json:"image"`
	DOB   time.Time `json:"dob"`
}

// Valid checks the profile fields required at mint time
func (p CatProfile) Valid() bool {
	return p.Name != "" && p.Breed != "" && !p.DOB.IsZero()
}

// Age returns the cat's age relative to the given time
func (p CatProfile) Age(now time.Time) time.Duration {
	return now.Sub(p.DOB)
}

// TokenRecord is the per-token ledger entry
type TokenRecord struct {
	Profile CatProfile `json:"profile"`
	// Owner is the current owner's address
	Owner Address `json:"owner"`
	// ShopPartner is the registry-authorized partner that minted the token; set once
	ShopPartner Address `json:"shop_partner"`
	// PreviousOwners is the append-only provenance trail of prior owners
	PreviousOwners []Address `json:"previous_owners"`
	// OwnerIndexSlot is this token's position inside the current owner's index
	// list and must always equal the token's true position there
	OwnerIndexSlot int `json:"owner_index_slot"`
}

// Exists reports whether the record refers to a live token.
// A cleared/zero-valued record means the token was never minted or was burned.
func (r TokenRecord) Exists() bool {
	return r.Owner != ""
}
