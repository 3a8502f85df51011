package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
)

// AllowlistRegistry defines the fail-closed permission sets gating bridge
// traffic: which destination networks may be dispatched to, which source
// networks may deliver, and which remote senders are trusted.
// Unknown keys always report false.
type AllowlistRegistry interface {
	// SetDestinationAllowed marks a destination network as allowed or not
	SetDestinationAllowed(caller domain.Address, network domain.Network, allowed bool) error
	// SetSourceAllowed marks a source network as allowed or not
	SetSourceAllowed(caller domain.Address, network domain.Network, allowed bool) error
	// SetSenderAllowed marks a remote sender address as allowed or not
	SetSenderAllowed(caller domain.Address, sender domain.Address, allowed bool) error

	// IsDestinationAllowed checks if a destination network is allowed
	IsDestinationAllowed(network domain.Network) bool
	// IsSourceAllowed checks if a source network is allowed
	IsSourceAllowed(network domain.Network) bool
	// IsSenderAllowed checks if a remote sender address is allowed
	IsSenderAllowed(sender domain.Address) bool

	// Snapshot returns a copy of all allowed entries, for read accessors
	Snapshot() AllowlistData
}

// AllowlistData represents the structure of the allowlist seed file and of
// snapshots returned to read accessors
type AllowlistData struct {
	Destinations []domain.Network `json:"destinations"`
	Sources      []domain.Network `json:"sources"`
	Senders      []domain.Address `json:"senders"`
}

// allowlistRegistry is the internal implementation of AllowlistRegistry
type allowlistRegistry struct {
	mu           sync.RWMutex
	admin        domain.Address
	destinations map[domain.Network]bool
	sources      map[domain.Network]bool
	senders      map[domain.Address]bool
}

// NewAllowlist creates an empty allowlist registry administered by admin
func NewAllowlist(admin domain.Address) AllowlistRegistry {
	return &allowlistRegistry{
		admin:        admin.Normalized(),
		destinations: make(map[domain.Network]bool),
		sources:      make(map[domain.Network]bool),
		senders:      make(map[domain.Address]bool),
	}
}

// LoadAllowlist creates an allowlist registry seeded from a JSON file
func LoadAllowlist(filePath string, admin domain.Address) (AllowlistRegistry, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec,G304 // This should be a trusted file
	if err != nil {
		return nil, fmt.Errorf("failed to read allowlist file: %w", err)
	}

	var seed AllowlistData
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse allowlist JSON: %w", err)
	}

	al := NewAllowlist(admin).(*allowlistRegistry)
	for _, network := range seed.Destinations {
		al.destinations[network] = true
	}
	for _, network := range seed.Sources {
		al.sources[network] = true
	}
	for _, sender := range seed.Senders {
		al.senders[sender.Normalized()] = true
	}

	return al, nil
}

func (a *allowlistRegistry) authorize(caller domain.Address) error {
	if caller.Normalized() != a.admin {
		return domain.NewAccessDeniedError("caller %s is not the allowlist administrator", caller)
	}
	return nil
}

// SetDestinationAllowed marks a destination network as allowed or not
func (a *allowlistRegistry) SetDestinationAllowed(caller domain.Address, network domain.Network, allowed bool) error {
	if err := a.authorize(caller); err != nil {
		return err
	}
	if !network.Valid() {
		return domain.NewInvalidArgumentError("invalid network identifier %q", network)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if allowed {
		a.destinations[network] = true
	} else {
		delete(a.destinations, network)
	}
	return nil
}

// SetSourceAllowed marks a source network as allowed or not
func (a *allowlistRegistry) SetSourceAllowed(caller domain.Address, network domain.Network, allowed bool) error {
	if err := a.authorize(caller); err != nil {
		return err
	}
	if !network.Valid() {
		return domain.NewInvalidArgumentError("invalid network identifier %q", network)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if allowed {
		a.sources[network] = true
	} else {
		delete(a.sources, network)
	}
	return nil
}

// SetSenderAllowed marks a remote sender address as allowed or not
func (a *allowlistRegistry) SetSenderAllowed(caller domain.Address, sender domain.Address, allowed bool) error {
	if err := a.authorize(caller); err != nil {
		return err
	}
	if !sender.Valid() {
		return domain.NewInvalidArgumentError("invalid sender address %q", sender)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if allowed {
		a.senders[sender.Normalized()] = true
	} else {
		delete(a.senders, sender.Normalized())
	}
	return nil
}

// IsDestinationAllowed checks if a destination network is allowed
func (a *allowlistRegistry) IsDestinationAllowed(network domain.Network) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.destinations[network]
}

// IsSourceAllowed checks if a source network is allowed
func (a *allowlistRegistry) IsSourceAllowed(network domain.Network) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sources[network]
}

// IsSenderAllowed checks if a remote sender address is allowed
func (a *allowlistRegistry) IsSenderAllowed(sender domain.Address) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.senders[sender.Normalized()]
}

// Snapshot returns a copy of all allowed entries
func (a *allowlistRegistry) Snapshot() AllowlistData {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snapshot := AllowlistData{}
	for network := range a.destinations {
		snapshot.Destinations = append(snapshot.Destinations, network)
	}
	for network := range a.sources {
		snapshot.Sources = append(snapshot.Sources, network)
	}
	for sender := range a.senders {
		snapshot.Senders = append(snapshot.Senders, sender)
	}
	return snapshot
}
