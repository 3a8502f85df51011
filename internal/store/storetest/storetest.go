// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/store"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/store/schema"
)

// Store is an in-memory store.Store. All state is exported so tests can seed
// and inspect it directly.
type Store struct {
	mu sync.Mutex

	Tokens     map[uint64]*schema.Token
	Partners   map[string]bool
	Counters   map[string]uint64
	Provenance []schema.ProvenanceEvent
	Receipts   map[string]*schema.BridgeReceipt

	// FailNextWrite makes the next token write fail with this error
	FailNextWrite error
	// FailNextReceiptWrite makes the next bridge receipt write fail with this error
	FailNextReceiptWrite error
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		Tokens:   make(map[uint64]*schema.Token),
		Partners: make(map[string]bool),
		Counters: make(map[string]uint64),
		Receipts: make(map[string]*schema.BridgeReceipt),
	}
}

// Transaction runs fn against the store itself; there is no rollback, tests
// rely on write failures happening before any mutation
func (s *Store) Transaction(ctx context.Context, fn func(store.Store) error) error {
	return fn(s)
}

func (s *Store) SaveToken(ctx context.Context, token *schema.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailNextWrite; err != nil {
		s.FailNextWrite = nil
		return err
	}
	saved := *token
	s.Tokens[token.ID] = &saved
	return nil
}

func (s *Store) DeleteToken(ctx context.Context, tokenID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailNextWrite; err != nil {
		s.FailNextWrite = nil
		return err
	}
	delete(s.Tokens, tokenID)
	return nil
}

func (s *Store) GetToken(ctx context.Context, tokenID uint64) (*schema.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Tokens[tokenID], nil
}

// ListLiveTokens mirrors the production query's owner, owner_index_slot ordering
func (s *Store) ListLiveTokens(ctx context.Context) ([]schema.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]schema.Token, 0, len(s.Tokens))
	for _, token := range s.Tokens {
		rows = append(rows, *token)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Owner != rows[j].Owner {
			return rows[i].Owner < rows[j].Owner
		}
		return rows[i].OwnerIndexSlot < rows[j].OwnerIndexSlot
	})
	return rows, nil
}

func (s *Store) AddPartner(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Partners[address] = true
	return nil
}

func (s *Store) ListPartners(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addresses := make([]string, 0, len(s.Partners))
	for addr := range s.Partners {
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

func (s *Store) AppendProvenanceEvent(ctx context.Context, event *schema.ProvenanceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Provenance = append(s.Provenance, *event)
	return nil
}

func (s *Store) ListProvenanceEvents(ctx context.Context, tokenID uint64) ([]schema.ProvenanceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []schema.ProvenanceEvent
	for _, event := range s.Provenance {
		if event.TokenID == tokenID {
			events = append(events, event)
		}
	}
	return events, nil
}

func (s *Store) GetCounter(ctx context.Context, name string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Counters[name], nil
}

func (s *Store) SetCounter(ctx context.Context, name string, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Counters[name] = value
	return nil
}

func (s *Store) HasBridgeReceipt(ctx context.Context, messageID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Receipts[messageID]
	return ok, nil
}

func (s *Store) SaveBridgeReceipt(ctx context.Context, receipt *schema.BridgeReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailNextReceiptWrite; err != nil {
		s.FailNextReceiptWrite = nil
		return err
	}
	saved := *receipt
	s.Receipts[receipt.MessageID] = &saved
	return nil
}

func (s *Store) DeleteBridgeReceipt(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Receipts, messageID)
	return nil
}
