// Package ledger implements the ownership ledger: per-token records, per-owner
// token indexes, and the mint/transfer/bridge state machine.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/adapter"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/logger"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/messaging"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/store"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/store/schema"
)

// Config holds the configuration for the ownership ledger
type Config struct {
	// Network is the network identifier of this deployment
	Network domain.Network
	// Admin is the registry administrator allowed to authorize partners
	Admin domain.Address
}

// Dispatcher is the outbound half of the bridge controller, consumed by the
// ledger when an owner bridges a token out
type Dispatcher interface {
	// Dispatch sends a serialized bridge payload towards the destination
	// network and returns the relay-assigned message id
	Dispatch(ctx context.Context, destNetwork domain.Network, destAddress domain.Address, payload []byte) (string, error)
}

// MetadataDocument is the read-surface view of a token
type MetadataDocument struct {
	TokenID        domain.TokenID   `json:"token_id"`
	Name           string           `json:"name"`
	Breed          string           `json:"breed"`
	Image          string           `json:"image"`
	DOB            time.Time        `json:"dob"`
	Age            time.Duration    `json:"age"`
	Owner          domain.Address   `json:"owner"`
	ShopPartner    domain.Address   `json:"shop_partner"`
	PreviousOwners []domain.Address `json:"previous_owners"`
}

// Ledger maintains the authoritative in-memory token state of one registry
// deployment, writing through to the store. A single mutex serializes every
// operation, so each runs as an isolated unit of work and no operation ever
// observes another's partial state.
type Ledger struct {
	mu         sync.Mutex
	cfg        Config
	store      store.Store
	publisher  messaging.Publisher
	clock      adapter.Clock
	dispatcher Dispatcher
	controller domain.Address

	records    map[domain.TokenID]*domain.TokenRecord
	ownerIndex map[domain.Address][]domain.TokenID
	approvals  map[domain.TokenID]domain.Address
	partners   map[domain.Address]bool
	nextID     domain.TokenID
}

// New creates a ledger rehydrated from the store
func New(ctx context.Context, cfg Config, st store.Store, pub messaging.Publisher, clock adapter.Clock) (*Ledger, error) {
	l := &Ledger{
		cfg:        cfg,
		store:      st,
		publisher:  pub,
		clock:      clock,
		records:    make(map[domain.TokenID]*domain.TokenRecord),
		ownerIndex: make(map[domain.Address][]domain.TokenID),
		approvals:  make(map[domain.TokenID]domain.Address),
		partners:   make(map[domain.Address]bool),
	}

	if err := l.rehydrate(ctx); err != nil {
		return nil, err
	}

	return l, nil
}

// rehydrate rebuilds in-memory state from persisted rows
func (l *Ledger) rehydrate(ctx context.Context) error {
	tokens, err := l.store.ListLiveTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to rehydrate tokens: %w", err)
	}

	var maxID domain.TokenID
	for i := range tokens {
		row := &tokens[i]
		rec := recordFromRow(row)

		owner := rec.Owner
		if rec.OwnerIndexSlot != len(l.ownerIndex[owner]) {
			return fmt.Errorf("corrupt owner index: token %d has slot %d, expected %d",
				row.ID, rec.OwnerIndexSlot, len(l.ownerIndex[owner]))
		}

		id := domain.TokenID(row.ID)
		l.records[id] = rec
		l.ownerIndex[owner] = append(l.ownerIndex[owner], id)
		if id >= maxID {
			maxID = id + 1
		}
	}

	partners, err := l.store.ListPartners(ctx)
	if err != nil {
		return fmt.Errorf("failed to rehydrate partners: %w", err)
	}
	for _, addr := range partners {
		l.partners[domain.Address(addr)] = true
	}

	counter, err := l.store.GetCounter(ctx, store.CounterTokenID)
	if err != nil {
		return fmt.Errorf("failed to rehydrate counter: %w", err)
	}
	l.nextID = domain.TokenID(counter)
	if maxID > l.nextID {
		// ids are never reused, even if the counter row lagged behind
		l.nextID = maxID
	}

	return nil
}

// BindDispatcher attaches the bridge controller's outbound half.
// Must be called before any bridge operation; kept separate from New because
// the controller itself needs a ledger handle first.
func (l *Ledger) BindDispatcher(d Dispatcher, controller domain.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dispatcher = d
	l.controller = controller.Normalized()
}

// AddPartner authorizes a partner shop. Restricted to the registry admin.
func (l *Ledger) AddPartner(ctx context.Context, caller, partner domain.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller.Normalized() != l.cfg.Admin.Normalized() {
		return domain.NewAccessDeniedError("caller %s is not the registry administrator", caller)
	}
	if !partner.Valid() {
		return domain.NewInvalidArgumentError("invalid partner address %q", partner)
	}

	partner = partner.Normalized()
	if err := l.store.AddPartner(ctx, partner.String()); err != nil {
		return err
	}
	l.partners[partner] = true
	return nil
}

// Mint creates a new token for newOwner. Restricted to authorized partners;
// partners themselves cannot receive tokens meant for circulation.
func (l *Ledger) Mint(ctx context.Context, caller, newOwner domain.Address, profile domain.CatProfile) (domain.TokenID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	caller = caller.Normalized()
	newOwner = newOwner.Normalized()

	if !l.partners[caller] {
		return 0, domain.NewAccessDeniedError("caller %s is not an authorized partner", caller)
	}
	if !newOwner.Valid() {
		return 0, domain.NewInvalidArgumentError("invalid owner address %q", newOwner)
	}
	if l.partners[newOwner] {
		return 0, domain.NewInvalidArgumentError("partner %s cannot receive minted tokens", newOwner)
	}
	if !profile.Valid() {
		return 0, domain.NewInvalidArgumentError("incomplete cat profile")
	}

	id := l.nextID
	rec := &domain.TokenRecord{
		Profile:        profile,
		Owner:          newOwner,
		ShopPartner:    caller,
		PreviousOwners: nil,
		OwnerIndexSlot: len(l.ownerIndex[newOwner]),
	}

	err := l.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.SaveToken(ctx, rowFromRecord(id, rec)); err != nil {
			return err
		}
		if err := tx.SetCounter(ctx, store.CounterTokenID, uint64(id)+1); err != nil {
			return err
		}
		return tx.AppendProvenanceEvent(ctx, &schema.ProvenanceEvent{
			TokenID:   uint64(id),
			EventType: schema.ProvenanceEventMint,
			ToAddress: newOwner.String(),
			Partner:   caller.String(),
		})
	})
	if err != nil {
		return 0, err
	}

	l.records[id] = rec
	l.ownerIndex[newOwner] = append(l.ownerIndex[newOwner], id)
	l.nextID = id + 1

	l.emit(ctx, &domain.Event{
		EventType: domain.EventTypeMint,
		TokenID:   &id,
		Owner:     &newOwner,
		Partner:   &caller,
	})

	return id, nil
}

// Approve grants a one-time, per-token transfer approval to a recipient.
// Only the current owner may approve, and a later approval replaces an
// earlier one.
func (l *Ledger) Approve(ctx context.Context, caller, to domain.Address, id domain.TokenID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return domain.NewNotFoundError("token %d does not exist", id)
	}
	if caller.Normalized() != rec.Owner {
		return domain.NewAccessDeniedError("caller %s does not own token %d", caller, id)
	}
	if !to.Valid() {
		return domain.NewInvalidArgumentError("invalid recipient address %q", to)
	}

	l.approvals[id] = to.Normalized()
	return nil
}

// Transfer moves a token between owners. Transfers are partner-mediated:
// only an authorized partner may call, the token must belong to from, and
// to must hold a matching single-use approval, consumed on success.
func (l *Ledger) Transfer(ctx context.Context, caller, from, to domain.Address, id domain.TokenID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	caller = caller.Normalized()
	from = from.Normalized()
	to = to.Normalized()

	if !l.partners[caller] {
		return domain.NewAccessDeniedError("caller %s is not an authorized partner", caller)
	}

	rec, ok := l.records[id]
	if !ok {
		return domain.NewNotFoundError("token %d does not exist", id)
	}
	if rec.Owner != from {
		return domain.NewInvalidArgumentError("token %d is not owned by %s", id, from)
	}
	if !to.Valid() {
		return domain.NewInvalidArgumentError("invalid recipient address %q", to)
	}
	if to == from {
		return domain.NewInvalidArgumentError("token %d is already owned by %s", id, to)
	}
	if l.approvals[id] != to {
		return domain.NewInvalidArgumentError("recipient %s holds no approval for token %d", to, id)
	}

	// Compute the post-transfer state before touching anything, so a failed
	// persist leaves memory untouched.
	updated := *rec
	updated.Owner = to
	updated.PreviousOwners = append(append([]domain.Address{}, rec.PreviousOwners...), from)
	updated.OwnerIndexSlot = len(l.ownerIndex[to])

	movedID, movedRec := l.planRemoval(id, rec)

	err := l.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.SaveToken(ctx, rowFromRecord(id, &updated)); err != nil {
			return err
		}
		if movedRec != nil {
			if err := tx.SaveToken(ctx, rowFromRecord(movedID, movedRec)); err != nil {
				return err
			}
		}
		return tx.AppendProvenanceEvent(ctx, &schema.ProvenanceEvent{
			TokenID:     uint64(id),
			EventType:   schema.ProvenanceEventTransfer,
			FromAddress: from.String(),
			ToAddress:   to.String(),
			Partner:     caller.String(),
		})
	})
	if err != nil {
		return err
	}

	l.commitRemoval(from, rec.OwnerIndexSlot, movedID, movedRec)
	l.records[id] = &updated
	l.ownerIndex[to] = append(l.ownerIndex[to], id)
	delete(l.approvals, id)

	l.emit(ctx, &domain.Event{
		EventType: domain.EventTypeTransfer,
		TokenID:   &id,
		From:      &from,
		To:        &to,
		Partner:   &caller,
	})

	return nil
}

// InitiateBridge burns a token locally and hands its serialized record to the
// bridge controller for dispatch to another deployment. Only the current
// owner may call. The burn completes before dispatch is attempted: a dispatch
// failure after a successful burn leaves the token destroyed with no remote
// equivalent, which is the accepted failure mode of this design.
func (l *Ledger) InitiateBridge(ctx context.Context, caller domain.Address, id domain.TokenID, destNetwork domain.Network, destAddress domain.Address) (string, error) {
	l.mu.Lock()

	rec, ok := l.records[id]
	if !ok {
		l.mu.Unlock()
		return "", domain.NewNotFoundError("token %d does not exist", id)
	}
	if caller.Normalized() != rec.Owner {
		l.mu.Unlock()
		return "", domain.NewAccessDeniedError("caller %s does not own token %d", caller, id)
	}
	if l.dispatcher == nil {
		l.mu.Unlock()
		return "", domain.NewInvalidArgumentError("no bridge controller bound to this ledger")
	}

	owner := rec.Owner
	msg := domain.BridgeMessage{
		Owner:       owner,
		Name:        rec.Profile.Name,
		Breed:       rec.Profile.Breed,
		Image:       rec.Profile.Image,
		DOB:         rec.Profile.DOB,
		ShopPartner: rec.ShopPartner,
	}
	payload, err := msg.Encode()
	if err != nil {
		l.mu.Unlock()
		return "", err
	}

	movedID, movedRec := l.planRemoval(id, rec)

	err = l.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.DeleteToken(ctx, uint64(id)); err != nil {
			return err
		}
		if movedRec != nil {
			if err := tx.SaveToken(ctx, rowFromRecord(movedID, movedRec)); err != nil {
				return err
			}
		}
		return tx.AppendProvenanceEvent(ctx, &schema.ProvenanceEvent{
			TokenID:     uint64(id),
			EventType:   schema.ProvenanceEventBridge,
			FromAddress: owner.String(),
		})
	})
	if err != nil {
		l.mu.Unlock()
		return "", err
	}

	l.commitRemoval(owner, rec.OwnerIndexSlot, movedID, movedRec)
	delete(l.records, id)
	delete(l.approvals, id)

	l.emit(ctx, &domain.Event{
		EventType:   domain.EventTypeBridgeRequest,
		TokenID:     &id,
		Owner:       &owner,
		DestNetwork: destNetwork,
	})

	// Release the ledger before dispatching: the burn is already final and the
	// relay call must not hold every other operation hostage.
	l.mu.Unlock()

	messageID, err := l.dispatcher.Dispatch(ctx, destNetwork, destAddress, payload)
	if err != nil {
		logger.Error(err,
			zap.Uint64("token_id", uint64(id)),
			zap.String("dest_network", destNetwork.String()),
			zap.ByteString("payload", payload),
		)
		return "", fmt.Errorf("token %d burned but dispatch failed: %w", id, err)
	}

	return messageID, nil
}

// AdmitBridged re-mints a token delivered from another deployment. Callable
// only by the local bridge controller.
func (l *Ledger) AdmitBridged(ctx context.Context, caller domain.Address, payload []byte) (domain.TokenID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller.Normalized() != l.controller || l.controller == "" {
		return 0, domain.NewAccessDeniedError("caller %s is not the local bridge controller", caller)
	}

	msg, err := domain.DecodeBridgeMessage(payload)
	if err != nil {
		return 0, err
	}

	id := l.nextID
	rec := &domain.TokenRecord{
		Profile:        msg.Profile(),
		Owner:          msg.Owner,
		ShopPartner:    msg.ShopPartner,
		PreviousOwners: nil,
		OwnerIndexSlot: len(l.ownerIndex[msg.Owner]),
	}

	err = l.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.SaveToken(ctx, rowFromRecord(id, rec)); err != nil {
			return err
		}
		if err := tx.SetCounter(ctx, store.CounterTokenID, uint64(id)+1); err != nil {
			return err
		}
		return tx.AppendProvenanceEvent(ctx, &schema.ProvenanceEvent{
			TokenID:   uint64(id),
			EventType: schema.ProvenanceEventReMint,
			ToAddress: msg.Owner.String(),
			Partner:   msg.ShopPartner.String(),
		})
	})
	if err != nil {
		return 0, err
	}

	l.records[id] = rec
	l.ownerIndex[msg.Owner] = append(l.ownerIndex[msg.Owner], id)
	l.nextID = id + 1

	l.emit(ctx, &domain.Event{
		EventType: domain.EventTypeReMint,
		TokenID:   &id,
		Owner:     &rec.Owner,
		Partner:   &rec.ShopPartner,
	})

	return id, nil
}

// planRemoval computes the swap-and-pop removal of a token from its owner's
// index: when the token does not sit in the last slot, the last token moves
// into its slot. Returns the moved token and its updated record, or nil when
// nothing moves. Pure computation; commitRemoval applies it.
func (l *Ledger) planRemoval(id domain.TokenID, rec *domain.TokenRecord) (domain.TokenID, *domain.TokenRecord) {
	index := l.ownerIndex[rec.Owner]
	last := len(index) - 1
	if rec.OwnerIndexSlot == last {
		return 0, nil
	}

	movedID := index[last]
	moved := *l.records[movedID]
	moved.OwnerIndexSlot = rec.OwnerIndexSlot
	return movedID, &moved
}

// commitRemoval applies a planned swap-and-pop removal to memory
func (l *Ledger) commitRemoval(owner domain.Address, slot int, movedID domain.TokenID, movedRec *domain.TokenRecord) {
	index := l.ownerIndex[owner]
	last := len(index) - 1

	if movedRec != nil {
		index[slot] = movedID
		l.records[movedID] = movedRec
	}

	index = index[:last]
	if len(index) == 0 {
		delete(l.ownerIndex, owner)
	} else {
		l.ownerIndex[owner] = index
	}
}

// TokenMetadata returns the read-surface document for a token
func (l *Ledger) TokenMetadata(id domain.TokenID) (*MetadataDocument, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return nil, domain.NewNotFoundError("token %d does not exist", id)
	}

	return &MetadataDocument{
		TokenID:        id,
		Name:           rec.Profile.Name,
		Breed:          rec.Profile.Breed,
		Image:          rec.Profile.Image,
		DOB:            rec.Profile.DOB,
		Age:            rec.Profile.Age(l.clock.Now()),
		Owner:          rec.Owner,
		ShopPartner:    rec.ShopPartner,
		PreviousOwners: append([]domain.Address{}, rec.PreviousOwners...),
	}, nil
}

// TokensOf returns the ids of every token the owner holds.
// Order carries no meaning: the enumeration is a set.
func (l *Ledger) TokensOf(owner domain.Address) []domain.TokenID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.TokenID{}, l.ownerIndex[owner.Normalized()]...)
}

// Partners returns the authorized partner shops
func (l *Ledger) Partners() []domain.Address {
	l.mu.Lock()
	defer l.mu.Unlock()

	partners := make([]domain.Address, 0, len(l.partners))
	for addr := range l.partners {
		partners = append(partners, addr)
	}
	sort.Slice(partners, func(i, j int) bool { return partners[i] < partners[j] })
	return partners
}

// IsPartner checks whether an address is an authorized partner
func (l *Ledger) IsPartner(addr domain.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.partners[addr.Normalized()]
}

// NextTokenID returns the id the ledger will assign next
func (l *Ledger) NextTokenID() domain.TokenID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextID
}

// Network returns the network identifier of this deployment
func (l *Ledger) Network() domain.Network {
	return l.cfg.Network
}

// CheckIndex verifies that every live token sits at its recorded slot in its
// owner's index and that every index is dense
func (l *Ledger) CheckIndex() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for owner, index := range l.ownerIndex {
		for slot, id := range index {
			rec, ok := l.records[id]
			if !ok {
				return fmt.Errorf("owner %s index references unknown token %d", owner, id)
			}
			if rec.Owner != owner {
				return fmt.Errorf("token %d indexed under %s but owned by %s", id, owner, rec.Owner)
			}
			if rec.OwnerIndexSlot != slot {
				return fmt.Errorf("token %d sits at slot %d but records slot %d", id, slot, rec.OwnerIndexSlot)
			}
			total++
		}
	}

	if total != len(l.records) {
		return fmt.Errorf("%d tokens recorded but %d indexed", len(l.records), total)
	}
	return nil
}

// emit publishes a registry event. Publish failures are logged and never
// abort the operation that produced them.
func (l *Ledger) emit(ctx context.Context, event *domain.Event) {
	if l.publisher == nil {
		return
	}

	event.EventID = uuid.NewString()
	event.Network = l.cfg.Network
	event.Timestamp = l.clock.Now()

	if err := l.publisher.PublishEvent(ctx, event); err != nil {
		logger.Error(err, zap.String("event_type", string(event.EventType)))
	}
}

// recordFromRow converts a persisted token row into a ledger record
func recordFromRow(row *schema.Token) *domain.TokenRecord {
	var previous []domain.Address
	if len(row.PreviousOwners) > 0 {
		// best effort: a corrupt provenance column never blocks rehydration
		_ = json.Unmarshal([]byte(row.PreviousOwners), &previous)
	}

	return &domain.TokenRecord{
		Profile: domain.CatProfile{
			Name:  row.Name,
			Breed: row.Breed,
			Image: row.Image,
			DOB:   row.DOB,
		},
		Owner:          domain.Address(row.Owner),
		ShopPartner:    domain.Address(row.ShopPartner),
		PreviousOwners: previous,
		OwnerIndexSlot: row.OwnerIndexSlot,
	}
}

// rowFromRecord converts a ledger record into its persisted form
func rowFromRecord(id domain.TokenID, rec *domain.TokenRecord) *schema.Token {
	previous, _ := json.Marshal(rec.PreviousOwners)
	return &schema.Token{
		ID:             uint64(id),
		Name:           rec.Profile.Name,
		Breed:          rec.Profile.Breed,
		Image:          rec.Profile.Image,
		DOB:            rec.Profile.DOB,
		Owner:          rec.Owner.String(),
		ShopPartner:    rec.ShopPartner.String(),
		OwnerIndexSlot: rec.OwnerIndexSlot,
		PreviousOwners: datatypes.JSON(previous),
	}
}
