package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/ledger"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/logger"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/store"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/store/schema"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/store/storetest"
)

func init() {
	// Initialize logger for testing
	_ = logger.Initialize(logger.Config{Debug: true})
}

const (
	admin      = domain.Address("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	partner    = domain.Address("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	alice      = domain.Address("0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB")
	bob        = domain.Address("0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb")
	controller = domain.Address("0x52908400098527886E0F7030069857D2E4169EE7")
)

// recordingPublisher captures published events
type recordingPublisher struct {
	events []domain.Event
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, event *domain.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *event)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []domain.EventType {
	types := make([]domain.EventType, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.EventType)
	}
	return types
}

// fixedClock returns a constant time
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time                  { return c.now }
func (c *fixedClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }

// stubDispatcher records the last dispatch and returns a fixed message id
type stubDispatcher struct {
	dest    domain.Network
	addr    domain.Address
	payload []byte
	calls   int
	err     error
}

func (d *stubDispatcher) Dispatch(ctx context.Context, destNetwork domain.Network, destAddress domain.Address, payload []byte) (string, error) {
	d.calls++
	d.dest = destNetwork
	d.addr = destAddress
	d.payload = payload
	if d.err != nil {
		return "", d.err
	}
	return "msg-1", nil
}

func validProfile() domain.CatProfile {
	return domain.CatProfile{
		Name:  "Whiskers",
		Breed: "Siamese",
		Image: "ipfs://Qm123",
		DOB:   time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

type fixture struct {
	ledger    *ledger.Ledger
	store     *storetest.Store
	publisher *recordingPublisher
	clock     *fixedClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := storetest.New()
	pub := &recordingPublisher{}
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	l, err := ledger.New(context.Background(), ledger.Config{
		Network: domain.NetworkEthereumMainnet,
		Admin:   admin,
	}, st, pub, clock)
	require.NoError(t, err)

	return &fixture{ledger: l, store: st, publisher: pub, clock: clock}
}

func (f *fixture) mint(t *testing.T, owner domain.Address) domain.TokenID {
	t.Helper()
	id, err := f.ledger.Mint(context.Background(), partner, owner, validProfile())
	require.NoError(t, err)
	return id
}

func (f *fixture) addPartner(t *testing.T) {
	t.Helper()
	require.NoError(t, f.ledger.AddPartner(context.Background(), admin, partner))
}

func TestAddPartner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.AddPartner(ctx, admin, partner))
	assert.True(t, f.ledger.IsPartner(partner))
	assert.Equal(t, []domain.Address{partner}, f.ledger.Partners())

	// write-through
	assert.True(t, f.store.Partners[partner.String()])
}

func TestAddPartner_AdminOnly(t *testing.T) {
	f := newFixture(t)

	err := f.ledger.AddPartner(context.Background(), alice, partner)
	assert.Equal(t, domain.ErrCodeAccessDenied, domain.CodeOf(err))
	assert.False(t, f.ledger.IsPartner(partner))
}

func TestMint(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)

	id, err := f.ledger.Mint(context.Background(), partner, alice, validProfile())
	require.NoError(t, err)
	assert.Equal(t, domain.TokenID(0), id)
	assert.Equal(t, domain.TokenID(1), f.ledger.NextTokenID())

	doc, err := f.ledger.TokenMetadata(id)
	require.NoError(t, err)
	assert.Equal(t, "Whiskers", doc.Name)
	assert.Equal(t, "Siamese", doc.Breed)
	assert.Equal(t, alice, doc.Owner)
	assert.Equal(t, partner, doc.ShopPartner)
	assert.Empty(t, doc.PreviousOwners)
	assert.Equal(t, f.clock.now.Sub(doc.DOB), doc.Age)

	assert.Equal(t, []domain.TokenID{id}, f.ledger.TokensOf(alice))
	assert.Equal(t, []domain.EventType{domain.EventTypeMint}, f.publisher.types())
	require.NoError(t, f.ledger.CheckIndex())

	// persisted row and counter
	assert.NotNil(t, f.store.Tokens[0])
	assert.Equal(t, uint64(1), f.store.Counters[store.CounterTokenID])
}

func TestMint_Denied(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		caller domain.Address
		owner  domain.Address
		tweak  func(p *domain.CatProfile)
		code   domain.ErrorCode
	}{
		{
			name:   "non-partner caller",
			caller: alice,
			owner:  bob,
			code:   domain.ErrCodeAccessDenied,
		},
		{
			name:   "partner as recipient",
			caller: partner,
			owner:  partner,
			code:   domain.ErrCodeInvalidArgument,
		},
		{
			name:   "zero owner",
			caller: partner,
			owner:  "0x0000000000000000000000000000000000000000",
			code:   domain.ErrCodeInvalidArgument,
		},
		{
			name:   "incomplete profile",
			caller: partner,
			owner:  alice,
			tweak:  func(p *domain.CatProfile) { p.Name = "" },
			code:   domain.ErrCodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := validProfile()
			if tt.tweak != nil {
				tt.tweak(&profile)
			}
			_, err := f.ledger.Mint(ctx, tt.caller, tt.owner, profile)
			assert.Equal(t, tt.code, domain.CodeOf(err))
		})
	}

	// nothing minted
	assert.Equal(t, domain.TokenID(0), f.ledger.NextTokenID())
	assert.Empty(t, f.publisher.events)
}

func TestMint_PersistFailureLeavesMemoryUntouched(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)

	f.store.FailNextWrite = assert.AnError
	_, err := f.ledger.Mint(context.Background(), partner, alice, validProfile())
	assert.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, domain.TokenID(0), f.ledger.NextTokenID())
	assert.Empty(t, f.ledger.TokensOf(alice))
	assert.Empty(t, f.publisher.events)
	require.NoError(t, f.ledger.CheckIndex())
}

func TestApprove(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	id := f.mint(t, alice)
	ctx := context.Background()

	// only the owner may approve
	err := f.ledger.Approve(ctx, bob, bob, id)
	assert.Equal(t, domain.ErrCodeAccessDenied, domain.CodeOf(err))

	err = f.ledger.Approve(ctx, alice, bob, id)
	require.NoError(t, err)

	// unknown token
	err = f.ledger.Approve(ctx, alice, bob, domain.TokenID(99))
	assert.Equal(t, domain.ErrCodeNotFound, domain.CodeOf(err))

	// invalid recipient
	err = f.ledger.Approve(ctx, alice, "0x0000000000000000000000000000000000000000", id)
	assert.Equal(t, domain.ErrCodeInvalidArgument, domain.CodeOf(err))
}

func TestTransfer(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	id := f.mint(t, alice)
	ctx := context.Background()

	require.NoError(t, f.ledger.Approve(ctx, alice, bob, id))
	require.NoError(t, f.ledger.Transfer(ctx, partner, alice, bob, id))

	doc, err := f.ledger.TokenMetadata(id)
	require.NoError(t, err)
	assert.Equal(t, bob, doc.Owner)
	assert.Equal(t, []domain.Address{alice}, doc.PreviousOwners)
	assert.Equal(t, partner, doc.ShopPartner)

	assert.Empty(t, f.ledger.TokensOf(alice))
	assert.Equal(t, []domain.TokenID{id}, f.ledger.TokensOf(bob))
	require.NoError(t, f.ledger.CheckIndex())

	assert.Equal(t, []domain.EventType{domain.EventTypeMint, domain.EventTypeTransfer}, f.publisher.types())
}

func TestTransfer_ApprovalConsumed(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	id := f.mint(t, alice)
	ctx := context.Background()

	require.NoError(t, f.ledger.Approve(ctx, alice, bob, id))
	require.NoError(t, f.ledger.Transfer(ctx, partner, alice, bob, id))

	// the approval was single-use; moving the token back needs a fresh one
	err := f.ledger.Transfer(ctx, partner, bob, alice, id)
	assert.Equal(t, domain.ErrCodeInvalidArgument, domain.CodeOf(err))

	require.NoError(t, f.ledger.Approve(ctx, bob, alice, id))
	require.NoError(t, f.ledger.Transfer(ctx, partner, bob, alice, id))

	doc, err := f.ledger.TokenMetadata(id)
	require.NoError(t, err)
	assert.Equal(t, alice, doc.Owner)
	assert.Equal(t, []domain.Address{alice, bob}, doc.PreviousOwners)
}

func TestTransfer_ApprovalReplaced(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	id := f.mint(t, alice)
	ctx := context.Background()

	require.NoError(t, f.ledger.Approve(ctx, alice, bob, id))
	// a later approval replaces the earlier one
	require.NoError(t, f.ledger.Approve(ctx, alice, admin, id))

	err := f.ledger.Transfer(ctx, partner, alice, bob, id)
	assert.Equal(t, domain.ErrCodeInvalidArgument, domain.CodeOf(err))

	require.NoError(t, f.ledger.Transfer(ctx, partner, alice, admin, id))
}

func TestTransfer_Denied(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	id := f.mint(t, alice)
	ctx := context.Background()
	require.NoError(t, f.ledger.Approve(ctx, alice, bob, id))

	tests := []struct {
		name   string
		caller domain.Address
		from   domain.Address
		to     domain.Address
		token  domain.TokenID
		code   domain.ErrorCode
	}{
		{
			name:   "non-partner caller",
			caller: alice,
			from:   alice,
			to:     bob,
			token:  id,
			code:   domain.ErrCodeAccessDenied,
		},
		{
			name:   "unknown token",
			caller: partner,
			from:   alice,
			to:     bob,
			token:  domain.TokenID(99),
			code:   domain.ErrCodeNotFound,
		},
		{
			name:   "wrong current owner",
			caller: partner,
			from:   bob,
			to:     alice,
			token:  id,
			code:   domain.ErrCodeInvalidArgument,
		},
		{
			name:   "self transfer",
			caller: partner,
			from:   alice,
			to:     alice,
			token:  id,
			code:   domain.ErrCodeInvalidArgument,
		},
		{
			name:   "no approval for recipient",
			caller: partner,
			from:   alice,
			to:     admin,
			token:  id,
			code:   domain.ErrCodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.ledger.Transfer(ctx, tt.caller, tt.from, tt.to, tt.token)
			assert.Equal(t, tt.code, domain.CodeOf(err))
		})
	}

	// the token never moved
	doc, err := f.ledger.TokenMetadata(id)
	require.NoError(t, err)
	assert.Equal(t, alice, doc.Owner)
	require.NoError(t, f.ledger.CheckIndex())
}

func TestSwapAndPop(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	ctx := context.Background()

	// alice holds three tokens; removing the middle one must keep the other
	// two enumerable with a dense index
	first := f.mint(t, alice)
	second := f.mint(t, alice)
	third := f.mint(t, alice)

	require.NoError(t, f.ledger.Approve(ctx, alice, bob, second))
	require.NoError(t, f.ledger.Transfer(ctx, partner, alice, bob, second))

	assert.ElementsMatch(t, []domain.TokenID{first, third}, f.ledger.TokensOf(alice))
	assert.Equal(t, []domain.TokenID{second}, f.ledger.TokensOf(bob))
	require.NoError(t, f.ledger.CheckIndex())

	// removing the last slot token exercises the no-move path
	require.NoError(t, f.ledger.Approve(ctx, alice, bob, third))
	require.NoError(t, f.ledger.Transfer(ctx, partner, alice, bob, third))

	assert.Equal(t, []domain.TokenID{first}, f.ledger.TokensOf(alice))
	assert.ElementsMatch(t, []domain.TokenID{second, third}, f.ledger.TokensOf(bob))
	require.NoError(t, f.ledger.CheckIndex())
}

func TestInitiateBridge(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	id := f.mint(t, alice)
	ctx := context.Background()

	dispatcher := &stubDispatcher{}
	f.ledger.BindDispatcher(dispatcher, controller)

	messageID, err := f.ledger.InitiateBridge(ctx, alice, id, domain.NetworkBaseMainnet, controller)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", messageID)
	assert.Equal(t, 1, dispatcher.calls)
	assert.Equal(t, domain.NetworkBaseMainnet, dispatcher.dest)

	// the token is burned locally
	_, err = f.ledger.TokenMetadata(id)
	assert.Equal(t, domain.ErrCodeNotFound, domain.CodeOf(err))
	assert.Empty(t, f.ledger.TokensOf(alice))
	assert.Nil(t, f.store.Tokens[uint64(id)])
	require.NoError(t, f.ledger.CheckIndex())

	// the dispatched payload decodes back to the burned record
	msg, err := domain.DecodeBridgeMessage(dispatcher.payload)
	require.NoError(t, err)
	assert.Equal(t, alice, msg.Owner)
	assert.Equal(t, "Whiskers", msg.Name)
	assert.Equal(t, partner, msg.ShopPartner)

	assert.Equal(t, []domain.EventType{domain.EventTypeMint, domain.EventTypeBridgeRequest}, f.publisher.types())

	// ids are never reused after a burn
	next := f.mint(t, alice)
	assert.Equal(t, id+1, next)
}

func TestInitiateBridge_Denied(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	id := f.mint(t, alice)
	ctx := context.Background()

	// no controller bound yet
	_, err := f.ledger.InitiateBridge(ctx, alice, id, domain.NetworkBaseMainnet, controller)
	assert.Equal(t, domain.ErrCodeInvalidArgument, domain.CodeOf(err))

	f.ledger.BindDispatcher(&stubDispatcher{}, controller)

	_, err = f.ledger.InitiateBridge(ctx, bob, id, domain.NetworkBaseMainnet, controller)
	assert.Equal(t, domain.ErrCodeAccessDenied, domain.CodeOf(err))

	_, err = f.ledger.InitiateBridge(ctx, alice, domain.TokenID(99), domain.NetworkBaseMainnet, controller)
	assert.Equal(t, domain.ErrCodeNotFound, domain.CodeOf(err))

	// the token survived every rejected attempt
	doc, err := f.ledger.TokenMetadata(id)
	require.NoError(t, err)
	assert.Equal(t, alice, doc.Owner)
}

func TestInitiateBridge_DispatchFailureAfterBurn(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	id := f.mint(t, alice)
	ctx := context.Background()

	dispatcher := &stubDispatcher{err: assert.AnError}
	f.ledger.BindDispatcher(dispatcher, controller)

	_, err := f.ledger.InitiateBridge(ctx, alice, id, domain.NetworkBaseMainnet, controller)
	require.Error(t, err)
	assert.ErrorContains(t, err, "burned but dispatch failed")
	assert.ErrorIs(t, err, assert.AnError)

	// the burn stands even though dispatch failed
	_, err = f.ledger.TokenMetadata(id)
	assert.Equal(t, domain.ErrCodeNotFound, domain.CodeOf(err))
	require.NoError(t, f.ledger.CheckIndex())
}

func TestAdmitBridged(t *testing.T) {
	f := newFixture(t)
	f.ledger.BindDispatcher(&stubDispatcher{}, controller)
	ctx := context.Background()

	msg := domain.BridgeMessage{
		Owner:       alice,
		Name:        "Whiskers",
		Breed:       "Siamese",
		Image:       "ipfs://Qm123",
		DOB:         time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		ShopPartner: partner,
	}
	payload, err := msg.Encode()
	require.NoError(t, err)

	id, err := f.ledger.AdmitBridged(ctx, controller, payload)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenID(0), id)

	doc, err := f.ledger.TokenMetadata(id)
	require.NoError(t, err)
	assert.Equal(t, alice, doc.Owner)
	assert.Equal(t, partner, doc.ShopPartner)
	assert.Equal(t, "Whiskers", doc.Name)
	// provenance starts empty on the destination ledger
	assert.Empty(t, doc.PreviousOwners)

	assert.Equal(t, []domain.TokenID{id}, f.ledger.TokensOf(alice))
	assert.Equal(t, []domain.EventType{domain.EventTypeReMint}, f.publisher.types())
	require.NoError(t, f.ledger.CheckIndex())
}

func TestAdmitBridged_ControllerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payload, err := domain.BridgeMessage{
		Owner:       alice,
		Name:        "Whiskers",
		Breed:       "Siamese",
		DOB:         time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		ShopPartner: partner,
	}.Encode()
	require.NoError(t, err)

	// no controller bound: nobody holds the capability
	_, err = f.ledger.AdmitBridged(ctx, controller, payload)
	assert.Equal(t, domain.ErrCodeAccessDenied, domain.CodeOf(err))

	f.ledger.BindDispatcher(&stubDispatcher{}, controller)

	_, err = f.ledger.AdmitBridged(ctx, alice, payload)
	assert.Equal(t, domain.ErrCodeAccessDenied, domain.CodeOf(err))

	_, err = f.ledger.AdmitBridged(ctx, controller, []byte("garbage"))
	assert.Equal(t, domain.ErrCodeInvalidArgument, domain.CodeOf(err))
}

func TestRehydrate(t *testing.T) {
	st := storetest.New()
	st.Partners[partner.String()] = true
	st.Counters[store.CounterTokenID] = 5
	st.Tokens[2] = &schema.Token{
		ID: 2, Name: "Whiskers", Breed: "Siamese",
		DOB: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		Owner: alice.String(), ShopPartner: partner.String(),
		OwnerIndexSlot: 0, PreviousOwners: datatypes.JSON([]byte(`["` + bob.String() + `"]`)),
	}
	st.Tokens[4] = &schema.Token{
		ID: 4, Name: "Mittens", Breed: "Persian",
		DOB: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Owner: alice.String(), ShopPartner: partner.String(),
		OwnerIndexSlot: 1,
	}

	l, err := ledger.New(context.Background(), ledger.Config{
		Network: domain.NetworkEthereumMainnet,
		Admin:   admin,
	}, st, &recordingPublisher{}, &fixedClock{now: time.Now()})
	require.NoError(t, err)

	assert.Equal(t, []domain.TokenID{2, 4}, l.TokensOf(alice))
	assert.True(t, l.IsPartner(partner))
	assert.Equal(t, domain.TokenID(5), l.NextTokenID())
	require.NoError(t, l.CheckIndex())

	doc, err := l.TokenMetadata(2)
	require.NoError(t, err)
	assert.Equal(t, []domain.Address{bob}, doc.PreviousOwners)
}

func TestRehydrate_CounterNeverMovesBackwards(t *testing.T) {
	st := storetest.New()
	// counter row lagged behind the highest persisted id
	st.Counters[store.CounterTokenID] = 1
	st.Tokens[3] = &schema.Token{
		ID: 3, Name: "Whiskers", Breed: "Siamese",
		DOB:   time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		Owner: alice.String(), ShopPartner: partner.String(),
	}

	l, err := ledger.New(context.Background(), ledger.Config{
		Network: domain.NetworkEthereumMainnet,
		Admin:   admin,
	}, st, &recordingPublisher{}, &fixedClock{now: time.Now()})
	require.NoError(t, err)

	assert.Equal(t, domain.TokenID(4), l.NextTokenID())
}

func TestRehydrate_CorruptIndexRejected(t *testing.T) {
	st := storetest.New()
	st.Tokens[0] = &schema.Token{
		ID: 0, Name: "Whiskers", Breed: "Siamese",
		DOB:   time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		Owner: alice.String(), ShopPartner: partner.String(),
		OwnerIndexSlot: 3, // no dense index can place the only token at slot 3
	}

	_, err := ledger.New(context.Background(), ledger.Config{
		Network: domain.NetworkEthereumMainnet,
		Admin:   admin,
	}, st, &recordingPublisher{}, &fixedClock{now: time.Now()})
	assert.ErrorContains(t, err, "corrupt owner index")
}

func TestPublishFailureNeverAbortsOperation(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	f.publisher.err = assert.AnError

	id, err := f.ledger.Mint(context.Background(), partner, alice, validProfile())
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenID{id}, f.ledger.TokensOf(alice))
}

func TestOperationSequenceKeepsIndexConsistent(t *testing.T) {
	f := newFixture(t)
	f.addPartner(t)
	ctx := context.Background()
	f.ledger.BindDispatcher(&stubDispatcher{}, controller)

	owners := []domain.Address{alice, bob}
	var ids []domain.TokenID
	for i := 0; i < 6; i++ {
		ids = append(ids, f.mint(t, owners[i%2]))
	}
	require.NoError(t, f.ledger.CheckIndex())

	// shuffle ownership around
	require.NoError(t, f.ledger.Approve(ctx, alice, bob, ids[0]))
	require.NoError(t, f.ledger.Transfer(ctx, partner, alice, bob, ids[0]))
	require.NoError(t, f.ledger.CheckIndex())

	require.NoError(t, f.ledger.Approve(ctx, bob, alice, ids[3]))
	require.NoError(t, f.ledger.Transfer(ctx, partner, bob, alice, ids[3]))
	require.NoError(t, f.ledger.CheckIndex())

	// burn one from the middle of each owner's index
	_, err := f.ledger.InitiateBridge(ctx, bob, ids[0], domain.NetworkBaseMainnet, controller)
	require.NoError(t, err)
	require.NoError(t, f.ledger.CheckIndex())

	_, err = f.ledger.InitiateBridge(ctx, alice, ids[2], domain.NetworkBaseMainnet, controller)
	require.NoError(t, err)
	require.NoError(t, f.ledger.CheckIndex())

	// every surviving token is still enumerable exactly once
	total := len(f.ledger.TokensOf(alice)) + len(f.ledger.TokensOf(bob))
	assert.Equal(t, 4, total)
}
