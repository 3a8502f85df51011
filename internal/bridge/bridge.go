// Package bridge implements the bridge controller: it validates, encodes and
// dispatches outbound transfer messages through the relay network, and admits
// inbound ones into the local ledger.
package bridge

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/adapter"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/logger"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/messaging"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/registry"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/relay"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/store"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/store/schema"
)

// Config holds the configuration for the bridge controller
type Config struct {
	// Network is the local deployment's network identifier
	Network domain.Network
	// Address is this controller's own address; it is the sender identity on
	// outbound messages and the capability used to call the ledger's re-mint
	// entry point
	Address domain.Address
	// Owner is the controller's administrator
	Owner domain.Address
	// GasLimit is the initial destination-execution gas budget
	GasLimit uint64
}

// Admitter is the inbound half of the ownership ledger the controller drives
type Admitter interface {
	// AdmitBridged re-mints a delivered token record
	AdmitBridged(ctx context.Context, caller domain.Address, payload []byte) (domain.TokenID, error)
}

// Controller is the bridge controller of one registry deployment.
// It implements ledger.Dispatcher on the way out and relay.Receiver on the
// way in.
type Controller struct {
	mu        sync.Mutex
	cfg       Config
	allowlist registry.AllowlistRegistry
	ledger    Admitter
	relay     relay.Relay
	fees      relay.FeeAccount
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
	gasLimit  uint64
}

// New creates a bridge controller
func New(cfg Config, allowlist registry.AllowlistRegistry, admitter Admitter, rly relay.Relay, fees relay.FeeAccount, st store.Store, pub messaging.Publisher, clock adapter.Clock) *Controller {
	return &Controller{
		cfg:       cfg,
		allowlist: allowlist,
		ledger:    admitter,
		relay:     rly,
		fees:      fees,
		store:     st,
		publisher: pub,
		clock:     clock,
		gasLimit:  cfg.GasLimit,
	}
}

// Dispatch sends a bridge payload to a controller on another network.
// The destination network must be allowlisted and the controller's fee-token
// balance must cover the relay's quoted fee.
func (c *Controller) Dispatch(ctx context.Context, destNetwork domain.Network, destAddress domain.Address, payload []byte) (string, error) {
	if !c.allowlist.IsDestinationAllowed(destNetwork) {
		return "", domain.NewAccessDeniedError("destination network %s is not allowlisted", destNetwork)
	}
	if !destAddress.Valid() {
		return "", domain.NewInvalidArgumentError("invalid destination address %q", destAddress)
	}

	msg := relay.WireMessage{
		Receiver:       []byte(destAddress.Normalized()),
		Payload:        payload,
		TokenTransfers: []relay.TokenTransfer{},
		ExtraArgs:      relay.ExtraArgs{GasLimit: c.GasLimit()},
		FeeToken:       c.fees.Token(),
	}

	fee, err := c.relay.QuoteFee(ctx, destNetwork, msg)
	if err != nil {
		return "", err
	}
	if balance := c.fees.Balance(); balance < fee {
		return "", domain.NewInsufficientFeeError(balance, fee)
	}

	messageID, err := c.relay.Send(ctx, destNetwork, msg)
	if err != nil {
		return "", err
	}

	if err := c.fees.Debit(fee); err != nil {
		// the message is already on the relay; surface the accounting failure
		// but do not pretend the dispatch failed
		logger.Error(err, zap.String("message_id", messageID))
	}

	if err := c.store.SaveBridgeReceipt(ctx, &schema.BridgeReceipt{
		MessageID:    messageID,
		Direction:    schema.BridgeDirectionOutbound,
		Network:      destNetwork.String(),
		Counterparty: destAddress.Normalized().String(),
		Payload:      datatypes.JSON(payload),
		Fee:          fee,
	}); err != nil {
		logger.Error(err, zap.String("message_id", messageID))
	}

	feeToken := c.fees.Token()
	receiver := destAddress.Normalized()
	c.emit(ctx, &domain.Event{
		EventType:   domain.EventTypeMessageSent,
		MessageID:   messageID,
		DestNetwork: destNetwork,
		Receiver:    &receiver,
		FeeToken:    &feeToken,
		Fee:         &fee,
		Payload:     payload,
	})

	return messageID, nil
}

// OnReceive is the single entry point the relay invokes on delivery.
// Both checks fail closed: an unknown source network or sender rejects the
// message outright, with no retry at this layer. Redelivered message ids are
// admitted exactly once.
func (c *Controller) OnReceive(ctx context.Context, src domain.Network, sender domain.Address, messageID string, payload []byte) error {
	if !c.allowlist.IsSourceAllowed(src) {
		return domain.NewAccessDeniedError("source network %s is not allowlisted", src)
	}
	if !c.allowlist.IsSenderAllowed(sender) {
		return domain.NewAccessDeniedError("sender %s is not allowlisted", sender)
	}

	// Serialize admissions so the seen-message check and the receipt write
	// act as one unit against relay redelivery.
	c.mu.Lock()
	defer c.mu.Unlock()

	seen, err := c.store.HasBridgeReceipt(ctx, messageID)
	if err != nil {
		return err
	}
	if seen {
		logger.Warn("Ignoring redelivered bridge message", zap.String("message_id", messageID))
		return nil
	}

	// Record the receipt before admitting: a receipt write that only happens
	// after the mint leaves a window where a crash or a failed write lets a
	// redelivery mint the same token twice. With this ordering the failure
	// mode is a rejected delivery the relay retries, never a duplicate.
	if err := c.store.SaveBridgeReceipt(ctx, &schema.BridgeReceipt{
		MessageID:    messageID,
		Direction:    schema.BridgeDirectionInbound,
		Network:      src.String(),
		Counterparty: sender.Normalized().String(),
		Payload:      datatypes.JSON(payload),
	}); err != nil {
		return err
	}

	tokenID, err := c.ledger.AdmitBridged(ctx, c.cfg.Address, payload)
	if err != nil {
		// Release the message id so a rejected admission stays retryable
		// instead of being swallowed by the dedup check.
		if delErr := c.store.DeleteBridgeReceipt(ctx, messageID); delErr != nil {
			logger.Error(delErr, zap.String("message_id", messageID))
		}
		return err
	}

	senderAddr := sender.Normalized()
	c.emit(ctx, &domain.Event{
		EventType:  domain.EventTypeMessageReceived,
		MessageID:  messageID,
		SrcNetwork: src,
		Sender:     &senderAddr,
		TokenID:    &tokenID,
		Payload:    payload,
	})

	return nil
}

// SetDestinationAllowed updates the destination allowlist. Owner only.
func (c *Controller) SetDestinationAllowed(caller domain.Address, network domain.Network, allowed bool) error {
	if err := c.authorize(caller); err != nil {
		return err
	}
	return c.allowlist.SetDestinationAllowed(caller, network, allowed)
}

// SetSourceAllowed updates the source allowlist. Owner only.
func (c *Controller) SetSourceAllowed(caller domain.Address, network domain.Network, allowed bool) error {
	if err := c.authorize(caller); err != nil {
		return err
	}
	return c.allowlist.SetSourceAllowed(caller, network, allowed)
}

// SetSenderAllowed updates the sender allowlist. Owner only.
func (c *Controller) SetSenderAllowed(caller domain.Address, sender domain.Address, allowed bool) error {
	if err := c.authorize(caller); err != nil {
		return err
	}
	return c.allowlist.SetSenderAllowed(caller, sender, allowed)
}

// SetGasLimit adjusts the destination-execution gas budget. Owner only.
func (c *Controller) SetGasLimit(caller domain.Address, limit uint64) error {
	if err := c.authorize(caller); err != nil {
		return err
	}
	if limit == 0 {
		return domain.NewInvalidArgumentError("gas limit must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gasLimit = limit
	return nil
}

// GasLimit returns the configured destination-execution gas budget
func (c *Controller) GasLimit() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gasLimit
}

// Address returns this controller's own address
func (c *Controller) Address() domain.Address {
	return c.cfg.Address
}

// Allowlist returns a snapshot of the configured allowlist entries
func (c *Controller) Allowlist() registry.AllowlistData {
	return c.allowlist.Snapshot()
}

func (c *Controller) authorize(caller domain.Address) error {
	if caller.Normalized() != c.cfg.Owner.Normalized() {
		return domain.NewAccessDeniedError("caller %s is not the controller owner", caller)
	}
	return nil
}

// emit publishes a bridge event; failures are logged, never fatal
func (c *Controller) emit(ctx context.Context, event *domain.Event) {
	if c.publisher == nil {
		return
	}

	event.EventID = uuid.NewString()
	event.Network = c.cfg.Network
	event.Timestamp = c.clock.Now()

	if err := c.publisher.PublishEvent(ctx, event); err != nil {
		logger.Error(err, zap.String("event_type", string(event.EventType)))
	}
}
