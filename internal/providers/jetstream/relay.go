package jetstream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/adapter"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/logger"
	"github.com/TenderBeastJr/KittyConnect-FF/internal/relay"
)

// RelayConfig holds the configuration for the NATS-backed relay network
type RelayConfig struct {
	URL            string
	StreamName     string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWait        time.Duration
	MaxDeliver     int

	// Network is the local deployment's network identifier
	Network domain.Network
	// Sender is the local controller address stamped on outbound envelopes
	Sender domain.Address

	// BaseFee and FeePerByte define the relay's fee schedule
	BaseFee    uint64
	FeePerByte uint64
}

// Envelope is the relay's own framing around a wire message
type Envelope struct {
	MessageID     string            `json:"message_id"`
	SourceNetwork domain.Network    `json:"source_network"`
	Sender        domain.Address    `json:"sender"`
	Message       relay.WireMessage `json:"message"`
}

// Relay is the NATS-backed relay network handle: the send side consumed by
// the bridge controller plus the inbound listener lifecycle
type Relay interface {
	relay.Relay
	// Listen starts consuming this deployment's relay subject
	Listen(ctx context.Context, receiver relay.Receiver) error
	// Close stops the listener and closes the connection
	Close()
}

// natsRelay implements Relay over NATS JetStream. Each destination
// network maps to one subject; the deployment's listener consumes its own.
type natsRelay struct {
	mu      sync.Mutex
	nc      adapter.NatsConn
	js      adapter.JetStream
	json    adapter.JSON
	cfg     RelayConfig
	consume adapter.ConsumeContext
}

// NewRelay connects to NATS and ensures the relay stream exists
func NewRelay(ctx context.Context, cfg RelayConfig, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (Relay, error) {
	nc, js, err := natsJS.Connect(cfg.URL, connectOptions(cfg.ConnectionName, cfg.MaxReconnects, cfg.ReconnectWait)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.StreamName,
		Subjects:  []string{"relay.>"},
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create relay stream: %w", err)
	}

	return &natsRelay{
		nc:   nc,
		js:   js,
		json: jsonAdapter,
		cfg:  cfg,
	}, nil
}

// QuoteFee returns the relay fee for a message: a base charge plus a per-byte
// rate on the payload
func (r *natsRelay) QuoteFee(ctx context.Context, dest domain.Network, msg relay.WireMessage) (uint64, error) {
	if !dest.Valid() {
		return 0, domain.NewInvalidArgumentError("invalid destination network %q", dest)
	}
	return r.cfg.BaseFee + r.cfg.FeePerByte*uint64(len(msg.Payload)), nil
}

// Send wraps the message in a relay envelope, assigns a message id, and
// publishes it towards the destination network's subject
func (r *natsRelay) Send(ctx context.Context, dest domain.Network, msg relay.WireMessage) (string, error) {
	if !dest.Valid() {
		return "", domain.NewInvalidArgumentError("invalid destination network %q", dest)
	}

	envelope := Envelope{
		MessageID:     ulid.Make().String(),
		SourceNetwork: r.cfg.Network,
		Sender:        r.cfg.Sender,
		Message:       msg,
	}

	data, err := r.json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to marshal relay envelope: %w", err)
	}

	if _, err := r.js.Publish(ctx, subjectFor(dest), data); err != nil {
		return "", fmt.Errorf("failed to publish relay message: %w", err)
	}

	return envelope.MessageID, nil
}

// Listen consumes this deployment's relay subject and forwards every
// delivered envelope to the receiver. Messages rejected by the receiver's
// fail-closed checks are terminated, not retried; transient failures are
// redelivered by JetStream up to MaxDeliver times.
func (r *natsRelay) Listen(ctx context.Context, receiver relay.Receiver) error {
	var consumer adapter.Consumer

	// Consumer creation races with stream setup on fresh clusters; retry with
	// exponential backoff until the context is cancelled.
	err := backoff.Retry(func() error {
		var err error
		consumer, err = r.js.CreateOrUpdateConsumer(ctx, r.cfg.StreamName, jetstream.ConsumerConfig{
			Durable:       r.cfg.ConsumerName,
			FilterSubject: subjectFor(r.cfg.Network),
			AckWait:       r.cfg.AckWait,
			MaxDeliver:    r.cfg.MaxDeliver,
			AckPolicy:     jetstream.AckExplicitPolicy,
		})
		return err
	}, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
	if err != nil {
		return fmt.Errorf("failed to create relay consumer: %w", err)
	}

	consume, err := consumer.Consume(func(msg adapter.Message) {
		r.handle(ctx, receiver, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to start relay consumer: %w", err)
	}

	r.mu.Lock()
	r.consume = consume
	r.mu.Unlock()

	return nil
}

// handle processes one delivered relay message
func (r *natsRelay) handle(ctx context.Context, receiver relay.Receiver, msg adapter.Message) {
	var envelope Envelope
	if err := r.json.Unmarshal(msg.Data(), &envelope); err != nil {
		logger.Error(err, zap.String("subject", msg.Subject()))
		_ = msg.Term()
		return
	}

	err := receiver.OnReceive(ctx, envelope.SourceNetwork, envelope.Sender, envelope.MessageID, envelope.Message.Payload)
	if err != nil {
		code := domain.CodeOf(err)
		if code == domain.ErrCodeAccessDenied || code == domain.ErrCodeInvalidArgument {
			// receipt rejected outright; redelivery would change nothing
			logger.Warn("Relay message rejected",
				zap.String("message_id", envelope.MessageID),
				zap.String("source_network", envelope.SourceNetwork.String()),
				zap.String("sender", envelope.Sender.String()),
				zap.String("reason", err.Error()),
			)
			_ = msg.Term()
			return
		}

		logger.Error(err, zap.String("message_id", envelope.MessageID))
		_ = msg.Nak()
		return
	}

	if err := msg.Ack(); err != nil {
		logger.Error(err, zap.String("message_id", envelope.MessageID))
	}
}

// Close stops the listener and closes the NATS connection
func (r *natsRelay) Close() {
	r.mu.Lock()
	if r.consume != nil {
		r.consume.Drain()
	}
	r.mu.Unlock()

	if r.nc != nil {
		r.nc.Close()
	}
}

// subjectFor maps a destination network to its relay subject
func subjectFor(network domain.Network) string {
	return fmt.Sprintf("relay.%s", network)
}
