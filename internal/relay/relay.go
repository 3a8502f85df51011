// Package relay defines the contract between the registry and the external
// message-relay network carrying bridge payloads between deployments. The
// relay is assumed to deliver each accepted message exactly once per dispatch;
// redelivery protection on the receiving side lives in the bridge controller.
package relay

import (
	"context"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
)

// TokenTransfer is a value transfer accompanying a wire message. The registry
// never attaches one; the field exists because the relay wire format carries it.
type TokenTransfer struct {
	Token  domain.Address `json:"token"`
	Amount uint64         `json:"amount"`
}

// ExtraArgs carries execution parameters for the destination side
type ExtraArgs struct {
	// GasLimit is the execution budget granted to the destination controller
	GasLimit uint64 `json:"gas_limit"`
}

// WireMessage is the message shape the relay accepts for dispatch
type WireMessage struct {
	// Receiver is the destination bridge controller address
	Receiver []byte `json:"receiver"`
	// Payload is the opaque bridge payload
	Payload []byte `json:"payload"`
	// TokenTransfers is always empty for registry traffic
	TokenTransfers []TokenTransfer `json:"token_transfers"`
	// ExtraArgs carries the destination execution budget
	ExtraArgs ExtraArgs `json:"extra_args"`
	// FeeToken is the token the relay fee is denominated in
	FeeToken domain.Address `json:"fee_token"`
}

// Relay is the send side of the relay network, consumed by the bridge controller
type Relay interface {
	// QuoteFee returns the fee for dispatching msg to dest, denominated in the
	// message's fee token
	QuoteFee(ctx context.Context, dest domain.Network, msg WireMessage) (uint64, error)
	// Send dispatches msg to dest and returns the relay-assigned message id
	Send(ctx context.Context, dest domain.Network, msg WireMessage) (string, error)
}

// Receiver is the receive side: the single entry point the relay invokes on
// the destination deployment
type Receiver interface {
	OnReceive(ctx context.Context, src domain.Network, sender domain.Address, messageID string, payload []byte) error
}
