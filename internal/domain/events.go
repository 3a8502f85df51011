package domain

import (
	"time"
)

// EventType represents the type of registry event
type EventType string

const (
	EventTypeMint            EventType = "mint"
	EventTypeTransfer        EventType = "transfer"
	EventTypeBridgeRequest   EventType = "bridge_request"
	EventTypeReMint          EventType = "remint"
	EventTypeMessageSent     EventType = "message_sent"
	EventTypeMessageReceived EventType = "message_received"
)

// Event is a normalized registry event.
// This is the standard format published to NATS.
type Event struct {
	EventID     string    `json:"event_id"`               // unique event identifier
	Network     Network   `json:"network"`                // network of the emitting deployment
	EventType   EventType `json:"event_type"`             // mint, transfer, bridge_request, remint, message_sent, message_received
	TokenID     *TokenID  `json:"token_id,omitempty"`     // subject token (ledger events only)
	Owner       *Address  `json:"owner,omitempty"`        // token owner at the time of the event
	From        *Address  `json:"from,omitempty"`         // sender (transfer events)
	To          *Address  `json:"to,omitempty"`           // recipient (transfer events)
	Partner     *Address  `json:"partner,omitempty"`      // shop partner involved
	MessageID   string    `json:"message_id,omitempty"`   // relay message id (bridge events)
	DestNetwork Network   `json:"dest_network,omitempty"` // destination network (message_sent)
	SrcNetwork  Network   `json:"src_network,omitempty"`  // source network (message_received)
	Receiver    *Address  `json:"receiver,omitempty"`     // destination controller address (message_sent)
	Sender      *Address  `json:"sender,omitempty"`       // source controller address (message_received)
	FeeToken    *Address  `json:"fee_token,omitempty"`    // fee token charged (message_sent)
	Fee         *uint64   `json:"fee,omitempty"`          // fee amount charged (message_sent)
	Payload     []byte    `json:"payload,omitempty"`      // bridge payload (message events)
	Timestamp   time.Time `json:"timestamp"`              // event time
}

// Valid checks the fields every published event must carry
func (e *Event) Valid() bool {
	if e.EventID == "" || !e.Network.Valid() || e.Timestamp.IsZero() {
		return false
	}

	switch e.EventType {
	case EventTypeMint, EventTypeReMint:
		return e.TokenID != nil && e.Owner != nil
	case EventTypeTransfer:
		return e.TokenID != nil && e.From != nil && e.To != nil
	case EventTypeBridgeRequest:
		return e.TokenID != nil && e.Owner != nil && e.DestNetwork != ""
	case EventTypeMessageSent:
		return e.MessageID != "" && e.DestNetwork != "" && e.Receiver != nil
	case EventTypeMessageReceived:
		return e.MessageID != "" && e.SrcNetwork != "" && e.Sender != nil
	default:
		return false
	}
}
