package messaging

import (
	"context"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
)

// Publisher defines the interface for publishing registry events to the
// message broker
type Publisher interface {
	// PublishEvent publishes a registry event
	PublishEvent(ctx context.Context, event *domain.Event) error
	// Close closes the connection
	Close()
}
