package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventType identifies an auction event on the event stream.
type EventType string

const (
	EventTypeBidAccepted   EventType = "BidAccepted"
	EventTypeAuctionClosed EventType = "AuctionClosed"
)

// AuctionEvent is the envelope published for every accepted state change.
type AuctionEvent struct {
	ID            uuid.UUID `json:"eventId"`
	Type          EventType `json:"eventType"`
	ItemID        int64     `json:"itemId"`
	NewBid        int64     `json:"newBid,omitempty"`
	HighestBidder string    `json:"highestBidder,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewBidAcceptedEvent builds the event for an accepted bid.
func NewBidAcceptedEvent(itemID, newBid int64, highestBidder string, at time.Time) AuctionEvent {
	return AuctionEvent{
		ID:            uuid.New(),
		Type:          EventTypeBidAccepted,
		ItemID:        itemID,
		NewBid:        newBid,
		HighestBidder: highestBidder,
		Timestamp:     at,
	}
}

// NewAuctionClosedEvent builds the event for an auction passing its closing
// instant.
func NewAuctionClosedEvent(itemID int64, at time.Time) AuctionEvent {
	return AuctionEvent{
		ID:        uuid.New(),
		Type:      EventTypeAuctionClosed,
		ItemID:    itemID,
		Timestamp: at,
	}
}

// Publisher pushes auction events to an external stream. Publishing is
// best-effort: failures are logged by callers and never affect the accept
// decision.
type Publisher interface {
	Publish(ctx context.Context, event AuctionEvent) error
}

// LogPublisher is the default publisher when no event stream is configured.
// It only records the event in the structured log.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(_ context.Context, event AuctionEvent) error {
	log.Debug().
		Str("event_id", event.ID.String()).
		Str("event_type", string(event.Type)).
		Int64("item_id", event.ItemID).
		Msg("auction event")
	return nil
}
