package auction

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bidboard/internal/events"
	"github.com/mcdev12/bidboard/internal/ledger"
	"github.com/mcdev12/bidboard/internal/models"
)

// Broadcaster defines what the arbitration engine needs from the gateway:
// fan-out of accepted deltas and closing notices to every connected viewer.
// Rejections are never broadcast; they go back only to the originating
// connection via the PlaceBid error.
type Broadcaster interface {
	BroadcastBidUpdate(itemID, newBid int64, highestBidder string)
	BroadcastAuctionClosed(itemID int64)
}

// App is the bid arbitration engine. Every incoming bid is validated against
// the ledger at the server's current instant; acceptance triggers
// persistence, broadcast, and event publishing.
type App struct {
	ledger      *ledger.Ledger
	broadcaster Broadcaster
	publisher   events.Publisher
	clock       clockwork.Clock
}

// NewApp creates the arbitration engine.
func NewApp(l *ledger.Ledger, b Broadcaster, p events.Publisher, clock clockwork.Clock) *App {
	return &App{
		ledger:      l,
		broadcaster: b,
		publisher:   p,
		clock:       clock,
	}
}

// PlaceBid arbitrates one bid. On acceptance the updated item is returned,
// the delta is fanned out to all connected viewers (the bidder included, so
// every client reconciles from the same broadcast), the ledger is persisted
// in the background, and a BidAccepted event is published. On rejection the
// state is untouched, nothing is broadcast, and the sentinel error tells the
// caller which private reply to send.
func (a *App) PlaceBid(ctx context.Context, req BidRequest) (models.AuctionItem, error) {
	now := a.clock.Now()

	item, err := a.ledger.TryApplyBid(req.ItemID, req.BidAmount, req.UserID, now)
	if err != nil {
		log.Debug().
			Err(err).
			Int64("item_id", req.ItemID).
			Int64("bid_amount", req.BidAmount).
			Str("user_id", req.UserID).
			Msg("bid rejected")
		return models.AuctionItem{}, err
	}

	log.Info().
		Int64("item_id", item.ID).
		Int64("new_bid", item.CurrentBid).
		Str("highest_bidder", item.HighestBidder).
		Msg("bid accepted")

	// Persistence is best-effort and must not stall broadcast delivery.
	// An accepted bid is never rolled back because the write failed.
	go a.persist()

	a.broadcaster.BroadcastBidUpdate(item.ID, item.CurrentBid, item.HighestBidder)

	event := events.NewBidAcceptedEvent(item.ID, item.CurrentBid, item.HighestBidder, now)
	if err := a.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).Int64("item_id", item.ID).Msg("failed to publish bid event")
	}

	return item, nil
}

// Snapshot returns the current item set for a newly connected viewer or the
// pull endpoint.
func (a *App) Snapshot() []models.AuctionItem {
	return a.ledger.Snapshot()
}

func (a *App) persist() {
	if err := a.ledger.Persist(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to persist ledger, in-memory state remains authoritative")
	}
}
