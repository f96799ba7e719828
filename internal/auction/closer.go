package auction

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bidboard/internal/events"
	"github.com/mcdev12/bidboard/internal/models"
)

// WatchClosings arms a one-shot timer per item and broadcasts an
// AUCTION_CLOSED notice to all viewers when the item's closing instant
// passes. Clients could infer closure from their own synced countdown, but
// the explicit notice keeps slow or badly-synced clients from showing a
// live auction that the server will no longer accept bids on. Closing
// instants are immutable, so the timers never need rescheduling.
func (a *App) WatchClosings(ctx context.Context) {
	now := a.clock.Now().UnixMilli()
	for _, item := range a.ledger.Snapshot() {
		if item.Closed(now) {
			// Closed before this process started; the snapshot's endTime
			// already tells clients, so no notice is re-broadcast.
			log.Debug().Int64("item_id", item.ID).Msg("item already closed, no timer")
			continue
		}
		a.scheduleClose(ctx, item)
	}
}

func (a *App) scheduleClose(ctx context.Context, item models.AuctionItem) {
	duration := time.UnixMilli(item.EndTime).Sub(a.clock.Now())
	if duration < 0 {
		duration = 0
	}

	timer := a.clock.NewTimer(duration)

	go func() {
		select {
		case <-timer.Chan():
			log.Info().
				Int64("item_id", item.ID).
				Msg("auction closed")

			a.broadcaster.BroadcastAuctionClosed(item.ID)

			event := events.NewAuctionClosedEvent(item.ID, a.clock.Now())
			if err := a.publisher.Publish(ctx, event); err != nil {
				log.Error().Err(err).Int64("item_id", item.ID).Msg("failed to publish close event")
			}

		case <-ctx.Done():
			stopAndDrainTimer(timer)
			log.Debug().Int64("item_id", item.ID).Msg("close timer cancelled")
		}
	}()

	log.Debug().
		Int64("item_id", item.ID).
		Dur("duration", duration).
		Msg("scheduled close timer")
}

// stopAndDrainTimer stops a timer and drains its channel if it already
// fired, per the time.Timer.Stop documentation.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
