package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bidboard/internal/models"
	"github.com/mcdev12/bidboard/internal/store"
)

// SeedConfig controls the fallback item set used when no persisted state
// exists or the persisted state cannot be read.
type SeedConfig struct {
	AuctionDuration time.Duration
}

// DefaultSeedConfig returns the seed configuration used at first boot.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		AuctionDuration: 10 * time.Minute,
	}
}

// Ledger is the authoritative in-memory record of all auction items. Every
// mutation is funneled through TryApplyBid under a single mutex, so two
// concurrent bids on one item are always arbitrated serially.
type Ledger struct {
	mu    sync.Mutex
	items map[int64]*models.AuctionItem

	// persistMu serializes Persist calls so an older snapshot can never
	// overwrite a newer one on disk.
	persistMu sync.Mutex

	store store.Store
	clock clockwork.Clock
}

// New creates an empty ledger backed by the given store.
func New(st store.Store, clock clockwork.Clock) *Ledger {
	return &Ledger{
		items: make(map[int64]*models.AuctionItem),
		store: st,
		clock: clock,
	}
}

// Load restores the item set from the store. A missing or malformed saved
// state is logged and replaced with the seed set, which is then persisted
// so the next boot finds it.
func (l *Ledger) Load(ctx context.Context, seed SeedConfig) error {
	items, err := l.store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("no usable persisted state, seeding default items")
		items = seedItems(l.clock.Now(), seed.AuctionDuration)
		l.setItems(items)
		if err := l.Persist(ctx); err != nil {
			log.Error().Err(err).Msg("failed to persist seeded items")
		}
		return nil
	}

	l.setItems(items)
	log.Info().Int("items", len(items)).Msg("loaded auction items from store")
	return nil
}

func (l *Ledger) setItems(items []models.AuctionItem) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = make(map[int64]*models.AuctionItem, len(items))
	for i := range items {
		item := items[i]
		l.items[item.ID] = &item
	}
}

// Snapshot returns a copy of the full item set, ordered by item ID.
func (l *Ledger) Snapshot() []models.AuctionItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := make([]models.AuctionItem, 0, len(l.items))
	for _, item := range l.items {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// TryApplyBid arbitrates a single bid against the current state. The check
// and the write happen under one lock, so a lost update between two racing
// bids is impossible. Decision order: unknown item, closed auction, amount
// not above the current bid, then accept.
func (l *Ledger) TryApplyBid(itemID int64, amount int64, bidder string, now time.Time) (models.AuctionItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[itemID]
	if !ok {
		return models.AuctionItem{}, ErrItemNotFound
	}

	if item.Closed(now.UnixMilli()) {
		return models.AuctionItem{}, ErrAuctionClosed
	}

	if amount <= item.CurrentBid {
		return models.AuctionItem{}, &BidTooLowError{CurrentBid: item.CurrentBid}
	}

	item.CurrentBid = amount
	item.HighestBidder = bidder
	return *item, nil
}

// Persist writes the current item set to the store. Failures are returned
// for the caller to log; the in-memory state stays authoritative either way.
func (l *Ledger) Persist(ctx context.Context) error {
	l.persistMu.Lock()
	defer l.persistMu.Unlock()

	if err := l.store.Save(ctx, l.Snapshot()); err != nil {
		return fmt.Errorf("failed to persist ledger: %w", err)
	}
	return nil
}

func seedItems(now time.Time, duration time.Duration) []models.AuctionItem {
	endTime := now.Add(duration).UnixMilli()
	return []models.AuctionItem{
		{ID: 1, Title: "Vintage Watch", CurrentBid: 100, EndTime: endTime},
		{ID: 2, Title: "Retro Camera", CurrentBid: 250, EndTime: endTime},
	}
}
