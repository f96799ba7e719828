package auction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/bidboard/internal/events"
	"github.com/mcdev12/bidboard/internal/ledger"
	"github.com/mcdev12/bidboard/internal/models"
)

type bidUpdate struct {
	itemID        int64
	newBid        int64
	highestBidder string
}

type fakeBroadcaster struct {
	mu      sync.Mutex
	updates []bidUpdate
	closed  []int64
}

func (b *fakeBroadcaster) BroadcastBidUpdate(itemID, newBid int64, highestBidder string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, bidUpdate{itemID, newBid, highestBidder})
}

func (b *fakeBroadcaster) BroadcastAuctionClosed(itemID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, itemID)
}

func (b *fakeBroadcaster) allUpdates() []bidUpdate {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bidUpdate(nil), b.updates...)
}

func (b *fakeBroadcaster) closedItems() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int64(nil), b.closed...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.AuctionEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, event events.AuctionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) published() []events.AuctionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.AuctionEvent(nil), p.events...)
}

// signalStore records saves and signals each one so tests can wait for the
// background persist without sleeping.
type signalStore struct {
	mu      sync.Mutex
	items   []models.AuctionItem
	saveErr error
	saveCh  chan []models.AuctionItem
}

func newSignalStore(items []models.AuctionItem) *signalStore {
	return &signalStore{items: items, saveCh: make(chan []models.AuctionItem, 16)}
}

func (s *signalStore) Load(_ context.Context) ([]models.AuctionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items, nil
}

func (s *signalStore) Save(_ context.Context, items []models.AuctionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.items = items
	s.saveCh <- items
	return nil
}

func waitForSave(t *testing.T, s *signalStore) []models.AuctionItem {
	t.Helper()
	select {
	case items := <-s.saveCh:
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for persist")
		return nil
	}
}

type testHarness struct {
	app         *App
	store       *signalStore
	broadcaster *fakeBroadcaster
	publisher   *fakePublisher
	clock       *clockwork.FakeClock
}

func newTestApp(t *testing.T) *testHarness {
	t.Helper()
	clock := clockwork.NewFakeClock()
	end := clock.Now().Add(10 * time.Minute).UnixMilli()
	st := newSignalStore([]models.AuctionItem{
		{ID: 1, Title: "Vintage Watch", CurrentBid: 100, EndTime: end},
		{ID: 2, Title: "Retro Camera", CurrentBid: 250, EndTime: end},
	})

	l := ledger.New(st, clock)
	require.NoError(t, l.Load(context.Background(), ledger.DefaultSeedConfig()))

	b := &fakeBroadcaster{}
	p := &fakePublisher{}
	return &testHarness{
		app:         NewApp(l, b, p, clock),
		store:       st,
		broadcaster: b,
		publisher:   p,
		clock:       clock,
	}
}

func TestPlaceBid_AcceptBroadcastsPersistsPublishes(t *testing.T) {
	h := newTestApp(t)

	item, err := h.app.PlaceBid(context.Background(), BidRequest{ItemID: 1, BidAmount: 110, UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(110), item.CurrentBid)
	assert.Equal(t, "alice", item.HighestBidder)

	updates := h.broadcaster.allUpdates()
	require.Len(t, updates, 1)
	assert.Equal(t, bidUpdate{itemID: 1, newBid: 110, highestBidder: "alice"}, updates[0])

	saved := waitForSave(t, h.store)
	require.Len(t, saved, 2)
	assert.Equal(t, int64(110), saved[0].CurrentBid)
	assert.Equal(t, "alice", saved[0].HighestBidder)

	published := h.publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTypeBidAccepted, published[0].Type)
	assert.Equal(t, int64(110), published[0].NewBid)
}

func TestPlaceBid_TooLowIsPrivateAndSideEffectFree(t *testing.T) {
	h := newTestApp(t)

	_, err := h.app.PlaceBid(context.Background(), BidRequest{ItemID: 1, BidAmount: 110, UserID: "alice"})
	require.NoError(t, err)
	waitForSave(t, h.store)

	_, err = h.app.PlaceBid(context.Background(), BidRequest{ItemID: 1, BidAmount: 105, UserID: "bob"})
	var tooLow *ledger.BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	assert.Equal(t, int64(110), tooLow.CurrentBid)

	// No broadcast, no persist, no event for a rejection.
	assert.Len(t, h.broadcaster.allUpdates(), 1)
	assert.Len(t, h.publisher.published(), 1)
	select {
	case <-h.store.saveCh:
		t.Fatal("rejected bid must not trigger a persist")
	case <-time.After(50 * time.Millisecond):
	}

	snap := h.app.Snapshot()
	assert.Equal(t, int64(110), snap[0].CurrentBid)
	assert.Equal(t, "alice", snap[0].HighestBidder)
}

func TestPlaceBid_UnknownItem(t *testing.T) {
	h := newTestApp(t)

	_, err := h.app.PlaceBid(context.Background(), BidRequest{ItemID: 42, BidAmount: 110, UserID: "alice"})
	assert.ErrorIs(t, err, ledger.ErrItemNotFound)
	assert.Empty(t, h.broadcaster.allUpdates())
}

func TestPlaceBid_ClosedAuction(t *testing.T) {
	h := newTestApp(t)

	h.clock.Advance(10*time.Minute + time.Second)

	_, err := h.app.PlaceBid(context.Background(), BidRequest{ItemID: 1, BidAmount: 500, UserID: "alice"})
	assert.ErrorIs(t, err, ledger.ErrAuctionClosed)
	assert.Empty(t, h.broadcaster.allUpdates())
}

func TestPlaceBid_PersistFailureDoesNotRevertAccept(t *testing.T) {
	h := newTestApp(t)

	h.store.mu.Lock()
	h.store.saveErr = errors.New("disk full")
	h.store.mu.Unlock()

	item, err := h.app.PlaceBid(context.Background(), BidRequest{ItemID: 1, BidAmount: 110, UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(110), item.CurrentBid)

	// Broadcast still happened and the in-memory state kept the bid.
	assert.Len(t, h.broadcaster.allUpdates(), 1)
	assert.Equal(t, int64(110), h.app.Snapshot()[0].CurrentBid)
}

func TestPlaceBid_EndToEndScenario(t *testing.T) {
	h := newTestApp(t)

	// alice bids 110: broadcast delta and persisted state reflect it.
	_, err := h.app.PlaceBid(context.Background(), BidRequest{ItemID: 1, BidAmount: 110, UserID: "alice"})
	require.NoError(t, err)

	updates := h.broadcaster.allUpdates()
	require.Len(t, updates, 1)
	assert.Equal(t, bidUpdate{itemID: 1, newBid: 110, highestBidder: "alice"}, updates[0])

	saved := waitForSave(t, h.store)
	assert.Equal(t, int64(110), saved[0].CurrentBid)

	// bob bids 105: private rejection with the true price, state unchanged.
	_, err = h.app.PlaceBid(context.Background(), BidRequest{ItemID: 1, BidAmount: 105, UserID: "bob"})
	var tooLow *ledger.BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	assert.Equal(t, int64(110), tooLow.CurrentBid)
	assert.Len(t, h.broadcaster.allUpdates(), 1)

	snap := h.app.Snapshot()
	assert.Equal(t, int64(110), snap[0].CurrentBid)
	assert.Equal(t, "alice", snap[0].HighestBidder)
}
