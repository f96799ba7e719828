package gateway

// Broadcaster adapts the connection manager to the arbitration engine's
// fan-out contract.
type Broadcaster struct {
	cm *ConnectionManager
}

// NewBroadcaster creates a broadcaster over the given connection manager.
func NewBroadcaster(cm *ConnectionManager) *Broadcaster {
	return &Broadcaster{cm: cm}
}

// BroadcastBidUpdate fans the accepted-bid delta to every connected viewer.
func (b *Broadcaster) BroadcastBidUpdate(itemID, newBid int64, highestBidder string) {
	b.cm.Broadcast(NewUpdateBidMessage(itemID, newBid, highestBidder))
}

// BroadcastAuctionClosed notifies every connected viewer that an auction
// passed its closing instant.
func (b *Broadcaster) BroadcastAuctionClosed(itemID int64) {
	b.cm.Broadcast(NewAuctionClosedMessage(itemID))
}
