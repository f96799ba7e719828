package models

// AuctionItem represents a single item on the bidding board. The bid amount
// is in minor currency units and only ever increases; EndTime is fixed at
// creation and expressed as epoch milliseconds on the server's clock.
type AuctionItem struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	CurrentBid    int64  `json:"currentBid"`
	HighestBidder string `json:"highestBidder"`
	EndTime       int64  `json:"endTime"`
}

// Closed reports whether the auction for this item has passed its closing
// instant at the given server time (epoch millis).
func (i AuctionItem) Closed(nowMillis int64) bool {
	return nowMillis > i.EndTime
}
