package ledger

import (
	"errors"
	"fmt"
)

// ErrItemNotFound is returned when a bid references an unknown item.
var ErrItemNotFound = errors.New("item not found")

// ErrAuctionClosed is returned when a bid arrives after the item's closing
// instant. Closing is evaluated at arbitration time against the server
// clock, so a bid that was in flight when the auction closed still gets this.
var ErrAuctionClosed = errors.New("auction closed")

// BidTooLowError is returned when the proposed amount does not beat the
// current bid. It carries the current bid so the rejecting client can
// re-display the true price.
type BidTooLowError struct {
	CurrentBid int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid too low: current bid is %d", e.CurrentBid)
}
