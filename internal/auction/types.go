package auction

// BidRequest is a single incoming bid. UserID is an opaque, untrusted label
// chosen client-side; the engine records it verbatim on acceptance.
type BidRequest struct {
	ItemID    int64  `json:"itemId"`
	BidAmount int64  `json:"bidAmount"`
	UserID    string `json:"userId"`
}
