package gateway

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bidboard/internal/models"
)

// MessageType identifies a message on the websocket wire.
type MessageType string

const (
	// Client to server
	MessageTypeSyncTime  MessageType = "SYNC_TIME"
	MessageTypeBidPlaced MessageType = "BID_PLACED"

	// Server to client
	MessageTypeSnapshot       MessageType = "SNAPSHOT"
	MessageTypeSyncTimeResult MessageType = "SYNC_TIME_RESULT"
	MessageTypeUpdateBid      MessageType = "UPDATE_BID"
	MessageTypeAuctionClosed  MessageType = "AUCTION_CLOSED"
	MessageTypeError          MessageType = "ERROR"
	MessageTypeOutbid         MessageType = "OUTBID"
)

// ClientMessage is the envelope for inbound messages. RequestID correlates
// a request with its reply for request/response messages like SYNC_TIME.
type ClientMessage struct {
	Type      MessageType     `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is the envelope for outbound messages.
type ServerMessage struct {
	Type      MessageType     `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SnapshotPayload carries the full item set sent to a client on connect.
type SnapshotPayload struct {
	Items []models.AuctionItem `json:"items"`
}

// SyncTimeResultPayload answers a time probe with the server's instant.
type SyncTimeResultPayload struct {
	ServerTimeMillis int64 `json:"server_time_ms"`
}

// UpdateBidPayload is the minimal delta broadcast to all viewers after an
// accepted bid.
type UpdateBidPayload struct {
	ItemID        int64  `json:"itemId"`
	NewBid        int64  `json:"newBid"`
	HighestBidder string `json:"highestBidder"`
}

// AuctionClosedPayload notifies all viewers that an item's auction closed.
type AuctionClosedPayload struct {
	ItemID int64 `json:"itemId"`
}

// ErrorPayload is a private error reply to the originating connection.
type ErrorPayload struct {
	Message string `json:"message"`
}

// OutbidPayload is the private reply for a too-low bid; CurrentBid lets the
// client re-display the true price.
type OutbidPayload struct {
	Message    string `json:"message"`
	CurrentBid int64  `json:"currentBid"`
}

// NewSnapshotMessage builds the full-state message sent on connect.
func NewSnapshotMessage(items []models.AuctionItem) *ServerMessage {
	return newServerMessage(MessageTypeSnapshot, "", SnapshotPayload{Items: items})
}

// NewSyncTimeResultMessage answers a SYNC_TIME probe, echoing its request ID.
func NewSyncTimeResultMessage(requestID string, serverTimeMillis int64) *ServerMessage {
	return newServerMessage(MessageTypeSyncTimeResult, requestID, SyncTimeResultPayload{
		ServerTimeMillis: serverTimeMillis,
	})
}

// NewUpdateBidMessage builds the broadcast delta for an accepted bid.
func NewUpdateBidMessage(itemID, newBid int64, highestBidder string) *ServerMessage {
	return newServerMessage(MessageTypeUpdateBid, "", UpdateBidPayload{
		ItemID:        itemID,
		NewBid:        newBid,
		HighestBidder: highestBidder,
	})
}

// NewAuctionClosedMessage builds the broadcast notice for a closed auction.
func NewAuctionClosedMessage(itemID int64) *ServerMessage {
	return newServerMessage(MessageTypeAuctionClosed, "", AuctionClosedPayload{ItemID: itemID})
}

// NewErrorMessage builds a private error reply.
func NewErrorMessage(message string) *ServerMessage {
	return newServerMessage(MessageTypeError, "", ErrorPayload{Message: message})
}

// NewOutbidMessage builds the private too-low reply carrying the true price.
func NewOutbidMessage(message string, currentBid int64) *ServerMessage {
	return newServerMessage(MessageTypeOutbid, "", OutbidPayload{
		Message:    message,
		CurrentBid: currentBid,
	})
}

func newServerMessage(msgType MessageType, requestID string, payload interface{}) *ServerMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		// Payloads are plain structs; this only fires on a programming error.
		log.Error().Err(err).Str("type", string(msgType)).Msg("failed to marshal payload")
	}
	return &ServerMessage{
		Type:      msgType,
		RequestID: requestID,
		Data:      data,
	}
}
