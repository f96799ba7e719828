package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bidboard/internal/auction"
	"github.com/mcdev12/bidboard/internal/ledger"
	"github.com/mcdev12/bidboard/internal/timesync"
)

// Service routes the board's websocket traffic: snapshot on connect,
// inbound bids to the arbitration engine, time probes to the sync service,
// and private replies for rejections.
type Service struct {
	cm       *ConnectionManager
	app      *auction.App
	timesync *timesync.Service
}

// NewService creates the gateway service and wires itself in as the
// connection manager's inbound message handler.
func NewService(cm *ConnectionManager, app *auction.App, ts *timesync.Service) *Service {
	s := &Service{
		cm:       cm,
		app:      app,
		timesync: ts,
	}
	cm.SetHandler(s)
	return s
}

// Start runs the connection manager until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	s.cm.Start(ctx)
}

// HandleClientMessage implements MessageHandler.
func (s *Service) HandleClientMessage(ctx context.Context, conn *Connection, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", conn.ID).
			Msg("malformed client message")
		s.cm.SendTo(conn, NewErrorMessage("Malformed message"))
		return
	}

	switch msg.Type {
	case MessageTypeSyncTime:
		s.handleSyncTime(conn, msg)
	case MessageTypeBidPlaced:
		s.handleBidPlaced(ctx, conn, msg)
	default:
		log.Debug().
			Str("connection_id", conn.ID).
			Str("type", string(msg.Type)).
			Msg("unknown message type")
	}
}

func (s *Service) handleSyncTime(conn *Connection, msg ClientMessage) {
	s.cm.SendTo(conn, NewSyncTimeResultMessage(msg.RequestID, s.timesync.NowMillis()))
}

func (s *Service) handleBidPlaced(ctx context.Context, conn *Connection, msg ClientMessage) {
	var req auction.BidRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", conn.ID).
			Msg("malformed bid payload")
		s.cm.SendTo(conn, NewErrorMessage("Malformed bid"))
		return
	}

	_, err := s.app.PlaceBid(ctx, req)
	if err == nil {
		// The accepted delta reaches this client through the broadcast like
		// everyone else; no direct success reply.
		return
	}

	// Rejections are private to the submitter.
	var tooLow *ledger.BidTooLowError
	switch {
	case errors.Is(err, ledger.ErrItemNotFound):
		s.cm.SendTo(conn, NewErrorMessage("Item not found"))
	case errors.Is(err, ledger.ErrAuctionClosed):
		s.cm.SendTo(conn, NewErrorMessage("This auction has already closed."))
	case errors.As(err, &tooLow):
		s.cm.SendTo(conn, NewOutbidMessage("Someone else just placed a higher bid!", tooLow.CurrentBid))
	default:
		log.Error().
			Err(err).
			Str("connection_id", conn.ID).
			Msg("bid failed")
		s.cm.SendTo(conn, NewErrorMessage("Bid failed"))
	}
}

// sendSnapshot pushes the full item set to one connection so it can render
// immediately without waiting for the next bid event.
func (s *Service) sendSnapshot(conn *Connection) {
	s.cm.SendTo(conn, NewSnapshotMessage(s.app.Snapshot()))
}
