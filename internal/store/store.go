package store

import (
	"context"
	"errors"

	"github.com/mcdev12/bidboard/internal/models"
)

// ErrNoState is returned by Load when no saved state exists yet.
var ErrNoState = errors.New("no saved state")

// Store persists the full auction item set. Implementations must make Save
// durable before returning; Load returns ErrNoState when nothing has been
// saved yet.
type Store interface {
	Load(ctx context.Context) ([]models.AuctionItem, error)
	Save(ctx context.Context, items []models.AuctionItem) error
}
