package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/bidboard/internal/models"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS auction_items (
	id             BIGINT PRIMARY KEY,
	title          TEXT NOT NULL,
	current_bid    BIGINT NOT NULL,
	highest_bidder TEXT NOT NULL DEFAULT '',
	end_time       BIGINT NOT NULL
)`

// PostgresStore persists the item set in a single Postgres table, one row
// per item. Save upserts the full set in one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]models.AuctionItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, current_bid, highest_bidder, end_time
		 FROM auction_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.AuctionItem
	for rows.Next() {
		var item models.AuctionItem
		if err := rows.Scan(&item.ID, &item.Title, &item.CurrentBid, &item.HighestBidder, &item.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	if len(items) == 0 {
		return nil, ErrNoState
	}
	return items, nil
}

func (s *PostgresStore) Save(ctx context.Context, items []models.AuctionItem) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO auction_items (id, title, current_bid, highest_bidder, end_time)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				current_bid = EXCLUDED.current_bid,
				highest_bidder = EXCLUDED.highest_bidder,
				end_time = EXCLUDED.end_time`,
			item.ID, item.Title, item.CurrentBid, item.HighestBidder, item.EndTime)
		if err != nil {
			return fmt.Errorf("failed to upsert item %d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit items: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
