package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/bidboard/internal/models"
)

func testItems() []models.AuctionItem {
	return []models.AuctionItem{
		{ID: 1, Title: "Vintage Watch", CurrentBid: 100, EndTime: 1700000000000},
		{ID: 2, Title: "Retro Camera", CurrentBid: 250, HighestBidder: "alice", EndTime: 1700000000000},
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := NewFileStore(path)

	require.NoError(t, s.Save(context.Background(), testItems()))

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testItems(), loaded)
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoState)
}

func TestFileStore_LoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse state file")
}

func TestFileStore_LoadEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoState)
}

func TestFileStore_SaveReplacesPreviousState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := NewFileStore(path)

	require.NoError(t, s.Save(context.Background(), testItems()))

	updated := testItems()
	updated[0].CurrentBid = 110
	updated[0].HighestBidder = "bob"
	require.NoError(t, s.Save(context.Background(), updated))

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, updated, loaded)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
