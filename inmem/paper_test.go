package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/paperlog"
)

func TestPaperStore(t *testing.T) {
	paperlog.TestPaperStore(t, NewPaperStore())
}

func TestPaperStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := NewPaperStore()

	p := paperlog.Paper{Title: "Test", Authors: []paperlog.Author{{Name: "Ada"}}}
	require.NoError(t, store.Add(ctx, &p))

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	got.Authors[0].Name = "changed"

	again, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.Authors[0].Name, "callers should not share memory with the store")
}

func TestPaperStore_Import(t *testing.T) {
	ctx := context.Background()
	store := NewPaperStore()

	yes := true
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := []paperlog.Document{
		{ID: "old", Title: "Legacy", Read: &yes, CreatedAt: created},
		{ID: "new", Title: "Current", Status: "skimmed", CreatedAt: created.Add(time.Hour)},
	}
	require.NoError(t, store.Import(ctx, docs))

	papers, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "new", papers[0].ID)
	assert.Equal(t, paperlog.Skimmed, papers[0].Status)
	assert.Equal(t, "old", papers[1].ID)
	assert.Equal(t, paperlog.Read, papers[1].Status, "the legacy flag is normalized on import")
}
