package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueryStore(t *testing.T) *QueryStore {
	t.Helper()
	qs := NewQueryStore(openTestStore(t))
	clock := time.Unix(1_700_000_000, 0)
	qs.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return qs
}

func TestQueryStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	qs := newTestQueryStore(t)

	saved, err := qs.SaveQuery(ctx, "a@x.com", "invoices", "invoice", "inbox")
	require.NoError(t, err)
	assert.Positive(t, saved.ID)
	assert.Equal(t, "invoice", saved.Query)
	assert.Equal(t, "inbox", saved.Folder)

	got, err := qs.GetQueryByName(ctx, "a@x.com", "invoices")
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestQueryStore_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	qs := newTestQueryStore(t)

	first, err := qs.SaveQuery(ctx, "a@x.com", "q", "old", "inbox")
	require.NoError(t, err)
	second, err := qs.SaveQuery(ctx, "a@x.com", "q", "new", "sent")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "new", second.Query)
	assert.Equal(t, "sent", second.Folder)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestQueryStore_Validation(t *testing.T) {
	ctx := context.Background()
	qs := newTestQueryStore(t)

	_, err := qs.SaveQuery(ctx, "", "n", "q", "inbox")
	assert.Error(t, err)
	_, err = qs.SaveQuery(ctx, "a", " ", "q", "inbox")
	assert.Error(t, err)
	_, err = qs.ListQueries(ctx, "", "")
	assert.Error(t, err)
	assert.Error(t, qs.UpdateQueryUsage(ctx, "a", 0))
}

func TestQueryStore_ListOrdersByRecentUse(t *testing.T) {
	ctx := context.Background()
	qs := newTestQueryStore(t)

	a, err := qs.SaveQuery(ctx, "a@x.com", "alpha", "a", "inbox")
	require.NoError(t, err)
	_, err = qs.SaveQuery(ctx, "a@x.com", "beta", "b", "sent")
	require.NoError(t, err)
	_, err = qs.SaveQuery(ctx, "other@x.com", "gamma", "g", "inbox")
	require.NoError(t, err)

	require.NoError(t, qs.UpdateQueryUsage(ctx, "a@x.com", a.ID))

	all, err := qs.ListQueries(ctx, "a@x.com", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, 1, all[0].UseCount)

	sent, err := qs.ListQueries(ctx, "a@x.com", "sent")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "beta", sent[0].Name)
}

func TestQueryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	qs := newTestQueryStore(t)

	_, err := qs.GetQueryByName(ctx, "a@x.com", "missing")
	assert.ErrorIs(t, err, ErrQueryNotFound)
	assert.ErrorIs(t, qs.DeleteQueryByName(ctx, "a@x.com", "missing"), ErrQueryNotFound)
	assert.ErrorIs(t, qs.UpdateQueryUsage(ctx, "a@x.com", 99), ErrQueryNotFound)
}

func TestQueryStore_Delete(t *testing.T) {
	ctx := context.Background()
	qs := newTestQueryStore(t)

	_, err := qs.SaveQuery(ctx, "a@x.com", "q", "x", "inbox")
	require.NoError(t, err)
	require.NoError(t, qs.DeleteQueryByName(ctx, "a@x.com", "q"))

	all, err := qs.ListQueries(ctx, "a@x.com", "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
