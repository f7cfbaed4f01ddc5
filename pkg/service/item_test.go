package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artembek/auction/pkg/model"
)

func newItemService(t *testing.T, store *memStore, batchSize, txPairs int) *ItemGeneric {
	t.Helper()

	db, _, err := txDB(txPairs)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &ItemGeneric{
		DB:                  db,
		ItemRepository:      store,
		FinishBatchSize:     batchSize,
		PickWinnerBatchSize: batchSize,
	}
}

func TestPublish(t *testing.T) {
	store := newMemStore()
	owner := store.addUser(0)
	other := store.addUser(0)

	svc := newItemService(t, store, 10, 0)

	itemID, err := svc.Create(context.Background(), "lamp", 100, 60, owner)
	require.NoError(t, err)

	err = svc.Publish(context.Background(), other, itemID)
	require.ErrorIs(t, err, model.ErrNotOwner)

	require.NoError(t, svc.Publish(context.Background(), owner, itemID))

	item, err := svc.Get(context.Background(), itemID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusOngoing, item.Status)
	assert.True(t, item.StartedAt.Valid)

	// publishing twice is rejected
	err = svc.Publish(context.Background(), owner, itemID)
	require.ErrorIs(t, err, model.ErrNotDraft)

	err = svc.Publish(context.Background(), owner, 404)
	require.ErrorIs(t, err, model.ErrItemNotFound)
}

func TestFinishBatchClosesOnlyDueItems(t *testing.T) {
	store := newMemStore()
	owner := store.addUser(0)

	due := store.addItem(100, 10, owner, model.ItemStatusOngoing, store.now.Add(-time.Minute))
	running := store.addItem(100, 3600, owner, model.ItemStatusOngoing, store.now)
	draft := store.addItem(100, 10, owner, model.ItemStatusDraft, time.Time{})

	svc := newItemService(t, store, 10, 1)

	next, err := svc.FinishBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	assert.Equal(t, model.ItemStatusFinished, store.items[due].Status)
	assert.Equal(t, model.ItemStatusOngoing, store.items[running].Status)
	assert.Equal(t, model.ItemStatusDraft, store.items[draft].Status)
}

func TestFinishBatchReturnsBoundaryCursor(t *testing.T) {
	store := newMemStore()
	owner := store.addUser(0)

	ids := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		ids = append(ids, store.addItem(100, 10, owner, model.ItemStatusOngoing, store.now.Add(-time.Minute)))
	}

	svc := newItemService(t, store, 2, 2)

	// first page finishes two items, the third id becomes the cursor
	next, err := svc.FinishBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, ids[2], next)
	assert.Equal(t, model.ItemStatusFinished, store.items[ids[0]].Status)
	assert.Equal(t, model.ItemStatusFinished, store.items[ids[1]].Status)
	assert.Equal(t, model.ItemStatusOngoing, store.items[ids[2]].Status)

	next, err = svc.FinishBatch(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, 0, next)
	assert.Equal(t, model.ItemStatusFinished, store.items[ids[2]].Status)
}

func TestPickWinnerBatchPicksHighestActiveBid(t *testing.T) {
	store := newMemStore()
	owner := store.addUser(0)
	alice := store.addUser(0)
	bob := store.addUser(0)

	itemID := store.addItem(100, 10, owner, model.ItemStatusFinished, store.now.Add(-time.Minute))
	store.addBid(itemID, alice, 150, true)
	winning := store.addBid(itemID, bob, 200, true)
	store.addBid(itemID, bob, 120, false) // replaced earlier, must not win

	svc := newItemService(t, store, 10, 2)

	next, err := svc.PickWinnerBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	item := store.items[itemID]
	require.True(t, item.WinnerBidID.Valid)
	assert.Equal(t, winning, int(item.WinnerBidID.Int64))

	// second pass finds nothing: the winner is recorded exactly once
	next, err = svc.PickWinnerBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, next)
	assert.Equal(t, winning, int(item.WinnerBidID.Int64))
}

func TestPickWinnerBatchSkipsItemsWithoutBids(t *testing.T) {
	store := newMemStore()
	owner := store.addUser(0)

	store.addItem(100, 10, owner, model.ItemStatusFinished, store.now.Add(-time.Minute))

	svc := newItemService(t, store, 10, 1)

	next, err := svc.PickWinnerBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, next)
}
