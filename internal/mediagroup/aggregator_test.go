package mediagroup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T) (chan Batch, func(Batch)) {
	t.Helper()
	ch := make(chan Batch, 4)
	return ch, func(b Batch) { ch <- b }
}

func waitBatch(t *testing.T, ch chan Batch) Batch {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("no batch flushed")
		return Batch{}
	}
}

func TestAggregatorFlushesAlbumAsOneBatch(t *testing.T) {
	ch, onFlush := collect(t)
	a := New(Options{Debounce: 20 * time.Millisecond, OnFlush: onFlush})

	a.Add(Item{ChatID: 1, UserID: 2, MediaGroupID: "g1", FileID: "file-a"})
	a.Add(Item{ChatID: 1, UserID: 2, MediaGroupID: "g1", FileID: "file-b", Caption: "product + reference"})

	batch := waitBatch(t, ch)
	assert.Equal(t, int64(1), batch.ChatID)
	assert.Equal(t, []string{"file-a", "file-b"}, batch.FileIDs)
	assert.Equal(t, "product + reference", batch.Caption)
}

func TestAggregatorDebounceResetsPerItem(t *testing.T) {
	ch, onFlush := collect(t)
	a := New(Options{Debounce: 60 * time.Millisecond, OnFlush: onFlush})

	a.Add(Item{ChatID: 1, MediaGroupID: "g1", FileID: "file-a"})
	time.Sleep(30 * time.Millisecond)
	a.Add(Item{ChatID: 1, MediaGroupID: "g1", FileID: "file-b"})

	select {
	case <-ch:
		t.Fatal("flushed before the debounce window closed")
	case <-time.After(40 * time.Millisecond):
	}

	batch := waitBatch(t, ch)
	require.Len(t, batch.FileIDs, 2)
}

func TestAggregatorKeepsAlbumsSeparate(t *testing.T) {
	ch, onFlush := collect(t)
	a := New(Options{Debounce: 20 * time.Millisecond, OnFlush: onFlush})

	a.Add(Item{ChatID: 1, MediaGroupID: "g1", FileID: "file-a"})
	a.Add(Item{ChatID: 2, MediaGroupID: "g1", FileID: "file-b"})

	first := waitBatch(t, ch)
	second := waitBatch(t, ch)

	chats := []int64{first.ChatID, second.ChatID}
	assert.ElementsMatch(t, []int64{1, 2}, chats)
	assert.Len(t, first.FileIDs, 1)
	assert.Len(t, second.FileIDs, 1)
}

func TestAggregatorIgnoresNonAlbumItems(t *testing.T) {
	ch, onFlush := collect(t)
	a := New(Options{Debounce: 10 * time.Millisecond, OnFlush: onFlush})

	a.Add(Item{ChatID: 1, FileID: "file-a"})
	a.Add(Item{ChatID: 1, MediaGroupID: "g1"})

	select {
	case <-ch:
		t.Fatal("unexpected flush")
	case <-time.After(50 * time.Millisecond):
	}
}
