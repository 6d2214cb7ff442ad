package studio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushHistoryPrependsNewestFirst(t *testing.T) {
	var items []HistoryItem
	items = pushHistory(items, newHistoryItem(Image{}, Image{}, "first", DesignKit()))
	items = pushHistory(items, newHistoryItem(Image{}, Image{}, "second", DesignKit()))

	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Prompt)
	assert.Equal(t, "first", items[1].Prompt)
}

func TestPushHistoryEvictsBeyondLimit(t *testing.T) {
	var items []HistoryItem
	for i := 0; i < HistoryLimit+1; i++ {
		items = pushHistory(items, newHistoryItem(Image{}, Image{}, fmt.Sprintf("gen-%d", i), Illustrate()))
	}

	require.Len(t, items, HistoryLimit)
	assert.Equal(t, fmt.Sprintf("gen-%d", HistoryLimit), items[0].Prompt)
	assert.Equal(t, "gen-1", items[HistoryLimit-1].Prompt)
}

func TestNewHistoryItemHasUniqueID(t *testing.T) {
	a := newHistoryItem(Image{}, Image{}, "", DesignKit())
	b := newHistoryItem(Image{}, Image{}, "", DesignKit())

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
