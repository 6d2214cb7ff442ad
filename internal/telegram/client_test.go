package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByBytesShortTextIsSingleChunk(t *testing.T) {
	chunks := splitByBytes("hello", 4096)
	assert.Equal(t, []string{"hello"}, chunks)
}

func TestSplitByBytesRespectsLimit(t *testing.T) {
	text := strings.Repeat("a", 10)
	chunks := splitByBytes(text, 4)

	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]byte(chunk)), 4)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitByBytesNeverSplitsARune(t *testing.T) {
	// Each emoji is 4 bytes; a 5-byte limit fits exactly one per chunk.
	text := strings.Repeat("\U0001F4F8", 3)
	chunks := splitByBytes(text, 5)

	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.Equal(t, "\U0001F4F8", chunk)
	}
}

func TestTruncateByBytes(t *testing.T) {
	assert.Equal(t, "hello", truncateByBytes("hello", 10))
	assert.Equal(t, "he", truncateByBytes("hello", 2))
	assert.Equal(t, "", truncateByBytes("\U0001F4F8", 3), "partial rune is dropped")
}

func TestStripDataPrefix(t *testing.T) {
	assert.Equal(t, "abc123", stripDataPrefix("data:image/png;base64,abc123"))
	assert.Equal(t, "abc123", stripDataPrefix("abc123"))
	assert.Equal(t, "with,comma", stripDataPrefix("with,comma"), "only data: URLs are stripped")
}
