package studio

import "github.com/google/uuid"

// HistoryLimit caps the generation history; the oldest entry beyond it is
// evicted on append.
const HistoryLimit = 12

// HistoryItem is an immutable snapshot of one successful generation or
// upscale: the source it started from, what came out, the prompt text that was
// active, and the mode it happened in.
type HistoryItem struct {
	ID        string
	Source    Image
	Generated Image
	Prompt    string
	Mode      ModeState
}

func newHistoryItem(source, generated Image, prompt string, mode ModeState) HistoryItem {
	return HistoryItem{
		ID:        uuid.NewString(),
		Source:    source,
		Generated: generated,
		Prompt:    prompt,
		Mode:      mode,
	}
}

// pushHistory prepends item and truncates to HistoryLimit, newest first.
func pushHistory(items []HistoryItem, item HistoryItem) []HistoryItem {
	out := make([]HistoryItem, 0, len(items)+1)
	out = append(out, item)
	out = append(out, items...)
	if len(out) > HistoryLimit {
		out = out[:HistoryLimit]
	}
	return out
}
