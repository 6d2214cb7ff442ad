// Package mediagroup collects the photos of one Telegram album, which arrive
// as separate updates, into a single batch. In design-kit mode a two-photo
// album is how users hand over the product and the style reference in one go.
package mediagroup

import (
	"fmt"
	"sync"
	"time"
)

type Item struct {
	ChatID       int64
	UserID       int64
	Username     string
	MediaGroupID string
	Caption      string
	FileID       string
}

type Batch struct {
	ChatID   int64
	UserID   int64
	Username string
	Caption  string
	FileIDs  []string
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Batch)
}

// Aggregator buffers album items per chat and flushes the batch once no new
// photo arrived within the debounce window.
type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Batch)
	pending  map[string]*pendingBatch
}

type pendingBatch struct {
	batch Batch
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		pending:  make(map[string]*pendingBatch),
	}
}

func (a *Aggregator) Add(item Item) {
	if item.MediaGroupID == "" || item.FileID == "" {
		return
	}

	key := makeKey(item.ChatID, item.MediaGroupID)

	a.mu.Lock()
	defer a.mu.Unlock()

	pb, ok := a.pending[key]
	if !ok {
		pb = &pendingBatch{
			batch: Batch{
				ChatID:   item.ChatID,
				UserID:   item.UserID,
				Username: item.Username,
				Caption:  item.Caption,
				FileIDs:  []string{item.FileID},
			},
		}
		a.pending[key] = pb
	} else {
		pb.batch.FileIDs = append(pb.batch.FileIDs, item.FileID)
		if item.Caption != "" {
			pb.batch.Caption = item.Caption
		}
	}

	if pb.timer != nil {
		pb.timer.Stop()
	}
	pb.timer = time.AfterFunc(a.debounce, func() {
		a.flush(key)
	})
}

func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	pb, ok := a.pending[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.pending, key)
	batch := pb.batch
	onFlush := a.onFlush
	a.mu.Unlock()

	if onFlush != nil {
		onFlush(batch)
	}
}

func makeKey(chatID int64, mediaGroupID string) string {
	return fmt.Sprintf("%d:%s", chatID, mediaGroupID)
}
