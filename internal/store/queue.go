package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/bluewave/kiosko/internal/api"
)

// Fixed keys of the local_state table.
const (
	queueKey    = "queue.v1"
	languageKey = "lang"
)

// QueueItem is one submission pending delivery. Items are kept in FIFO
// order and removed only after a confirmed successful resend.
type QueueItem struct {
	ID         string            `json:"id"`
	Token      string            `json:"token"`
	Payload    api.SubmitPayload `json:"payload"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

// LoadQueue reads the pending-submission queue in FIFO order.
//
// Malformed persisted contents decode as an empty queue: losing previously
// unsent items is accepted over blocking every future session on a corrupt
// value. The corruption is logged, never returned.
func (s *Store) LoadQueue(ctx context.Context) ([]QueueItem, error) {
	raw, ok, err := s.get(ctx, queueKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var items []QueueItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Warn("discarding corrupt submission queue",
			"error", err,
			"bytes", len(raw),
		)
		return nil, nil
	}
	return items, nil
}

// SaveQueue replaces the persisted queue with the given items.
func (s *Store) SaveQueue(ctx context.Context, items []QueueItem) error {
	if items == nil {
		items = []QueueItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.set(ctx, queueKey, string(raw))
}

// AppendQueue loads the queue, appends one item, and persists it again.
// The store's single connection serializes the read-modify-write against
// other store calls; callers additionally serialize through the pipeline's
// single owner goroutine.
func (s *Store) AppendQueue(ctx context.Context, item QueueItem) error {
	items, err := s.LoadQueue(ctx)
	if err != nil {
		return err
	}
	return s.SaveQueue(ctx, append(items, item))
}

// QueueLen returns the number of pending submissions.
func (s *Store) QueueLen(ctx context.Context) (int, error) {
	items, err := s.LoadQueue(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Language returns the last-chosen display language, or "" when none was
// ever stored.
func (s *Store) Language(ctx context.Context) (string, error) {
	lang, _, err := s.get(ctx, languageKey)
	return lang, err
}

// SetLanguage persists the chosen display language across sessions.
func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	return s.set(ctx, languageKey, lang)
}
