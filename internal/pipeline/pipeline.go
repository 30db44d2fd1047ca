package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bluewave/kiosko/internal/api"
	"github.com/bluewave/kiosko/internal/store"
)

// Status reports how a submission was resolved. Both values are success
// from the end user's perspective.
type Status int

const (
	// Delivered means the backend accepted the response.
	Delivered Status = iota + 1
	// SavedOffline means delivery failed and the response was queued
	// locally for a later flush.
	SavedOffline
)

// String returns the status name for logging.
func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case SavedOffline:
		return "saved_offline"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of one submission.
// Err is non-nil only when even the local fallback failed (a store write
// error); the response is then lost and the caller decides what to show.
type Result struct {
	Status Status
	Err    error
}

// FlushStats summarizes one resend pass.
type FlushStats struct {
	Attempted int
	Delivered int
	Remaining int
}

// Sender delivers one submission to the backend.
// Implemented by *api.Client.
type Sender interface {
	Submit(ctx context.Context, token string, payload api.SubmitPayload) error
}

// Pipeline is the single-writer submission loop.
//
// Thread-safety model:
//   - Submit, Flush, SetOnline: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//
// All durable-queue reads and writes happen inside the Run loop.
type Pipeline struct {
	sender Sender
	store  *store.Store
	queue  *eventQueue
	now    func() time.Time

	// online is owned by the Run loop; connectivity changes arrive as
	// events, never as direct mutation.
	online bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the wall clock used to stamp queue items (tests).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a pipeline. The device is assumed online until a
// connectivity watcher reports otherwise.
func New(sender Sender, st *store.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		sender: sender,
		store:  st,
		queue:  newEventQueue(),
		now:    time.Now,
		online: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit delivers a completed response, falling back to the durable queue
// on any delivery failure. Blocks until the Run loop processed the event.
//
// The returned Result never represents a user-visible failure; rendering
// layers show the same confirmation for Delivered and SavedOffline, with
// at most a "saved offline" note.
func (p *Pipeline) Submit(ctx context.Context, token string, payload api.SubmitPayload) Result {
	reply := make(chan Result, 1)
	if !p.queue.enqueue(event{typ: eventSubmit, token: token, payload: payload, reply: reply}) {
		return Result{Status: SavedOffline, Err: fmt.Errorf("pipeline stopped")}
	}
	select {
	case r := <-reply:
		return r
	case <-ctx.Done():
		return Result{Status: SavedOffline, Err: ctx.Err()}
	}
}

// FlushNow runs one resend pass synchronously on the caller's goroutine.
// For one-shot tools only; must not be called while Run is active.
func (p *Pipeline) FlushNow(ctx context.Context) FlushStats {
	return p.flushOnce(ctx)
}

// Flush requests a resend pass and blocks until it finished.
func (p *Pipeline) Flush(ctx context.Context) (FlushStats, error) {
	flushed := make(chan FlushStats, 1)
	if !p.queue.enqueue(event{typ: eventFlush, flushed: flushed}) {
		return FlushStats{}, fmt.Errorf("pipeline stopped")
	}
	select {
	case stats := <-flushed:
		return stats, nil
	case <-ctx.Done():
		return FlushStats{}, ctx.Err()
	}
}

// SetOnline reports a connectivity change. Going online triggers a flush.
// Thread-safe: may be called from any goroutine (connectivity watchers).
func (p *Pipeline) SetOnline(online bool) {
	typ := eventOffline
	if online {
		typ = eventOnline
	}
	p.queue.enqueue(event{typ: typ})
}

// Stop gracefully shuts down the pipeline; Run returns after draining.
func (p *Pipeline) Stop() {
	p.queue.close()
}

// Run starts the single-writer loop. Blocks until the context is cancelled
// or Stop is called. An initial flush runs first, matching the
// flush-on-application-start policy.
func (p *Pipeline) Run(ctx context.Context) error {
	slog.Info("submission pipeline starting")

	p.flush(ctx, nil)

	for {
		e, ok := p.queue.tryDequeue()
		if ok {
			p.processEvent(ctx, e)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("pipeline stopping: context cancelled")
			p.queue.close()
			return ctx.Err()

		case <-p.queue.wait():
			if p.queue.len() == 0 {
				slog.Info("pipeline stopping: queue closed")
				return nil
			}
		}
	}
}

// processEvent routes one event. Called only from the Run loop.
func (p *Pipeline) processEvent(ctx context.Context, e event) {
	switch e.typ {
	case eventSubmit:
		r := p.submit(ctx, e.token, e.payload)
		if e.reply != nil {
			e.reply <- r
		}

	case eventFlush:
		p.flush(ctx, e.flushed)

	case eventOnline:
		p.online = true
		slog.Info("connectivity restored, flushing queue")
		p.flush(ctx, nil)

	case eventOffline:
		p.online = false
		slog.Info("connectivity lost")
	}
}

// submit attempts remote delivery and falls back to the durable queue.
func (p *Pipeline) submit(ctx context.Context, token string, payload api.SubmitPayload) Result {
	err := p.sender.Submit(ctx, token, payload)
	if err == nil {
		slog.Info("response delivered", "token", token)
		return Result{Status: Delivered}
	}

	slog.Warn("delivery failed, queueing response",
		"token", token,
		"error", err,
	)

	item := store.QueueItem{
		ID:         uuid.NewString(),
		Token:      token,
		Payload:    payload,
		EnqueuedAt: p.now().UTC(),
	}
	if err := p.store.AppendQueue(ctx, item); err != nil {
		slog.Error("failed to queue response locally",
			"id", item.ID,
			"token", token,
			"error", err,
		)
		return Result{Status: SavedOffline, Err: err}
	}

	return Result{Status: SavedOffline}
}

// flush resends queued items in FIFO order. Items that fail stay queued in
// their original relative order. Runs silently; failures are logged, never
// surfaced.
func (p *Pipeline) flush(ctx context.Context, flushed chan FlushStats) {
	stats := p.flushOnce(ctx)
	if flushed != nil {
		flushed <- stats
	}
}

func (p *Pipeline) flushOnce(ctx context.Context) FlushStats {
	if !p.online {
		return FlushStats{}
	}

	items, err := p.store.LoadQueue(ctx)
	if err != nil {
		slog.Error("failed to load submission queue", "error", err)
		return FlushStats{}
	}
	if len(items) == 0 {
		return FlushStats{}
	}

	stats := FlushStats{Attempted: len(items)}
	remaining := make([]store.QueueItem, 0, len(items))
	for _, item := range items {
		if err := p.sender.Submit(ctx, item.Token, item.Payload); err != nil {
			slog.Debug("resend failed, keeping item queued",
				"id", item.ID,
				"token", item.Token,
				"enqueued_at", item.EnqueuedAt,
				"error", err,
			)
			remaining = append(remaining, item)
			continue
		}
		stats.Delivered++
	}
	stats.Remaining = len(remaining)

	if err := p.store.SaveQueue(ctx, remaining); err != nil {
		slog.Error("failed to persist submission queue", "error", err)
		return stats
	}

	slog.Info("queue flush finished",
		"attempted", stats.Attempted,
		"delivered", stats.Delivered,
		"remaining", stats.Remaining,
	)
	return stats
}
