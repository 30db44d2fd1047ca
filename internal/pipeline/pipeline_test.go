package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewave/kiosko/internal/api"
	"github.com/bluewave/kiosko/internal/schema"
	"github.com/bluewave/kiosko/internal/store"
	"github.com/bluewave/kiosko/internal/testutil"
)

// fakeSender records submissions and fails on demand.
type fakeSender struct {
	mu      sync.Mutex
	fail    bool
	submits []api.SubmitPayload
}

func (f *fakeSender) Submit(ctx context.Context, token string, payload api.SubmitPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("backend unreachable")
	}
	f.submits = append(f.submits, payload)
	return nil
}

func (f *fakeSender) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submits)
}

func testPayload(rating int64) api.SubmitPayload {
	return api.SubmitPayload{
		Lang:    "es",
		Answers: schema.AnswerSet{"q1": schema.IntValue(rating)},
		Source:  "kiosko",
	}
}

func startPipeline(t *testing.T, sender Sender) (*Pipeline, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "kiosko.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := testutil.NewFixedClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	p := New(sender, st, WithClock(clock.Now))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("pipeline did not stop")
		}
	})
	return p, st
}

func TestSubmitDelivered(t *testing.T) {
	sender := &fakeSender{}
	p, st := startPipeline(t, sender)

	res := p.Submit(context.Background(), "demo", testPayload(5))
	require.NoError(t, res.Err)
	assert.Equal(t, Delivered, res.Status)
	assert.Equal(t, 1, sender.count())

	n, err := st.QueueLen(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitFallsBackToQueue(t *testing.T) {
	sender := &fakeSender{fail: true}
	p, st := startPipeline(t, sender)

	res := p.Submit(context.Background(), "demo", testPayload(2))
	require.NoError(t, res.Err)
	assert.Equal(t, SavedOffline, res.Status)

	items, err := st.LoadQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, "demo", items[0].Token)
	assert.Equal(t, schema.IntValue(2), items[0].Payload.Answers["q1"])
	assert.Equal(t, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), items[0].EnqueuedAt)
}

func TestFlushResendsFIFO(t *testing.T) {
	sender := &fakeSender{fail: true}
	p, st := startPipeline(t, sender)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		res := p.Submit(ctx, "demo", testPayload(i))
		require.Equal(t, SavedOffline, res.Status)
	}

	sender.setFail(false)
	stats, err := p.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, FlushStats{Attempted: 3, Delivered: 3, Remaining: 0}, stats)

	require.Equal(t, 3, sender.count())
	for i, payload := range sender.submits {
		assert.Equal(t, schema.IntValue(int64(i+1)), payload.Answers["q1"])
	}

	n, err := st.QueueLen(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFlushKeepsFailedItemsInOrder(t *testing.T) {
	sender := &fakeSender{fail: true}
	p, st := startPipeline(t, sender)
	ctx := context.Background()

	for i := int64(1); i <= 2; i++ {
		p.Submit(ctx, "demo", testPayload(i))
	}

	// Backend still down: nothing delivered, everything stays queued.
	stats, err := p.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, FlushStats{Attempted: 2, Delivered: 0, Remaining: 2}, stats)

	items, err := st.LoadQueue(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, schema.IntValue(1), items[0].Payload.Answers["q1"])
	assert.Equal(t, schema.IntValue(2), items[1].Payload.Answers["q1"])
}

func TestFlushSkippedWhileOffline(t *testing.T) {
	sender := &fakeSender{fail: true}
	p, _ := startPipeline(t, sender)
	ctx := context.Background()

	p.Submit(ctx, "demo", testPayload(1))
	sender.setFail(false)
	p.SetOnline(false)

	stats, err := p.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Attempted)
	assert.Zero(t, sender.count())
}

func TestReconnectTriggersFlush(t *testing.T) {
	sender := &fakeSender{fail: true}
	p, st := startPipeline(t, sender)
	ctx := context.Background()

	p.SetOnline(false)
	p.Submit(ctx, "demo", testPayload(1))
	p.Submit(ctx, "demo", testPayload(2))

	sender.setFail(false)
	p.SetOnline(true)

	assert.Eventually(t, func() bool {
		n, err := st.QueueLen(ctx)
		return err == nil && n == 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, sender.count())
}

func TestRunFlushesOnStart(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "kiosko.db"))
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	// A previous run left an undelivered response behind.
	require.NoError(t, st.AppendQueue(ctx, store.QueueItem{
		Token:      "demo",
		Payload:    testPayload(4),
		EnqueuedAt: time.Now().UTC(),
	}))

	sender := &fakeSender{}
	p := New(sender, st)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go p.Run(runCtx)
	defer p.Stop()

	assert.Eventually(t, func() bool {
		n, err := st.QueueLen(ctx)
		return err == nil && n == 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, sender.count())
}

func TestSubmitAfterStop(t *testing.T) {
	sender := &fakeSender{}
	st, err := store.Open(filepath.Join(t.TempDir(), "kiosko.db"))
	require.NoError(t, err)
	defer st.Close()

	p := New(sender, st)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Run(context.Background())
	}()
	p.Stop()
	<-done

	res := p.Submit(context.Background(), "demo", testPayload(1))
	assert.Error(t, res.Err)
	assert.Equal(t, SavedOffline, res.Status)
}
