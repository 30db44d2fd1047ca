package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewave/kiosko/internal/api"
	"github.com/bluewave/kiosko/internal/schema"
	"github.com/bluewave/kiosko/internal/store"
)

func seedQueue(t *testing.T, dbPath string, n int) {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	for i := 0; i < n; i++ {
		require.NoError(t, st.AppendQueue(context.Background(), store.QueueItem{
			Token: "demo",
			Payload: api.SubmitPayload{
				Lang:    "es",
				Answers: schema.AnswerSet{"q1": schema.IntValue(int64(i + 1))},
				Source:  "kiosko",
			},
			EnqueuedAt: time.Now().UTC(),
		}))
	}
}

func TestFlushCommandEmptyQueue(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kiosko.db")

	stdout, _, err := executeCommand(t, "flush", "--db", dbPath, "--api", "http://localhost:1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Queue is empty")
}

func TestFlushCommandDeliversQueued(t *testing.T) {
	var submits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		submits.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	dbPath := filepath.Join(t.TempDir(), "kiosko.db")
	seedQueue(t, dbPath, 2)

	stdout, _, err := executeCommand(t, "flush", "--db", dbPath, "--api", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Delivered 2 of 2")
	assert.GreaterOrEqual(t, submits.Load(), int64(2))

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	n, err := st.QueueLen(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFlushCommandKeepsUndelivered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dbPath := filepath.Join(t.TempDir(), "kiosko.db")
	seedQueue(t, dbPath, 2)

	stdout, _, err := executeCommand(t, "flush", "--db", dbPath, "--api", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, stdout, "still queued")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	n, err := st.QueueLen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
