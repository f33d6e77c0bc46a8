package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/fluidboard/internal/fluid"
	"github.com/five82/fluidboard/internal/livesync"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// pollOnlySource lists fine but has no watch endpoint.
type pollOnlySource struct {
	records []fluid.Record
}

func (s pollOnlySource) List(ctx context.Context, scope fluid.Scope) ([]fluid.Record, error) {
	return s.records, nil
}

func (s pollOnlySource) Watch(ctx context.Context, scope fluid.Scope) (livesync.Stream, error) {
	return nil, livesync.Permanent(errors.New("watch not supported"))
}

func TestWatchScope_ReportsModeAndRefreshes(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	src := pollOnlySource{records: []fluid.Record{
		{ID: "a", Name: "a", Phase: "Bound"},
		{ID: "b", Name: "b", Phase: "NotBound"},
		{ID: "c", Name: "c", Phase: "Bound"},
	}}
	scope := fluid.Scope{Cluster: "dev", Namespace: "ml", Kind: fluid.KindDataset}
	out := &lockedBuffer{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- WatchScope(ctx, src, scope, livesync.Options{PollInterval: time.Hour}, out)
	}()

	require.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, "POLLING") && strings.Contains(s, "3 datasets (Bound 2, NotBound 1)")
	}, 2*time.Second, 5*time.Millisecond, "output so far:\n%s", out)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("WatchScope did not return after cancel")
	}
	assert.Contains(t, out.String(), "dev/ml/datasets")
}

func TestSummarizePhases(t *testing.T) {
	assert.Equal(t, "", summarizePhases(nil))
	assert.Equal(t, " (Loaded 1)", summarizePhases([]fluid.Record{{Phase: "Loaded"}}))
}
