package status

import (
	"context"
	"sync"
	"testing"
	"time"

	"stremio-service/core/supervisor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu    sync.Mutex
	phase supervisor.Phase
	info  *supervisor.ServerInfo
	calls int
}

func (f *fakeSource) set(phase supervisor.Phase, info *supervisor.ServerInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = phase
	f.info = info
}

func (f *fakeSource) Snapshot() (supervisor.Phase, *supervisor.ServerInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.phase, f.info
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func running() *supervisor.ServerInfo {
	return &supervisor.ServerInfo{Version: "4.20.8", BaseURL: "http://127.0.0.1:11470"}
}

func TestPoller_InitialSnapshot(t *testing.T) {
	p := NewPoller(&fakeSource{phase: supervisor.PhaseStopped}, time.Hour, zap.NewNop())
	snap := p.Latest()
	assert.Equal(t, supervisor.PhaseStopped, snap.Phase)
	assert.Nil(t, snap.Info)
	assert.True(t, snap.UpdatedAt.IsZero())
}

func TestPoller_Poll(t *testing.T) {
	src := &fakeSource{}
	src.set(supervisor.PhaseRunning, running())
	p := NewPoller(src, time.Hour, zap.NewNop())

	updates, cancel := p.Subscribe()
	defer cancel()

	snap := p.Poll()
	assert.Equal(t, supervisor.PhaseRunning, snap.Phase)
	assert.Equal(t, "4.20.8", snap.Info.Version)
	assert.Equal(t, snap, p.Latest())
	assert.Equal(t, 1, src.Calls())

	select {
	case got := <-updates:
		assert.Equal(t, snap, got)
	default:
		t.Fatal("subscriber did not receive snapshot")
	}
}

func TestPoller_SlowSubscriberGetsNewest(t *testing.T) {
	src := &fakeSource{phase: supervisor.PhaseStopped}
	p := NewPoller(src, time.Hour, zap.NewNop())
	updates, cancel := p.Subscribe()
	defer cancel()

	p.Poll()
	src.set(supervisor.PhaseRunning, running())
	p.Poll()

	got := <-updates
	assert.Equal(t, supervisor.PhaseRunning, got.Phase)
	select {
	case <-updates:
		t.Fatal("stale snapshot kept")
	default:
	}
}

func TestPoller_RunTriggerAndShutdown(t *testing.T) {
	src := &fakeSource{phase: supervisor.PhaseStopped}
	p := NewPoller(src, time.Hour, zap.NewNop())
	updates, _ := p.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// No periodic poll before the first interval.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, src.Calls())

	src.set(supervisor.PhaseRunning, running())
	p.Trigger()

	select {
	case snap := <-updates:
		assert.Equal(t, supervisor.PhaseRunning, snap.Phase)
	case <-time.After(time.Second):
		t.Fatal("trigger did not poll")
	}

	cancel()
	require.NoError(t, <-done)

	_, ok := <-updates
	assert.False(t, ok, "subscription should be closed")

	closedCh, _ := p.Subscribe()
	_, ok = <-closedCh
	assert.False(t, ok)
}

func TestPoller_PeriodicPoll(t *testing.T) {
	src := &fakeSource{phase: supervisor.PhaseStopped}
	p := NewPoller(src, 20*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	assert.Eventually(t, func() bool { return src.Calls() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestPoller_TriggerCoalesces(t *testing.T) {
	p := NewPoller(&fakeSource{}, time.Hour, zap.NewNop())
	assert.NotPanics(t, func() {
		for i := 0; i < 10; i++ {
			p.Trigger()
		}
	})
	assert.Len(t, p.trigger, 1)
}

func TestPoller_UnsubscribeTwice(t *testing.T) {
	p := NewPoller(&fakeSource{}, time.Hour, zap.NewNop())
	_, cancel := p.Subscribe()
	cancel()
	assert.NotPanics(t, cancel)
	assert.NotPanics(t, p.Close)
}
