package binwatch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"stremio-service/core/process"
	"stremio-service/core/supervisor"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockTarget struct {
	mock.Mock
}

func (m *mockTarget) Phase() supervisor.Phase {
	return m.Called().Get(0).(supervisor.Phase)
}

func (m *mockTarget) Restart(ctx context.Context) (supervisor.ServerInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(supervisor.ServerInfo), args.Error(1)
}

type countingNotifier struct {
	n atomic.Int32
}

func (c *countingNotifier) Trigger() { c.n.Add(1) }

func serverConfig(t *testing.T) process.ServerConfig {
	t.Helper()
	dir := t.TempDir()
	bins, err := process.BinariesFor(runtime.GOOS)
	require.NoError(t, err)
	for _, name := range []string{bins.Runtime, bins.FFmpeg, bins.FFprobe, bins.Server} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o755))
	}
	cfg, err := process.ConfigAtDir(dir, process.Features{})
	require.NoError(t, err)
	return cfg
}

func TestWatcher_DebouncesIntoOneRestart(t *testing.T) {
	cfg := serverConfig(t)
	target := new(mockTarget)
	target.On("Phase").Return(supervisor.PhaseRunning)
	target.On("Restart", mock.Anything).Return(supervisor.ServerInfo{}, nil)
	notify := new(countingNotifier)

	w := New(cfg, 30*time.Millisecond, target, notify, zap.NewNop())
	events := make(chan fsnotify.Event)
	errs := make(chan error)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.loop(ctx, events, errs) }()

	events <- fsnotify.Event{Name: cfg.Server(), Op: fsnotify.Write}
	events <- fsnotify.Event{Name: cfg.Runtime(), Op: fsnotify.Create}
	events <- fsnotify.Event{Name: cfg.Server(), Op: fsnotify.Write}

	assert.Eventually(t, func() bool { return notify.n.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	target.AssertNumberOfCalls(t, "Restart", 1)
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	cfg := serverConfig(t)
	target := new(mockTarget)
	notify := new(countingNotifier)
	w := New(cfg, 10*time.Millisecond, target, notify, zap.NewNop())

	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(cfg.Dir(), "README"), Op: fsnotify.Write}))
	assert.False(t, w.relevant(fsnotify.Event{Name: cfg.Server(), Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: cfg.Server(), Op: fsnotify.Remove}))
	assert.True(t, w.relevant(fsnotify.Event{Name: cfg.FFmpeg(), Op: fsnotify.Rename}))
}

func TestWatcher_SkipsWhenNotRunning(t *testing.T) {
	cfg := serverConfig(t)
	target := new(mockTarget)
	target.On("Phase").Return(supervisor.PhaseStopped)
	notify := new(countingNotifier)
	w := New(cfg, time.Millisecond, target, notify, zap.NewNop())

	w.apply(context.Background(), []string{"server.js"})

	target.AssertNotCalled(t, "Restart", mock.Anything)
	assert.Equal(t, int32(0), notify.n.Load())
}

func TestWatcher_RunOnDirectory(t *testing.T) {
	cfg := serverConfig(t)
	target := new(mockTarget)
	target.On("Phase").Return(supervisor.PhaseRunning)
	target.On("Restart", mock.Anything).Return(supervisor.ServerInfo{}, nil)
	notify := new(countingNotifier)

	w := New(cfg, 20*time.Millisecond, target, notify, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(cfg.Server(), []byte("updated"), 0o644))

	assert.Eventually(t, func() bool { return notify.n.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_RunMissingDirectory(t *testing.T) {
	cfg := serverConfig(t)
	require.NoError(t, os.RemoveAll(cfg.Dir()))

	w := New(cfg, time.Millisecond, new(mockTarget), new(countingNotifier), zap.NewNop())
	assert.Error(t, w.Run(context.Background()))
}
