//go:build linux || darwin

package supervisor_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"stremio-service/core/process"
	"stremio-service/core/settings"
	"stremio-service/core/supervisor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedServer lays out a binaries directory whose runtime is a shell script. The script writes
// its pid to a file next to it before running body.
func scriptedServer(t *testing.T, body string) (process.ServerConfig, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"ffmpeg", "ffprobe", "server.js"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	pidFile := filepath.Join(dir, "pid")
	script := fmt.Sprintf("#!/bin/sh\necho $$ > %q\n%s", pidFile, body)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stremio-runtime"), []byte(script), 0o755))

	cfg, err := process.ConfigAtDir(dir, process.Features{})
	require.NoError(t, err)
	return cfg, pidFile
}

func settingsServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"values":{"serverVersion":"4.20.8"},"baseUrl":%q}`, srv.URL)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newScripted(t *testing.T, cfg process.ServerConfig) *supervisor.Supervisor {
	t.Helper()
	sup, err := supervisor.New(cfg,
		supervisor.WithLogger(zap.NewNop()),
		supervisor.WithProber(settings.NewClient(time.Second)),
		supervisor.WithGracePeriod(100*time.Millisecond),
		supervisor.WithSettlePeriod(50*time.Millisecond),
		supervisor.WithEndpointTimeout(time.Second),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sup.Close(context.Background()) })
	return sup
}

func readPid(t *testing.T, path string) int {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	return pid
}

func processGone(pid int) bool {
	return syscall.Kill(pid, 0) != nil
}

func TestEndToEnd_StartStop(t *testing.T) {
	srv := settingsServer(t)
	cfg, pidFile := scriptedServer(t, fmt.Sprintf("echo 'EngineFS server started at %s'\nexec sleep 60\n", srv.URL))
	sup := newScripted(t, cfg)

	info, err := sup.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.20.8", info.Version)
	assert.Equal(t, srv.URL, info.BaseURL)
	require.NotNil(t, sup.Status())

	pid := readPid(t, pidFile)

	stopped, err := sup.Stop(context.Background())
	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Nil(t, sup.Status())
	assert.Eventually(t, func() bool { return processGone(pid) }, 5*time.Second, 20*time.Millisecond)
}

func TestEndToEnd_NeverAnnounces(t *testing.T) {
	cfg, pidFile := scriptedServer(t, "exec sleep 60\n")
	sup := newScripted(t, cfg)

	begin := time.Now()
	_, err := sup.Start(context.Background())
	assert.True(t, supervisor.IsErrorCode(err, supervisor.ErrorCodeNotReady))
	assert.Less(t, time.Since(begin), 3*time.Second)
	assert.Nil(t, sup.Status())

	pid := readPid(t, pidFile)
	assert.Eventually(t, func() bool { return processGone(pid) }, 5*time.Second, 20*time.Millisecond)
}

func TestEndToEnd_KilledOutOfBand(t *testing.T) {
	srv := settingsServer(t)
	cfg, pidFile := scriptedServer(t, fmt.Sprintf("echo 'EngineFS server started at %s'\nexec sleep 60\n", srv.URL))
	sup := newScripted(t, cfg)

	_, err := sup.Start(context.Background())
	require.NoError(t, err)
	first := readPid(t, pidFile)

	require.NoError(t, syscall.Kill(first, syscall.SIGKILL))
	assert.Eventually(t, func() bool { return sup.Status() == nil }, 5*time.Second, 20*time.Millisecond)

	_, err = sup.Start(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first, readPid(t, pidFile))
}
