package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"stremio-service/core/supervisor"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp() (*fiber.App, *mockSupervisor, *countingNotifier) {
	app := fiber.New()
	sup := new(mockSupervisor)
	notify := new(countingNotifier)
	NewHandler(NewService(sup, notify, zap.NewNop())).RegisterRoutes(app)
	return app, sup, notify
}

func decode(t *testing.T, app *fiber.App, method, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil), 5000)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

var info = supervisor.ServerInfo{Version: "4.20.8", BaseURL: "http://127.0.0.1:11470"}

func TestHandleState(t *testing.T) {
	app, sup, notify := setupTestApp()
	sup.On("Snapshot").Return(supervisor.PhaseRunning, &info)

	status, body := decode(t, app, "GET", "/server")
	assert.Equal(t, 200, status)
	assert.Equal(t, "running", body["phase"])
	assert.Equal(t, "4.20.8", body["info"].(map[string]any)["version"])
	assert.Equal(t, int32(0), notify.n.Load())
}

func TestHandleState_Stopped(t *testing.T) {
	app, sup, _ := setupTestApp()
	sup.On("Snapshot").Return(supervisor.PhaseStopped, nil)

	_, body := decode(t, app, "GET", "/server")
	assert.Equal(t, "stopped", body["phase"])
	assert.Nil(t, body["info"])
}

func TestHandleStart(t *testing.T) {
	app, sup, notify := setupTestApp()
	sup.On("Start", mock.Anything).Return(info, nil)

	status, body := decode(t, app, "POST", "/server/start")
	assert.Equal(t, 200, status)
	assert.Equal(t, "http://127.0.0.1:11470", body["base_url"])
	assert.Equal(t, int32(1), notify.n.Load())
}

func TestHandleStart_Error(t *testing.T) {
	app, sup, notify := setupTestApp()
	sup.On("Start", mock.Anything).Return(supervisor.ServerInfo{}, supervisor.ErrNotReady(42, "4s", nil))

	status, body := decode(t, app, "POST", "/server/start")
	assert.Equal(t, 500, status)
	assert.Equal(t, "NOT_READY", body["code"])
	assert.NotEmpty(t, body["suggestion"])
	assert.Equal(t, int32(1), notify.n.Load())
}

func TestHandleStop(t *testing.T) {
	app, sup, _ := setupTestApp()
	sup.On("Stop", mock.Anything).Return(true, nil).Once()
	sup.On("Stop", mock.Anything).Return(false, nil).Once()

	status, body := decode(t, app, "POST", "/server/stop")
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["stopped"])

	_, body = decode(t, app, "POST", "/server/stop")
	assert.Equal(t, false, body["stopped"])
}

func TestHandleStop_KillFailed(t *testing.T) {
	app, sup, _ := setupTestApp()
	sup.On("Stop", mock.Anything).Return(true, supervisor.ErrStopFailed(42, assert.AnError))

	status, body := decode(t, app, "POST", "/server/stop")
	assert.Equal(t, 500, status)
	assert.Equal(t, "STOP_FAILED", body["code"])
	assert.Equal(t, true, body["stopped"])
}

func TestHandleRestart(t *testing.T) {
	app, sup, notify := setupTestApp()
	sup.On("Restart", mock.Anything).Return(info, nil)

	status, body := decode(t, app, "POST", "/server/restart")
	assert.Equal(t, 200, status)
	assert.Equal(t, "4.20.8", body["version"])
	assert.Equal(t, int32(1), notify.n.Load())
}

func TestLoader(t *testing.T) {
	feature := NewFeature(new(mockSupervisor), new(countingNotifier), zap.NewNop())

	assert.Equal(t, "server", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NotNil(t, feature.Service())
	assert.NoError(t, feature.Load(fiber.New()))
}
