package loader_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"stremio-service/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *fakeFeature) Name() string    { return f.name }
func (f *fakeFeature) IsEnabled() bool { return f.enabled }
func (f *fakeFeature) Load(app fiber.Router) error {
	if f.err != nil {
		return f.err
	}
	f.loaded = true
	app.Get("/"+f.name, func(c *fiber.Ctx) error { return c.SendString(f.name) })
	return nil
}

func TestManager_LoadAll(t *testing.T) {
	mgr := loader.NewManager(zap.NewNop())
	on := &fakeFeature{name: "on", enabled: true}
	off := &fakeFeature{name: "off", enabled: false}
	require.NoError(t, mgr.Register(on))
	require.NoError(t, mgr.Register(off))

	app := fiber.New()
	require.NoError(t, mgr.LoadAll(app))

	assert.True(t, on.loaded)
	assert.False(t, off.loaded)
	assert.Len(t, mgr.Features(), 2)

	resp, err := app.Test(httptest.NewRequest("GET", "/on", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/off", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestManager_DuplicateName(t *testing.T) {
	mgr := loader.NewManager(zap.NewNop())
	require.NoError(t, mgr.Register(&fakeFeature{name: "server"}))
	assert.Error(t, mgr.Register(&fakeFeature{name: "server"}))
}

func TestManager_LoadError(t *testing.T) {
	mgr := loader.NewManager(zap.NewNop())
	boom := errors.New("boom")
	require.NoError(t, mgr.Register(&fakeFeature{name: "bad", enabled: true, err: boom}))

	err := mgr.LoadAll(fiber.New())
	assert.ErrorIs(t, err, boom)
}
