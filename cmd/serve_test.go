package cmd

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"chatapp/server/internal/config"
	"chatapp/server/internal/store"
	"chatapp/server/internal/store/memory"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:          "0",
		StoreDriver:   config.DriverMemory,
		CurrentUserID: 1,
		CORSOrigins:   "http://localhost:3000",
		UploadDir:     t.TempDir(),
		LogLevel:      "info",
		StoreTimeout:  time.Second,
	}
}

func TestNewApp_ServesSeededData(t *testing.T) {
	st := memory.New()
	_, err := store.Seed(context.Background(), st, time.Now())
	require.NoError(t, err)

	app := newApp(testConfig(t), st)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/user/current", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var user struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	require.EqualValues(t, 1, user.ID)
	require.Equal(t, "sarah", user.Username)
}

func TestNewApp_UnknownRoute(t *testing.T) {
	app := newApp(testConfig(t), memory.New())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/nope", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, false, body["success"])
	require.NotEmpty(t, body["message"])
}

func TestCORS(t *testing.T) {
	app := newApp(testConfig(t), memory.New())

	req := httptest.NewRequest("OPTIONS", "/api/contacts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestVersion(t *testing.T) {
	require.Contains(t, Version(), currentVersion)
}
