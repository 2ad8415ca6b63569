package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/internal/config"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(config.RemoteConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.RemoteConfig{BaseURL: "https://api.example.com"}, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestDeviceBindFailureSurfacesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such device", http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Device(context.Background(), "missing-device")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestRegisterLocalDeviceReturnsHandle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/boxes/register", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"box_id":"box-emulator_5554"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	handle, err := client.RegisterLocalDevice(context.Background(), "emulator-5554")
	require.NoError(t, err)
	assert.Equal(t, "box-emulator_5554", handle.ID())
}

func TestRegisterLocalDeviceFallsBackToLocalID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	handle, err := client.RegisterLocalDevice(context.Background(), "emulator-5554")
	require.NoError(t, err)
	assert.Equal(t, "emulator-5554", handle.ID())
}

func TestHandleReleaseReturnsFirstOutcome(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			calls++
			http.Error(w, "already gone", http.StatusConflict)
			return
		}
		w.Write([]byte(`{"box_id":"box-1"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	handle, err := client.RegisterLocalDevice(context.Background(), "emulator-5554")
	require.NoError(t, err)

	first := handle.Release(context.Background())
	require.Error(t, first)
	second := handle.Release(context.Background())
	assert.Equal(t, first, second, "repeat release must not re-issue the request")
	assert.Equal(t, 1, calls)
}
