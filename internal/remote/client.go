// Package remote is the boundary to the remote device-automation
// service. It exposes an API-key-authenticated client and per-device
// session handles; everything beyond the HTTP surface is opaque to the
// rest of the system.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/droidpilot/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMissingAPIKey is returned when a client is constructed without
// credentials. This is a configuration error and is never recovered from.
var ErrMissingAPIKey = errors.New("remote automation API key is required (set DROIDPILOT_REMOTE_API_KEY)")

// Client talks to the remote device-automation service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewClient builds a client from configuration. A missing API key fails
// construction immediately.
func NewClient(cfg config.RemoteConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger.Named("remote"),
	}, nil
}

// do issues one authenticated request and decodes a JSON response into
// out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("remote service returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// raw issues one authenticated GET and returns the response body verbatim.
func (c *Client) raw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remote service returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Device binds to an already-registered cloud device and returns its
// session handle.
func (c *Client) Device(ctx context.Context, id string) (*DeviceHandle, error) {
	var info deviceInfo
	if err := c.do(ctx, http.MethodGet, "/v1/boxes/"+id, nil, &info); err != nil {
		return nil, fmt.Errorf("failed to bind device %s: %w", id, err)
	}
	c.logger.Info("Bound to remote device.", zap.String("device_id", id))
	return &DeviceHandle{client: c, id: id}, nil
}

// RegisterLocalDevice registers a locally bridged device (typically an
// emulator) with the service and returns the new session handle.
func (c *Client) RegisterLocalDevice(ctx context.Context, id string) (*DeviceHandle, error) {
	var resp struct {
		BoxID string `json:"box_id"`
	}
	body := map[string]string{"device_id": id}
	if err := c.do(ctx, http.MethodPost, "/v1/boxes/register", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to register local device %s: %w", id, err)
	}
	boxID := resp.BoxID
	if boxID == "" {
		boxID = id
	}
	c.logger.Info("Registered local device.",
		zap.String("device_id", id), zap.String("box_id", boxID))
	return &DeviceHandle{client: c, id: boxID}, nil
}
