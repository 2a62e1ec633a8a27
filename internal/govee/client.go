package govee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nerrad567/govee-web/internal/device"
	"github.com/nerrad567/govee-web/internal/infrastructure/config"
)

// APIKeyHeader carries the developer API key on every request.
const APIKeyHeader = "Govee-API-Key"

const (
	devicesPath = "/v1/devices"
	statePath   = "/v1/devices/state"
	controlPath = "/v1/devices/control"

	defaultTimeout = 10 * time.Second

	// maxBodyBytes bounds how much of a reply is read.
	maxBodyBytes = 1 << 20
)

// Logger defines the logging interface used by the client.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Client talks to the Govee developer API.
//
// Thread Safety:
//   - Safe for concurrent use; it holds no mutable state after construction.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client from configuration.
//
// Parameters:
//   - cfg: API key, base URL, and request timeout
//   - opts: Optional overrides
func New(cfg config.GoveeConfig, opts ...Option) *Client {
	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.RemoteAPIURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// FetchDirectory lists every device on the account.
func (c *Client) FetchDirectory(ctx context.Context) (device.Directory, error) {
	var resp envelope[devicesData]
	if err := c.do(ctx, http.MethodGet, devicesPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	if resp.Data.Devices == nil {
		return device.Directory{}, nil
	}
	return resp.Data.Devices, nil
}

// State reads the live state of d.
func (c *Client) State(ctx context.Context, d device.Device) (device.State, error) {
	if !d.Retrievable {
		return device.State{}, fmt.Errorf("%w: %s does not report state", ErrUnsupportedCommand, d.ID)
	}

	q := url.Values{}
	q.Set("device", d.ID)
	q.Set("model", d.Model)

	var resp envelope[stateData]
	if err := c.do(ctx, http.MethodGet, statePath+"?"+q.Encode(), nil, &resp); err != nil {
		return device.State{}, fmt.Errorf("reading state: %w", err)
	}

	st, err := resp.Data.toState()
	if err != nil {
		return device.State{}, fmt.Errorf("%w: state properties: %w", ErrMalformedResponse, err)
	}
	if st.ID == "" {
		st.ID, st.Model = d.ID, d.Model
	}
	return st, nil
}

// Turn switches d on or off.
func (c *Client) Turn(ctx context.Context, d device.Device, power device.PowerState) error {
	return c.control(ctx, d, device.CommandTurn, string(power))
}

// SetColor sets the RGB colour of d.
func (c *Client) SetColor(ctx context.Context, d device.Device, color device.Color) error {
	return c.control(ctx, d, device.CommandColor, color)
}

func (c *Client) control(ctx context.Context, d device.Device, name string, value any) error {
	if !d.Controllable || !d.Supports(name) {
		return fmt.Errorf("%w: %s on %s (%s)", ErrUnsupportedCommand, name, d.ID, d.Model)
	}

	body := controlRequest{
		Device: d.ID,
		Model:  d.Model,
		Cmd:    controlCommand{Name: name, Value: value},
	}

	var resp envelope[json.RawMessage]
	if err := c.do(ctx, http.MethodPut, controlPath, body, &resp); err != nil {
		return fmt.Errorf("sending %s: %w", name, err)
	}
	return nil
}

// do sends one request and decodes the envelope into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("govee request", "method", method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: reading body: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env envelope[json.RawMessage]
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Code, apiErr.Message = env.Code, env.Message
		}
		if apiErr.Status == http.StatusTooManyRequests {
			c.logger.Warn("govee rate limit hit", "path", req.URL.Path,
				"retry_after", resp.Header.Get("Retry-After"))
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	// The envelope code can report failure on a 200 reply.
	var env envelope[json.RawMessage]
	if json.Unmarshal(raw, &env) == nil && env.Code != 0 && env.Code != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	return nil
}

var _ device.Upstream = (*Client)(nil)
