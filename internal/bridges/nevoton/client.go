package nevoton

import (
	"context"
	"crypto/sha1" // #nosec G505 -- the device protocol mandates SHA-1 for its auth digest
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// API endpoints exposed by the controller.
const (
	endpointDeviceDescription = "/get/m2m/deviceDescription"
	endpointGetInputs         = "/get/m2m/inputs"
	endpointSetOutputs        = "/set/m2m/outputs"
)

// Query parameter names.
const (
	paramType   = "type"
	paramNumber = "number"
	paramSPName = "sp_name"
	paramValue  = "value"
	paramHash   = "hash"

	typeSpecific = "specific"
)

// defaultRequestTimeout covers one full exchange: connect, send, and
// read until the peer closes.
const defaultRequestTimeout = 10 * time.Second

// devicePort is the controller's fixed HTTP port.
const devicePort = "80"

// param is one ordered query parameter. The device is picky about
// parameter order, so a map cannot be used.
type param struct {
	key   string
	value string
}

// DeviceInfo is the controller's identity, fetched once and cached for
// the client's lifetime.
type DeviceInfo struct {
	ID              string `json:"id"`
	MAC             string `json:"mac"`
	FirmwareVersion string `json:"firmware_version"`
	ModuleName      string `json:"module_name"`
}

// ClientStats holds request counters for health reporting.
type ClientStats struct {
	RequestsTotal uint64
	ErrorsTotal   uint64
	LastSuccess   time.Time
}

// DeviceClient is the interface the bridge uses to talk to the
// controller. This allows mocking in tests.
type DeviceClient interface {
	FetchDeviceInfo(ctx context.Context) (DeviceInfo, error)
	FetchState(ctx context.Context) (map[string]any, error)
	SetParameter(ctx context.Context, name string, value float64) (bool, error)
	Info() DeviceInfo
	Stats() ClientStats
}

// Ensure Client implements DeviceClient.
var _ DeviceClient = (*Client)(nil)

// Client talks to the Nevoton Komfort controller.
//
// The controller's HTTP implementation is broken: it emits its status
// line twice and cannot be trusted to honour persistent connections,
// which makes standard HTTP clients reject or mis-parse its responses.
// The client therefore speaks raw TCP: one fresh connection per
// exchange, a minimal HTTP/1.0 GET with Connection: close, then read
// until the peer closes or the deadline passes.
//
// Authentication is a SHA-1 hex digest of the shared password, computed
// once at construction and appended as the last query parameter of
// every request.
//
// Thread Safety: requests are serialized internally so the one
// connection-at-a-time invariant holds even with concurrent callers.
type Client struct {
	addr    string // host:port dial target
	host    string // Host header value as configured
	digest  string
	timeout time.Duration

	// reqMu serializes exchanges: at most one in-flight connection.
	reqMu sync.Mutex

	// Cached identity from the last successful FetchDeviceInfo.
	info   DeviceInfo
	infoMu sync.RWMutex

	// Statistics (atomic for lock-free health reads)
	requestsTotal atomic.Uint64
	errorsTotal   atomic.Uint64
	lastSuccess   atomic.Int64 // Unix timestamp, 0 = never

	// dial is swappable for tests.
	dial func(ctx context.Context, addr string) (net.Conn, error)
}

// ClientConfig holds client construction parameters.
type ClientConfig struct {
	// Host is the controller's address. A bare host dials port 80;
	// an explicit host:port is honoured.
	Host string

	// Password is the shared secret. Only its SHA-1 digest is retained.
	Password string

	// Timeout bounds one full exchange (connect + send + read).
	// Default: 10 seconds.
	Timeout time.Duration
}

// NewClient creates a client for one controller.
//
// The password digest is computed here and the plaintext is not
// retained. No connection is opened until the first request.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("nevoton: host is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("nevoton: password is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	c := &Client{
		addr:    dialAddr(cfg.Host),
		host:    cfg.Host,
		digest:  hashPassword(cfg.Password),
		timeout: timeout,
	}
	c.dial = c.dialTCP

	return c, nil
}

// hashPassword derives the authentication digest from the shared secret.
// The device expects the SHA-1 hex digest, lowercase.
func hashPassword(password string) string {
	sum := sha1.Sum([]byte(password)) // #nosec G401 -- device protocol requirement
	return hex.EncodeToString(sum[:])
}

// dialAddr appends the device port when the host has none.
func dialAddr(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, devicePort)
}

// FetchDeviceInfo requests the device description and caches the
// identity fields for the accessors.
//
// Returns:
//   - DeviceInfo: Decoded identity (id, MAC, firmware, module name)
//   - error: ErrInvalidCredential, ErrConnectionFailed, or ErrAPIFailure
func (c *Client) FetchDeviceInfo(ctx context.Context) (DeviceInfo, error) {
	data, err := c.request(ctx, endpointDeviceDescription, nil)
	if err != nil {
		return DeviceInfo{}, err
	}

	info := DeviceInfo{
		FirmwareVersion: asString(data["firmwareVersion"]),
		ModuleName:      asString(data["moduleName"]),
	}
	if device, ok := data["device"].(map[string]any); ok {
		info.ID = asString(device["id"])
		info.MAC = asString(device["macSTA"])
	}

	c.infoMu.Lock()
	c.info = info
	c.infoMu.Unlock()

	return info, nil
}

// FetchState reads the full set of named points in one call.
//
// A payload missing the expected inputs.data nesting yields an empty
// map, not an error: the caller treats an empty snapshot as "no data
// yet".
//
// Returns:
//   - map[string]any: Point name to raw value mapping
//   - error: ErrInvalidCredential, ErrConnectionFailed, or ErrAPIFailure
func (c *Client) FetchState(ctx context.Context) (map[string]any, error) {
	data, err := c.request(ctx, endpointGetInputs, []param{
		{paramType, typeSpecific},
		{paramNumber, "All"},
	})
	if err != nil {
		return nil, err
	}

	return extractSnapshotValues(data), nil
}

// SetParameter writes one named output point.
//
// The value is truncated to an integer before transmission; the device
// protocol has no floating-point parameters. The returned bool is the
// application-level acknowledgement (outputs.error_ch == 0) and is
// independent of the error: a nil error with false means the device
// answered but refused the write.
//
// Returns:
//   - bool: true only when the device acknowledged the write
//   - error: ErrInvalidCredential, ErrConnectionFailed, or ErrAPIFailure
func (c *Client) SetParameter(ctx context.Context, name string, value float64) (bool, error) {
	data, err := c.request(ctx, endpointSetOutputs, []param{
		{paramType, typeSpecific},
		{paramNumber, "0"},
		{paramSPName, name},
		{paramValue, fmt.Sprintf("%d", int(value))},
	})
	if err != nil {
		return false, err
	}

	return extractWriteAck(data), nil
}

// Info returns the identity cached by the last successful
// FetchDeviceInfo. Zero-valued before the first fetch.
func (c *Client) Info() DeviceInfo {
	c.infoMu.RLock()
	defer c.infoMu.RUnlock()
	return c.info
}

// Stats returns request counters.
func (c *Client) Stats() ClientStats {
	stats := ClientStats{
		RequestsTotal: c.requestsTotal.Load(),
		ErrorsTotal:   c.errorsTotal.Load(),
	}
	if ts := c.lastSuccess.Load(); ts > 0 {
		stats.LastSuccess = time.Unix(ts, 0)
	}
	return stats
}

// request performs one complete exchange: compose, connect, send,
// read until close, extract, decode, classify.
func (c *Client) request(ctx context.Context, endpoint string, params []param) (map[string]any, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	c.requestsTotal.Add(1)

	raw, err := c.exchange(ctx, c.buildRequest(endpoint, params))
	if err != nil {
		c.errorsTotal.Add(1)
		return nil, err
	}

	// Tolerate undecodable byte sequences by substitution; failing the
	// whole read over a stray byte would drop an otherwise good payload.
	text := strings.ToValidUTF8(string(raw), "�")

	payload, err := extractPayload(text)
	if err != nil {
		c.errorsTotal.Add(1)
		return nil, err
	}

	data, err := decodePayload(payload)
	if err != nil {
		c.errorsTotal.Add(1)
		return nil, err
	}

	c.lastSuccess.Store(time.Now().Unix())
	return data, nil
}

// buildRequest composes the request bytes for one exchange.
//
// The digest is always the final query parameter. HTTP/1.0 with
// Connection: close keeps the device from attempting persistence it
// cannot deliver, and frees us from trusting its Content-Length.
func (c *Client) buildRequest(endpoint string, params []param) []byte {
	var query strings.Builder
	for _, p := range params {
		query.WriteString(p.key)
		query.WriteByte('=')
		query.WriteString(p.value)
		query.WriteByte('&')
	}
	query.WriteString(paramHash)
	query.WriteByte('=')
	query.WriteString(c.digest)

	return []byte(fmt.Sprintf(
		"GET %s?%s HTTP/1.0\r\nHost: %s\r\nConnection: close\r\n\r\n",
		endpoint, query.String(), c.host,
	))
}

// exchange opens a fresh connection, sends the request, and reads
// until the peer closes or the deadline passes. The connection is
// always released, including on the timeout path.
func (c *Client) exchange(ctx context.Context, request []byte) ([]byte, error) {
	conn, err := c.dial(ctx, c.addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %w", ErrConnectionFailed, err)
	}
	defer conn.Close() //nolint:errcheck // One-shot connection, nothing to recover

	// One deadline covers send and the full read-until-close.
	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("%w: set deadline: %w", ErrConnectionFailed, err)
	}

	if _, err := conn.Write(request); err != nil {
		return nil, fmt.Errorf("%w: send: %w", ErrConnectionFailed, err)
	}

	raw, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrConnectionFailed, err)
	}

	return raw, nil
}

// dialTCP is the production dialer. The dial shares the request
// timeout so connect and read cannot exceed it together.
func (c *Client) dialTCP(ctx context.Context, addr string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	return dialer.DialContext(ctx, "tcp", addr)
}

// asString coerces a decoded JSON value to string, tolerating absent
// or non-string fields.
func asString(v any) string {
	s, _ := v.(string)
	return s
}
