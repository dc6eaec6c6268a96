// ABOUTME: WebSocket client for the Buttplug v3 protocol
// ABOUTME: Handles connection, handshake, keepalive, and request routing
package buttplug

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const handshakeTimeout = 5 * time.Second

// ErrClosed is returned for operations on a disconnected client.
var ErrClosed = errors.New("buttplug: connection closed")

// ServerError is a protocol-level error reply from the server.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("buttplug: server error %d: %s", e.Code, e.Message)
}

// Config holds client configuration.
type Config struct {
	// ServerURL is the WebSocket endpoint, e.g. ws://localhost:12345/buttplug.
	ServerURL string

	// ClientName identifies this client to the server during handshake.
	ClientName string
}

// Client is a Buttplug protocol client. Create with NewClient, establish the
// connection with Connect, and release it with Disconnect.
type Client struct {
	config Config
	log    zerolog.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	pending   map[uint32]chan envelope

	writeMu sync.Mutex
	nextID  atomic.Uint32

	serverInfo ServerInfo

	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient creates a client. No I/O happens until Connect.
func NewClient(config Config, log zerolog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		config:  config,
		log:     log,
		pending: make(map[uint32]chan envelope),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect dials the server and performs the protocol handshake. On success a
// reader goroutine routes replies, and a keepalive loop starts if the server
// enforces a ping time.
func (c *Client) Connect() error {
	c.log.Info().Str("url", c.config.ServerURL).Msg("Connecting to actuator server")

	conn, _, err := websocket.DefaultDialer.Dial(c.config.ServerURL, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Disconnect()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	if c.serverInfo.MaxPingTime > 0 {
		go c.pingLoop(time.Duration(c.serverInfo.MaxPingTime) * time.Millisecond / 2)
	}

	return nil
}

// handshake exchanges RequestServerInfo/ServerInfo before the reader starts.
func (c *Client) handshake() error {
	id := c.nextID.Add(1)
	req := envelope{RequestServerInfo: &RequestServerInfo{
		ID:             id,
		ClientName:     c.config.ClientName,
		MessageVersion: CurrentMessageVersion,
	}}
	if err := c.send(req); err != nil {
		return fmt.Errorf("failed to send RequestServerInfo: %w", err)
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		return err
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read ServerInfo: %w", err)
	}
	if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
		return err
	}

	var replies []envelope
	if err := json.Unmarshal(data, &replies); err != nil {
		return fmt.Errorf("failed to parse handshake reply: %w", err)
	}

	for _, reply := range replies {
		if reply.Error != nil {
			return &ServerError{Code: reply.Error.ErrorCode, Message: reply.Error.ErrorMessage}
		}
		if reply.ServerInfo != nil {
			c.serverInfo = *reply.ServerInfo
			c.log.Info().
				Str("server", c.serverInfo.ServerName).
				Uint32("message_version", c.serverInfo.MessageVersion).
				Uint32("max_ping_ms", c.serverInfo.MaxPingTime).
				Msg("Handshake complete")
			return nil
		}
	}
	return errors.New("expected ServerInfo reply")
}

// ServerInfo returns the handshake result. Valid after Connect.
func (c *Client) ServerInfo() ServerInfo {
	return c.serverInfo
}

// send writes one envelope as a single-element message array.
func (c *Client) send(e envelope) error {
	c.mu.RLock()
	conn, connected := c.conn, c.connected
	c.mu.RUnlock()

	if !connected {
		return ErrClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON([]envelope{e})
}

// roundTrip sends a request and waits for the reply with a matching ID. An
// Error reply is converted to *ServerError.
func (c *Client) roundTrip(ctx context.Context, id uint32, e envelope) (envelope, error) {
	ch := make(chan envelope, 1)

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return envelope{}, ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.send(e); err != nil {
		return envelope{}, err
	}

	select {
	case reply := <-ch:
		if reply.Error != nil {
			return envelope{}, &ServerError{
				Code:    reply.Error.ErrorCode,
				Message: reply.Error.ErrorMessage,
			}
		}
		return reply, nil
	case <-ctx.Done():
		return envelope{}, ctx.Err()
	case <-c.ctx.Done():
		return envelope{}, ErrClosed
	}
}

// expectOk performs a round trip whose only valid success reply is Ok.
func (c *Client) expectOk(ctx context.Context, id uint32, e envelope, what string) error {
	reply, err := c.roundTrip(ctx, id, e)
	if err != nil {
		return err
	}
	if reply.Ok == nil {
		return fmt.Errorf("unexpected reply to %s", what)
	}
	return nil
}

// StartScanning asks the server to begin device discovery.
func (c *Client) StartScanning(ctx context.Context) error {
	id := c.nextID.Add(1)
	return c.expectOk(ctx, id, envelope{StartScanning: &StartScanning{ID: id}}, "StartScanning")
}

// StopScanning asks the server to end device discovery.
func (c *Client) StopScanning(ctx context.Context) error {
	id := c.nextID.Add(1)
	return c.expectOk(ctx, id, envelope{StopScanning: &StopScanning{ID: id}}, "StopScanning")
}

// Devices fetches the server's current device list.
func (c *Client) Devices(ctx context.Context) ([]*Device, error) {
	id := c.nextID.Add(1)
	reply, err := c.roundTrip(ctx, id, envelope{RequestDeviceList: &RequestDeviceList{ID: id}})
	if err != nil {
		return nil, err
	}
	if reply.DeviceList == nil {
		return nil, errors.New("expected DeviceList reply")
	}

	devices := make([]*Device, 0, len(reply.DeviceList.Devices))
	for _, info := range reply.DeviceList.Devices {
		devices = append(devices, &Device{
			client:  c,
			index:   info.DeviceIndex,
			name:    info.DeviceName,
			scalars: info.DeviceMessages.ScalarCmd,
		})
	}
	return devices, nil
}

// StopAllDevices halts actuation on every connected device.
func (c *Client) StopAllDevices(ctx context.Context) error {
	id := c.nextID.Add(1)
	return c.expectOk(ctx, id, envelope{StopAllDevices: &StopAllDevices{ID: id}}, "StopAllDevices")
}

// readMessages reads frames and routes replies to waiting callers.
func (c *Client) readMessages() {
	defer c.Disconnect()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.RLock()
			connected := c.connected
			c.mu.RUnlock()
			if connected {
				c.log.Warn().Err(err).Msg("Read error")
			}
			return
		}

		var msgs []envelope
		if err := json.Unmarshal(data, &msgs); err != nil {
			c.log.Warn().Err(err).Msg("Failed to parse server message")
			continue
		}

		for _, msg := range msgs {
			c.route(msg)
		}
	}
}

// route delivers one message to its waiting request, or logs it if it is
// server-initiated.
func (c *Client) route(msg envelope) {
	id, ok := msg.id()
	if ok && id != 0 {
		c.mu.RLock()
		ch, waiting := c.pending[id]
		c.mu.RUnlock()
		if waiting {
			select {
			case ch <- msg:
			default:
			}
			return
		}
	}

	// Server-initiated traffic. The endpoint set is fixed at startup, so
	// device arrival and departure are informational only.
	switch {
	case msg.DeviceAdded != nil:
		c.log.Info().Str("device", msg.DeviceAdded.DeviceName).
			Uint32("index", msg.DeviceAdded.DeviceIndex).
			Msg("Device connected after startup; ignoring")
	case msg.DeviceRemoved != nil:
		c.log.Warn().Uint32("index", msg.DeviceRemoved.DeviceIndex).
			Msg("Device disconnected")
	case msg.ScanningFinished != nil:
		c.log.Debug().Msg("Scanning finished")
	case msg.Error != nil:
		c.log.Warn().Int("code", msg.Error.ErrorCode).
			Str("message", msg.Error.ErrorMessage).
			Msg("Server error")
	default:
		c.log.Debug().Msg("Unhandled server message")
	}
}

// pingLoop keeps the connection alive per the server's MaxPingTime.
func (c *Client) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			id := c.nextID.Add(1)
			ctx, cancel := context.WithTimeout(c.ctx, interval)
			err := c.expectOk(ctx, id, envelope{Ping: &Ping{ID: id}}, "Ping")
			cancel()
			if err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled) {
				c.log.Warn().Err(err).Msg("Keepalive ping failed")
			}
		}
	}
}

// Disconnect stops all devices best-effort and closes the connection.
// Idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	// Best-effort: the server also stops devices when the socket drops.
	id := c.nextID.Add(1)
	c.writeMu.Lock()
	_ = conn.WriteJSON([]envelope{{StopAllDevices: &StopAllDevices{ID: id}}})
	c.writeMu.Unlock()

	c.cancel()
	_ = conn.Close()
	c.log.Info().Msg("Disconnected from actuator server")
}

// IsConnected reports whether the client holds a live connection.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
