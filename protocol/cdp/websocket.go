package cdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrNoTarget is returned when the inspector lists no debuggable target.
var ErrNoTarget = errors.New("no inspectable target")

// WebSocketConn is a Connection over the inspector's websocket endpoint.
type WebSocketConn struct {
	ws      *websocket.Conn
	codec   Codec
	writeMu sync.Mutex
}

var _ Connection = (*WebSocketConn)(nil)

// Dial opens a websocket connection to an inspector endpoint such as
// ws://127.0.0.1:9229/<uuid>. A nil codec selects JSON.
func Dial(ctx context.Context, url string, codec Codec) (*WebSocketConn, error) {
	if codec == nil {
		codec = &jsonCodec{}
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &WebSocketConn{ws: ws, codec: codec}, nil
}

// Send writes one frame.
func (c *WebSocketConn) Send(ctx context.Context, msg Message) error {
	data, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Receive blocks until the next frame arrives.
func (c *WebSocketConn) Receive(_ context.Context) (Message, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return Message{}, err
	}
	return c.codec.Decode(data)
}

// Close closes the websocket.
func (c *WebSocketConn) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.ws.Close()
}

// Target is one entry of the inspector's /json/list endpoint.
type Target struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// ResolveURL turns an address into a websocket debugger URL. Websocket URLs
// are returned unchanged; host:port addresses are resolved through the
// inspector's HTTP listing and the first target is selected.
func ResolveURL(ctx context.Context, addr string, hc *http.Client) (string, error) {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr, nil
	}
	targets, err := ListTargets(ctx, addr, hc)
	if err != nil {
		return "", err
	}
	for _, t := range targets {
		if t.WebSocketDebuggerURL != "" {
			return t.WebSocketDebuggerURL, nil
		}
	}
	return "", fmt.Errorf("%w at %s", ErrNoTarget, addr)
}

// ListTargets fetches the inspector's target listing from host:port.
func ListTargets(ctx context.Context, addr string, hc *http.Client) ([]Target, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(base, "/")+"/json/list", nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list targets: unexpected status %s", resp.Status)
	}

	var targets []Target
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	return targets, nil
}
