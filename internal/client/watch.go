package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vbonduro/photoshare/internal/notify"
)

// Watch subscribes to live server events and calls fn for each one until ctx
// is cancelled or the connection drops. A clean shutdown returns nil.
func (c *Client) Watch(ctx context.Context, fn func(notify.Event)) error {
	wsURL, err := c.websocketURL()
	if err != nil {
		return err
	}

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to subscribe: server returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("event stream closed: %w", err)
		}
		var ev notify.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		fn(ev)
	}
}

func (c *Client) websocketURL() (string, error) {
	u, err := url.Parse(c.baseURL + "/api/ws")
	if err != nil {
		return "", err
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", errors.New("unsupported scheme " + u.Scheme)
	}
	return u.String(), nil
}
