package client

import (
	"context"
	"strings"

	"bizdir/internal/domain"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// SubscribeLikes streams like toggles into events until ctx is cancelled
// or the connection drops. It closes events on return.
func (c *Client) SubscribeLikes(ctx context.Context, events chan<- domain.LikeEvent) error {
	defer close(events)

	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/likes/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	defer conn.Close()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var ev domain.LikeEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
