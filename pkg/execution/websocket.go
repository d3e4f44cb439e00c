package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

const inboxBuffer = 64

// WebsocketTransport speaks JSON text frames over a single websocket
// connection to the executor.
type WebsocketTransport struct {
	url    string
	logger *slog.Logger

	mu    sync.Mutex
	conn  *websocket.Conn
	inbox chan []byte
}

func NewWebsocketTransport(url string, logger *slog.Logger) *WebsocketTransport {
	return &WebsocketTransport{
		url:    url,
		logger: logger,
	}
}

// Connect dials the executor. Connecting while already connected is a
// no-op.
func (t *WebsocketTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.url, err)
	}

	inbox := make(chan []byte, inboxBuffer)
	t.conn = conn
	t.inbox = inbox

	go t.readLoop(conn, inbox)

	return nil
}

func (t *WebsocketTransport) readLoop(conn *websocket.Conn, inbox chan []byte) {
	defer close(inbox)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.logger.Debug("execution channel read ended", "error", err)

			t.mu.Lock()
			if t.conn == conn {
				t.conn = nil
			}
			t.mu.Unlock()

			return
		}

		inbox <- payload
	}
}

// Send writes one text frame. Writes are serialized under the transport
// lock; gorilla connections allow only one concurrent writer.
func (t *WebsocketTransport) Send(_ context.Context, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return ErrNotConnected
	}

	return t.conn.WriteMessage(websocket.TextMessage, payload)
}

// Receive returns the inbound stream for the current connection.
func (t *WebsocketTransport) Receive() <-chan []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.inbox
}

// Close drops the connection. The read loop closes the inbound stream.
func (t *WebsocketTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}

	return conn.Close()
}
