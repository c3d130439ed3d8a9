package xrpl

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ledgerline/xrplmarketd/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings to the peer at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// callTimeout bounds a single correlated request/response round trip.
	callTimeout = 30 * time.Second
)

// LedgerClosedHandler is called for every ledgerClosed stream event.
type LedgerClosedHandler func(LedgerClosed)

// LedgerClosed is one ledgerClosed stream message.
type LedgerClosed struct {
	LedgerIndex int64 `json:"ledger_index"`
	LedgerTime  int64 `json:"ledger_time"`
	TxnCount    int   `json:"txn_count"`
}

// wsMessage is the superset of fields needed to route an incoming frame:
// correlated responses carry an id, stream events carry a type.
type wsMessage struct {
	ID           int64           `json:"id,omitempty"`
	Type         string          `json:"type,omitempty"`
	Status       string          `json:"status,omitempty"`
	Error        string          `json:"error,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`

	// Inlined ledgerClosed payload.
	LedgerIndex int64 `json:"ledger_index,omitempty"`
	LedgerTime  int64 `json:"ledger_time,omitempty"`
	TxnCount    int   `json:"txn_count,omitempty"`
}

// WSClient is a WebSocket client for an XRPL node. It correlates commands
// with responses by request id and dispatches stream events to registered
// handlers.
type WSClient struct {
	wsURL string

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	nextID int64

	pending map[int64]chan wsMessage

	handlerMu      sync.RWMutex
	ledgerHandlers []LedgerClosedHandler

	// subscriptions to restore on reconnect.
	subscriptions []map[string]any

	done    chan struct{}
	dropped chan struct{}
}

// NewWSClient creates a WebSocket client for the given endpoint, e.g.
// "wss://s1.ripple.com".
func NewWSClient(wsURL string) *WSClient {
	return &WSClient{
		wsURL:   wsURL,
		pending: make(map[int64]chan wsMessage),
		done:    make(chan struct{}),
		dropped: make(chan struct{}, 1),
	}
}

// Connect establishes the WebSocket connection and starts the read and ping
// loops.
func (w *WSClient) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("xrpl/ws: %w", domain.ErrWSDisconnect)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("xrpl/ws: connect: %w", err)
	}
	w.conn = conn

	w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go w.readLoop(conn)
	go w.pingLoop(conn)

	// Restore stream subscriptions after reconnect.
	for _, cmd := range w.subscriptions {
		if err := w.writeLocked(cmd); err != nil {
			return fmt.Errorf("xrpl/ws: restore subscription: %w", err)
		}
	}

	return nil
}

// Call sends one command and waits for its correlated response.
func (w *WSClient) Call(ctx context.Context, command string, params map[string]any) (json.RawMessage, error) {
	w.mu.Lock()
	if w.conn == nil || w.closed {
		w.mu.Unlock()
		return nil, fmt.Errorf("xrpl/ws: %s: %w", command, domain.ErrWSDisconnect)
	}

	w.nextID++
	id := w.nextID
	ch := make(chan wsMessage, 1)
	w.pending[id] = ch

	msg := map[string]any{"id": id, "command": command}
	for k, v := range params {
		msg[k] = v
	}
	err := w.writeLocked(msg)
	w.mu.Unlock()

	if err != nil {
		w.dropPending(id)
		return nil, fmt.Errorf("xrpl/ws: %s: write: %w", command, err)
	}

	timer := time.NewTimer(callTimeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if resp.Status == "error" || resp.Error != "" {
			return nil, resultErr(command, rpcStatus{
				Status:       resp.Status,
				Error:        resp.Error,
				ErrorMessage: resp.ErrorMessage,
			})
		}
		return resp.Result, nil
	case <-timer.C:
		w.dropPending(id)
		return nil, fmt.Errorf("xrpl/ws: %s: timed out: %w", command, domain.ErrUpstreamUnavailable)
	case <-ctx.Done():
		w.dropPending(id)
		return nil, ctx.Err()
	case <-w.done:
		return nil, fmt.Errorf("xrpl/ws: %s: %w", command, domain.ErrWSDisconnect)
	}
}

// SubscribeLedger subscribes to the ledger close stream.
func (w *WSClient) SubscribeLedger(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil || w.closed {
		return fmt.Errorf("xrpl/ws: subscribe: %w", domain.ErrWSDisconnect)
	}

	cmd := map[string]any{"command": "subscribe", "streams": []string{"ledger"}}
	if err := w.writeLocked(cmd); err != nil {
		return fmt.Errorf("xrpl/ws: subscribe ledger: %w", err)
	}
	w.subscriptions = append(w.subscriptions, cmd)
	return nil
}

// OnLedgerClosed registers a handler for ledger close events.
func (w *WSClient) OnLedgerClosed(h LedgerClosedHandler) {
	w.handlerMu.Lock()
	defer w.handlerMu.Unlock()
	w.ledgerHandlers = append(w.ledgerHandlers, h)
}

// Dropped signals whenever the read loop exits on a connection failure.
// Callers use it to drive reconnection.
func (w *WSClient) Dropped() <-chan struct{} {
	return w.dropped
}

// Close shuts the client down. Pending calls fail with ErrWSDisconnect.
func (w *WSClient) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)

	if w.conn != nil {
		w.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		return w.conn.Close()
	}
	return nil
}

// writeLocked writes one JSON frame; callers must hold mu.
func (w *WSClient) writeLocked(v any) error {
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(v)
}

func (w *WSClient) dropPending(id int64) {
	w.mu.Lock()
	delete(w.pending, id)
	w.mu.Unlock()
}

func (w *WSClient) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			w.failPending()
			select {
			case w.dropped <- struct{}{}:
			default:
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch {
		case msg.ID != 0:
			w.mu.Lock()
			ch, ok := w.pending[msg.ID]
			if ok {
				delete(w.pending, msg.ID)
			}
			w.mu.Unlock()
			if ok {
				ch <- msg
			}
		case msg.Type == "ledgerClosed":
			evt := LedgerClosed{
				LedgerIndex: msg.LedgerIndex,
				LedgerTime:  msg.LedgerTime,
				TxnCount:    msg.TxnCount,
			}
			w.handlerMu.RLock()
			handlers := w.ledgerHandlers
			w.handlerMu.RUnlock()
			for _, h := range handlers {
				h(evt)
			}
		}
	}
}

// failPending unblocks every in-flight call after the connection drops.
func (w *WSClient) failPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, ch := range w.pending {
		ch <- wsMessage{Status: "error", Error: "connectionDropped"}
		delete(w.pending, id)
	}
}

func (w *WSClient) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-w.done:
			return
		}
	}
}
