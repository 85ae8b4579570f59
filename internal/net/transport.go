package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"LocalBoard/internal/logging"
	"LocalBoard/internal/state"
)

const (
	// LinkScheme prefixes share links handed out by a host.
	LinkScheme = "localboard://"
	// SocketPath is where the host serves the relay.
	SocketPath = "/ws"

	writeTimeout = 5 * time.Second
	// sendBuffer is how many messages may wait for a slow connection before
	// new ones are dropped.
	sendBuffer = 64
)

// ErrSendBufferFull is returned by Client.Send when the host is not keeping up.
var ErrSendBufferFull = errors.New("send buffer full")

// Board is the local end of a shared session. Implementations must be safe
// to call from network goroutines.
type Board interface {
	SetLocalClientID(id string)
	AddRemoteLine(l *state.Line)
	ClearRemote(owner string)
}

// outbox queues messages for one connection. Only run writes to the
// socket, so callers never wait on the network.
type outbox struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newOutbox(conn *websocket.Conn) *outbox {
	return &outbox{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue reports false when the message was dropped.
func (o *outbox) enqueue(data []byte) bool {
	select {
	case <-o.done:
		return false
	default:
	}
	select {
	case o.send <- data:
		return true
	default:
		return false
	}
}

// run writes queued messages until stop is called or a write fails. A
// failed write closes the connection so its reader ends too.
func (o *outbox) run(name string) {
	for {
		select {
		case <-o.done:
			return
		case data := <-o.send:
			_ = o.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := o.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Logger().Warn("[NET] write failed, closing", "conn", name, "error", err)
				o.stop()
				_ = o.conn.Close()
				return
			}
		}
	}
}

func (o *outbox) stop() {
	o.once.Do(func() { close(o.done) })
}

// Peer represents a connected client to the host.
type Peer struct {
	ID  string
	out *outbox
}

// Hub is run by the HOST. It accepts peers, applies what they draw to the
// host board, and relays it to every other peer.
type Hub struct {
	upgrader websocket.Upgrader
	board    Board

	peers map[*Peer]struct{}
	mu    sync.RWMutex
}

// NewHub creates a hub applying incoming messages to board. board may be nil
// for a pure relay.
func NewHub(board Board) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		board: board,
		peers: make(map[*Peer]struct{}),
	}
}

// Add registers a peer.
func (h *Hub) Add(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p] = struct{}{}
	logging.Logger().Info("[NET] peer connected", "peer", p.ID)
}

// Remove forgets a peer.
func (h *Hub) Remove(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, p)
	logging.Logger().Info("[NET] peer disconnected", "peer", p.ID)
}

// Len is the number of connected peers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Broadcast sends msg to every peer except exclude.
func (h *Hub) Broadcast(msg Message, exclude *Peer) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Logger().Error("[NET] encoding broadcast", "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Peer, 0, len(h.peers))
	for p := range h.peers {
		if p != exclude {
			targets = append(targets, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range targets {
		if !p.out.enqueue(data) {
			logging.Logger().Warn("[NET] peer not keeping up, dropping message", "peer", p.ID, "type", msg.Type)
		}
	}
}

// ServeHTTP upgrades the request and serves one peer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("[NET] upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	// A client's id is its address as the host sees it.
	peer := &Peer{ID: r.RemoteAddr, out: newOutbox(conn)}
	welcome, err := json.Marshal(Message{Type: MessageWelcome, OwnerID: peer.ID})
	if err != nil {
		logging.Logger().Error("[NET] encoding welcome", "peer", peer.ID, "error", err)
		return
	}
	peer.out.enqueue(welcome)
	go peer.out.run(peer.ID)
	defer peer.out.stop()

	h.Add(peer)
	defer h.Remove(peer)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Logger().Debug("[NET] read ended", "peer", peer.ID, "error", err)
			}
			return
		}
		h.handle(peer, msg)
	}
}

func (h *Hub) handle(from *Peer, msg Message) {
	logging.Logger().Debug("[NET] received", "type", msg.Type, "peer", from.ID)
	switch msg.Type {
	case MessageDraw:
		l, err := decodeDraw(msg)
		if err != nil {
			logging.Logger().Warn("[NET] dropping draw", "peer", from.ID, "error", err)
			return
		}
		if h.board != nil {
			h.board.AddRemoteLine(l)
		}
		h.Broadcast(msg, from)
	case MessageClear:
		if h.board != nil {
			h.board.ClearRemote(msg.OwnerID)
		}
		h.Broadcast(msg, from)
	default:
		logging.Logger().Debug("[NET] ignoring message", "type", msg.Type, "peer", from.ID)
	}
}

// StrokeCompleted broadcasts a line finished on the host's own board.
func (h *Hub) StrokeCompleted(l *state.Line) {
	h.Broadcast(NewDrawMessage(l), nil)
}

// Close disconnects every peer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.peers {
		p.out.stop()
		_ = p.out.conn.Close()
	}
}

// ListenAndServe serves the relay on addr until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle(SocketPath, h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	logging.Logger().Info("[NET] host relay listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Client is a peer's connection to a host.
type Client struct {
	conn *websocket.Conn
	out  *outbox
}

// Dial connects to the relay at url (ws://host:port/ws).
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{conn: conn, out: newOutbox(conn)}
	go c.out.run(url)
	return c, nil
}

// Send queues one message for the host without waiting for the network. It
// returns ErrSendBufferFull when the message had to be dropped.
func (c *Client) Send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding %s message: %w", msg.Type, err)
	}
	if !c.out.enqueue(data) {
		return ErrSendBufferFull
	}
	return nil
}

// Listen applies host messages to board until the connection drops. A
// normal close returns nil.
func (c *Client) Listen(board Board) error {
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		switch msg.Type {
		case MessageWelcome:
			board.SetLocalClientID(msg.OwnerID)
		case MessageDraw:
			l, err := decodeDraw(msg)
			if err != nil {
				logging.Logger().Warn("[NET] dropping draw from host", "error", err)
				continue
			}
			board.AddRemoteLine(l)
		case MessageClear:
			board.ClearRemote(msg.OwnerID)
		}
	}
}

// StrokeCompleted sends a line finished on this peer's board to the host.
func (c *Client) StrokeCompleted(l *state.Line) {
	if err := c.Send(NewDrawMessage(l)); err != nil {
		logging.Logger().Warn("[NET] failed to send drawing", "id", l.ID, "error", err)
	}
}

// Close stops the writer, sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.out.stop()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

// ShareLink builds the link a host hands out.
func ShareLink(host string, port int) string {
	return fmt.Sprintf("%s%s:%d", LinkScheme, host, port)
}

// LinkToURL turns a share link into the relay's websocket URL.
func LinkToURL(link string) (string, error) {
	if !strings.HasPrefix(link, LinkScheme) {
		return "", fmt.Errorf("not a %s link: %q", LinkScheme, link)
	}
	addr := strings.TrimSuffix(strings.TrimPrefix(link, LinkScheme), "/")
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", fmt.Errorf("bad link address %q: %w", addr, err)
	}
	return "ws://" + addr + SocketPath, nil
}
