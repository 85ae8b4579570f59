package net

import (
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"LocalBoard/internal/geom"
	"LocalBoard/internal/state"
)

type fakeBoard struct {
	ids    chan string
	lines  chan *state.Line
	clears chan string
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		ids:    make(chan string, 4),
		lines:  make(chan *state.Line, 16),
		clears: make(chan string, 4),
	}
}

func (b *fakeBoard) SetLocalClientID(id string)  { b.ids <- id }
func (b *fakeBoard) AddRemoteLine(l *state.Line) { b.lines <- l }
func (b *fakeBoard) ClearRemote(owner string)    { b.clears <- owner }

const waitFor = 2 * time.Second

func recv[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatalf("timed out waiting for %s", what)
		var zero T
		return zero
	}
}

func expectNone[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected %s: %v", what, v)
	case <-time.After(100 * time.Millisecond):
	}
}

func startHub(t *testing.T, board Board) (*Hub, string) {
	t.Helper()
	hub := NewHub(board)
	mux := http.NewServeMux()
	mux.Handle(SocketPath, hub)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + SocketPath
}

type joined struct {
	client *Client
	board  *fakeBoard
	id     string
}

func join(t *testing.T, url string) *joined {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()

	c, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	b := newFakeBoard()
	go func() { _ = c.Listen(b) }()
	t.Cleanup(func() { _ = c.Close() })

	return &joined{client: c, board: b, id: recv(t, b.ids, "welcome")}
}

func waitPeers(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(waitFor)
	for hub.Len() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d peers, want %d", hub.Len(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testStroke(owner string) *state.Line {
	l := state.NewLine(owner, geom.Pt(0, 0), 3, color.Black)
	l.Append(geom.Pt(10, 10))
	l.Raw = geom.Clone(l.Points)
	return l
}

func TestHubWelcomesWithClientID(t *testing.T) {
	_, url := startHub(t, nil)
	a := join(t, url)
	b := join(t, url)

	if a.id == "" || b.id == "" {
		t.Fatalf("welcome ids = %q, %q, want non-empty", a.id, b.id)
	}
	if a.id == b.id {
		t.Errorf("both peers got id %q", a.id)
	}
}

func TestHubRelaysDrawToOtherPeers(t *testing.T) {
	host := newFakeBoard()
	hub, url := startHub(t, host)
	a := join(t, url)
	b := join(t, url)
	waitPeers(t, hub, 2)

	stroke := testStroke(a.id)
	a.client.StrokeCompleted(stroke)

	onHost := recv(t, host.lines, "line on host")
	onPeer := recv(t, b.board.lines, "line on other peer")
	for _, got := range []*state.Line{onHost, onPeer} {
		if got.ID != stroke.ID || got.OwnerID != a.id || got.Len() != 2 {
			t.Errorf("received %s by %s with %d points, want %s by %s with 2", got.ID, got.OwnerID, got.Len(), stroke.ID, a.id)
		}
	}
	expectNone(t, a.board.lines, "echo to sender")
}

func TestHubStrokeCompletedReachesEveryPeer(t *testing.T) {
	hub, url := startHub(t, nil)
	a := join(t, url)
	b := join(t, url)
	waitPeers(t, hub, 2)

	hub.StrokeCompleted(testStroke("host"))

	for _, p := range []*joined{a, b} {
		if got := recv(t, p.board.lines, "host line"); got.OwnerID != "host" {
			t.Errorf("OwnerID = %q, want host", got.OwnerID)
		}
	}
}

func TestHubRelaysClear(t *testing.T) {
	host := newFakeBoard()
	hub, url := startHub(t, host)
	a := join(t, url)
	b := join(t, url)
	waitPeers(t, hub, 2)

	if err := a.client.Send(NewClearMessage(a.id)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if got := recv(t, host.clears, "clear on host"); got != a.id {
		t.Errorf("host cleared %q, want %q", got, a.id)
	}
	if got := recv(t, b.board.clears, "clear on peer"); got != a.id {
		t.Errorf("peer cleared %q, want %q", got, a.id)
	}
}

func TestHubDropsMalformedDraw(t *testing.T) {
	host := newFakeBoard()
	hub, url := startHub(t, host)
	a := join(t, url)
	b := join(t, url)
	waitPeers(t, hub, 2)

	if err := a.client.Send(Message{Type: MessageDraw}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	expectNone(t, host.lines, "malformed line on host")
	expectNone(t, b.board.lines, "malformed line on peer")
}

func TestHubForgetsClosedPeers(t *testing.T) {
	hub, url := startHub(t, nil)
	a := join(t, url)
	waitPeers(t, hub, 1)

	if err := a.client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	waitPeers(t, hub, 0)
}

func TestLinkToURL(t *testing.T) {
	tests := []struct {
		link    string
		want    string
		wantErr bool
	}{
		{link: "localboard://192.168.1.5:8888", want: "ws://192.168.1.5:8888/ws"},
		{link: "localboard://board.local:9000/", want: "ws://board.local:9000/ws"},
		{link: "http://192.168.1.5:8888", wantErr: true},
		{link: "localboard://192.168.1.5", wantErr: true},
		{link: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			got, err := LinkToURL(tt.link)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LinkToURL(%q) error = %v, wantErr %v", tt.link, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("LinkToURL(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestShareLinkRoundTrip(t *testing.T) {
	link := ShareLink("10.0.0.7", 8888)
	if link != "localboard://10.0.0.7:8888" {
		t.Fatalf("ShareLink() = %q", link)
	}
	url, err := LinkToURL(link)
	if err != nil {
		t.Fatalf("LinkToURL() error = %v", err)
	}
	if url != "ws://10.0.0.7:8888/ws" {
		t.Errorf("LinkToURL() = %q", url)
	}
}

func TestOutboxDropsWhenFull(t *testing.T) {
	// No writer is running, so nothing drains the queue.
	o := newOutbox(nil)
	for i := range sendBuffer {
		if !o.enqueue([]byte("x")) {
			t.Fatalf("enqueue %d dropped, want queued", i)
		}
	}
	if o.enqueue([]byte("x")) {
		t.Error("enqueue on a full outbox = true, want dropped")
	}

	o.stop()
	o.stop()
	<-o.send
	if o.enqueue([]byte("x")) {
		t.Error("enqueue after stop = true, want dropped")
	}
}

func bigStroke(owner string, n int) *state.Line {
	l := state.NewLine(owner, geom.Pt(0, 0), 3, color.Black)
	for i := 1; i < n; i++ {
		l.Append(geom.Pt(float64(i), float64(i%7)))
	}
	l.Raw = geom.Clone(l.Points)
	return l
}

func TestHubStrokeCompletedDoesNotWaitForStalledPeer(t *testing.T) {
	hub, url := startHub(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	// This connection never reads, so its socket buffers fill up.
	stalled, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = stalled.Close() })
	b := join(t, url)
	waitPeers(t, hub, 2)

	line := bigStroke("host", 4000)
	start := time.Now()
	for range 4 * sendBuffer {
		hub.StrokeCompleted(line)
	}
	if elapsed := time.Since(start); elapsed > writeTimeout/2 {
		t.Errorf("StrokeCompleted took %v for a stalled peer, want it to return without waiting", elapsed)
	}

	if got := recv(t, b.board.lines, "line on the reading peer"); got.ID != line.ID {
		t.Errorf("reading peer got %s, want %s", got.ID, line.ID)
	}
}

func TestClientSendDoesNotWaitForHost(t *testing.T) {
	// The host upgrades and then never reads from the client.
	block := make(chan struct{})
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-block
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	line := bigStroke("me", 4000)
	start := time.Now()
	dropped := 0
	for range 4 * sendBuffer {
		if err := c.Send(NewDrawMessage(line)); errors.Is(err, ErrSendBufferFull) {
			dropped++
		} else if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > writeTimeout/2 {
		t.Errorf("Send took %v against a stalled host, want it to return without waiting", elapsed)
	}
	if dropped == 0 {
		t.Error("no message was dropped, want the overflow dropped instead of queued without bound")
	}
}
