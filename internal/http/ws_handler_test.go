package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ecovision/internal/domain"
)

func dialChat(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	header.Set(clientHeader, testClientID)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat", header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) chatFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame chatFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func TestChatSocketConversation(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	conn := dialChat(t, srv)
	defer conn.Close()

	connected := readFrame(t, conn)
	if connected.Type != frameConnected || len(connected.Messages) != 1 || connected.Messages[0].ID != "welcome-en" {
		t.Fatalf("unexpected connected frame %+v", connected)
	}

	// Los frames vacíos no producen respuesta.
	if err := conn.WriteJSON(chatRequest{Text: "  "}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(chatRequest{Text: "How should I irrigate?"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	user := readFrame(t, conn)
	if user.Type != frameMessage || user.Message == nil || user.Message.Sender != domain.SenderUser {
		t.Fatalf("expected user echo, got %+v", user)
	}
	if typing := readFrame(t, conn); typing.Type != frameTyping {
		t.Fatalf("expected typing frame, got %+v", typing)
	}
	reply := readFrame(t, conn)
	if reply.Type != frameMessage || reply.Message == nil || reply.Message.Sender != domain.SenderAssistant {
		t.Fatalf("expected assistant reply, got %+v", reply)
	}
}

func TestChatSocketFanOutToSameClient(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	first := dialChat(t, srv)
	defer first.Close()
	readFrame(t, first)
	second := dialChat(t, srv)
	defer second.Close()
	readFrame(t, second)

	if err := first.WriteJSON(chatRequest{Text: "soil tips"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	echo := readFrame(t, second)
	if echo.Message == nil || echo.Message.Content != "soil tips" {
		t.Fatalf("expected echo on second tab, got %+v", echo)
	}
}

// memoryChatBus imita Redis pub/sub: solo entrega a suscripciones ya
// confirmadas, y la confirmación tarda subscribeDelay.
type memoryChatBus struct {
	subscribeDelay time.Duration
	subscribeErr   error

	mu        sync.Mutex
	subs      map[string][]*memorySubscription
	published int
}

func newMemoryChatBus(delay time.Duration) *memoryChatBus {
	return &memoryChatBus{subscribeDelay: delay, subs: make(map[string][]*memorySubscription)}
}

func (b *memoryChatBus) Subscribe(ctx context.Context, channel string) (chatSubscription, error) {
	select {
	case <-time.After(b.subscribeDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if b.subscribeErr != nil {
		return nil, b.subscribeErr
	}
	sub := &memorySubscription{bus: b, channel: channel, ch: make(chan []byte, 16)}
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], sub)
	b.mu.Unlock()
	return sub, nil
}

func (b *memoryChatBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published++
	for _, sub := range b.subs[channel] {
		select {
		case sub.ch <- payload:
		default:
		}
	}
	return nil
}

func (b *memoryChatBus) publishCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published
}

type memorySubscription struct {
	bus     *memoryChatBus
	channel string
	ch      chan []byte
}

func (s *memorySubscription) ReceiveMessage(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-s.ch:
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *memorySubscription) Close() error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	subs := s.bus.subs[s.channel]
	for i, sub := range subs {
		if sub == s {
			s.bus.subs[s.channel] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	return nil
}

func TestChatSocketWaitsForBusSubscription(t *testing.T) {
	bus := newMemoryChatBus(150 * time.Millisecond)
	app := newTestAppWithBus(t, bus)
	defer app.socket.Close()
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	conn := dialChat(t, srv)
	defer conn.Close()
	if connected := readFrame(t, conn); connected.Type != frameConnected {
		t.Fatalf("unexpected first frame %+v", connected)
	}

	// Un mensaje enviado justo después de conectar vuelve por el bus.
	if err := conn.WriteJSON(chatRequest{Text: "How should I irrigate?"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	user := readFrame(t, conn)
	if user.Type != frameMessage || user.Message == nil || user.Message.Sender != domain.SenderUser {
		t.Fatalf("expected user echo, got %+v", user)
	}
	if typing := readFrame(t, conn); typing.Type != frameTyping {
		t.Fatalf("expected typing frame, got %+v", typing)
	}
	if reply := readFrame(t, conn); reply.Message == nil || reply.Message.Sender != domain.SenderAssistant {
		t.Fatalf("expected assistant reply, got %+v", reply)
	}
	if got := bus.publishCount(); got != 3 {
		t.Fatalf("expected 3 frames through the bus, got %d", got)
	}
}

func TestChatSocketFallsBackWhenSubscribeFails(t *testing.T) {
	bus := newMemoryChatBus(0)
	bus.subscribeErr = errors.New("redis unavailable")
	app := newTestAppWithBus(t, bus)
	defer app.socket.Close()
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	conn := dialChat(t, srv)
	defer conn.Close()
	readFrame(t, conn)

	if err := conn.WriteJSON(chatRequest{Text: "soil tips"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	echo := readFrame(t, conn)
	if echo.Message == nil || echo.Message.Content != "soil tips" {
		t.Fatalf("expected local echo, got %+v", echo)
	}
}
