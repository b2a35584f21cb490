package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ecovision/internal/domain"
	"ecovision/internal/service"
)

// Tipos de frame que viajan por /ws/chat.
const (
	frameConnected = "connected"
	frameTyping    = "typing"
	frameMessage   = "message"
	frameError     = "error"
)

const (
	chatChannelPrefix = "ecovision:chat:"
	wsWriteTimeout    = 5 * time.Second
	subscribeTimeout  = 3 * time.Second
)

type chatFrame struct {
	Type     string               `json:"type"`
	Message  *domain.ChatMessage  `json:"message,omitempty"`
	Messages []domain.ChatMessage `json:"messages,omitempty"`
	Error    string               `json:"error,omitempty"`
}

type chatRequest struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

// ChatSocketHandler mantiene la conversación en vivo por WebSocket. Todas las
// pestañas del mismo cliente reciben los mismos frames.
type ChatSocketHandler struct {
	logger   *zap.Logger
	chat     *service.ChatService
	hub      *chatHub
	upgrader websocket.Upgrader
}

// NewChatSocketHandler crea el handler. Con rdb != nil los frames se reparten
// por Redis pub/sub para llegar a conexiones de otras réplicas.
func NewChatSocketHandler(logger *zap.Logger, chat *service.ChatService, rdb *redis.Client) *ChatSocketHandler {
	var bus chatBus
	if rdb != nil {
		bus = redisChatBus{rdb: rdb}
	}
	return newChatSocketHandler(logger, chat, bus)
}

func newChatSocketHandler(logger *zap.Logger, chat *service.ChatService, bus chatBus) *ChatSocketHandler {
	return &ChatSocketHandler{
		logger: logger,
		chat:   chat,
		hub:    newChatHub(logger, bus),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve maneja GET /ws/chat.
func (h *ChatSocketHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	ctx := c.Request.Context()
	clientID := GetClientID(c)
	ws := h.hub.register(clientID, conn)
	defer h.hub.unregister(clientID, ws)

	messages := h.chat.Transcript(clientID)
	if len(messages) == 0 {
		messages = []domain.ChatMessage{h.chat.Welcome(ctx, clientID)}
	}
	if err := ws.writeJSON(chatFrame{Type: frameConnected, Messages: messages}); err != nil {
		h.logger.Debug("failed to send connected frame", zap.Error(err))
		return
	}

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
		if !h.handle(ctx, clientID, ws, req) {
			return
		}
	}
}

// handle procesa un frame entrante. Devuelve false si hay que cerrar.
func (h *ChatSocketHandler) handle(ctx context.Context, clientID string, ws *wsConn, req chatRequest) bool {
	if req.Type == "welcome" {
		msg := h.chat.Welcome(ctx, clientID)
		h.hub.publish(ctx, clientID, chatFrame{Type: frameMessage, Message: &msg})
		return true
	}

	user, err := h.chat.Accept(ctx, clientID, req.Text, req.Language)
	if errors.Is(err, service.ErrEmptyMessage) {
		return true
	}
	if err != nil {
		h.logger.Error("chat message rejected", zap.Error(err))
		return ws.writeJSON(chatFrame{Type: frameError, Error: "could not accept message"}) == nil
	}
	h.hub.publish(ctx, clientID, chatFrame{Type: frameMessage, Message: &user})
	h.hub.publish(ctx, clientID, chatFrame{Type: frameTyping})

	reply, err := h.chat.Reply(ctx, clientID, user)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		h.logger.Error("chat reply failed", zap.Error(err))
		return ws.writeJSON(chatFrame{Type: frameError, Error: "could not generate reply"}) == nil
	}
	h.hub.publish(ctx, clientID, chatFrame{Type: frameMessage, Message: &reply})
	return true
}

// wsConn serializa las escrituras sobre una conexión.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.conn.WriteJSON(v)
}

func (w *wsConn) writeRaw(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// chatBus reparte frames entre réplicas.
type chatBus interface {
	// Subscribe vuelve cuando la suscripción ya está activa.
	Subscribe(ctx context.Context, channel string) (chatSubscription, error)
	Publish(ctx context.Context, channel string, payload []byte) error
}

type chatSubscription interface {
	ReceiveMessage(ctx context.Context) ([]byte, error)
	Close() error
}

type redisChatBus struct {
	rdb *redis.Client
}

func (b redisChatBus) Subscribe(ctx context.Context, channel string) (chatSubscription, error) {
	ps := b.rdb.Subscribe(ctx, channel)
	// Espera la confirmación del SUBSCRIBE.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	return redisSubscription{ps: ps}, nil
}

func (b redisChatBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.rdb.Publish(ctx, channel, payload).Err()
}

type redisSubscription struct {
	ps *redis.PubSub
}

func (s redisSubscription) ReceiveMessage(ctx context.Context) ([]byte, error) {
	msg, err := s.ps.ReceiveMessage(ctx)
	if err != nil {
		return nil, err
	}
	return []byte(msg.Payload), nil
}

func (s redisSubscription) Close() error { return s.ps.Close() }

// clientSub es la suscripción compartida por las conexiones de un cliente.
// active se escribe bajo chatHub.mu antes de cerrar ready.
type clientSub struct {
	ctx    context.Context
	cancel context.CancelFunc
	ready  chan struct{}
	active bool
}

// chatHub agrupa las conexiones abiertas por cliente.
type chatHub struct {
	logger *zap.Logger
	bus    chatBus
	mu     sync.RWMutex
	conns  map[string][]*wsConn
	subs   map[string]*clientSub
}

func newChatHub(logger *zap.Logger, bus chatBus) *chatHub {
	return &chatHub{
		logger: logger,
		bus:    bus,
		conns:  make(map[string][]*wsConn),
		subs:   make(map[string]*clientSub),
	}
}

// register agrega la conexión y, con bus, no vuelve hasta que la suscripción
// del cliente esté activa o haya fallado.
func (h *chatHub) register(clientID string, conn *websocket.Conn) *wsConn {
	ws := &wsConn{conn: conn}
	first := false

	h.mu.Lock()
	h.conns[clientID] = append(h.conns[clientID], ws)
	sub := h.subs[clientID]
	if h.bus != nil && sub == nil {
		ctx, cancel := context.WithCancel(context.Background())
		sub = &clientSub{ctx: ctx, cancel: cancel, ready: make(chan struct{})}
		h.subs[clientID] = sub
		first = true
	}
	n := len(h.conns[clientID])
	h.mu.Unlock()

	if first {
		h.subscribe(clientID, sub)
	}
	if sub != nil {
		select {
		case <-sub.ready:
		case <-time.After(subscribeTimeout):
			h.logger.Warn("chat subscription not ready", zap.String("client_id", clientID))
		}
	}
	h.logger.Debug("websocket connected", zap.String("client_id", clientID), zap.Int("connections", n))
	return ws
}

func (h *chatHub) subscribe(clientID string, sub *clientSub) {
	defer close(sub.ready)

	ctx, cancel := context.WithTimeout(sub.ctx, subscribeTimeout)
	s, err := h.bus.Subscribe(ctx, chatChannelPrefix+clientID)
	cancel()
	if err != nil {
		h.logger.Warn("chat subscribe failed, delivering locally", zap.String("client_id", clientID), zap.Error(err))
		return
	}
	h.mu.Lock()
	sub.active = true
	h.mu.Unlock()
	go h.listen(clientID, sub, s)
}

func (h *chatHub) listen(clientID string, sub *clientSub, s chatSubscription) {
	defer s.Close()
	for {
		payload, err := s.ReceiveMessage(sub.ctx)
		if err != nil {
			if sub.ctx.Err() == nil {
				h.logger.Warn("chat subscription lost, delivering locally", zap.String("client_id", clientID), zap.Error(err))
				h.mu.Lock()
				sub.active = false
				h.mu.Unlock()
			}
			return
		}
		h.broadcast(clientID, payload)
	}
}

func (h *chatHub) unregister(clientID string, ws *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = ws.conn.Close()

	conns := h.conns[clientID]
	for i, c := range conns {
		if c == ws {
			h.conns[clientID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.conns[clientID]) == 0 {
		delete(h.conns, clientID)
		if sub, ok := h.subs[clientID]; ok {
			sub.cancel()
			delete(h.subs, clientID)
		}
	}
	h.logger.Debug("websocket disconnected", zap.String("client_id", clientID))
}

// publish entrega el frame a todas las conexiones del cliente. Sin
// suscripción activa o si el bus falla, las conexiones locales lo reciben
// directamente.
func (h *chatHub) publish(ctx context.Context, clientID string, frame chatFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("failed to encode chat frame", zap.Error(err))
		return
	}
	h.mu.RLock()
	sub := h.subs[clientID]
	viaBus := sub != nil && sub.active
	h.mu.RUnlock()

	if h.bus != nil {
		err := h.bus.Publish(ctx, chatChannelPrefix+clientID, data)
		if err != nil {
			h.logger.Warn("chat publish failed, delivering locally", zap.Error(err))
			viaBus = false
		}
	}
	if !viaBus {
		h.broadcast(clientID, data)
	}
}

func (h *chatHub) broadcast(clientID string, data []byte) {
	h.mu.RLock()
	conns := append([]*wsConn(nil), h.conns[clientID]...)
	h.mu.RUnlock()

	for _, ws := range conns {
		if err := ws.writeRaw(data); err != nil {
			h.logger.Debug("websocket write failed", zap.String("client_id", clientID), zap.Error(err))
		}
	}
}

// Close corta las suscripciones de Redis abiertas.
func (h *ChatSocketHandler) Close() {
	h.hub.mu.Lock()
	defer h.hub.mu.Unlock()
	for id, sub := range h.hub.subs {
		sub.cancel()
		delete(h.hub.subs, id)
	}
}
