package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrBusy indica que el cliente ya tiene una operación igual en curso.
var ErrBusy = errors.New("operation already in progress")

// BusyGuard permite una sola operación en curso por cliente y tipo de operación.
type BusyGuard interface {
	Acquire(ctx context.Context, clientID, op string) (release func(), err error)
}

type memoryBusyGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewMemoryBusyGuard() BusyGuard {
	return &memoryBusyGuard{active: make(map[string]struct{})}
}

func (g *memoryBusyGuard) Acquire(_ context.Context, clientID, op string) (func(), error) {
	key := busyKey(clientID, op)
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.active[key]; ok {
		return nil, ErrBusy
	}
	g.active[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}, nil
}

// releaseScript borra la clave solo si todavía guarda el token de quien la tomó.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`

type redisLocker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisBusyGuard struct {
	client redisLocker
	ttl    time.Duration
	prefix string
}

// NewRedisBusyGuard comparte el estado ocupado entre réplicas. ttl acota el
// bloqueo si el proceso muere antes de liberar.
func NewRedisBusyGuard(client *redis.Client, ttl time.Duration) BusyGuard {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisBusyGuard{client: client, ttl: ttl, prefix: "ecovision:busy:"}
}

func (g *redisBusyGuard) Acquire(ctx context.Context, clientID, op string) (func(), error) {
	noop := func() {}
	if g == nil || g.client == nil {
		return noop, nil
	}
	key := g.prefix + busyKey(clientID, op)
	token := uuid.NewString()

	ctxSet, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	ok, err := g.client.SetNX(ctxSet, key, token, g.ttl).Result()
	if err != nil {
		// Redis caído: no bloquear al usuario.
		return noop, nil
	}
	if !ok {
		return nil, ErrBusy
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			ctxDel, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			_ = g.client.Eval(ctxDel, releaseScript, []string{key}, token).Err()
		})
	}, nil
}

func busyKey(clientID, op string) string {
	return strings.TrimSpace(clientID) + ":" + op
}
