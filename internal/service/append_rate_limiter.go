package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AppendRateLimiter limita cuantos appends acepta un chat por ventana.
type AppendRateLimiter interface {
	Allow(ctx context.Context, chatID uuid.UUID) bool
}

// KEYS[1] = contador de la ventana, ARGV[1] = ttl en ms, ARGV[2] = maximo.
// Devuelve 1 si el append entra en la ventana, 0 si no.
var appendWindowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if n > tonumber(ARGV[2]) then
  return 0
end
return 1
`)

const appendLimitTimeout = 500 * time.Millisecond

type redisAppendRateLimiter struct {
	scripter redis.Scripter
	window   time.Duration
	max      int
	now      func() time.Time
}

// NewRedisAppendRateLimiter devuelve nil sin cliente; el servicio lo trata como desactivado.
func NewRedisAppendRateLimiter(client *redis.Client, window time.Duration, max int) AppendRateLimiter {
	if client == nil {
		return nil
	}
	return newAppendWindow(client, window, max)
}

func newAppendWindow(scripter redis.Scripter, window time.Duration, max int) *redisAppendRateLimiter {
	if window < time.Second {
		window = time.Minute
	}
	if max < 1 {
		max = 1
	}
	return &redisAppendRateLimiter{scripter: scripter, window: window, max: max, now: time.Now}
}

// windowKey agrupa los appends de un chat en ventanas fijas alineadas al reloj.
func (l *redisAppendRateLimiter) windowKey(chatID uuid.UUID) string {
	bucket := l.now().UnixMilli() / l.window.Milliseconds()
	return "chat:" + chatID.String() + ":appends:" + strconv.FormatInt(bucket, 10)
}

// Allow falla abierto: si Redis no responde, el append sigue.
func (l *redisAppendRateLimiter) Allow(ctx context.Context, chatID uuid.UUID) bool {
	if l == nil || l.scripter == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, appendLimitTimeout)
	defer cancel()

	ok, err := appendWindowScript.Run(ctx, l.scripter,
		[]string{l.windowKey(chatID)},
		l.window.Milliseconds(), l.max,
	).Int()
	if err != nil {
		return true
	}
	return ok == 1
}
