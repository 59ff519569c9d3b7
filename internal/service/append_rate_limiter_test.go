package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type noScriptErr string

func (e noScriptErr) Error() string { return string(e) }
func (noScriptErr) RedisError()     {}

// fakeScripter cuenta appends por clave como lo haria el script en Redis.
type fakeScripter struct {
	redis.Scripter
	counts   map[string]int
	keys     []string
	args     []interface{}
	err      error
	noScript bool
	evals    int
}

func newFakeScripter() *fakeScripter {
	return &fakeScripter{counts: map[string]int{}}
}

func (f *fakeScripter) run(ctx context.Context, keys []string, args ...interface{}) *redis.Cmd {
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.keys = keys
	f.args = args
	f.counts[keys[0]]++
	if f.counts[keys[0]] > args[1].(int) {
		cmd.SetVal(int64(0))
	} else {
		cmd.SetVal(int64(1))
	}
	return cmd
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	if f.noScript {
		cmd := redis.NewCmd(ctx)
		cmd.SetErr(noScriptErr("NOSCRIPT No matching script"))
		return cmd
	}
	return f.run(ctx, keys, args...)
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.evals++
	return f.run(ctx, keys, args...)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestRedisAppendRateLimiterAllow(t *testing.T) {
	ctx := context.Background()
	chatID := uuid.MustParse("6f9619ff-8b86-d011-b42d-00c04fc964ff")
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisAppendRateLimiter
		if !l.Allow(ctx, chatID) {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("nil client disables limiter", func(t *testing.T) {
		if NewRedisAppendRateLimiter(nil, time.Minute, 3) != nil {
			t.Fatalf("expected nil limiter without redis client")
		}
	})

	t.Run("denies once the window is full", func(t *testing.T) {
		fake := newFakeScripter()
		l := newAppendWindow(fake, 2*time.Minute, 3)
		l.now = fixedClock(start)

		for i := 0; i < 3; i++ {
			if !l.Allow(ctx, chatID) {
				t.Fatalf("append %d: expected allow within max", i+1)
			}
		}
		if l.Allow(ctx, chatID) {
			t.Fatalf("expected deny after max appends")
		}
		if len(fake.keys) != 1 || !strings.HasPrefix(fake.keys[0], "chat:"+chatID.String()+":appends:") {
			t.Fatalf("expected key scoped to the chat, got %+v", fake.keys)
		}
		if len(fake.args) != 2 || fake.args[0] != int64(120000) || fake.args[1] != 3 {
			t.Fatalf("expected ttl ms and max as args, got %+v", fake.args)
		}
	})

	t.Run("chats have separate windows", func(t *testing.T) {
		l := newAppendWindow(newFakeScripter(), time.Minute, 1)
		l.now = fixedClock(start)

		if !l.Allow(ctx, chatID) || l.Allow(ctx, chatID) {
			t.Fatalf("expected one append for the first chat")
		}
		if !l.Allow(ctx, uuid.New()) {
			t.Fatalf("expected other chat to keep its own budget")
		}
	})

	t.Run("next window resets the budget", func(t *testing.T) {
		l := newAppendWindow(newFakeScripter(), time.Minute, 1)
		l.now = fixedClock(start)
		if !l.Allow(ctx, chatID) || l.Allow(ctx, chatID) {
			t.Fatalf("expected window to fill")
		}
		l.now = fixedClock(start.Add(time.Minute))
		if !l.Allow(ctx, chatID) {
			t.Fatalf("expected allow in the next window")
		}
	})

	t.Run("falls back to EVAL when script is not cached", func(t *testing.T) {
		fake := newFakeScripter()
		fake.noScript = true
		l := newAppendWindow(fake, time.Minute, 1)

		if !l.Allow(ctx, chatID) {
			t.Fatalf("expected allow")
		}
		if fake.evals != 1 {
			t.Fatalf("expected one EVAL fallback, got %d", fake.evals)
		}
	})

	t.Run("invalid settings use defaults", func(t *testing.T) {
		l := newAppendWindow(newFakeScripter(), 0, 0)
		if l.window != time.Minute || l.max != 1 {
			t.Fatalf("expected defaults, got window=%v max=%d", l.window, l.max)
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		fake := newFakeScripter()
		fake.err = errors.New("redis down")
		l := newAppendWindow(fake, time.Minute, 1)
		for i := 0; i < 3; i++ {
			if !l.Allow(ctx, chatID) {
				t.Fatalf("expected fail-open on redis errors")
			}
		}
	})
}
