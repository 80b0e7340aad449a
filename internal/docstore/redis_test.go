package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisTestStore(t *testing.T) Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "test", testConstraints...)
}

func TestRedisStore(t *testing.T) {
	runContractTests(t, newRedisTestStore)
}

func TestRedisStore_KeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStore(client, "records", testConstraints...)
	ctx := context.Background()
	if err := s.Create(ctx, testCollection, "R1", Document{"rollNo": "R1", "regNo": "G1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got := mr.HGet("records:doc:students:R1", "regNo"); got != "G1" {
		t.Errorf("document hash regNo = %q", got)
	}
	owner, err := mr.Get("records:unique:students:regNo:G1")
	if err != nil || owner != "R1" {
		t.Errorf("claim owner = %q, err %v", owner, err)
	}

	if err := s.Delete(ctx, testCollection, "R1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mr.Exists("records:unique:students:regNo:G1") {
		t.Error("claim key survived delete")
	}
}

func TestRedisStore_DefaultPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStore(client, "")
	if err := s.Create(context.Background(), testCollection, "R1", Document{"rollNo": "R1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !mr.Exists("docstore:doc:students:R1") {
		t.Error("expected default docstore prefix")
	}
}

// cancelOnCommand cancels the request context when the named command is sent
// and fails that command, as a client disconnecting mid-request would.
type cancelOnCommand struct {
	name   string
	cancel context.CancelFunc
}

func (h *cancelOnCommand) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *cancelOnCommand) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == h.name && h.cancel != nil {
			h.cancel()
			h.cancel = nil
			return context.Canceled
		}
		return next(ctx, cmd)
	}
}

func (h *cancelOnCommand) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisStore_CreateRollbackSurvivesCancel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.AddHook(&cancelOnCommand{name: "hset", cancel: cancel})

	s := NewRedisStore(client, "test", testConstraints...)
	err := s.Create(ctx, testCollection, "R1", Document{"rollNo": "R1", "regNo": "G1"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if mr.Exists("test:unique:students:regNo:G1") {
		t.Error("regNo claim left behind after cancelled create")
	}
	if err := s.Create(context.Background(), testCollection, "R1", Document{"rollNo": "R1", "regNo": "G1"}); err != nil {
		t.Fatalf("id or claim still held after rollback: %v", err)
	}
}
