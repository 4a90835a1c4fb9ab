package leaselock

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.value
	return nil
}

// fakeDB emulates the import_locks table for a single key space.
type fakeDB struct {
	mu      sync.Mutex
	holders map[string]string
	execs   []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{holders: make(map[string]string)}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	key, token := args[0].(string), args[1].(string)
	if f.holders[key] == token {
		delete(f.holders, key)
	}
	return pgconn.NewCommandTag("DELETE 1"), nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := args[0].(string)
	switch {
	case strings.Contains(sql, "INSERT INTO import_locks"):
		token := args[1].(string)
		if holder, ok := f.holders[key]; ok && holder != token {
			return fakeRow{err: pgx.ErrNoRows}
		}
		f.holders[key] = token
		return fakeRow{value: key}
	case strings.Contains(sql, "UPDATE import_locks"):
		if f.holders[key] != args[1].(string) {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{value: key}
	default:
		holder, ok := f.holders[key]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{value: holder}
	}
}

func TestAcquire_BusyAndRelease(t *testing.T) {
	db := newFakeDB()
	c := New(db)
	ctx := context.Background()
	key := GraphKey("enwiki")

	lease, err := c.Acquire(ctx, key, Options{TokenPrefix: "worker-1:"})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !strings.HasPrefix(lease.Token, "worker-1:") {
		t.Fatalf("expected token prefix, got %q", lease.Token)
	}

	if _, err := c.Acquire(ctx, key, Options{}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	holder, ok, err := c.Holder(ctx, key)
	if err != nil || !ok || holder != lease.Token {
		t.Fatalf("unexpected holder %q ok=%v err=%v", holder, ok, err)
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if lease.Context.Err() == nil {
		t.Fatal("expected lease context to be canceled after release")
	}
	if _, ok, _ := c.Holder(ctx, key); ok {
		t.Fatal("expected no holder after release")
	}
}

func TestWithLease_WaitsForHolder(t *testing.T) {
	db := newFakeDB()
	c := New(db)
	ctx := context.Background()
	key := GraphKey("dewiki")

	first, err := c.Acquire(ctx, key, Options{})
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		first.Release(ctx)
	}()

	ran := false
	err = c.WithLease(ctx, key, Options{Wait: true, WaitInterval: 5 * time.Millisecond}, func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("with lease: %v", err)
	}
	if !ran {
		t.Fatal("expected fn to run once the lock was free")
	}
}

func TestAcquire_EmptyKey(t *testing.T) {
	if _, err := New(newFakeDB()).Acquire(context.Background(), "", Options{}); err == nil {
		t.Fatal("expected an error for an empty key")
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	o := Options{TTL: 10 * time.Second, RenewEvery: time.Minute}.withDefaults()
	if o.RenewEvery != 5*time.Second {
		t.Fatalf("expected renew interval below ttl, got %v", o.RenewEvery)
	}
	o = Options{}.withDefaults()
	if o.TTL != 5*time.Minute || o.WaitInterval != 250*time.Millisecond {
		t.Fatalf("unexpected defaults: %+v", o)
	}
}
