package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"

	"github.com/OFFIS-RIT/wikigraph/internal/importer"
	"github.com/OFFIS-RIT/wikigraph/pkg/common"
	"github.com/OFFIS-RIT/wikigraph/pkg/leaselock"
)

func TestRetryCount(t *testing.T) {
	tests := []struct {
		name    string
		headers amqp091.Table
		want    int
	}{
		{name: "missing", headers: nil, want: 0},
		{name: "int32", headers: amqp091.Table{"x-retries": int32(3)}, want: 3},
		{name: "int64", headers: amqp091.Table{"x-retries": int64(7)}, want: 7},
		{name: "int", headers: amqp091.Table{"x-retries": 2}, want: 2},
		{name: "garbage", headers: amqp091.Table{"x-retries": "many"}, want: 0},
	}
	for _, tt := range tests {
		if got := RetryCount(tt.headers); got != tt.want {
			t.Fatalf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

type fakeRuns struct {
	calls    []string
	stats    common.ImportStats
	failures []error
}

func (f *fakeRuns) MarkRunning(ctx context.Context, id string) error {
	f.calls = append(f.calls, "running:"+id)
	return nil
}

func (f *fakeRuns) Complete(ctx context.Context, id string, stats common.ImportStats) error {
	f.calls = append(f.calls, "completed:"+id)
	f.stats = stats
	return nil
}

func (f *fakeRuns) Fail(ctx context.Context, id string, stats common.ImportStats, cause error) error {
	f.calls = append(f.calls, "failed:"+id)
	f.stats = stats
	f.failures = append(f.failures, cause)
	return nil
}

type fakeLocks struct {
	keys []string
	busy bool
}

func (f *fakeLocks) WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error {
	f.keys = append(f.keys, key)
	if f.busy {
		return leaselock.ErrBusy
	}
	return fn(ctx)
}

func TestProcessImportMessage_Success(t *testing.T) {
	recorder := &fakeRuns{}
	locks := &fakeLocks{}
	var gotCfg importer.Config
	var gotPath string
	h := &ImportHandler{
		Runs:   recorder,
		Locks:  locks,
		Config: importer.Config{GraphID: "default", Store: importer.StoreMemory, Index: importer.IndexMemory},
		Import: func(ctx context.Context, cfg importer.Config, path string) (common.ImportStats, error) {
			gotCfg, gotPath = cfg, path
			return common.ImportStats{Pages: 2, Nodes: 2, Links: 1, BadLinks: 1}, nil
		},
	}

	msg := `{"run_id":"r1","graph_id":"enwiki","dump_path":"s3://dumps/enwiki.xml.bz2","store":"pgx"}`
	if err := h.ProcessImportMessage(context.Background(), msg); err != nil {
		t.Fatalf("process: %v", err)
	}
	if gotCfg.GraphID != "enwiki" || gotCfg.Store != importer.StorePgx || gotPath != "s3://dumps/enwiki.xml.bz2" {
		t.Fatalf("unexpected import call: cfg=%+v path=%s", gotCfg, gotPath)
	}
	if len(locks.keys) != 1 || locks.keys[0] != leaselock.GraphKey("enwiki") {
		t.Fatalf("unexpected lock keys: %v", locks.keys)
	}
	if len(recorder.calls) != 2 || recorder.calls[1] != "completed:r1" || recorder.stats.Links != 1 {
		t.Fatalf("unexpected run updates: %v %+v", recorder.calls, recorder.stats)
	}
}

func TestProcessImportMessage_ImportFails(t *testing.T) {
	recorder := &fakeRuns{}
	boom := errors.New("malformed artifact")
	h := &ImportHandler{
		Runs:  recorder,
		Locks: &fakeLocks{},
		Import: func(ctx context.Context, cfg importer.Config, path string) (common.ImportStats, error) {
			return common.ImportStats{Pages: 5}, boom
		},
	}

	err := h.ProcessImportMessage(context.Background(), `{"run_id":"r2","graph_id":"g","dump_path":"/d.xml"}`)
	if !errors.Is(err, boom) {
		t.Fatalf("expected import error, got %v", err)
	}
	if recorder.calls[len(recorder.calls)-1] != "failed:r2" || recorder.stats.Pages != 5 {
		t.Fatalf("expected failed run with partial stats, got %v %+v", recorder.calls, recorder.stats)
	}
}

func TestProcessImportMessage_BusyGraph(t *testing.T) {
	recorder := &fakeRuns{}
	h := &ImportHandler{Runs: recorder, Locks: &fakeLocks{busy: true}}
	err := h.ProcessImportMessage(context.Background(), `{"run_id":"r3","graph_id":"g","dump_path":"/d.xml"}`)
	if !errors.Is(err, leaselock.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if len(recorder.calls) != 0 {
		t.Fatalf("expected no run updates while the graph is locked, got %v", recorder.calls)
	}
}

func TestProcessImportMessage_InvalidMessage(t *testing.T) {
	h := &ImportHandler{Runs: &fakeRuns{}, Locks: &fakeLocks{}}
	for _, msg := range []string{`not json`, `{"run_id":"r4"}`} {
		if err := h.ProcessImportMessage(context.Background(), msg); err == nil {
			t.Fatalf("expected an error for %q", msg)
		}
	}
}
