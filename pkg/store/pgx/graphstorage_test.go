package pgx

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/OFFIS-RIT/wikigraph/pkg/common"
)

type copyCall struct {
	table   string
	columns []string
	rows    [][]any
}

type fakeConn struct {
	execs  []string
	copies []copyCall
	err    error
}

func (f *fakeConn) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("DELETE 0"), f.err
}

func (f *fakeConn) CopyFrom(ctx context.Context, tableName pgxv5.Identifier, columnNames []string, rowSrc pgxv5.CopyFromSource) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	call := copyCall{table: strings.Join(tableName, "."), columns: columnNames}
	for rowSrc.Next() {
		values, err := rowSrc.Values()
		if err != nil {
			return 0, err
		}
		call.rows = append(call.rows, values)
	}
	if err := rowSrc.Err(); err != nil {
		return 0, err
	}
	f.copies = append(f.copies, call)
	return int64(len(call.rows)), nil
}

func TestGraphDBStorage_CreateNodes(t *testing.T) {
	conn := &fakeConn{}
	s, err := NewGraphDBStorageWithConnection(conn, "enwiki")
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	ctx := context.Background()
	if err := s.Prepare(ctx); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if len(conn.execs) != 2 {
		t.Fatalf("expected two cleanup statements, got %v", conn.execs)
	}

	ids, err := s.CreateNodes(ctx, []string{"Paris", "Fr\x00ance"})
	if err != nil {
		t.Fatalf("create nodes: %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{0, 1}) {
		t.Fatalf("unexpected ids: %v", ids)
	}
	ids, _ = s.CreateNodes(ctx, []string{"Lyon"})
	if !reflect.DeepEqual(ids, []int64{2}) {
		t.Fatalf("expected ids to continue, got %v", ids)
	}

	first := conn.copies[0]
	if first.table != "wiki_nodes" {
		t.Fatalf("unexpected table %q", first.table)
	}
	want := [][]any{{"enwiki", int64(0), "Paris"}, {"enwiki", int64(1), "France"}}
	if !reflect.DeepEqual(first.rows, want) {
		t.Fatalf("unexpected rows: %v", first.rows)
	}
}

func TestGraphDBStorage_CreateRelationships(t *testing.T) {
	conn := &fakeConn{}
	s, _ := NewGraphDBStorageWithConnection(conn, "enwiki")

	n, err := s.CreateRelationships(context.Background(), []common.Relationship{
		{From: 0, To: 1, Type: common.RefLink, Distance: 2},
		{From: 1, To: 0, Type: common.RefRedirect},
	})
	if err != nil {
		t.Fatalf("create relationships: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 relationships, got %d", n)
	}
	want := [][]any{
		{"enwiki", int64(0), int64(1), "Link", int32(2)},
		{"enwiki", int64(1), int64(0), "Redirect", int32(0)},
	}
	if !reflect.DeepEqual(conn.copies[0].rows, want) {
		t.Fatalf("unexpected rows: %v", conn.copies[0].rows)
	}
}

func TestGraphDBStorage_InvalidType(t *testing.T) {
	s, _ := NewGraphDBStorageWithConnection(&fakeConn{}, "enwiki")
	_, err := s.CreateRelationships(context.Background(), []common.Relationship{{From: 0, To: 1}})
	if err == nil {
		t.Fatal("expected an error for a relationship without type")
	}
}

func TestGraphDBStorage_PropagatesErrors(t *testing.T) {
	boom := errors.New("connection reset")
	s, _ := NewGraphDBStorageWithConnection(&fakeConn{err: boom}, "enwiki")
	if err := s.Prepare(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if _, err := s.CreateNodes(context.Background(), []string{"Paris"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNewGraphDBStorage_RequiresGraphID(t *testing.T) {
	if _, err := NewGraphDBStorageWithConnection(&fakeConn{}, ""); err == nil {
		t.Fatal("expected an error for an empty graph id")
	}
}
