package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/OFFIS-RIT/wikigraph/pkg/logger"
)

// BadgerIndexParams configures a BadgerIndex.
//
// Path is the directory for the index files and is ignored when InMemory is
// set. Existing data in Path is dropped on open since an index only lives for
// one import.
type BadgerIndexParams struct {
	Path     string
	InMemory bool
}

// BadgerIndex stores the title mapping in an embedded badger database, for
// dumps whose title set does not fit into memory.
type BadgerIndex struct {
	db     *badger.DB
	batch  *badger.WriteBatch
	mu     sync.Mutex
	frozen atomic.Bool
	count  atomic.Int64
}

func NewBadgerIndex(params BadgerIndexParams) (*BadgerIndex, error) {
	var opts badger.Options
	if params.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if params.Path == "" {
			return nil, errors.New("badger index path is required")
		}
		if err := os.MkdirAll(params.Path, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create index directory %s: %w", params.Path, err)
		}
		opts = badger.DefaultOptions(params.Path)
	}
	opts = opts.WithSyncWrites(false).WithNumVersionsToKeep(1).WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger index: %w", err)
	}
	if !params.InMemory {
		if err := db.DropAll(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to reset badger index: %w", err)
		}
	}

	return &BadgerIndex{db: db, batch: db.NewWriteBatch()}, nil
}

// Register buffers the mapping in a write batch. Writes become visible to
// Lookup after Freeze flushes the batch.
func (b *BadgerIndex) Register(title string, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen.Load() {
		return ErrFrozen
	}

	key := []byte(title)
	if err := b.batch.Set(key, encodeID(id)); err != nil {
		return fmt.Errorf("failed to register title %q: %w", title, err)
	}
	b.count.Add(1)
	return nil
}

func (b *BadgerIndex) Lookup(title string) (int64, bool, error) {
	var id int64
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(title))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = decodeID(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) || errors.Is(err, badger.ErrEmptyKey) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up title %q: %w", title, err)
	}
	return id, true, nil
}

// Len returns the number of registrations. Duplicate titles are counted once
// per registration.
func (b *BadgerIndex) Len() int {
	return int(b.count.Load())
}

func (b *BadgerIndex) Freeze() error {
	if b.frozen.Swap(true) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.batch.Flush(); err != nil {
		return fmt.Errorf("failed to flush title index: %w", err)
	}
	return nil
}

func (b *BadgerIndex) Close() error {
	if err := b.Freeze(); err != nil {
		logger.Warn("[Index] Closing unflushed title index", "err", err)
	}
	return b.db.Close()
}

func encodeID(id int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func decodeID(buf []byte) int64 {
	return int64(binary.BigEndian.Uint64(buf))
}

type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Error(fmt.Sprintf("[Index] "+format, args...))
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Warn(fmt.Sprintf("[Index] "+format, args...))
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Debug(fmt.Sprintf("[Index] "+format, args...))
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Debug(fmt.Sprintf("[Index] "+format, args...))
}
