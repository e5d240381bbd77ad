package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/atomicstack/navstate/internal/logging"
	"github.com/atomicstack/navstate/internal/nav"
)

// ErrNotFound is returned by Load and Delete for unknown snapshot names.
var ErrNotFound = errors.New("snapshot not found")

const keyPrefix = "snapshot/"

// Config selects where snapshots live.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in RAM; used by tests and dry runs.
	InMemory bool
	// SyncWrites fsyncs every save.
	SyncWrites bool
	// Verbose routes badger's own log lines to the navstate log.
	Verbose bool
}

// Store keeps named snapshots. It is safe for concurrent use.
type Store struct {
	db *badger.DB
}

// badgerLogger forwards badger warnings and errors to the shared log file.
type badgerLogger struct {
	verbose bool
}

func (l badgerLogger) Errorf(format string, args ...any) {
	logging.Errorf("badger: "+strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	logging.Errorf("badger warning: "+strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	if l.verbose {
		logging.Trace("snapshot.badger", fmt.Sprintf(strings.TrimSpace(format), args...))
	}
}

func (l badgerLogger) Debugf(string, ...any) {}

// Open opens or creates the snapshot database.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("snapshot store: path is required")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create snapshot directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{verbose: cfg.Verbose})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway store.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save encodes root and stores it under name, replacing any previous value.
func (s *Store) Save(ctx context.Context, name string, root nav.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return errors.New("save snapshot: empty name")
	}
	data, err := Encode(root)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(name), data)
	})
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	return nil
}

// Load decodes the snapshot stored under name.
func (s *Store) Load(ctx context.Context, name string) (nav.Node, error) {
	data, err := s.Raw(ctx, name)
	if err != nil {
		return nil, err
	}
	root, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	return root, nil
}

// Raw returns the stored bytes for name without decoding them.
func (s *Store) Raw(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	return data, nil
}

// Delete removes name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(name)); err != nil {
			return err
		}
		return txn.Delete(key(name))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", name, err)
	}
	return nil
}

// Names lists stored snapshot names in sorted order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func key(name string) []byte {
	return []byte(keyPrefix + name)
}
