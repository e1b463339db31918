package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/spf13/afero"

	"github.com/taskmaster/tracker/internal/domain/entities"
	"github.com/taskmaster/tracker/internal/infrastructure/logger"
	"github.com/taskmaster/tracker/internal/ports"
)

const (
	eventsFile = "events.json"
	tasksFile  = "tasks.json"
)

// JSONFileStore keeps a whole collection as one pretty-printed JSON array.
// Every mutation rewrites the file through a temp file and a rename.
type JSONFileStore[T ports.Entity] struct {
	fs       afero.Fs
	path     string
	notFound error
	logger   *logger.Logger

	mu sync.Mutex
}

// NewJSONFileStore creates a store backed by path on fs. notFound is
// returned for lookups of a missing id.
func NewJSONFileStore[T ports.Entity](fs afero.Fs, path string, notFound error, log *logger.Logger) *JSONFileStore[T] {
	return &JSONFileStore[T]{
		fs:       fs,
		path:     path,
		notFound: notFound,
		logger:   log.WithFields("component", "file_store", "path", path),
	}
}

// NewEventFileStore stores events in dir/events.json
func NewEventFileStore(fs afero.Fs, dir string, log *logger.Logger) *JSONFileStore[*entities.Event] {
	return NewJSONFileStore[*entities.Event](fs, filepath.Join(dir, eventsFile), entities.ErrEventNotFound, log)
}

// NewTaskFileStore stores tasks in dir/tasks.json
func NewTaskFileStore(fs afero.Fs, dir string, log *logger.Logger) *JSONFileStore[*entities.Task] {
	return NewJSONFileStore[*entities.Task](fs, filepath.Join(dir, tasksFile), entities.ErrTaskNotFound, log)
}

// Path returns the backing file
func (s *JSONFileStore[T]) Path() string { return s.path }

func (s *JSONFileStore[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, _ := s.readLenient()
	return records, nil
}

func (s *JSONFileStore[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, _ := s.readLenient()
	if i := indexOf(records, id); i >= 0 {
		return records[i], nil
	}
	return zero, s.notFound
}

func (s *JSONFileStore[T]) Create(ctx context.Context, record T) error {
	return s.mutate(ctx, func(records []T) ([]T, error) {
		if indexOf(records, record.Key()) >= 0 {
			return nil, fmt.Errorf("record %s already exists", record.Key())
		}
		return append(records, record), nil
	})
}

func (s *JSONFileStore[T]) Update(ctx context.Context, record T) error {
	return s.mutate(ctx, func(records []T) ([]T, error) {
		i := indexOf(records, record.Key())
		if i < 0 {
			return nil, s.notFound
		}
		records[i] = record
		return records, nil
	})
}

func (s *JSONFileStore[T]) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(records []T) ([]T, error) {
		kept := make([]T, 0, len(records))
		for _, r := range records {
			if r.Key() != id {
				kept = append(kept, r)
			}
		}
		if len(kept) == len(records) {
			return nil, s.notFound
		}
		return kept, nil
	})
}

func (s *JSONFileStore[T]) DeleteAll(ctx context.Context) error {
	return s.ReplaceAll(ctx, nil)
}

func (s *JSONFileStore[T]) ReplaceAll(ctx context.Context, records []T) error {
	return s.mutate(ctx, func([]T) ([]T, error) {
		return append([]T{}, records...), nil
	})
}

// Ping makes sure the data directory exists and is writable
func (s *JSONFileStore[T]) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.fs.MkdirAll(filepath.Dir(s.path), 0o755)
}

// mutate runs a read-modify-write cycle under the store lock
func (s *JSONFileStore[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	switch {
	case errors.Is(err, errMalformed):
		if err := s.quarantine(); err != nil {
			return err
		}
		records = []T{}
	case err != nil:
		return err
	}

	next, err := fn(records)
	if err != nil {
		return err
	}
	return s.write(next)
}

var errMalformed = errors.New("malformed collection file")

// read loads the collection. A missing file is an empty collection.
func (s *JSONFileStore[T]) read() ([]T, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errMalformed, s.path, err)
	}
	for i, r := range records {
		if isNilRecord(r) {
			return nil, fmt.Errorf("%w: %s: null element at index %d", errMalformed, s.path, i)
		}
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func isNilRecord[T ports.Entity](r T) bool {
	v := reflect.ValueOf(r)
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// readLenient is read for query paths: unreadable content is an empty collection.
func (s *JSONFileStore[T]) readLenient() ([]T, error) {
	records, err := s.read()
	if err != nil {
		s.logger.WithError(err).Warn("Collection file unreadable, treating as empty")
		return []T{}, err
	}
	return records, nil
}

// quarantine copies a malformed file aside before it gets overwritten
func (s *JSONFileStore[T]) quarantine() error {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	backup := s.path + ".corrupt"
	if err := afero.WriteFile(s.fs, backup, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", backup, err)
	}
	s.logger.Warnw("Malformed collection file moved aside", "backup", backup)
	return nil
}

func (s *JSONFileStore[T]) write(records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	data = append(data, '\n')

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func indexOf[T ports.Entity](records []T, id string) int {
	for i, r := range records {
		if r.Key() == id {
			return i
		}
	}
	return -1
}
