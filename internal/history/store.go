package history

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"mediajobs/internal/config"
	"mediajobs/internal/logging"
	"mediajobs/internal/queue"
	"mediajobs/internal/services"
)

const (
	// DirName is created under the workflow root to hold history files.
	DirName        = ".mediajobs"
	LockFileName   = "history.lock"
	JSONLFileName  = "history.jsonl"
	SQLiteFileName = "history.db"
)

type backend interface {
	append(ctx context.Context, job *queue.Job) error
	loadAll(ctx context.Context) (map[string]*queue.Job, int, error)
	path() string
	close() error
}

// Store is the durable job log. It is safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	kind        string
	logger      *slog.Logger
	root        string
	initialized bool
	backend     backend
	lock        *flock.Flock
}

// New constructs a store for the given backend kind. Unknown kinds fall back
// to JSON lines.
func New(kind string, logger *slog.Logger) *Store {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != config.HistoryBackendSQLite {
		kind = config.HistoryBackendJSONL
	}
	return &Store{
		kind:   kind,
		logger: logging.NewComponentLogger(logger, "history"),
	}
}

// Initialize points the store at root. It reports whether the root changed;
// callers reload their job table when it did. An empty root disables
// persistence. A returned error (wrapped with services.ErrPersistence) means
// the store fell back to memory-only for this root.
func (s *Store) Initialize(root string) (bool, error) {
	root = strings.TrimSpace(root)
	if root != "" {
		root = filepath.Clean(root)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized && root == s.root {
		return false, nil
	}
	s.closeLocked()
	s.root = root
	s.initialized = true

	if root == "" {
		logging.WarnWithContext(s.logger, "history persistence disabled",
			"history_disabled", "set paths.workflow_root to keep job history across restarts")
		return true, nil
	}

	dir := filepath.Join(root, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return true, s.degrade("create history directory", dir, err)
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return true, s.degrade("acquire history lock", dir, err)
	}
	if !locked {
		return true, s.degrade("acquire history lock", dir, fmt.Errorf("history at %s is held by another supervisor", dir))
	}

	b, err := s.open(dir)
	if err != nil {
		_ = lock.Unlock()
		return true, s.degrade("open history", dir, err)
	}
	s.lock = lock
	s.backend = b
	s.logger.Info("history store ready",
		logging.String("path", b.path()),
		logging.String("backend", s.kind))
	return true, nil
}

func (s *Store) open(dir string) (backend, error) {
	if s.kind == config.HistoryBackendSQLite {
		return openSQLite(filepath.Join(dir, SQLiteFileName))
	}
	return openJSONL(filepath.Join(dir, JSONLFileName))
}

func (s *Store) degrade(operation, dir string, err error) error {
	logging.WarnWithContext(s.logger, "history persistence degraded to memory-only",
		"history_degraded", "check permissions on the workflow root and that no other supervisor uses it",
		logging.String("dir", dir),
		logging.String("operation", operation),
		logging.Error(err))
	return services.Wrap(services.ErrPersistence, "history", operation, dir, err)
}

// Append writes the full current job record. Failures are logged only.
func (s *Store) Append(ctx context.Context, job *queue.Job) {
	if job == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return
	}
	if err := s.backend.append(ctx, job); err != nil {
		s.logger.Warn("history append failed",
			logging.String(logging.FieldJobID, job.ID),
			logging.String("status", string(job.Status)),
			logging.Error(err),
			logging.String(logging.FieldEventType, "history_append_failed"),
			logging.String(logging.FieldErrorHint, "job state is kept in memory; check disk space and permissions"))
	}
}

// LoadAll reduces the log to the latest record per job id. A missing log is
// an empty result. Corrupt records are skipped and counted in the log.
func (s *Store) LoadAll(ctx context.Context) (map[string]*queue.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return map[string]*queue.Job{}, nil
	}
	jobs, skipped, err := s.backend.loadAll(ctx)
	if skipped > 0 {
		s.logger.Warn("skipped corrupt history records",
			logging.Int("skipped", skipped),
			logging.String("path", s.backend.path()),
			logging.String(logging.FieldEventType, "history_corrupt_records"),
			logging.String(logging.FieldErrorHint, "a crash mid-write leaves a partial record; it is safe to ignore"))
	}
	if err != nil {
		return jobs, services.Wrap(services.ErrPersistence, "history", "load", s.backend.path(), err)
	}
	return jobs, nil
}

// Root returns the current workflow root, empty when persistence is off.
func (s *Store) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Enabled reports whether records are reaching disk.
func (s *Store) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend != nil
}

// Path returns the active history file, empty when memory-only.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return ""
	}
	return s.backend.path()
}

// Close releases the backend and the root lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	s.initialized = false
	s.root = ""
	return nil
}

func (s *Store) closeLocked() {
	if s.backend != nil {
		if err := s.backend.close(); err != nil {
			s.logger.Warn("close history failed", logging.Error(err))
		}
		s.backend = nil
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("release history lock failed", logging.Error(err))
		}
		s.lock = nil
	}
}
