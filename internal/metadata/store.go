package metadata

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var reloadsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "surrogated",
		Subsystem: "metadata",
		Name:      "reloads_total",
		Help:      "Emissions table loads by result",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(reloadsTotal)
}

const defaultDebounce = 200 * time.Millisecond

type snapshot struct {
	table *Table
	err   error
	at    time.Time
}

// Store serves the current emissions table and reloads it when the file
// changes. A failed load replaces the table with the error, so callers see
// the same failure the file would give them on a fresh read.
type Store struct {
	path     string
	log      *zerolog.Logger
	debounce time.Duration
	cur      atomic.Pointer[snapshot]
}

// NewStore reads path once. A read failure is kept, not returned: the store
// is still usable and reports the failure through Table.
func NewStore(path string, log *zerolog.Logger) *Store {
	if log == nil {
		l := zerolog.Nop()
		log = &l
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	s := &Store{path: abs, log: log, debounce: defaultDebounce}
	_ = s.Reload()
	return s
}

// Path is the absolute path of the watched file.
func (s *Store) Path() string { return s.path }

// Table returns the last loaded table or the error of the last load.
func (s *Store) Table() (*Table, error) {
	snap := s.cur.Load()
	return snap.table, snap.err
}

// LoadedAt is when the current snapshot was taken.
func (s *Store) LoadedAt() time.Time { return s.cur.Load().at }

// Reload reads the file now.
func (s *Store) Reload() error {
	t, err := ReadFile(s.path)
	s.cur.Store(&snapshot{table: t, err: err, at: time.Now()})
	if err != nil {
		reloadsTotal.WithLabelValues("error").Inc()
		s.log.Warn().Str("path", s.path).Err(err).Msg("emissions table unavailable")
		return err
	}
	reloadsTotal.WithLabelValues("ok").Inc()
	s.log.Debug().Str("path", s.path).Int("rows", t.Len()).Msg("emissions table loaded")
	return nil
}

// Watch reloads the table whenever the file is written, replaced or removed,
// coalescing bursts of events. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()
	// The directory is watched, not the file, so editors that save by
	// rename keep being followed.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != s.path || !ev.Op.Has(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			timer.Reset(s.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Error().Err(err).Msg("emissions watcher")
		case <-timer.C:
			_ = s.Reload()
		}
	}
}
