package taxonomy

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Store holds the current catalog. Readers never block; a reload swaps the
// whole catalog at once.
type Store struct {
	current  atomic.Pointer[Catalog]
	reloads  atomic.Int64
	debounce time.Duration
}

// NewStore returns a store serving c.
func NewStore(c *Catalog) *Store {
	s := &Store{debounce: 200 * time.Millisecond}
	s.current.Store(c)
	return s
}

// Catalog returns the current catalog. Callers must not modify it.
func (s *Store) Catalog() *Catalog {
	return s.current.Load()
}

// Reloads counts successful reloads.
func (s *Store) Reloads() int64 {
	return s.reloads.Load()
}

// Reload reads path and swaps it in if it is valid. An invalid file leaves
// the current catalog in place.
func (s *Store) Reload(path string) error {
	c, err := Load(path)
	if err != nil {
		return err
	}
	s.current.Store(c)
	s.reloads.Add(1)
	return nil
}

// Watch reloads the catalog whenever path is written or replaced. It blocks
// until ctx is done. The parent directory is watched so editors that save
// by rename are still seen.
func (s *Store) Watch(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("no catalog file to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	logger := log.WithField("catalog", target)
	logger.Info("watching taxonomy catalog")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Coalesce bursts of writes from a single save.
			pending = time.After(s.debounce)

		case <-pending:
			pending = nil
			if err := s.Reload(target); err != nil {
				logger.WithError(err).Warn("catalog reload rejected, keeping previous catalog")
				continue
			}
			logger.WithField("domains", len(s.Catalog().Domains)).Info("catalog reloaded")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("catalog watcher error")
		}
	}
}
