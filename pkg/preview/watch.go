package preview

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounce = 100 * time.Millisecond

// Watch reloads connected browsers when files below dirs change. It returns
// once the directories are registered; the watch stops when ctx is done or
// the server is closed. Missing directories are skipped.
func (s *Server) Watch(ctx context.Context, dirs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return errors.New("preview: already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("preview: create watcher: %w", err)
	}
	watched := 0
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		n, err := addTree(watcher, dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("watch directory missing", zap.String("dir", dir))
				continue
			}
			_ = watcher.Close()
			return fmt.Errorf("preview: watch %s: %w", dir, err)
		}
		watched += n
	}

	s.watcher = watcher
	s.watchStop = make(chan struct{})
	s.watchDone = make(chan struct{})
	s.logger.Info("watching for changes", zap.Strings("dirs", dirs), zap.Int("directories", watched))

	go s.runWatcher(ctx, watcher, s.watchStop, s.watchDone)
	return nil
}

// addTree registers dir and its subdirectories; fsnotify is not recursive.
func addTree(watcher *fsnotify.Watcher, dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 1, watcher.Add(dir)
	}
	count := 0
	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		count++
		return watcher.Add(path)
	})
	return count, err
}

func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer watcher.Close()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var changed string
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_, _ = addTree(watcher, event.Name)
				}
			}
			changed = event.Name
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			s.Reload(changed)
		}
	}
}

func (s *Server) stopWatcher() {
	s.mu.Lock()
	stop, done := s.watchStop, s.watchDone
	s.watcher, s.watchStop, s.watchDone = nil, nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
