package scene

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle collapses the bursts of events one save produces into one change.
const watchSettle = 100 * time.Millisecond

// Watcher reports when a scene file is written. It watches the file's directory so
// saves that replace the file by rename are seen too.
type Watcher struct {
	fsw     *fsnotify.Watcher
	name    string
	changes chan struct{}
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	lastErr error
}

// NewWatcher starts watching path. The directory must exist.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{
		fsw:     fsw,
		name:    abs,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Changes delivers one value per settled burst of writes. Values are dropped, not
// queued, while a previous one is unread.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Err returns the last error reported by the underlying watcher.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) loop() {
	var settle <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.name {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				settle = time.After(watchSettle)
			}
		case <-settle:
			settle = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.lastErr = err
			w.mu.Unlock()
		}
	}
}
