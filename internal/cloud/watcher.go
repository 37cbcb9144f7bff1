package cloud

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 500 * time.Millisecond

// Watcher publishes ChangeExternal notices when another process writes
// the database file. Bursts of filesystem events collapse into a single
// notice per debounce window.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}

	mu       sync.Mutex
	debounce *time.Timer
}

// Watch starts watching the store's database file. No-op (returns nil
// watcher) for in-memory stores.
func (s *Store) Watch() (*Watcher, error) {
	if s.path == ":memory:" {
		return nil, nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(s.path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{fw: fw, done: make(chan struct{})}
	go w.loop(s)
	return w, nil
}

func (w *Watcher) loop(s *Store) {
	base := filepath.Base(s.path)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			// SQLite in WAL mode mostly touches the -wal sidecar.
			if name != base && !strings.HasPrefix(name, base+"-") {
				continue
			}
			w.schedule(s)
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) schedule(s *Store) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(watchDebounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		s.bus.Publish(Change{Kind: ChangeExternal})
	})
}

func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	close(w.done)
	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()
	return w.fw.Close()
}
