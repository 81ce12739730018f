package i18n

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"lobbyctl/pkg/logging"
)

// DefaultDebounceInterval is the quiet period after the last file event
// before the catalog is reloaded.
const DefaultDebounceInterval = 300 * time.Millisecond

// Watcher reloads a Catalog when one of its candidate files changes.
type Watcher struct {
	catalog  *Catalog
	debounce time.Duration

	// OnReload is called after every reload attempt.
	OnReload func(error)

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	done      chan struct{}
	timer     *time.Timer
}

// NewWatcher creates a watcher for the catalog's directory.
func NewWatcher(c *Catalog) *Watcher {
	return &Watcher{catalog: c, debounce: DefaultDebounceInterval}
}

// SetDebounce overrides the debounce interval.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Start begins watching. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsWatcher != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.catalog.Dir()); err != nil {
		fsw.Close()
		return err
	}

	w.fsWatcher = fsw
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	go w.processEvents(fsw.Events, fsw.Errors, w.stopCh, w.done)

	logging.Debug(subsystem, "Watching %s for translation changes", w.catalog.Dir())
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.fsWatcher == nil {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	fsw, done := w.fsWatcher, w.done
	w.fsWatcher = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	fsw.Close()
	<-done
}

func (w *Watcher) processEvents(events <-chan fsnotify.Event, errs <-chan error, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-errs:
			if !ok {
				return
			}
			logging.Error(subsystem, err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if !w.relevant(event.Name) {
		return
	}
	logging.Debug(subsystem, "Translation file changed: %s", event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsWatcher == nil {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(name)
	for _, candidate := range w.catalog.Candidates(w.catalog.Locale()) {
		if filepath.Base(candidate) == base {
			return true
		}
	}
	return false
}

func (w *Watcher) reload() {
	err := w.catalog.Reload(w.catalog.Locale().Key)
	if err != nil {
		logging.Warn(subsystem, "Reload failed, keeping previous translations: %v", err)
	}
	if w.OnReload != nil {
		w.OnReload(err)
	}
}
