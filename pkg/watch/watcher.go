package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to a fixed set of files. The parent directories are
// watched rather than the files so that editors replacing a file by rename are
// still noticed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	files    map[string]bool

	mu     sync.Mutex
	timers map[string]*time.Timer
	fired  chan string
}

// New creates a watcher for the given files. A non-positive debounce selects
// DefaultDebounce.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watch: no paths given")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "watch: could not create fsnotify watcher")
	}

	w := &Watcher{
		watcher:  fw,
		debounce: debounce,
		files:    map[string]bool{},
		timers:   map[string]*time.Timer{},
		fired:    make(chan string, len(paths)),
	}

	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fw.Close()
			return nil, errors.Wrapf(err, "watch: could not resolve %s", p)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, errors.Wrapf(err, "watch: could not watch %s", dir)
		}
		log.Debug().Str("dir", dir).Msg("Watching directory")
	}

	return w, nil
}

// Run calls onChange for every debounced change until ctx is done. Callbacks run
// sequentially on the calling goroutine with the absolute path of the file.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case path := <-w.fired:
			onChange(path)

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watch: events channel closed")
			}
			if !w.shouldProcess(event) {
				continue
			}
			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("File event detected")
			w.trigger(filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watch: errors channel closed")
			}
			log.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// trigger (re)starts the quiet period of a path.
func (w *Watcher) trigger(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[abs]; ok {
		t.Stop()
	}
	w.timers[abs] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, abs)
		w.mu.Unlock()

		select {
		case w.fired <- abs:
		default:
			// a notification for this file is already pending
		}
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = map[string]*time.Timer{}
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		log.Warn().Err(err).Msg("Could not close file watcher")
	}
}
