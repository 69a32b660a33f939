// Package watch reloads grammar definition files when they change on
// disk, so an embedding application can iterate on a grammar while a
// document stays open.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/incremark/gdl"
	"github.com/dshills/incremark/grammar"
	"github.com/dshills/incremark/luagrammar"
)

// DefaultDebounce is how long the watcher waits after the last file
// event before reloading. Editors often write a file several times in
// quick succession.
const DefaultDebounce = 100 * time.Millisecond

// Reload is delivered to the handler after each reload attempt.
// Exactly one of Grammar and Err is set.
type Reload struct {
	Path    string
	Grammar *grammar.Grammar
	Err     error
}

// Handler receives reload results. It is called from the watcher's
// goroutine; handlers that touch a parsing session must hand the new
// grammar over to the session's goroutine themselves.
type Handler func(Reload)

// LoadFunc loads a grammar from a path.
type LoadFunc func(path string) (*grammar.Grammar, error)

// Load loads a grammar file by extension: .lua scripts through
// luagrammar, everything else through gdl.
func Load(path string) (*grammar.Grammar, error) {
	if strings.EqualFold(filepath.Ext(path), ".lua") {
		return luagrammar.LoadFile(path)
	}
	return gdl.Load(path)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLoader replaces the default grammar loader.
func WithLoader(load LoadFunc) Option {
	return func(w *Watcher) {
		if load != nil {
			w.load = load
		}
	}
}

// Watcher watches a single grammar file and delivers reloaded
// grammars (or load errors) to a handler.
type Watcher struct {
	path     string
	load     LoadFunc
	handler  Handler
	debounce time.Duration

	fsw       *fsnotify.Watcher
	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a watcher for the given grammar file and starts
// watching. The file's directory is watched rather than the file
// itself, so atomic save-and-rename writes are observed.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		load:     Load,
		handler:  handler,
		debounce: DefaultDebounce,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
		w.fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Path returns the watched grammar file path.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var pending <-chan time.Time
	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.handler(Reload{Path: w.path, Err: err})

		case <-pending:
			pending = nil
			g, err := w.load(w.path)
			w.handler(Reload{Path: w.path, Grammar: g, Err: err})
		}
	}
}
