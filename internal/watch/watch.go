// Package watch keeps the uploader running against the pending directory:
// whenever a new candidate appears, the alphabetically-first one is uploaded.
// Uploads run strictly one at a time on a single goroutine; running several
// watch processes against the same directory is not supported, as nothing
// claims a candidate before uploading it.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"photopost/internal/fsutil"
	"photopost/internal/uploader"
)

// Runner performs one upload attempt. Implemented by *uploader.Uploader.
type Runner interface {
	Run(ctx context.Context, opts uploader.Options) (uploader.Result, error)
}

// Watcher monitors the pending directory and drains it through the runner.
type Watcher struct {
	dir    string
	runner Runner
	log    *slog.Logger

	// Settle is how long to wait after a filesystem event before uploading,
	// so partially written files can finish.
	Settle time.Duration

	fs      *fsnotify.Watcher
	trigger chan struct{}
	wg      sync.WaitGroup

	mu        sync.Mutex
	subs      map[int]chan uploader.Result
	nextSubID int
}

// New creates a watcher over dir.
func New(dir string, runner Runner, log *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		dir:     dir,
		runner:  runner,
		log:     log,
		Settle:  2 * time.Second,
		fs:      fs,
		trigger: make(chan struct{}, 1),
		subs:    make(map[int]chan uploader.Result),
	}, nil
}

// Start begins monitoring and uploading. It returns once watching is active;
// work stops when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fs.Add(w.dir); err != nil {
		return err
	}
	w.log.Info("watching pending directory", "dir", w.dir)

	// Anything already sitting in the directory is uploaded first.
	w.kick()

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.uploadLoop(ctx)
	return nil
}

// Stop waits for in-flight work and releases the filesystem watcher.
func (w *Watcher) Stop() {
	w.wg.Wait()
	_ = w.fs.Close()

	w.mu.Lock()
	for id, ch := range w.subs {
		close(ch)
		delete(w.subs, id)
	}
	w.mu.Unlock()
}

// Subscribe returns a channel of upload results and an unsubscribe function.
func (w *Watcher) Subscribe() (<-chan uploader.Result, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextSubID
	w.nextSubID++
	ch := make(chan uploader.Result, 8)
	w.subs[id] = ch
	unsub := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if c, ok := w.subs[id]; ok {
			close(c)
			delete(w.subs, id)
		}
	}
	return ch, unsub
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !fsutil.IsSupportedImage(event.Name) {
				continue
			}
			w.log.Debug("pending directory changed", "path", event.Name, "op", event.Op.String())
			w.kick()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) uploadLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.Settle):
		}

		// Drain the directory: one upload at a time until it is empty.
		for {
			res, err := w.runner.Run(ctx, uploader.Options{})
			if errors.Is(err, uploader.ErrNoImages) {
				break
			}
			w.broadcast(res)
			if err != nil {
				// Leave the failed candidate in place; retrying in a
				// tight loop would hammer the platform.
				w.log.Error("upload attempt failed, pausing watch loop", "error", err)
				break
			}
		}
	}
}

func (w *Watcher) kick() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

func (w *Watcher) broadcast(res uploader.Result) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, ch := range w.subs {
		select {
		case ch <- res:
		default:
			w.log.Warn("result channel full", "subscriber", id, "upload", res.ID)
		}
	}
}
