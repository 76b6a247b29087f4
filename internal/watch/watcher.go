// Package watch re-runs a bug analysis whenever a source file changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/yildizm/BugFinder/internal/bugapi"
	"github.com/yildizm/BugFinder/internal/logger"
	"github.com/yildizm/BugFinder/internal/view"
)

// MaxFileBytes bounds how much of the watched file is submitted
const MaxFileBytes = 512 * 1024

// Analyzer submits one snippet for analysis
type Analyzer interface {
	FindBug(ctx context.Context, language bugapi.Language, code string) (*bugapi.Report, error)
}

// Options configures a Watcher
type Options struct {
	// Path of the source file to watch
	Path string

	// Language of the file; guessed from the extension when empty
	Language bugapi.Language

	// Debounce is the quiet period after a change before re-analysis
	Debounce time.Duration

	// Logger receives watcher diagnostics; nil means silent
	Logger *logger.Logger
}

// Result is the outcome of one analysis run
type Result struct {
	Path     string
	Language bugapi.Language
	Report   *bugapi.Report
	// Message is the user-visible error; empty on success
	Message string
	Err     error
	At      time.Time
}

// Failed reports whether the run produced an error instead of a report
func (r Result) Failed() bool {
	return r.Message != ""
}

// Watcher analyzes a file once on start and again after each change
type Watcher struct {
	analyzer Analyzer
	path     string
	language bugapi.Language
	debounce time.Duration
	log      *logger.Logger
}

// New validates opts and creates a watcher
func New(analyzer Analyzer, opts Options) (*Watcher, error) {
	if err := validateWatchFilePath(opts.Path); err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	language := opts.Language
	if language == "" {
		guessed, ok := bugapi.LanguageForFile(path)
		if !ok {
			return nil, fmt.Errorf("cannot infer language for %s; pass --language", filepath.Base(path))
		}
		language = guessed
	}
	if !language.Valid() {
		return nil, bugapi.NewValidationError("language", string(language), "unsupported language")
	}

	if opts.Debounce < 0 {
		return nil, fmt.Errorf("debounce must be non-negative")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Watcher{
		analyzer: analyzer,
		path:     path,
		language: language,
		debounce: opts.Debounce,
		log:      log,
	}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string { return w.path }

// Language returns the language submitted with every run
func (w *Watcher) Language() bugapi.Language { return w.language }

// Run watches until ctx is done, sending one Result per completed analysis.
// A change that arrives while a request is in flight cancels that request.
// Run returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, results chan<- Result) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := fw.Close(); err != nil {
			w.log.Warn("failed to close watcher: %v", err)
		}
	}()

	// editors often replace the file on save, so watch the directory
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch file: %w", err)
	}

	triggers := make(chan struct{}, 1)
	triggers <- struct{}{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.watchLoop(ctx, fw, triggers) })
	g.Go(func() error { return w.workLoop(ctx, triggers, results) })

	return g.Wait()
}

// watchLoop turns bursts of file events into single triggers
func (w *Watcher) watchLoop(ctx context.Context, fw *fsnotify.Watcher, triggers chan<- struct{}) error {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	fire := func() {
		select {
		case triggers <- struct{}{}:
		default:
			// a trigger is already pending
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("change detected: %s", event)

			if w.debounce == 0 {
				fire()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			fire()

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Warn("watcher error: %v", err)
		}
	}
}

// workLoop keeps at most one analysis in flight
func (w *Watcher) workLoop(ctx context.Context, triggers <-chan struct{}, results chan<- Result) error {
	var (
		wg     sync.WaitGroup
		cancel context.CancelFunc = func() {}
	)
	defer func() {
		cancel()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-triggers:
			cancel()

			var runCtx context.Context
			runCtx, cancel = context.WithCancel(ctx)

			wg.Add(1)
			go func() {
				defer wg.Done()
				w.analyze(runCtx, results)
			}()
		}
	}
}

// analyze reads the file, submits it and publishes the result unless superseded
func (w *Watcher) analyze(ctx context.Context, results chan<- Result) {
	result := Result{Path: w.path, Language: w.language}

	code, err := readSource(w.path)
	switch {
	case err != nil:
		result.Err = err
		result.Message = fmt.Sprintf("Failed to read %s", filepath.Base(w.path))
	case strings.TrimSpace(code) == "":
		result.Message = view.MsgEmptyCode
	default:
		start := time.Now()
		report, err := w.analyzer.FindBug(ctx, w.language, code)
		if ctx.Err() != nil || bugapi.IsCanceled(err) {
			w.log.Debug("analysis superseded")
			return
		}
		w.log.InfoWithFields("analysis finished", []logger.Field{
			logger.F("path", w.path),
			logger.Duration(time.Since(start)),
		})
		if err != nil {
			result.Err = err
			result.Message = bugapi.UserMessage(err, view.MsgAnalysisFailed)
		} else {
			result.Report = report
		}
	}

	result.At = time.Now()

	select {
	case results <- result:
	case <-ctx.Done():
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// readSource reads at most MaxFileBytes of the file
func readSource(path string) (string, error) {
	// #nosec G304 - path is validated by validateWatchFilePath
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxFileBytes {
		return "", fmt.Errorf("file exceeds %d bytes", MaxFileBytes)
	}
	return string(data), nil
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
