package dirstat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// startProgressReporter invokes hook(dirs, bytes) on each tick until ctx is done.
// The returned channel is closed once the reporter has stopped calling hook.
func startProgressReporter(ctx context.Context, p *progress, hook func(int64, int64), interval time.Duration) <-chan struct{} {
	done := make(chan struct{})

	if hook == nil {
		close(done)

		return done
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(p.snapshot())
			case <-ctx.Done():
				return
			}
		}
	}()

	return done
}

// Run computes the statistics tree for opt.Path.
//
// The path is resolved to an absolute directory and walked with Summarize as
// the per-directory callback, down to opt.Depth levels. The root directory is
// not summarized itself. Progress updates (summarized directories, sampled
// bytes) are sent to progressHook if provided.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Report, error) {
	log := opt.Logger
	if log == nil {
		log = discardLogger()
	}

	if opt.Path == "" {
		opt.Path = "."
	}

	root, err := filepath.Abs(filepath.Clean(opt.Path))
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	// validate path exists and is a directory
	if statInfo, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", opt.Path, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("path %q: %w", opt.Path, ErrNotDirectory)
	}

	if opt.Filter != "" {
		log.WithField("filter", opt.Filter).Debug("filter does not apply to statistics, ignoring")
	}

	log.WithFields(logrus.Fields{
		"root":     root,
		"depth":    opt.Depth,
		"keys":     opt.Keys,
		"on-error": opt.OnError,
	}).Debug("starting statistics walk")

	prog := &progress{}

	// Create child context to ensure progress reporter cleanup
	reporterCtx, cancel := context.WithCancel(ctx)
	done := startProgressReporter(reporterCtx, prog, progressHook, opt.ProgressInterval)

	// The hook is never called once Run has returned.
	defer func() {
		cancel()
		<-done
	}()

	start := time.Now()

	w, err := walkTree(reporterCtx, root, Summarize, WalkOptions{
		MaxDepth: opt.Depth,
		Keys:     opt.Keys,
		OnError:  opt.OnError,
		Logger:   log,
	}, prog)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Root:    root,
		Tree:    w.tree,
		Omitted: w.omitted,
		Elapsed: time.Since(start),
	}

	dirs, bytes := prog.snapshot()
	log.WithFields(logrus.Fields{
		"summarized": dirs,
		"bytes":      bytes,
		"keys":       len(report.Tree),
		"omitted":    len(report.Omitted),
		"elapsed":    report.Elapsed,
	}).Debug("statistics walk finished")

	return report, nil
}
