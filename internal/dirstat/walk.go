package dirstat

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"
)

// Callback computes the summary of one directory. A nil summary is omitted.
type Callback func(dir string) (*Summary, error)

// WalkOptions configures Walk.
type WalkOptions struct {
	// MaxDepth bounds the recursion; 0 yields an empty tree.
	MaxDepth int
	// Keys selects how directories are keyed (default KeyByName).
	Keys KeyMode
	// OnError selects the error policy (default Abort).
	OnError ErrorPolicy
	// Logger receives debug and warning output. Nil discards.
	Logger logrus.FieldLogger
}

// walker carries the state of one Walk invocation.
type walker struct {
	opts     WalkOptions
	callback Callback
	root     string
	tree     Tree
	omitted  []Omission
	// omittedPaths dedupes omissions of a directory failing both its summary
	// and its own listing.
	omittedPaths map[string]bool
	progress *progress
	log      logrus.FieldLogger
	// ancestors holds the canonical paths of the directories on the current
	// recursion path.
	ancestors []string
}

// Walk performs a bounded depth-first recursion over the subdirectories of root.
//
// For each visited directory with at least one subdirectory, and while the
// depth bound allows, the callback's summaries of its immediate subdirectories
// are stored under the directory's key before recursing into each of them.
// Keys whose lists end up empty are removed.
func Walk(ctx context.Context, root string, callback Callback, opts WalkOptions) (Tree, error) {
	w, err := walkTree(ctx, root, callback, opts, nil)
	if err != nil {
		return nil, err
	}

	return w.tree, nil
}

// walkTree runs a full walk from root, counting summaries into prog when set,
// and returns the finished walker.
func walkTree(ctx context.Context, root string, callback Callback, opts WalkOptions, prog *progress) (*walker, error) {
	w := newWalker(root, callback, opts, prog)

	if err := w.walk(ctx, w.root, 0); err != nil {
		return nil, err
	}

	return w, nil
}

// newWalker applies defaults to opts.
func newWalker(root string, callback Callback, opts WalkOptions, prog *progress) *walker {
	if opts.Keys == "" {
		opts.Keys = KeyByName
	}

	if opts.OnError == "" {
		opts.OnError = Abort
	}

	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}

	return &walker{
		opts:         opts,
		callback:     callback,
		root:         filepath.Clean(root),
		tree:         make(Tree),
		omittedPaths: make(map[string]bool),
		progress:     prog,
		log:          log,
	}
}

// walk visits dir at the given depth.
func (w *walker) walk(ctx context.Context, dir string, depth int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return w.fail(dir, fmt.Errorf("resolving %q: %w", dir, err))
	}

	if slices.Contains(w.ancestors, canonical) {
		return fmt.Errorf("%w: %q resolves to ancestor %q", ErrSymlinkCycle, dir, canonical)
	}

	w.ancestors = append(w.ancestors, canonical)
	defer func() { w.ancestors = w.ancestors[:len(w.ancestors)-1] }()

	directs, err := subdirectories(dir)
	if err != nil {
		return w.fail(dir, err)
	}

	if len(directs) == 0 {
		return nil
	}

	if depth >= w.opts.MaxDepth {
		w.log.WithFields(logrus.Fields{"dir": dir, "depth": depth}).Debug("depth bound reached")

		return nil
	}

	depth++

	key := w.key(dir)

	// Under the skip policy a failed summary only drops that summary; the
	// subdirectory is still walked so that its healthy children are reported.
	for _, sub := range directs {
		summary, err := w.callback(sub)
		if err != nil {
			if err := w.fail(sub, err); err != nil {
				return err
			}

			continue
		}

		w.progress.add(summary)

		if summary == nil {
			w.log.WithField("dir", sub).Debug("no files to summarize")

			continue
		}

		w.tree[key] = append(w.tree[key], summary)
	}

	for _, sub := range directs {
		if err := w.walk(ctx, sub, depth); err != nil {
			return err
		}
	}

	if len(w.tree[key]) == 0 {
		delete(w.tree, key)
	}

	return nil
}

// fail applies the error policy to a failure at dir.
func (w *walker) fail(dir string, err error) error {
	if w.opts.OnError != Skip {
		return err
	}

	w.log.WithFields(logrus.Fields{"dir": dir, "err": err}).Warn("omitting directory")

	if !w.omittedPaths[dir] {
		w.omittedPaths[dir] = true
		w.omitted = append(w.omitted, Omission{Path: dir, Reason: err.Error()})
	}

	return nil
}

// key returns the tree key of dir.
func (w *walker) key(dir string) string {
	if w.opts.Keys != KeyByPath {
		return filepath.Base(dir)
	}

	rel, err := filepath.Rel(w.root, dir)
	if err != nil || rel == "." {
		return filepath.ToSlash(filepath.Base(w.root))
	}

	return filepath.ToSlash(filepath.Join(filepath.Base(w.root), rel))
}

// subdirectories returns the immediate children of dir that are directories,
// following symlinks, in name order.
func subdirectories(dir string) ([]string, error) {
	children, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %q: %w", dir, err)
	}

	var directs []string

	for _, child := range children {
		path := filepath.Join(dir, child.Name())

		if child.IsDir() {
			directs = append(directs, path)

			continue
		}

		if child.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				directs = append(directs, path)
			}
		}
	}

	return directs, nil
}

// discardLogger returns a logger that drops everything.
func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}
