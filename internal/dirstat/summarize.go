package dirstat

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// entry is one descendant found while enumerating a directory.
type entry struct {
	path string
	size int64
	// sampled marks regular, non-symlink files.
	sampled bool
}

// collector gathers entries from concurrent fastwalk callbacks using a mutex.
type collector struct {
	mu      sync.Mutex // Protect concurrent access
	entries []entry
}

// add records an entry. fastwalk calls the callback from multiple goroutines.
func (c *collector) add(e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, e)
}

// sorted returns the entries ordered by path, which fixes tie-breaking between
// equally sized entries independently of the walk's scheduling.
func (c *collector) sorted() []entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	slices.SortFunc(c.entries, func(a, b entry) int {
		return strings.Compare(a.path, b.path)
	})

	return c.entries
}

// Summarize computes the size statistics of all files below dir, at any depth.
//
// It returns a nil Summary without error when dir is not a directory or when
// no regular, non-symlink file exists below it. Enumeration failures such as
// permission errors are returned.
func Summarize(dir string) (*Summary, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, nil //nolint:nilnil,nilerr // Missing or non-directory targets have no statistics
	}

	entries, err := enumerate(dir)
	if err != nil {
		return nil, err
	}

	return summarizeEntries(dir, entries), nil
}

// enumerate lists every descendant of dir without following symlinks below it.
// A symlinked dir itself is resolved so that its contents are listed.
func enumerate(dir string) ([]entry, error) {
	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", dir, err)
	}

	root = filepath.Clean(root)

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	var c collector

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("enumerating %q: %w", path, err)
		}

		if path == root {
			return nil
		}

		e := entry{path: path, sampled: d.Type().IsRegular()}

		if info, err := d.Info(); err == nil {
			e.size = sizeOf(info)
		} else {
			// Retry the probe once; an entry gone by now is counted with size 0.
			e.size = Size(path)
		}

		c.add(e)

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return c.sorted(), nil
}

// summarizeEntries reduces the entries of dir to a Summary, or nil when no
// entry is sampled.
func summarizeEntries(dir string, entries []entry) *Summary {
	sample := make([]int64, 0, len(entries))

	for _, e := range entries {
		if e.sampled {
			sample = append(sample, e.size)
		}
	}

	if len(sample) == 0 {
		return nil
	}

	m := describe(sample)

	// Extremes are located over all entries, directories included, so a
	// zero-sized directory can supply the smallest extension.
	largest, smallest := entries[0], entries[0]

	for _, e := range entries[1:] {
		if e.size > largest.size {
			largest = e
		}

		if e.size < smallest.size {
			smallest = e
		}
	}

	return &Summary{
		Directory:             dir,
		Total:                 len(entries),
		TotalSize:             m.sum,
		TotalSizeHuman:        toMiB(m.sum),
		LargestFileExtension:  extension(filepath.Base(largest.path)),
		LargestFileSize:       m.max,
		LargestFileSizeHuman:  toMiB(m.max),
		SmallestFileExtension: extension(filepath.Base(smallest.path)),
		SmallestFileSize:      m.min,
		SmallestFileSizeHuman: toMiB(m.min),
		Variance:              m.variance,
		Mean:                  float64(m.sum) / float64(len(entries)),
		Median:                m.median,
		Deciles:               m.deciles,
		CohensD:               m.mean / m.std,
		Skewness:              m.skewness,
		Kurtosis:              m.kurtosis,
		IQR:                   m.iqr,
	}
}
