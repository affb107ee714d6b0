package dirstat

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDepth is the default maximum recursion depth of the walker.
const DefaultDepth = 5

var (
	// ErrNotDirectory is returned when the analysis target is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrSymlinkCycle is returned when a symlinked directory resolves to one of its ancestors.
	ErrSymlinkCycle = errors.New("symlink cycle detected")
)

// Deciles maps the percentiles 10, 20, ..., 90 to their values.
type Deciles map[int]float64

// Summary holds the size distribution of all files below one directory.
// Field order is the serialized order.
type Summary struct {
	// Directory is the absolute path of the summarized directory.
	Directory string `json:"directory" yaml:"directory"`
	// Total is the number of descendant entries of any kind.
	Total int `json:"total" yaml:"total"`
	// TotalSize is the cumulative size of the sampled files in bytes.
	TotalSize int64 `json:"total_size" yaml:"total_size"`
	// TotalSizeHuman is TotalSize in MiB.
	TotalSizeHuman float64 `json:"total_size_human" yaml:"total_size_human"`
	// LargestFileExtension is the extension of the first entry with the largest size.
	LargestFileExtension string `json:"largest_file_extension" yaml:"largest_file_extension"`
	// LargestFileSize is the largest sampled file size in bytes.
	LargestFileSize int64 `json:"largest_file_size" yaml:"largest_file_size"`
	// LargestFileSizeHuman is LargestFileSize in MiB.
	LargestFileSizeHuman float64 `json:"largest_file_size_human" yaml:"largest_file_size_human"`
	// SmallestFileExtension is the extension of the first entry with the smallest size.
	SmallestFileExtension string `json:"smallest_file_extension" yaml:"smallest_file_extension"`
	// SmallestFileSize is the smallest sampled file size in bytes.
	SmallestFileSize int64 `json:"smallest_file_size" yaml:"smallest_file_size"`
	// SmallestFileSizeHuman is SmallestFileSize in MiB.
	SmallestFileSizeHuman float64 `json:"smallest_file_size_human" yaml:"smallest_file_size_human"`
	// Mean is TotalSize divided by Total.
	Mean float64 `json:"mean" yaml:"mean"`
	// Median is the 50th percentile, rounded to two decimals.
	Median float64 `json:"median" yaml:"median"`
	// Deciles holds the 10th to 90th percentiles.
	Deciles Deciles `json:"deciles" yaml:"deciles"`
	// Variance is the population variance of the sample.
	Variance float64 `json:"variance" yaml:"variance"`
	// CohensD is the sample mean over the floored standard deviation.
	CohensD float64 `json:"cohens_d" yaml:"cohens_d"`
	// Skewness is the standardized third moment.
	Skewness float64 `json:"skewness" yaml:"skewness"`
	// Kurtosis is the standardized fourth moment.
	Kurtosis float64 `json:"kurtosis" yaml:"kurtosis"`
	// IQR is the 75th minus the 25th percentile.
	IQR float64 `json:"iqr" yaml:"iqr"`
}

// Tree maps a directory key to the summaries of its immediate subdirectories.
// A key is present only when its list is non-empty.
type Tree map[string][]*Summary

// Omission records a directory left out of the tree under the skip policy.
type Omission struct {
	// Path is the directory that could not be analyzed.
	Path string `json:"path" yaml:"path"`
	// Reason is the error that caused the omission.
	Reason string `json:"reason" yaml:"reason"`
}

// Report is the result of a statistics run.
type Report struct {
	// Root is the absolute path of the analyzed directory.
	Root string
	// Tree is the nested summary mapping.
	Tree Tree
	// Omitted lists subtrees skipped because of errors.
	Omitted []Omission
	// Elapsed is the total time taken for analysis.
	Elapsed time.Duration
}

// KeyMode selects how directories are keyed in the tree.
type KeyMode string

const (
	// KeyByName keys by the final path component. Distinct directories sharing
	// a name have their lists concatenated.
	KeyByName KeyMode = "name"
	// KeyByPath keys by the slash-separated path starting at the root's name.
	KeyByPath KeyMode = "path"
)

// ErrorPolicy selects what happens when a subtree cannot be analyzed.
type ErrorPolicy string

const (
	// Abort stops the run and returns the error.
	Abort ErrorPolicy = "abort"
	// Skip logs the error, records an Omission and drops only what failed.
	Skip ErrorPolicy = "skip"
)

// ParseKeyMode validates a key mode name.
func ParseKeyMode(s string) (KeyMode, error) {
	switch mode := KeyMode(s); mode {
	case KeyByName, KeyByPath:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid key mode %q: must be one of [%s %s]", s, KeyByName, KeyByPath)
	}
}

// ParseErrorPolicy validates an error policy name.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch policy := ErrorPolicy(s); policy {
	case Abort, Skip:
		return policy, nil
	default:
		return "", fmt.Errorf("invalid error policy %q: must be one of [%s %s]", s, Abort, Skip)
	}
}

// Options configures a statistics run.
type Options struct {
	// Path is the directory to analyze.
	Path string
	// Filter is accepted for interface compatibility and does not affect statistics.
	Filter string
	// Depth is the maximum recursion depth (0 yields an empty tree).
	Depth int
	// Keys selects how directories are keyed.
	Keys KeyMode
	// OnError selects the error policy.
	OnError ErrorPolicy
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives debug and warning output. Nil discards.
	Logger logrus.FieldLogger
}

// progress counts walker activity. The walker is single-threaded but the
// progress reporter reads concurrently.
type progress struct {
	mu    sync.Mutex
	dirs  int64
	bytes int64
}

// add records one summarized directory.
func (p *progress) add(summary *Summary) {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.dirs++
	if summary != nil {
		p.bytes += summary.TotalSize
	}
}

// snapshot returns the current counters.
func (p *progress) snapshot() (int64, int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.dirs, p.bytes
}
