// Package dirstat computes per-directory file size statistics.
//
// Summarize enumerates every descendant of a directory with fastwalk and
// reduces the sizes of its regular files to a Summary of percentiles and
// moments. Walk performs a bounded depth-first recursion over subdirectories,
// invoking a callback for each immediate subdirectory of a visited directory
// and assembling the results into a Tree keyed by directory name. Run ties the
// two together for a root path.
//
// Leaf directories (no subdirectories of their own) are summarized only as
// children of their parent; the root itself is never summarized. Symlinked
// directory cycles are reported as ErrSymlinkCycle.
package dirstat
