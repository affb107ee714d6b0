package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/rglob/internal/dirstat"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
	// YAMLIndent is the indentation width of YAML output.
	YAMLIndent = 2
)

// Print writes the report in the given output format.
func Print(report *dirstat.Report, output string, writer io.Writer) error {
	switch strings.ToLower(output) {
	case "json":
		return PrintJSON(report, writer)
	case "yaml":
		return PrintYAML(report, writer)
	case "table":
		return PrintTable(report, writer)
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}
}

// PrintJSON outputs the statistics tree in JSON format.
func PrintJSON(report *dirstat.Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report.Tree, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintYAML outputs the statistics tree in YAML format.
func PrintYAML(report *dirstat.Report, writer io.Writer) error {
	enc := yaml.NewEncoder(writer)
	enc.SetIndent(YAMLIndent)

	if err := enc.Encode(report.Tree); err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}

	return enc.Close()
}

// PrintTable outputs the statistics tree in human-readable table format.
func PrintTable(report *dirstat.Report, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)
	heading := color.New(color.Bold)
	keyColor := color.New(color.FgCyan, color.Bold)

	keys := make([]string, 0, len(report.Tree))
	for key := range report.Tree {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	if len(keys) == 0 {
		fmt.Fprintln(w, "\nNo directories with statistics.")
	}

	for _, key := range keys {
		fmt.Fprintf(w, "\n%s\n", keyColor.Sprintf("%s:", key))
		fmt.Fprintln(w, "  Directory\tEntries\tSize\tLargest\tSmallest\tMean\tMedian\tIQR\tSkewness")

		for _, s := range report.Tree[key] {
			fmt.Fprintf(w, "  %s\t%d\t%s\t%s %s\t%s %s\t%.1f\t%.1f\t%.1f\t%.2f\n",
				displayPath(report.Root, s.Directory),
				s.Total,
				ibytes(s.TotalSize),
				ibytes(s.LargestFileSize),
				quoteExt(s.LargestFileExtension),
				ibytes(s.SmallestFileSize),
				quoteExt(s.SmallestFileExtension),
				s.Mean,
				s.Median,
				s.IQR,
				s.Skewness,
			)
		}
	}

	if len(report.Omitted) > 0 {
		fmt.Fprintf(w, "\n%s\n", heading.Sprint("Omitted:"))

		for _, o := range report.Omitted {
			fmt.Fprintf(w, "  '%s'\t%s\n", displayPath(report.Root, o.Path), o.Reason)
		}
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", report.Elapsed)

	return w.Flush()
}

// displayPath shows path relative to root when it lies below it.
func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}

	return filepath.ToSlash(rel)
}

// ibytes formats a byte count with binary units.
func ibytes(n int64) string {
	return humanize.IBytes(uint64(n)) //nolint:gosec // Sizes are never negative
}

// quoteExt renders an extension, making the empty one visible.
func quoteExt(ext string) string {
	if ext == "" {
		return `("")`
	}

	return "(" + ext + ")"
}
