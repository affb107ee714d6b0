package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/rglob/internal/dirstat"
)

// sampleReport returns a report with one key holding one summary.
func sampleReport() *dirstat.Report {
	root := filepath.Join(string(filepath.Separator), "data", "t")

	return &dirstat.Report{
		Root: root,
		Tree: dirstat.Tree{
			"t": {
				{
					Directory:             filepath.Join(root, "a"),
					Total:                 2,
					TotalSize:             400,
					TotalSizeHuman:        400.0 / 1024 / 1024,
					LargestFileExtension:  ".log",
					LargestFileSize:       300,
					SmallestFileExtension: "",
					SmallestFileSize:      100,
					Variance:              10000,
					Mean:                  200,
					Median:                200,
					Deciles:               dirstat.Deciles{10: 120, 20: 140, 30: 160, 40: 180, 50: 200, 60: 220, 70: 240, 80: 260, 90: 280},
					CohensD:               2,
					Kurtosis:              1,
					IQR:                   100,
				},
			},
		},
		Omitted: []dirstat.Omission{{Path: filepath.Join(root, "locked"), Reason: "permission denied"}},
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintJSON(sampleReport(), &buf))

	var tree map[string][]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &tree))

	require.Len(t, tree["t"], 1)
	assert.InDelta(t, 400.0, tree["t"][0]["total_size"], 1e-9)
	assert.Contains(t, tree["t"][0], "cohens_d")
	assert.NotContains(t, buf.String(), "Omitted", "only the tree is serialized")
}

func TestPrintJSONFieldOrder(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintJSON(sampleReport(), &buf))

	fields := []string{
		"directory", "total", "total_size", "total_size_human",
		"largest_file_extension", "largest_file_size", "largest_file_size_human",
		"smallest_file_extension", "smallest_file_size", "smallest_file_size_human",
		"mean", "median", "deciles", "variance", "cohens_d", "skewness", "kurtosis", "iqr",
	}

	out := buf.String()
	last := -1

	for _, field := range fields {
		idx := strings.Index(out, `"`+field+`"`)
		require.NotEqual(t, -1, idx, "missing field %q", field)
		assert.Greater(t, idx, last, "field %q out of order", field)

		last = idx
	}
}

func TestPrintJSONEmptyTree(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintJSON(&dirstat.Report{Tree: dirstat.Tree{}}, &buf))
	assert.Equal(t, "{}\n", buf.String())
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer

	report := sampleReport()
	require.NoError(t, PrintYAML(report, &buf))

	var tree dirstat.Tree
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &tree))

	assert.Equal(t, report.Tree, tree)
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintTable(sampleReport(), &buf))

	out := buf.String()
	assert.Contains(t, out, "t:")
	assert.Contains(t, out, "Directory")
	assert.Contains(t, out, "400 B")
	assert.Contains(t, out, "(.log)")
	assert.Contains(t, out, `("")`)
	assert.Contains(t, out, "Omitted:")
	assert.Contains(t, out, "'locked'")
}

func TestPrintUnknownFormat(t *testing.T) {
	require.Error(t, Print(sampleReport(), "xml", &bytes.Buffer{}))
}
