package dirstat

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	root := scenarioTree(t)

	report, err := Run(context.Background(), Options{Path: root, Depth: DefaultDepth}, nil)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(report.Root))
	assert.Equal(t, root, report.Root)
	assert.Empty(t, report.Omitted)
	require.Contains(t, report.Tree, "t")
	assert.Equal(t, []string{filepath.Join(root, "a")}, directories(report.Tree["t"]))
}

func TestRunStopsProgressBeforeReturning(t *testing.T) {
	root := scenarioTree(t)

	for range 20 {
		var calls atomic.Int64

		hook := func(int64, int64) { calls.Add(1) }

		_, err := Run(context.Background(), Options{
			Path:             root,
			Depth:            DefaultDepth,
			ProgressInterval: time.Nanosecond,
		}, hook)
		require.NoError(t, err)

		after := calls.Load()

		time.Sleep(5 * time.Millisecond)
		assert.Equal(t, after, calls.Load(), "progress hook called after Run returned")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "t")
	writeFile(t, root, "a/x/1.txt", 10)
	writeFile(t, root, "a/x/2.txt", 20)
	writeFile(t, root, "a/y/3.bin", 4096)
	writeFile(t, root, "b/z/4.md", 1)
	mkdir(t, root, "c/empty")

	opt := Options{Path: root, Depth: DefaultDepth}

	first, err := Run(context.Background(), opt, nil)
	require.NoError(t, err)

	second, err := Run(context.Background(), opt, nil)
	require.NoError(t, err)

	a, err := json.Marshal(first.Tree)
	require.NoError(t, err)

	b, err := json.Marshal(second.Tree)
	require.NoError(t, err)

	assert.JSONEq(t, string(a), string(b))
}

func TestRunRelativePath(t *testing.T) {
	root := scenarioTree(t)
	t.Chdir(root)

	report, err := Run(context.Background(), Options{Depth: DefaultDepth}, nil)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(report.Root))
	assert.Contains(t, report.Tree, filepath.Base(report.Root))
}

func TestRunInvalidTarget(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "file.txt", 1)

	_, err := Run(context.Background(), Options{Path: filepath.Join(root, "missing"), Depth: 1}, nil)
	require.Error(t, err)

	_, err = Run(context.Background(), Options{Path: file, Depth: 1}, nil)
	require.ErrorIs(t, err, ErrNotDirectory)
}

func TestParseOptions(t *testing.T) {
	mode, err := ParseKeyMode("path")
	require.NoError(t, err)
	assert.Equal(t, KeyByPath, mode)

	_, err = ParseKeyMode("inode")
	require.Error(t, err)

	policy, err := ParseErrorPolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, Skip, policy)

	_, err = ParseErrorPolicy("ignore")
	require.Error(t, err)
}
