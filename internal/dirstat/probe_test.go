package dirstat

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSize(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "data.bin", 123)
	empty := writeFile(t, root, "empty.txt", 0)
	dir := mkdir(t, root, "sub")

	tests := []struct {
		name string
		path string
		want int64
	}{
		{name: "regular file", path: file, want: 123},
		{name: "empty file", path: empty, want: 0},
		{name: "directory", path: dir, want: 0},
		{name: "nonexistent", path: filepath.Join(root, "missing"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Size(tt.path))
		})
	}
}

func TestSizeSymlinks(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "data.bin", 64)
	dir := mkdir(t, root, "sub")

	toFile := symlink(t, file, root, "to-file")
	toDir := symlink(t, dir, root, "to-dir")
	broken := symlink(t, filepath.Join(root, "gone"), root, "broken")

	assert.Zero(t, Size(toFile), "symlink to a file")
	assert.Zero(t, Size(toDir), "symlink to a directory")
	assert.Zero(t, Size(broken), "broken symlink")
}
