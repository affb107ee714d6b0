package dirstat

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile creates root/rel with size bytes, creating parents as needed.
func writeFile(t *testing.T, root, rel string, size int) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644))

	return path
}

// mkdir creates root/rel and its parents.
func mkdir(t *testing.T, root, rel string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(path, 0o755))

	return path
}

// symlink creates a link at root/rel pointing to target, skipping the test
// where symlinks are not generally available.
func symlink(t *testing.T, target, root, rel string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.Symlink(target, path))

	return path
}

// scenarioTree builds <tmp>/t with a/f1.bin (100 bytes), a/f2.log (300 bytes)
// and an empty b/, returning the path of t.
func scenarioTree(t *testing.T) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "t")
	writeFile(t, root, "a/f1.bin", 100)
	writeFile(t, root, "a/f2.log", 300)
	mkdir(t, root, "b")

	return root
}

// lock removes all permissions from dir for the duration of the test. It skips
// where permissions are not enforced.
func lock(t *testing.T, dir string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("directory permissions are not enforced on windows")
	}

	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}

	require.NoError(t, os.Chmod(dir, 0))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })
}
