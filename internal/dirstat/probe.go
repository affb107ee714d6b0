package dirstat

import (
	"io/fs"
	"os"
)

// Size returns the logical size of the entry at path in bytes.
// Directories, symbolic links and entries that cannot be stat'ed report 0.
func Size(path string) int64 {
	info, err := os.Lstat(path)
	if err != nil {
		return 0
	}

	return sizeOf(info)
}

// sizeOf applies the Size rule to an entry that was already stat'ed without
// following links.
func sizeOf(info fs.FileInfo) int64 {
	if info == nil {
		return 0
	}

	mode := info.Mode()
	if mode.IsDir() || mode&fs.ModeSymlink != 0 {
		return 0
	}

	return info.Size()
}
