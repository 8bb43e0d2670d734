package streamio

import (
	"os"
	"path/filepath"
)

// File is an open, randomly-readable stream. Length, ReadAt, and Close
// are the minimal virtual-file-system contract from spec.md §6; Seek is
// folded into ReadAt's offset parameter since every read request already
// carries its own offset.
type File interface {
	Length() (int64, error)
	ReadAt(buf []byte, off int64) (int, error)
	Close() error
}

// FileSystem opens a File by path. Paths use forward slashes internally
// regardless of host platform; Open translates to the platform separator
// at this boundary, per spec.md §6.
type FileSystem interface {
	Open(path string) (File, error)
}

// OSFileSystem opens regular files from the host filesystem.
type OSFileSystem struct{}

// Open translates path's forward slashes to the host separator and opens
// the file for positioned reads.
func (OSFileSystem) Open(path string) (File, error) {
	f, err := os.Open(filepath.FromSlash(path))
	if err != nil {
		return nil, err
	}
	return newOSFile(f)
}
