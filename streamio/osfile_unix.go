//go:build unix

package streamio

import (
	"os"

	"golang.org/x/sys/unix"
)

// osFile backs File with a raw positioned pread, so concurrent
// ReadAt calls on the same handle from the reader goroutine and any
// decompression job never race over a shared file offset the way
// seek-then-read would.
type osFile struct {
	f  *os.File
	fd int
}

func newOSFile(f *os.File) (File, error) {
	return &osFile{f: f, fd: int(f.Fd())}, nil
}

func (o *osFile) Length() (int64, error) {
	info, err := o.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (o *osFile) ReadAt(buf []byte, off int64) (int, error) {
	return unix.Pread(o.fd, buf, off)
}

func (o *osFile) Close() error { return o.f.Close() }
