package streamio

import (
	"sync/atomic"

	"github.com/forgecore/engine/job"
)

// Controller is the cooperative cancellation handle spec.md §4.8
// describes: Cancel sets a flag that the reader checks at each block
// boundary. A block already being read or decompressed when Cancel is
// called is not aborted mid-flight.
type Controller struct {
	canceled atomic.Bool
}

// Cancel requests cancellation. Safe to call from any goroutine.
func (c *Controller) Cancel() { c.canceled.Store(true) }

// Canceled reports whether Cancel has been called.
func (c *Controller) Canceled() bool { return c.canceled.Load() }

// Result is delivered to a Request's Callback once the read (and any
// decompression) completes, fails, or is canceled.
type Result struct {
	Data     []byte
	Err      error
	Canceled bool
}

// Decompressor decompresses one block. Block decompression is optionally
// run on job.System workers instead of the reader's own goroutine, per
// spec.md §4.8.
type Decompressor interface {
	Decompress(block []byte) ([]byte, error)
}

// Request describes one read or block-read operation.
type Request struct {
	Priority job.Priority
	Path     string
	Offset   int64
	Length   int64

	// Decompressor, if non-nil, is run against the bytes read before
	// Callback is invoked: on job.System workers when the Reader has them,
	// otherwise on the reader goroutine.
	Decompressor Decompressor

	Callback   func(Result)
	Controller *Controller

	next *Request // intrusive link, owned by whichever priority bucket holds it
}
