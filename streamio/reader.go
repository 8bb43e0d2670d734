package streamio

import (
	"context"
	"log/slog"
	"sync"

	"github.com/forgecore/engine/internal/elog"
	"github.com/forgecore/engine/job"
)

// bucket is an intrusive singly-linked FIFO of *Request for one priority
// level, mirroring job.queue's shape (push/pop on a `next` pointer
// embedded in the element itself rather than a separate node
// allocation).
type bucket struct {
	front, back *Request
}

func (b *bucket) push(r *Request) {
	r.next = nil
	if b.back == nil {
		b.front, b.back = r, r
		return
	}
	b.back.next = r
	b.back = r
}

func (b *bucket) pop() (*Request, bool) {
	r := b.front
	if r == nil {
		return nil, false
	}
	b.front = r.next
	if b.front == nil {
		b.back = nil
	}
	r.next = nil
	return r, true
}

// Reader is the dedicated goroutine from spec.md §4.8: it owns blocking
// OS reads and therefore runs on its own goroutine rather than a
// job.System worker, which would otherwise tie up a fiber slot for the
// duration of a syscall.
type Reader struct {
	fs      FileSystem
	workers *job.System
	log     *slog.Logger

	mu      sync.Mutex
	buckets [job.PriorityCount]bucket
	wake    chan struct{}

	done   chan struct{}
	closed chan struct{}
}

// NewReader creates a Reader. workers may be nil, in which case a
// Request's Decompressor runs on the reader goroutine itself and its
// result or error reaches the Request's Callback as usual.
func NewReader(fs FileSystem, workers *job.System, logger *slog.Logger) *Reader {
	return &Reader{
		fs:      fs,
		workers: workers,
		log:     elog.Named(logger, "streamio"),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		closed:  make(chan struct{}),
	}
}

// Start launches the reader goroutine.
func (r *Reader) Start() { go r.run() }

// Stop signals the reader to exit once its current request, if any,
// finishes, then blocks until it has. Requests still queued when Stop is
// called are left undelivered.
func (r *Reader) Stop() {
	close(r.done)
	<-r.closed
}

// Submit enqueues req and wakes the reader goroutine. Safe to call from
// any goroutine.
func (r *Reader) Submit(req *Request) {
	if req.Priority >= job.PriorityCount {
		req.Priority = job.PriorityNormal
	}
	r.mu.Lock()
	r.buckets[req.Priority].push(req)
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Reader) popRequest() (*Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for p := job.Priority(0); p < job.PriorityCount; p++ {
		if req, ok := r.buckets[p].pop(); ok {
			return req, true
		}
	}
	return nil, false
}

func (r *Reader) run() {
	defer close(r.closed)
	for {
		req, ok := r.popRequest()
		if !ok {
			select {
			case <-r.done:
				return
			case <-r.wake:
				continue
			}
		}
		r.serve(req)
		select {
		case <-r.done:
			return
		default:
		}
	}
}

func (r *Reader) serve(req *Request) {
	if req.Controller != nil && req.Controller.Canceled() {
		req.Callback(Result{Canceled: true})
		return
	}

	f, err := r.fs.Open(req.Path)
	if err != nil {
		req.Callback(Result{Err: err})
		return
	}
	defer f.Close()

	length := req.Length
	if length == 0 {
		if n, err := f.Length(); err == nil {
			length = n - req.Offset
		}
	}
	buf := make([]byte, length)
	if _, err := f.ReadAt(buf, req.Offset); err != nil {
		req.Callback(Result{Err: err})
		return
	}

	if req.Controller != nil && req.Controller.Canceled() {
		req.Callback(Result{Canceled: true})
		return
	}

	if req.Decompressor == nil {
		req.Callback(Result{Data: buf})
		return
	}

	data, err := r.decompress(req.Decompressor, buf)
	if err != nil {
		req.Callback(Result{Err: err})
		return
	}
	req.Callback(Result{Data: data})
}

type decompressOutcome struct {
	data []byte
	err  error
}

// decompress runs dec on job.System workers when one is configured,
// blocking this goroutine (not a fiber, so job.WaitGroup.Wait is not
// usable here) on a plain completion channel instead.
func (r *Reader) decompress(dec Decompressor, block []byte) ([]byte, error) {
	if r.workers == nil {
		return dec.Decompress(block)
	}

	outcome := make(chan decompressOutcome, 1)
	r.workers.Schedule(&job.Job{
		Name:     "streamio.decompress",
		Priority: job.PriorityNormal,
		Affinity: job.AffinityAny,
		Execute: func(ctx context.Context) {
			data, err := dec.Decompress(block)
			outcome <- decompressOutcome{data: data, err: err}
		},
	})
	o := <-outcome
	return o.data, o.err
}
