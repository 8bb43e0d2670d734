package copyqueue

import (
	"log/slog"

	"github.com/forgecore/engine/gpu"
	"github.com/forgecore/engine/internal/elog"
	"github.com/forgecore/engine/job"
	"github.com/forgecore/engine/transient"
)

// Replayer is the device-specific surface a Queue drives while replaying
// one CommandList. It is deliberately narrow: translating a command into
// real transfer-queue API calls is out of scope here, the same way the
// HLSL compiler front-end is a black box to shaderlib.
type Replayer interface {
	ReplayCopyBuffer(cmd CopyBufferCommand)
	ReplayCopyBufferContinuation(src, dst gpu.DeviceObject, cmd CopyBufferContinuationCommand)
	ReplayUploadBuffer(staging transient.Placement, cmd UploadBufferCommand)
	ReplayUploadTexture(staging transient.Placement, cmd UploadTextureCommand)
	// Submit flushes every command replayed since the last Submit to the
	// transfer queue.
	Submit()
}

type submission struct {
	list *CommandList
	wg   *job.WaitGroup
}

// Queue is the transfer-queue worker from spec.md §4.7: it dequeues
// command lists, allocates a staging sub-range per upload from a
// transient.Heap, replays the commands against a Replayer, submits, and
// signals each list's wait-group.
type Queue struct {
	staging  *transient.Heap
	replayer Replayer
	log      *slog.Logger

	submissions chan submission
	done        chan struct{}
}

// NewQueue creates a Queue. staging backs every UploadBuffer/UploadTexture
// command's sub-range allocation; it is expected to be sized for the
// largest in-flight upload burst.
func NewQueue(staging *transient.Heap, replayer Replayer, logger *slog.Logger) *Queue {
	return &Queue{
		staging:     staging,
		replayer:    replayer,
		log:         elog.Named(logger, "copyqueue"),
		submissions: make(chan submission, 16),
		done:        make(chan struct{}),
	}
}

// Start launches the worker goroutine. Like streamio's reader, this is a
// single dedicated goroutine rather than a job.System pool: it owns the
// transfer queue's submission order, which must match enqueue order.
func (q *Queue) Start() { go q.run() }

// Stop signals the worker to exit once its current submission, if any,
// finishes. Queued-but-undrained submissions never run and never signal
// their wait-group.
func (q *Queue) Stop() { close(q.done) }

// Enqueue submits list for replay. wg must already have been Add(1)'d by
// the caller; Queue signals it by 1 once the list has been replayed and
// submitted.
func (q *Queue) Enqueue(list *CommandList, wg *job.WaitGroup) {
	q.submissions <- submission{list: list, wg: wg}
}

func (q *Queue) run() {
	for {
		select {
		case <-q.done:
			return
		case sub := <-q.submissions:
			q.replay(sub)
		}
	}
}

func (q *Queue) replay(sub submission) {
	var lastSrc, lastDst gpu.DeviceObject

	for _, cmd := range sub.list.Commands {
		switch c := cmd.(type) {
		case CopyBufferCommand:
			lastSrc, lastDst = c.Src, c.Dst
			q.replayer.ReplayCopyBuffer(c)
		case CopyBufferContinuationCommand:
			q.replayer.ReplayCopyBufferContinuation(lastSrc, lastDst, c)
		case UploadBufferCommand:
			q.replayUpload(len(c.Data), func(p transient.Placement) { q.replayer.ReplayUploadBuffer(p, c) })
		case UploadTextureCommand:
			q.replayUpload(len(c.Data), func(p transient.Placement) { q.replayer.ReplayUploadTexture(p, c) })
		}
	}

	q.replayer.Submit()
	// GPU-completion tracking belongs to the real transfer-queue fence,
	// which this package does not implement; the wait-group signals once
	// the commands are submitted, matching gpu.DisposeQueue's own
	// frames-in-flight model for the rest of the completion latency.
	if sub.wg != nil {
		sub.wg.Signal(1)
	}
}

func (q *Queue) replayUpload(size int, record func(transient.Placement)) {
	if size == 0 {
		return
	}
	placement, err := q.staging.Alloc(uint64(size))
	if err != nil {
		q.log.Warn("staging allocation failed, dropping upload", "size", size, "error", err)
		return
	}
	record(placement)
	q.staging.Release(placement)
}
