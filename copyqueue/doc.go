// Package copyqueue implements the async copy queue from spec.md §4.7:
// a Builder records copy/upload commands into a paged command buffer,
// Build flattens it into a CommandList, and Queue.Enqueue hands that list
// to a transfer-queue worker that replays it and signals a job.WaitGroup
// once it has been submitted. Completion on the GPU is not tracked.
//
// The command representation follows the same typed-command-slice shape
// the teacher's recording package uses for vector drawing commands
// (recording.CommandType + a []Command), generalized from drawing ops to
// GPU transfer ops.
package copyqueue
