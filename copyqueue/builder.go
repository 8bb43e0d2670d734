package copyqueue

import "github.com/forgecore/engine/gpu"

// pageSize bounds each page of the command buffer, matching the
// "paged buffer" description in spec.md §4.7: pages are allocated as the
// recording grows rather than one unbounded slice, so a half-empty final
// page doesn't force reallocating everything recorded before it.
const pageSize = 64

// Builder records copy and upload commands into a paged command buffer.
// A Builder is not safe for concurrent use; one Builder records one
// command list, handed off whole via Build.
type Builder struct {
	pages [][]Command

	lastSrc, lastDst gpu.DeviceObject
	havePrevCopy     bool
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) appendCommand(c Command) {
	if len(b.pages) == 0 || len(b.pages[len(b.pages)-1]) >= pageSize {
		b.pages = append(b.pages, make([]Command, 0, pageSize))
	}
	last := len(b.pages) - 1
	b.pages[last] = append(b.pages[last], c)
}

// CopyBuffer records a copy from src to dst. If the previous command
// copied between the same (src, dst) pair, this compacts into a
// CopyBufferContinuationCommand instead of repeating the pair.
func (b *Builder) CopyBuffer(src, dst gpu.DeviceObject, srcOff, dstOff, size uint64) {
	if b.havePrevCopy && b.lastSrc == src && b.lastDst == dst {
		b.appendCommand(CopyBufferContinuationCommand{SrcOff: srcOff, DstOff: dstOff, Size: size})
		return
	}
	b.appendCommand(CopyBufferCommand{Src: src, Dst: dst, SrcOff: srcOff, DstOff: dstOff, Size: size})
	b.lastSrc, b.lastDst, b.havePrevCopy = src, dst, true
}

// UploadBuffer records a CPU-to-GPU buffer upload. data is borrowed: the
// caller must not reuse or modify it until the resulting CommandList's
// wait-group signals.
func (b *Builder) UploadBuffer(dst gpu.DeviceObject, dstOff uint64, data []byte) {
	b.appendCommand(UploadBufferCommand{Dst: dst, DstOff: dstOff, Data: data})
	b.havePrevCopy = false
}

// UploadTexture records a CPU-to-GPU texture subresource upload, with the
// same data-borrowing contract as UploadBuffer.
func (b *Builder) UploadTexture(dst gpu.DeviceObject, subresource uint32, srcOff uint64, data []byte) {
	b.appendCommand(UploadTextureCommand{Dst: dst, Subresource: subresource, SrcOff: srcOff, Data: data})
	b.havePrevCopy = false
}

// Build finalizes the recording into a CommandList, flattening the
// recorded pages into one slice. The wait-group is not given to Build but
// to Queue.Enqueue, whose transfer worker signals it once the list has
// been submitted through the Replayer; completion on the GPU is not
// tracked.
func (b *Builder) Build() *CommandList {
	var flat []Command
	for _, page := range b.pages {
		flat = append(flat, page...)
	}
	return &CommandList{Commands: flat}
}
