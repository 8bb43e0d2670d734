package copyqueue

import "github.com/forgecore/engine/gpu"

// CommandType identifies the kind of transfer a Command records.
type CommandType uint8

const (
	CmdCopyBuffer CommandType = iota
	CmdCopyBufferContinuation
	CmdUploadBuffer
	CmdUploadTexture
)

var commandTypeNames = [...]string{
	CmdCopyBuffer:             "CopyBuffer",
	CmdCopyBufferContinuation: "CopyBufferContinuation",
	CmdUploadBuffer:           "UploadBuffer",
	CmdUploadTexture:          "UploadTexture",
}

func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is implemented by every transfer command a Builder can emit.
type Command interface {
	Type() CommandType
}

// CopyBufferCommand copies a byte range from one buffer to another.
type CopyBufferCommand struct {
	Src, Dst         gpu.DeviceObject
	SrcOff, DstOff   uint64
	Size             uint64
}

func (CopyBufferCommand) Type() CommandType { return CmdCopyBuffer }

// CopyBufferContinuationCommand extends the previous CopyBufferCommand's
// (src, dst) pair with another disjoint range, avoiding a repeated
// src/dst pair in the command stream when several ranges are copied
// between the same two buffers back to back.
type CopyBufferContinuationCommand struct {
	SrcOff, DstOff uint64
	Size           uint64
}

func (CopyBufferContinuationCommand) Type() CommandType { return CmdCopyBufferContinuation }

// UploadBufferCommand uploads CPU-resident data into dst starting at
// DstOff. Data is borrowed by the command list until it completes: the
// caller must keep the backing array alive and unmodified until the
// wait-group passed to Queue.Enqueue with the list signals.
type UploadBufferCommand struct {
	Dst    gpu.DeviceObject
	DstOff uint64
	Data   []byte
}

func (UploadBufferCommand) Type() CommandType { return CmdUploadBuffer }

// UploadTextureCommand uploads CPU-resident data into one subresource of
// dst, matching the same data-borrowing contract as UploadBufferCommand.
type UploadTextureCommand struct {
	Dst         gpu.DeviceObject
	Subresource uint32
	SrcOff      uint64
	Data        []byte
}

func (UploadTextureCommand) Type() CommandType { return CmdUploadTexture }

// CommandList is the immutable output of Builder.Build: every recorded
// command, flattened from the Builder's pages into one slice. It carries
// no wait-group; that is passed alongside it to Queue.Enqueue.
type CommandList struct {
	Commands []Command
}
