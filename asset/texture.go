package asset

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/forgecore/engine/gpu"
)

// maxMipChains bounds the number of mip chains a Header's directory can
// describe, keeping Header a single fixed-size read (spec.md §6: "one
// header read, then one block-read per mip chain") instead of a
// variable-length prefix that would need a second read just to learn
// its own size.
const maxMipChains = 16

// chainEntry locates one mip chain's block within the asset file.
type chainEntry struct {
	Offset   uint64
	Length   uint64
	FirstMip uint32
	MipCount uint32
}

// rawHeader is Header's fixed-size wire layout, readable directly with
// encoding/binary since every field is a fixed-width integer.
type rawHeader struct {
	Format        uint32
	Width         uint32
	Height        uint32
	Depth         uint32
	ArraySize     uint32
	MipCount      uint32
	MipChainCount uint32
	_             uint32 // pad to keep Chains 8-byte aligned
	Chains        [maxMipChains]chainEntry
}

const headerSize = 4*8 + maxMipChains*24

// Header is the texture asset header from spec.md §6: format,
// dimensions, array size, mip count, and mip-chain count, plus the
// directory locating each mip chain's block within the asset file.
type Header struct {
	Format        gpu.Format
	Width         uint32
	Height        uint32
	Depth         uint32
	ArraySize     uint32
	MipCount      uint32
	MipChainCount uint32

	chains [maxMipChains]chainEntry
}

// DecodeHeader parses a Header from its fixed-size wire encoding.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, fmt.Errorf("asset: header too short: %d bytes, want %d", len(buf), headerSize)
	}
	var raw rawHeader
	if err := binary.Read(bytes.NewReader(buf[:headerSize]), binary.LittleEndian, &raw); err != nil {
		return Header{}, fmt.Errorf("asset: decoding header: %w", err)
	}
	if raw.MipChainCount > maxMipChains {
		return Header{}, fmt.Errorf("asset: mip chain count %d exceeds limit %d", raw.MipChainCount, maxMipChains)
	}
	return Header{
		Format:        gpu.Format(raw.Format),
		Width:         raw.Width,
		Height:        raw.Height,
		Depth:         raw.Depth,
		ArraySize:     raw.ArraySize,
		MipCount:      raw.MipCount,
		MipChainCount: raw.MipChainCount,
		chains:        raw.Chains,
	}, nil
}

// EncodeHeader serializes h into its fixed-size wire encoding, for tools
// that write texture assets.
func EncodeHeader(h Header) []byte {
	raw := rawHeader{
		Format:        uint32(h.Format),
		Width:         h.Width,
		Height:        h.Height,
		Depth:         h.Depth,
		ArraySize:     h.ArraySize,
		MipCount:      h.MipCount,
		MipChainCount: h.MipChainCount,
		Chains:        h.chains,
	}
	buf := &bytes.Buffer{}
	buf.Grow(headerSize)
	// binary.Write on a fixed-size struct never fails.
	_ = binary.Write(buf, binary.LittleEndian, raw)
	return buf.Bytes()
}

// Chain returns the i'th mip chain's location within the asset file.
func (h Header) Chain(i int) (offset, length int64, firstMip, mipCount uint32) {
	c := h.chains[i]
	return int64(c.Offset), int64(c.Length), c.FirstMip, c.MipCount
}

// SetChain sets the i'th mip chain's location, for encoding.
func (h *Header) SetChain(i int, offset, length int64, firstMip, mipCount uint32) {
	h.chains[i] = chainEntry{Offset: uint64(offset), Length: uint64(length), FirstMip: firstMip, MipCount: mipCount}
}

// MipChain is one resolved, in-memory mip chain block: the contiguous
// mip levels [FirstMip, FirstMip+MipCount) and their compressed bytes,
// as read from the asset file's block-read.
type MipChain struct {
	FirstMip uint32
	MipCount uint32
	Data     []byte
}

// Texture is a fully loaded texture asset: the header plus every mip
// chain's resolved bytes, ready for GPU upload assembly.
type Texture struct {
	Header Header
	Chains []MipChain
}
