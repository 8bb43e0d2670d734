package asset

import (
	"bytes"
	"testing"

	"github.com/forgecore/engine/gpu"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := Header{
		Format:        gpu.Format(7),
		Width:         256,
		Height:        128,
		Depth:         1,
		ArraySize:     1,
		MipCount:      9,
		MipChainCount: 2,
	}
	h.SetChain(0, headerSize, 512, 0, 4)
	h.SetChain(1, headerSize+512, 256, 4, 5)

	got, err := DecodeHeader(EncodeHeader(h))
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got.Format != h.Format || got.Width != h.Width || got.MipChainCount != h.MipChainCount {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, h)
	}
	off, length, firstMip, mipCount := got.Chain(1)
	if off != headerSize+512 || length != 256 || firstMip != 4 || mipCount != 5 {
		t.Fatalf("chain 1 mismatch: off=%d length=%d firstMip=%d mipCount=%d", off, length, firstMip, mipCount)
	}
}

func TestDecodeHeaderRejectsShortBuffer(t *testing.T) {
	if _, err := DecodeHeader(bytes.Repeat([]byte{0}, 4)); err == nil {
		t.Fatal("expected an error decoding a too-short header")
	}
}
