package asset

import (
	"errors"
	"testing"
	"time"

	"github.com/forgecore/engine/gpu"
	"github.com/forgecore/engine/job"
	"github.com/forgecore/engine/streamio"
)

type memFile struct{ data []byte }

func (m *memFile) Length() (int64, error) { return int64(len(m.data)), nil }

func (m *memFile) ReadAt(buf []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, errors.New("asset: read past end of file")
	}
	n := copy(buf, m.data[off:])
	return n, nil
}

func (m *memFile) Close() error { return nil }

type memFS struct{ files map[string][]byte }

func (fs *memFS) Open(path string) (streamio.File, error) {
	data, ok := fs.files[path]
	if !ok {
		return nil, errors.New("asset: no such file " + path)
	}
	return &memFile{data: data}, nil
}

func buildTestAsset() []byte {
	chain0 := []byte{1, 2, 3, 4}
	chain1 := []byte{5, 6, 7, 8, 9, 10}

	h := Header{
		Format:        gpu.Format(1),
		Width:         64,
		Height:        64,
		Depth:         1,
		ArraySize:     1,
		MipCount:      2,
		MipChainCount: 2,
	}
	h.SetChain(0, headerSize, int64(len(chain0)), 0, 1)
	h.SetChain(1, headerSize+int64(len(chain0)), int64(len(chain1)), 1, 1)

	buf := EncodeHeader(h)
	buf = append(buf, chain0...)
	buf = append(buf, chain1...)
	return buf
}

func TestLoaderLoadsHeaderAndAllMipChains(t *testing.T) {
	fs := &memFS{files: map[string][]byte{"textures/rock.tex": buildTestAsset()}}
	reader := streamio.NewReader(fs, nil, nil)
	reader.Start()
	defer reader.Stop()

	loader := NewLoader(reader, nil)

	result := make(chan struct {
		tex Texture
		err error
	}, 1)
	loader.Load("textures/rock.tex", job.PriorityNormal, func(tex Texture, err error) {
		result <- struct {
			tex Texture
			err error
		}{tex, err}
	})

	select {
	case r := <-result:
		if r.err != nil {
			t.Fatalf("Load: %v", r.err)
		}
		if len(r.tex.Chains) != 2 {
			t.Fatalf("got %d chains, want 2", len(r.tex.Chains))
		}
		if string(r.tex.Chains[0].Data) != "\x01\x02\x03\x04" {
			t.Fatalf("chain 0 data = %v", r.tex.Chains[0].Data)
		}
		if r.tex.Chains[1].FirstMip != 1 {
			t.Fatalf("chain 1 FirstMip = %d, want 1", r.tex.Chains[1].FirstMip)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for texture load")
	}
}

func TestLoaderReportsMissingFile(t *testing.T) {
	fs := &memFS{files: map[string][]byte{}}
	reader := streamio.NewReader(fs, nil, nil)
	reader.Start()
	defer reader.Stop()

	loader := NewLoader(reader, nil)

	errs := make(chan error, 1)
	loader.Load("nope.tex", job.PriorityNormal, func(_ Texture, err error) { errs <- err })

	select {
	case err := <-errs:
		if err == nil {
			t.Fatal("expected an error for a missing file")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}
