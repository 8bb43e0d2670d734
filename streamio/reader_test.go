package streamio

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/forgecore/engine/job"
)

type memFile struct{ data []byte }

func (m *memFile) Length() (int64, error) { return int64(len(m.data)), nil }

func (m *memFile) ReadAt(buf []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, errors.New("streamio: read past end of file")
	}
	n := copy(buf, m.data[off:])
	return n, nil
}

func (m *memFile) Close() error { return nil }

type memFS struct{ files map[string][]byte }

func (fs *memFS) Open(path string) (File, error) {
	data, ok := fs.files[path]
	if !ok {
		return nil, errors.New("streamio: no such file " + path)
	}
	return &memFile{data: data}, nil
}

func recvResult(t *testing.T, ch chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
		return Result{}
	}
}

func TestReaderDeliversRequestedRange(t *testing.T) {
	fs := &memFS{files: map[string][]byte{"a/b.bin": []byte("hello world")}}
	r := NewReader(fs, nil, nil)
	r.Start()
	defer r.Stop()

	results := make(chan Result, 1)
	r.Submit(&Request{
		Path:     "a/b.bin",
		Offset:   6,
		Length:   5,
		Callback: func(res Result) { results <- res },
	})

	res := recvResult(t, results)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !bytes.Equal(res.Data, []byte("world")) {
		t.Fatalf("got %q, want %q", res.Data, "world")
	}
}

func TestReaderHonorsCancellationBeforeIssuingRead(t *testing.T) {
	fs := &memFS{files: map[string][]byte{"x": []byte("data")}}
	r := NewReader(fs, nil, nil)
	r.Start()
	defer r.Stop()

	ctrl := &Controller{}
	ctrl.Cancel()

	results := make(chan Result, 1)
	r.Submit(&Request{
		Path:       "x",
		Controller: ctrl,
		Callback:   func(res Result) { results <- res },
	})

	res := recvResult(t, results)
	if !res.Canceled {
		t.Fatal("expected a canceled result")
	}
}

func TestReaderReportsOpenErrors(t *testing.T) {
	fs := &memFS{files: map[string][]byte{}}
	r := NewReader(fs, nil, nil)
	r.Start()
	defer r.Stop()

	results := make(chan Result, 1)
	r.Submit(&Request{
		Path:     "missing",
		Callback: func(res Result) { results <- res },
	})

	res := recvResult(t, results)
	if res.Err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

type upperDecompressor struct{}

func (upperDecompressor) Decompress(block []byte) ([]byte, error) {
	out := make([]byte, len(block))
	for i, b := range block {
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		out[i] = b
	}
	return out, nil
}

func TestReaderRunsDecompressionOnJobSystem(t *testing.T) {
	fs := &memFS{files: map[string][]byte{"c": []byte("hello")}}

	sys := job.New(job.DefaultConfig())
	sys.Start()
	defer sys.Stop()

	r := NewReader(fs, sys, nil)
	r.Start()
	defer r.Stop()

	results := make(chan Result, 1)
	r.Submit(&Request{
		Path:         "c",
		Decompressor: upperDecompressor{},
		Callback:     func(res Result) { results <- res },
	})

	res := recvResult(t, results)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if string(res.Data) != "HELLO" {
		t.Fatalf("got %q, want %q", res.Data, "HELLO")
	}
}

func TestReaderServesHighestPriorityFirst(t *testing.T) {
	fs := &memFS{files: map[string][]byte{"p": []byte("x")}}
	r := NewReader(fs, nil, nil)
	// Don't Start yet: enqueue both before the goroutine can drain either,
	// so ordering is deterministic.

	var order []string
	notify := make(chan struct{}, 2)
	cb := func(name string) func(Result) {
		return func(Result) {
			order = append(order, name)
			notify <- struct{}{}
		}
	}

	r.Submit(&Request{Path: "p", Priority: job.PriorityLow, Callback: cb("low")})
	r.Submit(&Request{Path: "p", Priority: job.PriorityHigh, Callback: cb("high")})
	r.Start()
	defer r.Stop()

	<-notify
	<-notify
	if len(order) != 2 || order[0] != "high" || order[1] != "low" {
		t.Fatalf("order = %v, want [high low]", order)
	}
}
