package displaystack

import (
	"errors"
	"testing"
)

type fakeGpuBackend struct {
	initErr   error
	blitOK    bool
	blitCalls int
	closed    bool
}

func (f *fakeGpuBackend) Init() error { return f.initErr }
func (f *fakeGpuBackend) BlitRect(dst []uint32, dstStride int, src []uint32, srcStride int, w, h int) bool {
	f.blitCalls++
	return f.blitOK
}
func (f *fakeGpuBackend) Close() { f.closed = true }

func TestGpuShimUnavailableWithNilBackend(t *testing.T) {
	s := NewGpuShim(nil, NopLogger{})
	if s.IsAvailable() {
		t.Fatalf("expected nil backend to report unavailable")
	}
	if s.Blit(nil, 0, nil, 0, 0, 0) {
		t.Fatalf("expected Blit to report false when unavailable")
	}
}

func TestGpuShimSwallowsInitFailure(t *testing.T) {
	backend := &fakeGpuBackend{initErr: errors.New("no device")}
	s := NewGpuShim(backend, NopLogger{})
	if s.IsAvailable() {
		t.Fatalf("expected init failure to leave shim unavailable")
	}
}

func TestGpuShimAvailableAfterSuccessfulInit(t *testing.T) {
	backend := &fakeGpuBackend{blitOK: true}
	s := NewGpuShim(backend, NopLogger{})
	if !s.IsAvailable() {
		t.Fatalf("expected successful init to report available")
	}
	if !s.Blit(make([]uint32, 4), 2, make([]uint32, 4), 2, 2, 2) {
		t.Fatalf("expected Blit to succeed through the available backend")
	}
	if backend.blitCalls != 1 {
		t.Fatalf("expected backend BlitRect to be called once, got %d", backend.blitCalls)
	}
}

func TestGpuShimBlitDeclineSignalsFallback(t *testing.T) {
	backend := &fakeGpuBackend{blitOK: false}
	s := NewGpuShim(backend, NopLogger{})
	if s.Blit(nil, 0, nil, 0, 1, 1) {
		t.Fatalf("expected declining backend to return false")
	}
}

func TestGpuShimCloseDelegatesToBackend(t *testing.T) {
	backend := &fakeGpuBackend{}
	s := NewGpuShim(backend, NopLogger{})
	s.Close()
	if !backend.closed {
		t.Fatalf("expected Close to delegate to backend")
	}
}

func TestGpuCommandRingFIFO(t *testing.T) {
	var r gpuCommandRing
	for i := 0; i < 3; i++ {
		if !r.Submit(GpuCommand{Type: GpuCmdBlit, Data: [16]uint32{uint32(i)}}) {
			t.Fatalf("expected submit %d to succeed", i)
		}
	}
	if got := r.Pending(); got != 3 {
		t.Fatalf("expected 3 pending commands, got %d", got)
	}
	for i := 0; i < 3; i++ {
		cmd, ok := r.Pop()
		if !ok {
			t.Fatalf("expected pop %d to succeed", i)
		}
		if cmd.Data[0] != uint32(i) {
			t.Fatalf("expected FIFO order, got %d want %d", cmd.Data[0], i)
		}
	}
	if _, ok := r.Pop(); ok {
		t.Fatalf("expected pop on empty ring to fail")
	}
}

func TestGpuCommandRingRejectsWhenFull(t *testing.T) {
	var r gpuCommandRing
	for i := 0; i < gpuRingSlots; i++ {
		if !r.Submit(GpuCommand{}) {
			t.Fatalf("expected submit %d to succeed while ring has room", i)
		}
	}
	if r.Submit(GpuCommand{}) {
		t.Fatalf("expected submit on full ring to fail")
	}
}

func TestGpuCommandRingSubmitAfterPopFreesSlot(t *testing.T) {
	var r gpuCommandRing
	for i := 0; i < gpuRingSlots; i++ {
		r.Submit(GpuCommand{})
	}
	r.Pop()
	if !r.Submit(GpuCommand{}) {
		t.Fatalf("expected submit to succeed after a pop frees a slot")
	}
}
