// gpu_shim.go - GPU acceleration shim: command ring + accelerated blit routing

package displaystack

import "sync/atomic"

const gpuRingSlots = 64

// GpuCommandType enumerates the reserved command ring's payload kinds. None
// of these are currently drained by render(); the ring exists for future
// engine offload, per spec.md §4.4.
type GpuCommandType int

const (
	GpuCmdBlit GpuCommandType = iota
	GpuCmdFillRect
	GpuCmdClear
)

// GpuCommand is one reserved-ring slot's payload.
type GpuCommand struct {
	Type GpuCommandType
	Data [16]uint32
}

// gpuCommandRing is a fixed 64-slot single-producer/single-consumer ring.
// head is written only by the producer, tail only by the consumer; both are
// atomics so either side can peek at the other's progress without a lock.
// Mirrors the head/tail command queue in the GPU shim's original source and
// the triple-buffer swap protocol the teacher uses for frame handoff.
type gpuCommandRing struct {
	slots [gpuRingSlots]GpuCommand
	head  atomic.Uint64 // next slot index to write
	tail  atomic.Uint64 // next slot index to read
}

// Submit appends a command if the ring is not full. Single-producer only.
func (r *gpuCommandRing) Submit(cmd GpuCommand) bool {
	head := r.head.Load()
	tail := r.tail.Load()
	if head-tail >= gpuRingSlots {
		return false
	}
	r.slots[head%gpuRingSlots] = cmd
	r.head.Store(head + 1)
	return true
}

// Pending reports how many commands are queued and not yet consumed. DS's
// render() never calls Pop: this is reserved capacity, observable only for
// diagnostics.
func (r *gpuCommandRing) Pending() int {
	return int(r.head.Load() - r.tail.Load())
}

// Pop removes and returns the oldest command. Single-consumer only. Not
// exercised by any current render path.
func (r *gpuCommandRing) Pop() (GpuCommand, bool) {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail >= head {
		return GpuCommand{}, false
	}
	cmd := r.slots[tail%gpuRingSlots]
	r.tail.Store(tail + 1)
	return cmd, true
}

// GpuBackend is the narrow interface an accelerated blit implementation
// must satisfy, mirroring video_voodoo.go's VoodooBackend pattern: init can
// fail, and failure must degrade to unavailable rather than propagate.
type GpuBackend interface {
	Init() error
	BlitRect(dst []uint32, dstStride int, src []uint32, srcStride int, w, h int) bool
	Close()
}

// GpuShim wires an optional accelerated GpuBackend behind the
// AcceleratedBlitter contract blit.go consumes, plus the reserved command
// ring. available is only ever set once, at Init, and never flaps mid-run.
type GpuShim struct {
	backend   GpuBackend
	available bool
	ring      gpuCommandRing
}

// NewGpuShim attempts to initialize backend (nil means "software only").
// Initialization failure is swallowed: IsAvailable simply reports false,
// exactly as spec.md §4.4 requires — this is not an error condition callers
// need to check.
func NewGpuShim(backend GpuBackend, logger Logger) *GpuShim {
	s := &GpuShim{backend: backend}
	if backend == nil {
		return s
	}
	if err := backend.Init(); err != nil {
		if logger != nil {
			logger.Log(LogInfo, "WM", "gpu backend unavailable: "+err.Error())
		}
		s.backend = nil
		return s
	}
	s.available = true
	return s
}

func (s *GpuShim) IsAvailable() bool {
	return s != nil && s.available && s.backend != nil
}

// Blit satisfies AcceleratedBlitter: attempts the accelerated path, returns
// false (meaning "scalar fallback required") if unavailable or if the
// backend itself declines.
func (s *GpuShim) Blit(dst []uint32, dstStride int, src []uint32, srcStride int, w, h int) bool {
	if !s.IsAvailable() {
		return false
	}
	return s.backend.BlitRect(dst, dstStride, src, srcStride, w, h)
}

// SubmitCommand enqueues a reserved-ring command. Never called by the
// current render path; exposed for future offload and for tests exercising
// the ring's SPSC contract.
func (s *GpuShim) SubmitCommand(cmd GpuCommand) bool {
	return s.ring.Submit(cmd)
}

func (s *GpuShim) PendingCommands() int {
	return s.ring.Pending()
}

func (s *GpuShim) Close() {
	if s.backend != nil {
		s.backend.Close()
	}
}
