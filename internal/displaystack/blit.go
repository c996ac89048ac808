// blit.go - Scalar pixel primitives for the display stack
//
// This is the only place per-pixel loops are written. Every other module
// composes surfaces by calling into here. Pixels are 32-bit little-endian
// 0x00RRGGBB, addressed by row-stride-in-pixels, matching the framebuffer
// descriptor's pitch/4 convention.

package displaystack

// AcceleratedBlitter is satisfied by a GPU-backed implementation of the bulk
// copy path. When set on a BlitEngine, Blit may route through it instead of
// the scalar loop below; the externally observable pixel result must be
// identical either way.
type AcceleratedBlitter interface {
	IsAvailable() bool
	Blit(dst []uint32, dstStride int, src []uint32, srcStride int, w, h int) bool
}

// BlitEngine is the stateless (besides the optional accelerated backend)
// blit primitive described in spec.md §4.1.
type BlitEngine struct {
	accel AcceleratedBlitter
}

func NewBlitEngine(accel AcceleratedBlitter) *BlitEngine {
	return &BlitEngine{accel: accel}
}

// SetAccelerated installs (or clears, with nil) the accelerated backend.
func (b *BlitEngine) SetAccelerated(accel AcceleratedBlitter) {
	b.accel = accel
}

// HasAccelerated reports whether an accelerated backend is present and
// reports itself available right now.
func (b *BlitEngine) HasAccelerated() bool {
	return b.accel != nil && b.accel.IsAvailable()
}

// Blit copies a w×h region row-by-row from src to dst. Non-overlapping
// semantics: callers must not alias src/dst for the copied region. Returns
// silently on a null source/destination or non-positive dimensions; no
// bounds are inferred — callers clip first.
func (b *BlitEngine) Blit(dst []uint32, dstStride int, src []uint32, srcStride int, w, h int) {
	if dst == nil || src == nil || w <= 0 || h <= 0 {
		return
	}
	if b.accel != nil && b.accel.IsAvailable() {
		if b.accel.Blit(dst, dstStride, src, srcStride, w, h) {
			return
		}
	}
	scalarBlit(dst, dstStride, src, srcStride, w, h)
}

func scalarBlit(dst []uint32, dstStride int, src []uint32, srcStride int, w, h int) {
	for y := 0; y < h; y++ {
		srcRow := src[y*srcStride : y*srcStride+w]
		dstRow := dst[y*dstStride : y*dstStride+w]
		copy(dstRow, srcRow)
	}
}

// FillRect writes color to the w×h rectangle at (x,y) in dst. Returns
// silently on a null buffer or a negative origin.
func FillRect(dst []uint32, stride, x, y, w, h int, color uint32) {
	if dst == nil || x < 0 || y < 0 || w <= 0 || h <= 0 {
		return
	}
	for row := 0; row < h; row++ {
		base := (y+row)*stride + x
		line := dst[base : base+w]
		for i := range line {
			line[i] = color
		}
	}
}

// Clear fills a contiguous w·h region with color. Optimized by writing the
// first row and replicating it, same trick the teacher uses in its
// framebuffer clear path.
func Clear(dst []uint32, w, h int, color uint32) {
	if dst == nil || w <= 0 || h <= 0 {
		return
	}
	row := dst[0:w]
	for i := range row {
		row[i] = color
	}
	for y := 1; y < h; y++ {
		copy(dst[y*w:y*w+w], row)
	}
}

// CopyRect copies a w×h rectangle from src at (srcX,srcY) to dst at
// (dstX,dstY), each with its own stride.
func CopyRect(dst []uint32, dstStride, dstX, dstY int, src []uint32, srcStride, srcX, srcY, w, h int) {
	if dst == nil || src == nil || dstX < 0 || dstY < 0 || srcX < 0 || srcY < 0 || w <= 0 || h <= 0 {
		return
	}
	for row := 0; row < h; row++ {
		srcBase := (srcY+row)*srcStride + srcX
		dstBase := (dstY+row)*dstStride + dstX
		copy(dst[dstBase:dstBase+w], src[srcBase:srcBase+w])
	}
}

// AlphaBlend is reserved: not exercised by the display server's composition
// path but must be bit-exact per channel: out = (src·α + dst·(255−α))/255.
func AlphaBlend(dst []uint32, src []uint32, w, h int, alpha uint8) {
	if dst == nil || src == nil || w <= 0 || h <= 0 {
		return
	}
	a := uint32(alpha)
	inv := 255 - a
	n := w * h
	for i := 0; i < n && i < len(dst) && i < len(src); i++ {
		s := src[i]
		d := dst[i]
		sr, sg, sb := (s>>16)&0xFF, (s>>8)&0xFF, s&0xFF
		dr, dg, db := (d>>16)&0xFF, (d>>8)&0xFF, d&0xFF
		r := (sr*a + dr*inv) / 255
		g := (sg*a + dg*inv) / 255
		bch := (sb*a + db*inv) / 255
		dst[i] = (r << 16) | (g << 8) | bch
	}
}
