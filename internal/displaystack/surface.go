// surface.go - Surface pool and dirty-rectangle tracking for the display server

package displaystack

const (
	NSurf             = 32
	MaxSurfaceBufferW = 800
	MaxSurfaceBufferH = 600
	MaxSurfaceBuffer  = MaxSurfaceBufferW * MaxSurfaceBufferH
	MaxBackbufferW    = 3840
	MaxBackbufferH    = 2160
	MaxBackbuffer     = MaxBackbufferW * MaxBackbufferH
)

// SurfaceId is a stable handle into the surface pool; numerically equal to
// the slot index it names.
type SurfaceId int

const invalidSurfaceId SurfaceId = -1

// DirtyRect is the accumulated damage region plus a validity bit. A single
// instance is held by the display server per frame.
type DirtyRect struct {
	X, Y, W, H int
	Valid      bool
}

// Union grows r to the smallest axis-aligned rectangle containing both r and
// the given rectangle. A zero-area input rectangle is ignored.
func (r *DirtyRect) Union(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	if !r.Valid {
		r.X, r.Y, r.W, r.H = x, y, w, h
		r.Valid = true
		return
	}
	x0 := min(r.X, x)
	y0 := min(r.Y, y)
	x1 := max(r.X+r.W, x+w)
	y1 := max(r.Y+r.H, y+h)
	r.X, r.Y, r.W, r.H = x0, y0, x1-x0, y1-y0
}

// Clear drops validity without touching the stored rectangle fields.
func (r *DirtyRect) Clear() {
	r.Valid = false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// clipRect clips rectangle (x,y,w,h) against bounds (0,0,boundW,boundH),
// returning the clipped rectangle and false if nothing remains.
func clipRect(x, y, w, h, boundW, boundH int) (cx, cy, cw, ch int, ok bool) {
	if w <= 0 || h <= 0 || boundW <= 0 || boundH <= 0 {
		return 0, 0, 0, 0, false
	}
	x1, y1 := x+w, y+h
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x1 > boundW {
		x1 = boundW
	}
	if y1 > boundH {
		y1 = boundH
	}
	if x1 <= x || y1 <= y {
		return 0, 0, 0, 0, false
	}
	return x, y, x1 - x, y1 - y, true
}

// Surface is a positioned rectangular pixel buffer owned by the display
// server, the atom of composition. Buffers are never reallocated: each slot
// owns a fixed MAX_SURFACE_BUFFER-cell arena and surfaces only re-bound a
// w·h window within it.
type Surface struct {
	id       SurfaceId
	live     bool
	hidden   bool // excluded from composition while true (minimized windows)
	x, y     int
	w, h     int
	z        int
	seq      int // insertion order, used to break z ties deterministically
	buf      []uint32
}

// SurfacePool is the fixed-capacity arena of surfaces plus their pixel
// backing store, matching the no-heap-after-init discipline: every byte it
// ever uses is allocated once, in NewSurfacePool.
type SurfacePool struct {
	slots    [NSurf]Surface
	occupied [NSurf]bool
	order    []SurfaceId // ascending by z, ties by insertion order (seq)
	nextSeq  int
}

func NewSurfacePool() *SurfacePool {
	p := &SurfacePool{order: make([]SurfaceId, 0, NSurf)}
	for i := range p.slots {
		p.slots[i].id = SurfaceId(i)
		p.slots[i].buf = make([]uint32, MaxSurfaceBuffer)
	}
	return p
}

// Create allocates a free slot, zero-inits its buffer, and inserts it into
// the z-ordered sequence. Returns invalidSurfaceId on exhaustion or when
// w·h exceeds MaxSurfaceBuffer.
func (p *SurfacePool) Create(x, y, w, h, z int) SurfaceId {
	if w <= 0 || h <= 0 || w*h > MaxSurfaceBuffer {
		return invalidSurfaceId
	}
	for i := range p.slots {
		if p.occupied[i] {
			continue
		}
		s := &p.slots[i]
		s.live = true
		s.hidden = false
		s.x, s.y, s.w, s.h, s.z = x, y, w, h, z
		s.seq = p.nextSeq
		p.nextSeq++
		for j := range s.buf {
			s.buf[j] = 0
		}
		p.occupied[i] = true
		p.insertOrdered(s.id)
		return s.id
	}
	return invalidSurfaceId
}

func (p *SurfacePool) insertOrdered(id SurfaceId) {
	s := &p.slots[id]
	idx := 0
	for idx < len(p.order) {
		o := &p.slots[p.order[idx]]
		if o.z > s.z || (o.z == s.z && o.seq > s.seq) {
			break
		}
		idx++
	}
	p.order = append(p.order, invalidSurfaceId)
	copy(p.order[idx+1:], p.order[idx:])
	p.order[idx] = id
}

func (p *SurfacePool) removeOrdered(id SurfaceId) {
	for i, o := range p.order {
		if o == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			return
		}
	}
}

// Destroy frees the slot. Caller is responsible for dirtying the surface's
// rectangle before calling this.
func (p *SurfacePool) Destroy(id SurfaceId) {
	if !p.valid(id) {
		return
	}
	p.removeOrdered(id)
	p.occupied[id] = false
	p.slots[id].live = false
}

func (p *SurfacePool) valid(id SurfaceId) bool {
	return id >= 0 && int(id) < NSurf && p.occupied[id]
}

// Get returns the live surface for id, or nil.
func (p *SurfacePool) Get(id SurfaceId) *Surface {
	if !p.valid(id) {
		return nil
	}
	return &p.slots[id]
}

// SetPosition updates a surface's origin.
func (p *SurfacePool) SetPosition(id SurfaceId, x, y int) {
	s := p.Get(id)
	if s == nil {
		return
	}
	s.x, s.y = x, y
}

// SetSize updates a surface's dimensions in place; refuses (no change) if
// the new size exceeds the fixed per-slot buffer capacity.
func (p *SurfacePool) SetSize(id SurfaceId, w, h int) bool {
	s := p.Get(id)
	if s == nil || w <= 0 || h <= 0 || w*h > MaxSurfaceBuffer {
		return false
	}
	s.w, s.h = w, h
	return true
}

// SetZOrder updates a surface's z value and re-sorts the composition
// sequence, preserving relative order for ties via seq.
func (p *SurfacePool) SetZOrder(id SurfaceId, z int) {
	s := p.Get(id)
	if s == nil {
		return
	}
	s.z = z
	p.removeOrdered(id)
	p.insertOrdered(id)
}

// Hide excludes a surface from composition (OrderedIDs still lists it, but
// paintSurfaces skips it) without destroying its slot or buffer contents.
func (p *SurfacePool) Hide(id SurfaceId) {
	s := p.Get(id)
	if s == nil {
		return
	}
	s.hidden = true
}

// Show re-admits a hidden surface to composition.
func (p *SurfacePool) Show(id SurfaceId) {
	s := p.Get(id)
	if s == nil {
		return
	}
	s.hidden = false
}

// Hidden reports whether id is currently excluded from composition.
func (p *SurfacePool) Hidden(id SurfaceId) bool {
	s := p.Get(id)
	return s == nil || s.hidden
}

// Buffer returns the owned pixel buffer, valid only while the surface is
// live.
func (p *SurfacePool) Buffer(id SurfaceId) []uint32 {
	s := p.Get(id)
	if s == nil {
		return nil
	}
	return s.buf
}

// OrderedIDs returns surfaces in ascending-z composition order.
func (p *SurfacePool) OrderedIDs() []SurfaceId {
	return p.order
}
