// display_server.go - Owns the framebuffer, backbuffer, surfaces, cursor and
// desktop background; composites and flushes exactly one dirty rectangle
// per frame.

package displaystack

import (
	"golang.org/x/sync/errgroup"
)

const (
	desktopColor = 0x0d1117

	// parallelStripRows is the minimum dirty-rect height before wallpaper
	// background painting splits work across goroutines, mirroring the teacher's strip-height
	// threshold in VideoCompositor.blendFrame1to1 (stripHeight=60 there).
	parallelStripRows = 64
)

// FramebufferDescriptor is the external, read-only boot-published
// framebuffer: an address stand-in (the backing slice), its dimensions and
// pitch in bytes. pitch must be a multiple of 4.
type FramebufferDescriptor struct {
	Pixels []uint32
	Width  int
	Height int
	Pitch  int // bytes per scanline
}

func (fb *FramebufferDescriptor) strideInPixels() int {
	return fb.Pitch / 4
}

func (fb *FramebufferDescriptor) valid() bool {
	return fb != nil && fb.Pixels != nil && fb.Width > 0 && fb.Height > 0 && fb.Pitch > 0 && fb.Pitch%4 == 0
}

// DisplayServer is the single owner of all DS-managed state: framebuffer
// descriptor, backbuffer, surface pool, wallpaper, cursor, accumulated
// dirty rectangle, and the blit engine. One value per boot, constructed
// once at init — no process-wide singletons.
type DisplayServer struct {
	fb         FramebufferDescriptor
	backbuffer [MaxBackbuffer]uint32
	surfaces   *SurfacePool
	wallpaper  Wallpaper
	cursor     *Cursor
	dirty      DirtyRect
	blit       *BlitEngine
	logger     Logger

	firstRender   bool
	fullRedraw    bool
	renderedOnce  bool
}

func NewDisplayServer(fb FramebufferDescriptor, blit *BlitEngine, logger Logger) *DisplayServer {
	if logger == nil {
		logger = NopLogger{}
	}
	return &DisplayServer{
		fb:          fb,
		surfaces:    NewSurfacePool(),
		cursor:      NewCursor(),
		blit:        blit,
		logger:      logger,
		firstRender: true,
	}
}

// CreateSurface allocates a free slot, zero-inits its buffer, and returns
// its id, or invalidSurfaceId on exhaustion/oversize.
func (d *DisplayServer) CreateSurface(x, y, w, h, z int) SurfaceId {
	id := d.surfaces.Create(x, y, w, h, z)
	if id == invalidSurfaceId {
		d.logger.Log(LogError, "WM", "create_surface failed: pool exhausted or size exceeds capacity")
	}
	return id
}

// DestroySurface marks the surface's rectangle dirty, then frees the slot.
func (d *DisplayServer) DestroySurface(id SurfaceId) {
	s := d.surfaces.Get(id)
	if s == nil {
		return
	}
	d.dirty.Union(s.x, s.y, s.w, s.h)
	d.surfaces.Destroy(id)
}

// SetSurfacePosition marks both the old and new rectangles dirty, then
// updates the position. A no-op position change dirties nothing — see
// spec.md §8's idempotence law.
func (d *DisplayServer) SetSurfacePosition(id SurfaceId, x, y int) {
	s := d.surfaces.Get(id)
	if s == nil {
		return
	}
	if s.x == x && s.y == y {
		return
	}
	d.dirty.Union(s.x, s.y, s.w, s.h)
	d.surfaces.SetPosition(id, x, y)
	d.dirty.Union(x, y, s.w, s.h)
}

// SetSurfaceSize marks old and new rectangles dirty; refuses (no partial
// state change) if the new size exceeds capacity.
func (d *DisplayServer) SetSurfaceSize(id SurfaceId, w, h int) bool {
	s := d.surfaces.Get(id)
	if s == nil {
		return false
	}
	d.dirty.Union(s.x, s.y, s.w, s.h)
	if !d.surfaces.SetSize(id, w, h) {
		d.dirty.Union(s.x, s.y, s.w, s.h)
		return false
	}
	d.dirty.Union(s.x, s.y, w, h)
	return true
}

// SetSurfaceZOrder updates z and re-sorts; marks the surface's rect dirty.
func (d *DisplayServer) SetSurfaceZOrder(id SurfaceId, z int) {
	s := d.surfaces.Get(id)
	if s == nil {
		return
	}
	d.surfaces.SetZOrder(id, z)
	d.dirty.Union(s.x, s.y, s.w, s.h)
}

// GetSurfaceBuffer returns the owned pixel buffer, valid only while id is
// live.
func (d *DisplayServer) GetSurfaceBuffer(id SurfaceId) []uint32 {
	return d.surfaces.Buffer(id)
}

// HideSurface excludes a surface from composition and dirties its vacated
// rectangle so the region underneath it repaints.
func (d *DisplayServer) HideSurface(id SurfaceId) {
	s := d.surfaces.Get(id)
	if s == nil {
		return
	}
	d.dirty.Union(s.x, s.y, s.w, s.h)
	d.surfaces.Hide(id)
}

// ShowSurface re-admits a hidden surface to composition and dirties its
// rectangle so it repaints.
func (d *DisplayServer) ShowSurface(id SurfaceId) {
	s := d.surfaces.Get(id)
	if s == nil {
		return
	}
	d.surfaces.Show(id)
	d.dirty.Union(s.x, s.y, s.w, s.h)
}

func (d *DisplayServer) Surface(id SurfaceId) *Surface {
	return d.surfaces.Get(id)
}

// MarkDirty unions a rectangle into the accumulated dirty region.
func (d *DisplayServer) MarkDirty(x, y, w, h int) {
	d.dirty.Union(x, y, w, h)
}

// RequestFullRedraw forces the next render to repaint the whole screen.
func (d *DisplayServer) RequestFullRedraw() {
	d.fullRedraw = true
}

// UpdateCursorPosition marks the old and new cursor envelopes dirty if the
// position actually changed; the draw itself happens in Render.
func (d *DisplayServer) UpdateCursorPosition(x, y int) {
	oldX, oldY, hadOld := d.cursor.x, d.cursor.y, d.cursor.hasLast
	if !d.cursor.SetPosition(x, y) {
		return
	}
	if hadOld {
		dirtyEnvelope(&d.dirty, oldX, oldY)
	}
	dirtyEnvelope(&d.dirty, x, y)
}

// LoadWallpaper decodes data and installs it; decode failure leaves the
// solid desktop color in effect.
func (d *DisplayServer) LoadWallpaper(data []byte, dec WallpaperDecoder) error {
	return d.wallpaper.Load(data, dec)
}

// Render executes the composition algorithm described in spec.md §4.2.
func (d *DisplayServer) Render() {
	if !d.fb.valid() {
		return
	}
	stride := d.fb.strideInPixels()

	if d.firstRender || d.fullRedraw {
		d.dirty.X, d.dirty.Y, d.dirty.W, d.dirty.H = 0, 0, d.fb.Width, d.fb.Height
		d.dirty.Valid = true
		Clear(d.backbuffer[:d.fb.Width*d.fb.Height], d.fb.Width, d.fb.Height, desktopColor)
		d.firstRender = false
		d.fullRedraw = false
	}

	if d.dirty.Valid && d.dirty.W > 0 && d.dirty.H > 0 {
		d.paintBackground(d.dirty.X, d.dirty.Y, d.dirty.W, d.dirty.H)
		d.paintSurfaces(d.dirty.X, d.dirty.Y, d.dirty.W, d.dirty.H)
	}

	if d.cursor.hasLast && (d.cursor.lastX != d.cursor.x || d.cursor.lastY != d.cursor.y) {
		d.cursor.restore(d.backbuffer[:], d.fb.Width, d.fb.Height)
	}
	d.cursor.save(d.backbuffer[:], d.fb.Width, d.fb.Height)
	d.cursor.draw(d.backbuffer[:], d.fb.Width, d.fb.Height)
	dirtyEnvelope(&d.dirty, d.cursor.x, d.cursor.y)

	if d.dirty.Valid && d.dirty.W > 0 && d.dirty.H > 0 {
		cx, cy, cw, ch, ok := clipRect(d.dirty.X, d.dirty.Y, d.dirty.W, d.dirty.H, d.fb.Width, d.fb.Height)
		if ok {
			d.flush(cx, cy, cw, ch, stride)
		}
	}

	d.dirty.Clear()
}

// paintBackground paints rectangle (x,y,w,h) of the backbuffer with
// wallpaper (nearest-neighbour scaled) or the solid desktop color,
// splitting rows across goroutines via errgroup when the region is large
// enough to be worth it.
func (d *DisplayServer) paintBackground(x, y, w, h int) {
	bbW := d.fb.Width
	if !d.wallpaper.HasWallpaper {
		FillRect(d.backbuffer[:], bbW, x, y, w, h, desktopColor)
		return
	}
	screenW, screenH := d.fb.Width, d.fb.Height
	paintRows := func(y0, y1 int) {
		for row := y0; row < y1; row++ {
			for col := x; col < x+w; col++ {
				d.backbuffer[row*bbW+col] = d.wallpaper.sampleNearest(col, row, screenW, screenH)
			}
		}
	}
	if h < parallelStripRows {
		paintRows(y, y+h)
		return
	}
	var g errgroup.Group
	numStrips := (h + parallelStripRows - 1) / parallelStripRows
	for i := 0; i < numStrips; i++ {
		y0 := y + i*parallelStripRows
		y1 := min(y0+parallelStripRows, y+h)
		g.Go(func() error {
			paintRows(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}

// paintSurfaces copies the intersection of (x,y,w,h) with every surface
// that overlaps it, in ascending z-order, clipped to framebuffer bounds.
func (d *DisplayServer) paintSurfaces(x, y, w, h int) {
	bbW := d.fb.Width
	for _, id := range d.surfaces.OrderedIDs() {
		s := d.surfaces.Get(id)
		if s == nil || s.hidden {
			continue
		}
		ix0, iy0 := max(x, s.x), max(y, s.y)
		ix1, iy1 := min(x+w, s.x+s.w), min(y+h, s.y+s.h)
		if ix1 <= ix0 || iy1 <= iy0 {
			continue
		}
		cx, cy, cw, ch, ok := clipRect(ix0, iy0, ix1-ix0, iy1-iy0, d.fb.Width, d.fb.Height)
		if !ok {
			continue
		}
		srcOffX, srcOffY := cx-s.x, cy-s.y
		srcBase := srcOffY*s.w + srcOffX
		for row := 0; row < ch; row++ {
			dstBase := (cy+row)*bbW + cx
			srcRowBase := srcBase + row*s.w
			copy(d.backbuffer[dstBase:dstBase+cw], s.buf[srcRowBase:srcRowBase+cw])
		}
	}
}

// flush copies the clipped dirty rectangle from backbuffer to framebuffer,
// preferring the accelerated blit path when available.
func (d *DisplayServer) flush(x, y, w, h, stride int) {
	bbW := d.fb.Width
	bbOffset := y*bbW + x
	fbOffset := y*stride + x
	d.blit.Blit(d.fb.Pixels[fbOffset:], stride, d.backbuffer[bbOffset:], bbW, w, h)
}
