package displaystack

import "testing"

func newTestDisplayServer(t *testing.T, w, h int) *DisplayServer {
	t.Helper()
	fb := FramebufferDescriptor{
		Pixels: make([]uint32, w*h),
		Width:  w,
		Height: h,
		Pitch:  w * 4,
	}
	return NewDisplayServer(fb, NewBlitEngine(nil), NopLogger{})
}

func TestDisplayServerFirstRenderPaintsDesktopColor(t *testing.T) {
	ds := newTestDisplayServer(t, 16, 16)
	// Render always overlays the cursor (at (0,0) until moved); park it
	// off-screen so only composed pixels are checked.
	ds.UpdateCursorPosition(100, 100)
	ds.Render()
	for _, px := range ds.fb.Pixels {
		if px != desktopColor {
			t.Fatalf("expected first render to fill desktop color, got 0x%X", px)
		}
	}
}

func TestDisplayServerSurfaceComposition(t *testing.T) {
	ds := newTestDisplayServer(t, 20, 20)
	id := ds.CreateSurface(2, 2, 4, 4, 0)
	if id == invalidSurfaceId {
		t.Fatalf("expected valid surface id")
	}
	buf := ds.GetSurfaceBuffer(id)
	Clear(buf, 4, 4, 0xFF00FF)
	ds.MarkDirty(2, 2, 4, 4)
	ds.UpdateCursorPosition(100, 100) // keep the cursor overlay off the checked pixels
	ds.Render()

	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			if got := ds.fb.Pixels[y*20+x]; got != 0xFF00FF {
				t.Fatalf("expected surface pixel at %d,%d, got 0x%X", x, y, got)
			}
		}
	}
}

func TestDisplayServerZOrderTopSurfaceWinsOverlap(t *testing.T) {
	ds := newTestDisplayServer(t, 20, 20)
	bottom := ds.CreateSurface(0, 0, 10, 10, 0)
	top := ds.CreateSurface(0, 0, 10, 10, 1)
	Clear(ds.GetSurfaceBuffer(bottom), 10, 10, 0x111111)
	Clear(ds.GetSurfaceBuffer(top), 10, 10, 0x222222)
	ds.MarkDirty(0, 0, 10, 10)
	ds.UpdateCursorPosition(100, 100) // keep the cursor overlay off the checked pixels
	ds.Render()

	if got := ds.fb.Pixels[5*20+5]; got != 0x222222 {
		t.Fatalf("expected top surface color to win overlap, got 0x%X", got)
	}
}

func TestDisplayServerSetSurfacePositionNoOpDoesNotDuplicateDirty(t *testing.T) {
	ds := newTestDisplayServer(t, 20, 20)
	id := ds.CreateSurface(5, 5, 4, 4, 0)
	ds.dirty.Clear()
	ds.SetSurfacePosition(id, 5, 5)
	if ds.dirty.Valid {
		t.Fatalf("expected no-op position change not to mark anything dirty beyond creation defaults")
	}
}

func TestDisplayServerSetSurfacePositionDirtiesOldAndNewRect(t *testing.T) {
	ds := newTestDisplayServer(t, 20, 20)
	id := ds.CreateSurface(0, 0, 4, 4, 0)
	ds.dirty.Clear()
	ds.SetSurfacePosition(id, 10, 10)
	if !ds.dirty.Valid {
		t.Fatalf("expected move to dirty a region")
	}
	// bounding box of (0,0,4,4) and (10,10,4,4) is (0,0,14,14)
	if ds.dirty.X != 0 || ds.dirty.Y != 0 || ds.dirty.W != 14 || ds.dirty.H != 14 {
		t.Fatalf("expected union of old+new rects, got %+v", ds.dirty)
	}
}

func TestDisplayServerSetSurfaceSizeRejectsOversizeWithoutPartialState(t *testing.T) {
	ds := newTestDisplayServer(t, 20, 20)
	id := ds.CreateSurface(0, 0, 10, 10, 0)
	ok := ds.SetSurfaceSize(id, MaxSurfaceBufferW+1, MaxSurfaceBufferH)
	if ok {
		t.Fatalf("expected oversize resize to be rejected")
	}
	s := ds.Surface(id)
	if s.w != 10 || s.h != 10 {
		t.Fatalf("expected geometry unchanged after rejected resize, got %dx%d", s.w, s.h)
	}
}

func TestDisplayServerDestroySurfaceDirtiesVacatedRegion(t *testing.T) {
	ds := newTestDisplayServer(t, 20, 20)
	id := ds.CreateSurface(1, 1, 4, 4, 0)
	Clear(ds.GetSurfaceBuffer(id), 4, 4, 0xABCDEF)
	ds.MarkDirty(1, 1, 4, 4)
	ds.Render()

	ds.DestroySurface(id)
	ds.Render()

	for y := 1; y < 5; y++ {
		for x := 1; x < 5; x++ {
			if got := ds.fb.Pixels[y*20+x]; got == 0xABCDEF {
				t.Fatalf("expected destroyed surface pixels to be repainted, still got 0x%X at %d,%d", got, x, y)
			}
		}
	}
}

func TestDisplayServerRenderNoopWithInvalidFramebuffer(t *testing.T) {
	ds := NewDisplayServer(FramebufferDescriptor{}, NewBlitEngine(nil), NopLogger{})
	ds.Render() // must not panic on a zero-value framebuffer
}

func TestDisplayServerCursorOverlayDrawnOnTop(t *testing.T) {
	ds := newTestDisplayServer(t, 40, 40)
	ds.Render()
	ds.UpdateCursorPosition(20, 20)
	ds.Render()
	if got := ds.fb.Pixels[20*40+20]; got != cursorFillColor {
		t.Fatalf("expected cursor fill color at its hotspot, got 0x%X", got)
	}
}

func TestDisplayServerCursorRestoreUndoesPreviousOverlay(t *testing.T) {
	ds := newTestDisplayServer(t, 40, 40)
	ds.Render()
	ds.UpdateCursorPosition(5, 5)
	ds.Render()
	ds.UpdateCursorPosition(30, 30)
	ds.Render()
	if got := ds.fb.Pixels[5*40+5]; got != desktopColor {
		t.Fatalf("expected old cursor position restored to desktop color, got 0x%X", got)
	}
}
