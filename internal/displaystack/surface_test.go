package displaystack

import "testing"

func TestDirtyRectUnionGrows(t *testing.T) {
	var r DirtyRect
	r.Union(5, 5, 10, 10)
	if !r.Valid || r.X != 5 || r.Y != 5 || r.W != 10 || r.H != 10 {
		t.Fatalf("expected first union to set rect directly, got %+v", r)
	}
	r.Union(0, 0, 3, 3)
	if r.X != 0 || r.Y != 0 || r.W != 15 || r.H != 15 {
		t.Fatalf("expected union to grow to bounding box, got %+v", r)
	}
}

func TestDirtyRectUnionIgnoresZeroArea(t *testing.T) {
	var r DirtyRect
	r.Union(1, 1, 0, 5)
	if r.Valid {
		t.Fatalf("expected zero-width rect to be ignored")
	}
	r.Union(2, 2, 4, 4)
	r.Union(9, 9, 0, 0)
	if r.X != 2 || r.Y != 2 || r.W != 4 || r.H != 4 {
		t.Fatalf("expected zero-area union to leave rect unchanged, got %+v", r)
	}
}

func TestDirtyRectClear(t *testing.T) {
	var r DirtyRect
	r.Union(1, 1, 1, 1)
	r.Clear()
	if r.Valid {
		t.Fatalf("expected Clear to drop validity")
	}
	if r.X != 1 || r.Y != 1 {
		t.Fatalf("expected Clear to preserve stored fields, got %+v", r)
	}
}

func TestClipRect(t *testing.T) {
	cx, cy, cw, ch, ok := clipRect(-2, -2, 10, 10, 6, 6)
	if !ok || cx != 0 || cy != 0 || cw != 6 || ch != 6 {
		t.Fatalf("expected clip to bound origin, got (%d,%d,%d,%d,%v)", cx, cy, cw, ch, ok)
	}
	_, _, _, _, ok = clipRect(10, 10, 5, 5, 6, 6)
	if ok {
		t.Fatalf("expected fully out-of-bounds rect to report false")
	}
}

func TestSurfacePoolCreateAndDestroy(t *testing.T) {
	p := NewSurfacePool()
	id := p.Create(0, 0, 10, 10, 0)
	if id == invalidSurfaceId {
		t.Fatalf("expected valid surface id")
	}
	if p.Get(id) == nil {
		t.Fatalf("expected created surface to be retrievable")
	}
	p.Destroy(id)
	if p.Get(id) != nil {
		t.Fatalf("expected destroyed surface to be unreachable")
	}
}

func TestSurfacePoolExhaustion(t *testing.T) {
	p := NewSurfacePool()
	for i := 0; i < NSurf; i++ {
		if id := p.Create(0, 0, 10, 10, 0); id == invalidSurfaceId {
			t.Fatalf("expected surface %d to be created before exhaustion", i)
		}
	}
	if id := p.Create(0, 0, 10, 10, 0); id != invalidSurfaceId {
		t.Fatalf("expected pool exhaustion to return invalidSurfaceId, got %d", id)
	}
}

func TestSurfacePoolRejectsOversizeBuffer(t *testing.T) {
	p := NewSurfacePool()
	if id := p.Create(0, 0, MaxSurfaceBufferW+1, MaxSurfaceBufferH, 0); id != invalidSurfaceId {
		t.Fatalf("expected oversize create to be rejected")
	}
}

func TestSurfacePoolZOrderTiesBrokenByInsertionSeq(t *testing.T) {
	p := NewSurfacePool()
	a := p.Create(0, 0, 10, 10, 5)
	b := p.Create(0, 0, 10, 10, 5)
	c := p.Create(0, 0, 10, 10, 5)
	order := p.OrderedIDs()
	if len(order) != 3 || order[0] != a || order[1] != b || order[2] != c {
		t.Fatalf("expected z-order ties broken by insertion order, got %v", order)
	}
}

func TestSurfacePoolSetZOrderResorts(t *testing.T) {
	p := NewSurfacePool()
	a := p.Create(0, 0, 10, 10, 0)
	b := p.Create(0, 0, 10, 10, 1)
	p.SetZOrder(a, 5)
	order := p.OrderedIDs()
	if order[0] != b || order[1] != a {
		t.Fatalf("expected raising a's z to move it after b, got %v", order)
	}
}

func TestSurfacePoolSetSizeRejectsOversize(t *testing.T) {
	p := NewSurfacePool()
	id := p.Create(0, 0, 10, 10, 0)
	if p.SetSize(id, MaxSurfaceBufferW+1, MaxSurfaceBufferH) {
		t.Fatalf("expected oversize SetSize to fail")
	}
	s := p.Get(id)
	if s.w != 10 || s.h != 10 {
		t.Fatalf("expected rejected SetSize to leave geometry unchanged, got %dx%d", s.w, s.h)
	}
}
