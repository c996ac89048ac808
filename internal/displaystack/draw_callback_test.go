package displaystack

import "testing"

func TestWindowViewSetPixelClips(t *testing.T) {
	buf := make([]uint32, 4*4)
	v := WindowView{buf: buf, w: 4, h: 4}
	v.SetPixel(1, 1, 0xABCDEF)
	v.SetPixel(-1, 0, 0x111111)
	v.SetPixel(10, 10, 0x222222)
	if buf[1*4+1] != 0xABCDEF {
		t.Fatalf("expected in-bounds SetPixel to write, got 0x%X", buf[1*4+1])
	}
	for _, px := range buf {
		if px == 0x111111 || px == 0x222222 {
			t.Fatalf("expected out-of-bounds SetPixel calls to be silently dropped")
		}
	}
}

func TestWindowViewFillRectClips(t *testing.T) {
	buf := make([]uint32, 6*6)
	v := WindowView{buf: buf, w: 6, h: 6}
	v.FillRect(4, 4, 10, 10, 0xFF00FF) // extends past the view bounds
	if buf[5*6+5] != 0xFF00FF {
		t.Fatalf("expected fill clipped to view bounds to still cover the bottom-right corner")
	}
}

func TestDrawFuncAdapter(t *testing.T) {
	called := false
	var d WindowDrawer = DrawFunc(func(v WindowView) { called = true })
	d.Draw(WindowView{buf: make([]uint32, 1), w: 1, h: 1})
	if !called {
		t.Fatalf("expected DrawFunc to invoke the wrapped closure")
	}
}

func TestLuaDrawCallbackSetPixel(t *testing.T) {
	script := `function draw(w, h) set_pixel(0, 0, 16711680) end`
	cb, err := NewLuaDrawCallback(script, NopLogger{})
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	defer cb.Close()

	buf := make([]uint32, 4*4)
	cb.Draw(WindowView{buf: buf, w: 4, h: 4})
	if buf[0] != 0xFF0000 {
		t.Fatalf("expected lua draw callback to set pixel 0 to 0xFF0000, got 0x%X", buf[0])
	}
}

func TestLuaDrawCallbackFillRect(t *testing.T) {
	script := `function draw(w, h) fill_rect(0, 0, w, h, 255) end`
	cb, err := NewLuaDrawCallback(script, NopLogger{})
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	defer cb.Close()

	buf := make([]uint32, 3*3)
	cb.Draw(WindowView{buf: buf, w: 3, h: 3})
	for _, px := range buf {
		if px != 0x0000FF {
			t.Fatalf("expected fill_rect to cover the whole view, got 0x%X", px)
		}
	}
}

func TestNewLuaDrawCallbackRejectsBrokenScript(t *testing.T) {
	_, err := NewLuaDrawCallback("this is not lua (((", NopLogger{})
	if err == nil {
		t.Fatalf("expected a compile error for an invalid script")
	}
}
