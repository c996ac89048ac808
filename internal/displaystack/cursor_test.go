package displaystack

import "testing"

func TestCursorSetPositionReportsChange(t *testing.T) {
	c := NewCursor()
	if !c.SetPosition(5, 5) {
		t.Fatalf("expected first SetPosition to report a change")
	}
	if c.SetPosition(5, 5) {
		t.Fatalf("expected no-op SetPosition to report no change")
	}
	if !c.SetPosition(6, 5) {
		t.Fatalf("expected moved SetPosition to report a change")
	}
}

func TestCursorSaveRestoreRoundTrip(t *testing.T) {
	const w, h = 32, 32
	bb := make([]uint32, w*h)
	for i := range bb {
		bb[i] = uint32(0x100 + i)
	}
	original := make([]uint32, len(bb))
	copy(original, bb)

	c := NewCursor()
	c.SetPosition(10, 10)
	c.save(bb, w, h)
	c.draw(bb, w, h)

	changed := false
	for i := range bb {
		if bb[i] != original[i] {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatalf("expected draw to modify the backbuffer")
	}

	c.restore(bb, w, h)
	for i := range bb {
		if bb[i] != original[i] {
			t.Fatalf("expected restore to recover original pixels at index %d: got 0x%X want 0x%X", i, bb[i], original[i])
		}
	}
}

func TestCursorDrawClipsAtEdges(t *testing.T) {
	const w, h = 8, 8
	bb := make([]uint32, w*h)
	c := NewCursor()
	c.SetPosition(0, 0)
	c.save(bb, w, h)
	c.draw(bb, w, h) // must not panic when the 12x16 bitmap runs off-buffer
}

func TestDirtyEnvelopeCoversBackupFootprint(t *testing.T) {
	var r DirtyRect
	dirtyEnvelope(&r, 20, 20)
	if !r.Valid || r.W != cursorBackupW || r.H != cursorBackupH {
		t.Fatalf("expected envelope union to span %dx%d, got %+v", cursorBackupW, cursorBackupH, r)
	}
}
