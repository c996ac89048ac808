// cursor.go - Software mouse cursor with save/restore overlay

package displaystack

const (
	cursorW       = 12
	cursorH       = 16
	cursorBackupW = 14
	cursorBackupH = 18

	cursorFillColor    = 0xffffff
	cursorOutlineColor = 0x000000
)

// cursorBitmap is a compile-time 12-wide, 16-tall bitmap: bit i (MSB-first
// within the low 12 bits of each row) set means the pixel at (i,row) is lit.
// A simple arrow shape, matching the footprint described for the hobby-OS
// cursor (12x16, no transparency channel — presence is purely bit-tested).
var cursorBitmap = [cursorH]uint16{
	0b100000000000,
	0b110000000000,
	0b111000000000,
	0b111100000000,
	0b111110000000,
	0b111111000000,
	0b111111100000,
	0b111111110000,
	0b111111111000,
	0b111110000000,
	0b110110000000,
	0b100011000000,
	0b000011000000,
	0b000001100000,
	0b000001100000,
	0b000000000000,
}

// Cursor is the DS's software pointer overlay. lastX/lastY are "none"
// (hasLast false) until the first render; backupValid tracks whether backup currently
// holds pixels belonging to (lastX,lastY).
type Cursor struct {
	x, y         int
	lastX, lastY int
	hasLast      bool
	backup       [cursorBackupW * cursorBackupH]uint32
	backupValid  bool
}

func NewCursor() *Cursor {
	return &Cursor{}
}

// SetPosition updates the desired cursor position. Returns true if it
// differs from the current position.
func (c *Cursor) SetPosition(x, y int) bool {
	if c.x == x && c.y == y {
		return false
	}
	c.x, c.y = x, y
	return true
}

// envelope returns the top-left corner of the 14x18 backup/outline envelope
// for a cursor drawn with its top-left pixel at (x,y).
func envelope(x, y int) (ex, ey int) {
	return x - 1, y - 1
}

// restore writes the saved backup back into the backbuffer at the envelope
// around (lastX,lastY), clipped to bbW×bbH, then invalidates the backup.
func (c *Cursor) restore(bb []uint32, bbW, bbH int) {
	if !c.backupValid || !c.hasLast {
		return
	}
	ex, ey := envelope(c.lastX, c.lastY)
	cx, cy, cw, ch, ok := clipRect(ex, ey, cursorBackupW, cursorBackupH, bbW, bbH)
	if !ok {
		c.backupValid = false
		return
	}
	offX, offY := cx-ex, cy-ey
	for row := 0; row < ch; row++ {
		srcBase := (offY+row)*cursorBackupW + offX
		dstBase := (cy+row)*bbW + cx
		copy(bb[dstBase:dstBase+cw], c.backup[srcBase:srcBase+cw])
	}
	c.backupValid = false
}

// save captures the backbuffer under the envelope at the cursor's current
// position into backup.
func (c *Cursor) save(bb []uint32, bbW, bbH int) {
	ex, ey := envelope(c.x, c.y)
	for row := 0; row < cursorBackupH; row++ {
		for col := 0; col < cursorBackupW; col++ {
			sx, sy := ex+col, ey+row
			var px uint32
			if sx >= 0 && sx < bbW && sy >= 0 && sy < bbH {
				px = bb[sy*bbW+sx]
			}
			c.backup[row*cursorBackupW+col] = px
		}
	}
	c.backupValid = true
}

// draw plots the cursor bitmap at (x,y): outline first (8-neighborhood of
// every lit pixel), then the lit pixel itself in fill color.
func (c *Cursor) draw(bb []uint32, bbW, bbH int) {
	plot := func(x, y int, color uint32) {
		if x >= 0 && x < bbW && y >= 0 && y < bbH {
			bb[y*bbW+x] = color
		}
	}
	for row := 0; row < cursorH; row++ {
		bits := cursorBitmap[row]
		for col := 0; col < cursorW; col++ {
			if bits&(1<<(11-col)) == 0 {
				continue
			}
			px, py := c.x+col, c.y+row
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					plot(px+dx, py+dy, cursorOutlineColor)
				}
			}
		}
	}
	for row := 0; row < cursorH; row++ {
		bits := cursorBitmap[row]
		for col := 0; col < cursorW; col++ {
			if bits&(1<<(11-col)) == 0 {
				continue
			}
			plot(c.x+col, c.y+row, cursorFillColor)
		}
	}
	c.lastX, c.lastY = c.x, c.y
	c.hasLast = true
}

// dirtyEnvelope unions the 14x18 envelope around (x,y) into r.
func dirtyEnvelope(r *DirtyRect, x, y int) {
	ex, ey := envelope(x, y)
	r.Union(ex, ey, cursorBackupW, cursorBackupH)
}
