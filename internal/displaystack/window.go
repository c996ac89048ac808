// window.go - Window type, flag bits, and chrome geometry constants

package displaystack

const (
	FlagMovable   = 0x01
	FlagClosable  = 0x02
	FlagResizable = 0x04
)

const (
	// TitleBarHeight is the number of rows of chrome at the top of every
	// window; content drawers must not paint above it.
	TitleBarHeight = 20
	controlSize    = 16
	controlInset   = 2
	controlGap     = 4
	resizeBorder   = 8
	minWindowW     = 100
	minWindowH     = 100
	maxTitleLen    = 64
)

const (
	chromeFocusedColor   = 0x4a90e2
	chromeUnfocusedColor = 0x404040
	WindowBgColor        = 0x2d2d2d
	closeButtonColor     = 0xff4444
	maximizeButtonColor  = 0x4444ff
	minimizeButtonColor  = 0x44ff44
	buttonLabelColor     = 0xffffff
)

// WindowId is a stable handle into the window pool; numerically equal to
// its slot index.
type WindowId int

const invalidWindowId WindowId = -1

// InvalidWindowId is the sentinel returned by CreateWindow on exhaustion.
const InvalidWindowId = invalidWindowId

// Valid reports whether id could name a live window slot.
func (id WindowId) Valid() bool { return id >= 0 }

// ResizeEdge names one of the eight discrete pointer-hit regions on a
// window border.
type ResizeEdge int

const (
	ResizeNone ResizeEdge = iota
	ResizeN
	ResizeS
	ResizeE
	ResizeW
	ResizeNE
	ResizeNW
	ResizeSE
	ResizeSW
)

// Window is a thin wrapper around a DS surface: title, flags, focus/min/max
// state, saved pre-maximize geometry, and an optional draw callback.
type Window struct {
	id      WindowId
	live    bool
	surface SurfaceId

	x, y, w, h int
	title      string
	flags      int

	focused     bool
	invalidated bool
	minimized   bool
	maximized   bool

	origX, origY, origW, origH int // saved pre-maximize geometry

	drawer WindowDrawer

	z int // cached mirror of the surface's z-order
}

func (w *Window) hasFlag(f int) bool { return w.flags&f != 0 }

// controlRects returns the packed-from-the-right control button rectangles
// in close, maximize, minimize order, skipping buttons the flags disallow.
// Each rectangle is (x,y,w,h) in window-local coordinates.
type controlRect struct {
	kind string // "close" | "maximize" | "minimize"
	x, y, w, h int
}

func (w *Window) controlRects() []controlRect {
	var rects []controlRect
	right := w.w - controlInset
	place := func(kind string) {
		x := right - controlSize
		rects = append(rects, controlRect{kind: kind, x: x, y: controlInset, w: controlSize, h: controlSize})
		right = x - controlGap
	}
	if w.hasFlag(FlagClosable) {
		place("close")
	}
	if w.hasFlag(FlagResizable) {
		place("maximize")
	}
	place("minimize")
	return rects
}

func (r controlRect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}
