// window_manager.go - Window lifecycle, pointer state machine, chrome, focus
// and z-order.

package displaystack

const NWin = 32

// PointerState is the pointer interaction state machine from spec.md §9:
// Idle | Dragging{win, offset} | Resizing{win, edge, start_mouse, start_geom}.
// Every pointer event is total: HandleMouse always leaves wm.pointer in a
// defined next state.
type PointerState interface{ isPointerState() }

type PointerIdle struct{}

func (PointerIdle) isPointerState() {}

type PointerDragging struct {
	Win        WindowId
	OffX, OffY int
}

func (PointerDragging) isPointerState() {}

type PointerResizing struct {
	Win                    WindowId
	Edge                   ResizeEdge
	StartMouseX, StartMouseY int
	StartX, StartY, StartW, StartH int
}

func (PointerResizing) isPointerState() {}

// WindowManager is the single owner of the window pool, pointer state, and
// focus. It holds a reference to the DisplayServer it draws into but never
// writes the framebuffer directly.
type WindowManager struct {
	ds      *DisplayServer
	windows [NWin]Window
	logger  Logger

	pointer     PointerState
	prevButton  bool
	lastClickX  int
	lastClickY  int
	hasLastClick bool

	focused WindowId
	nextZ     int
	nextMinZ  int

	fbW, fbH int
}

func NewWindowManager(ds *DisplayServer, fbW, fbH int, logger Logger) *WindowManager {
	if logger == nil {
		logger = NopLogger{}
	}
	wm := &WindowManager{
		ds:      ds,
		logger:  logger,
		pointer: PointerIdle{},
		focused: invalidWindowId,
		fbW:     fbW,
		fbH:     fbH,
	}
	for i := range wm.windows {
		wm.windows[i].id = WindowId(i)
	}
	return wm
}

func (wm *WindowManager) slot(id WindowId) *Window {
	if id < 0 || int(id) >= NWin || !wm.windows[id].live {
		return nil
	}
	return &wm.windows[id]
}

// CreateWindow allocates a window slot, requests a DS surface, copies the
// title (bounded), focuses and brings the window to front.
func (wm *WindowManager) CreateWindow(title string, x, y, w, h, flags int) WindowId {
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}
	if w < minWindowW {
		w = minWindowW
	}
	if h < minWindowH {
		h = minWindowH
	}
	var slot WindowId = invalidWindowId
	for i := range wm.windows {
		if !wm.windows[i].live {
			slot = WindowId(i)
			break
		}
	}
	if slot == invalidWindowId {
		wm.logger.Log(LogError, "WM", "create_window failed: window pool exhausted")
		return invalidWindowId
	}
	sid := wm.ds.CreateSurface(x, y, w, h, wm.nextZ)
	if sid == invalidSurfaceId {
		return invalidWindowId
	}
	win := &wm.windows[slot]
	*win = Window{
		id:      slot,
		live:    true,
		surface: sid,
		x:       x, y: y, w: w, h: h,
		title:       title,
		flags:       flags,
		invalidated: true,
	}
	wm.focusWindow(slot)
	wm.bringToFront(slot)
	return slot
}

// DestroyWindow destroys the window's surface, frees its slot, and clears
// any focus/drag/resize reference pointing at it.
func (wm *WindowManager) DestroyWindow(id WindowId) {
	win := wm.slot(id)
	if win == nil {
		return
	}
	wm.ds.DestroySurface(win.surface)
	if wm.focused == id {
		wm.focused = invalidWindowId
	}
	switch p := wm.pointer.(type) {
	case PointerDragging:
		if p.Win == id {
			wm.pointer = PointerIdle{}
		}
	case PointerResizing:
		if p.Win == id {
			wm.pointer = PointerIdle{}
		}
	}
	wm.windows[id] = Window{id: id}
}

// InvalidateWindow marks w for chrome re-render on the next update() pass.
func (wm *WindowManager) InvalidateWindow(id WindowId) {
	win := wm.slot(id)
	if win == nil {
		return
	}
	win.invalidated = true
}

// ClearWindow fills the window's entire buffer with color and dirties its
// rectangle.
func (wm *WindowManager) ClearWindow(id WindowId, color uint32) {
	win := wm.slot(id)
	if win == nil {
		return
	}
	buf := wm.ds.GetSurfaceBuffer(win.surface)
	if buf == nil {
		return
	}
	Clear(buf, win.w, win.h, color)
	wm.ds.MarkDirty(win.x, win.y, win.w, win.h)
}

func (wm *WindowManager) DrawPixel(id WindowId, x, y int, color uint32) {
	win := wm.slot(id)
	if win == nil || x < 0 || y < 0 || x >= win.w || y >= win.h {
		return
	}
	buf := wm.ds.GetSurfaceBuffer(win.surface)
	if buf == nil {
		return
	}
	buf[y*win.w+x] = color
	wm.ds.MarkDirty(win.x+x, win.y+y, 1, 1)
}

func (wm *WindowManager) DrawFilledRect(id WindowId, x, y, w, h int, color uint32) {
	win := wm.slot(id)
	if win == nil {
		return
	}
	buf := wm.ds.GetSurfaceBuffer(win.surface)
	if buf == nil {
		return
	}
	cx, cy, cw, ch, ok := clipRect(x, y, w, h, win.w, win.h)
	if !ok {
		return
	}
	FillRect(buf, win.w, cx, cy, cw, ch, color)
	wm.ds.MarkDirty(win.x+cx, win.y+cy, cw, ch)
}

func (wm *WindowManager) DrawRectOutline(id WindowId, x, y, w, h int, color uint32) {
	wm.DrawFilledRect(id, x, y, w, 1, color)
	wm.DrawFilledRect(id, x, y+h-1, w, 1, color)
	wm.DrawFilledRect(id, x, y, 1, h, color)
	wm.DrawFilledRect(id, x+w-1, y, 1, h, color)
}

func (wm *WindowManager) DrawText(id WindowId, x, y int, s string, color uint32) {
	win := wm.slot(id)
	if win == nil {
		return
	}
	buf := wm.ds.GetSurfaceBuffer(win.surface)
	if buf == nil {
		return
	}
	drawText(buf, win.w, win.w, win.h, x, y, s, color)
	wm.ds.MarkDirty(win.x, win.y, win.w, win.h)
}

// SetDrawer installs the window's content provider.
func (wm *WindowManager) SetDrawer(id WindowId, drawer WindowDrawer) {
	win := wm.slot(id)
	if win == nil {
		return
	}
	win.drawer = drawer
}

func (wm *WindowManager) focusWindow(id WindowId) {
	if wm.focused == id {
		return
	}
	if old := wm.slot(wm.focused); old != nil {
		old.focused = false
		old.invalidated = true
	}
	wm.focused = id
	if win := wm.slot(id); win != nil {
		win.focused = true
		win.invalidated = true
	}
}

// bringToFront moves w to the maximum non-minimized z value.
func (wm *WindowManager) bringToFront(id WindowId) {
	win := wm.slot(id)
	if win == nil {
		return
	}
	win.z = wm.nextZ
	wm.nextZ++
	wm.ds.SetSurfaceZOrder(win.surface, win.z)
}

func (wm *WindowManager) BringToFront(id WindowId) { wm.bringToFront(id) }

// topToBottomZOrder returns live, non-minimized window ids sorted
// z-descending, for hit testing.
func (wm *WindowManager) topToBottomZOrder() []WindowId {
	var ids []WindowId
	for i := range wm.windows {
		w := &wm.windows[i]
		if w.live && !w.minimized {
			ids = append(ids, w.id)
		}
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && wm.windows[ids[j-1]].z < wm.windows[ids[j]].z; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// HandleMouse implements the pointer state machine described in spec.md
// §4.3. Edge-triggered press is computed internally from the previous call's
// button state.
func (wm *WindowManager) HandleMouse(mx, my int, leftDown bool) {
	justPressed := leftDown && !wm.prevButton
	defer func() { wm.prevButton = leftDown }()

	switch p := wm.pointer.(type) {
	case PointerDragging:
		win := wm.slot(p.Win)
		if win == nil {
			wm.pointer = PointerIdle{}
			break
		}
		if leftDown {
			nx, ny := mx-p.OffX, my-p.OffY
			if !win.maximized {
				nx, ny = wm.clampToScreen(nx, ny, win.w, win.h)
			}
			wm.ds.SetSurfacePosition(win.surface, nx, ny)
			win.x, win.y = nx, ny
			wm.ds.Render()
		} else {
			wm.pointer = PointerIdle{}
		}
		return
	case PointerResizing:
		win := wm.slot(p.Win)
		if win == nil {
			wm.pointer = PointerIdle{}
			break
		}
		if leftDown {
			wm.applyResize(win, p, mx, my)
			wm.ds.Render()
		} else {
			wm.pointer = PointerIdle{}
		}
		return
	}

	if !justPressed {
		return
	}
	wm.lastClickX, wm.lastClickY, wm.hasLastClick = mx, my, true

	for _, id := range wm.topToBottomZOrder() {
		win := &wm.windows[id]
		if mx < win.x || mx >= win.x+win.w || my < win.y || my >= win.y+win.h {
			continue
		}
		localX, localY := mx-win.x, my-win.y

		if win.hasFlag(FlagResizable) && !win.maximized {
			if edge := hitResizeEdge(localX, localY, win.w, win.h); edge != ResizeNone {
				wm.pointer = PointerResizing{
					Win: id, Edge: edge,
					StartMouseX: mx, StartMouseY: my,
					StartX: win.x, StartY: win.y, StartW: win.w, StartH: win.h,
				}
				wm.focusWindow(id)
				wm.bringToFront(id)
				return
			}
		}

		if localY < TitleBarHeight {
			for _, cr := range win.controlRects() {
				if cr.contains(localX, localY) {
					wm.dispatchControl(id, cr.kind)
					return
				}
			}
			wm.focusWindow(id)
			wm.bringToFront(id)
			if win.hasFlag(FlagMovable) && !win.maximized {
				wm.pointer = PointerDragging{Win: id, OffX: mx - win.x, OffY: my - win.y}
			}
			return
		}

		wm.focusWindow(id)
		wm.bringToFront(id)
		return
	}
}

func (wm *WindowManager) clampToScreen(x, y, w, h int) (int, int) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+w > wm.fbW {
		x = wm.fbW - w
	}
	if y+h > wm.fbH {
		y = wm.fbH - h
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

func (wm *WindowManager) dispatchControl(id WindowId, kind string) {
	switch kind {
	case "close":
		wm.DestroyWindow(id)
	case "maximize":
		win := wm.slot(id)
		if win == nil {
			return
		}
		if win.maximized {
			wm.Unmaximize(id)
		} else {
			wm.Maximize(id)
		}
	case "minimize":
		wm.Minimize(id)
	}
}

// hitResizeEdge returns which of the eight discrete resize regions
// (localX,localY) falls within, given window size (w,h). The outer 8
// pixels of any non-title edge are live; corners take priority. The title
// bar itself is drag-only, so the top edge is only live at its NW/NE
// corners — a bare top-center hit falls through to ResizeNone (the pointer
// state machine then starts a drag instead of a resize).
func hitResizeEdge(localX, localY, w, h int) ResizeEdge {
	nearTop := localY < TitleBarHeight && localY < resizeBorder
	nearBottom := localY >= h-resizeBorder
	nearLeft := localX < resizeBorder
	nearRight := localX >= w-resizeBorder

	switch {
	case nearTop && nearLeft:
		return ResizeNW
	case nearTop && nearRight:
		return ResizeNE
	case nearBottom && nearLeft:
		return ResizeSW
	case nearBottom && nearRight:
		return ResizeSE
	case nearBottom:
		return ResizeS
	case nearLeft:
		return ResizeW
	case nearRight:
		return ResizeE
	default:
		return ResizeNone
	}
}

// applyResize computes (new_x,new_y,new_w,new_h) from the resize edge and
// starting/current mouse, clamping to the 100x100 minimum and framebuffer
// bounds.
func (wm *WindowManager) applyResize(win *Window, p PointerResizing, mx, my int) {
	dx, dy := mx-p.StartMouseX, my-p.StartMouseY
	x, y, w, h := p.StartX, p.StartY, p.StartW, p.StartH

	switch p.Edge {
	case ResizeN, ResizeNE, ResizeNW:
		newY := y + dy
		newH := h - dy
		if newH < minWindowH {
			newY -= minWindowH - newH
			newH = minWindowH
		}
		if newY < 0 {
			newH += newY
			newY = 0
		}
		y, h = newY, newH
	}
	switch p.Edge {
	case ResizeS, ResizeSE, ResizeSW:
		newH := h + dy
		if newH < minWindowH {
			newH = minWindowH
		}
		if y+newH > wm.fbH {
			newH = wm.fbH - y
		}
		h = newH
	}
	switch p.Edge {
	case ResizeW, ResizeNW, ResizeSW:
		newX := x + dx
		newW := w - dx
		if newW < minWindowW {
			newX -= minWindowW - newW
			newW = minWindowW
		}
		if newX < 0 {
			newW += newX
			newX = 0
		}
		x, w = newX, newW
	}
	switch p.Edge {
	case ResizeE, ResizeNE, ResizeSE:
		newW := w + dx
		if newW < minWindowW {
			newW = minWindowW
		}
		if x+newW > wm.fbW {
			newW = wm.fbW - x
		}
		w = newW
	}
	if w < minWindowW {
		w = minWindowW
	}
	if h < minWindowH {
		h = minWindowH
	}

	wm.ds.SetSurfacePosition(win.surface, x, y)
	if wm.ds.SetSurfaceSize(win.surface, w, h) {
		win.x, win.y, win.w, win.h = x, y, w, h
		win.invalidated = true
	}
}

// Minimize excludes the window's surface from composition (spec.md §3
// Window invariant (b), §4.3: minimized windows are not rendered by
// update()) and from hit testing, and pushes it to the low z-order band so
// it sorts behind everything else if it's ever shown again mid-restore.
func (wm *WindowManager) Minimize(id WindowId) {
	win := wm.slot(id)
	if win == nil || win.minimized {
		return
	}
	win.minimized = true
	wm.nextMinZ--
	win.z = wm.nextMinZ
	wm.ds.SetSurfaceZOrder(win.surface, win.z)
	wm.ds.HideSurface(win.surface)
	if wm.focused == id {
		wm.focused = invalidWindowId
	}
}

// Restore brings a minimized window back into composition and the normal
// z-order band, and to the front.
func (wm *WindowManager) Restore(id WindowId) {
	win := wm.slot(id)
	if win == nil || !win.minimized {
		return
	}
	win.minimized = false
	wm.ds.ShowSurface(win.surface)
	wm.focusWindow(id)
	wm.bringToFront(id)
}

// Maximize saves the current geometry, then sets geometry to the
// framebuffer size (or the largest aspect-preserving rectangle that fits
// MaxSurfaceBuffer, centered, using the corrected integer formula from
// spec.md §9 — no ×1000 precision loss). Any size-mismatch failure reverts
// to the saved geometry with maximized left false.
func (wm *WindowManager) Maximize(id WindowId) {
	win := wm.slot(id)
	if win == nil || win.maximized {
		return
	}
	win.origX, win.origY, win.origW, win.origH = win.x, win.y, win.w, win.h

	targetW, targetH := wm.fbW, wm.fbH
	var targetX, targetY int
	if targetW*targetH > MaxSurfaceBuffer {
		targetW, targetH = fitAspect(wm.fbW, wm.fbH)
		targetX = (wm.fbW - targetW) / 2
		targetY = (wm.fbH - targetH) / 2
	}

	wm.ds.SetSurfacePosition(win.surface, targetX, targetY)
	if !wm.ds.SetSurfaceSize(win.surface, targetW, targetH) {
		wm.ds.SetSurfacePosition(win.surface, win.origX, win.origY)
		return
	}
	buf := wm.ds.GetSurfaceBuffer(win.surface)
	if buf == nil {
		wm.ds.SetSurfacePosition(win.surface, win.origX, win.origY)
		wm.ds.SetSurfaceSize(win.surface, win.origW, win.origH)
		return
	}
	win.x, win.y, win.w, win.h = targetX, targetY, targetW, targetH
	win.maximized = true
	win.invalidated = true
}

// Unmaximize restores the saved pre-maximize geometry exactly.
func (wm *WindowManager) Unmaximize(id WindowId) {
	win := wm.slot(id)
	if win == nil || !win.maximized {
		return
	}
	wm.ds.SetSurfacePosition(win.surface, win.origX, win.origY)
	if !wm.ds.SetSurfaceSize(win.surface, win.origW, win.origH) {
		return
	}
	win.x, win.y, win.w, win.h = win.origX, win.origY, win.origW, win.origH
	win.maximized = false
	win.invalidated = true
}

// ResizeWindow directly sets a window's size, clamping to the 100x100
// minimum and MaxSurfaceBuffer capacity — the public counterpart to the
// pointer-driven applyResize, for callers that resize without a live drag. Position is left unchanged. Any
// size-mismatch failure reverts to the pre-call geometry, the same
// save-old/try-new/revert-on-failure discipline as Maximize.
func (wm *WindowManager) ResizeWindow(id WindowId, newW, newH int) {
	win := wm.slot(id)
	if win == nil {
		return
	}
	if newW < minWindowW {
		newW = minWindowW
	}
	if newH < minWindowH {
		newH = minWindowH
	}
	if newW*newH > MaxSurfaceBuffer {
		newW, newH = fitAspect(newW, newH)
	}

	origW, origH := win.w, win.h
	if !wm.ds.SetSurfaceSize(win.surface, newW, newH) {
		return
	}
	buf := wm.ds.GetSurfaceBuffer(win.surface)
	if buf == nil {
		wm.ds.SetSurfaceSize(win.surface, origW, origH)
		return
	}
	win.w, win.h = newW, newH
	win.invalidated = true
}

// fitAspect computes the largest aspect-preserving rectangle bounded by
// MaxSurfaceBuffer that fits within fbW×fbH, using 64-bit intermediates
// throughout so no factor is discarded the way the original ×1000 trick did.
func fitAspect(fbW, fbH int) (w, h int) {
	// Candidate 1: bound width to MaxSurfaceBufferW, derive height.
	w1 := MaxSurfaceBufferW
	h1 := int(int64(fbH) * int64(w1) / int64(fbW))
	// Candidate 2: bound height to MaxSurfaceBufferH, derive width.
	h2 := MaxSurfaceBufferH
	w2 := int(int64(fbW) * int64(h2) / int64(fbH))

	if w1*h1 <= MaxSurfaceBuffer && h1 <= MaxSurfaceBufferH {
		w, h = w1, h1
	} else {
		w, h = w2, h2
	}
	if w > fbW {
		w = fbW
	}
	if h > fbH {
		h = fbH
	}
	if w <= 0 {
		w = minWindowW
	}
	if h <= 0 {
		h = minWindowH
	}
	return w, h
}

// Update renders chrome into every invalidated, non-minimized window,
// clears its invalidated flag, marks its rectangle dirty, then triggers a
// DS render.
func (wm *WindowManager) Update() {
	for i := range wm.windows {
		win := &wm.windows[i]
		if !win.live || win.minimized || !win.invalidated {
			continue
		}
		wm.renderChrome(win)
		if win.drawer != nil {
			buf := wm.ds.GetSurfaceBuffer(win.surface)
			if buf != nil {
				win.drawer.Draw(WindowView{buf: buf, w: win.w, h: win.h})
			}
		}
		win.invalidated = false
		wm.ds.MarkDirty(win.x, win.y, win.w, win.h)
	}
	wm.ds.Render()
}

func (wm *WindowManager) renderChrome(win *Window) {
	buf := wm.ds.GetSurfaceBuffer(win.surface)
	if buf == nil {
		return
	}
	barColor := uint32(chromeUnfocusedColor)
	if win.focused {
		barColor = chromeFocusedColor
	}
	FillRect(buf, win.w, 0, 0, win.w, min(TitleBarHeight, win.h), barColor)

	for _, cr := range win.controlRects() {
		color := uint32(minimizeButtonColor)
		label := byte('_')
		switch cr.kind {
		case "close":
			color = closeButtonColor
			label = 'X'
		case "maximize":
			color = maximizeButtonColor
			if win.maximized {
				label = 'R'
			} else {
				label = 'M'
			}
		}
		FillRect(buf, win.w, cr.x, cr.y, cr.w, cr.h, color)
		drawGlyph(buf, win.w, win.w, win.h, cr.x+4, cr.y+4, label, buttonLabelColor)
	}

	drawText(buf, win.w, win.w, win.h, 4, 4, win.title, buttonLabelColor)
}
