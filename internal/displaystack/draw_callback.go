// draw_callback.go - Capability interface for window content, replacing the
// raw function-pointer + opaque user-data pair from the original source.

package displaystack

import (
	lua "github.com/yuin/gopher-lua"
)

// WindowView is a narrowed view over a single window's buffer, granting
// pixel mutation only for the current update() pass. Callbacks must not
// retain it past the call that handed it out.
type WindowView struct {
	buf  []uint32
	w, h int
}

func (v WindowView) Width() int  { return v.w }
func (v WindowView) Height() int { return v.h }

// SetPixel writes color at (x,y), silently clipped to the view's bounds.
func (v WindowView) SetPixel(x, y int, color uint32) {
	if x < 0 || y < 0 || x >= v.w || y >= v.h {
		return
	}
	v.buf[y*v.w+x] = color
}

// FillRect fills a sub-rectangle of the view, clipped to its bounds.
func (v WindowView) FillRect(x, y, w, h int, color uint32) {
	cx, cy, cw, ch, ok := clipRect(x, y, w, h, v.w, v.h)
	if !ok {
		return
	}
	FillRect(v.buf, v.w, cx, cy, cw, ch, color)
}

// WindowDrawer is the sole extension point for window content: one method,
// invoked once per update() pass for an invalidated, non-minimized window.
type WindowDrawer interface {
	Draw(view WindowView)
}

// DrawFunc adapts a plain closure to WindowDrawer, covering the common case
// without requiring a scripting engine.
type DrawFunc func(view WindowView)

func (f DrawFunc) Draw(view WindowView) { f(view) }

// LuaDrawCallback backs a window's content with a small Lua script. The
// script must define a global function `draw(w, h)` that calls the
// `set_pixel(x, y, color)` and `fill_rect(x, y, w, h, color)` globals this
// callback injects before each invocation.
type LuaDrawCallback struct {
	state  *lua.LState
	script string
	logger Logger
}

// NewLuaDrawCallback compiles script once; reports a compile error rather
// than failing window creation — a window with a broken script simply
// renders nothing until a Draw call, matching the "best-effort, never
// fatal" error discipline used throughout this stack.
func NewLuaDrawCallback(script string, logger Logger) (*LuaDrawCallback, error) {
	if logger == nil {
		logger = NopLogger{}
	}
	l := lua.NewState()
	if err := l.DoString(script); err != nil {
		l.Close()
		return nil, &DisplayError{Operation: "lua_compile", Details: "script failed to load", Err: err}
	}
	return &LuaDrawCallback{state: l, script: script, logger: logger}, nil
}

func (c *LuaDrawCallback) Draw(view WindowView) {
	l := c.state
	l.SetGlobal("set_pixel", l.NewFunction(func(L *lua.LState) int {
		x := L.CheckInt(1)
		y := L.CheckInt(2)
		color := uint32(L.CheckInt64(3))
		view.SetPixel(x, y, color)
		return 0
	}))
	l.SetGlobal("fill_rect", l.NewFunction(func(L *lua.LState) int {
		x := L.CheckInt(1)
		y := L.CheckInt(2)
		w := L.CheckInt(3)
		h := L.CheckInt(4)
		color := uint32(L.CheckInt64(5))
		view.FillRect(x, y, w, h, color)
		return 0
	}))
	drawFn := l.GetGlobal("draw")
	if drawFn.Type() != lua.LTFunction {
		return
	}
	if err := l.CallByParam(lua.P{Fn: drawFn, NRet: 0, Protect: true}, lua.LNumber(view.Width()), lua.LNumber(view.Height())); err != nil {
		c.logger.Log(LogError, "WM", "lua draw callback error: "+err.Error())
	}
}

func (c *LuaDrawCallback) Close() {
	if c.state != nil {
		c.state.Close()
	}
}
