//go:build headless

// backend_headless.go - Headless stand-in for EbitenOutput, matching
// video_backend_headless.go's pattern: no window, no real input, used for
// CI and for tests that need a runnable main without a display.

package displaystack

// HeadlessOutput drives the window manager from a caller-fed input queue
// instead of a real window/event loop.
type HeadlessOutput struct {
	wm     *WindowManager
	fb     *FramebufferDescriptor
	events []InputEvent
}

func NewHeadlessOutput(wm *WindowManager, fb *FramebufferDescriptor) *HeadlessOutput {
	return &HeadlessOutput{wm: wm, fb: fb}
}

// Feed queues one input event to be applied on the next Tick.
func (o *HeadlessOutput) Feed(ev InputEvent) {
	o.events = append(o.events, ev)
}

// Tick applies every queued event in order and runs one update pass.
func (o *HeadlessOutput) Tick() {
	for _, ev := range o.events {
		o.wm.HandleMouse(ev.MouseX, ev.MouseY, ev.LeftButton)
	}
	o.events = o.events[:0]
	o.wm.Update()
}

func (o *HeadlessOutput) Run(title string) error {
	o.Tick()
	return nil
}
