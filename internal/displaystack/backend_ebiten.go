//go:build !headless

// backend_ebiten.go - Real VideoOutput-equivalent backend, adapted from
// video_backend_ebiten.go: owns the actual OS window, samples real mouse
// input each tick, and presents the flushed framebuffer.

package displaystack

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenOutput drives the window manager from real mouse input and
// presents the framebuffer through an ebiten.Image each frame.
type EbitenOutput struct {
	wm *WindowManager
	fb *FramebufferDescriptor

	width, height int
	img           *ebiten.Image
	rgba          []byte
}

func NewEbitenOutput(wm *WindowManager, fb *FramebufferDescriptor) *EbitenOutput {
	return &EbitenOutput{
		wm:     wm,
		fb:     fb,
		width:  fb.Width,
		height: fb.Height,
		img:    ebiten.NewImage(fb.Width, fb.Height),
		rgba:   make([]byte, fb.Width*fb.Height*4),
	}
}

func (o *EbitenOutput) Update() error {
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	o.wm.HandleMouse(mx, my, pressed)
	return nil
}

func (o *EbitenOutput) Draw(screen *ebiten.Image) {
	for i, px := range o.fb.Pixels {
		r := byte((px >> 16) & 0xFF)
		g := byte((px >> 8) & 0xFF)
		b := byte(px & 0xFF)
		o.rgba[i*4+0] = r
		o.rgba[i*4+1] = g
		o.rgba[i*4+2] = b
		o.rgba[i*4+3] = 0xFF
	}
	o.img.WritePixels(o.rgba)
	screen.DrawImage(o.img, nil)
}

func (o *EbitenOutput) Layout(outsideWidth, outsideHeight int) (int, int) {
	return o.width, o.height
}

// Run starts the ebiten game loop. Blocks until the window is closed.
func (o *EbitenOutput) Run(title string) error {
	ebiten.SetWindowSize(o.width, o.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(false)
	return ebiten.RunGame(o)
}
