//go:build headless

package displaystack

// Runner is satisfied by whichever concrete output backend was compiled in.
type Runner interface {
	Run(title string) error
}

// NewOutput picks the headless backend.
func NewOutput(wm *WindowManager, fb *FramebufferDescriptor) Runner {
	return NewHeadlessOutput(wm, fb)
}
