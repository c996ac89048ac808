// wm-inspect - raw-terminal inspector for the display stack. Lets an
// operator drive HandleMouse with single-key commands when no GUI backend
// is attached, and prints the current mouse position and button state after
// each key; it does not list windows, surfaces, z-order or focus. In the
// spirit of the terminal
// tooling the rest of this codebase's lineage builds for headless
// diagnostics (see terminal_host.go's raw-mode stdin reader).
package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"

	dstack "github.com/intuitionamiga/displaystack/internal/displaystack"
)

const (
	demoFbWidth  = 800
	demoFbHeight = 600
)

func main() {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wm-inspect: failed to set raw mode: %v\n", err)
		os.Exit(1)
	}
	defer term.Restore(fd, oldState)

	logger := dstack.NewStdLogger()
	fb := dstack.FramebufferDescriptor{
		Pixels: make([]uint32, demoFbWidth*demoFbHeight),
		Width:  demoFbWidth,
		Height: demoFbHeight,
		Pitch:  demoFbWidth * 4,
	}
	gpu := dstack.NewGpuShim(nil, logger)
	ds := dstack.NewDisplayServer(fb, dstack.NewBlitEngine(gpu), logger)
	wm := dstack.NewWindowManager(ds, demoFbWidth, demoFbHeight, logger)

	a := wm.CreateWindow("A", 40, 40, 200, 150, dstack.FlagMovable|dstack.FlagClosable|dstack.FlagResizable)
	b := wm.CreateWindow("B", 120, 100, 200, 150, dstack.FlagMovable|dstack.FlagClosable)
	wm.Update()

	mx, my := 0, 0
	down := false

	printHelp()
	reader := bufio.NewReader(os.Stdin)
	for {
		ch, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch ch {
		case 'q':
			return
		case 'h':
			mx -= 5
		case 'l':
			mx += 5
		case 'k':
			my -= 5
		case 'j':
			my += 5
		case ' ':
			down = !down
		case '1':
			wm.BringToFront(a)
		case '2':
			wm.BringToFront(b)
		case 'm':
			wm.Minimize(a)
		case 'r':
			wm.Restore(a)
		case '\x03': // Ctrl-C
			return
		}
		wm.HandleMouse(mx, my, down)
		wm.Update()
		printStatus(mx, my, down)
	}
}

func printHelp() {
	fmt.Print("wm-inspect: hjkl move, space toggle button, 1/2 bring-to-front, m/r minimize/restore, q quit\r\n")
}

func printStatus(mx, my int, down bool) {
	fmt.Printf("\rmouse=(%d,%d) button=%v            ", mx, my, down)
}
