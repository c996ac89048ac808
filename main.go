// main.go - Wires the blit primitive, GPU shim, display server and window
// manager into a runnable demo.

package main

import (
	"fmt"
	"os"

	dstack "github.com/intuitionamiga/displaystack/internal/displaystack"
)

// Config is the hand-parsed runtime configuration, mirroring the teacher's
// own os.Args-based setup — no flag-parsing framework is in the retrieval
// pack's dependency surface.
type Config struct {
	Width         int
	Height        int
	Scale         int
	RefreshRate   int
	VSync         bool
	WallpaperPath string
}

func defaultConfig() Config {
	return Config{
		Width:       1024,
		Height:      768,
		Scale:       1,
		RefreshRate: 60,
		VSync:       true,
	}
}

func parseArgs(args []string) Config {
	cfg := defaultConfig()
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-width":
			i++
			if i < len(args) {
				fmt.Sscanf(args[i], "%d", &cfg.Width)
			}
		case "-height":
			i++
			if i < len(args) {
				fmt.Sscanf(args[i], "%d", &cfg.Height)
			}
		case "-wallpaper":
			i++
			if i < len(args) {
				cfg.WallpaperPath = args[i]
			}
		case "-novsync":
			cfg.VSync = false
		}
	}
	return cfg
}

func boilerPlate() {
	fmt.Println("displaystack - compositing display stack demo")
	fmt.Println("blit primitive + display server + window manager")
}

func main() {
	cfg := parseArgs(os.Args[1:])
	if cfg.Width*cfg.Height > dstack.MaxBackbuffer {
		fmt.Printf("error: requested resolution %dx%d exceeds max backbuffer\n", cfg.Width, cfg.Height)
		os.Exit(1)
	}

	boilerPlate()

	logger := dstack.NewStdLogger()

	fb := dstack.FramebufferDescriptor{
		Pixels: make([]uint32, cfg.Width*cfg.Height),
		Width:  cfg.Width,
		Height: cfg.Height,
		Pitch:  cfg.Width * 4,
	}

	gpu := dstack.NewGpuShim(dstack.NewVulkanBlitBackend(), logger)
	blitEngine := dstack.NewBlitEngine(gpu)

	ds := dstack.NewDisplayServer(fb, blitEngine, logger)

	if cfg.WallpaperPath != "" {
		data, err := os.ReadFile(cfg.WallpaperPath)
		if err != nil {
			logger.Log(dstack.LogError, "WM", "failed to read wallpaper file: "+err.Error())
		} else if err := ds.LoadWallpaper(data, dstack.DefaultWallpaperDecoder); err != nil {
			logger.Log(dstack.LogInfo, "WM", "wallpaper decode failed, falling back to solid color: "+err.Error())
		}
	}

	wm := dstack.NewWindowManager(ds, cfg.Width, cfg.Height, logger)

	demoWin := wm.CreateWindow("Demo", 80, 80, 320, 240, dstack.FlagMovable|dstack.FlagClosable|dstack.FlagResizable)
	if !demoWin.Valid() {
		fmt.Println("error: failed to create demo window")
		os.Exit(1)
	}
	wm.SetDrawer(demoWin, dstack.DrawFunc(func(v dstack.WindowView) {
		v.FillRect(0, dstack.TitleBarHeight, v.Width(), v.Height()-dstack.TitleBarHeight, dstack.WindowBgColor)
	}))
	wm.Update()

	output := dstack.NewOutput(wm, &fb)
	if err := output.Run("displaystack"); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}
