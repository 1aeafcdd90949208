package main

import (
	"fmt"

	"github.com/Faultbox/warg/internal/config"
	"github.com/Faultbox/warg/internal/engine/gpu"
	"github.com/Faultbox/warg/internal/engine/gpu/glgpu"
	"github.com/Faultbox/warg/internal/engine/input"
	"github.com/Faultbox/warg/internal/engine/window"
)

// backend is a device plus the frame boundaries of its output.
type backend struct {
	dev gpu.Device

	// poll returns the user input since the previous frame.
	poll func() input.Frame
	// beginFrame prepares the target and returns its size.
	beginFrame func() (width, height int)
	// endFrame presents the frame.
	endFrame func()
	close    func()
}

func openBackend(cfg *config.Config) (*backend, error) {
	switch cfg.Graphics.Backend {
	case config.BackendHeadless:
		w, h := cfg.Graphics.Width, cfg.Graphics.Height
		return &backend{
			dev:        gpu.NewHeadless(cfg.Scene.MaxInstances),
			poll:       func() input.Frame { return input.Frame{} },
			beginFrame: func() (int, int) { return w, h },
			endFrame:   func() {},
			close:      func() {},
		}, nil

	case config.BackendGL:
		win, err := window.New(window.Config{
			Title:  "warg bench",
			Width:  cfg.Graphics.Width,
			Height: cfg.Graphics.Height,
			Hidden: cfg.Graphics.Hidden,
			VSync:  cfg.Graphics.VSync,
		})
		if err != nil {
			return nil, err
		}
		dev, err := glgpu.New(cfg.Scene.MaxInstances)
		if err != nil {
			win.Close()
			return nil, err
		}
		in := input.New()
		return &backend{
			dev:  dev,
			poll: in.Poll,
			beginFrame: func() (int, int) {
				w, h := win.Size()
				dev.Clear(w, h)
				return w, h
			},
			endFrame: win.SwapBuffers,
			close: func() {
				dev.Close()
				win.Close()
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown graphics backend %q", cfg.Graphics.Backend)
}
