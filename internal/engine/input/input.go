// Package input turns SDL2 events into per-frame camera controls.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Frame is the input gathered since the previous Poll.
type Frame struct {
	Quit bool
	// DragX and DragY are the pointer motion while the left button is held.
	DragX, DragY float32
	// Wheel is the vertical scroll amount.
	Wheel float32
	// Resized is set when the window changed size.
	Resized       bool
	Width, Height int
}

// Active reports whether the user moved the camera this frame.
func (f *Frame) Active() bool {
	return f.DragX != 0 || f.DragY != 0 || f.Wheel != 0
}

// Input tracks button state across polls.
type Input struct {
	dragging bool
}

// New creates an input handler.
func New() *Input {
	return &Input{}
}

// Poll drains pending SDL events.
func (i *Input) Poll() Frame {
	var f Frame
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		i.handle(event, &f)
	}
	return f
}

func (i *Input) handle(event sdl.Event, f *Frame) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		f.Quit = true

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
			f.Quit = true
		}

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED {
			f.Resized = true
			f.Width, f.Height = int(e.Data1), int(e.Data2)
		}

	case *sdl.MouseButtonEvent:
		if e.Button == sdl.BUTTON_LEFT {
			i.dragging = e.Type == sdl.MOUSEBUTTONDOWN
		}

	case *sdl.MouseMotionEvent:
		if i.dragging {
			f.DragX += float32(e.XRel)
			f.DragY += float32(e.YRel)
		}

	case *sdl.MouseWheelEvent:
		f.Wheel += float32(e.Y)
	}
}
