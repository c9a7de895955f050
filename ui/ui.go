package ui

import (
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"

	"github.com/alsoasnerd/nes/nes"
)

// screen presents completed frames into a GLFW window as a single textured
// quad, and latches keyboard state into the controller once per frame.
type screen struct {
	window  *glfw.Window
	texture uint32
}

func (s *screen) FrameReady(frame *nes.Frame, controller *nes.Controller) error {
	if s.window.ShouldClose() {
		return nes.ErrQuit
	}
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB, int32(nes.FrameWidth), int32(nes.FrameHeight), 0,
		gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(frame.Pix()))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Begin(gl.QUADS)
	gl.TexCoord2f(0, 1)
	gl.Vertex2f(-1, -1)
	gl.TexCoord2f(1, 1)
	gl.Vertex2f(1, -1)
	gl.TexCoord2f(1, 0)
	gl.Vertex2f(1, 1)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(-1, 1)
	gl.End()
	s.window.SwapBuffers()
	glfw.PollEvents()
	controller.Set(getKeys(s.window))
	return nil
}

// Start opens a window and runs the console until the program halts or the
// window is closed. Must be called from the main OS thread.
func Start(console *nes.Console, width int, height int) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()
	window, err := glfw.CreateWindow(width, height, "NES", nil, nil)
	if err != nil {
		return err
	}
	window.MakeContextCurrent()
	// Sync buffer swaps to the display refresh, ~60Hz like the real console.
	glfw.SwapInterval(1)
	if err := gl.Init(); err != nil {
		return err
	}
	var texture uint32
	gl.Enable(gl.TEXTURE_2D)
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	console.SetFrameHandler(&screen{window: window, texture: texture})
	glog.Infoln("starting main loop")
	return console.Run()
}
