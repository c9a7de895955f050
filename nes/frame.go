package nes

// The PPU generates 256x240 pixels.
const (
	FrameWidth  = 256
	FrameHeight = 240
)

// Frame is the rendered pixel buffer handed to the host once per video frame.
// Pixels are row-major, 3 bytes (RGB) each.
type Frame struct {
	pix []byte
}

// NewFrame creates an all-black frame.
func NewFrame() *Frame {
	return &Frame{pix: make([]byte, FrameWidth*FrameHeight*3)}
}

// Pix returns the raw RGB data, suitable for a GL texture upload.
func (f *Frame) Pix() []byte {
	return f.pix
}

func (f *Frame) setPixel(x, y int, c [3]byte) {
	if x < 0 || FrameWidth <= x || y < 0 || FrameHeight <= y {
		return
	}
	i := (y*FrameWidth + x) * 3
	f.pix[i] = c[0]
	f.pix[i+1] = c[1]
	f.pix[i+2] = c[2]
}
