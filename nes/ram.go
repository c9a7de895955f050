package nes

type RAM struct {
	data [2048]byte
}

// NewRAM creates a 2KB RAM, used both as CPU work RAM and as PPU nametable VRAM.
func NewRAM() *RAM {
	return &RAM{}
}

func (r *RAM) read(address uint16) byte {
	return r.data[address]
}

func (r *RAM) write(address uint16, x byte) {
	r.data[address] = x
}
