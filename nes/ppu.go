package nes

import "fmt"

// PPU stands for Picture Processing Unit, renders a 256x240 image for a screen.
// PPU runs 3x faster than the CPU and rendering 1 frame takes 341x262=89342
// dots (each dot is one PPU cycle).
//
// This PPU implementation includes the PPU registers as well.
// References:
//   https://www.nesdev.org/wiki/PPU
//   https://www.nesdev.org/wiki/PPU_registers
//   https://www.nesdev.org/wiki/PPU_rendering
type PPU struct {
	bus   *PPUBus
	frame *Frame

	// PPUCTRL $2000
	ctrl byte
	// PPUMASK $2001
	mask byte
	// PPUSTATUS $2002 bits
	spriteOverflow bool
	spriteZeroHit  bool
	vblankStarted  bool
	// OAMADDR $2003
	oamAddress byte
	// OAMDATA $2004 / OAMDMA $4014
	oamData [256]byte
	// PPUSCROLL $2005
	scrollX byte
	scrollY byte
	// Current VRAM address (14bit), for PPUADDR $2006
	v uint16
	// w indicates whether the next $2005/$2006 write is the second one.
	// The latch is shared between the two registers and reset by $2002 reads.
	w bool
	// Read buffer for PPUDATA $2007
	buffer byte

	// PPU has an internal RAM for palette data.
	paletteRAM [32]byte

	// cycle, scanline indicate which dot is processing.
	cycle    int
	scanline int

	nmiPending bool
}

// NewPPU creates a PPU.
func NewPPU(bus *PPUBus) *PPU {
	p := &PPU{
		bus:   bus,
		frame: NewFrame(),
	}
	p.Reset()
	return p
}

func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.spriteOverflow = false
	p.spriteZeroHit = false
	p.vblankStarted = false
	p.oamAddress = 0
	p.scrollX = 0
	p.scrollY = 0
	p.v = 0
	p.w = false
	p.buffer = 0
	p.cycle = 0
	p.scanline = 0
	p.nmiPending = false
}

// vramIncrement is the $2007 address step, 1 or 32 depending on PPUCTRL.
func (p *PPU) vramIncrement() uint16 {
	if p.ctrl&0x04 != 0 {
		return 32
	}
	return 1
}

// writePPUCTRL writes PPUCTRL ($2000). Turning the NMI enable bit on while
// the vblank flag is already set fires another NMI immediately.
func (p *PPU) writePPUCTRL(data byte) {
	if p.vblankStarted && p.ctrl&0x80 == 0 && data&0x80 != 0 {
		p.nmiPending = true
	}
	p.ctrl = data
}

// writePPUMASK writes PPUMASK ($2001).
func (p *PPU) writePPUMASK(data byte) {
	p.mask = data
}

// readPPUSTATUS reads PPUSTATUS ($2002). Reading clears the vblank flag and
// resets the shared $2005/$2006 write latch.
func (p *PPU) readPPUSTATUS() byte {
	var res byte
	if p.spriteOverflow {
		res |= (1 << 5)
	}
	if p.spriteZeroHit {
		res |= (1 << 6)
	}
	if p.vblankStarted {
		res |= (1 << 7)
	}
	p.vblankStarted = false
	p.w = false
	return res
}

// writeOAMADDR writes OAMADDR ($2003).
func (p *PPU) writeOAMADDR(data byte) {
	p.oamAddress = data
}

// writeOAMDATA writes OAMDATA ($2004) and advances OAMADDR.
func (p *PPU) writeOAMDATA(data byte) {
	p.oamData[p.oamAddress] = data
	p.oamAddress++
}

// readOAMDATA reads OAMDATA ($2004). Reads do not advance OAMADDR.
func (p *PPU) readOAMDATA() byte {
	return p.oamData[p.oamAddress]
}

// writeOAMDMA copies a whole OAM page at once, written by the CPU through $4014.
func (p *PPU) writeOAMDMA(data [256]byte) {
	p.oamData = data
}

// writePPUSCROLL writes PPUSCROLL ($2005), X first then Y.
func (p *PPU) writePPUSCROLL(data byte) {
	if !p.w {
		p.scrollX = data
		p.w = true
	} else {
		p.scrollY = data
		p.w = false
	}
}

// writePPUADDR writes PPUADDR ($2006), high byte first then low.
func (p *PPU) writePPUADDR(data byte) {
	if !p.w {
		p.v = (p.v & 0x00FF) | (uint16(data) << 8)
		p.w = true
	} else {
		p.v = (p.v & 0xFF00) | uint16(data)
		p.w = false
	}
	// The address space is 14 bits.
	p.v &= 0x3FFF
}

// paletteIndex mirrors a $3F00-$3FFF address into the 32 byte palette RAM.
// $3F10/$3F14/$3F18/$3F1C are mirrors of the background entries.
func paletteIndex(address uint16) uint16 {
	i := (address - 0x3F00) % 32
	if i == 0x10 || i == 0x14 || i == 0x18 || i == 0x1C {
		i -= 0x10
	}
	return i
}

// writePPUDATA writes PPUDATA ($2007).
func (p *PPU) writePPUDATA(data byte) error {
	if 0x3F00 <= p.v {
		p.paletteRAM[paletteIndex(p.v)] = data
	} else {
		if err := p.bus.write(p.v, data); err != nil {
			return err
		}
	}
	p.v = (p.v + p.vramIncrement()) & 0x3FFF
	return nil
}

// readPPUDATA reads PPUDATA ($2007). Reads below the palette area go through
// a one-read-delayed internal buffer.
func (p *PPU) readPPUDATA() (byte, error) {
	address := p.v
	p.v = (p.v + p.vramIncrement()) & 0x3FFF
	if 0x3F00 <= address {
		return p.paletteRAM[paletteIndex(address)], nil
	}
	data, err := p.bus.read(address)
	if err != nil {
		return 0, err
	}
	buffered := p.buffer
	p.buffer = data
	return buffered, nil
}

// takeNMI reports and consumes a pending NMI.
func (p *PPU) takeNMI() bool {
	if p.nmiPending {
		p.nmiPending = false
		return true
	}
	return false
}

// spriteZeroAt approximates the sprite zero collision: the hit lands where
// sprite zero sits, as soon as the beam passes it with sprites visible.
// dot is the position within the current scanline.
func (p *PPU) spriteZeroAt(dot int) bool {
	y := int(p.oamData[0])
	x := int(p.oamData[3])
	return y == p.scanline && x <= dot && p.mask&0x10 != 0
}

// tick advances the PPU by the given number of dots and reports whether a
// frame finished. A scanline is 341 dots, a frame is 262 scanlines. Vblank
// starts at scanline 241 and raises an NMI if PPUCTRL enables it.
func (p *PPU) tick(cycles int) bool {
	p.cycle += cycles
	for 341 <= p.cycle {
		// The beam finished this line, so it passed every x on it.
		if p.spriteZeroAt(340) {
			p.spriteZeroHit = true
		}
		p.cycle -= 341
		p.scanline++
		if p.scanline == 241 {
			p.vblankStarted = true
			p.spriteZeroHit = false
			if p.ctrl&0x80 != 0 {
				p.nmiPending = true
			}
		}
		if 262 <= p.scanline {
			p.scanline = 0
			p.nmiPending = false
			p.spriteZeroHit = false
			p.vblankStarted = false
			return true
		}
	}
	if p.spriteZeroAt(p.cycle) {
		p.spriteZeroHit = true
	}
	return false
}

// backgroundColor resolves a background pixel through the attribute table of
// the given nametable. Each attribute byte covers a 4x4 tile area split into
// 2x2 tile quadrants.
func (p *PPU) backgroundColor(nametable uint16, tileX, tileY int, value byte) ([3]byte, error) {
	if value == 0 {
		return systemPalette[p.paletteRAM[0]], nil
	}
	attribute, err := p.bus.read(nametable + 0x3C0 + uint16(tileY/4*8+tileX/4))
	if err != nil {
		return [3]byte{}, err
	}
	shift := byte((tileY%4)/2)<<2 | byte((tileX%4)/2)<<1
	palette := (attribute >> shift) & 0b11
	return systemPalette[p.paletteRAM[uint16(palette)*4+uint16(value)]], nil
}

// renderBackground draws the nametable PPUCTRL points at.
func (p *PPU) renderBackground() error {
	nametable := 0x2000 + 0x400*uint16(p.ctrl&0b11)
	var bank uint16
	if p.ctrl&0x10 != 0 {
		bank = 0x1000
	}
	for i := 0; i < 32*30; i++ {
		tileX := i % 32
		tileY := i / 32
		tile, err := p.bus.read(nametable + uint16(i))
		if err != nil {
			return err
		}
		for y := 0; y < 8; y++ {
			low, err := p.bus.read(bank + uint16(tile)*16 + uint16(y))
			if err != nil {
				return err
			}
			high, err := p.bus.read(bank + uint16(tile)*16 + uint16(y) + 8)
			if err != nil {
				return err
			}
			for x := 0; x < 8; x++ {
				value := ((high>>(7-x))&1)<<1 | (low>>(7-x))&1
				color, err := p.backgroundColor(nametable, tileX, tileY, value)
				if err != nil {
					return err
				}
				p.frame.setPixel(tileX*8+x, tileY*8+y, color)
			}
		}
	}
	return nil
}

// renderSprites draws all 64 OAM entries back to front, so lower indexed
// sprites win overlaps. Color 0 is transparent.
func (p *PPU) renderSprites() error {
	var bank uint16
	if p.ctrl&0x08 != 0 {
		bank = 0x1000
	}
	for i := len(p.oamData) - 4; 0 <= i; i -= 4 {
		spriteY := int(p.oamData[i])
		tile := uint16(p.oamData[i+1])
		attribute := p.oamData[i+2]
		spriteX := int(p.oamData[i+3])
		flipVertical := (attribute>>7)&1 == 1
		flipHorizontal := (attribute>>6)&1 == 1
		palette := uint16(attribute & 0b11)
		for y := 0; y < 8; y++ {
			low, err := p.bus.read(bank + tile*16 + uint16(y))
			if err != nil {
				return err
			}
			high, err := p.bus.read(bank + tile*16 + uint16(y) + 8)
			if err != nil {
				return err
			}
			for x := 0; x < 8; x++ {
				value := ((high>>(7-x))&1)<<1 | (low>>(7-x))&1
				if value == 0 {
					continue
				}
				color := systemPalette[p.paletteRAM[0x10+palette*4+uint16(value)]]
				xx := x
				yy := y
				if flipHorizontal {
					xx = 7 - x
				}
				if flipVertical {
					yy = 7 - y
				}
				p.frame.setPixel(spriteX+xx, spriteY+yy, color)
			}
		}
	}
	return nil
}

// renderFrame renders the current VRAM and OAM state into the frame buffer.
// Rendering happens once per frame rather than dot by dot, which is accurate
// enough for games that only update VRAM during vblank.
func (p *PPU) renderFrame() (*Frame, error) {
	if err := p.renderBackground(); err != nil {
		return nil, err
	}
	if err := p.renderSprites(); err != nil {
		return nil, err
	}
	return p.frame, nil
}

func (p *PPU) String() string {
	return fmt.Sprintf("PPU: scanline=%d, cycle=%d, v=0x%04x, ctrl=0x%02x, mask=0x%02x", p.scanline, p.cycle, p.v, p.ctrl, p.mask)
}
