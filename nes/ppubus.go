package nes

import "fmt"

type PPUBus struct {
	vram      *RAM
	cartridge *Cartridge
}

// NewPPUBus creates a new Bus for the PPU.
func NewPPUBus(vram *RAM, cartridge *Cartridge) *PPUBus {
	return &PPUBus{vram, cartridge}
}

// mirrorVRAMAddr folds the 4 logical nametables into the 2KB of physical
// VRAM according to the cartridge's mirroring mode.
// Reference: https://www.nesdev.org/wiki/Mirroring
func (b *PPUBus) mirrorVRAMAddr(address uint16) uint16 {
	// $3000-$3EFF mirrors $2000-$2EFF.
	a := (address & 0x2FFF) - 0x2000
	table := a / 0x400
	switch b.cartridge.getMirroringMode() {
	case vertical:
		if table == 2 || table == 3 {
			a -= 0x800
		}
	case horizontal:
		switch table {
		case 1, 2:
			a -= 0x400
		case 3:
			a -= 0x800
		}
	}
	return a % 0x800
}

// read reads data.
// Address        Size    Description
// -------------------------------------
// $0000-$0FFF    $1000   Pattern table 0
// $1000-$1FFF    $1000   Pattern table 1
// $2000-$23FF    $0400   Nametable 0
// $2400-$27FF    $0400   Nametable 1
// $2800-$2BFF    $0400   Nametable 2
// $2C00-$2FFF    $0400   Nametable 3
// $3000-$3EFF    $0F00   Mirrors of $2000-$2EFF
// Palette RAM lives inside the PPU, not on this bus.
// Reference: https://www.nesdev.org/wiki/PPU_memory_map
func (b *PPUBus) read(address uint16) (byte, error) {
	switch {
	case address < 0x2000:
		if int(address) < len(b.cartridge.chrROM) {
			return b.cartridge.chrROM[address], nil
		}
		return 0, fmt.Errorf("pattern table read out of CHR range: 0x%04x", address)
	case address < 0x3F00:
		return b.vram.read(b.mirrorVRAMAddr(address)), nil
	default:
		return 0, fmt.Errorf("unknown PPU bus read: 0x%04x", address)
	}
}

// write writes data.
// Reference: https://www.nesdev.org/wiki/PPU_memory_map
func (b *PPUBus) write(address uint16, data byte) error {
	switch {
	case address < 0x2000:
		return fmt.Errorf("writing data to pattern tables not allowed: address=0x%04x, data=0x%02x", address, data)
	case address < 0x3F00:
		b.vram.write(b.mirrorVRAMAddr(address), data)
	default:
		return fmt.Errorf("unknown PPU bus write: address=0x%04x, data=0x%02x", address, data)
	}
	return nil
}
