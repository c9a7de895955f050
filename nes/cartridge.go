package nes

import "fmt"

const (
	prgROMPageSize      = 0x4000 // 16KB
	chrROMPageSize      = 0x2000 // 8KB
	inesHeaderSizeBytes = 16
	trainerSizeBytes    = 512
	msDOSEOF            = byte(0x1A)
)

type mirroringMode int

const (
	horizontal mirroringMode = iota
	vertical
	fourScreen
)

// Cartridge holds the program and character data parsed from an iNES image.
// Reference: https://www.nesdev.org/wiki/INES
type Cartridge struct {
	prgROM    []byte
	chrROM    []byte
	mapper    byte
	mirroring mirroringMode
}

// isValid checks whether the buffer starts with the iNES magic tag.
func isValid(data []byte) bool {
	return len(data) >= inesHeaderSizeBytes &&
		data[0] == byte('N') &&
		data[1] == byte('E') &&
		data[2] == byte('S') &&
		data[3] == msDOSEOF
}

// NewCartridge parses an iNES image. The returned cartridge is immutable.
func NewCartridge(data []byte) (*Cartridge, error) {
	if !isValid(data) {
		return nil, fmt.Errorf("the buffer is not a valid iNES image")
	}
	if (data[7]>>2)&0b11 != 0 {
		return nil, fmt.Errorf("NES2.0 format is not supported")
	}
	c := &Cartridge{
		mapper: (data[7] & 0xF0) | (data[6] >> 4),
	}
	switch {
	case data[6]&0b1000 != 0:
		c.mirroring = fourScreen
	case data[6]&0b0001 != 0:
		c.mirroring = vertical
	default:
		c.mirroring = horizontal
	}
	prgSize := int(data[4]) * prgROMPageSize
	chrSize := int(data[5]) * chrROMPageSize
	prgStart := inesHeaderSizeBytes
	if data[6]&0b100 != 0 { // trainer block precedes PRG data
		prgStart += trainerSizeBytes
	}
	chrStart := prgStart + prgSize
	if len(data) < chrStart+chrSize {
		return nil, fmt.Errorf("iNES image truncated: want %d bytes, got %d", chrStart+chrSize, len(data))
	}
	c.prgROM = data[prgStart:chrStart]
	c.chrROM = data[chrStart : chrStart+chrSize]
	return c, nil
}

func (c *Cartridge) getMirroringMode() mirroringMode {
	return c.mirroring
}
