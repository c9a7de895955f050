package nes

import "testing"

// makeINES assembles a minimal iNES image in memory: 1 PRG page (16KB) and
// 1 CHR page (8KB) unless told otherwise.
func makeINES(flags6 byte, flags7 byte, withTrainer bool) []byte {
	header := []byte{'N', 'E', 'S', 0x1A, 1, 1, flags6, flags7, 0, 0, 0, 0, 0, 0, 0, 0}
	data := header
	if withTrainer {
		data = append(data, make([]byte, trainerSizeBytes)...)
	}
	data = append(data, make([]byte, prgROMPageSize)...)
	data = append(data, make([]byte, chrROMPageSize)...)
	return data
}

// testCartridge builds a cartridge with the given mirroring bit for PPU tests.
func testCartridge(t *testing.T, flags6 byte) *Cartridge {
	t.Helper()
	cartridge, err := NewCartridge(makeINES(flags6, 0, false))
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	return cartridge
}

func TestCartridgeRejectsBadMagic(t *testing.T) {
	data := makeINES(0, 0, false)
	data[3] = 0x00
	if _, err := NewCartridge(data); err == nil {
		t.Fatal("expected error for broken magic, got nil")
	}
}

func TestCartridgeRejectsNES20(t *testing.T) {
	// Flags 7 bits 2-3 = 2 marks a NES2.0 image.
	if _, err := NewCartridge(makeINES(0, 0b1000, false)); err == nil {
		t.Fatal("expected error for NES2.0 image, got nil")
	}
}

func TestCartridgeRejectsTruncated(t *testing.T) {
	data := makeINES(0, 0, false)
	if _, err := NewCartridge(data[:len(data)-1]); err == nil {
		t.Fatal("expected error for truncated image, got nil")
	}
}

func TestCartridgeMirroring(t *testing.T) {
	tests := []struct {
		flags6 byte
		want   mirroringMode
	}{
		{0b0000, horizontal},
		{0b0001, vertical},
		{0b1000, fourScreen},
		{0b1001, fourScreen}, // four screen wins over the vertical bit
	}
	for _, tt := range tests {
		cartridge := testCartridge(t, tt.flags6)
		if got := cartridge.getMirroringMode(); got != tt.want {
			t.Errorf("flags6=0b%04b: mirroring got=%d, want=%d", tt.flags6, got, tt.want)
		}
	}
}

func TestCartridgeMapperNumber(t *testing.T) {
	cartridge, err := NewCartridge(makeINES(0x40, 0x20, false))
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	// Low nibble from flags 6, high nibble from flags 7.
	if cartridge.mapper != 0x24 {
		t.Fatalf("mapper: got=0x%02x, want=0x24", cartridge.mapper)
	}
}

func TestCartridgeSkipsTrainer(t *testing.T) {
	data := makeINES(0b0100, 0, true)
	// Mark the first PRG byte so we can tell whether the trainer was skipped.
	data[inesHeaderSizeBytes+trainerSizeBytes] = 0xAB
	cartridge, err := NewCartridge(data)
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	if cartridge.prgROM[0] != 0xAB {
		t.Fatalf("prgROM[0]: got=0x%02x, want=0xAB", cartridge.prgROM[0])
	}
	if len(cartridge.prgROM) != prgROMPageSize {
		t.Fatalf("len(prgROM): got=%d, want=%d", len(cartridge.prgROM), prgROMPageSize)
	}
	if len(cartridge.chrROM) != chrROMPageSize {
		t.Fatalf("len(chrROM): got=%d, want=%d", len(cartridge.chrROM), chrROMPageSize)
	}
}
