package nes

import "testing"

func newTestBus(t *testing.T) *CPUBus {
	t.Helper()
	cartridge := testCartridge(t, 0)
	ppu := NewPPU(NewPPUBus(NewRAM(), cartridge))
	return NewCPUBus(NewRAM(), ppu, cartridge, NewController())
}

func TestWRAMMirroring(t *testing.T) {
	b := newTestBus(t)
	if err := b.write(0x0000, 0x55); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, address := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		data, err := b.read(address)
		if err != nil {
			t.Fatalf("read 0x%04x: %v", address, err)
		}
		if data != 0x55 {
			t.Fatalf("read 0x%04x: got=0x%02x, want=0x55", address, data)
		}
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	b := newTestBus(t)
	// $3FF6 decodes to PPUADDR ($2006).
	if err := b.write(0x3FF6, 0x21); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := b.write(0x3FF6, 0x08); err != nil {
		t.Fatalf("write: %v", err)
	}
	if b.ppu.v != 0x2108 {
		t.Fatalf("ppu.v: got=0x%04x, want=0x2108", b.ppu.v)
	}
}

func TestROMWriteRejected(t *testing.T) {
	b := newTestBus(t)
	if err := b.write(0x8000, 0x01); err == nil {
		t.Fatal("expected error writing to PRG ROM, got nil")
	}
}

func TestPRGROMMirroring(t *testing.T) {
	cartridge := testCartridge(t, 0)
	cartridge.prgROM[0x0010] = 0x99
	ppu := NewPPU(NewPPUBus(NewRAM(), cartridge))
	b := NewCPUBus(NewRAM(), ppu, cartridge, NewController())
	// A single 16KB page appears at both 0x8000 and 0xC000.
	for _, address := range []uint16{0x8010, 0xC010} {
		data, err := b.read(address)
		if err != nil {
			t.Fatalf("read 0x%04x: %v", address, err)
		}
		if data != 0x99 {
			t.Fatalf("read 0x%04x: got=0x%02x, want=0x99", address, data)
		}
	}
}

func TestUnmappedReadsReturnZero(t *testing.T) {
	b := newTestBus(t)
	for _, address := range []uint16{0x4000, 0x4017, 0x5000, 0x7FFF} {
		data, err := b.read(address)
		if err != nil {
			t.Fatalf("read 0x%04x: %v", address, err)
		}
		if data != 0 {
			t.Fatalf("read 0x%04x: got=0x%02x, want=0x00", address, data)
		}
	}
}

func TestWriteOnlyPPURegisterReadsReturnZero(t *testing.T) {
	b := newTestBus(t)
	for _, address := range []uint16{0x2000, 0x2001, 0x2003, 0x2005, 0x2006} {
		data, err := b.read(address)
		if err != nil {
			t.Fatalf("read 0x%04x: %v", address, err)
		}
		if data != 0 {
			t.Fatalf("read 0x%04x: got=0x%02x, want=0x00", address, data)
		}
	}
}

func TestProgramReadingWriteOnlyRegister(t *testing.T) {
	// LDA #$FF; LDA $2000; BRK
	console := runProgram(t, []byte{0xA9, 0xFF, 0xAD, 0x00, 0x20, 0x00})
	if console.CPU.a != 0 {
		t.Fatalf("a: got=0x%02x, want=0x00", console.CPU.a)
	}
}

func TestRead16Wrap(t *testing.T) {
	b := newTestBus(t)
	// The pointer at 0x02FF reads its high byte from 0x0200, not 0x0300.
	if err := b.write(0x02FF, 0x34); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := b.write(0x0200, 0x12); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := b.write(0x0300, 0xFF); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := b.read16Wrap(0x02FF)
	if err != nil {
		t.Fatalf("read16Wrap: %v", err)
	}
	if data != 0x1234 {
		t.Fatalf("read16Wrap: got=0x%04x, want=0x1234", data)
	}
}

func TestOAMDMA(t *testing.T) {
	console := newTestConsole(t, []byte{0x00})
	cpu := console.CPU
	// Fill page 2 with a known pattern.
	for i := 0; i < 256; i++ {
		if err := cpu.bus.write(uint16(0x0200+i), byte(i)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := cpu.write(0x4014, 0x02); err != nil {
		t.Fatalf("DMA write: %v", err)
	}
	if cpu.bus.ppu.oamData[0] != 0 || cpu.bus.ppu.oamData[255] != 255 {
		t.Fatalf("oamData: got=[%d ... %d], want=[0 ... 255]",
			cpu.bus.ppu.oamData[0], cpu.bus.ppu.oamData[255])
	}
	if cpu.stall != 513 {
		t.Fatalf("stall: got=%d, want=513 on an even cycle", cpu.stall)
	}
	// Stalled steps burn one cycle each.
	cycles, err := cpu.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 1 || cpu.stall != 512 {
		t.Fatalf("after stall step: cycles=%d stall=%d, want 1 and 512", cycles, cpu.stall)
	}
}

func TestDMADirectBusWriteRejected(t *testing.T) {
	b := newTestBus(t)
	if err := b.write(0x4014, 0x02); err == nil {
		t.Fatal("expected error for $4014 write bypassing the CPU, got nil")
	}
}

func TestControllerOnBus(t *testing.T) {
	b := newTestBus(t)
	b.controller.Set([8]bool{true}) // A pressed
	if err := b.write(0x4016, 1); err != nil {
		t.Fatalf("strobe write: %v", err)
	}
	if err := b.write(0x4016, 0); err != nil {
		t.Fatalf("strobe write: %v", err)
	}
	data, err := b.read(0x4016)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if data != 1 {
		t.Fatalf("button A: got=%d, want=1", data)
	}
}
