package nes

import (
	"fmt"

	"github.com/golang/glog"
)

type CPUBus struct {
	wram       *RAM
	ppu        *PPU
	cartridge  *Cartridge
	controller *Controller
	handler    FrameHandler
}

// NewCPUBus creates a new Bus for the CPU.
// CPU memory map
// 0x0000 - 0x07FF	WRAM
// 0x0800 - 0x1FFF	WRAM Mirror
// 0x2000 - 0x2007	PPU Registers
// 0x2008 - 0x3FFF	PPU Registers Mirror
// 0x4000 - 0x401F	I/O Port
// 0x4020 - 0x7FFF	Unmapped (no APU, no extended RAM here)
// 0x8000 - 0xBFFF	ProgramROM Low
// 0xC000 - 0xFFFF	ProgramROM High
func NewCPUBus(wram *RAM, ppu *PPU, cartridge *Cartridge, controller *Controller) *CPUBus {
	return &CPUBus{wram: wram, ppu: ppu, cartridge: cartridge, controller: controller}
}

// writeOAMDMA writes a whole OAM page to the PPU, called by the CPU on $4014.
func (b *CPUBus) writeOAMDMA(data [256]byte) {
	b.ppu.writeOAMDMA(data)
}

// tick advances the PPU clock, which runs 3 dots per CPU cycle. When a frame
// completes it is rendered and handed to the frame handler along with the
// controller, so the host can present the image and latch fresh input.
func (b *CPUBus) tick(cpuCycles int) error {
	if !b.ppu.tick(cpuCycles * 3) {
		return nil
	}
	frame, err := b.ppu.renderFrame()
	if err != nil {
		return err
	}
	if b.handler == nil {
		return nil
	}
	return b.handler.FrameReady(frame, b.controller)
}

func (b *CPUBus) readPPURegister(address uint16) (byte, error) {
	switch address {
	case 0x2002:
		return b.ppu.readPPUSTATUS(), nil
	case 0x2004:
		return b.ppu.readOAMDATA(), nil
	case 0x2007:
		return b.ppu.readPPUDATA()
	default:
		// $2000/$2001/$2003/$2005/$2006 are write only, reads return 0.
		glog.Infof("Read from write-only PPU register: address=0x%04x\n", address)
		return 0, nil
	}
}

// read reads a byte.
func (b *CPUBus) read(address uint16) (byte, error) {
	switch {
	case address < 0x2000:
		return b.wram.read(address % 0x0800), nil
	case address < 0x4000:
		// PPU registers repeat every 8 bytes up to 0x3FFF.
		return b.readPPURegister(0x2000 + address%8)
	case address == 0x4016: // 1P
		return b.controller.read(), nil
	case address < 0x4020:
		glog.Infof("Unimplemented CPU bus read: address=0x%04x\n", address)
		return 0, nil
	case 0x8000 <= address:
		return b.cartridge.prgROM[int(address-0x8000)%len(b.cartridge.prgROM)], nil
	default:
		glog.Infof("CPU bus read from unmapped address: 0x%04x\n", address)
		return 0, nil
	}
}

// read16 reads 2 bytes, little endian.
func (b *CPUBus) read16(address uint16) (uint16, error) {
	l, err := b.read(address)
	if err != nil {
		return 0, err
	}
	h, err := b.read(address + 1)
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

// read16Wrap reads 2 bytes but the high byte read wraps inside the page,
// reproducing the 6502 indirect addressing bug. For a zero page pointer this
// is also the plain wrap at 0xFF.
func (b *CPUBus) read16Wrap(address uint16) (uint16, error) {
	l, err := b.read(address)
	if err != nil {
		return 0, err
	}
	h, err := b.read((address & 0xFF00) | uint16(byte(address)+1))
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

// writeToPPURegisters writes data to PPU registers.
func (b *CPUBus) writeToPPURegisters(address uint16, data byte) error {
	switch address {
	case 0x2000:
		b.ppu.writePPUCTRL(data)
	case 0x2001:
		b.ppu.writePPUMASK(data)
	case 0x2003:
		b.ppu.writeOAMADDR(data)
	case 0x2004:
		b.ppu.writeOAMDATA(data)
	case 0x2005:
		b.ppu.writePPUSCROLL(data)
	case 0x2006:
		b.ppu.writePPUADDR(data)
	case 0x2007:
		return b.ppu.writePPUDATA(data)
	default:
		// $2002 is read only.
		return fmt.Errorf("unknown PPU register write: address=0x%04x, data=0x%02x", address, data)
	}
	return nil
}

// write writes a byte.
func (b *CPUBus) write(address uint16, data byte) error {
	switch {
	case address < 0x2000:
		b.wram.write(address%0x0800, data)
	case address < 0x4000:
		return b.writeToPPURegisters(0x2000+address%8, data)
	case address == 0x4014:
		// Implemented on CPU, which needs to stall itself for the DMA.
		return fmt.Errorf("OAMDMA $4014 write must go through the CPU")
	case address == 0x4016: // 1P
		b.controller.write(data)
	case address < 0x4020:
		glog.Infof("Unimplemented CPU bus write: address=0x%04x, data=0x%02x\n", address, data)
	case 0x8000 <= address:
		return fmt.Errorf("writing data to PrgROM not allowed: address=0x%04x, data=0x%02x", address, data)
	default:
		glog.Infof("CPU bus write to unmapped address: address=0x%04x, data=0x%02x\n", address, data)
	}
	return nil
}
