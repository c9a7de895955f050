package nes

import "errors"

// ErrQuit is returned by a FrameHandler to stop the run loop without an error,
// e.g. when the user closes the window.
var ErrQuit = errors.New("quit requested")

// FrameHandler receives every completed frame. Implementations present the
// frame and latch the current input state into the controller.
type FrameHandler interface {
	FrameReady(frame *Frame, controller *Controller) error
}

// Console wires the CPU, PPU, cartridge and controller together.
type Console struct {
	CPU        *CPU
	PPU        *PPU
	Controller *Controller
	bus        *CPUBus
}

// NewConsole builds a console around the given iNES image and resets it.
func NewConsole(buf []byte) (*Console, error) {
	cartridge, err := NewCartridge(buf)
	if err != nil {
		return nil, err
	}
	ppuBus := NewPPUBus(NewRAM(), cartridge)
	ppu := NewPPU(ppuBus)
	controller := NewController()
	cpuBus := NewCPUBus(NewRAM(), ppu, cartridge, controller)
	cpu := NewCPU(cpuBus)
	console := &Console{CPU: cpu, PPU: ppu, Controller: controller, bus: cpuBus}
	if err := console.Reset(); err != nil {
		return nil, err
	}
	return console, nil
}

// SetFrameHandler installs the host callback for completed frames.
func (c *Console) SetFrameHandler(handler FrameHandler) {
	c.bus.handler = handler
}

// Reset resets the CPU to the reset vector and clears the PPU state.
func (c *Console) Reset() error {
	c.PPU.Reset()
	return c.CPU.Reset()
}

// Step executes one CPU instruction and runs the PPU for the matching number
// of dots. It returns the consumed CPU cycles.
func (c *Console) Step() (int, error) {
	cycles, err := c.CPU.Step()
	if err != nil {
		return 0, err
	}
	if err := c.bus.tick(cycles); err != nil {
		return 0, err
	}
	if c.PPU.takeNMI() {
		c.CPU.nmiTriggered = true
	}
	return cycles, nil
}

// Run steps the console until the program executes a BRK or the frame
// handler asks to quit.
func (c *Console) Run() error {
	for !c.CPU.halted {
		if _, err := c.Step(); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
	}
	return nil
}
