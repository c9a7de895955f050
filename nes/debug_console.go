package nes

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DebugConsole wraps a Console with a stdio command loop.
// commands:
//   s:
//     execute step(s).
//   p:
//     print.
//   br:
//     set a break point.
//   q:
//     quit.
//   r:
//     reset.
type DebugConsole struct {
	*Console
	cycles      uint64
	breakpoints []uint16
	in          *bufio.Reader
}

func NewDebugConsole(console *Console) *DebugConsole {
	return &DebugConsole{Console: console, in: bufio.NewReader(os.Stdin)}
}

func (c *DebugConsole) step() (int, error) {
	cycles, err := c.Console.Step()
	c.cycles += uint64(cycles)
	return cycles, err
}

func (c *DebugConsole) printStack() {
	for i := 0; i < 256; i++ {
		idx := uint16(0x100 | i)
		data, _ := c.CPU.bus.read(idx)
		fmt.Printf("0x%04x: 0x%02x, ", idx, data)
		if i%16 == 15 {
			fmt.Println()
		}
	}
}

func (c *DebugConsole) basePrint() {
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Executed cycles: %d\n", c.cycles)
	fmt.Println("Last: " + c.CPU.lastExecution)
	fmt.Println("Next: " + Trace(c.CPU))
	fmt.Println(c.PPU.String())
}

func (c *DebugConsole) printCommand(args []string) {
	if len(args) < 2 {
		c.basePrint()
		return
	}
	switch args[1] {
	case "c", "cpu":
		fmt.Printf("%+v\n", *c.CPU)
	case "p", "ppu":
		fmt.Printf("%+v\n", *c.PPU)
	case "ca", "cartridge":
		fmt.Printf("%+v\n", *c.CPU.bus.cartridge)
	case "ct", "controller":
		fmt.Printf("%+v\n", *c.Controller)
	case "st", "stack":
		c.printStack()
	case "wr", "wram":
		fmt.Printf("%+v\n", *c.CPU.bus.wram)
	case "vr", "vram":
		fmt.Printf("%+v\n", *c.PPU.bus.vram)
	}
}

func (c *DebugConsole) checkBreak() bool {
	for i := 0; i < len(c.breakpoints); i++ {
		if c.breakpoints[i] == c.CPU.pc {
			fmt.Printf("Break at: 0x%04x\n", c.breakpoints[i])
			return true
		}
	}
	return false
}

func (c *DebugConsole) stepCommand(args []string) (int, error) {
	if len(args) < 2 {
		return c.step()
	}
	re := regexp.MustCompile("^([0-9]+)")
	if !re.MatchString(args[1]) {
		return 0, nil
	}
	num, _ := strconv.Atoi(re.FindString(args[1]))
	unit := args[1][len(args[1])-1]
	cycles := 0
	switch unit {
	case 's':
		// Runs num seconds worth of CPU cycles (about 60 frames per second).
		steps := CPUFrequency * num
		for cycles < steps {
			v, err := c.step()
			if err != nil {
				return cycles, err
			}
			cycles += v
			if c.checkBreak() {
				return cycles, nil
			}
		}
	case 't':
		// Steps with a trace line per instruction.
		for i := 0; i < num; i++ {
			fmt.Println(Trace(c.CPU))
			v, err := c.step()
			if err != nil {
				return cycles, err
			}
			cycles += v
			if c.checkBreak() {
				return cycles, nil
			}
		}
	default: // no unit -> plain steps
		for i := 0; i < num; i++ {
			v, err := c.step()
			if err != nil {
				return cycles, err
			}
			cycles += v
			if c.checkBreak() {
				return cycles, nil
			}
		}
	}
	return cycles, nil
}

func (c *DebugConsole) breakPointCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("breakpoint command needs an address")
	}
	var i int
	fmt.Sscanf(args[1], "0x%x\n", &i)
	c.breakpoints = append(c.breakpoints, uint16(i))
	return nil
}

// Step reads one command from stdin and executes it.
func (c *DebugConsole) Step() (int, error) {
	fmt.Printf("Debugger mode, 'q' to quit \n>> ")
	line, err := c.in.ReadString('\n')
	if err != nil {
		return 0, err
	}
	args := strings.Split(strings.TrimSuffix(line, "\n"), " ")
	switch args[0] {
	case "p", "print":
		c.printCommand(args)
	case "s", "step":
		cycles, err := c.stepCommand(args)
		c.basePrint()
		if err != nil {
			return cycles, err
		}
		fmt.Printf("Executed %d CPU cycles, %d PPU cycles.\n", cycles, 3*cycles)
		return cycles, nil
	case "br", "breakpoint":
		if err := c.breakPointCommand(args); err != nil {
			return 0, err
		}
	case "r", "reset":
		if err := c.Reset(); err != nil {
			return 0, err
		}
	case "q", "quit":
		fmt.Println("Quitting.")
		os.Exit(0)
	default:
		return 0, fmt.Errorf("unknown command %s", line)
	}
	// step command was not executed.
	return 0, nil
}
