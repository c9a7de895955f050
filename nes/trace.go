package nes

import (
	"fmt"
	"strings"
)

// debugRead reads a byte for trace output, swallowing bus errors. Tracing an
// instruction that targets a write-only register should not abort the trace.
func (c *CPU) debugRead(address uint16) byte {
	data, err := c.bus.read(address)
	if err != nil {
		return 0
	}
	return data
}

func (c *CPU) debugRead16(address uint16) uint16 {
	l := c.debugRead(address)
	h := c.debugRead(address + 1)
	return uint16(h)<<8 | uint16(l)
}

// Trace formats the instruction at the current program counter in the
// conventional golden-log layout:
//
//	C000  4C F4 C5  JMP $C5F4                       A:00 X:00 Y:00 P:24 SP:FD
//
// Unofficial opcodes carry a "*" prefix, pulling the mnemonic one column left.
func Trace(c *CPU) string {
	begin := c.pc
	opcode := c.debugRead(begin)
	in := c.instructions[opcode]

	raw := make([]string, 0, 3)
	for i := uint16(0); i < in.size; i++ {
		raw = append(raw, fmt.Sprintf("%02X", c.debugRead(begin+i)))
	}

	var operand string
	switch in.size {
	case 1:
		if in.mode == accumulator {
			operand = "A"
		}
	case 2:
		address := c.debugRead(begin + 1)
		switch in.mode {
		case immediate:
			operand = fmt.Sprintf("#$%02X", address)
		case zeropage:
			operand = fmt.Sprintf("$%02X = %02X", address, c.debugRead(uint16(address)))
		case zeropageX:
			target := uint16(address+c.x) & 0xFF
			operand = fmt.Sprintf("$%02X,X @ %02X = %02X", address, target, c.debugRead(target))
		case zeropageY:
			target := uint16(address+c.y) & 0xFF
			operand = fmt.Sprintf("$%02X,Y @ %02X = %02X", address, target, c.debugRead(target))
		case indirectX:
			pointer := address + c.x
			target, _ := c.bus.read16Wrap(uint16(pointer))
			operand = fmt.Sprintf("($%02X,X) @ %02X = %04X = %02X", address, pointer, target, c.debugRead(target))
		case indirectY:
			base, _ := c.bus.read16Wrap(uint16(address))
			target := base + uint16(c.y)
			operand = fmt.Sprintf("($%02X),Y = %04X @ %04X = %02X", address, base, target, c.debugRead(target))
		case relative:
			offset := uint16(address)
			if address < 0x80 {
				operand = fmt.Sprintf("$%04X", begin+2+offset)
			} else {
				operand = fmt.Sprintf("$%04X", begin+2+offset-0x100)
			}
		}
	case 3:
		address := c.debugRead16(begin + 1)
		switch in.mode {
		case absolute:
			// Jumps show just the target, loads and stores show the value too.
			if in.mnemonic == "JMP" || in.mnemonic == "JSR" {
				operand = fmt.Sprintf("$%04X", address)
			} else {
				operand = fmt.Sprintf("$%04X = %02X", address, c.debugRead(address))
			}
		case absoluteX:
			target := address + uint16(c.x)
			operand = fmt.Sprintf("$%04X,X @ %04X = %02X", address, target, c.debugRead(target))
		case absoluteY:
			target := address + uint16(c.y)
			operand = fmt.Sprintf("$%04X,Y @ %04X = %02X", address, target, c.debugRead(target))
		case indirect:
			target, _ := c.bus.read16Wrap(address)
			operand = fmt.Sprintf("($%04X) = %04X", address, target)
		}
	}

	asm := strings.TrimRight(fmt.Sprintf("%04X  %-8s %4s %s", begin, strings.Join(raw, " "), in.mnemonic, operand), " ")
	return fmt.Sprintf("%-47s A:%02X X:%02X Y:%02X P:%02X SP:%02X", asm, c.a, c.x, c.y, c.p.encode(), c.s)
}
