package nes

import "fmt"

// CPU emulates the NES CPU - a custom 6502 made by RICOH.
// References:
//   https://en.wikipedia.org/wiki/MOS_Technology_6502
//   http://www.6502.org/tutorials/6502opcodes.html
//   https://www.nesdev.org/wiki/CPU_unofficial_opcodes

const CPUFrequency = 1789773

type status struct {
	c bool // carry
	z bool // zero
	i bool // IRQ
	d bool // decimal - unused on NES
	b bool // break
	r bool // reserved - always reads back as 1
	v bool // overflow
	n bool // negative
}

// encode encodes the status to a byte.
func (s *status) encode() byte {
	var res byte
	if s.c {
		res |= (1 << 0)
	}
	if s.z {
		res |= (1 << 1)
	}
	if s.i {
		res |= (1 << 2)
	}
	if s.d {
		res |= (1 << 3)
	}
	if s.b {
		res |= (1 << 4)
	}
	if s.r {
		res |= (1 << 5)
	}
	if s.v {
		res |= (1 << 6)
	}
	if s.n {
		res |= (1 << 7)
	}
	return res
}

// decodeFrom decodes a byte to the status.
func (s *status) decodeFrom(data byte) {
	s.c = (data>>0)&1 == 1
	s.z = (data>>1)&1 == 1
	s.i = (data>>2)&1 == 1
	s.d = (data>>3)&1 == 1
	s.b = (data>>4)&1 == 1
	s.r = (data>>5)&1 == 1
	s.v = (data>>6)&1 == 1
	s.n = (data>>7)&1 == 1
}

type CPU struct {
	p             *status // Processor status flag bits
	a             byte    // Accumulator register
	x             byte    // Index register
	y             byte    // Index register
	pc            uint16  // Program counter
	s             byte    // Stack pointer
	lastExecution string  // For debug
	stall         uint64  // Stall cycles
	cycles        uint64  // Total cycles executed, drives DMA alignment
	halted        bool    // Set when a BRK has been executed
	bus           *CPUBus
	instructions  []instruction
	nmiTriggered  bool
}

func NewCPU(bus *CPUBus) *CPU {
	c := &CPU{p: &status{}, bus: bus}
	c.instructions = c.createInstructions()
	return c
}

// Reset initializes the register state and jumps to the reset vector.
func (c *CPU) Reset() error {
	data, err := c.bus.read16(0xFFFC)
	if err != nil {
		return err
	}
	c.pc = data
	c.s = 0xFD
	c.p.decodeFrom(0x24)
	c.halted = false
	c.stall = 0
	c.nmiTriggered = false
	return nil
}

// write is for wrapping c.bus.write, because writing OAMDMA stalls the CPU.
func (c *CPU) write(address uint16, data byte) error {
	// OAMDMA
	if address == 0x4014 {
		oamData := [256]byte{}
		offset := uint16(data) << 8
		for i := 0; i < 256; i++ {
			d, err := c.bus.read(offset + uint16(i))
			if err != nil {
				return err
			}
			oamData[i] = d
		}
		c.bus.writeOAMDMA(oamData)
		// 513 cycles, plus 1 more if the DMA started on an odd cycle.
		c.stall += 513 + (c.cycles & 1)
		return nil
	}
	return c.bus.write(address, data)
}

// setN sets whether the x is negative or positive.
func (c *CPU) setN(x byte) {
	c.p.n = x&0x80 != 0
}

// setZ sets whether the x is 0 or not.
func (c *CPU) setZ(x byte) {
	c.p.z = x == 0
}

// push pushes data to stack.
// "With the 6502, the stack is always on page one ($100-$1FF) and works top down."
func (c *CPU) push(x byte) error {
	if err := c.write((0x100 | (uint16(c.s) & 0xFF)), x); err != nil {
		return err
	}
	c.s--
	return nil
}

// pop pops data from stack.
func (c *CPU) pop() (byte, error) {
	c.s++
	return c.bus.read((0x100 | (uint16(c.s) & 0xFF)))
}

// addToA adds data and the carry into the accumulator, shared between the
// official ADC/SBC pair and the read-modify-write combos built on them.
func (c *CPU) addToA(data byte) {
	x := uint16(c.a)
	y := uint16(data)
	var carry uint16 = 0
	if c.p.c {
		carry = 1
	}
	res := x + y + carry
	c.p.c = res > 0xFF
	// Overflow happens when both inputs share a sign the result doesn't.
	c.p.v = (x^y)&0x80 == 0 && (x^res)&0x80 != 0
	c.a = byte(res)
	c.setN(c.a)
	c.setZ(c.a)
}

// compare subtracts data from the given register and sets C, Z and N.
func (c *CPU) compare(register byte, data byte) {
	c.p.c = data <= register
	x := register - data
	c.setN(x)
	c.setZ(x)
}

// ADC - Add with Carry.
func (c *CPU) adc(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.addToA(data)
	return nil
}

// AND - And.
func (c *CPU) and(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.a = c.a & data
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// ASL - Arithmetic Shift Left.
func (c *CPU) asl(mode addressingMode, operand uint16) error {
	if mode == accumulator {
		c.p.c = (c.a>>7)&1 == 1
		c.a <<= 1
		c.setN(c.a)
		c.setZ(c.a)
	} else {
		x, err := c.bus.read(operand)
		if err != nil {
			return err
		}
		c.p.c = (x>>7)&1 == 1
		x <<= 1
		if err := c.write(operand, x); err != nil {
			return err
		}
		c.setN(x)
		c.setZ(x)
	}
	return nil
}

// BCC - Branch on Carry Clear.
func (c *CPU) bcc(mode addressingMode, operand uint16) error {
	if !c.p.c {
		c.pc = operand
	}
	return nil
}

// BCS - Branch on Carry Set.
func (c *CPU) bcs(mode addressingMode, operand uint16) error {
	if c.p.c {
		c.pc = operand
	}
	return nil
}

// BEQ - Branch on Equal.
func (c *CPU) beq(mode addressingMode, operand uint16) error {
	if c.p.z {
		c.pc = operand
	}
	return nil
}

// BIT - Test bits.
func (c *CPU) bit(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.setZ(c.a & data)
	c.p.v = (data>>6)&1 == 1
	c.setN(data)
	return nil
}

// BMI - Branch on Minus.
func (c *CPU) bmi(mode addressingMode, operand uint16) error {
	if c.p.n {
		c.pc = operand
	}
	return nil
}

// BNE - Branch on Not Equal.
func (c *CPU) bne(mode addressingMode, operand uint16) error {
	if !c.p.z {
		c.pc = operand
	}
	return nil
}

// BPL - Branch on Plus.
func (c *CPU) bpl(mode addressingMode, operand uint16) error {
	if !c.p.n {
		c.pc = operand
	}
	return nil
}

// BRK - Break. Stops the stepping loop, which is how programs signal they
// are done. Games never execute this from valid code paths.
func (c *CPU) brk(mode addressingMode, operand uint16) error {
	c.halted = true
	return nil
}

// BVC - Branch on Overflow Clear.
func (c *CPU) bvc(mode addressingMode, operand uint16) error {
	if !c.p.v {
		c.pc = operand
	}
	return nil
}

// BVS - Branch on Overflow Set.
func (c *CPU) bvs(mode addressingMode, operand uint16) error {
	if c.p.v {
		c.pc = operand
	}
	return nil
}

// CLC - Clear Carry.
func (c *CPU) clc(mode addressingMode, operand uint16) error {
	c.p.c = false
	return nil
}

// CLD - Clear Decimal.
func (c *CPU) cld(mode addressingMode, operand uint16) error {
	c.p.d = false
	return nil
}

// CLI - Clear Interrupt disable.
func (c *CPU) cli(mode addressingMode, operand uint16) error {
	c.p.i = false
	return nil
}

// CLV - Clear Overflow.
func (c *CPU) clv(mode addressingMode, operand uint16) error {
	c.p.v = false
	return nil
}

// CMP - Compare Accumulator.
func (c *CPU) cmp(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.compare(c.a, data)
	return nil
}

// CPX - Compare X register.
func (c *CPU) cpx(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.compare(c.x, data)
	return nil
}

// CPY - Compare Y register.
func (c *CPU) cpy(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.compare(c.y, data)
	return nil
}

// DEC - Decrement Memory.
func (c *CPU) dec(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	x := data - 1
	if err := c.write(operand, x); err != nil {
		return err
	}
	c.setN(x)
	c.setZ(x)
	return nil
}

// DEX - Decrement X Register.
func (c *CPU) dex(mode addressingMode, operand uint16) error {
	c.x--
	c.setN(c.x)
	c.setZ(c.x)
	return nil
}

// DEY - Decrement Y Register.
func (c *CPU) dey(mode addressingMode, operand uint16) error {
	c.y--
	c.setN(c.y)
	c.setZ(c.y)
	return nil
}

// EOR - Bitwise Exclusive OR.
func (c *CPU) eor(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.a = c.a ^ data
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// INC - Increment Memory.
func (c *CPU) inc(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	x := data + 1
	if err := c.write(operand, x); err != nil {
		return err
	}
	c.setN(x)
	c.setZ(x)
	return nil
}

// INX - Increment X Register.
func (c *CPU) inx(mode addressingMode, operand uint16) error {
	c.x++
	c.setN(c.x)
	c.setZ(c.x)
	return nil
}

// INY - Increment Y Register.
func (c *CPU) iny(mode addressingMode, operand uint16) error {
	c.y++
	c.setN(c.y)
	c.setZ(c.y)
	return nil
}

// JMP - Jump.
func (c *CPU) jmp(mode addressingMode, operand uint16) error {
	c.pc = operand
	return nil
}

// JSR - Jump to Subroutine.
func (c *CPU) jsr(mode addressingMode, operand uint16) error {
	x := c.pc - 1
	if err := c.push(byte(x>>8) & 0xFF); err != nil {
		return err
	}
	if err := c.push(byte(x & 0xFF)); err != nil {
		return err
	}
	c.pc = operand
	return nil
}

// LDA - Load Accumulator.
func (c *CPU) lda(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.a = data
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// LDX - Load X Register.
func (c *CPU) ldx(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.x = data
	c.setN(c.x)
	c.setZ(c.x)
	return nil
}

// LDY - Load Y Register.
func (c *CPU) ldy(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.y = data
	c.setN(c.y)
	c.setZ(c.y)
	return nil
}

// LSR - Logical Shift Right.
func (c *CPU) lsr(mode addressingMode, operand uint16) error {
	if mode == accumulator {
		c.p.c = c.a&1 == 1
		c.a >>= 1
		c.setN(c.a)
		c.setZ(c.a)
	} else {
		x, err := c.bus.read(operand)
		if err != nil {
			return err
		}
		c.p.c = x&1 == 1
		x >>= 1
		if err := c.write(operand, x); err != nil {
			return err
		}
		c.setN(x)
		c.setZ(x)
	}
	return nil
}

// NOP - No operation. Also covers the multi-byte unofficial NOPs, whose
// dummy operand reads have no observable effect here.
func (c *CPU) nop(mode addressingMode, operand uint16) error {
	return nil
}

// ORA - Bitwise OR with Accumulator.
func (c *CPU) ora(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.a = c.a | data
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// PHA - Push Accumulator.
func (c *CPU) pha(mode addressingMode, operand uint16) error {
	return c.push(c.a)
}

// PHP - Push Processor Status. The pushed copy always has the break and
// reserved bits set.
func (c *CPU) php(mode addressingMode, operand uint16) error {
	return c.push(c.p.encode() | 0x30)
}

// PLA - Pull Accumulator.
func (c *CPU) pla(mode addressingMode, operand uint16) error {
	data, err := c.pop()
	if err != nil {
		return err
	}
	c.a = data
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// PLP - Pull Processor Status. The break bit is discarded and the reserved
// bit stays set, matching hardware.
func (c *CPU) plp(mode addressingMode, operand uint16) error {
	data, err := c.pop()
	if err != nil {
		return err
	}
	c.p.decodeFrom(data)
	c.p.b = false
	c.p.r = true
	return nil
}

// ROL - Rotate Left.
func (c *CPU) rol(mode addressingMode, operand uint16) error {
	var carry byte = 0
	if c.p.c {
		carry = 1
	}
	if mode == accumulator {
		c.p.c = (c.a>>7)&1 == 1
		c.a = (c.a << 1) | carry
		c.setN(c.a)
		c.setZ(c.a)
	} else {
		x, err := c.bus.read(operand)
		if err != nil {
			return err
		}
		c.p.c = (x>>7)&1 == 1
		x = (x << 1) | carry
		if err := c.write(operand, x); err != nil {
			return err
		}
		c.setN(x)
		c.setZ(x)
	}
	return nil
}

// ROR - Rotate Right.
func (c *CPU) ror(mode addressingMode, operand uint16) error {
	var carry byte = 0
	if c.p.c {
		carry = 1
	}
	if mode == accumulator {
		c.p.c = c.a&1 == 1
		c.a = (c.a >> 1) | (carry << 7)
		c.setN(c.a)
		c.setZ(c.a)
	} else {
		x, err := c.bus.read(operand)
		if err != nil {
			return err
		}
		c.p.c = x&1 == 1
		x = (x >> 1) | (carry << 7)
		if err := c.write(operand, x); err != nil {
			return err
		}
		c.setN(x)
		c.setZ(x)
	}
	return nil
}

// RTS - Return from Subroutine.
func (c *CPU) rts(mode addressingMode, operand uint16) error {
	l, err := c.pop()
	if err != nil {
		return err
	}
	h, err := c.pop()
	if err != nil {
		return err
	}
	c.pc = (uint16(h)<<8 | uint16(l)) + 1
	return nil
}

// RTI - Return from Interrupt.
func (c *CPU) rti(mode addressingMode, operand uint16) error {
	p, err := c.pop()
	if err != nil {
		return err
	}
	c.p.decodeFrom(p)
	c.p.b = false
	c.p.r = true
	l, err := c.pop()
	if err != nil {
		return err
	}
	h, err := c.pop()
	if err != nil {
		return err
	}
	c.pc = uint16(h)<<8 | uint16(l)
	return nil
}

// SBC - Subtract with carry. On the 6502 this is an add of the operand's
// one's complement.
func (c *CPU) sbc(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.addToA(^data)
	return nil
}

// SEC - Set Carry.
func (c *CPU) sec(mode addressingMode, operand uint16) error {
	c.p.c = true
	return nil
}

// SED - Set Decimal.
func (c *CPU) sed(mode addressingMode, operand uint16) error {
	c.p.d = true
	return nil
}

// SEI - Set Interrupt disable.
func (c *CPU) sei(mode addressingMode, operand uint16) error {
	c.p.i = true
	return nil
}

// STA - Store Accumulator.
func (c *CPU) sta(mode addressingMode, operand uint16) error {
	return c.write(operand, c.a)
}

// STX - Store X Register.
func (c *CPU) stx(mode addressingMode, operand uint16) error {
	return c.write(operand, c.x)
}

// STY - Store Y Register.
func (c *CPU) sty(mode addressingMode, operand uint16) error {
	return c.write(operand, c.y)
}

// TAX - Transfer A to X.
func (c *CPU) tax(mode addressingMode, operand uint16) error {
	c.x = c.a
	c.setN(c.x)
	c.setZ(c.x)
	return nil
}

// TAY - Transfer A to Y.
func (c *CPU) tay(mode addressingMode, operand uint16) error {
	c.y = c.a
	c.setN(c.y)
	c.setZ(c.y)
	return nil
}

// TSX - Transfer Stack pointer to X.
func (c *CPU) tsx(mode addressingMode, operand uint16) error {
	c.x = c.s
	c.setN(c.x)
	c.setZ(c.x)
	return nil
}

// TXA - Transfer X to A.
func (c *CPU) txa(mode addressingMode, operand uint16) error {
	c.a = c.x
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// TXS - Transfer X to Stack pointer.
func (c *CPU) txs(mode addressingMode, operand uint16) error {
	c.s = c.x
	return nil
}

// TYA - Transfer Y to A.
func (c *CPU) tya(mode addressingMode, operand uint16) error {
	c.a = c.y
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// SLO - Shift Left then OR.
func (c *CPU) slo(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.p.c = (data>>7)&1 == 1
	data <<= 1
	if err := c.write(operand, data); err != nil {
		return err
	}
	c.a = c.a | data
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// RLA - Rotate Left then AND.
func (c *CPU) rla(mode addressingMode, operand uint16) error {
	var carry byte = 0
	if c.p.c {
		carry = 1
	}
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.p.c = (data>>7)&1 == 1
	data = (data << 1) | carry
	if err := c.write(operand, data); err != nil {
		return err
	}
	c.a = c.a & data
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// SRE - Shift Right then EOR.
func (c *CPU) sre(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.p.c = data&1 == 1
	data >>= 1
	if err := c.write(operand, data); err != nil {
		return err
	}
	c.a = c.a ^ data
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// RRA - Rotate Right then Add with Carry.
func (c *CPU) rra(mode addressingMode, operand uint16) error {
	var carry byte = 0
	if c.p.c {
		carry = 1
	}
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.p.c = data&1 == 1
	data = (data >> 1) | (carry << 7)
	if err := c.write(operand, data); err != nil {
		return err
	}
	c.addToA(data)
	return nil
}

// SAX - Store A AND X. Does not touch any flags.
func (c *CPU) sax(mode addressingMode, operand uint16) error {
	return c.write(operand, c.a&c.x)
}

// LAX - Load A and X together.
func (c *CPU) lax(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.a = data
	c.x = data
	c.setN(data)
	c.setZ(data)
	return nil
}

// DCP - Decrement then Compare.
func (c *CPU) dcp(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	data--
	if err := c.write(operand, data); err != nil {
		return err
	}
	c.compare(c.a, data)
	return nil
}

// ISB - Increment then Subtract with Carry. Also known as ISC.
func (c *CPU) isb(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	data++
	if err := c.write(operand, data); err != nil {
		return err
	}
	c.addToA(^data)
	return nil
}

// ANC - AND then copy N into C.
func (c *CPU) anc(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.a = c.a & data
	c.setN(c.a)
	c.setZ(c.a)
	c.p.c = c.p.n
	return nil
}

// ALR - AND then Logical Shift Right of A.
func (c *CPU) alr(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.a = c.a & data
	c.p.c = c.a&1 == 1
	c.a >>= 1
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// ARR - AND then Rotate Right of A, with C and V derived from the result.
func (c *CPU) arr(mode addressingMode, operand uint16) error {
	var carry byte = 0
	if c.p.c {
		carry = 1
	}
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.a = ((c.a & data) >> 1) | (carry << 7)
	c.setN(c.a)
	c.setZ(c.a)
	c.p.c = (c.a>>6)&1 == 1
	c.p.v = ((c.a>>6)^(c.a>>5))&1 == 1
	return nil
}

// XAA - Transfer X to A then AND. Highly unstable on hardware, implemented
// as the stable subset.
func (c *CPU) xaa(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.a = c.x & data
	c.setN(c.a)
	c.setZ(c.a)
	return nil
}

// AXS - A AND X minus operand into X. Also known as SBX.
func (c *CPU) axs(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	t := c.a & c.x
	c.p.c = data <= t
	c.x = t - data
	c.setN(c.x)
	c.setZ(c.x)
	return nil
}

// LXA - Load A and X. Unstable on hardware, implemented as LDA then TAX.
func (c *CPU) lxa(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	c.a = data
	c.x = data
	c.setN(data)
	c.setZ(data)
	return nil
}

// LAS - Load A, X and S from memory AND S.
func (c *CPU) las(mode addressingMode, operand uint16) error {
	data, err := c.bus.read(operand)
	if err != nil {
		return err
	}
	data &= c.s
	c.a = data
	c.x = data
	c.s = data
	c.setN(data)
	c.setZ(data)
	return nil
}

// TAS - Store A AND X into S, then write S AND the high address byte plus 1.
func (c *CPU) tas(mode addressingMode, operand uint16) error {
	c.s = c.a & c.x
	return c.write(operand, c.s&(byte(operand>>8)+1))
}

// AHX - Store A AND X AND the high address byte plus 1. Also known as SHA.
func (c *CPU) ahx(mode addressingMode, operand uint16) error {
	return c.write(operand, c.a&c.x&(byte(operand>>8)+1))
}

// SHX - Store X AND the high address byte plus 1.
func (c *CPU) shx(mode addressingMode, operand uint16) error {
	return c.write(operand, c.x&(byte(operand>>8)+1))
}

// SHY - Store Y AND the high address byte plus 1.
func (c *CPU) shy(mode addressingMode, operand uint16) error {
	return c.write(operand, c.y&(byte(operand>>8)+1))
}

// nmi services a pending non-maskable interrupt: the return address and the
// status (break bit clear, reserved bit set) go on the stack, then execution
// continues from the NMI vector.
func (c *CPU) nmi() error {
	if err := c.push(byte(c.pc>>8) & 0xFF); err != nil {
		return err
	}
	if err := c.push(byte(c.pc & 0xFF)); err != nil {
		return err
	}
	if err := c.push((c.p.encode() | 0x20) &^ 0x10); err != nil {
		return err
	}
	c.p.i = true
	data, err := c.bus.read16(0xFFFA)
	if err != nil {
		return err
	}
	c.pc = data
	return nil
}

// Step performs the instruction cycle - fetch, decode, execute - and returns
// how many CPU cycles it consumed.
func (c *CPU) Step() (int, error) {
	if c.halted {
		return 0, nil
	}
	// Running stall cycles (OAMDMA keeps the CPU off the bus).
	if 0 < c.stall {
		c.stall--
		c.cycles++
		c.lastExecution = fmt.Sprintf("CPU stall, PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x", c.pc, c.a, c.x, c.y, c.s)
		return 1, nil
	}
	// Non-maskable interrupt.
	if c.nmiTriggered {
		if err := c.nmi(); err != nil {
			return 0, err
		}
		c.nmiTriggered = false
		c.cycles += 7
		c.lastExecution = fmt.Sprintf("NMI, PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x", c.pc, c.a, c.x, c.y, c.s)
		return 7, nil
	}
	opcode, err := c.bus.read(c.pc)
	if err != nil {
		return 0, err
	}
	instruction := c.instructions[opcode]
	operand, err := c.resolveOperand(instruction.mode)
	if err != nil {
		return 0, err
	}
	c.pc += instruction.size
	// Save debug string.
	c.lastExecution = fmt.Sprintf("PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x, opcode=0x%02x, mnemonic=%s, operand: 0x%04x",
		c.pc, c.a, c.x, c.y, c.s, opcode, instruction.mnemonic, operand)
	if err := instruction.execute(instruction.mode, operand); err != nil {
		return 0, err
	}
	c.cycles += uint64(instruction.cycles)
	return instruction.cycles, nil
}

// resolveOperand computes the effective address for the instruction at pc.
func (c *CPU) resolveOperand(mode addressingMode) (uint16, error) {
	switch mode {
	case implied, accumulator:
		return 0, nil
	case immediate:
		return c.pc + 1, nil
	case zeropage:
		data, err := c.bus.read(c.pc + 1)
		if err != nil {
			return 0, err
		}
		return uint16(data), nil
	case zeropageX:
		data, err := c.bus.read(c.pc + 1)
		if err != nil {
			return 0, err
		}
		// If the address exceeds 0xFF, back to 0x00.
		return uint16(data+c.x) & 0xFF, nil
	case zeropageY:
		data, err := c.bus.read(c.pc + 1)
		if err != nil {
			return 0, err
		}
		return uint16(data+c.y) & 0xFF, nil
	case relative:
		address, err := c.bus.read(c.pc + 1)
		if err != nil {
			return 0, err
		}
		// The offset is signed, 2 accounts for the instruction bytes.
		if address < 0x80 {
			return c.pc + 2 + uint16(address), nil
		}
		return c.pc + 2 + uint16(address) - 0x100, nil
	case absolute:
		return c.bus.read16(c.pc + 1)
	case absoluteX:
		data, err := c.bus.read16(c.pc + 1)
		if err != nil {
			return 0, err
		}
		return data + uint16(c.x), nil
	case absoluteY:
		data, err := c.bus.read16(c.pc + 1)
		if err != nil {
			return 0, err
		}
		return data + uint16(c.y), nil
	case indirect:
		p, err := c.bus.read16(c.pc + 1)
		if err != nil {
			return 0, err
		}
		// 6502 bug: the pointer high byte read does not cross pages.
		return c.bus.read16Wrap(p)
	case indirectX:
		p, err := c.bus.read(c.pc + 1)
		if err != nil {
			return 0, err
		}
		return c.bus.read16Wrap(uint16(p + c.x))
	case indirectY:
		p, err := c.bus.read(c.pc + 1)
		if err != nil {
			return 0, err
		}
		data, err := c.bus.read16Wrap(uint16(p))
		if err != nil {
			return 0, err
		}
		return data + uint16(c.y), nil
	}
	return 0, fmt.Errorf("unknown addressing mode: %d", mode)
}
