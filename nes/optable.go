package nes

type addressingMode int

const (
	implied addressingMode = iota
	accumulator
	immediate
	zeropage
	zeropageX
	zeropageY
	relative
	absolute
	absoluteX
	absoluteY
	indirect
	indirectX
	indirectY
)

// instruction is one immutable descriptor-table entry: how to decode, time
// and execute a single opcode value.
type instruction struct {
	mnemonic string
	mode     addressingMode
	execute  func(addressingMode, uint16) error
	size     uint16
	cycles   int
}

// createInstructions builds the descriptor table, indexed by opcode value.
// All 256 opcodes are mapped, including the community-documented unofficial
// set (marked with a leading "*", the convention used by nestest logs).
// Cycle counts follow https://www.nesdev.org/wiki/CPU_unofficial_opcodes for
// the entries older references only guessed at.
func (c *CPU) createInstructions() []instruction {
	return []instruction{
		{"BRK", implied, c.brk, 1, 7},      // 0x00
		{"ORA", indirectX, c.ora, 2, 6},    // 0x01
		{"*NOP", implied, c.nop, 1, 2},     // 0x02
		{"*SLO", indirectX, c.slo, 2, 8},   // 0x03
		{"*NOP", zeropage, c.nop, 2, 3},    // 0x04
		{"ORA", zeropage, c.ora, 2, 3},     // 0x05
		{"ASL", zeropage, c.asl, 2, 5},     // 0x06
		{"*SLO", zeropage, c.slo, 2, 5},    // 0x07
		{"PHP", implied, c.php, 1, 3},      // 0x08
		{"ORA", immediate, c.ora, 2, 2},    // 0x09
		{"ASL", accumulator, c.asl, 1, 2},  // 0x0A
		{"*ANC", immediate, c.anc, 2, 2},   // 0x0B
		{"*NOP", absolute, c.nop, 3, 4},    // 0x0C
		{"ORA", absolute, c.ora, 3, 4},     // 0x0D
		{"ASL", absolute, c.asl, 3, 6},     // 0x0E
		{"*SLO", absolute, c.slo, 3, 6},    // 0x0F
		{"BPL", relative, c.bpl, 2, 2},     // 0x10
		{"ORA", indirectY, c.ora, 2, 5},    // 0x11
		{"*NOP", implied, c.nop, 1, 2},     // 0x12
		{"*SLO", indirectY, c.slo, 2, 8},   // 0x13
		{"*NOP", zeropageX, c.nop, 2, 4},   // 0x14
		{"ORA", zeropageX, c.ora, 2, 4},    // 0x15
		{"ASL", zeropageX, c.asl, 2, 6},    // 0x16
		{"*SLO", zeropageX, c.slo, 2, 6},   // 0x17
		{"CLC", implied, c.clc, 1, 2},      // 0x18
		{"ORA", absoluteY, c.ora, 3, 4},    // 0x19
		{"*NOP", implied, c.nop, 1, 2},     // 0x1A
		{"*SLO", absoluteY, c.slo, 3, 7},   // 0x1B
		{"*NOP", absoluteX, c.nop, 3, 4},   // 0x1C
		{"ORA", absoluteX, c.ora, 3, 4},    // 0x1D
		{"ASL", absoluteX, c.asl, 3, 7},    // 0x1E
		{"*SLO", absoluteX, c.slo, 3, 7},   // 0x1F
		{"JSR", absolute, c.jsr, 3, 6},     // 0x20
		{"AND", indirectX, c.and, 2, 6},    // 0x21
		{"*NOP", implied, c.nop, 1, 2},     // 0x22
		{"*RLA", indirectX, c.rla, 2, 8},   // 0x23
		{"BIT", zeropage, c.bit, 2, 3},     // 0x24
		{"AND", zeropage, c.and, 2, 3},     // 0x25
		{"ROL", zeropage, c.rol, 2, 5},     // 0x26
		{"*RLA", zeropage, c.rla, 2, 5},    // 0x27
		{"PLP", implied, c.plp, 1, 4},      // 0x28
		{"AND", immediate, c.and, 2, 2},    // 0x29
		{"ROL", accumulator, c.rol, 1, 2},  // 0x2A
		{"*ANC", immediate, c.anc, 2, 2},   // 0x2B
		{"BIT", absolute, c.bit, 3, 4},     // 0x2C
		{"AND", absolute, c.and, 3, 4},     // 0x2D
		{"ROL", absolute, c.rol, 3, 6},     // 0x2E
		{"*RLA", absolute, c.rla, 3, 6},    // 0x2F
		{"BMI", relative, c.bmi, 2, 2},     // 0x30
		{"AND", indirectY, c.and, 2, 5},    // 0x31
		{"*NOP", implied, c.nop, 1, 2},     // 0x32
		{"*RLA", indirectY, c.rla, 2, 8},   // 0x33
		{"*NOP", zeropageX, c.nop, 2, 4},   // 0x34
		{"AND", zeropageX, c.and, 2, 4},    // 0x35
		{"ROL", zeropageX, c.rol, 2, 6},    // 0x36
		{"*RLA", zeropageX, c.rla, 2, 6},   // 0x37
		{"SEC", implied, c.sec, 1, 2},      // 0x38
		{"AND", absoluteY, c.and, 3, 4},    // 0x39
		{"*NOP", implied, c.nop, 1, 2},     // 0x3A
		{"*RLA", absoluteY, c.rla, 3, 7},   // 0x3B
		{"*NOP", absoluteX, c.nop, 3, 4},   // 0x3C
		{"AND", absoluteX, c.and, 3, 4},    // 0x3D
		{"ROL", absoluteX, c.rol, 3, 7},    // 0x3E
		{"*RLA", absoluteX, c.rla, 3, 7},   // 0x3F
		{"RTI", implied, c.rti, 1, 6},      // 0x40
		{"EOR", indirectX, c.eor, 2, 6},    // 0x41
		{"*NOP", implied, c.nop, 1, 2},     // 0x42
		{"*SRE", indirectX, c.sre, 2, 8},   // 0x43
		{"*NOP", zeropage, c.nop, 2, 3},    // 0x44
		{"EOR", zeropage, c.eor, 2, 3},     // 0x45
		{"LSR", zeropage, c.lsr, 2, 5},     // 0x46
		{"*SRE", zeropage, c.sre, 2, 5},    // 0x47
		{"PHA", implied, c.pha, 1, 3},      // 0x48
		{"EOR", immediate, c.eor, 2, 2},    // 0x49
		{"LSR", accumulator, c.lsr, 1, 2},  // 0x4A
		{"*ALR", immediate, c.alr, 2, 2},   // 0x4B
		{"JMP", absolute, c.jmp, 3, 3},     // 0x4C
		{"EOR", absolute, c.eor, 3, 4},     // 0x4D
		{"LSR", absolute, c.lsr, 3, 6},     // 0x4E
		{"*SRE", absolute, c.sre, 3, 6},    // 0x4F
		{"BVC", relative, c.bvc, 2, 2},     // 0x50
		{"EOR", indirectY, c.eor, 2, 5},    // 0x51
		{"*NOP", implied, c.nop, 1, 2},     // 0x52
		{"*SRE", indirectY, c.sre, 2, 8},   // 0x53
		{"*NOP", zeropageX, c.nop, 2, 4},   // 0x54
		{"EOR", zeropageX, c.eor, 2, 4},    // 0x55
		{"LSR", zeropageX, c.lsr, 2, 6},    // 0x56
		{"*SRE", zeropageX, c.sre, 2, 6},   // 0x57
		{"CLI", implied, c.cli, 1, 2},      // 0x58
		{"EOR", absoluteY, c.eor, 3, 4},    // 0x59
		{"*NOP", implied, c.nop, 1, 2},     // 0x5A
		{"*SRE", absoluteY, c.sre, 3, 7},   // 0x5B
		{"*NOP", absoluteX, c.nop, 3, 4},   // 0x5C
		{"EOR", absoluteX, c.eor, 3, 4},    // 0x5D
		{"LSR", absoluteX, c.lsr, 3, 7},    // 0x5E
		{"*SRE", absoluteX, c.sre, 3, 7},   // 0x5F
		{"RTS", implied, c.rts, 1, 6},      // 0x60
		{"ADC", indirectX, c.adc, 2, 6},    // 0x61
		{"*NOP", implied, c.nop, 1, 2},     // 0x62
		{"*RRA", indirectX, c.rra, 2, 8},   // 0x63
		{"*NOP", zeropage, c.nop, 2, 3},    // 0x64
		{"ADC", zeropage, c.adc, 2, 3},     // 0x65
		{"ROR", zeropage, c.ror, 2, 5},     // 0x66
		{"*RRA", zeropage, c.rra, 2, 5},    // 0x67
		{"PLA", implied, c.pla, 1, 4},      // 0x68
		{"ADC", immediate, c.adc, 2, 2},    // 0x69
		{"ROR", accumulator, c.ror, 1, 2},  // 0x6A
		{"*ARR", immediate, c.arr, 2, 2},   // 0x6B
		{"JMP", indirect, c.jmp, 3, 5},     // 0x6C
		{"ADC", absolute, c.adc, 3, 4},     // 0x6D
		{"ROR", absolute, c.ror, 3, 6},     // 0x6E
		{"*RRA", absolute, c.rra, 3, 6},    // 0x6F
		{"BVS", relative, c.bvs, 2, 2},     // 0x70
		{"ADC", indirectY, c.adc, 2, 5},    // 0x71
		{"*NOP", implied, c.nop, 1, 2},     // 0x72
		{"*RRA", indirectY, c.rra, 2, 8},   // 0x73
		{"*NOP", zeropageX, c.nop, 2, 4},   // 0x74
		{"ADC", zeropageX, c.adc, 2, 4},    // 0x75
		{"ROR", zeropageX, c.ror, 2, 6},    // 0x76
		{"*RRA", zeropageX, c.rra, 2, 6},   // 0x77
		{"SEI", implied, c.sei, 1, 2},      // 0x78
		{"ADC", absoluteY, c.adc, 3, 4},    // 0x79
		{"*NOP", implied, c.nop, 1, 2},     // 0x7A
		{"*RRA", absoluteY, c.rra, 3, 7},   // 0x7B
		{"*NOP", absoluteX, c.nop, 3, 4},   // 0x7C
		{"ADC", absoluteX, c.adc, 3, 4},    // 0x7D
		{"ROR", absoluteX, c.ror, 3, 7},    // 0x7E
		{"*RRA", absoluteX, c.rra, 3, 7},   // 0x7F
		{"*NOP", immediate, c.nop, 2, 2},   // 0x80
		{"STA", indirectX, c.sta, 2, 6},    // 0x81
		{"*NOP", immediate, c.nop, 2, 2},   // 0x82
		{"*SAX", indirectX, c.sax, 2, 6},   // 0x83
		{"STY", zeropage, c.sty, 2, 3},     // 0x84
		{"STA", zeropage, c.sta, 2, 3},     // 0x85
		{"STX", zeropage, c.stx, 2, 3},     // 0x86
		{"*SAX", zeropage, c.sax, 2, 3},    // 0x87
		{"DEY", implied, c.dey, 1, 2},      // 0x88
		{"*NOP", immediate, c.nop, 2, 2},   // 0x89
		{"TXA", implied, c.txa, 1, 2},      // 0x8A
		{"*XAA", immediate, c.xaa, 2, 2},   // 0x8B
		{"STY", absolute, c.sty, 3, 4},     // 0x8C
		{"STA", absolute, c.sta, 3, 4},     // 0x8D
		{"STX", absolute, c.stx, 3, 4},     // 0x8E
		{"*SAX", absolute, c.sax, 3, 4},    // 0x8F
		{"BCC", relative, c.bcc, 2, 2},     // 0x90
		{"STA", indirectY, c.sta, 2, 6},    // 0x91
		{"*NOP", implied, c.nop, 1, 2},     // 0x92
		{"*AHX", indirectY, c.ahx, 2, 6},   // 0x93
		{"STY", zeropageX, c.sty, 2, 4},    // 0x94
		{"STA", zeropageX, c.sta, 2, 4},    // 0x95
		{"STX", zeropageY, c.stx, 2, 4},    // 0x96
		{"*SAX", zeropageY, c.sax, 2, 4},   // 0x97
		{"TYA", implied, c.tya, 1, 2},      // 0x98
		{"STA", absoluteY, c.sta, 3, 5},    // 0x99
		{"TXS", implied, c.txs, 1, 2},      // 0x9A
		{"*TAS", absoluteY, c.tas, 3, 5},   // 0x9B
		{"*SHY", absoluteX, c.shy, 3, 5},   // 0x9C
		{"STA", absoluteX, c.sta, 3, 5},    // 0x9D
		{"*SHX", absoluteY, c.shx, 3, 5},   // 0x9E
		{"*AHX", absoluteY, c.ahx, 3, 5},   // 0x9F
		{"LDY", immediate, c.ldy, 2, 2},    // 0xA0
		{"LDA", indirectX, c.lda, 2, 6},    // 0xA1
		{"LDX", immediate, c.ldx, 2, 2},    // 0xA2
		{"*LAX", indirectX, c.lax, 2, 6},   // 0xA3
		{"LDY", zeropage, c.ldy, 2, 3},     // 0xA4
		{"LDA", zeropage, c.lda, 2, 3},     // 0xA5
		{"LDX", zeropage, c.ldx, 2, 3},     // 0xA6
		{"*LAX", zeropage, c.lax, 2, 3},    // 0xA7
		{"TAY", implied, c.tay, 1, 2},      // 0xA8
		{"LDA", immediate, c.lda, 2, 2},    // 0xA9
		{"TAX", implied, c.tax, 1, 2},      // 0xAA
		{"*LXA", immediate, c.lxa, 2, 2},   // 0xAB
		{"LDY", absolute, c.ldy, 3, 4},     // 0xAC
		{"LDA", absolute, c.lda, 3, 4},     // 0xAD
		{"LDX", absolute, c.ldx, 3, 4},     // 0xAE
		{"*LAX", absolute, c.lax, 3, 4},    // 0xAF
		{"BCS", relative, c.bcs, 2, 2},     // 0xB0
		{"LDA", indirectY, c.lda, 2, 5},    // 0xB1
		{"*NOP", implied, c.nop, 1, 2},     // 0xB2
		{"*LAX", indirectY, c.lax, 2, 5},   // 0xB3
		{"LDY", zeropageX, c.ldy, 2, 4},    // 0xB4
		{"LDA", zeropageX, c.lda, 2, 4},    // 0xB5
		{"LDX", zeropageY, c.ldx, 2, 4},    // 0xB6
		{"*LAX", zeropageY, c.lax, 2, 4},   // 0xB7
		{"CLV", implied, c.clv, 1, 2},      // 0xB8
		{"LDA", absoluteY, c.lda, 3, 4},    // 0xB9
		{"TSX", implied, c.tsx, 1, 2},      // 0xBA
		{"*LAS", absoluteY, c.las, 3, 4},   // 0xBB
		{"LDY", absoluteX, c.ldy, 3, 4},    // 0xBC
		{"LDA", absoluteX, c.lda, 3, 4},    // 0xBD
		{"LDX", absoluteY, c.ldx, 3, 4},    // 0xBE
		{"*LAX", absoluteY, c.lax, 3, 4},   // 0xBF
		{"CPY", immediate, c.cpy, 2, 2},    // 0xC0
		{"CMP", indirectX, c.cmp, 2, 6},    // 0xC1
		{"*NOP", immediate, c.nop, 2, 2},   // 0xC2
		{"*DCP", indirectX, c.dcp, 2, 8},   // 0xC3
		{"CPY", zeropage, c.cpy, 2, 3},     // 0xC4
		{"CMP", zeropage, c.cmp, 2, 3},     // 0xC5
		{"DEC", zeropage, c.dec, 2, 5},     // 0xC6
		{"*DCP", zeropage, c.dcp, 2, 5},    // 0xC7
		{"INY", implied, c.iny, 1, 2},      // 0xC8
		{"CMP", immediate, c.cmp, 2, 2},    // 0xC9
		{"DEX", implied, c.dex, 1, 2},      // 0xCA
		{"*AXS", immediate, c.axs, 2, 2},   // 0xCB
		{"CPY", absolute, c.cpy, 3, 4},     // 0xCC
		{"CMP", absolute, c.cmp, 3, 4},     // 0xCD
		{"DEC", absolute, c.dec, 3, 6},     // 0xCE
		{"*DCP", absolute, c.dcp, 3, 6},    // 0xCF
		{"BNE", relative, c.bne, 2, 2},     // 0xD0
		{"CMP", indirectY, c.cmp, 2, 5},    // 0xD1
		{"*NOP", implied, c.nop, 1, 2},     // 0xD2
		{"*DCP", indirectY, c.dcp, 2, 8},   // 0xD3
		{"*NOP", zeropageX, c.nop, 2, 4},   // 0xD4
		{"CMP", zeropageX, c.cmp, 2, 4},    // 0xD5
		{"DEC", zeropageX, c.dec, 2, 6},    // 0xD6
		{"*DCP", zeropageX, c.dcp, 2, 6},   // 0xD7
		{"CLD", implied, c.cld, 1, 2},      // 0xD8
		{"CMP", absoluteY, c.cmp, 3, 4},    // 0xD9
		{"*NOP", implied, c.nop, 1, 2},     // 0xDA
		{"*DCP", absoluteY, c.dcp, 3, 7},   // 0xDB
		{"*NOP", absoluteX, c.nop, 3, 4},   // 0xDC
		{"CMP", absoluteX, c.cmp, 3, 4},    // 0xDD
		{"DEC", absoluteX, c.dec, 3, 7},    // 0xDE
		{"*DCP", absoluteX, c.dcp, 3, 7},   // 0xDF
		{"CPX", immediate, c.cpx, 2, 2},    // 0xE0
		{"SBC", indirectX, c.sbc, 2, 6},    // 0xE1
		{"*NOP", immediate, c.nop, 2, 2},   // 0xE2
		{"*ISB", indirectX, c.isb, 2, 8},   // 0xE3
		{"CPX", zeropage, c.cpx, 2, 3},     // 0xE4
		{"SBC", zeropage, c.sbc, 2, 3},     // 0xE5
		{"INC", zeropage, c.inc, 2, 5},     // 0xE6
		{"*ISB", zeropage, c.isb, 2, 5},    // 0xE7
		{"INX", implied, c.inx, 1, 2},      // 0xE8
		{"SBC", immediate, c.sbc, 2, 2},    // 0xE9
		{"NOP", implied, c.nop, 1, 2},      // 0xEA
		{"*SBC", immediate, c.sbc, 2, 2},   // 0xEB
		{"CPX", absolute, c.cpx, 3, 4},     // 0xEC
		{"SBC", absolute, c.sbc, 3, 4},     // 0xED
		{"INC", absolute, c.inc, 3, 6},     // 0xEE
		{"*ISB", absolute, c.isb, 3, 6},    // 0xEF
		{"BEQ", relative, c.beq, 2, 2},     // 0xF0
		{"SBC", indirectY, c.sbc, 2, 5},    // 0xF1
		{"*NOP", implied, c.nop, 1, 2},     // 0xF2
		{"*ISB", indirectY, c.isb, 2, 8},   // 0xF3
		{"*NOP", zeropageX, c.nop, 2, 4},   // 0xF4
		{"SBC", zeropageX, c.sbc, 2, 4},    // 0xF5
		{"INC", zeropageX, c.inc, 2, 6},    // 0xF6
		{"*ISB", zeropageX, c.isb, 2, 6},   // 0xF7
		{"SED", implied, c.sed, 1, 2},      // 0xF8
		{"SBC", absoluteY, c.sbc, 3, 4},    // 0xF9
		{"*NOP", implied, c.nop, 1, 2},     // 0xFA
		{"*ISB", absoluteY, c.isb, 3, 7},   // 0xFB
		{"*NOP", absoluteX, c.nop, 3, 4},   // 0xFC
		{"SBC", absoluteX, c.sbc, 3, 4},    // 0xFD
		{"INC", absoluteX, c.inc, 3, 7},    // 0xFE
		{"*ISB", absoluteX, c.isb, 3, 7},   // 0xFF
	}
}
