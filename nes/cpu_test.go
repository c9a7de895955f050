package nes

import "testing"

// newTestConsole builds a console whose PRG ROM starts with the given
// program at 0x8000. The 16KB page is mirrored into 0xC000-0xFFFF, so the
// reset vector lands at the page offset 0x3FFC.
func newTestConsole(t *testing.T, program []byte) *Console {
	t.Helper()
	data := makeINES(0, 0, false)
	prg := data[inesHeaderSizeBytes : inesHeaderSizeBytes+prgROMPageSize]
	copy(prg, program)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	console, err := NewConsole(data)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	return console
}

// runProgram runs the program until its trailing BRK halts the CPU.
func runProgram(t *testing.T, program []byte) *Console {
	t.Helper()
	console := newTestConsole(t, program)
	if err := console.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return console
}

func TestInstructionTableComplete(t *testing.T) {
	console := newTestConsole(t, []byte{0x00})
	instructions := console.CPU.instructions
	if len(instructions) != 256 {
		t.Fatalf("table size: got=%d, want=256", len(instructions))
	}
	for opcode, in := range instructions {
		if in.mnemonic == "" {
			t.Errorf("opcode 0x%02x: empty mnemonic", opcode)
		}
		if in.size < 1 || 3 < in.size {
			t.Errorf("opcode 0x%02x: size got=%d", opcode, in.size)
		}
		if in.cycles < 1 {
			t.Errorf("opcode 0x%02x: cycles got=%d", opcode, in.cycles)
		}
		if in.execute == nil {
			t.Errorf("opcode 0x%02x: nil execute", opcode)
		}
	}
	// Spot checks against the standard opcode matrix.
	if in := instructions[0xA5]; in.mnemonic != "LDA" || in.cycles != 3 {
		t.Errorf("0xA5: got=%s/%d, want=LDA/3", in.mnemonic, in.cycles)
	}
	if in := instructions[0xB4]; in.mnemonic != "LDY" || in.mode != zeropageX {
		t.Errorf("0xB4: got=%s, want=LDY zeropage,X", in.mnemonic)
	}
	if in := instructions[0xEB]; in.mnemonic != "*SBC" {
		t.Errorf("0xEB: got=%s, want=*SBC", in.mnemonic)
	}
}

func TestBRKHaltsRunLoop(t *testing.T) {
	console := runProgram(t, []byte{0x00})
	if !console.CPU.halted {
		t.Fatal("CPU should be halted after BRK")
	}
	// Further steps are no-ops.
	if cycles, err := console.CPU.Step(); cycles != 0 || err != nil {
		t.Fatalf("Step after halt: got=(%d, %v), want=(0, nil)", cycles, err)
	}
}

func TestLDAImmediateAndTAX(t *testing.T) {
	console := runProgram(t, []byte{0xA9, 0x05, 0xAA, 0x00}) // LDA #$05; TAX
	cpu := console.CPU
	if cpu.a != 0x05 || cpu.x != 0x05 {
		t.Fatalf("a=0x%02x x=0x%02x, want both 0x05", cpu.a, cpu.x)
	}
	if cpu.p.z || cpu.p.n {
		t.Fatalf("flags: z=%v n=%v, want both clear", cpu.p.z, cpu.p.n)
	}
}

func TestLDASetsZeroFlag(t *testing.T) {
	console := runProgram(t, []byte{0xA9, 0x00, 0x00}) // LDA #$00
	if !console.CPU.p.z {
		t.Fatal("zero flag should be set")
	}
}

func TestADCOverflow(t *testing.T) {
	// 0x50 + 0x50 = 0xA0, two positives producing a negative.
	console := runProgram(t, []byte{0xA9, 0x50, 0x69, 0x50, 0x00})
	cpu := console.CPU
	if cpu.a != 0xA0 {
		t.Fatalf("a: got=0x%02x, want=0xA0", cpu.a)
	}
	if !cpu.p.v || !cpu.p.n || cpu.p.c {
		t.Fatalf("flags: v=%v n=%v c=%v, want v,n set and c clear", cpu.p.v, cpu.p.n, cpu.p.c)
	}
}

func TestADCMixedSignsNoOverflow(t *testing.T) {
	// 0x50 + 0x90 = 0xE0: operands of different signs can never overflow.
	console := runProgram(t, []byte{0xA9, 0x50, 0x69, 0x90, 0x00})
	cpu := console.CPU
	if cpu.a != 0xE0 {
		t.Fatalf("a: got=0x%02x, want=0xE0", cpu.a)
	}
	if cpu.p.v || cpu.p.c {
		t.Fatalf("flags: v=%v c=%v, want both clear", cpu.p.v, cpu.p.c)
	}
}

func TestADCCarryAndZero(t *testing.T) {
	console := runProgram(t, []byte{0xA9, 0xFF, 0x69, 0x01, 0x00})
	cpu := console.CPU
	if cpu.a != 0x00 || !cpu.p.c || !cpu.p.z || cpu.p.v {
		t.Fatalf("a=0x%02x c=%v z=%v v=%v, want 0x00 true true false", cpu.a, cpu.p.c, cpu.p.z, cpu.p.v)
	}
}

func TestSBC(t *testing.T) {
	// SEC first, the 6502 subtracts an extra 1 when carry is clear.
	console := runProgram(t, []byte{0x38, 0xA9, 0x10, 0xE9, 0x01, 0x00})
	cpu := console.CPU
	if cpu.a != 0x0F || !cpu.p.c {
		t.Fatalf("a=0x%02x c=%v, want 0x0F true", cpu.a, cpu.p.c)
	}
}

func TestCompareFlags(t *testing.T) {
	console := runProgram(t, []byte{0xA9, 0x10, 0xC9, 0x20, 0x00}) // CMP #$20
	cpu := console.CPU
	if cpu.p.c || cpu.p.z || !cpu.p.n {
		t.Fatalf("flags after CMP: c=%v z=%v n=%v, want false false true", cpu.p.c, cpu.p.z, cpu.p.n)
	}
	console = runProgram(t, []byte{0xA9, 0x10, 0xC9, 0x10, 0x00})
	cpu = console.CPU
	if !cpu.p.c || !cpu.p.z {
		t.Fatalf("flags after equal CMP: c=%v z=%v, want both true", cpu.p.c, cpu.p.z)
	}
}

func TestStackRoundTrip(t *testing.T) {
	// LDA #$42; PHA; LDA #$00; PLA
	console := runProgram(t, []byte{0xA9, 0x42, 0x48, 0xA9, 0x00, 0x68, 0x00})
	cpu := console.CPU
	if cpu.a != 0x42 {
		t.Fatalf("a: got=0x%02x, want=0x42", cpu.a)
	}
	if cpu.s != 0xFD {
		t.Fatalf("s: got=0x%02x, want=0xFD", cpu.s)
	}
}

func TestStackStatusRoundTrip(t *testing.T) {
	// LDA #$6F; PHA; PLP; PHP; LDA #$00; PLA
	// The value travels A -> stack -> status -> stack -> A, picking up the
	// forced break and reserved bits on the way back.
	console := runProgram(t, []byte{0xA9, 0x6F, 0x48, 0x28, 0x08, 0xA9, 0x00, 0x68, 0x00})
	if console.CPU.a != 0x7F {
		t.Fatalf("a: got=0x%02x, want=0x7F (0x6F with break and reserved forced)", console.CPU.a)
	}
}

func TestPHPPushesBreakBits(t *testing.T) {
	console := runProgram(t, []byte{0x08, 0x00}) // PHP
	data, err := console.CPU.bus.read(0x01FD)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// Reset status 0x24 plus the break and reserved bits.
	if data != 0x34 {
		t.Fatalf("pushed status: got=0x%02x, want=0x34", data)
	}
}

func TestINXWrapsAround(t *testing.T) {
	console := runProgram(t, []byte{0xA2, 0xFF, 0xE8, 0xE8, 0x00}) // LDX #$FF; INX; INX
	cpu := console.CPU
	if cpu.x != 0x01 || cpu.p.z {
		t.Fatalf("x=0x%02x z=%v, want 0x01 false", cpu.x, cpu.p.z)
	}
}

func TestJSRAndRTS(t *testing.T) {
	// JSR $8006; LDX #$01; BRK ... subroutine: LDA #$07; RTS
	program := []byte{
		0x20, 0x06, 0x80, // 0x8000 JSR $8006
		0xA2, 0x01, // 0x8003 LDX #$01
		0x00,       // 0x8005 BRK
		0xA9, 0x07, // 0x8006 LDA #$07
		0x60, // 0x8008 RTS
	}
	console := runProgram(t, program)
	cpu := console.CPU
	if cpu.a != 0x07 || cpu.x != 0x01 {
		t.Fatalf("a=0x%02x x=0x%02x, want 0x07 0x01", cpu.a, cpu.x)
	}
	if cpu.s != 0xFD {
		t.Fatalf("s: got=0x%02x, want=0xFD", cpu.s)
	}
}

func TestBranchTaken(t *testing.T) {
	// LDA #$00; BEQ over the LDX so X stays zero.
	console := runProgram(t, []byte{0xA9, 0x00, 0xF0, 0x02, 0xA2, 0xFF, 0x00})
	if console.CPU.x != 0x00 {
		t.Fatalf("x: got=0x%02x, want=0x00 (branch not taken?)", console.CPU.x)
	}
}

func TestBranchBackward(t *testing.T) {
	// Counts X down from 3 to 0 with a backward BNE.
	program := []byte{
		0xA2, 0x03, // 0x8000 LDX #$03
		0xCA,       // 0x8002 DEX
		0xD0, 0xFD, // 0x8003 BNE $8002
		0x00, // 0x8005 BRK
	}
	console := runProgram(t, program)
	if console.CPU.x != 0x00 || !console.CPU.p.z {
		t.Fatalf("x=0x%02x z=%v, want 0x00 true", console.CPU.x, console.CPU.p.z)
	}
}

func TestLAXLoadsBoth(t *testing.T) {
	// LDA #$55; STA $10; LDA #$00; LAX $10
	console := runProgram(t, []byte{0xA9, 0x55, 0x85, 0x10, 0xA9, 0x00, 0xA7, 0x10, 0x00})
	cpu := console.CPU
	if cpu.a != 0x55 || cpu.x != 0x55 {
		t.Fatalf("a=0x%02x x=0x%02x, want both 0x55", cpu.a, cpu.x)
	}
}

func TestSAXStoresAAndX(t *testing.T) {
	// LDA #$F0; LDX #$3C; SAX $10
	console := runProgram(t, []byte{0xA9, 0xF0, 0xA2, 0x3C, 0x87, 0x10, 0x00})
	data, err := console.CPU.bus.read(0x10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if data != 0x30 {
		t.Fatalf("memory: got=0x%02x, want=0x30", data)
	}
}

func TestDCPDecrementsThenCompares(t *testing.T) {
	// LDA #$40; STA $10; DCP $10 -> memory 0x3F, compare against A=0x40.
	console := runProgram(t, []byte{0xA9, 0x40, 0x85, 0x10, 0xC7, 0x10, 0x00})
	data, err := console.CPU.bus.read(0x10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if data != 0x3F {
		t.Fatalf("memory: got=0x%02x, want=0x3F", data)
	}
	cpu := console.CPU
	if !cpu.p.c || cpu.p.z {
		t.Fatalf("flags: c=%v z=%v, want true false", cpu.p.c, cpu.p.z)
	}
}

func TestISBIncrementsThenSubtracts(t *testing.T) {
	// LDA #$05; STA $10; SEC; LDA #$10; ISB $10 -> memory 0x06, A = 0x0A.
	console := runProgram(t, []byte{0xA9, 0x05, 0x85, 0x10, 0x38, 0xA9, 0x10, 0xE7, 0x10, 0x00})
	data, err := console.CPU.bus.read(0x10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if data != 0x06 {
		t.Fatalf("memory: got=0x%02x, want=0x06", data)
	}
	if console.CPU.a != 0x0A {
		t.Fatalf("a: got=0x%02x, want=0x0A", console.CPU.a)
	}
}

func TestUnofficialNOPsAdvance(t *testing.T) {
	// A mix of 1 and 2 byte NOP encodings followed by BRK.
	console := runProgram(t, []byte{0x80, 0x01, 0x04, 0x10, 0x1A, 0xEA, 0x00})
	if console.CPU.a != 0x00 {
		t.Fatalf("a: got=0x%02x, want untouched 0x00", console.CPU.a)
	}
	if !console.CPU.halted {
		t.Fatal("program should have reached the BRK")
	}
}

func TestStepReturnsBaseCycles(t *testing.T) {
	console := newTestConsole(t, []byte{0xA5, 0x10, 0x00}) // LDA $10
	cycles, err := console.CPU.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 3 {
		t.Fatalf("cycles: got=%d, want=3", cycles)
	}
}
