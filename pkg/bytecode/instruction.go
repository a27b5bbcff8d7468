package bytecode

// Instruction is one encoded 32-bit instruction word. The layout matches the
// target VM's in-memory representation:
//
//	ABC: B<<24 | C<<16 | A<<8 | op
//	AD:  D<<16 | A<<8 | op
//
// The D field overlays C<<16|B<<24 viewed as a 16-bit little-endian value,
// so a word does not remember which shape built it; the opcode determines
// how the VM decodes it.
type Instruction uint32

// ABC builds an instruction word with three 8-bit operands.
func ABC(op OpCode, a, b, c uint8) Instruction {
	return Instruction(uint32(b)<<24 | uint32(c)<<16 | uint32(a)<<8 | uint32(op))
}

// AD builds an instruction word with one 8-bit and one 16-bit operand.
func AD(op OpCode, a uint8, d uint16) Instruction {
	return Instruction(uint32(d)<<16 | uint32(a)<<8 | uint32(op))
}

func (ins Instruction) Op() OpCode { return OpCode(ins) }
func (ins Instruction) A() uint8   { return uint8(ins >> 8) }
func (ins Instruction) B() uint8   { return uint8(ins >> 24) }
func (ins Instruction) C() uint8   { return uint8(ins >> 16) }
func (ins Instruction) D() uint16  { return uint16(ins >> 16) }

// appendTo writes the instruction word in little-endian byte order.
func (ins Instruction) appendTo(buf []byte) []byte {
	return append(buf, byte(ins), byte(ins>>8), byte(ins>>16), byte(ins>>24))
}
