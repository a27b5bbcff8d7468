package bytecode

import "fmt"

// OpCode defines the type for LuaJIT bytecode instructions.
type OpCode uint8

// The LuaJIT 2.1 opcode set. Operand layout is either A/B/C (three 8-bit
// fields) or A/D (one 8-bit field and one 16-bit field); see Instruction.
const (
	// Comparison ops (AD, jump follows)
	ISLT OpCode = 0x00 // A D: if A < D
	ISGE OpCode = 0x01 // A D: if A >= D
	ISLE OpCode = 0x02 // A D: if A <= D
	ISGT OpCode = 0x03 // A D: if A > D

	ISEQV OpCode = 0x04 // A D: if A == D (variable D)
	ISNEV OpCode = 0x05 // A D: if A != D (variable D)

	ISEQS OpCode = 0x06 // A D: if A == string constant D
	ISNES OpCode = 0x07 // A D: if A != string constant D

	ISEQN OpCode = 0x08 // A D: if A == numeric constant D
	ISNEN OpCode = 0x09 // A D: if A != numeric constant D

	ISEQP OpCode = 0x0A // A D: if A == primitive D
	ISNEP OpCode = 0x0B // A D: if A != primitive D

	// Unary test and copy ops
	ISTC OpCode = 0x0C // A D: copy D to A and jump if D is true
	ISFC OpCode = 0x0D // A D: copy D to A and jump if D is false

	IST OpCode = 0x0E // D: jump if D is true
	ISF OpCode = 0x0F // D: jump if D is false

	ISTYPE OpCode = 0x10 // A D: assert A has type -D
	ISNUM  OpCode = 0x11 // A D: assert A is a number

	// Unary ops
	MOV OpCode = 0x12 // A D: A = D
	NOT OpCode = 0x13 // A D: A = not D
	UNM OpCode = 0x14 // A D: A = -D
	LEN OpCode = 0x15 // A D: A = #D

	// Binary ops
	ADDVN OpCode = 0x16 // A B C: A = B + numeric constant C
	SUBVN OpCode = 0x17
	MULVN OpCode = 0x18
	DIVVN OpCode = 0x19
	MODVN OpCode = 0x1A

	ADDNV OpCode = 0x1B // A B C: A = numeric constant C + B
	SUBNV OpCode = 0x1C
	MULNV OpCode = 0x1D
	DIVNV OpCode = 0x1E
	MODNV OpCode = 0x1F

	ADDVV OpCode = 0x20 // A B C: A = B + C
	SUBVV OpCode = 0x21
	MULVV OpCode = 0x22
	DIVVV OpCode = 0x23
	MODVV OpCode = 0x24

	POW OpCode = 0x25 // A B C: A = B ^ C
	CAT OpCode = 0x26 // A B C: A = concat(B .. C)

	// Constant ops
	KSTR   OpCode = 0x27 // A D: A = string constant D
	KCDATA OpCode = 0x28 // A D: A = cdata constant D
	KSHORT OpCode = 0x29 // A D: A = 16-bit signed literal D
	KNUM   OpCode = 0x2A // A D: A = numeric constant D
	KPRI   OpCode = 0x2B // A D: A = primitive D (0=nil, 1=false, 2=true)

	KNIL OpCode = 0x2C // A D: slots A..D = nil

	// Upvalue and function ops
	UGET OpCode = 0x2D // A D: A = upvalue D

	USETV OpCode = 0x2E // A D: upvalue A = D
	USETS OpCode = 0x2F // A D: upvalue A = string constant D
	USETN OpCode = 0x30 // A D: upvalue A = numeric constant D
	USETP OpCode = 0x31 // A D: upvalue A = primitive D

	UCLO OpCode = 0x32 // A D: close upvalues for slots >= A, jump to D

	FNEW OpCode = 0x33 // A D: A = closure of child prototype D

	// Table ops
	TNEW OpCode = 0x34 // A D: A = new table (D encodes array/hash sizing)

	TDUP OpCode = 0x35 // A D: A = duplicate of table constant D

	GGET OpCode = 0x36 // A D: A = _G[string constant D]
	GSET OpCode = 0x37 // A D: _G[string constant D] = A

	TGETV OpCode = 0x38 // A B C: A = B[C]
	TGETS OpCode = 0x39 // A B C: A = B[string constant C]
	TGETB OpCode = 0x3A // A B C: A = B[8-bit literal C]
	TGETR OpCode = 0x3B // A B C: A = B[C], raw

	TSETV OpCode = 0x3C // A B C: B[C] = A
	TSETS OpCode = 0x3D // A B C: B[string constant C] = A
	TSETB OpCode = 0x3E // A B C: B[8-bit literal C] = A
	TSETM OpCode = 0x3F // A D: multi-value table initializer
	TSETR OpCode = 0x40 // A B C: B[C] = A, raw

	// Calls and vararg handling
	CALLM  OpCode = 0x41 // A B C: call with multiple-value arguments
	CALL   OpCode = 0x42 // A B C: call A(A+1..A+C-1), B-1 results
	CALLMT OpCode = 0x43
	CALLT  OpCode = 0x44 // A D: tailcall A(A+1..A+D-1)

	ITERC OpCode = 0x45
	ITERN OpCode = 0x46

	VARG OpCode = 0x47

	ISNEXT OpCode = 0x48

	// Returns
	RETM OpCode = 0x49
	RET  OpCode = 0x4A // A D: return A..A+D-2
	RET0 OpCode = 0x4B // A D: return no values
	RET1 OpCode = 0x4C // A D: return A

	// Loops and branches
	FORI  OpCode = 0x4D
	JFORI OpCode = 0x4E

	FORL  OpCode = 0x4F
	IFORL OpCode = 0x50
	JFORL OpCode = 0x51

	ITERL  OpCode = 0x52
	IITERL OpCode = 0x53
	JITERL OpCode = 0x54

	LOOP  OpCode = 0x55
	ILOOP OpCode = 0x56
	JLOOP OpCode = 0x57

	JMP OpCode = 0x58 // A D: jump to biased displacement D

	// Function headers
	FUNCF  OpCode = 0x59
	IFUNCF OpCode = 0x5A
	JFUNCF OpCode = 0x5B

	FUNCV  OpCode = 0x5C
	IFUNCV OpCode = 0x5D
	JFUNCV OpCode = 0x5E

	FUNCC  OpCode = 0x5F
	FUNCCW OpCode = 0x60
)

// JumpBias is added to signed jump displacements so they fit the unsigned
// 16-bit D field (the target VM decodes D - 0x8000).
const JumpBias uint16 = 0x8000

var opNames = [...]string{
	"ISLT", "ISGE", "ISLE", "ISGT",
	"ISEQV", "ISNEV", "ISEQS", "ISNES", "ISEQN", "ISNEN", "ISEQP", "ISNEP",
	"ISTC", "ISFC", "IST", "ISF", "ISTYPE", "ISNUM",
	"MOV", "NOT", "UNM", "LEN",
	"ADDVN", "SUBVN", "MULVN", "DIVVN", "MODVN",
	"ADDNV", "SUBNV", "MULNV", "DIVNV", "MODNV",
	"ADDVV", "SUBVV", "MULVV", "DIVVV", "MODVV",
	"POW", "CAT",
	"KSTR", "KCDATA", "KSHORT", "KNUM", "KPRI", "KNIL",
	"UGET", "USETV", "USETS", "USETN", "USETP", "UCLO", "FNEW",
	"TNEW", "TDUP", "GGET", "GSET",
	"TGETV", "TGETS", "TGETB", "TGETR",
	"TSETV", "TSETS", "TSETB", "TSETM", "TSETR",
	"CALLM", "CALL", "CALLMT", "CALLT",
	"ITERC", "ITERN", "VARG", "ISNEXT",
	"RETM", "RET", "RET0", "RET1",
	"FORI", "JFORI", "FORL", "IFORL", "JFORL",
	"ITERL", "IITERL", "JITERL",
	"LOOP", "ILOOP", "JLOOP", "JMP",
	"FUNCF", "IFUNCF", "JFUNCF", "FUNCV", "IFUNCV", "JFUNCV",
	"FUNCC", "FUNCCW",
}

// String returns the mnemonic for the opcode.
func (op OpCode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("OP(0x%02X)", uint8(op))
}
