package bytecode

import "fmt"

// Dump header constants.
var Magic = [3]byte{0x1B, 0x4C, 0x4A}

const Version uint8 = 0x02

// Header flag bits.
const (
	FlagBigEndian uint8 = 0x01 // instruction words are big-endian
	FlagStripped  uint8 = 0x02 // no debug info sections
	FlagFFI       uint8 = 0x04 // the dump uses cdata constants
	FlagFR2       uint8 = 0x08
)

// Prototype flag bits.
const (
	ProtoHasChild    uint8 = 0x01
	ProtoVariadic    uint8 = 0x02
	ProtoFFI         uint8 = 0x04
	ProtoJITDisabled uint8 = 0x08
	ProtoHasILoop    uint8 = 0x10
)

// Header is the 5-byte file header of a bytecode dump.
type Header struct {
	Magic   [3]byte
	Version uint8
	Flags   uint8
}

// NewHeader returns the header written for generated programs: stripped
// debug info and FFI access enabled.
func NewHeader() Header {
	return Header{
		Magic:   Magic,
		Version: Version,
		Flags:   FlagStripped | FlagFFI,
	}
}

func (h Header) appendTo(buf []byte) []byte {
	buf = append(buf, h.Magic[:]...)
	return append(buf, h.Version, h.Flags)
}

// ReadHeader parses the header from the front of an encoded dump.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < 5 {
		return Header{}, fmt.Errorf("bytecode: truncated header (%d bytes)", len(buf))
	}
	var h Header
	copy(h.Magic[:], buf[:3])
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("bytecode: bad magic % X", buf[:3])
	}
	h.Version = buf[3]
	h.Flags = buf[4]
	return h, nil
}

// Prototype is one compiled function, ready for encoding. It is built up by
// the compilation environment that owns it and becomes immutable once the
// owning scope closes and hands it to a Program.
type Prototype struct {
	Flags     uint8
	ArgCount  uint8
	FrameSize uint8

	Instructions []Instruction

	// Upvalues holds one 16-bit reference per upvalue. UpvalLocalTag set in
	// the high bits means "capture register N of the enclosing function";
	// untagged means "inherit upvalue N of the enclosing function".
	Upvalues []uint16

	// GCConstants is kept newest-first: AddGC prepends, and the returned
	// index counts from the tail of the slice, which is how instruction
	// operands address the pool (the loader reads GC constants in reverse).
	GCConstants []GCConstant

	// Numeric constants are indexed and encoded in plain insertion order.
	Numeric []NumericConstant
}

// UpvalLocalTag marks an upvalue reference as capturing an outer local
// register rather than inheriting an outer upvalue.
const UpvalLocalTag uint16 = 0xC000

// NewPrototype creates an empty prototype for a function taking argCount
// arguments.
func NewPrototype(argCount uint8) *Prototype {
	return &Prototype{ArgCount: argCount}
}

// AddGC inserts a GC constant and returns its operand index. Prepending
// keeps every previously returned index stable, since operand indices count
// backwards from the tail of the pool.
func (p *Prototype) AddGC(k GCConstant) uint16 {
	p.GCConstants = append([]GCConstant{k}, p.GCConstants...)
	return uint16(len(p.GCConstants) - 1)
}

// AddNumeric appends a numeric constant and returns its operand index.
func (p *Prototype) AddNumeric(k NumericConstant) uint16 {
	p.Numeric = append(p.Numeric, k)
	return uint16(len(p.Numeric) - 1)
}

// Encode serializes the prototype, including its own uleb128 length prefix.
func (p *Prototype) Encode() []byte {
	var body []byte

	body = append(body, p.Flags, p.ArgCount, p.FrameSize, uint8(len(p.Upvalues)))
	body = AppendUleb128(body, uint64(len(p.GCConstants)))
	body = AppendUleb128(body, uint64(len(p.Numeric)))
	body = AppendUleb128(body, uint64(len(p.Instructions)))

	for _, ins := range p.Instructions {
		body = ins.appendTo(body)
	}

	// Upvalue references are written big-endian so the capture tag lands in
	// the first byte.
	for _, uv := range p.Upvalues {
		body = append(body, byte(uv>>8), byte(uv))
	}

	// Newest-first slice order means the tail-indexed constant 0 is written
	// last, matching the loader's reverse read.
	for _, k := range p.GCConstants {
		body = k.appendTo(body)
	}
	for _, k := range p.Numeric {
		body = k.appendNum(body)
	}

	buf := AppendUleb128(make([]byte, 0, len(body)+5), uint64(len(body)))
	return append(buf, body...)
}

// Program is a whole bytecode dump: a header and the prototypes in the
// order their scopes closed (children before parents).
type Program struct {
	Header     Header
	Prototypes []*Prototype
}

// NewProgram creates an empty program with the standard header.
func NewProgram() *Program {
	return &Program{Header: NewHeader()}
}

// Encode serializes the program. A zero byte terminates the dump.
func (prog *Program) Encode() []byte {
	buf := prog.Header.appendTo(nil)
	for _, p := range prog.Prototypes {
		buf = append(buf, p.Encode()...)
	}
	return append(buf, 0)
}
