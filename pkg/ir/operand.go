package ir

import (
	"fmt"

	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
)

// Primitive is one of the three primitive constants, with the operand
// encoding the target VM expects.
type Primitive uint8

const (
	PrimNil   Primitive = 0
	PrimFalse Primitive = 1
	PrimTrue  Primitive = 2
)

// OperandKind discriminates the Operand sum type.
type OperandKind uint8

const (
	KindNone OperandKind = iota
	KindSlot
	KindUpvalue
	KindLiteral
	KindSignedLiteral
	KindPrimitive
	KindTNew
	KindNum
	KindStr
	KindTab
	KindFunc
	KindCData
	KindJump       // unresolved reference to a label
	KindJumpOffset // resolved, biased jump displacement
)

// Operand is one instruction operand. It knows how to narrow itself to the
// 8-bit and 16-bit instruction fields; narrowing that would lose bits is an
// internal invariant violation, never a silent truncation.
type Operand struct {
	Kind OperandKind

	// n holds the payload for every kind except jumps. For KindTNew the
	// high 16 bits carry the hash-size hint and the low 16 bits the array
	// size; for KindSignedLiteral it holds the int16 bit pattern.
	n uint32

	// label is the jump label for KindJump.
	label uint64
}

func None() Operand                 { return Operand{Kind: KindNone} }
func Slot(s uint8) Operand          { return Operand{Kind: KindSlot, n: uint32(s)} }
func Upvalue(uv uint8) Operand      { return Operand{Kind: KindUpvalue, n: uint32(uv)} }
func Literal(v uint16) Operand      { return Operand{Kind: KindLiteral, n: uint32(v)} }
func SignedLiteral(v int16) Operand { return Operand{Kind: KindSignedLiteral, n: uint32(uint16(v))} }
func Prim(p Primitive) Operand      { return Operand{Kind: KindPrimitive, n: uint32(p)} }
func Num(idx uint16) Operand        { return Operand{Kind: KindNum, n: uint32(idx)} }
func Str(idx uint16) Operand        { return Operand{Kind: KindStr, n: uint32(idx)} }
func Tab(idx uint16) Operand        { return Operand{Kind: KindTab, n: uint32(idx)} }
func Func(idx uint16) Operand       { return Operand{Kind: KindFunc, n: uint32(idx)} }
func CData(idx uint16) Operand      { return Operand{Kind: KindCData, n: uint32(idx)} }
func Jump(label uint64) Operand     { return Operand{Kind: KindJump, label: label} }
func JumpOffset(d uint16) Operand   { return Operand{Kind: KindJumpOffset, n: uint32(d)} }

// TNew packs the table-sizing operand of the TNEW instruction: a hash-size
// hint in the top 5 bits and an array size capped to 11 bits.
func TNew(hashLog2 uint8, arraySize uint16) Operand {
	return Operand{Kind: KindTNew, n: uint32(hashLog2)<<16 | uint32(arraySize)}
}

// As8 narrows the operand to an 8-bit instruction field.
func (o Operand) As8() uint8 {
	switch o.Kind {
	case KindNone:
		return 0
	case KindSlot, KindUpvalue, KindPrimitive:
		return uint8(o.n)
	case KindLiteral, KindNum, KindStr, KindTab, KindFunc, KindCData:
		if o.n > 0xFF {
			errors.Internalf("cannot encode %s operand %d in an 8-bit field", o.Kind, o.n)
		}
		return uint8(o.n)
	case KindSignedLiteral:
		errors.Internalf("cannot encode a signed literal in an 8-bit field")
	case KindTNew:
		errors.Internalf("cannot encode a table-sizing operand in an 8-bit field")
	case KindJump:
		errors.Internalf("unresolved jump label %d reached lowering", o.label)
	case KindJumpOffset:
		errors.Internalf("cannot encode a jump displacement in an 8-bit field")
	}
	errors.Internalf("unknown operand kind %d", o.Kind)
	return 0
}

// As16 narrows the operand to a 16-bit instruction field.
func (o Operand) As16() uint16 {
	switch o.Kind {
	case KindNone:
		return 0
	case KindSlot, KindUpvalue, KindPrimitive, KindLiteral, KindSignedLiteral,
		KindNum, KindStr, KindTab, KindFunc, KindCData, KindJumpOffset:
		return uint16(o.n)
	case KindTNew:
		hash := o.n >> 16
		asize := o.n & 0x7FF
		return uint16(hash<<11 | asize)
	case KindJump:
		errors.Internalf("unresolved jump label %d reached lowering", o.label)
	}
	errors.Internalf("unknown operand kind %d", o.Kind)
	return 0
}

func (k OperandKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSlot:
		return "slot"
	case KindUpvalue:
		return "upvalue"
	case KindLiteral:
		return "literal"
	case KindSignedLiteral:
		return "signed literal"
	case KindPrimitive:
		return "primitive"
	case KindTNew:
		return "table sizing"
	case KindNum:
		return "numeric constant"
	case KindStr:
		return "string constant"
	case KindTab:
		return "table constant"
	case KindFunc:
		return "function constant"
	case KindCData:
		return "cdata constant"
	case KindJump:
		return "jump label"
	case KindJumpOffset:
		return "jump offset"
	}
	return fmt.Sprintf("operand(%d)", uint8(k))
}
