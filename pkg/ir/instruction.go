// Package ir holds the machine-independent instruction model sitting
// between AST translation and the binary encoder: typed operands, an
// abstract jump-label mechanism, and the lowering into encoded words.
// It knows nothing about how registers were chosen.
package ir

import "github.com/HugoGGuerrier/lkql-jit/pkg/bytecode"

// Shape says which operand fields of an Instruction are meaningful.
type Shape uint8

const (
	// ShapeABC carries three small operands (A, B, C).
	ShapeABC Shape = iota
	// ShapeAD carries one small operand and one wide operand (A, D).
	ShapeAD
)

// Instruction is one instruction before encoding. Label is an opaque jump
// target identifier, 0 meaning unlabeled; labels are assigned by a counter
// private to one function scope, so they are unique within one body.
type Instruction struct {
	Op    bytecode.OpCode
	Shape Shape
	Label uint64

	A, B, C Operand // B and C are meaningful for ShapeABC only
	D       Operand // meaningful for ShapeAD only
}

// NewABC builds an instruction with three small operands.
func NewABC(op bytecode.OpCode, a, b, c Operand) Instruction {
	return Instruction{Op: op, Shape: ShapeABC, A: a, B: b, C: c}
}

// NewAD builds an instruction with one small and one wide operand.
func NewAD(op bytecode.OpCode, a, d Operand) Instruction {
	return Instruction{Op: op, Shape: ShapeAD, A: a, D: d}
}

// WithLabel returns the instruction carrying the given jump label.
func (in Instruction) WithLabel(label uint64) Instruction {
	in.Label = label
	return in
}

// Encode lowers the instruction to its encoded word. Every operand must be
// resolved; an outstanding jump label is an internal invariant violation.
func (in Instruction) Encode() bytecode.Instruction {
	if in.Shape == ShapeABC {
		return bytecode.ABC(in.Op, in.A.As8(), in.B.As8(), in.C.As8())
	}
	return bytecode.AD(in.Op, in.A.As8(), in.D.As16())
}
