package ir

import (
	"github.com/HugoGGuerrier/lkql-jit/pkg/bytecode"
	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
)

// ResolveJumps replaces every unresolved Jump(label) wide operand with the
// biased displacement from the instruction following the jump to the
// instruction carrying the label. Already-resolved operands are left
// untouched, so resolving twice is a no-op.
//
// Labels are assigned by a monotonic per-function counter, so a duplicate
// label is a latent compiler bug; the scan binds to the first occurrence.
func ResolveJumps(code []Instruction) {
	for i := range code {
		if code[i].Shape != ShapeAD || code[i].D.Kind != KindJump {
			continue
		}
		label := code[i].D.label

		target := labelPosition(code, label)
		if target < 0 {
			errors.Internalf("jump label %d not found in function body", label)
		}

		// Displacement is relative to the instruction after the jump, then
		// biased so the unsigned field can hold negative offsets.
		offset := target - (i + 1) + int(bytecode.JumpBias)
		if offset < 0 || offset > 0xFFFF {
			errors.Internalf("jump displacement %d out of encodable range", offset-int(bytecode.JumpBias))
		}
		code[i].D = JumpOffset(uint16(offset))
	}
}

func labelPosition(code []Instruction, label uint64) int {
	for i := range code {
		if code[i].Label == label {
			return i
		}
	}
	return -1
}

// Lower resolves jumps and encodes the instruction list.
func Lower(code []Instruction) []bytecode.Instruction {
	ResolveJumps(code)

	out := make([]bytecode.Instruction, len(code))
	for i := range code {
		out[i] = code[i].Encode()
	}
	return out
}
