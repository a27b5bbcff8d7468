package compiler

import (
	"github.com/HugoGGuerrier/lkql-jit/pkg/bytecode"
	"github.com/HugoGGuerrier/lkql-jit/pkg/ir"
)

// --- Instruction emission helpers ---

func (c *Compiler) emitPrimitive(dest uint8, p ir.Primitive) {
	c.env.Emit(ir.NewAD(bytecode.KPRI, ir.Slot(dest), ir.Prim(p)))
}

func (c *Compiler) emitShort(dest uint8, v int16) {
	c.env.Emit(ir.NewAD(bytecode.KSHORT, ir.Slot(dest), ir.SignedLiteral(v)))
}

func (c *Compiler) emitNumber(dest uint8, idx uint16) {
	c.env.Emit(ir.NewAD(bytecode.KNUM, ir.Slot(dest), ir.Num(idx)))
}

func (c *Compiler) emitString(dest uint8, s string) {
	idx := c.env.InternString(s)
	c.env.Emit(ir.NewAD(bytecode.KSTR, ir.Slot(dest), ir.Str(idx)))
}

func (c *Compiler) emitMove(dest, src uint8) {
	if dest == src {
		return
	}
	c.env.Emit(ir.NewAD(bytecode.MOV, ir.Slot(dest), ir.Slot(src)))
}

func (c *Compiler) emitGlobalGet(dest uint8, name string) {
	idx := c.env.InternString(name)
	c.env.Emit(ir.NewAD(bytecode.GGET, ir.Slot(dest), ir.Str(idx)))
}

func (c *Compiler) emitGlobalSet(src uint8, name string) {
	idx := c.env.InternString(name)
	c.env.Emit(ir.NewAD(bytecode.GSET, ir.Slot(src), ir.Str(idx)))
}

func (c *Compiler) emitUpvalueGet(dest, upvalue uint8) {
	c.env.Emit(ir.NewAD(bytecode.UGET, ir.Slot(dest), ir.Upvalue(upvalue)))
}

// emitCall calls the function in base with argc arguments in base+1.. and
// asks for one result, which lands back in base.
func (c *Compiler) emitCall(base uint8, argc int) {
	c.env.Emit(ir.NewABC(bytecode.CALL, ir.Slot(base), ir.Literal(2), ir.Literal(uint16(argc+1))))
}

func (c *Compiler) emitClosure(dest uint8, child uint16) {
	c.env.Emit(ir.NewAD(bytecode.FNEW, ir.Slot(dest), ir.Func(child)))
}
