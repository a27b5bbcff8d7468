package compiler

import (
	"fmt"

	"github.com/HugoGGuerrier/lkql-jit/pkg/ast"
	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
)

// compileIdentifier loads the value of a name into the destination slot.
// Resolution order: local of the current function, then upvalue capture
// through the enclosing functions, then declared global. A name that
// resolves nowhere is a compile error, never an implicit global read.
func (c *Compiler) compileIdentifier(node ast.Node) error {
	dest := c.dest()
	name := node.Text()

	switch local := c.env.LookupLocal(name); local.Kind {
	case ResolvedSlot:
		c.emitMove(dest, local.Slot)
		return nil
	case ResolvedSpill:
		c.emitGlobalGet(dest, local.Name)
		return nil
	}

	switch uv := c.env.LookupUpvalue(name); uv.Kind {
	case ResolvedUpvalue:
		c.emitUpvalueGet(dest, uv.Upvalue)
		return nil
	case ResolvedSpill:
		// A spilled outer local lives in the global table, so the inner
		// function reads it from there under its synthesized name.
		c.emitGlobalGet(dest, uv.Name)
		return nil
	}

	if c.env.IsGlobal(name) {
		c.emitGlobalGet(dest, name)
		return nil
	}

	return &errors.CompileError{
		Position: node.Pos(),
		Msg:      fmt.Sprintf("unknown symbol %q", name),
	}
}

// compileFunCall evaluates the callee and its arguments into a contiguous
// run of temporaries (callee at the base, arguments right above it, which is
// the calling convention CALL addresses) and moves the single result into
// the destination slot.
func (c *Compiler) compileFunCall(node ast.Node) error {
	kids := node.Children()
	if len(kids) != 2 {
		errors.Internalf("function call node with %d children", len(kids))
	}
	callee, args := kids[0], kids[1].Children()

	dest := c.dest()
	base := c.env.NewTmps(1 + len(args))

	c.env.SetExprSlot(int(base))
	if err := c.compileNode(callee); err != nil {
		return err
	}
	for i, arg := range args {
		c.env.SetExprSlot(int(base) + 1 + i)
		if err := c.compileNode(arg); err != nil {
			return err
		}
	}
	c.env.SetExprSlot(int(dest))

	c.emitCall(base, len(args))
	c.emitMove(dest, base)
	c.env.FreeTmps(base, 1+len(args))
	return nil
}
