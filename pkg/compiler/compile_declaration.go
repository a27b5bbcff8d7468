package compiler

import (
	"github.com/HugoGGuerrier/lkql-jit/pkg/ast"
	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
)

// compileValDecl binds a `val name = expr` declaration. A slot-allocated
// local is initialized in place; a spilled local is computed into a
// temporary and stored to the global table under its synthesized name.
func (c *Compiler) compileValDecl(node ast.Node) error {
	kids := node.Children()
	if len(kids) != 2 {
		errors.Internalf("value declaration node with %d children", len(kids))
	}
	name, init := kids[0].Text(), kids[1]

	saved := c.env.ExprSlot()
	defer c.env.SetExprSlot(saved)

	switch res := c.env.DeclareLocal(name); res.Kind {
	case ResolvedSlot:
		c.env.SetExprSlot(int(res.Slot))
		return c.compileNode(init)
	case ResolvedSpill:
		tmp := c.env.NewTmp()
		c.env.SetExprSlot(int(tmp))
		if err := c.compileNode(init); err != nil {
			return err
		}
		c.emitGlobalSet(tmp, res.Name)
		c.env.FreeTmp(tmp)
		return nil
	}
	errors.Internalf("local declaration of %q resolved to nothing", name)
	return nil
}

// compileAnonFunction compiles `(params) => expr` into a child prototype
// and materializes the closure into the destination slot.
func (c *Compiler) compileAnonFunction(node ast.Node) error {
	kids := node.Children()
	if len(kids) != 2 {
		errors.Internalf("anonymous function node with %d children", len(kids))
	}
	params, body := kids[0].Children(), kids[1]
	dest := c.dest()

	c.env.OpenScope(uint8(len(params)))
	for i, p := range params {
		c.env.BindParam(p.Text(), uint8(i))
	}

	result := int(c.env.NewTmp())
	c.env.SetExprSlot(result)
	if err := c.compileNode(body); err != nil {
		// The failed scope is abandoned; compilation stops here anyway.
		return err
	}
	c.env.SetReturnSlot(result)

	child := c.env.CloseScope()
	c.emitClosure(dest, uint16(child))
	return nil
}
