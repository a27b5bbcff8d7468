// Package compiler turns LKQL syntax trees into LuaJIT bytecode. The
// CompilationEnv does register allocation, closure capture and constant
// pooling; the Compiler walks the AST and drives the environment.
package compiler

import (
	"fmt"

	"github.com/HugoGGuerrier/lkql-jit/pkg/ast"
	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
)

// Compiler compiles one translation unit. Not safe for reuse: create a new
// one per compilation.
type Compiler struct {
	env *CompilationEnv
}

func NewCompiler() *Compiler {
	return &Compiler{env: NewCompilationEnv()}
}

// Env exposes the compilation environment, mainly for tests and tooling.
func (c *Compiler) Env() *CompilationEnv {
	return c.env
}

// Compile walks the tree rooted at root and returns the encoded bytecode
// dump. User-level failures come back as *errors.CompileError; broken
// compiler invariants panic internally and are recovered here into an
// *errors.InternalError, so the caller never observes a partial program.
func (c *Compiler) Compile(root ast.Node) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			internal, ok := r.(*errors.InternalError)
			if !ok {
				panic(r)
			}
			buf, err = nil, internal
		}
	}()

	c.env.OpenScope(0)
	if cerr := c.compileNode(root); cerr != nil {
		return nil, cerr
	}
	c.env.CloseScope()
	return c.env.Program.Encode(), nil
}

// compileNode dispatches on the node kind. An unhandled kind stops the
// compilation: partial bytecode for a partially understood program must
// never be emitted.
func (c *Compiler) compileNode(node ast.Node) error {
	switch node.Kind() {
	case ast.KindTopLevelList:
		return c.compileTopLevel(node)
	case ast.KindValDecl:
		return c.compileValDecl(node)
	case ast.KindFunCall:
		return c.compileFunCall(node)
	case ast.KindAnonFunction:
		return c.compileAnonFunction(node)
	case ast.KindIdentifier:
		return c.compileIdentifier(node)
	case ast.KindBoolTrue, ast.KindBoolFalse, ast.KindUnit,
		ast.KindInteger, ast.KindString, ast.KindPattern:
		return c.compileLiteral(node)
	}
	return &errors.CompileError{
		Position: node.Pos(),
		Msg:      fmt.Sprintf("cannot compile node of kind %q", node.Kind()),
	}
}

// compileTopLevel compiles the statements of a script. Every expression
// statement lands in one script result slot, and the script returns the
// last value it computed. An empty script computes nothing: the return
// slot stays unset and the scope closes with a bare return.
func (c *Compiler) compileTopLevel(node ast.Node) error {
	stmts := node.Children()
	if len(stmts) == 0 {
		return nil
	}

	result := int(c.env.NewTmp())
	for _, child := range stmts {
		c.env.SetExprSlot(result)
		if err := c.compileNode(child); err != nil {
			return err
		}
	}

	c.env.SetExprSlot(result)
	c.env.SetReturnSlot(result)
	return nil
}

// dest returns the slot the expression being compiled must land in.
func (c *Compiler) dest() uint8 {
	slot := c.env.ExprSlot()
	if slot < 0 {
		errors.Internalf("expression compiled with no destination slot")
	}
	return uint8(slot)
}
