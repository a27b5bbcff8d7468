package compiler

import (
	"testing"

	"github.com/HugoGGuerrier/lkql-jit/pkg/ast"
	"github.com/HugoGGuerrier/lkql-jit/pkg/bytecode"
	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
)

func node(kind ast.Kind, text string, kids ...ast.Node) ast.Node {
	return ast.NewTree(kind, text, kids...)
}

func script(stmts ...ast.Node) ast.Node {
	return node(ast.KindTopLevelList, "", stmts...)
}

func compileScript(t *testing.T, root ast.Node) (*Compiler, []byte) {
	t.Helper()
	c := NewCompiler()
	buf, err := c.Compile(root)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return c, buf
}

func TestCompileBooleanLiteral(t *testing.T) {
	c, buf := compileScript(t, script(node(ast.KindBoolTrue, "true")))

	protos := c.Env().Program.Prototypes
	if len(protos) != 1 {
		t.Fatalf("program holds %d prototypes, want 1", len(protos))
	}
	p := protos[0]

	// One load plus the terminal return, and nothing in the constant pool.
	if len(p.Instructions) != 2 {
		t.Fatalf("instructions = %d, want 2", len(p.Instructions))
	}
	load := p.Instructions[0]
	if load.Op() != bytecode.KPRI || load.A() != 0 || load.D() != 2 {
		t.Errorf("load = %v A=%d D=%d, want KPRI r0 true", load.Op(), load.A(), load.D())
	}
	ret := p.Instructions[1]
	if ret.Op() != bytecode.RET1 || ret.A() != 0 {
		t.Errorf("return = %v A=%d, want RET1 r0", ret.Op(), ret.A())
	}
	if len(p.GCConstants) != 0 {
		t.Errorf("constant pool = %v, want empty", p.GCConstants)
	}

	if h, err := bytecode.ReadHeader(buf); err != nil || h.Version != bytecode.Version {
		t.Errorf("emitted dump has a bad header: %v %+v", err, h)
	}
}

func TestCompileEmptyScript(t *testing.T) {
	c, _ := compileScript(t, script())

	p := c.Env().Program.Prototypes[0]
	// Nothing was computed, so nothing may be returned: a lone RET0, never
	// a value return reading a register no instruction wrote.
	if len(p.Instructions) != 1 {
		t.Fatalf("instructions = %d, want 1", len(p.Instructions))
	}
	if op := p.Instructions[0].Op(); op != bytecode.RET0 {
		t.Errorf("terminal instruction = %v, want RET0", op)
	}
	if p.FrameSize != 0 {
		t.Errorf("frame size = %d, want 0 for an empty script", p.FrameSize)
	}
}

func TestCompileStringLiteral(t *testing.T) {
	c, _ := compileScript(t, script(node(ast.KindString, `"hi"`)))

	p := c.Env().Program.Prototypes[0]
	if len(p.GCConstants) != 1 || p.GCConstants[0] != bytecode.KStr("hi") {
		t.Fatalf("constant pool = %v, want one entry \"hi\"", p.GCConstants)
	}
	load := p.Instructions[0]
	if load.Op() != bytecode.KSTR || load.D() != 0 {
		t.Errorf("load = %v D=%d, want KSTR with pool index 0", load.Op(), load.D())
	}
}

func TestCompileIntegerLiterals(t *testing.T) {
	c, _ := compileScript(t, script(
		node(ast.KindInteger, "42"),
		node(ast.KindInteger, "100000"),
	))

	p := c.Env().Program.Prototypes[0]
	if got := p.Instructions[0].Op(); got != bytecode.KSHORT {
		t.Errorf("small integer loads with %v, want KSHORT", got)
	}
	if got := p.Instructions[0].D(); int16(got) != 42 {
		t.Errorf("KSHORT operand = %d, want 42", int16(p.Instructions[0].D()))
	}
	if got := p.Instructions[1].Op(); got != bytecode.KNUM {
		t.Errorf("wide integer loads with %v, want KNUM", got)
	}
	if len(p.Numeric) != 1 || p.Numeric[0] != bytecode.KInt(100000) {
		t.Errorf("numeric pool = %v, want one KInt(100000)", p.Numeric)
	}
}

func TestCompilePatternLiteral(t *testing.T) {
	c, _ := compileScript(t, script(node(ast.KindPattern, `p"foo(?!bar)"`)))

	p := c.Env().Program.Prototypes[0]
	if len(p.GCConstants) != 1 || p.GCConstants[0] != bytecode.KStr("foo(?!bar)") {
		t.Errorf("constant pool = %v, want the pattern body", p.GCConstants)
	}
}

func TestCompileBadPattern(t *testing.T) {
	c := NewCompiler()
	_, err := c.Compile(script(node(ast.KindPattern, `p"foo(unclosed"`)))
	if err == nil {
		t.Fatalf("expected a compile error for an unbalanced pattern")
	}
	if lkql, ok := err.(errors.LKQLError); !ok || lkql.Kind() != "Compile" {
		t.Errorf("error = %v (%T), want a compile error", err, err)
	}
}

func TestCompileCallsInternCalleeOnce(t *testing.T) {
	c, _ := compileScript(t, script(
		node(ast.KindFunCall, "",
			node(ast.KindIdentifier, "print"),
			node(ast.KindArgList, "", node(ast.KindString, `"a"`))),
		node(ast.KindFunCall, "",
			node(ast.KindIdentifier, "print"),
			node(ast.KindArgList, "", node(ast.KindString, `"b"`))),
	))

	p := c.Env().Program.Prototypes[0]
	prints := 0
	for _, k := range p.GCConstants {
		if k == bytecode.KStr("print") {
			prints++
		}
	}
	if prints != 1 {
		t.Errorf("pool holds %d entries for the callee name, want 1", prints)
	}

	// Both call sites load the callee through the same pool index.
	var ggets []uint16
	for _, ins := range p.Instructions {
		if ins.Op() == bytecode.GGET {
			ggets = append(ggets, ins.D())
		}
	}
	if len(ggets) != 2 || ggets[0] != ggets[1] {
		t.Errorf("GGET operands = %v, want two equal indices", ggets)
	}
}

func TestCompileCallShape(t *testing.T) {
	c, _ := compileScript(t, script(
		node(ast.KindFunCall, "",
			node(ast.KindIdentifier, "print"),
			node(ast.KindArgList, "",
				node(ast.KindBoolTrue, "true"),
				node(ast.KindBoolFalse, "false"))),
	))

	p := c.Env().Program.Prototypes[0]
	var call *bytecode.Instruction
	for i := range p.Instructions {
		if p.Instructions[i].Op() == bytecode.CALL {
			call = &p.Instructions[i]
		}
	}
	if call == nil {
		t.Fatalf("no CALL emitted")
	}
	// Callee in the base register, two arguments above it, one result.
	if call.B() != 2 || call.C() != 3 {
		t.Errorf("CALL B=%d C=%d, want B=2 C=3", call.B(), call.C())
	}
}

func TestCompileValDeclAndRead(t *testing.T) {
	c, _ := compileScript(t, script(
		node(ast.KindValDecl, "",
			node(ast.KindIdentifier, "x"),
			node(ast.KindBoolTrue, "true")),
		node(ast.KindIdentifier, "x"),
	))

	p := c.Env().Program.Prototypes[0]
	// KPRI into the local's slot, MOV into the script result, RET1.
	if len(p.Instructions) != 3 {
		t.Fatalf("instructions = %d, want 3", len(p.Instructions))
	}
	mov := p.Instructions[1]
	if mov.Op() != bytecode.MOV || mov.A() != 0 {
		t.Errorf("read = %v A=%d, want MOV into the result slot", mov.Op(), mov.A())
	}
}

func TestCompileUnknownSymbol(t *testing.T) {
	c := NewCompiler()
	_, err := c.Compile(script(node(ast.KindIdentifier, "ghost")))
	if err == nil {
		t.Fatalf("expected a compile error for an undeclared name")
	}
	lkql, ok := err.(errors.LKQLError)
	if !ok || lkql.Kind() != "Compile" {
		t.Fatalf("error = %v (%T), want a compile error", err, err)
	}
}

func TestCompileUnknownNodeKind(t *testing.T) {
	c := NewCompiler()
	_, err := c.Compile(script(node(ast.KindArgList, "")))
	if err == nil {
		t.Fatalf("expected a compile error for an unhandled node kind")
	}
}

func TestCompileClosure(t *testing.T) {
	c, _ := compileScript(t, script(
		node(ast.KindValDecl, "",
			node(ast.KindIdentifier, "id"),
			node(ast.KindAnonFunction, "",
				node(ast.KindParamList, "", node(ast.KindIdentifier, "x")),
				node(ast.KindIdentifier, "x"))),
		node(ast.KindFunCall, "",
			node(ast.KindIdentifier, "id"),
			node(ast.KindArgList, "", node(ast.KindBoolTrue, "true"))),
	))

	protos := c.Env().Program.Prototypes
	if len(protos) != 2 {
		t.Fatalf("program holds %d prototypes, want 2", len(protos))
	}

	child, parent := protos[0], protos[1]
	if child.ArgCount != 1 {
		t.Errorf("child arg count = %d, want 1", child.ArgCount)
	}
	if parent.Flags&bytecode.ProtoHasChild == 0 {
		t.Errorf("parent flags %#x missing the has-child bit", parent.Flags)
	}

	var fnew *bytecode.Instruction
	for i := range parent.Instructions {
		if parent.Instructions[i].Op() == bytecode.FNEW {
			fnew = &parent.Instructions[i]
		}
	}
	if fnew == nil {
		t.Fatalf("no FNEW emitted in the parent")
	}
	idx := int(len(parent.GCConstants)) - 1 - int(fnew.D())
	if _, ok := parent.GCConstants[idx].(bytecode.KChild); !ok {
		t.Errorf("FNEW operand %d does not address the child constant", fnew.D())
	}
}

func TestCompileCapturedVariable(t *testing.T) {
	// val a = true; val f = () => a
	c, _ := compileScript(t, script(
		node(ast.KindValDecl, "",
			node(ast.KindIdentifier, "a"),
			node(ast.KindBoolTrue, "true")),
		node(ast.KindValDecl, "",
			node(ast.KindIdentifier, "f"),
			node(ast.KindAnonFunction, "",
				node(ast.KindParamList, ""),
				node(ast.KindIdentifier, "a"))),
	))

	child := c.Env().Program.Prototypes[0]
	if len(child.Upvalues) != 1 {
		t.Fatalf("child upvalues = %v, want one entry", child.Upvalues)
	}
	if child.Upvalues[0]&bytecode.UpvalLocalTag != bytecode.UpvalLocalTag {
		t.Errorf("capture ref %#x is not tagged as an outer register", child.Upvalues[0])
	}

	var uget *bytecode.Instruction
	for i := range child.Instructions {
		if child.Instructions[i].Op() == bytecode.UGET {
			uget = &child.Instructions[i]
		}
	}
	if uget == nil {
		t.Fatalf("captured read does not use UGET")
	}
	if uget.D() != 0 {
		t.Errorf("UGET operand = %d, want upvalue 0", uget.D())
	}
}

func TestCompileRecoversInternalErrors(t *testing.T) {
	// Nest calls deep enough that the per-call temporary runs exhaust the
	// register file while the argument expressions are still live.
	expr := ast.Node(node(ast.KindBoolTrue, "true"))
	for i := 0; i < 200; i++ {
		expr = node(ast.KindFunCall, "",
			node(ast.KindIdentifier, "print"),
			node(ast.KindArgList, "", expr))
	}

	c := NewCompiler()
	_, err := c.Compile(script(expr))
	if err == nil {
		t.Fatalf("expected an error from an exhausted register file")
	}
	if _, ok := err.(*errors.InternalError); !ok {
		t.Errorf("error = %v (%T), want *errors.InternalError", err, err)
	}
}
