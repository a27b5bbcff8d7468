package parser

import (
	"testing"

	"github.com/HugoGGuerrier/lkql-jit/pkg/ast"
	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
)

func parse(t *testing.T, src string) ast.Node {
	t.Helper()
	root, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	if root.Kind() != ast.KindTopLevelList {
		t.Fatalf("root kind = %v", root.Kind())
	}
	return root
}

func parseOne(t *testing.T, src string) ast.Node {
	t.Helper()
	root := parse(t, src)
	if len(root.Children()) != 1 {
		t.Fatalf("parsed %d statements, want 1", len(root.Children()))
	}
	return root.Children()[0]
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		src  string
		kind ast.Kind
		text string
	}{
		{"true", ast.KindBoolTrue, "true"},
		{"false", ast.KindBoolFalse, "false"},
		{"42", ast.KindInteger, "42"},
		{`"hi"`, ast.KindString, `"hi"`},
		{`p"[0-9]+"`, ast.KindPattern, `p"[0-9]+"`},
		{"()", ast.KindUnit, "()"},
		{"name", ast.KindIdentifier, "name"},
	}
	for _, tt := range tests {
		n := parseOne(t, tt.src)
		if n.Kind() != tt.kind || n.Text() != tt.text {
			t.Errorf("parse(%q) = %v %q, want %v %q", tt.src, n.Kind(), n.Text(), tt.kind, tt.text)
		}
	}
}

func TestParseValDecl(t *testing.T) {
	n := parseOne(t, `val x = "hello"`)
	if n.Kind() != ast.KindValDecl {
		t.Fatalf("kind = %v", n.Kind())
	}
	kids := n.Children()
	if len(kids) != 2 {
		t.Fatalf("children = %d, want 2", len(kids))
	}
	if kids[0].Kind() != ast.KindIdentifier || kids[0].Text() != "x" {
		t.Errorf("name = %v %q", kids[0].Kind(), kids[0].Text())
	}
	if kids[1].Kind() != ast.KindString {
		t.Errorf("initializer = %v", kids[1].Kind())
	}
}

func TestParseCall(t *testing.T) {
	n := parseOne(t, `print("a", 1, true)`)
	if n.Kind() != ast.KindFunCall {
		t.Fatalf("kind = %v", n.Kind())
	}
	callee, args := n.Children()[0], n.Children()[1]
	if callee.Kind() != ast.KindIdentifier || callee.Text() != "print" {
		t.Errorf("callee = %v %q", callee.Kind(), callee.Text())
	}
	if args.Kind() != ast.KindArgList || len(args.Children()) != 3 {
		t.Errorf("args = %v with %d entries", args.Kind(), len(args.Children()))
	}
}

func TestParseChainedCall(t *testing.T) {
	n := parseOne(t, "f(1)(2)")
	if n.Kind() != ast.KindFunCall {
		t.Fatalf("kind = %v", n.Kind())
	}
	inner := n.Children()[0]
	if inner.Kind() != ast.KindFunCall {
		t.Errorf("callee of outer call = %v, want a call", inner.Kind())
	}
}

func TestParseAnonFunction(t *testing.T) {
	n := parseOne(t, "(a, b) => f(a)")
	if n.Kind() != ast.KindAnonFunction {
		t.Fatalf("kind = %v", n.Kind())
	}
	params, body := n.Children()[0], n.Children()[1]
	if params.Kind() != ast.KindParamList || len(params.Children()) != 2 {
		t.Fatalf("params = %v with %d entries", params.Kind(), len(params.Children()))
	}
	if params.Children()[0].Text() != "a" || params.Children()[1].Text() != "b" {
		t.Errorf("param names = %q, %q", params.Children()[0].Text(), params.Children()[1].Text())
	}
	if body.Kind() != ast.KindFunCall {
		t.Errorf("body = %v", body.Kind())
	}
}

func TestParseNullaryFunction(t *testing.T) {
	n := parseOne(t, "() => true")
	if n.Kind() != ast.KindAnonFunction {
		t.Fatalf("kind = %v", n.Kind())
	}
	if params := n.Children()[0]; len(params.Children()) != 0 {
		t.Errorf("params = %d entries, want 0", len(params.Children()))
	}
}

func TestParseImmediateApplication(t *testing.T) {
	n := parseOne(t, "((x) => x)(true)")
	if n.Kind() != ast.KindFunCall {
		t.Fatalf("kind = %v", n.Kind())
	}
	if callee := n.Children()[0]; callee.Kind() != ast.KindAnonFunction {
		t.Errorf("callee = %v, want an anonymous function", callee.Kind())
	}
}

func TestParseFunDeclDesugarsToVal(t *testing.T) {
	n := parseOne(t, "fun twice(x) = f(x)")
	if n.Kind() != ast.KindValDecl {
		t.Fatalf("kind = %v, want a value declaration", n.Kind())
	}
	name, fn := n.Children()[0], n.Children()[1]
	if name.Text() != "twice" {
		t.Errorf("bound name = %q", name.Text())
	}
	if fn.Kind() != ast.KindAnonFunction {
		t.Fatalf("bound value = %v", fn.Kind())
	}
	if params := fn.Children()[0]; len(params.Children()) != 1 || params.Children()[0].Text() != "x" {
		t.Errorf("params = %+v", params.Children())
	}
}

func TestParseGrouping(t *testing.T) {
	n := parseOne(t, "(x)")
	if n.Kind() != ast.KindIdentifier || n.Text() != "x" {
		t.Errorf("parse((x)) = %v %q", n.Kind(), n.Text())
	}
}

func TestParseMultipleStatements(t *testing.T) {
	root := parse(t, "val x = 1\nprint(x)\n")
	if len(root.Children()) != 2 {
		t.Fatalf("statements = %d, want 2", len(root.Children()))
	}
	if root.Children()[0].Kind() != ast.KindValDecl || root.Children()[1].Kind() != ast.KindFunCall {
		t.Errorf("statement kinds = %v, %v",
			root.Children()[0].Kind(), root.Children()[1].Kind())
	}
}

func TestParseErrors(t *testing.T) {
	sources := []string{
		"val = 1",
		"val x 1",
		"(a, true) => a",
		"(a, b)",
		"print(1",
		"fun f = 1",
		`"unterminated`,
		"$",
	}
	for _, src := range sources {
		_, err := Parse(src)
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want a syntax error", src)
			continue
		}
		lkql, ok := err.(errors.LKQLError)
		if !ok || lkql.Kind() != "Syntax" {
			t.Errorf("Parse(%q) error = %v (%T), want a syntax error", src, err, err)
		}
	}
}

func TestParsePositions(t *testing.T) {
	n := parseOne(t, "\n  ghost")
	pos := n.Pos()
	if pos.Line != 2 || pos.Column != 3 {
		t.Errorf("position = %d:%d, want 2:3", pos.Line, pos.Column)
	}
}
