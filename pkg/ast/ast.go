// Package ast defines the node interface the compiler walks. The compiler
// never looks at concrete node types; it only reads the kind tag, the child
// list and the source text, so any front end producing this interface can
// feed it.
package ast

import "github.com/HugoGGuerrier/lkql-jit/pkg/errors"

// Kind discriminates the supported construct tags.
type Kind uint8

const (
	KindTopLevelList Kind = iota
	KindValDecl
	KindFunCall
	KindArgList
	KindParamList
	KindAnonFunction
	KindIdentifier
	KindBoolTrue
	KindBoolFalse
	KindUnit
	KindInteger
	KindString
	KindPattern
)

var kindNames = [...]string{
	KindTopLevelList: "top-level list",
	KindValDecl:      "value declaration",
	KindFunCall:      "function call",
	KindArgList:      "argument list",
	KindParamList:    "parameter list",
	KindAnonFunction: "anonymous function",
	KindIdentifier:   "identifier",
	KindBoolTrue:     "true literal",
	KindBoolFalse:    "false literal",
	KindUnit:         "unit literal",
	KindInteger:      "integer literal",
	KindString:       "string literal",
	KindPattern:      "pattern literal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown node"
}

// Node is one AST node as the compiler sees it.
type Node interface {
	Kind() Kind
	Children() []Node
	// Text returns the raw source span of the node; for identifiers it is
	// the name, for literals the literal text including quotes.
	Text() string
	Pos() errors.Position
}

// Tree is the concrete node type built by the parser and by tests.
type Tree struct {
	NodeKind Kind
	Kids     []Node
	Source   string
	Position errors.Position
}

func NewTree(kind Kind, text string, kids ...Node) *Tree {
	return &Tree{NodeKind: kind, Kids: kids, Source: text}
}

func (t *Tree) Kind() Kind           { return t.NodeKind }
func (t *Tree) Children() []Node     { return t.Kids }
func (t *Tree) Text() string         { return t.Source }
func (t *Tree) Pos() errors.Position { return t.Position }
