package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/HugoGGuerrier/lkql-jit/pkg/ast"
	"github.com/HugoGGuerrier/lkql-jit/pkg/bytecode"
	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
	"github.com/HugoGGuerrier/lkql-jit/pkg/ir"
)

func (c *Compiler) compileLiteral(node ast.Node) error {
	dest := c.dest()

	switch node.Kind() {
	case ast.KindBoolTrue:
		c.emitPrimitive(dest, ir.PrimTrue)
	case ast.KindBoolFalse:
		c.emitPrimitive(dest, ir.PrimFalse)
	case ast.KindUnit:
		c.emitPrimitive(dest, ir.PrimNil)
	case ast.KindInteger:
		return c.compileInteger(node, dest)
	case ast.KindString:
		return c.compileString(node, dest)
	case ast.KindPattern:
		return c.compilePattern(node, dest)
	default:
		errors.Internalf("compileLiteral called on %q", node.Kind())
	}
	return nil
}

func (c *Compiler) compileInteger(node ast.Node, dest uint8) error {
	v, err := strconv.ParseInt(node.Text(), 10, 64)
	if err != nil {
		return &errors.CompileError{
			Position: node.Pos(),
			Msg:      fmt.Sprintf("invalid integer literal %q", node.Text()),
		}
	}

	switch {
	case v >= math.MinInt16 && v <= math.MaxInt16:
		c.emitShort(dest, int16(v))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		c.emitNumber(dest, c.env.AddNumeric(bytecode.KInt(int32(v))))
	default:
		// Too wide for the integer constant form; the VM holds it as a
		// double, with the precision loss that implies past 2^53.
		c.emitNumber(dest, c.env.AddNumeric(bytecode.KNum(float64(v))))
	}
	return nil
}

func (c *Compiler) compileString(node ast.Node, dest uint8) error {
	content, err := unquote(node.Text())
	if err != nil {
		return &errors.CompileError{Position: node.Pos(), Msg: err.Error()}
	}
	c.emitString(dest, content)
	return nil
}

// compilePattern compiles a regex pattern literal p"...". The pattern body
// reaches the VM as a plain string, but its syntax is checked here so a
// malformed pattern fails at compile time rather than at the first match.
// LKQL patterns allow Perl-style constructs the stdlib engine rejects,
// hence regexp2.
func (c *Compiler) compilePattern(node ast.Node, dest uint8) error {
	text := node.Text()
	if len(text) < 3 || !strings.HasPrefix(text, `p"`) || !strings.HasSuffix(text, `"`) {
		return &errors.CompileError{
			Position: node.Pos(),
			Msg:      fmt.Sprintf("malformed pattern literal %q", text),
		}
	}
	body := text[2 : len(text)-1]

	if _, err := regexp2.Compile(body, regexp2.None); err != nil {
		return &errors.CompileError{
			Position: node.Pos(),
			Msg:      fmt.Sprintf("invalid regex pattern: %v", err),
		}
	}

	c.emitString(dest, body)
	return nil
}

// unquote strips the surrounding quotes of a string literal and expands its
// escape sequences.
func unquote(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", fmt.Errorf("malformed string literal %q", text)
	}
	body := text[1 : len(text)-1]

	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape in string literal %q", text)
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		default:
			return "", fmt.Errorf("unknown escape \\%c in string literal", body[i])
		}
	}
	return sb.String(), nil
}
