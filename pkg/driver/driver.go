// Package driver ties the front end and the compiler together: it reads
// source files (decoding them to UTF-8 when a charset override is given),
// runs the lexer, parser and compiler, and hands back the bytecode dump.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/HugoGGuerrier/lkql-jit/pkg/compiler"
	"github.com/HugoGGuerrier/lkql-jit/pkg/parser"
)

// CompileBuffer compiles LKQL source text and returns the bytecode dump.
// name is the chunk name used in diagnostics.
func CompileBuffer(src, name string) ([]byte, error) {
	root, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	buf, err := compiler.NewCompiler().Compile(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return buf, nil
}

// CompileFile reads, decodes and compiles one script. An empty charset
// means the file is already UTF-8.
func CompileFile(path, charset string) ([]byte, error) {
	src, err := ReadSource(path, charset)
	if err != nil {
		return nil, err
	}
	return CompileBuffer(src, path)
}

// ReadSource reads a file and decodes it to UTF-8 using the named IANA
// charset, if any.
func ReadSource(path, charset string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if charset == "" {
		return string(raw), nil
	}
	return decode(raw, charset)
}

func decode(raw []byte, charset string) (string, error) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return "", fmt.Errorf("unknown charset %q", charset)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("cannot decode source as %s: %w", charset, err)
	}
	return string(decoded), nil
}

// OutputPath returns where the compiled dump of a script is written:
// next to the script, with the bytecode extension.
func OutputPath(script string) string {
	return strings.TrimSuffix(script, filepath.Ext(script)) + ".ljbc"
}
