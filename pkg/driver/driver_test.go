package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoGGuerrier/lkql-jit/pkg/bytecode"
)

func TestCompileBuffer(t *testing.T) {
	buf, err := CompileBuffer(`val x = true`+"\n"+`print(x)`, "test.lkql")
	if err != nil {
		t.Fatalf("CompileBuffer failed: %v", err)
	}
	h, err := bytecode.ReadHeader(buf)
	if err != nil {
		t.Fatalf("emitted dump has a bad header: %v", err)
	}
	if h.Version != bytecode.Version {
		t.Errorf("version = %#x", h.Version)
	}
	if buf[len(buf)-1] != 0 {
		t.Errorf("dump does not end with the zero terminator")
	}
}

func TestCompileBufferSyntaxError(t *testing.T) {
	_, err := CompileBuffer("val = ", "bad.lkql")
	if err == nil {
		t.Fatalf("expected a syntax error")
	}
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.lkql")
	if err := os.WriteFile(path, []byte(`print("hello")`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CompileFile(path, ""); err != nil {
		t.Fatalf("CompileFile failed: %v", err)
	}
}

func TestCompileFileWithCharset(t *testing.T) {
	// "été" in Latin-1.
	src := []byte{'p', 'r', 'i', 'n', 't', '(', '"', 0xE9, 't', 0xE9, '"', ')'}
	path := filepath.Join(t.TempDir(), "latin1.lkql")
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := CompileFile(path, "ISO-8859-1"); err != nil {
		t.Fatalf("CompileFile with charset failed: %v", err)
	}

	decoded, err := ReadSource(path, "ISO-8859-1")
	if err != nil {
		t.Fatal(err)
	}
	if want := `print("été")`; decoded != want {
		t.Errorf("decoded source = %q, want %q", decoded, want)
	}
}

func TestReadSourceUnknownCharset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.lkql")
	if err := os.WriteFile(path, []byte("true"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSource(path, "no-such-charset"); err == nil {
		t.Errorf("expected an error for an unknown charset")
	}
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "query.toml")
	content := `
script = "main.lkql"
charset = "ISO-8859-1"
files = ["a.adb", "sub/b.adb"]
`
	if err := os.WriteFile(project, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProject(project)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if p.Script != filepath.Join(dir, "main.lkql") {
		t.Errorf("script = %q", p.Script)
	}
	if p.Charset != "ISO-8859-1" {
		t.Errorf("charset = %q", p.Charset)
	}
	if len(p.Files) != 2 || p.Files[1] != filepath.Join(dir, "sub", "b.adb") {
		t.Errorf("files = %v", p.Files)
	}
}

func TestLoadProjectRequiresScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.toml")
	if err := os.WriteFile(path, []byte(`charset = "UTF-8"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProject(path); err == nil {
		t.Errorf("expected an error for a project without a script")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"query.lkql", "query.ljbc"},
		{"dir/query.lkql", "dir/query.ljbc"},
		{"noext", "noext.ljbc"},
		{"dir.d/noext", "dir.d/noext.ljbc"},
		{filepath.Join("dir.d", "query.lkql"), filepath.Join("dir.d", "query.ljbc")},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.in); got != tt.want {
			t.Errorf("OutputPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
