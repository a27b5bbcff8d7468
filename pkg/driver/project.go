package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Project is the TOML project file an invocation can use instead of naming
// everything on the command line. Relative paths are resolved against the
// project file's directory.
type Project struct {
	// Script is the entry-point LKQL file to compile.
	Script string `toml:"script"`
	// Charset is the IANA name of the source encoding, empty for UTF-8.
	Charset string `toml:"charset"`
	// Files are extra analysis units passed alongside the script.
	Files []string `toml:"files"`
	// Output overrides where the bytecode dump is written.
	Output string `toml:"output"`
}

// LoadProject reads and validates a project file.
func LoadProject(path string) (*Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Project
	if err := toml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid project file %s: %w", path, err)
	}
	if p.Script == "" {
		return nil, fmt.Errorf("project file %s names no script", path)
	}

	dir := filepath.Dir(path)
	p.Script = resolve(dir, p.Script)
	if p.Output != "" {
		p.Output = resolve(dir, p.Output)
	}
	for i, f := range p.Files {
		p.Files[i] = resolve(dir, f)
	}
	return &p, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
