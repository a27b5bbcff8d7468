package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/HugoGGuerrier/lkql-jit/pkg/bytecode"
	"github.com/HugoGGuerrier/lkql-jit/pkg/driver"
	"github.com/HugoGGuerrier/lkql-jit/pkg/errors"
)

func main() {
	scriptFlag := flag.String("S", "", "LKQL script to compile")
	flag.StringVar(scriptFlag, "script", "", "LKQL script to compile")
	projectFlag := flag.String("P", "", "Project file describing the compilation")
	flag.StringVar(projectFlag, "project", "", "Project file describing the compilation")
	charsetFlag := flag.String("C", "", "IANA charset of the source files (default UTF-8)")
	flag.StringVar(charsetFlag, "charset", "", "IANA charset of the source files (default UTF-8)")
	dumpFlag := flag.Bool("b", false, "Dump the generated bytecode as hex instead of writing a file")
	flag.BoolVar(dumpFlag, "bytecode", false, "Dump the generated bytecode as hex instead of writing a file")

	flag.Parse()

	script := *scriptFlag
	charset := *charsetFlag
	output := ""
	files := flag.Args()

	if *projectFlag != "" {
		project, err := driver.LoadProject(*projectFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lkqlc: %v\n", err)
			os.Exit(64) // command line usage error
		}
		if script == "" {
			script = project.Script
		}
		if charset == "" {
			charset = project.Charset
		}
		output = project.Output
		files = append(files, project.Files...)
	}

	if script == "" {
		fmt.Fprintf(os.Stderr, "Usage: lkqlc -S <script.lkql> [-C charset] [-b] [files...]\n")
		fmt.Fprintf(os.Stderr, "       lkqlc -P <project.toml> [-b]\n")
		os.Exit(64)
	}
	for _, path := range append([]string{script}, files...) {
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(os.Stderr, "lkqlc: no such file: %s\n", path)
			os.Exit(64)
		}
	}

	src, err := driver.ReadSource(script, charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lkqlc: %v\n", err)
		os.Exit(70)
	}
	buf, err := driver.CompileBuffer(src, script)
	if err != nil {
		reportError(src, err)
		os.Exit(70)
	}

	if *dumpFlag {
		bytecode.WriteHexDump(os.Stdout, buf)
		return
	}

	if output == "" {
		output = driver.OutputPath(script)
	}
	if err := os.WriteFile(output, buf, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "lkqlc: %v\n", err)
		os.Exit(70)
	}
}

func reportError(src string, err error) {
	var lkql errors.LKQLError
	if ok := asLKQL(err, &lkql); ok {
		errors.DisplayError(os.Stderr, src, lkql)
		return
	}
	fmt.Fprintf(os.Stderr, "lkqlc: %v\n", err)
}

func asLKQL(err error, out *errors.LKQLError) bool {
	for err != nil {
		if lkql, ok := err.(errors.LKQLError); ok {
			*out = lkql
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
