package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lox/internal/bundle"
	"lox/internal/compiler"
	"lox/internal/lexer"
	"lox/internal/object"
	"lox/internal/token"
)

func runBuild(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "output path (default: FILE with a .loxc extension)")
	usage := func() int {
		fmt.Fprintln(stderr, "usage: lox build FILE [-o OUT]")
		return exitUsage
	}
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return usage()
	}
	path := fs.Arg(0)
	// Flags may also follow FILE.
	if err := fs.Parse(fs.Args()[1:]); err != nil || fs.NArg() != 0 {
		return usage()
	}

	fn, code := compileFile(path, stderr)
	if fn == nil {
		return code
	}

	target := *out
	if target == "" {
		target = strings.TrimSuffix(path, filepath.Ext(path)) + bundle.Ext
	}
	if err := bundle.WriteFile(target, fn); err != nil {
		fmt.Fprintln(stderr, err)
		return exitIOError
	}
	log.Infof("built %s", target)
	return exitOK
}

func runDis(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: lox dis FILE")
		return exitUsage
	}
	path := args[0]

	var fn *object.Function
	if strings.EqualFold(filepath.Ext(path), bundle.Ext) {
		var err error
		if fn, err = bundle.ReadFile(path); err != nil {
			fmt.Fprintln(stderr, err)
			return exitIOError
		}
	} else {
		var code int
		if fn, code = compileFile(path, stderr); fn == nil {
			return code
		}
	}

	disassembleTree(stdout, fn)
	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, compiler.FormatConstants(fn.Chunk.Constants))
	return exitOK
}

// disassembleTree prints nested functions before the function that holds
// them, the same order the compiler finishes them in.
func disassembleTree(w io.Writer, fn *object.Function) {
	for _, c := range fn.Chunk.Constants {
		if inner, ok := c.AsObj().(*object.Function); ok {
			disassembleTree(w, inner)
		}
	}
	compiler.Disassemble(w, &fn.Chunk, fn.Inspect())
}

func runTokens(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: lox tokens FILE")
		return exitUsage
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "Could not open file \"%s\".\n", args[0])
		return exitIOError
	}

	l := lexer.New(string(src))
	for {
		tok := l.NextToken()
		fmt.Fprintf(stdout, "%4d:%-3d  %-14s  %q\n", tok.StartLine, tok.Col, tok.Type, tok.Lexeme)
		if tok.Type == token.EOF {
			break
		}
	}
	return exitOK
}

// compileFile returns the compiled script, or nil and the exit code after
// reporting the failure. Diagnostics are path-qualified, unlike the
// interpreter's report lines.
func compileFile(path string, stderr io.Writer) (*object.Function, int) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Could not open file \"%s\".\n", path)
		return nil, exitIOError
	}

	fn, err := compiler.Compile(string(src))
	if err != nil {
		w := diagnosticWriter(stderr)
		var cerr *compiler.Error
		if !errors.As(err, &cerr) {
			fmt.Fprintln(w, err)
			return nil, exitCompile
		}
		for _, d := range cerr.Diagnostics {
			fmt.Fprintln(w, d.Format(path))
		}
		return nil, exitCompile
	}
	return fn, exitOK
}
