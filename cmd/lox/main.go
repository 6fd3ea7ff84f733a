package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"

	"lox/internal/bundle"
	"lox/internal/config"
	"lox/internal/repl"
	"lox/internal/vm"

	_ "github.com/tliron/commonlog/simple"
)

// Exit codes follow sysexits.h.
const (
	exitOK      = 0
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
	exitIOError = 74
)

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

const usageMessage = `usage: lox [flags] [command] [args]

commands:
  (none)              start the REPL
  FILE                run FILE (.lox source or .loxc bundle)
  run [FILE]          run FILE, or project.entry from lox.toml
  build FILE [-o OUT] compile FILE to a bundle
  dis FILE            disassemble FILE
  tokens FILE         print the tokens of FILE
  test [PATH...]      run annotated test scripts
  repl                start the REPL

flags:
`

var log = commonlog.GetLogger("lox.cli")

type options struct {
	cfg       *config.Config
	verbosity int
	trace     bool
	printCode bool
	maxSteps  int64
}

// countFlag is a repeatable boolean flag such as -v -v.
type countFlag int

func (c *countFlag) String() string   { return strconv.Itoa(int(*c)) }
func (c *countFlag) IsBoolFlag() bool { return true }
func (c *countFlag) Set(s string) error {
	switch s {
	case "true":
		*c++
		return nil
	case "false":
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*c = countFlag(n)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lox", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageMessage)
		fs.PrintDefaults()
	}

	var verbose countFlag
	fs.Var(&verbose, "v", "increase log verbosity (repeatable)")
	trace := fs.Bool("trace", false, "trace every instruction to stderr")
	printCode := fs.Bool("print-code", false, "disassemble each compiled function")
	maxSteps := fs.Int64("max-steps", 0, "abort after this many instructions (0 = unlimited)")
	configPath := fs.String("config", "", "config file (default: nearest lox.toml or lox.yaml)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	opts := options{
		cfg:       cfg,
		verbosity: cfg.Log.Verbosity + int(verbose),
		trace:     cfg.VM.Trace || *trace,
		printCode: cfg.VM.PrintCode || *printCode,
		maxSteps:  cfg.VM.MaxSteps,
	}
	if *maxSteps > 0 {
		opts.maxSteps = *maxSteps
	}
	configureLogging(opts)

	rest := fs.Args()
	if len(rest) == 0 {
		return runREPL(opts, stdout, stderr)
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "repl":
		if len(cmdArgs) != 0 {
			fmt.Fprintln(stderr, "usage: lox repl")
			return exitUsage
		}
		return runREPL(opts, stdout, stderr)
	case "run":
		if len(cmdArgs) > 1 {
			fmt.Fprintln(stderr, "usage: lox run [FILE]")
			return exitUsage
		}
		target := cfg.EntryPath()
		if len(cmdArgs) == 1 {
			target = cmdArgs[0]
		}
		if target == "" {
			fmt.Fprintln(stderr, "usage: lox run FILE (or set project.entry in lox.toml)")
			return exitUsage
		}
		return runFile(target, opts, stdout, stderr)
	case "build":
		return runBuild(cmdArgs, stderr)
	case "dis":
		return runDis(cmdArgs, stdout, stderr)
	case "tokens":
		return runTokens(cmdArgs, stdout, stderr)
	case "test":
		return runTest(cmdArgs, opts, stdout, stderr)
	}

	if len(cmdArgs) != 0 {
		fs.Usage()
		return exitUsage
	}
	return runFile(cmd, opts, stdout, stderr)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return config.Default(), nil
	}
	return config.FindAndLoad(cwd)
}

func configureLogging(opts options) {
	var path *string
	if opts.cfg.Log.File != "" {
		path = &opts.cfg.Log.File
	}
	commonlog.Configure(opts.verbosity, path)
	if opts.cfg.Path != "" {
		log.Debugf("using config %s", opts.cfg.Path)
	}
}

func newVM(opts options, stdout, stderr io.Writer) *vm.VM {
	vmOpts := []vm.Option{
		vm.WithStdout(stdout),
		vm.WithStderr(diagnosticWriter(stderr)),
		vm.WithMaxSteps(opts.maxSteps),
	}
	if opts.trace {
		vmOpts = append(vmOpts, vm.WithTrace(stderr))
	}
	if opts.printCode {
		vmOpts = append(vmOpts, vm.WithPrintCode(stdout))
	}
	return vm.New(vmOpts...)
}

func runREPL(opts options, stdout, stderr io.Writer) int {
	m := newVM(opts, stdout, stderr)
	err := repl.Run(m, repl.Options{
		Prompt:  opts.cfg.REPL.Prompt,
		History: opts.cfg.REPL.History,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitIOError
	}
	return exitOK
}

func runFile(path string, opts options, stdout, stderr io.Writer) int {
	m := newVM(opts, stdout, stderr)

	var result vm.InterpretResult
	if strings.EqualFold(filepath.Ext(path), bundle.Ext) {
		fn, err := bundle.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitIOError
		}
		log.Debugf("running bundle %s", path)
		result, _ = m.Run(fn)
	} else {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "Could not open file \"%s\".\n", path)
			return exitIOError
		}
		log.Debugf("running %s", path)
		result, _ = m.Interpret(string(src))
	}
	return exitCode(result)
}

func exitCode(r vm.InterpretResult) int {
	switch r {
	case vm.InterpretCompileError:
		return exitCompile
	case vm.InterpretRuntimeError:
		return exitRuntime
	}
	return exitOK
}

// diagnosticWriter colours error reports when w is a terminal.
func diagnosticWriter(w io.Writer) io.Writer {
	f, ok := w.(*os.File)
	if !ok {
		return w
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return w
	}
	return colorWriter{w: w, color: ansiRed}
}

type colorWriter struct {
	w     io.Writer
	color string
}

func (c colorWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(c.w, c.color); err != nil {
		return 0, err
	}
	n, err := c.w.Write(p)
	if err != nil {
		return n, err
	}
	_, err = io.WriteString(c.w, ansiReset)
	return n, err
}
