package main

import (
	"flag"
	"fmt"
	"io"

	"lox/internal/loxtest"
	"lox/internal/vm"
)

func runTest(args []string, opts options, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(stderr, "usage: lox test [PATH...]")
		return exitUsage
	}

	targets := fs.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	var vmOpts []vm.Option
	if opts.maxSteps > 0 {
		vmOpts = append(vmOpts, vm.WithMaxSteps(opts.maxSteps))
	}

	sum, err := loxtest.RunPaths(stdout, targets, vmOpts...)
	if err != nil {
		fmt.Fprintln(stderr, "test error:", err)
		return exitIOError
	}
	if sum.Failed > 0 {
		return 1
	}
	return exitOK
}
