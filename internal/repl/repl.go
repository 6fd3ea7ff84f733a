package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"
	"golang.org/x/term"

	"lox/internal/vm"
)

const (
	banner        = "Lox REPL (Ctrl+D to exit)"
	defaultPrompt = "> "
	contPrompt    = "... "
)

var log = commonlog.GetLogger("lox.repl")

type Options struct {
	Prompt string
	// History is the liner history file. Empty disables history.
	History string
}

func (o Options) prompt() string {
	if o.Prompt == "" {
		return defaultPrompt
	}
	return o.Prompt
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Run picks the line-editing loop when stdin is a terminal and the plain
// loop otherwise.
func Run(m *vm.VM, opts Options) error {
	if IsInteractive() {
		return StartInteractive(m, opts)
	}
	return Start(os.Stdin, os.Stdout, m, opts)
}

// Start reads entries from in until EOF and interprets each one on m.
// Errors are reported by the VM and never end the loop.
func Start(in io.Reader, out io.Writer, m *vm.VM, opts Options) error {
	scanner := bufio.NewScanner(in)
	var e entry

	fmt.Fprintln(out, banner)

	for {
		if e.empty() {
			fmt.Fprint(out, opts.prompt())
		} else {
			fmt.Fprint(out, contPrompt)
		}

		if !scanner.Scan() {
			fmt.Fprint(out, "\n")
			return scanner.Err()
		}

		line := scanner.Text()
		if e.empty() && isQuit(line) {
			return nil
		}

		src, ok := e.feed(line)
		if !ok {
			continue
		}
		m.Interpret(src)
	}
}

// StartInteractive runs the loop with line editing and history. Ctrl-C at
// the prompt drops the pending entry and resets the VM; Ctrl-C while a
// program runs interrupts it.
func StartInteractive(m *vm.VM, opts Options) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if opts.History != "" {
		if f, err := os.Open(opts.History); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(opts.History)
			if err != nil {
				log.Warningf("cannot save history: %s", err)
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	sigc := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigc, os.Interrupt)
	defer func() {
		signal.Stop(sigc)
		close(done)
	}()
	go func() {
		for {
			select {
			case <-sigc:
				log.Debug("interrupt")
				m.Interrupt()
			case <-done:
				return
			}
		}
	}()

	fmt.Println(banner)

	var e entry
	for {
		prompt := opts.prompt()
		if !e.empty() {
			prompt = contPrompt
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			e = entry{}
			m.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		if e.empty() && isQuit(line) {
			return nil
		}

		src, ok := e.feed(line)
		if !ok {
			continue
		}
		if strings.TrimSpace(src) != "" {
			ln.AppendHistory(strings.ReplaceAll(strings.TrimRight(src, "\n"), "\n", " "))
		}
		m.Interpret(src)
	}
}

func isQuit(line string) bool {
	trim := strings.TrimSpace(line)
	return trim == "exit" || trim == "quit"
}

// entry accumulates lines until braces and parentheses balance and no
// string literal is left open.
type entry struct {
	buf      strings.Builder
	braces   int
	parens   int
	inString bool
}

func (e *entry) empty() bool { return e.buf.Len() == 0 }

// feed adds a line and returns the whole entry once it is complete.
func (e *entry) feed(line string) (string, bool) {
	e.buf.WriteString(line)
	e.buf.WriteString("\n")
	e.braces, e.parens, e.inString = updateBalance(line, e.braces, e.parens, e.inString)

	if e.braces > 0 || e.parens > 0 || e.inString {
		return "", false
	}

	src := e.buf.String()
	*e = entry{}
	return src, true
}

func updateBalance(line string, braces, parens int, inString bool) (int, int, bool) {
	for i := 0; i < len(line); i++ {
		ch := line[i]

		if inString {
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			break
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			braces++
		case '}':
			if braces > 0 {
				braces--
			}
		case '(':
			parens++
		case ')':
			if parens > 0 {
				parens--
			}
		}
	}
	return braces, parens, inString
}
