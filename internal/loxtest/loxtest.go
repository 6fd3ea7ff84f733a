// Package loxtest runs Lox scripts annotated with their expected output
// and errors:
//
//	print 1; // expect: 1
//	var a = ; // Error at ';': Expect expression.
//	// [line 3] Error at end: Expect '}' after block.
//	nil(); // expect runtime error: Can only call functions and classes.
//
// Files containing "// nontest" are skipped.
package loxtest

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"lox/internal/vm"
)

var (
	expectedOutputPattern       = regexp.MustCompile(`// expect: ?(.*)`)
	expectedErrorPattern        = regexp.MustCompile(`// (Error.*)`)
	errorLinePattern            = regexp.MustCompile(`// \[((c|py) )?line (\d+)\] (Error.*)`)
	expectedRuntimeErrorPattern = regexp.MustCompile(`// expect runtime error: (.+)`)
	syntaxErrorPattern          = regexp.MustCompile(`\[.*line (\d+)\] (Error.+)`)
	stackTracePattern           = regexp.MustCompile(`\[line (\d+)\]`)
	nonTestPattern              = regexp.MustCompile(`// nontest`)
)

// maxReported caps the unexpected stderr lines listed per test.
const maxReported = 10

type expectedLine struct {
	line int
	text string
}

// Test holds the expectations parsed from one script.
type Test struct {
	Path   string
	Source string

	output           []expectedLine
	errors           map[string]bool
	runtimeError     string
	runtimeErrorLine int

	// Expectations counts the annotations found.
	Expectations int
}

// Parse reads the annotations in src. It returns nil for a "// nontest"
// file.
func Parse(path, src string) (*Test, error) {
	t := &Test{Path: path, Source: src, errors: map[string]bool{}}

	for i, line := range strings.Split(normalizeNewlines(src), "\n") {
		lineNum := i + 1

		if nonTestPattern.MatchString(line) {
			return nil, nil
		}

		if m := expectedOutputPattern.FindStringSubmatch(line); m != nil {
			t.output = append(t.output, expectedLine{line: lineNum, text: m[1]})
			t.Expectations++
			continue
		}

		if m := expectedErrorPattern.FindStringSubmatch(line); m != nil {
			t.errors[fmt.Sprintf("[%d] %s", lineNum, m[1])] = true
			t.Expectations++
			continue
		}

		if m := errorLinePattern.FindStringSubmatch(line); m != nil {
			t.errors[fmt.Sprintf("[%s] %s", m[3], m[4])] = true
			t.Expectations++
			continue
		}

		if m := expectedRuntimeErrorPattern.FindStringSubmatch(line); m != nil {
			t.runtimeErrorLine = lineNum
			t.runtimeError = m[1]
			t.Expectations++
		}
	}

	if len(t.errors) > 0 && t.runtimeError != "" {
		return nil, fmt.Errorf("%s: cannot expect both compile and runtime errors", path)
	}
	return t, nil
}

// Run interprets the script on a fresh VM and returns one message per
// mismatch. A nil result means the test passed.
func (t *Test) Run(opts ...vm.Option) []string {
	var stdout, stderr bytes.Buffer
	opts = append([]vm.Option{vm.WithStdout(&stdout), vm.WithStderr(&stderr)}, opts...)
	vm.New(opts...).Interpret(t.Source)

	c := &checker{}
	errorLines := splitLines(stderr.String())
	if t.runtimeError != "" {
		c.runtimeError(t, errorLines)
	} else {
		c.compileErrors(t, errorLines)
	}
	c.output(t, splitLines(stdout.String()))
	return c.failures
}

type checker struct {
	failures []string
}

func (c *checker) fail(format string, args ...any) {
	c.failures = append(c.failures, fmt.Sprintf(format, args...))
}

func (c *checker) runtimeError(t *Test, errorLines []string) {
	if len(errorLines) < 2 {
		c.fail("Expected runtime error '%s' and got none.", t.runtimeError)
		return
	}

	if errorLines[0] != t.runtimeError {
		c.fail("Expected runtime error '%s' and got:", t.runtimeError)
		c.fail("%s", errorLines[0])
	}

	var match []string
	stackLines := errorLines[1:]
	for _, line := range stackLines {
		if match = stackTracePattern.FindStringSubmatch(line); match != nil {
			break
		}
	}

	if match == nil {
		c.fail("Expected stack trace and got:")
		for _, line := range stackLines {
			c.fail("%s", line)
		}
		return
	}
	if stackLine, _ := strconv.Atoi(match[1]); stackLine != t.runtimeErrorLine {
		c.fail("Expected runtime error on line %d but was on line %d.", t.runtimeErrorLine, stackLine)
	}
}

func (c *checker) compileErrors(t *Test, errorLines []string) {
	found := map[string]bool{}
	unexpected := 0

	for _, line := range errorLines {
		if m := syntaxErrorPattern.FindStringSubmatch(line); m != nil {
			err := fmt.Sprintf("[%s] %s", m[1], m[2])
			if t.errors[err] {
				found[err] = true
				continue
			}
			if unexpected < maxReported {
				c.fail("Unexpected error:")
				c.fail("%s", line)
			}
			unexpected++
		} else if line != "" {
			if unexpected < maxReported {
				c.fail("Unexpected output on stderr:")
				c.fail("%s", line)
			}
			unexpected++
		}
	}

	if unexpected > maxReported {
		c.fail("(truncated %d more...)", unexpected-maxReported)
	}

	var missing []string
	for err := range t.errors {
		if !found[err] {
			missing = append(missing, err)
		}
	}
	sort.Strings(missing)
	for _, err := range missing {
		c.fail("Missing expected error: %s", err)
	}
}

func (c *checker) output(t *Test, lines []string) {
	for i, line := range lines {
		if i >= len(t.output) {
			c.fail("Got output '%s' when none was expected.", line)
			continue
		}
		expected := t.output[i]
		if expected.text != line {
			c.fail("Expected output '%s' on line %d and got '%s'.", expected.text, expected.line, line)
		}
	}

	for i := len(lines); i < len(t.output); i++ {
		expected := t.output[i]
		c.fail("Missing expected output '%s' on line %d.", expected.text, expected.line)
	}
}

// Summary tallies a RunPaths call.
type Summary struct {
	Passed       int
	Failed       int
	Skipped      int
	Expectations int
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Passed: %d Failed: %d Skipped: %d\n", s.Passed, s.Failed, s.Skipped)
	if s.Failed == 0 {
		fmt.Fprintf(&b, "All %d tests passed (%d expectations).", s.Passed, s.Expectations)
	} else {
		fmt.Fprintf(&b, "%d tests passed. %d tests failed.", s.Passed, s.Failed)
	}
	return b.String()
}

// RunPaths runs every *.lox file under paths, reporting failures to w as
// they happen, followed by the summary.
func RunPaths(w io.Writer, paths []string, opts ...vm.Option) (Summary, error) {
	var sum Summary

	files, err := collect(paths)
	if err != nil {
		return sum, err
	}

	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return sum, fmt.Errorf("read %s: %w", path, err)
		}

		t, err := Parse(path, string(src))
		if err != nil {
			sum.Failed++
			fmt.Fprintf(w, "TEST ERROR %s\n     %s\n\n", path, err)
			continue
		}
		if t == nil {
			sum.Skipped++
			continue
		}
		sum.Expectations += t.Expectations

		failures := t.Run(opts...)
		if len(failures) == 0 {
			sum.Passed++
			continue
		}

		sum.Failed++
		fmt.Fprintf(w, "FAIL %s\n", path)
		for _, f := range failures {
			fmt.Fprintf(w, "     %s\n", f)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, sum)
	return sum, nil
}

func collect(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".lox" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// splitLines splits on newlines, dropping the empty string after a
// trailing newline.
func splitLines(s string) []string {
	s = normalizeNewlines(s)
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
