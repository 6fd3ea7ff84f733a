package loxtest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lox/internal/vm"
)

func TestCorpus(t *testing.T) {
	var out bytes.Buffer
	sum, err := RunPaths(&out, []string{"testdata"}, vm.WithMaxSteps(1_000_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Failed != 0 {
		t.Fatalf("corpus failures:\n%s", out.String())
	}
	if sum.Skipped != 1 {
		t.Fatalf("expected the nontest file to be skipped, got %d skipped", sum.Skipped)
	}
	if sum.Passed == 0 || sum.Expectations < sum.Passed {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if !strings.Contains(out.String(), "All ") {
		t.Fatalf("expected success summary, got:\n%s", out.String())
	}
}

func TestParseAnnotations(t *testing.T) {
	src := `print 1; // expect: 1
print "x"; // expect:x
var a = ; // Error at ';': Expect expression.
// [line 9] Error at end: Expect '}' after block.
// [c line 10] Error: something.
`
	test, err := Parse("t.lox", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if test.Expectations != 5 {
		t.Fatalf("expected 5 expectations, got %d", test.Expectations)
	}
	if len(test.output) != 2 || test.output[0].text != "1" || test.output[1].text != "x" {
		t.Fatalf("unexpected output expectations %+v", test.output)
	}
	for _, want := range []string{
		"[3] Error at ';': Expect expression.",
		"[9] Error at end: Expect '}' after block.",
		"[10] Error: something.",
	} {
		if !test.errors[want] {
			t.Fatalf("missing expected error %q in %v", want, test.errors)
		}
	}
}

func TestParseRejectsMixedExpectations(t *testing.T) {
	src := "a; // Error at 'a': x\nb(); // expect runtime error: y\n"
	if _, err := Parse("mixed.lox", src); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseNonTest(t *testing.T) {
	test, err := Parse("skip.lox", "// nontest\nprint 1;\n")
	if err != nil || test != nil {
		t.Fatalf("expected nil test, got %v (%v)", test, err)
	}
}

func TestRunReportsFailures(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"print 1; // expect: 2", "Expected output '2' on line 1 and got '1'."},
		{"print 1;", "Got output '1' when none was expected."},
		{"// expect: 1", "Missing expected output '1' on line 1."},
		{"print ;", "Unexpected error:"},
		{"var a = 1; // Error at 'a': nope", "Missing expected error: [1] Error at 'a': nope"},
		{"print 1; // expect runtime error: Boom.", "Expected runtime error 'Boom.' and got none."},
		{"\nnil(); // expect runtime error: Boom.", "Expected runtime error 'Boom.' and got:"},
		{"nil();\n// expect runtime error: Can only call functions and classes.",
			"Expected runtime error on line 2 but was on line 1."},
		{"nil();", "Unexpected output on stderr:"},
	}

	for _, tt := range tests {
		test, err := Parse("case.lox", tt.src)
		if err != nil {
			t.Fatalf("%q: parse error: %v", tt.src, err)
		}
		failures := test.Run()
		found := false
		for _, f := range failures {
			if f == tt.want {
				found = true
			}
		}
		if !found {
			t.Fatalf("%q: expected failure %q, got %q", tt.src, tt.want, failures)
		}
	}
}

func TestRunPassing(t *testing.T) {
	test, err := Parse("ok.lox", "print 1 + 2; // expect: 3\nprint nil; // expect: nil\n")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if failures := test.Run(); len(failures) != 0 {
		t.Fatalf("unexpected failures %q", failures)
	}
}

func TestRunPathsReportsFail(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.lox")
	if err := os.WriteFile(bad, []byte("print 1; // expect: 2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	good := filepath.Join(dir, "good.lox")
	if err := os.WriteFile(good, []byte("print 2; // expect: 2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	sum, err := RunPaths(&out, []string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Passed != 1 || sum.Failed != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	report := out.String()
	if !strings.Contains(report, "FAIL "+bad) {
		t.Fatalf("expected FAIL line for %s, got:\n%s", bad, report)
	}
	if !strings.HasSuffix(report, "1 tests passed. 1 tests failed.\n") {
		t.Fatalf("unexpected summary text:\n%s", report)
	}

	if _, err := RunPaths(&out, []string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected error for missing path")
	}
}
