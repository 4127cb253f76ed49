// Package testutil provides golden-file helpers for mcpterm tests.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

// update rewrites golden files instead of comparing: go test ./... -update
var update = flag.Bool("update", false, "update golden files")

// testdataDir is anchored at the package directory the test binary starts
// in, so tests that change the working directory still find their goldens.
var testdataDir = func() string {
	wd, err := os.Getwd()
	if err != nil {
		return "testdata"
	}

	return filepath.Join(wd, "testdata")
}()

// AssertGolden compares got against testdata/<goldenFile>. With -update it
// writes got to the golden file instead.
func AssertGolden(t testing.TB, got, goldenFile string) {
	t.Helper()

	goldenPath := GoldenPath(goldenFile)

	if *update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			t.Fatalf("failed to create testdata directory: %v", err)
		}

		if err := os.WriteFile(goldenPath, []byte(got), 0o644); err != nil {
			t.Fatalf("failed to update golden file %s: %v", goldenPath, err)
		}

		t.Logf("updated golden file: %s", goldenPath)

		return
	}

	want, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file %s does not exist; run with -update to create it", goldenPath)
		}

		t.Fatalf("failed to read golden file %s: %v", goldenPath, err)
	}

	if got != string(want) {
		t.Errorf("output mismatch for %s\n\ngot:\n%s\n\nwant:\n%s\n\nrun with -update to refresh golden files", goldenPath, got, string(want))
	}
}

// AssertGoldenLines joins lines with newlines, adds a trailing newline and
// compares the result like AssertGolden.
func AssertGoldenLines(t testing.TB, lines []string, goldenFile string) {
	t.Helper()
	AssertGolden(t, strings.Join(lines, "\n")+"\n", goldenFile)
}

// AssertGoldenScreen strips ANSI styling and trailing blanks from a rendered
// screen before comparing it like AssertGolden.
func AssertGoldenScreen(t testing.TB, screen, goldenFile string) {
	t.Helper()
	AssertGolden(t, PlainScreen(screen), goldenFile)
}

// PlainScreen removes escape sequences and trailing spaces from each line.
func PlainScreen(screen string) string {
	lines := strings.Split(ansi.Strip(screen), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}

	return strings.Join(lines, "\n") + "\n"
}

// GoldenPath returns the full path to a golden file in the testdata
// directory of the package under test.
func GoldenPath(filename string) string {
	return filepath.Join(testdataDir, filename)
}

// ReadGolden reads a golden file, returning "" when it does not exist.
func ReadGolden(t testing.TB, goldenFile string) string {
	t.Helper()

	data, err := os.ReadFile(GoldenPath(goldenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}

		t.Fatalf("failed to read golden file %s: %v", goldenFile, err)
	}

	return string(data)
}
