package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// goldenTest runs a .ql file and compares its output to a .expected file.
func goldenTest(t *testing.T, name string) {
	t.Helper()

	qlPath := filepath.Join("..", "..", "testdata", name+".ql")
	expectedPath := filepath.Join("..", "..", "testdata", name+".expected")

	source, err := os.ReadFile(qlPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", qlPath, err)
	}

	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", expectedPath, err)
	}

	got, runErr := runSource(t, string(source))
	if runErr != nil {
		t.Fatalf("runtime error: %v", runErr)
	}

	expectedStr := strings.TrimRight(string(expected), "\n")
	gotStr := strings.TrimRight(got, "\n")
	if gotStr == expectedStr {
		return
	}

	t.Errorf("output mismatch for %s", name)
	expectedLines := strings.Split(expectedStr, "\n")
	gotLines := strings.Split(gotStr, "\n")
	for i := 0; i < len(expectedLines) || i < len(gotLines); i++ {
		exp, g := "<missing>", "<missing>"
		if i < len(expectedLines) {
			exp = expectedLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if exp != g {
			t.Logf("line %d: want %q, got %q", i+1, exp, g)
		}
	}
}

func TestGoldenScopes(t *testing.T) {
	goldenTest(t, "golden_scopes")
}

func TestGoldenLoops(t *testing.T) {
	goldenTest(t, "golden_loops")
}

func TestGoldenLogic(t *testing.T) {
	goldenTest(t, "golden_logic")
}

func TestGoldenFib(t *testing.T) {
	goldenTest(t, "golden_fib")
}
