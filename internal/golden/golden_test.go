package golden

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestExtractCasesParsesInputAndExpectationFences(t *testing.T) {
	doc := "" +
		"### Test: add returns i64\n\n" +
		"```plasm\nfn add(i64 a, i64 b) i64 { return a + b; }\n```\n\n" +
		"```wat\n(func $add\n```\n"

	cases, err := ExtractCases(doc)
	be.Err(t, err, nil)
	be.Equal(t, 1, len(cases))
	be.Equal(t, "add returns i64", cases[0].Name)
	be.Equal(t, ExpectWat, cases[0].Kind)
	be.True(t, len(cases[0].Source) > 0)
}

func TestExtractCasesRejectsFenceOutsideHeading(t *testing.T) {
	_, err := ExtractCases("```plasm\nfn f() void {}\n```\n")
	be.True(t, err != nil)
}

func TestExtractCasesRejectsMissingExpectation(t *testing.T) {
	_, err := ExtractCases("### Test: lonely\n\n```plasm\nfn f() void {}\n```\n")
	be.True(t, err != nil)
}

func TestRunWatCaseSucceedsOnMatchingOutput(t *testing.T) {
	c := Case{
		Name:   "identity",
		Source: "fn id(i64 a) i64 { return a; }",
		Kind:   ExpectWat,
		Want:   "func $id",
	}
	ok, detail := Run(c)
	be.True(t, ok)
	be.Equal(t, "", detail)
}

func TestRunDiagCaseSucceedsOnMatchingDiagnostic(t *testing.T) {
	c := Case{
		Name:   "undefined identifier",
		Source: "fn f() i64 { return nope; }",
		Kind:   ExpectDiag,
		Want:   "nope",
	}
	ok, detail := Run(c)
	be.True(t, ok)
	be.Equal(t, "", detail)
}

func TestRunWatCaseFailsWhenSourceDoesNotCompile(t *testing.T) {
	c := Case{
		Name:   "broken",
		Source: "fn f() i64 { return nope; }",
		Kind:   ExpectWat,
		Want:   "func $f",
	}
	ok, _ := Run(c)
	be.True(t, !ok)
}

func TestGoldenFixtureFile(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "arithmetic.md")
	content, err := os.ReadFile(path)
	be.Err(t, err, nil)

	cases, err := ExtractCases(string(content))
	be.Err(t, err, nil)
	be.True(t, len(cases) > 0)

	for _, c := range cases {
		ok, detail := Run(c)
		if !ok {
			t.Errorf("%s (line %d): %s", c.Name, c.Line, detail)
		}
	}
}
