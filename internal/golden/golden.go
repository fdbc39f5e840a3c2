// Package golden turns a Markdown document into a table of compiler
// acceptance tests: each "### Test: <name>" heading introduces one test
// case, whose fenced ```plasm source block is compiled through the full
// pipeline and checked against the ```wat or ```diag fence that follows
// it.
//
// A ```wat fence asserts its (trimmed) content is a substring of the
// generated WAT text. A ```diag fence asserts its content is a
// substring of the concatenated parse/name/type diagnostics, and means
// the source is expected to fail somewhere before WAT generation.
package golden

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/plasm-lang/plasm/internal/irbuild"
	"github.com/plasm-lang/plasm/internal/parser"
	"github.com/plasm-lang/plasm/internal/sema"
	"github.com/plasm-lang/plasm/internal/wat"
)

// ExpectKind distinguishes the two fence languages a test case's
// expectation can arrive in.
type ExpectKind string

const (
	ExpectWat  ExpectKind = "wat"
	ExpectDiag ExpectKind = "diag"
)

// Case is one compiled-and-checked example extracted from a document.
type Case struct {
	Name   string
	Source string
	Kind   ExpectKind
	Want   string
	Line   int
}

// ExtractCases parses markdownContent and returns every test case it
// finds, in document order. An error is returned for structural
// mistakes: a fence outside any heading, a heading with no source
// fence, or a source fence with no expectation fence.
func ExtractCases(markdownContent string) ([]Case, error) {
	source := []byte(markdownContent)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var current *Case

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := textOf(node, source)
			if !strings.HasPrefix(title, "Test: ") {
				return ast.WalkContinue, nil
			}
			if current != nil {
				if err := validate(current); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *current)
			}
			current = &Case{Name: strings.TrimPrefix(title, "Test: "), Line: lineOf(node, source)}

		case *ast.FencedCodeBlock:
			lang := string(node.Language(source))
			content := strings.TrimRight(fenceText(node, source), "\n")
			line := lineOf(node, source)

			switch lang {
			case "plasm":
				if current == nil {
					return ast.WalkStop, fmt.Errorf("line %d: plasm fence found outside of a Test heading", line)
				}
				if current.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: test %q has more than one plasm fence", line, current.Name)
				}
				current.Source = content
			case "wat", "diag":
				if current == nil {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of a Test heading", line, lang)
				}
				if current.Want != "" {
					return ast.WalkStop, fmt.Errorf("line %d: test %q has more than one expectation fence", line, current.Name)
				}
				current.Kind = ExpectKind(lang)
				current.Want = content
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if current != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
		cases = append(cases, *current)
	}
	return cases, nil
}

func validate(c *Case) error {
	if c.Source == "" {
		return fmt.Errorf("test %q has no plasm fence", c.Name)
	}
	if c.Want == "" {
		return fmt.Errorf("test %q has no wat or diag fence", c.Name)
	}
	return nil
}

// Run compiles c.Source through the full pipeline and reports whether
// it matches the expectation, along with a diagnostic message on
// mismatch.
func Run(c Case) (ok bool, detail string) {
	prog := parser.ParseProgram([]byte(c.Source))
	var diags []string
	diags = append(diags, prog.Errors...)

	st := sema.BuildSymbolTable(prog)
	diags = append(diags, st.Errors.All()...)

	tc := sema.CheckProgram(prog, st)
	diags = append(diags, tc.Errors.All()...)

	joined := strings.Join(diags, "\n")

	switch c.Kind {
	case ExpectDiag:
		if strings.Contains(joined, c.Want) {
			return true, ""
		}
		return false, fmt.Sprintf("diagnostics %q do not contain %q", joined, c.Want)

	case ExpectWat:
		if len(diags) > 0 {
			return false, fmt.Sprintf("expected successful compile, got diagnostics: %s", joined)
		}
		module := irbuild.BuildModule(prog, st, tc.Types)
		text := wat.Text(module)
		if strings.Contains(text, c.Want) {
			return true, ""
		}
		return false, fmt.Sprintf("WAT output %q does not contain %q", text, c.Want)

	default:
		return false, fmt.Sprintf("unknown expectation kind %q", c.Kind)
	}
}

func textOf(n ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				b.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func fenceText(block *ast.FencedCodeBlock, source []byte) string {
	var b strings.Builder
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		b.Write(line.Value(source))
	}
	return b.String()
}

func lineOf(n ast.Node, source []byte) int {
	if n.Lines().Len() == 0 {
		return 1
	}
	start := n.Lines().At(0).Start
	line := 1
	for i := 0; i < start && i < len(source); i++ {
		if source[i] == '\n' {
			line++
		}
	}
	return line
}
