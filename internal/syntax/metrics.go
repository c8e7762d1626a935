// Package syntax scores filtered turns with static analysis: parseability and
// complexity via the Go parser, lint categories via golangci-lint.
package syntax

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"math"
	"strings"
)

// Metrics are the in-process measurements for one turn's code blocks. Lint
// counts come separately from the lint runner.
type Metrics struct {
	Parseable       bool
	Lines           int
	Complexity      float64
	Maintainability float64
}

// Analyze measures a turn's code blocks. Each block is parsed on its own: a
// record is parseable only when every block parses, and two complete files in
// one response stay two files instead of an unparseable concatenation. Blocks
// often hold snippets rather than complete files, so parsing is attempted
// as-is, then wrapped in a package clause, then wrapped in a function body.
// Lines is the raw line count summed over the blocks. A record with an
// unparseable block keeps its line count but scores zero on the structural
// metrics.
func Analyze(blocks []string) Metrics {
	m := Metrics{Parseable: true}

	var files []*ast.File
	for _, block := range blocks {
		m.Lines += strings.Count(block, "\n") + 1
		file, ok := parseAny(block)
		if !ok {
			m.Parseable = false
			continue
		}
		files = append(files, file)
	}
	if !m.Parseable {
		return m
	}

	var units []int
	for _, file := range files {
		units = append(units, functionComplexities(file)...)
	}
	total := 0
	for _, c := range units {
		total += c
	}
	if len(units) > 0 {
		m.Complexity = float64(total) / float64(len(units))
	}
	m.Maintainability = maintainabilityIndex(strings.Join(blocks, "\n"), total, m.Lines)
	return m
}

// parseAny tries the snippet as a file, then as a file body, then as a
// function body.
func parseAny(code string) (*ast.File, bool) {
	candidates := []string{
		code,
		"package main\n\n" + code,
		"package main\n\nfunc _() {\n" + code + "\n}",
	}
	for _, src := range candidates {
		file, err := parser.ParseFile(token.NewFileSet(), "snippet.go", src, 0)
		if err == nil {
			return file, true
		}
	}
	return nil, false
}

// functionComplexities returns the cyclomatic complexity of each function in
// the file. Each function starts at 1 and gains one per branch point.
func functionComplexities(file *ast.File) []int {
	var units []int
	ast.Inspect(file, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			// Nested literals are separate units; complexityOf skips them
			// within the parent and Inspect reaches them on its own.
			units = append(units, complexityOf(n))
		}
		return true
	})
	return units
}

func complexityOf(fn ast.Node) int {
	c := 1
	ast.Inspect(fn, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.FuncLit:
			if v != fn {
				return false // nested functions are their own units
			}
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt:
			c++
		case *ast.CaseClause:
			if v.List != nil {
				c++
			}
		case *ast.CommClause:
			if v.Comm != nil {
				c++
			}
		case *ast.BinaryExpr:
			if v.Op == token.LAND || v.Op == token.LOR {
				c++
			}
		}
		return true
	})
	return c
}

// maintainabilityIndex computes the classic MI normalized to [0,100]. Halstead
// volume is derived from the token stream: operators are keywords and
// operator tokens, operands are identifiers and literals.
func maintainabilityIndex(code string, totalComplexity, lines int) float64 {
	volume := halsteadVolume(code)
	if volume <= 0 || lines <= 0 {
		return 0
	}
	raw := 171 - 5.2*math.Log(volume) - 0.23*float64(totalComplexity) - 16.2*math.Log(float64(lines))
	mi := math.Max(0, raw) * 100 / 171
	return math.Min(100, mi)
}

func halsteadVolume(code string) float64 {
	fset := token.NewFileSet()
	f := fset.AddFile("snippet.go", fset.Base(), len(code))
	var s scanner.Scanner
	s.Init(f, []byte(code), nil, 0)

	operators := map[string]int{}
	operands := map[string]int{}
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		switch {
		case tok == token.SEMICOLON && lit == "\n":
			// synthetic semicolon, not typed by the author
		case tok == token.COMMENT, tok == token.ILLEGAL:
		case tok == token.IDENT:
			operands[lit]++
		case tok.IsLiteral():
			operands[lit]++
		case tok.IsKeyword() || tok.IsOperator():
			operators[tok.String()]++
		}
	}

	var n1, n2, bigN1, bigN2 int
	n1 = len(operators)
	n2 = len(operands)
	for _, c := range operators {
		bigN1 += c
	}
	for _, c := range operands {
		bigN2 += c
	}
	vocabulary := n1 + n2
	length := bigN1 + bigN2
	if vocabulary == 0 || length == 0 {
		return 0
	}
	return float64(length) * math.Log2(float64(vocabulary))
}
