// Package codefence extracts fenced code blocks from markdown-formatted
// assistant responses.
package codefence

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Extract returns the contents of every fenced code block in md whose
// info-string language matches one of langs (case-insensitive). Blocks without
// a language tag are skipped. Order follows the document.
func Extract(md string, langs []string) []string {
	want := make(map[string]bool, len(langs))
	for _, l := range langs {
		want[strings.ToLower(l)] = true
	}

	source := []byte(md)
	parser := goldmark.New().Parser()
	doc := parser.Parse(text.NewReader(source))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(string(fence.Language(source)))
		if lang == "" || !want[lang] {
			return ast.WalkContinue, nil
		}

		var b strings.Builder
		lines := fence.Lines()
		for i := range lines.Len() {
			seg := lines.At(i)
			b.Write(seg.Value(source))
		}
		blocks = append(blocks, b.String())
		return ast.WalkContinue, nil
	})
	return blocks
}

// MeaningfulLines counts the lines of code that are neither blank nor
// comment-only (line comments starting with the given prefix).
func MeaningfulLines(code, commentPrefix string) int {
	n := 0
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
			continue
		}
		n++
	}
	return n
}

// NonTrivial reports whether code has more than minLines meaningful lines.
func NonTrivial(code, commentPrefix string, minLines int) bool {
	return MeaningfulLines(code, commentPrefix) > minLines
}
