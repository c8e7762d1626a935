package codefence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMatchesLanguage(t *testing.T) {
	md := "Here is the fix:\n\n" +
		"```go\npackage main\n\nfunc main() {}\n```\n\n" +
		"And the same in shell:\n\n" +
		"```bash\ngo run main.go\n```\n"

	blocks := Extract(md, []string{"go", "golang"})
	require.Len(t, blocks, 1)
	assert.Equal(t, "package main\n\nfunc main() {}\n", blocks[0])
}

func TestExtractCaseInsensitive(t *testing.T) {
	md := "```Go\nfmt.Println(1)\n```\n"

	blocks := Extract(md, []string{"go"})
	require.Len(t, blocks, 1)
	assert.Equal(t, "fmt.Println(1)\n", blocks[0])
}

func TestExtractSkipsUntaggedFences(t *testing.T) {
	md := "```\nno language tag\n```\n"

	assert.Empty(t, Extract(md, []string{"go"}))
}

func TestExtractPreservesOrder(t *testing.T) {
	md := "```go\nfirst\n```\n\ntext\n\n```golang\nsecond\n```\n"

	blocks := Extract(md, []string{"go", "golang"})
	require.Len(t, blocks, 2)
	assert.Equal(t, "first\n", blocks[0])
	assert.Equal(t, "second\n", blocks[1])
}

func TestExtractNoFences(t *testing.T) {
	assert.Empty(t, Extract("just prose, `inline code` does not count", []string{"go"}))
}

func TestMeaningfulLines(t *testing.T) {
	code := "// header comment\n" +
		"package main\n" +
		"\n" +
		"func main() {\n" +
		"\t// inner comment\n" +
		"\tprintln(1)\n" +
		"}\n"

	assert.Equal(t, 4, MeaningfulLines(code, "//"))
}

func TestNonTrivial(t *testing.T) {
	small := "a := 1\nb := 2\n"
	assert.False(t, NonTrivial(small, "//", 5))

	big := "l1\nl2\nl3\nl4\nl5\nl6\n"
	assert.True(t, NonTrivial(big, "//", 5))

	exactly := "l1\nl2\nl3\nl4\nl5\n"
	assert.False(t, NonTrivial(exactly, "//", 5), "threshold is strict")
}
