// Package langid answers a single question: is this prompt English?
//
// The classifier is a lightweight heuristic over normalized text: it demands a
// mostly-Latin letter inventory plus a minimum density of high-frequency
// English function words. It is deliberately conservative in the same
// direction as the evaluation pipeline needs: undetectable text (empty, all
// symbols, all code) counts as not English rather than as an error.
package langid

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// stopwords are high-frequency English function words. Hitting a few of them
// in a short prompt is strong evidence of English; natural text in other
// languages rarely contains them.
var stopwords = []string{
	"the", "be", "is", "are", "was", "were", "to", "of", "and", "a", "an",
	"in", "that", "have", "has", "it", "for", "not", "on", "with", "he",
	"she", "as", "you", "do", "does", "at", "this", "but", "his", "her",
	"by", "from", "they", "we", "say", "or", "will", "my", "one", "all",
	"would", "there", "their", "what", "so", "up", "out", "if", "about",
	"who", "get", "which", "go", "me", "when", "make", "can", "like",
	"time", "no", "just", "him", "know", "take", "people", "into", "year",
	"your", "good", "some", "could", "them", "see", "other", "than",
	"then", "now", "look", "only", "come", "its", "over", "think", "also",
	"back", "after", "use", "two", "how", "our", "work", "first", "well",
	"way", "even", "new", "want", "because", "any", "these", "give",
	"day", "most", "us", "please", "write", "need", "should", "using",
	"function", "code", "help",
}

// Classifier is the shared English predicate. Construct once with New and
// pass the same handle to every component that needs it; the word table is
// built lazily on first use and the classifier is safe for concurrent use.
type Classifier struct {
	once  sync.Once
	words map[string]bool
}

// New returns an uninitialized classifier; the table is built on first call.
func New() *Classifier {
	return &Classifier{}
}

func (c *Classifier) init() {
	c.words = make(map[string]bool, len(stopwords))
	for _, w := range stopwords {
		c.words[w] = true
	}
}

// IsEnglish classifies text. Text with no letters at all is undetectable and
// reported as not English; classification never fails.
func (c *Classifier) IsEnglish(text string) bool {
	c.once.Do(c.init)

	normalized := strings.ToLower(norm.NFC.String(text))

	var latin, letters int
	tokens := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	for _, r := range normalized {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if r < 128 {
			latin++
		}
	}
	if letters == 0 {
		return false
	}
	if float64(latin)/float64(letters) < 0.75 {
		return false
	}

	hits := 0
	for _, tok := range tokens {
		if c.words[strings.Trim(tok, "'")] {
			hits++
		}
	}
	if len(tokens) == 0 {
		return false
	}
	// Short prompts need at least one function word; longer ones need a
	// plausible density of them.
	if len(tokens) < 8 {
		return hits >= 1
	}
	return float64(hits)/float64(len(tokens)) >= 0.08
}
