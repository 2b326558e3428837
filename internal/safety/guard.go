// Package safety implements the crisis interception guard.
//
// Every inbound message passes through Scan before any other handler
// runs. A match short-circuits the whole turn: the router replies with
// the crisis resources for the user's language, clears any in-progress
// flow, and persists nothing.
//
// This is a best-effort lexical filter, not a clinical classifier.
package safety

import (
	"regexp"
	"strings"
)

// riskPhrases is the fixed multilingual phrase list. Matching is
// case-insensitive and word-bounded, so "suicide" matches but
// "suicidebynumbers.com/authors" does not trip on substrings of
// longer words.
var riskPhrases = []string{
	"kill myself",
	"suicide",
	"end it",
	"self-harm",
	"cut myself",
	"want to die",
	"не хочу жити",
	"суїцид",
	"покінчити",
	"зарізатись",
	"вкоротити",
	"самопошкодження",
}

// riskPattern wraps the phrase alternation in explicit letter/digit
// boundaries. Go's \b only understands ASCII word characters, which
// silently breaks boundary matching for the Cyrillic entries, so the
// boundaries are spelled out with Unicode classes instead.
var riskPattern = regexp.MustCompile(
	`(?i)(?:\A|[^\p{L}\p{N}_])(?:` + joinQuoted(riskPhrases) + `)(?:[^\p{L}\p{N}_]|\z)`,
)

func joinQuoted(phrases []string) string {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(quoted, "|")
}

// Scan reports whether the text contains a self-harm risk phrase.
// Pure function, no side effects.
func Scan(text string) bool {
	return riskPattern.MatchString(text)
}
