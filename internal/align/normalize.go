// Package align scores a spoken or typed word sequence against a reference
// sentence by matching their letter streams.
package align

import "strings"

// Punctuation lists the characters removed before matching.
const Punctuation = "!?.,;:-–…\"'„”“‘’«»"

var punctStripper = buildStripper()

func buildStripper() *strings.Replacer {
	pairs := make([]string, 0, 2*len(Punctuation))
	for _, r := range Punctuation {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}

// Normalize lowercases a word and strips punctuation.
func Normalize(word string) string {
	return punctStripper.Replace(strings.ToLower(word))
}

// Tokens splits each input on whitespace and normalizes the pieces. Pieces
// that normalize to nothing are dropped.
func Tokens(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		for _, f := range strings.Fields(w) {
			if n := Normalize(f); n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}

// Stream joins the normalized tokens of words with single spaces.
func Stream(words []string) string {
	return strings.Join(Tokens(words), " ")
}
