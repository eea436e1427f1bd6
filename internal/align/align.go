package align

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Block is a run of identical runes shared by both letter streams.
type Block struct {
	Ref  int
	Cand int
	Size int
}

// Result holds the per-word verdict for a reference sentence.
type Result struct {
	Words   []string
	Correct []bool
	Blocks  []Block
}

// CorrectCount returns the number of reference words read correctly.
func (r Result) CorrectCount() int {
	n := 0
	for _, ok := range r.Correct {
		if ok {
			n++
		}
	}
	return n
}

// Accuracy returns the fraction of reference words read correctly.
func (r Result) Accuracy() float64 {
	if len(r.Correct) == 0 {
		return 0
	}
	return float64(r.CorrectCount()) / float64(len(r.Correct))
}

// span is the half-open rune range a reference word occupies in the
// reference stream. Words without letters have start == end == -1.
type span struct {
	start int
	end   int
}

func (s span) empty() bool {
	return s.start < 0
}

// gap is a stretch between matching blocks where the streams disagree.
type gap struct {
	refStart int
	refEnd   int
}

// taints reports whether the discrepancy described by g covers the word.
// A gap with no reference runes is an insertion in the candidate; it marks
// the words on both sides of the insertion point.
func (s span) taints(g gap) bool {
	if g.refStart < g.refEnd {
		return s.start < g.refEnd && g.refStart < s.end
	}
	return s.start <= g.refStart && g.refStart <= s.end
}

// Align compares the candidate words against the reference words. The
// returned Correct slice always has one entry per whitespace-separated
// reference word.
func Align(reference, candidate []string) Result {
	words := strings.Fields(strings.Join(reference, " "))
	spans, refRunes := layout(words)
	candRunes := runeTokens(Stream(candidate))

	res := Result{
		Words:   words,
		Correct: make([]bool, len(words)),
		Blocks:  matchingBlocks(refRunes, candRunes),
	}
	if len(res.Blocks) == 0 {
		return res
	}
	for i := range res.Correct {
		res.Correct[i] = true
	}
	for _, g := range gaps(res.Blocks, len(refRunes)) {
		for i, s := range spans {
			if s.empty() {
				continue
			}
			if s.taints(g) {
				res.Correct[i] = false
			}
		}
	}
	return res
}

// AlignText is Align for whole sentences.
func AlignText(reference, candidate string) Result {
	return Align(strings.Fields(reference), strings.Fields(candidate))
}

// layout computes word spans over the space-joined normalized stream.
func layout(words []string) ([]span, []string) {
	spans := make([]span, len(words))
	var stream []string
	for i, w := range words {
		n := Normalize(w)
		if n == "" {
			spans[i] = span{start: -1, end: -1}
			continue
		}
		if len(stream) > 0 {
			stream = append(stream, " ")
		}
		start := len(stream)
		stream = append(stream, runeTokens(n)...)
		spans[i] = span{start: start, end: len(stream)}
	}
	return spans, stream
}

func runeTokens(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func matchingBlocks(ref, cand []string) []Block {
	if len(ref) == 0 || len(cand) == 0 {
		return nil
	}
	m := difflib.NewMatcherWithJunk(ref, cand, false, nil)
	var blocks []Block
	for _, mb := range m.GetMatchingBlocks() {
		if mb.Size == 0 {
			continue
		}
		blocks = append(blocks, Block{Ref: mb.A, Cand: mb.B, Size: mb.Size})
	}
	return blocks
}

// gaps lists the disagreements before, between and after the blocks.
// Candidate text before the first or after the last block is only a
// disagreement when reference runes are missing there too.
func gaps(blocks []Block, refLen int) []gap {
	var out []gap
	prevRef, prevCand := 0, 0
	for i, b := range blocks {
		switch {
		case i == 0 && b.Ref > 0:
			out = append(out, gap{refStart: 0, refEnd: b.Ref})
		case i > 0 && (b.Ref > prevRef || b.Cand > prevCand):
			out = append(out, gap{refStart: prevRef, refEnd: b.Ref})
		}
		prevRef, prevCand = b.Ref+b.Size, b.Cand+b.Size
	}
	if prevRef < refLen {
		out = append(out, gap{refStart: prevRef, refEnd: refLen})
	}
	return out
}
