package evaluate

import (
	"strconv"
	"strings"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/verte-zerg/drill/internal/align"
	"github.com/verte-zerg/drill/internal/drill"
)

const defaultHintThreshold = 0.7

// Config configures an Evaluator. Zero values select defaults.
type Config struct {
	Rewards       *Rewards   // nil → DefaultRewards
	Budget        BudgetFunc // nil → ItemBudget
	RequireOnTime bool       // arithmetic answers must also be on time
	HintThreshold float64    // zero → 0.7
}

// MarkedWord is one reference word with its verdict. Closest holds the
// candidate word most similar to a wrong reference word, if any.
type MarkedWord struct {
	Word       string
	Correct    bool
	Closest    string
	Similarity float64
}

// MarkedSentence is the reference sentence annotated word by word.
type MarkedSentence []MarkedWord

// Wrong returns the wrong reference words in order.
func (m MarkedSentence) Wrong() []string {
	var out []string
	for _, w := range m {
		if !w.Correct {
			out = append(out, w.Word)
		}
	}
	return out
}

// Outcome is the evaluation of one answer.
type Outcome struct {
	Key          drill.Key
	Kind         drill.Kind
	Correct      bool
	Accuracy     float64
	CorrectWords int
	TotalWords   int
	Tier         Tier
	Reward       float64
	Elapsed      time.Duration
	Budget       time.Duration
	Expected     string
	Answer       string
	Marked       MarkedSentence
}

// Evaluator scores answers. It holds no per-attempt state.
type Evaluator struct {
	rewards       Rewards
	budget        BudgetFunc
	requireOnTime bool
	hintThreshold float64
}

// New returns an Evaluator.
func New(cfg Config) *Evaluator {
	e := &Evaluator{
		rewards:       DefaultRewards,
		budget:        cfg.Budget,
		requireOnTime: cfg.RequireOnTime,
		hintThreshold: cfg.HintThreshold,
	}
	if cfg.Rewards != nil {
		e.rewards = *cfg.Rewards
	}
	if e.budget == nil {
		e.budget = ItemBudget
	}
	if e.hintThreshold == 0 {
		e.hintThreshold = defaultHintThreshold
	}
	return e
}

// Evaluate scores a raw answer against any item. Arithmetic answers that
// are not integers count as wrong; dictation answers are split on
// whitespace.
func (e *Evaluator) Evaluate(it drill.Item, answer string, elapsed time.Duration) Outcome {
	switch v := it.(type) {
	case *drill.ArithmeticItem:
		n, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil {
			out := e.arithmeticOutcome(v, elapsed)
			out.Answer = answer
			return out
		}
		return e.ScoreArithmetic(v, n, elapsed)
	case *drill.DictationItem:
		return e.ScoreSentence(v, strings.Fields(answer), elapsed)
	default:
		return Outcome{Key: it.Key(), Kind: it.Kind(), Answer: answer, Elapsed: elapsed}
	}
}

// ScoreArithmetic checks a numeric answer. The answer is correct when it
// equals the result, and with RequireOnTime also arrived on time.
func (e *Evaluator) ScoreArithmetic(it *drill.ArithmeticItem, answer int, elapsed time.Duration) Outcome {
	out := e.arithmeticOutcome(it, elapsed)
	out.Answer = strconv.Itoa(answer)
	if answer != it.Result() {
		return out
	}
	out.Accuracy = 1
	out.CorrectWords = 1
	out.Correct = !e.requireOnTime || out.Tier == OnTime
	return out
}

func (e *Evaluator) arithmeticOutcome(it *drill.ArithmeticItem, elapsed time.Duration) Outcome {
	budget := e.budget(it)
	tier := TierFor(elapsed, budget)
	return Outcome{
		Key:        it.Key(),
		Kind:       it.Kind(),
		TotalWords: 1,
		Tier:       tier,
		Reward:     e.rewards.For(tier),
		Elapsed:    elapsed,
		Budget:     budget,
		Expected:   strconv.Itoa(it.Result()),
	}
}

// ScoreSentence aligns the candidate words against the reference. The
// attempt is correct only when every word matched and it was on time.
func (e *Evaluator) ScoreSentence(it *drill.DictationItem, candidate []string, elapsed time.Duration) Outcome {
	res := align.Align(it.Words, candidate)
	budget := e.budget(it)
	tier := TierFor(elapsed, budget)
	out := Outcome{
		Key:          it.Key(),
		Kind:         it.Kind(),
		Accuracy:     res.Accuracy(),
		CorrectWords: res.CorrectCount(),
		TotalWords:   len(res.Words),
		Tier:         tier,
		Reward:       e.rewards.For(tier),
		Elapsed:      elapsed,
		Budget:       budget,
		Expected:     it.Sentence(),
		Answer:       strings.Join(candidate, " "),
		Marked:       e.mark(res, candidate),
	}
	out.Correct = out.CorrectWords == out.TotalWords && tier == OnTime
	return out
}

func (e *Evaluator) mark(res align.Result, candidate []string) MarkedSentence {
	heard := align.Tokens(candidate)
	marked := make(MarkedSentence, len(res.Words))
	for i, w := range res.Words {
		marked[i] = MarkedWord{Word: w, Correct: res.Correct[i]}
		if res.Correct[i] {
			continue
		}
		marked[i].Closest, marked[i].Similarity = e.closest(align.Normalize(w), heard)
	}
	return marked
}

// closest finds the heard word most similar to want by Jaro-Winkler.
func (e *Evaluator) closest(want string, heard []string) (string, float64) {
	if want == "" {
		return "", 0
	}
	best, bestScore := "", 0.0
	for _, h := range heard {
		if h == want {
			continue
		}
		if s := matchr.JaroWinkler(want, h, false); s > bestScore {
			best, bestScore = h, s
		}
	}
	if bestScore < e.hintThreshold {
		return "", 0
	}
	return best, bestScore
}
