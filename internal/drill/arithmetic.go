package drill

import (
	"fmt"
	"math"
	"time"
)

// Operator is an arithmetic operation.
type Operator string

const (
	// Mul multiplies the operands.
	Mul Operator = "*"
	// Add adds the operands.
	Add Operator = "+"
	// Sub subtracts B from A.
	Sub Operator = "-"
	// Div asks for B given the product A*B and A.
	Div Operator = "/"
)

// Symbol returns the operator as shown to the learner.
func (o Operator) Symbol() string {
	switch o {
	case Mul:
		return "x"
	case Div:
		return ":"
	default:
		return string(o)
	}
}

func (o Operator) commutative() bool {
	return o == Mul || o == Add
}

// DifficultyPolicy scores arithmetic items by the size of their result.
type DifficultyPolicy struct {
	LogBase float64
}

// DefaultDifficulty matches the multiplication-table drill: products up to 8
// score 0 and every extra power of 9 adds one unit.
var DefaultDifficulty = DifficultyPolicy{LogBase: 9}

// Score returns the difficulty of an item with operands a, b and the given
// result. Anything involving 0 or 1 is trivial.
func (p DifficultyPolicy) Score(a, b, result int) float64 {
	if a <= 1 || b <= 1 {
		return 0
	}
	base := p.LogBase
	if base <= 1 {
		base = DefaultDifficulty.LogBase
	}
	return math.Max(1, math.Log(float64(result)+1)/math.Log(base)) - 1
}

// ArithmeticItem is an arithmetic fact.
type ArithmeticItem struct {
	A  int
	B  int
	Op Operator

	key        Key
	difficulty float64
	time       TimePolicy
}

// ArithmeticOption customizes an ArithmeticItem.
type ArithmeticOption func(*ArithmeticItem)

// WithArithmeticTime overrides the time policy.
func WithArithmeticTime(p TimePolicy) ArithmeticOption {
	return func(it *ArithmeticItem) {
		it.time = p
	}
}

// WithDifficulty overrides the difficulty policy.
func WithDifficulty(p DifficultyPolicy) ArithmeticOption {
	return func(it *ArithmeticItem) {
		it.difficulty = p.Score(it.A, it.B, it.Result())
	}
}

// NewArithmetic builds an arithmetic item. Operands must be non-negative and
// a division needs a non-zero divisor.
func NewArithmetic(a, b int, op Operator, opts ...ArithmeticOption) (*ArithmeticItem, error) {
	switch op {
	case Mul, Add, Sub, Div:
	default:
		return nil, fmt.Errorf("%w: unknown operator %q", ErrConfiguration, op)
	}
	if a < 0 || b < 0 {
		return nil, fmt.Errorf("%w: negative operand in %d %s %d", ErrConfiguration, a, op, b)
	}
	if op == Div && a == 0 {
		return nil, fmt.Errorf("%w: division by zero", ErrConfiguration)
	}
	it := &ArithmeticItem{A: a, B: b, Op: op, time: DefaultArithmeticTime}
	it.difficulty = DefaultDifficulty.Score(a, b, it.Result())
	lo, hi := a, b
	if op.commutative() && lo > hi {
		lo, hi = hi, lo
	}
	it.key = Key(fmt.Sprintf("arith:%s:%d:%d", op, lo, hi))
	for _, opt := range opts {
		opt(it)
	}
	return it, nil
}

// MustArithmetic is NewArithmetic for literals known to be valid.
func MustArithmetic(a, b int, op Operator) *ArithmeticItem {
	it, err := NewArithmetic(a, b, op)
	if err != nil {
		panic(err)
	}
	return it
}

// Result returns the expected answer.
func (it *ArithmeticItem) Result() int {
	switch it.Op {
	case Add:
		return it.A + it.B
	case Sub:
		return it.A - it.B
	case Div:
		return it.B
	default:
		return it.A * it.B
	}
}

// Dividend returns A*B, the number shown on the left of a division.
func (it *ArithmeticItem) Dividend() int {
	return it.A * it.B
}

// Key implements Item.
func (it *ArithmeticItem) Key() Key { return it.key }

// Kind implements Item.
func (it *ArithmeticItem) Kind() Kind { return KindArithmetic }

// Difficulty implements Item.
func (it *ArithmeticItem) Difficulty() float64 { return it.difficulty }

// TimeLimit implements Item.
func (it *ArithmeticItem) TimeLimit() time.Duration { return it.time.Limit(it.difficulty) }

// Prompt implements Item.
func (it *ArithmeticItem) Prompt() string { return it.Question(false) }

// Question renders the item. The inverse framing swaps the operands of a
// commutative operation; it is ignored for the others.
func (it *ArithmeticItem) Question(inverse bool) string {
	if it.Op == Div {
		return fmt.Sprintf("%d %s %d", it.Dividend(), it.Op.Symbol(), it.A)
	}
	a, b := it.A, it.B
	if inverse && it.Op.commutative() {
		a, b = b, a
	}
	return fmt.Sprintf("%d %s %d", a, it.Op.Symbol(), b)
}

func (it *ArithmeticItem) sealed() {}
