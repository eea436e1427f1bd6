// Package generator builds arithmetic item pools.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/drill/internal/drill"
)

// RangeConfig bounds the generated facts. Operands run from 1 to MaxOperand
// inclusive and only facts whose result lies in [MinResult, MaxResult] are
// kept.
type RangeConfig struct {
	MaxOperand int
	MinResult  int
	MaxResult  int
}

func (c RangeConfig) validate() error {
	if c.MaxOperand < 1 {
		return fmt.Errorf("%w: max operand %d is below 1", drill.ErrConfiguration, c.MaxOperand)
	}
	if c.MinResult > c.MaxResult {
		return fmt.Errorf("%w: result range [%d, %d] is inverted", drill.ErrConfiguration, c.MinResult, c.MaxResult)
	}
	return nil
}

func (c RangeConfig) accepts(result int) bool {
	return result >= c.MinResult && result <= c.MaxResult
}

// Multiplication returns the product grid a x b with a <= b.
func Multiplication(cfg RangeConfig, opts ...drill.ArithmeticOption) ([]drill.Item, error) {
	return Pool(drill.Mul, cfg, opts...)
}

// Pool returns every fact of op within cfg. Commutative operators yield
// each pair once. Pools without any fact are rejected.
func Pool(op drill.Operator, cfg RangeConfig, opts ...drill.ArithmeticOption) ([]drill.Item, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	var items []drill.Item
	for a := 1; a <= cfg.MaxOperand; a++ {
		start := 1
		if op == drill.Mul || op == drill.Add {
			start = a
		}
		for b := start; b <= cfg.MaxOperand; b++ {
			it, err := drill.NewArithmetic(a, b, op, opts...)
			if err != nil {
				return nil, err
			}
			if !cfg.accepts(it.Result()) {
				continue
			}
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no %s facts in result range [%d, %d]", drill.ErrConfiguration, op.Symbol(), cfg.MinResult, cfg.MaxResult)
	}
	return items, nil
}

// Pools concatenates the pools of several operators.
func Pools(ops []drill.Operator, cfg RangeConfig, opts ...drill.ArithmeticOption) ([]drill.Item, error) {
	var items []drill.Item
	for _, op := range ops {
		pool, err := Pool(op, cfg, opts...)
		if err != nil {
			return nil, err
		}
		items = append(items, pool...)
	}
	return items, nil
}

// ParseOps parses an operator list such as "*+".
func ParseOps(s string) ([]drill.Operator, error) {
	var ops []drill.Operator
	seen := map[drill.Operator]bool{}
	for _, r := range s {
		var op drill.Operator
		switch r {
		case '*', 'x':
			op = drill.Mul
		case '+':
			op = drill.Add
		case '-':
			op = drill.Sub
		case '/', ':':
			op = drill.Div
		case ' ', ',':
			continue
		default:
			return nil, fmt.Errorf("%w: unknown operator %q", drill.ErrConfiguration, r)
		}
		if !seen[op] {
			seen[op] = true
			ops = append(ops, op)
		}
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: no operators", drill.ErrConfiguration)
	}
	return ops, nil
}

// Framer picks how an arithmetic item is shown on each presentation.
type Framer struct {
	rnd *rand.Rand
}

// NewFramer returns a Framer. A zero seed is replaced by the clock.
func NewFramer(seed int64) *Framer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Framer{rnd: rand.New(rand.NewSource(seed))}
}

// Prompt returns the text to show for it. Arithmetic items get the inverse
// framing half of the time.
func (f *Framer) Prompt(it drill.Item) string {
	if a, ok := it.(*drill.ArithmeticItem); ok {
		return a.Question(f.rnd.Intn(2) == 1)
	}
	return it.Prompt()
}
