// Package expr implements the small arithmetic language used to write
// behavior model probabilities: numeric literals, named parameters,
// + - * / and parentheses. Expressions are parsed once into a typed tree
// and evaluated against a parameter table; there is no other way for
// table content to run.
package expr

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Params binds parameter names to values.
type Params map[string]float64

// Expr is a node of a parsed expression tree.
type Expr interface {
	// Eval computes the value of the expression. Every referenced symbol
	// must be bound in p.
	Eval(p Params) (float64, error)
	String() string
}

// UnboundSymbolError is returned when an expression references a
// parameter that has no value.
type UnboundSymbolError struct {
	Name string
}

func (e *UnboundSymbolError) Error() string {
	return fmt.Sprintf("unbound symbol %q", e.Name)
}

// Literal is a numeric constant.
type Literal float64

func (l Literal) Eval(Params) (float64, error) {
	return float64(l), nil
}

func (l Literal) String() string {
	return strconv.FormatFloat(float64(l), 'g', -1, 64)
}

// Symbol is a reference to a named parameter.
type Symbol string

func (s Symbol) Eval(p Params) (float64, error) {
	v, ok := p[string(s)]
	if !ok {
		return 0, &UnboundSymbolError{Name: string(s)}
	}

	return v, nil
}

func (s Symbol) String() string {
	return string(s)
}

// Sum adds its terms.
type Sum []Expr

func (s Sum) Eval(p Params) (float64, error) {
	var total float64
	for _, term := range s {
		v, err := term.Eval(p)
		if err != nil {
			return 0, err
		}
		total += v
	}

	return total, nil
}

func (s Sum) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, term := range s {
		if neg, ok := term.(Negate); ok {
			sb.WriteByte('-')
			sb.WriteString(neg.X.String())
			continue
		}
		if i > 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(term.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Product multiplies its factors.
type Product []Expr

func (m Product) Eval(p Params) (float64, error) {
	total := 1.0
	for _, factor := range m {
		v, err := factor.Eval(p)
		if err != nil {
			return 0, err
		}
		total *= v
	}

	return total, nil
}

func (m Product) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, factor := range m {
		if rcp, ok := factor.(Reciprocal); ok {
			if i == 0 {
				sb.WriteByte('1')
			}
			sb.WriteByte('/')
			sb.WriteString(rcp.X.String())
			continue
		}
		if i > 0 {
			sb.WriteByte('*')
		}
		sb.WriteString(factor.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Negate is unary minus.
type Negate struct {
	X Expr
}

func (n Negate) Eval(p Params) (float64, error) {
	v, err := n.X.Eval(p)
	return -v, err
}

func (n Negate) String() string {
	return "(-" + n.X.String() + ")"
}

// Reciprocal is 1/X. Division is a Product with a Reciprocal factor.
type Reciprocal struct {
	X Expr
}

func (r Reciprocal) Eval(p Params) (float64, error) {
	v, err := r.X.Eval(p)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, errors.Errorf("division by zero in %v", r.X)
	}

	return 1 / v, nil
}

func (r Reciprocal) String() string {
	return "(1/" + r.X.String() + ")"
}

// Mul joins expressions with multiplication, flattening nested products.
// Each operand keeps its own subtree, so precedence inside it is preserved.
func Mul(factors ...Expr) Expr {
	var result Product
	for _, f := range factors {
		if p, ok := f.(Product); ok {
			result = append(result, p...)
		} else {
			result = append(result, f)
		}
	}

	if len(result) == 1 {
		return result[0]
	}
	return result
}

// Symbols returns the sorted, distinct parameter names referenced by e.
func Symbols(e Expr) []string {
	seen := make(map[string]struct{})
	collectSymbols(e, seen)
	result := make([]string, 0, len(seen))
	for name := range seen {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func collectSymbols(e Expr, seen map[string]struct{}) {
	switch e := e.(type) {
	case Symbol:
		seen[string(e)] = struct{}{}
	case Sum:
		for _, term := range e {
			collectSymbols(term, seen)
		}
	case Product:
		for _, factor := range e {
			collectSymbols(factor, seen)
		}
	case Negate:
		collectSymbols(e.X, seen)
	case Reciprocal:
		collectSymbols(e.X, seen)
	}
}

// Probability evaluates e and checks that the result is a probability.
// Small floating point excursions outside [0, 1] are clamped.
func Probability(e Expr, p Params) (float64, error) {
	v, err := e.Eval(p)
	if err != nil {
		return 0, err
	}

	const tol = 1e-9
	switch {
	case math.IsNaN(v) || v < -tol || v > 1+tol:
		return 0, errors.Errorf("%v evaluated to %v, not a probability", e, v)
	case v < 0:
		return 0, nil
	case v > 1:
		return 1, nil
	}

	return v, nil
}
