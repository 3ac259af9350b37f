package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEval(t *testing.T) {
	params := Params{"A": 0.5, "B": 0.25, "C_2": 4}
	testCases := []struct {
		input    string
		expected float64
	}{
		{"1", 1},
		{"0.75", 0.75},
		{"1e-6", 1e-6},
		{"2.5E+1", 25},
		{"A", 0.5},
		{"1-A", 0.5},
		{"1-A-B", 0.25},
		{"A*B", 0.125},
		{"1-A*B", 0.875},
		{"(1-A)*B", 0.125},
		{"A/C_2", 0.125},
		{"A/B/C_2", 0.5},
		{"-A+1", 0.5},
		{"--A", 0.5},
		{"+A", 0.5},
		{"(A)*(1-B)*(C_2)", 1.5},
		{" ( A + B ) * 2 ", 1.5},
		{"B/(A+B)", 1.0 / 3},
	}

	for _, tc := range testCases {
		e, err := Parse(tc.input)
		require.NoError(t, err, tc.input)
		got, err := e.Eval(params)
		require.NoError(t, err, tc.input)
		assert.InDelta(t, tc.expected, got, 1e-12, tc.input)

		// The rendered form must parse back to the same value.
		roundTrip, err := Parse(e.String())
		require.NoError(t, err, e.String())
		got2, err := roundTrip.Eval(params)
		require.NoError(t, err)
		assert.InDelta(t, got, got2, 1e-12, "%s -> %s", tc.input, e.String())
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{
		"",
		"(",
		"A)",
		"A +",
		"A * * B",
		"__import__('os')",
		"A; B",
		"2e",
		"1..2",
		"A B",
	} {
		_, err := Parse(input)
		assert.Error(t, err, "%q", input)
	}
}

func TestEval_UnboundSymbol(t *testing.T) {
	e := MustParse("1-PP_MISSING")
	_, err := e.Eval(Params{})
	require.Error(t, err)
	unbound, ok := err.(*UnboundSymbolError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, "PP_MISSING", unbound.Name)
}

func TestEval_DivisionByZero(t *testing.T) {
	_, err := MustParse("A/(B-B)").Eval(Params{"A": 1, "B": 2})
	assert.Error(t, err)
}

func TestMul(t *testing.T) {
	pp := MustParse("1-X")
	pc := MustParse("Y")
	cp := MustParse("X*Y")
	joined := Mul(pp, pc, cp)

	got, err := joined.Eval(Params{"X": 0.5, "Y": 0.5})
	require.NoError(t, err)
	// (1-X)*(Y)*(X*Y), not 1-X*Y*X*Y.
	assert.InDelta(t, 0.0625, got, 1e-12)
	assert.Len(t, joined.(Product), 4, "nested products are flattened")

	assert.Equal(t, pc, Mul(pc))
}

func TestSymbols(t *testing.T) {
	e := MustParse("(1-A)*B/(C+A) - -D")
	assert.Equal(t, []string{"A", "B", "C", "D"}, Symbols(e))
	assert.Empty(t, Symbols(MustParse("0.5*2")))
}

func TestProbability(t *testing.T) {
	p, err := Probability(MustParse("1-A"), Params{"A": 1e-12 + 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)

	_, err = Probability(MustParse("1+A"), Params{"A": 0.5})
	assert.Error(t, err)
}
