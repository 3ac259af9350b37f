package gamestate

import (
	"fmt"
	"math"
	"strings"
)

const (
	// Total number of policy cards in the deck.
	TotalPolicies = 17
	// Number of liberal policies in the deck.
	TotalLiberalPolicies = 6
	// Number of policies the president draws in a legislative session.
	CardsPerSession = 3
)

// DrawPile is the belief over how many liberal policies remain in the
// (hidden, shuffled) draw pile: DrawPile[x] is the probability that
// exactly x liberal policies remain. It is a value type so that copying a
// Context never aliases another Context's belief.
type DrawPile [TotalLiberalPolicies + 1]float64

// PointMass returns the belief that exactly nLiberal liberal policies
// remain.
func PointMass(nLiberal int) DrawPile {
	var dp DrawPile
	dp[nLiberal] = 1.0
	return dp
}

// Sum returns the total probability mass.
func (dp DrawPile) Sum() float64 {
	var total float64
	for _, p := range dp {
		total += p
	}
	return total
}

// Mean returns the expected number of liberal policies in the pile.
func (dp DrawPile) Mean() float64 {
	var mean float64
	for x, p := range dp {
		mean += float64(x) * p
	}
	return mean
}

// IsNormalized reports whether the belief sums to 1 within tol.
func (dp DrawPile) IsNormalized(tol float64) bool {
	return math.Abs(dp.Sum()-1) <= tol
}

// Normalize rescales dp in place to sum to 1 and returns the original
// total mass. dp is left unchanged if its mass is zero.
func (dp *DrawPile) Normalize() float64 {
	total := dp.Sum()
	if total == 0 {
		return 0
	}

	for x := range dp {
		dp[x] /= total
	}
	return total
}

// DrawProbability returns the probability that drawing nDrawn cards from a
// pile of the given size yields exactly nLiberal liberal policies,
// marginalized over the belief.
func (dp DrawPile) DrawProbability(nLiberal, nDrawn, size int) float64 {
	var total float64
	for x, p := range dp {
		if p == 0 || x > size {
			continue
		}
		total += p * Hypergeometric(nLiberal, nDrawn, x, size)
	}
	return total
}

// String implements Stringer.
func (dp DrawPile) String() string {
	parts := make([]string, len(dp))
	for x, p := range dp {
		parts[x] = fmt.Sprintf("%d:%.4f", x, p)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Hypergeometric returns the probability that nDrawn cards drawn without
// replacement from a pile of size cards, nSuccess of which are liberal,
// contain exactly k liberal cards.
func Hypergeometric(k, nDrawn, nSuccess, size int) float64 {
	denom := Choose(size, nDrawn)
	if denom == 0 {
		return 0
	}

	return Choose(nSuccess, k) * Choose(size-nSuccess, nDrawn-k) / denom
}

// Choose returns the binomial coefficient C(n, k), or 0 if k is out of
// range. Pile sizes are at most TotalPolicies, so float64 is exact.
func Choose(n, k int) float64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}

	result := 1.0
	for i := 1; i <= k; i++ {
		result = result * float64(n-k+i) / float64(i)
	}
	return math.Round(result)
}
