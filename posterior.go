package alphahitler

import (
	"math"
	"sort"

	"github.com/timpalpant/alphahitler/roles"
)

// RoleProbabilities is a distribution over roles, indexed by roles.Role.
type RoleProbabilities [roles.NumRoles]float64

// FascistTeam returns the probability of being a fascist or Hitler.
func (rp RoleProbabilities) FascistTeam() float64 {
	return rp[roles.Fascist] + rp[roles.Hitler]
}

// WeightedAssignment is a role assignment with its posterior probability.
type WeightedAssignment struct {
	Assignment  roles.Assignment
	Probability float64
}

// Posterior is the distribution over role assignments given a game, and
// the role distribution of each player derived from it.
type Posterior struct {
	// Assignments in enumeration order.
	Assignments []WeightedAssignment
	Marginals   map[string]RoleProbabilities
}

// Normalize rescales likelihoods to sum to 1. It returns
// ErrNoConsistentAssignment if they sum to zero or are not finite.
// A vector that already sums to 1 is returned unchanged.
func Normalize(likelihoods []float64) ([]float64, error) {
	var total float64
	for _, l := range likelihoods {
		total += l
	}
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, ErrNoConsistentAssignment
	}

	result := append([]float64(nil), likelihoods...)
	if total == 1 {
		return result, nil
	}

	for i := range result {
		result[i] /= total
	}
	return result, nil
}

// NewPosterior normalizes the likelihood of each assignment and computes
// the per-player marginals.
func NewPosterior(assignments []roles.Assignment, likelihoods []float64) (*Posterior, error) {
	probs, err := Normalize(likelihoods)
	if err != nil {
		return nil, err
	}

	p := &Posterior{
		Assignments: make([]WeightedAssignment, len(assignments)),
		Marginals:   make(map[string]RoleProbabilities),
	}
	for i, a := range assignments {
		p.Assignments[i] = WeightedAssignment{Assignment: a, Probability: probs[i]}
		for name, role := range a.Map() {
			m := p.Marginals[name]
			m[role] += probs[i]
			p.Marginals[name] = m
		}
	}

	return p, nil
}

// Top returns the k most likely assignments, most likely first. Ties keep
// enumeration order. k <= 0 returns all of them.
func (p *Posterior) Top(k int) []WeightedAssignment {
	result := append([]WeightedAssignment(nil), p.Assignments...)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Probability > result[j].Probability
	})

	if k > 0 && k < len(result) {
		result = result[:k]
	}
	return result
}

// Marginal returns the role distribution of the named player.
func (p *Posterior) Marginal(name string) (RoleProbabilities, bool) {
	m, ok := p.Marginals[name]
	return m, ok
}
