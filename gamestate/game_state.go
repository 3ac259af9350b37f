package gamestate

import (
	"fmt"

	"github.com/timpalpant/alphahitler/roles"
)

// Context is the public state of a game being replayed under one role
// assignment: what has been enacted, how large the draw pile is, and the
// belief over its composition.
//
// A Context is owned by a single replay. Evaluators mutate it in place as
// each observed event is conditioned on; it must never be shared between
// role assignments.
type Context struct {
	numPlayers  int
	numFascists int
	numLiberals int

	fascistPassed int
	liberalPassed int

	pileSize int
	pile     DrawPile
}

// NewContext returns the Context at the start of a game with the given
// number of players: nothing enacted and a full, freshly shuffled deck.
func NewContext(numPlayers int) (*Context, error) {
	nFascists, err := roles.FascistCount(numPlayers)
	if err != nil {
		return nil, err
	}

	return &Context{
		numPlayers:  numPlayers,
		numFascists: nFascists,
		numLiberals: numPlayers - nFascists - 1,
		pileSize:    TotalPolicies,
		pile:        PointMass(TotalLiberalPolicies),
	}, nil
}

// Clone returns an independent copy of the Context.
func (c *Context) Clone() *Context {
	result := *c
	return &result
}

func (c *Context) NumPlayers() int  { return c.numPlayers }
func (c *Context) NumFascists() int { return c.numFascists }
func (c *Context) NumLiberals() int { return c.numLiberals }

// FascistsPassed is the number of fascist policies enacted so far.
func (c *Context) FascistsPassed() int { return c.fascistPassed }

// LiberalsPassed is the number of liberal policies enacted so far.
func (c *Context) LiberalsPassed() int { return c.liberalPassed }

// HitlerKnowsFascists reports whether Hitler was shown the fascist team.
func (c *Context) HitlerKnowsFascists() bool {
	return roles.HitlerKnowsFascists(c.numPlayers)
}

// InHitlerZone reports whether electing Hitler chancellor now ends the game.
func (c *Context) InHitlerZone() bool {
	return c.fascistPassed >= 3
}

// PileSize is the number of cards currently in the draw pile.
func (c *Context) PileSize() int { return c.pileSize }

// Pile returns a copy of the current draw pile belief.
func (c *Context) Pile() DrawPile { return c.pile }

// Enact records that a policy of the given party was enacted.
func (c *Context) Enact(p Party) {
	if p == Fascist {
		c.fascistPassed++
	} else {
		c.liberalPassed++
	}
}

// NeedsReshuffle reports whether the pile is too small for another
// legislative session.
func (c *Context) NeedsReshuffle() bool {
	return c.pileSize < CardsPerSession
}

// Reshuffle returns every unenacted policy to the draw pile. The pile
// composition is then known exactly.
func (c *Context) Reshuffle() {
	c.pileSize = TotalPolicies - c.fascistPassed - c.liberalPassed
	c.pile = PointMass(TotalLiberalPolicies - c.liberalPassed)
}

// Draw conditions the belief on an event that depends only on how many
// liberal policies were among the top nDrawn cards, then removes those
// cards from the pile. likelihood[a] is the probability of the event given
// that a liberal policies were drawn; entries past nDrawn are ignored and
// missing entries are zero.
//
// Returns the marginal probability of the event. If it is zero the
// Context is left unchanged.
func (c *Context) Draw(likelihood []float64, nDrawn int) float64 {
	posterior, total := c.pile.posterior(likelihood, nDrawn, c.pileSize, true)
	if total == 0 {
		return 0
	}

	c.pile = posterior
	c.pileSize -= nDrawn
	return total
}

// Observe is like Draw, but the observed cards stay on top of the pile
// (e.g. a presidential peek).
func (c *Context) Observe(likelihood []float64, nDrawn int) float64 {
	posterior, total := c.pile.posterior(likelihood, nDrawn, c.pileSize, false)
	if total == 0 {
		return 0
	}

	c.pile = posterior
	return total
}

// posterior computes the Bayesian update of dp after observing an event
// with the given likelihood per number of liberal cards among the top
// nDrawn of a pile of the given size.
func (dp DrawPile) posterior(likelihood []float64, nDrawn, size int, remove bool) (DrawPile, float64) {
	var joint DrawPile
	for x, p := range dp {
		if p == 0 || x > size {
			continue
		}

		for a := 0; a <= nDrawn && a < len(likelihood) && a <= x; a++ {
			if likelihood[a] == 0 {
				continue
			}

			w := p * Hypergeometric(a, nDrawn, x, size) * likelihood[a]
			if remove {
				joint[x-a] += w
			} else {
				joint[x] += w
			}
		}
	}

	total := joint.Normalize()
	return joint, total
}

// String implements Stringer.
func (c *Context) String() string {
	return fmt.Sprintf("players: %d, passed: %dF/%dL, pile: %d %v",
		c.numPlayers, c.fascistPassed, c.liberalPassed, c.pileSize, c.pile)
}
