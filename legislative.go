package alphahitler

import (
	"github.com/pkg/errors"

	"github.com/timpalpant/alphahitler/gamestate"
	"github.com/timpalpant/alphahitler/internal/expr"
	"github.com/timpalpant/alphahitler/model"
	"github.com/timpalpant/alphahitler/roles"
)

// LegislativeSession returns the likelihood of the observed session under
// the assignment, and updates c with the cards it consumed and the policy
// it enacted. c is left unchanged if the likelihood is zero.
func (e *Evaluator) LegislativeSession(ls gamestate.LegislativeSession, a roles.Assignment, c *gamestate.Context) (float64, error) {
	r, err := rolesOf(a, ls.President, ls.Chancellor)
	if err != nil {
		return 0, errors.Wrapf(err, "session %v", ls)
	}
	pres, chan_ := r[0], r[1]

	if ls.Outcome == gamestate.Rejected {
		if ls.TopDeck == nil {
			return 1, nil
		}
		return e.TopDeck(*ls.TopDeck, c), nil
	}

	electedHitler := chan_ == roles.Hitler && c.InHitlerZone()
	if ls.Outcome == gamestate.HitlerElected {
		if electedHitler {
			return 1, nil
		}
		return 0, nil
	}
	// The game would already have ended.
	if electedHitler {
		return 0, nil
	}

	if c.NeedsReshuffle() {
		c.Reshuffle()
	}

	if ls.Outcome == gamestate.Vetoed {
		return e.veto(c), nil
	}

	party, ok := ls.Outcome.Enacted()
	if !ok {
		return 0, errors.Errorf("session %v: invalid outcome", ls)
	}

	params := e.resolver.Resolve(c)
	var likelihood [gamestate.CardsPerSession + 1]float64
	for presGetActual := range likelihood {
		if e.opts.ConditionOnActuals && ls.PresGetActual != nil && *ls.PresGetActual != presGetActual {
			continue
		}

		rows := e.repo.Legislative(pres, chan_, party, presGetActual)
		likelihood[presGetActual], err = e.sumMatching(ls, rows, params)
		if err != nil {
			return 0, errors.Wrapf(err, "session %v", ls)
		}
	}

	total := c.Draw(likelihood[:], gamestate.CardsPerSession)
	if total == 0 {
		return 0, nil
	}

	c.Enact(party)
	if c.NeedsReshuffle() {
		c.Reshuffle()
	}

	return total, nil
}

// sumMatching marginalizes the rows over every claim that was not
// recorded.
func (e *Evaluator) sumMatching(ls gamestate.LegislativeSession, rows []model.LegislativeRow, params expr.Params) (float64, error) {
	var total float64
	for _, row := range rows {
		if !matches(ls.PresGetClaim, row.PresGetClaim) ||
			!matches(ls.PresGiveClaim, row.PresGiveClaim) ||
			!matches(ls.ChanGetClaim, row.ChanGetClaim) {
			continue
		}
		if e.opts.ConditionOnActuals && !matches(ls.ChanGetActual, row.ChanGetActual) {
			continue
		}

		p, err := expr.Probability(row.Probability, params)
		if err != nil {
			return 0, err
		}
		total += p
	}

	return total, nil
}

func matches(recorded *int, v int) bool {
	return recorded == nil || *recorded == v
}

// veto discards three unseen cards. The decision to veto is not modeled.
func (e *Evaluator) veto(c *gamestate.Context) float64 {
	if p := c.Draw([]float64{1, 1, 1, 1}, gamestate.CardsPerSession); p == 0 {
		return 0
	}

	if c.NeedsReshuffle() {
		c.Reshuffle()
	}
	return 1
}

// TopDeck returns the probability that the top card of the pile is of
// the given party, enacts it, and conditions c on it.
func (e *Evaluator) TopDeck(p gamestate.Party, c *gamestate.Context) float64 {
	likelihood := []float64{1, 0}
	if p == gamestate.Liberal {
		likelihood = []float64{0, 1}
	}

	prob := c.Draw(likelihood, 1)
	if prob == 0 {
		return 0
	}

	c.Enact(p)
	if c.NeedsReshuffle() {
		c.Reshuffle()
	}
	return prob
}
