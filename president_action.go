package alphahitler

import (
	"github.com/pkg/errors"

	"github.com/timpalpant/alphahitler/gamestate"
	"github.com/timpalpant/alphahitler/internal/expr"
	"github.com/timpalpant/alphahitler/roles"
)

// PresidentAction returns the likelihood of the presidential power used
// by the named president under the assignment. Peeks update the pile
// belief in c.
func (e *Evaluator) PresidentAction(pa gamestate.PresidentAction, president string, a roles.Assignment, c *gamestate.Context) (float64, error) {
	var p float64
	var err error
	switch pa.Action {
	case gamestate.Peek:
		p, err = e.Peek(pa, president, a, c)
	case gamestate.Investigate:
		p, err = e.Investigate(pa, president, a, c)
	case gamestate.Shoot:
		p, err = e.Shoot(pa, a)
	case gamestate.Elect, gamestate.Program:
		// Unmodeled: neutral.
		p = 1
	default:
		err = errors.Errorf("invalid president action %v", pa.Action)
	}

	if err != nil {
		return 0, errors.Wrapf(err, "action %v", pa)
	}
	return p, nil
}

// Peek scores the president's claim about the top three cards. The cards
// stay in the pile. An unrecorded claim carries no information.
func (e *Evaluator) Peek(pa gamestate.PresidentAction, president string, a roles.Assignment, c *gamestate.Context) (float64, error) {
	if pa.PeekClaim == nil {
		return 1, nil
	}

	pres, err := a.RoleOf(president)
	if err != nil {
		return 0, err
	}

	if c.NeedsReshuffle() {
		c.Reshuffle()
	}

	params := e.resolver.Resolve(c)
	var likelihood [gamestate.CardsPerSession + 1]float64
	for actual := range likelihood {
		prob, ok := e.repo.Peek(pres, actual, *pa.PeekClaim)
		if !ok {
			continue
		}

		likelihood[actual], err = expr.Probability(prob, params)
		if err != nil {
			return 0, err
		}
	}

	return c.Observe(likelihood[:], gamestate.CardsPerSession), nil
}

// Investigate scores the president's choice of target and the party they
// reported. An unrecorded report scores the choice of target only.
func (e *Evaluator) Investigate(pa gamestate.PresidentAction, president string, a roles.Assignment, c *gamestate.Context) (float64, error) {
	r, err := rolesOf(a, president, pa.Target)
	if err != nil {
		return 0, err
	}
	pres, target := r[0], r[1]

	var prob expr.Expr
	var ok bool
	if pa.Accuse == nil {
		prob, ok = e.repo.InvestigationTarget(pres, target)
	} else {
		prob, ok = e.repo.Investigate(pres, target, *pa.Accuse)
	}
	if !ok {
		return 0, nil
	}

	return e.probability(prob, c)
}

// Shoot is impossible if the target was Hitler, since the game would have
// ended. The choice of target is unmodeled.
func (e *Evaluator) Shoot(pa gamestate.PresidentAction, a roles.Assignment) (float64, error) {
	target, err := a.RoleOf(pa.Target)
	if err != nil {
		return 0, err
	}

	if target == roles.Hitler {
		return 0, nil
	}
	return 1, nil
}
