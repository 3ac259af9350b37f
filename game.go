package alphahitler

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/alphahitler/gamestate"
	"github.com/timpalpant/alphahitler/roles"
)

// GameLikelihood replays the game under one role assignment and returns
// the product of the likelihoods of every observed event. Sessions must
// be in round order. Replay stops at the first impossible event.
func (e *Evaluator) GameLikelihood(g gamestate.Game, a roles.Assignment) (float64, error) {
	c, err := gamestate.NewContext(len(g.Players))
	if err != nil {
		return 0, err
	}

	likelihood := 1.0
	for _, ls := range g.Sessions {
		p, err := e.LegislativeSession(ls, a, c)
		if err != nil {
			return 0, errors.Wrapf(err, "round %d", ls.Round)
		}
		likelihood *= p
		if likelihood == 0 {
			glog.V(2).Infof("[%v] round %d is impossible: %v", a.Key(), ls.Round, ls)
			return 0, nil
		}

		if ls.Outcome == gamestate.Rejected {
			continue
		}

		pa, ok := g.ActionInRound(ls.Round)
		if !ok {
			continue
		}

		p, err = e.PresidentAction(pa, ls.President, a, c)
		if err != nil {
			return 0, errors.Wrapf(err, "round %d", ls.Round)
		}
		likelihood *= p
		if likelihood == 0 {
			glog.V(2).Infof("[%v] round %d is impossible: %v", a.Key(), ls.Round, pa)
			return 0, nil
		}
	}

	glog.V(2).Infof("[%v] likelihood %g, final state: %v", a.Key(), likelihood, c)
	return likelihood, nil
}
