package gamestate

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/timpalpant/alphahitler/roles"
)

// Game is the public record of one game: who played, every legislative
// session, and every presidential action.
type Game struct {
	Players  []string             `yaml:"players"`
	Sessions []LegislativeSession `yaml:"sessions"`
	Actions  []PresidentAction    `yaml:"actions,omitempty"`
}

// Validate checks the record for internal consistency. Sessions must be
// sorted by strictly increasing round.
func (g Game) Validate() error {
	if _, err := roles.FascistCount(len(g.Players)); err != nil {
		return err
	}

	seated := make(map[string]struct{}, len(g.Players))
	for _, name := range g.Players {
		if _, ok := seated[name]; ok {
			return errors.Errorf("duplicate player %q", name)
		}
		seated[name] = struct{}{}
	}

	checkPlayer := func(what, name string, round int) error {
		if _, ok := seated[name]; !ok {
			return errors.Wrapf(roles.ErrUnknownPlayer, "round %d %s %q", round, what, name)
		}
		return nil
	}

	presidents := make(map[int]string, len(g.Sessions))
	for i, ls := range g.Sessions {
		if i > 0 && ls.Round <= g.Sessions[i-1].Round {
			return errors.Errorf("session rounds must be strictly increasing: %d after %d",
				ls.Round, g.Sessions[i-1].Round)
		}
		if err := checkPlayer("president", ls.President, ls.Round); err != nil {
			return err
		}
		if err := checkPlayer("chancellor", ls.Chancellor, ls.Round); err != nil {
			return err
		}
		if ls.President == ls.Chancellor {
			return errors.Errorf("round %d: %q cannot be both president and chancellor",
				ls.Round, ls.President)
		}
		if err := validateSession(ls); err != nil {
			return errors.Wrapf(err, "round %d", ls.Round)
		}
		if ls.Outcome != Rejected {
			presidents[ls.Round] = ls.President
		}
	}

	actionRounds := make(map[int]struct{}, len(g.Actions))
	for _, a := range g.Actions {
		if _, ok := actionRounds[a.Round]; ok {
			return errors.Errorf("round %d has more than one president action", a.Round)
		}
		actionRounds[a.Round] = struct{}{}
		president, ok := presidents[a.Round]
		if !ok {
			return errors.Errorf("round %d: president action without a successful government", a.Round)
		}

		switch a.Action {
		case Peek:
			if a.PeekClaim != nil && (*a.PeekClaim < 0 || *a.PeekClaim > 3) {
				return errors.Errorf("round %d: peek claim %d out of range", a.Round, *a.PeekClaim)
			}
		case Investigate, Shoot, Elect:
			if err := checkPlayer(a.Action.String()+" target", a.Target, a.Round); err != nil {
				return err
			}
			if a.Target == president {
				return errors.Errorf("round %d: president %q cannot target themselves", a.Round, president)
			}
		case Program:
		default:
			return errors.Errorf("round %d: invalid president action %v", a.Round, a.Action)
		}
	}

	return nil
}

func validateSession(ls LegislativeSession) error {
	if ls.Outcome < FascistPolicy || ls.Outcome > HitlerElected {
		return errors.Errorf("invalid outcome %v", ls.Outcome)
	}
	if ls.TopDeck != nil && ls.Outcome != Rejected {
		return errors.Errorf("top-deck recorded on a %v session", ls.Outcome)
	}

	ranges := []struct {
		name  string
		value *int
		max   int
	}{
		{"pres_get_claim", ls.PresGetClaim, 3},
		{"pres_give_claim", ls.PresGiveClaim, 2},
		{"chan_get_claim", ls.ChanGetClaim, 2},
		{"pres_get_actual", ls.PresGetActual, 3},
		{"chan_get_actual", ls.ChanGetActual, 2},
	}
	for _, r := range ranges {
		if r.value != nil && (*r.value < 0 || *r.value > r.max) {
			return errors.Errorf("%s = %d out of range [0, %d]", r.name, *r.value, r.max)
		}
	}

	return nil
}

// ActionInRound returns the president action taken in the given round.
func (g Game) ActionInRound(round int) (PresidentAction, bool) {
	for _, a := range g.Actions {
		if a.Round == round {
			return a, true
		}
	}

	return PresidentAction{}, false
}

// Sorted returns a copy of the game with sessions and actions in round order.
func (g Game) Sorted() Game {
	result := g.clone()
	sort.SliceStable(result.Sessions, func(i, j int) bool {
		return result.Sessions[i].Round < result.Sessions[j].Round
	})
	sort.SliceStable(result.Actions, func(i, j int) bool {
		return result.Actions[i].Round < result.Actions[j].Round
	})
	return result
}

// MaxUsableRound returns the last round whose information can be used
// for prediction: the round before the game-ending session, or the round
// in which the fifth fascist policy passed, whichever comes first.
// Returns -1 if there are no sessions.
func (g Game) MaxUsableRound() int {
	if len(g.Sessions) == 0 {
		return -1
	}

	nFascistPassed := 0
	for _, ls := range g.Sessions {
		if ls.LastRound {
			return ls.Round - 1
		}

		if ls.Outcome == FascistPolicy || (ls.TopDeck != nil && *ls.TopDeck == Fascist) {
			nFascistPassed++
			if nFascistPassed >= 5 {
				return ls.Round
			}
		}
	}

	return g.Sessions[len(g.Sessions)-1].Round
}

// Truncate returns the prefix of the game usable for prediction, limited
// to rounds <= round. A negative round counts back from the last
// session: -1 keeps everything usable, -2 drops the last session, etc.
func (g Game) Truncate(round int) Game {
	if round < 0 {
		round += len(g.Sessions)
		if round >= 0 && round < len(g.Sessions) {
			round = g.Sessions[round].Round
		} else {
			round = -1
		}
	}

	if maxRound := g.MaxUsableRound(); maxRound < round {
		round = maxRound
	}

	result := Game{Players: append([]string(nil), g.Players...)}
	for _, ls := range g.Sessions {
		if ls.Round <= round {
			result.Sessions = append(result.Sessions, ls)
		}
	}
	for _, a := range g.Actions {
		if a.Round <= round {
			result.Actions = append(result.Actions, a)
		}
	}

	return result
}

func (g Game) clone() Game {
	return Game{
		Players:  append([]string(nil), g.Players...),
		Sessions: append([]LegislativeSession(nil), g.Sessions...),
		Actions:  append([]PresidentAction(nil), g.Actions...),
	}
}
