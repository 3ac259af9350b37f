package gamestate

import (
	"fmt"

	"github.com/pkg/errors"
)

// Party is the color of a policy card.
type Party uint8

const (
	Fascist Party = iota
	Liberal
)

var partyStr = [...]string{
	"Fas",
	"Lib",
}

func (p Party) String() string {
	if int(p) >= len(partyStr) {
		return fmt.Sprintf("Party(%d)", p)
	}
	return partyStr[p]
}

func (p Party) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Party) UnmarshalText(text []byte) error {
	for i, s := range partyStr {
		if string(text) == s {
			*p = Party(i)
			return nil
		}
	}
	return errors.Errorf("unknown party %q", text)
}

// Outcome is the result of a legislative session.
type Outcome uint8

const (
	_ Outcome = iota
	FascistPolicy
	LiberalPolicy
	// The government was voted down. A TopDeck may follow.
	Rejected
	// The chancellor proposed a veto and the president agreed.
	Vetoed
	// Hitler was elected chancellor after the Hitler Zone; the game ends.
	HitlerElected
)

var outcomeStr = [...]string{
	"Invalid",
	"Fas",
	"Lib",
	"Rejected",
	"Veto",
	"Hitler",
}

func (o Outcome) String() string {
	if int(o) >= len(outcomeStr) {
		return fmt.Sprintf("Outcome(%d)", o)
	}
	return outcomeStr[o]
}

// Enacted returns the party of the enacted policy, if any.
func (o Outcome) Enacted() (Party, bool) {
	switch o {
	case FascistPolicy:
		return Fascist, true
	case LiberalPolicy:
		return Liberal, true
	}

	return 0, false
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for i := 1; i < len(outcomeStr); i++ {
		if string(text) == outcomeStr[i] {
			*o = Outcome(i)
			return nil
		}
	}
	return errors.Errorf("unknown legislative outcome %q", text)
}

// ActionType is the kind of special presidential power used in a round.
type ActionType uint8

const (
	_ ActionType = iota
	Peek
	Investigate
	Shoot
	Elect
	Program
)

var actionTypeStr = [...]string{
	"Invalid",
	"Peek",
	"Investigate",
	"Shoot",
	"Elect",
	"Program",
}

func (t ActionType) String() string {
	if int(t) >= len(actionTypeStr) {
		return fmt.Sprintf("ActionType(%d)", t)
	}
	return actionTypeStr[t]
}

func (t ActionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ActionType) UnmarshalText(text []byte) error {
	for i := 1; i < len(actionTypeStr); i++ {
		if string(text) == actionTypeStr[i] {
			*t = ActionType(i)
			return nil
		}
	}
	return errors.Errorf("unknown president action %q", text)
}

// LegislativeSession records one proposed government and what came of it.
//
// Claims are what the president and chancellor said publicly, counted in
// liberal policies: PresGetClaim is the number drawn (0-3), PresGiveClaim
// the number passed to the chancellor (0-2), ChanGetClaim the number the
// chancellor says they received (0-2). Actuals are the ground truth,
// recorded only once the game is over. Nil means not recorded.
type LegislativeSession struct {
	Round         int     `yaml:"round"`
	President     string  `yaml:"president"`
	Chancellor    string  `yaml:"chancellor"`
	Outcome       Outcome `yaml:"outcome"`
	TopDeck       *Party  `yaml:"top_deck,omitempty"`
	PresGetClaim  *int    `yaml:"pres_get_claim,omitempty"`
	PresGiveClaim *int    `yaml:"pres_give_claim,omitempty"`
	ChanGetClaim  *int    `yaml:"chan_get_claim,omitempty"`
	PresGetActual *int    `yaml:"pres_get_actual,omitempty"`
	ChanGetActual *int    `yaml:"chan_get_actual,omitempty"`
	VetoAttempt   bool    `yaml:"veto_attempt,omitempty"`
	LastRound     bool    `yaml:"last_round,omitempty"`
}

func (ls LegislativeSession) String() string {
	s := fmt.Sprintf("%d:%s+%s:%s", ls.Round, ls.President, ls.Chancellor, ls.Outcome)
	if ls.TopDeck != nil {
		s += ":top-deck " + ls.TopDeck.String()
	}
	if ls.PresGetClaim != nil || ls.PresGiveClaim != nil || ls.ChanGetClaim != nil {
		s += fmt.Sprintf(":claims %s/%s/%s",
			fmtClaim(ls.PresGetClaim), fmtClaim(ls.PresGiveClaim), fmtClaim(ls.ChanGetClaim))
	}
	return s
}

func fmtClaim(c *int) string {
	if c == nil {
		return "?"
	}
	return fmt.Sprint(*c)
}

// PresidentAction records a special presidential power used after the
// legislative session of the same round.
type PresidentAction struct {
	Round  int        `yaml:"round"`
	Action ActionType `yaml:"action"`
	Target string     `yaml:"target,omitempty"`
	// Number of liberal policies the president claims to have seen (Peek).
	PeekClaim *int `yaml:"peek_claim,omitempty"`
	// Whether the president claims the target is on the fascist team (Investigate).
	Accuse *bool `yaml:"accuse,omitempty"`
}

func (a PresidentAction) String() string {
	s := fmt.Sprintf("%d:%s", a.Round, a.Action)
	if a.Target != "" {
		s += ":" + a.Target
	}
	if a.PeekClaim != nil {
		s += fmt.Sprintf(":%d", *a.PeekClaim)
	}
	if a.Accuse != nil {
		s += fmt.Sprintf(":accuse=%v", *a.Accuse)
	}
	return s
}

// Int returns a pointer to v, for building optional claims.
func Int(v int) *int {
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// PartyOf returns a pointer to p, for TopDeck.
func PartyOf(p Party) *Party {
	return &p
}
