package gamestate

import (
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/timpalpant/alphahitler/roles"
)

var fivePlayers = []string{"A", "B", "C", "D", "E"}

func session(round int, pres, chan_ string, outcome Outcome) LegislativeSession {
	return LegislativeSession{Round: round, President: pres, Chancellor: chan_, Outcome: outcome}
}

func TestValidate(t *testing.T) {
	g := Game{
		Players: fivePlayers,
		Sessions: []LegislativeSession{
			session(1, "A", "B", LiberalPolicy),
			session(2, "B", "C", Rejected),
			session(3, "C", "D", FascistPolicy),
		},
		Actions: []PresidentAction{
			{Round: 3, Action: Peek, PeekClaim: Int(1)},
		},
	}
	require.NoError(t, g.Validate())

	bad := g
	bad.Players = fivePlayers[:4]
	assert.Equal(t, roles.ErrInvalidPlayerCount, errors.Cause(bad.Validate()))

	bad = g
	bad.Sessions = []LegislativeSession{session(1, "A", "Z", LiberalPolicy)}
	bad.Actions = nil
	assert.Equal(t, roles.ErrUnknownPlayer, errors.Cause(bad.Validate()))

	bad = g
	bad.Sessions = []LegislativeSession{session(2, "A", "B", LiberalPolicy), session(1, "B", "C", LiberalPolicy)}
	bad.Actions = nil
	assert.Error(t, bad.Validate(), "rounds out of order")

	bad = g
	bad.Actions = []PresidentAction{{Round: 2, Action: Shoot, Target: "E"}}
	assert.Error(t, bad.Validate(), "action on a rejected round")

	claim := session(1, "A", "B", LiberalPolicy)
	claim.PresGetClaim = Int(4)
	bad = Game{Players: fivePlayers, Sessions: []LegislativeSession{claim}}
	assert.Error(t, bad.Validate(), "claim out of range")

	topDeck := session(1, "A", "B", LiberalPolicy)
	topDeck.TopDeck = PartyOf(Fascist)
	bad = Game{Players: fivePlayers, Sessions: []LegislativeSession{topDeck}}
	assert.Error(t, bad.Validate(), "top-deck on an enacted session")
}

func TestMaxUsableRound(t *testing.T) {
	g := Game{Players: fivePlayers}
	assert.Equal(t, -1, g.MaxUsableRound())

	for i := 1; i <= 6; i++ {
		g.Sessions = append(g.Sessions, session(i, "A", "B", FascistPolicy))
	}
	assert.Equal(t, 5, g.MaxUsableRound(), "stop at the fifth fascist policy")

	g.Sessions[2].LastRound = true
	assert.Equal(t, 2, g.MaxUsableRound(), "stop before the last round")
}

func TestTruncate(t *testing.T) {
	g := Game{
		Players: fivePlayers,
		Sessions: []LegislativeSession{
			session(1, "A", "B", LiberalPolicy),
			session(2, "B", "C", FascistPolicy),
			session(3, "C", "D", FascistPolicy),
			session(4, "D", "E", LiberalPolicy),
		},
		Actions: []PresidentAction{{Round: 3, Action: Peek}},
	}
	g.Sessions[3].LastRound = true

	all := g.Truncate(-1)
	assert.Len(t, all.Sessions, 3)
	assert.Len(t, all.Actions, 1)

	two := g.Truncate(2)
	assert.Len(t, two.Sessions, 2)
	assert.Empty(t, two.Actions)

	assert.Len(t, g.Truncate(-3).Sessions, 2)
	assert.Empty(t, g.Truncate(-10).Sessions)
}

func TestGameYAML(t *testing.T) {
	f, err := os.Open("testdata/game.yaml")
	require.NoError(t, err)
	defer f.Close()

	var g Game
	require.NoError(t, yaml.NewDecoder(f).Decode(&g))
	require.NoError(t, g.Validate())

	assert.Len(t, g.Players, 7)
	require.Len(t, g.Sessions, 4)
	assert.Equal(t, LiberalPolicy, g.Sessions[0].Outcome)
	require.NotNil(t, g.Sessions[0].PresGetClaim)
	assert.Equal(t, 2, *g.Sessions[0].PresGetClaim)
	assert.Equal(t, Rejected, g.Sessions[2].Outcome)
	require.NotNil(t, g.Sessions[2].TopDeck)
	assert.Equal(t, Fascist, *g.Sessions[2].TopDeck)

	a, ok := g.ActionInRound(4)
	require.True(t, ok)
	assert.Equal(t, Investigate, a.Action)
	require.NotNil(t, a.Accuse)
	assert.False(t, *a.Accuse)
}
