package roles

import (
	"fmt"

	"github.com/pkg/errors"
)

// Role is the secret role dealt to one player.
type Role uint8

const (
	Fascist Role = iota
	Hitler
	Liberal
)

// NumRoles is the number of distinct Roles.
const NumRoles = 3

// All lists every Role in index order.
var All = [NumRoles]Role{Fascist, Hitler, Liberal}

// Spelling used in game records and model tables.
var roleStr = [...]string{
	"Fas",
	"Hit",
	"Lib",
}

// String implements Stringer.
func (r Role) String() string {
	if int(r) >= len(roleStr) {
		return fmt.Sprintf("Role(%d)", r)
	}

	return roleStr[r]
}

// IsFascistTeam returns true for Fascist and Hitler.
func (r Role) IsFascistTeam() bool {
	return r == Fascist || r == Hitler
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, error) {
	for i, str := range roleStr {
		if s == str {
			return Role(i), nil
		}
	}

	return 0, errors.Errorf("unknown role %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}

	*r = parsed
	return nil
}

const (
	MinPlayers = 5
	MaxPlayers = 10
)

// ErrInvalidPlayerCount is returned for games outside 5-10 players.
var ErrInvalidPlayerCount = errors.New("invalid number of players")

// FascistCount returns the number of (non-Hitler) fascists dealt in a
// game with the given number of players.
func FascistCount(numPlayers int) (int, error) {
	switch numPlayers {
	case 5, 6:
		return 1, nil
	case 7, 8:
		return 2, nil
	case 9, 10:
		return 3, nil
	}

	return 0, errors.Wrapf(ErrInvalidPlayerCount, "%d players", numPlayers)
}

// LiberalCount returns the number of liberals dealt in a game with the
// given number of players.
func LiberalCount(numPlayers int) (int, error) {
	nFascists, err := FascistCount(numPlayers)
	if err != nil {
		return 0, err
	}

	return numPlayers - nFascists - 1, nil
}

// HitlerKnowsFascists reports whether Hitler is shown the fascist team.
// This only happens in small games.
func HitlerKnowsFascists(numPlayers int) bool {
	return numPlayers < 7
}
