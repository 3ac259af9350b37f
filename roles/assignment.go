package roles

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownPlayer is returned when looking up a name that is not
// seated in the game.
var ErrUnknownPlayer = errors.New("unknown player")

// seating is the shared, read-only player index used by every
// Assignment enumerated for the same game.
type seating struct {
	names []string
	index map[string]int
}

func newSeating(players []string) (*seating, error) {
	if _, err := FascistCount(len(players)); err != nil {
		return nil, err
	}

	s := &seating{
		names: append([]string(nil), players...),
		index: make(map[string]int, len(players)),
	}
	for i, name := range players {
		if name == "" {
			return nil, errors.Errorf("player %d has an empty name", i)
		}
		if _, ok := s.index[name]; ok {
			return nil, errors.Errorf("duplicate player %q", name)
		}
		s.index[name] = i
	}

	return s, nil
}

// Assignment is one complete hypothesis of the role dealt to every player.
// It always has exactly one Hitler and the number of fascists dictated by
// the player count. Assignments are immutable and safe to share.
type Assignment struct {
	seats *seating
	roles []Role
}

// NewAssignment validates and returns an Assignment from an explicit
// name -> Role mapping, seating players in the given order.
func NewAssignment(players []string, byName map[string]Role) (Assignment, error) {
	seats, err := newSeating(players)
	if err != nil {
		return Assignment{}, err
	}

	if len(byName) != len(players) {
		return Assignment{}, errors.Errorf("got roles for %d players, expected %d",
			len(byName), len(players))
	}

	result := Assignment{seats: seats, roles: make([]Role, len(players))}
	for name, role := range byName {
		i, ok := seats.index[name]
		if !ok {
			return Assignment{}, errors.Wrapf(ErrUnknownPlayer, "%q", name)
		}
		result.roles[i] = role
	}

	if err := result.validate(); err != nil {
		return Assignment{}, err
	}

	return result, nil
}

func (a Assignment) validate() error {
	var nHitler, nFascist int
	for _, role := range a.roles {
		switch role {
		case Hitler:
			nHitler++
		case Fascist:
			nFascist++
		case Liberal:
		default:
			return errors.Errorf("invalid role %v", role)
		}
	}

	if nHitler != 1 {
		return errors.Errorf("assignment has %d Hitlers, expected 1", nHitler)
	}

	expected, err := FascistCount(len(a.roles))
	if err != nil {
		return err
	}
	if nFascist != expected {
		return errors.Errorf("assignment has %d fascists, expected %d", nFascist, expected)
	}

	return nil
}

// Len returns the number of players.
func (a Assignment) Len() int {
	return len(a.roles)
}

// Players returns the seated player names, in seating order.
func (a Assignment) Players() []string {
	return append([]string(nil), a.seats.names...)
}

// RoleOf returns the role assigned to the named player.
func (a Assignment) RoleOf(name string) (Role, error) {
	i, ok := a.seats.index[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownPlayer, "%q", name)
	}

	return a.roles[i], nil
}

// Hitler returns the name of the player assigned Hitler.
func (a Assignment) Hitler() string {
	for i, role := range a.roles {
		if role == Hitler {
			return a.seats.names[i]
		}
	}

	return ""
}

// Fascists returns the names of the non-Hitler fascists, in seating order.
func (a Assignment) Fascists() []string {
	var result []string
	for i, role := range a.roles {
		if role == Fascist {
			result = append(result, a.seats.names[i])
		}
	}

	return result
}

// Map returns a copy of the assignment as a name -> Role map.
func (a Assignment) Map() map[string]Role {
	result := make(map[string]Role, len(a.roles))
	for i, role := range a.roles {
		result[a.seats.names[i]] = role
	}

	return result
}

// Key returns a compact string that uniquely identifies the assignment
// within its game, e.g. "HFLLL".
func (a Assignment) Key() string {
	var sb strings.Builder
	for _, role := range a.roles {
		sb.WriteByte(role.String()[0])
	}

	return sb.String()
}

// String implements Stringer.
func (a Assignment) String() string {
	return fmt.Sprintf("Hitler: %s, fascists: %v", a.Hitler(), a.Fascists())
}
