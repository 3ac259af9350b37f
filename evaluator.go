// Package alphahitler infers hidden roles in Secret Hitler from the public
// record of a game.
//
// Every role assignment consistent with the player count is replayed
// against a hand-authored behavior model. Each observed event contributes
// a likelihood, and the draw pile belief carried in a gamestate.Context is
// updated with what the event reveals about the hidden cards. Normalizing
// over assignments gives a posterior over assignments and, from it, a
// per-player role distribution.
package alphahitler

import (
	"github.com/pkg/errors"

	"github.com/timpalpant/alphahitler/gamestate"
	"github.com/timpalpant/alphahitler/internal/expr"
	"github.com/timpalpant/alphahitler/model"
	"github.com/timpalpant/alphahitler/roles"
)

// ErrNoConsistentAssignment is returned when every role assignment has
// zero likelihood under the behavior model.
var ErrNoConsistentAssignment = errors.New("no role assignment is consistent with the game")

// Options tune how game records are scored.
type Options struct {
	// ConditionOnActuals restricts legislative sessions to the recorded
	// ground-truth card counts, when present.
	ConditionOnActuals bool
}

// Evaluator scores observed events against the behavior model. It holds
// no per-game state and is safe for concurrent use; all mutable state
// lives in the gamestate.Context passed to each call.
type Evaluator struct {
	repo     *model.Repository
	resolver *model.Resolver
	opts     Options
}

func NewEvaluator(repo *model.Repository, resolver *model.Resolver, opts Options) *Evaluator {
	return &Evaluator{
		repo:     repo,
		resolver: resolver,
		opts:     opts,
	}
}

// probability evaluates a behavior model expression in the current
// situation.
func (e *Evaluator) probability(prob expr.Expr, c *gamestate.Context) (float64, error) {
	return expr.Probability(prob, e.resolver.Resolve(c))
}

func rolesOf(a roles.Assignment, names ...string) ([]roles.Role, error) {
	result := make([]roles.Role, len(names))
	for i, name := range names {
		r, err := a.RoleOf(name)
		if err != nil {
			return nil, err
		}
		result[i] = r
	}

	return result, nil
}
