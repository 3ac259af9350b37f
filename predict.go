package alphahitler

import (
	"context"
	"expvar"
	"runtime"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/alphahitler/gamestate"
	"github.com/timpalpant/alphahitler/roles"
)

var (
	assignmentsEvaluated = expvar.NewInt("predict/assignments_evaluated")
	assignmentsZeroed    = expvar.NewInt("predict/assignments_zeroed")
)

// Predictor computes the posterior over role assignments for a game.
type Predictor struct {
	evaluator *Evaluator
	workers   int
}

// NewPredictor returns a Predictor that evaluates up to workers role
// assignments concurrently. workers <= 0 uses one per CPU.
func NewPredictor(evaluator *Evaluator, workers int) *Predictor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Predictor{
		evaluator: evaluator,
		workers:   workers,
	}
}

// Predict validates the game, scores every role assignment and returns
// the normalized posterior. Each assignment is replayed with its own
// gamestate.Context. The first error aborts the run.
func (p *Predictor) Predict(ctx context.Context, g gamestate.Game) (*Posterior, error) {
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid game")
	}
	g = g.Sorted()

	assignments, err := roles.Enumerate(g.Players)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("Scoring %d role assignments of %d players over %d sessions",
		len(assignments), len(g.Players), len(g.Sessions))

	start := time.Now()
	likelihoods := make([]float64, len(assignments))
	nProcessed, nZero := 0, 0
	var retErr error
	mu := sync.Mutex{}
	wg := sync.WaitGroup{}
	sem := make(chan struct{}, p.workers)
	for i, a := range assignments {
		mu.Lock()
		if retErr == nil {
			retErr = ctx.Err()
		}
		failed := retErr != nil
		mu.Unlock()
		if failed {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, a roles.Assignment) {
			defer wg.Done()
			defer func() { <-sem }()

			l, err := p.evaluator.GameLikelihood(g, a)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if retErr == nil {
					retErr = errors.Wrapf(err, "assignment %v", a)
				}
				return
			}

			likelihoods[i] = l
			nProcessed++
			assignmentsEvaluated.Add(1)
			if l == 0 {
				nZero++
				assignmentsZeroed.Add(1)
			}
			glog.V(2).Infof("Processed %d out of %d assignments (%d impossible)",
				nProcessed, len(assignments), nZero)
		}(i, a)
	}

	wg.Wait()
	if retErr != nil {
		return nil, retErr
	}

	glog.V(1).Infof("Scored %d assignments in %v, %d impossible",
		len(assignments), time.Since(start), nZero)
	return NewPosterior(assignments, likelihoods)
}
