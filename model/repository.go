package model

import (
	"embed"
	"io/fs"
	"os"
	"strconv"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/alphahitler/gamestate"
	"github.com/timpalpant/alphahitler/internal/expr"
	"github.com/timpalpant/alphahitler/roles"
)

//go:embed tables/*.csv
var embeddedTables embed.FS

// LegislativeRow is one reachable combination of hidden card counts and
// public claims for a legislative session, with the probability of the
// whole combination under the behavior model.
type LegislativeRow struct {
	ChanGetActual int
	PresGetClaim  int
	PresGiveClaim int
	ChanGetClaim  int
	Probability   expr.Expr
}

type legislativeKey struct {
	president     roles.Role
	chancellor    roles.Role
	outcome       gamestate.Party
	presGetActual int
}

type peekKey struct {
	president     roles.Role
	presGetActual int
	presGetClaim  int
}

type investigateKey struct {
	president roles.Role
	target    roles.Role
	accuse    bool
}

type targetKey struct {
	president roles.Role
	target    roles.Role
}

// Repository holds the joined, compiled behavior model. It is read-only
// after loading and safe for concurrent use.
type Repository struct {
	legislative map[legislativeKey][]LegislativeRow
	peek        map[peekKey]expr.Expr
	investigate map[investigateKey]expr.Expr
	target      map[targetKey]expr.Expr
}

var (
	defaultOnce sync.Once
	defaultRepo *Repository
	defaultErr  error
)

// Default returns the repository built from the tables compiled into the
// binary. It is loaded once per process.
func Default() (*Repository, error) {
	defaultOnce.Do(func() {
		fsys, err := fs.Sub(embeddedTables, "tables")
		if err != nil {
			defaultErr = err
			return
		}
		defaultRepo, defaultErr = Load(fsys)
	})

	return defaultRepo, defaultErr
}

// LoadDir loads the behavior model tables from a directory.
func LoadDir(dir string) (*Repository, error) {
	return Load(os.DirFS(dir))
}

// Load reads, joins and compiles the behavior model tables in fsys. Every
// symbol referenced by a table must be defined by the parameter resolver.
func Load(fsys fs.FS) (*Repository, error) {
	var tables struct {
		policyPres, policyChan, claimPres, claimChan *table
		peek, invTarget, investigate                 *table
	}
	layouts := []struct {
		dst        **table
		name       string
		columns    []string
		probColumn string
	}{
		{&tables.policyPres, "policy_pres",
			[]string{"president", "chancellor", "pres_get_actual", "chan_get_actual"}, "probability_pp"},
		{&tables.policyChan, "policy_chan",
			[]string{"president", "chancellor", "chan_get_actual", "outcome"}, "probability_pc"},
		{&tables.claimPres, "claim_pres",
			[]string{"president", "chancellor", "pres_get_actual", "chan_get_actual", "outcome", "pres_get_claim", "pres_give_claim"}, "probability_cp"},
		{&tables.claimChan, "claim_chan",
			[]string{"chancellor", "chan_get_actual", "pres_give_claim", "outcome", "chan_get_claim"}, "probability_cc"},
		{&tables.peek, "peek",
			[]string{"president", "pres_get_actual", "pres_get_claim"}, "probability"},
		{&tables.invTarget, "inv_target",
			[]string{"president", "target"}, "probability_target"},
		{&tables.investigate, "investigate",
			[]string{"president", "target", "accuse"}, "probability_accuse"},
	}

	symbols := Symbols()
	for _, s := range layouts {
		t, err := readTable(fsys, s.name, s.columns, s.probColumn)
		if err != nil {
			return nil, err
		}
		if err := checkSymbols(t, symbols); err != nil {
			return nil, err
		}
		*s.dst = t
	}

	legislative, err := join(tables.policyPres, tables.policyChan,
		"president", "chancellor", "chan_get_actual")
	if err != nil {
		return nil, err
	}
	legislative, err = join(legislative, tables.claimPres,
		"president", "chancellor", "pres_get_actual", "chan_get_actual", "outcome")
	if err != nil {
		return nil, err
	}
	legislative, err = join(legislative, tables.claimChan,
		"chancellor", "chan_get_actual", "pres_give_claim", "outcome")
	if err != nil {
		return nil, err
	}
	investigation, err := join(tables.invTarget, tables.investigate, "president", "target")
	if err != nil {
		return nil, err
	}

	repo := &Repository{
		legislative: make(map[legislativeKey][]LegislativeRow),
		peek:        make(map[peekKey]expr.Expr, len(tables.peek.rows)),
		investigate: make(map[investigateKey]expr.Expr, len(investigation.rows)),
		target:      make(map[targetKey]expr.Expr, len(tables.invTarget.rows)),
	}
	if err := repo.indexLegislative(legislative); err != nil {
		return nil, err
	}
	if err := repo.indexPeek(tables.peek); err != nil {
		return nil, err
	}
	if err := repo.indexInvestigate(investigation, tables.invTarget); err != nil {
		return nil, err
	}

	glog.V(1).Infof("Loaded behavior model: %d legislative rows, %d peek rows, %d investigation rows",
		len(legislative.rows), len(repo.peek), len(repo.investigate))
	return repo, nil
}

// Legislative returns every joined row for a session with the given
// roles, enacted party and true number of liberal policies drawn by the
// president. A nil result means the combination is impossible.
func (r *Repository) Legislative(pres, chan_ roles.Role, outcome gamestate.Party, presGetActual int) []LegislativeRow {
	return r.legislative[legislativeKey{pres, chan_, outcome, presGetActual}]
}

// Peek returns the probability of a president with the given role
// claiming presGetClaim liberal policies after seeing presGetActual.
func (r *Repository) Peek(pres roles.Role, presGetActual, presGetClaim int) (expr.Expr, bool) {
	e, ok := r.peek[peekKey{pres, presGetActual, presGetClaim}]
	return e, ok
}

// Investigate returns the probability of a president with the given role
// investigating a player with the target role and reporting accuse.
func (r *Repository) Investigate(pres, target roles.Role, accuse bool) (expr.Expr, bool) {
	e, ok := r.investigate[investigateKey{pres, target, accuse}]
	return e, ok
}

// InvestigationTarget returns the probability of a president with the
// given role choosing a player with the target role, whatever the result.
func (r *Repository) InvestigationTarget(pres, target roles.Role) (expr.Expr, bool) {
	e, ok := r.target[targetKey{pres, target}]
	return e, ok
}

func (r *Repository) indexLegislative(t *table) error {
	for i, row := range t.rows {
		pres, err := roles.ParseRole(t.value(i, "president"))
		if err != nil {
			return errors.Wrapf(err, "%s row %d", t.name, i)
		}
		chan_, err := roles.ParseRole(t.value(i, "chancellor"))
		if err != nil {
			return errors.Wrapf(err, "%s row %d", t.name, i)
		}
		var outcome gamestate.Party
		if err := outcome.UnmarshalText([]byte(t.value(i, "outcome"))); err != nil {
			return errors.Wrapf(err, "%s row %d", t.name, i)
		}
		counts, err := intColumns(t, i, "pres_get_actual", "chan_get_actual",
			"pres_get_claim", "pres_give_claim", "chan_get_claim")
		if err != nil {
			return err
		}

		key := legislativeKey{pres, chan_, outcome, counts[0]}
		r.legislative[key] = append(r.legislative[key], LegislativeRow{
			ChanGetActual: counts[1],
			PresGetClaim:  counts[2],
			PresGiveClaim: counts[3],
			ChanGetClaim:  counts[4],
			Probability:   row.prob,
		})
	}

	return nil
}

func (r *Repository) indexPeek(t *table) error {
	for i, row := range t.rows {
		pres, err := roles.ParseRole(t.value(i, "president"))
		if err != nil {
			return errors.Wrapf(err, "%s row %d", t.name, i)
		}
		counts, err := intColumns(t, i, "pres_get_actual", "pres_get_claim")
		if err != nil {
			return err
		}

		key := peekKey{pres, counts[0], counts[1]}
		if _, ok := r.peek[key]; ok {
			return errors.Errorf("%s row %d: duplicate key %v", t.name, i, key)
		}
		r.peek[key] = row.prob
	}

	return nil
}

func (r *Repository) indexInvestigate(investigation, target *table) error {
	for i, row := range target.rows {
		pres, tgt, err := rolePair(target, i)
		if err != nil {
			return err
		}
		r.target[targetKey{pres, tgt}] = row.prob
	}

	for i, row := range investigation.rows {
		pres, tgt, err := rolePair(investigation, i)
		if err != nil {
			return err
		}
		accuse, err := strconv.ParseBool(investigation.value(i, "accuse"))
		if err != nil {
			return errors.Wrapf(err, "%s row %d", investigation.name, i)
		}

		key := investigateKey{pres, tgt, accuse}
		if _, ok := r.investigate[key]; ok {
			return errors.Errorf("%s row %d: duplicate key %v", investigation.name, i, key)
		}
		r.investigate[key] = row.prob
	}

	return nil
}

func rolePair(t *table, i int) (roles.Role, roles.Role, error) {
	pres, err := roles.ParseRole(t.value(i, "president"))
	if err != nil {
		return pres, pres, errors.Wrapf(err, "%s row %d", t.name, i)
	}
	target, err := roles.ParseRole(t.value(i, "target"))
	if err != nil {
		return pres, target, errors.Wrapf(err, "%s row %d", t.name, i)
	}

	return pres, target, nil
}

func intColumns(t *table, i int, columns ...string) ([]int, error) {
	result := make([]int, len(columns))
	for j, col := range columns {
		v, err := strconv.Atoi(t.value(i, col))
		if err != nil {
			return nil, errors.Wrapf(err, "%s row %d column %s", t.name, i, col)
		}
		result[j] = v
	}

	return result, nil
}

func checkSymbols(t *table, defined map[string]struct{}) error {
	for i, row := range t.rows {
		for _, name := range expr.Symbols(row.prob) {
			if _, ok := defined[name]; !ok {
				return errors.Wrapf(&expr.UnboundSymbolError{Name: name}, "%s row %d", t.name, i)
			}
		}
	}

	return nil
}
