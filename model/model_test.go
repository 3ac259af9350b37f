package model

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/alphahitler/gamestate"
	"github.com/timpalpant/alphahitler/internal/expr"
	"github.com/timpalpant/alphahitler/roles"
)

var testSituations = []situationKey{
	{numPlayers: 5, numFascists: 1, hitlerKnows: true},
	{numPlayers: 6, numFascists: 1, fascistsPassed: 3, liberalsPassed: 2, hitlerKnows: true},
	{numPlayers: 7, numFascists: 2, fascistsPassed: 1, liberalsPassed: 4},
	{numPlayers: 10, numFascists: 3, fascistsPassed: 4, liberalsPassed: 1},
}

func embeddedFS(t *testing.T) fs.FS {
	fsys, err := fs.Sub(embeddedTables, "tables")
	require.NoError(t, err)
	return fsys
}

func copyFS(t *testing.T) fstest.MapFS {
	src := embeddedFS(t)
	result := fstest.MapFS{}
	entries, err := fs.ReadDir(src, ".")
	require.NoError(t, err)
	for _, e := range entries {
		data, err := fs.ReadFile(src, e.Name())
		require.NoError(t, err)
		result[e.Name()] = &fstest.MapFile{Data: data}
	}
	return result
}

func TestParseTable(t *testing.T) {
	tbl, err := parseTable(strings.NewReader("a,b,p\nx, 1 ,X*2\ny,2,1-X\n"), "t", []string{"a", "b"}, "p")
	require.NoError(t, err)
	require.Len(t, tbl.rows, 2)
	assert.Equal(t, []string{"x", "1"}, tbl.rows[0].keys)
	assert.Equal(t, "1", tbl.value(0, "b"))
	v, err := tbl.rows[1].prob.Eval(expr.Params{"X": 0.25})
	require.NoError(t, err)
	assert.Equal(t, 0.75, v)

	_, err = parseTable(strings.NewReader("a,c,p\n"), "t", []string{"a", "b"}, "p")
	assert.Error(t, err, "wrong header")

	_, err = parseTable(strings.NewReader("a,b,p\nx,1,X*\n"), "t", []string{"a", "b"}, "p")
	assert.Error(t, err, "malformed expression")
}

func TestJoin(t *testing.T) {
	left, err := parseTable(strings.NewReader("k,a,p\n1,x,A\n1,y,1-A\n2,x,1\n"), "left", []string{"k", "a"}, "p")
	require.NoError(t, err)
	right, err := parseTable(strings.NewReader("k,b,p\n1,u,B\n1,v,1-B\n3,u,1\n"), "right", []string{"k", "b"}, "p")
	require.NoError(t, err)

	joined, err := join(left, right, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "a", "b"}, joined.columns)
	require.Len(t, joined.rows, 4, "only k=1 matches, 2x2 rows")
	assert.Equal(t, []string{"1", "x", "u"}, joined.rows[0].keys)
	assert.Equal(t, []string{"1", "y", "v"}, joined.rows[3].keys)

	p := expr.Params{"A": 0.3, "B": 0.6}
	var total float64
	for _, row := range joined.rows {
		v, err := row.prob.Eval(p)
		require.NoError(t, err)
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-12)

	v, err := joined.rows[3].prob.Eval(p)
	require.NoError(t, err)
	assert.InDelta(t, 0.7*0.4, v, 1e-12, "product of parenthesized factors")

	_, err = join(left, right, "missing")
	assert.Error(t, err)
}

// groupSums evaluates every row of the table and sums the probabilities of
// rows sharing the given key columns.
func groupSums(t *testing.T, tbl *table, p expr.Params, by ...string) map[string]float64 {
	idx := make([]int, len(by))
	for i, col := range by {
		idx[i] = tbl.column(col)
		require.True(t, idx[i] >= 0, "column %s", col)
	}

	sums := make(map[string]float64)
	for _, row := range tbl.rows {
		v, err := expr.Probability(row.prob, p)
		require.NoError(t, err, "%v", row.keys)
		sums[compositeKey(row.keys, idx)] += v
	}
	return sums
}

func TestTablesAreNormalized(t *testing.T) {
	fsys := embeddedFS(t)
	cases := []struct {
		name       string
		columns    []string
		probColumn string
		given      []string
	}{
		{"policy_pres", []string{"president", "chancellor", "pres_get_actual", "chan_get_actual"}, "probability_pp",
			[]string{"president", "chancellor", "pres_get_actual"}},
		{"policy_chan", []string{"president", "chancellor", "chan_get_actual", "outcome"}, "probability_pc",
			[]string{"president", "chancellor", "chan_get_actual"}},
		{"claim_pres", []string{"president", "chancellor", "pres_get_actual", "chan_get_actual", "outcome", "pres_get_claim", "pres_give_claim"}, "probability_cp",
			[]string{"president", "chancellor", "pres_get_actual", "chan_get_actual", "outcome"}},
		{"claim_chan", []string{"chancellor", "chan_get_actual", "pres_give_claim", "outcome", "chan_get_claim"}, "probability_cc",
			[]string{"chancellor", "chan_get_actual", "pres_give_claim", "outcome"}},
		{"peek", []string{"president", "pres_get_actual", "pres_get_claim"}, "probability",
			[]string{"president", "pres_get_actual"}},
		{"inv_target", []string{"president", "target"}, "probability_target",
			[]string{"president"}},
		{"investigate", []string{"president", "target", "accuse"}, "probability_accuse",
			[]string{"president", "target"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl, err := readTable(fsys, tc.name, tc.columns, tc.probColumn)
			require.NoError(t, err)
			for _, s := range testSituations {
				for key, sum := range groupSums(t, tbl, resolve(s), tc.given...) {
					assert.InDelta(t, 1.0, sum, 1e-9, "%v given %q", s, key)
				}
			}
		})
	}
}

func TestDefault(t *testing.T) {
	repo, err := Default()
	require.NoError(t, err)
	again, err := Default()
	require.NoError(t, err)
	assert.True(t, repo == again, "loaded once")

	// Marginalizing every claim and hidden count out of the joined table
	// leaves a distribution over the enacted party.
	for _, s := range testSituations {
		p := resolve(s)
		for _, pres := range roles.All {
			for _, chan_ := range roles.All {
				if pres == roles.Hitler && chan_ == roles.Hitler {
					continue
				}
				for a := 0; a <= 3; a++ {
					var total float64
					for _, outcome := range []gamestate.Party{gamestate.Fascist, gamestate.Liberal} {
						for _, row := range repo.Legislative(pres, chan_, outcome, a) {
							v, err := expr.Probability(row.Probability, p)
							require.NoError(t, err)
							total += v
						}
					}
					assert.InDelta(t, 1.0, total, 1e-9, "%v/%v draw %d", pres, chan_, a)
				}
			}
		}
	}

	assert.Empty(t, repo.Legislative(roles.Hitler, roles.Hitler, gamestate.Liberal, 1))
	assert.Empty(t, repo.Legislative(roles.Liberal, roles.Liberal, gamestate.Liberal, 0),
		"cannot enact a liberal policy from three fascists")
}

func TestRepository_Lookups(t *testing.T) {
	repo, err := Default()
	require.NoError(t, err)
	p := resolve(situationKey{numPlayers: 7, numFascists: 2})

	e, ok := repo.Peek(roles.Liberal, 2, 2)
	require.True(t, ok)
	v, err := e.Eval(p)
	require.NoError(t, err)
	assert.InDelta(t, 1-almostImpossible, v, 1e-12)

	_, ok = repo.Peek(roles.Liberal, 4, 2)
	assert.False(t, ok)

	e, ok = repo.Investigate(roles.Liberal, roles.Hitler, false)
	require.True(t, ok)
	v, err = e.Eval(p)
	require.NoError(t, err)
	assert.InDelta(t, (1.0/6)*almostImpossible, v, 1e-15)

	e, ok = repo.InvestigationTarget(roles.Fascist, roles.Hitler)
	require.True(t, ok)
	v, err = e.Eval(p)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, v, 1e-12)

	_, ok = repo.Investigate(roles.Hitler, roles.Hitler, true)
	assert.False(t, ok, "Hitler cannot investigate himself")
}

func TestLoad_UnboundSymbol(t *testing.T) {
	fsys := copyFS(t)
	fsys["peek.csv"] = &fstest.MapFile{Data: []byte(
		"president,pres_get_actual,pres_get_claim,probability\nLib,0,0,NOT_A_PARAMETER\n")}

	_, err := Load(fsys)
	require.Error(t, err)
	_, ok := errors.Cause(err).(*expr.UnboundSymbolError)
	assert.True(t, ok, "got %v", err)
}

func TestLoad_MissingTable(t *testing.T) {
	fsys := copyFS(t)
	delete(fsys, "claim_chan.csv")

	_, err := Load(fsys)
	assert.Error(t, err)
}

func TestLoad_Gzip(t *testing.T) {
	fsys := copyFS(t)
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(fsys["peek.csv"].Data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	delete(fsys, "peek.csv")
	fsys["peek.csv.gz"] = &fstest.MapFile{Data: buf.Bytes()}

	repo, err := Load(fsys)
	require.NoError(t, err)
	_, ok := repo.Peek(roles.Fascist, 3, 0)
	assert.True(t, ok)
}

func TestResolver(t *testing.T) {
	r, err := NewResolver(16)
	require.NoError(t, err)

	early := situationKey{numPlayers: 5, numFascists: 1, hitlerKnows: true}
	p := r.Resolve(early)
	assert.Equal(t, 0.5, p["PP_LX2_TEST"])
	assert.Equal(t, p["PP_HL1_FORCE_FAS"], p["PC_FH_FAS"], "Hitler knows his fascist president")
	assert.InDelta(t, 0.25, p["INV_L_F"], 1e-12)

	assert.Equal(t, p, r.Resolve(early))

	late := situationKey{numPlayers: 7, numFascists: 2, fascistsPassed: 3, liberalsPassed: 4}
	q := r.Resolve(late)
	assert.Equal(t, unlikely, q["PP_LX2_TEST"])
	assert.Equal(t, 1-almostImpossible, q["PC_LF_FAS"])
	assert.Equal(t, 1-almostImpossible, q["PC_FH_FAS"])

	hidden := situationKey{numPlayers: 7, numFascists: 2}
	assert.Equal(t, 0.01, r.Resolve(hidden)["PC_FH_FAS"])

	assert.Equal(t, Symbols(), keys(q))

	_, err = NewResolver(0)
	assert.Error(t, err)
}

func keys(p expr.Params) map[string]struct{} {
	result := make(map[string]struct{}, len(p))
	for k := range p {
		result[k] = struct{}{}
	}
	return result
}

func BenchmarkLoad(b *testing.B) {
	fsys, err := fs.Sub(embeddedTables, "tables")
	if err != nil {
		b.Fatal(err)
	}

	for i := 0; i < b.N; i++ {
		if _, err := Load(fsys); err != nil {
			b.Fatal(err)
		}
	}
}
