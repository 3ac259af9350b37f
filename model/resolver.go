package model

import (
	"expvar"

	"github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/timpalpant/alphahitler/internal/expr"
)

var (
	paramCacheHits   = expvar.NewInt("params/cache_hits")
	paramCacheMisses = expvar.NewInt("params/cache_misses")
	paramCacheSize   = expvar.NewInt("params/cache_size")
)

// Situation is the public game state the behavior model parameters depend on.
type Situation interface {
	NumPlayers() int
	NumFascists() int
	FascistsPassed() int
	LiberalsPassed() int
	HitlerKnowsFascists() bool
}

// situationKey is a comparable snapshot of a Situation.
type situationKey struct {
	numPlayers     int
	numFascists    int
	fascistsPassed int
	liberalsPassed int
	hitlerKnows    bool
}

func keyOf(s Situation) situationKey {
	return situationKey{
		numPlayers:     s.NumPlayers(),
		numFascists:    s.NumFascists(),
		fascistsPassed: s.FascistsPassed(),
		liberalsPassed: s.LiberalsPassed(),
		hitlerKnows:    s.HitlerKnowsFascists(),
	}
}

func (k situationKey) NumPlayers() int           { return k.numPlayers }
func (k situationKey) NumFascists() int          { return k.numFascists }
func (k situationKey) FascistsPassed() int       { return k.fascistsPassed }
func (k situationKey) LiberalsPassed() int       { return k.liberalsPassed }
func (k situationKey) HitlerKnowsFascists() bool { return k.hitlerKnows }

// referenceSituation is used to enumerate the symbols the resolver defines.
var referenceSituation = situationKey{numPlayers: 7, numFascists: 2}

// Resolver computes the numeric value of every behavior model parameter
// for a Situation. Snapshots are memoized in an LRU cache and are shared
// between callers, so they must not be modified.
type Resolver struct {
	cache *lru.Cache
}

func NewResolver(cacheSize int) (*Resolver, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating parameter cache")
	}

	return &Resolver{cache: cache}, nil
}

// Resolve returns the parameter snapshot for the given situation.
func (r *Resolver) Resolve(s Situation) expr.Params {
	key := keyOf(s)
	if cached, ok := r.cache.Get(key); ok {
		paramCacheHits.Add(1)
		return cached.(expr.Params)
	}

	paramCacheMisses.Add(1)
	p := resolve(key)
	r.cache.Add(key, p)
	paramCacheSize.Set(int64(r.cache.Len()))
	return p
}

// Symbols returns every parameter name the resolver defines.
func Symbols() map[string]struct{} {
	p := resolve(referenceSituation)
	result := make(map[string]struct{}, len(p))
	for name := range p {
		result[name] = struct{}{}
	}
	return result
}

const (
	almostImpossible  = 1e-6
	extremelyUnlikely = 0.005
	veryUnlikely      = 0.01
	unlikely          = 0.05
)

func resolve(s Situation) expr.Params {
	p := make(expr.Params, 128)
	resolvePolicy(s, p)
	resolveClaims(p)
	resolveInvestigation(s, p)
	return p
}

// resolvePolicy sets the probabilities of the president's discard (PP_)
// and the chancellor's enactment (PC_).
func resolvePolicy(s Situation, p expr.Params) {
	p["PP_FF1_FORCE_FAS"] = 0.75
	p["PP_FF2_TEST"] = 0.9
	p["PP_FH1_FORCE_FAS"] = p["PP_FF1_FORCE_FAS"]
	p["PP_FH2_TEST"] = p["PP_FF2_TEST"]
	p["PP_FL1_FORCE_FAS"] = p["PP_FF1_FORCE_FAS"]
	p["PP_FL2_TEST"] = p["PP_FF2_TEST"]
	p["PP_HF1_FORCE_FAS"] = 0.4
	p["PP_HF2_TEST"] = p["PP_FF2_TEST"]
	// Hitler does not know whether a liberal chancellor is a fascist.
	p["PP_HL1_FORCE_FAS"] = p["PP_HF1_FORCE_FAS"]
	p["PP_HL2_TEST"] = p["PP_HF2_TEST"]
	p["PP_LX1_FORCE_FAS"] = almostImpossible
	if s.FascistsPassed() < 3 {
		p["PP_LX2_TEST"] = 0.5
	} else {
		p["PP_LX2_TEST"] = unlikely
	}

	// With four liberal policies down, one more ends the game.
	if s.LiberalsPassed() < 4 {
		p["PC_FF_FAS"] = p["PP_FF1_FORCE_FAS"]
		p["PC_LF_FAS"] = 0.1
		p["PC_LH_FAS"] = 0.01
		if s.HitlerKnowsFascists() {
			p["PC_FH_FAS"] = p["PP_HL1_FORCE_FAS"]
		} else {
			p["PC_FH_FAS"] = p["PC_LH_FAS"]
		}
	} else {
		p["PC_FF_FAS"] = 1 - almostImpossible
		p["PC_LF_FAS"] = 1 - almostImpossible
		p["PC_LH_FAS"] = 1 - almostImpossible
		p["PC_FH_FAS"] = 1 - almostImpossible
	}
	p["PC_HF_FAS"] = p["PC_FF_FAS"]
	p["PC_XL_FAS"] = almostImpossible
}

// resolveClaims sets the probabilities of president (CP_) and chancellor
// (CC_) claims. Peeks reuse the president misreport parameters.
func resolveClaims(p expr.Params) {
	for _, r := range []string{"F", "H"} {
		p["CP_"+r+"XF_SUICIDE"] = almostImpossible
		p["CP_"+r+"XX_BIG_UNDERREPORT"] = extremelyUnlikely
		p["CP_"+r+"XX_UNDERREPORT"] = veryUnlikely
		p["CP_"+r+"XX_OVERREPORT"] = veryUnlikely
		p["CP_"+r+"XX_BIG_OVERREPORT"] = extremelyUnlikely
		for _, c := range []string{"F", "H", "L"} {
			if r == "H" && c == "H" {
				continue
			}
			p["CP_"+r+c+"L_FORCE"] = veryUnlikely
			p["CP_"+r+c+"L_TEST"] = veryUnlikely
		}

		p["CC_"+r+"X0F_SUICIDE"] = almostImpossible
		p["CC_"+r+"X1F_DENY"] = 1 - almostImpossible
		p["CC_"+r+"11L_OVERREPORT"] = almostImpossible
		p["CC_"+r+"21L_OVERREPORT"] = unlikely
		p["CC_"+r+"12L_UNDERREPORT"] = unlikely
		p["CC_"+r+"22L_UNDERREPORT"] = almostImpossible
	}

	p["CP_FFF_ACCUSE"] = unlikely
	p["CP_FHF_ACCUSE"] = veryUnlikely
	p["CP_FLF_FRAME"] = unlikely
	p["CP_FLF_SNITCH"] = 1 - veryUnlikely
	p["CP_HFF_ACCUSE"] = 0.1
	p["CP_HLF_FRAME"] = veryUnlikely
	p["CP_HLF_SNITCH"] = 1 - unlikely
	p["CP_LXX_LIE"] = almostImpossible
	p["CC_LXXX_LIE"] = almostImpossible
}

// resolveInvestigation sets the probabilities of choosing an
// investigation target (INV_) and of the reported result (ACC_).
// Investigations only happen with 7+ players, where Hitler does not know
// the fascists and so picks like a liberal.
func resolveInvestigation(s Situation, p expr.Params) {
	others := float64(s.NumPlayers() - 1)
	p["INV_L_F"] = float64(s.NumFascists()) / others
	p["INV_L_H"] = 1 / others
	p["INV_F_F"] = 0.1
	p["INV_F_H"] = 0.01

	p["ACC_L_LIE"] = almostImpossible
	p["ACC_F_FRAME"] = 0.2
	p["ACC_F_SNITCH"] = veryUnlikely
	p["ACC_H_FRAME"] = 0.1
	p["ACC_H_SNITCH"] = 0.5
}
