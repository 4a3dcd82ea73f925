package ml

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// paramSpec bounds one hyperparameter dimension. Log-scaled dimensions
// are modeled in log space; integer dimensions round on the way out.
type paramSpec struct {
	name     string
	low      float64
	high     float64
	logScale bool
	integer  bool
}

// searchSpace is the fixed hyperparameter space: tree depth, shrinkage,
// ensemble size, leaf constraints, sampling fractions and L1/L2
// strengths.
var searchSpace = []paramSpec{
	{name: "max_depth", low: 3, high: 9, integer: true},
	{name: "learning_rate", low: 0.01, high: 0.3, logScale: true},
	{name: "num_trees", low: 100, high: 500, integer: true},
	{name: "min_child_weight", low: 1, high: 20, integer: true},
	{name: "subsample", low: 0.6, high: 1.0},
	{name: "colsample_bytree", low: 0.6, high: 1.0},
	{name: "reg_alpha", low: 1e-8, high: 10, logScale: true},
	{name: "reg_lambda", low: 1e-8, high: 10, logScale: true},
}

// observation is one completed trial in transformed coordinates.
type observation struct {
	point []float64
	score float64
}

// TPESampler proposes hyperparameters by tree-structured Parzen
// estimation: completed trials are split into a good and a bad group by
// score, each dimension gets a kernel-density model per group, and
// candidates maximizing the good/bad density ratio are chosen. The
// first few trials are uniform random to seed the densities.
//
// The sampler is sequential: every Suggest depends on all prior
// Observe calls, so trials cannot be reordered or parallelized.
type TPESampler struct {
	rng        *rand.Rand
	startup    int
	candidates int
	gamma      float64
	observed   []observation
}

// NewTPESampler creates a sampler with the given seed.
func NewTPESampler(seed int64) *TPESampler {
	return &TPESampler{
		rng:        rand.New(rand.NewSource(seed)),
		startup:    10,
		candidates: 24,
		gamma:      0.25,
	}
}

// Suggest proposes the next hyperparameter set.
func (s *TPESampler) Suggest() Hyperparams {
	point := make([]float64, len(searchSpace))

	if len(s.observed) < s.startup {
		for d, spec := range searchSpace {
			point[d] = s.uniform(spec)
		}
		return fromPoint(point)
	}

	sorted := make([]observation, len(s.observed))
	copy(sorted, s.observed)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].score < sorted[j].score })

	nBelow := int(math.Ceil(s.gamma * float64(len(sorted))))
	if nBelow < 1 {
		nBelow = 1
	}
	below := sorted[:nBelow]
	above := sorted[nBelow:]

	for d, spec := range searchSpace {
		point[d] = s.suggestDim(d, spec, below, above)
	}
	return fromPoint(point)
}

// Observe records a completed trial. Failed trials (score +Inf) are
// kept out of the density models but still count toward the budget the
// engine tracks.
func (s *TPESampler) Observe(params Hyperparams, score float64) {
	if math.IsInf(score, 0) || math.IsNaN(score) {
		return
	}
	s.observed = append(s.observed, observation{point: toPoint(params), score: score})
}

// suggestDim draws candidates from the good-group kernel density and
// keeps the one with the best good/bad log-density ratio.
func (s *TPESampler) suggestDim(d int, spec paramSpec, below, above []observation) float64 {
	lo, hi := spec.transformedBounds()
	sigma := (hi - lo) / math.Max(math.Sqrt(float64(len(below))), 1)
	if sigma <= 0 {
		sigma = (hi - lo) / 10
	}

	bestScore := math.Inf(-1)
	best := s.uniform(spec)
	for c := 0; c < s.candidates; c++ {
		// Sample from a kernel centered on a random good observation.
		center := below[s.rng.Intn(len(below))].point[d]
		x := center + sigma*s.rng.NormFloat64()
		if x < lo {
			x = lo
		}
		if x > hi {
			x = hi
		}

		ratio := logDensity(x, d, below, sigma) - logDensity(x, d, above, sigma)
		if ratio > bestScore {
			bestScore = ratio
			best = x
		}
	}
	return best
}

// logDensity evaluates a log kernel-density estimate with normal
// kernels at each group member.
func logDensity(x float64, d int, group []observation, sigma float64) float64 {
	if len(group) == 0 {
		return 0
	}
	var sum float64
	for _, obs := range group {
		n := distuv.Normal{Mu: obs.point[d], Sigma: sigma}
		sum += n.Prob(x)
	}
	v := sum / float64(len(group))
	if v <= 0 {
		return math.Inf(-1)
	}
	return math.Log(v)
}

// uniform draws one value in transformed coordinates.
func (s *TPESampler) uniform(spec paramSpec) float64 {
	lo, hi := spec.transformedBounds()
	return lo + s.rng.Float64()*(hi-lo)
}

func (spec paramSpec) transformedBounds() (float64, float64) {
	if spec.logScale {
		return math.Log(spec.low), math.Log(spec.high)
	}
	return spec.low, spec.high
}

// toPoint converts params into the sampler's transformed coordinates,
// ordered as in searchSpace.
func toPoint(h Hyperparams) []float64 {
	raw := []float64{
		float64(h.MaxDepth),
		h.LearningRate,
		float64(h.NumTrees),
		h.MinChildWeight,
		h.Subsample,
		h.ColsampleByTree,
		h.RegAlpha,
		h.RegLambda,
	}
	point := make([]float64, len(searchSpace))
	for d, spec := range searchSpace {
		v := raw[d]
		if spec.logScale {
			if v < spec.low {
				v = spec.low
			}
			v = math.Log(v)
		}
		point[d] = v
	}
	return point
}

// fromPoint converts transformed coordinates back to params, rounding
// integer dimensions.
func fromPoint(point []float64) Hyperparams {
	raw := make([]float64, len(point))
	for d, spec := range searchSpace {
		v := point[d]
		if spec.logScale {
			v = math.Exp(v)
		}
		if spec.integer {
			v = math.Round(v)
		}
		if v < spec.low {
			v = spec.low
		}
		if v > spec.high {
			v = spec.high
		}
		raw[d] = v
	}
	return Hyperparams{
		MaxDepth:        int(raw[0]),
		LearningRate:    raw[1],
		NumTrees:        int(raw[2]),
		MinChildWeight:  raw[3],
		Subsample:       raw[4],
		ColsampleByTree: raw[5],
		RegAlpha:        raw[6],
		RegLambda:       raw[7],
	}
}
