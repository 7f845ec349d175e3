package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/linsde/linsde"
	"github.com/linsde/linsde/gaussian"
	"github.com/linsde/linsde/rnd"
)

// Path is a sampled trajectory of an SDE: one state row per timestamp.
type Path struct {
	// Times are the sampling timestamps
	Times []float64
	// States holds one state per row, in timestamp order
	States *mat.Dense
}

// SamplePath samples one exact trajectory of the SDE s at the given
// timestamps starting from state x0 at ts[0]. The trajectory is drawn
// through the SDE's closed-form transition distributions: this is an
// exact discrete sample, not a numerical integration scheme.
// It returns error if the SDE is batched, x0 has the wrong dimension
// or the timestamps are not strictly increasing.
func SamplePath(s linsde.LinearSDE, x0 []float64, ts []float64) (*Path, error) {
	if _, ok := s.BatchSize(); ok {
		return nil, fmt.Errorf("invalid SDE: batched SDEs cannot be sampled")
	}

	dim := s.Dim()
	if len(x0) != dim {
		return nil, fmt.Errorf("invalid initial state dimension: %d != %d", len(x0), dim)
	}

	if len(ts) == 0 {
		return nil, fmt.Errorf("invalid timestamps: %v", ts)
	}
	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			return nil, gaussian.ErrNotChronological
		}
	}

	states := mat.NewDense(len(ts), dim, nil)
	x := make([]float64, dim)
	copy(x, x0)
	states.SetRow(0, x)

	for i := 1; i < len(ts); i++ {
		tr, err := s.Transition(ts[i-1], ts[i])
		if err != nil {
			return nil, err
		}

		mean, err := tr.A.MulVec(x)
		if err != nil {
			return nil, err
		}

		noise, err := rnd.WithCovN(tr.Sigma, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to sample transition noise: %v", err)
		}

		for j := 0; j < dim; j++ {
			x[j] = mean[j] + tr.U[j] + noise.At(j, 0)
		}
		states.SetRow(i, x)
	}

	ct := make([]float64, len(ts))
	copy(ct, ts)

	return &Path{Times: ct, States: states}, nil
}

// SamplePaths samples n exact trajectories of the SDE s at the given
// timestamps, drawing the initial states from the Gaussian init with a
// random source seeded by seed.
// It returns error if init is degenerate or sampling a path fails.
func SamplePaths(s linsde.LinearSDE, init *gaussian.Gaussian, ts []float64, n int, seed uint64) ([]*Path, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of paths requested: %d", n)
	}

	dist, err := rnd.NewNormal(init.Mu, init.Sigma, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial state distribution: %v", err)
	}

	paths := make([]*Path, n)
	for i := range paths {
		p, err := SamplePath(s, dist.Sample(), ts)
		if err != nil {
			return nil, err
		}
		paths[i] = p
	}

	return paths, nil
}
