package rnd

import (
	"fmt"
	"math"
	rnd "math/rand"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/linsde/linsde/matrix"
)

// WithCovN draws n random samples from a zero-mean Normal (aka
// Gaussian) distribution with structured covariance cov. It returns a
// matrix containing the samples stored in its columns. Diagonal
// covariances sample elementwise; dense covariances factorize through
// SVD, which stays stable when cov is (almost) singular.
// It fails with error if n is not positive or cov is batched.
func WithCovN(cov matrix.Matrix, n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of samples requested: %d", n)
	}

	if _, ok := cov.BatchSize(); ok {
		return nil, fmt.Errorf("invalid covariance: batched matrices cannot be sampled")
	}

	rows, cols := cov.Dims()
	if rows != cols {
		return nil, fmt.Errorf("invalid covariance dimensions: [%d x %d]", rows, cols)
	}

	if d, ok := cov.(*matrix.Diag); ok {
		elems := d.Elements()
		data := make([]float64, rows*n)
		for i := 0; i < rows; i++ {
			sd := math.Sqrt(elems[i])
			for j := 0; j < n; j++ {
				data[i*n+j] = sd * rnd.NormFloat64()
			}
		}
		return mat.NewDense(rows, n, data), nil
	}

	var svd mat.SVD
	ok := svd.Factorize(cov.AsDense(0), mat.SVDFull)
	if !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	u := new(mat.Dense)
	svd.UTo(u)
	vals := svd.Values(nil)
	for i := range vals {
		vals[i] = math.Sqrt(vals[i])
	}
	diag := mat.NewDiagDense(len(vals), vals)
	u.Mul(u, diag)

	data := make([]float64, rows*n)
	for i := range data {
		data[i] = rnd.NormFloat64()
	}
	samples := mat.NewDense(rows, n, data)
	samples.Mul(u, samples)

	return samples, nil
}

// Normal is a multivariate normal distribution over a structured
// covariance, backed by a seeded random source.
type Normal struct {
	// dist is the multivariate normal distribution
	dist *distmv.Normal
	// mu is the distribution mean
	mu []float64
	// cov is the distribution covariance
	cov matrix.Matrix
}

// NewNormal creates a new Normal with mean mu, structured covariance
// cov and the given random seed, and returns it.
// It returns error if the dimensions are incompatible, cov is batched
// or not positive definite.
func NewNormal(mu []float64, cov matrix.Matrix, seed uint64) (*Normal, error) {
	if _, ok := cov.BatchSize(); ok {
		return nil, fmt.Errorf("invalid covariance: batched matrices cannot be sampled")
	}

	rows, cols := cov.Dims()
	if rows != cols || len(mu) != rows {
		return nil, fmt.Errorf("invalid distribution dimensions: mean %d, cov [%d x %d]", len(mu), rows, cols)
	}

	sym := mat.NewSymDense(rows, nil)
	for i := 0; i < rows; i++ {
		for j := i; j < cols; j++ {
			sym.SetSym(i, j, cov.At(0, i, j))
		}
	}

	src := rand.New(rand.NewSource(seed))
	dist, ok := distmv.NewNormal(mu, sym, src)
	if !ok {
		return nil, fmt.Errorf("failed to create normal distribution")
	}

	m := make([]float64, len(mu))
	copy(m, mu)

	return &Normal{dist: dist, mu: m, cov: cov}, nil
}

// Sample draws one sample from the distribution and returns it.
func (n *Normal) Sample() []float64 {
	return n.dist.Rand(nil)
}

// Mean returns the distribution mean.
func (n *Normal) Mean() []float64 {
	mu := make([]float64, len(n.mu))
	copy(mu, n.mu)

	return mu
}

// Cov returns the distribution covariance.
func (n *Normal) Cov() matrix.Matrix {
	return n.cov
}

// String implements the Stringer interface.
func (n *Normal) String() string {
	return fmt.Sprintf("Normal{\nMean=%v\nCov=%v\n}", n.mu, n.cov)
}
