package gaussian

import (
	"fmt"

	"github.com/linsde/linsde/matrix"
)

// Gaussian is a Gaussian distribution in moment parameterization:
// a mean vector and a covariance matrix.
type Gaussian struct {
	// Mu is the mean vector, batch-major for batched distributions
	Mu []float64
	// Sigma is the covariance matrix
	Sigma matrix.Matrix
}

// NewGaussian creates a new Gaussian from mean mu and covariance sigma
// and returns it.
// It returns error if the dimensions or batch sizes are incompatible or
// if sigma is not tagged symmetric.
func NewGaussian(mu []float64, sigma matrix.Matrix) (*Gaussian, error) {
	if err := checkMoment(mu, sigma); err != nil {
		return nil, err
	}

	m := make([]float64, len(mu))
	copy(m, mu)

	return &Gaussian{Mu: m, Sigma: sigma}, nil
}

// Dim returns the dimension of the distribution.
func (g *Gaussian) Dim() int {
	r, _ := g.Sigma.Dims()
	return r
}

// BatchSize returns the batch axis size and false if g is unbatched.
func (g *Gaussian) BatchSize() (int, bool) {
	return momentBatch(g.Mu, g.Sigma)
}

// ToMixed converts g into its precision parameterization.
// It returns error if the covariance is singular.
func (g *Gaussian) ToMixed() (*MixedGaussian, error) {
	prec, err := g.Sigma.Inverse()
	if err != nil {
		return nil, fmt.Errorf("failed to invert covariance: %v", err)
	}

	return NewMixedGaussian(g.Mu, matrix.Symmetrize(prec))
}

// Condition returns the Bayesian update of g on the potential p:
// with K = (Sigma⁻¹ + J)⁻¹ the posterior is
// N(K (Sigma⁻¹ mu + J m), K).
// It returns error if the dimensions are incompatible or the update
// cannot be computed.
func (g *Gaussian) Condition(p *MixedGaussian) (*Gaussian, error) {
	if p.Dim() != g.Dim() {
		return nil, fmt.Errorf("invalid potential dimension: %d != %d", p.Dim(), g.Dim())
	}

	sigInv, err := g.Sigma.Inverse()
	if err != nil {
		return nil, fmt.Errorf("failed to invert covariance: %v", err)
	}

	prec, err := sigInv.Add(p.Precision)
	if err != nil {
		return nil, err
	}

	k, err := prec.Inverse()
	if err != nil {
		return nil, fmt.Errorf("failed to invert posterior precision: %v", err)
	}
	k = matrix.Symmetrize(k)

	// Sigma⁻¹ mu + J m
	h, err := sigInv.MulVec(g.Mu)
	if err != nil {
		return nil, err
	}
	jm, err := p.Precision.MulVec(p.Mu)
	if err != nil {
		return nil, err
	}
	h, err = addVecs(h, jm, g.Dim())
	if err != nil {
		return nil, err
	}

	mu, err := k.MulVec(h)
	if err != nil {
		return nil, err
	}

	return &Gaussian{Mu: mu, Sigma: k}, nil
}

// String implements the Stringer interface.
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nMu=%v\nSigma=%v\n}", g.Mu, g.Sigma)
}

// MixedGaussian is a Gaussian potential in mixed parameterization:
// a point estimate and a precision (inverse covariance) matrix.
// It encodes observation evidence for conditioning.
type MixedGaussian struct {
	// Mu is the point estimate, batch-major for batched potentials
	Mu []float64
	// Precision is the precision matrix
	Precision matrix.Matrix
}

// NewMixedGaussian creates a new mixed Gaussian potential from point
// estimate mu and precision matrix and returns it.
// It returns error if the dimensions or batch sizes are incompatible or
// if the precision matrix is not tagged symmetric.
func NewMixedGaussian(mu []float64, precision matrix.Matrix) (*MixedGaussian, error) {
	if err := checkMoment(mu, precision); err != nil {
		return nil, err
	}

	m := make([]float64, len(mu))
	copy(m, mu)

	return &MixedGaussian{Mu: m, Precision: precision}, nil
}

// Dim returns the dimension of the potential.
func (m *MixedGaussian) Dim() int {
	r, _ := m.Precision.Dims()
	return r
}

// BatchSize returns the batch axis size and false if m is unbatched.
func (m *MixedGaussian) BatchSize() (int, bool) {
	return momentBatch(m.Mu, m.Precision)
}

// ToGaussian converts m into its moment parameterization.
// It returns error if the precision is singular.
func (m *MixedGaussian) ToGaussian() (*Gaussian, error) {
	sigma, err := m.Precision.Inverse()
	if err != nil {
		return nil, fmt.Errorf("failed to invert precision: %v", err)
	}

	return NewGaussian(m.Mu, matrix.Symmetrize(sigma))
}

// String implements the Stringer interface.
func (m *MixedGaussian) String() string {
	return fmt.Sprintf("MixedGaussian{\nMu=%v\nPrecision=%v\n}", m.Mu, m.Precision)
}

// checkMoment validates a mean vector against its square matrix
// parameter: matching dimensions, compatible batch sizes and a
// symmetric tag on the matrix.
func checkMoment(mu []float64, m matrix.Matrix) error {
	if m == nil {
		return fmt.Errorf("invalid matrix: %v", m)
	}

	r, c := m.Dims()
	if r != c {
		return fmt.Errorf("invalid matrix dimensions: [%d x %d]", r, c)
	}

	if len(mu) == 0 || len(mu)%r != 0 {
		return fmt.Errorf("invalid mean length: %d", len(mu))
	}

	if _, _, err := momentBatchE(mu, m); err != nil {
		return err
	}

	if !m.Tags().IsSymmetric() {
		return fmt.Errorf("matrix must be tagged symmetric, got %v", m.Tags())
	}

	return nil
}

// momentBatch returns the shared batch size of a mean vector and its
// matrix parameter, and false if both are unbatched.
func momentBatch(mu []float64, m matrix.Matrix) (int, bool) {
	batch, ok, _ := momentBatchE(mu, m)
	return batch, ok
}

func momentBatchE(mu []float64, m matrix.Matrix) (int, bool, error) {
	r, _ := m.Dims()
	muBatch := 0
	if len(mu) != r {
		muBatch = len(mu) / r
	}

	mBatch, _ := m.BatchSize()
	batch, err := broadcastBatch(muBatch, mBatch)
	if err != nil {
		return 0, false, err
	}

	return batch, batch != 0, nil
}

// broadcastBatch resolves the shared batch size of two operands where 0
// means unbatched. It returns error on a mismatch.
func broadcastBatch(a, b int) (int, error) {
	switch {
	case a == b:
		return a, nil
	case a == 0:
		return b, nil
	case b == 0:
		return a, nil
	}
	return 0, fmt.Errorf("batch size mismatch: %d != %d", a, b)
}

// addVecs adds two batch-major vectors with member length n,
// broadcasting an unbatched operand against a batched one.
func addVecs(a, b []float64, n int) ([]float64, error) {
	aBatch := 0
	if len(a) != n {
		aBatch = len(a) / n
	}
	bBatch := 0
	if len(b) != n {
		bBatch = len(b) / n
	}

	batch, err := broadcastBatch(aBatch, bBatch)
	if err != nil {
		return nil, err
	}

	mem := batch
	if mem == 0 {
		mem = 1
	}

	out := make([]float64, mem*n)
	for i := 0; i < mem; i++ {
		ai, bi := i, i
		if aBatch == 0 {
			ai = 0
		}
		if bBatch == 0 {
			bi = 0
		}
		for j := 0; j < n; j++ {
			out[i*n+j] = a[ai*n+j] + b[bi*n+j]
		}
	}

	return out, nil
}
