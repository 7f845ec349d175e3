package gaussian

import (
	"fmt"

	"github.com/linsde/linsde/matrix"
)

// Transition is a linear Gaussian transition kernel
//
//	x_t = A x_s + u + eps,  eps ~ N(0, Sigma)
//
// parameterized by the mean-mapping matrix A, the offset vector u and
// the noise covariance Sigma. Sigma is always carried tagged symmetric
// PSD so that downstream consumers can use structured inverse paths.
type Transition struct {
	// A is the mean-mapping matrix
	A matrix.Matrix
	// U is the offset vector, batch-major for batched transitions
	U []float64
	// Sigma is the noise covariance matrix
	Sigma matrix.Matrix
}

// NewTransition creates a new Gaussian transition kernel and returns it.
// It returns error if A is not square, the dimensions or batch sizes
// are incompatible, or Sigma is not tagged PSD.
func NewTransition(a matrix.Matrix, u []float64, sigma matrix.Matrix) (*Transition, error) {
	if a == nil || sigma == nil {
		return nil, fmt.Errorf("invalid transition matrices: A=%v, Sigma=%v", a, sigma)
	}

	ar, ac := a.Dims()
	if ar != ac {
		return nil, fmt.Errorf("invalid mean-mapping matrix dimensions: [%d x %d]", ar, ac)
	}

	sr, sc := sigma.Dims()
	if sr != ar || sc != ar {
		return nil, fmt.Errorf("invalid covariance dimensions: [%d x %d] != [%d x %d]", sr, sc, ar, ar)
	}

	if !sigma.Tags().IsPSD() {
		return nil, fmt.Errorf("covariance must be tagged PSD, got %v", sigma.Tags())
	}

	if len(u) == 0 || len(u)%ar != 0 {
		return nil, fmt.Errorf("invalid offset length: %d", len(u))
	}

	if _, err := transitionBatch(a, u, sigma); err != nil {
		return nil, err
	}

	uc := make([]float64, len(u))
	copy(uc, u)

	return &Transition{A: a, U: uc, Sigma: sigma}, nil
}

// Dim returns the state dimension of the transition.
func (t *Transition) Dim() int {
	r, _ := t.A.Dims()
	return r
}

// BatchSize returns the shared batch axis size of A, u and Sigma, and
// false if the transition is unbatched.
func (t *Transition) BatchSize() (int, bool) {
	batch, _ := transitionBatch(t.A, t.U, t.Sigma)
	return batch, batch != 0
}

// Apply pushes the Gaussian marginal g through the transition:
// N(A mu + u, A Sigma Aᵀ + Q).
// It returns error if the dimensions are incompatible.
func (t *Transition) Apply(g *Gaussian) (*Gaussian, error) {
	if g.Dim() != t.Dim() {
		return nil, fmt.Errorf("invalid marginal dimension: %d != %d", g.Dim(), t.Dim())
	}

	mu, err := t.A.MulVec(g.Mu)
	if err != nil {
		return nil, err
	}
	mu, err = addVecs(mu, t.U, t.Dim())
	if err != nil {
		return nil, err
	}

	as, err := t.A.Mul(g.Sigma)
	if err != nil {
		return nil, err
	}
	asa, err := as.Mul(t.A.T())
	if err != nil {
		return nil, err
	}
	sigma, err := asa.Add(t.Sigma)
	if err != nil {
		return nil, err
	}

	return &Gaussian{Mu: mu, Sigma: matrix.Symmetrize(sigma)}, nil
}

// Condition returns the Bayesian update of the transition endpoint on
// the potential p. With K = (Sigma⁻¹ + J)⁻¹ the conditioned kernel is
//
//	A' = K Sigma⁻¹ A,  u' = K (Sigma⁻¹ u + J m),  Sigma' = K.
//
// It returns error if the dimensions are incompatible or the update
// cannot be computed.
func (t *Transition) Condition(p *MixedGaussian) (*Transition, error) {
	if p.Dim() != t.Dim() {
		return nil, fmt.Errorf("invalid potential dimension: %d != %d", p.Dim(), t.Dim())
	}

	sigInv, err := t.Sigma.Inverse()
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

	kSigInv, err := k.Mul(sigInv)
	if err != nil {
		return nil, err
	}

	a, err := kSigInv.Mul(t.A)
	if err != nil {
		return nil, err
	}

	u, err := kSigInv.MulVec(t.U)
	if err != nil {
		return nil, err
	}
	jm, err := p.Precision.MulVec(p.Mu)
	if err != nil {
		return nil, err
	}
	kjm, err := k.MulVec(jm)
	if err != nil {
		return nil, err
	}
	u, err = addVecs(u, kjm, t.Dim())
	if err != nil {
		return nil, err
	}

	return &Transition{A: a, U: u, Sigma: k}, nil
}

// String implements the Stringer interface.
func (t *Transition) String() string {
	return fmt.Sprintf("Transition{\nA=%v\nU=%v\nSigma=%v\n}", t.A, t.U, t.Sigma)
}

// Compose chains two transition kernels: first maps x_s to x_r, second
// maps x_r to x_t. The composed kernel maps x_s to x_t:
//
//	A = A2 A1,  u = A2 u1 + u2,  Sigma = A2 Sigma1 A2ᵀ + Sigma2.
//
// It returns error if the dimensions or batch sizes are incompatible.
func Compose(first, second *Transition) (*Transition, error) {
	if first.Dim() != second.Dim() {
		return nil, fmt.Errorf("invalid transition dimensions: %d != %d", first.Dim(), second.Dim())
	}

	a, err := second.A.Mul(first.A)
	if err != nil {
		return nil, err
	}

	u, err := second.A.MulVec(first.U)
	if err != nil {
		return nil, err
	}
	u, err = addVecs(u, second.U, first.Dim())
	if err != nil {
		return nil, err
	}

	as, err := second.A.Mul(first.Sigma)
	if err != nil {
		return nil, err
	}
	asa, err := as.Mul(second.A.T())
	if err != nil {
		return nil, err
	}
	sigma, err := asa.Add(second.Sigma)
	if err != nil {
		return nil, err
	}

	return &Transition{A: a, U: u, Sigma: matrix.Symmetrize(sigma)}, nil
}

// Identity returns the identity transition of dimension dim: it maps
// every state onto itself with zero noise.
func Identity(dim int) *Transition {
	zero := make([]float64, dim)
	sigma, _ := matrix.NewDiag(zero, matrix.TagPSD)

	return &Transition{A: matrix.Eye(dim), U: make([]float64, dim), Sigma: sigma}
}

// transitionBatch resolves the shared batch size of the triplet.
func transitionBatch(a matrix.Matrix, u []float64, sigma matrix.Matrix) (int, error) {
	n, _ := a.Dims()

	aBatch, _ := a.BatchSize()
	sBatch, _ := sigma.BatchSize()
	uBatch := 0
	if len(u) != n {
		uBatch = len(u) / n
	}

	batch, err := broadcastBatch(aBatch, sBatch)
	if err != nil {
		return 0, err
	}

	return broadcastBatch(batch, uBatch)
}
