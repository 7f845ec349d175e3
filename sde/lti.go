package sde

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/linsde/linsde"
	"github.com/linsde/linsde/gaussian"
	"github.com/linsde/linsde/matrix"
)

// LTI is a linear time-invariant SDE
//
//	dx = F x dt + L dW
//
// with constant structured drift matrix F and dispersion matrix L.
// Its transition distributions have a closed form: the mean map is the
// matrix exponential of F dt and the noise covariance is the Lyapunov
// integral of the diffusion over the interval.
type LTI struct {
	// f is the drift matrix
	f matrix.Matrix
	// l is the dispersion matrix
	l matrix.Matrix
	// name identifies the SDE in error messages
	name string
	// order is the derivative order for models that define one
	order    int
	hasOrder bool
}

// compile-time contract check
var _ linsde.LinearTimeInvariantSDE = (*LTI)(nil)

// NewLTI creates a new linear time-invariant SDE from the constant
// drift matrix f and dispersion matrix l and returns it.
// It returns error if f is not square, the row dimensions differ or
// the batch sizes are incompatible.
func NewLTI(f, l matrix.Matrix) (*LTI, error) {
	if f == nil || l == nil {
		return nil, fmt.Errorf("invalid SDE matrices: F=%v, L=%v", f, l)
	}

	fr, fc := f.Dims()
	if fr != fc {
		return nil, fmt.Errorf("invalid drift matrix dimensions: [%d x %d]", fr, fc)
	}

	lr, _ := l.Dims()
	if lr != fr {
		return nil, fmt.Errorf("invalid dispersion matrix dimensions: %d rows != %d", lr, fr)
	}

	if _, err := sharedBatch(f, l); err != nil {
		return nil, err
	}

	return &LTI{f: f, l: l, name: "LTI"}, nil
}

// F returns the drift matrix.
func (s *LTI) F() matrix.Matrix {
	return s.f
}

// L returns the dispersion matrix.
func (s *LTI) L() matrix.Matrix {
	return s.l
}

// Dim returns the state dimension.
func (s *LTI) Dim() int {
	r, _ := s.f.Dims()
	return r
}

// BatchSize returns the shared batch axis size of F and L and false if
// the SDE is unbatched.
func (s *LTI) BatchSize() (int, bool) {
	batch, _ := sharedBatch(s.f, s.l)
	return batch, batch != 0
}

// Drift returns the drift matrix F, constant in time.
func (s *LTI) Drift(t float64) matrix.Matrix {
	return s.f
}

// Dispersion returns the dispersion matrix L, constant in time.
func (s *LTI) Dispersion(t float64) matrix.Matrix {
	return s.l
}

// Order returns the derivative order of the state augmentation.
// It returns error if the SDE does not define one.
func (s *LTI) Order() (int, error) {
	if !s.hasOrder {
		return 0, fmt.Errorf("%s does not have an order", s.name)
	}

	return s.order, nil
}

// Transition returns the exact Gaussian transition distribution of the
// state from time from to time to:
//
//	A = exp(F dt),  u = 0,  Sigma = ∫₀^dt exp(F r) L Lᵀ exp(Fᵀ r) dr
//
// computed in the structured form F and L allow: diagonal matrices use
// the elementwise closed form, dense matrices the Van Loan block
// exponential. Sigma is returned tagged PSD.
// It returns error if to < from.
func (s *LTI) Transition(from, to float64) (*gaussian.Transition, error) {
	dt := to - from
	if dt < 0 {
		return nil, fmt.Errorf("invalid time interval: %v > %v", from, to)
	}

	u := make([]float64, s.Dim())

	fd, fOK := s.f.(*matrix.Diag)
	ld, lOK := s.l.(*matrix.Diag)
	if fOK && lOK {
		a, sigma, err := diagTransition(fd, ld, dt)
		if err != nil {
			return nil, err
		}
		return gaussian.NewTransition(a, u, sigma)
	}

	a, sigma, err := denseTransition(s.f, s.l, dt)
	if err != nil {
		return nil, err
	}

	return gaussian.NewTransition(a, u, sigma)
}

// ConditionOn conditions the SDE on an evidence series.
func (s *LTI) ConditionOn(evidence *gaussian.PotentialSeries) (linsde.ConditionedSDE, error) {
	return NewConditioned(s, evidence)
}

// String implements the Stringer interface.
func (s *LTI) String() string {
	return fmt.Sprintf("%s{F=%v, L=%v}", s.name, s.f, s.l)
}

// diagTransition computes the LTI transition for diagonal F and L:
// everything is elementwise. The noise variance per element is
//
//	l² (e^{2 f dt} - 1) / (2 f)
//
// with the Brownian limit l² dt at f = 0.
func diagTransition(f, l *matrix.Diag, dt float64) (matrix.Matrix, matrix.Matrix, error) {
	n, _ := f.Dims()
	fBatch, _ := f.BatchSize()
	lBatch, _ := l.BatchSize()

	fe := f.Elements()
	le := l.Elements()

	// A = exp(F dt) elementwise
	a := f.Scale(dt).Exp()

	mem := 1
	batch := 0
	if fBatch != 0 || lBatch != 0 {
		b, err := sharedBatch(f, l)
		if err != nil {
			return nil, nil, err
		}
		batch, mem = b, b
	}

	elems := make([]float64, mem*n)
	for i := 0; i < mem; i++ {
		fi, li := i, i
		if fBatch == 0 {
			fi = 0
		}
		if lBatch == 0 {
			li = 0
		}
		for j := 0; j < n; j++ {
			fj := fe[fi*n+j]
			lj := le[li*n+j]
			var v float64
			if fj == 0 {
				v = lj * lj * dt
			} else {
				v = lj * lj * math.Expm1(2*fj*dt) / (2 * fj)
			}
			elems[i*n+j] = v
		}
	}

	var sigma matrix.Matrix
	var err error
	if batch == 0 {
		sigma, err = matrix.NewDiag(elems, matrix.TagPSD)
	} else {
		sigma, err = matrix.NewBatchDiag(batch, n, elems, matrix.TagPSD)
	}
	if err != nil {
		return nil, nil, err
	}

	return a, sigma, nil
}

// denseTransition computes the LTI transition through the Van Loan
// block exponential: with Q = L Lᵀ,
//
//	Phi = exp([[F, Q], [0, -Fᵀ]] dt) = [[M11, M12], [0, M22]]
//
// gives A = M11 and Sigma = M12 M11ᵀ.
func denseTransition(f, l matrix.Matrix, dt float64) (matrix.Matrix, matrix.Matrix, error) {
	n, _ := f.Dims()

	ll, err := l.Mul(l.T())
	if err != nil {
		return nil, nil, err
	}

	batch, err := sharedBatch(f, l)
	if err != nil {
		return nil, nil, err
	}

	mem := batch
	if mem == 0 {
		mem = 1
	}

	fBatch, _ := f.BatchSize()
	qBatch, _ := ll.BatchSize()

	aElems := make([]float64, mem*n*n)
	sElems := make([]float64, mem*n*n)
	for i := 0; i < mem; i++ {
		fi, qi := i, i
		if fBatch == 0 {
			fi = 0
		}
		if qBatch == 0 {
			qi = 0
		}

		h := mat.NewDense(2*n, 2*n, nil)
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				h.Set(r, c, f.At(fi, r, c)*dt)
				h.Set(r, n+c, ll.At(qi, r, c)*dt)
				h.Set(n+r, n+c, -f.At(fi, c, r)*dt)
			}
		}

		phi := new(mat.Dense)
		phi.Exp(h)

		a := mat.NewDense(n, n, aElems[i*n*n:(i+1)*n*n])
		a.Copy(phi.Slice(0, n, 0, n))

		sigma := mat.NewDense(n, n, sElems[i*n*n:(i+1)*n*n])
		sigma.Mul(phi.Slice(0, n, n, 2*n), a.T())
	}

	var a, sigma matrix.Matrix
	if batch == 0 {
		if a, err = matrix.NewDense(n, n, aElems, matrix.TagNone); err != nil {
			return nil, nil, err
		}
		if sigma, err = matrix.NewDense(n, n, sElems, matrix.TagNone); err != nil {
			return nil, nil, err
		}
	} else {
		if a, err = matrix.NewBatchDense(batch, n, n, aElems, matrix.TagNone); err != nil {
			return nil, nil, err
		}
		if sigma, err = matrix.NewBatchDense(batch, n, n, sElems, matrix.TagNone); err != nil {
			return nil, nil, err
		}
	}

	return a, matrix.Symmetrize(sigma), nil
}

// sharedBatch resolves the shared batch axis size of two matrices,
// where 0 means unbatched. It returns error on a mismatch.
func sharedBatch(a, b matrix.Matrix) (int, error) {
	aBatch, _ := a.BatchSize()
	bBatch, _ := b.BatchSize()

	switch {
	case aBatch == bBatch:
		return aBatch, nil
	case aBatch == 0:
		return bBatch, nil
	case bBatch == 0:
		return aBatch, nil
	}

	return 0, fmt.Errorf("batch size mismatch: %d != %d", aBatch, bBatch)
}
