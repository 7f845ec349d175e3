package sde

import (
	"fmt"

	"github.com/linsde/linsde"
	"github.com/linsde/linsde/gaussian"
	"github.com/linsde/linsde/matrix"
)

// Conditioned is a linear SDE conditioned on an evidence series. It
// holds references to the wrapped SDE and the evidence, not copies,
// and computes nothing at construction: transition distributions
// incorporating the evidence are computed only when queried.
type Conditioned struct {
	// sde is the wrapped SDE
	sde linsde.LinearSDE
	// evidence is the series the SDE is conditioned on
	evidence *gaussian.PotentialSeries
}

// compile-time contract check
var _ linsde.ConditionedSDE = (*Conditioned)(nil)

// NewConditioned creates a new conditioned SDE wrapping sde and
// evidence and returns it.
// It returns error if the evidence dimension or batch size does not
// match the SDE.
func NewConditioned(sde linsde.LinearSDE, evidence *gaussian.PotentialSeries) (*Conditioned, error) {
	if sde == nil || evidence == nil {
		return nil, fmt.Errorf("invalid conditioning inputs: sde=%v, evidence=%v", sde, evidence)
	}

	if evidence.Dim() != sde.Dim() {
		return nil, fmt.Errorf("invalid evidence dimension: %d != %d", evidence.Dim(), sde.Dim())
	}

	sdeBatch, _ := sde.BatchSize()
	for i := 0; i < evidence.Len(); i++ {
		pBatch, _ := evidence.Potential(i).BatchSize()
		if sdeBatch != 0 && pBatch != 0 && sdeBatch != pBatch {
			return nil, fmt.Errorf("batch size mismatch at evidence index %d: %d != %d", i, pBatch, sdeBatch)
		}
	}

	return &Conditioned{sde: sde, evidence: evidence}, nil
}

// Base returns the wrapped SDE.
func (c *Conditioned) Base() linsde.LinearSDE {
	return c.sde
}

// Evidence returns the evidence series.
func (c *Conditioned) Evidence() *gaussian.PotentialSeries {
	return c.evidence
}

// Dim returns the state dimension of the wrapped SDE.
func (c *Conditioned) Dim() int {
	return c.sde.Dim()
}

// BatchSize returns the batch axis size of the wrapped SDE.
func (c *Conditioned) BatchSize() (int, bool) {
	return c.sde.BatchSize()
}

// Transition returns the transition distribution from time from to
// time to conditioned on all evidence observed strictly inside the
// interval: base transitions are composed up to each evidence time and
// conditioned on its potential, then composed up to to. The result
// equals the analytically conditioned Gaussian for the evidence subset
// inside the interval.
// It returns error if to < from.
func (c *Conditioned) Transition(from, to float64) (*gaussian.Transition, error) {
	if to < from {
		return nil, fmt.Errorf("invalid time interval: %v > %v", from, to)
	}

	lo, hi := c.evidence.Between(from, to)

	cur := gaussian.Identity(c.Dim())
	prev := from
	for i := lo; i < hi; i++ {
		tr, err := c.sde.Transition(prev, c.evidence.Time(i))
		if err != nil {
			return nil, err
		}

		if cur, err = gaussian.Compose(cur, tr); err != nil {
			return nil, err
		}

		if cur, err = cur.Condition(c.evidence.Potential(i)); err != nil {
			return nil, fmt.Errorf("failed to condition on evidence at %v: %v", c.evidence.Time(i), err)
		}

		prev = c.evidence.Time(i)
	}

	tr, err := c.sde.Transition(prev, to)
	if err != nil {
		return nil, err
	}

	return gaussian.Compose(cur, tr)
}

// ConditionOn merges further evidence into the conditioning and
// returns a new conditioned SDE wrapping the same base SDE.
// It returns error if the evidence series share a timestamp.
func (c *Conditioned) ConditionOn(evidence *gaussian.PotentialSeries) (linsde.ConditionedSDE, error) {
	merged, err := c.evidence.Merge(evidence)
	if err != nil {
		return nil, err
	}

	return NewConditioned(c.sde, merged)
}

// Posterior returns the smoothed Gaussian marginals at the evidence
// timestamps given the prior state distribution at time at. It runs a
// forward filtering pass over the evidence followed by a
// Rauch-Tung-Striebel backward smoothing pass.
// It returns error if at is later than the first evidence timestamp.
func (c *Conditioned) Posterior(prior *gaussian.Gaussian, at float64) ([]*gaussian.Gaussian, error) {
	if prior == nil {
		return nil, fmt.Errorf("invalid prior: %v", prior)
	}

	if prior.Dim() != c.Dim() {
		return nil, fmt.Errorf("invalid prior dimension: %d != %d", prior.Dim(), c.Dim())
	}

	m := c.evidence.Len()
	if at > c.evidence.Time(0) {
		return nil, fmt.Errorf("invalid prior time: %v > %v", at, c.evidence.Time(0))
	}

	// forward filtering pass
	trans := make([]*gaussian.Transition, m)
	pred := make([]*gaussian.Gaussian, m)
	filt := make([]*gaussian.Gaussian, m)

	cur := prior
	prev := at
	for i := 0; i < m; i++ {
		tr, err := c.sde.Transition(prev, c.evidence.Time(i))
		if err != nil {
			return nil, err
		}
		trans[i] = tr

		if pred[i], err = tr.Apply(cur); err != nil {
			return nil, err
		}

		if filt[i], err = pred[i].Condition(c.evidence.Potential(i)); err != nil {
			return nil, fmt.Errorf("failed to condition on evidence at %v: %v", c.evidence.Time(i), err)
		}

		cur = filt[i]
		prev = c.evidence.Time(i)
	}

	// backward smoothing pass
	out := make([]*gaussian.Gaussian, m)
	out[m-1] = filt[m-1]
	for i := m - 2; i >= 0; i-- {
		g, err := smootherGain(filt[i].Sigma, trans[i+1].A, pred[i+1].Sigma)
		if err != nil {
			return nil, err
		}

		// mu = mu_f + G (mu_s - mu_p)
		diff := subVecs(out[i+1].Mu, pred[i+1].Mu)
		corr, err := g.MulVec(diff)
		if err != nil {
			return nil, err
		}
		mu, err := addMuVecs(filt[i].Mu, corr, c.Dim())
		if err != nil {
			return nil, err
		}

		// Sigma = Sigma_f + G (Sigma_s - Sigma_p) Gᵀ
		sub, err := out[i+1].Sigma.Add(pred[i+1].Sigma.Scale(-1))
		if err != nil {
			return nil, err
		}
		gs, err := g.Mul(sub)
		if err != nil {
			return nil, err
		}
		gsg, err := gs.Mul(g.T())
		if err != nil {
			return nil, err
		}
		sigma, err := filt[i].Sigma.Add(gsg)
		if err != nil {
			return nil, err
		}

		out[i] = &gaussian.Gaussian{Mu: mu, Sigma: matrix.Symmetrize(sigma)}
	}

	return out, nil
}

// String implements the Stringer interface.
func (c *Conditioned) String() string {
	return fmt.Sprintf("Conditioned{sde=%v, evidence=%v}", c.sde, c.evidence)
}

// smootherGain computes the RTS gain G = P_f Aᵀ P_p⁻¹.
func smootherGain(filtCov, a, predCov matrix.Matrix) (matrix.Matrix, error) {
	predInv, err := predCov.Inverse()
	if err != nil {
		return nil, fmt.Errorf("failed to invert predictive covariance: %v", err)
	}

	g, err := filtCov.Mul(a.T())
	if err != nil {
		return nil, err
	}

	return g.Mul(predInv)
}

// subVecs subtracts two equal-length vectors elementwise.
func subVecs(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}

	return out
}

// addMuVecs adds two batch-major mean vectors with member length n,
// broadcasting an unbatched operand.
func addMuVecs(a, b []float64, n int) ([]float64, error) {
	if len(a) == len(b) {
		out := make([]float64, len(a))
		for i := range a {
			out[i] = a[i] + b[i]
		}
		return out, nil
	}

	if len(a) > len(b) {
		a, b = b, a
	}
	if len(a) != n || len(b)%n != 0 {
		return nil, fmt.Errorf("invalid mean vector lengths: %d, %d", len(a), len(b))
	}

	out := make([]float64, len(b))
	for i := range out {
		out[i] = a[i%n] + b[i]
	}

	return out, nil
}
