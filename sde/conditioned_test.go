package sde

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linsde/linsde/gaussian"
	"github.com/linsde/linsde/matrix"
)

func scalarPotential(t *testing.T, mu, precision float64) *gaussian.MixedGaussian {
	prec, err := matrix.NewDiag([]float64{precision}, matrix.TagPSD)
	assert.NoError(t, err)

	pot, err := gaussian.NewMixedGaussian([]float64{mu}, prec)
	assert.NoError(t, err)

	return pot
}

func TestNewConditioned(t *testing.T) {
	assert := assert.New(t)

	s, err := BrownianMotion(1.0, 1)
	assert.NoError(err)

	evidence := gaussian.SinglePotentialSeries(1.0, scalarPotential(t, 2.0, 1.0))
	c, err := NewConditioned(s, evidence)
	assert.NotNil(c)
	assert.NoError(err)
	assert.Equal(1, c.Dim())

	// evidence dimension must match the SDE
	twoDim, err := BrownianMotion(1.0, 2)
	assert.NoError(err)
	c, err = NewConditioned(twoDim, evidence)
	assert.Nil(c)
	assert.Error(err)
}

func TestConditionedTransition(t *testing.T) {
	assert := assert.New(t)

	// Brownian motion with unit diffusion, evidence N(2, precision 1)
	// observed at t=1, queried over (0, 2):
	// compose to 1: A=1, u=0, Sigma=1
	// condition:    K=1/2, A=1/2, u=1, Sigma=1/2
	// compose to 2: A=1/2, u=1, Sigma=3/2
	s, err := BrownianMotion(1.0, 1)
	assert.NoError(err)

	evidence := gaussian.SinglePotentialSeries(1.0, scalarPotential(t, 2.0, 1.0))
	c, err := NewConditioned(s, evidence)
	assert.NoError(err)

	tr, err := c.Transition(0.0, 2.0)
	assert.NoError(err)
	assert.InDelta(0.5, tr.A.At(0, 0, 0), 1e-12)
	assert.InDelta(1.0, tr.U[0], 1e-12)
	assert.InDelta(1.5, tr.Sigma.At(0, 0, 0), 1e-12)
	assert.True(tr.Sigma.Tags().IsPSD())
}

func TestConditionedTransitionOutsideEvidence(t *testing.T) {
	assert := assert.New(t)

	s, err := BrownianMotion(1.0, 1)
	assert.NoError(err)

	// evidence outside the queried interval does not contribute
	evidence := gaussian.SinglePotentialSeries(5.0, scalarPotential(t, 2.0, 1.0))
	c, err := NewConditioned(s, evidence)
	assert.NoError(err)

	tr, err := c.Transition(0.0, 2.0)
	assert.NoError(err)
	base, err := s.Transition(0.0, 2.0)
	assert.NoError(err)

	assert.InDelta(base.A.At(0, 0, 0), tr.A.At(0, 0, 0), 1e-12)
	assert.InDelta(base.U[0], tr.U[0], 1e-12)
	assert.InDelta(base.Sigma.At(0, 0, 0), tr.Sigma.At(0, 0, 0), 1e-12)

	// boundary timestamps are excluded: strictly within only
	boundary := gaussian.SinglePotentialSeries(2.0, scalarPotential(t, 2.0, 1.0))
	c, err = NewConditioned(s, boundary)
	assert.NoError(err)

	tr, err = c.Transition(0.0, 2.0)
	assert.NoError(err)
	assert.InDelta(base.Sigma.At(0, 0, 0), tr.Sigma.At(0, 0, 0), 1e-12)

	// reverse-time queries violate the precondition
	tr, err = c.Transition(2.0, 0.0)
	assert.Nil(tr)
	assert.Error(err)
}

func TestConditionedConditionOn(t *testing.T) {
	assert := assert.New(t)

	s, err := BrownianMotion(1.0, 1)
	assert.NoError(err)

	first := gaussian.SinglePotentialSeries(1.0, scalarPotential(t, 2.0, 1.0))
	c, err := NewConditioned(s, first)
	assert.NoError(err)

	// further evidence merges into the conditioning
	second := gaussian.SinglePotentialSeries(2.0, scalarPotential(t, 3.0, 1.0))
	merged, err := c.ConditionOn(second)
	assert.NoError(err)
	assert.Equal(2, merged.Evidence().Len())
	assert.Equal([]float64{1.0, 2.0}, merged.Evidence().Times())

	// overlapping evidence timestamps fail
	overlap := gaussian.SinglePotentialSeries(1.0, scalarPotential(t, 0.0, 1.0))
	bad, err := c.ConditionOn(overlap)
	assert.Nil(bad)
	assert.Error(err)
}

func TestPosterior(t *testing.T) {
	assert := assert.New(t)

	s, err := BrownianMotion(1.0, 1)
	assert.NoError(err)

	// a near-exact observation pins the smoothed marginal to its value
	evidence := gaussian.SinglePotentialSeries(1.0, scalarPotential(t, 5.0, 1e6))
	c, err := NewConditioned(s, evidence)
	assert.NoError(err)

	prior, err := gaussian.NewGaussian([]float64{0.0}, matrix.Eye(1))
	assert.NoError(err)

	marginals, err := c.Posterior(prior, 0.0)
	assert.NoError(err)
	assert.Len(marginals, 1)
	assert.InDelta(5.0, marginals[0].Mu[0], 1e-3)
	assert.Less(marginals[0].Sigma.At(0, 0, 0), 1e-3)
}

func TestPosteriorSmoothing(t *testing.T) {
	assert := assert.New(t)

	s, err := BrownianMotion(1.0, 1)
	assert.NoError(err)

	// two consistent near-exact observations: both smoothed marginals
	// settle on the observed values
	pots := []*gaussian.MixedGaussian{
		scalarPotential(t, 1.0, 1e6),
		scalarPotential(t, 2.0, 1e6),
	}
	evidence, err := gaussian.NewPotentialSeries([]float64{1.0, 2.0}, pots)
	assert.NoError(err)

	c, err := NewConditioned(s, evidence)
	assert.NoError(err)

	prior, err := gaussian.NewGaussian([]float64{0.0}, matrix.Eye(1))
	assert.NoError(err)

	marginals, err := c.Posterior(prior, 0.0)
	assert.NoError(err)
	assert.Len(marginals, 2)
	assert.InDelta(1.0, marginals[0].Mu[0], 1e-3)
	assert.InDelta(2.0, marginals[1].Mu[0], 1e-3)

	// prior time must not be later than the first evidence timestamp
	marginals, err = c.Posterior(prior, 1.5)
	assert.Nil(marginals)
	assert.Error(err)
}
