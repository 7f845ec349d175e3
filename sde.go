// Package linsde models linear stochastic differential equations and
// their exact Gaussian transition distributions for continuous-time
// state estimation on irregularly spaced observations.
//
// The root package defines the SDE contracts only; concrete SDEs live
// in the sde package, the structured matrix representations in matrix
// and the Gaussian transition algebra in gaussian. The contracts are
// interfaces: the abstract members of the hierarchy cannot be
// instantiated by construction.
package linsde

import (
	"github.com/linsde/linsde/gaussian"
	"github.com/linsde/linsde/matrix"
)

// SDE is a continuous-time stochastic differential equation
//
//	dx = f(x, t) dt + L(t) dW
type SDE interface {
	// Dim returns the state dimension
	Dim() int
	// BatchSize returns the shared leading batch axis size of the
	// SDE's matrices. It returns false if the SDE is unbatched.
	BatchSize() (int, bool)
}

// LinearSDE is an SDE with linear drift F(t) x and dispersion L(t).
type LinearSDE interface {
	SDE
	// Drift returns the drift matrix F(t)
	Drift(t float64) matrix.Matrix
	// Dispersion returns the dispersion matrix L(t)
	Dispersion(t float64) matrix.Matrix
	// Transition returns the Gaussian transition distribution of the
	// state from time from to time to, with to >= from.
	Transition(from, to float64) (*gaussian.Transition, error)
	// ConditionOn conditions the SDE on an evidence series
	ConditionOn(evidence *gaussian.PotentialSeries) (ConditionedSDE, error)
}

// LinearTimeInvariantSDE is a linear SDE whose drift and dispersion
// matrices are constant in time, admitting closed-form transitions.
type LinearTimeInvariantSDE interface {
	LinearSDE
	// F returns the constant drift matrix
	F() matrix.Matrix
	// L returns the constant dispersion matrix
	L() matrix.Matrix
	// Order returns the derivative order of the state augmentation.
	// SDEs without a derivative structure return an error naming the
	// missing attribute.
	Order() (int, error)
}

// ConditionedSDE is a linear SDE conditioned on an evidence series.
// Its transition distributions incorporate all evidence observed
// strictly inside the queried interval.
type ConditionedSDE interface {
	SDE
	// Transition returns the conditioned Gaussian transition
	// distribution from time from to time to, with to >= from.
	Transition(from, to float64) (*gaussian.Transition, error)
	// ConditionOn merges further evidence into the conditioning
	ConditionOn(evidence *gaussian.PotentialSeries) (ConditionedSDE, error)
	// Base returns the wrapped SDE
	Base() LinearSDE
	// Evidence returns the evidence series the SDE is conditioned on
	Evidence() *gaussian.PotentialSeries
	// Posterior returns the smoothed Gaussian marginals at the
	// evidence timestamps given the prior state distribution at time
	// at, with at no later than the first evidence timestamp.
	Posterior(prior *gaussian.Gaussian, at float64) ([]*gaussian.Gaussian, error)
}
