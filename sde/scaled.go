package sde

import (
	"fmt"
	"math"

	"github.com/linsde/linsde"
	"github.com/linsde/linsde/gaussian"
	"github.com/linsde/linsde/matrix"
)

// TimeScaled is a linear time-invariant SDE running on a scaled clock.
// It wraps a base LTI SDE and a time scale k > 0: the wrapped dynamics
// are F' = k F and L' = sqrt(k) L, and querying the transition over
// (s, t) is identical to querying the base SDE over (k s, k t). A
// single base SDE can this way represent multiple physical time rates.
type TimeScaled struct {
	// base is the wrapped SDE
	base linsde.LinearTimeInvariantSDE
	// timeScale is the clock scale factor
	timeScale float64
}

// compile-time contract check
var _ linsde.LinearTimeInvariantSDE = (*TimeScaled)(nil)

// NewTimeScaled creates a new time-scaled SDE wrapping base and
// returns it. It holds a reference to base, not a copy.
// It returns error if timeScale is not positive.
func NewTimeScaled(base linsde.LinearTimeInvariantSDE, timeScale float64) (*TimeScaled, error) {
	if base == nil {
		return nil, fmt.Errorf("invalid base SDE: %v", base)
	}

	if timeScale <= 0 {
		return nil, fmt.Errorf("invalid time scale: %v", timeScale)
	}

	return &TimeScaled{base: base, timeScale: timeScale}, nil
}

// Base returns the wrapped SDE.
func (s *TimeScaled) Base() linsde.LinearTimeInvariantSDE {
	return s.base
}

// TimeScale returns the clock scale factor.
func (s *TimeScaled) TimeScale() float64 {
	return s.timeScale
}

// F returns the drift matrix of the base SDE scaled by the time scale.
func (s *TimeScaled) F() matrix.Matrix {
	return s.base.F().Scale(s.timeScale)
}

// L returns the dispersion matrix of the base SDE scaled by the square
// root of the time scale.
func (s *TimeScaled) L() matrix.Matrix {
	return s.base.L().Scale(math.Sqrt(s.timeScale))
}

// Dim returns the state dimension of the base SDE.
func (s *TimeScaled) Dim() int {
	return s.base.Dim()
}

// BatchSize returns the batch axis size of the base SDE.
func (s *TimeScaled) BatchSize() (int, bool) {
	return s.base.BatchSize()
}

// Drift returns the scaled drift matrix, constant in time.
func (s *TimeScaled) Drift(t float64) matrix.Matrix {
	return s.F()
}

// Dispersion returns the scaled dispersion matrix, constant in time.
func (s *TimeScaled) Dispersion(t float64) matrix.Matrix {
	return s.L()
}

// Order forwards to the base SDE. A base SDE without an order surfaces
// its error unchanged.
func (s *TimeScaled) Order() (int, error) {
	return s.base.Order()
}

// Transition returns the transition distribution over (from, to) by
// delegating to the base SDE on the scaled clock. The result is
// numerically identical to computing the transition directly from the
// scaled F and L.
func (s *TimeScaled) Transition(from, to float64) (*gaussian.Transition, error) {
	return s.base.Transition(from*s.timeScale, to*s.timeScale)
}

// ConditionOn conditions the time-scaled SDE on an evidence series.
func (s *TimeScaled) ConditionOn(evidence *gaussian.PotentialSeries) (linsde.ConditionedSDE, error) {
	return NewConditioned(s, evidence)
}

// String implements the Stringer interface.
func (s *TimeScaled) String() string {
	return fmt.Sprintf("TimeScaled{base=%v, timeScale=%v}", s.base, s.timeScale)
}
