package gaussian

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotChronological is returned when series timestamps are not
// strictly increasing.
var ErrNotChronological = errors.New("series timestamps not in strictly increasing order")

// PotentialSeries is an ordered collection of (timestamp, potential)
// pairs representing observed evidence at discrete times. Timestamps
// are strictly increasing.
type PotentialSeries struct {
	// ts are the timestamps in strictly increasing order
	ts []float64
	// potentials are the evidence potentials, one per timestamp
	potentials []*MixedGaussian
}

// NewPotentialSeries creates a new potential series from timestamps ts
// and potentials and returns it.
// It returns error if the lengths differ, the timestamps are not
// strictly increasing or the potential dimensions are inconsistent.
func NewPotentialSeries(ts []float64, potentials []*MixedGaussian) (*PotentialSeries, error) {
	if len(ts) == 0 || len(ts) != len(potentials) {
		return nil, fmt.Errorf("invalid series lengths: %d timestamps, %d potentials", len(ts), len(potentials))
	}

	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			return nil, ErrNotChronological
		}
	}

	dim := potentials[0].Dim()
	for i, p := range potentials {
		if p == nil {
			return nil, fmt.Errorf("invalid potential at index %d: %v", i, p)
		}
		if p.Dim() != dim {
			return nil, fmt.Errorf("invalid potential dimension at index %d: %d != %d", i, p.Dim(), dim)
		}
	}

	t := make([]float64, len(ts))
	copy(t, ts)
	pots := make([]*MixedGaussian, len(potentials))
	copy(pots, potentials)

	return &PotentialSeries{ts: t, potentials: pots}, nil
}

// SinglePotentialSeries wraps a single potential observed at time t
// into a length-1 series.
func SinglePotentialSeries(t float64, p *MixedGaussian) *PotentialSeries {
	return &PotentialSeries{ts: []float64{t}, potentials: []*MixedGaussian{p}}
}

// Len returns the number of potentials in the series.
func (s *PotentialSeries) Len() int {
	return len(s.ts)
}

// Dim returns the dimension of the potentials in the series.
func (s *PotentialSeries) Dim() int {
	return s.potentials[0].Dim()
}

// Time returns the timestamp at index i.
func (s *PotentialSeries) Time(i int) float64 {
	return s.ts[i]
}

// Times returns a copy of the series timestamps.
func (s *PotentialSeries) Times() []float64 {
	ts := make([]float64, len(s.ts))
	copy(ts, s.ts)

	return ts
}

// Potential returns the potential at index i.
func (s *PotentialSeries) Potential(i int) *MixedGaussian {
	return s.potentials[i]
}

// Between returns the half-open index range [lo, hi) of potentials
// observed strictly inside the interval (from, to).
func (s *PotentialSeries) Between(from, to float64) (lo, hi int) {
	lo = sort.SearchFloat64s(s.ts, from)
	for lo < len(s.ts) && s.ts[lo] <= from {
		lo++
	}
	hi = lo
	for hi < len(s.ts) && s.ts[hi] < to {
		hi++
	}

	return lo, hi
}

// Merge merges s with other into a new chronologically ordered series.
// It returns error if the two series share a timestamp or their
// potential dimensions differ.
func (s *PotentialSeries) Merge(other *PotentialSeries) (*PotentialSeries, error) {
	if s.Dim() != other.Dim() {
		return nil, fmt.Errorf("invalid series dimensions: %d != %d", s.Dim(), other.Dim())
	}

	ts := make([]float64, 0, len(s.ts)+len(other.ts))
	pots := make([]*MixedGaussian, 0, len(s.ts)+len(other.ts))

	i, j := 0, 0
	for i < len(s.ts) || j < len(other.ts) {
		switch {
		case j == len(other.ts) || (i < len(s.ts) && s.ts[i] < other.ts[j]):
			ts = append(ts, s.ts[i])
			pots = append(pots, s.potentials[i])
			i++
		case i == len(s.ts) || other.ts[j] < s.ts[i]:
			ts = append(ts, other.ts[j])
			pots = append(pots, other.potentials[j])
			j++
		default:
			return nil, fmt.Errorf("overlapping evidence timestamp: %v", s.ts[i])
		}
	}

	return &PotentialSeries{ts: ts, potentials: pots}, nil
}

// String implements the Stringer interface.
func (s *PotentialSeries) String() string {
	return fmt.Sprintf("PotentialSeries{len=%d, ts=%v}", len(s.ts), s.ts)
}
