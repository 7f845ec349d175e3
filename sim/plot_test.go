package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linsde/linsde/gaussian"
	"github.com/linsde/linsde/matrix"
)

func TestNewPathPlot(t *testing.T) {
	assert := assert.New(t)

	p, err := SamplePath(bm, []float64{0.0, 0.0}, ts)
	assert.NoError(err)

	plt, err := NewPathPlot([]*Path{p}, 0)
	assert.NotNil(plt)
	assert.NoError(err)

	// no paths supplied
	plt, err = NewPathPlot(nil, 0)
	assert.Nil(plt)
	assert.Error(err)

	// state component out of range
	plt, err = NewPathPlot([]*Path{p}, 5)
	assert.Nil(plt)
	assert.Error(err)
}

func TestNewBandPlot(t *testing.T) {
	assert := assert.New(t)

	marginals := make([]*gaussian.Gaussian, len(ts))
	for i := range marginals {
		g, err := gaussian.NewGaussian([]float64{float64(i), 0.0}, matrix.Eye(2))
		assert.NoError(err)
		marginals[i] = g
	}

	plt, err := NewBandPlot(ts, marginals, 0)
	assert.NotNil(plt)
	assert.NoError(err)

	// length mismatch
	plt, err = NewBandPlot(ts[:2], marginals, 0)
	assert.Nil(plt)
	assert.Error(err)

	// state component out of range
	plt, err = NewBandPlot(ts, marginals, 3)
	assert.Nil(plt)
	assert.Error(err)
}
