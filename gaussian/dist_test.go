package gaussian

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linsde/linsde/matrix"
)

func TestNewGaussian(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGaussian([]float64{1.0, 2.0}, matrix.Eye(2))
	assert.NotNil(g)
	assert.NoError(err)
	assert.Equal(2, g.Dim())

	_, ok := g.BatchSize()
	assert.False(ok)

	// covariance must be tagged symmetric
	cov, err := matrix.NewDiag([]float64{1.0, 1.0}, matrix.TagNone)
	assert.NoError(err)
	g, err = NewGaussian([]float64{1.0, 2.0}, cov)
	assert.Nil(g)
	assert.Error(err)

	// mean length mismatch
	g, err = NewGaussian([]float64{1.0}, matrix.Eye(2))
	assert.Nil(g)
	assert.Error(err)
}

func TestNewMixedGaussian(t *testing.T) {
	assert := assert.New(t)

	m, err := NewMixedGaussian([]float64{5.0, 5.0}, matrix.Eye(2).Scale(1000.0))
	assert.NotNil(m)
	assert.NoError(err)
	assert.Equal(2, m.Dim())

	// precision must be square
	prec, err := matrix.NewDense(2, 3, make([]float64, 6), matrix.TagSymmetric)
	assert.NoError(err)
	m, err = NewMixedGaussian([]float64{1.0, 2.0}, prec)
	assert.Nil(m)
	assert.Error(err)
}

func TestGaussianRoundTrip(t *testing.T) {
	assert := assert.New(t)

	sigma, err := matrix.NewDiag([]float64{0.5, 0.25}, matrix.TagPSD)
	assert.NoError(err)
	g, err := NewGaussian([]float64{1.0, -1.0}, sigma)
	assert.NoError(err)

	m, err := g.ToMixed()
	assert.NoError(err)
	assert.InDeltaSlice([]float64{2.0, 4.0}, m.Precision.Elements(), 1e-12)

	back, err := m.ToGaussian()
	assert.NoError(err)
	assert.InDeltaSlice(g.Mu, back.Mu, 1e-12)
	assert.InDeltaSlice(sigma.Elements(), back.Sigma.Elements(), 1e-12)
}

func TestGaussianCondition(t *testing.T) {
	assert := assert.New(t)

	// prior N(0, 1) conditioned on evidence N(2, 1) gives N(1, 0.5)
	g, err := NewGaussian([]float64{0.0}, matrix.Eye(1))
	assert.NoError(err)
	pot, err := NewMixedGaussian([]float64{2.0}, matrix.Eye(1))
	assert.NoError(err)

	post, err := g.Condition(pot)
	assert.NoError(err)
	assert.InDelta(1.0, post.Mu[0], 1e-12)
	assert.InDelta(0.5, post.Sigma.At(0, 0, 0), 1e-12)
	assert.True(post.Sigma.Tags().IsPSD())

	// dimension mismatch
	bad, err := NewMixedGaussian([]float64{1.0, 1.0}, matrix.Eye(2))
	assert.NoError(err)
	post, err = g.Condition(bad)
	assert.Nil(post)
	assert.Error(err)
}

func TestBatchedMoments(t *testing.T) {
	assert := assert.New(t)

	prec, err := matrix.NewBatchDiag(3, 2, []float64{1, 1, 2, 2, 3, 3}, matrix.TagPSD)
	assert.NoError(err)

	m, err := NewMixedGaussian([]float64{1.0, 2.0}, prec)
	assert.NoError(err)

	batch, ok := m.BatchSize()
	assert.True(ok)
	assert.Equal(3, batch)

	// batch size mismatch between mean and precision
	m, err = NewMixedGaussian(make([]float64, 4), prec)
	assert.Nil(m)
	assert.Error(err)
}
