package rnd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linsde/linsde/matrix"
)

func TestWithCovN(t *testing.T) {
	assert := assert.New(t)

	cov := matrix.Eye(2)

	// n must be positive
	res, err := WithCovN(cov, -3)
	assert.Nil(res)
	assert.Error(err)

	res, err = WithCovN(cov, 1)
	assert.NotNil(res)
	assert.NoError(err)

	res, err = WithCovN(cov, 5)
	assert.NoError(err)
	r, c := res.Dims()
	assert.Equal(2, r)
	assert.Equal(5, c)

	// a zero diagonal covariance yields zero samples
	zero, err := matrix.NewDiag(make([]float64, 2), matrix.TagPSD)
	assert.NoError(err)
	res, err = WithCovN(zero, 3)
	assert.NoError(err)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(0.0, res.At(i, j))
		}
	}

	// dense covariances sample through SVD
	dense, err := matrix.NewDense(2, 2, []float64{2, 1, 1, 2}, matrix.TagPSD)
	assert.NoError(err)
	res, err = WithCovN(dense, 4)
	assert.NotNil(res)
	assert.NoError(err)

	// batched covariances cannot be sampled
	batched, err := matrix.NewBatchDiag(2, 2, make([]float64, 4), matrix.TagPSD)
	assert.NoError(err)
	res, err = WithCovN(batched, 1)
	assert.Nil(res)
	assert.Error(err)
}

func TestNewNormal(t *testing.T) {
	assert := assert.New(t)

	n, err := NewNormal([]float64{1.0, 2.0}, matrix.Eye(2), 42)
	assert.NotNil(n)
	assert.NoError(err)

	sample := n.Sample()
	assert.Len(sample, 2)

	assert.Equal([]float64{1.0, 2.0}, n.Mean())
	assert.NotNil(n.Cov())

	// mean dimension must match the covariance
	n, err = NewNormal([]float64{1.0}, matrix.Eye(2), 42)
	assert.Nil(n)
	assert.Error(err)

	// degenerate covariances are rejected
	zero, err := matrix.NewDiag(make([]float64, 2), matrix.TagPSD)
	assert.NoError(err)
	n, err = NewNormal([]float64{0.0, 0.0}, zero, 42)
	assert.Nil(n)
	assert.Error(err)
}
