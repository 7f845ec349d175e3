package sim

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linsde/linsde"
	"github.com/linsde/linsde/gaussian"
	"github.com/linsde/linsde/matrix"
	"github.com/linsde/linsde/sde"
)

var (
	bm linsde.LinearSDE
	ts []float64
)

func setup() {
	var err error
	bm, err = sde.BrownianMotion(1.0, 2)
	if err != nil {
		panic(err)
	}
	ts = []float64{0.0, 0.5, 1.0, 2.5}
}

func TestMain(m *testing.M) {
	// set up tests
	setup()
	// run the tests
	retCode := m.Run()
	// call with result of m.Run()
	os.Exit(retCode)
}

func TestSamplePath(t *testing.T) {
	assert := assert.New(t)

	x0 := []float64{1.0, -1.0}
	p, err := SamplePath(bm, x0, ts)
	assert.NotNil(p)
	assert.NoError(err)

	r, c := p.States.Dims()
	assert.Equal(len(ts), r)
	assert.Equal(2, c)

	// the path starts at the initial state
	assert.Equal(1.0, p.States.At(0, 0))
	assert.Equal(-1.0, p.States.At(0, 1))

	// invalid initial state dimension
	p, err = SamplePath(bm, []float64{1.0}, ts)
	assert.Nil(p)
	assert.Error(err)

	// timestamps must be strictly increasing
	p, err = SamplePath(bm, x0, []float64{1.0, 0.5})
	assert.Nil(p)
	assert.ErrorIs(err, gaussian.ErrNotChronological)

	p, err = SamplePath(bm, x0, nil)
	assert.Nil(p)
	assert.Error(err)
}

func TestSamplePathZeroNoise(t *testing.T) {
	assert := assert.New(t)

	// a zero-diffusion SDE degenerates to its deterministic mean map
	det, err := sde.BrownianMotion(0.0, 1)
	assert.NoError(err)

	p, err := SamplePath(det, []float64{3.0}, ts)
	assert.NoError(err)
	for i := range ts {
		assert.Equal(3.0, p.States.At(i, 0))
	}
}

func TestSamplePaths(t *testing.T) {
	assert := assert.New(t)

	init, err := gaussian.NewGaussian([]float64{0.0, 0.0}, matrix.Eye(2))
	assert.NoError(err)

	paths, err := SamplePaths(bm, init, ts, 3, 42)
	assert.NoError(err)
	assert.Len(paths, 3)

	// n must be positive
	paths, err = SamplePaths(bm, init, ts, 0, 42)
	assert.Nil(paths)
	assert.Error(err)

	// degenerate initial distributions are rejected
	zero, err := matrix.NewDiag(make([]float64, 2), matrix.TagPSD)
	assert.NoError(err)
	degenerate, err := gaussian.NewGaussian([]float64{0.0, 0.0}, zero)
	assert.NoError(err)
	paths, err = SamplePaths(bm, degenerate, ts, 3, 42)
	assert.Nil(paths)
	assert.Error(err)
}
