package sde

import (
	"fmt"

	"github.com/linsde/linsde/matrix"
)

// BrownianMotion creates a dim-dimensional Brownian motion SDE
//
//	dx = sigma dW
//
// with zero drift and diagonal dispersion sigma I, and returns it.
// It returns error if sigma is negative or dim is not positive.
func BrownianMotion(sigma float64, dim int) (*LTI, error) {
	if sigma < 0 {
		return nil, fmt.Errorf("invalid diffusion coefficient: %v", sigma)
	}

	if dim <= 0 {
		return nil, fmt.Errorf("invalid state dimension: %d", dim)
	}

	f, err := matrix.NewDiag(make([]float64, dim), matrix.TagNone)
	if err != nil {
		return nil, err
	}

	s, err := NewLTI(f, matrix.Eye(dim).Scale(sigma))
	if err != nil {
		return nil, err
	}
	s.name = "BrownianMotion"

	return s, nil
}

// OrnsteinUhlenbeck creates a dim-dimensional Ornstein-Uhlenbeck SDE
//
//	dx = -lambda x dt + sigma dW
//
// with diagonal drift -lambda I and dispersion sigma I, and returns it.
// It returns error if lambda or sigma is negative or dim is not
// positive.
func OrnsteinUhlenbeck(sigma, lambda float64, dim int) (*LTI, error) {
	if sigma < 0 {
		return nil, fmt.Errorf("invalid diffusion coefficient: %v", sigma)
	}

	if lambda < 0 {
		return nil, fmt.Errorf("invalid mean reversion rate: %v", lambda)
	}

	if dim <= 0 {
		return nil, fmt.Errorf("invalid state dimension: %d", dim)
	}

	s, err := NewLTI(matrix.Eye(dim).Scale(-lambda), matrix.Eye(dim).Scale(sigma))
	if err != nil {
		return nil, err
	}
	s.name = "OrnsteinUhlenbeck"

	return s, nil
}

// WienerVelocity creates a Wiener velocity style SDE whose state
// stacks order blocks of positionDim derivatives: position, velocity
// and so on up to the highest derivative, which is driven by white
// noise with coefficient sigma. The classic Wiener velocity model is
// order 2; order 3 is the Wiener acceleration model. The SDE defines
// an order attribute, which wrappers forward.
// It returns error if sigma is negative or the dimensions are not
// positive.
func WienerVelocity(sigma float64, positionDim, order int) (*LTI, error) {
	if sigma < 0 {
		return nil, fmt.Errorf("invalid diffusion coefficient: %v", sigma)
	}

	if positionDim <= 0 || order <= 1 {
		return nil, fmt.Errorf("invalid model dimensions: positionDim=%d, order=%d", positionDim, order)
	}

	dim := positionDim * order

	// companion form: each derivative block feeds the one above it
	fElems := make([]float64, dim*dim)
	for i := 0; i < dim-positionDim; i++ {
		fElems[i*dim+i+positionDim] = 1.0
	}
	f, err := matrix.NewDense(dim, dim, fElems, matrix.TagNone)
	if err != nil {
		return nil, err
	}

	// noise enters through the highest derivative only
	lElems := make([]float64, dim*positionDim)
	for j := 0; j < positionDim; j++ {
		lElems[(dim-positionDim+j)*positionDim+j] = sigma
	}
	l, err := matrix.NewDense(dim, positionDim, lElems, matrix.TagNone)
	if err != nil {
		return nil, err
	}

	s, err := NewLTI(f, l)
	if err != nil {
		return nil, err
	}
	s.name = "WienerVelocity"
	s.order = order
	s.hasOrder = true

	return s, nil
}
