package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Tags mark structural properties of a matrix. They are set at
// construction or by the operation that produced the matrix and are not
// re-verified at runtime: downstream consumers rely on them to pick
// representation-specific fast paths.
type Tags uint8

const (
	// TagNone marks a matrix with no asserted structure
	TagNone Tags = 0
	// TagSymmetric marks a symmetric matrix
	TagSymmetric Tags = 1 << 0

	tagPSDBit Tags = 1 << 1

	// TagPSD marks a symmetric positive semi-definite matrix
	TagPSD Tags = tagPSDBit | TagSymmetric
)

// IsSymmetric returns true if the symmetric tag is set.
func (t Tags) IsSymmetric() bool {
	return t&TagSymmetric != 0
}

// IsPSD returns true if the positive semi-definite tag is set.
func (t Tags) IsPSD() bool {
	return t&tagPSDBit != 0
}

// String implements the Stringer interface.
func (t Tags) String() string {
	switch {
	case t.IsPSD():
		return "psd"
	case t.IsSymmetric():
		return "symmetric"
	}
	return "none"
}

// Matrix is a structured matrix: a concrete representation (dense,
// diagonal) exposing a uniform algebraic interface with
// representation-specific fast paths. A matrix may carry a leading
// batch axis; batched operands of the same batch size combine
// memberwise and unbatched operands broadcast against batched ones.
type Matrix interface {
	// Dims returns the row and column count of a single member
	Dims() (r, c int)
	// BatchSize returns the leading batch axis size.
	// It returns false if the matrix is unbatched.
	BatchSize() (int, bool)
	// Elements returns the backing elements, batch-major
	Elements() []float64
	// At returns the (i, j) element of batch member b
	At(b, i, j int) float64
	// AsDense returns batch member b as a gonum dense matrix
	AsDense(b int) *mat.Dense
	// Scale returns the matrix scaled elementwise by k
	Scale(k float64) Matrix
	// Add returns the elementwise sum with o.
	// It returns error if the shapes or batch sizes are incompatible.
	Add(o Matrix) (Matrix, error)
	// Mul returns the matrix product with o.
	// It returns error if the shapes or batch sizes are incompatible.
	Mul(o Matrix) (Matrix, error)
	// MulVec returns the matrix-vector product with x.
	// x holds either one vector or one vector per batch member.
	MulVec(x []float64) ([]float64, error)
	// T returns the transpose
	T() Matrix
	// Exp returns the matrix exponential of a square matrix
	Exp() Matrix
	// Inverse returns the inverse.
	// It returns error if the matrix is singular.
	Inverse() (Matrix, error)
	// Tags returns the structural tags
	Tags() Tags
	// WithTags returns a copy of the matrix carrying the given tags
	WithTags(tags Tags) Matrix
}

// Symmetrize returns m with its symmetric part only, tagged PSD.
// It is used on covariance results whose symmetry is known analytically
// but may have drifted in the last floating point digits.
func Symmetrize(m Matrix) Matrix {
	if d, ok := m.(*Diag); ok {
		return d.WithTags(TagPSD)
	}
	sym, err := m.Add(m.T())
	if err != nil {
		// m is square by construction of every Symmetrize call site
		panic(err)
	}
	return sym.Scale(0.5).WithTags(TagPSD)
}

// members returns the number of stored matrix members for a batch size
func members(batch int) int {
	if batch == 0 {
		return 1
	}
	return batch
}

// broadcastBatch resolves the batch size of an operation combining
// batch sizes a and b, where 0 means unbatched.
// It returns error on a batch size mismatch.
func broadcastBatch(a, b int) (int, error) {
	switch {
	case a == b:
		return a, nil
	case a == 0:
		return b, nil
	case b == 0:
		return a, nil
	}
	return 0, fmt.Errorf("batch size mismatch: %d != %d", a, b)
}

// batchIndex maps the operation member index i onto a matrix with the
// given batch size: unbatched matrices broadcast their single member.
func batchIndex(batch, i int) int {
	if batch == 0 {
		return 0
	}
	return i
}
