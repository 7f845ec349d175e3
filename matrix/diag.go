package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Diag is a diagonal structured matrix. Its elements slice stores the
// diagonal entries, batch-major for batched matrices.
type Diag struct {
	// n is the matrix dimension
	n int
	// batch is the leading batch axis size, 0 for unbatched
	batch int
	// elems are the diagonal elements, batch-major
	elems []float64
	// tags are the structural tags
	tags Tags
}

// NewDiag creates a new unbatched diagonal matrix from its diagonal
// elements and returns it.
// It returns error if elems is empty.
func NewDiag(elems []float64, tags Tags) (*Diag, error) {
	if len(elems) == 0 {
		return nil, fmt.Errorf("invalid diagonal elements: %v", elems)
	}

	d := make([]float64, len(elems))
	copy(d, elems)

	return &Diag{n: len(elems), elems: d, tags: tags}, nil
}

// NewBatchDiag creates a new batched diagonal matrix with batch members
// of dimension n stored batch-major in elems and returns it.
// It returns error if the element count does not equal batch*n.
func NewBatchDiag(batch, n int, elems []float64, tags Tags) (*Diag, error) {
	if batch <= 0 || n <= 0 {
		return nil, fmt.Errorf("invalid batch diagonal dimensions: [%d x %d]", batch, n)
	}

	if len(elems) != batch*n {
		return nil, fmt.Errorf("invalid element count: %d != %d", len(elems), batch*n)
	}

	d := make([]float64, len(elems))
	copy(d, elems)

	return &Diag{n: n, batch: batch, elems: d, tags: tags}, nil
}

// Eye returns the n-dimensional identity as a diagonal matrix tagged PSD.
func Eye(n int) *Diag {
	elems := make([]float64, n)
	for i := range elems {
		elems[i] = 1.0
	}

	return &Diag{n: n, elems: elems, tags: TagPSD}
}

// Dims returns the dimensions of a single batch member.
func (d *Diag) Dims() (int, int) {
	return d.n, d.n
}

// BatchSize returns the batch axis size and false if d is unbatched.
func (d *Diag) BatchSize() (int, bool) {
	return d.batch, d.batch != 0
}

// Elements returns the batch-major diagonal elements.
func (d *Diag) Elements() []float64 {
	elems := make([]float64, len(d.elems))
	copy(elems, d.elems)

	return elems
}

// At returns the (i, j) element of batch member b.
func (d *Diag) At(b, i, j int) float64 {
	if i != j {
		return 0.0
	}

	return d.elems[b*d.n+i]
}

// AsDense returns batch member b as a gonum dense matrix.
func (d *Diag) AsDense(b int) *mat.Dense {
	m := mat.NewDense(d.n, d.n, nil)
	for i := 0; i < d.n; i++ {
		m.Set(i, i, d.elems[b*d.n+i])
	}

	return m
}

// Tags returns the structural tags.
func (d *Diag) Tags() Tags {
	return d.tags
}

// WithTags returns a copy of d carrying the given tags.
func (d *Diag) WithTags(tags Tags) Matrix {
	return &Diag{n: d.n, batch: d.batch, elems: d.Elements(), tags: tags}
}

// Scale returns d scaled elementwise by k.
// A negative k clears the PSD tag; a diagonal matrix stays symmetric.
func (d *Diag) Scale(k float64) Matrix {
	elems := make([]float64, len(d.elems))
	for i, e := range d.elems {
		elems[i] = k * e
	}

	tags := d.tags
	if k < 0 {
		tags &^= tagPSDBit
	}

	return &Diag{n: d.n, batch: d.batch, elems: elems, tags: tags}
}

// Add returns the elementwise sum of d and o.
// Diagonal operands stay diagonal; mixed representations promote to dense.
// It returns error if the dimensions or batch sizes are incompatible.
func (d *Diag) Add(o Matrix) (Matrix, error) {
	r, c := o.Dims()
	if r != d.n || c != d.n {
		return nil, fmt.Errorf("invalid operand dimensions: [%d x %d] != [%d x %d]", d.n, d.n, r, c)
	}

	od, ok := o.(*Diag)
	if !ok {
		return d.promote().Add(o)
	}

	batch, err := broadcastBatch(d.batch, od.batch)
	if err != nil {
		return nil, err
	}

	elems := make([]float64, members(batch)*d.n)
	for i := 0; i < members(batch); i++ {
		for j := 0; j < d.n; j++ {
			elems[i*d.n+j] = d.elems[batchIndex(d.batch, i)*d.n+j] + od.elems[batchIndex(od.batch, i)*d.n+j]
		}
	}

	// sum of PSD matrices is PSD
	tags := TagSymmetric
	if d.tags.IsPSD() && od.tags.IsPSD() {
		tags = TagPSD
	}

	return &Diag{n: d.n, batch: batch, elems: elems, tags: tags}, nil
}

// Mul returns the matrix product of d and o.
// It returns error if the dimensions or batch sizes are incompatible.
func (d *Diag) Mul(o Matrix) (Matrix, error) {
	r, _ := o.Dims()
	if r != d.n {
		or, oc := o.Dims()
		return nil, fmt.Errorf("invalid operand dimensions: [%d x %d] x [%d x %d]", d.n, d.n, or, oc)
	}

	od, ok := o.(*Diag)
	if !ok {
		return d.promote().Mul(o)
	}

	batch, err := broadcastBatch(d.batch, od.batch)
	if err != nil {
		return nil, err
	}

	elems := make([]float64, members(batch)*d.n)
	for i := 0; i < members(batch); i++ {
		for j := 0; j < d.n; j++ {
			elems[i*d.n+j] = d.elems[batchIndex(d.batch, i)*d.n+j] * od.elems[batchIndex(od.batch, i)*d.n+j]
		}
	}

	tags := TagSymmetric
	if d.tags.IsPSD() && od.tags.IsPSD() {
		tags = TagPSD
	}

	return &Diag{n: d.n, batch: batch, elems: elems, tags: tags}, nil
}

// MulVec returns the matrix-vector product of d and x, where x holds
// either a single vector or one vector per batch member.
// It returns error if the vector length is incompatible.
func (d *Diag) MulVec(x []float64) ([]float64, error) {
	xBatch, err := vecBatch(x, d.n)
	if err != nil {
		return nil, err
	}

	batch, err := broadcastBatch(d.batch, xBatch)
	if err != nil {
		return nil, err
	}

	out := make([]float64, members(batch)*d.n)
	for i := 0; i < members(batch); i++ {
		for j := 0; j < d.n; j++ {
			out[i*d.n+j] = d.elems[batchIndex(d.batch, i)*d.n+j] * x[batchIndex(xBatch, i)*d.n+j]
		}
	}

	return out, nil
}

// T returns the transpose of d, which is d itself.
func (d *Diag) T() Matrix {
	return d.WithTags(d.tags)
}

// Exp returns the matrix exponential of d: the elementwise exponential
// of the diagonal. The result is positive definite and tagged PSD.
func (d *Diag) Exp() Matrix {
	elems := make([]float64, len(d.elems))
	for i, e := range d.elems {
		elems[i] = math.Exp(e)
	}

	return &Diag{n: d.n, batch: d.batch, elems: elems, tags: TagPSD}
}

// Inverse returns the inverse of d: the elementwise reciprocal of the
// diagonal. The inverse of a PSD diagonal matrix keeps its tags.
// It returns error if any diagonal element is zero.
func (d *Diag) Inverse() (Matrix, error) {
	elems := make([]float64, len(d.elems))
	for i, e := range d.elems {
		if e == 0 {
			return nil, fmt.Errorf("singular diagonal matrix: zero element at index %d", i)
		}
		elems[i] = 1.0 / e
	}

	return &Diag{n: d.n, batch: d.batch, elems: elems, tags: d.tags}, nil
}

// String implements the Stringer interface.
func (d *Diag) String() string {
	return fmt.Sprintf("Diag{n=%d, batch=%d, tags=%v}", d.n, d.batch, d.tags)
}

// promote returns the dense representation of d.
func (d *Diag) promote() *Dense {
	elems := make([]float64, members(d.batch)*d.n*d.n)
	for b := 0; b < members(d.batch); b++ {
		for i := 0; i < d.n; i++ {
			elems[b*d.n*d.n+i*d.n+i] = d.elems[b*d.n+i]
		}
	}

	return &Dense{rows: d.n, cols: d.n, batch: d.batch, elems: elems, tags: d.tags}
}

// vecBatch resolves the batch size of a vector of member length n:
// 0 for a single vector, the member count otherwise.
// It returns error if the length is not a multiple of n.
func vecBatch(x []float64, n int) (int, error) {
	if len(x) == n {
		return 0, nil
	}

	if len(x) == 0 || len(x)%n != 0 {
		return 0, fmt.Errorf("invalid vector length: %d is no multiple of %d", len(x), n)
	}

	return len(x) / n, nil
}
