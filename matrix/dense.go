package matrix

import (
	"fmt"

	gmatrix "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// Dense is a dense structured matrix. Its elements slice stores the
// row-major members, batch-major for batched matrices.
type Dense struct {
	// rows and cols are the dimensions of a single member
	rows, cols int
	// batch is the leading batch axis size, 0 for unbatched
	batch int
	// elems are the row-major elements, batch-major
	elems []float64
	// tags are the structural tags
	tags Tags
}

// NewDense creates a new unbatched dense matrix from its row-major
// elements and returns it.
// It returns error if the element count does not equal r*c.
func NewDense(r, c int, elems []float64, tags Tags) (*Dense, error) {
	if r <= 0 || c <= 0 {
		return nil, fmt.Errorf("invalid dense dimensions: [%d x %d]", r, c)
	}

	if len(elems) != r*c {
		return nil, fmt.Errorf("invalid element count: %d != %d", len(elems), r*c)
	}

	d := make([]float64, len(elems))
	copy(d, elems)

	return &Dense{rows: r, cols: c, elems: d, tags: tags}, nil
}

// NewBatchDense creates a new batched dense matrix with batch members of
// dimensions r x c stored batch-major in elems and returns it.
// It returns error if the element count does not equal batch*r*c.
func NewBatchDense(batch, r, c int, elems []float64, tags Tags) (*Dense, error) {
	if batch <= 0 || r <= 0 || c <= 0 {
		return nil, fmt.Errorf("invalid batch dense dimensions: [%d x %d x %d]", batch, r, c)
	}

	if len(elems) != batch*r*c {
		return nil, fmt.Errorf("invalid element count: %d != %d", len(elems), batch*r*c)
	}

	d := make([]float64, len(elems))
	copy(d, elems)

	return &Dense{rows: r, cols: c, batch: batch, elems: d, tags: tags}, nil
}

// EyeDense returns the n-dimensional identity as a dense matrix tagged PSD.
func EyeDense(n int) *Dense {
	eye, err := gmatrix.NewDenseValIdentity(n, 1.0)
	if err != nil {
		panic(err)
	}

	elems := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			elems[i*n+j] = eye.At(i, j)
		}
	}

	return &Dense{rows: n, cols: n, elems: elems, tags: TagPSD}
}

// Dims returns the dimensions of a single batch member.
func (d *Dense) Dims() (int, int) {
	return d.rows, d.cols
}

// BatchSize returns the batch axis size and false if d is unbatched.
func (d *Dense) BatchSize() (int, bool) {
	return d.batch, d.batch != 0
}

// Elements returns the batch-major row-major elements.
func (d *Dense) Elements() []float64 {
	elems := make([]float64, len(d.elems))
	copy(elems, d.elems)

	return elems
}

// At returns the (i, j) element of batch member b.
func (d *Dense) At(b, i, j int) float64 {
	return d.elems[b*d.rows*d.cols+i*d.cols+j]
}

// AsDense returns batch member b as a gonum dense matrix.
// The returned matrix shares the member's backing elements.
func (d *Dense) AsDense(b int) *mat.Dense {
	size := d.rows * d.cols
	return mat.NewDense(d.rows, d.cols, d.elems[b*size:(b+1)*size])
}

// Tags returns the structural tags.
func (d *Dense) Tags() Tags {
	return d.tags
}

// WithTags returns a copy of d carrying the given tags.
func (d *Dense) WithTags(tags Tags) Matrix {
	return &Dense{rows: d.rows, cols: d.cols, batch: d.batch, elems: d.Elements(), tags: tags}
}

// Scale returns d scaled elementwise by k.
// A negative k clears the PSD tag; scaling preserves symmetry.
func (d *Dense) Scale(k float64) Matrix {
	elems := make([]float64, len(d.elems))
	for i, e := range d.elems {
		elems[i] = k * e
	}

	tags := d.tags
	if k < 0 {
		tags &^= tagPSDBit
	}

	return &Dense{rows: d.rows, cols: d.cols, batch: d.batch, elems: elems, tags: tags}
}

// Add returns the elementwise sum of d and o.
// It returns error if the dimensions or batch sizes are incompatible.
func (d *Dense) Add(o Matrix) (Matrix, error) {
	r, c := o.Dims()
	if r != d.rows || c != d.cols {
		return nil, fmt.Errorf("invalid operand dimensions: [%d x %d] != [%d x %d]", d.rows, d.cols, r, c)
	}

	od := promote(o)
	batch, err := broadcastBatch(d.batch, od.batch)
	if err != nil {
		return nil, err
	}

	size := d.rows * d.cols
	elems := make([]float64, members(batch)*size)
	for i := 0; i < members(batch); i++ {
		di := batchIndex(d.batch, i) * size
		oi := batchIndex(od.batch, i) * size
		for j := 0; j < size; j++ {
			elems[i*size+j] = d.elems[di+j] + od.elems[oi+j]
		}
	}

	tags := TagNone
	if d.tags.IsSymmetric() && o.Tags().IsSymmetric() {
		tags = TagSymmetric
	}
	if d.tags.IsPSD() && o.Tags().IsPSD() {
		tags = TagPSD
	}

	return &Dense{rows: d.rows, cols: d.cols, batch: batch, elems: elems, tags: tags}, nil
}

// Mul returns the matrix product of d and o.
// It returns error if the dimensions or batch sizes are incompatible.
func (d *Dense) Mul(o Matrix) (Matrix, error) {
	or, oc := o.Dims()
	if or != d.cols {
		return nil, fmt.Errorf("invalid operand dimensions: [%d x %d] x [%d x %d]", d.rows, d.cols, or, oc)
	}

	od := promote(o)
	batch, err := broadcastBatch(d.batch, od.batch)
	if err != nil {
		return nil, err
	}

	size := d.rows * oc
	elems := make([]float64, members(batch)*size)
	out := &Dense{rows: d.rows, cols: oc, batch: batch, elems: elems}
	for i := 0; i < members(batch); i++ {
		m := out.AsDense(i)
		m.Mul(d.AsDense(batchIndex(d.batch, i)), od.AsDense(batchIndex(od.batch, i)))
	}

	return out, nil
}

// MulVec returns the matrix-vector product of d and x, where x holds
// either a single vector or one vector per batch member.
// It returns error if the vector length is incompatible.
func (d *Dense) MulVec(x []float64) ([]float64, error) {
	xBatch, err := vecBatch(x, d.cols)
	if err != nil {
		return nil, err
	}

	batch, err := broadcastBatch(d.batch, xBatch)
	if err != nil {
		return nil, err
	}

	out := make([]float64, members(batch)*d.rows)
	for i := 0; i < members(batch); i++ {
		v := mat.NewVecDense(d.rows, out[i*d.rows:(i+1)*d.rows])
		xi := batchIndex(xBatch, i) * d.cols
		v.MulVec(d.AsDense(batchIndex(d.batch, i)), mat.NewVecDense(d.cols, x[xi:xi+d.cols]))
	}

	return out, nil
}

// T returns the transpose of d. Transposition preserves tags.
func (d *Dense) T() Matrix {
	size := d.rows * d.cols
	elems := make([]float64, len(d.elems))
	for b := 0; b < members(d.batch); b++ {
		for i := 0; i < d.rows; i++ {
			for j := 0; j < d.cols; j++ {
				elems[b*size+j*d.rows+i] = d.elems[b*size+i*d.cols+j]
			}
		}
	}

	return &Dense{rows: d.cols, cols: d.rows, batch: d.batch, elems: elems, tags: d.tags}
}

// Exp returns the matrix exponential of a square d.
// It panics if d is not square.
func (d *Dense) Exp() Matrix {
	if d.rows != d.cols {
		panic(fmt.Sprintf("matrix exponential of non-square matrix: [%d x %d]", d.rows, d.cols))
	}

	out := &Dense{rows: d.rows, cols: d.cols, batch: d.batch, elems: make([]float64, len(d.elems))}
	for i := 0; i < members(d.batch); i++ {
		out.AsDense(i).Exp(d.AsDense(i))
	}

	return out
}

// Inverse returns the inverse of d. Matrices tagged PSD take the
// Cholesky fast path and keep their tags; the general path falls back
// to LU inversion.
// It returns error if d is not square or any batch member is singular.
func (d *Dense) Inverse() (Matrix, error) {
	if d.rows != d.cols {
		return nil, fmt.Errorf("invalid matrix dimensions: [%d x %d]", d.rows, d.cols)
	}

	out := &Dense{rows: d.rows, cols: d.cols, batch: d.batch, elems: make([]float64, len(d.elems)), tags: d.tags}
	for i := 0; i < members(d.batch); i++ {
		if d.tags.IsPSD() {
			if ok := d.cholInverse(i, out); ok {
				continue
			}
			// semi-definite member: Cholesky failed, use LU
		}
		if err := out.AsDense(i).Inverse(d.AsDense(i)); err != nil {
			return nil, fmt.Errorf("failed to invert batch member %d: %v", i, err)
		}
	}

	return out, nil
}

// cholInverse inverts batch member i through its Cholesky factors and
// stores the result in out. It reports whether factorization succeeded.
func (d *Dense) cholInverse(i int, out *Dense) bool {
	sym := mat.NewSymDense(d.rows, nil)
	for r := 0; r < d.rows; r++ {
		for c := r; c < d.cols; c++ {
			sym.SetSym(r, c, d.At(i, r, c))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return false
	}

	inv := mat.NewSymDense(d.rows, nil)
	if err := chol.InverseTo(inv); err != nil {
		return false
	}

	m := out.AsDense(i)
	for r := 0; r < d.rows; r++ {
		for c := 0; c < d.cols; c++ {
			m.Set(r, c, inv.At(r, c))
		}
	}

	return true
}

// String implements the Stringer interface.
func (d *Dense) String() string {
	return fmt.Sprintf("Dense{dims=[%d x %d], batch=%d, tags=%v}", d.rows, d.cols, d.batch, d.tags)
}

// promote returns the dense representation of m.
func promote(m Matrix) *Dense {
	switch t := m.(type) {
	case *Dense:
		return t
	case *Diag:
		return t.promote()
	}

	r, c := m.Dims()
	batch, _ := m.BatchSize()
	elems := make([]float64, members(batch)*r*c)
	for b := 0; b < members(batch); b++ {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				elems[b*r*c+i*c+j] = m.At(b, i, j)
			}
		}
	}

	return &Dense{rows: r, cols: c, batch: batch, elems: elems, tags: m.Tags()}
}
