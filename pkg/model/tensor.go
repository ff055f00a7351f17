package model

import (
	"math"
	"sync"
)

// Tensors use flat float64 backings drawn from a shared pool. The
// pipeline owns a tensor until Release is called; callers must release
// deterministically (defer on all exit paths) since the backings are
// recycled rather than left to the collector.

var tensorPool = sync.Pool{
	New: func() interface{} {
		return []float64(nil)
	},
}

func acquireBuffer(n int) []float64 {
	buf := tensorPool.Get().([]float64)
	if cap(buf) < n {
		return make([]float64, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

func releaseBuffer(buf []float64) {
	if buf != nil {
		tensorPool.Put(buf[:0])
	}
}

// Tensor2 is a rank-2 tensor [rows, cols].
type Tensor2 struct {
	rows, cols int
	data       []float64
}

// NewTensor2 allocates a zeroed rank-2 tensor.
func NewTensor2(rows, cols int) *Tensor2 {
	return &Tensor2{rows: rows, cols: cols, data: acquireBuffer(rows * cols)}
}

// Rows returns the number of rows.
func (t *Tensor2) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t *Tensor2) Cols() int { return t.cols }

// At returns the value at (i, j).
func (t *Tensor2) At(i, j int) float64 { return t.data[i*t.cols+j] }

// Set writes the value at (i, j).
func (t *Tensor2) Set(i, j int, v float64) { t.data[i*t.cols+j] = v }

// Row returns a mutable view of row i.
func (t *Tensor2) Row(i int) []float64 {
	return t.data[i*t.cols : (i+1)*t.cols]
}

// Clone returns an independent copy.
func (t *Tensor2) Clone() *Tensor2 {
	c := NewTensor2(t.rows, t.cols)
	copy(c.data, t.data)
	return c
}

// SliceRows copies rows [from, to) into a new tensor.
func (t *Tensor2) SliceRows(from, to int) *Tensor2 {
	c := NewTensor2(to-from, t.cols)
	copy(c.data, t.data[from*t.cols:to*t.cols])
	return c
}

// Flatten returns a copy of the backing data in row-major order.
func (t *Tensor2) Flatten() []float64 {
	out := make([]float64, len(t.data))
	copy(out, t.data)
	return out
}

// Tensor2FromFlat builds a rank-2 tensor from row-major data.
func Tensor2FromFlat(rows, cols int, data []float64) *Tensor2 {
	t := NewTensor2(rows, cols)
	copy(t.data, data)
	return t
}

// HasNaN reports whether any entry is not-a-number.
func (t *Tensor2) HasNaN() bool {
	for _, v := range t.data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Release returns the backing buffer to the pool. The tensor must not
// be used afterwards.
func (t *Tensor2) Release() {
	releaseBuffer(t.data)
	t.data = nil
}

// Tensor3 is a rank-3 tensor [samples, steps, width].
type Tensor3 struct {
	samples, steps, width int
	data                  []float64
}

// NewTensor3 allocates a zeroed rank-3 tensor.
func NewTensor3(samples, steps, width int) *Tensor3 {
	return &Tensor3{
		samples: samples,
		steps:   steps,
		width:   width,
		data:    acquireBuffer(samples * steps * width),
	}
}

// Dims returns (samples, steps, width).
func (t *Tensor3) Dims() (int, int, int) { return t.samples, t.steps, t.width }

// Samples returns the number of samples.
func (t *Tensor3) Samples() int { return t.samples }

// At returns the value at (sample i, step j, column k).
func (t *Tensor3) At(i, j, k int) float64 {
	return t.data[(i*t.steps+j)*t.width+k]
}

// Set writes the value at (sample i, step j, column k).
func (t *Tensor3) Set(i, j, k int, v float64) {
	t.data[(i*t.steps+j)*t.width+k] = v
}

// Step returns a mutable view of one per-day feature vector.
func (t *Tensor3) Step(i, j int) []float64 {
	off := (i*t.steps + j) * t.width
	return t.data[off : off+t.width]
}

// Clone returns an independent copy.
func (t *Tensor3) Clone() *Tensor3 {
	c := NewTensor3(t.samples, t.steps, t.width)
	copy(c.data, t.data)
	return c
}

// SliceSamples copies samples [from, to) into a new tensor.
func (t *Tensor3) SliceSamples(from, to int) *Tensor3 {
	c := NewTensor3(to-from, t.steps, t.width)
	copy(c.data, t.data[from*t.steps*t.width:to*t.steps*t.width])
	return c
}

// Flatten returns a copy of the backing data in sample-major order.
func (t *Tensor3) Flatten() []float64 {
	out := make([]float64, len(t.data))
	copy(out, t.data)
	return out
}

// Tensor3FromFlat builds a rank-3 tensor from sample-major data.
func Tensor3FromFlat(samples, steps, width int, data []float64) *Tensor3 {
	t := NewTensor3(samples, steps, width)
	copy(t.data, data)
	return t
}

// HasNaN reports whether any entry is not-a-number.
func (t *Tensor3) HasNaN() bool {
	for _, v := range t.data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Release returns the backing buffer to the pool. The tensor must not
// be used afterwards.
func (t *Tensor3) Release() {
	releaseBuffer(t.data)
	t.data = nil
}
