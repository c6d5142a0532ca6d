package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// cpuFramework is the reference backend: plain host memory, gonum kernels,
// naive loops where gonum has no primitive. It is always available and serves
// as the comparison baseline for the accelerator backends.
type cpuFramework struct{}

func NewCPUFramework() Framework { return &cpuFramework{} }

func (f *cpuFramework) Name() string { return "cpu" }

func (f *cpuFramework) Check(device Device) error {
	if device != DeviceCPU {
		return fmt.Errorf("cpu framework has no %v device", device)
	}
	return nil
}

func (f *cpuFramework) SetDevice(device Device) error { return f.Check(device) }

// Synchronize is a no-op: every kernel below runs to completion synchronously.
func (f *cpuFramework) Synchronize() error { return nil }

func randomSlice(n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = rand.NormFloat64()
	}
	return data
}

// randomProbs returns values strictly inside (0, 1), usable as predictions for
// binary cross-entropy without hitting log(0).
func randomProbs(n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = 1e-6 + (1-2e-6)*rand.Float64()
	}
	return data
}

func randomIndices(n, limit int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rand.Intn(limit)
	}
	return idx
}

// axisSpans decomposes a shape around one axis: outer × axis × inner, with the
// flat index of element (o, a, i) being (o*axis+a)*inner + i.
func axisSpans(dims Dims, axis int) (outer, axisN, inner int) {
	outer, inner = 1, 1
	for i := 0; i < axis; i++ {
		outer *= dims[i]
	}
	for i := axis + 1; i < len(dims); i++ {
		inner *= dims[i]
	}
	return outer, dims[axis], inner
}

func (f *cpuFramework) MatMul(a, b Dims) (Kernel, error) {
	if len(a) < 2 || len(b) < 2 || len(a) > 3 || len(b) > 3 {
		return nil, fmt.Errorf("unsupported matmul ranks %v x %v", len(a), len(b))
	}
	if a[len(a)-1] != b[len(b)-2] {
		return nil, fmt.Errorf("incompatible matmul shapes %v x %v", a, b)
	}
	if len(b) == 3 && (len(a) != 3 || a[0] != b[0]) {
		return nil, fmt.Errorf("incompatible matmul batches %v x %v", a, b)
	}
	batch := 1
	if len(a) == 3 {
		batch = a[0]
	}
	m, k, n := a[len(a)-2], a[len(a)-1], b[len(b)-1]

	lhs := make([]*mat.Dense, batch)
	rhs := make([]*mat.Dense, batch)
	out := make([]*mat.Dense, batch)
	sharedRhs := mat.NewDense(k, n, randomSlice(k*n))
	for i := 0; i < batch; i++ {
		lhs[i] = mat.NewDense(m, k, randomSlice(m*k))
		if len(b) == 3 {
			rhs[i] = mat.NewDense(k, n, randomSlice(k*n))
		} else {
			rhs[i] = sharedRhs
		}
		out[i] = mat.NewDense(m, n, nil)
	}
	return func() error {
		for i := 0; i < batch; i++ {
			out[i].Mul(lhs[i], rhs[i])
		}
		return nil
	}, nil
}

func (f *cpuFramework) Linear(x, w, b Dims) (Kernel, error) {
	if len(x) != 3 || len(w) != 2 || len(b) != 1 {
		return nil, fmt.Errorf("unsupported linear shapes %v x %v x %v", x, w, b)
	}
	if x[2] != w[0] || w[1] != b[0] {
		return nil, fmt.Errorf("incompatible linear shapes %v x %v x %v", x, w, b)
	}
	batch, m, k, n := x[0], x[1], x[2], w[1]
	weight := mat.NewDense(k, n, randomSlice(k*n))
	bias := randomSlice(n)
	inputs := make([]*mat.Dense, batch)
	outputs := make([]*mat.Dense, batch)
	for i := 0; i < batch; i++ {
		inputs[i] = mat.NewDense(m, k, randomSlice(m*k))
		outputs[i] = mat.NewDense(m, n, nil)
	}
	return func() error {
		for i := 0; i < batch; i++ {
			outputs[i].Mul(inputs[i], weight)
			raw := outputs[i].RawMatrix()
			for row := 0; row < m; row++ {
				floats.Add(raw.Data[row*raw.Stride:row*raw.Stride+n], bias)
			}
		}
		return nil
	}, nil
}

// Conv1d input is [batch, length, channels], kernel [filters, width, channels],
// valid padding, stride 1.
func (f *cpuFramework) Conv1d(x, w Dims) (Kernel, error) {
	if len(x) != 3 || len(w) != 3 || x[2] != w[2] || w[1] > x[1] {
		return nil, fmt.Errorf("unsupported conv1d shapes %v x %v", x, w)
	}
	batch, length, channels := x[0], x[1], x[2]
	filters, width := w[0], w[1]
	outLen := length - width + 1
	input := randomSlice(batch * length * channels)
	kernel := randomSlice(filters * width * channels)
	out := make([]float64, batch*outLen*filters)
	return func() error {
		for n := 0; n < batch; n++ {
			for p := 0; p < outLen; p++ {
				for o := 0; o < filters; o++ {
					acc := 0.0
					for q := 0; q < width; q++ {
						xBase := (n*length + p + q) * channels
						wBase := (o*width + q) * channels
						acc += floats.Dot(input[xBase:xBase+channels], kernel[wBase:wBase+channels])
					}
					out[(n*outLen+p)*filters+o] = acc
				}
			}
		}
		return nil
	}, nil
}

// Conv2d input is [batch, height, width, channels], kernel
// [filters, kh, kw, channels], valid padding, stride 1.
func (f *cpuFramework) Conv2d(x, w Dims) (Kernel, error) {
	if len(x) != 4 || len(w) != 4 || x[3] != w[3] || w[1] > x[1] || w[2] > x[2] {
		return nil, fmt.Errorf("unsupported conv2d shapes %v x %v", x, w)
	}
	batch, height, width, channels := x[0], x[1], x[2], x[3]
	filters, kh, kw := w[0], w[1], w[2]
	outH, outW := height-kh+1, width-kw+1
	input := randomSlice(batch * height * width * channels)
	kernel := randomSlice(filters * kh * kw * channels)
	out := make([]float64, batch*outH*outW*filters)
	return func() error {
		for n := 0; n < batch; n++ {
			for i := 0; i < outH; i++ {
				for j := 0; j < outW; j++ {
					for o := 0; o < filters; o++ {
						acc := 0.0
						for p := 0; p < kh; p++ {
							xBase := ((n*height+i+p)*width + j) * channels
							wBase := (o*kh + p) * kw * channels
							acc += floats.Dot(input[xBase:xBase+kw*channels], kernel[wBase:wBase+kw*channels])
						}
						out[((n*outH+i)*outW+j)*filters+o] = acc
					}
				}
			}
		}
		return nil
	}, nil
}

func (f *cpuFramework) BCE(pred, target Dims) (Kernel, error) {
	if pred.Size() != target.Size() {
		return nil, fmt.Errorf("incompatible bce shapes %v x %v", pred, target)
	}
	p := randomProbs(pred.Size())
	y := make([]float64, target.Size())
	for i := range y {
		y[i] = float64(rand.Intn(2))
	}
	return func() error {
		loss := 0.0
		for i := range p {
			loss -= y[i]*math.Log(p[i]) + (1-y[i])*math.Log(1-p[i])
		}
		_ = loss / float64(len(p))
		return nil
	}, nil
}

func (f *cpuFramework) Concat(a, b Dims, axis int) (Kernel, error) {
	if len(a) != 2 || len(b) != 2 || axis < 0 || axis > 1 {
		return nil, fmt.Errorf("unsupported concat shapes %v x %v, axis=%v", a, b, axis)
	}
	if a[1-axis] != b[1-axis] {
		return nil, fmt.Errorf("incompatible concat shapes %v x %v, axis=%v", a, b, axis)
	}
	left := randomSlice(a.Size())
	right := randomSlice(b.Size())
	out := make([]float64, a.Size()+b.Size())
	return func() error {
		if axis == 0 {
			copy(out, left)
			copy(out[len(left):], right)
			return nil
		}
		rows, lc, rc := a[0], a[1], b[1]
		for r := 0; r < rows; r++ {
			copy(out[r*(lc+rc):], left[r*lc:(r+1)*lc])
			copy(out[r*(lc+rc)+lc:], right[r*rc:(r+1)*rc])
		}
		return nil
	}, nil
}

func (f *cpuFramework) Gather(src Dims, count int) (Kernel, error) {
	if len(src) != 2 {
		return nil, fmt.Errorf("unsupported gather shape %v", src)
	}
	rows, cols := src[0], src[1]
	table := randomSlice(rows * cols)
	idx := randomIndices(count, rows)
	out := make([]float64, count*cols)
	return func() error {
		for i, row := range idx {
			copy(out[i*cols:], table[row*cols:(row+1)*cols])
		}
		return nil
	}, nil
}

func (f *cpuFramework) scatterKernel(src Dims, count int, combine func(dst, update []float64)) (Kernel, error) {
	if len(src) != 2 {
		return nil, fmt.Errorf("unsupported scatter shape %v", src)
	}
	rows, cols := src[0], src[1]
	updates := randomSlice(count * cols)
	idx := randomIndices(count, rows)
	dst := make([]float64, rows*cols)
	return func() error {
		for i := range dst {
			dst[i] = 0
		}
		for i, row := range idx {
			combine(dst[row*cols:(row+1)*cols], updates[i*cols:(i+1)*cols])
		}
		return nil
	}, nil
}

func (f *cpuFramework) Scatter(src Dims, count int) (Kernel, error) {
	return f.scatterKernel(src, count, func(dst, update []float64) {
		copy(dst, update)
	})
}

func (f *cpuFramework) ScatterSum(src Dims, count int) (Kernel, error) {
	return f.scatterKernel(src, count, func(dst, update []float64) {
		floats.Add(dst, update)
	})
}

func (f *cpuFramework) ScatterMax(src Dims, count int) (Kernel, error) {
	return f.scatterKernel(src, count, func(dst, update []float64) {
		for i := range dst {
			dst[i] = math.Max(dst[i], update[i])
		}
	})
}

func (f *cpuFramework) Argmax(x Dims, axis int) (Kernel, error) {
	axis = normAxis(axis, len(x))
	if axis < 0 || axis >= len(x) {
		return nil, fmt.Errorf("argmax axis %v out of range for %v", axis, x)
	}
	input := randomSlice(x.Size())
	outer, axisN, inner := axisSpans(x, axis)
	out := make([]int, outer*inner)
	return func() error {
		for o := 0; o < outer; o++ {
			for i := 0; i < inner; i++ {
				best, bestAt := math.Inf(-1), 0
				for a := 0; a < axisN; a++ {
					v := input[(o*axisN+a)*inner+i]
					if v > best {
						best, bestAt = v, a
					}
				}
				out[o*inner+i] = bestAt
			}
		}
		return nil
	}, nil
}

func (f *cpuFramework) Softmax(x Dims, axis int) (Kernel, error) {
	axis = normAxis(axis, len(x))
	if axis < 0 || axis >= len(x) {
		return nil, fmt.Errorf("softmax axis %v out of range for %v", axis, x)
	}
	input := randomSlice(x.Size())
	outer, axisN, inner := axisSpans(x, axis)
	out := make([]float64, x.Size())
	return func() error {
		for o := 0; o < outer; o++ {
			for i := 0; i < inner; i++ {
				max := math.Inf(-1)
				for a := 0; a < axisN; a++ {
					max = math.Max(max, input[(o*axisN+a)*inner+i])
				}
				sum := 0.0
				for a := 0; a < axisN; a++ {
					at := (o*axisN + a) * inner
					out[at+i] = math.Exp(input[at+i] - max)
					sum += out[at+i]
				}
				for a := 0; a < axisN; a++ {
					out[(o*axisN+a)*inner+i] /= sum
				}
			}
		}
		return nil
	}, nil
}

func (f *cpuFramework) Sort(x Dims, axis int) (Kernel, error) {
	axis = normAxis(axis, len(x))
	if axis < 0 || axis >= len(x) {
		return nil, fmt.Errorf("sort axis %v out of range for %v", axis, x)
	}
	input := randomSlice(x.Size())
	outer, axisN, inner := axisSpans(x, axis)
	lane := make([]float64, axisN)
	out := make([]float64, x.Size())
	return func() error {
		for o := 0; o < outer; o++ {
			for i := 0; i < inner; i++ {
				for a := 0; a < axisN; a++ {
					lane[a] = input[(o*axisN+a)*inner+i]
				}
				sort.Float64s(lane)
				for a := 0; a < axisN; a++ {
					out[(o*axisN+a)*inner+i] = lane[a]
				}
			}
		}
		return nil
	}, nil
}

func (f *cpuFramework) Sum(x Dims, axis int) (Kernel, error) {
	axis = normAxis(axis, len(x))
	if axis < 0 || axis >= len(x) {
		return nil, fmt.Errorf("sum axis %v out of range for %v", axis, x)
	}
	input := randomSlice(x.Size())
	outer, axisN, inner := axisSpans(x, axis)
	out := make([]float64, outer*inner)
	return func() error {
		for i := range out {
			out[i] = 0
		}
		for o := 0; o < outer; o++ {
			for a := 0; a < axisN; a++ {
				base := (o*axisN + a) * inner
				floats.Add(out[o*inner:(o+1)*inner], input[base:base+inner])
			}
		}
		return nil
	}, nil
}

func (f *cpuFramework) SumAll(x Dims) (Kernel, error) {
	input := randomSlice(x.Size())
	return func() error {
		_ = floats.Sum(input)
		return nil
	}, nil
}

func (f *cpuFramework) mapKernel(x Dims, apply func(v float64) float64) (Kernel, error) {
	input := randomSlice(x.Size())
	out := make([]float64, x.Size())
	return func() error {
		for i, v := range input {
			out[i] = apply(v)
		}
		return nil
	}, nil
}

func (f *cpuFramework) Relu(x Dims) (Kernel, error) {
	return f.mapKernel(x, func(v float64) float64 { return math.Max(0, v) })
}

func (f *cpuFramework) LeakyRelu(x Dims) (Kernel, error) {
	return f.mapKernel(x, func(v float64) float64 {
		if v >= 0 {
			return v
		}
		return 0.01 * v
	})
}

func (f *cpuFramework) PRelu(x Dims) (Kernel, error) {
	alpha := rand.Float64()
	return f.mapKernel(x, func(v float64) float64 {
		if v >= 0 {
			return v
		}
		return alpha * v
	})
}

// Selu constants follow Klambauer et al. (2017).
func (f *cpuFramework) Selu(x Dims) (Kernel, error) {
	const scale, alpha = 1.0507009873554805, 1.6732632423543772
	return f.mapKernel(x, func(v float64) float64 {
		if v >= 0 {
			return scale * v
		}
		return scale * alpha * (math.Exp(v) - 1)
	})
}

func (f *cpuFramework) Sigmoid(x Dims) (Kernel, error) {
	return f.mapKernel(x, func(v float64) float64 { return 1 / (1 + math.Exp(-v)) })
}

func (f *cpuFramework) Softplus(x Dims) (Kernel, error) {
	return f.mapKernel(x, func(v float64) float64 {
		// Stable for large |v|.
		if v > 30 {
			return v
		}
		return math.Log1p(math.Exp(v))
	})
}
