package main

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/gomlx/go-xla/pkg/installer"
	"github.com/gomlx/gomlx/backends"
	_ "github.com/gomlx/gomlx/backends/simplego"
	"github.com/gomlx/gomlx/backends/xla"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/layers/activations"
)

// acceleratorFramework runs kernels as XLA-compiled computation graphs. One
// implementation serves both the default accelerator (a GPU device plus its
// CPU sibling) and the discrete CUDA backend, which differ only in their
// backend configuration strings.
type acceleratorFramework struct {
	name       string
	configs    map[Device]string
	requireGPU bool

	device   Device
	backends map[Device]backends.Backend
	pending  []*tensors.Tensor
}

func NewAcceleratorFramework(gpuConfig, cpuConfig string) Framework {
	return &acceleratorFramework{
		name:     "accelerator",
		configs:  map[Device]string{DeviceGPU: gpuConfig, DeviceCPU: cpuConfig},
		backends: map[Device]backends.Backend{},
		device:   DeviceGPU,
	}
}

func NewDiscreteFramework(config string) Framework {
	return &acceleratorFramework{
		name:       "discrete",
		configs:    map[Device]string{DeviceGPU: config},
		backends:   map[Device]backends.Backend{},
		requireGPU: true,
		device:     DeviceGPU,
	}
}

var xlaInstall struct {
	once sync.Once
	err  error
}

// recoverToError converts panics into regular errors. The backends and graph
// packages report failures by panicking with an annotated error value.
func recoverToError(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	fn()
	return nil
}

func (f *acceleratorFramework) Name() string { return f.name }

func (f *acceleratorFramework) Check(device Device) error {
	if _, ok := f.configs[device]; !ok {
		return fmt.Errorf("%v framework has no %v device", f.name, device)
	}
	if f.requireGPU && !installer.HasNvidiaGPU() {
		return fmt.Errorf("%v framework found no NVidia GPU", f.name)
	}
	xlaInstall.once.Do(func() { xlaInstall.err = xla.AutoInstall() })
	if xlaInstall.err != nil {
		return fmt.Errorf("failed to install XLA PJRT plugin: %w", xlaInstall.err)
	}
	_, err := f.backendFor(device)
	return err
}

func (f *acceleratorFramework) SetDevice(device Device) error {
	if err := f.Check(device); err != nil {
		return err
	}
	f.device = device
	return nil
}

func (f *acceleratorFramework) backendFor(device Device) (backends.Backend, error) {
	if backend, ok := f.backends[device]; ok {
		return backend, nil
	}
	config := f.configs[device]
	var backend backends.Backend
	var err error
	if recErr := recoverToError(func() { backend, err = backends.NewWithConfig(config) }); recErr != nil {
		err = recErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create backend %q: %w", config, err)
	}
	f.backends[device] = backend
	return backend, nil
}

func (f *acceleratorFramework) active() (backends.Backend, error) {
	return f.backendFor(f.device)
}

// Synchronize materializes every output produced since the previous call, which
// blocks until the device finished the work, then releases the device buffers.
func (f *acceleratorFramework) Synchronize() error {
	for _, t := range f.pending {
		if err := t.ConstFlatData(func(flat any) {}); err != nil {
			return fmt.Errorf("failed to materialize kernel output: %w", err)
		}
		if err := t.FinalizeAll(); err != nil {
			return fmt.Errorf("failed to release kernel output: %w", err)
		}
	}
	f.pending = f.pending[:0]
	return nil
}

func (f *acceleratorFramework) invoke(exec *graph.Exec, args ...any) Kernel {
	return func() error {
		outputs, err := exec.CallOrError(args...)
		if err != nil {
			return fmt.Errorf("failed to execute kernel: %w", err)
		}
		f.pending = append(f.pending, outputs...)
		return nil
	}
}

func float32Tensor(dims Dims) *tensors.Tensor {
	data := make([]float32, dims.Size())
	for i := range data {
		data[i] = rand.Float32()
	}
	return tensors.FromFlatDataAndDimensions(data, dims...)
}

// probTensor keeps values strictly inside (0, 1) so log(p) and log(1-p) stay
// finite.
func probTensor(dims Dims) *tensors.Tensor {
	data := make([]float32, dims.Size())
	for i := range data {
		data[i] = 1e-6 + (1-2e-6)*rand.Float32()
	}
	return tensors.FromFlatDataAndDimensions(data, dims...)
}

func binaryTensor(dims Dims) *tensors.Tensor {
	data := make([]float32, dims.Size())
	for i := range data {
		data[i] = float32(rand.Intn(2))
	}
	return tensors.FromFlatDataAndDimensions(data, dims...)
}

// indexTensor returns row indices shaped [count, 1], as Gather and Scatter
// expect the last indices axis to address the leading operand axis.
func indexTensor(count, limit int) *tensors.Tensor {
	data := make([]int32, count)
	for i := range data {
		data[i] = int32(rand.Intn(limit))
	}
	return tensors.FromFlatDataAndDimensions(data, count, 1)
}

func (f *acceleratorFramework) unary(x Dims, graphFn func(x *graph.Node) *graph.Node) (Kernel, error) {
	backend, err := f.active()
	if err != nil {
		return nil, err
	}
	exec, err := graph.NewExecOrError(backend, graphFn)
	if err != nil {
		return nil, err
	}
	return f.invoke(exec, float32Tensor(x)), nil
}

func (f *acceleratorFramework) binary(a, b Dims, graphFn func(x, y *graph.Node) *graph.Node) (Kernel, error) {
	backend, err := f.active()
	if err != nil {
		return nil, err
	}
	exec, err := graph.NewExecOrError(backend, graphFn)
	if err != nil {
		return nil, err
	}
	return f.invoke(exec, float32Tensor(a), float32Tensor(b)), nil
}

func (f *acceleratorFramework) MatMul(a, b Dims) (Kernel, error) {
	return f.binary(a, b, func(x, y *graph.Node) *graph.Node {
		return graph.MatMul(x, y)
	})
}

func (f *acceleratorFramework) Linear(x, w, b Dims) (Kernel, error) {
	if len(x) != 3 || len(w) != 2 || len(b) != 1 {
		return nil, fmt.Errorf("unsupported linear shapes %v x %v x %v", x, w, b)
	}
	backend, err := f.active()
	if err != nil {
		return nil, err
	}
	exec, err := graph.NewExecOrError(backend, func(input, weight, bias *graph.Node) *graph.Node {
		return graph.Add(graph.MatMul(input, weight), bias)
	})
	if err != nil {
		return nil, err
	}
	return f.invoke(exec, float32Tensor(x), float32Tensor(w), float32Tensor(b)), nil
}

// Conv1d takes input [batch, length, channels] and kernel
// [filters, width, channels], rearranged to the channels-last kernel layout
// [width, channels, filters] the convolution expects.
func (f *acceleratorFramework) Conv1d(x, w Dims) (Kernel, error) {
	if len(x) != 3 || len(w) != 3 || x[2] != w[2] {
		return nil, fmt.Errorf("unsupported conv1d shapes %v x %v", x, w)
	}
	return f.binary(x, Dims{w[1], w[2], w[0]}, func(input, kernel *graph.Node) *graph.Node {
		return graph.Convolve(input, kernel).Done()
	})
}

func (f *acceleratorFramework) Conv2d(x, w Dims) (Kernel, error) {
	if len(x) != 4 || len(w) != 4 || x[3] != w[3] {
		return nil, fmt.Errorf("unsupported conv2d shapes %v x %v", x, w)
	}
	return f.binary(x, Dims{w[1], w[2], w[3], w[0]}, func(input, kernel *graph.Node) *graph.Node {
		return graph.Convolve(input, kernel).Done()
	})
}

func (f *acceleratorFramework) BCE(pred, target Dims) (Kernel, error) {
	backend, err := f.active()
	if err != nil {
		return nil, err
	}
	exec, err := graph.NewExecOrError(backend, func(p, y *graph.Node) *graph.Node {
		losses := graph.Neg(graph.Add(
			graph.Mul(y, graph.Log(p)),
			graph.Mul(graph.OneMinus(y), graph.Log(graph.OneMinus(p)))))
		return graph.ReduceAllMean(losses)
	})
	if err != nil {
		return nil, err
	}
	return f.invoke(exec, probTensor(pred), binaryTensor(target)), nil
}

func (f *acceleratorFramework) Concat(a, b Dims, axis int) (Kernel, error) {
	return f.binary(a, b, func(x, y *graph.Node) *graph.Node {
		return graph.Concatenate([]*graph.Node{x, y}, axis)
	})
}

func (f *acceleratorFramework) Gather(src Dims, count int) (Kernel, error) {
	if len(src) != 2 {
		return nil, fmt.Errorf("unsupported gather shape %v", src)
	}
	backend, err := f.active()
	if err != nil {
		return nil, err
	}
	exec, err := graph.NewExecOrError(backend, func(params, indices *graph.Node) *graph.Node {
		return graph.Gather(params, indices)
	})
	if err != nil {
		return nil, err
	}
	return f.invoke(exec, float32Tensor(src), indexTensor(count, src[0])), nil
}

func (f *acceleratorFramework) scatterKernel(src Dims, count int, graphFn func(indices, updates *graph.Node, target shapes.Shape) *graph.Node) (Kernel, error) {
	if len(src) != 2 {
		return nil, fmt.Errorf("unsupported scatter shape %v", src)
	}
	backend, err := f.active()
	if err != nil {
		return nil, err
	}
	target := shapes.Make(dtypes.Float32, src...)
	exec, err := graph.NewExecOrError(backend, func(indices, updates *graph.Node) *graph.Node {
		return graphFn(indices, updates, target)
	})
	if err != nil {
		return nil, err
	}
	return f.invoke(exec, indexTensor(count, src[0]), float32Tensor(Dims{count, src[1]})), nil
}

func (f *acceleratorFramework) Scatter(src Dims, count int) (Kernel, error) {
	return f.scatterKernel(src, count, func(indices, updates *graph.Node, target shapes.Shape) *graph.Node {
		return graph.Scatter(indices, updates, target, false, false)
	})
}

func (f *acceleratorFramework) ScatterSum(src Dims, count int) (Kernel, error) {
	return f.scatterKernel(src, count, func(indices, updates *graph.Node, target shapes.Shape) *graph.Node {
		operand := graph.Zeros(indices.Graph(), target)
		return graph.ScatterSum(operand, indices, updates, false, false)
	})
}

func (f *acceleratorFramework) ScatterMax(src Dims, count int) (Kernel, error) {
	return f.scatterKernel(src, count, func(indices, updates *graph.Node, target shapes.Shape) *graph.Node {
		operand := graph.Zeros(indices.Graph(), target)
		return graph.ScatterMax(operand, indices, updates, false, false)
	})
}

func (f *acceleratorFramework) Argmax(x Dims, axis int) (Kernel, error) {
	axis = normAxis(axis, len(x))
	return f.unary(x, func(input *graph.Node) *graph.Node {
		return graph.ArgMax(input, axis)
	})
}

func (f *acceleratorFramework) Softmax(x Dims, axis int) (Kernel, error) {
	axis = normAxis(axis, len(x))
	return f.unary(x, func(input *graph.Node) *graph.Node {
		return graph.Softmax(input, axis)
	})
}

func (f *acceleratorFramework) Sort(x Dims, axis int) (Kernel, error) {
	axis = normAxis(axis, len(x))
	return f.unary(x, func(input *graph.Node) *graph.Node {
		return graph.Sort(input, axis)
	})
}

func (f *acceleratorFramework) Sum(x Dims, axis int) (Kernel, error) {
	axis = normAxis(axis, len(x))
	return f.unary(x, func(input *graph.Node) *graph.Node {
		return graph.ReduceSum(input, axis)
	})
}

func (f *acceleratorFramework) SumAll(x Dims) (Kernel, error) {
	return f.unary(x, graph.ReduceAllSum)
}

func (f *acceleratorFramework) Relu(x Dims) (Kernel, error) {
	return f.unary(x, activations.Relu)
}

func (f *acceleratorFramework) LeakyRelu(x Dims) (Kernel, error) {
	return f.unary(x, activations.LeakyRelu)
}

func (f *acceleratorFramework) PRelu(x Dims) (Kernel, error) {
	alpha := rand.Float64()
	return f.unary(x, func(input *graph.Node) *graph.Node {
		return activations.LeakyReluWithAlpha(input, alpha)
	})
}

func (f *acceleratorFramework) Selu(x Dims) (Kernel, error) {
	return f.unary(x, activations.Selu)
}

func (f *acceleratorFramework) Sigmoid(x Dims) (Kernel, error) {
	return f.unary(x, graph.Sigmoid)
}

func (f *acceleratorFramework) Softplus(x Dims) (Kernel, error) {
	return f.unary(x, func(input *graph.Node) *graph.Node {
		return graph.Log(graph.OnePlus(graph.Exp(input)))
	})
}
