package main

import (
	"fmt"

	"github.com/luxfi/mlx"
)

// ErrKernelUnsupported marks operations a framework binding has no kernel for.
// The run aborts when it surfaces, pointing at the exact backend and operation.
type ErrKernelUnsupported struct {
	Framework string
	Kind      string
}

func (e *ErrKernelUnsupported) Error() string {
	return fmt.Sprintf("%v framework has no %v kernel", e.Framework, e.Kind)
}

// unifiedFramework measures the unified-memory path through the MLX bindings.
// The bindings expose a narrow array surface, so only matrix multiplication is
// covered; everything else reports ErrKernelUnsupported.
type unifiedFramework struct{}

func NewUnifiedFramework() Framework { return &unifiedFramework{} }

func (f *unifiedFramework) Name() string { return "unified" }

func (f *unifiedFramework) Check(device Device) error {
	if device != DeviceGPU {
		return fmt.Errorf("unified framework has no %v device", device)
	}
	if err := mlx.SetBackend(mlx.Metal); err != nil {
		return fmt.Errorf("failed to select Metal backend: %w", err)
	}
	return nil
}

func (f *unifiedFramework) SetDevice(device Device) error { return f.Check(device) }

func (f *unifiedFramework) Synchronize() error {
	mlx.Synchronize()
	return nil
}

func (f *unifiedFramework) unsupported(kind string) (Kernel, error) {
	return nil, &ErrKernelUnsupported{Framework: f.Name(), Kind: kind}
}

func (f *unifiedFramework) MatMul(a, b Dims) (Kernel, error) {
	if len(a) != 2 || len(b) != 2 || a[1] != b[0] {
		return f.unsupported("MatMul")
	}
	lhs := mlx.Random([]int(a), mlx.Float32)
	rhs := mlx.Random([]int(b), mlx.Float32)
	return func() error {
		out := mlx.MatMul(lhs, rhs)
		mlx.Eval(out)
		mlx.DefaultContext.Free(out)
		return nil
	}, nil
}

func (f *unifiedFramework) Linear(x, w, b Dims) (Kernel, error)   { return f.unsupported("Linear") }
func (f *unifiedFramework) Conv1d(x, w Dims) (Kernel, error)      { return f.unsupported("Conv1d") }
func (f *unifiedFramework) Conv2d(x, w Dims) (Kernel, error)      { return f.unsupported("Conv2d") }
func (f *unifiedFramework) BCE(pred, target Dims) (Kernel, error) { return f.unsupported("BCE") }
func (f *unifiedFramework) Concat(a, b Dims, axis int) (Kernel, error) {
	return f.unsupported("Concat")
}
func (f *unifiedFramework) Gather(src Dims, count int) (Kernel, error) {
	return f.unsupported("Gather")
}
func (f *unifiedFramework) Scatter(src Dims, count int) (Kernel, error) {
	return f.unsupported("Scatter")
}
func (f *unifiedFramework) ScatterSum(src Dims, count int) (Kernel, error) {
	return f.unsupported("ScatterSum")
}
func (f *unifiedFramework) ScatterMax(src Dims, count int) (Kernel, error) {
	return f.unsupported("ScatterMax")
}
func (f *unifiedFramework) Argmax(x Dims, axis int) (Kernel, error) {
	return f.unsupported("Argmax")
}
func (f *unifiedFramework) Softmax(x Dims, axis int) (Kernel, error) {
	return f.unsupported("Softmax")
}
func (f *unifiedFramework) Sort(x Dims, axis int) (Kernel, error) { return f.unsupported("Sort") }
func (f *unifiedFramework) Sum(x Dims, axis int) (Kernel, error)  { return f.unsupported("Sum") }
func (f *unifiedFramework) SumAll(x Dims) (Kernel, error)         { return f.unsupported("SumAll") }
func (f *unifiedFramework) Relu(x Dims) (Kernel, error)           { return f.unsupported("ReLU") }
func (f *unifiedFramework) LeakyRelu(x Dims) (Kernel, error) {
	return f.unsupported("LeakyReLU")
}
func (f *unifiedFramework) PRelu(x Dims) (Kernel, error)    { return f.unsupported("PReLU") }
func (f *unifiedFramework) Selu(x Dims) (Kernel, error)     { return f.unsupported("SeLU") }
func (f *unifiedFramework) Sigmoid(x Dims) (Kernel, error)  { return f.unsupported("Sigmoid") }
func (f *unifiedFramework) Softplus(x Dims) (Kernel, error) { return f.unsupported("Softplus") }
