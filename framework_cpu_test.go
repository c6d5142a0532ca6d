package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCPUFrameworkDevices(t *testing.T) {
	fw := NewCPUFramework()
	require.Equal(t, "cpu", fw.Name())
	require.NoError(t, fw.Check(DeviceCPU))
	require.NoError(t, fw.SetDevice(DeviceCPU))
	require.Error(t, fw.Check(DeviceGPU))
	require.Error(t, fw.SetDevice(DeviceGPU))
	require.NoError(t, fw.Synchronize())
}

func TestCPUFrameworkKernelsRun(t *testing.T) {
	fw := NewCPUFramework()

	builders := map[string]func() (Kernel, error){
		"MatMul 2d x 2d": func() (Kernel, error) { return fw.MatMul(MustDims("8x16"), MustDims("16x4")) },
		"MatMul batched": func() (Kernel, error) { return fw.MatMul(MustDims("4x8x16"), MustDims("4x16x4")) },
		"MatMul batched lhs": func() (Kernel, error) {
			return fw.MatMul(MustDims("4x8x16"), MustDims("16x4"))
		},
		"Linear": func() (Kernel, error) {
			return fw.Linear(MustDims("2x8x4"), MustDims("4x8"), MustDims("8"))
		},
		"Conv1d":     func() (Kernel, error) { return fw.Conv1d(MustDims("2x32x3"), MustDims("4x3x3")) },
		"Conv2d":     func() (Kernel, error) { return fw.Conv2d(MustDims("2x16x16x3"), MustDims("4x3x3x3")) },
		"BCE":        func() (Kernel, error) { return fw.BCE(MustDims("32x4"), MustDims("32x4")) },
		"Concat 0":   func() (Kernel, error) { return fw.Concat(MustDims("8x4"), MustDims("2x4"), 0) },
		"Concat 1":   func() (Kernel, error) { return fw.Concat(MustDims("8x4"), MustDims("8x2"), 1) },
		"Gather":     func() (Kernel, error) { return fw.Gather(MustDims("16x8"), 32) },
		"Scatter":    func() (Kernel, error) { return fw.Scatter(MustDims("16x8"), 32) },
		"ScatterSum": func() (Kernel, error) { return fw.ScatterSum(MustDims("16x8"), 32) },
		"ScatterMax": func() (Kernel, error) { return fw.ScatterMax(MustDims("16x8"), 32) },
		"Argmax":     func() (Kernel, error) { return fw.Argmax(MustDims("4x8x2"), 1) },
		"Softmax":    func() (Kernel, error) { return fw.Softmax(MustDims("4x8"), -1) },
		"Sort":       func() (Kernel, error) { return fw.Sort(MustDims("4x8x2"), 1) },
		"Sum":        func() (Kernel, error) { return fw.Sum(MustDims("4x8x2"), 0) },
		"SumAll":     func() (Kernel, error) { return fw.SumAll(MustDims("4x8")) },
		"ReLU":       func() (Kernel, error) { return fw.Relu(MustDims("64")) },
		"LeakyReLU":  func() (Kernel, error) { return fw.LeakyRelu(MustDims("64")) },
		"PReLU":      func() (Kernel, error) { return fw.PRelu(MustDims("64")) },
		"SeLU":       func() (Kernel, error) { return fw.Selu(MustDims("64")) },
		"Sigmoid":    func() (Kernel, error) { return fw.Sigmoid(MustDims("64")) },
		"Softplus":   func() (Kernel, error) { return fw.Softplus(MustDims("64")) },
	}
	for name, build := range builders {
		kernel, err := build()
		require.NoError(t, err, name)
		require.NoError(t, kernel(), name)
		// Kernels must stay reusable across iterations.
		require.NoError(t, kernel(), name)
	}
}

func TestCPUFrameworkRejectsIncompatibleShapes(t *testing.T) {
	fw := NewCPUFramework()

	_, err := fw.MatMul(MustDims("8x16"), MustDims("8x4"))
	require.Error(t, err)

	// A batched rhs needs a matching batched lhs.
	_, err = fw.MatMul(MustDims("8x16"), MustDims("4x16x4"))
	require.ErrorContains(t, err, "incompatible matmul batches")

	_, err = fw.MatMul(MustDims("2x8x16"), MustDims("4x16x4"))
	require.ErrorContains(t, err, "incompatible matmul batches")

	_, err = fw.Linear(MustDims("2x8x4"), MustDims("8x8"), MustDims("8"))
	require.Error(t, err)

	_, err = fw.Conv1d(MustDims("2x32x3"), MustDims("4x3x5"))
	require.Error(t, err)

	_, err = fw.Conv2d(MustDims("2x16x16x3"), MustDims("4x32x3x3"))
	require.Error(t, err)

	_, err = fw.Concat(MustDims("8x4"), MustDims("8x2"), 0)
	require.Error(t, err)

	_, err = fw.Gather(MustDims("16x8x2"), 32)
	require.Error(t, err)

	_, err = fw.Argmax(MustDims("4x8"), 2)
	require.Error(t, err)

	_, err = fw.Sort(MustDims("4x8"), -3)
	require.Error(t, err)
}

func TestAxisSpans(t *testing.T) {
	outer, axisN, inner := axisSpans(MustDims("4x8x2"), 1)
	require.Equal(t, 4, outer)
	require.Equal(t, 8, axisN)
	require.Equal(t, 2, inner)

	outer, axisN, inner = axisSpans(MustDims("4x8x2"), 0)
	require.Equal(t, 1, outer)
	require.Equal(t, 4, axisN)
	require.Equal(t, 16, inner)

	outer, axisN, inner = axisSpans(MustDims("4x8x2"), 2)
	require.Equal(t, 32, outer)
	require.Equal(t, 2, axisN)
	require.Equal(t, 1, inner)
}

func TestRandomProbsStayInsideUnitInterval(t *testing.T) {
	for _, p := range randomProbs(10000) {
		require.Greater(t, p, 0.0)
		require.Less(t, p, 1.0)
	}
}
