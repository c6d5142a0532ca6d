package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDims(t *testing.T) {
	dims, err := ParseDims("64x1024x128")
	require.NoError(t, err)
	require.Equal(t, Dims{64, 1024, 128}, dims)
	require.Equal(t, "64x1024x128", dims.String())
	require.Equal(t, 64*1024*128, dims.Size())

	_, err = ParseDims("64xx128")
	require.Error(t, err)

	_, err = ParseDims("64x-2")
	require.Error(t, err)

	_, err = ParseDims("64x0")
	require.Error(t, err)

	dims, err = ParseDims("1000000")
	require.NoError(t, err)
	require.Equal(t, Dims{1000000}, dims)
}

func TestNormAxis(t *testing.T) {
	require.Equal(t, 2, normAxis(-1, 3))
	require.Equal(t, 0, normAxis(-2, 2))
	require.Equal(t, 1, normAxis(1, 3))
}

func TestOperationLabels(t *testing.T) {
	require.Equal(t,
		"MatMul / 32x1x1000 x 32x1000x128",
		OperationLabel(MatMulOp{A: MustDims("32x1x1000"), B: MustDims("32x1000x128")}))
	require.Equal(t,
		"Softmax / 64x1000000, axis=-1",
		OperationLabel(SoftmaxOp{X: MustDims("64x1000000"), Axis: -1}))
	require.Equal(t,
		"Concat / 1000000x64 x 1000000x32, axis=1",
		OperationLabel(ConcatOp{A: MustDims("1000000x64"), B: MustDims("1000000x32"), Axis: 1}))
	require.Equal(t,
		"Gather / 64x256 x 10",
		OperationLabel(GatherOp{Src: MustDims("64x256"), Count: 10}))
	require.Equal(t,
		"SumAll / 64x128x128",
		OperationLabel(SumAllOp{X: MustDims("64x128x128")}))
	require.Equal(t,
		"Linear / 100x1024x32 x 32x1024 x 1024",
		OperationLabel(LinearOp{X: MustDims("100x1024x32"), W: MustDims("32x1024"), B: MustDims("1024")}))
}

func TestOperationsBuildDispatch(t *testing.T) {
	log := make([]string, 0)
	fw := newStubFramework("stub", &log, DeviceCPU)

	ops := map[string]Operation{
		"MatMul":     MatMulOp{A: MustDims("2x3"), B: MustDims("3x4")},
		"Linear":     LinearOp{X: MustDims("2x3x4"), W: MustDims("4x5"), B: MustDims("5")},
		"Conv1d":     Conv1dOp{X: MustDims("2x8x3"), W: MustDims("4x3x3")},
		"Conv2d":     Conv2dOp{X: MustDims("2x8x8x3"), W: MustDims("4x3x3x3")},
		"BCE":        BCEOp{Pred: MustDims("8x2"), Target: MustDims("8x2")},
		"Concat":     ConcatOp{A: MustDims("4x2"), B: MustDims("4x2"), Axis: 0},
		"Gather":     GatherOp{Src: MustDims("8x4"), Count: 3},
		"Scatter":    ScatterOp{Src: MustDims("8x4"), Count: 3},
		"ScatterSum": ScatterSumOp{Src: MustDims("8x4"), Count: 3},
		"ScatterMax": ScatterMaxOp{Src: MustDims("8x4"), Count: 3},
		"Argmax":     ArgmaxOp{X: MustDims("4x4"), Axis: 0},
		"Softmax":    SoftmaxOp{X: MustDims("4x4"), Axis: -1},
		"Sort":       SortOp{X: MustDims("4x4"), Axis: 1},
		"Sum":        SumOp{X: MustDims("4x4"), Axis: 0},
		"SumAll":     SumAllOp{X: MustDims("4x4")},
		"ReLU":       ReLUOp{X: MustDims("4")},
		"LeakyReLU":  LeakyReLUOp{X: MustDims("4")},
		"PReLU":      PReLUOp{X: MustDims("4"), Alpha: MustDims("1")},
		"SeLU":       SeLUOp{X: MustDims("4")},
		"Sigmoid":    SigmoidOp{X: MustDims("4")},
		"Softplus":   SoftplusOp{X: MustDims("4")},
	}
	for kind, op := range ops {
		require.Equal(t, kind, op.Kind())
		kernel, err := op.Build(fw)
		require.NoError(t, err, kind)
		require.NoError(t, kernel(), kind)
		require.Contains(t, log, "stub:run "+kind)
	}
}

func TestMeasureTimedInvocations(t *testing.T) {
	log := make([]string, 0)
	fw := newStubFramework("stub", &log, DeviceCPU)
	op := SigmoidOp{X: MustDims("8")}

	seconds, err := measure(fw, op, false)
	require.NoError(t, err)
	require.GreaterOrEqual(t, seconds, 0.0)
	require.Equal(t, []string{"stub:run Sigmoid"}, log)

	log = log[:0]
	_, err = measure(fw, op, true)
	require.NoError(t, err)
	require.Equal(t, []string{"stub:run Sigmoid", "stub:run Sigmoid"}, log)
}

func TestMeasureReportsBuildFailure(t *testing.T) {
	log := make([]string, 0)
	fw := newStubFramework("stub", &log, DeviceCPU)
	fw.failOn = "Sort"

	_, err := measure(fw, SortOp{X: MustDims("4x4"), Axis: 0}, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Sort / 4x4, axis=0")
	require.Contains(t, err.Error(), "stub")
}
