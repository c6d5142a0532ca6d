package main

// Catalogue returns the benchmarked operations in their fixed order. Trials of
// one entry always complete before the next entry starts, so this order is also
// the report order.
func Catalogue() []Operation {
	return []Operation{
		ArgmaxOp{X: MustDims("64x1024x128"), Axis: 0},
		ArgmaxOp{X: MustDims("64x1024x128"), Axis: 1},
		ArgmaxOp{X: MustDims("64x1024x128"), Axis: 2},
		ArgmaxOp{X: MustDims("64x128x1024"), Axis: 2},
		BCEOp{Pred: MustDims("1000000"), Target: MustDims("1000000")},
		BCEOp{Pred: MustDims("100000x32"), Target: MustDims("100000x32")},
		BCEOp{Pred: MustDims("100000x64x2"), Target: MustDims("100000x64x2")},
		BCEOp{Pred: MustDims("128x100000"), Target: MustDims("128x100000")},
		ConcatOp{A: MustDims("1000000x64"), B: MustDims("1000000x32"), Axis: 1},
		ConcatOp{A: MustDims("1000000x64"), B: MustDims("1000000x128"), Axis: 1},
		ConcatOp{A: MustDims("1000000x64"), B: MustDims("1000000x64"), Axis: 0},
		ConcatOp{A: MustDims("64x1000000"), B: MustDims("64x1000000"), Axis: 0},
		Conv1dOp{X: MustDims("100x256x3"), W: MustDims("8x3x3")},
		Conv1dOp{X: MustDims("100x256x256"), W: MustDims("8x3x256")},
		Conv1dOp{X: MustDims("16x1000x80"), W: MustDims("128x11x80")},
		Conv1dOp{X: MustDims("16x1000x3"), W: MustDims("128x11x3")},
		Conv2dOp{X: MustDims("100x256x256x3"), W: MustDims("8x3x3x3")},
		Conv2dOp{X: MustDims("10x256x256x12"), W: MustDims("8x3x3x12")},
		Conv2dOp{X: MustDims("1x256x256x128"), W: MustDims("8x3x3x128")},
		Conv2dOp{X: MustDims("100x28x28x3"), W: MustDims("8x3x3x3")},
		Conv2dOp{X: MustDims("1000x28x28x3"), W: MustDims("8x3x3x3")},
		GatherOp{Src: MustDims("64x256"), Count: 10},
		GatherOp{Src: MustDims("64x256"), Count: 1000},
		GatherOp{Src: MustDims("64x256"), Count: 1000000},
		GatherOp{Src: MustDims("1024x32"), Count: 10},
		GatherOp{Src: MustDims("1024x32"), Count: 1000},
		GatherOp{Src: MustDims("1024x32"), Count: 1000000},
		LeakyReLUOp{X: MustDims("128x16x1024")},
		LeakyReLUOp{X: MustDims("64x128x1024")},
		LinearOp{X: MustDims("100x1024x32"), W: MustDims("32x1024"), B: MustDims("1024")},
		LinearOp{X: MustDims("100x1024x64"), W: MustDims("64x1024"), B: MustDims("1024")},
		LinearOp{X: MustDims("100x1024x256"), W: MustDims("256x1024"), B: MustDims("1024")},
		LinearOp{X: MustDims("100x1024x512"), W: MustDims("512x1024"), B: MustDims("1024")},
		LinearOp{X: MustDims("100x1x51200"), W: MustDims("51200x1"), B: MustDims("1")},
		MatMulOp{A: MustDims("32x1x1000"), B: MustDims("32x1000x128")},
		MatMulOp{A: MustDims("1000x64x256"), B: MustDims("256x32")},
		MatMulOp{A: MustDims("1000x64x1024"), B: MustDims("1000x1024x32")},
		MatMulOp{A: MustDims("1000x1024x64"), B: MustDims("1000x64x256")},
		MatMulOp{A: MustDims("64x1000000"), B: MustDims("1000000x32")},
		MatMulOp{A: MustDims("1000000x64"), B: MustDims("64x1024")},
		PReLUOp{X: MustDims("128x16x1024"), Alpha: MustDims("1")},
		PReLUOp{X: MustDims("64x128x1024"), Alpha: MustDims("1")},
		ReLUOp{X: MustDims("128x16x1024")},
		ReLUOp{X: MustDims("64x128x1024")},
		ScatterOp{Src: MustDims("64x16"), Count: 10},
		ScatterOp{Src: MustDims("64x16"), Count: 1000},
		ScatterOp{Src: MustDims("64x16"), Count: 1000000},
		ScatterOp{Src: MustDims("1024x32"), Count: 10},
		ScatterOp{Src: MustDims("1024x32"), Count: 1000},
		ScatterOp{Src: MustDims("1024x32"), Count: 1000000},
		ScatterSumOp{Src: MustDims("64x16"), Count: 10},
		ScatterSumOp{Src: MustDims("64x16"), Count: 1000},
		ScatterSumOp{Src: MustDims("64x16"), Count: 1000000},
		ScatterSumOp{Src: MustDims("1024x32"), Count: 10},
		ScatterSumOp{Src: MustDims("1024x32"), Count: 1000},
		ScatterSumOp{Src: MustDims("1024x32"), Count: 1000000},
		ScatterMaxOp{Src: MustDims("64x16"), Count: 10},
		ScatterMaxOp{Src: MustDims("64x16"), Count: 1000},
		ScatterMaxOp{Src: MustDims("64x16"), Count: 1000000},
		ScatterMaxOp{Src: MustDims("1024x32"), Count: 10},
		ScatterMaxOp{Src: MustDims("1024x32"), Count: 1000},
		ScatterMaxOp{Src: MustDims("1024x32"), Count: 1000000},
		SeLUOp{X: MustDims("128x16x1024")},
		SeLUOp{X: MustDims("64x128x1024")},
		SigmoidOp{X: MustDims("128x16x1024")},
		SigmoidOp{X: MustDims("64x128x1024")},
		SoftmaxOp{X: MustDims("64x1000000"), Axis: -1},
		SoftmaxOp{X: MustDims("1000000x64"), Axis: -1},
		SoftmaxOp{X: MustDims("64x16x32x1024"), Axis: -1},
		SoftmaxOp{X: MustDims("128x16x32x1024"), Axis: -1},
		SoftmaxOp{X: MustDims("1024x16x32x128"), Axis: -1},
		SoftmaxOp{X: MustDims("1024x64x32x8"), Axis: -1},
		SoftplusOp{X: MustDims("128x16x1024")},
		SoftplusOp{X: MustDims("64x128x1024")},
		SortOp{X: MustDims("64x128x1024"), Axis: 0},
		SortOp{X: MustDims("64x128x1024"), Axis: 1},
		SortOp{X: MustDims("64x128x1024"), Axis: 2},
		SumOp{X: MustDims("64x128x128x128"), Axis: 0},
		SumOp{X: MustDims("64x128x128x128"), Axis: 1},
		SumOp{X: MustDims("64x128x128x128"), Axis: 2},
		SumOp{X: MustDims("64x128x128x128"), Axis: 3},
		SumAllOp{X: MustDims("64x128x128x128")},
		SumAllOp{X: MustDims("1000000")},
		SumAllOp{X: MustDims("1000000x128")},
		SumAllOp{X: MustDims("128x1000000")},
	}
}
