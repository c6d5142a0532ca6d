package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dims is a tensor shape, parsed from strings like "64x1024x128".
type Dims []int

func ParseDims(s string) (Dims, error) {
	parts := strings.Split(s, "x")
	dims := make(Dims, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("failed to parse dims %q: %w", s, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("failed to parse dims %q: non-positive dimension %v", s, value)
		}
		dims = append(dims, value)
	}
	return dims, nil
}

// MustDims is used by the static catalogue, where a malformed shape is a
// programming error.
func MustDims(s string) Dims {
	dims, err := ParseDims(s)
	if err != nil {
		panic(err)
	}
	return dims
}

func (d Dims) String() string {
	parts := make([]string, len(d))
	for i, dim := range d {
		parts[i] = strconv.Itoa(dim)
	}
	return strings.Join(parts, "x")
}

// Size returns the number of elements of the shape.
func (d Dims) Size() int {
	size := 1
	for _, dim := range d {
		size *= dim
	}
	return size
}

// normAxis resolves negative axes the way the catalogue writes them
// (axis=-1 means the last axis).
func normAxis(axis, rank int) int {
	if axis < 0 {
		return rank + axis
	}
	return axis
}

// measure builds the operation on the framework and times exactly one kernel
// invocation between two synchronization points. With compile set, one warm
// invocation runs first so that the timed one uses the already-compiled kernel.
func measure(fw Framework, op Operation, compile bool) (float64, error) {
	kernel, err := op.Build(fw)
	if err != nil {
		return 0, fmt.Errorf("failed to build %v on %v: %w", OperationLabel(op), fw.Name(), err)
	}
	if compile {
		if err := kernel(); err != nil {
			return 0, fmt.Errorf("failed to compile %v on %v: %w", OperationLabel(op), fw.Name(), err)
		}
	}
	if err := fw.Synchronize(); err != nil {
		return 0, err
	}
	start := time.Now()
	if err := kernel(); err != nil {
		return 0, fmt.Errorf("failed to run %v on %v: %w", OperationLabel(op), fw.Name(), err)
	}
	if err := fw.Synchronize(); err != nil {
		return 0, err
	}
	return time.Since(start).Seconds(), nil
}

// The closed set of catalogue operations. Each variant carries its shape/axis
// parameters and knows how to build itself on a Framework.

type MatMulOp struct{ A, B Dims }

func (op MatMulOp) Kind() string                       { return "MatMul" }
func (op MatMulOp) Args() string                       { return op.A.String() + " x " + op.B.String() }
func (op MatMulOp) Build(fw Framework) (Kernel, error) { return fw.MatMul(op.A, op.B) }

type LinearOp struct{ X, W, B Dims }

func (op LinearOp) Kind() string { return "Linear" }
func (op LinearOp) Args() string {
	return op.X.String() + " x " + op.W.String() + " x " + op.B.String()
}
func (op LinearOp) Build(fw Framework) (Kernel, error) { return fw.Linear(op.X, op.W, op.B) }

type Conv1dOp struct{ X, W Dims }

func (op Conv1dOp) Kind() string                       { return "Conv1d" }
func (op Conv1dOp) Args() string                       { return op.X.String() + " x " + op.W.String() }
func (op Conv1dOp) Build(fw Framework) (Kernel, error) { return fw.Conv1d(op.X, op.W) }

type Conv2dOp struct{ X, W Dims }

func (op Conv2dOp) Kind() string                       { return "Conv2d" }
func (op Conv2dOp) Args() string                       { return op.X.String() + " x " + op.W.String() }
func (op Conv2dOp) Build(fw Framework) (Kernel, error) { return fw.Conv2d(op.X, op.W) }

type BCEOp struct{ Pred, Target Dims }

func (op BCEOp) Kind() string                       { return "BCE" }
func (op BCEOp) Args() string                       { return op.Pred.String() + " x " + op.Target.String() }
func (op BCEOp) Build(fw Framework) (Kernel, error) { return fw.BCE(op.Pred, op.Target) }

type ConcatOp struct {
	A, B Dims
	Axis int
}

func (op ConcatOp) Kind() string { return "Concat" }
func (op ConcatOp) Args() string {
	return fmt.Sprintf("%v x %v, axis=%v", op.A, op.B, op.Axis)
}
func (op ConcatOp) Build(fw Framework) (Kernel, error) { return fw.Concat(op.A, op.B, op.Axis) }

type GatherOp struct {
	Src   Dims
	Count int
}

func (op GatherOp) Kind() string                       { return "Gather" }
func (op GatherOp) Args() string                       { return fmt.Sprintf("%v x %v", op.Src, op.Count) }
func (op GatherOp) Build(fw Framework) (Kernel, error) { return fw.Gather(op.Src, op.Count) }

type ScatterOp struct {
	Src   Dims
	Count int
}

func (op ScatterOp) Kind() string                       { return "Scatter" }
func (op ScatterOp) Args() string                       { return fmt.Sprintf("%v x %v", op.Src, op.Count) }
func (op ScatterOp) Build(fw Framework) (Kernel, error) { return fw.Scatter(op.Src, op.Count) }

type ScatterSumOp struct {
	Src   Dims
	Count int
}

func (op ScatterSumOp) Kind() string                       { return "ScatterSum" }
func (op ScatterSumOp) Args() string                       { return fmt.Sprintf("%v x %v", op.Src, op.Count) }
func (op ScatterSumOp) Build(fw Framework) (Kernel, error) { return fw.ScatterSum(op.Src, op.Count) }

type ScatterMaxOp struct {
	Src   Dims
	Count int
}

func (op ScatterMaxOp) Kind() string                       { return "ScatterMax" }
func (op ScatterMaxOp) Args() string                       { return fmt.Sprintf("%v x %v", op.Src, op.Count) }
func (op ScatterMaxOp) Build(fw Framework) (Kernel, error) { return fw.ScatterMax(op.Src, op.Count) }

type ArgmaxOp struct {
	X    Dims
	Axis int
}

func (op ArgmaxOp) Kind() string                       { return "Argmax" }
func (op ArgmaxOp) Args() string                       { return fmt.Sprintf("%v, axis=%v", op.X, op.Axis) }
func (op ArgmaxOp) Build(fw Framework) (Kernel, error) { return fw.Argmax(op.X, op.Axis) }

type SoftmaxOp struct {
	X    Dims
	Axis int
}

func (op SoftmaxOp) Kind() string                       { return "Softmax" }
func (op SoftmaxOp) Args() string                       { return fmt.Sprintf("%v, axis=%v", op.X, op.Axis) }
func (op SoftmaxOp) Build(fw Framework) (Kernel, error) { return fw.Softmax(op.X, op.Axis) }

type SortOp struct {
	X    Dims
	Axis int
}

func (op SortOp) Kind() string                       { return "Sort" }
func (op SortOp) Args() string                       { return fmt.Sprintf("%v, axis=%v", op.X, op.Axis) }
func (op SortOp) Build(fw Framework) (Kernel, error) { return fw.Sort(op.X, op.Axis) }

type SumOp struct {
	X    Dims
	Axis int
}

func (op SumOp) Kind() string                       { return "Sum" }
func (op SumOp) Args() string                       { return fmt.Sprintf("%v, axis=%v", op.X, op.Axis) }
func (op SumOp) Build(fw Framework) (Kernel, error) { return fw.Sum(op.X, op.Axis) }

type SumAllOp struct{ X Dims }

func (op SumAllOp) Kind() string                       { return "SumAll" }
func (op SumAllOp) Args() string                       { return op.X.String() }
func (op SumAllOp) Build(fw Framework) (Kernel, error) { return fw.SumAll(op.X) }

type ReLUOp struct{ X Dims }

func (op ReLUOp) Kind() string                       { return "ReLU" }
func (op ReLUOp) Args() string                       { return op.X.String() }
func (op ReLUOp) Build(fw Framework) (Kernel, error) { return fw.Relu(op.X) }

type LeakyReLUOp struct{ X Dims }

func (op LeakyReLUOp) Kind() string                       { return "LeakyReLU" }
func (op LeakyReLUOp) Args() string                       { return op.X.String() }
func (op LeakyReLUOp) Build(fw Framework) (Kernel, error) { return fw.LeakyRelu(op.X) }

type PReLUOp struct{ X, Alpha Dims }

func (op PReLUOp) Kind() string                       { return "PReLU" }
func (op PReLUOp) Args() string                       { return op.X.String() + " x " + op.Alpha.String() }
func (op PReLUOp) Build(fw Framework) (Kernel, error) { return fw.PRelu(op.X) }

type SeLUOp struct{ X Dims }

func (op SeLUOp) Kind() string                       { return "SeLU" }
func (op SeLUOp) Args() string                       { return op.X.String() }
func (op SeLUOp) Build(fw Framework) (Kernel, error) { return fw.Selu(op.X) }

type SigmoidOp struct{ X Dims }

func (op SigmoidOp) Kind() string                       { return "Sigmoid" }
func (op SigmoidOp) Args() string                       { return op.X.String() }
func (op SigmoidOp) Build(fw Framework) (Kernel, error) { return fw.Sigmoid(op.X) }

type SoftplusOp struct{ X Dims }

func (op SoftplusOp) Kind() string                       { return "Softplus" }
func (op SoftplusOp) Args() string                       { return op.X.String() }
func (op SoftplusOp) Build(fw Framework) (Kernel, error) { return fw.Softplus(op.X) }
