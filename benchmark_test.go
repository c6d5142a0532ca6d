package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// cannedContext delivers a fixed timing fragment for the requested operation.
type cannedContext struct {
	fragment TimingSet
	err      error
	closed   *int
}

func (c *cannedContext) Result() (TimingSet, error) { return c.fragment, c.err }

func (c *cannedContext) Close() error {
	*c.closed++
	return nil
}

// sequenceFactory replays per-trial samples and records the order in which
// operation trials were requested.
type sequenceFactory struct {
	ops     []Operation
	samples map[string][]float64
	next    map[string]int
	spawned []int
	closed  int
}

func (f *sequenceFactory) spawn(opIndex int) (ExecContext, error) {
	f.spawned = append(f.spawned, opIndex)
	op := f.ops[opIndex]
	label := OperationLabel(op)
	trial := f.next[label]
	f.next[label]++
	return &cannedContext{
		fragment: TimingSet{label: map[string]float64{BackendCPU: f.samples[label][trial]}},
		closed:   &f.closed,
	}, nil
}

func TestBenchmarkAveragesSamplesPerOperation(t *testing.T) {
	op := SumAllOp{X: MustDims("8x8")}
	factory := &sequenceFactory{
		ops:     []Operation{op},
		samples: map[string][]float64{OperationLabel(op): {0.01, 0.03}},
		next:    map[string]int{},
	}
	benchmark := Benchmark{Iterations: 2, Spawn: factory.spawn}

	results, err := benchmark.Run(factory.ops)
	require.NoError(t, err)
	require.InDelta(t, 0.02, results.Detailed[OperationLabel(op)][BackendCPU], 1e-12)
	require.InDelta(t, 0.02, results.Average[BackendCPU], 1e-12)
}

func TestBenchmarkCompletesOperationBeforeStartingNext(t *testing.T) {
	ops := []Operation{
		ReLUOp{X: MustDims("4")},
		SigmoidOp{X: MustDims("4")},
		SumAllOp{X: MustDims("4")},
	}
	samples := map[string][]float64{}
	for _, op := range ops {
		samples[OperationLabel(op)] = []float64{0.1, 0.2, 0.3}
	}
	factory := &sequenceFactory{ops: ops, samples: samples, next: map[string]int{}}
	benchmark := Benchmark{Iterations: 3, Spawn: factory.spawn}

	_, err := benchmark.Run(ops)
	require.NoError(t, err)
	require.Equal(t, []int{0, 0, 0, 1, 1, 1, 2, 2, 2}, factory.spawned)
	require.Equal(t, 9, factory.closed)
}

func TestBenchmarkAbortsOnTrialFailure(t *testing.T) {
	ops := []Operation{ReLUOp{X: MustDims("4")}}
	spawned := 0
	spawn := func(opIndex int) (ExecContext, error) {
		spawned++
		if spawned == 2 {
			closed := 0
			return &cannedContext{err: fmt.Errorf("worker exited unexpectedly"), closed: &closed}, nil
		}
		closed := 0
		return &cannedContext{
			fragment: TimingSet{OperationLabel(ops[0]): map[string]float64{BackendCPU: 0.01}},
			closed:   &closed,
		}, nil
	}
	benchmark := Benchmark{Iterations: 5, Spawn: spawn}

	_, err := benchmark.Run(ops)
	require.Error(t, err)
	require.Contains(t, err.Error(), "worker exited unexpectedly")
	require.Equal(t, 2, spawned)
}

func TestBenchmarkRejectsMismatchedResultLabel(t *testing.T) {
	ops := []Operation{ReLUOp{X: MustDims("4")}}
	spawn := func(opIndex int) (ExecContext, error) {
		closed := 0
		return &cannedContext{
			fragment: TimingSet{"Sigmoid / 4": map[string]float64{BackendCPU: 0.01}},
			closed:   &closed,
		}, nil
	}
	benchmark := Benchmark{Iterations: 1, Spawn: spawn}

	_, err := benchmark.Run(ops)
	require.Error(t, err)
	require.Contains(t, err.Error(), "wrong operation")
}

func TestBenchmarkRejectsUnevenBackendSamples(t *testing.T) {
	ops := []Operation{ReLUOp{X: MustDims("4")}}
	label := OperationLabel(ops[0])
	spawned := 0
	spawn := func(opIndex int) (ExecContext, error) {
		spawned++
		times := map[string]float64{BackendCPU: 0.01}
		// One trial drops a backend from its fragment.
		if spawned != 2 {
			times[BackendAccelGPU] = 0.02
		}
		closed := 0
		return &cannedContext{fragment: TimingSet{label: times}, closed: &closed}, nil
	}
	benchmark := Benchmark{Iterations: 3, Spawn: spawn}

	_, err := benchmark.Run(ops)
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 samples")
	require.Contains(t, err.Error(), "want 3")
}

func TestReduceMeanSpansOperations(t *testing.T) {
	detailed := TimingSet{
		"a": {BackendCPU: 0.1, BackendAccelGPU: 0.4},
		"b": {BackendCPU: 0.3},
	}
	average := reduceMean(detailed)
	require.InDelta(t, 0.2, average[BackendCPU], 1e-12)
	require.InDelta(t, 0.4, average[BackendAccelGPU], 1e-12)
}
