package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/stat"
)

// Benchmark drives repeated, isolated trials of every catalogue operation and
// folds the collected samples into aggregated statistics. Exactly one execution
// context is alive at any time: trials never overlap, and all trials of one
// operation complete before the next operation starts.
type Benchmark struct {
	Iterations int
	Spawn      ContextFactory
}

// Results carries the two views of a completed run: per-operation per-backend
// means, plus a single global mean per backend across all operations.
type Results struct {
	Detailed TimingSet
	Average  map[string]float64
}

// Run executes all trials and returns the aggregated results. Any trial
// failure aborts the run; partial aggregates are never reported.
func (b *Benchmark) Run(ops []Operation) (Results, error) {
	detailed := make(TimingSet, len(ops))

	bar := progressbar.NewOptions(len(ops)*b.Iterations,
		progressbar.OptionSetDescription("Benchmarking: "),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("trials"),
		progressbar.OptionSetWriter(os.Stderr),
	)

	for index, op := range ops {
		label := OperationLabel(op)
		samples := make(map[string][]float64)

		for trial := 0; trial < b.Iterations; trial++ {
			fragment, err := b.runTrial(index)
			if err != nil {
				return Results{}, fmt.Errorf("failed trial %v/%v of %v: %w", trial+1, b.Iterations, label, err)
			}
			times, ok := fragment[label]
			if !ok {
				return Results{}, fmt.Errorf("trial of %v delivered result for wrong operation: %v", label, fragment)
			}
			for backend, seconds := range times {
				samples[backend] = append(samples[backend], seconds)
			}
			_ = bar.Add(1)
		}

		means := make(map[string]float64, len(samples))
		for backend, values := range samples {
			if len(values) != b.Iterations {
				return Results{}, fmt.Errorf("backend %v delivered %v samples for %v, want %v", backend, len(values), label, b.Iterations)
			}
			means[backend] = stat.Mean(values, nil)
		}
		detailed[label] = means

		// Framework runtimes cache allocations; without forcing a collection
		// here, peak memory grows monotonically across the run.
		runtime.GC()
	}
	_ = bar.Finish()

	return Results{Detailed: detailed, Average: reduceMean(detailed)}, nil
}

// runTrial runs one trial in a fresh execution context, blocks for its one-shot
// result, then waits for the context to fully terminate.
func (b *Benchmark) runTrial(opIndex int) (TimingSet, error) {
	ctx, err := b.Spawn(opIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution context: %w", err)
	}
	fragment, err := ctx.Result()
	if err != nil {
		_ = ctx.Close()
		return nil, err
	}
	if err := ctx.Close(); err != nil {
		return nil, err
	}
	return fragment, nil
}

// reduceMean collapses the detailed timing set into one global mean per backend
// across all operations.
func reduceMean(detailed TimingSet) map[string]float64 {
	byBackend := make(map[string][]float64)
	for _, times := range detailed {
		for backend, seconds := range times {
			byBackend[backend] = append(byBackend[backend], seconds)
		}
	}
	average := make(map[string]float64, len(byBackend))
	for backend, values := range byBackend {
		average[backend] = stat.Mean(values, nil)
	}
	return average
}
