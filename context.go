package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// WorkerOpEnv selects the worker entry: when set, the process runs one trial of
// the catalogue operation at the given index and exits.
const WorkerOpEnv = "BENCHMARK_WORKER_OP"

// RunWorker is the body of an isolated execution context. It runs exactly one
// trial of one operation and writes the JSON-encoded timing fragment to out,
// the context's one-shot result channel.
func RunWorker(opIndex int, cfg RunConfig, out io.Writer) error {
	ops := Catalogue()
	if opIndex < 0 || opIndex >= len(ops) {
		return fmt.Errorf("worker operation index %v out of range [0, %v)", opIndex, len(ops))
	}
	op := ops[opIndex]
	Logger.Debugf("worker: running trial of %v", OperationLabel(op))

	times, err := RunTrial(op, cfg, newFrameworkSet(cfg))
	if err != nil {
		return fmt.Errorf("failed trial of %v: %w", OperationLabel(op), err)
	}
	if err := json.NewEncoder(out).Encode(times); err != nil {
		return fmt.Errorf("failed to deliver trial result: %w", err)
	}
	return nil
}

// processContext runs one trial in a freshly spawned copy of this binary. The
// child's memory, framework caches and device-selection state die with it, so
// nothing leaks into the next trial.
type processContext struct {
	cmd     *exec.Cmd
	results chan TimingSet
	errs    chan error
	timeout time.Duration
}

// NewProcessContextFactory returns a ContextFactory spawning one worker process
// per trial.
func NewProcessContextFactory(cfg RunConfig) ContextFactory {
	return func(opIndex int) (ExecContext, error) {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate benchmark binary: %w", err)
		}
		cmd := exec.Command(exe)
		cmd.Env = append(os.Environ(), fmt.Sprintf("%v=%v", WorkerOpEnv, opIndex))
		cmd.Stderr = os.Stderr

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("failed to open worker result pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("failed to start worker process: %w", err)
		}

		ctx := &processContext{
			cmd:     cmd,
			results: make(chan TimingSet, 1),
			errs:    make(chan error, 1),
			timeout: cfg.TrialTimeout,
		}
		go func() {
			var times TimingSet
			if err := json.NewDecoder(stdout).Decode(&times); err != nil {
				ctx.errs <- fmt.Errorf("worker exited without delivering a result: %w", err)
				return
			}
			ctx.results <- times
		}()
		return ctx, nil
	}
}

func (c *processContext) Result() (TimingSet, error) {
	if c.timeout <= 0 {
		select {
		case times := <-c.results:
			return times, nil
		case err := <-c.errs:
			return nil, err
		}
	}
	select {
	case times := <-c.results:
		return times, nil
	case err := <-c.errs:
		return nil, err
	case <-time.After(c.timeout):
		_ = c.cmd.Process.Kill()
		return nil, fmt.Errorf("worker produced no result within %v", c.timeout)
	}
}

func (c *processContext) Close() error {
	if err := c.cmd.Wait(); err != nil {
		return fmt.Errorf("worker process failed: %w", err)
	}
	return nil
}

// inProcessContext runs the trial synchronously in the calling process. It
// keeps the same blocking contract but provides no memory isolation; used when
// BENCHMARK_ISOLATE is disabled and by tests.
type inProcessContext struct {
	op  Operation
	cfg RunConfig
}

// NewInProcessContextFactory returns a ContextFactory running trials in the
// caller's process.
func NewInProcessContextFactory(cfg RunConfig) ContextFactory {
	ops := Catalogue()
	return func(opIndex int) (ExecContext, error) {
		if opIndex < 0 || opIndex >= len(ops) {
			return nil, fmt.Errorf("operation index %v out of range [0, %v)", opIndex, len(ops))
		}
		return &inProcessContext{op: ops[opIndex], cfg: cfg}, nil
	}
}

func (c *inProcessContext) Result() (TimingSet, error) {
	return RunTrial(c.op, c.cfg, newFrameworkSet(c.cfg))
}

func (c *inProcessContext) Close() error { return nil }
