package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// checkFrameworks verifies every enabled backend before the first trial, so a
// missing device aborts the run upfront instead of many trials in.
func checkFrameworks(cfg RunConfig, fws *frameworkSet) error {
	if cfg.IncludeAccel {
		if err := fws.accel.Check(DeviceGPU); err != nil {
			return err
		}
		if cfg.IncludeCPU {
			if err := fws.accel.Check(DeviceCPU); err != nil {
				return err
			}
		}
	}
	if cfg.IncludeUnified {
		if err := fws.unified.Check(DeviceGPU); err != nil {
			return err
		}
	}
	if cfg.IncludeDiscrete {
		if err := fws.discrete.Check(DeviceGPU); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	_ = godotenv.Load()
	cfg := LoadRunConfig()

	if value, ok := os.LookupEnv(WorkerOpEnv); ok {
		opIndex, err := strconv.Atoi(value)
		if err != nil {
			Logger.Fatalf("invalid %v value %q: %v", WorkerOpEnv, value, err)
		}
		if err := RunWorker(opIndex, cfg, os.Stdout); err != nil {
			Logger.Fatalf("worker failed: %v", err)
		}
		return
	}

	Logger.Infof("start benchmark")
	Logger.Infof("host stat: %+v", HostStat())
	Logger.Infof("run config: %+v", cfg)

	if err := checkFrameworks(cfg, newFrameworkSet(cfg)); err != nil {
		Logger.Fatalf("backend unavailable: %v", err)
	}

	spawn := NewInProcessContextFactory(cfg)
	if cfg.Isolate {
		spawn = NewProcessContextFactory(cfg)
	}
	benchmark := Benchmark{Iterations: cfg.Iterations, Spawn: spawn}

	ops := Catalogue()
	results, err := benchmark.Run(ops)
	if err != nil {
		Logger.Fatalf("benchmark failed: %v", err)
	}

	fmt.Println(DetailedReport(ops, results))
	fmt.Println(AverageReport(results))
}
