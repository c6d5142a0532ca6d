package main

import (
	"fmt"
)

// frameworkSet holds the framework adapters used by one execution context.
// A set is built fresh per context and never shared: device selection on the
// accelerator adapters mutates state that is process-wide for some runtimes.
type frameworkSet struct {
	accel    Framework
	cpu      Framework
	unified  Framework
	discrete Framework
}

func newFrameworkSet(cfg RunConfig) *frameworkSet {
	return &frameworkSet{
		accel:    NewAcceleratorFramework(cfg.AccelGPUConfig, cfg.AccelCPUConfig),
		cpu:      NewCPUFramework(),
		unified:  NewUnifiedFramework(),
		discrete: NewDiscreteFramework(cfg.AccelDiscreteConfig),
	}
}

// RunTrial executes one operation exactly once on every backend/device
// combination enabled by the configuration, in a fixed order, and returns the
// single-entry timing fragment for this trial. A failure on any backend aborts
// the trial; nothing is retried or skipped.
func RunTrial(op Operation, cfg RunConfig, fws *frameworkSet) (TimingSet, error) {
	times := make(map[string]float64)

	record := func(key string, fw Framework, device Device, compile bool) error {
		if err := fw.SetDevice(device); err != nil {
			return fmt.Errorf("failed to select %v device on %v: %w", device, fw.Name(), err)
		}
		seconds, err := measure(fw, op, compile)
		if err != nil {
			return err
		}
		times[key] = seconds
		return nil
	}

	if cfg.IncludeAccel {
		if err := record(BackendAccelGPU, fws.accel, DeviceGPU, false); err != nil {
			return nil, err
		}
		if cfg.Compile {
			if err := record(BackendAccelGPUCompiled, fws.accel, DeviceGPU, true); err != nil {
				return nil, err
			}
		}
		if cfg.IncludeCPU {
			if err := record(BackendAccelCPU, fws.accel, DeviceCPU, false); err != nil {
				return nil, err
			}
		}
	}

	if cfg.IncludeCPU {
		if err := record(BackendCPU, fws.cpu, DeviceCPU, false); err != nil {
			return nil, err
		}
	}

	if cfg.IncludeUnified {
		if err := record(BackendUnifiedGPU, fws.unified, DeviceGPU, false); err != nil {
			return nil, err
		}
	}

	if cfg.IncludeDiscrete {
		if err := record(BackendDiscrete, fws.discrete, DeviceGPU, false); err != nil {
			return nil, err
		}
	}

	return TimingSet{OperationLabel(op): times}, nil
}
