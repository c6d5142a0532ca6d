package main

import (
	"os"
	"strconv"
	"time"
)

// RunConfig is resolved once at startup and passed by value into every
// execution context. Workers re-resolve it from the same environment, so the
// parent and its children always agree on the backend matrix.
type RunConfig struct {
	IncludeCPU      bool
	IncludeAccel    bool
	IncludeUnified  bool
	IncludeDiscrete bool
	Compile         bool

	Iterations int
	Isolate    bool

	// TrialTimeout bounds the wait for a single isolated trial. Zero keeps the
	// original unbounded blocking wait.
	TrialTimeout time.Duration

	AccelGPUConfig      string
	AccelCPUConfig      string
	AccelDiscreteConfig string
}

func LoadRunConfig() RunConfig {
	return RunConfig{
		IncludeCPU:      BoolEnv("BENCHMARK_INCLUDE_CPU", true),
		IncludeAccel:    BoolEnv("BENCHMARK_INCLUDE_ACCEL", true),
		IncludeUnified:  BoolEnv("BENCHMARK_INCLUDE_UNIFIED", false),
		IncludeDiscrete: BoolEnv("BENCHMARK_INCLUDE_DISCRETE", false),
		Compile:         BoolEnv("BENCHMARK_COMPILE", true),

		Iterations: IntEnv("BENCHMARK_ITERATIONS", 5),
		Isolate:    BoolEnv("BENCHMARK_ISOLATE", true),

		TrialTimeout: DurationEnv("BENCHMARK_TRIAL_TIMEOUT", 0),

		AccelGPUConfig:      StringEnv("BENCHMARK_ACCEL_GPU", "xla"),
		AccelCPUConfig:      StringEnv("BENCHMARK_ACCEL_CPU", "xla:cpu"),
		AccelDiscreteConfig: StringEnv("BENCHMARK_ACCEL_DISCRETE", "xla:cuda"),
	}
}

func StringEnv(key string, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func IntEnv(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func BoolEnv(key string, def bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func DurationEnv(key string, def time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
