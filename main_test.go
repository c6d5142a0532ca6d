package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckFrameworksPassesWhenBackendsAvailable(t *testing.T) {
	log := make([]string, 0)
	cfg := RunConfig{
		IncludeCPU:      true,
		IncludeAccel:    true,
		IncludeUnified:  true,
		IncludeDiscrete: true,
	}
	require.NoError(t, checkFrameworks(cfg, stubFrameworkSet(&log)))
}

func TestCheckFrameworksFailsBeforeAnyTrial(t *testing.T) {
	log := make([]string, 0)
	fws := stubFrameworkSet(&log)
	fws.discrete = newStubFramework("discrete", &log)

	err := checkFrameworks(RunConfig{IncludeDiscrete: true}, fws)
	require.Error(t, err)
	require.Contains(t, err.Error(), "discrete")

	// Disabled backends are never probed.
	require.NoError(t, checkFrameworks(RunConfig{}, fws))
	require.Empty(t, log)
}
