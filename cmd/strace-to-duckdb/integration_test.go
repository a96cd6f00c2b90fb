package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Omegaice/strace-to-duckdb/internal/duckstore"
	"github.com/Omegaice/strace-to-duckdb/internal/engine"
	"github.com/Omegaice/strace-to-duckdb/internal/logging"
)

// scenarioFixtures lists the testdata fixtures covering each strace line
// shape and trailer variant the parser recognises; each file holds
// exactly one line.
var scenarioFixtures = []string{
	"scenario_complete_with_duration.trace",
	"scenario_error_with_message.trace",
	"scenario_nested_args.trace",
	"scenario_unfinished.trace",
	"scenario_resumed.trace",
	"scenario_annotation_not_error.trace",
	"scenario_select_annotation.trace",
	"scenario_hex_return.trace",
}

func TestIngestAllScenarioFixtures(t *testing.T) {
	var paths []string
	for _, name := range scenarioFixtures {
		paths = append(paths, filepath.Join("..", "..", "testdata", name))
	}

	store, err := duckstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	result := engine.Run(store, paths, 4, logging.New(false), nil)
	require.Nil(t, result.Critical)
	require.Equal(t, int64(0), result.Counters.FilesWithError.Load())
	require.Equal(t, int64(len(scenarioFixtures)), result.Counters.FilesComplete.Load())
	require.Equal(t, int64(len(scenarioFixtures)), result.Counters.ParsedLines.Load())

	sum, err := store.Summarize()
	require.NoError(t, err)
	require.Equal(t, int64(len(scenarioFixtures)), sum.TotalRows)
	// access(ENOENT) is the only failing call among the fixtures.
	require.Equal(t, int64(1), sum.FailedSyscalls)
}

func TestIngestDerivesPIDsFromFixtureFilenames(t *testing.T) {
	paths := []string{
		filepath.Join("..", "..", "testdata", "pidnames", "trace.4242"),
		filepath.Join("..", "..", "testdata", "pidnames", "my.trace.file.99"),
		filepath.Join("..", "..", "testdata", "pidnames", "noextension"),
	}

	store, err := duckstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	result := engine.Run(store, paths, 3, logging.New(false), nil)
	require.Nil(t, result.Critical)

	sum, err := store.Summarize()
	require.NoError(t, err)
	// noextension has no recognisable line and contributes no row; the
	// other two each contribute one, with PIDs 4242 and 99.
	require.Equal(t, int64(2), sum.TotalRows)
	require.Equal(t, int64(2), sum.DistinctPIDs)
}
