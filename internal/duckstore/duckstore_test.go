package duckstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Omegaice/strace-to-duckdb/internal/record"
)

func int64p(v int64) *int64       { return &v }
func strp(v string) *string       { return &v }
func float64p(v float64) *float64 { return &v }

func TestOpenCreatesSchema(t *testing.T) {
	h, err := Open(":memory:")
	require.NoError(t, err)
	defer h.Close()

	sum, err := h.Summarize()
	require.NoError(t, err)
	require.Equal(t, int64(0), sum.TotalRows)
}

func TestAppendRoundTrip(t *testing.T) {
	h, err := Open(":memory:")
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.BeginAppend())

	rec1 := &record.Record{
		Timestamp:   "22:21:11.675122",
		SyscallName: "set_robust_list",
		Args:        "0x7fa8e531c4a0, 24",
		ReturnValue: int64p(0),
		DurationSecs: float64p(0.000009),
	}
	rec2 := &record.Record{
		Timestamp:    "22:21:11.675759",
		SyscallName:  "access",
		Args:         `"/etc/ld-nix.so.preload", R_OK`,
		ReturnValue:  int64p(-1),
		ErrorCode:    strp("ENOENT"),
		ErrorMessage: strp("No such file or directory"),
		DurationSecs: float64p(0.000006),
	}

	require.NoError(t, h.Append("trace.1", 1, rec1))
	require.NoError(t, h.Append("trace.1", 1, rec2))
	require.NoError(t, h.EndAppend())

	sum, err := h.Summarize()
	require.NoError(t, err)
	require.Equal(t, int64(2), sum.TotalRows)
	require.Equal(t, int64(2), sum.DistinctSyscalls)
	require.Equal(t, int64(1), sum.DistinctPIDs)
	require.Equal(t, int64(1), sum.FailedSyscalls)
}

func TestAppendWithoutBeginFails(t *testing.T) {
	h, err := Open(":memory:")
	require.NoError(t, err)
	defer h.Close()

	err = h.Append("trace.1", 1, &record.Record{SyscallName: "getpid"})
	require.ErrorIs(t, err, ErrAppenderNotInitialized)
}

func TestBeginAppendIsIdempotent(t *testing.T) {
	h, err := Open(":memory:")
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.BeginAppend())
	require.NoError(t, h.Append("trace.1", 1, &record.Record{SyscallName: "getpid", ReturnValue: int64p(1)}))
	require.NoError(t, h.BeginAppend())
	require.NoError(t, h.Append("trace.1", 1, &record.Record{SyscallName: "getppid", ReturnValue: int64p(1)}))
	require.NoError(t, h.EndAppend())

	sum, err := h.Summarize()
	require.NoError(t, err)
	require.Equal(t, int64(2), sum.TotalRows)
}

func TestConnectToSharesInstanceButNotOwnership(t *testing.T) {
	coordinator, err := Open(":memory:")
	require.NoError(t, err)
	defer coordinator.Close()

	worker, err := ConnectTo(coordinator)
	require.NoError(t, err)

	require.NoError(t, worker.BeginAppend())
	require.NoError(t, worker.Append("trace.2", 2, &record.Record{SyscallName: "getpid", ReturnValue: int64p(1)}))
	require.NoError(t, worker.EndAppend())
	require.NoError(t, worker.Close())

	sum, err := coordinator.Summarize()
	require.NoError(t, err)
	require.Equal(t, int64(1), sum.TotalRows)
}

func TestErrorUnwrap(t *testing.T) {
	sentinel := ErrAppenderNotInitialized
	wrapped := &Error{Err: "boom", OrigErr: sentinel}
	require.ErrorIs(t, wrapped, sentinel)
}
