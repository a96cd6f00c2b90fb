// Package duckstore is the database façade: it owns (or borrows) a
// DuckDB instance, hands out per-worker connections, and bulk-loads
// syscall records through DuckDB's native Appender.
//
// A Handle wraps one connection plus an optional append session. The
// coordinator's Handle, created by Open, owns the underlying *sql.DB and
// closes it on Close; worker handles, created by ConnectTo, own only
// their connection. This mirrors the source's owns_db flag (spec.md §9):
// a worker closing its Handle must never take the shared instance down
// with it.
package duckstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/hashicorp/go-multierror"

	"github.com/Omegaice/strace-to-duckdb/internal/record"
)

// Table is the name of the single table this façade writes to.
const Table = "syscalls"

const schemaDDL = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	trace_file VARCHAR,
	pid INTEGER,
	timestamp VARCHAR,
	syscall VARCHAR,
	args TEXT,
	return_value BIGINT,
	error_code VARCHAR,
	error_message VARCHAR,
	duration DOUBLE,
	unfinished BOOLEAN DEFAULT FALSE,
	resumed BOOLEAN DEFAULT FALSE
)`

var indexDDL = [...]string{
	`CREATE INDEX IF NOT EXISTS idx_syscalls_syscall ON ` + Table + ` (syscall)`,
	`CREATE INDEX IF NOT EXISTS idx_syscalls_pid ON ` + Table + ` (pid)`,
	`CREATE INDEX IF NOT EXISTS idx_syscalls_error_code ON ` + Table + ` (error_code)`,
	`CREATE INDEX IF NOT EXISTS idx_syscalls_trace_file ON ` + Table + ` (trace_file)`,
}

// Handle is one connection onto a (possibly shared) DuckDB instance,
// plus that connection's own bulk-append session.
type Handle struct {
	db       *sql.DB
	conn     *sql.Conn
	owner    bool
	appender *duckdb.Appender
}

// Open creates (or opens) the DuckDB instance at path, creates the
// schema idempotently, and returns the owning Handle. path may be
// ":memory:" or a filesystem path.
func Open(path string) (*Handle, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging duckdb %q: %w", path, err)
	}

	conn, err := db.Conn(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening connection: %w", err)
	}

	h := &Handle{db: db, conn: conn, owner: true}
	if err := h.ensureSchema(); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}
	return h, nil
}

// ConnectTo opens an additional connection on coordinator's shared
// instance. The returned Handle is not an owner: closing it never
// closes the underlying instance.
func ConnectTo(coordinator *Handle) (*Handle, error) {
	conn, err := coordinator.db.Conn(context.Background())
	if err != nil {
		return nil, fmt.Errorf("opening worker connection: %w", err)
	}
	return &Handle{db: coordinator.db, conn: conn, owner: false}, nil
}

func (h *Handle) ensureSchema() error {
	if _, err := h.conn.ExecContext(context.Background(), schemaDDL); err != nil {
		return &Error{Query: schemaDDL, Err: "creating schema", OrigErr: err}
	}
	for _, ddl := range indexDDL {
		if _, err := h.conn.ExecContext(context.Background(), ddl); err != nil {
			return &Error{Query: ddl, Err: "creating index", OrigErr: err}
		}
	}
	return nil
}

// BeginAppend opens a bulk-append session bound to the syscalls table.
// It is idempotent: any session already active on this Handle is ended
// first (Active -> None -> Active).
func (h *Handle) BeginAppend() error {
	if h.appender != nil {
		if err := h.EndAppend(); err != nil {
			return err
		}
	}

	var appender *duckdb.Appender
	err := h.conn.Raw(func(driverConn any) error {
		rawConn, ok := driverConn.(driver.Conn)
		if !ok {
			return fmt.Errorf("duckdb driver connection does not support raw access")
		}
		a, err := duckdb.NewAppenderFromConn(rawConn, "", Table)
		if err != nil {
			return err
		}
		appender = a
		return nil
	})
	if err != nil {
		return &Error{Err: "opening append session", OrigErr: err}
	}
	h.appender = appender
	return nil
}

// Append emits one row. Columns are bound in schema order; a nil field
// is bound as SQL NULL.
func (h *Handle) Append(traceFile string, pid int32, rec *record.Record) error {
	if h.appender == nil {
		return ErrAppenderNotInitialized
	}

	row := []driver.Value{
		traceFile,
		pid,
		rec.Timestamp,
		rec.SyscallName,
		rec.Args,
		nullableInt64(rec.ReturnValue),
		nullableString(rec.ErrorCode),
		nullableString(rec.ErrorMessage),
		nullableFloat64(rec.DurationSecs),
		rec.Unfinished,
		rec.Resumed,
	}

	if err := h.appender.AppendRow(row...); err != nil {
		return &Error{Err: "append failed", OrigErr: err}
	}
	return nil
}

// EndAppend flushes and destroys the active session, if any. Safe to
// call when no session exists.
func (h *Handle) EndAppend() error {
	if h.appender == nil {
		return nil
	}

	var result error
	if err := h.appender.Flush(); err != nil {
		result = multierror.Append(result, fmt.Errorf("flushing appender: %w", err))
	}
	if err := h.appender.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing appender: %w", err))
	}
	h.appender = nil
	return result
}

// Close destroys any active session and disconnects. Only the owning
// Handle also closes the shared instance.
func (h *Handle) Close() error {
	var result error
	if err := h.EndAppend(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := h.conn.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing connection: %w", err))
	}
	if h.owner {
		if err := h.db.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing instance: %w", err))
		}
	}
	return result
}

// Summary holds the post-ingestion database-wide counts.
type Summary struct {
	TotalRows        int64
	DistinctSyscalls int64
	DistinctPIDs     int64
	FailedSyscalls   int64
}

// Summarize runs the four summary queries named in spec.md §4.3.
func (h *Handle) Summarize() (Summary, error) {
	var s Summary
	ctx := context.Background()

	row := h.conn.QueryRowContext(ctx, `SELECT count(*) FROM `+Table)
	if err := row.Scan(&s.TotalRows); err != nil {
		return Summary{}, &Error{Err: "counting rows", OrigErr: err}
	}

	row = h.conn.QueryRowContext(ctx, `SELECT count(DISTINCT syscall) FROM `+Table)
	if err := row.Scan(&s.DistinctSyscalls); err != nil {
		return Summary{}, &Error{Err: "counting distinct syscalls", OrigErr: err}
	}

	row = h.conn.QueryRowContext(ctx, `SELECT count(DISTINCT pid) FROM `+Table)
	if err := row.Scan(&s.DistinctPIDs); err != nil {
		return Summary{}, &Error{Err: "counting distinct pids", OrigErr: err}
	}

	row = h.conn.QueryRowContext(ctx, `SELECT count(*) FROM `+Table+` WHERE error_code IS NOT NULL`)
	if err := row.Scan(&s.FailedSyscalls); err != nil {
		return Summary{}, &Error{Err: "counting failed syscalls", OrigErr: err}
	}

	return s, nil
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat64(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
