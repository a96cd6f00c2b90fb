// Package record defines the value type produced by the line parser and
// consumed by the database façade.
package record

// Record is one decoded strace line. String fields borrow from the line
// buffer the parser was given; callers must append or copy a Record
// before the next line is read into that buffer.
type Record struct {
	Timestamp    string
	SyscallName  string
	Args         string
	ReturnValue  *int64
	ErrorCode    *string
	ErrorMessage *string
	DurationSecs *float64
	Unfinished   bool
	Resumed      bool
}

// Complete reports whether r represents a finished, non-resumed call.
func (r *Record) Complete() bool {
	return !r.Unfinished && !r.Resumed
}
