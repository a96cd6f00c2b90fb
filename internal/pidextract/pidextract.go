// Package pidextract derives a PID from a trace file's name.
package pidextract

import (
	"path/filepath"
	"strconv"
	"strings"
)

// FromFilename returns the PID encoded in path's basename as a trailing
// `.<digits>` suffix, and true if one was found. It returns (0, false)
// for a basename with no '.', a trailing empty suffix (e.g. "trace."),
// or a non-numeric suffix (e.g. "trace.abc"). A leading '-' is accepted,
// since the extractor does not validate that the value is a plausible
// PID (spec.md §9 notes strace PIDs are never negative, but leaves
// rejection optional).
func FromFilename(path string) (pid int32, ok bool) {
	base := filepath.Base(path)
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 || dot == len(base)-1 {
		return 0, false
	}
	suffix := base[dot+1:]

	v, err := strconv.ParseInt(suffix, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(v), true
}

// OrZero calls FromFilename and substitutes 0 when no PID is found, the
// convention the file processor uses when persisting a row.
func OrZero(path string) int32 {
	pid, ok := FromFilename(path)
	if !ok {
		return 0
	}
	return pid
}
