// Package fileproc drives one trace file through the parser and into a
// duckstore append session, in two passes: the first sizes the line
// buffer to the file's true longest line, the second parses and
// persists every line.
package fileproc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Omegaice/strace-to-duckdb/internal/duckstore"
	"github.com/Omegaice/strace-to-duckdb/internal/logging"
	"github.com/Omegaice/strace-to-duckdb/internal/parser"
	"github.com/Omegaice/strace-to-duckdb/internal/pidextract"
)

// MaxLineSize is the longest line, in bytes excluding its terminator, a
// file may contain: pass one rejects a longer line with LineTooLong, and
// pass two's line buffer is never sized past it. 10 MiB, per spec.md §4.4.
const MaxLineSize = 10 * 1024 * 1024

// scanScratch is the size of the throwaway buffer pass one reads
// through; it does not bound line length, only I/O chunking.
const scanScratch = 8 * 1024

const minBufferSize = 4096

// LineTooLong is a terminal, file-level error: the file has a line
// whose length, not counting its "\n" or "\r\n" terminator, exceeds
// MaxLineSize. A file that
// yields LineTooLong contributes zero records (spec.md §4.4).
type LineTooLong struct {
	Line int // 1-based index of the offending line
	Size int // observed size in bytes, always > MaxLineSize
}

func (e *LineTooLong) Error() string {
	return fmt.Sprintf("line %d exceeds the %d byte maximum (%d bytes)", e.Line, MaxLineSize, e.Size)
}

// Result tallies one file's contribution to the run.
type Result struct {
	Path        string
	TotalLines  int64
	ParsedLines int64
	FailedLines int64
}

// Process reads path twice: once to find the longest line (capped at
// MaxLineSize), once to parse every line and append it through store.
// A line the parser returns an error for, or whose append fails,
// contributes to FailedLines but does not stop the file; a line with no
// recognised shape counts only towards TotalLines. A LineTooLong found
// during the first pass aborts before any line of the file is parsed or
// appended.
func Process(path string, store *duckstore.Handle, log logging.Logger) (Result, error) {
	res := Result{Path: path}

	maxLen, err := scanMaxLineLength(path)
	if err != nil {
		return res, fmt.Errorf("scanning %s: %w", path, err)
	}

	bufSize := maxLen
	if bufSize < minBufferSize {
		bufSize = minBufferSize
	}
	if bufSize > MaxLineSize {
		bufSize = MaxLineSize
	}

	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	pid := pidextract.OrZero(path)

	// Pass one measured lines without their terminator; leave room for a
	// "\r\n" so a line exactly at MaxLineSize still fits.
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, bufSize+2), MaxLineSize+2)

	for scanner.Scan() {
		res.TotalLines++
		line := scanner.Text()

		rec, err := parser.ParseLine(line)
		if err != nil {
			res.FailedLines++
			if log != nil {
				log.Printf("%s:%d: %v\n", path, res.TotalLines, err)
			}
			continue
		}
		if rec == nil {
			if log != nil && log.Verbose() && strings.TrimSpace(line) != "" {
				if perr := parser.Diagnose(line); perr.Kind == parser.Malformed {
					log.Printf("%s:%d: %v\n", path, res.TotalLines, perr)
				}
			}
			continue
		}

		if err := store.Append(path, pid, rec); err != nil {
			res.FailedLines++
			continue
		}
		res.ParsedLines++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}

	return res, nil
}

// scanMaxLineLength returns the length, in bytes, of the longest line
// in path. It reads the file once using a small scratch buffer so pass
// one never allocates more than scanScratch regardless of how long
// individual lines are, and aborts with *LineTooLong the moment any
// line's span exceeds MaxLineSize — before pass 2 ever runs, so a file
// that fails here contributes zero parsed or appended rows.
func scanMaxLineLength(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, scanScratch)

	maxLen, curLen := 0, 0
	lineIdx := 0
	for {
		chunk, isPrefix, err := r.ReadLine()
		curLen += len(chunk)
		if curLen > MaxLineSize {
			return 0, &LineTooLong{Line: lineIdx + 1, Size: curLen}
		}
		if !isPrefix {
			lineIdx++
			if curLen > maxLen {
				maxLen = curLen
			}
			curLen = 0
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
	}
	return maxLen, nil
}
