// Package transform drives the line-oriented fuzzing pass over a delimited
// text file: one record in, one record out, with per-line error recovery.
package transform

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geofuzz/internal/fuzz"
)

// maxLineSize bounds a single input line at 1 MiB.
const maxLineSize = 1024 * 1024

// Options configures one transformation pass. All fields are fixed for the
// duration of the run.
type Options struct {
	Delimiter  string  // field separator, default ","
	LatCol     int     // zero-based latitude column index
	LonCol     int     // zero-based longitude column index
	Radius     float64 // uncertainty radius in degrees
	SkipHeader bool    // discard the first line unconditionally
}

// Result summarizes a completed pass.
type Result struct {
	LinesRead   int // non-empty data lines consumed
	LinesFuzzed int // lines with coordinates replaced
	LinesPassed int // lines written through unmodified after a row failure
	LinesEmpty  int // empty lines dropped
	Warnings    int // structural diagnostics (insufficient columns)
	Errors      int // validation diagnostics (non-numeric, out of range)
}

// Run copies r to w line by line, fuzzing the configured coordinate columns.
// Row-level failures log a diagnostic and pass the original line through
// verbatim; only stream-level read/write errors abort the pass. Exactly one
// output line is written per non-empty input line after the header skip.
func Run(r io.Reader, w io.Writer, opts Options, fz *fuzz.Fuzzer, log *zap.Logger) (*Result, error) {
	if opts.Delimiter == "" {
		opts.Delimiter = ","
	}
	if log == nil {
		log = zap.NewNop()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	out := bufio.NewWriter(w)

	res := &Result{}

	if opts.SkipHeader && !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return res, eris.Wrap(err, "transform: read header")
		}
		return res, nil // empty input, nothing to write
	}

	maxCol := opts.LatCol
	if opts.LonCol > maxCol {
		maxCol = opts.LonCol
	}

	// Line numbers are 1-indexed and resume after the header skip so
	// diagnostics match the raw file position.
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			res.LinesEmpty++
			continue
		}
		res.LinesRead++

		fields := strings.Split(line, opts.Delimiter)
		if len(fields) <= maxCol {
			log.Warn("not enough columns, passing line through",
				zap.Int("line", lineNo),
				zap.Int("columns", len(fields)),
			)
			res.Warnings++
			res.LinesPassed++
			if err := writeLine(out, line); err != nil {
				return res, err
			}
			continue
		}

		lat, lon, err := fz.Fuzz(fields[opts.LatCol], fields[opts.LonCol], opts.Radius)
		if err != nil {
			log.Error("fuzz failed, passing line through",
				zap.Int("line", lineNo),
				zap.Error(err),
			)
			res.Errors++
			res.LinesPassed++
			if err := writeLine(out, line); err != nil {
				return res, err
			}
			continue
		}

		fields[opts.LatCol] = formatCoord(lat)
		fields[opts.LonCol] = formatCoord(lon)
		if err := writeLine(out, strings.Join(fields, opts.Delimiter)); err != nil {
			return res, err
		}
		res.LinesFuzzed++
	}
	if err := scanner.Err(); err != nil {
		return res, eris.Wrap(err, "transform: read input")
	}
	if err := out.Flush(); err != nil {
		return res, eris.Wrap(err, "transform: flush output")
	}

	return res, nil
}

// formatCoord renders a coordinate as the shortest decimal string that
// round-trips the float64 exactly, never scientific notation.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeLine(out *bufio.Writer, line string) error {
	if _, err := out.WriteString(line); err != nil {
		return eris.Wrap(err, "transform: write output")
	}
	if err := out.WriteByte('\n'); err != nil {
		return eris.Wrap(err, "transform: write output")
	}
	return nil
}
