package main

import (
	"context"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"github.com/sells-group/geofuzz/internal/config"
	"github.com/sells-group/geofuzz/internal/fuzz"
	"github.com/sells-group/geofuzz/internal/store"
	"github.com/sells-group/geofuzz/internal/textenc"
	"github.com/sells-group/geofuzz/internal/transform"
)

var fuzzCmd = &cobra.Command{
	Use:   "fuzz <input_file> <output_file>",
	Short: "Fuzz the coordinate columns of a delimited file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inPath, outPath := args[0], args[1]

		fc := cfg.Fuzz
		if cmd.Flags().Changed("radius") {
			fc.Radius, _ = cmd.Flags().GetFloat64("radius")
		}
		if cmd.Flags().Changed("lat-col") {
			fc.LatCol, _ = cmd.Flags().GetInt("lat-col")
		}
		if cmd.Flags().Changed("lon-col") {
			fc.LonCol, _ = cmd.Flags().GetInt("lon-col")
		}
		if cmd.Flags().Changed("delimiter") {
			fc.Delimiter, _ = cmd.Flags().GetString("delimiter")
		}
		if cmd.Flags().Changed("header") {
			fc.Header, _ = cmd.Flags().GetBool("header")
		}
		if cmd.Flags().Changed("encoding") {
			fc.Encoding, _ = cmd.Flags().GetString("encoding")
		}
		seed, _ := cmd.Flags().GetInt64("seed")

		res, encName, err := runFuzz(inPath, outPath, fc, seed)
		recordRun(ctx, inPath, outPath, encName, fc.Radius, res, err)
		if err != nil {
			return err
		}

		zap.L().Info("file processed",
			zap.String("input", inPath),
			zap.String("output", outPath),
			zap.String("encoding", encName),
			zap.Int("lines_read", res.LinesRead),
			zap.Int("lines_fuzzed", res.LinesFuzzed),
			zap.Int("lines_passed", res.LinesPassed),
			zap.Int("warnings", res.Warnings),
			zap.Int("errors", res.Errors),
		)
		return nil
	},
}

func init() {
	fuzzCmd.Flags().Float64("radius", 0.01, "radius of the uncertainty circle in degrees")
	fuzzCmd.Flags().Int("lat-col", 0, "zero-based column index for latitude")
	fuzzCmd.Flags().Int("lon-col", 1, "zero-based column index for longitude")
	fuzzCmd.Flags().String("delimiter", ",", "field delimiter used in the input file")
	fuzzCmd.Flags().Bool("header", false, "skip the first line as a header row")
	fuzzCmd.Flags().String("encoding", "", "input file encoding (default: auto-detect)")
	fuzzCmd.Flags().Int64("seed", 0, "random seed for reproducible output (0 = time-based)")
	rootCmd.AddCommand(fuzzCmd)
}

// runFuzz performs one full fuzzing pass over inPath into outPath and
// returns the pass summary and the encoding used for both streams.
func runFuzz(inPath, outPath string, fc config.FuzzConfig, seed int64) (*transform.Result, string, error) {
	if fc.LatCol < 0 || fc.LonCol < 0 {
		return nil, "", eris.New("fuzz: column indices must be non-negative")
	}

	in, err := os.Open(inPath)
	if err != nil {
		return nil, "", eris.Wrapf(err, "fuzz: open input %s", inPath)
	}
	defer in.Close()

	enc, encName, err := resolveEncoding(in, fc.Encoding)
	if err != nil {
		return nil, "", err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return nil, encName, eris.Wrapf(err, "fuzz: create output %s", outPath)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fz := fuzz.New(rand.New(rand.NewSource(seed)))

	opts := transform.Options{
		Delimiter:  fc.Delimiter,
		LatCol:     fc.LatCol,
		LonCol:     fc.LonCol,
		Radius:     fc.Radius,
		SkipHeader: fc.Header,
	}

	res, err := transform.Run(textenc.Reader(in, enc), textenc.Writer(out, enc), opts, fz, zap.L())
	if err != nil {
		out.Close()
		return res, encName, err
	}
	if err := out.Close(); err != nil {
		return res, encName, eris.Wrapf(err, "fuzz: close output %s", outPath)
	}

	return res, encName, nil
}

// resolveEncoding picks the encoding for both streams. An explicit label
// wins; otherwise the head of the input file is sniffed and the file is
// rewound before decoding starts.
func resolveEncoding(f *os.File, label string) (encoding.Encoding, string, error) {
	if label != "" {
		enc, err := textenc.Resolve(label)
		if err != nil {
			return nil, "", err
		}
		return enc, label, nil
	}

	head := make([]byte, textenc.SniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", eris.Wrap(err, "fuzz: sniff input")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", eris.Wrap(err, "fuzz: rewind input")
	}

	enc, name := textenc.Detect(head[:n])
	zap.L().Info("detected encoding", zap.String("encoding", name))
	return enc, name, nil
}

// recordRun persists the run outcome when a store is configured.
// Recording is best-effort: a store failure never fails the fuzz run.
func recordRun(ctx context.Context, inPath, outPath, encName string, radius float64, res *transform.Result, runErr error) {
	if cfg == nil || cfg.Store.Path == "" {
		return
	}

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		zap.L().Warn("run store unavailable", zap.Error(err))
		return
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("run store migrate failed", zap.Error(err))
		return
	}

	run := store.Run{
		InputFile:  inPath,
		OutputFile: outPath,
		Encoding:   encName,
		Radius:     radius,
		Status:     store.StatusComplete,
	}
	if runErr != nil {
		run.Status = store.StatusFailed
	}
	if res != nil {
		run.LinesRead = res.LinesRead
		run.LinesFuzzed = res.LinesFuzzed
		run.Warnings = res.Warnings
		run.Errors = res.Errors
	}

	if _, err := st.RecordRun(ctx, run); err != nil {
		zap.L().Warn("record run failed", zap.Error(err))
	}
}
