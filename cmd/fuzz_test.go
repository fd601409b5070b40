package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geofuzz/internal/config"
)

func defaultFuzzConfig() config.FuzzConfig {
	return config.FuzzConfig{
		Radius:    0.01,
		LatCol:    0,
		LonCol:    1,
		Delimiter: ",",
	}
}

func writeInput(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(inPath, []byte(content), 0644))
	return inPath, filepath.Join(dir, "out.csv")
}

func TestRunFuzz_EndToEnd(t *testing.T) {
	inPath, outPath := writeInput(t, "40.0,-70.0\n41.0,-71.0\n")

	res, encName, err := runFuzz(inPath, outPath, defaultFuzzConfig(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.LinesFuzzed)
	assert.NotEmpty(t, encName)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 2)
		lat, err := strconv.ParseFloat(fields[0], 64)
		require.NoError(t, err)
		lon, err := strconv.ParseFloat(fields[1], 64)
		require.NoError(t, err)
		assert.InDelta(t, 40.5, lat, 0.6)
		assert.InDelta(t, -70.5, lon, 0.6)
	}
}

func TestRunFuzz_DeterministicUnderSeed(t *testing.T) {
	inPath, outPath := writeInput(t, "40.0,-70.0\n41.0,-71.0\n")
	outPath2 := filepath.Join(t.TempDir(), "out2.csv")

	_, _, err := runFuzz(inPath, outPath, defaultFuzzConfig(), 99)
	require.NoError(t, err)
	_, _, err = runFuzz(inPath, outPath2, defaultFuzzConfig(), 99)
	require.NoError(t, err)

	a, err := os.ReadFile(outPath)
	require.NoError(t, err)
	b, err := os.ReadFile(outPath2)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRunFuzz_HeaderSkipped(t *testing.T) {
	inPath, outPath := writeInput(t, "lat,lon\n40.0,-70.0\n")

	fc := defaultFuzzConfig()
	fc.Header = true

	res, _, err := runFuzz(inPath, outPath, fc, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.LinesFuzzed)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "lat,lon")
	assert.Len(t, strings.Split(strings.TrimRight(string(data), "\n"), "\n"), 1)
}

func TestRunFuzz_ShortLinePassesThrough(t *testing.T) {
	inPath, outPath := writeInput(t, "40.0\n")

	res, _, err := runFuzz(inPath, outPath, defaultFuzzConfig(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Warnings)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "40.0\n", string(data))
}

func TestRunFuzz_ExplicitEncoding(t *testing.T) {
	inPath, outPath := writeInput(t, "40.0,-70.0\n")

	fc := defaultFuzzConfig()
	fc.Encoding = "utf-8"

	_, encName, err := runFuzz(inPath, outPath, fc, 1)
	require.NoError(t, err)
	assert.Equal(t, "utf-8", encName)
}

func TestRunFuzz_UnknownEncoding(t *testing.T) {
	inPath, outPath := writeInput(t, "40.0,-70.0\n")

	fc := defaultFuzzConfig()
	fc.Encoding = "not-a-charset"

	_, _, err := runFuzz(inPath, outPath, fc, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown encoding")
}

func TestRunFuzz_MissingInput(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.csv")

	_, _, err := runFuzz("does-not-exist.csv", outPath, defaultFuzzConfig(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open input")
}

func TestRunFuzz_NegativeColumnIndex(t *testing.T) {
	inPath, outPath := writeInput(t, "40.0,-70.0\n")

	fc := defaultFuzzConfig()
	fc.LatCol = -1

	_, _, err := runFuzz(inPath, outPath, fc, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative")
}

func TestRunFuzz_OutputTruncatesExisting(t *testing.T) {
	inPath, outPath := writeInput(t, "40.0,-70.0\n")
	require.NoError(t, os.WriteFile(outPath, []byte("stale content from a previous run\nmore stale\n"), 0644))

	_, _, err := runFuzz(inPath, outPath, defaultFuzzConfig(), 1)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Len(t, strings.Split(strings.TrimRight(string(data), "\n"), "\n"), 1)
}
