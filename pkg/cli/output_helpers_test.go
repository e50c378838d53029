package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		wantErr bool
	}{
		{name: "empty ok", output: "", wantErr: false},
		{name: "table ok", output: "table", wantErr: false},
		{name: "json ok", output: "json", wantErr: false},
		{name: "yaml rejected", output: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOutputFormat(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateProbeMethod(t *testing.T) {
	require.NoError(t, validateProbeMethod(""))
	require.NoError(t, validateProbeMethod("head"))
	require.NoError(t, validateProbeMethod("get"))
	require.Error(t, validateProbeMethod("options"))
}

func TestPrintTable_Basic(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"variable", "path"}, [][]string{
		{"FLNS", "s3://ncar-cesm-lens/a.nc"},
		{"SST", "s3://ncar-cesm-lens/b.nc"},
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 3, "expected header + 2 data rows")
	assert.Equal(t, "VARIABLE  PATH", lines[0])
	assert.Equal(t, "FLNS      s3://ncar-cesm-lens/a.nc", lines[1])
	assert.Equal(t, "SST       s3://ncar-cesm-lens/b.nc", lines[2])
}

func TestPrintTable_EmptyColumns(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{}, [][]string{{"a"}})
	assert.Empty(t, buf.String(), "empty columns should produce no output")
}

func TestPrintTable_EmptyRows(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"id", "value"}, nil)
	assert.Equal(t, "ID  VALUE\n", buf.String())
}

func TestPrintTable_ShortRow(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"a", "b"}, [][]string{{"1"}})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[1])
}

func TestFitWidths(t *testing.T) {
	widths := []int{10, 40, 5}
	fitWidths(widths, 40)
	assert.Equal(t, []int{10, 21, 5}, widths)

	widths = []int{30, 30}
	fitWidths(widths, 10)
	assert.Equal(t, []int{minColumnWidth, minColumnWidth}, widths, "columns never shrink below the minimum")

	widths = []int{100}
	fitWidths(widths, 0)
	assert.Equal(t, []int{100}, widths)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "s3://b...", truncate("s3://bucket/key.nc", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestTerminalWidthNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.Zero(t, terminalWidth(&buf))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]string{"hello": "world"}))

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "world", parsed["hello"])
	assert.Contains(t, buf.String(), "\n  ")

	buf.Reset()
	require.NoError(t, PrintJSON(&buf, nil))
	assert.Equal(t, "null\n", buf.String())
}

func TestPrintDetail(t *testing.T) {
	var buf bytes.Buffer
	PrintDetail(&buf, map[string]any{
		"id":           "cesm1-lens",
		"catalog_file": "cesm1-lens-netcdf.csv",
		"attributes":   []any{map[string]any{"column_name": "variable"}},
		"description":  nil,
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, `attributes:    [{"column_name":"variable"}]`, lines[0])
	assert.Equal(t, "catalog_file:  cesm1-lens-netcdf.csv", lines[1])
	assert.Equal(t, "description:", strings.TrimRight(lines[2], " "))
	assert.Equal(t, "id:            cesm1-lens", lines[3])
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "TS", "TS"},
		{"int", int64(42), "42"},
		{"float", 42.0, "42"},
		{"bool", true, "true"},
		{"time", ts, "2020-01-02T03:04:05Z"},
		{"map", map[string]any{"k": "v"}, `{"k":"v"}`},
		{"slice", []any{"a", "b"}, `["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.in))
		})
	}
}
