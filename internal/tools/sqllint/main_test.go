package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGo(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("package q\n\n"+body), 0o600))
}

func TestLinterFlagsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "a.go", "const QA = `--sql 0b0c6a55-6a4e-4b65-9f2c-1d3e5f7a9b01\nSELECT 1`\n")
	writeGo(t, dir, "b.go", "const QB = `--sql 0b0c6a55-6a4e-4b65-9f2c-1d3e5f7a9b01\nSELECT 2`\nconst QC = `SELECT 3`\nconst Label = \"plain text\"\n")

	l := newLinter()
	require.NoError(t, l.lintPath(dir))
	require.Len(t, l.violations, 2)

	byName := map[string]string{}
	for _, v := range l.violations {
		byName[v.name] = v.message
	}
	assert.Contains(t, byName["QB"], "already used")
	assert.Contains(t, byName["QC"], "missing")
}

func TestLinterSkipsUnderscoreDirsAndTests(t *testing.T) {
	dir := t.TempDir()
	hidden := filepath.Join(dir, "_examples")
	require.NoError(t, os.Mkdir(hidden, 0o755))
	writeGo(t, hidden, "x.go", "const Q = `SELECT 1`\n")
	writeGo(t, dir, "x_test.go", "const Q = `SELECT 1`\n")

	l := newLinter()
	require.NoError(t, l.lintPath(dir))
	assert.Empty(t, l.violations)
}
