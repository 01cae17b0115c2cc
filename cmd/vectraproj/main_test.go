package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func requireSingleError(t *testing.T, stderr string) {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.True(t, strings.HasPrefix(lines[len(lines)-1], "Error: "), "stderr: %q", stderr)
	require.Equal(t, 1, strings.Count(stderr, "Error: "))
}

func TestRunTwoPointExample(t *testing.T) {
	in := `{"embeddings":[{"id":"a","embedding":[0.1,0.2,0.3]},{"id":"b","embedding":[0.4,0.5,0.6]}],"n_components":2}`
	code, stdout, stderr := execute(t, in)
	require.Equal(t, 0, code, stderr)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 2)
	require.Equal(t, "a", results[0]["id"])
	require.Equal(t, "b", results[1]["id"])
	for _, r := range results {
		require.IsType(t, float64(0), r["x"])
		require.IsType(t, float64(0), r["y"])
		require.NotContains(t, r, "z")
	}
	require.Contains(t, stderr, "Projecting 2 embeddings from 3D to 2D")
}

func TestRunDefaultComponents(t *testing.T) {
	in := `{"n_epochs":20,"embeddings":[{"id":1,"embedding":[0,1]},{"id":2,"embedding":[1,0]},{"id":3,"embedding":[1,1]}]}`

	code, stdout, stderr := execute(t, in)
	require.Equal(t, 0, code, stderr)
	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Contains(t, results[0], "z")

	code, stdout, stderr = execute(t, in, "--2d")
	require.Equal(t, 0, code, stderr)
	results = nil
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.NotContains(t, results[0], "z")
	require.Equal(t, float64(1), results[0]["id"])
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{name: "empty input", stdin: ""},
		{name: "malformed json", stdin: `{"embeddings":[`},
		{name: "missing embeddings", stdin: `{"n_components":2}`},
		{name: "missing id", stdin: `{"embeddings":[{"embedding":[1,2]}]}`},
		{name: "missing embedding", stdin: `{"embeddings":[{"id":"a"}]}`},
		{name: "inconsistent lengths", stdin: `{"embeddings":[{"id":"a","embedding":[1,2]},{"id":"b","embedding":[1]}]}`},
		{name: "unknown metric", stdin: `{"metric":"hamming2","embeddings":[{"id":"a","embedding":[1,2]}]}`},
		{name: "unknown flag", args: []string{"--bogus"}},
		{name: "unexpected argument", args: []string{"input.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := execute(t, tt.stdin, tt.args...)
			require.Equal(t, 1, code)
			require.Empty(t, stdout)
			requireSingleError(t, stderr)
		})
	}
}

func TestRunMissingConfigFile(t *testing.T) {
	code, _, stderr := execute(t, "", "--config", "does-not-exist.yaml")
	require.Equal(t, 1, code)
	requireSingleError(t, stderr)
}

func TestSyncValidation(t *testing.T) {
	code, _, stderr := execute(t, "", "sync")
	require.Equal(t, 1, code)
	requireSingleError(t, stderr)

	code, _, stderr = execute(t, "", "sync", "--user", "not-a-uuid")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "invalid user id")

	t.Setenv("VECTRAPROJ_DATABASE_URL", "")
	code, _, stderr = execute(t, "", "sync", "--user", "2f1b8f0e-8a59-4c4f-9a4e-0d7c5f3b2a11")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "database.url is not configured")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := execute(t, "", "version", "-o", "short")
	require.Equal(t, 0, code)
	require.NotEmpty(t, strings.TrimSpace(stdout))

	code, stdout, _ = execute(t, "", "version", "-o", "json")
	require.Equal(t, 0, code)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	require.Contains(t, info, "gitVersion")

	code, _, stderr := execute(t, "", "version", "-o", "yaml")
	require.Equal(t, 1, code)
	requireSingleError(t, stderr)
}

type countingReader struct {
	reads int
}

func (r *countingReader) Read(p []byte) (int, error) {
	r.reads++
	return 0, errors.New("stdin must not be read")
}

func TestRunEngineUnavailable(t *testing.T) {
	saved := engineCheck
	engineCheck = func() error { return errors.New("self-check diverged") }
	t.Cleanup(func() { engineCheck = saved })

	stdin := &countingReader{}
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, stdin, &stdout, &stderr)

	require.Equal(t, 1, code)
	require.Empty(t, stdout.String())
	require.Zero(t, stdin.reads)
	requireSingleError(t, stderr.String())
	require.Contains(t, stderr.String(), "Error: projection engine unavailable: self-check diverged")
}

func TestRunIgnoresServerItemCap(t *testing.T) {
	t.Setenv("VECTRAPROJ_SERVER_MAX_ITEMS", "2")
	in := `{"n_epochs":20,"embeddings":[{"id":1,"embedding":[0,1]},{"id":2,"embedding":[1,0]},{"id":3,"embedding":[1,1]}]}`

	code, stdout, stderr := execute(t, in)
	require.Equal(t, 0, code, stderr)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 3)
}
