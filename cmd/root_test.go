package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/margoviz/internal/ingest"
)

// execute runs a fresh command tree and returns stdout, stderr and the error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	rootCmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func golden(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func TestRenderFile(t *testing.T) {
	out, _, err := execute(t, "", filepath.Join("testdata", "bedrock.json"))
	require.NoError(t, err)
	assert.Equal(t, golden(t, "bedrock.dot"), out)
}

func TestRenderStdin(t *testing.T) {
	out, _, err := execute(t, golden(t, "bedrock.json"), "-")
	require.NoError(t, err)
	assert.Equal(t, golden(t, "bedrock.dot"), out)
}

func TestRenderYAML(t *testing.T) {
	out, _, err := execute(t, "", filepath.Join("testdata", "bedrock.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "subgraph cluster_pool0 {\n           label = \"p1 (1)\";")
	assert.Contains(t, out, "subgraph cluster_pool2 {\n           label = \"__primary__ (1)\";")
	assert.Contains(t, out, "   client_a -> p2;\n")
}

func TestRenderYAMLFromStdinWithFormatFlag(t *testing.T) {
	out, _, err := execute(t, golden(t, "bedrock.yaml"), "--format", "yaml", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "client_a -> p2;")
}

func TestRenderOptionsFromConfigFile(t *testing.T) {
	out, _, err := execute(t, "",
		"--config", filepath.Join("testdata", "margoviz.yaml"),
		filepath.Join("testdata", "bedrock.json"))
	require.NoError(t, err)

	assert.Contains(t, out, `label="Bedrock";`)
	assert.Contains(t, out, "              rpc_es_0;\n              ellipsis_pool1 [label=\"...\"];\n              rpc_es_5;\n")
}

func TestRenderOptionsFlagsOverrideConfig(t *testing.T) {
	out, _, err := execute(t, "",
		"--config", filepath.Join("testdata", "margoviz.yaml"),
		"--max-members", "10",
		"--cluster-label", "Flags",
		filepath.Join("testdata", "bedrock.json"))
	require.NoError(t, err)

	assert.Contains(t, out, `label="Flags";`)
	assert.NotContains(t, out, "ellipsis")
}

func TestRenderOptionsFromEnv(t *testing.T) {
	t.Setenv("MARGOVIZ_RENDER_CLUSTER_LABEL", "FromEnv")
	out, _, err := execute(t, "", filepath.Join("testdata", "bedrock.json"))
	require.NoError(t, err)
	assert.Contains(t, out, `label="FromEnv";`)
}

func TestPoolsCommand(t *testing.T) {
	out, _, err := execute(t, "", "pools", filepath.Join("testdata", "bedrock.json"))
	require.NoError(t, err)
	assert.Equal(t, `__primary__ __primary__
rpc_pool rpc_es_0 rpc_es_1 rpc_es_2 rpc_es_3 rpc_es_4 rpc_es_5
io_pool rpc_es_5 __stream_7__
`, out)
}

func TestPoolsCommandDefaultPool(t *testing.T) {
	doc := `{"margo": {"argobots": {"pools": [{"name": "p1"}], "xstreams": [{"name": "s1", "scheduler": {"pools": ["p1"]}}]}}}`
	out, _, err := execute(t, doc, "pools", "-")
	require.NoError(t, err)
	assert.Equal(t, "p1 s1\n__primary__ __primary__\n", out)
}

func TestVerboseLogsToStderr(t *testing.T) {
	doc := `{"margo": {"argobots": {"xstreams": [{"name": "s1", "scheduler": {"pools": ["missing"]}}]}}}`
	out, errOut, err := execute(t, doc, "--verbose", "-")
	require.NoError(t, err)

	assert.Contains(t, errOut, "dangling pool binding")
	assert.NotContains(t, out, "dangling")
	assert.True(t, strings.HasPrefix(out, "digraph pools {\n"))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr error
		message string
	}{
		{
			name:    "no arguments",
			wantErr: ErrUsage,
			message: "accepts 1 arg(s), received 0",
		},
		{
			name:    "too many arguments",
			args:    []string{"a.json", "b.json"},
			wantErr: ErrUsage,
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus", "a.json"},
			wantErr: ErrUsage,
		},
		{
			name:    "bad format",
			args:    []string{"--format", "toml", "-"},
			wantErr: ErrUsage,
		},
		{
			name:    "bad truncation",
			args:    []string{"--max-members", "1", "--head-members", "2", "-"},
			wantErr: ErrUsage,
		},
		{
			name:    "missing file",
			args:    []string{filepath.Join("testdata", "does-not-exist.json")},
			wantErr: ingest.ErrIO,
			message: "does-not-exist.json",
		},
		{
			name:    "missing config file",
			args:    []string{"--config", filepath.Join("testdata", "nope.yaml"), "-"},
			wantErr: ingest.ErrIO,
		},
		{
			name:    "malformed document",
			args:    []string{filepath.Join("testdata", "malformed.json")},
			wantErr: ingest.ErrMalformed,
		},
		{
			name:    "missing margo entity",
			args:    []string{filepath.Join("testdata", "no_margo.json")},
			wantErr: ingest.ErrMissingRoot,
			message: "no margo entity found",
		},
		{
			name:    "missing margo entity on stdin",
			stdin:   `{"providers": []}`,
			args:    []string{"pools", "-"},
			wantErr: ingest.ErrMissingRoot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.stdin, tt.args...)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
			assert.Empty(t, out, "no graph is written on failure")
		})
	}
}
