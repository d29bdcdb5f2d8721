package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) string {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestBuildInspectVerifyRoundTrip(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "demo")

	out := runCLI(t, "build", "--prefix", prefix, "--streams", "2", "--count", "30")
	require.Contains(t, out, "wrote 30 records")

	out = runCLI(t, "inspect", "--prefix", prefix, "--streams", "2")
	require.Contains(t, out, "records: 30")
	require.Contains(t, out, "stream 0: 30/30 valid")
	require.Contains(t, out, "stream 1: 10/30 valid") // every third record, i=0,3,...,27

	out = runCLI(t, "verify", "--prefix", prefix, "--streams", "2")
	require.True(t, strings.HasPrefix(out, "ok: 30 records"))
}

func TestVerifyCatchesBadStreamCount(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "demo")
	runCLI(t, "build", "--prefix", prefix, "--streams", "1", "--count", "5")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"verify", "--prefix", prefix, "--streams", "3"})
	require.Error(t, rootCmd.Execute())
}
