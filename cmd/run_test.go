package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHeadless(t *testing.T) {
	plotPath := filepath.Join(t.TempDir(), "run.png")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"run", "--rows", "3", "--cols", "3", "--population", "4",
		"--generations", "2", "--seed", "9", "--quiet", "--show-maze",
		"--plot", plotPath,
	})
	require.NoError(t, rootCmd.Execute())

	text := out.String()
	assert.Contains(t, text, "###\n#E#\n###\n")
	assert.Contains(t, text, "generation 1")
	assert.Contains(t, text, "fitness plot written to "+plotPath)

	info, err := os.Stat(plotPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunRejectsBadShape(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"run", "--rows", "1", "--quiet"})
	assert.Error(t, rootCmd.Execute())
}
