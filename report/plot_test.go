package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/beka-birhanu/vinom-evolve/evolution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func history() []evolution.GenerationStats {
	return []evolution.GenerationStats{
		{Generation: 1, Size: 10, Arrived: 0, AverageFitness: 0.1},
		{Generation: 2, Size: 10, Arrived: 2, AverageFitness: 0.3},
		{Generation: 3, Size: 10, Arrived: 6, AverageFitness: 0.7},
	}
}

func TestFitnessPlot(t *testing.T) {
	_, err := FitnessPlot(nil, "empty")
	assert.ErrorIs(t, err, ErrNoHistory)

	p, err := FitnessPlot(history(), "run")
	require.NoError(t, err)
	assert.Equal(t, "run", p.Title.Text)
	assert.Equal(t, 1.0, p.X.Min)
	assert.Equal(t, 3.0, p.X.Max)
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitness.png")
	require.NoError(t, SavePNG(history(), "run", path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, history(), "run"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	assert.ErrorIs(t, WritePNG(&buf, nil, "run"), ErrNoHistory)
}
