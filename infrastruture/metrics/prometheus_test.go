package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	r := NewPrometheusRecorder()

	r.Ticks(5)
	r.Ticks(0)
	r.Ticks(-3)
	r.Generation(0.75, 0.2, 3)
	r.Generation(1.5, 0.4, 7)
	r.Solved()

	assert.Equal(t, 5.0, testutil.ToFloat64(r.ticks))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.generations))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.solves))
	assert.Equal(t, 1.5, testutil.ToFloat64(r.maxFitness))
	assert.Equal(t, 0.4, testutil.ToFloat64(r.averageFitness))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.arrived))
}

func TestHandler(t *testing.T) {
	r := NewPrometheusRecorder()
	r.Ticks(2)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "vinom_evolve_ticks_total 2")
	assert.Contains(t, string(body), "go_goroutines")
}
