package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-orbit/engine/camera"
	"github.com/Carmen-Shannon/oxy-orbit/engine/profiler"
	"github.com/Carmen-Shannon/oxy-orbit/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "cube", cfg.scene)
	assert.Equal(t, "oxy-orbit: cube", cfg.title)
	assert.Equal(t, 800, cfg.width)
	assert.Equal(t, 600, cfg.height)
	assert.Equal(t, camera.ModeOrbit, cfg.controls)
	assert.Equal(t, camera.OrientationEuler, cfg.orientation)
	assert.True(t, cfg.vsync)
	assert.Empty(t, cfg.metricsAddr)
}

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{
		"-scene", "grid",
		"-title", "demo",
		"-mode", "rotate+zoom",
		"-orientation", "quat",
		"-metrics", ":9090",
		"-vsync=false",
	})
	require.NoError(t, err)
	assert.Equal(t, "grid", cfg.scene)
	assert.Equal(t, "demo", cfg.title)
	assert.Equal(t, camera.ControlRotate|camera.ControlZoom, cfg.controls)
	assert.Equal(t, camera.OrientationQuaternion, cfg.orientation)
	assert.Equal(t, ":9090", cfg.metricsAddr)
	assert.False(t, cfg.vsync)
}

func TestParseFlagsRejectsBadInput(t *testing.T) {
	for _, args := range [][]string{
		{"-mode", "spin"},
		{"-orientation", "matrix"},
		{"-width", "0"},
	} {
		_, err := parseFlags(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestMetricsRouter(t *testing.T) {
	registry := prometheus.NewRegistry()
	p := profiler.NewProfiler(profiler.WithRegisterer(registry), profiler.WithInterval(time.Nanosecond))
	time.Sleep(time.Millisecond)
	p.Tick()

	server := httptest.NewServer(newMetricsRouter(registry))
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "oxy_frames_total 1")
	assert.Contains(t, string(body), "oxy_fps")

	resp, err = http.Post(server.URL+"/metrics", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServeMetricsUsesContextLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logging.Context(context.Background(), zap.New(core).With(zap.String("scene", "grid")))

	server := serveMetrics(ctx, "127.0.0.1:0", prometheus.NewRegistry())
	require.Eventually(t, func() bool {
		return logs.FilterMessage("Starting metrics server...").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	entry := logs.FilterMessage("Starting metrics server...").All()[0]
	assert.Equal(t, "metrics", entry.LoggerName)
	assert.Equal(t, "grid", entry.ContextMap()["scene"])

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(shutdownCtx))
}
