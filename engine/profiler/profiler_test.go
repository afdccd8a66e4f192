package profiler

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestProfiler(t *testing.T) (*Profiler, *fakeClock, *prometheus.Registry, *observer.ObservedLogs) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	registry := prometheus.NewRegistry()
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewProfiler(
		WithClock(clock.now),
		WithRegisterer(registry),
		WithLogger(zap.New(core)),
	)
	return p, clock, registry, logs
}

func TestTickPublishesEveryInterval(t *testing.T) {
	p, clock, _, logs := newTestProfiler(t)

	for i := 0; i < 59; i++ {
		clock.advance(16 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	clock.advance(time.Second - 59*16*time.Millisecond)
	require.True(t, p.Tick())

	assert.InDelta(t, 60, p.FPS(), 1e-9)
	assert.InDelta(t, 60, testutil.ToFloat64(p.fps), 1e-9)
	assert.Equal(t, float64(60), testutil.ToFloat64(p.frames))
	assert.Greater(t, testutil.ToFloat64(p.heapBytes), float64(0))

	entries := logs.FilterMessage("frame stats").All()
	require.Len(t, entries, 1)
	assert.InDelta(t, 60, entries[0].ContextMap()["fps"], 1e-9)
}

func TestFrameCountResetsAfterInterval(t *testing.T) {
	p, clock, _, _ := newTestProfiler(t)

	clock.advance(time.Second)
	require.True(t, p.Tick())
	assert.InDelta(t, 1, p.FPS(), 1e-9)

	for i := 0; i < 25; i++ {
		clock.advance(40 * time.Millisecond)
		p.Tick()
	}
	assert.InDelta(t, 25, p.FPS(), 1e-9)
	assert.Equal(t, float64(26), testutil.ToFloat64(p.frames))
}

func TestCollectorsRegistered(t *testing.T) {
	p, clock, registry, _ := newTestProfiler(t)
	clock.advance(10 * time.Millisecond)
	p.Tick()

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{"oxy_frames_total", "oxy_fps", "oxy_frame_seconds", "oxy_heap_bytes"}, names)
	assert.Equal(t, 1, testutil.CollectAndCount(p.frameSeconds))
}

func TestUnregisteredProfiler(t *testing.T) {
	// Two profilers on nil registerers must not collide.
	NewProfiler(WithRegisterer(nil))
	p := NewProfiler(WithRegisterer(nil), WithInterval(time.Millisecond))
	assert.Equal(t, time.Millisecond, p.updateInterval)

	p = NewProfiler(WithRegisterer(nil), WithInterval(-time.Second))
	assert.Equal(t, time.Second, p.updateInterval)
}
