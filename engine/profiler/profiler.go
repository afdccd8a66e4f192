package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-orbit/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Every frame is counted and timed; at each update interval the FPS and heap figures
// are logged and published to Prometheus.
//
// Not safe for concurrent use; call Tick from the render goroutine only.
type Profiler struct {
	logger *zap.Logger
	now    func() time.Time

	frameCount     int
	lastTime       time.Time
	lastFrame      time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastFPS        float64

	frames       prometheus.Counter
	fps          prometheus.Gauge
	frameSeconds prometheus.Histogram
	heapBytes    prometheus.Gauge
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second and the
// collectors register on prometheus.DefaultRegisterer unless WithRegisterer says otherwise.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
	}
	cfg := &profilerConfig{registerer: prometheus.DefaultRegisterer}
	for _, option := range options {
		option(p, cfg)
	}
	p.logger = logging.OrNop(p.logger).Named("profiler")

	factory := promauto.With(cfg.registerer)
	p.frames = factory.NewCounter(prometheus.CounterOpts{
		Name: "oxy_frames_total",
		Help: "Number of frames rendered.",
	})
	p.fps = factory.NewGauge(prometheus.GaugeOpts{
		Name: "oxy_fps",
		Help: "Frames per second over the last update interval.",
	})
	p.frameSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "oxy_frame_seconds",
		Help:    "Time between consecutive frames.",
		Buckets: []float64{0.001, 0.002, 0.004, 0.008, 0.0167, 0.033, 0.05, 0.1, 0.25},
	})
	p.heapBytes = factory.NewGauge(prometheus.GaugeOpts{
		Name: "oxy_heap_bytes",
		Help: "Bytes of allocated heap objects at the last update interval.",
	})

	p.lastTime = p.now()
	p.lastFrame = p.lastTime
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs and publishes statistics when the update interval has elapsed: FPS, heap usage,
// allocation rate, GC count and pause times, total memory.
//
// Returns:
//   - bool: true if stats were published this tick, false otherwise
func (p *Profiler) Tick() bool {
	currentTime := p.now()
	p.frameCount++
	p.frames.Inc()
	p.frameSeconds.Observe(currentTime.Sub(p.lastFrame).Seconds())
	p.lastFrame = currentTime

	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	p.lastFPS = fps
	p.fps.Set(fps)

	runtime.ReadMemStats(&p.memStats)
	p.heapBytes.Set(float64(p.memStats.Alloc))

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPause, maxPause time.Duration
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := time.Duration(p.memStats.PauseNs[i%256]); pause > maxPause {
				maxPause = pause
			}
		}
	}

	p.logger.Info("frame stats",
		zap.Float64("fps", fps),
		zap.Float64("heapMB", float64(p.memStats.Alloc)/1024/1024),
		zap.Float64("allocRateMBps", allocRateMB),
		zap.Uint32("gc", gcCount),
		zap.Duration("lastPause", lastPause),
		zap.Duration("maxPause", maxPause),
		zap.Float64("sysMB", float64(p.memStats.Sys)/1024/1024),
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// FPS returns the frame rate measured at the last update interval.
//
// Returns:
//   - float64: frames per second, 0 before the first interval
func (p *Profiler) FPS() float64 {
	return p.lastFPS
}
