// Command orbitdemo opens a window with one of the preset scenes and an orbit camera
// driven by the mouse.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-orbit/common"
	"github.com/Carmen-Shannon/oxy-orbit/engine"
	"github.com/Carmen-Shannon/oxy-orbit/engine/camera"
	"github.com/Carmen-Shannon/oxy-orbit/engine/input"
	"github.com/Carmen-Shannon/oxy-orbit/engine/profiler"
	"github.com/Carmen-Shannon/oxy-orbit/engine/renderer"
	"github.com/Carmen-Shannon/oxy-orbit/engine/scene"
	"github.com/Carmen-Shannon/oxy-orbit/engine/window"
	"github.com/Carmen-Shannon/oxy-orbit/logging"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	scene       string
	title       string
	width       int
	height      int
	controls    camera.Controls
	orientation camera.Orientation
	profile     bool
	metricsAddr string
	dev         bool
	vsync       bool
}

func parseFlags(args []string) (config, error) {
	var (
		cfg         config
		mode        string
		orientation string
	)
	flags := flag.NewFlagSet("orbitdemo", flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: %s [options]\n", flags.Name())
		flags.PrintDefaults()
	}
	flags.StringVar(&cfg.scene, "scene", scene.PresetCube, fmt.Sprintf("Scene to show, one of %v", scene.Presets))
	flags.StringVar(&cfg.title, "title", "", "Window title (defaults to the scene name)")
	flags.IntVar(&cfg.width, "width", 800, "Window width in pixels")
	flags.IntVar(&cfg.height, "height", 600, "Window height in pixels")
	flags.StringVar(&mode, "mode", "orbit", "Camera mode: fixed, orbit or a +-joined list of rotate, pan, zoom")
	flags.StringVar(&orientation, "orientation", "euler", "Camera rotation storage: euler or quaternion")
	flags.BoolVar(&cfg.profile, "profile", false, "Log frame statistics every second")
	flags.StringVar(&cfg.metricsAddr, "metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	flags.BoolVar(&cfg.dev, "dev", false, "Development logging")
	flags.BoolVar(&cfg.vsync, "vsync", true, "Wait for vertical blank when presenting")
	if err := flags.Parse(args); err != nil {
		return cfg, err
	}

	var err error
	if cfg.controls, err = camera.ParseControls(mode); err != nil {
		return cfg, err
	}
	if cfg.orientation, err = camera.ParseOrientation(orientation); err != nil {
		return cfg, err
	}
	if cfg.width <= 0 || cfg.height <= 0 {
		return cfg, fmt.Errorf("invalid window size %dx%d", cfg.width, cfg.height)
	}
	cfg.title = common.Coalesce(cfg.title, "oxy-orbit: "+cfg.scene)
	return cfg, nil
}

func newMetricsRouter(gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	return r
}

func serveMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer) *http.Server {
	logger, ctx := logging.SubFrom(ctx, "metrics")
	server := &http.Server{
		Addr:              addr,
		Handler:           newMetricsRouter(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		logger.Info("Starting metrics server...", zap.String("bindAddr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return server
}

func run(cfg config) error {
	root := logging.New(cfg.dev)
	defer func() { _ = root.Sync() }()
	logger, ctx := logging.FromWithFields(logging.Context(context.Background(), root), zap.String("scene", cfg.scene))

	win, err := window.NewWindow(
		window.WithTitle(cfg.title),
		window.WithWidth(cfg.width),
		window.WithHeight(cfg.height),
		window.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer func() { _ = win.Close() }()

	presentMode := renderer.PresentModeUncapped
	if cfg.vsync {
		presentMode = renderer.PresentModeVSync
	}
	r, err := renderer.NewRenderer(win.SurfaceDescriptor(), win.Width(), win.Height(),
		renderer.WithPresentMode(presentMode),
		renderer.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer r.Release()

	cam := camera.NewCamera(
		camera.WithViewport(float32(win.Width()), float32(win.Height())),
		camera.WithDepthRange(camera.DepthRangeZeroToOne),
		camera.WithController(camera.NewCameraController(
			camera.WithTarget(0, 0, 0),
			camera.WithControls(cfg.controls),
			camera.WithOrientation(cfg.orientation),
		)),
	)

	s, err := scene.NewPreset(cfg.scene, cam, scene.WithLogger(logger))
	if err != nil {
		return err
	}
	defer s.Release()
	if err := s.Load(r); err != nil {
		return fmt.Errorf("load scene %s: %w", cfg.scene, err)
	}

	input.Bind(win, cam)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	p := profiler.NewProfiler(profiler.WithLogger(logger), profiler.WithRegisterer(registry))

	if cfg.metricsAddr != "" {
		server := serveMetrics(ctx, cfg.metricsAddr, registry)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
	}

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithScene(s),
		engine.WithProfiler(p),
		engine.WithProfiling(cfg.profile),
		engine.WithLogger(logger),
	)

	logging.From(ctx).Info("orbit demo started",
		zap.Stringer("controls", cfg.controls),
		zap.Stringer("orientation", cfg.orientation),
		zap.Stringer("presentMode", presentMode),
		zap.Any("eye", cam.Eye()),
	)
	e.Run()
	return nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
