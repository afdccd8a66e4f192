package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-orbit/engine/camera"
	"github.com/Carmen-Shannon/oxy-orbit/engine/mesh"
	"github.com/Carmen-Shannon/oxy-orbit/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-orbit/logging"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	// ErrFrameInProgress is returned by BeginFrame while a frame is still open.
	ErrFrameInProgress = errors.New("frame already in progress")

	// ErrNoFrame is returned by Draw and EndFrame outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("no frame in progress")

	// ErrPipelineNotFound is returned by Draw for an unregistered pipeline key.
	ErrPipelineNotFound = errors.New("render pipeline not found")
)

// defaultClearColor is the dark blue the cube scene clears to.
var defaultClearColor = wgpu.Color{R: 0, G: 0, B: 0.5, A: 1}

// renderPipeline is a cached pipeline and the topology it was built for.
type renderPipeline struct {
	pipeline *wgpu.RenderPipeline
	topology mesh.Topology
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	pipelineCache map[string]renderPipeline

	backendType RendererBackendType
	backend     RendererBackend

	inFrame bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *wgpu.Color
}

// Renderer draws uploaded meshes with the camera uniform bound at CameraBindGroup and a
// per-mesh model uniform bound at ModelBindGroup.
//
// A frame is BeginFrame, any number of Draw calls, EndFrame, then Present.
type Renderer interface {
	// Resize reconfigures the surface for a new framebuffer size.
	// Non-positive sizes (a minimised window) are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: if the render targets could not be recreated
	Resize(width, height int) error

	// RegisterPipeline creates a pipeline for s and caches it under key.
	// Registering an existing key is a no-op.
	//
	// Parameters:
	//   - key: the unique identifier for the pipeline
	//   - s: a shader declaring the camera and model uniforms
	//   - topology: the primitive topology the pipeline assembles
	//
	// Returns:
	//   - error: ErrIncompatibleShader or a GPU creation error
	RegisterPipeline(key string, s shader.Shader, topology mesh.Topology) error

	// HasPipeline reports whether a pipeline is cached under key.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - bool: true if registered
	HasPipeline(key string) bool

	// UploadMesh validates m and uploads it to the GPU.
	//
	// Parameters:
	//   - m: the mesh to upload
	//
	// Returns:
	//   - *GPUMesh: the uploaded mesh; release it with GPUMesh.Release
	//   - error: a mesh validation error or a GPU creation error
	UploadMesh(m *mesh.Mesh) (*GPUMesh, error)

	// WriteCamera queues the camera uniform for the next submitted frame.
	//
	// Parameters:
	//   - uniform: projection, view and eye position
	WriteCamera(uniform camera.GPUCameraUniform)

	// BeginFrame acquires the swapchain texture and begins the main render pass.
	//
	// Returns:
	//   - error: ErrFrameInProgress, or an error acquiring the swapchain texture
	BeginFrame() error

	// Draw writes model into g's model uniform and encodes a draw with the pipeline
	// registered under pipelineKey.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline to draw with
	//   - g: the mesh to draw
	//   - model: the object's model matrix
	//
	// Returns:
	//   - error: ErrNoFrame, ErrPipelineNotFound or mesh.ErrTopologyMismatch
	Draw(pipelineKey string, g *GPUMesh, model mgl32.Mat4) error

	// EndFrame ends the render pass and submits the command buffer.
	// Does not present; call Present afterwards.
	//
	// Returns:
	//   - error: ErrNoFrame, or an error finishing the command buffer
	EndFrame() error

	// Present presents the surface and releases the swapchain texture.
	Present()

	// SetPresentMode sets the surface present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the colour the frame clears to.
	//
	// Parameters:
	//   - r, g, b, a: colour components in [0, 1]
	SetClearColor(r, g, b, a float64)

	// Release frees all pipelines and the backend. The renderer is unusable afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing to the surface described by surfaceDescriptor,
// which is typically obtained from Window.SurfaceDescriptor.
//
// Parameters:
//   - surfaceDescriptor: the platform-specific surface descriptor
//   - width: initial surface width in pixels
//   - height: initial surface height in pixels
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: if the adapter, device or surface could not be set up
func NewRenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]renderPipeline),
		backendType:   BackendTypeWGPU,
	}

	// Options first so flags like forceFallbackAdapter are known before the adapter request.
	for _, opt := range options {
		opt(r)
	}
	r.logger = logging.OrNop(r.logger).Named("renderer")

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}
	if !msaa.valid() {
		return nil, fmt.Errorf("invalid MSAA sample count %d", msaa)
	}

	switch r.backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend, err := newWGPURendererBackend(surfaceDescriptor, r.forceFallbackAdapter, msaa, r.logger)
		if err != nil {
			return nil, fmt.Errorf("create wgpu backend: %w", err)
		}
		r.backend = backend
	}

	r.applyPending()
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		r.backend.Release()
		return nil, err
	}

	r.logger.Info("renderer created",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Uint32("msaa", uint32(msaa)),
	)
	return r, nil
}

// applyPending pushes option values collected before the backend existed.
func (r *renderer) applyPending() {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	r.logger.Debug("resize", zap.Int("width", width), zap.Int("height", height))
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) RegisterPipeline(key string, s shader.Shader, topology mesh.Topology) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pipelineCache[key]; exists {
		return nil
	}
	if err := validateShaderLayout(s); err != nil {
		return err
	}
	p, err := r.backend.CreateRenderPipeline(s, topology)
	if err != nil {
		return err
	}
	r.pipelineCache[key] = renderPipeline{pipeline: p, topology: topology}
	r.logger.Debug("pipeline registered", zap.String("key", key), zap.Stringer("topology", topology))
	return nil
}

func (r *renderer) HasPipeline(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pipelineCache[key]
	return ok
}

func (r *renderer) UploadMesh(m *mesh.Mesh) (*GPUMesh, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	g, err := r.backend.CreateMesh(m)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("mesh uploaded",
		zap.String("mesh", m.Name),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("indices", len(m.Indices)),
	)
	return g, nil
}

func (r *renderer) WriteCamera(uniform camera.GPUCameraUniform) {
	r.backend.WriteCamera(uniform.Marshal())
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inFrame {
		return ErrFrameInProgress
	}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.inFrame = true
	return nil
}

func (r *renderer) Draw(pipelineKey string, g *GPUMesh, model mgl32.Mat4) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	p, exists := r.pipelineCache[pipelineKey]
	if !exists {
		return fmt.Errorf("%q: %w", pipelineKey, ErrPipelineNotFound)
	}
	if p.topology != g.Topology() {
		return fmt.Errorf("mesh %s is %s, pipeline %q draws %s: %w", g.Name(), g.Topology(), pipelineKey, p.topology, mesh.ErrTopologyMismatch)
	}

	uniform := mesh.NewGPUModelUniform(model)
	r.backend.WriteModel(g, uniform.Marshal())
	r.backend.DrawCall(p.pipeline, g)
	return nil
}

func (r *renderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	r.inFrame = false
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(red, green, blue, alpha float64) {
	r.backend.SetClearColor(wgpu.Color{R: red, G: green, B: blue, A: alpha})
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, p := range r.pipelineCache {
		if p.pipeline != nil {
			p.pipeline.Release()
		}
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
	r.logger.Debug("renderer released")
}
