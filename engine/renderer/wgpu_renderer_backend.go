package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-orbit/engine/mesh"
	"github.com/Carmen-Shannon/oxy-orbit/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount
	clearColor  wgpu.Color

	cameraLayout *wgpu.BindGroupLayout
	modelLayout  *wgpu.BindGroupLayout
	cameraBuffer *wgpu.Buffer
	cameraGroup  *wgpu.BindGroup

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	// ConfigureSurface (re)configures the swapchain and recreates the depth and MSAA targets.
	// Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - error: if a render target could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the colour the main pass clears to.
	//
	// Parameters:
	//   - color: the clear colour
	SetClearColor(color wgpu.Color)

	// CreateRenderPipeline builds a render pipeline for s using the shared camera and model
	// bind group layouts.
	//
	// Parameters:
	//   - s: a shader compatible with the shared layouts
	//   - topology: the primitive topology the pipeline assembles
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the created pipeline
	//   - error: if module, layout or pipeline creation fails
	CreateRenderPipeline(s shader.Shader, topology mesh.Topology) (*wgpu.RenderPipeline, error)

	// CreateMesh uploads a validated mesh and allocates its model uniform and bind group.
	//
	// Parameters:
	//   - m: the mesh to upload
	//
	// Returns:
	//   - *GPUMesh: the uploaded mesh
	//   - error: if buffer or bind group creation fails
	CreateMesh(m *mesh.Mesh) (*GPUMesh, error)

	// WriteCamera queues a write of the camera uniform block.
	//
	// Parameters:
	//   - data: the marshalled camera uniform
	WriteCamera(data []byte)

	// WriteModel queues a write of a mesh's model uniform block.
	//
	// Parameters:
	//   - g: the target mesh
	//   - data: the marshalled model uniform
	WriteModel(g *GPUMesh, data []byte)

	// BeginFrame acquires the swapchain texture and begins the main render pass.
	//
	// Returns:
	//   - error: if the swapchain texture or command encoder could not be acquired
	BeginFrame() error

	// DrawCall encodes one draw of g with pipeline p in the current render pass.
	//
	// Parameters:
	//   - p: the render pipeline
	//   - g: the mesh to draw
	DrawCall(p *wgpu.RenderPipeline, g *GPUMesh)

	// EndFrame ends the render pass and submits the command buffer.
	//
	// Returns:
	//   - error: if the command buffer could not be finished
	EndFrame() error

	// Present presents the acquired surface texture and releases it.
	Present()

	// Release frees every GPU object owned by the backend.
	Release()
}

var _ wgpuRendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, logger *zap.Logger) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		logger:      logger,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
		clearColor:  defaultClearColor,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	if err := b.initCamera(); err != nil {
		b.Release()
		return nil, err
	}

	b.logger.Debug("wgpu backend ready",
		zap.Bool("fallbackAdapter", forceFallbackAdapter),
		zap.Uint32("sampleCount", uint32(sampleCount)),
	)
	return b, nil
}

// initCamera creates the shared bind group layouts and the camera uniform bind group.
func (b *wgpuRendererBackendImpl) initCamera() error {
	cameraDesc := cameraLayoutDescriptor()
	cameraLayout, err := b.device.CreateBindGroupLayout(&cameraDesc)
	if err != nil {
		return fmt.Errorf("create camera bind group layout: %w", err)
	}
	b.cameraLayout = cameraLayout

	modelDesc := modelLayoutDescriptor()
	modelLayout, err := b.device.CreateBindGroupLayout(&modelDesc)
	if err != nil {
		return fmt.Errorf("create model bind group layout: %w", err)
	}
	b.modelLayout = modelLayout

	b.cameraBuffer, b.cameraGroup, err = b.createUniform("Camera", cameraUniformSize, cameraLayout)
	return err
}

// createUniform allocates a uniform buffer of size bytes and binds it at binding 0 of a
// bind group built from layout.
func (b *wgpuRendererBackendImpl) createUniform(label string, size uint64, layout *wgpu.BindGroupLayout) (*wgpu.Buffer, *wgpu.BindGroup, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Uniform Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s uniform buffer: %w", label, err)
	}

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		buf.Release()
		return nil, nil, fmt.Errorf("create %s bind group: %w", label, err)
	}
	return buf, group, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return nil
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseTargets()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		tex, view, err := b.createTarget("MSAA Texture", width, height, *b.surfaceFormat)
		if err != nil {
			return err
		}
		b.msaaTexture, b.msaaTextureView = tex, view
	}

	tex, view, err := b.createTarget("Depth Texture", width, height, wgpu.TextureFormatDepth24Plus)
	if err != nil {
		return err
	}
	b.depthTexture, b.depthTextureView = tex, view

	// With MSAA the pass draws into the MSAA texture and resolves into the swapchain
	// view; without it the swapchain view is the attachment. Either way the swapchain
	// view is filled in per frame.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.msaaTextureView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	b.logger.Debug("surface configured",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Uint32("format", uint32(*b.surfaceFormat)),
	)
	return nil
}

// createTarget creates a render attachment texture matching the backend's sample count.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createTarget(label string, width, height int, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   uint32(b.sampleCount),
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return tex, view, nil
}

// releaseTargets frees the MSAA and depth attachments.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode.wgpuPresentMode()
}

func (b *wgpuRendererBackendImpl) SetClearColor(color wgpu.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = color
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = color
	}
}

func (b *wgpuRendererBackendImpl) CreateRenderPipeline(s shader.Shader, topology mesh.Topology) (*wgpu.RenderPipeline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return nil, fmt.Errorf("pipeline %s: surface not configured", s.Key())
	}
	primitive, err := primitiveTopology(topology)
	if err != nil {
		return nil, err
	}

	module, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return nil, fmt.Errorf("create shader module %s: %w", s.Key(), err)
	}
	defer module.Release()

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.Key() + " Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.cameraLayout, b.modelLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout %s: %w", s.Key(), err)
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  s.Key() + " " + topology.String() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: s.VertexEntryPoint(),
			Buffers:    s.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: s.FragmentEntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  primitive,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline %s: %w", s.Key(), err)
	}
	return created, nil
}

func (b *wgpuRendererBackendImpl) CreateMesh(m *mesh.Mesh) (*GPUMesh, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g := &GPUMesh{
		name:      m.Name,
		topology:  m.Topology,
		drawCount: uint32(m.DrawCount()),
		indexed:   m.Indexed(),
	}

	vertexData := m.VertexBytes()
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.Name + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("mesh %s: create vertex buffer: %w", m.Name, err)
	}
	b.queue.WriteBuffer(buf, 0, vertexData)
	g.vertexBuffer = buf

	if g.indexed {
		indexData := m.IndexBytes()
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: m.Name + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			g.Release()
			return nil, fmt.Errorf("mesh %s: create index buffer: %w", m.Name, err)
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		g.indexBuffer = buf
	}

	g.modelBuffer, g.modelGroup, err = b.createUniform(m.Name+" Model", modelUniformSize, b.modelLayout)
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("mesh %s: %w", m.Name, err)
	}
	return g, nil
}

func (b *wgpuRendererBackendImpl) WriteCamera(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.WriteBuffer(b.cameraBuffer, 0, data)
}

func (b *wgpuRendererBackendImpl) WriteModel(g *GPUMesh, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g.modelBuffer == nil {
		return
	}
	b.queue.WriteBuffer(g.modelBuffer, 0, data)
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A held surface texture means the previous frame was never presented; acquiring
	// another one fails validation in wgpu-native.
	if b.frameSurface != nil {
		return ErrFrameInProgress
	}
	if b.renderPassDescriptor == nil {
		return fmt.Errorf("begin frame: surface not configured")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(p *wgpu.RenderPipeline, g *GPUMesh) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}

	b.framePass.SetPipeline(p)
	b.framePass.SetBindGroup(CameraBindGroup, b.cameraGroup, nil)
	b.framePass.SetBindGroup(ModelBindGroup, g.modelGroup, nil)
	b.framePass.SetVertexBuffer(0, g.vertexBuffer, 0, wgpu.WholeSize)
	if g.indexed {
		b.framePass.SetIndexBuffer(g.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(g.drawCount, 1, 0, 0, 0)
		return
	}
	b.framePass.Draw(g.drawCount, 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrame()
		return fmt.Errorf("finish command encoder: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrame()
}

// releaseFrame drops the swapchain view and texture of the current frame.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseFrame() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrame()
	b.releaseTargets()
	if b.cameraGroup != nil {
		b.cameraGroup.Release()
		b.cameraGroup = nil
	}
	if b.cameraBuffer != nil {
		b.cameraBuffer.Release()
		b.cameraBuffer = nil
	}
	if b.modelLayout != nil {
		b.modelLayout.Release()
		b.modelLayout = nil
	}
	if b.cameraLayout != nil {
		b.cameraLayout.Release()
		b.cameraLayout = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
