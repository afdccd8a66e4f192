package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-orbit/engine/camera"
	"github.com/Carmen-Shannon/oxy-orbit/engine/mesh"
	"github.com/Carmen-Shannon/oxy-orbit/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBackend records calls instead of touching a GPU.
type fakeBackend struct {
	configured  [][2]int
	presentMode *PresentMode
	clearColor  *wgpu.Color
	pipelines   int
	meshes      int
	camera      []byte
	models      map[*GPUMesh][]byte
	draws       []*GPUMesh
	begun       int
	ended       int
	presented   int
	released    bool
	beginErr    error
}

var _ RendererBackend = &fakeBackend{}

func (f *fakeBackend) ConfigureSurface(width, height int) error {
	f.configured = append(f.configured, [2]int{width, height})
	return nil
}

func (f *fakeBackend) SetPresentMode(mode PresentMode) { f.presentMode = &mode }

func (f *fakeBackend) SetClearColor(color wgpu.Color) { f.clearColor = &color }

func (f *fakeBackend) CreateRenderPipeline(s shader.Shader, topology mesh.Topology) (*wgpu.RenderPipeline, error) {
	f.pipelines++
	return nil, nil
}

func (f *fakeBackend) CreateMesh(m *mesh.Mesh) (*GPUMesh, error) {
	f.meshes++
	return &GPUMesh{
		name:      m.Name,
		topology:  m.Topology,
		drawCount: uint32(m.DrawCount()),
		indexed:   m.Indexed(),
	}, nil
}

func (f *fakeBackend) WriteCamera(data []byte) { f.camera = data }

func (f *fakeBackend) WriteModel(g *GPUMesh, data []byte) {
	if f.models == nil {
		f.models = make(map[*GPUMesh][]byte)
	}
	f.models[g] = data
}

func (f *fakeBackend) BeginFrame() error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.begun++
	return nil
}

func (f *fakeBackend) DrawCall(p *wgpu.RenderPipeline, g *GPUMesh) { f.draws = append(f.draws, g) }

func (f *fakeBackend) EndFrame() error {
	f.ended++
	return nil
}

func (f *fakeBackend) Present() { f.presented++ }

func (f *fakeBackend) Release() { f.released = true }

func newTestRenderer(b *fakeBackend, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		logger:        zap.NewNop(),
		pipelineCache: make(map[string]renderPipeline),
		backend:       b,
	}
	for _, opt := range options {
		opt(r)
	}
	r.applyPending()
	return r
}

func basicShader(t *testing.T) shader.Shader {
	t.Helper()
	s, err := shader.NewBasicShader()
	require.NoError(t, err)
	return s
}

func uploadCube(t *testing.T, r *renderer) *GPUMesh {
	t.Helper()
	cube, err := mesh.NewCube(1)
	require.NoError(t, err)
	g, err := r.UploadMesh(cube)
	require.NoError(t, err)
	return g
}

func TestFrameLifecycle(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)
	require.NoError(t, r.RegisterPipeline("basic", basicShader(t), mesh.TopologyTriangles))
	g := uploadCube(t, r)

	assert.ErrorIs(t, r.Draw("basic", g, mgl32.Ident4()), ErrNoFrame)
	assert.ErrorIs(t, r.EndFrame(), ErrNoFrame)

	require.NoError(t, r.BeginFrame())
	assert.ErrorIs(t, r.BeginFrame(), ErrFrameInProgress)
	require.NoError(t, r.Draw("basic", g, mgl32.Ident4()))
	require.NoError(t, r.EndFrame())
	r.Present()

	assert.Equal(t, 1, b.begun)
	assert.Equal(t, 1, b.ended)
	assert.Equal(t, 1, b.presented)
	assert.Equal(t, []*GPUMesh{g}, b.draws)

	require.NoError(t, r.BeginFrame(), "a new frame may begin after EndFrame")
}

func TestBeginFrameErrorLeavesNoFrameOpen(t *testing.T) {
	b := &fakeBackend{beginErr: errors.New("surface lost")}
	r := newTestRenderer(b)

	assert.EqualError(t, r.BeginFrame(), "surface lost")
	assert.ErrorIs(t, r.EndFrame(), ErrNoFrame)
}

func TestDrawValidatesPipeline(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)
	require.NoError(t, r.RegisterPipeline("lines", basicShader(t), mesh.TopologyLines))
	g := uploadCube(t, r)

	require.NoError(t, r.BeginFrame())
	assert.ErrorIs(t, r.Draw("missing", g, mgl32.Ident4()), ErrPipelineNotFound)
	assert.ErrorIs(t, r.Draw("lines", g, mgl32.Ident4()), mesh.ErrTopologyMismatch)
	assert.Empty(t, b.draws)
}

func TestDrawWritesModelUniform(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)
	require.NoError(t, r.RegisterPipeline("basic", basicShader(t), mesh.TopologyTriangles))
	g := uploadCube(t, r)

	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.Draw("basic", g, mgl32.Translate3D(1, 2, 3)))

	data := b.models[g]
	require.Len(t, data, 64)
	// Translation lives in the fourth column: elements 12..14.
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[48:])))
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(data[52:])))
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(data[56:])))
}

func TestRegisterPipeline(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)

	require.NoError(t, r.RegisterPipeline("basic", basicShader(t), mesh.TopologyTriangles))
	require.NoError(t, r.RegisterPipeline("basic", basicShader(t), mesh.TopologyTriangles))
	assert.Equal(t, 1, b.pipelines)
	assert.True(t, r.HasPipeline("basic"))
	assert.False(t, r.HasPipeline("other"))
}

func TestRegisterPipelineRejectsIncompatibleShader(t *testing.T) {
	src := `
//@oxy:include camera
//@oxy:include vertex
@group(0) @binding(0) var<uniform> camera: CameraUniform;

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return camera.projection * vec4<f32>(in.position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`
	s, err := shader.NewShader("camera-only", src)
	require.NoError(t, err)

	b := &fakeBackend{}
	r := newTestRenderer(b)
	assert.ErrorIs(t, r.RegisterPipeline("camera-only", s, mesh.TopologyTriangles), ErrIncompatibleShader)
	assert.Zero(t, b.pipelines)
	assert.False(t, r.HasPipeline("camera-only"))
}

func TestUploadMeshValidates(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)

	_, err := r.UploadMesh(&mesh.Mesh{Name: "empty"})
	assert.ErrorIs(t, err, mesh.ErrEmptyMesh)
	assert.Zero(t, b.meshes)

	plane, err := mesh.NewPlane(2, 2, 2, 2)
	require.NoError(t, err)
	g, err := r.UploadMesh(plane)
	require.NoError(t, err)
	assert.True(t, g.Indexed())
	assert.Equal(t, uint32(len(plane.Indices)), g.DrawCount())
	assert.Equal(t, mesh.TopologyTriangles, g.Topology())
}

func TestWriteCamera(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)
	cam := camera.NewCamera(camera.WithDepthRange(camera.DepthRangeZeroToOne))

	r.WriteCamera(cam.Uniform())
	assert.Len(t, b.camera, 144)
}

func TestOptionsReachBackend(t *testing.T) {
	b := &fakeBackend{}
	newTestRenderer(b, WithClearColor(0.1, 0.2, 0.3, 1), WithPresentMode(PresentModeVSync))

	require.NotNil(t, b.clearColor)
	assert.Equal(t, wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, *b.clearColor)
	require.NotNil(t, b.presentMode)
	assert.Equal(t, PresentModeVSync, *b.presentMode)

	b = &fakeBackend{}
	newTestRenderer(b)
	assert.Nil(t, b.clearColor, "the backend keeps its default clear colour")
}

func TestResizeIgnoresEmptySurface(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)

	require.NoError(t, r.Resize(0, 600))
	require.NoError(t, r.Resize(800, 600))
	assert.Equal(t, [][2]int{{800, 600}}, b.configured)
}

func TestReleaseClearsPipelines(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(b)
	require.NoError(t, r.RegisterPipeline("basic", basicShader(t), mesh.TopologyTriangles))

	r.Release()
	assert.True(t, b.released)
	assert.False(t, r.HasPipeline("basic"))
}

func TestLayoutDescriptors(t *testing.T) {
	cam := cameraLayoutDescriptor()
	require.Len(t, cam.Entries, 1)
	assert.Equal(t, uint64(144), cam.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, cam.Entries[0].Buffer.Type)

	model := modelLayoutDescriptor()
	require.Len(t, model.Entries, 1)
	assert.Equal(t, uint64(64), model.Entries[0].Buffer.MinBindingSize)
}

func TestPrimitiveTopology(t *testing.T) {
	p, err := primitiveTopology(mesh.TopologyTriangles)
	require.NoError(t, err)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p)

	p, err = primitiveTopology(mesh.TopologyLines)
	require.NoError(t, err)
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p)

	_, err = primitiveTopology(mesh.Topology(7))
	assert.Error(t, err)
}

func TestPresentModeMapping(t *testing.T) {
	assert.Equal(t, wgpu.PresentModeFifo, PresentModeVSync.wgpuPresentMode())
	assert.Equal(t, wgpu.PresentModeImmediate, PresentModeUncapped.wgpuPresentMode())
	assert.Equal(t, "vsync", PresentModeVSync.String())
	assert.True(t, MSAA4x.valid())
	assert.False(t, MSAASampleCount(3).valid())
}
