package scene

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-orbit/engine/camera"
	"github.com/Carmen-Shannon/oxy-orbit/engine/mesh"
	"github.com/Carmen-Shannon/oxy-orbit/engine/renderer"
	"github.com/Carmen-Shannon/oxy-orbit/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawCall struct {
	key   string
	mesh  *renderer.GPUMesh
	model mgl32.Mat4
}

// fakeRenderer implements renderer.Renderer without a GPU.
type fakeRenderer struct {
	mu        sync.Mutex
	pipelines map[string]mesh.Topology
	uploads   []string
	camera    *camera.GPUCameraUniform
	draws     []drawCall
	drawErr   error
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{pipelines: make(map[string]mesh.Topology)}
}

func (f *fakeRenderer) Resize(width, height int) error { return nil }

func (f *fakeRenderer) RegisterPipeline(key string, s shader.Shader, topology mesh.Topology) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pipelines[key] = topology
	return nil
}

func (f *fakeRenderer) HasPipeline(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pipelines[key]
	return ok
}

func (f *fakeRenderer) UploadMesh(m *mesh.Mesh) (*renderer.GPUMesh, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, m.Name)
	return &renderer.GPUMesh{}, nil
}

func (f *fakeRenderer) WriteCamera(uniform camera.GPUCameraUniform) { f.camera = &uniform }

func (f *fakeRenderer) BeginFrame() error { return nil }

func (f *fakeRenderer) Draw(pipelineKey string, g *renderer.GPUMesh, model mgl32.Mat4) error {
	if f.drawErr != nil {
		return f.drawErr
	}
	f.draws = append(f.draws, drawCall{key: pipelineKey, mesh: g, model: model})
	return nil
}

func (f *fakeRenderer) EndFrame() error { return nil }
func (f *fakeRenderer) Present() {}
func (f *fakeRenderer) SetPresentMode(renderer.PresentMode) {}
func (f *fakeRenderer) SetClearColor(r, g, b, a float64) {}
func (f *fakeRenderer) Release() {}

func newTestScene(t *testing.T, options ...SceneBuilderOption) Scene {
	t.Helper()
	s, err := NewScene("test", camera.NewCamera(), append([]SceneBuilderOption{WithBuildWorkers(2)}, options...)...)
	require.NoError(t, err)
	return s
}

func TestNewSceneDefaults(t *testing.T) {
	s := newTestScene(t)
	assert.Equal(t, "test", s.Name())
	assert.True(t, s.Active())
	assert.Equal(t, "basic", s.Shader().Key())
	assert.Empty(t, s.Objects())

	s.SetActive(false)
	assert.False(t, s.Active())

	assert.Panics(t, func() { _, _ = NewScene("nil", nil) })
}

func TestAddRejectsDuplicates(t *testing.T) {
	s := newTestScene(t)
	require.NoError(t, s.Add("cube", cubeBuilder, mgl32.Ident4()))
	assert.ErrorIs(t, s.Add("cube", cubeBuilder, mgl32.Ident4()), ErrDuplicateObject)
	assert.Len(t, s.Objects(), 1)
}

func TestLoadBuildsAndUploads(t *testing.T) {
	s, err := GridScene(camera.NewCamera(), WithBuildWorkers(2))
	require.NoError(t, err)
	r := newFakeRenderer()

	require.NoError(t, s.Load(r))
	assert.ElementsMatch(t, []string{"grid", "cube"}, r.uploads)
	assert.Equal(t, mesh.TopologyLines, r.pipelines["basic/lines"])
	assert.Equal(t, mesh.TopologyTriangles, r.pipelines["basic/triangles"])

	objects := s.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, "grid", objects[0].Name)
	assert.Equal(t, mesh.TopologyLines, objects[0].Topology)
	assert.True(t, objects[0].Loaded)
	assert.True(t, objects[1].Loaded)

	// Loaded objects are not uploaded again.
	require.NoError(t, s.Load(r))
	assert.Len(t, r.uploads, 2)
}

func TestLoadReportsFailuresAndKeepsGoodObjects(t *testing.T) {
	s := newTestScene(t)
	boom := errors.New("boom")
	require.NoError(t, s.Add("bad", func() (*mesh.Mesh, error) { return nil, boom }, mgl32.Ident4()))
	require.NoError(t, s.Add("empty", func() (*mesh.Mesh, error) { return &mesh.Mesh{Name: "empty"}, nil }, mgl32.Ident4()))
	require.NoError(t, s.Add("panics", func() (*mesh.Mesh, error) { panic("builder bug") }, mgl32.Ident4()))
	require.NoError(t, s.Add("cube", cubeBuilder, mgl32.Ident4()))

	r := newFakeRenderer()
	err := s.Load(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, mesh.ErrEmptyMesh)
	assert.Contains(t, err.Error(), "builder panicked")
	assert.Equal(t, []string{"cube"}, r.uploads)

	loaded := map[string]bool{}
	for _, o := range s.Objects() {
		loaded[o.Name] = o.Loaded
	}
	assert.Equal(t, map[string]bool{"bad": false, "empty": false, "panics": false, "cube": true}, loaded)
}

func TestDrawWritesCameraAndDrawsLoadedObjects(t *testing.T) {
	cam := camera.NewCamera()
	s, err := CubeScene(cam, WithBuildWorkers(1))
	require.NoError(t, err)
	require.NoError(t, s.Add("later", cubeBuilder, mgl32.Translate3D(2, 0, 0)))
	r := newFakeRenderer()

	require.NoError(t, s.Draw(r))
	require.NotNil(t, r.camera)
	assert.Empty(t, r.draws, "nothing is drawn before Load")

	require.NoError(t, s.Load(r))
	require.NoError(t, s.Draw(r))
	require.Len(t, r.draws, 2)
	assert.Equal(t, "basic/triangles", r.draws[0].key)
	assert.Equal(t, cubeModel(), r.draws[0].model)
	assert.Equal(t, cam.Uniform(), *r.camera)

	require.NoError(t, s.SetModel("cube", mgl32.Ident4()))
	r.draws = nil
	require.NoError(t, s.Draw(r))
	assert.Equal(t, mgl32.Ident4(), r.draws[0].model)

	assert.ErrorIs(t, s.SetModel("missing", mgl32.Ident4()), ErrObjectNotFound)
}

func TestDrawJoinsErrors(t *testing.T) {
	s, err := CubeScene(camera.NewCamera())
	require.NoError(t, err)
	r := newFakeRenderer()
	require.NoError(t, s.Load(r))

	r.drawErr = renderer.ErrNoFrame
	assert.ErrorIs(t, s.Draw(r), renderer.ErrNoFrame)
}

func TestReleaseAllowsReload(t *testing.T) {
	s, err := CubeScene(camera.NewCamera())
	require.NoError(t, err)
	r := newFakeRenderer()
	require.NoError(t, s.Load(r))

	s.Release()
	assert.False(t, s.Objects()[0].Loaded)

	require.NoError(t, s.Load(r))
	assert.Len(t, r.uploads, 2)
}

func TestPresets(t *testing.T) {
	for _, name := range Presets {
		t.Run(name, func(t *testing.T) {
			s, err := NewPreset(name, camera.NewCamera())
			require.NoError(t, err)
			assert.Equal(t, name, s.Name())
			require.NoError(t, s.Load(newFakeRenderer()))
		})
	}

	_, err := NewPreset("teapot", camera.NewCamera())
	assert.Error(t, err)
}

func TestCubeModelTiltsAboutDiagonal(t *testing.T) {
	axis := mgl32.Vec3{1, -1, 0}.Normalize()
	// Points on the rotation axis stay put.
	assert.True(t, cubeModel().Mul4x1(axis.Vec4(1)).Vec3().ApproxEqualThreshold(axis, 1e-6))
}
