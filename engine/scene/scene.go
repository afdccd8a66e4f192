package scene

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-orbit/engine/camera"
	"github.com/Carmen-Shannon/oxy-orbit/engine/mesh"
	"github.com/Carmen-Shannon/oxy-orbit/engine/renderer"
	"github.com/Carmen-Shannon/oxy-orbit/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-orbit/logging"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateObject is returned by Add when the name is already taken.
	ErrDuplicateObject = errors.New("object name already in scene")

	// ErrObjectNotFound is returned for operations on an unknown object name.
	ErrObjectNotFound = errors.New("object not found")
)

// Builder produces the CPU-side mesh of an object. Builders run concurrently during Load.
type Builder func() (*mesh.Mesh, error)

// Object is a snapshot of one scene object.
type Object struct {
	Name     string
	Model    mgl32.Mat4
	Topology mesh.Topology
	Loaded   bool
}

// object is a scene entry: its builder, model matrix and GPU mesh once loaded.
type object struct {
	name     string
	build    Builder
	model    mgl32.Mat4
	topology mesh.Topology
	gpu      *renderer.GPUMesh
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu     *sync.RWMutex
	logger *zap.Logger

	name   string
	active bool
	cam    camera.Camera
	shader shader.Shader

	objects []*object
	byName  map[string]*object

	// buildPool runs mesh builders in parallel during Load.
	buildPool    worker.DynamicWorkerPool
	buildWorkers int
}

// Scene is a named set of meshes drawn from one camera.
// Objects are added with a Builder, turned into GPU meshes by Load and drawn by Draw.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Active reports whether the engine should draw the scene.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive toggles whether the engine draws the scene.
	//
	// Parameters:
	//   - active: the new state
	SetActive(active bool)

	// Camera returns the camera the scene is drawn from.
	//
	// Returns:
	//   - camera.Camera: the scene camera
	Camera() camera.Camera

	// Shader returns the shader every object is drawn with.
	//
	// Returns:
	//   - shader.Shader: the scene shader
	Shader() shader.Shader

	// Add registers an object. Its mesh is built on the next Load.
	//
	// Parameters:
	//   - name: a unique object name
	//   - build: produces the object's mesh
	//   - model: the object's model matrix
	//
	// Returns:
	//   - error: ErrDuplicateObject if name is taken
	Add(name string, build Builder, model mgl32.Mat4) error

	// SetModel replaces an object's model matrix.
	//
	// Parameters:
	//   - name: the object name
	//   - model: the new model matrix
	//
	// Returns:
	//   - error: ErrObjectNotFound for an unknown name
	SetModel(name string, model mgl32.Mat4) error

	// Objects returns a snapshot of the objects in insertion order.
	//
	// Returns:
	//   - []Object: the objects
	Objects() []Object

	// Load builds the meshes of every object not yet loaded on the worker pool, validates
	// them, registers one pipeline per topology and uploads the meshes.
	// Objects that fail are left unloaded; their errors are joined in the result.
	//
	// Parameters:
	//   - r: the renderer to upload to
	//
	// Returns:
	//   - error: the joined build, validation and upload errors, or nil
	Load(r renderer.Renderer) error

	// Draw writes the camera uniform and encodes a draw for every loaded object.
	// Must be called between Renderer.BeginFrame and Renderer.EndFrame.
	//
	// Parameters:
	//   - r: the renderer the scene was loaded into
	//
	// Returns:
	//   - error: the joined draw errors, or nil
	Draw(r renderer.Renderer) error

	// Release frees the GPU meshes. Objects stay registered and can be loaded again.
	Release()
}

var _ Scene = &scene{}

// NewScene creates an empty Scene drawn from cam. Panics if cam is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to draw from (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
//   - error: if the default shader cannot be parsed
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) (Scene, error) {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:           &sync.RWMutex{},
		name:         name,
		active:       true,
		cam:          cam,
		byName:       make(map[string]*object),
		buildWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(s)
	}
	s.logger = logging.OrNop(s.logger).Named("scene").With(zap.String("scene", name))

	if s.shader == nil {
		basic, err := shader.NewBasicShader()
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", name, err)
		}
		s.shader = basic
	}

	// Workers idle out after a second, so the pool costs nothing between loads.
	s.buildPool = worker.NewDynamicWorkerPool(s.buildWorkers, 256, 1*time.Second)
	return s, nil
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Shader() shader.Shader {
	return s.shader
}

func (s *scene) Add(name string, build Builder, model mgl32.Mat4) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("%q: %w", name, ErrDuplicateObject)
	}
	obj := &object{name: name, build: build, model: model}
	s.objects = append(s.objects, obj)
	s.byName[name] = obj
	return nil
}

func (s *scene) SetModel(name string, model mgl32.Mat4) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrObjectNotFound)
	}
	obj.model = model
	return nil
}

func (s *scene) Objects() []Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Object, 0, len(s.objects))
	for _, obj := range s.objects {
		out = append(out, Object{
			Name:     obj.name,
			Model:    obj.model,
			Topology: obj.topology,
			Loaded:   obj.gpu != nil,
		})
	}
	return out
}

func (s *scene) Load(r renderer.Renderer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	var pending []*object
	for _, obj := range s.objects {
		if obj.gpu == nil {
			pending = append(pending, obj)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	meshes, errs := s.buildMeshes(pending)

	// GPU work stays on the calling goroutine.
	for i, obj := range pending {
		m := meshes[i]
		if m == nil {
			continue
		}
		key := PipelineKey(s.shader, m.Topology)
		if err := r.RegisterPipeline(key, s.shader, m.Topology); err != nil {
			errs = append(errs, fmt.Errorf("object %s: %w", obj.name, err))
			continue
		}
		g, err := r.UploadMesh(m)
		if err != nil {
			errs = append(errs, fmt.Errorf("object %s: %w", obj.name, err))
			continue
		}
		obj.gpu = g
		obj.topology = m.Topology
	}

	err := errors.Join(errs...)
	s.logger.Info("scene loaded",
		zap.Int("objects", len(pending)),
		zap.Int("failed", len(errs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		s.logger.Warn("scene load errors", zap.Error(err))
	}
	return err
}

// buildMeshes runs every builder on the build pool and validates the results.
// The returned slice is parallel to pending, with nil entries for failures.
// Caller must hold the mutex.
func (s *scene) buildMeshes(pending []*object) ([]*mesh.Mesh, []error) {
	meshes := make([]*mesh.Mesh, len(pending))
	errs := make([]error, len(pending))

	// The pool's own Wait blocks until workers idle out, so a WaitGroup is the barrier.
	var wg sync.WaitGroup
	for i, obj := range pending {
		wg.Add(1)
		s.buildPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				m, err := buildMesh(obj)
				meshes[i], errs[i] = m, err
				return m, err
			},
		})
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	return meshes, failed
}

// buildMesh runs one builder, recovering from panics so a bad builder cannot stall Load.
func buildMesh(obj *object) (m *mesh.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("object %s: builder panicked: %v", obj.name, r)
		}
	}()

	if obj.build == nil {
		return nil, fmt.Errorf("object %s: nil builder", obj.name)
	}
	m, err = obj.build()
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", obj.name, err)
	}
	if m == nil {
		return nil, fmt.Errorf("object %s: %w", obj.name, mesh.ErrEmptyMesh)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("object %s: %w", obj.name, err)
	}
	return m, nil
}

func (s *scene) Draw(r renderer.Renderer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r.WriteCamera(s.cam.Uniform())

	var errs []error
	for _, obj := range s.objects {
		if obj.gpu == nil {
			continue
		}
		if err := r.Draw(PipelineKey(s.shader, obj.topology), obj.gpu, obj.model); err != nil {
			errs = append(errs, fmt.Errorf("object %s: %w", obj.name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, obj := range s.objects {
		if obj.gpu != nil {
			obj.gpu.Release()
			obj.gpu = nil
		}
	}
}

// PipelineKey names the pipeline that draws topology with s.
//
// Parameters:
//   - s: the shader
//   - topology: the primitive topology
//
// Returns:
//   - string: the pipeline cache key
func PipelineKey(s shader.Shader, topology mesh.Topology) string {
	return s.Key() + "/" + topology.String()
}
