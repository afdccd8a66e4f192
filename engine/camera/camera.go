package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-orbit/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov        float32
	aspect     float32
	near       float32
	far        float32
	depthRange DepthRange

	eye                  mgl32.Vec3
	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4

	controller CameraController
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and computes view/projection matrices from an
// attached CameraController. Input methods forward to the controller and refresh the view
// matrix before returning; changes made on the controller directly are picked up by Update.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// DepthRange returns the clip-space depth convention of the projection matrix.
	//
	// Returns:
	//   - DepthRange: the depth convention
	DepthRange() DepthRange

	// Eye returns the eye position used for the current view matrix.
	//
	// Returns:
	//   - mgl32.Vec3: world-space eye position
	Eye() mgl32.Vec3

	// ViewMatrix returns the most recently computed view matrix (column-major).
	// Never triggers recomputation.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the most recently computed projection matrix (column-major).
	// Never triggers recomputation.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined view-projection matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Uniform returns the GPU-ready camera block for the current matrices.
	//
	// Returns:
	//   - GPUCameraUniform: projection, view and eye position
	Uniform() GPUCameraUniform

	// Controller returns the attached CameraController.
	//
	// Returns:
	//   - CameraController: the attached controller
	Controller() CameraController

	// SetController attaches a CameraController and recomputes the view matrix.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// UpdateProjection recomputes the projection for a new viewport size. Orientation and
	// distance are untouched. Non-positive sizes (e.g. a minimised window) are ignored.
	//
	// Parameters:
	//   - width, height: viewport size in pixels
	UpdateProjection(width, height float32)

	// SetFov sets the vertical field of view in radians and recomputes the projection.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetClipPlanes sets the near and far plane distances and recomputes the projection.
	//
	// Parameters:
	//   - near: near plane distance
	//   - far: far plane distance
	SetClipPlanes(near, far float32)

	// Update re-reads eye and target from the controller and recomputes the view matrix.
	// Called once per frame by the engine.
	Update()

	// BeginDrag forwards to CameraController.BeginDrag.
	//
	// Parameters:
	//   - button: the pressed button
	BeginDrag(button common.MouseButton)

	// EndDrag forwards to CameraController.EndDrag.
	//
	// Parameters:
	//   - button: the released button
	EndDrag(button common.MouseButton)

	// PointerLeave forwards to CameraController.PointerLeave.
	PointerLeave()

	// PointerMove forwards to CameraController.PointerMove and refreshes the view.
	//
	// Parameters:
	//   - x, y: pointer coordinates in window space
	PointerMove(x, y float32)

	// Rotate forwards to CameraController.Rotate and refreshes the view.
	//
	// Parameters:
	//   - dx, dy: pointer deltas
	Rotate(dx, dy float32)

	// Pan forwards to CameraController.Pan and refreshes the view.
	//
	// Parameters:
	//   - dx, dy: pointer deltas
	Pan(dx, dy float32)

	// Zoom forwards to CameraController.Zoom and refreshes the view.
	//
	// Parameters:
	//   - deltaY: signed wheel delta, positive zooms out
	Zoom(deltaY float32)

	// Reset forwards to CameraController.Reset and refreshes the view.
	Reset()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera. Defaults: 45° vertical FOV, aspect 1, near 0.1,
// far 1000, up +Y, depth range [-1, 1] and a default CameraController when none is
// supplied.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     common.WorldUp,
		fov:    45.0 * (math.Pi / 180.0), // radians
		aspect: 1.0,
		near:   0.1,
		far:    1000.0,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewCameraController()
	}
	c.updateProjection()
	c.updateView()
	return c
}

// NewOrbitCamera creates a Camera looking at target for a viewport of width x height,
// with a controller built from controllerOptions.
//
// Parameters:
//   - target: the look-at point
//   - width, height: initial viewport size in pixels
//   - controllerOptions: options forwarded to NewCameraController
//
// Returns:
//   - Camera: the newly created camera
func NewOrbitCamera(target mgl32.Vec3, width, height float32, controllerOptions ...CameraControllerOption) Camera {
	opts := append([]CameraControllerOption{WithTarget(target[0], target[1], target[2])}, controllerOptions...)
	return NewCamera(
		WithViewport(width, height),
		WithController(NewCameraController(opts...)),
	)
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) DepthRange() DepthRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.depthRange
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		Projection: c.projectionMatrix,
		View:       c.viewMatrix,
		Eye:        c.eye,
	}
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateView()
}

func (c *cameraImpl) UpdateProjection(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = width / height
	c.updateProjection()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateProjection()
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
	c.updateProjection()
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateView()
}

func (c *cameraImpl) BeginDrag(button common.MouseButton) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller.BeginDrag(button)
}

func (c *cameraImpl) EndDrag(button common.MouseButton) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller.EndDrag(button)
}

func (c *cameraImpl) PointerLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller.PointerLeave()
}

func (c *cameraImpl) PointerMove(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller.PointerMove(x, y)
	c.updateView()
}

func (c *cameraImpl) Rotate(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller.Rotate(dx, dy)
	c.updateView()
}

func (c *cameraImpl) Pan(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller.Pan(dx, dy)
	c.updateView()
}

func (c *cameraImpl) Zoom(deltaY float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller.Zoom(deltaY)
	c.updateView()
}

func (c *cameraImpl) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller.Reset()
	c.updateView()
}

// updateProjection recalculates the projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	switch c.depthRange {
	case DepthRangeZeroToOne:
		common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	default:
		c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	}
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}

// updateView recalculates the view and view-projection matrices from the controller.
// Caller must hold the mutex.
func (c *cameraImpl) updateView() {
	if c.controller == nil {
		return
	}
	c.eye = c.controller.Position()
	common.LookAt(c.viewMatrix[:], c.eye, c.controller.Target(), c.up)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
