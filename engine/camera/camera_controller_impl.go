package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-orbit/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// minPitchEpsilon keeps π/2 - ε distinguishable from π/2 in float32.
	minPitchEpsilon = 1e-6
	// maxPitchEpsilon leaves at least ±π/4 of pitch.
	maxPitchEpsilon = math.Pi / 4

	// degenerateLength is the vector length below which a basis vector is considered zero.
	degenerateLength = 1e-8
)

var axisX = mgl32.Vec3{1, 0, 0}

// cameraControllerImpl is the single implementation of CameraController.
// The eye is always target + offset, where the offset lies on a sphere of radius distance
// and is derived from either yaw/pitch or the orientation quaternion.
type cameraControllerImpl struct {
	mu *sync.Mutex

	controls       Controls
	representation Orientation

	target   mgl32.Vec3
	position mgl32.Vec3

	distance    float32
	minDistance float32
	maxDistance float32

	// yaw and pitch are authoritative for OrientationEuler. For OrientationQuaternion they
	// track the accumulated angles so the pitch clamp can be applied exactly.
	yaw          float32
	pitch        float32
	pitchEpsilon float32
	orientation  mgl32.Quat

	rotationSpeed float32
	panSpeed      float32
	zoomSpeed     float32

	rotating       bool
	panning        bool
	lastPointer    mgl32.Vec2
	hasLastPointer bool

	initial controllerSnapshot
}

// controllerSnapshot holds the construction-time state restored by Reset.
type controllerSnapshot struct {
	target   mgl32.Vec3
	distance float32
	yaw      float32
	pitch    float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new orbit camera controller.
// Defaults: target at the origin, distance 15 within [0.3, 45], yaw 0.7, pitch 0.5,
// ε 1e-3, rotation speed 0.007, pan speed 0.01, zoom speed 0.5, every control enabled,
// Euler representation.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		controls:       ModeOrbit,
		representation: OrientationEuler,

		distance:    15.0,
		minDistance: 0.3,
		maxDistance: 45.0,

		yaw:          0.7,
		pitch:        0.5,
		pitchEpsilon: 1e-3,

		rotationSpeed: 0.007,
		panSpeed:      0.01,
		zoomSpeed:     0.5,
	}

	for _, option := range options {
		option(cc)
	}

	limit := cc.maxPitch()
	cc.pitch = common.Clamp(cc.pitch, -limit, limit)
	cc.distance = common.Clamp(cc.distance, cc.minDistance, cc.maxDistance)
	cc.orientation = orientationFromAngles(cc.yaw, cc.pitch)
	cc.initial = controllerSnapshot{
		target:   cc.target,
		distance: cc.distance,
		yaw:      cc.yaw,
		pitch:    cc.pitch,
	}

	cc.updatePosition()
	return cc
}

// --- internal helpers ---

// orientationFromAngles builds the quaternion that rotates +Z onto the yaw/pitch direction:
// pitch about X first, then yaw about world Y.
func orientationFromAngles(yaw, pitch float32) mgl32.Quat {
	return mgl32.QuatRotate(yaw, common.WorldUp).Mul(mgl32.QuatRotate(-pitch, axisX)).Normalize()
}

func finite(values ...float32) bool {
	for _, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// maxPitch returns π/2 - ε.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) maxPitch() float32 {
	return float32(math.Pi/2 - float64(cc.pitchEpsilon))
}

// updatePosition recomputes the eye position from target, distance and orientation.
// Must be called whenever any of them changes.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	var offset mgl32.Vec3
	switch cc.representation {
	case OrientationQuaternion:
		offset = cc.orientation.Rotate(mgl32.Vec3{0, 0, cc.distance})
	default:
		offset = common.SphericalToCartesian(cc.distance, cc.yaw, cc.pitch)
	}
	cc.position = cc.target.Add(offset)
}

// rotate applies a pointer delta to the orientation.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) rotate(dx, dy float32) {
	if !cc.controls.Has(ControlRotate) || !finite(dx, dy) {
		return
	}

	yawDelta := -dx * cc.rotationSpeed
	limit := cc.maxPitch()
	pitch := common.Clamp(cc.pitch+dy*cc.rotationSpeed, -limit, limit)
	pitchDelta := pitch - cc.pitch

	cc.yaw += yawDelta
	cc.pitch = pitch

	if cc.representation == OrientationQuaternion {
		// yaw about world up on the left, pitch about the local right axis on the right
		yawRot := mgl32.QuatRotate(yawDelta, common.WorldUp)
		pitchRot := mgl32.QuatRotate(-pitchDelta, axisX)
		cc.orientation = yawRot.Mul(cc.orientation).Mul(pitchRot).Normalize()
	}

	cc.updatePosition()
}

// pan moves the target in the current view plane.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) pan(dx, dy float32) {
	if !cc.controls.Has(ControlPan) || !finite(dx, dy) {
		return
	}

	forward := cc.target.Sub(cc.position)
	fLen := forward.Len()
	if fLen < degenerateLength {
		return
	}
	forward = forward.Mul(1 / fLen)

	right := forward.Cross(common.WorldUp)
	rLen := right.Len()
	if rLen < degenerateLength {
		return
	}
	right = right.Mul(1 / rLen)

	up := right.Cross(forward)

	cc.target = cc.target.
		Sub(right.Mul(dx * cc.panSpeed)).
		Add(up.Mul(dy * cc.panSpeed))
	cc.updatePosition()
}

// clearDrag resets every interaction flag.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) clearDrag() {
	cc.rotating = false
	cc.panning = false
}

// --- CameraController shared methods ---

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = mgl32.Vec3{x, y, z}
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(deltaY float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !cc.controls.Has(ControlZoom) || !finite(deltaY) {
		return
	}
	cc.distance = common.Clamp(cc.distance+deltaY*cc.zoomSpeed, cc.minDistance, cc.maxDistance)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Reset() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = cc.initial.target
	cc.distance = cc.initial.distance
	cc.yaw = cc.initial.yaw
	cc.pitch = cc.initial.pitch
	cc.orientation = orientationFromAngles(cc.yaw, cc.pitch)
	cc.clearDrag()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Controls() Controls {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.controls
}

// --- orbitCameraController implementation ---

func (cc *cameraControllerImpl) Rotate(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotate(dx, dy)
}

func (cc *cameraControllerImpl) Distance() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.distance
}

func (cc *cameraControllerImpl) SetDistance(distance float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !finite(distance) {
		return
	}
	cc.distance = common.Clamp(distance, cc.minDistance, cc.maxDistance)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) MinDistance() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minDistance
}

func (cc *cameraControllerImpl) MaxDistance() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxDistance
}

func (cc *cameraControllerImpl) Yaw() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.yaw
}

func (cc *cameraControllerImpl) Pitch() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pitch
}

func (cc *cameraControllerImpl) MaxPitch() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxPitch()
}

func (cc *cameraControllerImpl) Orientation() mgl32.Quat {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.representation == OrientationQuaternion {
		return cc.orientation
	}
	return orientationFromAngles(cc.yaw, cc.pitch)
}

func (cc *cameraControllerImpl) Representation() Orientation {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.representation
}

func (cc *cameraControllerImpl) RotationSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotationSpeed
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}

// --- planarCameraController implementation ---

func (cc *cameraControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pan(dx, dy)
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}

// --- pointerCameraController implementation ---

func (cc *cameraControllerImpl) BeginDrag(button common.MouseButton) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	switch button {
	case common.MouseButtonPrimary:
		if cc.controls.Has(ControlRotate) {
			cc.rotating = true
		}
	case common.MouseButtonSecondary:
		if cc.controls.Has(ControlPan) {
			cc.panning = true
		}
	}
}

func (cc *cameraControllerImpl) EndDrag(_ common.MouseButton) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.clearDrag()
}

func (cc *cameraControllerImpl) PointerLeave() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.clearDrag()
}

func (cc *cameraControllerImpl) PointerMove(x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !finite(x, y) {
		return
	}

	p := mgl32.Vec2{x, y}
	if !cc.hasLastPointer {
		cc.lastPointer = p
		cc.hasLastPointer = true
		return
	}

	d := p.Sub(cc.lastPointer)
	if cc.rotating {
		cc.rotate(d[0], d[1])
	}
	if cc.panning {
		cc.pan(d[0], d[1])
	}
	cc.lastPointer = p
}

func (cc *cameraControllerImpl) Rotating() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotating
}

func (cc *cameraControllerImpl) Panning() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panning
}
