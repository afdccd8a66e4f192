package camera

import (
	"github.com/Carmen-Shannon/oxy-orbit/common"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithTarget sets the look-at/pivot point.
//
// Parameters:
//   - x: X coordinate of the target
//   - y: Y coordinate of the target
//   - z: Z coordinate of the target
//
// Returns:
//   - CameraControllerOption: functional option to set the target position
func WithTarget(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = mgl32.Vec3{x, y, z}
	}
}

// WithDistance sets the initial orbit radius (distance from target).
// The value is clamped to the distance bounds once all options are applied.
//
// Parameters:
//   - distance: distance from the orbit target
//
// Returns:
//   - CameraControllerOption: functional option to set the distance
func WithDistance(distance float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.distance = distance
	}
}

// WithDistanceBounds sets the minimum and maximum orbit radius.
// Swapped bounds are reordered; non-finite or non-positive bounds are ignored.
//
// Parameters:
//   - min: minimum zoom distance
//   - max: maximum zoom distance
//
// Returns:
//   - CameraControllerOption: functional option to set distance bounds
func WithDistanceBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if !finite(min, max) || min <= 0 {
			return
		}
		if min > max {
			min, max = max, min
		}
		cc.minDistance = min
		cc.maxDistance = max
	}
}

// WithYaw sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - yaw: horizontal angle in radians (0 = eye on +Z)
//
// Returns:
//   - CameraControllerOption: functional option to set the yaw
func WithYaw(yaw float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.yaw = yaw
	}
}

// WithPitch sets the initial vertical angle above the horizontal plane.
// The value is clamped to the pitch bound once all options are applied.
//
// Parameters:
//   - pitch: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - CameraControllerOption: functional option to set the pitch
func WithPitch(pitch float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.pitch = pitch
	}
}

// WithPitchEpsilon sets ε in the pitch bound π/2 - ε. ε is clamped to [1e-6, π/4] so the
// bound stays representable below π/2 in float32 and the pitch range never inverts.
// Non-finite values are ignored.
//
// Parameters:
//   - epsilon: margin kept from the poles, in radians
//
// Returns:
//   - CameraControllerOption: functional option to set the pitch margin
func WithPitchEpsilon(epsilon float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if !finite(epsilon) {
			return
		}
		cc.pitchEpsilon = common.Clamp(epsilon, minPitchEpsilon, maxPitchEpsilon)
	}
}

// WithControls selects the enabled interactions.
//
// Parameters:
//   - controls: e.g. ModeOrbit, ModeRotatePan
//
// Returns:
//   - CameraControllerOption: functional option to set the interaction mode
func WithControls(controls Controls) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.controls = controls
	}
}

// WithOrientation selects how rotation is accumulated.
//
// Parameters:
//   - representation: OrientationEuler or OrientationQuaternion
//
// Returns:
//   - CameraControllerOption: functional option to set the representation
func WithOrientation(representation Orientation) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.representation = representation
	}
}

// WithRotationSpeed sets the pointer drag rotation sensitivity.
//
// Parameters:
//   - speed: radians per pointer unit
//
// Returns:
//   - CameraControllerOption: functional option to set rotation speed
func WithRotationSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotationSpeed = speed
	}
}

// WithPanSpeed sets the pan sensitivity.
//
// Parameters:
//   - speed: world units per pointer unit
//
// Returns:
//   - CameraControllerOption: functional option to set pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}

// WithZoomSpeed sets the zoom sensitivity.
//
// Parameters:
//   - speed: world units per wheel unit
//
// Returns:
//   - CameraControllerOption: functional option to set zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}
