package camera

import (
	"github.com/Carmen-Shannon/oxy-orbit/common"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraController defines the union interface for camera control systems.
// Controllers own positional state (target, distance, orientation). Camera reads from the
// controller and computes view/projection matrices. Embeds the orbit, planar and pointer
// interfaces so a single controller instance serves every interaction mode; the configured
// Controls decide which of them actually mutate state.
type CameraController interface {
	orbitCameraController
	planarCameraController
	pointerCameraController

	// Position returns the camera's world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space eye position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// SetTarget sets the look-at/pivot point and recomputes the eye position.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetTarget(x, y, z float32)

	// Zoom adds deltaY scaled by ZoomSpeed to the distance, clamped to the distance bounds.
	// Positive delta moves away from the target (wheel-down convention).
	// No-op unless ControlZoom is enabled.
	//
	// Parameters:
	//   - deltaY: signed wheel delta
	Zoom(deltaY float32)

	// Reset restores the target, distance and orientation the controller was built with
	// and clears interaction flags.
	Reset()

	// Controls returns the enabled interaction set.
	//
	// Returns:
	//   - Controls: the enabled interactions
	Controls() Controls
}

// orbitCameraController defines orbit-specific control methods.
type orbitCameraController interface {
	// Rotate converts screen-space pointer deltas into an orientation update.
	// Yaw decreases with dx, pitch increases with dy; pitch is clamped to
	// [-MaxPitch, MaxPitch] and the excess of dy is discarded.
	// No-op unless ControlRotate is enabled.
	//
	// Parameters:
	//   - dx, dy: pointer deltas in screen units
	Rotate(dx, dy float32)

	// Distance returns the current orbit radius.
	//
	// Returns:
	//   - float32: current distance from target
	Distance() float32

	// SetDistance sets the orbit radius directly, clamped to the distance bounds.
	//
	// Parameters:
	//   - distance: new distance from target
	SetDistance(distance float32)

	// MinDistance returns the minimum allowed orbit radius.
	//
	// Returns:
	//   - float32: minimum zoom distance
	MinDistance() float32

	// MaxDistance returns the maximum allowed orbit radius.
	//
	// Returns:
	//   - float32: maximum zoom distance
	MaxDistance() float32

	// Yaw returns the accumulated horizontal angle around +Y.
	//
	// Returns:
	//   - float32: yaw in radians
	Yaw() float32

	// Pitch returns the accumulated vertical angle above the XZ plane.
	//
	// Returns:
	//   - float32: pitch in radians, strictly inside (-π/2, π/2)
	Pitch() float32

	// MaxPitch returns the pitch clamp bound, π/2 - ε.
	//
	// Returns:
	//   - float32: the largest allowed |pitch|
	MaxPitch() float32

	// Orientation returns the current orientation as a unit quaternion. For the Euler
	// representation the quaternion is built from yaw and pitch on demand.
	//
	// Returns:
	//   - mgl32.Quat: orientation of the eye offset relative to +Z
	Orientation() mgl32.Quat

	// Representation returns how the orientation is accumulated.
	//
	// Returns:
	//   - Orientation: OrientationEuler or OrientationQuaternion
	Representation() Orientation

	// RotationSpeed returns the radians applied per pointer unit.
	//
	// Returns:
	//   - float32: rotation sensitivity
	RotationSpeed() float32

	// ZoomSpeed returns the distance applied per wheel unit.
	//
	// Returns:
	//   - float32: zoom sensitivity
	ZoomSpeed() float32
}

// planarCameraController defines target translation in the view plane.
type planarCameraController interface {
	// Pan translates the target along the view-plane right/up basis derived from the
	// current eye position. The eye follows since it is placed relative to the target.
	// No-op unless ControlPan is enabled, or when the basis is degenerate.
	//
	// Parameters:
	//   - dx, dy: pointer deltas in screen units
	Pan(dx, dy float32)

	// PanSpeed returns the world units applied per pointer unit.
	//
	// Returns:
	//   - float32: pan sensitivity
	PanSpeed() float32
}

// pointerCameraController turns raw pointer events into Rotate/Pan calls.
type pointerCameraController interface {
	// BeginDrag starts rotating for the primary button or panning for the secondary
	// button when the matching control is enabled. Other buttons are ignored.
	//
	// Parameters:
	//   - button: the pressed button
	BeginDrag(button common.MouseButton)

	// EndDrag clears every interaction flag regardless of which button was released.
	//
	// Parameters:
	//   - button: the released button
	EndDrag(button common.MouseButton)

	// PointerLeave clears every interaction flag. Must be called when the pointer
	// leaves the viewport so a release outside the window cannot leave a drag stuck.
	PointerLeave()

	// PointerMove feeds an absolute pointer position. The first call only records a
	// baseline; later calls apply the delta to the active drag. The last position is
	// always updated, even when no drag is active.
	//
	// Parameters:
	//   - x, y: pointer coordinates in window space
	PointerMove(x, y float32)

	// Rotating reports whether a rotate drag is active.
	//
	// Returns:
	//   - bool: rotate flag
	Rotating() bool

	// Panning reports whether a pan drag is active.
	//
	// Returns:
	//   - bool: pan flag
	Panning() bool
}
