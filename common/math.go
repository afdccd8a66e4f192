package common

import (
	"cmp"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// WorldUp is the +Y axis used as the up vector by every camera in the engine.
var WorldUp = mgl32.Vec3{0, 1, 0}

// Clamp limits v to the closed range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound (inclusive)
//   - hi: upper bound (inclusive)
//
// Returns:
//   - T: v limited to [lo, hi]
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// SphericalToCartesian returns the offset from an orbit target to an eye placed on a sphere.
// Yaw 0 / pitch 0 looks down -Z from +Z; positive yaw swings the eye towards +X and
// positive pitch raises it towards +Y.
//
// Parameters:
//   - radius: sphere radius (distance from target)
//   - yaw: horizontal angle around +Y in radians
//   - pitch: vertical angle above the XZ plane in radians
//
// Returns:
//   - mgl32.Vec3: eye offset relative to the target
func SphericalToCartesian(radius, yaw, pitch float32) mgl32.Vec3 {
	sy, cy := math.Sincos(float64(yaw))
	sp, cp := math.Sincos(float64(pitch))
	return mgl32.Vec3{
		radius * float32(sy*cp),
		radius * float32(sp),
		radius * float32(cy*cp),
	}
}

// Perspective writes a right-handed perspective projection that maps view depth to the
// WebGPU clip range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	for i := range out[:16] {
		out[i] = 0
	}

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
}

// parallelEpsilon is the cross product length below which two unit vectors count as parallel.
const parallelEpsilon = 1e-4

// LookAt writes a view matrix for an eye looking at center, column-major.
// When up is parallel to the view direction, +Z (or +X if that is parallel too) is used
// as the up axis instead. eye == center produces zeroed axes instead of NaNs.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation (typically WorldUp)
func LookAt(out []float32, eye, center, up mgl32.Vec3) {
	z := eye.Sub(center)
	if l := z.Len(); l > 0 {
		z = z.Mul(1 / l)
	}

	x := up.Cross(z)
	for _, alt := range [...]mgl32.Vec3{{0, 0, 1}, {1, 0, 0}} {
		if x.Len() >= parallelEpsilon {
			break
		}
		x = alt.Cross(z)
	}
	if l := x.Len(); l > 0 {
		x = x.Mul(1 / l)
	}

	y := z.Cross(x)

	out[0], out[4], out[8], out[12] = x[0], x[1], x[2], -x.Dot(eye)
	out[1], out[5], out[9], out[13] = y[0], y[1], y[2], -y.Dot(eye)
	out[2], out[6], out[10], out[14] = z[0], z[1], z[2], -z.Dot(eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}
