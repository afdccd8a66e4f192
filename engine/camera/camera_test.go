package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-orbit/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrbitCameraProjection(t *testing.T) {
	cam := NewOrbitCamera(mgl32.Vec3{}, 800, 600)

	assert.InDelta(t, 800.0/600.0, cam.Aspect(), 1e-6)
	expected := mgl32.Perspective(mgl32.DegToRad(45), 800.0/600.0, 0.1, 1000)
	assert.True(t, cam.ProjectionMatrix().ApproxEqualThreshold(expected, 1e-5))
	assert.Equal(t, DepthRangeNegativeOneToOne, cam.DepthRange())
}

func TestViewMatrixMatchesLookAt(t *testing.T) {
	cam := NewOrbitCamera(mgl32.Vec3{1, 2, 3}, 640, 480)
	ctrl := cam.Controller()

	expected := mgl32.LookAtV(ctrl.Position(), ctrl.Target(), common.WorldUp)
	assert.True(t, cam.ViewMatrix().ApproxEqualThreshold(expected, 1e-4),
		"got %v, want %v", cam.ViewMatrix(), expected)
	assert.Equal(t, ctrl.Position(), cam.Eye())
}

func TestViewMatrixIsIdempotent(t *testing.T) {
	cam := NewOrbitCamera(mgl32.Vec3{}, 640, 480)
	first := cam.ViewMatrix()
	second := cam.ViewMatrix()
	assert.Equal(t, first, second)

	cam.Update()
	assert.Equal(t, first, cam.ViewMatrix())
}

func TestUpdateProjectionKeepsOrientation(t *testing.T) {
	cam := NewOrbitCamera(mgl32.Vec3{}, 800, 600)
	view := cam.ViewMatrix()
	yaw := cam.Controller().Yaw()
	distance := cam.Controller().Distance()

	cam.UpdateProjection(1920, 1080)
	assert.InDelta(t, 1920.0/1080.0, cam.Aspect(), 1e-6)
	assert.Equal(t, view, cam.ViewMatrix())
	assert.Equal(t, yaw, cam.Controller().Yaw())
	assert.Equal(t, distance, cam.Controller().Distance())

	projection := cam.ProjectionMatrix()
	cam.UpdateProjection(0, 0)
	cam.UpdateProjection(-5, 100)
	assert.Equal(t, projection, cam.ProjectionMatrix(), "minimised viewport is ignored")
}

func TestInputRefreshesViewEagerly(t *testing.T) {
	cam := NewOrbitCamera(mgl32.Vec3{}, 800, 600)
	view := cam.ViewMatrix()

	cam.Zoom(10)
	assert.NotEqual(t, view, cam.ViewMatrix())
	assert.InDelta(t, 20, cam.Eye().Len(), 1e-4)

	view = cam.ViewMatrix()
	cam.BeginDrag(common.MouseButtonPrimary)
	cam.PointerMove(10, 10)
	cam.PointerMove(30, 10)
	cam.EndDrag(common.MouseButtonPrimary)
	assert.NotEqual(t, view, cam.ViewMatrix())
}

func TestUpdateReconcilesDirectControllerChanges(t *testing.T) {
	cam := NewOrbitCamera(mgl32.Vec3{}, 800, 600)
	view := cam.ViewMatrix()

	cam.Controller().Rotate(25, 0)
	assert.Equal(t, view, cam.ViewMatrix(), "reads never recompute")

	cam.Update()
	assert.NotEqual(t, view, cam.ViewMatrix())
	assert.Equal(t, cam.Controller().Position(), cam.Eye())
}

func TestResetRestoresView(t *testing.T) {
	cam := NewOrbitCamera(mgl32.Vec3{}, 800, 600)
	view := cam.ViewMatrix()

	cam.Rotate(40, 40)
	cam.Pan(10, 5)
	cam.Reset()
	assert.True(t, cam.ViewMatrix().ApproxEqualThreshold(view, 1e-5))
}

func TestDepthRangeZeroToOne(t *testing.T) {
	cam := NewCamera(WithDepthRange(DepthRangeZeroToOne), WithNear(0.5), WithFar(100))
	proj := cam.ProjectionMatrix()

	near := proj.Mul4x1(mgl32.Vec4{0, 0, -0.5, 1})
	far := proj.Mul4x1(mgl32.Vec4{0, 0, -100, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-5)

	gl := NewCamera(WithNear(0.5), WithFar(100)).ProjectionMatrix()
	glNear := gl.Mul4x1(mgl32.Vec4{0, 0, -0.5, 1})
	assert.InDelta(t, -1, glNear.Z()/glNear.W(), 1e-5)
}

func TestViewMatrixStaysInvertibleWhenUpIsParallel(t *testing.T) {
	ctrl := NewCameraController(WithYaw(0), WithPitch(0))
	dir := ctrl.Position().Sub(ctrl.Target()).Normalize()
	cam := NewCamera(WithController(ctrl), WithUp(dir[0], dir[1], dir[2]))

	view := cam.ViewMatrix()
	for i, v := range view {
		assert.False(t, math.IsNaN(float64(v)), "element %d", i)
	}
	assert.NotZero(t, view.Det())

	// The target still lands on the view axis in front of the eye.
	target := view.Mul4x1(ctrl.Target().Vec4(1))
	assert.InDelta(t, 0, target.X(), 1e-4)
	assert.InDelta(t, 0, target.Y(), 1e-4)
	assert.InDelta(t, -ctrl.Distance(), target.Z(), 1e-4)
}

func TestSetControllerRecomputesView(t *testing.T) {
	cam := NewCamera()
	ctrl := NewCameraController(WithTarget(5, 0, 0), WithDistance(3))
	cam.SetController(ctrl)
	assert.Equal(t, ctrl.Position(), cam.Eye())
}

func TestUniformMarshal(t *testing.T) {
	cam := NewOrbitCamera(mgl32.Vec3{}, 800, 600)
	uniform := cam.Uniform()

	buf := uniform.Marshal()
	require.Len(t, buf, 144)
	assert.Equal(t, 144, uniform.Size())

	eye := cam.Eye()
	for i := 0; i < 3; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[128+i*4:]))
		assert.Equal(t, eye[i], got)
	}
	view := cam.ViewMatrix()
	assert.Equal(t, view[12], math.Float32frombits(binary.LittleEndian.Uint32(buf[64+12*4:])))
	assert.Contains(t, GPUCameraUniformSource, "struct CameraUniform")
}
