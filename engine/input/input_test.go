package input

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-orbit/common"
	"github.com/Carmen-Shannon/oxy-orbit/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	down   func(button common.MouseButton, x, y float32)
	up     func(button common.MouseButton, x, y float32)
	move   func(x, y float32)
	leave  func()
	scroll func(delta float32)
	key    func(keyCode uint32)
}

func (f *fakeSource) SetMouseDownCallback(cb func(button common.MouseButton, x, y float32)) {
	f.down = cb
}
func (f *fakeSource) SetMouseUpCallback(cb func(button common.MouseButton, x, y float32)) {
	f.up = cb
}
func (f *fakeSource) SetMouseMoveCallback(cb func(x, y float32)) { f.move = cb }
func (f *fakeSource) SetCursorLeaveCallback(cb func())          { f.leave = cb }
func (f *fakeSource) SetScrollCallback(cb func(delta float32))  { f.scroll = cb }
func (f *fakeSource) SetKeyDownCallback(cb func(keyCode uint32)) { f.key = cb }

func bound(t *testing.T) (*fakeSource, camera.Camera) {
	t.Helper()
	src := &fakeSource{}
	cam := camera.NewOrbitCamera(mgl32.Vec3{}, 800, 600)
	Bind(src, cam)
	require.NotNil(t, src.down)
	require.NotNil(t, src.move)
	return src, cam
}

func TestPrimaryDragRotates(t *testing.T) {
	src, cam := bound(t)
	ctrl := cam.Controller()
	yaw, pitch := ctrl.Yaw(), ctrl.Pitch()

	src.down(common.MouseButtonPrimary, 100, 100)
	src.move(110, 100)
	src.up(common.MouseButtonPrimary, 110, 100)

	assert.InDelta(t, yaw-10*ctrl.RotationSpeed(), ctrl.Yaw(), 1e-6)
	assert.Equal(t, pitch, ctrl.Pitch())
	assert.False(t, ctrl.Rotating())
	assert.Equal(t, ctrl.Position(), cam.Eye(), "view is refreshed on input")
}

func TestSecondaryDragPans(t *testing.T) {
	src, cam := bound(t)
	src.down(common.MouseButtonSecondary, 0, 0)
	src.move(20, 0)
	assert.NotEqual(t, mgl32.Vec3{}, cam.Controller().Target())
}

func TestCursorLeaveStopsDrag(t *testing.T) {
	src, cam := bound(t)
	src.down(common.MouseButtonPrimary, 0, 0)
	src.leave()
	yaw := cam.Controller().Yaw()

	src.move(50, 50)
	assert.Equal(t, yaw, cam.Controller().Yaw())
}

func TestScrollZoomsWithWheelConvention(t *testing.T) {
	src, cam := bound(t)
	d := cam.Controller().Distance()

	src.scroll(-1) // wheel down
	assert.Greater(t, cam.Controller().Distance(), d)

	src.scroll(1000)
	assert.Equal(t, cam.Controller().MinDistance(), cam.Controller().Distance())
}

func TestKeyRResets(t *testing.T) {
	src, cam := bound(t)
	view := cam.ViewMatrix()

	src.scroll(-4)
	src.key(common.KeySpace)
	assert.NotEqual(t, view, cam.ViewMatrix())

	src.key(common.KeyR)
	assert.True(t, view.ApproxEqualThreshold(cam.ViewMatrix(), 1e-5))
}

func TestUnbind(t *testing.T) {
	src, _ := bound(t)
	Unbind(src)
	assert.Nil(t, src.down)
	assert.Nil(t, src.up)
	assert.Nil(t, src.move)
	assert.Nil(t, src.leave)
	assert.Nil(t, src.scroll)
	assert.Nil(t, src.key)
}
