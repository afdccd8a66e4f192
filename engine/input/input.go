// Package input binds window events to a camera.
package input

import (
	"github.com/Carmen-Shannon/oxy-orbit/common"
	"github.com/Carmen-Shannon/oxy-orbit/engine/camera"
)

// EventSource is the subset of window.Window that delivers pointer and keyboard events.
type EventSource interface {
	SetMouseDownCallback(callback func(button common.MouseButton, x, y float32))
	SetMouseUpCallback(callback func(button common.MouseButton, x, y float32))
	SetMouseMoveCallback(callback func(x, y float32))
	SetCursorLeaveCallback(callback func())
	SetScrollCallback(callback func(delta float32))
	SetKeyDownCallback(callback func(keyCode uint32))
}

// Bind routes src's events to cam, replacing any callbacks previously set on src:
//   - button down / up begin and end a drag
//   - cursor leave ends every drag
//   - cursor movement drives rotation or panning
//   - the wheel zooms, wheel down (negative GLFW delta) moving the eye away
//   - R resets the camera to its initial view
//
// Parameters:
//   - src: the event source, usually the engine window
//   - cam: the camera to drive
func Bind(src EventSource, cam camera.Camera) {
	src.SetMouseDownCallback(func(button common.MouseButton, x, y float32) {
		cam.PointerMove(x, y)
		cam.BeginDrag(button)
	})
	src.SetMouseUpCallback(func(button common.MouseButton, _, _ float32) {
		cam.EndDrag(button)
	})
	src.SetMouseMoveCallback(cam.PointerMove)
	src.SetCursorLeaveCallback(cam.PointerLeave)
	src.SetScrollCallback(func(delta float32) {
		cam.Zoom(-delta)
	})
	src.SetKeyDownCallback(func(keyCode uint32) {
		if keyCode == common.KeyR {
			cam.Reset()
		}
	})
}

// Unbind clears every callback Bind installed on src.
//
// Parameters:
//   - src: the event source to detach
func Unbind(src EventSource) {
	src.SetMouseDownCallback(nil)
	src.SetMouseUpCallback(nil)
	src.SetMouseMoveCallback(nil)
	src.SetCursorLeaveCallback(nil)
	src.SetScrollCallback(nil)
	src.SetKeyDownCallback(nil)
}
