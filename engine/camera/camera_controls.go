package camera

import (
	"fmt"
	"strings"
)

// Controls is a bit set selecting which interactions a CameraController responds to.
// Disabled interactions are silently ignored.
type Controls uint8

const (
	// ControlRotate enables primary-button drag rotation around the target.
	ControlRotate Controls = 1 << iota
	// ControlPan enables secondary-button drag translation of the target.
	ControlPan
	// ControlZoom enables wheel zoom (distance changes).
	ControlZoom
)

// Named interaction modes.
const (
	ModeFixed      Controls = 0
	ModeRotateOnly          = ControlRotate
	ModeRotatePan           = ControlRotate | ControlPan
	ModeRotateZoom          = ControlRotate | ControlZoom
	ModeOrbit               = ControlRotate | ControlPan | ControlZoom
)

var modeNames = map[Controls]string{
	ModeFixed:      "fixed",
	ModeRotateOnly: "rotate",
	ModeRotatePan:  "rotate+pan",
	ModeRotateZoom: "rotate+zoom",
	ModeOrbit:      "orbit",
}

// Has reports whether every bit of flag is enabled.
//
// Parameters:
//   - flag: one or more Control bits
//
// Returns:
//   - bool: true if all bits in flag are set
func (c Controls) Has(flag Controls) bool {
	return c&flag == flag
}

func (c Controls) String() string {
	if name, ok := modeNames[c]; ok {
		return name
	}
	var parts []string
	if c.Has(ControlRotate) {
		parts = append(parts, "rotate")
	}
	if c.Has(ControlPan) {
		parts = append(parts, "pan")
	}
	if c.Has(ControlZoom) {
		parts = append(parts, "zoom")
	}
	return strings.Join(parts, "+")
}

// ParseControls parses a mode name ("fixed", "orbit") or a "+"-joined list of
// "rotate", "pan" and "zoom".
//
// Parameters:
//   - s: the textual mode
//
// Returns:
//   - Controls: the parsed bit set
//   - error: if s contains an unknown component
func ParseControls(s string) (Controls, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "fixed", "":
		return ModeFixed, nil
	case "orbit":
		return ModeOrbit, nil
	}
	var c Controls
	for _, part := range strings.Split(s, "+") {
		switch strings.TrimSpace(part) {
		case "rotate":
			c |= ControlRotate
		case "pan":
			c |= ControlPan
		case "zoom":
			c |= ControlZoom
		default:
			return 0, fmt.Errorf("unknown camera control %q in %q", part, s)
		}
	}
	return c, nil
}

// Orientation selects how a CameraController stores its accumulated rotation.
type Orientation int

const (
	// OrientationEuler stores yaw and pitch scalars.
	OrientationEuler Orientation = iota
	// OrientationQuaternion stores a unit quaternion composed from incremental rotations.
	OrientationQuaternion
)

func (o Orientation) String() string {
	switch o {
	case OrientationEuler:
		return "euler"
	case OrientationQuaternion:
		return "quaternion"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation parses "euler" or "quaternion" (also "quat").
//
// Parameters:
//   - s: the textual orientation
//
// Returns:
//   - Orientation: the parsed representation
//   - error: if s is not recognised
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euler", "yawpitch", "":
		return OrientationEuler, nil
	case "quaternion", "quat":
		return OrientationQuaternion, nil
	default:
		return 0, fmt.Errorf("unknown camera orientation %q", s)
	}
}

// DepthRange selects the clip-space depth convention of the projection matrix.
type DepthRange int

const (
	// DepthRangeNegativeOneToOne maps depth to [-1, 1] (OpenGL / WebGL).
	DepthRangeNegativeOneToOne DepthRange = iota
	// DepthRangeZeroToOne maps depth to [0, 1] (WebGPU / Vulkan / Metal).
	DepthRangeZeroToOne
)
