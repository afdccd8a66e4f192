package scene

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-orbit/engine/camera"
	"github.com/Carmen-Shannon/oxy-orbit/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// Preset names accepted by NewPreset.
const (
	PresetCube  = "cube"
	PresetPlane = "plane"
	PresetGrid  = "grid"
)

// Presets lists the preset names in display order.
var Presets = []string{PresetCube, PresetPlane, PresetGrid}

// GridDimensions is the number of cells per side of the preset grid.
const GridDimensions = 20

// cubeModel tilts the cube π/4 about (1, -1, 0) so three faces face the default camera.
func cubeModel() mgl32.Mat4 {
	axis := mgl32.Vec3{1, -1, 0}.Normalize()
	return mgl32.HomogRotate3D(math.Pi/4, axis)
}

func cubeBuilder() (*mesh.Mesh, error) {
	return mesh.NewCube(1)
}

// CubeScene is a single tilted unit cube.
//
// Parameters:
//   - cam: the camera to draw from
//   - options: scene options
//
// Returns:
//   - Scene: the populated scene
//   - error: if the scene cannot be created
func CubeScene(cam camera.Camera, options ...SceneBuilderOption) (Scene, error) {
	s, err := NewScene(PresetCube, cam, options...)
	if err != nil {
		return nil, err
	}
	if err := s.Add("cube", cubeBuilder, cubeModel()); err != nil {
		return nil, err
	}
	return s, nil
}

// PlaneScene is a 10×10 plane of 10×10 segments laid flat on the XZ plane.
//
// Parameters:
//   - cam: the camera to draw from
//   - options: scene options
//
// Returns:
//   - Scene: the populated scene
//   - error: if the scene cannot be created
func PlaneScene(cam camera.Camera, options ...SceneBuilderOption) (Scene, error) {
	s, err := NewScene(PresetPlane, cam, options...)
	if err != nil {
		return nil, err
	}
	build := func() (*mesh.Mesh, error) {
		return mesh.NewPlane(10, 10, 10, 10)
	}
	// The generator builds in XY facing +Z; tip it onto the ground.
	if err := s.Add("plane", build, mgl32.HomogRotate3DX(-math.Pi/2)); err != nil {
		return nil, err
	}
	return s, nil
}

// GridScene is a GridDimensions grid on the XZ plane with the tilted cube at its centre.
//
// Parameters:
//   - cam: the camera to draw from
//   - options: scene options
//
// Returns:
//   - Scene: the populated scene
//   - error: if the scene cannot be created
func GridScene(cam camera.Camera, options ...SceneBuilderOption) (Scene, error) {
	s, err := NewScene(PresetGrid, cam, options...)
	if err != nil {
		return nil, err
	}
	build := func() (*mesh.Mesh, error) {
		return mesh.NewGrid(GridDimensions)
	}
	if err := s.Add("grid", build, mgl32.Ident4()); err != nil {
		return nil, err
	}
	if err := s.Add("cube", cubeBuilder, cubeModel()); err != nil {
		return nil, err
	}
	return s, nil
}

// NewPreset creates the preset scene called name.
//
// Parameters:
//   - name: one of Presets
//   - cam: the camera to draw from
//   - options: scene options
//
// Returns:
//   - Scene: the populated scene
//   - error: for an unknown name or if the scene cannot be created
func NewPreset(name string, cam camera.Camera, options ...SceneBuilderOption) (Scene, error) {
	switch name {
	case PresetCube:
		return CubeScene(cam, options...)
	case PresetPlane:
		return PlaneScene(cam, options...)
	case PresetGrid:
		return GridScene(cam, options...)
	default:
		return nil, fmt.Errorf("unknown scene %q (want one of %v)", name, Presets)
	}
}
