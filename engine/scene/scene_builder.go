package scene

import (
	"github.com/Carmen-Shannon/oxy-orbit/engine/renderer/shader"
	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering. Scenes start active.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithShader sets the shader every object is drawn with. Defaults to shader.NewBasicShader.
//
// Parameters:
//   - sh: a shader declaring the camera and model uniforms
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShader(sh shader.Shader) SceneBuilderOption {
	return func(s *scene) {
		s.shader = sh
	}
}

// WithBuildWorkers sets the number of goroutines that build meshes during Load.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of build workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBuildWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.buildWorkers = n
	}
}

// WithLogger sets the logger the scene writes to.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) SceneBuilderOption {
	return func(s *scene) {
		s.logger = logger
	}
}
