package shader

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoEntryPoint is returned when a render shader lacks a @vertex or @fragment function.
var ErrNoEntryPoint = errors.New("shader has no entry point")

//go:embed assets/basic.wgsl
var basicSource string

// shader is the implementation of the Shader interface.
// It holds the processed source and everything parsed from it for pipeline creation.
type shader struct {
	key                        string
	source                     string
	vertexEntryPoint           string
	fragmentEntryPoint         string
	vertexLayouts              []wgpu.VertexBufferLayout
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a parsed WGSL render shader holding one vertex and one fragment entry point.
// It exposes what the renderer needs to build a pipeline: the module descriptor, entry
// points, the vertex buffer layout and the bind group layouts.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL source with includes expanded.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// VertexEntryPoint returns the name of the @vertex function.
	//
	// Returns:
	//   - string: the entry point name
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	//
	// Returns:
	//   - string: the entry point name
	FragmentEntryPoint() string

	// VertexLayouts returns one vertex buffer layout per vertex input struct.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts in slot order
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptors returns the buffer bindings declared in the source, keyed by group.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupCount returns the number of contiguous bind groups starting at 0.
	//
	// Returns:
	//   - int: the bind group count
	BindGroupCount() int

	// BindGroupVarName retrieves the variable name bound at group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or "" if nothing is bound there
	BindGroupVarName(group, binding int) string

	// Module returns the shader module descriptor built from the processed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the module descriptor labelled with the key
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader processes and parses a WGSL render shader.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and labels
//   - source: WGSL source, optionally containing //@oxy:include annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: if pre-processing fails or an entry point is missing (wraps ErrNoEntryPoint)
func NewShader(key, source string) (Shader, error) {
	processed, err := NewPreProcessor().Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:                key,
		source:             processed,
		vertexEntryPoint:   parseEntryPoint(processed, vertexEntryRegex),
		fragmentEntryPoint: parseEntryPoint(processed, fragmentEntryRegex),
	}
	if s.vertexEntryPoint == "" {
		return nil, fmt.Errorf("shader %s: @vertex: %w", key, ErrNoEntryPoint)
	}
	if s.fragmentEntryPoint == "" {
		return nil, fmt.Errorf("shader %s: @fragment: %w", key, ErrNoEntryPoint)
	}

	s.vertexLayouts = parseVertexLayouts(processed)
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(processed, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: processed,
		},
	}
	return s, nil
}

// NewBasicShader returns the built-in unlit vertex colour shader. It binds the camera
// uniform at group 0 and the model uniform at group 1.
//
// Returns:
//   - Shader: the parsed shader
//   - error: never expected for the embedded source
func NewBasicShader() (Shader, error) {
	return NewShader("basic", basicSource)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupCount() int {
	n := 0
	for {
		if _, ok := s.bindGroupLayoutDescriptors[n]; !ok {
			return n
		}
		n++
	}
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
