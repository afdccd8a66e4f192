package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-orbit/engine/camera"
	"github.com/Carmen-Shannon/oxy-orbit/engine/mesh"
	"github.com/Carmen-Shannon/oxy-orbit/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group slots shared by every pipeline the renderer creates.
const (
	CameraBindGroup = 0
	ModelBindGroup  = 1
)

// ErrIncompatibleShader is returned when a shader's bind groups do not match the
// renderer's camera and model layouts.
var ErrIncompatibleShader = errors.New("shader bind groups are incompatible with the renderer")

var (
	cameraUniformSize = uint64((&camera.GPUCameraUniform{}).Size())
	modelUniformSize  = uint64((&mesh.GPUModelUniform{}).Size())
)

// uniformLayoutDescriptor describes a bind group holding a single uniform buffer at binding 0.
func uniformLayoutDescriptor(label string, size uint64) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			},
		},
	}
}

func cameraLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return uniformLayoutDescriptor("Camera Bind Group Layout", cameraUniformSize)
}

func modelLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return uniformLayoutDescriptor("Model Bind Group Layout", modelUniformSize)
}

// validateShaderLayout checks that s declares exactly the camera uniform at group 0 and the
// model uniform at group 1, each at binding 0.
//
// Parameters:
//   - s: the shader to check
//
// Returns:
//   - error: nil when compatible, otherwise wraps ErrIncompatibleShader
func validateShaderLayout(s shader.Shader) error {
	descriptors := s.BindGroupLayoutDescriptors()
	if len(descriptors) != 2 || s.BindGroupCount() != 2 {
		return fmt.Errorf("shader %s declares %d bind groups, want 2: %w", s.Key(), len(descriptors), ErrIncompatibleShader)
	}

	want := map[int]uint64{
		CameraBindGroup: cameraUniformSize,
		ModelBindGroup:  modelUniformSize,
	}
	for group, size := range want {
		entries := descriptors[group].Entries
		if len(entries) != 1 {
			return fmt.Errorf("shader %s group %d has %d bindings, want 1: %w", s.Key(), group, len(entries), ErrIncompatibleShader)
		}
		e := entries[0]
		if e.Binding != 0 || e.Buffer.Type != wgpu.BufferBindingTypeUniform {
			return fmt.Errorf("shader %s group %d must be a uniform at binding 0: %w", s.Key(), group, ErrIncompatibleShader)
		}
		if e.Buffer.MinBindingSize != size {
			return fmt.Errorf("shader %s group %d is %d bytes, want %d: %w", s.Key(), group, e.Buffer.MinBindingSize, size, ErrIncompatibleShader)
		}
	}

	layouts := s.VertexLayouts()
	if len(layouts) != 1 || layouts[0].ArrayStride != mesh.VertexStride {
		return fmt.Errorf("shader %s vertex input must be a single %d byte stride buffer: %w", s.Key(), mesh.VertexStride, ErrIncompatibleShader)
	}
	return nil
}

// primitiveTopology maps a mesh topology onto the pipeline primitive topology.
func primitiveTopology(t mesh.Topology) (wgpu.PrimitiveTopology, error) {
	switch t {
	case mesh.TopologyTriangles:
		return wgpu.PrimitiveTopologyTriangleList, nil
	case mesh.TopologyLines:
		return wgpu.PrimitiveTopologyLineList, nil
	default:
		return 0, fmt.Errorf("unsupported topology %v", t)
	}
}
