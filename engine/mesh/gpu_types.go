package mesh

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUVertexSource is the WGSL VertexInput struct matching Vertex (32 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUModelUniformSource is the WGSL ModelUniform struct matching GPUModelUniform.
//
//go:embed assets/model_uniform.wgsl
var GPUModelUniformSource string

// GPUModelUniform is the per-object uniform block.
// Size: 64 bytes.
type GPUModelUniform struct {
	Model [16]float32 // offset 0: model matrix (mat4x4<f32>)
}

// NewGPUModelUniform wraps a model matrix.
func NewGPUModelUniform(model mgl32.Mat4) GPUModelUniform {
	return GPUModelUniform{Model: model}
}

// Size returns the size of the GPUModelUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUModelUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUModelUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, v := range g.Model {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
