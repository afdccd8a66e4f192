package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-orbit/engine/mesh"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicShader(t *testing.T) {
	s, err := NewBasicShader()
	require.NoError(t, err)

	assert.Equal(t, "basic", s.Key())
	assert.Equal(t, "vs_main", s.VertexEntryPoint())
	assert.Equal(t, "fs_main", s.FragmentEntryPoint())
	assert.NotContains(t, s.Source(), "@oxy:include")
	assert.Contains(t, s.Source(), "struct CameraUniform")
	assert.Equal(t, s.Source(), s.Module().WGSLDescriptor.Code)

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, mesh.VertexStride, layouts[0].ArrayStride)
	require.Len(t, layouts[0].Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layouts[0].Attributes[1].Format)
	assert.Equal(t, uint64(12), layouts[0].Attributes[1].Offset)
	assert.Equal(t, uint64(24), layouts[0].Attributes[2].Offset)

	require.Equal(t, 2, s.BindGroupCount())
	cameraEntry := s.BindGroupLayoutDescriptors()[0].Entries[0]
	assert.Equal(t, wgpu.BufferBindingTypeUniform, cameraEntry.Buffer.Type)
	assert.Equal(t, uint64(144), cameraEntry.Buffer.MinBindingSize)
	assert.Equal(t, uint64(64), s.BindGroupLayoutDescriptors()[1].Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, "camera", s.BindGroupVarName(0, 0))
	assert.Equal(t, "transform", s.BindGroupVarName(1, 0))
	assert.Equal(t, "", s.BindGroupVarName(3, 0))
}

func TestNewShaderRequiresEntryPoints(t *testing.T) {
	_, err := NewShader("empty", "struct A { x: f32, };")
	assert.ErrorIs(t, err, ErrNoEntryPoint)

	vertexOnly := `
@vertex
fn main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }
// @fragment fn commented() {}
`
	_, err = NewShader("vertex-only", vertexOnly)
	assert.ErrorIs(t, err, ErrNoEntryPoint)
}

func TestPreProcessor(t *testing.T) {
	p := NewPreProcessor()
	out, err := p.Process("  //@oxy:include camera\n//@oxy:include camera\nfn f() {}")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "struct CameraUniform"))
	assert.Equal(t, []IncludeKey{IncludeCamera}, p.Included())

	_, err = p.Process("//@oxy:include light")
	assert.Error(t, err)

	_, err = p.Process("//@oxy:include")
	assert.Error(t, err)
}

func TestStripComments(t *testing.T) {
	src := "a /* b /* nested */ c */ d // e\nf"
	assert.Equal(t, "a  d \nf", stripComments(src))
}

func TestComputeStructSizesNested(t *testing.T) {
	structs := parseStructBlocks(`
struct Outer { inner: Inner, scale: f32, };
struct Inner { a: vec3<f32>, };
`)
	sizes := computeStructSizes(structs)
	assert.Equal(t, uint64(16), sizes["Inner"].size)
	assert.Equal(t, uint64(32), sizes["Outer"].size)
}
