package renderer

import (
	"github.com/Carmen-Shannon/oxy-orbit/engine/mesh"
	"github.com/cogentcore/webgpu/wgpu"
)

// GPUMesh holds the GPU resources of one uploaded mesh: its vertex and optional index
// buffers, plus the per-object model uniform buffer and the bind group that exposes it
// at ModelBindGroup.
//
// A GPUMesh carries a single model matrix, so drawing it more than once per frame draws
// every copy with the last matrix written.
type GPUMesh struct {
	name     string
	topology mesh.Topology

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	modelBuffer  *wgpu.Buffer
	modelGroup   *wgpu.BindGroup

	drawCount uint32
	indexed   bool
}

// Name returns the name of the mesh this was uploaded from.
func (g *GPUMesh) Name() string {
	return g.name
}

// Topology returns the primitive topology the mesh must be drawn with.
func (g *GPUMesh) Topology() mesh.Topology {
	return g.topology
}

// DrawCount returns the number of elements issued per draw.
func (g *GPUMesh) DrawCount() uint32 {
	return g.drawCount
}

// Indexed reports whether the mesh is drawn through an index buffer.
func (g *GPUMesh) Indexed() bool {
	return g.indexed
}

// Release frees the mesh's GPU resources. Safe to call more than once.
func (g *GPUMesh) Release() {
	if g.modelGroup != nil {
		g.modelGroup.Release()
		g.modelGroup = nil
	}
	if g.modelBuffer != nil {
		g.modelBuffer.Release()
		g.modelBuffer = nil
	}
	if g.indexBuffer != nil {
		g.indexBuffer.Release()
		g.indexBuffer = nil
	}
	if g.vertexBuffer != nil {
		g.vertexBuffer.Release()
		g.vertexBuffer = nil
	}
}
