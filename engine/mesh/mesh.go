package mesh

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-orbit/common"
)

var (
	// ErrEmptyMesh is returned when a mesh has no vertices.
	ErrEmptyMesh = errors.New("mesh has no vertices")

	// ErrInvalidSegments is returned by generators given a non-positive segment count or size.
	ErrInvalidSegments = errors.New("segment counts and sizes must be positive")

	// ErrIndexOutOfRange is returned when an index references a missing vertex.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrTopologyMismatch is returned when the element count does not fit the topology.
	ErrTopologyMismatch = errors.New("element count does not match topology")
)

// Topology selects how vertices are assembled into primitives.
type Topology int

const (
	// TopologyTriangles draws every three elements as a triangle.
	TopologyTriangles Topology = iota
	// TopologyLines draws every two elements as a line segment.
	TopologyLines
)

func (t Topology) String() string {
	switch t {
	case TopologyTriangles:
		return "triangles"
	case TopologyLines:
		return "lines"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// VerticesPerPrimitive returns how many elements make up one primitive.
func (t Topology) VerticesPerPrimitive() int {
	if t == TopologyLines {
		return 2
	}
	return 3
}

// Vertex is the interleaved vertex layout shared by every pipeline.
// Size: 32 bytes (8 float32: position, color, uv).
type Vertex struct {
	Position [3]float32 // offset  0
	Color    [3]float32 // offset 12
	UV       [2]float32 // offset 24
}

// VertexStride is the size of one Vertex in bytes.
const VertexStride = uint64(unsafe.Sizeof(Vertex{}))

// Mesh is CPU-side geometry ready for upload.
// When Indices is empty the vertices are drawn in order.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Topology Topology
}

// Validate checks that the mesh can be drawn with its topology.
//
// Returns:
//   - error: ErrEmptyMesh, ErrIndexOutOfRange or ErrTopologyMismatch wrapped with the mesh name
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 {
		return fmt.Errorf("mesh %q: %w", m.Name, ErrEmptyMesh)
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("mesh %q: index %d = %d with %d vertices: %w", m.Name, i, idx, len(m.Vertices), ErrIndexOutOfRange)
		}
	}
	if m.DrawCount()%m.Topology.VerticesPerPrimitive() != 0 {
		return fmt.Errorf("mesh %q: %d elements for %s: %w", m.Name, m.DrawCount(), m.Topology, ErrTopologyMismatch)
	}
	return nil
}

// Indexed reports whether the mesh is drawn through its index buffer.
func (m *Mesh) Indexed() bool {
	return len(m.Indices) > 0
}

// DrawCount returns the number of elements submitted per draw call.
func (m *Mesh) DrawCount() int {
	if m.Indexed() {
		return len(m.Indices)
	}
	return len(m.Vertices)
}

// VertexBytes returns a byte view of the vertex data. The view shares memory with Vertices.
func (m *Mesh) VertexBytes() []byte {
	return common.SliceToBytes(m.Vertices)
}

// IndexBytes returns a byte view of the index data, or nil for non-indexed meshes.
func (m *Mesh) IndexBytes() []byte {
	return common.SliceToBytes(m.Indices)
}

// Bounds returns the axis-aligned bounding box of the vertices.
//
// Returns:
//   - [3]float32: minimum corner
//   - [3]float32: maximum corner
func (m *Mesh) Bounds() (min, max [3]float32) {
	for i, v := range m.Vertices {
		for a := 0; a < 3; a++ {
			if i == 0 || v.Position[a] < min[a] {
				min[a] = v.Position[a]
			}
			if i == 0 || v.Position[a] > max[a] {
				max[a] = v.Position[a]
			}
		}
	}
	return min, max
}
