package mesh

import "fmt"

var (
	gridLineColor  = [3]float32{0.3, 0.3, 0.3}
	gridZLineColor = [3]float32{0.0, 0.0, 0.8}
	gridXLineColor = [3]float32{0.8, 0.0, 0.0}
)

// cubeFaces lists each face's four corners (counter-clockwise seen from outside) and colour.
var cubeFaces = [6]struct {
	corners [4][3]float32
	color   [3]float32
}{
	{[4][3]float32{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}, [3]float32{1, 0, 0}},      // +Z
	{[4][3]float32{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}, [3]float32{0, 1, 0}},  // -Z
	{[4][3]float32{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}}, [3]float32{0, 0, 1}},      // +X
	{[4][3]float32{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}, [3]float32{1, 1, 0}},  // -X
	{[4][3]float32{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}, [3]float32{1, 0, 1}},      // +Y
	{[4][3]float32{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}, [3]float32{0, 1, 1}},  // -Y
}

// NewCube builds a 36-vertex cube centred on the origin with one colour per face.
// Vertices are emitted as plain triangles without an index buffer.
//
// Parameters:
//   - size: edge length
//
// Returns:
//   - *Mesh: the cube
//   - error: ErrInvalidSegments if size is not positive
func NewCube(size float32) (*Mesh, error) {
	if !(size > 0) {
		return nil, fmt.Errorf("cube size %v: %w", size, ErrInvalidSegments)
	}
	h := size / 2
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	m := &Mesh{Name: "cube", Topology: TopologyTriangles, Vertices: make([]Vertex, 0, 36)}
	for _, face := range cubeFaces {
		for _, c := range [6]int{0, 1, 2, 0, 2, 3} {
			p := face.corners[c]
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{p[0] * h, p[1] * h, p[2] * h},
				Color:    face.color,
				UV:       uvs[c],
			})
		}
	}
	return m, nil
}

// NewPlane builds a subdivided plane in the XY plane facing +Z.
// The normal is stored in the colour slot, so an unlit pipeline renders it blue.
//
// Parameters:
//   - width, height: plane extent
//   - widthSegments, heightSegments: number of cells along each axis
//
// Returns:
//   - *Mesh: the plane with (ws+1)*(hs+1) vertices and ws*hs*6 indices
//   - error: ErrInvalidSegments for non-positive sizes or counts
func NewPlane(width, height float32, widthSegments, heightSegments int) (*Mesh, error) {
	if !(width > 0) || !(height > 0) || widthSegments <= 0 || heightSegments <= 0 {
		return nil, fmt.Errorf("plane %vx%v with %dx%d segments: %w", width, height, widthSegments, heightSegments, ErrInvalidSegments)
	}

	halfW, halfH := width/2, height/2
	gridX, gridY := widthSegments, heightSegments
	gridX1, gridY1 := gridX+1, gridY+1
	segW, segH := width/float32(gridX), height/float32(gridY)

	m := &Mesh{
		Name:     "plane",
		Topology: TopologyTriangles,
		Vertices: make([]Vertex, 0, gridX1*gridY1),
		Indices:  make([]uint32, 0, gridX*gridY*6),
	}

	for iy := 0; iy < gridY1; iy++ {
		y := float32(iy)*segH - halfH
		for ix := 0; ix < gridX1; ix++ {
			x := float32(ix)*segW - halfW
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{x, -y, 0},
				Color:    [3]float32{0, 0, 1},
				UV:       [2]float32{float32(ix) / float32(gridX), 1 - float32(iy)/float32(gridY)},
			})
		}
	}

	for iy := 0; iy < gridY; iy++ {
		for ix := 0; ix < gridX; ix++ {
			a := uint32(ix + gridX1*iy)
			b := uint32(ix + gridX1*(iy+1))
			c := uint32(ix + 1 + gridX1*(iy+1))
			d := uint32(ix + 1 + gridX1*iy)
			m.Indices = append(m.Indices, a, b, d, b, c, d)
		}
	}
	return m, nil
}

// NewGrid builds a line grid on the XZ plane spanning [-d/2, d/2] on both axes.
// The centre line running along Z is blue, the one running along X is red and the rest are grey.
//
// Parameters:
//   - dimensions: number of cells per side
//
// Returns:
//   - *Mesh: (dimensions+1)*2 lines as a line list
//   - error: ErrInvalidSegments if dimensions is not positive
func NewGrid(dimensions int) (*Mesh, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("grid dimensions %d: %w", dimensions, ErrInvalidSegments)
	}

	div := float32(dimensions) / 2
	lines := (dimensions + 1) * 2
	m := &Mesh{Name: "grid", Topology: TopologyLines, Vertices: make([]Vertex, 0, lines*2)}

	// centre index only exists for even dimensions
	centre := -1
	if dimensions%2 == 0 {
		centre = dimensions / 2
	}

	for i := 0; i <= dimensions; i++ {
		x := -div + float32(i)
		color := gridLineColor
		if i == centre {
			color = gridZLineColor
		}
		m.Vertices = append(m.Vertices,
			Vertex{Position: [3]float32{x, 0, -div}, Color: color},
			Vertex{Position: [3]float32{x, 0, div}, Color: color},
		)
	}
	for i := 0; i <= dimensions; i++ {
		z := -div + float32(i)
		color := gridLineColor
		if i == centre {
			color = gridXLineColor
		}
		m.Vertices = append(m.Vertices,
			Vertex{Position: [3]float32{-div, 0, z}, Color: color},
			Vertex{Position: [3]float32{div, 0, z}, Color: color},
		)
	}
	return m, nil
}
