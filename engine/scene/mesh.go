package scene

import "github.com/caldera3d/caldera/common"

// Vertex is the GPU-aligned mesh vertex shared by the object and light-marker
// pipelines. Matches the WGSL VertexInput struct layout exactly.
// Size: 32 bytes.
type Vertex struct {
	Position  [3]float32 // offset  0: position in model space
	TexCoords [2]float32 // offset 12: UV texture coordinate
	Normal    [3]float32 // offset 20: normal for lighting
}

// VertexStride is the byte stride of one Vertex.
const VertexStride = 32

// Mesh is CPU-side indexed geometry ready for upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// VertexBytes returns the vertex data as a byte slice for buffer upload.
//
// Returns:
//   - []byte: the raw vertex data
func (m *Mesh) VertexBytes() []byte {
	return common.SliceToBytes(m.Vertices)
}

// IndexBytes returns the index data as a byte slice for buffer upload.
//
// Returns:
//   - []byte: the raw index data
func (m *Mesh) IndexBytes() []byte {
	return common.SliceToBytes(m.Indices)
}

// IndexCount returns the number of indices in the mesh.
//
// Returns:
//   - uint32: the index count
func (m *Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

// Cube builds a unit-ish cube of the given half-extent with per-face normals
// and UVs, 24 vertices and 36 indices.
//
// Parameters:
//   - halfExtent: half the cube's edge length
//
// Returns:
//   - Mesh: the cube mesh
func Cube(halfExtent float32) Mesh {
	h := halfExtent

	type face struct {
		normal [3]float32
		// corners in CCW order viewed from outside
		corners [4][3]float32
	}
	faces := []face{
		{normal: [3]float32{0, 0, 1}, corners: [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{normal: [3]float32{0, 0, -1}, corners: [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{normal: [3]float32{1, 0, 0}, corners: [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{normal: [3]float32{-1, 0, 0}, corners: [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{normal: [3]float32{0, 1, 0}, corners: [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{normal: [3]float32{0, -1, 0}, corners: [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	mesh := Mesh{
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint16, 0, 36),
	}
	for _, f := range faces {
		base := uint16(len(mesh.Vertices))
		for i, corner := range f.corners {
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position:  corner,
				TexCoords: uvs[i],
				Normal:    f.normal,
			})
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}
