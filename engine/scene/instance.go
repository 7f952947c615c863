// Package scene holds the CPU-side description of the rendered scene: the
// instanced grid layout, mesh geometry, and material staging data.
package scene

import "github.com/caldera3d/caldera/common"

// InstanceStride is the byte stride of one packed instance record: a single
// column-major 4x4 model matrix.
const InstanceStride = 64

// InstanceRecord is the transform for one grid cell. Rotation is XYZ Euler
// angles in radians.
type InstanceRecord struct {
	Position [3]float32
	Rotation [3]float32
}

// ModelMatrix returns the record's column-major 4x4 model matrix.
//
// Returns:
//   - [16]float32: the model matrix
func (r *InstanceRecord) ModelMatrix() [16]float32 {
	var m [16]float32
	common.BuildModelMatrix(m[:],
		r.Position[0], r.Position[1], r.Position[2],
		r.Rotation[0], r.Rotation[1], r.Rotation[2],
		1, 1, 1,
	)
	return m
}

// Grid lays out side*side instance records in row-major order on the XZ
// plane. Record k sits at (col(k)*spacing, 0, row(k)*spacing) with
// row(k) = k / side and col(k) = k % side. The slice order defines the
// instance buffer order and therefore the draw call's instance indices.
//
// Parameters:
//   - side: cells per grid edge
//   - spacing: distance between neighboring cells
//
// Returns:
//   - []InstanceRecord: side*side records in row-major order
func Grid(side int, spacing float32) []InstanceRecord {
	if side <= 0 {
		return nil
	}
	records := make([]InstanceRecord, 0, side*side)
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			records = append(records, InstanceRecord{
				Position: [3]float32{float32(col) * spacing, 0, float32(row) * spacing},
			})
		}
	}
	return records
}

// PackInstances serializes the records' model matrices into one contiguous
// buffer at InstanceStride bytes per record, in slice order.
//
// Parameters:
//   - records: the instance records to pack
//
// Returns:
//   - []byte: the packed instance buffer
func PackInstances(records []InstanceRecord) []byte {
	matrices := make([]float32, 0, len(records)*16)
	for i := range records {
		m := records[i].ModelMatrix()
		matrices = append(matrices, m[:]...)
	}
	return common.SliceToBytes(matrices)
}
