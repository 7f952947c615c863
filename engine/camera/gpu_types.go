package camera

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// CameraUniform is the GPU-aligned representation of the camera state shared
// by every render shader's Camera struct.
// Size: 272 bytes (16-byte vec4 + four 64-byte mat4x4, std140 aligned).
type CameraUniform struct {
	ViewPosition [4]float32  // offset   0: world-space camera position, w = 1
	View         [16]float32 // offset  16: view matrix (column-major)
	ViewProj     [16]float32 // offset  80: projection * view (column-major)
	InvProj      [16]float32 // offset 144: inverse projection (column-major)
	InvView      [16]float32 // offset 208: transposed view, undoes the camera rotation
}

// Size returns the size of the CameraUniform struct in bytes.
//
// Returns:
//   - uint64: the struct size in bytes (272)
func (u *CameraUniform) Size() uint64 {
	return uint64(unsafe.Sizeof(*u))
}

// Marshal serializes the CameraUniform struct into a byte buffer suitable for
// GPU upload.
//
// Returns:
//   - []byte: 272-byte buffer ready for GPU upload
func (u *CameraUniform) Marshal() []byte {
	buf := make([]byte, 272)
	off := 0
	put := func(v float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	for _, v := range u.ViewPosition {
		put(v)
	}
	for _, v := range u.View {
		put(v)
	}
	for _, v := range u.ViewProj {
		put(v)
	}
	for _, v := range u.InvProj {
		put(v)
	}
	for _, v := range u.InvView {
		put(v)
	}
	return buf
}
