package light

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// LightUniform is the GPU-aligned representation of a single point light.
// Matches the WGSL Light struct layout exactly.
// Size: 32 bytes (two vec3s, each padded to 16-byte alignment).
type LightUniform struct {
	Position [3]float32 // offset  0: world-space position
	_pad     uint32     // offset 12: padding to vec4 alignment
	Color    [3]float32 // offset 16: RGB color
	_pad2    uint32     // offset 28: padding to 32-byte struct size
}

// Size returns the size of the LightUniform struct in bytes.
//
// Returns:
//   - uint64: the struct size in bytes (32)
func (u *LightUniform) Size() uint64 {
	return uint64(unsafe.Sizeof(*u))
}

// Marshal serializes the LightUniform struct into a byte buffer suitable for
// GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (u *LightUniform) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(u.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(u.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(u.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], 0) // padding
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(u.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(u.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(u.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], 0) // padding
	return buf
}
