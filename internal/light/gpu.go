package light

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUSize is the std140 stride of one light in the shader's light array.
//
// Layout:
//
//	vec3  direction    (offset  0)
//	float range        (offset 12)
//	vec3  position     (offset 16)
//	float intensity    (offset 28)
//	vec3  color        (offset 32)
//	float spotFalloff  (offset 44)
//	int   type         (offset 48)
//	pad                (offset 52, 12 bytes)
const GPUSize = 64

// Put writes l into buf, which must be at least GPUSize bytes.
func (l Light) Put(buf []byte) {
	_ = buf[GPUSize-1]
	putVec3(buf[0:12], l.Direction)
	putFloat(buf[12:16], l.Range)
	putVec3(buf[16:28], l.Position)
	putFloat(buf[28:32], l.Intensity)
	putVec3(buf[32:44], l.Color)
	putFloat(buf[44:48], l.SpotFalloff)
	binary.LittleEndian.PutUint32(buf[48:52], uint32(l.Kind))
	clear(buf[52:64])
}

// Marshal returns the GPU representation of l.
func (l Light) Marshal() []byte {
	buf := make([]byte, GPUSize)
	l.Put(buf)
	return buf
}

// Marshal packs the lights contiguously, in list order, for a uniform
// buffer upload.
func (l *List) Marshal() []byte {
	buf := make([]byte, len(l.lights)*GPUSize)
	for i, lt := range l.lights {
		lt.Put(buf[i*GPUSize:])
	}
	return buf
}

func putFloat(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func putVec3(b []byte, v mgl32.Vec3) {
	putFloat(b[0:4], v[0])
	putFloat(b[4:8], v[1])
	putFloat(b[8:12], v[2])
}
