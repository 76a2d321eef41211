package renderpass

import (
	stdmath "math"

	"github.com/ironspire/engine/engine/math"
)

func writeF32(dst []byte, v float32) {
	bits := stdmath.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

func writeU32(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

func writeVec3(dst []byte, v math.Vec3) {
	writeF32(dst[0:], v.X)
	writeF32(dst[4:], v.Y)
	writeF32(dst[8:], v.Z)
}

func writeMat4(dst []byte, m math.Mat4) {
	for i, v := range m.Data {
		writeF32(dst[i*4:], v)
	}
}

// lightsBufferSize is the byte size of the lights storage block: dir
// light, MaxPointLights points, MaxSpotLights spots, ambient, counts.
const lightsBufferSize = 32 + MaxPointLights*32 + MaxSpotLights*48 + 16 + 16

// packLights lays frame's lights out to match the shader-side storage
// block bound at binding point 3 (the fixed matrices/instance/
// materials/lights/animation contract).
func packLights(frame *FrameData) []byte {
	out := make([]byte, lightsBufferSize)

	writeVec3(out[0:], frame.DirLight.Direction)
	writeVec3(out[16:], frame.DirLight.Color)

	base := 32
	n := len(frame.PointLights)
	if n > MaxPointLights {
		n = MaxPointLights
	}
	for i := 0; i < n; i++ {
		pl := frame.PointLights[i]
		off := base + i*32
		writeVec3(out[off:], pl.Position)
		writeF32(out[off+12:], pl.Radius)
		writeVec3(out[off+16:], pl.Color)
	}

	base += MaxPointLights * 32
	m := len(frame.SpotLights)
	if m > MaxSpotLights {
		m = MaxSpotLights
	}
	for i := 0; i < m; i++ {
		sl := frame.SpotLights[i]
		off := base + i*48
		writeVec3(out[off:], sl.Position)
		writeF32(out[off+12:], sl.InnerCone)
		writeVec3(out[off+16:], sl.Direction)
		writeF32(out[off+28:], sl.OuterCone)
		writeVec3(out[off+32:], sl.Color)
	}

	base += MaxSpotLights * 48
	writeVec3(out[base:], frame.Ambient)
	base += 16
	writeU32(out[base:], uint32(n))
	writeU32(out[base+4:], uint32(m))

	return out
}
