package renderpass

import (
	"github.com/ironspire/engine/engine/math"
)

// ndcCorners are the eight corners of clip space in NDC, reused every
// call so ComputeLightViewProjection never allocates.
var ndcCorners = [8]math.Vec3{
	{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
}

// ComputeLightViewProjection implements shadow-pass fitting:
// transform the camera frustum corners into light space, compute a
// tight AABB, and build an orthographic projection from that AABB
// combined with a look-at centered on the frustum. Grounded on
// Carmen-Shannon-oxy-go's common/frustum.go plane-extraction approach,
// adapted here to corner-unprojection and an AABB-from-points fit
// rather than plane culling.
func ComputeLightViewProjection(cameraViewProj math.Mat4, lightDir math.Vec3, up math.Vec3) math.Mat4 {
	inv := cameraViewProj.Inverse()

	var worldCorners [8]math.Vec3
	var center math.Vec3
	for i, c := range ndcCorners {
		w := c.Transform(inv)
		worldCorners[i] = w
		center = center.Add(w)
	}
	center = center.MulScalar(1.0 / 8.0)

	lightView := math.NewMat4LookAt(center.Add(lightDir.MulScalar(-1)), center, up)

	const big = 3.4e38
	min := math.Vec3{X: big, Y: big, Z: big}
	max := math.Vec3{X: -big, Y: -big, Z: -big}
	for _, c := range worldCorners {
		lc := c.Transform(lightView)
		min = math.Vec3{X: minF(min.X, lc.X), Y: minF(min.Y, lc.Y), Z: minF(min.Z, lc.Z)}
		max = math.Vec3{X: maxF(max.X, lc.X), Y: maxF(max.Y, lc.Y), Z: maxF(max.Z, lc.Z)}
	}

	proj := math.NewMat4Orthographic(min.X, max.X, min.Y, max.Y, min.Z, max.Z)
	return lightView.Mul(proj)
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
