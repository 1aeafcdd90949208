package mesh

import "github.com/go-gl/mathgl/mgl32"

// TriangleTangents returns the normalized tangent and bitangent of a
// triangle from its two edges and the matching UV deltas. Degenerate UV
// mappings yield an arbitrary orthonormal pair.
func TriangleTangents(e1, e2 mgl32.Vec3, duv1, duv2 mgl32.Vec2) (mgl32.Vec3, mgl32.Vec3) {
	det := duv1[0]*duv2[1] - duv2[0]*duv1[1]
	if det > -1e-8 && det < 1e-8 {
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}
	}
	f := 1 / det
	t := e1.Mul(duv2[1]).Sub(e2.Mul(duv1[1])).Mul(f)
	b := e2.Mul(duv1[0]).Sub(e1.Mul(duv2[0])).Mul(f)
	return t.Normalize(), b.Normalize()
}

// GenerateTangents fills Tangents and Bitangents by accumulating the
// per-triangle frames on each vertex. Requires UVs and indices.
func GenerateTangents(d *Data) {
	n := len(d.Positions)
	tan := make([]mgl32.Vec3, n)
	bit := make([]mgl32.Vec3, n)
	for i := 0; i+2 < len(d.Indices); i += 3 {
		i0, i1, i2 := d.Indices[i], d.Indices[i+1], d.Indices[i+2]
		e1 := d.Positions[i1].Sub(d.Positions[i0])
		e2 := d.Positions[i2].Sub(d.Positions[i0])
		t, b := TriangleTangents(e1, e2, d.UVs[i1].Sub(d.UVs[i0]), d.UVs[i2].Sub(d.UVs[i0]))
		for _, idx := range [3]uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			bit[idx] = bit[idx].Add(b)
		}
	}
	for i := range tan {
		tan[i] = normalizeOr(tan[i], mgl32.Vec3{1, 0, 0})
		bit[i] = normalizeOr(bit[i], mgl32.Vec3{0, 1, 0})
	}
	d.Tangents = tan
	d.Bitangents = bit
}

// GenerateFlatNormals fills Normals with the normal of the last triangle
// touching each vertex.
func GenerateFlatNormals(d *Data) {
	normals := make([]mgl32.Vec3, len(d.Positions))
	for i := 0; i+2 < len(d.Indices); i += 3 {
		i0, i1, i2 := d.Indices[i], d.Indices[i+1], d.Indices[i+2]
		e1 := d.Positions[i1].Sub(d.Positions[i0])
		e2 := d.Positions[i2].Sub(d.Positions[i0])
		n := normalizeOr(e1.Cross(e2), mgl32.Vec3{0, 0, 1})
		normals[i0], normals[i1], normals[i2] = n, n, n
	}
	for i := range normals {
		if normals[i].Len() == 0 {
			normals[i] = mgl32.Vec3{0, 0, 1}
		}
	}
	d.Normals = normals
}

func normalizeOr(v, fallback mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 1e-6 {
		return fallback
	}
	return v.Normalize()
}
