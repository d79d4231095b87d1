package scene

import (
	"fmt"

	"github.com/Faultbox/flver/pkg/flver"
)

// ReconstructedMesh is a renderer-ready mesh in the selected
// coordinate convention: flat triangle list, absolute skeleton bone
// references, no FLVER-specific structures.
type ReconstructedMesh struct {
	Name          string
	MaterialIndex int

	Positions [][3]float32
	Normals   [][3]float32
	Tangents  [][4]float32
	UVs       [][2]float32
	Colors    [][4]float32

	// Triangles holds vertex indices, three per triangle.
	Triangles []uint32

	// BoneIndices/BoneWeights hold up to four influences per vertex;
	// indices are absolute into the skeleton's bone slice.
	BoneIndices [][4]int32
	BoneWeights [][4]float32
}

// assembleMesh joins one mesh's decoded vertices with its face sets,
// resolves the bone palette and applies the coordinate convention.
func assembleMesh(f *flver.File, meshIndex int, va *flver.VertexAttributes,
	boneCount int, opts Options) (*ReconstructedMesh, error) {

	mesh := &f.Meshes[meshIndex]

	rm := &ReconstructedMesh{
		Name:          fmt.Sprintf("mesh_%d", meshIndex),
		MaterialIndex: int(mesh.MaterialIndex),
		Positions:     make([][3]float32, va.Count),
		BoneIndices:   make([][4]int32, va.Count),
		BoneWeights:   make([][4]float32, va.Count),
		Colors:        va.Colors,
	}
	if int(mesh.MaterialIndex) < len(f.Materials) {
		if name := f.Materials[mesh.MaterialIndex].Name; name != "" {
			rm.Name = name
		}
	}

	for v := 0; v < va.Count; v++ {
		rm.Positions[v] = opts.Convention.Point(va.Positions[v])
	}
	if va.Normals != nil {
		rm.Normals = make([][3]float32, va.Count)
		for v := range va.Normals {
			rm.Normals[v] = opts.Convention.Direction(va.Normals[v])
		}
	}
	if va.Tangents != nil {
		rm.Tangents = make([][4]float32, va.Count)
		for v := range va.Tangents {
			rm.Tangents[v] = opts.Convention.Tangent(va.Tangents[v])
		}
	}
	rm.UVs = va.UV()

	rm.Triangles = triangulate(f, mesh)

	if err := resolveSkinning(rm, mesh, va, boneCount, opts); err != nil {
		return nil, err
	}

	return rm, nil
}

// triangulate normalizes the mesh's face sets to one flat triangle
// list. Only the primary (non-LOD) face sets contribute; strip
// encodings are unrolled at their restart markers and degenerate
// triangles dropped.
func triangulate(f *flver.File, mesh *flver.Mesh) []uint32 {
	var tris []uint32
	for _, fsIdx := range primaryFaceSets(f, mesh) {
		fs := &f.FaceSets[fsIdx]
		if fs.TriangleStrip {
			tris = unrollStrip(fs.Indices, tris)
		} else {
			tris = appendList(fs.Indices, tris)
		}
	}
	return tris
}

// primaryFaceSets picks the face sets making up the full-detail mesh.
// LOD variants carry non-zero flags; if every set is flagged the first
// one is used so the mesh never silently vanishes.
func primaryFaceSets(f *flver.File, mesh *flver.Mesh) []int32 {
	var primary []int32
	for _, fsIdx := range mesh.FaceSetIndices {
		if f.FaceSets[fsIdx].Flags == 0 {
			primary = append(primary, fsIdx)
		}
	}
	if primary == nil && len(mesh.FaceSetIndices) > 0 {
		primary = mesh.FaceSetIndices[:1]
	}
	return primary
}

func appendList(indices []uint32, tris []uint32) []uint32 {
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a == b || b == c || a == c {
			continue
		}
		tris = append(tris, a, b, c)
	}
	return tris
}

// unrollStrip converts a triangle strip to a triangle list. A restart
// marker ends the current run; triangles never span it. Winding
// alternates per step and is emitted consistently.
func unrollStrip(indices []uint32, tris []uint32) []uint32 {
	run := 0 // indices consumed in the current strip run
	flip := false
	for i := 0; i < len(indices); i++ {
		if indices[i] == flver.StripRestart {
			run = 0
			flip = false
			continue
		}
		run++
		if run < 3 {
			continue
		}
		a, b, c := indices[i-2], indices[i-1], indices[i]
		if flip {
			a, b = b, a
		}
		flip = !flip
		if a == b || b == c || a == c {
			continue
		}
		tris = append(tris, a, b, c)
	}
	return tris
}

// resolveSkinning turns raw vertex bone references into absolute
// skeleton indices, applying the mesh's bone palette when present, and
// optionally renormalizes weights to sum to one.
func resolveSkinning(rm *ReconstructedMesh, mesh *flver.Mesh,
	va *flver.VertexAttributes, boneCount int, opts Options) error {

	if boneCount == 0 {
		return nil
	}

	rigid := !va.HasBoneWeights

	for v := 0; v < va.Count; v++ {
		weights := va.BoneWeights[v]
		indices := va.BoneIndices[v]

		if rigid {
			// Static geometry binds fully to one bone: the vertex's
			// own reference when present, else the mesh default.
			if !va.HasBoneIndices {
				if mesh.DefaultBoneIndex < 0 {
					continue
				}
				indices = [4]int32{mesh.DefaultBoneIndex, 0, 0, 0}
			}
			weights = [4]float32{1, 0, 0, 0}
		}

		var sum float32
		for s := 0; s < 4; s++ {
			if weights[s] == 0 {
				indices[s] = 0
				continue
			}
			idx := indices[s]
			if len(mesh.BoneIndices) > 0 && (!rigid || va.HasBoneIndices) {
				if int(idx) < 0 || int(idx) >= len(mesh.BoneIndices) {
					return fmt.Errorf("%w: vertex %d references palette entry %d of %d",
						ErrBoneIndexOutOfRange, v, idx, len(mesh.BoneIndices))
				}
				idx = mesh.BoneIndices[idx]
			}
			if int(idx) < 0 || int(idx) >= boneCount {
				return fmt.Errorf("%w: vertex %d resolves to bone %d (skeleton has %d)",
					ErrBoneIndexOutOfRange, v, idx, boneCount)
			}
			indices[s] = idx
			sum += weights[s]
		}

		if opts.NormalizeWeights && sum > 0 && sum != 1 {
			for s := range weights {
				weights[s] /= sum
			}
		}

		rm.BoneIndices[v] = indices
		rm.BoneWeights[v] = weights
	}
	return nil
}
