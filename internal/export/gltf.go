// Package export writes reconstructed scenes to interchange formats.
// The glTF writer is the default host-side consumer of an import; it
// carries geometry, skinning and the bone hierarchy, but no material
// shading beyond names.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/flver/internal/config"
	"github.com/Faultbox/flver/pkg/math"
	"github.com/Faultbox/flver/pkg/scene"
)

// GLTF writes each delivered scene as a .gltf file. It implements
// importer.SceneBuilder.
type GLTF struct {
	OutputDir string

	// FlipUV mirrors texture coordinates vertically. The source format
	// stores V growing downward; glTF viewers expect it growing upward,
	// so this defaults to on.
	FlipUV bool

	Logger *zap.Logger
}

// NewGLTF returns a writer configured from the export config section.
func NewGLTF(cfg config.ExportConfig, log *zap.Logger) *GLTF {
	if log == nil {
		log = zap.NewNop()
	}
	return &GLTF{
		OutputDir: cfg.OutputDir,
		FlipUV:    cfg.FlipUV,
		Logger:    log,
	}
}

// BuildScene converts the scene to a glTF document and saves it under
// OutputDir as <name>.gltf.
func (e *GLTF) BuildScene(name string, s *scene.Scene) error {
	doc := e.buildDocument(name, s)

	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(e.OutputDir, name+".gltf")
	if err := gltf.Save(doc, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	e.Logger.Info("wrote glTF",
		zap.String("path", path),
		zap.Int("meshes", len(s.Meshes)),
		zap.Int("bones", len(s.Skeleton.Bones)))
	return nil
}

func (e *GLTF) buildDocument(name string, s *scene.Scene) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Scenes[0].Name = name

	for _, mat := range s.Materials {
		doc.Materials = append(doc.Materials, &gltf.Material{Name: mat})
	}

	// Bone nodes come first so skeleton index equals node index.
	for i := range s.Skeleton.Bones {
		b := &s.Skeleton.Bones[i]
		node := &gltf.Node{
			Name:   b.Name,
			Matrix: matrix64(b.Local),
		}
		for _, c := range b.Children {
			node.Children = append(node.Children, uint32(c))
		}
		doc.Nodes = append(doc.Nodes, node)
	}
	for _, root := range s.Skeleton.Roots {
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(root))
	}

	hasSkin := false
	if len(s.Skeleton.Bones) > 0 {
		joints := make([]uint32, len(s.Skeleton.Bones))
		for i := range joints {
			joints[i] = uint32(i)
		}
		doc.Skins = append(doc.Skins, &gltf.Skin{
			Name:   name + "_skeleton",
			Joints: joints,
		})
		hasSkin = true
	}

	for _, rm := range s.Meshes {
		if len(rm.Positions) == 0 || len(rm.Triangles) == 0 {
			e.Logger.Warn("skipping empty mesh in export",
				zap.String("mesh", rm.Name))
			continue
		}
		meshIdx := e.addMesh(doc, rm)

		node := &gltf.Node{
			Name: rm.Name,
			Mesh: gltf.Index(meshIdx),
		}
		if hasSkin && skinned(rm) {
			node.Skin = gltf.Index(0)
		}
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}

	return doc
}

// addMesh writes one mesh's attribute and index accessors and returns
// the new mesh's index in the document.
func (e *GLTF) addMesh(doc *gltf.Document, rm *scene.ReconstructedMesh) uint32 {
	prim := &gltf.Primitive{
		Attributes: gltf.Attribute{
			gltf.POSITION: modeler.WritePosition(doc, rm.Positions),
		},
		Indices: gltf.Index(modeler.WriteIndices(doc, rm.Triangles)),
	}

	normals := rm.Normals
	if len(normals) == 0 {
		// glTF consumers expect lit geometry; derive smooth normals
		// when the vertex layout carried none.
		normals = flatNormals(rm)
	}
	prim.Attributes[gltf.NORMAL] = modeler.WriteNormal(doc, normals)
	if len(rm.Tangents) > 0 {
		prim.Attributes[gltf.TANGENT] = modeler.WriteTangent(doc, rm.Tangents)
	}
	if len(rm.UVs) > 0 {
		prim.Attributes[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, e.texCoords(rm.UVs))
	}
	if len(rm.Colors) > 0 {
		prim.Attributes[gltf.COLOR_0] = modeler.WriteColor(doc, rm.Colors)
	}
	if skinned(rm) {
		prim.Attributes[gltf.JOINTS_0] = modeler.WriteJoints(doc, joints16(rm.BoneIndices))
		prim.Attributes[gltf.WEIGHTS_0] = modeler.WriteWeights(doc, rm.BoneWeights)
	}
	if rm.MaterialIndex >= 0 && rm.MaterialIndex < len(doc.Materials) {
		prim.Material = gltf.Index(uint32(rm.MaterialIndex))
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name:       rm.Name,
		Primitives: []*gltf.Primitive{prim},
	})
	return uint32(len(doc.Meshes) - 1)
}

// flatNormals accumulates face normals onto each vertex and normalizes
// the sums, yielding smooth per-vertex normals.
func flatNormals(rm *scene.ReconstructedMesh) [][3]float32 {
	acc := make([]math.Vec3, len(rm.Positions))
	for i := 0; i+2 < len(rm.Triangles); i += 3 {
		a, b, c := rm.Triangles[i], rm.Triangles[i+1], rm.Triangles[i+2]
		pa := math.FromArray(rm.Positions[a])
		ab := math.FromArray(rm.Positions[b]).Sub(pa)
		ac := math.FromArray(rm.Positions[c]).Sub(pa)
		n := ab.Cross(ac)
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	out := make([][3]float32, len(acc))
	for i := range acc {
		out[i] = acc[i].Normalize().Array()
	}
	return out
}

// texCoords returns the UV set to write, flipping V when configured.
func (e *GLTF) texCoords(uvs [][2]float32) [][2]float32 {
	if !e.FlipUV {
		return uvs
	}
	out := make([][2]float32, len(uvs))
	for i, uv := range uvs {
		out[i] = [2]float32{uv[0], 1 - uv[1]}
	}
	return out
}

// skinned reports whether the mesh carries any bone influence at all.
func skinned(rm *scene.ReconstructedMesh) bool {
	for _, w := range rm.BoneWeights {
		if w != ([4]float32{}) {
			return true
		}
	}
	return false
}

func joints16(indices [][4]int32) [][4]uint16 {
	out := make([][4]uint16, len(indices))
	for i, idx := range indices {
		for s := 0; s < 4; s++ {
			out[i][s] = uint16(idx[s])
		}
	}
	return out
}

func matrix64(m [16]float32) [16]float64 {
	var out [16]float64
	for i, v := range m {
		out[i] = float64(v)
	}
	return out
}
