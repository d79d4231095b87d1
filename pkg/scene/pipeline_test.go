package scene

import (
	"encoding/binary"
	gomath "math"
	"testing"

	"github.com/Faultbox/flver/pkg/flver"
)

// binWriter appends little-endian fixed-width values, mirroring how the
// decoder reads them back.
type binWriter struct {
	buf []byte
}

func (w *binWriter) len() int { return len(w.buf) }

func (w *binWriter) u8(v uint8) { w.buf = append(w.buf, v) }

func (w *binWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *binWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *binWriter) i16(v int16) { w.u16(uint16(v)) }
func (w *binWriter) i32(v int32) { w.u32(uint32(v)) }

func (w *binWriter) f32(v float32) { w.u32(gomath.Float32bits(v)) }

func (w *binWriter) vec3(x, y, z float32) {
	w.f32(x)
	w.f32(y)
	w.f32(z)
}

func (w *binWriter) str(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

func (w *binWriter) pad(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

func (w *binWriter) align(n int) {
	for len(w.buf)%n != 0 {
		w.buf = append(w.buf, 0)
	}
}

// encodeSkinnedModel serializes a complete model file with two bones
// and one triangle-list mesh of three skinned vertices, using the same
// vertex layout as the decoded fixtures: position Float3, bone indices
// Byte4B, bone weights Byte4C, UV Float2 (stride 28).
func encodeSkinnedModel() []byte {
	const (
		headerSize       = 128
		materialSize     = 32
		boneSize         = 128
		meshSize         = 48
		faceSetSize      = 16
		bufferLayoutSize = 16
		vertexBufferSize = 32
		stride           = 28
	)
	tablesSize := materialSize + 2*boneSize + meshSize +
		faceSetSize + bufferLayoutSize + vertexBufferSize
	subBase := headerSize + tablesSize

	// Sub-data region: names, nested index tables, layout members.
	sub := &binWriter{}
	matNameOff := subBase + sub.len()
	sub.str("c0000_body")
	mtdOff := subBase + sub.len()
	sub.str("a.mtd")
	boneName0Off := subBase + sub.len()
	sub.str("root")
	boneName1Off := subBase + sub.len()
	sub.str("child")

	sub.align(4)
	paletteOff := subBase + sub.len()
	sub.i32(0)
	sub.i32(1)
	faceSetIdxOff := subBase + sub.len()
	sub.i32(0)
	vbIdxOff := subBase + sub.len()
	sub.i32(0)

	membersOff := subBase + sub.len()
	member := func(structOff uint32, typ flver.LayoutType, sem flver.LayoutSemantic) {
		sub.i32(0)
		sub.u32(structOff)
		sub.u32(uint32(typ))
		sub.u32(uint32(sem))
		sub.i32(0)
	}
	member(0, flver.TypeFloat3, flver.SemanticPosition)
	member(12, flver.TypeByte4B, flver.SemanticBoneIndices)
	member(16, flver.TypeByte4C, flver.SemanticBoneWeights)
	member(20, flver.TypeFloat2, flver.SemanticUV)

	dataOff := subBase + sub.len()
	if rem := dataOff % 16; rem != 0 {
		dataOff += 16 - rem
	}

	// Data section: triangle-list indices then vertex bytes.
	data := &binWriter{}
	for _, idx := range []uint16{0, 1, 2} {
		data.u16(idx)
	}
	data.align(4)
	vertDataOff := data.len()
	vertex := func(px, py, pz float32, bones, weights [4]uint8, u, v float32) {
		data.vec3(px, py, pz)
		data.buf = append(data.buf, bones[:]...)
		data.buf = append(data.buf, weights[:]...)
		data.f32(u)
		data.f32(v)
	}
	vertex(0, 0, 0, [4]uint8{0, 0, 0, 0}, [4]uint8{255, 0, 0, 0}, 0, 0)
	vertex(1, 0, 0, [4]uint8{1, 0, 0, 0}, [4]uint8{255, 0, 0, 0}, 1, 0)
	vertex(0, 1, 0, [4]uint8{0, 1, 0, 0}, [4]uint8{128, 127, 0, 0}, 0, 1)

	w := &binWriter{}

	// Header.
	w.buf = append(w.buf, "FLVER\x00"...)
	w.buf = append(w.buf, 'L', 0)
	w.u32(0x2000C)
	w.u32(uint32(dataOff))
	w.u32(uint32(data.len()))
	w.i32(0) // dummies
	w.i32(1) // materials
	w.i32(2) // bones
	w.i32(1) // meshes
	w.i32(1) // vertex buffers
	w.vec3(0, 0, 0)
	w.vec3(1, 1, 0)
	w.i32(1) // true face count
	w.i32(1) // total face count
	w.u8(16) // vertex index size
	w.u8(0)  // unicode
	w.u8(0)
	w.u8(0)
	w.i32(0)
	w.i32(1) // face sets
	w.i32(1) // buffer layouts
	w.i32(0) // textures
	w.pad(36)

	// Material table.
	w.u32(uint32(matNameOff))
	w.u32(uint32(mtdOff))
	w.i32(0) // texture count
	w.i32(0) // texture index
	w.u32(0) // flags
	w.u32(0) // gx offset
	w.i32(0)
	w.i32(0)

	// Bone table.
	bone := func(tx, ty, tz float32, nameOff int, parent, child int16) {
		w.vec3(tx, ty, tz)
		w.u32(uint32(nameOff))
		w.vec3(0, 0, 0) // rotation
		w.i16(parent)
		w.i16(child)
		w.vec3(1, 1, 1) // scale
		w.i16(-1)       // next sibling
		w.i16(-1)       // prev sibling
		w.vec3(0, 0, 0) // bbox min
		w.i32(0)
		w.vec3(0, 0, 0) // bbox max
		w.pad(13 * 4)
	}
	bone(0, 0, 0, boneName0Off, -1, 1)
	bone(0, 1, 0, boneName1Off, 0, -1)

	// Mesh table.
	w.u8(1) // dynamic
	w.pad(3)
	w.i32(0) // material index
	w.i32(0)
	w.i32(0)
	w.i32(0) // default bone
	w.i32(2) // palette size
	w.u32(0) // bounding box offset
	w.u32(uint32(paletteOff))
	w.i32(1)
	w.u32(uint32(faceSetIdxOff))
	w.i32(1)
	w.u32(uint32(vbIdxOff))

	// Face set table.
	w.u32(0) // flags
	w.u8(0)  // triangle list, not a strip
	w.u8(1)  // cull backfaces
	w.u8(0)
	w.u8(0)
	w.i32(3) // index count
	w.u32(0) // indices offset (data-relative)

	// Buffer layout table.
	w.i32(4) // member count
	w.i32(0)
	w.i32(0)
	w.u32(uint32(membersOff))

	// Vertex buffer table.
	w.i32(0) // buffer index
	w.i32(0) // layout index
	w.i32(stride)
	w.i32(3) // vertex count
	w.i32(0)
	w.i32(0)
	w.i32(3 * stride)
	w.u32(uint32(vertDataOff))

	w.buf = append(w.buf, sub.buf...)
	w.pad(dataOff - w.len())
	w.buf = append(w.buf, data.buf...)
	return w.buf
}

// The full pipeline: serialized bytes through Parse into Build, under
// the native coordinate convention.
func TestBuildFromEncodedModel(t *testing.T) {
	f, err := flver.Parse(encodeSkinnedModel())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	s, err := Build(f, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(s.Skeleton.Bones) != 2 {
		t.Fatalf("expected 2 bones, got %d", len(s.Skeleton.Bones))
	}
	if s.Skeleton.Bones[0].Name != "root" || s.Skeleton.Bones[1].Name != "child" {
		t.Errorf("bone names = %q, %q", s.Skeleton.Bones[0].Name, s.Skeleton.Bones[1].Name)
	}
	if s.Skeleton.Bones[1].ParentIndex != 0 {
		t.Errorf("child parent = %d, want 0", s.Skeleton.Bones[1].ParentIndex)
	}
	if pos := s.Skeleton.Bones[1].World.Translation(); pos.Y != 1 {
		t.Errorf("child world position = %v, want Y=1", pos)
	}

	if len(s.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(s.Meshes))
	}
	m := s.Meshes[0]
	if len(m.Positions) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(m.Positions))
	}
	if len(m.Triangles) != 3 {
		t.Fatalf("triangles = %v, want one triangle", m.Triangles)
	}

	// Native convention leaves the decoded positions untouched.
	want := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	for i := range want {
		if m.Positions[i] != want[i] {
			t.Errorf("position %d = %v, want %v", i, m.Positions[i], want[i])
		}
	}

	for i, w := range m.BoneWeights {
		sum := w[0] + w[1] + w[2] + w[3]
		if abs32(sum-1) > 1e-6 {
			t.Errorf("vertex %d weight sum = %f, want 1", i, sum)
		}
	}
	if m.BoneIndices[2][0] != 0 || m.BoneIndices[2][1] != 1 {
		t.Errorf("vertex 2 bones = %v, want [0 1 ...]", m.BoneIndices[2])
	}
}
