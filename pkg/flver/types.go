package flver

// Header is the fixed 128-byte FLVER file header.
type Header struct {
	BigEndian  bool
	Version    uint32
	DataOffset uint32
	DataLength uint32

	DummyCount        int32
	MaterialCount     int32
	BoneCount         int32
	MeshCount         int32
	VertexBufferCount int32

	BoundingBoxMin [3]float32
	BoundingBoxMax [3]float32

	TrueFaceCount  int32
	TotalFaceCount int32

	// VertexIndexSize is 16 or 32, or 0 when each face set declares
	// its own index width.
	VertexIndexSize uint8
	Unicode         bool

	FaceSetCount     int32
	BufferLayoutCount int32
	TextureCount     int32

	// Reserved header fields, kept as read so unknown revisions stay
	// aligned.
	Unk4A    [2]uint8
	Unk4C    int32
	Reserved [36]byte
}

// Bone is one entry of the bone table. Transforms are local to the
// parent; hierarchy links are plain indices into the table with -1 as
// the "none" sentinel.
type Bone struct {
	Name        string
	Translation [3]float32
	Rotation    [3]float32 // Euler radians, applied in Y, Z, X order
	Scale       [3]float32

	ParentIndex      int16
	ChildIndex       int16
	NextSiblingIndex int16
	PrevSiblingIndex int16

	BoundingBoxMin [3]float32
	BoundingBoxMax [3]float32

	Unk3C    int32
	Reserved [13]int32
}

// Material is one entry of the material table. Shading reconstruction
// is out of scope; the name and MTD path are retained for mesh naming.
type Material struct {
	Name         string
	MTDPath      string
	TextureCount int32
	TextureIndex int32
	Flags        uint32

	GXOffset uint32
	Unk18    int32
	Unk1C    int32
}

// Texture is one entry of the texture path table. Paths are decoded
// but never loaded.
type Texture struct {
	Path  string
	Type  string
	Scale [2]float32

	Unk10 [4]uint8
	Unk14 int32
	Unk18 int32
	Unk1C int32
}

// Mesh is one entry of the mesh table. BoneIndices is the per-mesh
// remap table ("palette") translating compact vertex bone references
// into absolute skeleton indices; empty means vertex indices are
// already absolute.
type Mesh struct {
	Dynamic          bool
	MaterialIndex    int32
	DefaultBoneIndex int32
	BoneIndices      []int32

	FaceSetIndices     []int32
	VertexBufferIndices []int32

	Unk08 int32
	Unk0C int32
}

// FaceSet is one entry of the face set table with its decoded indices.
// TriangleStrip marks strip encoding; strips use the width-dependent
// restart marker (0xFFFF / 0xFFFFFFFF) to separate runs.
type FaceSet struct {
	Flags         uint32
	TriangleStrip bool
	CullBackfaces bool
	IndexSize     uint8
	Indices       []uint32

	Unk06 uint8
	Unk07 uint8
}

// StripRestart is the restart marker value after 16- or 32-bit indices
// are widened to uint32.
const StripRestart = 0xFFFFFFFF

// VertexBuffer is one entry of the vertex buffer table with its raw
// vertex bytes. A mesh may reference several buffers whose layouts
// concatenate per vertex.
type VertexBuffer struct {
	BufferIndex int32
	LayoutIndex int32
	VertexSize  int32
	VertexCount int32
	Data        []byte

	Unk10 int32
	Unk14 int32
}

// LayoutSemantic identifies the vertex channel a layout member feeds.
type LayoutSemantic uint32

const (
	SemanticPosition    LayoutSemantic = 0
	SemanticBoneWeights LayoutSemantic = 1
	SemanticBoneIndices LayoutSemantic = 2
	SemanticNormal      LayoutSemantic = 3
	SemanticUV          LayoutSemantic = 5
	SemanticTangent     LayoutSemantic = 6
	SemanticBitangent   LayoutSemantic = 7
	SemanticVertexColor LayoutSemantic = 10
)

// LayoutType identifies the numeric encoding of a layout member.
type LayoutType uint32

const (
	TypeFloat2           LayoutType = 0x01
	TypeFloat3           LayoutType = 0x02
	TypeFloat4           LayoutType = 0x03
	TypeByte4A           LayoutType = 0x10 // signed bytes, /127
	TypeByte4B           LayoutType = 0x11 // unsigned bytes, raw
	TypeShort2ToFloat2   LayoutType = 0x12
	TypeByte4C           LayoutType = 0x13 // unsigned bytes, /255
	TypeUV               LayoutType = 0x15 // 2 x int16, fixed point
	TypeUVPair           LayoutType = 0x16 // 4 x int16, two UV sets
	TypeShortBoneIndices LayoutType = 0x18 // 4 x uint16, raw
	TypeShort4ToFloat4A  LayoutType = 0x1A // 4 x int16, /32767
	TypeHalf4            LayoutType = 0x2E // 4 x float16
)

// Size returns the byte width of the encoding, or 0 if unknown.
func (t LayoutType) Size() int {
	switch t {
	case TypeFloat2:
		return 8
	case TypeFloat3:
		return 12
	case TypeFloat4:
		return 16
	case TypeByte4A, TypeByte4B, TypeByte4C, TypeShort2ToFloat2, TypeUV:
		return 4
	case TypeUVPair, TypeShortBoneIndices, TypeShort4ToFloat4A, TypeHalf4:
		return 8
	default:
		return 0
	}
}

// LayoutMember describes how to slice one channel out of a vertex's
// raw bytes.
type LayoutMember struct {
	StructOffset uint32
	Type         LayoutType
	Semantic     LayoutSemantic
	Index        int32 // channel set index (e.g. UV set)

	Unk00 int32
}

// BufferLayout is an ordered sequence of layout members describing one
// vertex buffer's per-vertex structure.
type BufferLayout struct {
	Members []LayoutMember

	Unk04 int32
	Unk08 int32
}

// Width returns the total byte span implied by the members.
func (l BufferLayout) Width() int {
	max := 0
	for _, m := range l.Members {
		end := int(m.StructOffset) + m.Type.Size()
		if end > max {
			max = end
		}
	}
	return max
}

// File is a fully decoded FLVER file.
type File struct {
	Header        Header
	Bones         []Bone
	Materials     []Material
	Textures      []Texture
	Meshes        []Mesh
	FaceSets      []FaceSet
	VertexBuffers []VertexBuffer
	BufferLayouts []BufferLayout

	profile versionProfile
}

// Profile reports which game layout the file was decoded with.
func (f *File) Profile() (game string, exact bool) {
	return f.profile.Game, f.profile.Version == f.Header.Version
}
