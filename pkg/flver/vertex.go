package flver

import (
	"fmt"
	"math"

	"github.com/x448/float16"
)

// VertexAttributes holds the decoded per-vertex channels of one mesh,
// channel-major. Bone indices are raw as stored: when the mesh carries
// a bone palette they index into it, otherwise they are absolute
// skeleton indices.
type VertexAttributes struct {
	Count int

	Positions [][3]float32
	Normals   [][3]float32
	Tangents  [][4]float32
	UVSets    [][][2]float32 // UVSets[set][vertex]
	Colors    [][4]float32

	BoneIndices [][4]int32
	BoneWeights [][4]float32

	HasBoneIndices bool
	HasBoneWeights bool
}

// UV returns UV set 0, or nil if the mesh has no UVs.
func (va *VertexAttributes) UV() [][2]float32 {
	if len(va.UVSets) == 0 {
		return nil
	}
	return va.UVSets[0]
}

// DecodeVertices inflates a mesh's raw vertex buffers through their
// buffer layouts. A mesh may reference several buffers whose layouts
// concatenate per vertex; all must agree on the vertex count.
func (f *File) DecodeVertices(mesh *Mesh) (*VertexAttributes, error) {
	va := &VertexAttributes{Count: -1}

	for _, vbIdx := range mesh.VertexBufferIndices {
		if int(vbIdx) < 0 || int(vbIdx) >= len(f.VertexBuffers) {
			return nil, fmt.Errorf("%w: vertex buffer index %d outside table of %d",
				ErrMalformedTable, vbIdx, len(f.VertexBuffers))
		}
		vb := &f.VertexBuffers[vbIdx]
		layout := &f.BufferLayouts[vb.LayoutIndex]

		if w := layout.Width(); w > int(vb.VertexSize) {
			return nil, fmt.Errorf("%w: layout needs %d bytes per vertex, buffer stride is %d",
				ErrMalformedTable, w, vb.VertexSize)
		}
		if va.Count == -1 {
			va.Count = int(vb.VertexCount)
			va.alloc()
		} else if va.Count != int(vb.VertexCount) {
			return nil, fmt.Errorf("%w: vertex buffers disagree on count (%d vs %d)",
				ErrMalformedTable, va.Count, vb.VertexCount)
		}

		if err := f.decodeBuffer(va, vb, layout); err != nil {
			return nil, err
		}
	}

	if va.Count == -1 {
		va.Count = 0
	}
	return va, nil
}

func (va *VertexAttributes) alloc() {
	va.Positions = make([][3]float32, va.Count)
	va.BoneIndices = make([][4]int32, va.Count)
	va.BoneWeights = make([][4]float32, va.Count)
}

func (va *VertexAttributes) uvSet(set int) [][2]float32 {
	for len(va.UVSets) <= set {
		va.UVSets = append(va.UVSets, make([][2]float32, va.Count))
	}
	return va.UVSets[set]
}

func (f *File) decodeBuffer(va *VertexAttributes, vb *VertexBuffer, layout *BufferLayout) error {
	stride := int(vb.VertexSize)

	for v := 0; v < va.Count; v++ {
		raw := vb.Data[v*stride : (v+1)*stride]

		for _, m := range layout.Members {
			chunk := raw[m.StructOffset:]
			if err := f.decodeMember(va, v, m, chunk); err != nil {
				return err
			}
		}
	}

	for _, m := range layout.Members {
		switch m.Semantic {
		case SemanticNormal:
			if va.Normals == nil {
				va.Normals = make([][3]float32, va.Count)
			}
		case SemanticBoneIndices:
			va.HasBoneIndices = true
		case SemanticBoneWeights:
			va.HasBoneWeights = true
		}
	}
	return nil
}

func (f *File) decodeMember(va *VertexAttributes, v int, m LayoutMember, raw []byte) error {
	switch m.Semantic {
	case SemanticPosition:
		switch m.Type {
		case TypeFloat3, TypeFloat4:
			va.Positions[v] = f.float3(raw)
		default:
			return unsupported(m)
		}

	case SemanticNormal:
		if va.Normals == nil {
			va.Normals = make([][3]float32, va.Count)
		}
		switch m.Type {
		case TypeFloat3, TypeFloat4:
			va.Normals[v] = f.float3(raw)
		case TypeByte4A, TypeByte4B, TypeByte4C:
			va.Normals[v] = byteNormal3(raw)
		case TypeShort4ToFloat4A:
			va.Normals[v] = f.shortNormal3(raw)
		case TypeHalf4:
			va.Normals[v] = f.half3(raw)
		default:
			return unsupported(m)
		}

	case SemanticTangent, SemanticBitangent:
		// Only the primary tangent set is kept; bitangents are
		// reconstructed by hosts from normal+tangent.
		if m.Semantic == SemanticBitangent || m.Index != 0 {
			return nil
		}
		if va.Tangents == nil {
			va.Tangents = make([][4]float32, va.Count)
		}
		switch m.Type {
		case TypeFloat4:
			va.Tangents[v] = f.float4(raw)
		case TypeByte4A, TypeByte4B, TypeByte4C:
			va.Tangents[v] = byteNormal4(raw)
		case TypeShort4ToFloat4A:
			va.Tangents[v] = f.shortNormal4(raw)
		case TypeHalf4:
			va.Tangents[v] = f.half4(raw)
		default:
			return unsupported(m)
		}

	case SemanticUV:
		set := int(m.Index)
		switch m.Type {
		case TypeUV:
			va.uvSet(set)[v] = f.fixedUV(raw)
		case TypeUVPair:
			va.uvSet(set)[v] = f.fixedUV(raw)
			va.uvSet(set+1)[v] = f.fixedUV(raw[4:])
		case TypeFloat2, TypeFloat3:
			va.uvSet(set)[v] = f.float2(raw)
		case TypeFloat4:
			va.uvSet(set)[v] = f.float2(raw)
			va.uvSet(set+1)[v] = f.float2(raw[8:])
		default:
			return unsupported(m)
		}

	case SemanticBoneIndices:
		switch m.Type {
		case TypeByte4B, TypeByte4C:
			for i := 0; i < 4; i++ {
				va.BoneIndices[v][i] = int32(raw[i])
			}
		case TypeShortBoneIndices:
			for i := 0; i < 4; i++ {
				va.BoneIndices[v][i] = int32(f.order(raw[i*2:]))
			}
		default:
			return unsupported(m)
		}

	case SemanticBoneWeights:
		switch m.Type {
		case TypeByte4A:
			for i := 0; i < 4; i++ {
				va.BoneWeights[v][i] = float32(int8(raw[i])) / 127
			}
		case TypeByte4B, TypeByte4C:
			for i := 0; i < 4; i++ {
				va.BoneWeights[v][i] = float32(raw[i]) / 255
			}
		case TypeShort4ToFloat4A:
			for i := 0; i < 4; i++ {
				va.BoneWeights[v][i] = float32(int16(f.order(raw[i*2:]))) / 32767
			}
		case TypeFloat4:
			va.BoneWeights[v] = f.float4(raw)
		default:
			return unsupported(m)
		}

	case SemanticVertexColor:
		if m.Index != 0 {
			return nil
		}
		if va.Colors == nil {
			va.Colors = make([][4]float32, va.Count)
		}
		switch m.Type {
		case TypeByte4A, TypeByte4B, TypeByte4C:
			for i := 0; i < 4; i++ {
				va.Colors[v][i] = float32(raw[i]) / 255
			}
		case TypeFloat4:
			va.Colors[v] = f.float4(raw)
		default:
			return unsupported(m)
		}

	default:
		// Unknown semantics occupy explicit byte ranges and cannot
		// desynchronize the other channels; leave them opaque.
	}
	return nil
}

func unsupported(m LayoutMember) error {
	return fmt.Errorf("%w: semantic %d encoded as type 0x%02x",
		ErrUnsupportedVertexFormat, m.Semantic, m.Type)
}

// Numeric encoding helpers. Each reads from the start of the member's
// byte range; bounds are guaranteed by the layout width check.

func (f *File) order(b []byte) uint16 {
	if f.Header.BigEndian {
		return uint16(b[0])<<8 | uint16(b[1])
	}
	return uint16(b[1])<<8 | uint16(b[0])
}

func (f *File) order32(b []byte) uint32 {
	if f.Header.BigEndian {
		return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	}
	return uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])
}

func (f *File) f32bits(b []byte) float32 {
	return math.Float32frombits(f.order32(b))
}

func (f *File) float2(b []byte) [2]float32 {
	return [2]float32{f.f32bits(b), f.f32bits(b[4:])}
}

func (f *File) float3(b []byte) [3]float32 {
	return [3]float32{f.f32bits(b), f.f32bits(b[4:]), f.f32bits(b[8:])}
}

func (f *File) float4(b []byte) [4]float32 {
	return [4]float32{f.f32bits(b), f.f32bits(b[4:]), f.f32bits(b[8:]), f.f32bits(b[12:])}
}

// byteNormal3 decodes an unsigned-byte packed unit vector: (b-127)/127.
func byteNormal3(b []byte) [3]float32 {
	return [3]float32{
		(float32(b[0]) - 127) / 127,
		(float32(b[1]) - 127) / 127,
		(float32(b[2]) - 127) / 127,
	}
}

func byteNormal4(b []byte) [4]float32 {
	return [4]float32{
		(float32(b[0]) - 127) / 127,
		(float32(b[1]) - 127) / 127,
		(float32(b[2]) - 127) / 127,
		(float32(b[3]) - 127) / 127,
	}
}

func (f *File) shortNormal3(b []byte) [3]float32 {
	return [3]float32{
		float32(int16(f.order(b))) / 32767,
		float32(int16(f.order(b[2:]))) / 32767,
		float32(int16(f.order(b[4:]))) / 32767,
	}
}

func (f *File) shortNormal4(b []byte) [4]float32 {
	return [4]float32{
		float32(int16(f.order(b))) / 32767,
		float32(int16(f.order(b[2:]))) / 32767,
		float32(int16(f.order(b[4:]))) / 32767,
		float32(int16(f.order(b[6:]))) / 32767,
	}
}

func (f *File) half3(b []byte) [3]float32 {
	return [3]float32{
		float16.Frombits(f.order(b)).Float32(),
		float16.Frombits(f.order(b[2:])).Float32(),
		float16.Frombits(f.order(b[4:])).Float32(),
	}
}

func (f *File) half4(b []byte) [4]float32 {
	return [4]float32{
		float16.Frombits(f.order(b)).Float32(),
		float16.Frombits(f.order(b[2:])).Float32(),
		float16.Frombits(f.order(b[4:])).Float32(),
		float16.Frombits(f.order(b[6:])).Float32(),
	}
}

// fixedUV decodes a 16-bit fixed-point UV pair. The divisor is the
// version profile's, not a universal constant: games disagree on it.
func (f *File) fixedUV(b []byte) [2]float32 {
	return [2]float32{
		float32(int16(f.order(b))) / f.profile.UVDivisor,
		float32(int16(f.order(b[2:]))) / f.profile.UVDivisor,
	}
}
