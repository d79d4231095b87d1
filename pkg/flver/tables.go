package flver

import "fmt"

// Record sizes of the fixed portion of each table entry.
const (
	dummySize        = 64
	materialSize     = 32
	boneSize         = 128
	meshSize         = 48
	vertexBufferSize = 32
	bufferLayoutSize = 16
	layoutMemberSize = 20
	textureSize      = 32
)

// Tables follow the header sequentially: dummies, materials, bones,
// meshes, face sets, buffer layouts, vertex buffers, textures.
// Variable-length sub-data (index lists, layout members, names) is
// reached through nested offsets validated against the buffer.

func parseMaterials(c *cursor, h Header) ([]Material, error) {
	mats := make([]Material, h.MaterialCount)
	for i := range mats {
		m := &mats[i]

		nameOff, err := c.u32()
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		mtdOff, _ := c.u32()
		m.TextureCount, _ = c.i32()
		m.TextureIndex, _ = c.i32()
		m.Flags, _ = c.u32()
		m.GXOffset, _ = c.u32()
		m.Unk18, _ = c.i32()
		if m.Unk1C, err = c.i32(); err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}

		if m.Name, err = readName(c, h, nameOff); err != nil {
			return nil, fmt.Errorf("material %d name: %w", i, err)
		}
		if m.MTDPath, err = readName(c, h, mtdOff); err != nil {
			return nil, fmt.Errorf("material %d mtd: %w", i, err)
		}
	}
	return mats, nil
}

func parseBones(c *cursor, h Header) ([]Bone, error) {
	bones := make([]Bone, h.BoneCount)
	for i := range bones {
		b := &bones[i]

		var err error
		if b.Translation, err = c.vec3(); err != nil {
			return nil, fmt.Errorf("bone %d: %w", i, err)
		}
		nameOff, _ := c.u32()
		b.Rotation, _ = c.vec3()
		b.ParentIndex, _ = c.i16()
		b.ChildIndex, _ = c.i16()
		b.Scale, _ = c.vec3()
		b.NextSiblingIndex, _ = c.i16()
		b.PrevSiblingIndex, _ = c.i16()
		b.BoundingBoxMin, _ = c.vec3()
		b.Unk3C, _ = c.i32()
		b.BoundingBoxMax, _ = c.vec3()
		for j := range b.Reserved {
			if b.Reserved[j], err = c.i32(); err != nil {
				return nil, fmt.Errorf("bone %d: %w", i, err)
			}
		}

		if b.Name, err = readName(c, h, nameOff); err != nil {
			return nil, fmt.Errorf("bone %d name: %w", i, err)
		}

		if p := int(b.ParentIndex); p != -1 && (p < 0 || p >= int(h.BoneCount)) {
			return nil, fmt.Errorf("%w: bone %d parent index %d outside table of %d",
				ErrMalformedTable, i, p, h.BoneCount)
		}
	}
	return bones, nil
}

func parseMeshes(c *cursor, h Header) ([]Mesh, error) {
	meshes := make([]Mesh, h.MeshCount)
	for i := range meshes {
		m := &meshes[i]

		dyn, err := c.u8()
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		m.Dynamic = dyn != 0
		if err := c.skip(3); err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		m.MaterialIndex, _ = c.i32()
		m.Unk08, _ = c.i32()
		m.Unk0C, _ = c.i32()
		m.DefaultBoneIndex, _ = c.i32()
		boneCount, _ := c.i32()
		if _, err := c.u32(); err != nil { // bounding box offset, unused
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		boneIndicesOff, _ := c.u32()
		faceSetCount, _ := c.i32()
		faceSetIndicesOff, _ := c.u32()
		vbCount, _ := c.i32()
		vbIndicesOff, err := c.u32()
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}

		if m.BoneIndices, err = readI32Table(c, boneIndicesOff, boneCount); err != nil {
			return nil, fmt.Errorf("mesh %d bone indices: %w", i, err)
		}
		if m.FaceSetIndices, err = readI32Table(c, faceSetIndicesOff, faceSetCount); err != nil {
			return nil, fmt.Errorf("mesh %d face set indices: %w", i, err)
		}
		if m.VertexBufferIndices, err = readI32Table(c, vbIndicesOff, vbCount); err != nil {
			return nil, fmt.Errorf("mesh %d vertex buffer indices: %w", i, err)
		}

		if int(m.MaterialIndex) < 0 || int(m.MaterialIndex) >= int(h.MaterialCount) {
			return nil, fmt.Errorf("%w: mesh %d material index %d outside table of %d",
				ErrMalformedTable, i, m.MaterialIndex, h.MaterialCount)
		}
	}
	return meshes, nil
}

// readI32Table reads count int32 values at an absolute nested offset.
func readI32Table(c *cursor, off uint32, count int32) ([]int32, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrMalformedTable, count)
	}
	if count == 0 {
		return nil, nil
	}
	raw, err := c.bytesAt(int(off), int(count)*4)
	if err != nil {
		return nil, fmt.Errorf("%w: sub-table at 0x%x: %v", ErrMalformedTable, off, err)
	}
	out := make([]int32, count)
	for i := range out {
		out[i] = int32(c.order.Uint32(raw[i*4:]))
	}
	return out, nil
}

func parseFaceSets(c *cursor, h Header) ([]FaceSet, error) {
	sets := make([]FaceSet, h.FaceSetCount)
	for i := range sets {
		fs := &sets[i]

		var err error
		if fs.Flags, err = c.u32(); err != nil {
			return nil, fmt.Errorf("face set %d: %w", i, err)
		}
		strip, _ := c.u8()
		fs.TriangleStrip = strip != 0
		cull, _ := c.u8()
		fs.CullBackfaces = cull != 0
		fs.Unk06, _ = c.u8()
		fs.Unk07, _ = c.u8()
		indexCount, _ := c.i32()
		indicesOff, err := c.u32()
		if err != nil {
			return nil, fmt.Errorf("face set %d: %w", i, err)
		}

		fs.IndexSize = h.VertexIndexSize
		if h.VertexIndexSize == 0 {
			// Per-set index width follows the fixed record.
			size, err := c.i32()
			if err != nil {
				return nil, fmt.Errorf("face set %d: %w", i, err)
			}
			if _, err := c.i32(); err != nil { // padding
				return nil, fmt.Errorf("face set %d: %w", i, err)
			}
			fs.IndexSize = uint8(size)
		}

		if fs.Indices, err = readIndices(c, h, indicesOff, indexCount, fs.IndexSize); err != nil {
			return nil, fmt.Errorf("face set %d: %w", i, err)
		}
	}
	return sets, nil
}

// readIndices widens 16- or 32-bit vertex indices to uint32, mapping
// the 16-bit strip restart marker to StripRestart.
func readIndices(c *cursor, h Header, off uint32, count int32, size uint8) ([]uint32, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative index count %d", ErrMalformedTable, count)
	}
	if count == 0 {
		return nil, nil
	}

	base := int(h.DataOffset) + int(off)
	switch size {
	case 16:
		raw, err := c.bytesAt(base, int(count)*2)
		if err != nil {
			return nil, fmt.Errorf("%w: index data at 0x%x: %v", ErrMalformedTable, base, err)
		}
		out := make([]uint32, count)
		for i := range out {
			v := c.order.Uint16(raw[i*2:])
			if v == 0xFFFF {
				out[i] = StripRestart
			} else {
				out[i] = uint32(v)
			}
		}
		return out, nil
	case 32:
		raw, err := c.bytesAt(base, int(count)*4)
		if err != nil {
			return nil, fmt.Errorf("%w: index data at 0x%x: %v", ErrMalformedTable, base, err)
		}
		out := make([]uint32, count)
		for i := range out {
			out[i] = c.order.Uint32(raw[i*4:])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: vertex index size %d", ErrMalformedTable, size)
	}
}

func parseVertexBuffers(c *cursor, h Header) ([]VertexBuffer, error) {
	bufs := make([]VertexBuffer, h.VertexBufferCount)
	for i := range bufs {
		vb := &bufs[i]

		var err error
		if vb.BufferIndex, err = c.i32(); err != nil {
			return nil, fmt.Errorf("vertex buffer %d: %w", i, err)
		}
		vb.LayoutIndex, _ = c.i32()
		vb.VertexSize, _ = c.i32()
		vb.VertexCount, _ = c.i32()
		vb.Unk10, _ = c.i32()
		vb.Unk14, _ = c.i32()
		length, _ := c.i32()
		dataOff, err := c.u32()
		if err != nil {
			return nil, fmt.Errorf("vertex buffer %d: %w", i, err)
		}

		if vb.VertexSize < 0 || vb.VertexCount < 0 ||
			int64(length) != int64(vb.VertexSize)*int64(vb.VertexCount) {
			return nil, fmt.Errorf("%w: vertex buffer %d declares %d bytes for %d x %d",
				ErrMalformedTable, i, length, vb.VertexCount, vb.VertexSize)
		}
		if int(vb.LayoutIndex) < 0 || int(vb.LayoutIndex) >= int(h.BufferLayoutCount) {
			return nil, fmt.Errorf("%w: vertex buffer %d layout index %d outside table of %d",
				ErrMalformedTable, i, vb.LayoutIndex, h.BufferLayoutCount)
		}

		base := int(h.DataOffset) + int(dataOff)
		if vb.Data, err = c.bytesAt(base, int(length)); err != nil {
			return nil, fmt.Errorf("%w: vertex buffer %d data at 0x%x: %v",
				ErrMalformedTable, i, base, err)
		}
	}
	return bufs, nil
}

func parseBufferLayouts(c *cursor, h Header) ([]BufferLayout, error) {
	layouts := make([]BufferLayout, h.BufferLayoutCount)
	for i := range layouts {
		l := &layouts[i]

		memberCount, err := c.i32()
		if err != nil {
			return nil, fmt.Errorf("buffer layout %d: %w", i, err)
		}
		l.Unk04, _ = c.i32()
		l.Unk08, _ = c.i32()
		membersOff, err := c.u32()
		if err != nil {
			return nil, fmt.Errorf("buffer layout %d: %w", i, err)
		}

		if memberCount < 0 {
			return nil, fmt.Errorf("%w: buffer layout %d member count %d",
				ErrMalformedTable, i, memberCount)
		}

		raw, err := c.bytesAt(int(membersOff), int(memberCount)*layoutMemberSize)
		if err != nil {
			return nil, fmt.Errorf("%w: buffer layout %d members at 0x%x: %v",
				ErrMalformedTable, i, membersOff, err)
		}

		l.Members = make([]LayoutMember, memberCount)
		for j := range l.Members {
			m := &l.Members[j]
			rec := raw[j*layoutMemberSize:]
			m.Unk00 = int32(c.order.Uint32(rec[0:]))
			m.StructOffset = c.order.Uint32(rec[4:])
			m.Type = LayoutType(c.order.Uint32(rec[8:]))
			m.Semantic = LayoutSemantic(c.order.Uint32(rec[12:]))
			m.Index = int32(c.order.Uint32(rec[16:]))
		}
	}
	return layouts, nil
}

func parseTextures(c *cursor, h Header) ([]Texture, error) {
	texs := make([]Texture, h.TextureCount)
	for i := range texs {
		t := &texs[i]

		pathOff, err := c.u32()
		if err != nil {
			return nil, fmt.Errorf("texture %d: %w", i, err)
		}
		typeOff, _ := c.u32()
		t.Scale[0], _ = c.f32()
		t.Scale[1], _ = c.f32()
		for j := range t.Unk10 {
			t.Unk10[j], _ = c.u8()
		}
		t.Unk14, _ = c.i32()
		t.Unk18, _ = c.i32()
		if t.Unk1C, err = c.i32(); err != nil {
			return nil, fmt.Errorf("texture %d: %w", i, err)
		}

		if t.Path, err = readName(c, h, pathOff); err != nil {
			return nil, fmt.Errorf("texture %d path: %w", i, err)
		}
		if t.Type, err = readName(c, h, typeOff); err != nil {
			return nil, fmt.Errorf("texture %d type: %w", i, err)
		}
	}
	return texs, nil
}
