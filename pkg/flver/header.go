package flver

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"
)

// headerSize is the fixed size of the FLVER header; tables start
// immediately after it.
const headerSize = 128

var magic = []byte("FLVER\x00")

// parseHeader reads and validates the file header, fixing the cursor's
// byte order from the endianness flag. An unknown version is a soft
// failure: the closest known profile is selected and decoding
// continues best-effort.
func parseHeader(c *cursor, log *zap.Logger) (Header, versionProfile, error) {
	var h Header

	if len(c.data) < headerSize {
		return h, versionProfile{}, fmt.Errorf("%w: file is %d bytes, header needs %d",
			ErrOutOfBounds, len(c.data), headerSize)
	}

	m, err := c.bytes(6)
	if err != nil {
		return h, versionProfile{}, err
	}
	if !bytes.Equal(m, magic) {
		return h, versionProfile{}, ErrBadMagic
	}

	endian, err := c.bytes(2)
	if err != nil {
		return h, versionProfile{}, err
	}
	switch {
	case endian[0] == 'L':
		c.order = binary.LittleEndian
	case endian[0] == 'B':
		h.BigEndian = true
		c.order = binary.BigEndian
	default:
		return h, versionProfile{}, fmt.Errorf("%w: endianness flag 0x%02x", ErrBadMagic, endian[0])
	}

	h.Version, _ = c.u32()
	h.DataOffset, _ = c.u32()
	h.DataLength, _ = c.u32()
	h.DummyCount, _ = c.i32()
	h.MaterialCount, _ = c.i32()
	h.BoneCount, _ = c.i32()
	h.MeshCount, _ = c.i32()
	h.VertexBufferCount, _ = c.i32()
	h.BoundingBoxMin, _ = c.vec3()
	h.BoundingBoxMax, _ = c.vec3()
	h.TrueFaceCount, _ = c.i32()
	h.TotalFaceCount, _ = c.i32()
	h.VertexIndexSize, _ = c.u8()

	uni, _ := c.u8()
	h.Unicode = uni != 0
	h.Unk4A[0], _ = c.u8()
	h.Unk4A[1], _ = c.u8()
	h.Unk4C, _ = c.i32()
	h.FaceSetCount, _ = c.i32()
	h.BufferLayoutCount, _ = c.i32()
	h.TextureCount, _ = c.i32()

	reserved, err := c.bytes(len(h.Reserved))
	if err != nil {
		return h, versionProfile{}, err
	}
	copy(h.Reserved[:], reserved)

	if int(h.DataOffset) > len(c.data) {
		return h, versionProfile{}, fmt.Errorf("%w: data offset 0x%x beyond file end",
			ErrMalformedTable, h.DataOffset)
	}

	for _, count := range []int32{h.DummyCount, h.MaterialCount, h.BoneCount,
		h.MeshCount, h.VertexBufferCount, h.FaceSetCount, h.BufferLayoutCount, h.TextureCount} {
		if count < 0 {
			return h, versionProfile{}, fmt.Errorf("%w: negative table count %d",
				ErrMalformedTable, count)
		}
	}

	profile, ok := lookupProfile(h.Version)
	if !ok {
		profile = closestProfile(h.Version)
		log.Warn("unsupported FLVER version, decoding best-effort",
			zap.Uint32("version", h.Version),
			zap.Uint32("profile_version", profile.Version),
			zap.String("profile_game", profile.Game),
			zap.Error(ErrUnsupportedVersion))
	}

	return h, profile, nil
}
