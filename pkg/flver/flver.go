// Package flver decodes FromSoftware FLVER model files: header, bone,
// material, mesh, buffer layout, vertex buffer and face set tables,
// plus layout-driven vertex channel extraction. It reconstructs no
// scene; see pkg/scene for that.
package flver

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Option configures parsing.
type Option func(*parseOptions)

type parseOptions struct {
	log *zap.Logger
}

// WithLogger routes parser diagnostics (such as the unsupported-version
// warning) to the given logger instead of discarding them.
func WithLogger(log *zap.Logger) Option {
	return func(o *parseOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// Parse decodes FLVER data from a byte slice. The buffer must already
// be decompressed; archive containers are not handled here.
func Parse(data []byte, opts ...Option) (*File, error) {
	o := parseOptions{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	c := newCursor(data)

	header, profile, err := parseHeader(c, o.log)
	if err != nil {
		return nil, err
	}

	f := &File{Header: header, profile: profile}

	// Dummy points carry no geometry; skip their records to stay
	// aligned with the tables that follow.
	if err := c.skip(int(header.DummyCount) * dummySize); err != nil {
		return nil, fmt.Errorf("%w: dummy table: %v", ErrMalformedTable, err)
	}

	if f.Materials, err = parseMaterials(c, header); err != nil {
		return nil, err
	}
	if f.Bones, err = parseBones(c, header); err != nil {
		return nil, err
	}
	if f.Meshes, err = parseMeshes(c, header); err != nil {
		return nil, err
	}
	if f.FaceSets, err = parseFaceSets(c, header); err != nil {
		return nil, err
	}
	if f.BufferLayouts, err = parseBufferLayouts(c, header); err != nil {
		return nil, err
	}
	if f.VertexBuffers, err = parseVertexBuffers(c, header); err != nil {
		return nil, err
	}
	if f.Textures, err = parseTextures(c, header); err != nil {
		return nil, err
	}

	for i := range f.Meshes {
		for _, fsIdx := range f.Meshes[i].FaceSetIndices {
			if int(fsIdx) < 0 || int(fsIdx) >= len(f.FaceSets) {
				return nil, fmt.Errorf("%w: mesh %d face set index %d outside table of %d",
					ErrMalformedTable, i, fsIdx, len(f.FaceSets))
			}
		}
	}

	return f, nil
}

// ParseFile reads and decodes a FLVER file from disk.
func ParseFile(path string, opts ...Option) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading FLVER file: %w", err)
	}
	return Parse(data, opts...)
}

// TotalVertexCount returns the vertex count summed over all buffers
// with buffer index 0 (extra buffers repeat the same vertices with
// more channels).
func (f *File) TotalVertexCount() int {
	total := 0
	for i := range f.VertexBuffers {
		if f.VertexBuffers[i].BufferIndex == 0 {
			total += int(f.VertexBuffers[i].VertexCount)
		}
	}
	return total
}
