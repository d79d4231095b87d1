// Package scene reconstructs a renderer-agnostic skeleton and mesh
// representation from a decoded FLVER file. All entities live for one
// build and are handed off whole; nothing is cached across files.
package scene

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/flver/pkg/flver"
)

// Options controls one scene build.
type Options struct {
	Convention Convention

	// NormalizeWeights rescales per-vertex influences to sum to one.
	// Games disagree on whether weights are stored normalized, so this
	// is configuration rather than a constant.
	NormalizeWeights bool

	// Strict aborts the whole file on per-mesh data-quality errors
	// instead of skipping the offending mesh.
	Strict bool

	Logger *zap.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Convention:       ConventionNative,
		NormalizeWeights: true,
	}
}

// Scene is the fully reconstructed model handed to the host.
type Scene struct {
	Skeleton *Skeleton
	Meshes   []*ReconstructedMesh

	// Materials carries the material names referenced by
	// ReconstructedMesh.MaterialIndex, for host-side naming.
	Materials []string
}

// Build converts a decoded FLVER file into a Scene. Structural errors
// abort the build; a mesh with an unsupported vertex encoding or an
// out-of-range bone reference is skipped (with a warning) unless
// opts.Strict is set, so one bad mesh does not sink the file.
func Build(f *flver.File, opts Options) (*Scene, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	sk, err := BuildSkeleton(f.Bones, opts.Convention)
	if err != nil {
		return nil, err
	}

	s := &Scene{Skeleton: sk}
	for i := range f.Materials {
		s.Materials = append(s.Materials, f.Materials[i].Name)
	}

	for i := range f.Meshes {
		rm, err := buildMesh(f, i, len(sk.Bones), opts)
		if err != nil {
			if opts.Strict || !isMeshLocal(err) {
				return nil, err
			}
			log.Warn("skipping mesh",
				zap.Int("mesh", i),
				zap.Error(err))
			continue
		}
		s.Meshes = append(s.Meshes, rm)
	}

	return s, nil
}

func buildMesh(f *flver.File, meshIndex, boneCount int, opts Options) (*ReconstructedMesh, error) {
	va, err := f.DecodeVertices(&f.Meshes[meshIndex])
	if err != nil {
		return nil, err
	}
	return assembleMesh(f, meshIndex, va, boneCount, opts)
}

// isMeshLocal reports whether an error affects only a single mesh and
// can be isolated without corrupting the rest of the import.
func isMeshLocal(err error) bool {
	return errors.Is(err, flver.ErrUnsupportedVertexFormat) ||
		errors.Is(err, ErrBoneIndexOutOfRange)
}
