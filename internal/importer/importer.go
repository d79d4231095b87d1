// Package importer drives the full import pipeline: read a FLVER file,
// decode it, reconstruct the scene and hand the result to a host
// builder. It owns file IO and error isolation; format knowledge lives
// in pkg/flver and pkg/scene.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/flver/pkg/flver"
	"github.com/Faultbox/flver/pkg/scene"
)

// SceneBuilder receives the reconstructed scene. Hosts implement this
// once per target (a glTF writer, an in-memory viewer, a test recorder);
// the importer never knows which.
type SceneBuilder interface {
	BuildScene(name string, s *scene.Scene) error
}

// Importer runs imports with a fixed configuration.
type Importer struct {
	Builder SceneBuilder
	Options scene.Options
	Logger  *zap.Logger

	aborted atomic.Bool
}

// New returns an importer delivering scenes to builder.
func New(builder SceneBuilder, opts scene.Options, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{Builder: builder, Options: opts, Logger: log}
}

// ImportFile reads, decodes and reconstructs one model file, then hands
// the scene to the builder under the file's base name.
func (imp *Importer) ImportFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	f, err := flver.Parse(data, flver.WithLogger(imp.Logger))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	game, exact := f.Profile()
	imp.Logger.Info("parsed model",
		zap.String("path", path),
		zap.String("game", game),
		zap.Bool("exactVersion", exact),
		zap.Int("bones", len(f.Bones)),
		zap.Int("meshes", len(f.Meshes)),
		zap.Int("vertices", f.TotalVertexCount()))

	opts := imp.Options
	if opts.Logger == nil {
		opts.Logger = imp.Logger
	}
	s, err := scene.Build(f, opts)
	if err != nil {
		return fmt.Errorf("building scene for %s: %w", path, err)
	}

	name := modelName(path)
	if err := imp.Builder.BuildScene(name, s); err != nil {
		return fmt.Errorf("delivering scene %s: %w", name, err)
	}
	return nil
}

// FileResult records the outcome of one file in a batch.
type FileResult struct {
	Path string
	Err  error
}

// Abort stops a running batch before its next file. The file currently
// importing finishes; files are never left half-delivered.
func (imp *Importer) Abort() {
	imp.aborted.Store(true)
}

// ImportBatch imports each file in turn. A failed file is recorded and
// the batch continues; only the results slice reports failures, so the
// caller decides whether partial success is acceptable. An Abort call
// stops the batch between files, leaving the rest unprocessed.
func (imp *Importer) ImportBatch(paths []string) []FileResult {
	imp.aborted.Store(false)
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		if imp.aborted.Load() {
			imp.Logger.Warn("batch aborted",
				zap.Int("processed", len(results)),
				zap.Int("remaining", len(paths)-len(results)))
			break
		}
		err := imp.ImportFile(path)
		if err != nil {
			imp.Logger.Error("import failed",
				zap.String("path", path),
				zap.Error(err))
		}
		results = append(results, FileResult{Path: path, Err: err})
	}
	return results
}

// modelName derives the scene name from the file path, dropping the
// directory and extension.
func modelName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
