package importer

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/flver/pkg/scene"
)

// recordingBuilder captures delivered scenes for inspection.
type recordingBuilder struct {
	names   []string
	scenes  []*scene.Scene
	fail    error
	onBuild func()
}

func (r *recordingBuilder) BuildScene(name string, s *scene.Scene) error {
	if r.fail != nil {
		return r.fail
	}
	r.names = append(r.names, name)
	r.scenes = append(r.scenes, s)
	if r.onBuild != nil {
		r.onBuild()
	}
	return nil
}

// makeEmptyModel builds the smallest valid model file: a header with
// every table count at zero.
func makeEmptyModel() []byte {
	buf := make([]byte, 128)
	copy(buf, "FLVER\x00")
	copy(buf[6:], "L\x00")
	binary.LittleEndian.PutUint32(buf[8:], 0x2000C) // version
	binary.LittleEndian.PutUint32(buf[12:], 128)    // data offset
	buf[72] = 16 // vertex index size
	buf[73] = 1  // unicode names
	return buf
}

func writeTempModel(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write model file: %v", err)
	}
	return path
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTempModel(t, dir, "chr_0001.flver", makeEmptyModel())

	builder := &recordingBuilder{}
	imp := New(builder, scene.DefaultOptions(), nil)

	if err := imp.ImportFile(path); err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}

	if len(builder.names) != 1 {
		t.Fatalf("expected 1 delivered scene, got %d", len(builder.names))
	}
	if builder.names[0] != "chr_0001" {
		t.Errorf("expected scene name 'chr_0001', got %q", builder.names[0])
	}
	if builder.scenes[0].Skeleton == nil {
		t.Error("expected non-nil skeleton in delivered scene")
	}
}

func TestImportFileMissing(t *testing.T) {
	builder := &recordingBuilder{}
	imp := New(builder, scene.DefaultOptions(), nil)

	if err := imp.ImportFile("/nonexistent/model.flver"); err == nil {
		t.Error("expected error importing missing file, got nil")
	}
	if len(builder.names) != 0 {
		t.Error("builder should not receive a scene on read failure")
	}
}

func TestImportFileBuilderError(t *testing.T) {
	dir := t.TempDir()
	path := writeTempModel(t, dir, "m.flver", makeEmptyModel())

	wantErr := errors.New("host rejected scene")
	imp := New(&recordingBuilder{fail: wantErr}, scene.DefaultOptions(), nil)

	err := imp.ImportFile(path)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected builder error to propagate, got %v", err)
	}
}

func TestImportBatchIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good1 := writeTempModel(t, dir, "a.flver", makeEmptyModel())
	bad := writeTempModel(t, dir, "b.flver", []byte("not a model"))
	good2 := writeTempModel(t, dir, "c.flver", makeEmptyModel())

	builder := &recordingBuilder{}
	imp := New(builder, scene.DefaultOptions(), nil)

	results := imp.ImportBatch([]string{good1, bad, good2})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("first file should succeed, got %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("corrupt file should report an error")
	}
	if results[2].Err != nil {
		t.Errorf("batch should continue past a failure, got %v", results[2].Err)
	}

	if len(builder.names) != 2 {
		t.Errorf("expected 2 delivered scenes, got %d", len(builder.names))
	}
}

func TestImportBatchAbort(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTempModel(t, dir, "a.flver", makeEmptyModel()),
		writeTempModel(t, dir, "b.flver", makeEmptyModel()),
	}

	// Abort after the first delivery; the second file must not start.
	builder := &recordingBuilder{}
	imp := New(builder, scene.DefaultOptions(), nil)
	builder.onBuild = imp.Abort

	results := imp.ImportBatch(paths)
	if len(results) != 1 {
		t.Fatalf("expected 1 result before abort, got %d", len(results))
	}
	if len(builder.names) != 1 {
		t.Errorf("expected 1 delivered scene, got %d", len(builder.names))
	}
}

func TestModelName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/models/chr_0001.flver", "chr_0001"},
		{"plain.flver", "plain"},
		{"/deep/path/noext", "noext"},
	}
	for _, tt := range tests {
		if got := modelName(tt.path); got != tt.want {
			t.Errorf("modelName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
