// flvertool is a CLI utility for inspecting and converting FromSoftware
// FLVER model files.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/flver/internal/config"
	"github.com/Faultbox/flver/internal/export"
	"github.com/Faultbox/flver/internal/importer"
	"github.com/Faultbox/flver/internal/logger"
	"github.com/Faultbox/flver/pkg/flver"
	"github.com/Faultbox/flver/pkg/math"
	"github.com/Faultbox/flver/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "bones":
		cmdBones(args)
	case "export", "convert":
		cmdExport(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`flvertool - FromSoftware FLVER model utility

Usage:
  flvertool <command> [options] <file.flver>...

Commands:
  info <file.flver>              Show header and table summary
  bones <file.flver>             Print the bone hierarchy
  export <file.flver>...         Convert model(s) to glTF

Options:
  -config <path>   Explicit config file
  -coords <conv>   Coordinate convention: native or zup
  -out <dir>       Output directory for exported scenes
  -strict          Fail a file on any mesh decode error
  -debug           Enable debug logging

Examples:
  flvertool info c0000.flver
  flvertool bones c0000.flver
  flvertool export -coords zup -out ./out c0000.flver c1000.flver`)
}

// setup parses flags, loads the config and initializes logging. It
// returns the config plus the positional arguments left after flags.
func setup(args []string) (*config.Config, []string) {
	config.ParseFlags(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	return cfg, flag.CommandLine.Args()
}

func cmdInfo(args []string) {
	_, files := setup(args)
	if len(files) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: flvertool info <file.flver>")
		os.Exit(1)
	}

	f, err := flver.ParseFile(files[0], flver.WithLogger(logger.Log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	game, exact := f.Profile()
	endian := "little"
	if f.Header.BigEndian {
		endian = "big"
	}

	fmt.Printf("File:       %s\n", files[0])
	fmt.Printf("Version:    0x%X (%s", f.Header.Version, game)
	if !exact {
		fmt.Print(", closest match")
	}
	fmt.Println(")")
	fmt.Printf("Endianness: %s\n", endian)
	fmt.Printf("Bones:      %d\n", len(f.Bones))
	fmt.Printf("Materials:  %d\n", len(f.Materials))
	fmt.Printf("Meshes:     %d\n", len(f.Meshes))
	fmt.Printf("Face sets:  %d\n", len(f.FaceSets))
	fmt.Printf("Vertices:   %d\n", f.TotalVertexCount())
	fmt.Printf("Bounds:     min %v max %v\n", f.Header.BoundingBoxMin, f.Header.BoundingBoxMax)
}

func cmdBones(args []string) {
	cfg, files := setup(args)
	if len(files) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: flvertool bones <file.flver>")
		os.Exit(1)
	}

	f, err := flver.ParseFile(files[0], flver.WithLogger(logger.Log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	conv, _ := scene.ParseConvention(cfg.Import.Coordinates)
	sk, err := scene.BuildSkeleton(f.Bones, conv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, root := range sk.Roots {
		printBone(sk, root, 0)
	}
	fmt.Fprintf(os.Stderr, "\n(%d bones, %d roots)\n", len(sk.Bones), len(sk.Roots))
}

func printBone(sk *scene.Skeleton, index, depth int) {
	b := &sk.Bones[index]
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	pos := b.World.TransformVec3(math.Vec3{})
	fmt.Printf("[%d] %s (%.3f, %.3f, %.3f)\n", index, b.Name, pos.X, pos.Y, pos.Z)
	for _, child := range b.Children {
		printBone(sk, child, depth+1)
	}
}

func cmdExport(args []string) {
	cfg, files := setup(args)
	if len(files) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: flvertool export <file.flver>...")
		os.Exit(1)
	}

	conv, ok := scene.ParseConvention(cfg.Import.Coordinates)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown coordinate convention: %s\n", cfg.Import.Coordinates)
		os.Exit(1)
	}

	opts := scene.Options{
		Convention:       conv,
		NormalizeWeights: cfg.Import.NormalizeWeights,
		Strict:           cfg.Import.Strict,
		Logger:           logger.Log,
	}

	writer := export.NewGLTF(cfg.Export, logger.Log)
	imp := importer.New(writer, opts, logger.Log)

	results := imp.ImportBatch(files)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Failed: %s: %v\n", r.Path, r.Err)
		} else {
			fmt.Printf("Exported: %s\n", r.Path)
		}
	}

	logger.Log.Info("batch finished",
		zap.Int("total", len(results)),
		zap.Int("failed", failed))
	logger.Sync()

	if failed > 0 {
		os.Exit(1)
	}
}
