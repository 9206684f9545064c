// Package export writes globe snapshots as Wavefront OBJ meshes.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/genesisforge/internal/engine/quadtree"
)

// Options controls OBJ output.
type Options struct {
	LevelColors bool // tint vertices by subdivision level instead of biome
	Compress    bool // zstd-compress; implied by a ".zst" path suffix
}

// Summary counts what was written.
type Summary struct {
	Objects   int
	Vertices  int
	Triangles int
}

// WriteOBJ writes one object per renderable with per-vertex colors
// ("v x y z r g b") and 1-based triangle faces.
func WriteOBJ(w io.Writer, renderables []quadtree.Renderable, opts Options) (Summary, error) {
	var sum Summary
	bw := bufio.NewWriterSize(w, 256*1024)

	fmt.Fprintf(bw, "# genesisforge globe export\n# objects %d\n", len(renderables))
	for _, r := range renderables {
		mesh := r.Mesh
		if mesh.Released() {
			continue
		}
		fmt.Fprintf(bw, "o %s\n", objectName(r))

		tint := quadtree.LevelColor(r.Level)
		for i, p := range mesh.Positions {
			c, ok := tint, true
			if !opts.LevelColors {
				ok = i < len(mesh.Colors)
				if ok {
					c = mesh.Colors[i]
				}
			}
			if ok {
				fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", p[0], p[1], p[2], c[0], c[1], c[2])
			} else {
				fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
			}
		}

		base := uint32(sum.Vertices) + 1
		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			fmt.Fprintf(bw, "f %d %d %d\n",
				base+mesh.Indices[i], base+mesh.Indices[i+1], base+mesh.Indices[i+2])
		}

		sum.Objects++
		sum.Vertices += mesh.VertexCount()
		sum.Triangles += mesh.TriangleCount()
	}

	if err := bw.Flush(); err != nil {
		return sum, fmt.Errorf("write obj: %w", err)
	}
	return sum, nil
}

// objectName turns a node key like "+x/031" into an OBJ-safe name.
func objectName(r quadtree.Renderable) string {
	name := strings.NewReplacer("+", "pos", "-", "neg", "/", "_").Replace(r.Key)
	return fmt.Sprintf("%s_l%d", strings.TrimSuffix(name, "_"), r.Level)
}

// WriteFile writes an OBJ file, zstd-compressed when opts.Compress is set
// or the path ends in ".zst".
func WriteFile(path string, renderables []quadtree.Renderable, opts Options) (Summary, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("create export dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return Summary{}, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if !opts.Compress && !strings.HasSuffix(path, ".zst") {
		sum, err := WriteOBJ(f, renderables, opts)
		if err != nil {
			return sum, err
		}
		return sum, f.Close()
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return Summary{}, fmt.Errorf("zstd writer: %w", err)
	}
	sum, err := WriteOBJ(enc, renderables, opts)
	if err != nil {
		enc.Close()
		return sum, err
	}
	if err := enc.Close(); err != nil {
		return sum, fmt.Errorf("zstd close: %w", err)
	}
	return sum, f.Close()
}

// Open returns a reader over an exported file, decompressing ".zst" files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return &zstdReadCloser{Decoder: dec, file: f}, nil
}

type zstdReadCloser struct {
	*zstd.Decoder
	file *os.File
}

func (r *zstdReadCloser) Close() error {
	r.Decoder.Close()
	return r.file.Close()
}
