package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Faultbox/genesisforge/internal/config"
	"github.com/Faultbox/genesisforge/internal/engine/camera"
	"github.com/Faultbox/genesisforge/internal/engine/cubesphere"
	"github.com/Faultbox/genesisforge/internal/engine/quadtree"
	"github.com/Faultbox/genesisforge/internal/engine/scheduler"
	"github.com/Faultbox/genesisforge/internal/engine/terrain"
	"github.com/Faultbox/genesisforge/internal/export"
	"github.com/Faultbox/genesisforge/internal/logger"
	"github.com/Faultbox/genesisforge/internal/viewer"
	"github.com/Faultbox/genesisforge/pkg/math"
)

func cmdPresets(args []string) {
	fs := flag.NewFlagSet("presets", flag.ExitOnError)
	fs.Parse(args)

	fmt.Printf("%-16s %9s %7s %6s  %s\n", "NAME", "FREQUENCY", "HEIGHT", "SEED", "DESCRIPTION")
	for _, p := range terrain.Presets() {
		fmt.Printf("%-16s %9.2f %7.2f %6d  %s\n",
			p.Name, p.Params.Frequency, p.Params.HeightMultiplier, p.Params.Seed, p.Description)
	}
}

func cmdLegend(args []string) {
	fs := flag.NewFlagSet("legend", flag.ExitOnError)
	fs.Parse(args)

	fmt.Println("Biome bands (elevation as a fraction of radius):")
	for _, b := range terrain.Biomes() {
		lo, hi := b.Range()
		fmt.Printf("  %-20s #%06x  [%6.3f, %6.3f)\n", b, b.LegendColor(), lo, hi)
	}
	fmt.Println()
	fmt.Println("LOD level tints:")
	for level := 0; level < 6; level++ {
		c := quadtree.LevelColor(level)
		fmt.Printf("  level %d  (%.0f, %.0f, %.0f)\n", level, c[0], c[1], c[2])
	}
}

func cmdPatch(args []string) {
	fs := flag.NewFlagSet("patch", flag.ExitOnError)
	common := addCommonFlags(fs)
	faceName := fs.String("face", "+x", "Cube face (+x, -x, +y, -y, +z, -z)")
	uvFlag := fs.String("uv", "-1,-1,1,1", "UV range as minU,minV,maxU,maxV")
	res := fs.Int("res", 0, "Grid cells per edge (0 = config)")
	fs.Parse(args)

	cfg := common.load()
	defer logger.Sync()

	face, ok := cubesphere.ParseFace(*faceName)
	if !ok {
		fatalf("Unknown face: %s", *faceName)
	}
	uv, err := parseFloats(*uvFlag, 4)
	if err != nil {
		fatalf("Error: %v", err)
	}
	resolution := cfg.LOD.Resolution
	if *res > 0 {
		resolution = *res
	}
	uvRange := terrain.UVRange{
		Min: math.Vec2{X: uv[0], Y: uv[1]},
		Max: math.Vec2{X: uv[2], Y: uv[3]},
	}
	params := noiseParams(cfg)

	start := time.Now()
	mesh, err := terrain.GeneratePatch(face.Normal(), uvRange, resolution, cfg.Planet.Radius, params)
	if err != nil {
		fatalf("Error: %v", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("Patch:     %s %s\n", face, uvRange)
	fmt.Printf("Params:    frequency %.2f, height %.3f, seed %d\n", params.Frequency, params.HeightMultiplier, params.Seed)
	fmt.Printf("Vertices:  %s\n", humanize.Comma(int64(mesh.VertexCount())))
	fmt.Printf("Triangles: %s\n", humanize.Comma(int64(mesh.TriangleCount())))
	fmt.Printf("Center:    (%.3f, %.3f, %.3f)\n", mesh.Center.X, mesh.Center.Y, mesh.Center.Z)
	fmt.Printf("Bounds:    %v - %v\n", mesh.Bounds.Min, mesh.Bounds.Max)
	fmt.Printf("Time:      %v\n", elapsed)
	fmt.Println()
	fmt.Println("Vertices by biome:")

	counts := biomeHistogram(mesh, cfg.Planet.Radius)
	for _, b := range terrain.Biomes() {
		if counts[b] > 0 {
			fmt.Printf("  %-20s %d\n", b, counts[b])
		}
	}
}

// biomeHistogram recovers each vertex's elevation from its distance to the
// planet center.
func biomeHistogram(mesh *terrain.Mesh, radius float64) map[terrain.Biome]int {
	counts := make(map[terrain.Biome]int)
	for _, p := range mesh.Positions {
		e := math.Vec3FromArray32(p).Length()/radius - 1
		counts[terrain.BiomeAt(e)]++
	}
	return counts
}

func cmdFly(args []string) {
	fs := flag.NewFlagSet("fly", flag.ExitOnError)
	common := addCommonFlags(fs)
	from := fs.Float64("from", 60, "Start distance from the planet center")
	to := fs.Float64("to", 12, "End distance")
	frames := fs.Int("frames", 60, "Number of frames")
	interval := fs.Duration("interval", 16*time.Millisecond, "Frame interval")
	pitch := fs.Float64("pitch", 0.2, "Camera pitch (radians)")
	yaw := fs.Float64("yaw", 0, "Camera yaw (radians)")
	fs.Parse(args)

	cfg := common.load()
	defer logger.Sync()
	if *frames < 1 {
		fatalf("Error: -frames must be >= 1")
	}

	sched, globe := newEngine(cfg)
	defer sched.Close()
	defer globe.Close()

	cam := camera.NewOrbitCamera()
	fmt.Printf("%5s %8s %6s %7s %9s %5s %9s\n", "FRAME", "DISTANCE", "NODES", "VISIBLE", "REQUESTED", "DEPTH", "TRIANGLES")
	for i := 0; i < *frames; i++ {
		t := 0.0
		if *frames > 1 {
			t = float64(i) / float64(*frames-1)
		}
		cam.SetOrbit(*from+(*to-*from)*t, *pitch, *yaw)
		globe.Update(cam.Position())

		s := globe.Stats()
		fmt.Printf("%5d %8.2f %6d %7d %9d %5d %9d\n",
			i, cam.Distance, s.Nodes, s.Visible, s.Requested, s.MaxDepth, s.Triangles)
		time.Sleep(*interval)
	}

	st := sched.Stats()
	fmt.Printf("\nScheduler: %d workers, %d submitted, %d completed, %d cancelled, %d dropped\n",
		st.Workers, st.Submitted, st.Completed, st.Cancelled, st.Dropped)
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	common := addCommonFlags(fs)
	out := fs.String("o", "", "Output file (.obj or .obj.zst)")
	camFlag := fs.String("camera", "0,5,25", "Camera position as x,y,z")
	lodColors := fs.Bool("lod-colors", false, "Color vertices by LOD level")
	timeout := fs.Duration("timeout", time.Minute, "Give up settling after this long")
	fs.Parse(args)

	if *out == "" {
		fmt.Fprintln(os.Stderr, "Usage: planetgen export -o <file.obj[.zst]> [-camera x,y,z] [-lod-colors]")
		os.Exit(1)
	}
	pos, err := parseVec3(*camFlag)
	if err != nil {
		fatalf("Error: %v", err)
	}

	cfg := common.load()
	defer logger.Sync()

	sched, globe := newEngine(cfg)
	defer sched.Close()
	defer globe.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	stats, err := settle(ctx, globe, pos)
	if err != nil {
		fatalf("Error: tree did not settle: %v (%d requests outstanding)", err, stats.Requested)
	}

	sum, err := export.WriteFile(*out, globe.Renderables(), export.Options{LevelColors: *lodColors})
	if err != nil {
		fatalf("Error: %v", err)
	}
	size := "?"
	if info, err := os.Stat(*out); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	fmt.Printf("Wrote %s (%s): %d patches, %s vertices, %s triangles (max depth %d)\n",
		*out, size, sum.Objects, humanize.Comma(int64(sum.Vertices)), humanize.Comma(int64(sum.Triangles)), stats.MaxDepth)
}

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	url := fs.String("url", "ws://127.0.0.1:8088/ws", "Viewer WebSocket URL")
	camFlag := fs.String("camera", "0,5,25", "Camera position as x,y,z")
	duration := fs.Duration("duration", 10*time.Second, "How long to watch")
	fs.Parse(args)

	pos, err := parseVec3(*camFlag)
	if err != nil {
		fatalf("Error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	client := viewer.NewClient()
	hello, err := client.Connect(ctx, *url)
	if err != nil {
		fatalf("Error: %v", err)
	}
	defer client.Disconnect()
	fmt.Printf("Session %s: radius %.1f, max level %d, seed %d\n",
		hello.Session, hello.Radius, hello.MaxLevel, hello.Params.Seed)

	added, removed := 0, 0
	client.RegisterHandler(viewer.TypeAdd, func([]byte) error {
		added++
		return nil
	})
	client.RegisterHandler(viewer.TypeRemove, func(raw []byte) error {
		var m viewer.RemoveMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		removed += len(m.Keys)
		return nil
	})
	client.RegisterHandler(viewer.TypeStats, func(raw []byte) error {
		var m viewer.StatsMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		fmt.Printf("frame %5d  +%-4d -%-4d visible %4d requested %3d depth %d\n",
			m.Frame, added, removed, m.Tree.Visible, m.Tree.Requested, m.Tree.MaxDepth)
		added, removed = 0, 0
		return nil
	})
	client.RegisterHandler(viewer.TypeError, func(raw []byte) error {
		var m viewer.ErrorMessage
		_ = json.Unmarshal(raw, &m)
		fmt.Fprintf(os.Stderr, "server: %s\n", m.Message)
		return nil
	})

	if err := client.SetCamera(pos.X, pos.Y, pos.Z); err != nil {
		fatalf("Error: %v", err)
	}
	if err := client.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		fatalf("Error: %v", err)
	}
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	common := addCommonFlags(fs)
	out := fs.String("o", "", "Output path (default: user config dir)")
	fs.Parse(args)

	cfg := common.load()
	defer logger.Sync()

	path := *out
	var err error
	if path == "" {
		path, err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		fatalf("Error: %v", err)
	}
	fmt.Printf("Config written to %s\n", path)
}

func noiseParams(cfg *config.Config) terrain.NoiseParams {
	return terrain.NoiseParams{
		Frequency:        cfg.Planet.Frequency,
		HeightMultiplier: cfg.Planet.HeightMultiplier,
		Seed:             cfg.Planet.Seed,
	}
}

// newEngine starts a scheduler and builds a globe on it.
func newEngine(cfg *config.Config) (*scheduler.Scheduler, *quadtree.Globe) {
	opts, err := quadtree.OptionsFromConfig(cfg)
	if err != nil {
		fatalf("Error: %v", err)
	}
	sched := scheduler.New(scheduler.Config{
		Workers:     cfg.Generation.Workers,
		PendingWarn: cfg.Generation.PendingWarn,
	})
	sched.Start(context.Background())

	globe, err := quadtree.New(sched, opts)
	if err != nil {
		sched.Close()
		fatalf("Error: %v", err)
	}
	return sched, globe
}

// settle updates the globe for a fixed camera until no generation is in
// flight.
func settle(ctx context.Context, g *quadtree.Globe, camera math.Vec3) (quadtree.Stats, error) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		g.Update(camera)
		s := g.Stats()
		if s.Requested == 0 {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case <-ticker.C:
		}
	}
}
