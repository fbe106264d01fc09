// ivy - procedural vine growth
// Grows ivy over a 3D environment and exports the result as binary glTF.
//
// Controls (preview mode):
//
//	Mouse drag  - Orbit around the vine
//	Scroll      - Zoom in/out
//	A/D         - Orbit left/right
//	W/S         - Tilt up/down
//	Space       - Random spin
//	R           - Reset view
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/ivy/pkg/geom"
	"github.com/taigrr/ivy/pkg/math3d"
	"github.com/taigrr/ivy/pkg/meshio"
	"github.com/taigrr/ivy/pkg/preview"
	"github.com/taigrr/ivy/pkg/vine"
)

var (
	outPath   = flag.String("out", "vine.glb", "Output .glb path")
	seedList  = flag.String("seeds", "0,0.05,0", "Seed positions as x,y,z;x,y,z;...")
	sunDir    = flag.String("sun", "0.3,-1,0.2", "Sun direction as x,y,z (empty disables the sun)")
	steps     = flag.Int("steps", 20, "Growth iterations")
	samples   = flag.Int("samples", 16, "Candidate samples per tip per step")
	budChance = flag.Float64("bud", 0.3, "Per-step chance a tip spawns a lateral bud")
	leafChnc  = flag.Float64("leaf", 0.3, "Per-step chance a tip places a leaf")
	thickness = flag.Float64("thickness", 0.04, "Branch radius in world units")
	seed      = flag.Uint64("seed", 1, "Random seed")
	doPreview = flag.Bool("preview", false, "Open an interactive terminal preview after growing")
	snapshot  = flag.String("snapshot", "", "Write a PNG wireframe snapshot to this path")
	targetFPS = flag.Int("fps", 30, "Preview target FPS")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ivy - procedural vine growth\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ivy [options] [environment.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Grows a vine over the environment mesh and writes the result\n")
		fmt.Fprintf(os.Stderr, "as binary glTF. Without an argument a demo ground+wall scene\n")
		fmt.Fprintf(os.Stderr, "is used.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nPreview controls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Tilt and orbit\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	envPath := ""
	if flag.NArg() > 0 {
		envPath = flag.Arg(0)
	}

	if err := run(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(envPath string) error {
	env, err := loadEnvironment(envPath)
	if err != nil {
		return err
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	grower := vine.NewGrower(cfg)
	grower.SetEnvironment([]*geom.Mesh{env}, nil)
	if err := grower.RebuildColliders(); err != nil {
		return err
	}

	start := time.Now()
	if err := grower.Grow(); err != nil {
		return fmt.Errorf("grow: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Grew %d buds in %d steps (%.0fms): %d branch triangles, %d leaf triangles\n",
		grower.Tree().Len()-1, grower.StepsRun(), time.Since(start).Seconds()*1000,
		grower.Branches().TriangleCount(), grower.Leaves().TriangleCount())

	if err := meshio.SaveGLB(*outPath, grower.Branches(), grower.Leaves()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", *outPath)

	if *snapshot != "" {
		if err := writeSnapshot(*snapshot, grower); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", *snapshot)
	}

	if *doPreview {
		return runPreview(grower)
	}
	return nil
}

// loadEnvironment loads a .glb scene, or synthesizes a ground plane with
// one wall when no path is given.
func loadEnvironment(path string) (*geom.Mesh, error) {
	if path != "" {
		env, err := meshio.LoadGLB(path)
		if err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
		return env, nil
	}

	env := geom.NewMesh("demo scene")
	env.AddPlane(math3d.NewTransform(math3d.Zero3(), math3d.QuatIdentity()),
		8, 8, 4, 4, false, true)

	// A wall along the X axis, facing -Z back over the ground.
	wallUp := math3d.AlignVectors(math3d.Up(), math3d.V3(0, 0, -1))
	env.AddPlane(math3d.NewTransform(math3d.V3(0, 1.5, 1), wallUp),
		8, 3, 4, 2, true, true)

	env.CalculateSmoothNormals()
	env.CalculateBounds()
	return env, nil
}

func buildConfig() (vine.Config, error) {
	cfg := vine.DefaultConfig()
	cfg.Steps = *steps
	cfg.Samples = *samples
	cfg.BudChance = *budChance
	cfg.LeafChance = *leafChnc
	cfg.BranchThickness = *thickness
	cfg.Seed = *seed

	seeds, err := parseSeeds(*seedList)
	if err != nil {
		return cfg, err
	}
	cfg.Seeds = seeds

	if *sunDir != "" {
		sun, err := parseVec3(*sunDir)
		if err != nil {
			return cfg, fmt.Errorf("sun: %w", err)
		}
		cfg.SunDirection = sun
	}
	return cfg, nil
}

func parseSeeds(s string) ([]math3d.Vec3, error) {
	var seeds []math3d.Vec3
	for part := range strings.SplitSeq(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := parseVec3(part)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", part, err)
		}
		seeds = append(seeds, v)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seed positions in %q", s)
	}
	return seeds, nil
}

func parseVec3(s string) (math3d.Vec3, error) {
	var x, y, z float64
	if _, err := fmt.Sscanf(s, "%f,%f,%f", &x, &y, &z); err != nil {
		return math3d.Vec3{}, fmt.Errorf("want x,y,z: %w", err)
	}
	return math3d.V3(x, y, z), nil
}

// drawScene renders one wireframe frame of the grown vine.
func drawScene(view *preview.View, grower *vine.Grower) {
	view.Begin(preview.ColorBackground)
	view.Grid(8, 1, preview.ColorGrid)
	view.Axes(0.5)
	view.MeshEdges(grower.Environment(), preview.ColorEnv)
	view.Skeleton(grower.Tree(), preview.ColorBranch)
	view.MeshEdges(grower.Leaves(), preview.ColorLeaf)
}

// sceneFraming picks an orbit center and radius that fit the vine.
func sceneFraming(grower *vine.Grower) (math3d.Vec3, float64) {
	m := grower.Branches()
	if m.TriangleCount() == 0 {
		m = grower.Environment()
	}
	center := m.Center()
	size := m.Size()
	radius := 2.5 * math.Max(size.X, math.Max(size.Y, size.Z))
	if radius < 3 {
		radius = 3
	}
	return center, radius
}

func writeSnapshot(path string, grower *vine.Grower) error {
	canvas := preview.NewCanvas(960, 540)
	cam := preview.NewCamera()
	center, radius := sceneFraming(grower)
	cam.Orbit(center, radius, math.Pi/5, 0.45)

	view := preview.NewView(cam, canvas)
	drawScene(view, grower)
	return canvas.SavePNG(path)
}

// orbitAxis tracks one orbit angle with spring-decayed velocity.
type orbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

func newOrbitAxis(fps int) orbitAxis {
	return orbitAxis{
		// Critically damped so the orbit coasts to a stop without
		// overshoot.
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

func (a *orbitAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

func runPreview(grower *vine.Grower) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Any-event mouse tracking plus SGR extended coordinates.
	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	renderer := preview.NewTerminalRenderer(term, width, height)
	cw, ch := renderer.CanvasSize()
	canvas := preview.NewCanvas(cw, ch)
	cam := preview.NewCamera()
	view := preview.NewView(cam, canvas)

	center, radius := sceneFraming(grower)
	zoom := radius

	yaw := newOrbitAxis(*targetFPS)
	pitch := newOrbitAxis(*targetFPS)
	pitch.Position = 0.4

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	var mouseDown bool
	var lastMouseX, lastMouseY int

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				renderer = preview.NewTerminalRenderer(term, width, height)
				cw, ch = renderer.CanvasSize()
				canvas = preview.NewCanvas(cw, ch)
				view = preview.NewView(cam, canvas)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"), ev.MatchString("q"):
					cancel()
					return
				case ev.MatchString("a", "left"):
					yaw.Velocity -= 0.04
				case ev.MatchString("d", "right"):
					yaw.Velocity += 0.04
				case ev.MatchString("w", "up"):
					pitch.Velocity += 0.03
				case ev.MatchString("s", "down"):
					pitch.Velocity -= 0.03
				case ev.MatchString("space"):
					yaw.Velocity += (rand.Float64() - 0.5) * 0.6
				case ev.MatchString("r"):
					yaw = newOrbitAxis(*targetFPS)
					pitch = newOrbitAxis(*targetFPS)
					pitch.Position = 0.4
					zoom = radius
				case ev.MatchString("+", "="):
					zoom = math.Max(radius*0.2, zoom-radius*0.1)
				case ev.MatchString("-", "_"):
					zoom = math.Min(radius*4, zoom+radius*0.1)
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					yaw.Velocity += float64(dx) * 0.01
					pitch.Velocity -= float64(dy) * 0.01
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					zoom = math.Max(radius*0.2, zoom-radius*0.1)
				case uv.MouseWheelDown:
					zoom = math.Min(radius*4, zoom+radius*0.1)
				}
			}
		}
	}()

	frame := time.Second / time.Duration(*targetFPS)
	const maxPitch = math.Pi/2 - 0.05

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()

		yaw.Update()
		pitch.Update()
		pitch.Position = math.Max(-maxPitch, math.Min(maxPitch, pitch.Position))

		cam.Orbit(center, zoom, yaw.Position, pitch.Position)
		drawScene(view, grower)
		if err := renderer.Render(canvas); err != nil {
			cleanup()
			return fmt.Errorf("render: %w", err)
		}

		if elapsed := time.Since(now); elapsed < frame {
			time.Sleep(frame - elapsed)
		}
	}
}
