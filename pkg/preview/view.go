package preview

import (
	"github.com/taigrr/ivy/pkg/geom"
	"github.com/taigrr/ivy/pkg/math3d"
	"github.com/taigrr/ivy/pkg/vine"
)

// View draws 3D wireframe content through a camera onto a canvas. The
// view-projection matrix is computed once per frame in Begin, so a frame
// is Begin followed by any number of draw calls.
type View struct {
	cam    *Camera
	canvas *Canvas
	vp     math3d.Mat4
}

// NewView creates a view drawing through cam onto canvas.
func NewView(cam *Camera, canvas *Canvas) *View {
	return &View{cam: cam, canvas: canvas}
}

// Begin clears the canvas and captures the camera state for this frame.
func (v *View) Begin(background Color) {
	v.canvas.Clear(background)
	v.cam.AspectRatio = float64(v.canvas.Width) / float64(v.canvas.Height)
	v.vp = v.cam.ViewProjection()
}

// Line3D draws a world-space line. Lines with both endpoints outside the
// frustum are dropped rather than clipped.
func (v *View) Line3D(a, b math3d.Vec3, col Color) {
	x0, y0, ok0 := v.project(a)
	x1, y1, ok1 := v.project(b)
	if !ok0 && !ok1 {
		return
	}
	v.canvas.Line(int(x0), int(y0), int(x1), int(y1), col)
}

// Grid draws a reference grid on the XZ plane at Y=0.
func (v *View) Grid(size, step float64, col Color) {
	half := size / 2
	for x := -half; x <= half; x += step {
		v.Line3D(math3d.V3(x, 0, -half), math3d.V3(x, 0, half), col)
	}
	for z := -half; z <= half; z += step {
		v.Line3D(math3d.V3(-half, 0, z), math3d.V3(half, 0, z), col)
	}
}

// Axes draws the world axes at the origin.
func (v *View) Axes(length float64) {
	origin := math3d.Zero3()
	v.Line3D(origin, math3d.V3(length, 0, 0), ColorAxisX)
	v.Line3D(origin, math3d.V3(0, length, 0), ColorAxisY)
	v.Line3D(origin, math3d.V3(0, 0, length), ColorAxisZ)
}

// MeshEdges draws every triangle edge of a mesh. Meant for small meshes
// like foliage and environment walls; big tube meshes read better as a
// skeleton.
func (v *View) MeshEdges(m *geom.Mesh, col Color) {
	for i := range m.Faces {
		a, b, c := m.Triangle(i)
		v.Line3D(a, b, col)
		v.Line3D(b, c, col)
		v.Line3D(c, a, col)
	}
}

// Skeleton draws a grown vine as polylines along each bud's committed
// path, which keeps dense tube geometry legible at terminal resolution.
func (v *View) Skeleton(t *vine.Tree, col Color) {
	for i := 1; i < t.Len(); i++ {
		bud := t.At(i)
		if len(bud.Growth) == 0 {
			continue
		}
		for s := 1; s < len(bud.Growth); s++ {
			v.Line3D(bud.Growth[s-1].Position, bud.Growth[s].Position, col)
		}
		v.Line3D(bud.Growth[len(bud.Growth)-1].Position, bud.Position, col)
	}
}

func (v *View) project(p math3d.Vec3) (float64, float64, bool) {
	clip := v.vp.MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, false
	}
	x := (ndc.X + 1) * 0.5 * float64(v.canvas.Width)
	y := (1 - ndc.Y) * 0.5 * float64(v.canvas.Height)
	return x, y, true
}

// Canvas returns the canvas the view draws into.
func (v *View) Canvas() *Canvas { return v.canvas }
