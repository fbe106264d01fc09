package preview

import (
	"image"
	"image/color"
	"image/png"
	"os"

	uv "github.com/charmbracelet/ultraviolet"
)

// Color is an alias for color.RGBA.
type Color = color.RGBA

// Palette used by the vine preview.
var (
	ColorBackground = color.RGBA{18, 18, 24, 255}
	ColorBranch     = color.RGBA{139, 94, 60, 255}
	ColorLeaf       = color.RGBA{76, 175, 80, 255}
	ColorEnv        = color.RGBA{90, 90, 100, 255}
	ColorGrid       = color.RGBA{50, 50, 60, 255}
	ColorAxisX      = color.RGBA{220, 60, 60, 255}
	ColorAxisY      = color.RGBA{60, 220, 60, 255}
	ColorAxisZ      = color.RGBA{60, 60, 220, 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Canvas is a pixel buffer drawn to the terminal with half-block
// characters, giving two pixel rows per terminal row.
type Canvas struct {
	Width  int
	Height int
	Pixels []Color
}

// NewCanvas creates a canvas. Height should be twice the terminal rows.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// Clear fills the canvas with one color.
func (c *Canvas) Clear(col Color) {
	for i := range c.Pixels {
		c.Pixels[i] = col
	}
}

// SetPixel writes a pixel, ignoring out-of-bounds coordinates.
func (c *Canvas) SetPixel(x, y int, col Color) {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return
	}
	c.Pixels[y*c.Width+x] = col
}

// GetPixel reads a pixel, returning transparent black out of bounds.
func (c *Canvas) GetPixel(x, y int) Color {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return Color{}
	}
	return c.Pixels[y*c.Width+x]
}

// Line draws a line with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int, col Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		c.SetPixel(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Draw converts the canvas to terminal cells: each cell is an upper
// half block with the foreground carrying the top pixel row and the
// background the bottom one.
func (c *Canvas) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < c.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: c.GetPixel(col, topY),
					Bg: c.GetPixel(col, botY),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// ToImage converts the canvas to an image.RGBA.
func (c *Canvas) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			img.SetRGBA(x, y, c.Pixels[y*c.Width+x])
		}
	}
	return img
}

// SavePNG writes the canvas to a PNG file, for snapshots of a grown
// vine without a terminal session.
func (c *Canvas) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, c.ToImage())
}
