package mesh

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// maxRasterSize caps either image dimension; Scale is reduced to fit.
const maxRasterSize = 4000

// ScannerColors returns a distinct color per scanner, cycling a fixed palette
func ScannerColors(n int) []color.RGBA {
	palette := []color.RGBA{
		{0, 0, 139, 255},    // dark blue (root)
		{178, 34, 34, 255},  // firebrick
		{0, 100, 0, 255},    // dark green
		{184, 134, 11, 255}, // dark goldenrod
		{106, 90, 205, 255}, // slate blue
		{0, 139, 139, 255},  // dark cyan
		{199, 21, 133, 255}, // medium violet red
		{85, 107, 47, 255},  // olive
	}
	out := make([]color.RGBA, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

// firstObservers maps each global beacon to the lowest scanner id that sees it
func firstObservers(al *Alignment) map[Point]int {
	owners := make(map[Point]int)
	for i, s := range al.Scanners {
		t := al.Poses[i].Transform
		for _, p := range s.Beacons {
			g := t.Apply(p)
			if _, ok := owners[g]; !ok {
				owners[g] = i
			}
		}
	}
	return owners
}

// RasterRenderer draws a top-down (x/y) PNG of an alignment with labelled scanners
type RasterRenderer struct {
	Alignment *Alignment
	Colors    []color.RGBA
	Scale     float64 // pixels per beacon unit
	Padding   int     // pixels
}

// NewRasterRenderer creates a renderer using the render settings from config
func NewRasterRenderer(al *Alignment, cfg RenderConfig) *RasterRenderer {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 0.5
	}
	return &RasterRenderer{
		Alignment: al,
		Colors:    ScannerColors(len(al.Poses)),
		Scale:     scale,
		Padding:   int(cfg.Padding * scale),
	}
}

// Render draws beacons as dots in the color of the first scanner that
// sees them and scanners as labelled squares. Y grows upwards.
func (r *RasterRenderer) Render() *image.RGBA {
	bound := Bounds(r.Alignment)
	spanX := bound.Max[0] - bound.Min[0]
	spanY := bound.Max[1] - bound.Min[1]

	scale := r.Scale
	if longest := math.Max(spanX, spanY) * scale; longest > maxRasterSize {
		scale *= maxRasterSize / longest
	}

	width := int(spanX*scale) + 2*r.Padding + 1
	height := int(spanY*scale) + 2*r.Padding + 1

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{250, 250, 250, 255}}, image.Point{}, draw.Src)

	toImage := func(p Point) (int, int) {
		x := int((float64(p.X)-bound.Min[0])*scale) + r.Padding
		y := int((bound.Max[1]-float64(p.Y))*scale) + r.Padding
		return x, y
	}

	for p, owner := range firstObservers(r.Alignment) {
		x, y := toImage(p)
		drawCircle(img, x, y, 2, r.Colors[owner])
	}

	for i, pos := range r.Alignment.ScannerPositions() {
		x, y := toImage(pos)
		drawSquare(img, x, y, 9, color.RGBA{0, 0, 0, 255})
		drawSquare(img, x, y, 5, r.Colors[i])
		drawText(img, x+8, y-6, fmt.Sprintf("S%d", i), color.RGBA{0, 0, 0, 255})
	}

	r.drawLegend(img)
	return img
}

// WritePNG encodes the rendered image to w
func (r *RasterRenderer) WritePNG(w io.Writer) error {
	return png.Encode(w, r.Render())
}

// SavePNG saves the rendered image to a file
func (r *RasterRenderer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return r.WritePNG(f)
}

// drawLegend prints the headline numbers in the top-left corner
func (r *RasterRenderer) drawLegend(img *image.RGBA) {
	black := color.RGBA{0, 0, 0, 255}
	drawText(img, 10, 15, fmt.Sprintf("beacons: %d", r.Alignment.UniqueBeacons()), black)
	drawText(img, 10, 30, fmt.Sprintf("max separation: %d", r.Alignment.MaxSeparation()), black)
}

// drawCircle draws a filled circle
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	b := img.Bounds()
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			if p := (image.Point{X: cx + dx, Y: cy + dy}); p.In(b) {
				img.SetRGBA(p.X, p.Y, c)
			}
		}
	}
}

// drawSquare draws a filled square centered on (cx, cy)
func drawSquare(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	half := size / 2
	rect := image.Rect(cx-half, cy-half, cx+half+1, cy+half+1).Intersect(img.Bounds())
	draw.Draw(img, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// drawText renders text onto an image at the specified baseline position
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
