package mesh

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// VectorRenderer renders an alignment as vector graphics. Canvas units are
// millimetres; one beacon unit maps to Scale mm.
type VectorRenderer struct {
	Alignment   *Alignment
	Colors      []canvas.Paint
	Scale       float64
	Padding     float64           // in beacon units
	GridSpacing float64           // in beacon units, 0 disables the grid
	Resolution  canvas.Resolution // PNG output only
}

// NewVectorRenderer creates a vector renderer from the render settings
func NewVectorRenderer(al *Alignment, cfg RenderConfig) *VectorRenderer {
	colors := make([]canvas.Paint, 0, len(al.Poses))
	for _, c := range ScannerColors(len(al.Poses)) {
		colors = append(colors, canvas.Paint{Color: c})
	}

	scale := cfg.Scale
	if scale <= 0 {
		scale = 0.5
	}
	res := cfg.Resolution
	if res <= 0 {
		res = 50
	}

	return &VectorRenderer{
		Alignment:   al,
		Colors:      colors,
		Scale:       scale,
		Padding:     cfg.Padding,
		GridSpacing: cfg.GridSpacing,
		Resolution:  canvas.DPI(res),
	}
}

// canvasRenderer is implemented by both the svg and rasterizer renderers
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// size returns the canvas width and height in mm
func (r *VectorRenderer) size() (float64, float64) {
	b := Bounds(r.Alignment)
	width := (b.Max[0] - b.Min[0] + 2*r.Padding) * r.Scale
	height := (b.Max[1] - b.Min[1] + 2*r.Padding) * r.Scale
	return width, height
}

// RenderToSVG writes the map as an SVG to the provided writer
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	width, height := r.size()

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, width, height)

	// Close writes the closing tags
	return svgRenderer.Close()
}

// RenderToPNG writes the map as a PNG to the provided writer
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	width, height := r.size()

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, width, height)

	return png.Encode(w, rast)
}

// renderToCanvas holds the drawing shared by SVG and PNG output
func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	b := Bounds(r.Alignment)
	minX, minY, maxX, maxY := b.Min[0], b.Min[1], b.Max[0], b.Max[1]

	// canvas y grows upwards like the beacon frame, so no flip is needed
	toCanvas := func(x, y float64) (float64, float64) {
		return (x - minX + r.Padding) * r.Scale, (y - minY + r.Padding) * r.Scale
	}

	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		gridStyle.StrokeWidth = 0.5
		gridStyle.Dashes = []float64{4.0, 4.0}

		for x := math.Floor(minX/r.GridSpacing) * r.GridSpacing; x <= maxX; x += r.GridSpacing {
			gridPath := &canvas.Path{}
			gridPath.MoveTo(toCanvas(x, minY))
			gridPath.LineTo(toCanvas(x, maxY))
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
		for y := math.Floor(minY/r.GridSpacing) * r.GridSpacing; y <= maxY; y += r.GridSpacing {
			gridPath := &canvas.Path{}
			gridPath.MoveTo(toCanvas(minX, y))
			gridPath.LineTo(toCanvas(maxX, y))
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
	}

	// Overlap links between solved scanner pairs
	positions := r.Alignment.ScannerPositions()
	linkStyle := canvas.DefaultStyle
	linkStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	linkStyle.Stroke = canvas.Paint{Color: color.RGBA{R: 190, G: 190, B: 190, A: 255}}
	linkStyle.StrokeWidth = 1.0
	for _, e := range r.Alignment.Edges {
		if e.From >= len(positions) || e.To >= len(positions) {
			continue
		}
		a, c := positions[e.From], positions[e.To]
		link := &canvas.Path{}
		link.MoveTo(toCanvas(float64(a.X), float64(a.Y)))
		link.LineTo(toCanvas(float64(c.X), float64(c.Y)))
		renderer.RenderPath(link, linkStyle, canvas.Identity)
	}

	// Scanner footprints, translucent so overlaps stay visible
	for _, c := range ScannerCoverage(r.Alignment) {
		if c.Polygon == nil {
			continue
		}
		fill := ScannerColors(len(positions))[c.ScannerID]
		fill.R, fill.G, fill.B, fill.A = fill.R/5, fill.G/5, fill.B/5, 51 // 20% premultiplied
		coverageStyle := canvas.DefaultStyle
		coverageStyle.Fill = canvas.Paint{Color: fill}
		coverageStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

		cp := &canvas.Path{}
		for k, pt := range c.Polygon[0] {
			x, y := toCanvas(pt[0], pt[1])
			if k == 0 {
				cp.MoveTo(x, y)
			} else {
				cp.LineTo(x, y)
			}
		}
		cp.Close()
		renderer.RenderPath(cp, coverageStyle, canvas.Identity)
	}

	for p, owner := range firstObservers(r.Alignment) {
		beaconStyle := canvas.DefaultStyle
		beaconStyle.Fill = r.Colors[owner]
		beaconStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

		cx, cy := toCanvas(float64(p.X), float64(p.Y))
		renderer.RenderPath(canvas.Circle(1.5).Translate(cx, cy), beaconStyle, canvas.Identity)
	}

	// Scanners are squares; text needs a loaded font face so there are no labels here
	const side = 6.0
	for i, pos := range positions {
		scannerStyle := canvas.DefaultStyle
		scannerStyle.Fill = r.Colors[i]
		scannerStyle.Stroke = canvas.Paint{Color: canvas.Black}
		scannerStyle.StrokeWidth = 0.8

		cx, cy := toCanvas(float64(pos.X), float64(pos.Y))
		square := canvas.Rectangle(side, side).Translate(cx-side/2, cy-side/2)
		renderer.RenderPath(square, scannerStyle, canvas.Identity)
	}
}
