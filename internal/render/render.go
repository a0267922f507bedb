package render

import (
	"fmt"

	"github.com/fogleman/gg"
	geom "github.com/twpayne/go-geom"

	"github.com/politech/processor/internal/dots"
	"github.com/politech/processor/internal/geo"
	"github.com/politech/processor/internal/plans"
	"github.com/politech/processor/internal/progress"
	"github.com/politech/processor/internal/states"
)

// Config drives the comparison rendering stage for one state.
type Config struct {
	Workspace states.Workspace
	DotUnit   int
	PlanYear  int
	PanelSize int // pixels per panel edge, defaults to 1400
}

const panelMargin = 40.0

// viewport maps Web Mercator coordinates into one square panel.
type viewport struct {
	minX, minY float64
	scale      float64
	offsetX    float64
	size       float64
	spanY      float64
}

func newViewport(b *geom.Bounds, offsetX, size float64) viewport {
	dx := b.Max(0) - b.Min(0)
	dy := b.Max(1) - b.Min(1)
	inner := size - 2*panelMargin
	scale := inner / dx
	if s := inner / dy; s < scale {
		scale = s
	}
	return viewport{
		minX:    b.Min(0),
		minY:    b.Min(1),
		scale:   scale,
		offsetX: offsetX,
		size:    size,
		spanY:   dy,
	}
}

// toCanvas converts a lon/lat coordinate to pixel space, flipping y so
// north is up.
func (v viewport) toCanvas(lon, lat float64) (float64, float64) {
	x, y := geo.WebMercator(lon, lat)
	px := v.offsetX + panelMargin + (x-v.minX)*v.scale
	py := panelMargin + (v.spanY-(y-v.minY))*v.scale
	return px, py
}

func strokeLayer(dc *gg.Context, v viewport, layer *geo.Layer, hex string, width float64) {
	dc.SetHexColor(hex)
	dc.SetLineWidth(width)
	for _, g := range layer.Geoms {
		tracePolygons(dc, v, g)
	}
	dc.Stroke()
}

func tracePolygons(dc *gg.Context, v viewport, g geom.T) {
	var polys []*geom.Polygon
	switch t := g.(type) {
	case *geom.Polygon:
		polys = []*geom.Polygon{t}
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			polys = append(polys, t.Polygon(i))
		}
	default:
		return
	}

	for _, p := range polys {
		for r := 0; r < p.NumLinearRings(); r++ {
			lr := p.LinearRing(r)
			flat := lr.FlatCoords()
			stride := lr.Stride()
			for i := 0; i+1 < len(flat); i += stride {
				px, py := v.toCanvas(flat[i], flat[i+1])
				if i == 0 {
					dc.MoveTo(px, py)
				} else {
					dc.LineTo(px, py)
				}
			}
			dc.ClosePath()
		}
	}
}

func drawDots(dc *gg.Context, v viewport, layer *geo.Layer) {
	for i, g := range layer.Geoms {
		pt, ok := g.(*geom.Point)
		if !ok {
			continue
		}
		px, py := v.toCanvas(pt.X(), pt.Y())
		dc.SetHexColor(dots.Color(geo.String(layer.Attrs[i], "group")))
		dc.DrawCircle(px, py, 1.2)
		dc.Fill()
	}
}

func labelDistricts(dc *gg.Context, v viewport, plan *geo.Layer) {
	dc.SetHexColor("#000000")
	for i, g := range plan.Geoms {
		c := geo.RepresentativePoint(g)
		px, py := v.toCanvas(c[0], c[1])
		dc.DrawStringAnchored(geo.String(plan.Attrs[i], "DISTRICT"), px, py, 0.5, 0.5)
	}
}

// Run draws the congressional and legislative plans side by side over the
// block-group, precinct, and dot layers, and logs per-district statistics
// when assignments from the plan stage are available.
func Run(cfg Config) error {
	ws := cfg.Workspace
	yy := ws.YearSuffix()
	size := float64(cfg.PanelSize)
	if size <= 0 {
		size = 1400
	}

	bg, err := geo.ReadShapefile(ws.BGShapefile())
	if err != nil {
		return fmt.Errorf("load block groups: %w", err)
	}
	precincts, err := geo.ReadGeoJSON(ws.PrecinctGeoJSON())
	if err != nil {
		return fmt.Errorf("load precincts (run the aggregate stage first): %w", err)
	}

	var dotLayer *geo.Layer
	if dl, err := geo.ReadGeoJSON(ws.DotsGeoJSON(cfg.DotUnit)); err == nil {
		dotLayer = dl
		progress.LogStage("render", "loaded %d dots", dl.Len())
	} else {
		progress.LogStage("render", "no dot layer for unit %d, rendering without dots", cfg.DotUnit)
	}

	planFiles, err := ws.PlanShapefiles(cfg.PlanYear)
	if err != nil {
		return err
	}

	type panel struct {
		title string
		plan  *geo.Layer
		meta  plans.Meta
	}
	panels := make([]panel, 0, 2)
	for _, key := range []string{"cong", "leg"} {
		chamber := map[string]string{"cong": "CONG", "leg": "SL"}[key]
		path, ok := planFiles[key]
		if !ok {
			panels = append(panels, panel{title: chamber + " (no plan)"})
			continue
		}
		layer, meta, err := plans.LoadPlan(path, chamber, ws.State, cfg.PlanYear)
		if err != nil {
			progress.LogError("render", "load "+chamber+" plan", err)
			panels = append(panels, panel{title: chamber + " (no plan)"})
			continue
		}
		panels = append(panels, panel{title: meta.Name, plan: layer, meta: meta})
	}

	if assignments, err := plans.ReadAssignments(ws.AssignmentsJSON(cfg.PlanYear)); err == nil {
		for _, p := range panels {
			if p.plan == nil {
				continue
			}
			stats := ComputeStats(precincts, assignments, p.meta.PlanID, yy)
			if len(stats) > 0 {
				progress.LogStage("render", "district statistics for %s:\n%s", p.meta.PlanID, FormatStats(stats, p.meta.Name))
			}
		}
	} else {
		progress.LogStage("render", "no assignments for %d, skipping district statistics", cfg.PlanYear)
	}

	if precincts.Len() == 0 {
		return fmt.Errorf("precinct layer %s is empty", ws.PrecinctGeoJSON())
	}

	// Both panels share the precinct extent so the state lines up.
	extent := geo.Transform(precincts.Geoms[0], geo.WebMercator).Bounds()
	for _, g := range precincts.Geoms[1:] {
		extent.Extend(geo.Transform(g, geo.WebMercator))
	}

	dc := gg.NewContext(int(size)*len(panels), int(size))
	dc.SetHexColor("#ffffff")
	dc.Clear()

	for i, p := range panels {
		v := newViewport(extent, float64(i)*size, size)

		strokeLayer(dc, v, bg, "#cccccc", 0.4)
		strokeLayer(dc, v, precincts, "#888888", 0.7)
		if dotLayer != nil {
			drawDots(dc, v, dotLayer)
		}
		if p.plan != nil {
			strokeLayer(dc, v, p.plan, "#111111", 2.0)
			labelDistricts(dc, v, p.plan)
		}

		dc.SetHexColor("#000000")
		dc.DrawStringAnchored(p.title, v.offsetX+size/2, panelMargin/2, 0.5, 0.5)
	}

	if err := states.EnsureDirs(ws.OutputsDir()); err != nil {
		return err
	}
	out := ws.ComparisonPNG(cfg.PlanYear)
	if err := dc.SavePNG(out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	progress.LogWrite("render", out, len(panels))
	return nil
}
