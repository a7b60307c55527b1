// Package branch builds branch domains from level paths. A branch is the
// set of pixels within a buffer distance of a level path, restricted to
// valid DEM pixels. Branch zero covers the whole HUC domain.
package branch

import (
	"math"
	"strconv"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/vector"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// ZeroID is the ID of the catch-all branch.
const ZeroID = 0

// Branch is the domain of one level path within a HUC grid.
type Branch struct {
	ID int
	// Window is the bounding window of the branch in the HUC grid.
	Window raster.Window
	// Mask holds 1 for branch pixels over Window, 0 elsewhere.
	Mask *raster.Mem
	// Path is the dissolved level path, empty for branch zero.
	Path geom.MultiLineString
	// Sources are headwater points stream tracing starts from.
	Sources []geom.Point
	// Reaches are reference reaches of the level path.
	Reaches []network.Reach
}

// Name returns the branch ID as used in file names.
func (b Branch) Name() string {
	return strconv.Itoa(b.ID)
}

// IsZero reports if the branch is branch zero.
func (b Branch) IsZero() bool {
	return b.ID == ZeroID
}

// Grid returns the grid of the branch window.
func (b Branch) Grid() raster.Grid {
	return b.Mask.Grid()
}

// Cells returns the number of branch pixels.
func (b Branch) Cells() int {
	var res int
	for _, v := range b.Mask.Data {
		if v == 1 {
			res++
		}
	}
	return res
}

// Polygons returns the outline of the branch domain.
func (b Branch) Polygons() []geom.Polygon {
	var res []geom.Polygon
	for _, r := range vector.TracePolygons(b.Mask) {
		res = append(res, r.Polygon)
	}
	return res
}

// Zero builds branch zero over every valid pixel of the DEM. Stream
// tracing starts at all inlets of the network.
func Zero(dem *raster.Mem, net *network.Network) Branch {
	g := dem.Grid()
	mask := domainMask(dem)
	var sources []geom.Point
	var reaches []network.Reach
	for _, i := range net.Inlets() {
		if ls := net.Reaches[i].Geometry; len(ls) > 0 {
			sources = append(sources, ls[0])
		}
	}
	reaches = append(reaches, net.Reaches...)
	return Branch{
		ID:      ZeroID,
		Window:  g.Full(),
		Mask:    mask,
		Sources: sources,
		Reaches: reaches,
	}
}

// Generate builds one branch per level path. Pixels are part of a branch
// when their centers lie within dist of the level path and the DEM is
// valid there. Level paths without pixels are skipped. No level paths or
// no resulting branches return a NO_BRANCH_LEVELPATHS_EXIST error.
func Generate(
	dem *raster.Mem,
	net *network.Network,
	paths []network.LevelPath,
	dist float64,
) ([]Branch, error) {
	if len(paths) == 0 {
		return nil, NoLevelPathsError("no level paths")
	}
	g := dem.Grid()
	var res []Branch
	for _, lp := range paths {
		full := BufferMask(g, lp.Geometry, dist)
		for i, v := range dem.Data {
			if g.IsNoData(v) {
				full.Data[i] = 0
			}
		}
		win, ok := extent(full)
		if !ok {
			continue
		}
		mask := raster.NewMem(maskGrid(g.Sub(win)))
		if err := full.Read(win, mask.Data); err != nil {
			return nil, err
		}
		b := Branch{
			ID:     lp.ID,
			Window: win,
			Mask:   mask,
			Path:   lp.Geometry,
		}
		for k, i := range lp.Reaches {
			r := net.Reaches[i]
			b.Reaches = append(b.Reaches, r)
			if k == 0 && len(r.Geometry) > 0 {
				b.Sources = append(b.Sources, r.Geometry[0])
			}
		}
		res = append(res, b)
	}
	if len(res) == 0 {
		return nil, NoLevelPathsError("no level path overlaps valid DEM")
	}
	return res, nil
}

// BufferMask marks pixels whose centers lie within dist of the lines.
func BufferMask(g raster.Grid, lines geom.MultiLineString, dist float64) *raster.Mem {
	res := raster.NewMem(maskGrid(g))
	tree := rtree.NewTree(25, 50)
	bounds := geom.NewBounds()
	for _, ls := range lines {
		for i := 1; i < len(ls); i++ {
			s := &segment{LineString: geom.LineString{ls[i-1], ls[i]}}
			tree.Insert(s)
			bounds.Extend(s.Bounds())
		}
		if len(ls) == 1 {
			s := &segment{LineString: geom.LineString{ls[0], ls[0]}}
			tree.Insert(s)
			bounds.Extend(s.Bounds())
		}
	}
	if math.IsInf(bounds.Min.X, 0) {
		return res
	}
	c0, r0 := g.PixelAt(bounds.Min.X-dist, bounds.Max.Y+dist)
	c1, r1 := g.PixelAt(bounds.Max.X+dist, bounds.Min.Y-dist)
	c0, c1 = max(min(c0, c1), 0), min(max(c0, c1), g.Width-1)
	r0, r1 = max(min(r0, r1), 0), min(max(r0, r1), g.Height-1)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			x, y := g.Center(col, row)
			p := geom.Point{X: x, Y: y}
			box := &geom.Bounds{
				Min: geom.Point{X: x - dist, Y: y - dist},
				Max: geom.Point{X: x + dist, Y: y + dist},
			}
			for _, item := range tree.SearchIntersect(box) {
				s := item.(*segment)
				if vector.DistToSegment(p, s.LineString[0], s.LineString[1]) <= dist {
					res.Set(col, row, 1)
					break
				}
			}
		}
	}
	return res
}

// Clip reads the branch window of a HUC raster and sets nodata outside of
// the branch.
func Clip(src raster.Reader, b Branch) (*raster.Mem, error) {
	sg := src.Grid()
	res := raster.NewMem(sg.Sub(b.Window))
	if err := src.Read(b.Window, res.Data); err != nil {
		return nil, err
	}
	for i, v := range b.Mask.Data {
		if v != 1 {
			res.Data[i] = sg.NoData
		}
	}
	return res, nil
}

type segment struct {
	geom.LineString
}

func maskGrid(g raster.Grid) raster.Grid {
	res := g
	res.NoData = 0
	res.DataType = raster.Byte
	return res
}

func domainMask(dem *raster.Mem) *raster.Mem {
	g := dem.Grid()
	res := raster.NewMem(maskGrid(g))
	for i, v := range dem.Data {
		if !g.IsNoData(v) {
			res.Data[i] = 1
		}
	}
	return res
}

// extent returns the bounding window of marked pixels.
func extent(m *raster.Mem) (raster.Window, bool) {
	g := m.Grid()
	c0, r0, c1, r1 := g.Width, g.Height, -1, -1
	for row := range g.Height {
		for col := range g.Width {
			if m.Data[g.Index(col, row)] != 1 {
				continue
			}
			c0, r0 = min(c0, col), min(r0, row)
			c1, r1 = max(c1, col), max(r1, row)
		}
	}
	if c1 < 0 {
		return raster.Window{}, false
	}
	return raster.Window{Col: c0, Row: r0, Width: c1 - c0 + 1, Height: r1 - r0 + 1}, true
}
