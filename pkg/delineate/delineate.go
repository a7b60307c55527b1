// Package delineate derives the branch hydrofabric from a conditioned
// DEM: stream pixels traced along D8 from headwaters, reaches split from
// those pixels, and pixel catchments draining to every reach.
package delineate

import (
	"math"
	"strconv"
	"sync"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/condition"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/network"
	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
	"github.com/ctessum/geom"
)

// Options control reach derivation.
type Options struct {
	// HUC is the 8-digit unit code, its first four digits prefix HydroIDs.
	HUC string
	// LevelPathID is stored on every derived reach.
	LevelPathID int
	// MaxReachLength is the longest reach in map units, 0 disables
	// splitting.
	MaxReachLength float64
	// MinSlope is the floor of reach slopes.
	MinSlope float64
	// Seq hands out HydroID sequence numbers. Branches of one HUC share
	// it. Nil numbers reaches from 1.
	Seq *Sequence
}

// Result holds the derived hydrofabric of one branch.
type Result struct {
	Reaches []network.Reach
	// Streams carries the HydroID of every stream pixel.
	Streams *raster.Mem
	// Catchments carries the HydroID of the reach each pixel drains to.
	Catchments *raster.Mem
}

// HUCPrefix returns the numeric prefix of HydroIDs for a HUC.
func HUCPrefix(huc string) int {
	if len(huc) > 4 {
		huc = huc[:4]
	}
	res, err := strconv.Atoi(huc)
	if err != nil {
		return 0
	}
	return res
}

// MaxSequence is the largest sequence number of a HydroID.
const MaxSequence = 9999

// HydroID builds a HydroID from a HUC prefix and a sequence number.
func HydroID(prefix, seq int) int {
	return prefix*(MaxSequence+1) + seq
}

// Sequence allocates HydroID sequence numbers of one HUC. It is safe for
// concurrent use.
type Sequence struct {
	mu    sync.Mutex
	taken int
}

// NewSequence returns a Sequence whose first number follows taken.
func NewSequence(taken int) *Sequence {
	return &Sequence{taken: taken}
}

// Take reserves n consecutive sequence numbers and returns the first.
func (s *Sequence) Take(n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken+n > MaxSequence {
		return 0, HydroIDRangeError(s.taken, n)
	}
	first := s.taken + 1
	s.taken += n
	return first, nil
}

// Run traces streams from sources, splits them into reaches and labels
// pixel catchments. A branch without stream pixels returns a
// NO_FLOWLINES_EXIST error.
func Run(
	dem, fdir, mask *raster.Mem,
	sources []geom.Point,
	opts Options,
) (*Result, error) {
	if !dem.Grid().SameShape(fdir.Grid()) {
		return nil, condition.GridMismatchError("delineate")
	}
	streams := Streams(fdir, mask, sources)
	reaches, labels, err := Reaches(dem, fdir, streams, opts)
	if err != nil {
		return nil, err
	}
	if len(reaches) == 0 {
		return nil, NoFlowlinesError(opts.LevelPathID)
	}
	return &Result{
		Reaches:    reaches,
		Streams:    labels,
		Catchments: Catchments(fdir, mask, labels),
	}, nil
}

// LabelGrid returns the grid of a HydroID raster.
func LabelGrid(g raster.Grid) raster.Grid {
	res := g
	res.NoData = 0
	res.DataType = raster.Int32
	return res
}

// Streams follows flow directions from every source pixel until the path
// leaves the domain, stops or joins an earlier path. Stream pixels get 1.
func Streams(fdir, mask *raster.Mem, sources []geom.Point) *raster.Mem {
	g := fdir.Grid()
	res := raster.NewMem(LabelGrid(g))
	for _, p := range sources {
		col, row := g.PixelAt(p.X, p.Y)
		for inDomain(fdir, mask, col, row) {
			i := g.Index(col, row)
			if res.Data[i] == 1 {
				break
			}
			res.Data[i] = 1
			dc, dr, ok := condition.Offset(int(fdir.Data[i]))
			if !ok {
				break
			}
			col, row = col+dc, row+dr
		}
	}
	return res
}

// Reaches splits stream pixels into reaches. A reach starts at a pixel
// without upstream stream pixels or at a confluence, and ends before the
// next confluence, where the stream leaves the domain, or when its length
// reaches MaxReachLength. HydroIDs are a block taken from opts.Seq in the
// row-major order of reach heads. The returned raster carries HydroIDs of
// stream pixels.
func Reaches(
	dem, fdir, streams *raster.Mem,
	opts Options,
) ([]network.Reach, *raster.Mem, error) {
	g := streams.Grid()
	labels := raster.NewMem(LabelGrid(g))
	down := func(i int) (int, bool) {
		col, row := i%g.Width, i/g.Width
		dc, dr, ok := condition.Offset(int(fdir.Data[i]))
		if !ok {
			return 0, false
		}
		col, row = col+dc, row+dr
		if !g.Contains(col, row) {
			return 0, false
		}
		j := g.Index(col, row)
		return j, streams.Data[j] == 1
	}

	inflow := make([]int, g.Len())
	for i, v := range streams.Data {
		if v != 1 {
			continue
		}
		if j, ok := down(i); ok {
			inflow[j]++
		}
	}

	var chunks []chunk
	for head, v := range streams.Data {
		if v != 1 || inflow[head] == 1 {
			continue
		}
		cells := []int{head}
		next, hasNext := down(head)
		for hasNext && inflow[next] == 1 {
			cells = append(cells, next)
			next, hasNext = down(next)
		}
		chunks = append(chunks, split(g, cells, next, hasNext, opts.MaxReachLength)...)
	}
	if len(chunks) == 0 {
		return nil, labels, nil
	}

	seq := opts.Seq
	if seq == nil {
		seq = NewSequence(0)
	}
	first, err := seq.Take(len(chunks))
	if err != nil {
		return nil, nil, err
	}
	prefix := HUCPrefix(opts.HUC)
	res := make([]network.Reach, 0, len(chunks))
	for k, c := range chunks {
		r := newReach(g, dem, c, opts)
		r.HydroID = HydroID(prefix, first+k)
		for _, i := range c.cells {
			labels.Data[i] = float64(r.HydroID)
		}
		res = append(res, r)
	}
	return res, labels, nil
}

// Catchments labels every domain pixel with the HydroID of the first
// stream pixel reached along flow directions. Pixels draining out of the
// domain without meeting a stream are nodata.
func Catchments(fdir, mask, labels *raster.Mem) *raster.Mem {
	g := fdir.Grid()
	res := raster.NewMem(LabelGrid(g))
	lab := make([]int, g.Len())
	for i, v := range labels.Data {
		if v > 0 {
			lab[i] = int(v)
		}
	}
	seen := make([]bool, g.Len())
	var path []int
	for start := range lab {
		col, row := start%g.Width, start/g.Width
		if lab[start] != 0 || !inDomain(fdir, mask, col, row) {
			continue
		}
		path = path[:0]
		found := -1
		for cur := start; ; {
			if lab[cur] != 0 {
				found = lab[cur]
				break
			}
			if seen[cur] {
				break
			}
			seen[cur] = true
			path = append(path, cur)
			col, row := cur%g.Width, cur/g.Width
			dc, dr, ok := condition.Offset(int(fdir.Data[cur]))
			if !ok || !inDomain(fdir, mask, col+dc, row+dr) {
				break
			}
			cur = g.Index(col+dc, row+dr)
		}
		for _, i := range path {
			lab[i] = found
		}
	}
	for i, v := range lab {
		if v > 0 {
			res.Data[i] = float64(v)
		}
	}
	return res
}

type chunk struct {
	cells   []int
	next    int
	hasNext bool
}

// split cuts a run of stream pixels into chunks no longer than maxLen.
func split(g raster.Grid, cells []int, next int, hasNext bool, maxLen float64) []chunk {
	var res []chunk
	var acc float64
	start := 0
	for k, i := range cells {
		succ, ok := next, hasNext
		if k+1 < len(cells) {
			succ, ok = cells[k+1], true
		}
		if ok {
			acc += cellDistance(g, i, succ)
		}
		if maxLen > 0 && acc >= maxLen && k+1 < len(cells) {
			res = append(res, chunk{cells: cells[start : k+1], next: succ, hasNext: true})
			start, acc = k+1, 0
		}
	}
	return append(res, chunk{cells: cells[start:], next: next, hasNext: hasNext})
}

func newReach(g raster.Grid, dem *raster.Mem, c chunk, opts Options) network.Reach {
	ids := c.cells
	if c.hasNext {
		ids = append(ids[:len(ids):len(ids)], c.next)
	}
	line := make(geom.LineString, len(ids))
	var length float64
	for k, i := range ids {
		x, y := g.Center(i%g.Width, i/g.Width)
		line[k] = geom.Point{X: x, Y: y}
		if k > 0 {
			length += cellDistance(g, ids[k-1], i)
		}
	}
	if length == 0 {
		length = g.Transform.CellWidth()
	}

	slope := opts.MinSlope
	z0, z1 := dem.Data[ids[0]], dem.Data[ids[len(ids)-1]]
	dg := dem.Grid()
	if !dg.IsNoData(z0) && !dg.IsNoData(z1) {
		slope = math.Max(slope, (z0-z1)/length)
	}

	first, last := c.cells[0], c.cells[len(c.cells)-1]
	to := int64(g.Len() + last + 1)
	if c.hasNext {
		to = int64(c.next + 1)
	}
	return network.Reach{
		FromNode:    int64(first + 1),
		ToNode:      to,
		LengthKm:    length / 1000,
		S0:          slope,
		LevelPathID: opts.LevelPathID,
		LakeID:      network.NoLake,
		Geometry:    line,
	}
}

func cellDistance(g raster.Grid, a, b int) float64 {
	dc := float64(b%g.Width - a%g.Width)
	dr := float64(b/g.Width - a/g.Width)
	return math.Hypot(dc*g.Transform.CellWidth(), dr*g.Transform.CellHeight())
}

func inDomain(fdir, mask *raster.Mem, col, row int) bool {
	g := fdir.Grid()
	if !g.Contains(col, row) {
		return false
	}
	i := g.Index(col, row)
	if g.IsNoData(fdir.Data[i]) {
		return false
	}
	return mask == nil || mask.Data[i] == 1
}
