package condition

import (
	"container/heap"
	"math"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/raster"
)

// Fill removes depressions with the priority-flood algorithm. Flats and
// filled pits get the smallest float32 increment per step away from the
// spill point, so every valid pixel has a strictly lower path to the
// edge of the data. Cells on the raster edge or next to nodata drain
// out of the domain.
func Fill(dem *raster.Mem) error {
	g := dem.Grid()
	n := g.Len()
	closed := make([]bool, n)
	open := &cellHeap{}
	var pit []int
	var seq int

	push := func(i int) {
		closed[i] = true
		heap.Push(open, cell{idx: i, z: dem.Data[i], seq: seq})
		seq++
	}

	var valid int
	for row := range g.Height {
		for col := range g.Width {
			i := g.Index(col, row)
			if g.IsNoData(dem.Data[i]) {
				closed[i] = true
				continue
			}
			valid++
			if isBoundary(dem, col, row) {
				push(i)
			}
		}
	}
	if valid == 0 {
		return FillError("no valid cells")
	}

	for open.Len() > 0 || len(pit) > 0 {
		var c int
		if len(pit) > 0 {
			c = pit[0]
			pit = pit[1:]
		} else {
			c = heap.Pop(open).(cell).idx
		}
		col, row := c%g.Width, c/g.Width
		zc := dem.Data[c]
		for _, d := range D8Offsets {
			nc, nr := col+d[0], row+d[1]
			if !g.Contains(nc, nr) {
				continue
			}
			i := g.Index(nc, nr)
			if closed[i] {
				continue
			}
			closed[i] = true
			next := nextUp(zc)
			if dem.Data[i] <= next {
				dem.Data[i] = next
				pit = append(pit, i)
			} else {
				heap.Push(open, cell{idx: i, z: dem.Data[i], seq: seq})
				seq++
			}
		}
	}
	return nil
}

// nextUp returns the smallest float32 value above z.
func nextUp(z float64) float64 {
	return float64(math.Nextafter32(float32(z), math.MaxFloat32))
}

func isBoundary(dem *raster.Mem, col, row int) bool {
	g := dem.Grid()
	if col == 0 || row == 0 || col == g.Width-1 || row == g.Height-1 {
		return true
	}
	for _, d := range D8Offsets {
		if !dem.Valid(col+d[0], row+d[1]) {
			return true
		}
	}
	return false
}

type cell struct {
	idx int
	z   float64
	seq int
}

type cellHeap []cell

func (h cellHeap) Len() int { return len(h) }
func (h cellHeap) Less(i, j int) bool {
	if h[i].z != h[j].z {
		return h[i].z < h[j].z
	}
	return h[i].seq < h[j].seq
}
func (h cellHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *cellHeap) Push(x any)   { *h = append(*h, x.(cell)) }
func (h *cellHeap) Pop() any {
	old := *h
	n := len(old)
	res := old[n-1]
	*h = old[:n-1]
	return res
}
