package network

import (
	"cmp"
	"slices"

	"github.com/ctessum/geom"
)

// LevelPath is a sequence of reaches from a headwater to a confluence or
// an outlet.
type LevelPath struct {
	ID int
	// Reaches are indices ordered from upstream to downstream.
	Reaches []int
	// Geometry is the dissolved polyline of all reaches.
	Geometry geom.MultiLineString
}

// DeriveLevelPaths assigns LevelPathID to every reach. At a confluence the
// path continues into the parent with the largest stream order, ties go
// to the largest arbolate sum and then to the smallest HydroID. Every
// headwater starts a new path. Arbolate sums are computed first.
//
// Path IDs start at 1 and are ordered by the arbolate sum of the most
// downstream reach of the path (largest first), so the main stem of
// a network gets ID 1. ID 0 is reserved for branch zero.
func (n *Network) DeriveLevelPaths() {
	n.ArbolateSum()
	tmp := make([]int, len(n.Reaches))
	for _, i := range n.order {
		ups := n.up[i]
		if len(ups) == 0 {
			tmp[i] = i
			continue
		}
		winner := slices.MinFunc(ups, func(a, b int) int {
			return n.compareParents(a, b)
		})
		tmp[i] = tmp[winner]
	}

	// most downstream reach of each path
	tail := make(map[int]int)
	for _, i := range n.order {
		tail[tmp[i]] = i
	}
	heads := make([]int, 0, len(tail))
	for h := range tail {
		heads = append(heads, h)
	}
	slices.SortFunc(heads, func(a, b int) int {
		ta, tb := n.Reaches[tail[a]], n.Reaches[tail[b]]
		if c := cmp.Compare(tb.ArbolateSum, ta.ArbolateSum); c != 0 {
			return c
		}
		return cmp.Compare(n.Reaches[a].HydroID, n.Reaches[b].HydroID)
	})
	ids := make(map[int]int, len(heads))
	for k, h := range heads {
		ids[h] = k + 1
	}
	for i := range n.Reaches {
		n.Reaches[i].LevelPathID = ids[tmp[i]]
	}
}

// compareParents orders candidate parents so the one continuing the
// level path comes first.
func (n *Network) compareParents(a, b int) int {
	ra, rb := n.Reaches[a], n.Reaches[b]
	if c := cmp.Compare(rb.Order, ra.Order); c != 0 {
		return c
	}
	if c := cmp.Compare(rb.ArbolateSum, ra.ArbolateSum); c != 0 {
		return c
	}
	return cmp.Compare(ra.HydroID, rb.HydroID)
}

// LevelPaths groups reaches by LevelPathID. Paths are ordered by ID,
// reaches of a path from upstream to downstream.
func (n *Network) LevelPaths() []LevelPath {
	byID := make(map[int]*LevelPath)
	for _, i := range n.order {
		id := n.Reaches[i].LevelPathID
		lp, ok := byID[id]
		if !ok {
			lp = &LevelPath{ID: id}
			byID[id] = lp
		}
		lp.Reaches = append(lp.Reaches, i)
	}
	res := make([]LevelPath, 0, len(byID))
	for _, lp := range byID {
		n.sortAlongPath(lp)
		for _, i := range lp.Reaches {
			lp.Geometry = append(lp.Geometry, n.Reaches[i].Geometry)
		}
		res = append(res, *lp)
	}
	slices.SortFunc(res, func(a, b LevelPath) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return res
}

// DissolveByLevelPath returns one multilinestring per level path.
func (n *Network) DissolveByLevelPath() map[int]geom.MultiLineString {
	res := make(map[int]geom.MultiLineString)
	for _, lp := range n.LevelPaths() {
		res[lp.ID] = lp.Geometry
	}
	return res
}

// sortAlongPath orders reaches of a path by walking downstream from its
// headwater.
func (n *Network) sortAlongPath(lp *LevelPath) {
	in := make(map[int]bool, len(lp.Reaches))
	for _, i := range lp.Reaches {
		in[i] = true
	}
	head := -1
	for _, i := range lp.Reaches {
		isHead := true
		for _, u := range n.up[i] {
			if in[u] {
				isHead = false
				break
			}
		}
		if isHead {
			head = i
			break
		}
	}
	if head < 0 {
		return
	}
	res := make([]int, 0, len(lp.Reaches))
	for i := head; i >= 0 && in[i]; i = n.down[i] {
		res = append(res, i)
	}
	if len(res) == len(lp.Reaches) {
		lp.Reaches = res
	}
}

// IsConnected reports if reaches of the path form one chain from its
// first to its last reach.
func (n *Network) IsConnected(lp LevelPath) bool {
	for k := 1; k < len(lp.Reaches); k++ {
		if n.down[lp.Reaches[k-1]] != lp.Reaches[k] {
			return false
		}
	}
	return true
}
