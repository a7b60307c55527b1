// Package network models a stream network as a directed acyclic graph of
// reaches. Reaches live in an arena slice and refer to each other by
// index, topology comes from FromNode/ToNode pairs.
package network

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// NoLake marks a reach without waterbody association.
const NoLake = -999

// ErrNetworkCyclic is returned when reaches form a cycle.
var ErrNetworkCyclic = errors.New("network-cyclic")

// Reach is a stream segment between two topological nodes.
type Reach struct {
	HydroID     int
	FeatureID   int64
	FromNode    int64
	ToNode      int64
	LengthKm    float64
	S0          float64
	Order       int
	LevelPathID int
	LakeID      int
	ArbolateSum float64
	Geometry    geom.LineString
}

// Network is an immutable topology over a slice of reaches. Attribute
// derivations (arbolate sum, level paths) update Reaches in place.
type Network struct {
	Reaches []Reach
	down    []int
	up      [][]int
	order   []int
	byID    map[int]int
}

// New builds a network. Reaches with duplicate HydroID are rejected,
// orphan reaches (no node shared with any other reach) are logged and
// dropped, cycles return ErrNetworkCyclic.
func New(reaches []Reach) (*Network, error) {
	seen := make(map[int]struct{}, len(reaches))
	for _, r := range reaches {
		if _, ok := seen[r.HydroID]; ok {
			return nil, DuplicateIDError(r.HydroID)
		}
		seen[r.HydroID] = struct{}{}
	}
	reaches = dropOrphans(reaches)

	n := &Network{
		Reaches: reaches,
		down:    make([]int, len(reaches)),
		up:      make([][]int, len(reaches)),
		byID:    make(map[int]int, len(reaches)),
	}
	fromIdx := make(map[int64][]int)
	for i, r := range reaches {
		n.byID[r.HydroID] = i
		fromIdx[r.FromNode] = append(fromIdx[r.FromNode], i)
	}
	for i, r := range reaches {
		n.down[i] = -1
		cands := fromIdx[r.ToNode]
		if len(cands) == 0 {
			continue
		}
		// divergences keep the smallest HydroID as the main downstream
		j := slices.MinFunc(cands, func(a, b int) int {
			return cmp.Compare(reaches[a].HydroID, reaches[b].HydroID)
		})
		if j == i {
			return nil, ErrNetworkCyclic
		}
		n.down[i] = j
		n.up[j] = append(n.up[j], i)
	}

	var err error
	if n.order, err = n.sort(); err != nil {
		return nil, err
	}
	return n, nil
}

func dropOrphans(reaches []Reach) []Reach {
	if len(reaches) < 2 {
		return reaches
	}
	count := make(map[int64]int)
	for _, r := range reaches {
		count[r.FromNode]++
		count[r.ToNode]++
	}
	res := make([]Reach, 0, len(reaches))
	for _, r := range reaches {
		if r.FromNode != r.ToNode && count[r.FromNode] == 1 && count[r.ToNode] == 1 {
			slog.Warn("Dropping orphan reach",
				"hydro_id", r.HydroID, "feature_id", r.FeatureID)
			continue
		}
		res = append(res, r)
	}
	return res
}

// sort returns reach indices with every reach after all of its upstream
// reaches. Ties are ordered by index.
func (n *Network) sort() ([]int, error) {
	g := simple.NewDirectedGraph()
	for i := range n.Reaches {
		g.AddNode(simple.Node(i))
	}
	for i, j := range n.down {
		if j >= 0 {
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
		}
	}
	nodes, err := topo.SortStabilized(g, func(nn []graph.Node) {
		slices.SortFunc(nn, func(a, b graph.Node) int {
			return cmp.Compare(a.ID(), b.ID())
		})
	})
	if err != nil {
		var unorderable topo.Unorderable
		if errors.As(err, &unorderable) {
			return nil, ErrNetworkCyclic
		}
		return nil, err
	}
	res := make([]int, len(nodes))
	for i, v := range nodes {
		res[i] = int(v.ID())
	}
	return res, nil
}

// Len returns the number of reaches.
func (n *Network) Len() int {
	return len(n.Reaches)
}

// Index returns the arena index of a HydroID.
func (n *Network) Index(hydroID int) (int, bool) {
	i, ok := n.byID[hydroID]
	return i, ok
}

// Downstream returns the index of the downstream reach or -1.
func (n *Network) Downstream(i int) int {
	return n.down[i]
}

// Upstream returns indices of reaches flowing into reach i.
func (n *Network) Upstream(i int) []int {
	return n.up[i]
}

// Order returns reach indices from headwaters to outlets.
func (n *Network) Order() []int {
	return n.order
}

// Outlets returns indices of reaches whose ToNode is not a FromNode of
// any reach.
func (n *Network) Outlets() []int {
	return DeriveOutlets(n.Reaches)
}

// Inlets returns indices of reaches whose FromNode is not a ToNode of
// any reach.
func (n *Network) Inlets() []int {
	return DeriveInlets(n.Reaches)
}

// DeriveOutlets returns indices of reaches whose ToNode is not a FromNode
// of any reach.
func DeriveOutlets(reaches []Reach) []int {
	from := make(map[int64]struct{}, len(reaches))
	for _, r := range reaches {
		from[r.FromNode] = struct{}{}
	}
	var res []int
	for i, r := range reaches {
		if _, ok := from[r.ToNode]; !ok {
			res = append(res, i)
		}
	}
	return res
}

// DeriveInlets returns indices of reaches whose FromNode is not a ToNode
// of any reach.
func DeriveInlets(reaches []Reach) []int {
	to := make(map[int64]struct{}, len(reaches))
	for _, r := range reaches {
		to[r.ToNode] = struct{}{}
	}
	var res []int
	for i, r := range reaches {
		if _, ok := to[r.FromNode]; !ok {
			res = append(res, i)
		}
	}
	return res
}

// Filter returns a new network with reaches accepted by keep.
func (n *Network) Filter(keep func(Reach) bool) (*Network, error) {
	var res []Reach
	for _, r := range n.Reaches {
		if keep(r) {
			res = append(res, r)
		}
	}
	return New(res)
}

// ArbolateSum sets for every reach the total length in km of itself and
// all reaches upstream of it.
func (n *Network) ArbolateSum() {
	for _, i := range n.order {
		sum := n.Reaches[i].LengthKm
		for _, u := range n.up[i] {
			sum += n.Reaches[u].ArbolateSum
		}
		n.Reaches[i].ArbolateSum = sum
	}
}

// StrahlerOrder sets stream order of every reach. Headwaters are 1, a
// confluence of two parents of the highest order increments it.
func (n *Network) StrahlerOrder() {
	for _, i := range n.order {
		top, count := 0, 0
		for _, u := range n.up[i] {
			o := n.Reaches[u].Order
			switch {
			case o > top:
				top, count = o, 1
			case o == top:
				count++
			}
		}
		switch {
		case top == 0:
			n.Reaches[i].Order = 1
		case count > 1:
			n.Reaches[i].Order = top + 1
		default:
			n.Reaches[i].Order = top
		}
	}
}
