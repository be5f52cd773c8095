// Package geom computes the area enclosed by a closed polyline whose boundary
// may self-intersect. The down/up trace of a glider profile pair crosses
// itself whenever the two casts disagree, so a plain shoelace sum cancels
// lobes of opposite winding; the correct enclosed area is the sum of the
// simple faces the boundary cuts the plane into.
package geom

import (
	"math"
	"sort"
)

// Point is a vertex in measurement/pressure space.
type Point struct {
	X, Y float64
}

// EnclosedArea returns the total area enclosed by the closed polyline through
// the given points, with self-intersections resolved. The chain is closed
// automatically if the last point does not repeat the first. Degenerate input
// (fewer than three distinct vertices, or a retraced line) yields 0.
//
// The boundary is split at every self-intersection, the resulting planar
// subdivision is walked face by face, and the bounded face areas are summed.
// For a connected boundary the bounded faces share one orientation sign and
// the unbounded face carries the other, so the positive signed face areas add
// up to the enclosed area regardless of traversal convention.
func EnclosedArea(points []Point) float64 {
	chain := dedupe(points)
	if len(chain) < 3 {
		return 0
	}
	if chain[0] != chain[len(chain)-1] {
		chain = append(chain, chain[0])
	}

	segs := make([]segment, 0, len(chain)-1)
	for i := 0; i+1 < len(chain); i++ {
		if chain[i] != chain[i+1] {
			segs = append(segs, segment{chain[i], chain[i+1]})
		}
	}
	if len(segs) < 2 {
		return 0
	}

	g := buildSubdivision(segs)
	return g.positiveFaceArea()
}

type segment struct {
	a, b Point
}

// dedupe drops consecutive duplicate vertices and vertices with NaN
// coordinates.
func dedupe(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

// splitParams returns the parameters along s at which it meets t, including
// endpoint touches and collinear overlaps.
func splitParams(s, t segment) []float64 {
	const eps = 1e-12

	rx, ry := s.b.X-s.a.X, s.b.Y-s.a.Y
	sx, sy := t.b.X-t.a.X, t.b.Y-t.a.Y
	qpx, qpy := t.a.X-s.a.X, t.a.Y-s.a.Y

	denom := rx*sy - ry*sx
	if math.Abs(denom) > eps {
		tt := (qpx*sy - qpy*sx) / denom
		uu := (qpx*ry - qpy*rx) / denom
		if tt >= -eps && tt <= 1+eps && uu >= -eps && uu <= 1+eps {
			return []float64{clamp01(tt)}
		}
		return nil
	}

	// Parallel. Only collinear segments produce splits.
	if math.Abs(qpx*ry-qpy*rx) > eps*scale(s, t) {
		return nil
	}
	rr := rx*rx + ry*ry
	if rr == 0 {
		return nil
	}
	var params []float64
	for _, p := range []Point{t.a, t.b} {
		u := ((p.X-s.a.X)*rx + (p.Y-s.a.Y)*ry) / rr
		if u > eps && u < 1-eps {
			params = append(params, u)
		}
	}
	return params
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scale(s, t segment) float64 {
	m := 1.0
	for _, v := range []float64{s.a.X, s.a.Y, s.b.X, s.b.Y, t.a.X, t.a.Y, t.b.X, t.b.Y} {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// subdivision is the planar graph induced by the split boundary segments.
type subdivision struct {
	coords []Point
	adj    [][]int // per node: neighbor node indices, sorted by angle
}

func buildSubdivision(segs []segment) *subdivision {
	// Split every segment at its intersections with every other segment.
	params := make([][]float64, len(segs))
	for i := range segs {
		params[i] = []float64{0, 1}
	}
	for i := 0; i < len(segs); i++ {
		for j := 0; j < len(segs); j++ {
			if i == j {
				continue
			}
			params[i] = append(params[i], splitParams(segs[i], segs[j])...)
		}
	}

	// Merge split points computed from different segment pairs onto one node
	// when they fall within a snap tolerance of each other. The grid is only a
	// merge key: each node keeps the first exact coordinate seen in its cell,
	// and segment endpoints are registered ahead of intersection points, so
	// input vertices are never perturbed.
	snap := 1e-9
	for _, s := range segs {
		snap = math.Max(snap, 1e-9*scale(s, s))
	}
	nodeIndex := make(map[[2]int64]int)
	var coords []Point
	node := func(p Point) int {
		key := [2]int64{int64(math.Round(p.X / snap)), int64(math.Round(p.Y / snap))}
		if idx, ok := nodeIndex[key]; ok {
			return idx
		}
		idx := len(coords)
		nodeIndex[key] = idx
		coords = append(coords, p)
		return idx
	}
	for _, s := range segs {
		node(s.a)
		node(s.b)
	}

	edgeSet := make(map[[2]int]bool)
	var edges [][2]int
	addEdge := func(u, v int) {
		if u == v {
			return
		}
		key := [2]int{u, v}
		if u > v {
			key = [2]int{v, u}
		}
		if edgeSet[key] {
			return
		}
		edgeSet[key] = true
		edges = append(edges, key)
	}

	for i, s := range segs {
		ts := params[i]
		sort.Float64s(ts)
		prev := node(s.a)
		for _, t := range ts {
			p := s.b
			if t < 1 {
				p = Point{s.a.X + t*(s.b.X-s.a.X), s.a.Y + t*(s.b.Y-s.a.Y)}
			}
			cur := node(p)
			addEdge(prev, cur)
			prev = cur
		}
	}

	g := &subdivision{coords: coords, adj: make([][]int, len(coords))}
	for _, e := range edges {
		g.adj[e[0]] = append(g.adj[e[0]], e[1])
		g.adj[e[1]] = append(g.adj[e[1]], e[0])
	}
	for u := range g.adj {
		nbrs := g.adj[u]
		sort.Slice(nbrs, func(a, b int) bool {
			return angle(g.coords[u], g.coords[nbrs[a]]) < angle(g.coords[u], g.coords[nbrs[b]])
		})
	}
	return g
}

func angle(from, to Point) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// positiveFaceArea walks every face of the subdivision once and sums the
// signed areas that come out positive.
func (g *subdivision) positiveFaceArea() float64 {
	type halfEdge struct{ from, to int }
	visited := make(map[halfEdge]bool)

	total := 0.0
	for u := range g.adj {
		for _, v := range g.adj[u] {
			start := halfEdge{u, v}
			if visited[start] {
				continue
			}

			area := 0.0
			cur := start
			for steps := 0; ; steps++ {
				if steps > 4*len(g.adj)*8 {
					// Malformed graph; abandon this walk.
					area = 0
					break
				}
				visited[cur] = true
				p, q := g.coords[cur.from], g.coords[cur.to]
				area += p.X*q.Y - q.X*p.Y

				// Next half-edge: the neighbor immediately clockwise of the
				// reversed edge around the head node.
				nbrs := g.adj[cur.to]
				back := indexOf(nbrs, cur.from)
				next := nbrs[(back-1+len(nbrs))%len(nbrs)]
				cur = halfEdge{cur.to, next}
				if cur == start {
					break
				}
			}

			if area > 0 {
				total += area / 2
			}
		}
	}
	return total
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return 0
}
