/*
 * bvh.go, part of nble.
 *
 *
 * Copyright 2023 Juan M. Barrios <j.m.barrios{at}gmaildotcom>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package bvh implements the bounding-volume-hierarchy neighbor index: a
//static binary tree of axis-aligned boxes over the wrapped reference points
//of one snapshot, supporting ball (fixed radius) and k-nearest queries under
//periodic boundary conditions.
//
//Periodic images are handled during traversal, not by replicating points:
//each query walks the tree once per candidate lattice shift, with the query
//point translated instead of the reference points, so memory stays O(N).
//The index is immutable after New and safe for concurrent queries; when the
//snapshot's positions change, build a new one.
package bvh

import (
	"math"
	"sort"

	"github.com/jmbarrios/nble"
	"github.com/jmbarrios/nble/box"
	"gonum.org/v1/gonum/mat"
)

const leafSize = 8

//Error is the error type for the bvh package. It implements nble.Error.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the
//error, and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

type node struct {
	lo, hi      box.Vec
	left, right int32 //children, -1 on leaves
	start, n    int32 //leaf range into the point permutation
}

// Index is a bounding-volume hierarchy over one snapshot's reference
// points. Build it once with New and query it as often as needed; it
// implements nble.NeighborQuery.
type Index struct {
	b      *box.Box
	pts    []box.Vec //reference positions, wrapped into the canonical image
	order  []int     //permutation of point indexes; leaves own ranges of it
	nodes  []node
	shifts []box.Vec //zero shift first, then the adjacent image shifts
}

// New builds an index over the given reference points in the given box.
// Points are wrapped into the canonical periodic image first, so callers
// may pass raw simulation output. An empty point set is fine: every query
// against it just comes back empty.
func New(pts []box.Vec, b *box.Box) (*Index, error) {
	if b == nil {
		return nil, Error{"nble/bvh: nil box", []string{"New"}}
	}
	ix := &Index{
		b:      b,
		pts:    make([]box.Vec, len(pts)),
		order:  make([]int, len(pts)),
		shifts: append([]box.Vec{{}}, b.ImageShifts()...),
	}
	for i, p := range pts {
		ix.pts[i] = b.Wrap(p)
		ix.order[i] = i
	}
	if len(pts) > 0 {
		ix.nodes = make([]node, 0, 2*len(pts)/leafSize+1)
		ix.build(0, len(pts))
	}
	return ix, nil
}

// NewDense is New for positions kept in an Nx3 (or Nx2) gonum matrix.
func NewDense(m mat.Matrix, b *box.Box) (*Index, error) {
	pts, err := nble.PointsFromDense(m)
	if err != nil {
		return nil, err
	}
	return New(pts, b)
}

//build creates the subtree over order[start:end) and returns its node
//index. Splitting is at the median along the longest AABB axis, which
//keeps the tree balanced and the build at O(N log N).
func (ix *Index) build(start, end int) int32 {
	idx := int32(len(ix.nodes))
	ix.nodes = append(ix.nodes, node{left: -1, right: -1})
	lo := box.Vec{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := box.Vec{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, pi := range ix.order[start:end] {
		p := ix.pts[pi]
		for d := 0; d < 3; d++ {
			lo[d] = math.Min(lo[d], p[d])
			hi[d] = math.Max(hi[d], p[d])
		}
	}
	ix.nodes[idx].lo, ix.nodes[idx].hi = lo, hi
	if end-start <= leafSize {
		ix.nodes[idx].start = int32(start)
		ix.nodes[idx].n = int32(end - start)
		return idx
	}
	axis := 0
	if hi[1]-lo[1] > hi[axis]-lo[axis] {
		axis = 1
	}
	if hi[2]-lo[2] > hi[axis]-lo[axis] {
		axis = 2
	}
	sub := ix.order[start:end]
	sort.Slice(sub, func(i, j int) bool {
		a, b := ix.pts[sub[i]], ix.pts[sub[j]]
		if a[axis] != b[axis] {
			return a[axis] < b[axis]
		}
		return sub[i] < sub[j] //deterministic order for degenerate coordinates
	})
	mid := start + (end-start)/2
	left := ix.build(start, mid)
	right := ix.build(mid, end)
	ix.nodes[idx].left = left
	ix.nodes[idx].right = right
	return idx
}

// Box returns the periodic cell the index was built in.
func (ix *Index) Box() *box.Box {
	return ix.b
}

// NumRef returns the number of reference points in the index.
func (ix *Index) NumRef() int {
	return len(ix.pts)
}

// Query implements nble.NeighborQuery for the ball and nearest modes. The
// voronoi mode is not this index's business and fails with an
// unsupported-mode error.
func (ix *Index) Query(qpts []box.Vec, off int, spec nble.QuerySpec) ([]nble.Bond, error) {
	if err := spec.Validate(ix.b); err != nil {
		return nil, err
	}
	switch spec.Mode {
	case nble.Ball:
		return ix.ballQuery(qpts, off, spec), nil
	case nble.Nearest:
		return ix.nearestQuery(qpts, off, spec), nil
	default:
		return nil, Error{"nble/bvh: unsupported query mode " + spec.Mode.String(), []string{"Query"}}
	}
}

//aabbDist2 returns the squared distance from p to the node's box, zero if
//p is inside it.
func aabbDist2(n *node, p box.Vec) float64 {
	var d2 float64
	for d := 0; d < 3; d++ {
		if v := n.lo[d] - p[d]; v > 0 {
			d2 += v * v
		} else if v := p[d] - n.hi[d]; v > 0 {
			d2 += v * v
		}
	}
	return d2
}

//ballQuery finds, for every query point, all reference points within
//[RMin, RMax], walking the tree once per image shift with the query point
//translated into that image.
//
//Below the half-box cutoff a reference point can be in range through one
//image only, so the shifts never double-count. The single exception is a
//pair at exactly RMax == MaxCutoff, in range through two opposite images
//at the same distance; that one is reported once.
func (ix *Index) ballQuery(qpts []box.Vec, off int, spec nble.QuerySpec) []nble.Bond {
	rmax2 := spec.RMax * spec.RMax
	rmin2 := spec.RMin * spec.RMin
	bonds := make([]nble.Bond, 0, len(qpts)*8)
	var stack []int32
	for qi, q := range qpts {
		qw := ix.b.Wrap(q)
		qStart := len(bonds)
		for si, t := range ix.shifts {
			if len(ix.nodes) == 0 {
				break
			}
			qt := qw.Sub(t) //searching near q-t finds the p with p+t near q
			stack = append(stack[:0], 0)
			for len(stack) > 0 {
				ni := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				nd := &ix.nodes[ni]
				if aabbDist2(nd, qt) > rmax2 {
					continue
				}
				if nd.left >= 0 {
					stack = append(stack, nd.left, nd.right)
					continue
				}
				for _, ri := range ix.order[nd.start : nd.start+nd.n] {
					if spec.ExcludeII && si == 0 && ri == off+qi {
						continue
					}
					v := ix.pts[ri].Sub(qt)
					d2 := v.Dot(v)
					if d2 > rmax2 || d2 < rmin2 {
						continue
					}
					if si > 0 && d2 == rmax2 && seenAtDist(bonds[qStart:], ri, d2) {
						continue
					}
					bonds = append(bonds, nble.Bond{
						Query: off + qi, Ref: ri,
						Vec: v, Dist: math.Sqrt(d2), Weight: 1,
					})
				}
			}
		}
	}
	return bonds
}

//seenAtDist reports whether the query point's bonds already hold ri at the
//exact squared distance d2 through another image.
func seenAtDist(bonds []nble.Bond, ri int, d2 float64) bool {
	for i := range bonds {
		if bonds[i].Ref == ri && bonds[i].Vec.Dot(bonds[i].Vec) == d2 {
			return true
		}
	}
	return false
}

// Candidate is one reference image found by Within: a reference point
// index, the separation from the query point to that image, and its
// squared norm.
type Candidate struct {
	Ref int
	Vec box.Vec
	D2  float64
}

// Within returns every reference image (home cell and adjacent periodic
// images) within distance r of the point p. Unlike a ball query, Within
// does not enforce the half-box cutoff, so the same reference point may
// show up through more than one image; the tessellation in the voro
// package depends on exactly that. The point itself, if it is a reference
// point, comes back too, as a zero-distance candidate.
func (ix *Index) Within(p box.Vec, r float64) []Candidate {
	r2 := r * r
	var out []Candidate
	var stack []int32
	pw := ix.b.Wrap(p)
	for _, t := range ix.shifts {
		if len(ix.nodes) == 0 {
			break
		}
		qt := pw.Sub(t)
		stack = append(stack[:0], 0)
		for len(stack) > 0 {
			ni := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			nd := &ix.nodes[ni]
			if aabbDist2(nd, qt) > r2 {
				continue
			}
			if nd.left >= 0 {
				stack = append(stack, nd.left, nd.right)
				continue
			}
			for _, ri := range ix.order[nd.start : nd.start+nd.n] {
				v := ix.pts[ri].Sub(qt)
				d2 := v.Dot(v)
				if d2 <= r2 {
					out = append(out, Candidate{Ref: ri, Vec: v, D2: d2})
				}
			}
		}
	}
	return out
}

//kCand is one running k-nearest candidate.
type kCand struct {
	d2  float64
	ref int
	vec box.Vec
}

//candLess breaks distance ties by ascending reference index, which makes
//the k-nearest result deterministic.
func candLess(a, b *kCand) bool {
	if a.d2 != b.d2 {
		return a.d2 < b.d2
	}
	return a.ref < b.ref
}

//nearestQuery finds the K closest reference points to every query point.
//Each reference point is returned at most once, at its minimum image
//distance; fewer than K distinct points means fewer bonds, never padding
//with farther images. With ExcludeII the query particle itself is not a
//candidate through any image. Candidates come from the home cell and the
//adjacent image shell; the traversal descends the nearer child first and
//prunes nodes that cannot beat the current k-th candidate.
func (ix *Index) nearestQuery(qpts []box.Vec, off int, spec nble.QuerySpec) []nble.Bond {
	bonds := make([]nble.Bond, 0, len(qpts)*spec.K)
	cands := make([]kCand, 0, spec.K+1)
	for qi, q := range qpts {
		qw := ix.b.Wrap(q)
		cands = cands[:0]
		for _, t := range ix.shifts {
			if len(ix.nodes) == 0 {
				break
			}
			qt := qw.Sub(t)
			ix.knnDescend(0, qt, off+qi, spec, &cands)
		}
		for _, c := range cands {
			bonds = append(bonds, nble.Bond{
				Query: off + qi, Ref: c.ref,
				Vec: c.vec, Dist: math.Sqrt(c.d2), Weight: 1,
			})
		}
	}
	return bonds
}

func (ix *Index) knnDescend(ni int32, qt box.Vec, self int, spec nble.QuerySpec, cands *[]kCand) {
	nd := &ix.nodes[ni]
	if len(*cands) == spec.K {
		//Prune only when the node is strictly farther than the current
		//worst: at equal distance a lower reference index could still win.
		if aabbDist2(nd, qt) > (*cands)[spec.K-1].d2 {
			return
		}
	}
	if nd.left >= 0 {
		first, second := nd.left, nd.right
		if aabbDist2(&ix.nodes[second], qt) < aabbDist2(&ix.nodes[first], qt) {
			first, second = second, first
		}
		ix.knnDescend(first, qt, self, spec, cands)
		ix.knnDescend(second, qt, self, spec, cands)
		return
	}
	for _, ri := range ix.order[nd.start : nd.start+nd.n] {
		if spec.ExcludeII && ri == self {
			continue
		}
		v := ix.pts[ri].Sub(qt)
		c := kCand{d2: v.Dot(v), ref: ri, vec: v}
		insertCand(cands, &c, spec.K)
	}
}

//insertCand inserts c into the ascending candidate slice, keyed by
//reference point: a point already present only moves when the new image is
//closer, so every reference appears at most once, at its minimum image
//distance. The worst entry drops once there are more than k.
func insertCand(cands *[]kCand, c *kCand, k int) {
	s := *cands
	for i := range s {
		if s[i].ref == c.ref {
			if !candLess(c, &s[i]) {
				return
			}
			copy(s[i:], s[i+1:])
			s = s[:len(s)-1]
			break
		}
	}
	if len(s) == k && !candLess(c, &s[k-1]) {
		*cands = s
		return
	}
	pos := sort.Search(len(s), func(i int) bool { return candLess(c, &s[i]) })
	if len(s) < k {
		s = append(s, kCand{})
	}
	copy(s[pos+1:], s[pos:])
	s[pos] = *c
	*cands = s
}
