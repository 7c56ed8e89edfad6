/*
 * neighborlist.go, part of nble.
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

package nble

import (
	"sort"
)

// NeighborList is the canonical result of a query: a bonded graph over
// particle indexes, sorted by (query index, distance, reference index),
// with an offsets array giving O(1) access to each query point's bond
// segment. A NeighborList is immutable after construction; the set-style
// operations return new lists.
type NeighborList struct {
	bonds   []Bond
	offsets []int //len nQuery+1, bonds of query point i live in [offsets[i],offsets[i+1])
	nQuery  int
}

// FromBonds builds a NeighborList from an unsorted bond sequence over
// nQuery query points. The input slice is copied, sorted and indexed; bonds
// with query indexes outside [0, nQuery) are a ConfError.
func FromBonds(bonds []Bond, nQuery int) (*NeighborList, error) {
	if nQuery < 0 {
		return nil, confErrorf("nble: negative query point count %d", nQuery)
	}
	nl := &NeighborList{
		bonds:  make([]Bond, len(bonds)),
		nQuery: nQuery,
	}
	copy(nl.bonds, bonds)
	for i := range nl.bonds {
		b := &nl.bonds[i]
		if b.Query < 0 || b.Query >= nQuery {
			return nil, confErrorf("nble: bond %d has query index %d, want [0,%d)", i, b.Query, nQuery)
		}
		if b.Ref < 0 {
			return nil, confErrorf("nble: bond %d has negative reference index %d", i, b.Ref)
		}
	}
	sort.SliceStable(nl.bonds, func(i, j int) bool {
		return bondLess(&nl.bonds[i], &nl.bonds[j])
	})
	nl.reindex()
	return nl, nil
}

//reindex rebuilds the offsets array from the (sorted) bonds.
func (nl *NeighborList) reindex() {
	nl.offsets = make([]int, nl.nQuery+1)
	for i := range nl.bonds {
		nl.offsets[nl.bonds[i].Query+1]++
	}
	for i := 1; i <= nl.nQuery; i++ {
		nl.offsets[i] += nl.offsets[i-1]
	}
}

// Len returns the total number of bonds in the list.
func (nl *NeighborList) Len() int {
	return len(nl.bonds)
}

// NumQueryPoints returns the number of query points the list was built over,
// counting also those with zero bonds.
func (nl *NeighborList) NumQueryPoints() int {
	return nl.nQuery
}

// Bonds returns the sorted bond sequence. The returned slice is the list's
// internal storage, so please treat it kindly.
func (nl *NeighborList) Bonds() []Bond {
	return nl.bonds
}

// Segment returns the bonds of the query point i, sorted by ascending
// distance. The returned slice is a view into the list's storage.
func (nl *NeighborList) Segment(i int) ([]Bond, error) {
	if i < 0 || i >= nl.nQuery {
		return nil, confErrorf("nble: query index %d out of range [0,%d)", i, nl.nQuery)
	}
	return nl.bonds[nl.offsets[i]:nl.offsets[i+1]], nil
}

// Count returns the number of bonds of the query point i, or 0 if i is out
// of range.
func (nl *NeighborList) Count(i int) int {
	if i < 0 || i >= nl.nQuery {
		return 0
	}
	return nl.offsets[i+1] - nl.offsets[i]
}

// Counts returns the per-query-point bond counts.
func (nl *NeighborList) Counts() []int {
	c := make([]int, nl.nQuery)
	for i := range c {
		c[i] = nl.offsets[i+1] - nl.offsets[i]
	}
	return c
}

// Distances returns the distances of all bonds, in list order.
func (nl *NeighborList) Distances() []float64 {
	d := make([]float64, len(nl.bonds))
	for i := range nl.bonds {
		d[i] = nl.bonds[i].Dist
	}
	return d
}

// Weights returns the weights of all bonds, in list order.
func (nl *NeighborList) Weights() []float64 {
	w := make([]float64, len(nl.bonds))
	for i := range nl.bonds {
		w[i] = nl.bonds[i].Weight
	}
	return w
}

// WeightSums returns, per query point, the sum of its bond weights. For a
// Voronoi list in 3D this is the particle's total cell surface area.
func (nl *NeighborList) WeightSums() []float64 {
	w := make([]float64, nl.nQuery)
	for i := range nl.bonds {
		w[nl.bonds[i].Query] += nl.bonds[i].Weight
	}
	return w
}

// Filter returns a new list with only the bonds for which keep returns
// true. The result keeps the sortedness and offset invariants.
func (nl *NeighborList) Filter(keep func(*Bond) bool) *NeighborList {
	out := &NeighborList{nQuery: nl.nQuery}
	for i := range nl.bonds {
		if keep(&nl.bonds[i]) {
			out.bonds = append(out.bonds, nl.bonds[i])
		}
	}
	out.reindex()
	return out
}

// FilterR returns a new list keeping only bonds with rmin <= Dist <= rmax.
func (nl *NeighborList) FilterR(rmin, rmax float64) *NeighborList {
	return nl.Filter(func(b *Bond) bool {
		return b.Dist >= rmin && b.Dist <= rmax
	})
}

// Union merges two lists over the same query point count, multiset style.
// A bond's identity is its (query, ref, distance) triple: the same particle
// pair bonded through different periodic images (a sparse system's
// tessellation facets) keeps every one of its bonds. A bond present in both
// inputs appears once in the output, with the weight of nl's copy. Union of
// a list with itself returns an equal list.
func (nl *NeighborList) Union(other *NeighborList) (*NeighborList, error) {
	if other == nil || nl.nQuery != other.nQuery {
		return nil, confErrorf("nble: union of lists over different query point counts")
	}
	a := sortedByPair(nl.bonds)
	b := sortedByPair(other.bonds)
	merged := make([]Bond, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case sameBond(&a[i], &b[j]):
			merged = append(merged, a[i])
			i++
			j++
		case pairLess(&a[i], &b[j]):
			merged = append(merged, a[i])
			i++
		default:
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return FromBonds(merged, nl.nQuery)
}

// Intersect returns the bonds present in both lists, under the same
// (query, ref, distance) identity as Union: a pair bonded through several
// periodic images keeps as many bonds as both inputs carry. Weights come
// from nl's copies.
func (nl *NeighborList) Intersect(other *NeighborList) (*NeighborList, error) {
	if other == nil || nl.nQuery != other.nQuery {
		return nil, confErrorf("nble: intersection of lists over different query point counts")
	}
	a := sortedByPair(nl.bonds)
	b := sortedByPair(other.bonds)
	var common []Bond
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case sameBond(&a[i], &b[j]):
			common = append(common, a[i])
			i++
			j++
		case pairLess(&a[i], &b[j]):
			i++
		default:
			j++
		}
	}
	return FromBonds(common, nl.nQuery)
}

//sortedByPair returns a copy of bonds sorted by (query, ref, distance,
//weight), the merge order of the set-style operations. Nothing is
//collapsed here: distinct image bonds of one pair are distinct bonds.
func sortedByPair(bonds []Bond) []Bond {
	c := make([]Bond, len(bonds))
	copy(c, bonds)
	sort.SliceStable(c, func(i, j int) bool { return pairLess(&c[i], &c[j]) })
	return c
}

// Export returns the list as three parallel arrays (query indexes,
// reference indexes, distances), the interchange format for external
// tooling. The arrays are fresh copies in list order.
func (nl *NeighborList) Export() ([]int, []int, []float64) {
	q := make([]int, len(nl.bonds))
	r := make([]int, len(nl.bonds))
	d := make([]float64, len(nl.bonds))
	for i := range nl.bonds {
		q[i] = nl.bonds[i].Query
		r[i] = nl.bonds[i].Ref
		d[i] = nl.bonds[i].Dist
	}
	return q, r, d
}

// FromArrays rebuilds a NeighborList from the three parallel arrays of
// Export over nQuery query points. Weights, if given, must be parallel to
// the other arrays; they default to 1. Separation vectors are not part of
// the interchange format and come back zeroed.
func FromArrays(nQuery int, q, r []int, d []float64, weights ...[]float64) (*NeighborList, error) {
	if len(q) != len(r) || len(q) != len(d) {
		return nil, confErrorf("nble: parallel arrays of different lengths: %d %d %d", len(q), len(r), len(d))
	}
	var w []float64
	if len(weights) > 0 && weights[0] != nil {
		w = weights[0]
		if len(w) != len(q) {
			return nil, confErrorf("nble: weights array length %d, want %d", len(w), len(q))
		}
	}
	bonds := make([]Bond, len(q))
	for i := range q {
		bonds[i] = Bond{Query: q[i], Ref: r[i], Dist: d[i], Weight: 1}
		if w != nil {
			bonds[i].Weight = w[i]
		}
	}
	return FromBonds(bonds, nQuery)
}

// Equal reports whether two lists have the same query point count and the
// same bonds (indexes, distances and weights) in the same order. Separation
// vectors are not compared, as the interchange format drops them.
func (nl *NeighborList) Equal(other *NeighborList) bool {
	if other == nil || nl.nQuery != other.nQuery || len(nl.bonds) != len(other.bonds) {
		return false
	}
	for i := range nl.bonds {
		a, b := &nl.bonds[i], &other.bonds[i]
		if a.Query != b.Query || a.Ref != b.Ref || a.Dist != b.Dist || a.Weight != b.Weight {
			return false
		}
	}
	return true
}
