/*
 * voronoi.go, part of nble.
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

//Package voro derives neighbor relations from the periodic Voronoi
//tessellation of a snapshot, or from the Laguerre (power) tessellation when
//per-particle radii are given. Two particles are neighbors when their cells
//share a facet; the facet's area (3D) or edge length (2D) becomes the bond
//weight, which makes the weights sum, per particle, to the particle's cell
//surface area or perimeter.
//
//Cells are carved one particle at a time by clipping bisector planes
//against each other (see cell.go), with candidate neighbors pulled from a
//bounding-volume hierarchy over the point set and its periodic images. A
//particle in a sparse system can be its own neighbor through a periodic
//image; such self bonds are genuine facets at nonzero distance and are
//reported like any other.
package voro

import (
	"math"

	"github.com/jmbarrios/nble"
	"github.com/jmbarrios/nble/box"
	"github.com/jmbarrios/nble/bvh"
	"gonum.org/v1/gonum/mat"
)

//Error is the error type for the voro package. It implements nble.Error.
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

// Finder computes Voronoi/Laguerre neighbor relations for one snapshot. It
// implements nble.NeighborQuery for the Voronoi mode. Build it once with
// New; it is read-only afterwards except for the per-particle cell measures
// it records as cells get carved, which are written disjointly and may be
// read once the query batch is done.
type Finder struct {
	b     *box.Box
	pts   []box.Vec //wrapped positions
	wts   []float64 //squared radii (power weights), nil for plain Voronoi
	ix    *bvh.Index
	cells []float64 //cell volume (3D) or area (2D) per particle
	rc0   float64   //initial candidate-search radius
	rcAll float64   //radius past which we give up on the index and take everything
}

// New builds a Finder over the given points. The box must be periodic along
// every active axis; tessellating open boundaries is not supported. radii,
// if given, must hold one non-negative radius per point and switches the
// tessellation to the Laguerre (power) diagram.
func New(pts []box.Vec, b *box.Box, radii ...[]float64) (*Finder, error) {
	if b == nil {
		return nil, Error{"nble/voro: nil box", []string{"New"}}
	}
	per := b.Periodic()
	for d := 0; d < b.Dims(); d++ {
		if !per[d] {
			return nil, Error{"nble/voro: the tessellation needs a fully periodic box", []string{"New"}}
		}
	}
	if len(pts) == 0 {
		return nil, nble.NewDegeneracyError(-1, "nble/voro: no points to tessellate")
	}
	f := &Finder{
		b:     b,
		pts:   make([]box.Vec, len(pts)),
		cells: make([]float64, len(pts)),
	}
	for i, p := range pts {
		f.pts[i] = b.Wrap(p)
	}
	if len(radii) > 0 && radii[0] != nil {
		r := radii[0]
		if len(r) != len(pts) {
			return nil, Error{"nble/voro: need one radius per point", []string{"New"}}
		}
		f.wts = make([]float64, len(r))
		for i, v := range r {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, Error{"nble/voro: radii must be finite and non-negative", []string{"New"}}
			}
			f.wts[i] = v * v
		}
	}
	var err error
	f.ix, err = bvh.New(f.pts, b)
	if err != nil {
		return nil, err
	}
	//rc0 is a couple of typical cell diameters; the carving loop doubles
	//it as needed, so it only has to be a decent guess.
	f.rc0 = 3 * math.Pow(b.Volume()/float64(len(pts)), 1/float64(b.Dims()))
	d := b.PlaneDistances()
	f.rcAll = d[0]
	for i := 1; i < b.Dims(); i++ {
		if d[i] < f.rcAll {
			f.rcAll = d[i]
		}
	}
	return f, nil
}

// NewDense is New for positions kept in an Nx3 (or Nx2) gonum matrix.
func NewDense(m mat.Matrix, b *box.Box, radii ...[]float64) (*Finder, error) {
	pts, err := nble.PointsFromDense(m)
	if err != nil {
		return nil, err
	}
	return New(pts, b, radii...)
}

// Box returns the periodic cell of the tessellation.
func (f *Finder) Box() *box.Box {
	return f.b
}

// NumRef returns the number of tessellated points.
func (f *Finder) NumRef() int {
	return len(f.pts)
}

// CellMeasures returns the per-particle cell volumes (3D) or areas (2D).
// Only the entries of particles already queried are meaningful; after a
// full Tessellate they all are, and they sum to the box volume.
func (f *Finder) CellMeasures() []float64 {
	out := make([]float64, len(f.cells))
	copy(out, f.cells)
	return out
}

// Query implements nble.NeighborQuery for the Voronoi mode. The query
// points must be the finder's own points: qpts is the contiguous slice of
// the tessellated set starting at index off, which is exactly how the
// Compute dispatcher chunks a batch. Other modes fail with an
// unsupported-mode error.
func (f *Finder) Query(qpts []box.Vec, off int, spec nble.QuerySpec) ([]nble.Bond, error) {
	if spec.Mode != nble.Voronoi {
		return nil, Error{"nble/voro: unsupported query mode " + spec.Mode.String(), []string{"Query"}}
	}
	if off < 0 || off+len(qpts) > len(f.pts) {
		return nil, Error{"nble/voro: query range outside the tessellated point set", []string{"Query"}}
	}
	var bonds []nble.Bond
	for qi := range qpts {
		gi := off + qi
		cellBonds, measure, err := f.carveCell(gi)
		if err != nil {
			return nil, err
		}
		f.cells[gi] = measure
		bonds = append(bonds, cellBonds...)
	}
	return bonds, nil
}

//carveCell computes the cell of particle gi and returns its facet bonds
//and cell measure. The candidate radius starts at rc0 and doubles until
//the carved cell provably fits inside it (every facet vertex closer than
//rc/2), falling back to the full candidate set for sparse systems whose
//cells reach across the box.
func (f *Finder) carveCell(gi int) ([]nble.Bond, float64, error) {
	rc := f.rc0
	for {
		all := rc >= f.rcAll
		cands, err := f.gatherCandidates(gi, rc, all)
		if err != nil {
			return nil, 0, err
		}
		var facets []facet
		R := rc
		if all {
			//own periodic images always bound the cell, so the full set
			//cannot produce an unbounded facet; twice the summed box
			//vectors bounds every initial polygon even in skewed cells.
			lat := f.b.LatticeVectors()
			R = 2 * (lat[0].Norm() + lat[1].Norm() + lat[2].Norm())
		}
		if f.b.Is2D() {
			facets = carve2D(cands, R)
		} else {
			facets = carve3D(cands, R)
		}
		enclosed := true
		for _, fc := range facets {
			if fc.maxVert*2 > rc {
				enclosed = false
				break
			}
		}
		if all || enclosed {
			return f.finishCell(gi, cands, facets), f.cellMeasure(cands, facets), nil
		}
		rc *= 2
	}
}

//gatherCandidates collects the reference images that can bound the cell of
//particle gi: everything within rc of it, or every reference image at all
//when all is set. The particle itself, in its home image, is never a
//candidate; its periodic images are.
func (f *Finder) gatherCandidates(gi int, rc float64, all bool) ([]candidate, error) {
	p := f.pts[gi]
	var cands []candidate
	add := func(ref int, vec box.Vec) error {
		d2 := vec.Dot(vec)
		if d2 == 0 {
			return nble.NewDegeneracyError(gi, "nble/voro: coincident points cannot be tessellated")
		}
		d := math.Sqrt(d2)
		s := d / 2
		if f.wts != nil {
			s = (d2 + f.wts[gi] - f.wts[ref]) / (2 * d)
		}
		cands = append(cands, candidate{
			ref: ref, vec: vec, d: d, s: s, n: vec.Scale(1 / d),
		})
		return nil
	}
	if all {
		shifts := append([]box.Vec{{}}, f.b.ImageShifts()...)
		for ref, q := range f.pts {
			for si, t := range shifts {
				if ref == gi && si == 0 {
					continue
				}
				if err := add(ref, q.Add(t).Sub(p)); err != nil {
					return nil, err
				}
			}
		}
		return cands, nil
	}
	for _, c := range f.ix.Within(p, rc) {
		if c.Ref == gi && c.D2 == 0 {
			continue //the particle's own home image
		}
		if err := add(c.Ref, c.Vec); err != nil {
			return nil, err
		}
	}
	return cands, nil
}

//finishCell turns the carved facets of particle gi into bonds.
func (f *Finder) finishCell(gi int, cands []candidate, facets []facet) []nble.Bond {
	bonds := make([]nble.Bond, 0, len(facets))
	for _, fc := range facets {
		c := &cands[fc.cand]
		bonds = append(bonds, nble.Bond{
			Query: gi, Ref: c.ref,
			Vec: c.vec, Dist: c.d, Weight: fc.measure,
		})
	}
	return bonds
}

//cellMeasure sums the facet pyramids into the cell volume (3D) or the
//facet triangles into the cell area (2D). Contributions are signed, which
//keeps Laguerre cells that do not contain their own site correct.
func (f *Finder) cellMeasure(cands []candidate, facets []facet) float64 {
	var m float64
	div := 3.0
	if f.b.Is2D() {
		div = 2.0
	}
	for _, fc := range facets {
		m += fc.measure * cands[fc.cand].s / div
	}
	return m
}

// Tessellate is the one-call path: it tessellates the whole point set and
// returns the facet NeighborList together with the per-particle cell
// volumes (3D) or areas (2D). Construction failures (degenerate box,
// coincident points) surface as errors; the options tune the parallel
// dispatch as in nble.Compute.
func Tessellate(pts []box.Vec, b *box.Box, radii []float64, opts ...*nble.Options) (*nble.NeighborList, []float64, error) {
	f, err := New(pts, b, radii)
	if err != nil {
		return nil, nil, err
	}
	nl, err := nble.Compute(f, f.pts, nble.VoronoiSpec(), opts...)
	if err != nil {
		return nil, nil, err
	}
	return nl, f.CellMeasures(), nil
}
