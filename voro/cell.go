/*
 * cell.go, part of nble.
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

package voro

//cell.go holds the computational geometry of one Voronoi/Laguerre cell.
//A cell is never materialized as a polyhedron: each facet is carved
//independently, as the bisector plane of particle and candidate clipped by
//every other candidate's bisector half-space. That keeps the code down to
//one primitive, Sutherland-Hodgman clipping of a convex polygon against a
//half-space, and works unchanged for power diagrams, where the "bisector"
//just sits off-center.

import (
	"math"

	"github.com/jmbarrios/nble/box"
)

//A candidate neighbor of the particle whose cell is being carved: a
//reference point, possibly in a periodic image.
type candidate struct {
	ref  int     //reference point index
	vec  box.Vec //separation from the particle to the reference image
	d    float64 //norm of vec
	s    float64 //signed distance from the particle to the bisector plane
	n    box.Vec //unit plane normal, vec/d
}

//A carved facet: the candidate it is shared with, its measure (area in 3D,
//length in 2D) and the distance from the particle to the farthest facet
//vertex, used for the enclosure check.
type facet struct {
	cand    int
	measure float64
	maxVert float64
}

//clipEps scales the tolerance used to decide whether a polygon vertex sits
//on a clipping plane. Exactly cospherical point sets put facet vertices
//exactly on other bisectors; the tolerance keeps the clipping stable there,
//at the price of facet measures near machine epsilon being physically
//meaningless (downstream consumers may want to threshold them).
const clipEps = 1e-9

//basisFor returns two unit vectors orthogonal to the unit vector n and to
//each other.
func basisFor(n box.Vec) (box.Vec, box.Vec) {
	a := box.Vec{1, 0, 0}
	if math.Abs(n[0]) > 0.9 {
		a = box.Vec{0, 1, 0}
	}
	e1 := n.Cross(a)
	e1 = e1.Scale(1 / e1.Norm())
	e2 := n.Cross(e1)
	return e1, e2
}

//clipPoly clips the convex polygon poly (vertices in order) against the
//half-space (x-c)·n <= 0, reusing buf for the output when possible.
func clipPoly(poly []box.Vec, c, n box.Vec, eps float64, buf []box.Vec) []box.Vec {
	out := buf[:0]
	m := len(poly)
	if m == 0 {
		return out
	}
	prev := poly[m-1]
	dprev := prev.Sub(c).Dot(n)
	for _, cur := range poly {
		dcur := cur.Sub(c).Dot(n)
		switch {
		case dprev <= eps && dcur <= eps:
			out = append(out, cur)
		case dprev <= eps && dcur > eps:
			t := dprev / (dprev - dcur)
			out = append(out, prev.Add(cur.Sub(prev).Scale(t)))
		case dprev > eps && dcur <= eps:
			t := dprev / (dprev - dcur)
			out = append(out, prev.Add(cur.Sub(prev).Scale(t)))
			out = append(out, cur)
		}
		prev, dprev = cur, dcur
	}
	return out
}

//polyArea returns the area of a planar convex polygon.
func polyArea(poly []box.Vec) float64 {
	if len(poly) < 3 {
		return 0
	}
	var acc box.Vec
	for i := 1; i < len(poly)-1; i++ {
		a := poly[i].Sub(poly[0])
		b := poly[i+1].Sub(poly[0])
		acc = acc.Add(a.Cross(b))
	}
	return acc.Norm() / 2
}

//carve3D computes the facets of the 3D cell of a particle at the origin of
//the candidate separations. R bounds the initial facet polygons; a facet of
//the true cell always lies within the ball of radius R/2 when all
//candidates within R were supplied, which the enclosure check in the finder
//verifies after the fact.
func carve3D(cands []candidate, R float64) []facet {
	var facets []facet
	poly := make([]box.Vec, 0, 16)
	buf := make([]box.Vec, 0, 16)
	eps := clipEps * R
	for j := range cands {
		cj := &cands[j]
		e1, e2 := basisFor(cj.n)
		center := cj.n.Scale(cj.s)
		//initial facet: a big square on the bisector plane
		poly = poly[:0]
		poly = append(poly,
			center.Add(e1.Scale(R)).Add(e2.Scale(R)),
			center.Sub(e1.Scale(R)).Add(e2.Scale(R)),
			center.Sub(e1.Scale(R)).Sub(e2.Scale(R)),
			center.Add(e1.Scale(R)).Sub(e2.Scale(R)),
		)
		for m := range cands {
			if m == j || len(poly) == 0 {
				continue
			}
			cm := &cands[m]
			poly, buf = clipPoly(poly, cm.n.Scale(cm.s), cm.n, eps, buf), poly
		}
		if len(poly) < 3 {
			continue
		}
		area := polyArea(poly)
		if area <= 0 {
			continue
		}
		maxv := 0.0
		for _, v := range poly {
			if d := v.Norm(); d > maxv {
				maxv = d
			}
		}
		facets = append(facets, facet{cand: j, measure: area, maxVert: maxv})
	}
	return facets
}

//carve2D is carve3D for 2D cells, where facets are segments on bisector
//lines and their measure is a length.
func carve2D(cands []candidate, R float64) []facet {
	var facets []facet
	eps := clipEps * R
	for j := range cands {
		cj := &cands[j]
		//in-plane direction along the bisector line
		e := box.Vec{-cj.n[1], cj.n[0], 0}
		center := cj.n.Scale(cj.s)
		a := center.Add(e.Scale(R))
		b := center.Sub(e.Scale(R))
		alive := true
		for m := range cands {
			if m == j {
				continue
			}
			cm := &cands[m]
			da := a.Sub(cm.n.Scale(cm.s)).Dot(cm.n)
			db := b.Sub(cm.n.Scale(cm.s)).Dot(cm.n)
			switch {
			case da <= eps && db <= eps:
				//segment fully kept
			case da > eps && db > eps:
				alive = false
			case da > eps:
				t := da / (da - db)
				a = a.Add(b.Sub(a).Scale(t))
			default:
				t := da / (da - db)
				b = a.Add(b.Sub(a).Scale(t))
			}
			if !alive {
				break
			}
		}
		if !alive {
			continue
		}
		length := a.Sub(b).Norm()
		if length <= 0 {
			continue
		}
		maxv := math.Max(a.Norm(), b.Norm())
		facets = append(facets, facet{cand: j, measure: length, maxVert: maxv})
	}
	return facets
}
