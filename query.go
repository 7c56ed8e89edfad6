/*
 * query.go, part of nble.
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
	"github.com/jmbarrios/nble/box"
)

// Mode selects the neighbor-finding strategy of a query.
type Mode int

const (
	//Ball returns every reference point within [RMin, RMax] of a query point.
	Ball Mode = iota
	//Nearest returns the K closest reference points to a query point.
	Nearest
	//Voronoi returns one bond per shared facet of the Voronoi tessellation.
	Voronoi
)

func (m Mode) String() string {
	switch m {
	case Ball:
		return "ball"
	case Nearest:
		return "nearest"
	case Voronoi:
		return "voronoi"
	}
	return "unknown"
}

// QuerySpec configures one query. RMin and RMax bound ball queries
// (RMin may be zero), K is the neighbor count for nearest queries, and
// ExcludeII suppresses bonds to the reference point with the query point's
// own index, for callers whose query points are the same array as the
// reference points. Ball queries suppress only the zero-distance identity
// bond (the point's periodic images are genuine range results); nearest
// queries drop the point through all of its images.
type QuerySpec struct {
	Mode      Mode
	RMin      float64
	RMax      float64
	K         int
	ExcludeII bool
}

// BallSpec returns a spec for a ball query with the given cutoff, excluding
// self bonds.
func BallSpec(rmax float64) QuerySpec {
	return QuerySpec{Mode: Ball, RMax: rmax, ExcludeII: true}
}

// NearestSpec returns a spec for a k-nearest query, excluding self bonds.
func NearestSpec(k int) QuerySpec {
	return QuerySpec{Mode: Nearest, K: k, ExcludeII: true}
}

// VoronoiSpec returns a spec for a Voronoi-facet query.
func VoronoiSpec() QuerySpec {
	return QuerySpec{Mode: Voronoi}
}

// Validate checks the spec against the box it will be queried in. It
// returns a ConfError before any computation happens if the parameters are
// unusable: non-positive cutoff or k, inverted [RMin, RMax], or a ball
// cutoff beyond what the minimum image convention supports in b (half the
// smallest periodic cell width). Callers hitting the cutoff limit must
// shrink the cutoff or disable periodicity on the offending axis.
func (s QuerySpec) Validate(b *box.Box) error {
	switch s.Mode {
	case Ball:
		if s.RMax <= 0 {
			return confErrorf("nble: ball query needs a positive RMax, got %g", s.RMax)
		}
		if s.RMin < 0 {
			return confErrorf("nble: negative RMin %g", s.RMin)
		}
		if s.RMin > s.RMax {
			return confErrorf("nble: RMin %g exceeds RMax %g", s.RMin, s.RMax)
		}
		if max := b.MaxCutoff(); s.RMax > max {
			return confErrorf("nble: cutoff %g exceeds half the smallest periodic box width (max %g)", s.RMax, max)
		}
	case Nearest:
		if s.K <= 0 {
			return confErrorf("nble: nearest query needs a positive K, got %d", s.K)
		}
	case Voronoi:
		//the tessellation finder has no tunables to check here; it
		//validates its own feasibility conditions at construction.
	default:
		return confErrorf("nble: unknown query mode %d", int(s.Mode))
	}
	return nil
}
