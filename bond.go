/*
 * bond.go, part of nble.
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
	"fmt"

	"github.com/jmbarrios/nble/box"
)

// Bond is a directed neighbor relation between a query point and a
// reference point. Vec is the minimum-image separation from the query point
// to the reference point, and Dist its norm. Weight defaults to 1; the
// Voronoi finder sets it to the shared facet area (3D) or edge length (2D).
type Bond struct {
	Query  int
	Ref    int
	Vec    box.Vec
	Dist   float64
	Weight float64
}

func (b *Bond) String() string {
	return fmt.Sprintf("bond %d->%d d: %5.3f w: %5.3f", b.Query, b.Ref, b.Dist, b.Weight)
}

//bondLess is the one bond ordering used everywhere: query index, then
//distance, then reference index, then weight. It makes every NeighborList,
//and thus every parallel query, deterministic.
func bondLess(a, b *Bond) bool {
	if a.Query != b.Query {
		return a.Query < b.Query
	}
	if a.Dist != b.Dist {
		return a.Dist < b.Dist
	}
	if a.Ref != b.Ref {
		return a.Ref < b.Ref
	}
	return a.Weight < b.Weight
}

//pairLess orders bonds by (query, ref, distance, weight). It is the merge
//order for the set-style NeighborList operations.
func pairLess(a, b *Bond) bool {
	if a.Query != b.Query {
		return a.Query < b.Query
	}
	if a.Ref != b.Ref {
		return a.Ref < b.Ref
	}
	if a.Dist != b.Dist {
		return a.Dist < b.Dist
	}
	return a.Weight < b.Weight
}

//sameBond is the identity the set-style operations merge on: one particle
//pair can bond several times through different periodic images, so the
//distance is part of a bond's identity, the weight is not.
func sameBond(a, b *Bond) bool {
	return a.Query == b.Query && a.Ref == b.Ref && a.Dist == b.Dist
}
