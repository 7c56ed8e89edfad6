/*
 * doc.go, part of nble.
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

//Package nble is a periodic spatial locality engine for particle-simulation
//snapshots. Given a simulation cell (see the box subpackage) and a set of
//particle positions, it answers "which particles are near which" under
//periodic wraparound, and materializes the answer as a NeighborList: a
//sparse, sorted bonded graph over particle indexes with per-bond
//minimum-image separations, distances and weights.
//
//Neighbors can be found by fixed-radius ball queries or k-nearest queries
//against a bounding-volume hierarchy (the bvh subpackage), or from the
//facets of a periodic Voronoi/Laguerre tessellation (the voro subpackage).
//Both strategies sit behind the NeighborQuery interface, so downstream
//reductions do not care where their bonds came from.
//
//Queries over large point sets are dispatched to a fixed pool of workers by
//Compute. The resulting NeighborList is deterministic: bonds are always
//sorted by (query index, distance, reference index), whatever the worker
//count or chunking.
package nble
