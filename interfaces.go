/*
 * interfaces.go, part of nble.
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

import "github.com/jmbarrios/nble/box"

// NeighborQuery is the capability interface over neighbor-finding
// strategies. The bvh and voro subpackages implement it; downstream
// consumers and the Compute dispatcher only see this interface.
//
// A NeighborQuery is built once per snapshot over a fixed reference point
// set and is read-only afterwards, so Query may be called concurrently.
// Not every strategy supports every query mode; an unsupported combination
// must fail with an error rather than silently approximate.
type NeighborQuery interface {

	//Box returns the periodic cell the reference points live in.
	Box() *box.Box

	//NumRef returns the number of reference points the query was built over.
	NumRef() int

	/*Query computes the bonds from each point of qpts to its neighbors among
	the reference set, according to spec. The query indexes of the returned
	bonds are offset by off, so that a caller splitting a large query set
	into chunks gets globally consistent indexes back. The returned bonds
	carry minimum-image separation vectors and need not come in any
	particular order; sorting is the NeighborList's job.*/
	Query(qpts []box.Vec, off int, spec QuerySpec) ([]Bond, error)
}

//Errors

// Error is the interface for errors that all packages in this library
// implement. The Decorate method allows to add and retrieve info from the
// error, without changing its type or wrapping it around something else.
// Each Decorate call records the caller's name, plus optionally any extra
// context, in the format "FunctionName: extra info".
type Error interface {
	Error() string
	Decorate(string) []string
}
