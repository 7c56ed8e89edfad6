/*
 * errors.go, part of nble.
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

import "fmt"

//The error taxonomy of the engine: configuration problems are caught before
//any computation starts, degeneracies come out of the tessellation, and
//execution errors out of the parallel dispatcher. None of them is ever
//retried internally; they all go straight to the caller.

// ConfError reports an invalid box, query spec or input array. It is always
// detected before any computation starts.
type ConfError struct {
	message string
	deco    []string
}

func confErrorf(format string, a ...interface{}) *ConfError {
	return &ConfError{message: fmt.Sprintf(format, a...)}
}

// Error returns a string with an error message.
func (err *ConfError) Error() string {
	return err.message
}

// Decorate will add the dec string to the decoration slice of strings of the
// error and return the resulting slice.
func (err *ConfError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// DegeneracyError reports that the tessellation solver could not produce a
// valid tessellation: a degenerate box, too few points for the
// dimensionality, or an exactly degenerate point configuration the
// perturbation tolerance could not resolve. Particle is the offending
// particle index, or -1 when no single particle can be blamed.
type DegeneracyError struct {
	message  string
	Particle int
	deco     []string
}

// NewDegeneracyError builds a DegeneracyError for the given particle index
// (-1 when no single particle is to blame). It is exported for the
// tessellation subpackage, which is where degeneracies are detected.
func NewDegeneracyError(particle int, format string, a ...interface{}) *DegeneracyError {
	return &DegeneracyError{message: fmt.Sprintf(format, a...), Particle: particle}
}

func (err *DegeneracyError) Error() string {
	if err.Particle >= 0 {
		return fmt.Sprintf("%s (particle %d)", err.message, err.Particle)
	}
	return err.message
}

// Decorate will add the dec string to the decoration slice of strings of the
// error and return the resulting slice.
func (err *DegeneracyError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// ExecError reports a worker failure during parallel dispatch. It carries
// the query-point range of the failing chunk and the first underlying error;
// partial results from sibling workers are discarded, not reported.
type ExecError struct {
	First, Last int //the chunk's query-point range, [First,Last)
	cause       error
	deco        []string
}

func (err *ExecError) Error() string {
	return fmt.Sprintf("query chunk [%d,%d) failed: %v", err.First, err.Last, err.cause)
}

// Unwrap returns the worker's original error.
func (err *ExecError) Unwrap() error {
	return err.cause
}

// Decorate will add the dec string to the decoration slice of strings of the
// error and return the resulting slice.
func (err *ExecError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// errDecorate decorates err with the caller's name if it implements the
// library's Error interface, and returns it unchanged otherwise.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}
