/*
 * parallel.go, part of nble.
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
	"runtime"
	"sync"

	"github.com/jmbarrios/nble/box"
	"gonum.org/v1/gonum/mat"
)

// Compute runs a query batch over qpts against the already-built nq,
// splitting the query points into contiguous chunks and dispatching them to
// a fixed pool of workers. The index and box inside nq are shared read-only
// for the whole batch; no worker mutates them. The merged result is
// deterministic for any worker count or chunk size, because the
// NeighborList sort keys fully determine bond order.
//
// If any worker fails, the batch is aborted, partial results are discarded
// and the error of the lowest-indexed failing chunk is returned wrapped in
// an ExecError.
func Compute(nq NeighborQuery, qpts []box.Vec, spec QuerySpec, opts ...*Options) (*NeighborList, error) {
	o := DefaultOptions()
	if len(opts) > 0 && opts[0] != nil {
		o = opts[0]
	}
	if err := spec.Validate(nq.Box()); err != nil {
		return nil, errDecorate(err, "Compute")
	}
	n := len(qpts)
	if n == 0 {
		return FromBonds(nil, 0)
	}
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunk := o.ChunkSize
	if chunk <= 0 {
		//a few chunks per worker evens the load out without drowning
		//the pool in scheduling overhead.
		chunk = n / (4 * workers)
		if chunk < 1 {
			chunk = 1
		}
	}
	nchunks := (n + chunk - 1) / chunk
	if workers > nchunks {
		workers = nchunks
	}

	partials := make([][]Bond, nchunks)
	jobs := make(chan int, nchunks)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := -1 //lowest failing chunk index
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				mu.Lock()
				aborted := failed >= 0
				mu.Unlock()
				if aborted {
					continue //drain the queue, the batch is dead anyway
				}
				lo := c * chunk
				hi := lo + chunk
				if hi > n {
					hi = n
				}
				bonds, err := nq.Query(qpts[lo:hi], lo, spec)
				if err != nil {
					mu.Lock()
					if failed < 0 || c < failed {
						failed = c
						firstErr = &ExecError{First: lo, Last: hi, cause: err}
					}
					mu.Unlock()
					continue
				}
				partials[c] = bonds
			}
		}()
	}
	for c := 0; c < nchunks; c++ {
		jobs <- c
	}
	close(jobs)
	wg.Wait()

	if failed >= 0 {
		return nil, errDecorate(firstErr, "Compute")
	}
	total := 0
	for _, p := range partials {
		total += len(p)
	}
	all := make([]Bond, 0, total)
	for _, p := range partials {
		all = append(all, p...)
	}
	nl, err := FromBonds(all, n)
	if err != nil {
		return nil, errDecorate(err, "Compute")
	}
	return nl, nil
}

// ComputeDense is Compute for callers that keep their positions in gonum
// matrices: m must be Nx3, or Nx2 for 2D boxes.
func ComputeDense(nq NeighborQuery, m mat.Matrix, spec QuerySpec, opts ...*Options) (*NeighborList, error) {
	qpts, err := PointsFromDense(m)
	if err != nil {
		return nil, errDecorate(err, "ComputeDense")
	}
	return Compute(nq, qpts, spec, opts...)
}

// PointsFromDense converts an Nx3 (or Nx2, for 2D systems) gonum matrix of
// positions into the point slice the engine works on. 2D positions get a
// zero z component.
func PointsFromDense(m mat.Matrix) ([]box.Vec, error) {
	r, c := m.Dims()
	if c != 2 && c != 3 {
		return nil, confErrorf("nble: position matrix must have 2 or 3 columns, got %d", c)
	}
	pts := make([]box.Vec, r)
	for i := 0; i < r; i++ {
		pts[i][0] = m.At(i, 0)
		pts[i][1] = m.At(i, 1)
		if c == 3 {
			pts[i][2] = m.At(i, 2)
		}
	}
	return pts, nil
}

// DenseFromPoints converts a point slice back into an Nx3 gonum matrix.
func DenseFromPoints(pts []box.Vec) *mat.Dense {
	if len(pts) == 0 {
		return nil
	}
	d := mat.NewDense(len(pts), 3, nil)
	for i, p := range pts {
		d.SetRow(i, []float64{p[0], p[1], p[2]})
	}
	return d
}
