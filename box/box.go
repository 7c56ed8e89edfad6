/*
 * box.go, part of nble.
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

//Package box implements periodic simulation cells, orthorhombic or triclinic,
//in two or three dimensions. A Box knows how to wrap points into the canonical
//periodic image and how to compute minimum-image displacements and distances,
//which is all the rest of the library needs from the cell geometry.
//
//A Box is immutable once constructed and is meant to be shared, by pointer,
//across every query made against one snapshot.
package box

import (
	"fmt"
	"math"
)

//Vec is a point or displacement in cartesian space. 2D systems use the
//first two components and keep the third at zero.
type Vec [3]float64

//Add returns the element-wise sum of v and w.
func (v Vec) Add(w Vec) Vec {
	return Vec{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

//Sub returns the element-wise difference v-w.
func (v Vec) Sub(w Vec) Vec {
	return Vec{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

//Scale returns v scaled by a.
func (v Vec) Scale(a float64) Vec {
	return Vec{a * v[0], a * v[1], a * v[2]}
}

//Dot returns the dot product of v and w.
func (v Vec) Dot(w Vec) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

//Cross returns the cross product of v and w.
func (v Vec) Cross(w Vec) Vec {
	return Vec{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

//Norm returns the euclidean norm of v.
func (v Vec) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

//Box is a simulation cell. The cell matrix, in column-vector form, is
//
//	| Lx  xy*Ly  xz*Lz |
//	| 0   Ly     yz*Lz |
//	| 0   0      Lz    |
//
//with dimensionless tilt factors xy, xz and yz, the convention used by HOOMD
//and LAMMPS. An orthorhombic cell has all tilt factors at zero.
type Box struct {
	lx, ly, lz float64
	xy, xz, yz float64
	is2D       bool
	periodic   [3]bool
}

//Error is the error type for the box package. It implements nble.Error.
type Error struct {
	message string
	deco    []string
}

//Error returns a string with an error message.
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

func checkLengths(lengths ...float64) error {
	for _, l := range lengths {
		if l <= 0 || math.IsNaN(l) || math.IsInf(l, 0) {
			return Error{fmt.Sprintf("nble/box: edge lengths must be strictly positive, got %v", lengths), []string{"checkLengths"}}
		}
	}
	return nil
}

//NewCube returns a fully periodic cubic 3D box with edge length l.
func NewCube(l float64) (*Box, error) {
	return New3D(l, l, l)
}

//New3D returns a fully periodic orthorhombic 3D box.
func New3D(lx, ly, lz float64) (*Box, error) {
	return NewTriclinic(lx, ly, lz, 0, 0, 0)
}

//NewTriclinic returns a fully periodic triclinic 3D box with the given
//edge lengths and tilt factors.
func NewTriclinic(lx, ly, lz, xy, xz, yz float64) (*Box, error) {
	if err := checkLengths(lx, ly, lz); err != nil {
		return nil, errDecorate(err, "NewTriclinic")
	}
	return &Box{lx: lx, ly: ly, lz: lz, xy: xy, xz: xz, yz: yz,
		periodic: [3]bool{true, true, true}}, nil
}

//New2D returns a fully periodic rectangular 2D box. The z axis is inactive.
func New2D(lx, ly float64) (*Box, error) {
	return New2DTriclinic(lx, ly, 0)
}

//New2DTriclinic returns a fully periodic 2D box with tilt factor xy.
func New2DTriclinic(lx, ly, xy float64) (*Box, error) {
	if err := checkLengths(lx, ly); err != nil {
		return nil, errDecorate(err, "New2DTriclinic")
	}
	//the unit z length keeps the fractional transform invertible,
	//it carries no physical meaning.
	return &Box{lx: lx, ly: ly, lz: 1, xy: xy, is2D: true,
		periodic: [3]bool{true, true, false}}, nil
}

//WithPeriodic returns a copy of the box with the given periodicity flags.
//The z flag is ignored for 2D boxes.
func (b *Box) WithPeriodic(px, py, pz bool) *Box {
	nb := *b
	nb.periodic = [3]bool{px, py, pz}
	if b.is2D {
		nb.periodic[2] = false
	}
	return &nb
}

//Lengths returns the edge lengths of the box. For a 2D box the third
//component is meaningless.
func (b *Box) Lengths() Vec {
	return Vec{b.lx, b.ly, b.lz}
}

//Tilts returns the xy, xz and yz tilt factors.
func (b *Box) Tilts() Vec {
	return Vec{b.xy, b.xz, b.yz}
}

//Is2D returns whether the box is two-dimensional.
func (b *Box) Is2D() bool {
	return b.is2D
}

//Dims returns the dimensionality of the box, 2 or 3.
func (b *Box) Dims() int {
	if b.is2D {
		return 2
	}
	return 3
}

//Periodic returns the per-axis periodicity flags.
func (b *Box) Periodic() [3]bool {
	return b.periodic
}

//IsOrthorhombic returns whether all tilt factors are zero.
func (b *Box) IsOrthorhombic() bool {
	return b.xy == 0 && b.xz == 0 && b.yz == 0
}

//Volume returns the volume of the box, or its area for a 2D box. Tilting
//a cell does not change its volume.
func (b *Box) Volume() float64 {
	if b.is2D {
		return b.lx * b.ly
	}
	return b.lx * b.ly * b.lz
}

//LatticeVectors returns the box vectors a1, a2, a3. For 2D boxes a3 is zero.
func (b *Box) LatticeVectors() [3]Vec {
	if b.is2D {
		return [3]Vec{
			{b.lx, 0, 0},
			{b.xy * b.ly, b.ly, 0},
			{},
		}
	}
	return [3]Vec{
		{b.lx, 0, 0},
		{b.xy * b.ly, b.ly, 0},
		{b.xz * b.lz, b.yz * b.lz, b.lz},
	}
}

//MakeFractional converts a cartesian vector to fractional (lattice)
//coordinates.
func (b *Box) MakeFractional(v Vec) Vec {
	var f Vec
	f[2] = v[2] / b.lz
	f[1] = (v[1] - b.yz*b.lz*f[2]) / b.ly
	f[0] = (v[0] - b.xy*b.ly*f[1] - b.xz*b.lz*f[2]) / b.lx
	if b.is2D {
		f[2] = 0
	}
	return f
}

//MakeAbsolute converts fractional (lattice) coordinates back to cartesian.
func (b *Box) MakeAbsolute(f Vec) Vec {
	var v Vec
	v[0] = b.lx*f[0] + b.xy*b.ly*f[1] + b.xz*b.lz*f[2]
	v[1] = b.ly*f[1] + b.yz*b.lz*f[2]
	v[2] = b.lz * f[2]
	if b.is2D {
		v[2] = 0
	}
	return v
}

//Wrap maps a point into the canonical periodic image, with fractional
//coordinates in [0,1) along each periodic axis. Aperiodic axes are left
//untouched.
func (b *Box) Wrap(p Vec) Vec {
	f := b.MakeFractional(p)
	for i := 0; i < 3; i++ {
		if !b.periodic[i] {
			continue
		}
		f[i] -= math.Floor(f[i])
		//Floor can leave an exact 1.0 behind when f was a tiny negative.
		if f[i] >= 1 {
			f[i] = 0
		}
	}
	return b.MakeAbsolute(f)
}

//MinImage returns the shortest periodic representative of the displacement v.
//For orthorhombic cells this is the usual round-to-nearest wrap. For triclinic
//cells the naive wrap is only a starting point, the true minimum is found by
//also checking the adjacent image shifts, which keeps the result correct for
//cutoffs up to half the smallest perpendicular cell width.
func (b *Box) MinImage(v Vec) Vec {
	f := b.MakeFractional(v)
	for i := 0; i < 3; i++ {
		if b.periodic[i] {
			f[i] -= math.Round(f[i])
		}
	}
	best := b.MakeAbsolute(f)
	if b.IsOrthorhombic() {
		return best
	}
	bestn := best.Dot(best)
	for _, t := range b.ImageShifts() {
		cand := best.Add(t)
		if n := cand.Dot(cand); n < bestn {
			best, bestn = cand, n
		}
	}
	return best
}

//Distance returns the minimum-image distance between the points p1 and p2.
func (b *Box) Distance(p1, p2 Vec) float64 {
	return b.MinImage(p2.Sub(p1)).Norm()
}

//PlaneDistances returns, per axis, the distance between the two box faces
//perpendicular to that axis. For orthorhombic cells these are just the edge
//lengths; tilting shrinks them.
func (b *Box) PlaneDistances() Vec {
	if b.is2D {
		return Vec{
			b.lx / math.Sqrt(1+b.xy*b.xy),
			b.ly,
			math.Inf(1),
		}
	}
	t := b.xy*b.yz - b.xz
	return Vec{
		b.lx / math.Sqrt(1+b.xy*b.xy+t*t),
		b.ly / math.Sqrt(1+b.yz*b.yz),
		b.lz,
	}
}

//MaxCutoff returns the largest query cutoff the minimum image convention can
//support in this box: half the smallest perpendicular width among the
//periodic axes. It returns +Inf for a fully aperiodic box.
func (b *Box) MaxCutoff() float64 {
	d := b.PlaneDistances()
	min := math.Inf(1)
	for i := 0; i < 3; i++ {
		if b.is2D && i == 2 {
			break
		}
		if b.periodic[i] && d[i] < min {
			min = d[i]
		}
	}
	return min / 2
}

//ImageShifts returns the lattice translations to every adjacent periodic
//image: all combinations of n_i in {-1,0,1} over the periodic axes, excluding
//the zero shift. Aperiodic axes contribute no shifts. The order is fixed, so
//traversals over the shifts are deterministic.
func (b *Box) ImageShifts() []Vec {
	lat := b.LatticeVectors()
	ranges := [3][]int{}
	for i := 0; i < 3; i++ {
		if b.periodic[i] && !(b.is2D && i == 2) {
			ranges[i] = []int{-1, 0, 1}
		} else {
			ranges[i] = []int{0}
		}
	}
	shifts := make([]Vec, 0, 26)
	for _, nx := range ranges[0] {
		for _, ny := range ranges[1] {
			for _, nz := range ranges[2] {
				if nx == 0 && ny == 0 && nz == 0 {
					continue
				}
				t := lat[0].Scale(float64(nx)).
					Add(lat[1].Scale(float64(ny))).
					Add(lat[2].Scale(float64(nz)))
				shifts = append(shifts, t)
			}
		}
	}
	return shifts
}

//errDecorate asserts that err implements the decorated-error scheme used
//across nble and adds the caller's name before passing it up.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}
