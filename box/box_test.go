/*
 * box_test.go, part of nble.
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

package box

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-10

//TestWrap checks that wrapped points land in the canonical image and that
//wrapping is idempotent.
func TestWrap(Te *testing.T) {
	b, err := NewCube(10)
	if err != nil {
		Te.Fatal(err)
	}
	w := b.Wrap(Vec{12, -3, 25})
	want := Vec{2, 7, 5}
	if w.Sub(want).Norm() > eps {
		Te.Errorf("wrapped to %v, want %v", w, want)
	}
	if w2 := b.Wrap(w); w2.Sub(w).Norm() > eps {
		Te.Errorf("wrap not idempotent: %v then %v", w, w2)
	}
	//a tiny negative must not wrap to the far face
	w = b.Wrap(Vec{-1e-16, 0, 0})
	f := b.MakeFractional(w)
	for i := 0; i < 3; i++ {
		if f[i] < 0 || f[i] >= 1 {
			Te.Errorf("fractional coordinate %d out of [0,1): %v", i, f)
		}
	}
}

func TestWrapTriclinic(Te *testing.T) {
	b, err := NewTriclinic(10, 8, 6, 0.3, -0.2, 0.1)
	if err != nil {
		Te.Fatal(err)
	}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		p := Vec{r.Float64()*40 - 20, r.Float64()*40 - 20, r.Float64()*40 - 20}
		f := b.MakeFractional(b.Wrap(p))
		for d := 0; d < 3; d++ {
			if f[d] < 0 || f[d] >= 1 {
				Te.Fatalf("point %v wraps outside the canonical image: fractional %v", p, f)
			}
		}
		//wrapping is a lattice translation, so distances cannot change
		q := Vec{r.Float64() * 10, r.Float64() * 8, r.Float64() * 6}
		if math.Abs(b.Distance(p, q)-b.Distance(b.Wrap(p), q)) > 1e-9 {
			Te.Fatalf("wrapping changed the distance for %v", p)
		}
	}
}

//TestMinImage cross-checks the minimum image displacement against a brute
//force search over lattice translations.
func TestMinImage(Te *testing.T) {
	boxes := []*Box{}
	b, _ := NewCube(10)
	boxes = append(boxes, b)
	b, _ = NewTriclinic(10, 8, 6, 0.4, -0.3, 0.2)
	boxes = append(boxes, b)
	b, _ = New2DTriclinic(7, 5, 0.5)
	boxes = append(boxes, b)
	r := rand.New(rand.NewSource(2))
	for bi, b := range boxes {
		lat := b.LatticeVectors()
		for i := 0; i < 200; i++ {
			v := Vec{r.Float64()*30 - 15, r.Float64()*30 - 15, r.Float64()*30 - 15}
			if b.Is2D() {
				v[2] = 0
			}
			got := b.MinImage(v).Norm()
			best := math.Inf(1)
			for nx := -2; nx <= 2; nx++ {
				for ny := -2; ny <= 2; ny++ {
					for nz := -2; nz <= 2; nz++ {
						if b.Is2D() && nz != 0 {
							continue
						}
						t := lat[0].Scale(float64(nx)).Add(lat[1].Scale(float64(ny))).Add(lat[2].Scale(float64(nz)))
						if n := v.Add(t).Norm(); n < best {
							best = n
						}
					}
				}
			}
			if math.Abs(got-best) > 1e-9 {
				Te.Fatalf("box %d: minimum image of %v has norm %g, brute force says %g", bi, v, got, best)
			}
		}
	}
	fmt.Println("Minimum image agrees with brute force")
}

func TestDistanceSymmetry(Te *testing.T) {
	b, err := NewTriclinic(9, 7, 5, 0.2, 0.1, -0.3)
	if err != nil {
		Te.Fatal(err)
	}
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		p := Vec{r.Float64() * 9, r.Float64() * 7, r.Float64() * 5}
		q := Vec{r.Float64() * 9, r.Float64() * 7, r.Float64() * 5}
		if math.Abs(b.Distance(p, q)-b.Distance(q, p)) > eps {
			Te.Fatalf("distance not symmetric for %v %v", p, q)
		}
	}
}

func TestMaxCutoff(Te *testing.T) {
	b, err := NewCube(10)
	if err != nil {
		Te.Fatal(err)
	}
	if c := b.MaxCutoff(); math.Abs(c-5) > eps {
		Te.Errorf("cube of edge 10: max cutoff %g, want 5", c)
	}
	//tilting shrinks the perpendicular widths, never grows them
	tb, err := NewTriclinic(10, 10, 10, 0.5, 0, 0)
	if err != nil {
		Te.Fatal(err)
	}
	if tb.MaxCutoff() >= 5 {
		Te.Errorf("tilted box should have a smaller cutoff than the orthorhombic one, got %g", tb.MaxCutoff())
	}
	if c := b.WithPeriodic(false, false, false).MaxCutoff(); !math.IsInf(c, 1) {
		Te.Errorf("aperiodic box: max cutoff %g, want +Inf", c)
	}
	//2D: z never constrains the cutoff
	b2, err := New2D(4, 20)
	if err != nil {
		Te.Fatal(err)
	}
	if c := b2.MaxCutoff(); math.Abs(c-2) > eps {
		Te.Errorf("2D box: max cutoff %g, want 2", c)
	}
}

func TestAperiodicAxes(Te *testing.T) {
	b, err := NewCube(10)
	if err != nil {
		Te.Fatal(err)
	}
	bz := b.WithPeriodic(true, true, false)
	p := Vec{1, 1, 23}
	w := bz.Wrap(p)
	if w[2] != 23 {
		Te.Errorf("wrap touched the aperiodic z axis: %v", w)
	}
	//along z the distance is the plain euclidean one now
	d := bz.Distance(Vec{0, 0, 0}, Vec{0, 0, 9})
	if math.Abs(d-9) > eps {
		Te.Errorf("aperiodic z distance %g, want 9", d)
	}
}

func TestImageShifts(Te *testing.T) {
	b, err := NewCube(5)
	if err != nil {
		Te.Fatal(err)
	}
	if n := len(b.ImageShifts()); n != 26 {
		Te.Errorf("3D fully periodic box: %d shifts, want 26", n)
	}
	b2, err := New2D(5, 5)
	if err != nil {
		Te.Fatal(err)
	}
	if n := len(b2.ImageShifts()); n != 8 {
		Te.Errorf("2D box: %d shifts, want 8", n)
	}
	if n := len(b.WithPeriodic(true, false, false).ImageShifts()); n != 2 {
		Te.Errorf("x-only periodic box: %d shifts, want 2", n)
	}
}

func TestBadLengths(Te *testing.T) {
	if _, err := New3D(10, 0, 10); err == nil {
		Te.Error("zero edge length accepted")
	}
	if _, err := NewCube(math.NaN()); err == nil {
		Te.Error("NaN edge length accepted")
	}
	if _, err := New2D(-1, 5); err == nil {
		Te.Error("negative edge length accepted")
	}
}

func TestFractionalRoundTrip(Te *testing.T) {
	b, err := NewTriclinic(10, 8, 6, 0.3, -0.2, 0.1)
	if err != nil {
		Te.Fatal(err)
	}
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 100; i++ {
		p := Vec{r.Float64()*20 - 10, r.Float64()*20 - 10, r.Float64()*20 - 10}
		q := b.MakeAbsolute(b.MakeFractional(p))
		if q.Sub(p).Norm() > 1e-9 {
			Te.Fatalf("fractional round trip moved %v to %v", p, q)
		}
	}
}
