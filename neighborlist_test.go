/*
 * neighborlist_test.go, part of nble.
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
	"bytes"
	"fmt"
	"testing"

	"github.com/jmbarrios/nble/box"
)

func mustList(Te *testing.T, bonds []Bond, nQuery int) *NeighborList {
	Te.Helper()
	nl, err := FromBonds(bonds, nQuery)
	if err != nil {
		Te.Fatal(err)
	}
	return nl
}

//TestFromBondsSorting feeds bonds in scrambled order and checks the
//canonical (query, distance, reference) ordering of the result.
func TestFromBondsSorting(Te *testing.T) {
	nl := mustList(Te, []Bond{
		{Query: 2, Ref: 0, Dist: 1.0, Weight: 1},
		{Query: 0, Ref: 5, Dist: 2.0, Weight: 1},
		{Query: 0, Ref: 1, Dist: 0.5, Weight: 1},
		{Query: 0, Ref: 3, Dist: 0.5, Weight: 1}, //distance tie, must order by ref
		{Query: 1, Ref: 2, Dist: 1.5, Weight: 1},
	}, 3)
	want := []struct {
		q, r int
	}{{0, 1}, {0, 3}, {0, 5}, {1, 2}, {2, 0}}
	for i, bd := range nl.Bonds() {
		if bd.Query != want[i].q || bd.Ref != want[i].r {
			Te.Errorf("bond %d is %v, want %d->%d", i, &bd, want[i].q, want[i].r)
		}
	}
	if c := nl.Counts(); c[0] != 3 || c[1] != 1 || c[2] != 1 {
		Te.Errorf("counts %v", c)
	}
	seg, err := nl.Segment(0)
	if err != nil {
		Te.Fatal(err)
	}
	if len(seg) != 3 || seg[0].Ref != 1 {
		Te.Errorf("segment 0: %v", seg)
	}
}

func TestFromBondsValidation(Te *testing.T) {
	if _, err := FromBonds([]Bond{{Query: 3, Ref: 0}}, 3); err == nil {
		Te.Error("out-of-range query index accepted")
	}
	if _, err := FromBonds([]Bond{{Query: 0, Ref: -1}}, 3); err == nil {
		Te.Error("negative reference index accepted")
	}
	if _, err := FromBonds(nil, -1); err == nil {
		Te.Error("negative query point count accepted")
	}
	//empty lists over a positive query point count are fine
	nl := mustList(Te, nil, 4)
	if nl.Len() != 0 || nl.NumQueryPoints() != 4 || nl.Count(2) != 0 {
		Te.Error("empty list misbehaves")
	}
}

func TestFilter(Te *testing.T) {
	nl := mustList(Te, []Bond{
		{Query: 0, Ref: 1, Dist: 0.5, Weight: 1},
		{Query: 0, Ref: 2, Dist: 1.5, Weight: 2},
		{Query: 1, Ref: 0, Dist: 2.5, Weight: 3},
	}, 2)
	f := nl.FilterR(1, 2)
	if f.Len() != 1 || f.Bonds()[0].Ref != 2 {
		Te.Errorf("range filter kept %v", f.Bonds())
	}
	if f.NumQueryPoints() != 2 {
		Te.Error("filtering changed the query point count")
	}
	//filtering everything away keeps the offsets usable
	empty := nl.Filter(func(*Bond) bool { return false })
	if empty.Len() != 0 || empty.Count(1) != 0 {
		Te.Error("empty filter result misbehaves")
	}
	ws := nl.WeightSums()
	if ws[0] != 3 || ws[1] != 3 {
		Te.Errorf("weight sums %v", ws)
	}
}

//TestUnion checks the set semantics: a bond's identity is its (query, ref,
//distance) triple, so the same pair bonded at two distances keeps both
//bonds, exact duplicates across the inputs collapse to one, and union with
//oneself changes nothing.
func TestUnion(Te *testing.T) {
	a := mustList(Te, []Bond{
		{Query: 0, Ref: 1, Dist: 1.0, Weight: 1},
		{Query: 1, Ref: 0, Dist: 1.0, Weight: 1},
	}, 2)
	b := mustList(Te, []Bond{
		{Query: 0, Ref: 1, Dist: 0.8, Weight: 5}, //same pair, different image
		{Query: 1, Ref: 0, Dist: 1.0, Weight: 9}, //same bond, only weight differs
		{Query: 1, Ref: 1, Dist: 2.0, Weight: 1},
	}, 2)
	u, err := a.Union(b)
	if err != nil {
		Te.Fatal(err)
	}
	if u.Len() != 4 {
		Te.Fatalf("union has %d bonds, want 4", u.Len())
	}
	seg, _ := u.Segment(0)
	if len(seg) != 2 || seg[0].Dist != 0.8 || seg[1].Dist != 1.0 {
		Te.Errorf("image bonds of one pair were merged: %v", seg)
	}
	seg, _ = u.Segment(1)
	if len(seg) != 2 {
		Te.Fatalf("segment 1: %v", seg)
	}
	if seg[0].Ref != 0 || seg[0].Weight != 1 {
		Te.Errorf("exact duplicate should keep the receiver's weight, got %v", seg)
	}
	self, err := a.Union(a)
	if err != nil {
		Te.Fatal(err)
	}
	if !self.Equal(a) {
		Te.Error("union with itself is not idempotent")
	}
	if _, err := a.Union(mustList(Te, nil, 3)); err == nil {
		Te.Error("union across different query point counts accepted")
	}
}

//TestUnionImageBonds unions a tessellation-shaped list with itself: one
//particle bonded to itself many times over, through different periodic
//images, sometimes at equal distances. No bond may be lost.
func TestUnionImageBonds(Te *testing.T) {
	var bonds []Bond
	for i := 0; i < 6; i++ {
		bonds = append(bonds, Bond{Query: 0, Ref: 0, Dist: 2, Weight: 4})
	}
	for i := 0; i < 12; i++ {
		bonds = append(bonds, Bond{Query: 0, Ref: 0, Dist: 2.828, Weight: 0.01})
	}
	nl := mustList(Te, bonds, 1)
	u, err := nl.Union(nl)
	if err != nil {
		Te.Fatal(err)
	}
	if !u.Equal(nl) {
		Te.Fatalf("self union went from %d to %d bonds", nl.Len(), u.Len())
	}
	in, err := nl.Intersect(nl)
	if err != nil {
		Te.Fatal(err)
	}
	if !in.Equal(nl) {
		Te.Fatalf("self intersection went from %d to %d bonds", nl.Len(), in.Len())
	}
}

func TestIntersect(Te *testing.T) {
	a := mustList(Te, []Bond{
		{Query: 0, Ref: 1, Dist: 1.0, Weight: 1},
		{Query: 0, Ref: 2, Dist: 2.0, Weight: 1},
		{Query: 1, Ref: 0, Dist: 1.0, Weight: 1},
	}, 2)
	b := mustList(Te, []Bond{
		{Query: 0, Ref: 2, Dist: 2.0, Weight: 4},
		{Query: 0, Ref: 1, Dist: 1.7, Weight: 1}, //same pair, other distance: not common
		{Query: 1, Ref: 1, Dist: 1.0, Weight: 1},
	}, 2)
	in, err := a.Intersect(b)
	if err != nil {
		Te.Fatal(err)
	}
	if in.Len() != 1 {
		Te.Fatalf("intersection has %d bonds, want 1", in.Len())
	}
	bd := in.Bonds()[0]
	if bd.Query != 0 || bd.Ref != 2 || bd.Dist != 2.0 || bd.Weight != 1 {
		Te.Errorf("intersection kept %v", &bd)
	}
}

func TestExportRoundTrip(Te *testing.T) {
	nl := mustList(Te, []Bond{
		{Query: 0, Ref: 1, Dist: 0.5, Weight: 2},
		{Query: 1, Ref: 0, Dist: 0.5, Weight: 3},
		{Query: 2, Ref: 2, Dist: 4.0, Weight: 1},
	}, 3)
	q, r, d := nl.Export()
	back, err := FromArrays(3, q, r, d, nl.Weights())
	if err != nil {
		Te.Fatal(err)
	}
	if !back.Equal(nl) {
		Te.Error("export round trip lost bonds")
	}
	//without weights everything comes back at weight 1
	back, err = FromArrays(3, q, r, d)
	if err != nil {
		Te.Fatal(err)
	}
	for _, bd := range back.Bonds() {
		if bd.Weight != 1 {
			Te.Errorf("default weight is %g, want 1", bd.Weight)
		}
	}
	if _, err := FromArrays(3, q, r[:1], d); err == nil {
		Te.Error("mismatched array lengths accepted")
	}
}

//TestSaveLoad round trips a list through the compressed binary stream.
func TestSaveLoad(Te *testing.T) {
	nl := mustList(Te, []Bond{
		{Query: 0, Ref: 1, Vec: box.Vec{0.3, 0.4, 0}, Dist: 0.5, Weight: 2},
		{Query: 1, Ref: 0, Vec: box.Vec{-0.3, -0.4, 0}, Dist: 0.5, Weight: 2},
		{Query: 3, Ref: 2, Vec: box.Vec{1, 2, 2}, Dist: 3, Weight: 0.25},
	}, 4)
	var buf bytes.Buffer
	if err := nl.Save(&buf); err != nil {
		Te.Fatal(err)
	}
	fmt.Println("Neighbor list stream size:", buf.Len(), "bytes")
	back, err := Load(&buf)
	if err != nil {
		Te.Fatal(err)
	}
	if !back.Equal(nl) {
		Te.Error("save/load round trip lost bonds")
	}
	//the stream keeps the separation vectors too
	for i := range back.Bonds() {
		if back.Bonds()[i].Vec != nl.Bonds()[i].Vec {
			Te.Errorf("bond %d lost its separation vector", i)
		}
	}
	if _, err := Load(bytes.NewReader([]byte("not a list"))); err == nil {
		Te.Error("garbage stream accepted")
	}
}
