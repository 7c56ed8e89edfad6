package nlplot

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmbarrios/nble"
)

func demoList(Te *testing.T) *nble.NeighborList {
	Te.Helper()
	dists := []float64{0.4, 1.1, 1.2, 2.6, 3.0}
	bonds := make([]nble.Bond, len(dists))
	for i, d := range dists {
		bonds[i] = nble.Bond{Query: 0, Ref: i + 1, Dist: d, Weight: 1}
	}
	nl, err := nble.FromBonds(bonds, 1)
	if err != nil {
		Te.Fatal(err)
	}
	return nl
}

func TestDistanceHistogram(Te *testing.T) {
	nl := demoList(Te)
	dividers, counts, err := DistanceHistogram(nl, 3, 3)
	if err != nil {
		Te.Fatal(err)
	}
	if len(dividers) != 4 || len(counts) != 3 {
		Te.Fatalf("got %d dividers and %d counts", len(dividers), len(counts))
	}
	//bins [0,1) [1,2) [2,3], the exact-3.0 sample lands in the last one
	want := []float64{1, 2, 2}
	for i := range want {
		if counts[i] != want[i] {
			Te.Errorf("bin %d has %g samples, want %g", i, counts[i], want[i])
		}
	}
	//a smaller range drops the tail instead of failing
	_, counts, err = DistanceHistogram(nl, 2, 2)
	if err != nil {
		Te.Fatal(err)
	}
	if counts[0]+counts[1] != 3 {
		Te.Errorf("truncated histogram holds %g samples, want 3", counts[0]+counts[1])
	}
	if _, _, err := DistanceHistogram(nl, 0, 3); err == nil {
		Te.Error("zero bins accepted")
	}
	if _, _, err := DistanceHistogram(nl, 3, 0); err == nil {
		Te.Error("zero range accepted")
	}
}

func TestSaveDistancePlot(Te *testing.T) {
	nl := demoList(Te)
	name := filepath.Join(Te.TempDir(), "dists.png")
	if err := SaveDistancePlot(nl, 3, 3, "bond distances", name); err != nil {
		Te.Fatal(err)
	}
	fi, err := os.Stat(name)
	if err != nil {
		Te.Fatal(err)
	}
	if fi.Size() == 0 {
		Te.Error("wrote an empty plot file")
	}
	fmt.Println("Histogram plot written,", fi.Size(), "bytes")
	empty, err := nble.FromBonds(nil, 1)
	if err != nil {
		Te.Fatal(err)
	}
	if err := SaveDistancePlot(empty, 3, 3, "", name); err == nil {
		Te.Error("empty list plotted without complaint")
	}
}
