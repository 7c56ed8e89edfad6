//Package nlplot provides quick looks at a NeighborList: bond-distance
//histograms for radial-distribution style analysis, and a plotting helper
//to dump them to a file. It is a convenience for eyeballing results, not a
//statistics layer; serious reductions live downstream of the engine.
package nlplot

import (
	"sort"

	"github.com/jmbarrios/nble"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Error is the error type for the nlplot package. It implements nble.Error.
type Error struct {
	message string
	deco    []string
}

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

// DistanceHistogram bins the bond distances of nl into nbins equal bins
// over [0, rmax]. It returns the nbins+1 bin dividers and the counts per
// bin. Distances beyond rmax are dropped; distances exactly at rmax land
// in the last bin.
func DistanceHistogram(nl *nble.NeighborList, nbins int, rmax float64) ([]float64, []float64, error) {
	if nbins < 1 {
		return nil, nil, Error{"nble/nlplot: need at least one bin", []string{"DistanceHistogram"}}
	}
	if rmax <= 0 {
		return nil, nil, Error{"nble/nlplot: need a positive rmax", []string{"DistanceHistogram"}}
	}
	dividers := floats.Span(make([]float64, nbins+1), 0, rmax)
	dists := nl.Distances()
	sort.Float64s(dists)
	//stat.Histogram panics on samples outside [dividers[0], dividers[end]),
	//so trim, and count the exact-rmax samples separately.
	lo := sort.SearchFloat64s(dists, rmax)
	atMax := 0
	for i := lo; i < len(dists) && dists[i] == rmax; i++ {
		atMax++
	}
	counts := stat.Histogram(nil, dividers, dists[:lo], nil)
	counts[nbins-1] += float64(atMax)
	return dividers, counts, nil
}

// SaveDistancePlot renders the bond-distance histogram of nl to the file
// name, with the image format taken from the extension (png, svg, pdf...).
func SaveDistancePlot(nl *nble.NeighborList, nbins int, rmax float64, title, name string) error {
	if nl.Len() == 0 {
		return Error{"nble/nlplot: empty neighbor list, nothing to plot", []string{"SaveDistancePlot"}}
	}
	if _, _, err := DistanceHistogram(nl, nbins, rmax); err != nil {
		return err //same validation, fail before touching the filesystem
	}
	vals := make(plotter.Values, 0, nl.Len())
	for _, d := range nl.Distances() {
		if d <= rmax {
			vals = append(vals, d)
		}
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "r"
	p.Y.Label.Text = "bonds"
	h, err := plotter.NewHist(vals, nbins)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(6*vg.Inch, 4*vg.Inch, name)
}
