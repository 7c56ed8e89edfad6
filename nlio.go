package nble

//nlio.go implements a durable form of the parallel-array interchange
//format: a NeighborList can be saved to, and loaded back from, a
//zstd-compressed binary stream. Distances compress poorly but indexes and
//weights do well, and neighbor lists for large snapshots run into many
//millions of bonds, so the compression pays for itself quickly.

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jmbarrios/nble/box"
	"github.com/klauspost/compress/zstd"
)

var nlMagic = [4]byte{'N', 'B', 'L', '1'}

type wireHeader struct {
	Magic  [4]byte
	NQuery int64
	NBonds int64
}

type wireBond struct {
	Query, Ref   int64
	Vec          [3]float64
	Dist, Weight float64
}

// Save writes the list to w as a zstd-compressed binary stream, full
// fidelity (separation vectors and weights included).
func (nl *NeighborList) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	h := wireHeader{Magic: nlMagic, NQuery: int64(nl.nQuery), NBonds: int64(len(nl.bonds))}
	if err := binary.Write(zw, binary.LittleEndian, h); err != nil {
		zw.Close()
		return err
	}
	for i := range nl.bonds {
		b := &nl.bonds[i]
		wb := wireBond{
			Query: int64(b.Query), Ref: int64(b.Ref),
			Vec:  [3]float64(b.Vec),
			Dist: b.Dist, Weight: b.Weight,
		}
		if err := binary.Write(zw, binary.LittleEndian, wb); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

// Load reads a list previously written by Save.
func Load(r io.Reader) (*NeighborList, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	var h wireHeader
	if err := binary.Read(zr, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if h.Magic != nlMagic {
		return nil, confErrorf("nble: not a neighbor list stream (bad magic %q)", h.Magic[:])
	}
	if h.NQuery < 0 || h.NBonds < 0 {
		return nil, confErrorf("nble: corrupt neighbor list header: %d query points, %d bonds", h.NQuery, h.NBonds)
	}
	bonds := make([]Bond, h.NBonds)
	for i := range bonds {
		var wb wireBond
		if err := binary.Read(zr, binary.LittleEndian, &wb); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("nble: truncated neighbor list stream at bond %d: %w", i, err)
			}
			return nil, err
		}
		bonds[i] = Bond{
			Query: int(wb.Query), Ref: int(wb.Ref),
			Vec:  box.Vec(wb.Vec),
			Dist: wb.Dist, Weight: wb.Weight,
		}
	}
	nl, err := FromBonds(bonds, int(h.NQuery))
	if err != nil {
		return nil, errDecorate(err, "Load")
	}
	return nl, nil
}
