/*
 * options.go, part of nble.
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
	"os"
	"runtime"

	"github.com/pelletier/go-toml"
)

// Options tunes the parallel query executor. The zero values mean "decide
// for me": one worker per CPU and an automatic chunk size.
type Options struct {
	Workers   int `toml:"workers"`
	ChunkSize int `toml:"chunk_size"`
}

// DefaultOptions returns the default executor settings.
func DefaultOptions() *Options {
	return &Options{Workers: runtime.NumCPU()}
}

// ReadOptions reads executor settings from a TOML file. Missing keys keep
// their defaults, so a config file only has to name what it changes.
func ReadOptions(path string) (*Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	o := DefaultOptions()
	dec := toml.NewDecoder(f)
	if err := dec.Decode(o); err != nil {
		return nil, confErrorf("nble: bad options file %s: %v", path, err)
	}
	if o.Workers < 0 || o.ChunkSize < 0 {
		return nil, confErrorf("nble: options must not be negative: workers %d, chunk_size %d", o.Workers, o.ChunkSize)
	}
	return o, nil
}
