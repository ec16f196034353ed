// Copyright 2016 The Goflame Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package onedim

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"gopkg.in/yaml.v3"
)

// Snapshot is an opaque structured copy of a simulation: the full state
// vector, the grids of every multi-point domain and free-form metadata.
// It is the unit of save/restore and of diagnostic rollback.
type Snapshot struct {
	ID    string            `yaml:"id"`
	Desc  string            `yaml:"desc"`
	State []float64         `yaml:"state"`
	Grids [][]float64       `yaml:"grids"`
	Meta  map[string]string `yaml:"meta,omitempty"`
}

// TakeSnapshot copies the current solution and grids
func (o *Sim) TakeSnapshot(id, desc string) (s *Snapshot) {
	s = new(Snapshot)
	s.ID = id
	s.Desc = desc
	s.State = append([]float64{}, o.X...)
	for _, d := range o.Sys.Doms {
		if d.NPoints() > 1 {
			z := make([]float64, d.Grid().N())
			copy(z, d.Grid().Z)
			s.Grids = append(s.Grids, z)
		}
	}
	return
}

// ApplySnapshot restores solution and grids from a snapshot, resizing all
// bookkeeping to match
func (o *Sim) ApplySnapshot(s *Snapshot) (err error) {
	i := 0
	for _, d := range o.Sys.Doms {
		if d.NPoints() > 1 {
			if i >= len(s.Grids) {
				return chk.Err("snapshot %q carries %d grids but the simulation has more multi-point domains", s.ID, len(s.Grids))
			}
			d.SetupGrid(s.Grids[i])
			d.Resize(len(s.Grids[i]))
			i++
		}
	}
	o.Sys.Rebuild()
	if len(s.State) != o.Sys.Size()+1 {
		return chk.Err("snapshot %q state length %d does not match system size %d", s.ID, len(s.State), o.Sys.Size()+1)
	}
	o.X = append([]float64{}, s.State...)
	o.Xnew = make([]float64, len(o.X))
	o.UpdateBounds()
	o.Chi = o.X[len(o.X)-1]
	return
}

// Save writes a snapshot of the current solution to fname
func (o *Sim) Save(fname, id, desc string) (err error) {
	b, err := yaml.Marshal(o.TakeSnapshot(id, desc))
	if err != nil {
		return chk.Err("cannot encode snapshot:\n%v", err)
	}
	return os.WriteFile(fname, b, 0644)
}

// Restore initializes the simulation from a previously saved snapshot
func (o *Sim) Restore(fname string) (err error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return chk.Err("cannot read snapshot file:\n%v", err)
	}
	var s Snapshot
	if err = yaml.Unmarshal(b, &s); err != nil {
		return chk.Err("cannot decode snapshot:\n%v", err)
	}
	return o.ApplySnapshot(&s)
}
