/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package chart flattens stats trees into bars and groups for rendering
package chart

import (
	"fmt"

	"github.com/google/statchart/pkg/stats"
	"k8s.io/klog/v2"
)

// Entry is a flattened phase. Times are relative to the root start, memory
// values are absolute.
type Entry struct {
	Title     string       `json:"title"`
	TStart    float64      `json:"tStart"`
	TEnd      float64      `json:"tEnd"`
	TDuration float64      `json:"tDuration"`
	MemOff    int64        `json:"memOff"`
	MemPeak   int64        `json:"memPeak"`
	Stats     []stats.Stat `json:"stats"`
	// Path holds the titles of the enclosing groups, outermost first.
	Path []string `json:"path"`
	// Level is the nesting depth below the root; the root's children are 0.
	Level int `json:"level"`
	// Color is only set on bars.
	Color string `json:"color,omitempty"`
}

// MemAdded is the memory the phase used on top of its offset.
func (e *Entry) MemAdded() int64 {
	return e.MemPeak - e.MemOff
}

// Chart is the flattened form of a stats tree. It is not modified after
// Flatten returns.
type Chart struct {
	Title string `json:"title"`
	// Bars are the leaf phases, in pre-order.
	Bars []*Entry `json:"bars"`
	// Groups are the phases with sub-phases, in pre-order. The root is never
	// included.
	Groups []*Entry `json:"groups"`
	Scale  Scale    `json:"scale"`
}

type frame struct {
	n      *stats.Node
	memOff int64
	level  int
	path   []string
}

// Flatten validates root and walks it once in pre-order, producing bars for
// leaf phases and groups for every other phase except the root.
func Flatten(root *stats.Node, opts ...Option) (*Chart, error) {
	cfg := config{palette: DefaultPalette}
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, err
		}
	}

	if err := stats.Validate(root); err != nil {
		return nil, fmt.Errorf("flatten: %w", err)
	}

	c := &Chart{
		Title:  root.Title,
		Bars:   []*Entry{},
		Groups: []*Entry{},
		Scale:  NewScale(root.Duration(), root.MemPeak),
	}

	// The root's offset seeds the accumulator and is added again below.
	stack := []frame{{n: root, memOff: root.MemOff, level: -1, path: []string{}}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x := f.n

		memOff := f.memOff + x.MemOff
		e := &Entry{
			Title:     x.Title,
			TStart:    x.TimeStart - root.TimeStart,
			TEnd:      x.TimeEnd - root.TimeStart,
			TDuration: x.TimeEnd - x.TimeStart,
			MemOff:    memOff,
			MemPeak:   memOff + x.MemPeak,
			Stats:     x.Stats,
			Path:      f.path,
			Level:     f.level,
		}

		path := f.path
		switch {
		case f.level < 0:
			// root: seeds the walk only
		case !x.Leaf():
			c.Groups = append(c.Groups, e)
			path = append(append(make([]string, 0, len(f.path)+1), f.path...), x.Title)
		default:
			e.Color = cfg.palette[len(c.Bars)%len(cfg.palette)]
			c.Bars = append(c.Bars, e)
		}

		for i := len(x.Sub) - 1; i >= 0; i-- {
			stack = append(stack, frame{n: x.Sub[i], memOff: memOff, level: f.level + 1, path: path})
		}
	}

	klog.V(1).Infof("flattened %q into %d bars and %d groups\n", c.Title, len(c.Bars), len(c.Groups))

	return c, nil
}

// HitTest returns the first bar, in stored order, whose interval contains t.
// t is relative to the root start.
func (c *Chart) HitTest(t float64) (*Entry, bool) {
	for _, d := range c.Bars {
		if t >= d.TStart && t <= d.TEnd {
			return d, true
		}
	}
	return nil, false
}

// MaxLevel returns the deepest group level, or -1 if there are no groups.
func (c *Chart) MaxLevel() int {
	m := -1
	for _, g := range c.Groups {
		if g.Level > m {
			m = g.Level
		}
	}
	return m
}

// Fraction returns the share of the whole run that e covers.
func (c *Chart) Fraction(e *Entry) float64 {
	if c.Scale.Duration <= 0 {
		return 0
	}
	return e.TDuration / c.Scale.Duration
}
