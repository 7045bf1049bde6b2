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

// Package pprof is for rendering a chart into a pprof protobuf.
package pprof

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/pprof/profile"
	"k8s.io/klog/v2"

	"github.com/google/statchart/pkg/chart"
)

// locations hands out one function and location per phase title.
type locations struct {
	byName map[string]*profile.Location
	p      *profile.Profile
}

func (l *locations) ix(name string) *profile.Location {
	if loc, ok := l.byName[name]; ok {
		return loc
	}

	id := uint64(len(l.byName) + 1)
	f := &profile.Function{ID: id, Name: name, SystemName: name}
	loc := &profile.Location{ID: id, Line: []profile.Line{{Function: f}}}

	l.byName[name] = loc
	l.p.Function = append(l.p.Function, f)
	l.p.Location = append(l.p.Location, loc)

	return loc
}

// Render converts the bars of a chart into a profile with one sample per
// bar. The stack of each sample is the bar followed by its enclosing groups.
func Render(c *chart.Chart) (*profile.Profile, error) {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "duration", Unit: "milliseconds"},
			{Type: "memory", Unit: "bytes"},
		},
		DefaultSampleType: "duration",
		TimeNanos:         time.Now().UnixNano(),
		DurationNanos:     int64(c.Scale.Duration * float64(time.Millisecond)),
	}

	l := &locations{byName: map[string]*profile.Location{}, p: p}

	for _, b := range c.Bars {
		stack := []*profile.Location{l.ix(b.Title)}
		for i := len(b.Path) - 1; i >= 0; i-- {
			stack = append(stack, l.ix(b.Path[i]))
		}

		var labels map[string][]string
		if len(b.Stats) > 0 {
			labels = map[string][]string{}
			for _, kv := range b.Stats {
				labels[kv.Key] = append(labels[kv.Key], kv.Value.String())
			}
		}

		p.Sample = append(p.Sample, &profile.Sample{
			Location: stack,
			Value:    []int64{int64(math.Round(b.TDuration)), b.MemAdded()},
			Label:    labels,
		})
	}

	if err := p.CheckValid(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	klog.V(1).Infof("rendered %d samples over %d functions\n", len(p.Sample), len(p.Function))

	return p, nil
}

// Write renders the chart and writes it as a gzipped pprof protobuf.
func Write(w io.Writer, c *chart.Chart) error {
	p, err := Render(c)
	if err != nil {
		return err
	}

	if err := p.Write(w); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}
