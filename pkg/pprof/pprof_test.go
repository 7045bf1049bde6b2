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

package pprof

import (
	"bytes"
	"testing"

	"github.com/google/pprof/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/statchart/pkg/chart"
	"github.com/google/statchart/pkg/stats"
)

func sampleChart(t *testing.T) *chart.Chart {
	t.Helper()

	root := &stats.Node{
		Title: "run", TimeStart: 0, TimeEnd: 100, MemPeak: 1000,
		Sub: []*stats.Node{
			{Title: "load", TimeStart: 0, TimeEnd: 20.4, MemPeak: 100},
			{
				Title: "compress", TimeStart: 20.4, TimeEnd: 100, MemOff: 100, MemPeak: 900,
				Sub: []*stats.Node{
					{
						Title: "encode", TimeStart: 20.4, TimeEnd: 100, MemPeak: 900,
						Stats: []stats.Stat{{Key: "coder", Value: "lz78"}, {Key: "coder", Value: "ascii"}},
					},
				},
			},
		},
	}

	c, err := chart.Flatten(root)
	require.NoError(t, err)
	return c
}

func stackNames(s *profile.Sample) []string {
	names := []string{}
	for _, l := range s.Location {
		names = append(names, l.Line[0].Function.Name)
	}
	return names
}

func TestRender(t *testing.T) {
	p, err := Render(sampleChart(t))
	require.NoError(t, err)

	require.Len(t, p.Sample, 2)
	assert.Len(t, p.Function, 3)
	assert.Len(t, p.Location, 3)
	assert.Equal(t, int64(100*1e6), p.DurationNanos)

	load, encode := p.Sample[0], p.Sample[1]
	assert.Equal(t, []string{"load"}, stackNames(load))
	assert.Equal(t, []int64{20, 100}, load.Value)
	assert.Nil(t, load.Label)

	assert.Equal(t, []string{"encode", "compress"}, stackNames(encode))
	assert.Equal(t, []int64{80, 900}, encode.Value)
	assert.Equal(t, []string{"lz78", "ascii"}, encode.Label["coder"])
}

func TestRenderEmpty(t *testing.T) {
	c, err := chart.Flatten(&stats.Node{Title: "idle"})
	require.NoError(t, err)

	p, err := Render(c)
	require.NoError(t, err)
	assert.Empty(t, p.Sample)
}

func TestWriteParses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleChart(t)))

	p, err := profile.Parse(&buf)
	require.NoError(t, err)

	require.Len(t, p.SampleType, 2)
	assert.Equal(t, "duration", p.SampleType[0].Type)
	assert.Equal(t, "bytes", p.SampleType[1].Unit)
	require.Len(t, p.Sample, 2)
	assert.Equal(t, []string{"encode", "compress"}, stackNames(p.Sample[1]))
}
