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

package text

import (
	"bytes"
	"testing"

	"github.com/google/statchart/pkg/chart"
	"github.com/google/statchart/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	root := &stats.Node{
		Title: "run", TimeStart: 0, TimeEnd: 2000, MemPeak: 3 << 20,
		Sub: []*stats.Node{
			{Title: "load", TimeStart: 0, TimeEnd: 500, MemPeak: 1 << 20},
			{
				Title: "compress", TimeStart: 500, TimeEnd: 2000, MemOff: 1 << 20, MemPeak: 2 << 20,
				Sub: []*stats.Node{
					{Title: "encode", TimeStart: 500, TimeEnd: 2000, MemPeak: 2 << 20},
				},
			},
		},
	}
	c, err := chart.Flatten(root)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, c, Options{}))

	out := buf.String()
	assert.Contains(t, out, "run: 2 bars, 1 groups over 2.000 s, peak 3.00 MiB")
	assert.Contains(t, out, "compress / encode")
	assert.Contains(t, out, "0.500 s")
	assert.Contains(t, out, "1.500 s")
	assert.Contains(t, out, "75.00 %")
	assert.Contains(t, out, "25.00 %")
	assert.Contains(t, out, "2.00 MiB")
	assert.Contains(t, out, "3.00 MiB")
	// Without color there are no escape sequences.
	assert.NotContains(t, out, "\x1b[")
}

func TestTableEmpty(t *testing.T) {
	c, err := chart.Flatten(&stats.Node{Title: "idle"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, c, Options{Color: true}))
	assert.Equal(t, "idle: 0 bars, 0 groups over 0.000 s, peak 0.00 bytes\n", buf.String())
}
