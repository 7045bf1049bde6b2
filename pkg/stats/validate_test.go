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

package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Node {
	return &Node{
		Title: "root", TimeStart: 100, TimeEnd: 200, MemPeak: 1000,
		Sub: []*Node{
			{Title: "A", TimeStart: 100, TimeEnd: 150, MemPeak: 500},
			{Title: "B", TimeStart: 150, TimeEnd: 200, MemOff: 500, MemPeak: 300},
		},
	}
}

func TestValidateOK(t *testing.T) {
	require.NoError(t, Validate(sample()))
	require.NoError(t, Validate(&Node{Title: "alone"}))

	// Zero-length phases are instantaneous events, not errors.
	root := sample()
	root.Sub[0].TimeEnd = root.Sub[0].TimeStart
	require.NoError(t, Validate(root))
}

func TestValidateSharedPhase(t *testing.T) {
	shared := &Node{Title: "shared", TimeStart: 110, TimeEnd: 120}
	root := sample()
	root.Sub[0].Sub = []*Node{shared}
	root.Sub[1].Sub = []*Node{shared}
	require.NoError(t, Validate(root))
}

func TestValidateMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Node)
		path   []string
		reason string
	}{
		{
			name:   "negative duration",
			mutate: func(r *Node) { r.Sub[1].TimeEnd = 140 },
			path:   []string{"root", "B"},
			reason: "negative duration",
		},
		{
			name:   "starts before root",
			mutate: func(r *Node) { r.Sub[0].TimeStart = 90 },
			path:   []string{"root", "A"},
			reason: "before the root",
		},
		{
			name:   "negative memory offset",
			mutate: func(r *Node) { r.Sub[1].MemOff = -1 },
			path:   []string{"root", "B"},
			reason: "negative memory offset",
		},
		{
			name:   "negative memory peak",
			mutate: func(r *Node) { r.MemPeak = -5 },
			path:   []string{"root"},
			reason: "negative memory peak",
		},
		{
			name:   "nan time",
			mutate: func(r *Node) { r.Sub[0].TimeEnd = math.NaN() },
			path:   []string{"root", "A"},
			reason: "non-finite",
		},
		{
			name:   "nil sub-phase",
			mutate: func(r *Node) { r.Sub = append(r.Sub, nil) },
			path:   []string{"root", "#2"},
			reason: "nil sub-phase",
		},
		{
			name:   "cycle",
			mutate: func(r *Node) { r.Sub[1].Sub = []*Node{r} },
			path:   []string{"root", "B", "root"},
			reason: "cycle",
		},
		{
			name:   "self cycle",
			mutate: func(r *Node) { r.Sub[0].Sub = []*Node{r.Sub[0]} },
			path:   []string{"root", "A", "A"},
			reason: "cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := sample()
			tt.mutate(root)

			err := Validate(root)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))

			var me *MalformedError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.path, me.Path)
			assert.Contains(t, me.Reason, tt.reason)
		})
	}
}

func TestValidateNilRoot(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), ErrMalformed)
}
