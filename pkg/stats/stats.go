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

// Package stats turns stats documents into phase trees for charting
package stats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"k8s.io/klog/v2"
)

// Node is a single measured phase. Times are in milliseconds, memory in bytes.
type Node struct {
	Title     string  `json:"title"`
	TimeStart float64 `json:"timeStart"`
	TimeEnd   float64 `json:"timeEnd"`
	// MemOff is relative to the parent's offset at the time this phase begins.
	MemOff int64 `json:"memOff"`
	// MemPeak is relative to MemOff.
	MemPeak int64   `json:"memPeak"`
	Stats   []Stat  `json:"stats"`
	Sub     []*Node `json:"sub"`
}

// Stat is an extra metric attached to a phase. Keys are not unique.
type Stat struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// Value is a stat value as it appeared in the document: strings are
// unquoted, everything else keeps its literal JSON text.
type Value string

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	*v = Value(b)
	return nil
}

// String returns the value text.
func (v Value) String() string {
	return string(v)
}

// Duration returns the length of the phase.
func (n *Node) Duration() float64 {
	return n.TimeEnd - n.TimeStart
}

// Leaf reports whether the phase has no sub-phases.
func (n *Node) Leaf() bool {
	return len(n.Sub) == 0
}

// Count returns the number of phases in the tree, including n itself.
// Validate the tree first: Count does not guard against cycles.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	c := 0
	stack := []*Node{n}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if x == nil {
			continue
		}
		c++
		stack = append(stack, x.Sub...)
	}
	return c
}

// Read parses a stats document.
func Read(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)

	root := &Node{}
	if err := dec.Decode(root); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: unexpected data after stats document")
	}

	klog.V(1).Infof("read stats for %q: %d phases over %.3fms\n", root.Title, root.Count(), root.Duration())

	return root, nil
}

// ReadFile parses the stats document at path.
func ReadFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	defer func() {
		if err := f.Close(); err != nil {
			klog.Errorf("close failed: %v", err)
		}
	}()

	return Read(f)
}
