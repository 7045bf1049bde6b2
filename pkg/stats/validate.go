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
	"fmt"
	"math"
	"strings"
)

// ErrMalformed is matched by every error returned from Validate.
var ErrMalformed = errors.New("malformed stats tree")

// MalformedError describes the first structural problem found in a tree.
type MalformedError struct {
	// Path holds the titles from the root down to the offending phase.
	Path   []string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrMalformed, strings.Join(e.Path, " / "), e.Reason)
}

// Is makes errors.Is(err, ErrMalformed) succeed.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// crumb links a visited phase to its parent so paths are only built on error.
type crumb struct {
	title string
	up    *crumb
}

func (c *crumb) path() []string {
	n := 0
	for x := c; x != nil; x = x.up {
		n++
	}
	p := make([]string, n)
	for x := c; x != nil; x = x.up {
		n--
		p[n] = x.title
	}
	return p
}

type visit struct {
	n    *Node
	at   *crumb
	exit bool
}

// Validate checks that the tree can be charted: non-negative durations, no
// phase starting before the root, non-negative memory values, and no cycles.
func Validate(root *Node) error {
	if root == nil {
		return &MalformedError{Reason: "nil root"}
	}

	// 1 = on the current path, 2 = done. A phase reachable twice without a
	// cycle is tolerated and charted twice.
	state := map[*Node]int{}
	stack := []visit{{n: root, at: &crumb{title: root.Title}}}

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if v.exit {
			state[v.n] = 2
			continue
		}

		switch state[v.n] {
		case 1:
			return &MalformedError{Path: v.at.path(), Reason: "cycle in sub-phases"}
		case 2:
			continue
		}

		if err := check(root, v.n, v.at); err != nil {
			return err
		}

		state[v.n] = 1
		stack = append(stack, visit{n: v.n, exit: true})

		for i := len(v.n.Sub) - 1; i >= 0; i-- {
			c := v.n.Sub[i]
			at := &crumb{title: title(c, i), up: v.at}
			if c == nil {
				return &MalformedError{Path: at.path(), Reason: "nil sub-phase"}
			}
			stack = append(stack, visit{n: c, at: at})
		}
	}

	return nil
}

func check(root, n *Node, at *crumb) error {
	path := at.path
	switch {
	case !finite(n.TimeStart) || !finite(n.TimeEnd):
		return &MalformedError{Path: path(), Reason: "non-finite time"}
	case n.TimeEnd < n.TimeStart:
		return &MalformedError{Path: path(), Reason: fmt.Sprintf("negative duration (%g to %g)", n.TimeStart, n.TimeEnd)}
	case n.TimeStart < root.TimeStart:
		return &MalformedError{Path: path(), Reason: fmt.Sprintf("starts at %g, before the root at %g", n.TimeStart, root.TimeStart)}
	case n.MemOff < 0:
		return &MalformedError{Path: path(), Reason: fmt.Sprintf("negative memory offset %d", n.MemOff)}
	case n.MemPeak < 0:
		return &MalformedError{Path: path(), Reason: fmt.Sprintf("negative memory peak %d", n.MemPeak)}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func title(n *Node, i int) string {
	if n == nil || n.Title == "" {
		return fmt.Sprintf("#%d", i)
	}
	return n.Title
}
