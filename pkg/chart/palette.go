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

package chart

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// DefaultPalette is cycled through in leaf order.
var DefaultPalette = []string{
	"steelblue",
	"tomato",
	"orange",
	"darkseagreen",
	"slateblue",
	"rosybrown",
	"hotpink",
	"plum",
	"lightgreen",
}

type config struct {
	palette []string
}

// Option configures Flatten.
type Option func(*config) error

// WithPalette replaces DefaultPalette. Entries are SVG color names or #rgb /
// #rrggbb strings.
func WithPalette(p []string) Option {
	return func(c *config) error {
		if len(p) == 0 {
			return errors.New("palette: no colors")
		}
		for _, name := range p {
			if _, err := ResolveColor(name); err != nil {
				return fmt.Errorf("palette: %w", err)
			}
		}
		c.palette = append([]string{}, p...)
		return nil
	}
}

// ResolveColor turns a palette entry into a color.
func ResolveColor(name string) (color.RGBA, error) {
	n := strings.ToLower(strings.TrimSpace(name))

	if strings.HasPrefix(n, "#") {
		h := n[1:]
		if len(h) == 3 {
			h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
		}
		if len(h) != 6 {
			return color.RGBA{}, fmt.Errorf("bad hex color %q", name)
		}
		v, err := strconv.ParseUint(h, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("bad hex color %q", name)
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}

	c, ok := colornames.Map[n]
	if !ok {
		return color.RGBA{}, fmt.Errorf("unknown color %q", name)
	}
	return c, nil
}

// Hex formats a palette entry as #rrggbb. Unknown entries are returned as is.
func Hex(name string) string {
	c, err := ResolveColor(name)
	if err != nil {
		return name
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
