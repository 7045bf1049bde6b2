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

package web

import (
	"math"
	"strconv"

	"github.com/google/statchart/pkg/chart"
)

// Options controls the chart geometry.
type Options struct {
	// Width and Height are the outer SVG size in pixels.
	Width  int
	Height int
	// Ticks is the approximate number of ticks on the time axis.
	Ticks int
}

// DefaultOptions matches the classic 900x450 stat chart.
var DefaultOptions = Options{Width: 900, Height: 450, Ticks: 15}

type margin struct {
	Top, Right, Bottom, Left float64
}

var margins = margin{Top: 75, Right: 200, Bottom: 50, Left: 55}

// groupIndent is the vertical gap between bracket levels.
const groupIndent = 30

type tick struct {
	Pos   float64
	Label string
}

type barView struct {
	Index   int
	Title   string
	X, W    float64
	Y, H    float64
	OffY    float64
	Fill    string
	Italic  bool
	LegendY float64
}

type groupView struct {
	Title string
	X, W  float64
	Y     float64
}

// view is the fully laid out chart handed to the templates.
type view struct {
	Title             string
	SVGWidth          float64
	SVGHeight         float64
	Margin            margin
	Width, Height     float64
	Bars              []barView
	Groups            []groupView
	XTicks, YTicks    []tick
	TimeUnit, MemUnit string
	Model             *chart.Chart
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultOptions.Width
	}
	if o.Height <= 0 {
		o.Height = DefaultOptions.Height
	}
	if o.Ticks <= 0 {
		o.Ticks = DefaultOptions.Ticks
	}
	return o
}

func layout(c *chart.Chart, o Options) *view {
	o = o.withDefaults()

	w := math.Max(float64(o.Width)-margins.Left-margins.Right, 1)
	h := math.Max(float64(o.Height)-margins.Top-margins.Bottom, 1)

	s := c.Scale
	tMax, mMax := s.TimeMax(), s.MemMax()
	x := func(ms float64) float64 { return s.Time(ms) / tMax * w }
	y := func(bytes int64) float64 { return h - s.Mem(bytes)/mMax*h }

	v := &view{
		Title:     c.Title,
		SVGWidth:  float64(o.Width),
		SVGHeight: float64(o.Height),
		Margin:    margins,
		Width:     w,
		Height:    h,
		XTicks:    ticks(tMax, o.Ticks, w, false),
		YTicks:    ticks(mMax, 10, h, true),
		TimeUnit:  s.TimeUnit,
		MemUnit:   s.MemUnit,
		Model:     c,
	}

	for i, b := range c.Bars {
		bw := x(b.TDuration)
		top := y(b.MemPeak)
		v.Bars = append(v.Bars, barView{
			Index:   i,
			Title:   b.Title,
			X:       x(b.TStart),
			W:       bw,
			Y:       top,
			H:       h - top,
			OffY:    y(b.MemOff),
			Fill:    chart.Hex(b.Color),
			Italic:  bw < 1.0,
			LegendY: float64(i) * 1.5,
		})
	}

	maxLevel := c.MaxLevel()
	for _, g := range c.Groups {
		v.Groups = append(v.Groups, groupView{
			Title: g.Title,
			X:     x(g.TStart),
			W:     x(g.TDuration),
			Y:     y(g.MemPeak) - float64((maxLevel-g.Level)*groupIndent),
		})
	}

	return v
}

// ticks returns roughly count evenly spaced, round-valued ticks over
// [0, max], positioned along an axis of the given pixel length.
func ticks(max float64, count int, length float64, inverted bool) []tick {
	step := tickStep(max, count)
	prec := 0
	if step < 1 {
		prec = int(math.Ceil(-math.Log10(step)))
	}

	ts := []tick{}
	for i := 0; ; i++ {
		val := float64(i) * step
		if val > max*(1+1e-9) {
			break
		}
		pos := val / max * length
		if inverted {
			pos = length - pos
		}
		ts = append(ts, tick{Pos: pos, Label: strconv.FormatFloat(val, 'f', prec, 64)})
	}
	return ts
}

// tickStep picks a 1, 2 or 5 times power of ten step.
func tickStep(span float64, count int) float64 {
	raw := span / float64(count)
	step := math.Pow(10, math.Floor(math.Log10(raw)))
	switch e := raw / step; {
	case e >= 7.5:
		step *= 10
	case e >= 3.5:
		step *= 5
	case e >= 1.5:
		step *= 2
	}
	return step
}
