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

// Package text is for rendering a chart into text form
package text

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/google/statchart/pkg/chart"
)

// Options controls the text rendering.
type Options struct {
	// Color highlights phases taking a large share of the run.
	Color bool
}

// Table writes the bars and groups of a chart as human-readable tables.
func Table(w io.Writer, c *chart.Chart, o Options) error {
	s := c.Scale

	if _, err := fmt.Fprintf(w, "%s: %d bars, %d groups over %s, peak %s\n", c.Title, len(c.Bars), len(c.Groups), s.FormatTime(s.Duration), s.FormatMem(s.MemPeak)); err != nil {
		return err
	}

	if len(c.Bars) == 0 {
		return nil
	}

	var red, yellow func(...any) string
	if o.Color {
		red = color.New(color.FgRed, color.Bold).SprintFunc()
		yellow = color.New(color.FgYellow).SprintFunc()
	} else {
		red = fmt.Sprint
		yellow = fmt.Sprint
	}

	share := func(e *chart.Entry) string {
		f := c.Fraction(e)
		p := chart.FormatPercent(f)
		switch {
		case f >= 0.25:
			return red(p)
		case f >= 0.10:
			return yellow(p)
		default:
			return p
		}
	}

	bars := tablewriter.NewWriter(w)
	bars.Header([]string{"#", "Phase", "Start", "Duration", "Share", "Mem Peak", "Mem Added"})
	bars.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, b := range c.Bars {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			strings.Join(append(append([]string{}, b.Path...), b.Title), " / "),
			s.FormatTime(b.TStart),
			s.FormatTime(b.TDuration),
			share(b),
			s.FormatMem(b.MemPeak),
			s.FormatMem(b.MemAdded()),
		})
	}

	if err := bars.Bulk(data); err != nil {
		return err
	}
	if err := bars.Render(); err != nil {
		return err
	}

	if len(c.Groups) == 0 {
		return nil
	}

	groups := tablewriter.NewWriter(w)
	groups.Header([]string{"Group", "Start", "Duration", "Share", "Mem Peak"})
	groups.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data = nil
	for _, g := range c.Groups {
		data = append(data, []string{
			strings.Repeat("  ", g.Level) + g.Title,
			s.FormatTime(g.TStart),
			s.FormatTime(g.TDuration),
			share(g),
			s.FormatMem(g.MemPeak),
		})
	}

	if err := groups.Bulk(data); err != nil {
		return err
	}
	return groups.Render()
}
