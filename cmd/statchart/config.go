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

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/google/statchart/pkg/chart"
	"github.com/google/statchart/pkg/web"
)

// config is the merged view of flags, STATCHART_* environment variables and
// the optional config file. Flags win over the environment, which wins over
// the file.
type config struct {
	HTTP    string
	Open    bool
	HTML    string
	SVG     string
	Pprof   string
	Text    bool
	Color   bool
	Palette []string
	Web     web.Options
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("statchart", pflag.ContinueOnError)
	fs.String("config", "", "Path to a YAML config file")
	fs.String("http", "", "HTTP endpoint to listen at")
	fs.Bool("open", false, "Open the chart in a browser when serving")
	fs.String("html", "", "Path to output HTML content to (- for stdout)")
	fs.String("svg", "", "Path to output SVG content to (- for stdout)")
	fs.String("pprof", "", "Path to output pprof content to")
	fs.Bool("text", false, "Outputs a text table of the phases found")
	fs.Bool("color", true, "Highlight long phases in text output")
	fs.StringSlice("palette", nil, "Comma separated bar colors (default: the classic nine)")
	fs.Int("width", web.DefaultOptions.Width, "Chart width in pixels")
	fs.Int("height", web.DefaultOptions.Height, "Chart height in pixels")
	fs.Int("ticks", web.DefaultOptions.Ticks, "Approximate number of time axis ticks")
	return fs
}

func loadConfig(fs *pflag.FlagSet) (*config, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix("STATCHART")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &config{
		HTTP:    v.GetString("http"),
		Open:    v.GetBool("open"),
		HTML:    v.GetString("html"),
		SVG:     v.GetString("svg"),
		Pprof:   v.GetString("pprof"),
		Text:    v.GetBool("text"),
		Color:   v.GetBool("color"),
		Palette: splitList(v.GetStringSlice("palette")),
		Web: web.Options{
			Width:  v.GetInt("width"),
			Height: v.GetInt("height"),
			Ticks:  v.GetInt("ticks"),
		},
	}

	if cfg.Web.Width <= 0 || cfg.Web.Height <= 0 {
		return nil, fmt.Errorf("invalid chart size %dx%d", cfg.Web.Width, cfg.Web.Height)
	}

	toStdout := 0
	for _, p := range []string{cfg.HTML, cfg.SVG, cfg.Pprof} {
		if p == "-" {
			toStdout++
		}
	}
	if toStdout > 1 {
		return nil, fmt.Errorf("only one of --html, --svg and --pprof may write to stdout")
	}

	return cfg, nil
}

// splitList accepts both repeated values and comma separated ones, since
// environment variables only carry a single string.
func splitList(in []string) []string {
	out := []string{}
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c *config) chartOptions() []chart.Option {
	if len(c.Palette) == 0 {
		return nil
	}
	return []chart.Option{chart.WithPalette(c.Palette)}
}
