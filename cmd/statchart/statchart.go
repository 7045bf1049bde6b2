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
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/browser"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/google/statchart/pkg/chart"
	"github.com/google/statchart/pkg/pprof"
	"github.com/google/statchart/pkg/stats"
	"github.com/google/statchart/pkg/text"
	"github.com/google/statchart/pkg/web"
)

var errUsage = errors.New("usage: statchart [flags] <stats.json>")

func main() {
	defer glog.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(64) // EX_USAGE
	case err != nil:
		glog.Exitf("%v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet()
	fs.AddGoFlagSet(flag.CommandLine)

	// glog and klog both define -v and friends; klog gets its own set and
	// follows whatever was passed for glog.
	kfs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(kfs)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	syncKlogFlags(fs, kfs)

	if len(fs.Args()) != 1 {
		return errUsage
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	root, err := stats.ReadFile(fs.Args()[0])
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	c, err := chart.Flatten(root, cfg.chartOptions()...)
	if err != nil {
		return err
	}

	if cfg.HTTP != "" {
		if cfg.Open {
			go openBrowser(stdout, cfg.HTTP)
		}
		if err := web.Serve(ctx, cfg.HTTP, c, cfg.Web); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}

	wrote, err := writeOutputs(cfg, c, stdout)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if cfg.Text {
		if err := text.Table(stdout, c, text.Options{Color: cfg.Color}); err != nil {
			return fmt.Errorf("text: %w", err)
		}
		return nil
	}

	if !wrote {
		return errors.New("no output mode specified")
	}
	return nil
}

// syncKlogFlags copies the logging flags set on the command line into klog.
func syncKlogFlags(fs *pflag.FlagSet, kfs *flag.FlagSet) {
	fs.Visit(func(f *pflag.Flag) {
		if kf := kfs.Lookup(f.Name); kf != nil {
			if err := kf.Value.Set(f.Value.String()); err != nil {
				glog.Warningf("klog flag %s: %v", f.Name, err)
			}
		}
	})
}

// writeOutputs writes every requested file output. The chart is read-only,
// so the renderers run concurrently. At most one of them targets stdout.
func writeOutputs(cfg *config, c *chart.Chart, stdout io.Writer) (bool, error) {
	var g errgroup.Group
	wrote := false

	outputs := []struct {
		path   string
		render func(io.Writer) error
	}{
		{cfg.HTML, func(w io.Writer) error { return web.Render(w, c, cfg.Web) }},
		{cfg.SVG, func(w io.Writer) error { return web.RenderSVG(w, c, cfg.Web) }},
		{cfg.Pprof, func(w io.Writer) error { return pprof.Write(w, c) }},
	}

	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		wrote = true
		o := o
		g.Go(func() error { return writeFile(o.path, stdout, o.render) })
	}

	return wrote, g.Wait()
}

// writeFile writes to path, or to stdout for "-".
func writeFile(path string, stdout io.Writer, render func(io.Writer) error) error {
	if path == "-" {
		return render(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open failed: %w", err)
	}

	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}

	glog.Infof("wrote %s", path)

	return nil
}

func openBrowser(w io.Writer, endpoint string) {
	host := endpoint
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	url := fmt.Sprintf("http://%s/", host)

	// give the listener a moment to come up
	time.Sleep(250 * time.Millisecond)
	fmt.Fprintf(w, "Opening %s ...\n", url)
	if err := browser.OpenURL(url); err != nil {
		glog.Errorf("open browser: %v", err)
	}
}
