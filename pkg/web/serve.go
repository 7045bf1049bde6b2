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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/google/statchart/pkg/chart"
)

// Handler returns the HTTP handler for a chart.
func Handler(c *chart.Chart, o Options) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/svg", displaySVG(c, o))
	mux.HandleFunc("/chart.json", displayJSON(c))
	mux.HandleFunc("/hit", hitTest(c))
	mux.HandleFunc("/", displayChart(c, o))
	return mux
}

// Serve starts up an HTTP server at a given endpoint, until ctx is done.
func Serve(ctx context.Context, endpoint string, c *chart.Chart, o Options) error {
	srv := &http.Server{
		Addr:              endpoint,
		Handler:           Handler(c, o),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		klog.Infof("Listening at %s ...", endpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

func displayChart(c *chart.Chart, o Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := Render(w, c, o); err != nil {
			http.Error(w, fmt.Sprintf("render failed: %v", err), 500)
		}
	}
}

func displaySVG(c *chart.Chart, o Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		if err := RenderSVG(w, c, o); err != nil {
			http.Error(w, fmt.Sprintf("render failed: %v", err), 500)
		}
	}
}

func displayJSON(c *chart.Chart) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c)
	}
}

// hitTest answers /hit?t=<ms>, t being relative to the start of the run.
func hitTest(c *chart.Chart) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("bad t: %v", err)})
			return
		}

		d, ok := c.HitTest(t)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("no bar at %g", t)})
			return
		}

		writeJSON(w, http.StatusOK, d)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.Errorf("encode: %v", err)
	}
}
