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

// Package web is for generating HTML and SVG visualizations of stats charts
package web

import (
	"fmt"
	"html/template"
	"io"

	"github.com/google/statchart/pkg/chart"
)

var svgTemplate = `
{{ define "svg" }}<svg xmlns="http://www.w3.org/2000/svg" width="{{ .SVGWidth }}" height="{{ .SVGHeight }}" font-family="sans-serif" font-size="10">
  <g class="zoom" transform="scale(1.0)">
  <g class="plot" transform="translate({{ .Margin.Left }},{{ .Margin.Top }})">
    <rect x="0" y="0" width="{{ .Width | px }}" height="{{ .Height | px }}" fill="white"></rect>
    {{- range .Bars }}
    <g class="bar" transform="translate({{ .X | px }},0)">
      <rect class="mem" x="0" y="{{ .Y | px }}" width="{{ .W | px }}" height="{{ .H | px }}" fill="{{ .Fill }}"><title>{{ .Title }}</title></rect>
      <line x1="0" x2="{{ .W | px }}" y1="{{ .OffY | px }}" y2="{{ .OffY | px }}" stroke="rgba(0, 0, 0, 0.25)" stroke-width="1" stroke-dasharray="2,2"></line>
    </g>
    {{- end }}
    {{- $w := .Width }}
    {{- range .Bars }}
    <g class="legend" transform="translate({{ $w | plus5 }},0)">
      <rect x="0" y="{{ .LegendY }}em" width="1em" height="1em" fill="{{ .Fill }}"></rect>
      <text x="1.25em" y="{{ .LegendY }}em" dy="1em" font-style="{{ if .Italic }}italic{{ else }}normal{{ end }}">{{ .Title }}</text>
    </g>
    {{- end }}
    {{- $h := .Height }}
    {{- range .Groups }}
    <g class="group" transform="translate({{ .X | px }},0)" stroke="rgba(0, 0, 0, 0.75)" stroke-width="1" stroke-dasharray="5,2">
      <text x="{{ .W | half }}" y="{{ .Y | px }}" dy="-12" stroke="none" font-weight="bold" text-anchor="middle">{{ .Title }}</text>
      <line x1="0" x2="0" y1="{{ .Y | px }}" y2="{{ $h | px }}"></line>
      <line x1="{{ .W | px }}" x2="{{ .W | px }}" y1="{{ .Y | px }}" y2="{{ $h | px }}"></line>
      <line x1="0" x2="{{ .W | px }}" y1="{{ .Y | px }}" y2="{{ .Y | px }}"></line>
      <line x1="{{ .W | half }}" x2="{{ .W | half }}" y1="{{ .Y | minus10 }}" y2="{{ .Y | px }}"></line>
    </g>
    {{- end }}
    <g class="marker" transform="translate(0, 0)" display="none">
      <line x1="0" x2="0" y1="0" y2="{{ .Height | px }}" stroke="black" stroke-width="1"></line>
      <circle cx="0" cy="0" r="3" fill="black"></circle>
    </g>
    <g class="axis x" transform="translate(0,{{ .Height | px }})">
      <path d="M0,6V0H{{ .Width | px }}V6" fill="none" stroke="black" shape-rendering="crispEdges"></path>
      {{- range .XTicks }}
      <g class="tick" transform="translate({{ .Pos | px }},0)"><line y2="6" stroke="black"></line><text y="9" dy=".71em" text-anchor="middle">{{ .Label }}</text></g>
      {{- end }}
    </g>
    <text class="axis-label" transform="translate({{ .Width | half }},{{ .Height | px }})" dy="3em" font-weight="bold" font-style="italic" text-anchor="middle">Time / {{ .TimeUnit }}</text>
    <g class="axis y">
      <path d="M-6,0H0V{{ .Height | px }}H-6" fill="none" stroke="black" shape-rendering="crispEdges"></path>
      {{- range .YTicks }}
      <g class="tick" transform="translate(0,{{ .Pos | px }})"><line x2="-6" stroke="black"></line><text x="-9" dy=".32em" text-anchor="end">{{ .Label }}</text></g>
      {{- end }}
    </g>
    <text class="axis-label" transform="translate(0,{{ .Height | half }}) rotate(-90)" dy="-3em" font-weight="bold" font-style="italic" text-anchor="middle">Memory Peak / {{ .MemUnit }}</text>
  </g>
  </g>
</svg>{{ end }}`

var pageTemplate = `
{{ define "page" }}<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>{{ .Title }}</title>
    <style>
      body { font-family: sans-serif; }
      #tip { display: none; position: absolute; margin: 12px; padding: 6px; background: rgba(255, 255, 255, 0.95); border: 1px solid #888; font-size: 12px; pointer-events: none; }
      #tip th { text-align: right; padding-right: 8px; }
      #tip .title { font-weight: bold; }
    </style>
  </head>
  <body>
    <div id="options">
      <button class="svg">Export SVG</button>
      Zoom: <input class="zoom" type="range" min="0.5" max="4" step="0.1" value="1.0">
      <span class="zoom-label"></span>
    </div>
    <div id="chart"><div id="svg-container">{{ template "svg" . }}</div></div>
    <div id="tip">
      <table>
        <thead><tr><th colspan="2" class="title"></th></tr></thead>
        <tbody>
          <tr><th>Start:</th><td class="start"></td></tr>
          <tr><th>Duration:</th><td class="duration"></td></tr>
          <tr><th>Memory peak:</th><td class="mempeak"></td></tr>
          <tr><th>Memory added:</th><td class="memadd"></td></tr>
        </tbody>
        <tbody class="ext"></tbody>
      </table>
    </div>
    <script>
      (function() {
        var model = {{ .Model }};
        var s = model.scale;
        var width = {{ .Width }}, height = {{ .Height }};
        var svgWidth = {{ .SVGWidth }}, svgHeight = {{ .SVGHeight }};
        var tMax = {{ .Model.Scale.TimeMax }};
        var mMax = {{ .Model.Scale.MemMax }};

        var svg = document.querySelector("#chart svg");
        var plot = svg.querySelector("g.plot");
        var marker = plot.querySelector("g.marker");
        var tip = document.getElementById("tip");

        var formatTime = function(ms) { return (ms / s.timeDiv).toFixed(3) + " " + s.timeUnit; };
        var formatMem = function(b) { return (b / s.memDiv).toFixed(2) + " " + s.memUnit; };
        var formatPercent = function(p) { return (p * 100.0).toFixed(2) + " %"; };

        var hitTest = function(t) {
          for (var i = 0; i < model.bars.length; i++) {
            var d = model.bars[i];
            if (t >= d.tStart && t <= d.tEnd) {
              return d;
            }
          }
          return null;
        };

        var hide = function() {
          marker.setAttribute("display", "none");
          tip.style.display = "none";
        };

        var cachedStart = -1;
        var setText = function(cls, text) { tip.querySelector("." + cls).textContent = text; };

        plot.addEventListener("mousemove", function(ev) {
          var pt = svg.createSVGPoint();
          pt.x = ev.clientX;
          pt.y = ev.clientY;
          var m = pt.matrixTransform(plot.getScreenCTM().inverse());
          if (m.x < 0 || m.x > width || m.y < 0 || m.y > height) {
            return;
          }

          var d = hitTest(m.x / width * tMax * s.timeDiv);
          if (!d) {
            hide();
            return;
          }

          var memY = height - (d.memPeak / s.memDiv) / mMax * height;
          marker.setAttribute("display", "inline");
          marker.setAttribute("transform", "translate(" + m.x + ",0)");
          marker.querySelector("circle").setAttribute("cy", memY);

          if (d.tStart !== cachedStart) {
            cachedStart = d.tStart;
            var dur = d.tEnd - d.tStart;
            setText("title", d.path.concat([d.title]).join(" / "));
            setText("start", formatTime(d.tStart));
            setText("duration", formatTime(dur) + " (" + formatPercent(s.duration > 0 ? dur / s.duration : 0) + ")");
            setText("mempeak", formatMem(d.memPeak));
            setText("memadd", formatMem(d.memPeak - d.memOff));

            var ext = tip.querySelector("tbody.ext");
            ext.innerHTML = "";
            (d.stats || []).forEach(function(kv) {
              var tr = document.createElement("tr");
              var th = document.createElement("th");
              var td = document.createElement("td");
              th.textContent = kv.key + ":";
              td.textContent = kv.value;
              tr.appendChild(th);
              tr.appendChild(td);
              ext.appendChild(tr);
            });
          }

          tip.style.display = "inline";
          tip.style.left = ev.pageX + "px";
          tip.style.top = ev.pageY + "px";
        });

        plot.addEventListener("mouseleave", hide);

        document.querySelector("#options button.svg").addEventListener("click", function() {
          var src = document.getElementById("svg-container").innerHTML;
          window.open("data:image/svg+xml;base64," + btoa(unescape(encodeURIComponent(src))));
        });

        var zoomInput = document.querySelector("#options .zoom");
        var setZoom = function(zoom) {
          svg.setAttribute("width", svgWidth * zoom);
          svg.setAttribute("height", svgHeight * zoom);
          svg.querySelector("g.zoom").setAttribute("transform", "scale(" + zoom + ")");
          document.querySelector("#options .zoom-label").textContent =
            zoom.toFixed(1) + " (" + (svgWidth * zoom).toFixed(0) + " x " + (svgHeight * zoom).toFixed(0) + ")";
        };
        zoomInput.addEventListener("input", function() { setZoom(parseFloat(this.value)); });
        zoomInput.addEventListener("dblclick", function() { this.value = 1.0; setZoom(1.0); });
        setZoom(1.0);
      })();
    </script>
  </body>
</html>
{{ end }}`

var templates = template.Must(template.New("statchart").Funcs(template.FuncMap{
	"px":      px,
	"half":    func(f float64) string { return px(f / 2) },
	"minus10": func(f float64) string { return px(f - 10) },
	"plus5":   func(f float64) string { return px(f + 5) },
}).Parse(svgTemplate + pageTemplate))

func px(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// Render renders an HTML page holding an interactive chart.
func Render(w io.Writer, c *chart.Chart, o Options) error {
	if err := templates.ExecuteTemplate(w, "page", layout(c, o)); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	return nil
}

// RenderSVG renders the chart as a standalone SVG document.
func RenderSVG(w io.Writer, c *chart.Chart, o Options) error {
	if _, err := io.WriteString(w, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"); err != nil {
		return err
	}

	if err := templates.ExecuteTemplate(w, "svg", layout(c, o)); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	return nil
}
