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
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/pprof/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"

	"github.com/google/statchart/pkg/stats"
)

const sampleStats = "../../pkg/stats/testdata/compress.json"

func isUsage(err error) bool {
	return errors.Is(err, errUsage)
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	html := filepath.Join(dir, "chart.html")
	svg := filepath.Join(dir, "chart.svg")
	pb := filepath.Join(dir, "chart.pb.gz")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--html", html, "--svg", svg, "--pprof", pb, sampleStats}, &out))
	assert.Empty(t, out.String())

	for _, p := range []string{html, svg, pb} {
		fi, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.NotZero(t, fi.Size(), p)
	}

	f, err := os.Open(pb)
	require.NoError(t, err)
	defer f.Close()
	p, err := profile.Parse(f)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Sample)
}

func TestRunStdout(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--svg=-", "--text", "--color=false", sampleStats}, &out))

	s := out.String()
	assert.Contains(t, s, "<?xml")
	assert.Contains(t, s, "</svg>")
	assert.Contains(t, s, "root: 3 bars, 1 groups")
}

func TestRunServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	assert.NoError(t, run(ctx, []string{"--http", "127.0.0.1:0", sampleStats}, &out))
}

func TestRunErrors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"title": "r", "timeStart": 10, "timeEnd": 5}`), 0o600))

	tests := []struct {
		name  string
		args  []string
		usage bool
		want  string
	}{
		{name: "no input", args: nil, usage: true},
		{name: "two inputs", args: []string{sampleStats, sampleStats}, usage: true},
		{name: "unknown flag", args: []string{"--nope", sampleStats}, usage: true},
		{name: "no mode", args: []string{sampleStats}, want: "no output mode specified"},
		{name: "missing file", args: []string{"--text", filepath.Join(t.TempDir(), "none.json")}, want: "parse: open"},
		{name: "malformed", args: []string{"--text", bad}, want: "negative duration"},
		{name: "two stdout outputs", args: []string{"--html=-", "--svg=-", sampleStats}, want: "may write to stdout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(context.Background(), tc.args, &out)
			require.Error(t, err)
			assert.Equal(t, tc.usage, isUsage(err))
			if tc.want != "" {
				assert.ErrorContains(t, err, tc.want)
			}
		})
	}

	err := run(context.Background(), []string{"--text", bad}, &bytes.Buffer{})
	assert.ErrorIs(t, err, stats.ErrMalformed)
}

func TestRunVerbosity(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, flag.Set("v", "0"))
		kfs := flag.NewFlagSet("reset", flag.ContinueOnError)
		klog.InitFlags(kfs)
		require.NoError(t, kfs.Set("v", "0"))
	})

	require.NoError(t, run(context.Background(), []string{"--v=2", "--text", sampleStats}, &bytes.Buffer{}))
	assert.True(t, klog.V(2).Enabled())
	assert.False(t, klog.V(3).Enabled())
}
