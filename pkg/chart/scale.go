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

import "fmt"

// MemUnits are the memory units, smallest first.
var MemUnits = []string{"bytes", "KiB", "MiB", "GiB"}

const (
	// TimeDiv converts input milliseconds into seconds.
	TimeDiv  = 1000.0
	TimeUnit = "s"
)

// Scale maps raw stats units onto display units.
type Scale struct {
	// Duration is the length of the run in milliseconds.
	Duration float64 `json:"duration"`
	// MemPeak is the root peak in bytes.
	MemPeak  int64   `json:"memPeak"`
	TimeDiv  float64 `json:"timeDiv"`
	TimeUnit string  `json:"timeUnit"`
	MemDiv   int64   `json:"memDiv"`
	MemUnit  string  `json:"memUnit"`
}

// NewScale returns the scale for a run of the given duration and memory peak.
func NewScale(duration float64, memPeak int64) Scale {
	div, unit := MemoryUnit(memPeak)
	return Scale{
		Duration: duration,
		MemPeak:  memPeak,
		TimeDiv:  TimeDiv,
		TimeUnit: TimeUnit,
		MemDiv:   div,
		MemUnit:  unit,
	}
}

// MemoryUnit picks the largest unit that keeps peak at or below 1024.
func MemoryUnit(peak int64) (int64, string) {
	u := 0
	div := int64(1)
	p := float64(peak)
	for u < len(MemUnits)-1 && p > 1024 {
		p /= 1024.0
		div *= 1024
		u++
	}
	return div, MemUnits[u]
}

// Time converts milliseconds into display units.
func (s Scale) Time(ms float64) float64 {
	return ms / s.TimeDiv
}

// Mem converts bytes into display units.
func (s Scale) Mem(bytes int64) float64 {
	return float64(bytes) / float64(s.MemDiv)
}

// TimeMax is the upper end of the time axis in display units.
func (s Scale) TimeMax() float64 {
	if m := s.Time(s.Duration); m > 0 {
		return m
	}
	return 1
}

// MemMax is the upper end of the memory axis in display units.
func (s Scale) MemMax() float64 {
	if m := s.Mem(s.MemPeak); m > 0 {
		return m
	}
	return 1
}

// FormatTime formats milliseconds, e.g. "1.250 s".
func (s Scale) FormatTime(ms float64) string {
	return fmt.Sprintf("%.3f %s", s.Time(ms), s.TimeUnit)
}

// FormatMem formats bytes, e.g. "3.50 MiB".
func (s Scale) FormatMem(bytes int64) string {
	return fmt.Sprintf("%.2f %s", s.Mem(bytes), s.MemUnit)
}

// FormatPercent formats a fraction, e.g. "12.50 %".
func FormatPercent(frac float64) string {
	return fmt.Sprintf("%.2f %%", frac*100.0)
}
