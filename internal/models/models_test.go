// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package models

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{9, "0:09"},
		{59.9, "0:59"},
		{60, "1:00"},
		{615, "10:15"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestClassifyShort(t *testing.T) {
	if ClassifyShort(0) {
		t.Error("unknown duration should not classify as short")
	}
	if !ClassifyShort(59) {
		t.Error("59s should be a short")
	}
	if ClassifyShort(60) {
		t.Error("60s should not be a short")
	}
}

func TestNextIDPerCategory(t *testing.T) {
	d := NewDocument()
	if got := d.NextID(CounterUser); got != "1" {
		t.Fatalf("first user id = %q, want 1", got)
	}
	if got := d.NextID(CounterUser); got != "2" {
		t.Fatalf("second user id = %q, want 2", got)
	}
	if got := d.NextID(CounterVideo); got != "1" {
		t.Fatalf("video counter should be independent, got %q", got)
	}
}

func TestPrefersShort(t *testing.T) {
	p := &BehaviorProfile{ShortWatches: 3, LongWatches: 2}
	if !p.PrefersShort() {
		t.Error("more short watches should prefer shorts")
	}
	p = &BehaviorProfile{ShortWatches: 2, LongWatches: 2}
	if p.PrefersShort() {
		t.Error("a tie should not prefer shorts")
	}
}
