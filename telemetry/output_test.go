package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/sketch"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager without error, got %v, %v", om, err)
	}
	// Every method is a no-op on a nil manager.
	if err := om.WriteEvent(sketch.Event{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteFeatures(1, sketch.Features{}); err != nil {
		t.Error(err)
	}
	if p, err := om.NextSnapshotPath(1); p != "" || err != nil {
		t.Errorf("unexpected snapshot path %q, %v", p, err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerChangeLog(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	events := []sketch.Event{
		{Frame: 420, Kind: sketch.EventChange, Layers: 3, NumChanges: 1},
		{Frame: 840, Kind: sketch.EventChange, Layers: 3, NumChanges: 2},
	}
	for _, e := range events {
		if err := om.WriteEvent(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, 60); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "changes.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines:\n%s", len(lines), data)
	}
	if lines[0] != "frame,kind,layers,num_changes,num_cells" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[2] != "840,change,3,2,0" {
		t.Errorf("unexpected row %q", lines[2])
	}
}

func TestOutputManagerFeaturesAndConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	f := sketch.Features{Composition: "cells", Palette: "Mono", Layers: 2, Strokes: 1, ColorW: 0.5}
	if err := om.WriteFeatures(99, f); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "features.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var got RunRecord
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Seed != 99 || got.Features != f {
		t.Errorf("features roundtrip: %+v", got)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func TestNextSnapshotPath(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	a, err := om.NextSnapshotPath(10)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := om.NextSnapshotPath(10)
	if a == b {
		t.Error("snapshot paths must be unique")
	}
	if filepath.Base(a) != "001_frame_000010.png" {
		t.Errorf("unexpected name %q", filepath.Base(a))
	}
}
