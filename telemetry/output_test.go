package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/slimeworks/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	// All methods are nil-safe
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteSnapshot("x.json", 1); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" || om.Close() != nil {
		t.Error("nil manager should be inert")
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i, b := range []Bookmark{
		{Type: BookmarkFirstColony, Tick: 100, Description: "one"},
		{Type: BookmarkCollapse, Tick: 200, Description: "two, with comma"},
	} {
		if err := om.WriteBookmark(b); err != nil {
			t.Fatalf("bookmark %d: %v", i, err)
		}
	}
	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 100, Band: "wet"}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 200, Band: "dry"}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var bookmarks []Bookmark
	if err := gocsv.UnmarshalFile(f, &bookmarks); err != nil {
		t.Fatalf("reading bookmarks: %v", err)
	}
	if len(bookmarks) != 2 || bookmarks[1].Type != BookmarkCollapse || bookmarks[1].Description != "two, with comma" {
		t.Errorf("bookmarks = %+v", bookmarks)
	}

	tf, err := os.Open(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer tf.Close()
	var rows []WindowStats
	if err := gocsv.UnmarshalFile(tf, &rows); err != nil {
		t.Fatalf("reading telemetry: %v", err)
	}
	if len(rows) != 2 || rows[0].Band != "wet" || rows[1].WindowEndTick != 200 {
		t.Errorf("telemetry rows = %+v", rows)
	}
}

func TestOutputManagerConfigAndSnapshot(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}

	if err := om.WriteSnapshot("final.json", map[string]int{"tick": 7}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "final.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]int
	if err := json.Unmarshal(data, &got); err != nil || got["tick"] != 7 {
		t.Errorf("snapshot = %s (%v)", data, err)
	}
}
