package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewAppliesDefaults(t *testing.T) {
	c := New()
	if c.Host != DefaultHost {
		t.Fatalf("Host = %q, want %q", c.Host, DefaultHost)
	}
	if c.Port != DefaultPort {
		t.Fatalf("Port = %d, want %d", c.Port, DefaultPort)
	}
	if c.Snapshot.Prefix != DefaultSnapshotPrefix {
		t.Fatalf("Snapshot.Prefix = %q, want %q", c.Snapshot.Prefix, DefaultSnapshotPrefix)
	}
	if c.Telemetry.Namespace != "weave" {
		t.Fatalf("Telemetry.Namespace = %q, want weave", c.Telemetry.Namespace)
	}
}

func TestLoadFileMissingReturnsError(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadFilePartialConfigFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(`{"port": 9000}`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != 9000 {
		t.Fatalf("Port = %d, want 9000", c.Port)
	}
	if c.Host != DefaultHost {
		t.Fatalf("Host = %q, want default %q", c.Host, DefaultHost)
	}
	if c.Address() != DefaultHost+":9000" {
		t.Fatalf("Address() = %q", c.Address())
	}
}

func TestLoadFileInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	c := New()
	c.Port = 4242
	c.Snapshot.Bucket = "weave-test"
	if err := c.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Port != 4242 || loaded.Snapshot.Bucket != "weave-test" {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}
