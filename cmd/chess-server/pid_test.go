package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestAcquirePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")

	p, err := acquirePIDFile(path, true)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != strconv.Itoa(os.Getpid()) {
		t.Errorf("pid file contains %q", data)
	}

	p.Release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("pid file not removed: %v", err)
	}
}

func TestCheckStalePID(t *testing.T) {
	dir := t.TempDir()

	if err := checkStalePID(filepath.Join(dir, "missing.pid")); err != nil {
		t.Errorf("missing file: %v", err)
	}

	corrupt := filepath.Join(dir, "corrupt.pid")
	os.WriteFile(corrupt, []byte("abc\n"), 0644)
	if err := checkStalePID(corrupt); err == nil {
		t.Error("corrupted file accepted")
	}

	// PID 1 is always running
	running := filepath.Join(dir, "running.pid")
	os.WriteFile(running, []byte("1\n"), 0644)
	if err := checkStalePID(running); err == nil {
		t.Error("live process accepted")
	}
}
