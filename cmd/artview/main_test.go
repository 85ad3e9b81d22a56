package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/art2ascii/artview/pkg/frames"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.data")

	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := writeAtomic(path, []byte("new")); err != nil {
		t.Fatalf("writeAtomic() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover temp files: %v", entries)
	}
}

func TestEncodeDecodeCommands(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	out := filepath.Join(dir, "output.data")
	if err := os.WriteFile(a, []byte("\x1b[31mA\x1b[0m"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("\x1b[5mB"), 0644); err != nil {
		t.Fatal(err)
	}

	enc := encodeCommand()
	var encOut bytes.Buffer
	enc.SetOut(&encOut)
	enc.SetArgs([]string{"-o", out, a, b})
	if err := enc.Execute(); err != nil {
		t.Fatalf("encode error = %v", err)
	}
	if !strings.Contains(encOut.String(), "wrote 2 frames") {
		t.Errorf("encode output = %q", encOut.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	ff, err := frames.Decode(string(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(ff) != 2 || ff[0] != "\x1b[31mA\x1b[0m" {
		t.Errorf("frames = %q", ff)
	}

	dec := decodeCommand()
	var decOut bytes.Buffer
	dec.SetOut(&decOut)
	dec.SetArgs([]string{out})
	if err := dec.Execute(); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	report := decOut.String()
	if !strings.Contains(report, "2 frames, 1 anomalies") {
		t.Errorf("decode output = %q", report)
	}
	if !strings.Contains(report, "frame 1 offset 0") {
		t.Errorf("decode output missing anomaly line: %q", report)
	}
}

func TestDecodeCommand_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.data")
	if err := os.WriteFile(path, []byte("@FRAME@@FRAME@"), 0644); err != nil {
		t.Fatal(err)
	}

	dec := decodeCommand()
	dec.SetOut(&bytes.Buffer{})
	dec.SetErr(&bytes.Buffer{})
	dec.SetArgs([]string{path})
	if err := dec.Execute(); err == nil {
		t.Error("decode of empty file should fail")
	}
}

func TestEncodeCommand_RejectsDelimiter(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "frame.txt")
	out := filepath.Join(dir, "output.data")
	if err := os.WriteFile(in, []byte("A@FRAME@B"), 0644); err != nil {
		t.Fatal(err)
	}

	enc := encodeCommand()
	enc.SetOut(&bytes.Buffer{})
	enc.SetErr(&bytes.Buffer{})
	enc.SetArgs([]string{"-o", out, in})
	err := enc.Execute()
	if err == nil {
		t.Fatal("encode of a frame holding the delimiter should fail")
	}
	if !strings.Contains(err.Error(), frames.Delimiter) {
		t.Errorf("error = %v, want it to name the delimiter", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("output written despite error: %v", statErr)
	}
}
