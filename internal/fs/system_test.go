package fs

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestShouldSkipPath(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"/dev", true},
		{"/proc/1/status", true},
		{"/sys/class/net", true},
		{"/lost+found", true},
		{"/home/user/Pictures", false},
		{"/tmp", false},
		{"", false},
		{"/development", false},
		{"/bootstrap", false},
	}
	for _, tc := range testCases {
		if got := shouldSkipPath(tc.path); got != tc.expected {
			t.Errorf("shouldSkipPath(%q): expected %v, got %v", tc.path, tc.expected, got)
		}
	}
}

func makeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, d := range []string{"sub", ".thumbnails", "sub/deeper"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	files := []string{
		"b.jpg", "a.PNG", "notes.txt", ".hidden.jpg",
		".thumbnails/abc.png", "sub/c.gif", "sub/deeper/d.webp",
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestScanImages(t *testing.T) {
	dir := makeTree(t)
	s := NewSystem()

	flat, err := s.ScanImages(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("ScanImages: %v", err)
	}
	want := []string{filepath.Join(dir, "a.PNG"), filepath.Join(dir, "b.jpg")}
	if !slices.Equal(flat, want) {
		t.Errorf("ScanImages(flat): expected %v, got %v", want, flat)
	}

	deep, err := s.ScanImages(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("ScanImages: %v", err)
	}
	want = append(want, filepath.Join(dir, "sub", "c.gif"), filepath.Join(dir, "sub", "deeper", "d.webp"))
	if !slices.Equal(deep, want) {
		t.Errorf("ScanImages(recursive): expected %v, got %v", want, deep)
	}
}

func TestScanImagesErrors(t *testing.T) {
	s := NewSystem()
	if _, err := s.ScanImages(context.Background(), "/nonexistent/liv/path", false); err == nil {
		t.Error("expected error for missing directory")
	}
	file := filepath.Join(t.TempDir(), "x.jpg")
	os.WriteFile(file, []byte("x"), 0644)
	if _, err := s.ScanImages(context.Background(), file, false); err == nil {
		t.Error("expected error when scanning a file")
	}
}

func TestReadDirEntries(t *testing.T) {
	dir := makeTree(t)
	entries, err := NewSystem().ReadDirEntries(dir)
	if err != nil {
		t.Fatalf("ReadDirEntries: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{"sub", "a.PNG", "b.jpg"}
	if !slices.Equal(names, want) {
		t.Errorf("ReadDirEntries: expected %v, got %v", want, names)
	}
	if !entries[0].IsDir {
		t.Error("sub should be a directory")
	}
}

func TestSystemLoop(t *testing.T) {
	dir := makeTree(t)
	s := NewSystem()
	go s.Start()
	defer close(s.RequestChan)

	s.RequestChan <- Request{Op: ScanImages, Path: dir, Gen: 7}
	select {
	case resp := <-s.ResponseChan:
		if resp.Gen != 7 || len(resp.Images) != 2 || resp.Err != nil {
			t.Errorf("unexpected response: %+v", resp)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for response")
	}
}
