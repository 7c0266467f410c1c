// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package media

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestEnsureDirs(t *testing.T) {
	p := Paths{DataDir: t.TempDir()}
	if err := p.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, dir := range []string{p.Videos(), p.Thumbs(), p.Avatars(), p.Imports(), p.Quality(), p.Backups()} {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			t.Errorf("%s not created as directory (err=%v)", dir, err)
		}
	}
}

func TestVideoFileIgnoresPathTraversal(t *testing.T) {
	p := Paths{DataDir: "/data"}
	got := p.VideoFile("/media/videos/../../etc/passwd")
	if got != filepath.Join("/data/videos", "passwd") {
		t.Errorf("VideoFile = %q, traversal not stripped", got)
	}
}

func TestSaveStream(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "v1.mp4")
	n, err := SaveStream(dst, strings.NewReader("payload"))
	if err != nil || n != 7 {
		t.Fatalf("SaveStream = %d, %v", n, err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "payload" {
		t.Fatalf("content = %q, %v", data, err)
	}
	// No temp leftovers.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries after save, want 1", len(entries))
	}
}

func TestRemoveVideoFiles(t *testing.T) {
	p := Paths{DataDir: t.TempDir()}
	if err := p.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(p.VideoFile("/media/videos/1.mp4"), []byte("v"), 0o644)
	os.WriteFile(filepath.Join(p.Thumbs(), "1.jpg"), []byte("t"), 0o644)
	os.MkdirAll(filepath.Join(p.Quality(), "1"), 0o755)
	os.WriteFile(p.QualityFile("1", "360p"), []byte("q"), 0o644)

	p.RemoveVideoFiles("1", "/media/videos/1.mp4", "/media/thumbnails/1.jpg")

	for _, f := range []string{
		p.VideoFile("/media/videos/1.mp4"),
		filepath.Join(p.Thumbs(), "1.jpg"),
		p.QualityFile("1", "360p"),
	} {
		if _, err := os.Stat(f); !os.IsNotExist(err) {
			t.Errorf("%s still exists", f)
		}
	}

	// Idempotent on missing files.
	p.RemoveVideoFiles("1", "/media/videos/1.mp4", "/media/thumbnails/1.jpg")
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"my_great-video.mp4", "my great video"},
		{"clip.webm", "clip"},
		{"no extension", "no extension"},
	}
	for _, tt := range tests {
		if got := TitleFromFilename(tt.in); got != tt.want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQualitiesUpTo(t *testing.T) {
	if got := QualitiesUpTo("360p"); !reflect.DeepEqual(got, []string{"144p", "240p", "360p"}) {
		t.Errorf("QualitiesUpTo(360p) = %v", got)
	}
	if got := QualitiesUpTo("original"); !reflect.DeepEqual(got, []string{"original"}) {
		t.Errorf("QualitiesUpTo(original) = %v", got)
	}
	if got := QualitiesUpTo("1080p"); !reflect.DeepEqual(got, []string{"original"}) {
		t.Errorf("QualitiesUpTo(1080p) = %v", got)
	}
}
