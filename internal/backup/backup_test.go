// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/store"
)

func TestSnapshotWritesParsableDocument(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "db.json"))
	if err != nil {
		t.Fatal(err)
	}
	st.Update(func(d *models.Document) error {
		d.Users["1"] = &models.User{ID: "1", Username: "alice"}
		return nil
	})

	backupDir := filepath.Join(dir, "backups")
	os.MkdirAll(backupDir, 0o755)
	m := NewManager(st, backupDir)

	path, err := m.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("backup not parsable: %v", err)
	}
	if doc.Users["1"] == nil || doc.Users["1"].Username != "alice" {
		t.Errorf("backup missing user data: %+v", doc.Users)
	}

	names, err := m.List()
	if err != nil || len(names) != 1 {
		t.Errorf("List = %v, %v, want one backup", names, err)
	}
}
