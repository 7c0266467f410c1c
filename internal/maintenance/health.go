// Tubelite - Self-Hosted Video Sharing Platform
// Copyright 2026 Tubelite Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubelite/tubelite

// Package maintenance houses the background upkeep of the platform:
// the auto-import folder scanner, the health monitor and the fix-all
// sweep that prunes stale state and orphaned media.
package maintenance

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/tubelite/tubelite/internal/logging"
	"github.com/tubelite/tubelite/internal/media"
	"github.com/tubelite/tubelite/internal/metrics"
	"github.com/tubelite/tubelite/internal/models"
	"github.com/tubelite/tubelite/internal/store"
)

// Thresholds for health issues.
const (
	minFreeDiskGB   = 1.0
	maxDocumentMB   = 50.0
	maxSessionCount = 1000

	sessionMaxAge      = 24 * time.Hour
	viewLogMaxAge      = 24 * time.Hour
	notificationMaxAge = 30 * 24 * time.Hour
	historyMaxAge      = 90 * 24 * time.Hour
)

// Monitor checks platform health and repairs what it finds. Every
// mutation goes through the store so results persist.
type Monitor struct {
	store *store.Store
	paths media.Paths
}

// NewMonitor creates a Monitor over the given store and media paths.
func NewMonitor(st *store.Store, paths media.Paths) *Monitor {
	return &Monitor{store: st, paths: paths}
}

// CheckHealth runs all health probes, records the findings in the
// document and returns the list of issues (empty means healthy).
func (m *Monitor) CheckHealth() ([]string, error) {
	var issues []string

	if free, err := FreeDiskGB(m.paths.DataDir); err == nil && free < minFreeDiskGB {
		issues = append(issues, fmt.Sprintf("Low disk space: %.1fGB remaining", free))
	}
	if fi, err := os.Stat(m.store.Path()); err == nil {
		if sizeMB := float64(fi.Size()) / (1 << 20); sizeMB > maxDocumentMB {
			issues = append(issues, fmt.Sprintf("Large database: %.1fMB", sizeMB))
		}
	}

	err := m.store.Update(func(d *models.Document) error {
		if orphans := m.orphanedFiles(d); len(orphans) > 0 {
			issues = append(issues, fmt.Sprintf("Orphaned video files: %d", len(orphans)))
		}
		if n := len(d.Sessions); n > maxSessionCount {
			issues = append(issues, fmt.Sprintf("High session count: %d", n))
		}
		d.Health.LastCheck = time.Now().Unix()
		d.Health.Issues = issues
		if issues == nil {
			d.Health.Issues = []string{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// FixAll prunes expired sessions, stale view logs, old notifications
// and history, and deletes orphaned video files. It is idempotent: a
// second run right after the first reports nothing to fix.
func (m *Monitor) FixAll() ([]string, error) {
	fixes := []string{}
	now := time.Now()

	err := m.store.Update(func(d *models.Document) error {
		if n := pruneSessions(d, now); n > 0 {
			fixes = append(fixes, fmt.Sprintf("Cleaned %d old sessions", n))
		}
		if n := pruneViewLog(d, now); n > 0 {
			fixes = append(fixes, fmt.Sprintf("Cleaned %d old view logs", n))
		}
		for _, name := range m.orphanedFiles(d) {
			if err := os.Remove(filepath.Join(m.paths.Videos(), name)); err == nil {
				fixes = append(fixes, "Removed orphaned: "+name)
			}
		}
		for uid, n := range pruneNotifications(d, now) {
			fixes = append(fixes, fmt.Sprintf("Cleaned %d old notifications for %s", n, uid))
		}
		for uid, n := range pruneHistory(d, now) {
			fixes = append(fixes, fmt.Sprintf("Cleaned %d old history for %s", n, uid))
		}
		d.Health.LastCheck = now.Unix()
		d.Health.Fixes = fixes
		return nil
	})
	if err != nil {
		return nil, err
	}
	for range fixes {
		metrics.MaintenanceActionsTotal.WithLabelValues("fix").Inc()
	}
	logging.Info().Int("fixes", len(fixes)).Msg("Maintenance sweep complete")
	return fixes, nil
}

// orphanedFiles lists files in the videos directory that no video
// record references.
func (m *Monitor) orphanedFiles(d *models.Document) []string {
	entries, err := os.ReadDir(m.paths.Videos())
	if err != nil {
		return nil
	}
	referenced := make(map[string]bool, len(d.Videos))
	for _, v := range d.Videos {
		if v.URL != "" {
			referenced[filepath.Base(v.URL)] = true
		}
	}
	var orphans []string
	for _, e := range entries {
		if !e.IsDir() && !referenced[e.Name()] {
			orphans = append(orphans, e.Name())
		}
	}
	return orphans
}

func pruneSessions(d *models.Document, now time.Time) int {
	cutoff := now.Add(-sessionMaxAge).Unix()
	n := 0
	for token, sess := range d.Sessions {
		if sess.Created < cutoff {
			delete(d.Sessions, token)
			n++
		}
	}
	return n
}

func pruneViewLog(d *models.Document, now time.Time) int {
	cutoff := now.Add(-viewLogMaxAge).Unix()
	n := 0
	for key, t := range d.ViewLog {
		if t < cutoff {
			delete(d.ViewLog, key)
			n++
		}
	}
	return n
}

func pruneNotifications(d *models.Document, now time.Time) map[string]int {
	cutoff := now.Add(-notificationMaxAge).Unix()
	pruned := make(map[string]int)
	for uid, notifs := range d.Notifications {
		kept := notifs[:0]
		for _, n := range notifs {
			if n.Created >= cutoff {
				kept = append(kept, n)
			}
		}
		if removed := len(notifs) - len(kept); removed > 0 {
			d.Notifications[uid] = kept
			pruned[uid] = removed
		}
	}
	return pruned
}

func pruneHistory(d *models.Document, now time.Time) map[string]int {
	cutoff := now.Add(-historyMaxAge).Unix()
	pruned := make(map[string]int)
	for uid, hist := range d.History {
		kept := hist[:0]
		for _, h := range hist {
			if h.Time >= cutoff {
				kept = append(kept, h)
			}
		}
		if removed := len(hist) - len(kept); removed > 0 {
			d.History[uid] = kept
			pruned[uid] = removed
		}
	}
	return pruned
}

// FreeDiskGB reports the free space of the filesystem holding dir.
func FreeDiskGB(dir string) (float64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, err
	}
	return float64(st.Bavail) * float64(st.Bsize) / (1 << 30), nil
}
