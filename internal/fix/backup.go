package fix

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BackupManager snapshots files into .bringup/backups/<timestamp>/ before a
// fix overwrites them, preserving their path relative to the project root.
type BackupManager struct {
	root string
}

// NewBackupManager creates a manager for one project root.
func NewBackupManager(root string) *BackupManager {
	return &BackupManager{root: root}
}

func (b *BackupManager) backupDir(stamp string) string {
	return filepath.Join(b.root, ".bringup", "backups", stamp)
}

// Snapshot copies the given files (paths relative to the project root) into
// a fresh timestamped backup directory and returns its path. Files that do
// not exist yet are skipped: there is nothing to restore for them.
func (b *BackupManager) Snapshot(relPaths []string) (string, error) {
	stamp := time.Now().UTC().Format("20060102T150405.000")
	dir := b.backupDir(stamp)

	for _, rel := range relPaths {
		src := filepath.Join(b.root, rel)
		data, err := os.ReadFile(src)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("reading %s for backup: %w", rel, err)
		}

		dst := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return "", fmt.Errorf("creating backup dir: %w", err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return "", fmt.Errorf("writing backup of %s: %w", rel, err)
		}
	}

	return dir, nil
}

// Restore copies every file in a backup directory back over the project
// root.
func (b *BackupManager) Restore(backupDir string) error {
	return filepath.Walk(backupDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(backupDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading backup %s: %w", rel, err)
		}
		dst := filepath.Join(b.root, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
}
