package artifact

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"xrefcanon/internal/fileutil"
)

// InventoryEntry summarizes the artifacts of one namespace version.
type InventoryEntry struct {
	Namespace string `json:"namespace"`
	Version   string `json:"version"`
	Files     int    `json:"files"`
	Bytes     int64  `json:"bytes"`
	TempFiles int    `json:"temp_files"`
}

// Inventory walks the cache root. A missing root yields no entries.
func (m *Manager) Inventory() ([]InventoryEntry, error) {
	byKey := make(map[[2]string]*InventoryEntry)
	err := filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(m.root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			return nil
		}
		key := [2]string{parts[0], parts[1]}
		entry, ok := byKey[key]
		if !ok {
			entry = &InventoryEntry{Namespace: parts[0], Version: parts[1]}
			byKey[key] = entry
		}
		if fileutil.IsTempFile(d.Name()) {
			entry.TempFiles++
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		entry.Files++
		entry.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]InventoryEntry, 0, len(byKey))
	for _, entry := range byKey {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}
		return out[i].Version < out[j].Version
	})
	return out, nil
}
