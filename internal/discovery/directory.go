package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/soltools/sol-viewer/constants"
)

// Candidate is a vault file found on disk, before ingestion.
type Candidate struct {
	Path     string
	Filename string
	Size     int64
}

// FindVaultFiles recursively collects .sol files under roots whose
// lowercased filename contains nameFilter (empty filter matches all).
// Missing roots are skipped silently; discovery is best-effort.
func FindVaultFiles(roots []string, nameFilter string) ([]Candidate, error) {
	var found []Candidate
	filter := strings.ToLower(nameFilter)

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				// unreadable subtree: skip it, keep walking the rest
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !matches(path, filter) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			found = append(found, Candidate{
				Path:     path,
				Filename: d.Name(),
				Size:     info.Size(),
			})
			return nil
		})
		if err != nil {
			return found, err
		}
	}
	return found, nil
}

func matches(path, filter string) bool {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return false
	}
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(filepath.Base(path)), filter)
}
