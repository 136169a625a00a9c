package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Extensions lists the file types the transport can decode.
var Extensions = []string{".mp3", ".ogg", ".wav"}

// IsSupported reports whether name has a playable extension.
func IsSupported(name string) bool {
	return lo.Contains(Extensions, strings.ToLower(filepath.Ext(name)))
}

// ScanTracks returns the playable files in dir sorted by file name.
// Unsupported and unreadable files are skipped. A missing directory is
// reported as an error with an empty list.
func ScanTracks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	names := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		if e.IsDir() || !IsSupported(e.Name()) {
			return "", false
		}
		return e.Name(), readable(filepath.Join(dir, e.Name()))
	})
	sort.Strings(names)

	return lo.Map(names, func(name string, _ int) string {
		return filepath.Join(dir, name)
	}), nil
}

func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
