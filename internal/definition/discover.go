package definition

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"automix/internal/services"
)

// ClipExtensions lists the audio file extensions picked up from directories.
var ClipExtensions = []string{".mp3", ".wav", ".aif", ".aiff", ".flac"}

// DiscoverClips turns command line clip arguments into named clips. A
// directory contributes every audio file directly inside it, named after the
// file stem. A file is named after the alias at the same position among the
// file arguments, or after its stem when no alias remains.
func DiscoverClips(paths, aliases []string) (map[string]string, error) {
	clips := make(map[string]string)
	fileIndex := 0
	for _, p := range paths {
		absolute, err := filepath.Abs(p)
		if err != nil {
			return nil, services.Wrap(services.ErrSourceUnreadable, "clips", "resolve path", p, err)
		}
		info, err := os.Stat(absolute)
		if err != nil {
			return nil, services.Wrap(services.ErrSourceUnreadable, "clips", "stat", absolute, err)
		}
		if info.IsDir() {
			found, err := scanDir(absolute)
			if err != nil {
				return nil, err
			}
			for name, location := range found {
				clips[name] = location
			}
			continue
		}
		name := ClipName(absolute)
		if fileIndex < len(aliases) && strings.TrimSpace(aliases[fileIndex]) != "" {
			name = norm.NFC.String(strings.TrimSpace(aliases[fileIndex]))
		}
		fileIndex++
		clips[name] = absolute
	}
	return clips, nil
}

// ClipName derives a clip name from a file path.
func ClipName(path string) string {
	base := filepath.Base(path)
	return norm.NFC.String(strings.TrimSuffix(base, filepath.Ext(base)))
}

// IsClipFile reports whether path has a supported audio extension.
func IsClipFile(path string) bool {
	return slices.Contains(ClipExtensions, strings.ToLower(filepath.Ext(path)))
}

func scanDir(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnreadable, "clips", "read dir", dir, err)
	}
	clips := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !IsClipFile(entry.Name()) {
			continue
		}
		name := ClipName(entry.Name())
		if existing, ok := clips[name]; ok {
			return nil, services.Wrap(services.ErrDefinition, "clips", "scan", fmt.Sprintf("clip %q matches both %s and %s", name, filepath.Base(existing), entry.Name()), nil)
		}
		clips[name] = filepath.Join(dir, entry.Name())
	}
	return clips, nil
}
