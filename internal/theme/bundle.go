package theme

import (
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed themes/*.css
var bundle embed.FS

// DefaultThemeName is the theme used when none is configured or the
// configured one cannot be found.
const DefaultThemeName = "default"

// levelsPartial holds the per-level rules every stylesheet ends up with.
const levelsPartial = "_levels.css"

// bundledFile returns the content of a file shipped in themes/.
func bundledFile(name string) (string, bool) {
	data, err := fs.ReadFile(bundle, path.Join("themes", path.Base(name)))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// isPartial reports whether a stylesheet file is only meant to be imported.
func isPartial(file string) bool {
	return strings.HasPrefix(path.Base(file), "_")
}

// Bundled returns the names of the shipped themes in sorted order.
func Bundled() []string {
	entries, err := fs.ReadDir(bundle, "themes")
	if err != nil {
		return []string{DefaultThemeName}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || isPartial(e.Name()) {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), ".css"); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// IsBundled reports whether name is a shipped theme.
func IsBundled(name string) bool {
	return name != "" && !isPartial(name) && slices.Contains(Bundled(), name)
}
