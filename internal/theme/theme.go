package theme

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// importRule matches @import "x.css"; @import 'x.css'; and @import url("x.css");
var importRule = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a stylesheet with its imports inlined and the level rules
// guaranteed present.
type Theme struct {
	Name    string
	Path    string // empty for bundled themes
	CSS     string
	ModTime time.Time
}

// Bundled reports whether the theme was read from the binary.
func (t *Theme) Bundled() bool {
	return t.Path == ""
}

// Load reads the theme file at path.
func Load(name, path string) (*Theme, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Theme{
		Name:    name,
		Path:    path,
		CSS:     Compile(string(css), filepath.Dir(path)),
		ModTime: info.ModTime(),
	}, nil
}

// loadBundled returns the shipped theme called name.
func loadBundled(name string) (*Theme, bool) {
	css, ok := bundledFile(name + ".css")
	if !ok || isPartial(name) {
		return nil, false
	}
	return &Theme{Name: name, CSS: Compile(css, "")}, true
}

// Reload rereads a theme file and reports whether its stylesheet changed.
// Bundled themes never change.
func (t *Theme) Reload() (bool, error) {
	if t.Bundled() {
		return false, nil
	}
	fresh, err := Load(t.Name, t.Path)
	if err != nil {
		return false, err
	}
	changed := fresh.CSS != t.CSS
	t.CSS, t.ModTime = fresh.CSS, fresh.ModTime
	return changed, nil
}

// Resolve finds a theme by name. A file in themesDir wins over a bundled
// theme of the same name, and unknown names fall back to the default theme
// with found set to false. err reports a user theme that exists but could
// not be read.
func Resolve(themesDir, name string) (theme *Theme, found bool, err error) {
	if name == "" {
		name = DefaultThemeName
	}

	if themesDir != "" && !isPartial(name) {
		theme, err = Load(name, filepath.Join(themesDir, name+".css"))
		if err == nil {
			return theme, true, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			err = nil
		}
	}

	if theme, ok := loadBundled(name); ok {
		return theme, true, err
	}
	theme, _ = loadBundled(DefaultThemeName)
	return theme, false, err
}

// Info describes a theme that can be selected.
type Info struct {
	Name    string
	Path    string // user file, also set when it overrides a bundled theme
	Bundled bool
}

// IsDefault reports whether the theme is used when none is configured.
func (i Info) IsDefault() bool {
	return i.Name == DefaultThemeName
}

// Available lists the bundled themes followed by the user themes in
// themesDir. A user file named like a bundled theme sets that entry's Path
// instead of being listed twice. A missing directory is not an error.
func Available(themesDir string) ([]Info, error) {
	var themes []Info
	index := make(map[string]int)
	for _, name := range Bundled() {
		index[name] = len(themes)
		themes = append(themes, Info{Name: name, Bundled: true})
	}

	entries, err := os.ReadDir(themesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return themes, nil
		}
		return themes, err
	}

	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".css")
		if e.IsDir() || !ok || isPartial(e.Name()) {
			continue
		}
		file := filepath.Join(themesDir, e.Name())
		if i, exists := index[name]; exists {
			themes[i].Path = file
			continue
		}
		index[name] = len(themes)
		themes = append(themes, Info{Name: name, Path: file})
	}
	return themes, nil
}
