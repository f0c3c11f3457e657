package layout

import (
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
)

//go:embed templates/*.xml
var bundle embed.FS

// bundled caches parsed bundled templates; a nil value marks one that
// failed to parse.
var bundled sync.Map

// Bundled returns the names of the shipped templates in sorted order.
func Bundled() []string {
	entries, _ := fs.ReadDir(bundle, "templates")
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".xml"); ok && !e.IsDir() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// BundledTemplate returns a shipped template by name. Each call returns a
// fresh copy so callers may not alter the cached one.
func BundledTemplate(name string) (*LayoutConfig, bool) {
	if v, ok := bundled.Load(name); ok {
		return cloneLayout(v.(*LayoutConfig))
	}
	data, err := fs.ReadFile(bundle, path.Join("templates", path.Base(name)+".xml"))
	if err != nil {
		return nil, false
	}
	cfg, err := ParseTemplateString(string(data))
	if err != nil {
		cfg = nil
	}
	bundled.Store(name, cfg)
	return cloneLayout(cfg)
}

func cloneLayout(c *LayoutConfig) (*LayoutConfig, bool) {
	if c == nil {
		return nil, false
	}
	out := *c
	out.Elements = cloneElements(c.Elements)
	return &out, true
}

func cloneElements(elems []LayoutElement) []LayoutElement {
	if elems == nil {
		return nil
	}
	out := make([]LayoutElement, len(elems))
	for i, e := range elems {
		out[i] = e
		if e.Attributes != nil {
			out[i].Attributes = make(map[string]string, len(e.Attributes))
			for k, v := range e.Attributes {
				out[i].Attributes[k] = v
			}
		}
		out[i].Children = cloneElements(e.Children)
	}
	return out
}
