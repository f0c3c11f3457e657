package layout

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/entrystack/internal/config"
)

// ElementType identifies the type of layout element.
type ElementType string

const (
	ElementTypeHeader    ElementType = "header"
	ElementTypeBody      ElementType = "body"
	ElementTypeIcon      ElementType = "icon"
	ElementTypeSummary   ElementType = "summary"
	ElementTypeAppName   ElementType = "appname"
	ElementTypeTimestamp ElementType = "timestamp"
	ElementTypeFeedback  ElementType = "feedback"
	ElementTypeClose     ElementType = "close"
	ElementTypeBox       ElementType = "box"
)

// ValidElements lists all recognized element types.
var ValidElements = map[string]ElementType{
	"header":    ElementTypeHeader,
	"body":      ElementTypeBody,
	"icon":      ElementTypeIcon,
	"summary":   ElementTypeSummary,
	"appname":   ElementTypeAppName,
	"timestamp": ElementTypeTimestamp,
	"feedback":  ElementTypeFeedback,
	"close":     ElementTypeClose,
	"box":       ElementTypeBox,
}

// rootElement is the required root of every template.
const rootElement = "entry"

// ErrNoRoot is returned for templates without an <entry> root.
var ErrNoRoot = errors.New("template has no <entry> root element")

// LayoutConfig is a parsed entry layout ready for widget building.
type LayoutConfig struct {
	// Entry sizing, 0 means the surface width decides.
	MinWidth  int
	MaxWidth  int
	MinHeight int
	MaxHeight int
	// IconSize is the pixel size of the icon element.
	IconSize int
	Elements []LayoutElement
}

// LayoutElement is a single element in the layout tree.
type LayoutElement struct {
	Type       ElementType
	Attributes map[string]string
	Children   []LayoutElement
}

// Attr returns the named attribute or def when it is missing.
func (e LayoutElement) Attr(name, def string) string {
	if v, ok := e.Attributes[name]; ok {
		return v
	}
	return def
}

// Contains reports whether the tree rooted at the layout has an element of
// type t.
func (c *LayoutConfig) Contains(t ElementType) bool {
	return containsType(c.Elements, t)
}

func containsType(elements []LayoutElement, t ElementType) bool {
	for _, e := range elements {
		if e.Type == t || containsType(e.Children, t) {
			return true
		}
	}
	return false
}

// ParseTemplate parses an XML layout template from a reader.
func ParseTemplate(r io.Reader) (*LayoutConfig, error) {
	decoder := xml.NewDecoder(r)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil, ErrNoRoot
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != rootElement {
			return nil, fmt.Errorf("unexpected root element %q: %w", se.Name.Local, ErrNoRoot)
		}

		config := LayoutConfig{IconSize: 48}
		for _, attr := range se.Attr {
			var target *int
			switch attr.Name.Local {
			case "min-width":
				target = &config.MinWidth
			case "max-width":
				target = &config.MaxWidth
			case "min-height":
				target = &config.MinHeight
			case "max-height":
				target = &config.MaxHeight
			case "icon-size":
				target = &config.IconSize
			default:
				continue
			}
			v, err := parsePixelValue(attr.Value)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", attr.Name.Local, err)
			}
			*target = v
		}

		elements, err := parseElements(decoder)
		if err != nil {
			return nil, err
		}
		config.Elements = elements
		return &config, nil
	}
}

// parsePixelValue parses a pixel value string (e.g., "300", "300px") to int.
func parsePixelValue(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, fmt.Errorf("invalid pixel value %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("pixel value cannot be negative: %d", v)
	}
	return v, nil
}

// parseElements recursively parses child elements up to the parent's end tag.
func parseElements(decoder *xml.Decoder) ([]LayoutElement, error) {
	var elements []LayoutElement

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return elements, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read element: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			elemName := strings.ToLower(t.Name.Local)
			elemType, ok := ValidElements[elemName]
			if !ok {
				return nil, fmt.Errorf("unknown element type: %s", elemName)
			}

			elem := LayoutElement{
				Type:       elemType,
				Attributes: make(map[string]string),
			}
			for _, attr := range t.Attr {
				elem.Attributes[attr.Name.Local] = attr.Value
			}

			children, err := parseElements(decoder)
			if err != nil {
				return nil, err
			}
			elem.Children = children

			elements = append(elements, elem)

		case xml.EndElement:
			return elements, nil
		}
	}
}

// ParseTemplateString parses a template from a string.
func ParseTemplateString(s string) (*LayoutConfig, error) {
	return ParseTemplate(strings.NewReader(s))
}

// LoadTemplate loads a template from file.
func LoadTemplate(path string) (*LayoutConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer func() { _ = f.Close() }()

	config, err := ParseTemplate(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return config, nil
}

// Loader resolves layout templates from the user directory and the
// embedded set.
type Loader struct {
	templatesDir string
}

// NewLoader creates a loader for templatesDir. An empty directory means the
// default user layouts directory.
func NewLoader(templatesDir string) *Loader {
	if templatesDir == "" {
		templatesDir = config.LayoutsDir()
	}
	return &Loader{templatesDir: templatesDir}
}

// Load loads a layout template by name. The user directory wins over the
// embedded templates, and an empty name means "default".
func (l *Loader) Load(name string) (*LayoutConfig, error) {
	if name == "" {
		name = "default"
	}

	if l.templatesDir != "" {
		templatePath := filepath.Join(l.templatesDir, name+".xml")
		if _, err := os.Stat(templatePath); err == nil {
			return LoadTemplate(templatePath)
		}
	}

	if tmpl, found := BundledTemplate(name); found {
		return tmpl, nil
	}

	return nil, fmt.Errorf("layout template not found: %s", name)
}

// TemplateInfo describes a layout template available to the loader.
type TemplateInfo struct {
	Name      string
	Path      string // empty for bundled templates
	IsBundled bool
}

// List returns the bundled templates followed by the user templates. A user
// template named like a bundled one overrides it and is listed once.
func (l *Loader) List() ([]TemplateInfo, error) {
	var templates []TemplateInfo
	index := make(map[string]int)
	for _, name := range Bundled() {
		index[name] = len(templates)
		templates = append(templates, TemplateInfo{Name: name, IsBundled: true})
	}

	if l.templatesDir == "" {
		return templates, nil
	}
	entries, err := os.ReadDir(l.templatesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return templates, nil
		}
		return templates, err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".xml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".xml")
		path := filepath.Join(l.templatesDir, entry.Name())
		if i, ok := index[name]; ok {
			templates[i].Path = path
			continue
		}
		index[name] = len(templates)
		templates = append(templates, TemplateInfo{Name: name, Path: path})
	}
	return templates, nil
}

// DefaultLayout returns the built-in entry layout used when no template
// can be loaded.
func DefaultLayout() *LayoutConfig {
	return &LayoutConfig{
		IconSize: 48,
		Elements: []LayoutElement{
			{
				Type: ElementTypeHeader,
				Children: []LayoutElement{
					{Type: ElementTypeIcon},
					{
						Type: ElementTypeBox,
						Attributes: map[string]string{
							"orientation": "vertical",
						},
						Children: []LayoutElement{
							{Type: ElementTypeSummary},
							{Type: ElementTypeAppName},
						},
					},
					{Type: ElementTypeTimestamp},
					{Type: ElementTypeClose},
				},
			},
			{Type: ElementTypeBody},
		},
	}
}
