package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplateString(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantErr     bool
		checkLayout func(t *testing.T, config *LayoutConfig)
	}{
		{
			name: "simple entry with header and body",
			input: `<entry>
				<header>
					<icon />
					<summary />
				</header>
				<body />
			</entry>`,
			checkLayout: func(t *testing.T, config *LayoutConfig) {
				require.Len(t, config.Elements, 2)
				assert.Equal(t, ElementTypeHeader, config.Elements[0].Type)
				assert.Equal(t, ElementTypeBody, config.Elements[1].Type)

				header := config.Elements[0]
				require.Len(t, header.Children, 2)
				assert.Equal(t, ElementTypeIcon, header.Children[0].Type)
				assert.Equal(t, ElementTypeSummary, header.Children[1].Type)
				assert.Equal(t, 48, config.IconSize)
			},
		},
		{
			name: "box with orientation attribute",
			input: `<entry>
				<box orientation="vertical">
					<summary />
					<appname />
				</box>
			</entry>`,
			checkLayout: func(t *testing.T, config *LayoutConfig) {
				require.Len(t, config.Elements, 1)
				box := config.Elements[0]
				assert.Equal(t, ElementTypeBox, box.Type)
				assert.Equal(t, "vertical", box.Attr("orientation", "horizontal"))
				assert.Equal(t, "4", box.Attr("spacing", "4"))
				require.Len(t, box.Children, 2)
			},
		},
		{
			name: "sizing attributes",
			input: `<entry min-width="200" max-width="400px" max-height="120" icon-size="24">
				<summary />
			</entry>`,
			checkLayout: func(t *testing.T, config *LayoutConfig) {
				assert.Equal(t, 200, config.MinWidth)
				assert.Equal(t, 400, config.MaxWidth)
				assert.Equal(t, 120, config.MaxHeight)
				assert.Equal(t, 24, config.IconSize)
			},
		},
		{
			name:    "bad sizing attribute",
			input:   `<entry max-width="wide"><summary /></entry>`,
			wantErr: true,
		},
		{
			name: "unknown element",
			input: `<entry>
				<unknown-element />
			</entry>`,
			wantErr: true,
		},
		{
			name:    "wrong root",
			input:   `<popup><summary /></popup>`,
			wantErr: true,
		},
		{
			name:    "no root",
			input:   ``,
			wantErr: true,
		},
		{
			name:  "empty entry",
			input: `<entry></entry>`,
			checkLayout: func(t *testing.T, config *LayoutConfig) {
				assert.Empty(t, config.Elements)
			},
		},
		{
			name: "all element types",
			input: `<entry>
				<header />
				<body />
				<icon />
				<summary />
				<appname />
				<timestamp />
				<feedback />
				<close />
				<box />
			</entry>`,
			checkLayout: func(t *testing.T, config *LayoutConfig) {
				assert.Len(t, config.Elements, len(ValidElements))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseTemplateString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, config)
			if tt.checkLayout != nil {
				tt.checkLayout(t, config)
			}
		})
	}
}

func TestDefaultLayout(t *testing.T) {
	layout := DefaultLayout()
	require.NotNil(t, layout)
	require.NotEmpty(t, layout.Elements)

	assert.Equal(t, ElementTypeHeader, layout.Elements[0].Type)
	assert.True(t, layout.Contains(ElementTypeSummary))
	assert.True(t, layout.Contains(ElementTypeClose))
	assert.False(t, layout.Contains(ElementTypeFeedback))
}

func TestBundledTemplate(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		wantFound bool
	}{
		{"default", "default", true},
		{"compact", "compact", true},
		{"banner", "banner", true},
		{"nonexistent", "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, found := BundledTemplate(tt.template)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				require.NotNil(t, config)
				assert.NotEmpty(t, config.Elements)
				assert.True(t, config.Contains(ElementTypeSummary))
			}
		})
	}
}

func TestEmbeddedDefaultMatchesBuiltin(t *testing.T) {
	embedded, found := BundledTemplate("default")
	require.True(t, found)
	assert.Equal(t, DefaultLayout().IconSize, embedded.IconSize)
	assert.Equal(t, len(DefaultLayout().Elements), len(embedded.Elements))
}

func TestBundled(t *testing.T) {
	assert.Equal(t, []string{"banner", "compact", "default"}, Bundled())
}

func TestBundledTemplate_ReturnsCopies(t *testing.T) {
	first, found := BundledTemplate("default")
	require.True(t, found)
	first.IconSize = 1
	first.Elements[0].Type = ElementTypeFeedback

	second, found := BundledTemplate("default")
	require.True(t, found)
	assert.NotEqual(t, 1, second.IconSize)
	assert.NotEqual(t, ElementTypeFeedback, second.Elements[0].Type)
}

func TestLoader(t *testing.T) {
	loader := NewLoader(t.TempDir())

	config, err := loader.Load("default")
	require.NoError(t, err)
	assert.NotNil(t, config)

	_, err = loader.Load("unknown")
	assert.Error(t, err)

	config, err = loader.Load("")
	require.NoError(t, err)
	assert.NotNil(t, config)
}

func TestLoader_UserTemplateWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.xml"),
		[]byte(`<entry icon-size="12"><summary /></entry>`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.xml"),
		[]byte(`<entry><marquee /></entry>`), 0644))

	loader := NewLoader(dir)

	config, err := loader.Load("default")
	require.NoError(t, err)
	assert.Equal(t, 12, config.IconSize)
	require.Len(t, config.Elements, 1)

	_, err = loader.Load("broken")
	assert.ErrorContains(t, err, "broken.xml")
}

func TestLoader_List(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "compact.xml"),
		[]byte(`<entry><summary /></entry>`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tall.xml"),
		[]byte(`<entry><body /></entry>`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	templates, err := NewLoader(dir).List()
	require.NoError(t, err)

	var names []string
	for _, tmpl := range templates {
		names = append(names, tmpl.Name)
	}
	assert.Equal(t, []string{"banner", "compact", "default", "tall"}, names)
	assert.Equal(t, filepath.Join(dir, "compact.xml"), templates[1].Path)
	assert.True(t, templates[1].IsBundled)
	assert.False(t, templates[3].IsBundled)

	templates, err = NewLoader(filepath.Join(dir, "missing")).List()
	require.NoError(t, err)
	assert.Len(t, templates, 3)
}
