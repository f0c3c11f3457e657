package theme

import (
	"os"
	"path/filepath"
	"strings"
)

// Compile inlines the @import rules of css. Relative imports resolve against
// dir and fall back to the bundled file with the same base name. When
// nothing imported the level rules they are prepended, so every surface level
// is styled whatever the theme.
func Compile(css, dir string) string {
	c := &compiler{seen: make(map[string]bool)}
	out := c.inline(css, dir)
	if !c.levels {
		levels, _ := bundledFile(levelsPartial)
		out = "/* " + levelsPartial + " (bundled) */\n" + levels + "\n" + out
	}
	return out
}

type compiler struct {
	seen   map[string]bool
	levels bool
}

func (c *compiler) inline(css, dir string) string {
	return importRule.ReplaceAllStringFunc(css, func(rule string) string {
		target := importRule.FindStringSubmatch(rule)[1]
		return c.resolve(target, dir)
	})
}

// resolve returns the compiled content of one import.
func (c *compiler) resolve(target, dir string) string {
	file := target
	if !filepath.IsAbs(file) && dir != "" {
		file = filepath.Join(dir, target)
	}

	if dir != "" || filepath.IsAbs(file) {
		if data, err := os.ReadFile(file); err == nil {
			return c.include(target, "file:"+file, string(data), filepath.Dir(file))
		}
	}

	if data, ok := bundledFile(target); ok {
		return c.include(target, "bundled:"+filepath.Base(target), data, "")
	}
	return "/* missing import: " + target + " */"
}

func (c *compiler) include(target, key, css, dir string) string {
	if c.seen[key] {
		return "/* repeated import skipped: " + target + " */"
	}
	c.seen[key] = true
	if strings.EqualFold(filepath.Base(target), levelsPartial) {
		c.levels = true
	}
	return "/* " + target + " */\n" + c.inline(css, dir)
}
