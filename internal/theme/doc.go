// Package theme loads the CSS applied to entry surfaces and reloads it when
// the file changes. Themes are looked up in $XDG_CONFIG_HOME/entrystack/themes
// first, then among the bundled ones.
package theme
