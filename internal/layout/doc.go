// Package layout parses the XML templates that describe how an entry's
// widgets are arranged. Templates are looked up in the user layouts
// directory first, then among the embedded ones.
package layout
