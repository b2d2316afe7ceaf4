// Package tagname derives display labels from raw tag strings.
package tagname

import "strings"

// Marker is the leading character of an inline tag.
const Marker = "#"

// Basename returns the part of tag after the last '/', or tag itself when it
// contains no '/'.
func Basename(tag string) string {
	return tag[strings.LastIndex(tag, "/")+1:]
}

// Label returns the pill text for tag: its basename with every marker removed.
func Label(tag string) string {
	return strings.ReplaceAll(Basename(tag), Marker, "")
}
