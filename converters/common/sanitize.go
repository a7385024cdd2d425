package common

import (
	"regexp"
	"strings"
)

var (
	leadingInvalid = regexp.MustCompile(`^[^A-Za-z_]+`)
	tagInvalid     = regexp.MustCompile(`[^A-Za-z0-9_:.-]`)
)

// SanitizeTag turns arbitrary text into an XML element name.
// Leading characters that cannot start a name are dropped and every other
// character outside [A-Za-z0-9_:.-] becomes '_'. The result may be empty.
func SanitizeTag(raw string) string {
	s := leadingInvalid.ReplaceAllString(raw, "")
	return tagInvalid.ReplaceAllString(s, "_")
}

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// FileComponent makes raw usable as a single path element: separators and
// ".." sequences become '_'.
func FileComponent(raw string) string {
	s := pathSeparators.Replace(raw)
	return strings.ReplaceAll(s, "..", "_")
}
