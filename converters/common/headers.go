package common

import "strconv"

// HeaderNames turns a raw header row into unique keys. Empty headers
// become __EMPTY, __EMPTY_1, ... and repeated names get a _1, _2 suffix.
func HeaderNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	counts := make(map[string]int)
	for i, h := range raw {
		base := h
		if base == "" {
			base = "__EMPTY"
		}
		name := base
		if seen[name] {
			n := counts[base]
			for seen[name] {
				n++
				name = base + "_" + strconv.Itoa(n)
			}
			counts[base] = n
		}
		seen[name] = true
		names[i] = name
	}
	return names
}
