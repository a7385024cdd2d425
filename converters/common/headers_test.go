package common

import (
	"strings"
	"testing"
)

func TestHeaderNames(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"Plain", []string{"a", "b"}, []string{"a", "b"}},
		{"Empty", []string{"", "a", ""}, []string{"__EMPTY", "a", "__EMPTY_1"}},
		{"Duplicates", []string{"a", "a", "a"}, []string{"a", "a_1", "a_2"}},
		{"SuffixCollision", []string{"a", "a_1", "a"}, []string{"a", "a_1", "a_2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeaderNames(tt.raw)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("HeaderNames(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
