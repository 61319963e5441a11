// ABOUTME: Tests for version constants
// ABOUTME: Ensures version information is filled in and well formed
package version

import (
	"strconv"
	"strings"
	"testing"
)

func TestConstantsFilledIn(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Version", Version},
		{"Product", Product},
		{"Manufacturer", Manufacturer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" || len(tt.value) > 100 {
				t.Errorf("unexpected %s %q", tt.name, tt.value)
			}
			switch strings.ToUpper(tt.value) {
			case "TODO", "FIXME", "XXX", "PLACEHOLDER":
				t.Errorf("%s is a placeholder: %q", tt.name, tt.value)
			}
		})
	}
}

func TestVersionIsSemver(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Fatalf("expected major.minor.patch, got %q", Version)
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			t.Errorf("version part %q is not a number", p)
		}
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "tilegame-soundcore/"+Version {
		t.Errorf("unexpected user agent %q", got)
	}
}
