package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	got := String()
	if !strings.HasPrefix(got, "labqc "+Version()) {
		t.Fatalf("String() = %q, want prefix with version %q", got, Version())
	}
}
