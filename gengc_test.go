// ABOUTME: Tests for the root package

package gengc_test

import (
	"strings"
	"testing"

	"github.com/prateek/gengc"
)

func TestVersion(t *testing.T) {
	if gengc.Version == "" {
		t.Error("Version constant should not be empty")
	}
	if !strings.HasPrefix(gengc.Version, "0.") {
		t.Errorf("Version should start with %q, got %q", "0.", gengc.Version)
	}
}
