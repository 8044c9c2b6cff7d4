package harness

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var validName = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Cool App!", "my-cool-app"},
		{"e2e-files", "e2e-files"},
		{"--weird--input--", "weird-input"},
		{"ALL CAPS", "all-caps"},
		{"émoji 🎉 app", "moji-app"},
		{"", "app"},
		{"!!!", "app"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestSanitizeName_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "in")
		out := SanitizeName(in)

		if !validName.MatchString(out) {
			t.Fatalf("invalid name %q from %q", out, in)
		}
		if len(out) > maxNameLen {
			t.Fatalf("name %q exceeds %d chars", out, maxNameLen)
		}
		// sanitization is idempotent
		if again := SanitizeName(out); again != out {
			t.Fatalf("not idempotent: %q -> %q", out, again)
		}
	})
}

func TestUniqueName(t *testing.T) {
	a := UniqueName("e2e-dashboard")
	b := UniqueName("e2e-dashboard")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "e2e-dashboard-"))
	assert.True(t, validName.MatchString(a), "generated name %q", a)
	assert.LessOrEqual(t, len(a), maxNameLen)
}

func TestUniqueName_LongPrefixStaysBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.StringN(1, 120, -1).Draw(t, "prefix")
		name := UniqueName(prefix)
		if len(name) > maxNameLen {
			t.Fatalf("name %q exceeds %d chars (prefix %q)", name, maxNameLen, prefix)
		}
		if !validName.MatchString(name) {
			t.Fatalf("invalid name %q (prefix %q)", name, prefix)
		}
	})
}

func TestUniqueName_TruncationAtDash(t *testing.T) {
	// the truncation point lands exactly on the dash before "final"; the
	// join with the id must not produce a doubled dash
	prefix := strings.Repeat("x", 30) + "-final"
	name := UniqueName(prefix)

	assert.LessOrEqual(t, len(name), maxNameLen)
	assert.True(t, validName.MatchString(name), "generated name %q", name)
	assert.NotContains(t, name, "--")
}

func TestHasClass(t *testing.T) {
	assert.True(t, HasClass("app-card selected", "selected"))
	assert.False(t, HasClass("panel-collapsed", "collapsed"))
	assert.False(t, HasClass("", "selected"))
	assert.True(t, HasClass("  a   b  ", "b"))
}
