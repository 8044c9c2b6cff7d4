package harness

import (
	"strings"

	"github.com/google/uuid"
)

// maxNameLen bounds generated app names; the dashboard rejects longer ones.
const maxNameLen = 40

// UniqueName generates a globally unique app-name-safe identifier with the
// given prefix, so parallel runs against a shared deployment never collide.
func UniqueName(prefix string) string {
	id := uuid.NewString()[:8]
	base := SanitizeName(prefix)
	if len(base) > maxNameLen-len(id)-1 {
		// trim trailing dashes after the cut so the join never doubles one
		base = strings.TrimRight(base[:maxNameLen-len(id)-1], "-")
	}
	return base + "-" + id
}

// SanitizeName converts arbitrary text into a dashboard-safe app name:
// lowercase, [a-z0-9-] only, no leading/trailing or doubled dashes, length
// capped. empty input becomes "app".
func SanitizeName(s string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	name := strings.TrimRight(b.String(), "-")
	if len(name) > maxNameLen {
		name = strings.TrimRight(name[:maxNameLen], "-")
	}
	if name == "" {
		return "app"
	}
	return name
}
