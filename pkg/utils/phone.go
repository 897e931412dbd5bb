package utils

import "strings"

// NormalizePhone converts a Bangladeshi phone number to local format.
// "+8801712345678" and "8801712345678" both become "01712345678"; numbers
// already in local format pass through unchanged.
func NormalizePhone(phone string) string {
	p := strings.TrimSpace(phone)
	switch {
	case strings.HasPrefix(p, "+880"):
		return "0" + p[len("+880"):]
	case strings.HasPrefix(p, "880"):
		return "0" + p[len("880"):]
	default:
		return p
	}
}
