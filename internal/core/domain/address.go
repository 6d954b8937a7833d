package domain

import "strings"

// ParseAddress splits a state address into its type and name tokens.
// Handles index suffixes ("[0]", `["key"]`) and module prefixes; names may
// themselves contain dots.
func ParseAddress(address string) (declaredType, declaredName string) {
	if i := strings.IndexByte(address, '['); i > 0 {
		address = address[:i]
	}
	parts := strings.Split(address, ".")
	for len(parts) >= 4 && parts[0] == "module" {
		parts = parts[2:]
	}
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], ".")
}
