// Package azureid contains pure helpers for picking apart and normalising
// Azure resource identifiers so that differently-styled names (casing,
// hyphens, underscores) can still be correlated.
package azureid

import "strings"

// Normalize lower-cases a name and strips every character outside [a-z0-9].
// It is total over any input and idempotent.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeID canonicalises a full resource ID for exact comparison:
// lower-cased with trailing slashes trimmed.
func NormalizeID(id string) string {
	return strings.TrimRight(strings.ToLower(id), "/")
}

// NameFromID returns the last path segment of a resource ID, which by Azure
// convention is the resource name. Empty input yields an empty string.
func NameFromID(id string) string {
	if id == "" {
		return ""
	}
	parts := strings.Split(id, "/")
	return parts[len(parts)-1]
}

// TypeFromID extracts "{provider}/{type}" from a fully qualified resource ID,
// e.g. "Microsoft.Storage/storageAccounts" from
// "/subscriptions/S/resourceGroups/RG/providers/Microsoft.Storage/storageAccounts/name".
// Returns an empty string when the ID does not carry a providers segment.
func TypeFromID(id string) string {
	parts := strings.Split(id, "/")
	for i, p := range parts {
		if strings.EqualFold(p, "providers") && i+2 < len(parts) {
			return parts[i+1] + "/" + parts[i+2]
		}
	}
	return ""
}

// TypeToken reduces an Azure type string to the token used for the
// type-hint tie-break: lower-cased, "microsoft." prefix dropped, slashes
// removed. "Microsoft.Storage/storageAccounts" becomes
// "storagestorageaccounts".
func TypeToken(azureType string) string {
	t := strings.ToLower(azureType)
	t = strings.TrimPrefix(t, "microsoft.")
	return strings.ReplaceAll(t, "/", "")
}
