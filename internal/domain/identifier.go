package domain

import "strings"

// PartialSymbolIdentifier is a raw instrument reference from a broker line,
// optionally restricted to a set of asset classes or sub-classes. It is kept on
// a Holding as a long-lived tag so later runs can re-resolve the instrument.
type PartialSymbolIdentifier struct {
	Identifier             string          `json:"identifier"`
	AllowedAssetClasses    []AssetClass    `json:"allowedAssetClasses,omitempty"`
	AllowedAssetSubClasses []AssetSubClass `json:"allowedAssetSubClasses,omitempty"`
}

// NewIdentifier creates an unrestricted PartialSymbolIdentifier.
func NewIdentifier(text string) PartialSymbolIdentifier {
	return PartialSymbolIdentifier{Identifier: text}
}

// SameIdentifier reports value equality by identifier text only; the class
// filters narrow matching but do not distinguish identifiers.
func (p PartialSymbolIdentifier) SameIdentifier(other PartialSymbolIdentifier) bool {
	return p.Identifier == other.Identifier
}

// AllowsProfile reports whether the identifier's class filters admit the given
// profile. Nil filters admit everything.
func (p PartialSymbolIdentifier) AllowsProfile(profile SymbolProfile) bool {
	if p.AllowedAssetClasses != nil && !containsClass(p.AllowedAssetClasses, profile.AssetClass) {
		return false
	}
	if p.AllowedAssetSubClasses != nil && !containsSubClass(p.AllowedAssetSubClasses, profile.AssetSubClass) {
		return false
	}
	return true
}

func containsClass(classes []AssetClass, c AssetClass) bool {
	for _, ac := range classes {
		if ac == c {
			return true
		}
	}
	return false
}

func containsSubClass(classes []AssetSubClass, c AssetSubClass) bool {
	for _, sc := range classes {
		if sc == c {
			return true
		}
	}
	return false
}

// MergeIdentifiers unions two identifier sets, preserving the order of the
// first and appending unseen identifiers from the second.
func MergeIdentifiers(a, b []PartialSymbolIdentifier) []PartialSymbolIdentifier {
	merged := make([]PartialSymbolIdentifier, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a))
	for _, id := range a {
		if !seen[id.Identifier] {
			seen[id.Identifier] = true
			merged = append(merged, id)
		}
	}
	for _, id := range b {
		if !seen[id.Identifier] {
			seen[id.Identifier] = true
			merged = append(merged, id)
		}
	}
	return merged
}

// IdentifiersOverlap reports whether the two sets share at least one identifier text.
func IdentifiersOverlap(a, b []PartialSymbolIdentifier) bool {
	for _, x := range a {
		for _, y := range b {
			if x.SameIdentifier(y) {
				return true
			}
		}
	}
	return false
}

// NormalizeSymbol upper-cases a symbol and strips dashes, the comparison form
// used for cross-provider instrument equality.
func NormalizeSymbol(s string) string {
	return strings.ReplaceAll(strings.ToUpper(s), "-", "")
}
