package mappings

import (
	"strings"

	"golang.org/x/text/cases"
)

// CaseFold applies Unicode full case folding, so "Straße", "STRASSE" and
// "strasse" share one key.
func CaseFold(s string) string {
	return cases.Fold().String(s)
}

// Lower folds with strings.ToLower. It is cheaper than CaseFold and enough
// for ASCII keys.
func Lower(s string) string {
	return strings.ToLower(s)
}

// TrimSpace folds away leading and trailing white space.
func TrimSpace(s string) string {
	return strings.TrimSpace(s)
}

// Chain applies folders left to right.
func Chain[K comparable](folders ...Folder[K]) Folder[K] {
	return func(k K) K {
		for _, f := range folders {
			k = f(k)
		}
		return k
	}
}
