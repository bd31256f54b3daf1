package ranking

import (
	"cmp"
	"sort"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// CompareForDisplay orders names the way people expect to read them: accents
// are ignored, case is ignored, and when two letters differ only by case the
// lowercase one comes first. It returns -1, 0 or 1.
//
// This is an approximation of locale aware collation, not a full
// implementation.
func CompareForDisplay(a string, b string) int {
	ar := displayRunes(a)
	br := displayRunes(b)

	// Casers keep state and cannot be shared between goroutines
	folder := cases.Fold()

	for i := 0; i < len(ar) && i < len(br); i++ {
		if c := compareRunes(folder, ar[i], br[i]); c != 0 {
			return c
		}
	}

	return cmp.Compare(len(ar), len(br))
}

// SortForDisplay returns a sorted copy of names. Names that compare equal are
// ordered by their bytes.
func SortForDisplay(names []string) []string {
	result := make([]string, len(names))
	copy(result, names)

	sort.SliceStable(result, func(i, j int) bool {
		if c := CompareForDisplay(result[i], result[j]); c != 0 {
			return c < 0
		}
		return result[i] < result[j]
	})

	return result
}

func displayRunes(s string) []rune {
	result := make([]rune, 0, len(s))
	for _, r := range norm.NFD.String(s) {
		if r >= 0x300 && r <= 0x36F {
			continue
		}
		result = append(result, r)
	}
	return result
}

func compareRunes(folder cases.Caser, a rune, b rune) int {
	fa := folder.String(string(a))
	fb := folder.String(string(b))

	if fa != fb {
		return cmp.Compare(fa, fb)
	}

	if a != b && isASCIILower(fa) {
		// Lowercase first
		return -cmp.Compare(a, b)
	}

	return 0
}

func isASCIILower(s string) bool {
	if len(s) != 1 {
		return false
	}
	r := rune(s[0])
	return r <= unicode.MaxASCII && unicode.IsLower(r)
}
