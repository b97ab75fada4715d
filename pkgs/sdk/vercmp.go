package sdk

import (
	"cmp"
	"strconv"
)

// releaseNumbers returns the leading dotted numbers of a release string.
// "3.0.5u3" gives [3 0 5] and "3.1" gives [3 1 0].
func releaseNumbers(s string) [3]int {
	var n [3]int
	for i := range n {
		end := 0
		for end < len(s) && isDigit(s[end]) {
			end++
		}
		if end == 0 {
			break
		}
		n[i], _ = strconv.Atoi(s[:end])
		if end == len(s) || s[end] != '.' {
			break
		}
		s = s[end+1:]
	}
	return n
}

// compareReleases orders release strings by their numbers. Update and build
// suffixes are ignored.
func compareReleases(a, b string) int {
	na, nb := releaseNumbers(a), releaseNumbers(b)
	for i := range na {
		if c := cmp.Compare(na[i], nb[i]); c != 0 {
			return c
		}
	}
	return 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
