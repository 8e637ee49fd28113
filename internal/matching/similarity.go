// Package matching scores lost-item reports against found items and records
// the qualifying matches.
package matching

import "strings"

// EditDistance returns the Levenshtein distance between a and b, counted in runes.
func EditDistance(a, b string) int {
	s1, s2 := []rune(a), []rune(b)

	// d has len(s2)+1 rows and len(s1)+1 columns.
	d := make([][]int, len(s2)+1)
	for i := range d {
		d[i] = make([]int, len(s1)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}

	for i := 1; i <= len(s2); i++ {
		for j := 1; j <= len(s1); j++ {
			cost := 1
			if s2[i-1] == s1[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
		}
	}
	return d[len(s2)][len(s1)]
}

// Similarity returns how alike two strings are, from 0 (nothing in common
// relative to their length) to 1 (equal after trimming and case folding).
// An empty string on either side is never similar to anything.
func Similarity(a, b string) float64 {
	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))
	if s1 == "" || s2 == "" {
		return 0
	}
	if s1 == s2 {
		return 1
	}

	longest := max(len([]rune(s1)), len([]rune(s2)))
	return max(0, 1-float64(EditDistance(s1, s2))/float64(longest))
}
