package validation

import (
	"fmt"
	"strings"
)

// suggestValue proposes the closest allowed value for an unknown one.
func suggestValue(unknown string, valid []string) string {
	if len(valid) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string
	for _, candidate := range valid {
		dist := levenshteinDistance(strings.ToLower(unknown), strings.ToLower(candidate))
		if dist < minDistance {
			minDistance = dist
			bestMatch = candidate
		}
	}

	// only suggest when fewer than half of the characters need changing
	if minDistance*2 < len(bestMatch) {
		return fmt.Sprintf("Did you mean '%s'? Allowed values: %s", bestMatch, strings.Join(valid, ", "))
	}
	return fmt.Sprintf("Change the value to one of: %s", strings.Join(valid, ", "))
}

func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
