package typoutil

// CalculateLevenshteinDistance computes the Levenshtein distance between two strings.
// It represents the minimum number of single-character edits (insertions, deletions, or substitutions)
// required to change one word into the other.
// This implementation properly handles Unicode characters by working with runes.
func CalculateLevenshteinDistance(a, b string) int {
	runesA := []rune(a)
	runesB := []rune(b)

	lenA := len(runesA)
	lenB := len(runesB)

	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// Two rolling rows are enough: row i only depends on row i-1.
	prevRow := FirstLevenshteinRow(runesB, nil)
	currRow := make([]int, lenB+1)

	for i := 1; i <= lenA; i++ {
		currRow, _ = NextLevenshteinRow(runesB, prevRow, runesA[i-1], currRow)
		prevRow, currRow = currRow, prevRow
	}

	return prevRow[lenB]
}

// FirstLevenshteinRow returns the distance row of the empty candidate against query,
// i.e. [0, 1, ..., len(query)]. dst is reused when it is large enough.
func FirstLevenshteinRow(query []rune, dst []int) []int {
	if cap(dst) < len(query)+1 {
		dst = make([]int, len(query)+1)
	}
	dst = dst[:len(query)+1]
	for j := range dst {
		dst[j] = j
	}
	return dst
}

// NextLevenshteinRow extends a candidate by one rune.
//
// prev holds the distances between the candidate and every prefix of query
// (prev[j] = distance(candidate, query[:j])). The returned row holds the same for
// candidate+r, so row[len(query)] is the full distance of the extended candidate.
// minimum is the smallest value in the row: no further extension of the candidate
// can get closer to query than that.
func NextLevenshteinRow(query []rune, prev []int, r rune, dst []int) (row []int, minimum int) {
	if cap(dst) < len(query)+1 {
		dst = make([]int, len(query)+1)
	}
	row = dst[:len(query)+1]

	row[0] = prev[0] + 1
	minimum = row[0]

	for j := 1; j <= len(query); j++ {
		cost := 0
		if query[j-1] != r {
			cost = 1
		}

		deletion := prev[j] + 1
		insertion := row[j-1] + 1
		substitution := prev[j-1] + cost

		row[j] = min3(deletion, insertion, substitution)
		if row[j] < minimum {
			minimum = row[j]
		}
	}

	return row, minimum
}

// min3 is a helper function to find the minimum of three integers
func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
