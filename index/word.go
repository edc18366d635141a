package index

import "sort"

// Word is a term returned by a prefix or near query.
// Distance is the edit distance to the near query; it is 0 for exact and prefix results.
type Word struct {
	Value    string `json:"value"`
	Distance int    `json:"distance"`
}

// sortByDistance orders words by ascending distance, keeping traversal order among ties.
func sortByDistance(words []Word) {
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].Distance < words[j].Distance
	})
}
