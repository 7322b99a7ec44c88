// Package typoutil finds indexed terms that are within a small edit distance
// of a query term.
package typoutil

// Distance returns the Damerau-Levenshtein distance between a and b, counting
// insertions, deletions, substitutions and adjacent transpositions. It works
// on runes. When the distance is known to exceed limit, limit+1 is returned
// early; a negative limit disables the cut-off.
func Distance(a, b string, limit int) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	if limit >= 0 && abs(la-lb) > limit {
		return limit + 1
	}
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// three rolling rows: i-2, i-1, i
	twoBack := make([]int, lb+1)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		rowMin := i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d = min(d, twoBack[j-2]+cost)
			}
			curr[j] = d
			rowMin = min(rowMin, d)
		}
		if limit >= 0 && rowMin > limit {
			return limit + 1
		}
		twoBack, prev, curr = prev, curr, twoBack
	}
	return prev[lb]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
