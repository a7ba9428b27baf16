package metrics

// rougeN computes the ROUGE-N F1 score between the reference and
// candidate token sequences using clipped n-gram overlap.
func rougeN(reference, candidate []string, n int) float64 {
	refCounts := ngramCounts(reference, n)
	candCounts := ngramCounts(candidate, n)

	refTotal := 0
	for _, c := range refCounts {
		refTotal += c
	}
	candTotal := 0
	for _, c := range candCounts {
		candTotal += c
	}
	if refTotal == 0 || candTotal == 0 {
		return 0
	}

	overlap := 0
	for gram, count := range candCounts {
		if ref := refCounts[gram]; ref < count {
			overlap += ref
		} else {
			overlap += count
		}
	}

	precision := float64(overlap) / float64(candTotal)
	recall := float64(overlap) / float64(refTotal)
	return f1(precision, recall)
}

// rougeL computes the ROUGE-L F1 score from the longest common
// subsequence of the two token sequences.
func rougeL(reference, candidate []string) float64 {
	if len(reference) == 0 || len(candidate) == 0 {
		return 0
	}

	lcs := lcsLength(reference, candidate)
	precision := float64(lcs) / float64(len(candidate))
	recall := float64(lcs) / float64(len(reference))
	return f1(precision, recall)
}

// lcsLength runs the standard LCS dynamic program with a rolling row.
func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
