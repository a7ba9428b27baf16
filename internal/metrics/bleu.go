package metrics

import (
	"math"
	"strings"
)

const bleuMaxOrder = 4

// bleu computes a smoothed sentence-level BLEU of the candidate against a
// single reference, with uniform weights over 1..4-grams and the standard
// brevity penalty. Orders above 1 use add-one smoothing so that short
// references with no higher-order overlap do not collapse the whole score
// to zero; a score of 0 therefore means no unigram overlap at all.
func bleu(reference, candidate []string) float64 {
	if len(reference) == 0 || len(candidate) == 0 {
		return 0
	}

	logSum := 0.0
	for n := 1; n <= bleuMaxOrder; n++ {
		matches, total := clippedMatches(reference, candidate, n)

		var precision float64
		if n == 1 {
			if matches == 0 {
				return 0
			}
			precision = float64(matches) / float64(total)
		} else {
			precision = float64(matches+1) / float64(total+1)
		}
		logSum += math.Log(precision) / bleuMaxOrder
	}

	bp := 1.0
	if len(candidate) < len(reference) {
		bp = math.Exp(1 - float64(len(reference))/float64(len(candidate)))
	}

	return bp * math.Exp(logSum)
}

// clippedMatches counts candidate n-grams that also occur in the reference,
// clipping each n-gram's count at its reference frequency.
func clippedMatches(reference, candidate []string, n int) (matches, total int) {
	refCounts := ngramCounts(reference, n)
	for gram, count := range ngramCounts(candidate, n) {
		total += count
		if ref := refCounts[gram]; ref < count {
			matches += ref
		} else {
			matches += count
		}
	}
	return matches, total
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	return counts
}
