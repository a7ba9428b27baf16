package metrics

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Metrics contains the similarity scores for a single agent response
// measured against the instruction's expected output. JSON keys match
// the persisted report format.
type Metrics struct {
	ResponseLength    int      `json:"response_length"`
	ExpectedLength    int      `json:"expected_length"`
	LengthRatio       *float64 `json:"length_ratio,omitempty"`
	JaccardSimilarity float64  `json:"jaccard_similarity"`
	BLEUScore         float64  `json:"bleu_score"`
	ROUGE1            float64  `json:"rouge_1"`
	ROUGE2            float64  `json:"rouge_2"`
	ROUGEL            float64  `json:"rouge_l"`
	ResponseTime      float64  `json:"response_time"`
}

// Compute scores a response against the expected output. Lengths are
// Unicode character counts; LengthRatio is left unset when the expected
// output is empty. All similarity scores are deterministic functions of
// the two strings and stay within [0,1].
func Compute(expected, response string, elapsed time.Duration) Metrics {
	m := Metrics{
		ResponseLength: utf8.RuneCountInString(response),
		ExpectedLength: utf8.RuneCountInString(expected),
		ResponseTime:   elapsed.Seconds(),
	}

	if m.ExpectedLength > 0 {
		ratio := float64(m.ResponseLength) / float64(m.ExpectedLength)
		m.LengthRatio = &ratio
	}

	expTokens := strings.Fields(expected)
	respTokens := strings.Fields(response)

	m.JaccardSimilarity = clamp01(jaccard(response, expected))
	m.BLEUScore = clamp01(bleu(expTokens, respTokens))
	m.ROUGE1 = clamp01(rougeN(expTokens, respTokens, 1))
	m.ROUGE2 = clamp01(rougeN(expTokens, respTokens, 2))
	m.ROUGEL = clamp01(rougeL(expTokens, respTokens))

	return m
}

// jaccard compares the unique lowercased token sets of the two strings.
// An empty union yields 0, not 1.
func jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
