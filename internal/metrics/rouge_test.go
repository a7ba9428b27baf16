package metrics

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRougeNIdentical(t *testing.T) {
	tokens := strings.Fields("the cat sat on the mat")
	if got := rougeN(tokens, tokens, 1); got != 1.0 {
		t.Errorf("rouge-1 = %f, want 1.0", got)
	}
	if got := rougeN(tokens, tokens, 2); got != 1.0 {
		t.Errorf("rouge-2 = %f, want 1.0", got)
	}
}

func TestRougeNPartialOverlap(t *testing.T) {
	ref := strings.Fields("the cat sat")
	cand := strings.Fields("the dog sat")
	// 2 of 3 unigrams overlap in both directions: P = R = F1 = 2/3.
	got := rougeN(ref, cand, 1)
	if !almostEqual(got, 2.0/3.0) {
		t.Errorf("rouge-1 = %f, want %f", got, 2.0/3.0)
	}
}

func TestRougeNTooShortForBigrams(t *testing.T) {
	if got := rougeN(strings.Fields("word"), strings.Fields("word"), 2); got != 0 {
		t.Errorf("rouge-2 = %f, want 0 for single-token inputs", got)
	}
}

func TestRougeLIdentical(t *testing.T) {
	tokens := strings.Fields("add two numbers and return the sum")
	if got := rougeL(tokens, tokens); got != 1.0 {
		t.Errorf("rouge-l = %f, want 1.0", got)
	}
}

func TestRougeLSubsequence(t *testing.T) {
	ref := strings.Fields("a b c d")
	cand := strings.Fields("a c d")
	// LCS = 3: P = 3/3, R = 3/4, F1 = 6/7.
	got := rougeL(ref, cand)
	if !almostEqual(got, 6.0/7.0) {
		t.Errorf("rouge-l = %f, want %f", got, 6.0/7.0)
	}
}

func TestRougeLNoOverlap(t *testing.T) {
	ref := strings.Fields("x y z")
	cand := strings.Fields("p q r")
	if got := rougeL(ref, cand); got != 0 {
		t.Errorf("rouge-l = %f, want 0", got)
	}
}

func TestLCSLength(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"a b c d e", "b d e", 3},
		{"a b c", "c b a", 1},
		{"x", "x", 1},
		{"a a b", "a b a", 2},
	}
	for _, tc := range cases {
		got := lcsLength(strings.Fields(tc.a), strings.Fields(tc.b))
		if got != tc.want {
			t.Errorf("lcsLength(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
