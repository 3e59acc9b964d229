package metrics

import "math"

// ComputeEntropy implements the token-entropy and pattern-repetition
// measures consumed by the scoring pipeline's stage 3: a
// function's body is reduced to a token stream (identifiers and operator
// keywords), Shannon entropy over the token-frequency distribution is
// normalized to [0,1] by the theoretical maximum for the observed
// vocabulary size, and pattern_repetition is the fraction of 3-grams that
// are not unique (a cheap proxy for "this function is a repetitive,
// boilerplate-shaped body").
func ComputeEntropy(tokens []string) (tokenEntropy, patternRepetition float64) {
	if len(tokens) == 0 {
		return 1, 0
	}

	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}

	var shannon float64
	total := float64(len(tokens))
	for _, c := range counts {
		p := float64(c) / total
		shannon -= p * math.Log2(p)
	}

	maxShannon := math.Log2(float64(len(counts)))
	if maxShannon <= 0 {
		tokenEntropy = 0
	} else {
		tokenEntropy = shannon / maxShannon
	}

	if len(tokens) < 3 {
		return tokenEntropy, 0
	}
	grams := make(map[string]int)
	total3 := 0
	for i := 0; i+3 <= len(tokens); i++ {
		key := tokens[i] + "\x00" + tokens[i+1] + "\x00" + tokens[i+2]
		grams[key]++
		total3++
	}
	var repeated int
	for _, c := range grams {
		if c > 1 {
			repeated += c
		}
	}
	if total3 > 0 {
		patternRepetition = float64(repeated) / float64(total3)
	}
	return tokenEntropy, patternRepetition
}
