// Package postprocess enforces the length contract on generated compositions.
package postprocess

import (
	"math"
)

const (
	// overshootAllowance is how far past the target text may run untouched
	overshootAllowance = 1.05
	// sentenceCutoff is the earliest point (fraction of target) a sentence end may be used
	sentenceCutoff = 0.85
)

// Limit returns the longest length ClampToTarget leaves untouched
func Limit(target int) int {
	return int(math.Round(float64(target) * overshootAllowance))
}

func isSentenceTerminal(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

// ClampToTarget trims text that overshoots target by more than 5%.
// Lengths are counted in runes. Overlong text is cut to its first target runes;
// if that prefix has a sentence terminal (。！？) past 85% of target, the cut moves
// back to just after the last one. Otherwise the cut is exactly target runes.
func ClampToTarget(text string, target int) string {
	if target < 0 {
		target = 0
	}
	runes := []rune(text)
	if len(runes) <= Limit(target) {
		return text
	}

	prefix := runes[:target]
	cutoff := sentenceCutoff * float64(target)
	for i := len(prefix) - 1; i >= 0 && float64(i) > cutoff; i-- {
		if isSentenceTerminal(prefix[i]) {
			return string(prefix[:i+1])
		}
	}
	return string(prefix)
}
