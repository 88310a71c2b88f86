package postprocess

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

// textWithTerminal returns n runes of filler with 。 at the given zero-based index
func textWithTerminal(n int, at ...int) string {
	runes := []rune(strings.Repeat("あ", n))
	for _, i := range at {
		runes[i] = '。'
	}
	return string(runes)
}

func TestLimit(t *testing.T) {
	assert.Equal(t, 1050, Limit(1000))
	assert.Equal(t, 105, Limit(100))
	assert.Equal(t, 11, Limit(10)) // 10.5 rounds up
}

func TestClampToTarget(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		target  int
		wantLen int
		wantEnd rune
	}{
		{"within target", textWithTerminal(900), 1000, 900, 'あ'},
		{"within allowance", textWithTerminal(1050), 1000, 1050, 'あ'},
		{"late terminal is used", textWithTerminal(1100, 959), 1000, 960, '。'},
		{"last terminal wins", textWithTerminal(1100, 900, 990), 1000, 991, '。'},
		{"terminal beyond prefix ignored", textWithTerminal(1100, 870, 1020), 1000, 871, '。'},
		{"early terminal falls back to hard cut", textWithTerminal(1100, 500), 1000, 1000, 'あ'},
		{"terminal exactly at cutoff is too early", textWithTerminal(1100, 850), 1000, 1000, 'あ'},
		{"terminal just after cutoff", textWithTerminal(1100, 851), 1000, 852, '。'},
		{"no terminal", textWithTerminal(2000), 1000, 1000, 'あ'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampToTarget(tt.text, tt.target)
			assert.Equal(t, tt.wantLen, utf8.RuneCountInString(got))
			last, _ := utf8.DecodeLastRuneInString(got)
			assert.Equal(t, tt.wantEnd, last)
			assert.True(t, strings.HasPrefix(tt.text, got))
		})
	}
}

func TestClampToTarget_OtherTerminals(t *testing.T) {
	for _, terminal := range []string{"！", "？"} {
		text := strings.Repeat("い", 95) + terminal + strings.Repeat("い", 50)
		got := ClampToTarget(text, 100)
		assert.Equal(t, strings.Repeat("い", 95)+terminal, got)
	}
}

func TestClampToTarget_SentenceBoundaryPreference(t *testing.T) {
	for _, target := range []int{100, 400, 1000, 2500} {
		terminalAt := int(0.9 * float64(target))
		text := textWithTerminal(2*target, terminalAt)

		got := ClampToTarget(text, target)

		assert.Equal(t, terminalAt+1, utf8.RuneCountInString(got), "target=%d", target)
		assert.True(t, strings.HasSuffix(got, "。"))
		assert.LessOrEqual(t, utf8.RuneCountInString(got), Limit(target))
	}
}

func TestClampToTarget_Idempotent(t *testing.T) {
	texts := []string{
		"",
		"短い。",
		textWithTerminal(1100, 959),
		textWithTerminal(3000, 100, 2000),
		textWithTerminal(1200),
		strings.Repeat("文です。", 400),
		"mixed ascii and 日本語。" + strings.Repeat("x", 500),
	}
	for _, text := range texts {
		for _, target := range []int{0, 1, 10, 100, 960, 1000} {
			once := ClampToTarget(text, target)
			assert.Equal(t, once, ClampToTarget(once, target), "target=%d", target)
			assert.LessOrEqual(t, utf8.RuneCountInString(once), Limit(target))
		}
	}
}

func TestClampToTarget_ZeroTarget(t *testing.T) {
	assert.Equal(t, "", ClampToTarget("abc", 0))
	assert.Equal(t, "", ClampToTarget("", 0))
}
