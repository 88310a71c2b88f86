package utils

import (
	"unicode/utf8"

	"blockwriter/internal/domain/models"
)

// CountChars counts characters as Unicode code points, so 「あ」 and "a" both count as one
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// CountBlockChars sums the content length of every block
func CountBlockChars(blocks []models.Block) int {
	total := 0
	for _, b := range blocks {
		total += CountChars(b.Content)
	}
	return total
}
